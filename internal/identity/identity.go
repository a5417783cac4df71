//-------------------------------------------------------------------------
//
// FlexiMart Data Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package identity rebuilds the external customer code to surrogate key
// mapping once customers have been inserted.
package identity

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/db"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/model"
)

// Resolution strategies.
const (
	StrategyXref  = "xref"
	StrategyEmail = "email"
)

// DefaultStrategy is used when none is configured.
const DefaultStrategy = StrategyEmail

// Keys maps an external customer code to customers.customer_id.
type Keys map[string]int

// Lookup returns the surrogate key for externalID.
func (k Keys) Lookup(externalID string) (int, bool) {
	key, ok := k[externalID]
	return key, ok
}

// Resolver reconstructs Keys after customers have been loaded.
type Resolver interface {
	// Name returns the strategy name.
	Name() string

	// Resolve returns the mapping for the given cleaned customers.
	Resolve(ctx context.Context, conn db.DB, customers []model.Customer) (Keys, error)
}

// Strategies returns the available strategy names.
func Strategies() []string {
	return []string{StrategyEmail, StrategyXref}
}

// New returns the resolver for strategy. An empty strategy selects
// DefaultStrategy.
func New(strategy string) (Resolver, error) {
	switch strategy {
	case "", StrategyEmail:
		return EmailResolver{}, nil
	case StrategyXref:
		return XrefResolver{}, nil
	default:
		return nil, eris.Errorf("unknown identity strategy: %s (valid: %v)", strategy, Strategies())
	}
}
