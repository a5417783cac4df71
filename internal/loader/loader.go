//-------------------------------------------------------------------------
//
// FlexiMart Data Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package loader writes cleaned entities into the normalized schema. Each
// entity type is inserted row by row inside one transaction and committed
// once; a failure part way leaves earlier phases committed.
package loader

import (
	"context"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/db"
)

// Report counter keys written by the loader.
const (
	SkippedDuplicateEmails = "skipped_duplicate_emails"
	OrdersLoaded           = "orders_loaded"
	OrderItemsLoaded       = "order_items_loaded"
	UnresolvedCustomers    = "orders_skipped_unresolved_customer"
	UnresolvedProducts     = "items_skipped_unresolved_product"
)

// Options configures a Loader.
type Options struct {
	// WriteXref records external_id -> customer_id in customer_xref for
	// every inserted customer.
	WriteXref bool
}

// Loader inserts into the normalized schema through conn.
type Loader struct {
	conn db.DB
	opts Options
}

// New creates a Loader.
func New(conn db.DB, opts Options) *Loader {
	return &Loader{conn: conn, opts: opts}
}

// inTx runs fn inside one transaction and commits it.
func (l *Loader) inTx(ctx context.Context, fn func(tx db.DB) error) error {
	tx, err := l.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
