//-------------------------------------------------------------------------
//
// FlexiMart Data Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse derives the star schema from the normalized schema.
package warehouse

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/db"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/logging"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/report"
)

// Stage is the metadata stage name of a warehouse load.
const Stage = "warehouse"

// Report counter keys written by the mapper.
const (
	CustomerDimensions = "customer_dimensions"
	ProductDimensions  = "product_dimensions"
	DateDimensions     = "date_dimensions"
	SourceRows         = "source_rows"
	FactsLoaded        = "facts_loaded"
	UnresolvedRows     = "facts_skipped_unresolved_key"
)

// ErrAlreadyLoaded is returned when the warehouse already holds a completed
// fact load and Force is not set. Fact rows are appended, never merged, so
// a second load duplicates them.
var ErrAlreadyLoaded = errors.New("warehouse already loaded")

// Options configures a warehouse run.
type Options struct {
	// Force loads facts even when a previous run is recorded.
	Force bool
}

// Mapper reads the normalized schema through source and writes the star
// schema through target. source and target may be the same database.
type Mapper struct {
	source db.DB
	target db.DB

	dates     map[time.Time]int
	customers map[int]lookup
	products  map[int]lookup
	lookups   int
}

type lookup struct {
	key int
	ok  bool
}

// New creates a Mapper.
func New(source, target db.DB) *Mapper {
	m := &Mapper{source: source, target: target}
	m.reset()
	return m
}

// Run loads the dimensions and the fact table in one transaction and
// records the run token on commit. It returns the run token.
func (m *Mapper) Run(ctx context.Context, opts Options, sec *report.Section) (string, error) {
	prev, found, err := db.GetMetadataValue(ctx, m.target, db.RunIDKey(Stage))
	if err != nil {
		return "", err
	}
	if found && !opts.Force {
		return "", eris.Wrapf(ErrAlreadyLoaded, "run %s", prev)
	}
	if found {
		logging.Warn().
			Str("previous_run", prev).
			Msg("Forcing warehouse load; fact rows will be duplicated")
	}

	customers, err := readCustomers(ctx, m.source)
	if err != nil {
		return "", err
	}
	products, err := readProducts(ctx, m.source)
	if err != nil {
		return "", err
	}
	sales, err := readSales(ctx, m.source)
	if err != nil {
		return "", err
	}

	m.reset()
	runID := db.NewRunID()

	tx, err := m.target.Begin(ctx)
	if err != nil {
		return "", eris.Wrap(err, "failed to begin warehouse load")
	}
	defer tx.Rollback(ctx)

	if err := upsertCustomers(ctx, tx, customers); err != nil {
		return "", err
	}
	if err := upsertProducts(ctx, tx, products); err != nil {
		return "", err
	}

	loaded, skipped, err := m.loadFacts(ctx, tx, sales)
	if err != nil {
		return "", err
	}

	if err := db.SaveRun(ctx, tx, Stage, runID); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", eris.Wrap(err, "failed to commit warehouse load")
	}

	sec.SetInt(CustomerDimensions, len(customers))
	sec.SetInt(ProductDimensions, len(products))
	sec.SetInt(DateDimensions, len(m.dates))
	sec.SetInt(SourceRows, len(sales))
	sec.SetInt(FactsLoaded, loaded)
	sec.SetInt(UnresolvedRows, skipped)

	logging.Info().
		Str("run_id", runID).
		Int("facts", loaded).
		Int("skipped", skipped).
		Int("key_lookups", m.lookups).
		Msg("Warehouse loaded")

	return runID, nil
}

func (m *Mapper) reset() {
	m.dates = make(map[time.Time]int)
	m.customers = make(map[int]lookup)
	m.products = make(map[int]lookup)
	m.lookups = 0
}

const insertFactSQL = `
INSERT INTO fact_sales (customer_key, product_key, date_key, quantity, total_amount)
VALUES ($1, $2, $3, $4, $5)`

// loadFacts inserts one fact per sale row. Rows whose customer or product
// has no dimension row are skipped.
func (m *Mapper) loadFacts(ctx context.Context, tx db.DB, sales []saleRow) (loaded, skipped int, err error) {
	for _, s := range sales {
		dateKey, err := m.EnsureDate(ctx, tx, s.orderDate)
		if err != nil {
			return 0, 0, err
		}

		customerKey, ok, err := m.CustomerKey(ctx, tx, s.customerID)
		if err != nil {
			return 0, 0, err
		}
		if !ok {
			skipped++
			logging.Warn().
				Int("order_item_id", s.itemID).
				Int("customer_id", s.customerID).
				Msg("Skipping fact with no customer dimension")
			continue
		}

		productKey, ok, err := m.ProductKey(ctx, tx, s.productID)
		if err != nil {
			return 0, 0, err
		}
		if !ok {
			skipped++
			logging.Warn().
				Int("order_item_id", s.itemID).
				Int("product_id", s.productID).
				Msg("Skipping fact with no product dimension")
			continue
		}

		_, err = tx.Exec(ctx, insertFactSQL, customerKey, productKey, dateKey, s.quantity, s.subtotal)
		if err != nil {
			return 0, 0, eris.Wrapf(err, "failed to insert fact for order item %d", s.itemID)
		}
		loaded++
	}
	return loaded, skipped, nil
}
