//-------------------------------------------------------------------------
//
// FlexiMart Data Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cleanse turns raw extracts into cleaned customers, products and
// sale lines. Cleaning never fails: every anomaly is substituted and
// counted in the data-quality report.
package cleanse

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/logging"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/model"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/normalize"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/report"
)

// Report counter keys written by the cleaner.
const (
	InvalidPhones            = "invalid_phones"
	InvalidRegistrationDates = "invalid_registration_dates"
	MissingEmails            = "missing_emails"
	MissingNames             = "missing_names"

	MissingPrices     = "missing_prices"
	InvalidPrices     = "invalid_prices"
	MissingStock      = "missing_stock"
	InvalidStock      = "invalid_stock"
	MissingCategories = "missing_categories"

	InvalidTransactionDates = "invalid_transaction_dates"
	MissingTransactionDates = "missing_transaction_dates"
	MissingQuantities       = "missing_quantities"
	InvalidQuantities       = "invalid_quantities"
	MissingUnitPrices       = "missing_unit_prices"
	InvalidUnitPrices       = "invalid_unit_prices"
	MissingCustomerIDs      = "missing_customer_ids"
	MissingProductIDs       = "missing_product_ids"
	MissingTransactionIDs   = "missing_transaction_ids"
	DroppedRecords          = "dropped_records"
)

// DefaultStatus is used for orders whose first line carries no status.
const DefaultStatus = "Pending"

// UncategorizedCategory replaces a missing product category.
const UncategorizedCategory = "Uncategorized"

// Options configures a Cleaner.
type Options struct {
	// CountryCode is the calling code for bare national phone numbers.
	CountryCode string

	// DefaultStatus fills sale lines without a status.
	DefaultStatus string
}

// Cleaner applies the per-entity cleaning pipelines.
type Cleaner struct {
	phones        normalize.PhoneNormalizer
	defaultStatus string
}

// New creates a Cleaner.
func New(opts Options) *Cleaner {
	status := opts.DefaultStatus
	if status == "" {
		status = DefaultStatus
	}
	c := &Cleaner{
		phones:        normalize.NewPhoneNormalizer(opts.CountryCode),
		defaultStatus: status,
	}

	logging.Debug().
		Str("country_code", c.phones.CountryCode()).
		Str("default_status", c.defaultStatus).
		Msg("Cleaner configured")

	return c
}

// Clean runs all three pipelines and records their counters in rep.
func (c *Cleaner) Clean(ex *model.Extracts, rep *report.Report) *model.Cleaned {
	out := &model.Cleaned{
		Customers: c.Customers(ex.Customers, rep.Section(report.Customers)),
		Products:  c.Products(ex.Products, rep.Section(report.Products)),
		Sales:     c.Sales(ex.Sales, rep.Section(report.Sales)),
	}

	logging.Info().
		Int("customers", len(out.Customers)).
		Int("products", len(out.Products)).
		Int("sales", len(out.Sales)).
		Msg("Cleaning complete")

	return out
}

// Column limits of the normalized schema. Values beyond them parse but
// cannot be stored, so they count as invalid.
var (
	maxAmount   = decimal.New(1, 8)  // NUMERIC(10,2)
	maxSubtotal = decimal.New(1, 10) // NUMERIC(12,2)
	maxCount    = decimal.NewFromInt(math.MaxInt32)
)

// parseAmount parses a non-negative decimal that fits a price column. ok is
// false for unparseable, negative or oversized input.
func parseAmount(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() || d.Round(2).GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, false
	}
	return d, true
}

// parseCount parses a non-negative whole count that fits an INTEGER column,
// truncating fractions the way "3.0" or "3.7" become 3.
func parseCount(s string) (int, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return 0, false
	}
	d = d.Truncate(0)
	if d.GreaterThan(maxCount) {
		return 0, false
	}
	return int(d.IntPart()), true
}
