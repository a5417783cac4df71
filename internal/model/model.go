//-------------------------------------------------------------------------
//
// FlexiMart Data Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package model defines the records that flow through the pipeline, from raw
// extract rows to cleaned entities and derived orders.
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// nullTokens are cell values treated as missing after trimming.
var nullTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"#N/A": {},
	"NULL": {},
	"null": {},
	"NaN":  {},
	"nan":  {},
	"None": {},
	"<NA>": {},
}

// IsMissing reports whether a raw cell value counts as a missing value.
func IsMissing(v string) bool {
	_, ok := nullTokens[strings.TrimSpace(v)]
	return ok
}

// RawRecord is one row of a source extract, keyed by header column. Column
// order is held by the RawTable that owns the record.
type RawRecord map[string]string

// Get returns the trimmed value of a column and whether it is present.
// Missing columns and null tokens both report false.
func (r RawRecord) Get(column string) (string, bool) {
	v, ok := r[column]
	if !ok || IsMissing(v) {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// RawTable is a parsed extract: header order plus rows in file order.
type RawTable struct {
	Name    string
	Columns []string
	Rows    []RawRecord
}

// Len returns the number of data rows.
func (t *RawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether the header contains the column.
func (t *RawTable) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Customer is a cleaned customer. Email is never empty after imputation.
type Customer struct {
	ExternalID       string
	FirstName        string
	LastName         string
	Email            string
	Phone            *string
	City             *string
	RegistrationDate *time.Time
}

// FullName joins first and last name the way the warehouse stores it.
func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Product is a cleaned product. Price and StockQuantity are never negative.
type Product struct {
	ExternalID    string
	Name          string
	Category      string
	Price         decimal.Decimal
	StockQuantity int
}

// SaleLine is a cleaned sales row. Both external references are non-empty.
type SaleLine struct {
	TransactionID      string
	ExternalCustomerID string
	ExternalProductID  string
	TransactionDate    *time.Time
	Quantity           int
	UnitPrice          decimal.Decimal
	Subtotal           decimal.Decimal
	Status             string
}

// Order is one transaction aggregated from its sale lines.
type Order struct {
	TransactionID      string
	ExternalCustomerID string
	OrderDate          time.Time
	TotalAmount        decimal.Decimal
	Status             string
	Lines              []SaleLine
}

// Extracts holds the three raw source tables.
type Extracts struct {
	Customers *RawTable
	Products  *RawTable
	Sales     *RawTable
}

// Cleaned holds the cleaned record sets produced from Extracts.
type Cleaned struct {
	Customers []Customer
	Products  []Product
	Sales     []SaleLine
}
