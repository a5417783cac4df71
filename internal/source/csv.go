//-------------------------------------------------------------------------
//
// FlexiMart Data Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package source reads the raw customer, product and sales extracts.
package source

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/logging"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/model"
)

// ErrMissingColumn is returned when an extract lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Required columns per extract.
var (
	CustomerColumns = []string{"customer_id", "first_name", "last_name", "email", "phone", "city", "registration_date"}
	ProductColumns  = []string{"product_id", "product_name", "category", "price", "stock_quantity"}
	SalesColumns    = []string{"transaction_id", "customer_id", "product_id", "transaction_date", "quantity", "unit_price"}
)

// Files names the three extract files inside the input directory.
type Files struct {
	Customers string
	Products  string
	Sales     string
}

// DefaultFiles returns the conventional extract file names.
func DefaultFiles() Files {
	return Files{
		Customers: "customers_raw.csv",
		Products:  "products_raw.csv",
		Sales:     "sales_raw.csv",
	}
}

// Options configures delimited-file parsing.
type Options struct {
	Delimiter rune // default ','
}

// ReadTable parses a delimited extract with a header row. Header names are
// trimmed; short rows are padded with missing values.
func ReadTable(r io.Reader, name string, opts Options) (*model.RawTable, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.Errorf("%s: empty file, header row required", name)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "%s: failed to read header", name)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	table := &model.RawTable{Name: name, Columns: columns}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "%s: failed to read row %d", name, len(table.Rows)+1)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}

		row := make(model.RawRecord, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// ReadFile opens and parses one extract file.
func ReadFile(path string, opts Options) (*model.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ReadTable(f, name, opts)
}

// ReadDir reads all three extracts from dir and checks their headers.
func ReadDir(dir string, files Files, opts Options) (*model.Extracts, error) {
	customers, err := readRequired(filepath.Join(dir, files.Customers), opts, CustomerColumns)
	if err != nil {
		return nil, err
	}
	products, err := readRequired(filepath.Join(dir, files.Products), opts, ProductColumns)
	if err != nil {
		return nil, err
	}
	sales, err := readRequired(filepath.Join(dir, files.Sales), opts, SalesColumns)
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("dir", dir).
		Int("customers", customers.Len()).
		Int("products", products.Len()).
		Int("sales", sales.Len()).
		Msg("Read raw extracts")

	return &model.Extracts{
		Customers: customers,
		Products:  products,
		Sales:     sales,
	}, nil
}

func readRequired(path string, opts Options, required []string) (*model.RawTable, error) {
	table, err := ReadFile(path, opts)
	if err != nil {
		return nil, err
	}
	if err := CheckColumns(table, required); err != nil {
		return nil, err
	}
	return table, nil
}

// CheckColumns returns ErrMissingColumn naming the first absent column.
func CheckColumns(table *model.RawTable, required []string) error {
	for _, col := range required {
		if !table.HasColumn(col) {
			return eris.Wrapf(ErrMissingColumn, "%s: %s", table.Name, col)
		}
	}
	return nil
}
