package cleanse

import (
	"github.com/shopspring/decimal"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/model"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/normalize"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/report"
)

// Sales cleans the sales extract. Rows are deduplicated on transaction_id
// (first wins), dates parsed, missing or invalid quantity and unit price
// set to zero, and rows without a transaction, customer or product
// reference dropped.
//
// Zero-filling quantity and price keeps the line but hides the gap from
// totals; the counters are the only trace of it.
func (c *Cleaner) Sales(table *model.RawTable, sec *report.Section) []model.SaleLine {
	sec.SetInt(report.RawRecords, table.Len())

	var (
		duplicates        int
		invalidDates      int
		missingDates      int
		missingQuantities int
		invalidQuantities int
		missingPrices     int
		invalidPrices     int
		missingCustomers  int
		missingProducts   int
		missingTxns       int
		dropped           int
	)

	seen := make(map[string]struct{}, table.Len())
	out := make([]model.SaleLine, 0, table.Len())

	for _, row := range rowsOf(table) {
		txn, hasTxn := row.Get("transaction_id")
		if hasTxn {
			if _, dup := seen[txn]; dup {
				duplicates++
				continue
			}
			seen[txn] = struct{}{}
		}

		customerID, hasCustomer := row.Get("customer_id")
		productID, hasProduct := row.Get("product_id")

		line := model.SaleLine{
			TransactionID:      txn,
			ExternalCustomerID: customerID,
			ExternalProductID:  productID,
			UnitPrice:          decimal.Zero,
			Status:             c.defaultStatus,
		}

		if raw, ok := row.Get("transaction_date"); !ok {
			missingDates++
		} else if d, ok := normalize.ParseDate(raw); !ok {
			invalidDates++
		} else {
			line.TransactionDate = &d
		}

		if raw, ok := row.Get("quantity"); !ok {
			missingQuantities++
		} else if qty, ok := parseCount(raw); !ok {
			invalidQuantities++
		} else {
			line.Quantity = qty
		}

		if raw, ok := row.Get("unit_price"); !ok {
			missingPrices++
		} else if price, ok := parseAmount(raw); !ok {
			invalidPrices++
		} else {
			line.UnitPrice = price
		}

		line.Subtotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		if line.Subtotal.Round(2).GreaterThanOrEqual(maxSubtotal) {
			invalidQuantities++
			line.Quantity = 0
			line.Subtotal = decimal.Zero
		}

		if status, ok := row.Get("status"); ok {
			line.Status = status
		}

		if !hasCustomer {
			missingCustomers++
		}
		if !hasProduct {
			missingProducts++
		}
		if !hasTxn {
			missingTxns++
		}
		if !hasCustomer || !hasProduct || !hasTxn {
			dropped++
			continue
		}

		out = append(out, line)
	}

	sec.SetInt(report.DuplicatesRemoved, duplicates)
	sec.SetInt(InvalidTransactionDates, invalidDates)
	sec.SetInt(MissingTransactionDates, missingDates)
	sec.SetInt(MissingQuantities, missingQuantities)
	sec.SetInt(InvalidQuantities, invalidQuantities)
	sec.SetInt(MissingUnitPrices, missingPrices)
	sec.SetInt(InvalidUnitPrices, invalidPrices)
	sec.SetInt(MissingCustomerIDs, missingCustomers)
	sec.SetInt(MissingProductIDs, missingProducts)
	sec.SetInt(MissingTransactionIDs, missingTxns)
	sec.SetInt(DroppedRecords, dropped)
	sec.SetInt(report.CleanedRecords, len(out))

	return out
}
