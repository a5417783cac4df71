package loader

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/db"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/identity"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/logging"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/model"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/normalize"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/report"
)

const insertOrderSQL = `
INSERT INTO orders (customer_id, order_date, total_amount, status, transaction_code)
VALUES ($1, $2, $3, $4, $5)
RETURNING order_id`

const insertOrderItemSQL = `
INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
VALUES ($1, $2, $3, $4, $5)`

// GroupOrders builds one order per transaction_id, in order of first
// appearance. The order takes its customer, date and status from its
// first line; a line without a date falls back to now. TotalAmount is the
// exact sum of line subtotals.
func GroupOrders(lines []model.SaleLine, now time.Time) []model.Order {
	index := make(map[string]int)
	var orders []model.Order

	for _, line := range lines {
		i, ok := index[line.TransactionID]
		if !ok {
			date := normalize.DateOnly(now)
			if line.TransactionDate != nil {
				date = normalize.DateOnly(*line.TransactionDate)
			}
			orders = append(orders, model.Order{
				TransactionID:      line.TransactionID,
				ExternalCustomerID: line.ExternalCustomerID,
				OrderDate:          date,
				TotalAmount:        decimal.Zero,
				Status:             line.Status,
			})
			i = len(orders) - 1
			index[line.TransactionID] = i
		}

		o := &orders[i]
		o.TotalAmount = o.TotalAmount.Add(line.Subtotal)
		o.Lines = append(o.Lines, line)
	}

	return orders
}

// LoadOrders inserts each order followed by its items and commits once.
// An order whose customer is not in customers is skipped whole; an item
// whose product is not in products is skipped alone.
func (l *Loader) LoadOrders(ctx context.Context, orders []model.Order, customers identity.Keys, products ProductKeys, sec *report.Section) error {
	var ordersLoaded, itemsLoaded, skippedOrders, skippedItems int

	err := l.inTx(ctx, func(tx db.DB) error {
		for _, o := range orders {
			customerID, ok := customers.Lookup(o.ExternalCustomerID)
			if !ok {
				skippedOrders++
				logging.Warn().
					Str("transaction_id", o.TransactionID).
					Str("external_id", o.ExternalCustomerID).
					Msg("Skipping order with unresolved customer")
				continue
			}

			var orderID int
			err := tx.QueryRow(ctx, insertOrderSQL,
				customerID, o.OrderDate, o.TotalAmount, o.Status, o.TransactionID,
			).Scan(&orderID)
			if err != nil {
				return eris.Wrapf(err, "failed to insert order %s", o.TransactionID)
			}
			ordersLoaded++

			for _, line := range o.Lines {
				productID, ok := products[line.ExternalProductID]
				if !ok {
					skippedItems++
					logging.Warn().
						Str("transaction_id", o.TransactionID).
						Str("product_id", line.ExternalProductID).
						Msg("Skipping order item with unresolved product")
					continue
				}

				_, err := tx.Exec(ctx, insertOrderItemSQL,
					orderID, productID, line.Quantity, line.UnitPrice, line.Subtotal)
				if err != nil {
					return eris.Wrapf(err, "failed to insert item of order %s", o.TransactionID)
				}
				itemsLoaded++
			}
		}
		return nil
	})
	if err != nil {
		return eris.Wrap(err, "failed to load orders")
	}

	sec.SetInt(OrdersLoaded, ordersLoaded)
	sec.SetInt(OrderItemsLoaded, itemsLoaded)
	sec.SetInt(UnresolvedCustomers, skippedOrders)
	sec.SetInt(UnresolvedProducts, skippedItems)

	logging.Info().
		Int("orders", ordersLoaded).
		Int("items", itemsLoaded).
		Int("skipped_orders", skippedOrders).
		Int("skipped_items", skippedItems).
		Msg("Orders loaded")

	return nil
}
