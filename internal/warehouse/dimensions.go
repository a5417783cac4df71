package warehouse

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/db"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/normalize"
)

type customerRow struct {
	id    int
	name  string
	email string
	city  *string
}

type productRow struct {
	id       int
	name     string
	category string
	price    decimal.Decimal
}

type saleRow struct {
	itemID     int
	orderDate  time.Time
	customerID int
	productID  int
	quantity   int
	subtotal   decimal.Decimal
}

func readCustomers(ctx context.Context, conn db.DB) ([]customerRow, error) {
	rows, err := conn.Query(ctx, `
        SELECT customer_id, first_name, last_name, email, city
        FROM customers
        ORDER BY customer_id`)
	if err != nil {
		return nil, eris.Wrap(err, "failed to read customers")
	}
	defer rows.Close()

	var out []customerRow
	for rows.Next() {
		var (
			c           customerRow
			first, last string
		)
		if err := rows.Scan(&c.id, &first, &last, &c.email, &c.city); err != nil {
			return nil, eris.Wrap(err, "failed to scan customer")
		}
		c.name = strings.TrimSpace(first + " " + last)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "failed to read customers")
	}
	return out, nil
}

func readProducts(ctx context.Context, conn db.DB) ([]productRow, error) {
	rows, err := conn.Query(ctx, `
        SELECT product_id, product_name, category, price
        FROM products
        ORDER BY product_id`)
	if err != nil {
		return nil, eris.Wrap(err, "failed to read products")
	}
	defer rows.Close()

	var out []productRow
	for rows.Next() {
		var p productRow
		if err := rows.Scan(&p.id, &p.name, &p.category, &p.price); err != nil {
			return nil, eris.Wrap(err, "failed to scan product")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "failed to read products")
	}
	return out, nil
}

func readSales(ctx context.Context, conn db.DB) ([]saleRow, error) {
	rows, err := conn.Query(ctx, `
        SELECT oi.order_item_id, o.order_date, o.customer_id, oi.product_id,
               oi.quantity, oi.subtotal
        FROM order_items oi
        JOIN orders o ON o.order_id = oi.order_id
        ORDER BY oi.order_item_id`)
	if err != nil {
		return nil, eris.Wrap(err, "failed to read order items")
	}
	defer rows.Close()

	var out []saleRow
	for rows.Next() {
		var s saleRow
		if err := rows.Scan(&s.itemID, &s.orderDate, &s.customerID, &s.productID, &s.quantity, &s.subtotal); err != nil {
			return nil, eris.Wrap(err, "failed to scan order item")
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "failed to read order items")
	}
	return out, nil
}

const upsertDimCustomerSQL = `
INSERT INTO dim_customer (customer_id, customer_name, email, city)
VALUES ($1, $2, $3, $4)
ON CONFLICT (customer_id) DO UPDATE
SET customer_name = EXCLUDED.customer_name,
    email = EXCLUDED.email,
    city = EXCLUDED.city`

const upsertDimProductSQL = `
INSERT INTO dim_product (product_id, product_name, category, price)
VALUES ($1, $2, $3, $4)
ON CONFLICT (product_id) DO UPDATE
SET product_name = EXCLUDED.product_name,
    category = EXCLUDED.category,
    price = EXCLUDED.price`

func upsertCustomers(ctx context.Context, tx db.DB, customers []customerRow) error {
	for _, c := range customers {
		if _, err := tx.Exec(ctx, upsertDimCustomerSQL, c.id, c.name, c.email, c.city); err != nil {
			return eris.Wrapf(err, "failed to upsert customer dimension %d", c.id)
		}
	}
	return nil
}

func upsertProducts(ctx context.Context, tx db.DB, products []productRow) error {
	for _, p := range products {
		if _, err := tx.Exec(ctx, upsertDimProductSQL, p.id, p.name, p.category, p.price); err != nil {
			return eris.Wrapf(err, "failed to upsert product dimension %d", p.id)
		}
	}
	return nil
}

const insertDateSQL = `
INSERT INTO dim_date (full_date, year, month, month_name)
VALUES ($1, $2, $3, $4)
ON CONFLICT (full_date) DO NOTHING`

// EnsureDate inserts the calendar date of t into dim_date unless present
// and returns its date_key. Keys are remembered for the life of the
// Mapper, so each date costs two statements once.
func (m *Mapper) EnsureDate(ctx context.Context, conn db.DB, t time.Time) (int, error) {
	date := normalize.DateOnly(t)
	if key, ok := m.dates[date]; ok {
		return key, nil
	}

	_, err := conn.Exec(ctx, insertDateSQL, date, date.Year(), int(date.Month()), date.Month().String())
	if err != nil {
		return 0, eris.Wrapf(err, "failed to insert date %s", date.Format(time.DateOnly))
	}

	var key int
	err = conn.QueryRow(ctx, `SELECT date_key FROM dim_date WHERE full_date = $1`, date).Scan(&key)
	if err != nil {
		return 0, eris.Wrapf(err, "failed to look up date %s", date.Format(time.DateOnly))
	}

	m.dates[date] = key
	return key, nil
}

// CustomerKey returns the customer_key of a normalized customer_id.
func (m *Mapper) CustomerKey(ctx context.Context, conn db.DB, customerID int) (int, bool, error) {
	return m.dimensionKey(ctx, conn, m.customers, customerID,
		`SELECT customer_key FROM dim_customer WHERE customer_id = $1`)
}

// ProductKey returns the product_key of a normalized product_id.
func (m *Mapper) ProductKey(ctx context.Context, conn db.DB, productID int) (int, bool, error) {
	return m.dimensionKey(ctx, conn, m.products, productID,
		`SELECT product_key FROM dim_product WHERE product_id = $1`)
}

func (m *Mapper) dimensionKey(ctx context.Context, conn db.DB, cache map[int]lookup, id int, query string) (int, bool, error) {
	if l, ok := cache[id]; ok {
		return l.key, l.ok, nil
	}

	m.lookups++
	var key int
	err := conn.QueryRow(ctx, query, id).Scan(&key)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		cache[id] = lookup{}
		return 0, false, nil
	case err != nil:
		return 0, false, eris.Wrapf(err, "failed to look up dimension key for %d", id)
	}

	cache[id] = lookup{key: key, ok: true}
	return key, true, nil
}
