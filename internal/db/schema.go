package db

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/logging"
)

// Normalized schema. customer_xref holds the external customer code of
// every inserted customer so orders can be attached without going through
// email.
const createNormalizedSchemaSQL = `
-- Customers: one row per cleaned customer, email is the natural key
CREATE TABLE IF NOT EXISTS customers (
    customer_id       SERIAL PRIMARY KEY,
    first_name        VARCHAR(100) NOT NULL,
    last_name         VARCHAR(100) NOT NULL,
    email             VARCHAR(255) NOT NULL UNIQUE,
    phone             VARCHAR(20),
    city              VARCHAR(100),
    registration_date DATE
);

-- Customer Xref: external customer code to surrogate key
CREATE TABLE IF NOT EXISTS customer_xref (
    external_id VARCHAR(50) PRIMARY KEY,
    customer_id INTEGER NOT NULL REFERENCES customers(customer_id),
    loaded_at   TIMESTAMP DEFAULT NOW()
);

-- Products: product_code keeps the source code for mapping
CREATE TABLE IF NOT EXISTS products (
    product_id     SERIAL PRIMARY KEY,
    product_code   VARCHAR(50),
    product_name   VARCHAR(200) NOT NULL,
    category       VARCHAR(100) NOT NULL,
    price          NUMERIC(10,2) NOT NULL,
    stock_quantity INTEGER NOT NULL DEFAULT 0
);

-- Orders: one row per source transaction
CREATE TABLE IF NOT EXISTS orders (
    order_id         SERIAL PRIMARY KEY,
    customer_id      INTEGER NOT NULL REFERENCES customers(customer_id),
    order_date       DATE NOT NULL,
    total_amount     NUMERIC(12,2) NOT NULL,
    status           VARCHAR(20) NOT NULL DEFAULT 'Pending',
    transaction_code VARCHAR(50)
);

-- Order Items: one row per sale line
CREATE TABLE IF NOT EXISTS order_items (
    order_item_id SERIAL PRIMARY KEY,
    order_id      INTEGER NOT NULL REFERENCES orders(order_id),
    product_id    INTEGER NOT NULL REFERENCES products(product_id),
    quantity      INTEGER NOT NULL,
    unit_price    NUMERIC(10,2) NOT NULL,
    subtotal      NUMERIC(12,2) NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_customer_xref_customer ON customer_xref(customer_id);
CREATE INDEX IF NOT EXISTS idx_products_code ON products(product_code);
CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id);
CREATE INDEX IF NOT EXISTS idx_orders_date ON orders(order_date);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id);
`

const dropNormalizedSchemaSQL = `
DROP TABLE IF EXISTS order_items CASCADE;
DROP TABLE IF EXISTS orders CASCADE;
DROP TABLE IF EXISTS products CASCADE;
DROP TABLE IF EXISTS customer_xref CASCADE;
DROP TABLE IF EXISTS customers CASCADE;
`

// Star schema. Dimension natural keys are the normalized surrogate keys.
const createWarehouseSchemaSQL = `
-- Customer dimension
CREATE TABLE IF NOT EXISTS dim_customer (
    customer_key  SERIAL PRIMARY KEY,
    customer_id   INTEGER NOT NULL UNIQUE,
    customer_name VARCHAR(200) NOT NULL,
    email         VARCHAR(255),
    city          VARCHAR(100)
);

-- Product dimension
CREATE TABLE IF NOT EXISTS dim_product (
    product_key  SERIAL PRIMARY KEY,
    product_id   INTEGER NOT NULL UNIQUE,
    product_name VARCHAR(200) NOT NULL,
    category     VARCHAR(100),
    price        NUMERIC(10,2)
);

-- Date dimension: one row per calendar date
CREATE TABLE IF NOT EXISTS dim_date (
    date_key   SERIAL PRIMARY KEY,
    full_date  DATE NOT NULL UNIQUE,
    year       INTEGER NOT NULL,
    month      INTEGER NOT NULL,
    month_name VARCHAR(10) NOT NULL
);

-- Sales fact: one row per order item
CREATE TABLE IF NOT EXISTS fact_sales (
    fact_key     BIGSERIAL PRIMARY KEY,
    customer_key INTEGER NOT NULL REFERENCES dim_customer(customer_key),
    product_key  INTEGER NOT NULL REFERENCES dim_product(product_key),
    date_key     INTEGER NOT NULL REFERENCES dim_date(date_key),
    quantity     INTEGER NOT NULL,
    total_amount NUMERIC(12,2) NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fact_sales_customer ON fact_sales(customer_key);
CREATE INDEX IF NOT EXISTS idx_fact_sales_product ON fact_sales(product_key);
CREATE INDEX IF NOT EXISTS idx_fact_sales_date ON fact_sales(date_key);
`

const dropWarehouseSchemaSQL = `
DROP TABLE IF EXISTS fact_sales CASCADE;
DROP TABLE IF EXISTS dim_date CASCADE;
DROP TABLE IF EXISTS dim_product CASCADE;
DROP TABLE IF EXISTS dim_customer CASCADE;
`

// CreateNormalizedSchema creates the normalized tables and the metadata
// table.
func CreateNormalizedSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, createNormalizedSchemaSQL); err != nil {
		return eris.Wrap(err, "failed to create normalized schema")
	}
	if err := EnsureMetadataTable(ctx, db); err != nil {
		return err
	}
	logging.Info().Msg("Normalized schema created")
	return nil
}

// DropNormalizedSchema drops the normalized tables.
func DropNormalizedSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, dropNormalizedSchemaSQL); err != nil {
		return eris.Wrap(err, "failed to drop normalized schema")
	}
	return nil
}

// CreateWarehouseSchema creates the star schema and the metadata table.
func CreateWarehouseSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, createWarehouseSchemaSQL); err != nil {
		return eris.Wrap(err, "failed to create warehouse schema")
	}
	if err := EnsureMetadataTable(ctx, db); err != nil {
		return err
	}
	logging.Info().Msg("Warehouse schema created")
	return nil
}

// DropWarehouseSchema drops the star schema.
func DropWarehouseSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, dropWarehouseSchemaSQL); err != nil {
		return eris.Wrap(err, "failed to drop warehouse schema")
	}
	return nil
}
