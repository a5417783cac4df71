package warehouse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/report"
)

func TestEnsureDateIdempotent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	day := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO dim_date").
		WithArgs(day, 2024, 2, "February").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT date_key FROM dim_date").
		WithArgs(day).
		WillReturnRows(mock.NewRows([]string{"date_key"}).AddRow(5))

	m := New(mock, mock)
	ctx := context.Background()

	k1, err := m.EnsureDate(ctx, mock, day)
	require.NoError(t, err)
	k2, err := m.EnsureDate(ctx, mock, day.Add(15*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 5, k1)
	assert.Equal(t, k1, k2, "same calendar date, same key, no second insert")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertDateIgnoresConflict(t *testing.T) {
	assert.Contains(t, insertDateSQL, "ON CONFLICT (full_date) DO NOTHING")
}

func TestDimensionKeyMemoizesMisses(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT product_key FROM dim_product").
		WithArgs(99).
		WillReturnError(pgx.ErrNoRows)

	m := New(mock, mock)
	ctx := context.Background()
	for range 3 {
		_, ok, err := m.ProductKey(ctx, mock, 99)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, 1, m.lookups)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRefusesSecondLoad(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT value FROM etl_metadata").
		WithArgs("warehouse_run_id").
		WillReturnRows(mock.NewRows([]string{"value"}).AddRow("6f1c"))

	_, err = New(mock, mock).Run(context.Background(), Options{}, report.New().Section(report.Warehouse))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyLoaded))
	assert.Contains(t, err.Error(), "6f1c")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	city := "Mumbai"
	orderDate := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT value FROM etl_metadata").
		WithArgs("warehouse_run_id").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("FROM customers").
		WillReturnRows(mock.NewRows([]string{"customer_id", "first_name", "last_name", "email", "city"}).
			AddRow(1, "Rahul", "Sharma", "rahul@example.com", &city))
	mock.ExpectQuery("FROM products").
		WillReturnRows(mock.NewRows([]string{"product_id", "product_name", "category", "price"}).
			AddRow(11, "Phone", "Electronics", decimal.RequireFromString("45999")))
	mock.ExpectQuery("FROM order_items").
		WillReturnRows(mock.NewRows([]string{"order_item_id", "order_date", "customer_id", "product_id", "quantity", "subtotal"}).
			AddRow(100, orderDate, 1, 11, 2, decimal.RequireFromString("91998")).
			AddRow(101, orderDate, 1, 99, 1, decimal.RequireFromString("5")))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO dim_customer").
		WithArgs(1, "Rahul Sharma", "rahul@example.com", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO dim_product").
		WithArgs(11, "Phone", "Electronics", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	// First row: date, customer and product resolved, fact inserted.
	mock.ExpectExec("INSERT INTO dim_date").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT date_key FROM dim_date").
		WillReturnRows(mock.NewRows([]string{"date_key"}).AddRow(7))
	mock.ExpectQuery("SELECT customer_key FROM dim_customer").
		WithArgs(1).
		WillReturnRows(mock.NewRows([]string{"customer_key"}).AddRow(21))
	mock.ExpectQuery("SELECT product_key FROM dim_product").
		WithArgs(11).
		WillReturnRows(mock.NewRows([]string{"product_key"}).AddRow(31))
	mock.ExpectExec("INSERT INTO fact_sales").
		WithArgs(21, 31, 7, 2, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	// Second row: date and customer memoized, product unresolved.
	mock.ExpectQuery("SELECT product_key FROM dim_product").
		WithArgs(99).
		WillReturnError(pgx.ErrNoRows)

	for range 3 {
		mock.ExpectExec("INSERT INTO etl_metadata").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	sec := report.New().Section(report.Warehouse)
	runID, err := New(mock, mock).Run(context.Background(), Options{}, sec)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	assert.Equal(t, int64(1), sec.Get(CustomerDimensions))
	assert.Equal(t, int64(1), sec.Get(ProductDimensions))
	assert.Equal(t, int64(1), sec.Get(DateDimensions))
	assert.Equal(t, int64(2), sec.Get(SourceRows))
	assert.Equal(t, int64(1), sec.Get(FactsLoaded))
	assert.Equal(t, int64(1), sec.Get(UnresolvedRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunForceSkipsGuard(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT value FROM etl_metadata").
		WillReturnRows(mock.NewRows([]string{"value"}).AddRow("6f1c"))
	mock.ExpectQuery("FROM customers").
		WillReturnRows(mock.NewRows([]string{"customer_id", "first_name", "last_name", "email", "city"}))
	mock.ExpectQuery("FROM products").
		WillReturnRows(mock.NewRows([]string{"product_id", "product_name", "category", "price"}))
	mock.ExpectQuery("FROM order_items").
		WillReturnRows(mock.NewRows([]string{"order_item_id", "order_date", "customer_id", "product_id", "quantity", "subtotal"}))
	mock.ExpectBegin()
	for range 3 {
		mock.ExpectExec("INSERT INTO etl_metadata").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	sec := report.New().Section(report.Warehouse)
	_, err = New(mock, mock).Run(context.Background(), Options{Force: true}, sec)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sec.Get(FactsLoaded))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunDateInsertFails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	orderDate := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT value FROM etl_metadata").WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("FROM customers").
		WillReturnRows(mock.NewRows([]string{"customer_id", "first_name", "last_name", "email", "city"}))
	mock.ExpectQuery("FROM products").
		WillReturnRows(mock.NewRows([]string{"product_id", "product_name", "category", "price"}))
	mock.ExpectQuery("FROM order_items").
		WillReturnRows(mock.NewRows([]string{"order_item_id", "order_date", "customer_id", "product_id", "quantity", "subtotal"}).
			AddRow(100, orderDate, 1, 11, 2, decimal.RequireFromString("10")))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO dim_date").WillReturnError(errors.New("relation \"dim_date\" does not exist"))
	mock.ExpectRollback()

	_, err = New(mock, mock).Run(context.Background(), Options{}, report.New().Section(report.Warehouse))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dim_date")
	assert.NoError(t, mock.ExpectationsWereMet())
}
