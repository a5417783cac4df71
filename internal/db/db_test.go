package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsConnString(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{
			name:   "full",
			params: Params{Host: "db", Port: 5433, User: "etl", Password: "p@ss", Database: "fleximart", SSLMode: "disable"},
			want:   "postgres://etl:p%40ss@db:5433/fleximart?sslmode=disable",
		},
		{
			name:   "no password",
			params: Params{Host: "localhost", Port: 5432, User: "postgres", Database: "fleximart_dw"},
			want:   "postgres://postgres@localhost:5432/fleximart_dw",
		},
		{
			name:   "host only",
			params: Params{Host: "localhost"},
			want:   "postgres://localhost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.ConnString())
		})
	}
}

func TestDefaultPoolConfig(t *testing.T) {
	cfg := DefaultPoolConfig()
	assert.Equal(t, int32(4), cfg.MaxConns)
	assert.LessOrEqual(t, cfg.MinConns, cfg.MaxConns)
}

func TestCreateSchemas(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS customers").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS etl_metadata").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS dim_date").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS etl_metadata").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	ctx := context.Background()
	require.NoError(t, CreateNormalizedSchema(ctx, mock))
	require.NoError(t, CreateWarehouseSchema(ctx, mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSchemaError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	boom := errors.New("permission denied")
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS customers").WillReturnError(boom)

	err = CreateNormalizedSchema(context.Background(), mock)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to create normalized schema")
}

func TestDropSchemas(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("DROP TABLE IF EXISTS order_items").
		WillReturnResult(pgxmock.NewResult("DROP", 0))
	mock.ExpectExec("DROP TABLE IF EXISTS fact_sales").
		WillReturnResult(pgxmock.NewResult("DROP", 0))
	mock.ExpectExec("DROP TABLE IF EXISTS etl_metadata").
		WillReturnResult(pgxmock.NewResult("DROP", 0))

	ctx := context.Background()
	require.NoError(t, DropNormalizedSchema(ctx, mock))
	require.NoError(t, DropWarehouseSchema(ctx, mock))
	require.NoError(t, DropMetadata(ctx, mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRun(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	runID := NewRunID()
	for _, key := range []string{"warehouse_loaded_at", "warehouse_run_id", "warehouse_version"} {
		args := []any{key, pgxmock.AnyArg()}
		if key == "warehouse_run_id" {
			args = []any{key, runID}
		}
		mock.ExpectExec("INSERT INTO etl_metadata").
			WithArgs(args...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	require.NoError(t, SaveRun(context.Background(), mock, "warehouse", runID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMetadataValue(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT value FROM etl_metadata").
		WithArgs(RunIDKey("warehouse")).
		WillReturnRows(mock.NewRows([]string{"value"}).AddRow("abc"))
	mock.ExpectQuery("SELECT value FROM etl_metadata").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	ctx := context.Background()
	v, found, err := GetMetadataValue(ctx, mock, "warehouse_run_id")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "abc", v)

	_, found, err = GetMetadataValue(ctx, mock, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllMetadata(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT key, value FROM etl_metadata").
		WillReturnRows(mock.NewRows([]string{"key", "value"}).
			AddRow("load_run_id", "r1").
			AddRow("load_version", "0.3.0"))

	got, err := GetAllMetadata(context.Background(), mock)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"load_run_id": "r1", "load_version": "0.3.0"}, got)
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}
