//-------------------------------------------------------------------------
//
// FlexiMart Data Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package testutil provides utilities for integration testing against a
// real PostgreSQL server.
package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/db"
)

const (
	// DefaultTestConnString is the default connection string for tests.
	// Override with FLEXIMART_TEST_CONN environment variable.
	DefaultTestConnString = "postgres://postgres@localhost:5432/postgres"

	// TestDBPrefix is the prefix for test databases.
	TestDBPrefix = "fleximart_test_"
)

// PostgresAvailable checks if PostgreSQL is available for testing.
// Returns the connection string if available, empty string otherwise.
func PostgresAvailable() string {
	connStr := os.Getenv("FLEXIMART_TEST_CONN")
	if connStr == "" {
		connStr = DefaultTestConnString
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return ""
	}
	defer conn.Close(ctx)

	if err := conn.Ping(ctx); err != nil {
		return ""
	}

	return connStr
}

// SkipIfNoPostgres skips the test if PostgreSQL is not available.
func SkipIfNoPostgres(t *testing.T) string {
	t.Helper()
	connStr := PostgresAvailable()
	if connStr == "" {
		t.Skip("PostgreSQL not available, skipping integration test")
	}
	return connStr
}

// CreateTestDB creates a uniquely named database and returns its name and
// connection string.
func CreateTestDB(t *testing.T, baseConnStr, label string) (name, connStr string) {
	t.Helper()

	randomBytes := make([]byte, 6)
	if _, err := rand.Read(randomBytes); err != nil {
		t.Fatalf("Failed to generate random database name: %v", err)
	}
	name = TestDBPrefix + label + "_" + hex.EncodeToString(randomBytes)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, baseConnStr)
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer conn.Close(ctx)

	ident := pgx.Identifier{name}.Sanitize()
	if _, err := conn.Exec(ctx, "CREATE DATABASE "+ident); err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	config, err := pgx.ParseConfig(baseConnStr)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}

	// ConnString() does not reflect changes made to the parsed config, so
	// rebuild it from its parts.
	connStr = db.Params{
		Host:     config.Host,
		Port:     int(config.Port),
		User:     config.User,
		Password: config.Password,
		Database: name,
	}.ConnString()

	return name, connStr
}

// DropTestDB drops the test database after terminating its sessions.
func DropTestDB(t *testing.T, baseConnStr, name string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, baseConnStr)
	if err != nil {
		t.Logf("Warning: Failed to connect to drop test database: %v", err)
		return
	}
	defer conn.Close(ctx)

	_, _ = conn.Exec(ctx, `
        SELECT pg_terminate_backend(pid)
        FROM pg_stat_activity
        WHERE datname = $1 AND pid <> pg_backend_pid()
    `, name)

	_, err = conn.Exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s", pgx.Identifier{name}.Sanitize()))
	if err != nil {
		t.Logf("Warning: Failed to drop test database: %v", err)
	}
}

// NewTestDB creates a database, connects a pool to it and registers
// cleanup. The database is only dropped if the test passed; on failure it
// remains for diagnostic purposes.
func NewTestDB(t *testing.T, baseConnStr, label string) *pgxpool.Pool {
	t.Helper()

	name, connStr := CreateTestDB(t, baseConnStr, label)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		DropTestDB(t, baseConnStr, name)
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if t.Failed() {
			t.Logf("Test failed - keeping database %s for diagnostics", name)
			return
		}
		DropTestDB(t, baseConnStr, name)
	})

	return pool
}
