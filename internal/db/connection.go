//-------------------------------------------------------------------------
//
// FlexiMart Data Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package db provides database connection management, schema DDL and run
// metadata for fleximart-etl.
package db

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/logging"
)

// DB is an interface that both *pgxpool.Pool and *pgx.Conn satisfy, as do
// pgx.Tx and pgxmock pools. Every pipeline component takes one explicitly.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Params holds discrete connection parameters.
type Params struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// ConnString builds a postgres:// URL from p. Empty fields are omitted so
// libpq defaults (PGHOST, PGUSER, ...) still apply.
func (p Params) ConnString() string {
	u := url.URL{Scheme: "postgres"}

	if p.User != "" {
		if p.Password != "" {
			u.User = url.UserPassword(p.User, p.Password)
		} else {
			u.User = url.User(p.User)
		}
	}

	u.Host = p.Host
	if p.Port > 0 {
		u.Host += ":" + strconv.Itoa(p.Port)
	}
	if p.Database != "" {
		u.Path = "/" + p.Database
	}
	if p.SSLMode != "" {
		q := url.Values{}
		q.Set("sslmode", p.SSLMode)
		u.RawQuery = q.Encode()
	}

	return u.String()
}

// DefaultPoolConfig returns default connection pool configuration. The
// pipeline is sequential, so the pool stays small.
func DefaultPoolConfig() *pgxpool.Config {
	config, _ := pgxpool.ParseConfig("")

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	return config
}

// Connect establishes a connection pool to the PostgreSQL database.
func Connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "failed to parse connection string")
	}

	defaults := DefaultPoolConfig()
	config.MaxConns = defaults.MaxConns
	config.MinConns = defaults.MinConns
	config.MaxConnLifetime = defaults.MaxConnLifetime
	config.MaxConnIdleTime = defaults.MaxConnIdleTime
	config.HealthCheckPeriod = defaults.HealthCheckPeriod

	logging.Debug().
		Str("host", config.ConnConfig.Host).
		Uint16("port", config.ConnConfig.Port).
		Str("database", config.ConnConfig.Database).
		Msg("Connecting to database")

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrapf(err, "failed to ping database %s", config.ConnConfig.Database)
	}

	logging.Info().
		Str("host", config.ConnConfig.Host).
		Str("database", config.ConnConfig.Database).
		Msg("Connected to database")

	return pool, nil
}

// ConnectSingle opens one dedicated connection, used by schema management
// where a pool buys nothing.
func ConnectSingle(ctx context.Context, connString string) (*pgx.Conn, error) {
	config, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "failed to parse connection string")
	}

	conn, err := pgx.ConnectConfig(ctx, config)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to connect to database %s", config.Database)
	}

	logging.Debug().
		Str("host", config.Host).
		Str("database", config.Database).
		Msg("Opened single connection")

	return conn, nil
}
