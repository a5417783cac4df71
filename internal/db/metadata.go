//-------------------------------------------------------------------------
//
// FlexiMart Data Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/internal/logging"
	"github.com/KOTHKAI7/25071715-fleximart-data-architecture/pkg/version"
)

const metadataTable = "etl_metadata"

// Metadata keys written per stage as "<stage>_<suffix>".
const (
	runIDSuffix    = "_run_id"
	loadedAtSuffix = "_loaded_at"
)

const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS etl_metadata (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT NOW()
)`

// EnsureMetadataTable creates the metadata table if it doesn't exist.
func EnsureMetadataTable(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, createMetadataTableSQL); err != nil {
		return eris.Wrap(err, "failed to create metadata table")
	}
	return nil
}

// NewRunID returns a fresh run token.
func NewRunID() string {
	return uuid.NewString()
}

// RunIDKey is the metadata key holding the last run token of stage.
func RunIDKey(stage string) string {
	return stage + runIDSuffix
}

// SetMetadata upserts values, in key order.
func SetMetadata(ctx context.Context, db DB, values map[string]string) error {
	for _, key := range slices.Sorted(maps.Keys(values)) {
		_, err := db.Exec(ctx, `
            INSERT INTO etl_metadata (key, value) VALUES ($1, $2)
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
        `, key, values[key])
		if err != nil {
			return eris.Wrapf(err, "failed to save metadata %s", key)
		}
	}
	return nil
}

// SaveRun records a completed stage run: its token, completion time and
// the tool version.
func SaveRun(ctx context.Context, db DB, stage, runID string) error {
	err := SetMetadata(ctx, db, map[string]string{
		RunIDKey(stage):        runID,
		stage + loadedAtSuffix: time.Now().UTC().Format(time.RFC3339),
		stage + "_version":     version.Short(),
	})
	if err != nil {
		return err
	}

	logging.Debug().
		Str("stage", stage).
		Str("run_id", runID).
		Msg("Saved run metadata")

	return nil
}

// GetMetadataValue retrieves a single metadata value by key. found is false
// when the key is absent.
func GetMetadataValue(ctx context.Context, db DB, key string) (value string, found bool, err error) {
	err = db.QueryRow(ctx, `
        SELECT value FROM etl_metadata WHERE key = $1
    `, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrapf(err, "failed to read metadata %s", key)
	}
	return value, true, nil
}

// GetAllMetadata retrieves all metadata as a map.
func GetAllMetadata(ctx context.Context, db DB) (map[string]string, error) {
	rows, err := db.Query(ctx, `SELECT key, value FROM etl_metadata`)
	if err != nil {
		return nil, eris.Wrap(err, "failed to read metadata")
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, eris.Wrap(err, "failed to scan metadata")
		}
		metadata[key] = value
	}

	return metadata, rows.Err()
}

// DropMetadata drops the metadata table.
func DropMetadata(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, "DROP TABLE IF EXISTS "+metadataTable); err != nil {
		return eris.Wrap(err, "failed to drop metadata table")
	}
	return nil
}
