package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// The DDL is limited to types and clauses shared by Postgres and SQLite.
var schemaStatements = []string{
	`
	CREATE TABLE IF NOT EXISTS packages (
		package_id INTEGER PRIMARY KEY,
		street TEXT NOT NULL,
		city TEXT NOT NULL,
		state TEXT NOT NULL,
		zip TEXT NOT NULL,
		deadline TEXT NOT NULL,
		weight_kg DOUBLE PRECISION NOT NULL,
		notes TEXT NOT NULL DEFAULT ''
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS locations (
		location_idx INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		street TEXT NOT NULL,
		zip TEXT NOT NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS distances (
		from_idx INTEGER NOT NULL,
		to_idx INTEGER NOT NULL,
		miles DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (from_idx, to_idx)
	);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_distances_to_from
	ON distances(to_idx, from_idx);
	`,
}

// Initialize the dispatch schema. Safe to run repeatedly.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
