package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate creates the schema if it does not exist. Statements are idempotent;
// there is no versioned migration history.
func Migrate(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS risks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			owner TEXT NOT NULL,
			status TEXT NOT NULL,
			inherent_impact INT NOT NULL DEFAULT 0,
			inherent_likelihood INT NOT NULL DEFAULT 0,
			inherent_risk INT NOT NULL,
			residual_risk INT NOT NULL,
			appetite INT NOT NULL DEFAULT 0,
			severity TEXT NOT NULL,
			reported_on TEXT NOT NULL DEFAULT '',
			controls JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS follow_ups (
			id TEXT PRIMARY KEY,
			risk_id TEXT NOT NULL,
			action TEXT NOT NULL,
			owner TEXT NOT NULL,
			due_date TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS audits (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL,
			title TEXT NOT NULL,
			owner TEXT NOT NULL,
			scope TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			status TEXT NOT NULL,
			risk_ids JSONB NOT NULL DEFAULT '[]',
			findings JSONB NOT NULL DEFAULT '[]',
			readiness_score INT NOT NULL DEFAULT 0,
			coverage INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS timesheets (
			id TEXT PRIMARY KEY,
			auditor TEXT NOT NULL,
			entry_date TEXT NOT NULL,
			hours DOUBLE PRECISION NOT NULL,
			engagement TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS working_papers (
			id TEXT PRIMARY KEY,
			audit_id TEXT NOT NULL,
			name TEXT NOT NULL,
			owner TEXT NOT NULL,
			status TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			id TEXT PRIMARY KEY,
			engagement_id TEXT NOT NULL,
			rating INT NOT NULL,
			comment TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			owner TEXT NOT NULL,
			status TEXT NOT NULL,
			issued_date TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
