package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"goldloan-backend/internal/logger"
)

// Money columns are DOUBLE PRECISION: backfilled interest entries keep their
// unrounded amounts.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL DEFAULT '',
		phone VARCHAR(32) NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		id_type VARCHAR(32) NOT NULL DEFAULT '',
		id_number VARCHAR(64) NOT NULL DEFAULT '',
		gold_weight DOUBLE PRECISION NOT NULL DEFAULT 0,
		gold_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
		lent_amount DOUBLE PRECISION NOT NULL,
		current_balance DOUBLE PRECISION NOT NULL,
		target_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		lent_date TIMESTAMP NOT NULL,
		last_interest_date TIMESTAMP NULL,
		account_status VARCHAR(16) NOT NULL DEFAULT 'active',
		auto_interest_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id VARCHAR(36) PRIMARY KEY,
		customer_id VARCHAR(36) NOT NULL REFERENCES customers(id),
		seq INTEGER NOT NULL,
		type VARCHAR(16) NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		transaction_date TIMESTAMP NOT NULL,
		balance DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMP NOT NULL,
		UNIQUE (customer_id, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS gold_images (
		id VARCHAR(36) PRIMARY KEY,
		customer_id VARCHAR(36) NOT NULL REFERENCES customers(id),
		image_name VARCHAR(255) NOT NULL DEFAULT '',
		content_type VARCHAR(100) NOT NULL DEFAULT '',
		image_size BIGINT NOT NULL DEFAULT 0,
		image_data {{BLOB}},
		uploaded_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS interest_log (
		id VARCHAR(36) PRIMARY KEY,
		customer_id VARCHAR(36) NOT NULL REFERENCES customers(id),
		interest_amount DOUBLE PRECISION NOT NULL,
		applied_date TIMESTAMP NOT NULL,
		balance_before DOUBLE PRECISION NOT NULL,
		balance_after DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS deleted_customers (
		id VARCHAR(36) PRIMARY KEY,
		original_customer_id VARCHAR(36) NOT NULL,
		customer_data TEXT NOT NULL,
		deletion_reason VARCHAR(255) NOT NULL,
		final_balance DOUBLE PRECISION NOT NULL,
		total_interest_paid DOUBLE PRECISION NOT NULL DEFAULT 0,
		deleted_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id VARCHAR(36) PRIMARY KEY,
		message TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_status ON customers (account_status)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_last_interest ON customers (last_interest_date)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_customer ON transactions (customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_interest_log_customer ON interest_log (customer_id)`,
}

func blobType(driver string) string {
	if driver == DriverPostgres {
		return "BYTEA"
	}
	return "BLOB"
}

// EnsureSchema creates any missing tables and indexes.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		stmt = strings.ReplaceAll(stmt, "{{BLOB}}", blobType(db.DriverName()))
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			logger.DatabaseResult("DDL", 0, err)
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	logger.Info("Database schema ready", "driver", db.DriverName(), "statements", len(schemaStatements))
	return nil
}
