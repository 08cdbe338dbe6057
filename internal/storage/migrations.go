package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS statements (
					id TEXT PRIMARY KEY,
					bank TEXT NOT NULL,
					currency TEXT NOT NULL,
					account_holder TEXT NOT NULL DEFAULT '',
					iban TEXT NOT NULL DEFAULT '',
					account_no TEXT NOT NULL DEFAULT '',
					period_start DATETIME NOT NULL,
					period_end DATETIME NOT NULL,
					opening_balance REAL NOT NULL DEFAULT 0,
					closing_balance REAL NOT NULL DEFAULT 0,
					status TEXT NOT NULL DEFAULT 'pending',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_statements_bank_currency ON statements(bank, currency, created_at)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					statement_id TEXT NOT NULL,
					hash TEXT NOT NULL,
					date DATETIME NOT NULL,
					description TEXT NOT NULL,
					amount REAL NOT NULL,
					balance REAL NOT NULL DEFAULT 0,
					seq INTEGER NOT NULL DEFAULT 0,
					type TEXT NOT NULL DEFAULT '',
					category_id TEXT NOT NULL DEFAULT '',
					sub_category_id TEXT NOT NULL DEFAULT '',
					customer_id TEXT NOT NULL DEFAULT '',
					currency_pair TEXT NOT NULL DEFAULT '',
					auto_matched INTEGER NOT NULL DEFAULT 0,
					matched_pattern_id INTEGER NOT NULL DEFAULT 0,
					confidence REAL NOT NULL DEFAULT 0,
					match_confirmed INTEGER NOT NULL DEFAULT 0,
					suggested_match TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE (statement_id, hash),
					FOREIGN KEY (statement_id) REFERENCES statements(id)
				)`,
				`CREATE INDEX idx_transactions_statement ON transactions(statement_id, seq)`,

				`CREATE TABLE IF NOT EXISTS patterns (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					normalized_key TEXT UNIQUE NOT NULL,
					type TEXT NOT NULL,
					category_id TEXT NOT NULL DEFAULT '',
					sub_category_id TEXT NOT NULL DEFAULT '',
					customer_id TEXT NOT NULL DEFAULT '',
					currency_pair TEXT NOT NULL DEFAULT '',
					source TEXT NOT NULL DEFAULT 'LEARNED',
					confidence REAL NOT NULL DEFAULT 0,
					match_count INTEGER NOT NULL DEFAULT 0,
					confirm_count INTEGER NOT NULL DEFAULT 0,
					reject_count INTEGER NOT NULL DEFAULT 0,
					is_active INTEGER NOT NULL DEFAULT 1,
					is_regex INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					parent_id TEXT NOT NULL DEFAULT '',
					is_active INTEGER NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS customers (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Indexes for pattern lookup and category scoping",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX IF NOT EXISTS idx_patterns_key ON patterns(normalized_key) WHERE is_active = 1`,
				`CREATE INDEX IF NOT EXISTS idx_categories_parent ON categories(parent_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// Migrate applies pending schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
