package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/statementworks/recon/internal/common"
	"github.com/statementworks/recon/internal/model"
	"github.com/statementworks/recon/internal/reconcile"
	"github.com/statementworks/recon/internal/service"
)

// SaveStatement persists a statement and its transactions in one database
// transaction. Rows whose hash already exists are skipped.
func (s *SQLiteStorage) SaveStatement(ctx context.Context, statement *model.Statement, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateStatement(statement); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO statements (
			id, bank, currency, account_holder, iban, account_no,
			period_start, period_end, opening_balance, closing_balance, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		statement.ID, statement.Bank, statement.Currency,
		statement.AccountHolder, statement.IBAN, statement.AccountNo,
		statement.PeriodStart, statement.PeriodEnd,
		statement.OpeningBalance, statement.ClosingBalance,
		string(model.StatementPending),
	)
	if err != nil {
		return fmt.Errorf("failed to insert statement: %w", err)
	}

	for i := range transactions {
		if err := s.insertTransactionTx(ctx, tx, &transactions[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit statement: %w", err)
	}
	return nil
}

const statementColumns = `id, bank, currency, account_holder, iban, account_no,
	period_start, period_end, opening_balance, closing_balance, status, created_at`

func scanStatement(row interface{ Scan(...any) error }) (*model.Statement, error) {
	var stmt model.Statement
	var status string
	err := row.Scan(
		&stmt.ID, &stmt.Bank, &stmt.Currency,
		&stmt.AccountHolder, &stmt.IBAN, &stmt.AccountNo,
		&stmt.PeriodStart, &stmt.PeriodEnd,
		&stmt.OpeningBalance, &stmt.ClosingBalance,
		&status, &stmt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	stmt.Status = model.StatementStatus(status)
	return &stmt, nil
}

// GetStatement retrieves a statement by ID.
func (s *SQLiteStorage) GetStatement(ctx context.Context, id string) (*model.Statement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+statementColumns+` FROM statements WHERE id = ?`, id)
	stmt, err := scanStatement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("statement %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statement: %w", err)
	}
	return stmt, nil
}

// GetLatestStatement retrieves the most recently imported statement for a
// (bank, currency) pair.
func (s *SQLiteStorage) GetLatestStatement(ctx context.Context, bank, currency string) (*model.Statement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+statementColumns+` FROM statements
		 WHERE bank = ? AND currency = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`, bank, currency)
	stmt, err := scanStatement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("statement for %s/%s: %w", bank, currency, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest statement: %w", err)
	}
	return stmt, nil
}

// ListStatements returns all statements, newest first.
func (s *SQLiteStorage) ListStatements(ctx context.Context) ([]model.Statement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+statementColumns+` FROM statements ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list statements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var statements []model.Statement
	for rows.Next() {
		stmt, err := scanStatement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", err)
		}
		statements = append(statements, *stmt)
	}
	return statements, rows.Err()
}

// GetStatementStats recomputes the aggregate counts for a statement from its
// transaction rows. Completeness is derived, never read from a stored column.
func (s *SQLiteStorage) GetStatementStats(ctx context.Context, statementID string) (*service.StatementStats, error) {
	txns, err := s.GetStatementTransactions(ctx, statementID)
	if err != nil {
		return nil, err
	}

	stats := &service.StatementStats{Total: len(txns)}
	for i := range txns {
		switch {
		case reconcile.Status(txns[i]) == model.StatusCompleted:
			stats.Categorized++
		case txns[i].SuggestedMatch != nil:
			// Suggestion-carrying rows are reported separately, not as pending.
			stats.Suggested++
		default:
			stats.Pending++
		}
		if txns[i].AutoMatched {
			stats.AutoMatched++
		}
	}
	return stats, nil
}

// MarkStatementComplete transitions a statement to completed. It fails with
// common.ErrStatementIncomplete while any transaction is still pending.
func (s *SQLiteStorage) MarkStatementComplete(ctx context.Context, id string) error {
	stats, err := s.GetStatementStats(ctx, id)
	if err != nil {
		return err
	}
	if stats.Categorized < stats.Total {
		return fmt.Errorf("%w: %d of %d categorized", common.ErrStatementIncomplete, stats.Categorized, stats.Total)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE statements SET status = ? WHERE id = ?`,
		string(model.StatementCompleted), id)
	if err != nil {
		return fmt.Errorf("failed to mark statement complete: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("statement %s: %w", id, common.ErrNotFound)
	}
	return nil
}
