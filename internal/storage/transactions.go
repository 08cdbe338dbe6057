package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/statementworks/recon/internal/common"
	"github.com/statementworks/recon/internal/model"
)

const transactionColumns = `id, statement_id, hash, date, description, amount, balance, seq,
	type, category_id, sub_category_id, customer_id, currency_pair,
	auto_matched, matched_pattern_id, confidence, match_confirmed, suggested_match`

// insertTransactionTx inserts one transaction within an open database
// transaction, filling in the hash if missing.
func (s *SQLiteStorage) insertTransactionTx(ctx context.Context, tx *sql.Tx, txn *model.Transaction) error {
	if err := validateTransaction(txn); err != nil {
		return err
	}
	if txn.Hash == "" {
		txn.Hash = txn.GenerateHash()
	}

	suggested, err := marshalSuggestedMatch(txn.SuggestedMatch)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.StatementID, txn.Hash, txn.Date, txn.Description,
		txn.Amount, txn.Balance, txn.Sequence,
		string(txn.Type), txn.CategoryID, txn.SubCategoryID,
		txn.CustomerID, txn.CurrencyPair,
		txn.AutoMatched, txn.MatchedPatternID, txn.Confidence,
		txn.MatchConfirmed, suggested,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
	}
	return nil
}

func marshalSuggestedMatch(sm *model.SuggestedMatch) (sql.NullString, error) {
	if sm == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(sm)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal suggested match: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func scanTransaction(row interface{ Scan(...any) error }) (*model.Transaction, error) {
	var txn model.Transaction
	var txnType string
	var suggested sql.NullString

	err := row.Scan(
		&txn.ID, &txn.StatementID, &txn.Hash, &txn.Date, &txn.Description,
		&txn.Amount, &txn.Balance, &txn.Sequence,
		&txnType, &txn.CategoryID, &txn.SubCategoryID,
		&txn.CustomerID, &txn.CurrencyPair,
		&txn.AutoMatched, &txn.MatchedPatternID, &txn.Confidence,
		&txn.MatchConfirmed, &suggested,
	)
	if err != nil {
		return nil, err
	}

	txn.Type = model.TransactionType(txnType)
	if suggested.Valid && suggested.String != "" {
		var sm model.SuggestedMatch
		if err := json.Unmarshal([]byte(suggested.String), &sm); err != nil {
			return nil, fmt.Errorf("failed to unmarshal suggested match: %w", err)
		}
		txn.SuggestedMatch = &sm
	}
	return &txn, nil
}

// GetStatementTransactions returns a statement's transactions in original
// statement order.
func (s *SQLiteStorage) GetStatementTransactions(ctx context.Context, statementID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(statementID, "statementID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE statement_id = ? ORDER BY seq ASC`, statementID)
	if err != nil {
		return nil, fmt.Errorf("failed to get statement transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, *txn)
	}
	return txns, rows.Err()
}

// GetTransactionByID retrieves a single transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// updateTransactionTx writes a transaction's mutable fields within an open
// database transaction.
func (s *SQLiteStorage) updateTransactionTx(ctx context.Context, tx *sql.Tx, txn *model.Transaction) error {
	if err := validateTransaction(txn); err != nil {
		return err
	}

	suggested, err := marshalSuggestedMatch(txn.SuggestedMatch)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE transactions SET
			type = ?, category_id = ?, sub_category_id = ?,
			customer_id = ?, currency_pair = ?,
			auto_matched = ?, matched_pattern_id = ?, confidence = ?,
			match_confirmed = ?, suggested_match = ?
		WHERE id = ?`,
		string(txn.Type), txn.CategoryID, txn.SubCategoryID,
		txn.CustomerID, txn.CurrencyPair,
		txn.AutoMatched, txn.MatchedPatternID, txn.Confidence,
		txn.MatchConfirmed, suggested, txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", txn.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", txn.ID, common.ErrNotFound)
	}
	return nil
}

// UpdateTransaction persists a single transaction's classification state.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.updateTransactionTx(ctx, tx, txn); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateTransactions persists several transactions atomically: either every
// row is written or none are. Used by the bulk propagator.
func (s *SQLiteStorage) UpdateTransactions(ctx context.Context, txns []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(txns); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range txns {
		if err := s.updateTransactionTx(ctx, tx, &txns[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}
