package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/statementworks/recon/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidStatement   = errors.New("invalid statement")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidPattern     = errors.New("invalid pattern")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateStatement validates a statement.
func validateStatement(stmt *model.Statement) error {
	if stmt == nil {
		return fmt.Errorf("%w: statement", ErrNilParameter)
	}
	if stmt.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidStatement)
	}
	if stmt.Bank == "" {
		return fmt.Errorf("%w: missing bank", ErrInvalidStatement)
	}
	if stmt.Currency == "" {
		return fmt.Errorf("%w: missing currency", ErrInvalidStatement)
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.StatementID == "" {
		return fmt.Errorf("%w: missing statement ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.Description == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidTransaction)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i, txn := range transactions {
		if err := validateTransaction(&txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validatePattern validates a description pattern.
func validatePattern(p *model.DescriptionPattern) error {
	if p == nil {
		return fmt.Errorf("%w: pattern", ErrNilParameter)
	}
	if p.NormalizedKey == "" {
		return fmt.Errorf("%w: missing normalized key", ErrInvalidPattern)
	}
	if p.Type == "" {
		return fmt.Errorf("%w: missing type", ErrInvalidPattern)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("%w: confidence out of range", ErrInvalidPattern)
	}
	return nil
}
