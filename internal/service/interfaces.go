// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/statementworks/recon/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Statement operations
	SaveStatement(ctx context.Context, statement *model.Statement, transactions []model.Transaction) error
	GetStatement(ctx context.Context, id string) (*model.Statement, error)
	GetLatestStatement(ctx context.Context, bank, currency string) (*model.Statement, error)
	ListStatements(ctx context.Context) ([]model.Statement, error)
	GetStatementStats(ctx context.Context, statementID string) (*StatementStats, error)
	MarkStatementComplete(ctx context.Context, id string) error

	// Transaction operations
	GetStatementTransactions(ctx context.Context, statementID string) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	UpdateTransactions(ctx context.Context, txns []model.Transaction) error

	// Pattern operations. GetPatternByKey returns (nil, nil) when no pattern
	// exists for the key; GetPattern returns common.ErrNotFound.
	CreatePattern(ctx context.Context, pattern *model.DescriptionPattern) error
	GetPattern(ctx context.Context, id int64) (*model.DescriptionPattern, error)
	GetPatternByKey(ctx context.Context, key string) (*model.DescriptionPattern, error)
	GetActivePatterns(ctx context.Context) ([]model.DescriptionPattern, error)
	UpdatePattern(ctx context.Context, pattern *model.DescriptionPattern) error
	DeletePattern(ctx context.Context, id int64) error
	IncrementPatternMatchCount(ctx context.Context, id int64) error

	// Lookup operations
	CreateCategory(ctx context.Context, name, parentID string) (*model.Category, error)
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*model.Category, error)
	CreateCustomer(ctx context.Context, name string) (*model.Customer, error)
	GetCustomers(ctx context.Context) ([]model.Customer, error)
	GetCustomerByID(ctx context.Context, id string) (*model.Customer, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// StatementStats summarizes categorization progress for one statement.
type StatementStats struct {
	Total       int `json:"total"`
	Categorized int `json:"categorized"`
	Pending     int `json:"pending"`
	AutoMatched int `json:"auto_matched"`
	Suggested   int `json:"suggested"`
}

// ImportResult reports what an ingestion run produced.
type ImportResult struct {
	Statement    *model.Statement
	Transactions []model.Transaction
	Imported     int
	Duplicates   int
	AutoMatched  int
	Suggested    int
}

// BulkResult reports the outcome of a bulk field apply.
type BulkResult struct {
	Updated        []model.Transaction
	LearnedPattern *model.DescriptionPattern
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
