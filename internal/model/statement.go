// Package model defines the core domain models used throughout the application.
package model

import "time"

// StatementStatus tracks the lifecycle of an imported statement.
type StatementStatus string

// Statement status constants.
const (
	StatementPending   StatementStatus = "pending"
	StatementCompleted StatementStatus = "completed"
)

// Statement represents one imported bank account period for one currency.
// It owns an ordered sequence of transactions; order follows the original
// statement order and is stable.
type Statement struct {
	PeriodStart    time.Time       `json:"period_start"`
	PeriodEnd      time.Time       `json:"period_end"`
	CreatedAt      time.Time       `json:"created_at"`
	ID             string          `json:"id"`
	Bank           string          `json:"bank"`
	Currency       string          `json:"currency"`
	AccountHolder  string          `json:"account_holder,omitempty"`
	IBAN           string          `json:"iban,omitempty"`
	AccountNo      string          `json:"account_no,omitempty"`
	Status         StatementStatus `json:"status"`
	OpeningBalance float64         `json:"opening_balance"`
	ClosingBalance float64         `json:"closing_balance"`
}
