package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// TransactionType classifies what kind of money movement a statement line is.
type TransactionType string

// Transaction type constants.
const (
	TypeCollection TransactionType = "collection"
	TypePayment    TransactionType = "payment"
	TypeRefund     TransactionType = "refund"
	TypeFXBuy      TransactionType = "fx_buy"
	TypeFXSell     TransactionType = "fx_sell"
	TypeTransfer   TransactionType = "transfer"
	TypeOther      TransactionType = "other"
)

// TransactionStatus indicates categorization completeness. It is always
// derived from the classification fields, never stored independently.
type TransactionStatus string

// Transaction status constants.
const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
)

// SuggestedMatch carries a pattern-proposed classification that has not been
// applied to the transaction yet. The user decides whether to apply it.
type SuggestedMatch struct {
	Type          TransactionType `json:"type"`
	CategoryID    string          `json:"category_id,omitempty"`
	SubCategoryID string          `json:"sub_category_id,omitempty"`
	CustomerID    string          `json:"customer_id,omitempty"`
	CurrencyPair  string          `json:"currency_pair,omitempty"`
	PatternID     int64           `json:"pattern_id"`
	Confidence    float64         `json:"confidence"`
	MatchCount    int             `json:"match_count"`
	ConfirmCount  int             `json:"confirm_count"`
}

// Transaction represents a single bank statement line item.
//
// A transaction carries at most one of two match annotations at a time:
// AutoMatched (a pattern was applied, awaiting confirmation) or
// SuggestedMatch (a pattern was proposed but not applied).
type Transaction struct {
	Date             time.Time       `json:"date"`
	SuggestedMatch   *SuggestedMatch `json:"suggested_match,omitempty"`
	ID               string          `json:"id"`
	StatementID      string          `json:"statement_id"`
	Description      string          `json:"description"`
	Hash             string          `json:"hash"`
	Type             TransactionType `json:"type"`
	CategoryID       string          `json:"category_id,omitempty"`
	SubCategoryID    string          `json:"sub_category_id,omitempty"`
	CustomerID       string          `json:"customer_id,omitempty"`
	CurrencyPair     string          `json:"currency_pair,omitempty"`
	Amount           float64         `json:"amount"`
	Balance          float64         `json:"balance"`
	Confidence       float64         `json:"confidence,omitempty"`
	MatchedPatternID int64           `json:"matched_pattern_id,omitempty"`
	Sequence         int             `json:"sequence"`
	AutoMatched      bool            `json:"auto_matched"`
	MatchConfirmed   bool            `json:"match_confirmed"`
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Description)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
