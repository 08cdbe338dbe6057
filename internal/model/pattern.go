package model

import "time"

// PatternSource indicates how a description pattern came to exist.
type PatternSource string

const (
	// PatternSourceLearned indicates the pattern was derived from a completed statement.
	PatternSourceLearned PatternSource = "LEARNED"
	// PatternSourceBulk indicates the pattern was saved during a bulk apply.
	PatternSourceBulk PatternSource = "BULK"
	// PatternSourceManual indicates the pattern was created via CLI command.
	PatternSourceManual PatternSource = "MANUAL"
)

// DescriptionPattern maps a normalized transaction description to a learned
// classification. Patterns are matched against incoming statement lines and
// either auto-applied or surfaced as suggestions depending on confidence.
type DescriptionPattern struct {
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	NormalizedKey string          `json:"normalized_key"`
	Type          TransactionType `json:"type"`
	CategoryID    string          `json:"category_id,omitempty"`
	SubCategoryID string          `json:"sub_category_id,omitempty"`
	CustomerID    string          `json:"customer_id,omitempty"`
	CurrencyPair  string          `json:"currency_pair,omitempty"`
	Source        PatternSource   `json:"source"`
	ID            int64           `json:"id"`
	Confidence    float64         `json:"confidence"`
	MatchCount    int             `json:"match_count"`
	ConfirmCount  int             `json:"confirm_count"`
	RejectCount   int             `json:"reject_count"`
	IsActive      bool            `json:"is_active"`
	IsRegex       bool            `json:"is_regex"`
}
