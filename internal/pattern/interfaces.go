// Package pattern provides pattern-based matching and learning over
// normalized transaction descriptions.
package pattern

import (
	"context"

	"github.com/statementworks/recon/internal/model"
)

// Confidence thresholds controlling how a matched pattern is surfaced.
const (
	// AutoApplyThreshold is the confidence at or above which a matched
	// pattern's classification is applied directly.
	AutoApplyThreshold = 0.90
	// SuggestThreshold is the confidence at or above which a matched
	// pattern is surfaced as a suggestion without being applied.
	SuggestThreshold = 0.50
)

// DescriptionMatcher evaluates transactions against learned patterns.
type DescriptionMatcher interface {
	// Match returns the best pattern for a transaction, or nil when none match.
	Match(ctx context.Context, txn model.Transaction) (*model.DescriptionPattern, error)
}

// PatternLearner persists new or strengthened patterns from user decisions.
type PatternLearner interface {
	// LearnFromTransactions derives patterns from classified statement rows.
	LearnFromTransactions(ctx context.Context, txns []model.Transaction) (int, error)
	// LearnFromTransaction persists one transaction's classification as a pattern.
	LearnFromTransaction(ctx context.Context, txn model.Transaction, source model.PatternSource) (*model.DescriptionPattern, error)
	// RecordConfirmation strengthens a pattern after a confirmed match.
	RecordConfirmation(ctx context.Context, patternID int64) error
	// RecordRejection weakens a pattern after a rejected match.
	RecordRejection(ctx context.Context, patternID int64) error
}
