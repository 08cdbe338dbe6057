// Package engine orchestrates the reconciliation workflow: statement
// ingestion with pattern matching, classification updates with bulk
// propagation, match resolution, and statement completion with pattern
// learning.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/statementworks/recon/internal/common"
	"github.com/statementworks/recon/internal/model"
	"github.com/statementworks/recon/internal/pattern"
	"github.com/statementworks/recon/internal/reconcile"
	"github.com/statementworks/recon/internal/service"
)

// Engine coordinates storage, pattern matching, and the reconciliation core.
type Engine struct {
	store   service.Storage
	learner pattern.PatternLearner
}

// New creates a reconciliation engine over the given storage.
func New(store service.Storage) *Engine {
	return &Engine{
		store:   store,
		learner: pattern.NewLearner(store),
	}
}

// Transaction retrieves one transaction's current state.
func (e *Engine) Transaction(ctx context.Context, id string) (*model.Transaction, error) {
	return e.store.GetTransactionByID(ctx, id)
}

// ImportStatement ingests a parsed statement: transactions get identifiers
// and sequence numbers, in-set duplicates are dropped by hash, and every row
// is run through the active patterns before the batch is persisted.
func (e *Engine) ImportStatement(ctx context.Context, statement *model.Statement, txns []model.Transaction) (*service.ImportResult, error) {
	if len(txns) == 0 {
		return nil, fmt.Errorf("statement %s/%s: no transactions", statement.Bank, statement.Currency)
	}

	if statement.ID == "" {
		statement.ID = uuid.NewString()
	}
	if statement.Status == "" {
		statement.Status = model.StatementPending
	}
	if statement.CreatedAt.IsZero() {
		statement.CreatedAt = time.Now()
	}

	result := &service.ImportResult{Statement: statement}
	seen := make(map[string]bool)
	kept := make([]model.Transaction, 0, len(txns))

	for i := range txns {
		txn := txns[i]
		txn.StatementID = statement.ID
		txn.Sequence = len(kept)
		if txn.ID == "" {
			txn.ID = uuid.NewString()
		}
		txn.Hash = txn.GenerateHash()

		if seen[txn.Hash] {
			result.Duplicates++
			continue
		}
		seen[txn.Hash] = true
		kept = append(kept, txn)
	}

	patterns, err := e.store.GetActivePatterns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load patterns: %w", err)
	}
	matcher := pattern.NewMatcher(patterns)

	for i := range kept {
		p, err := matcher.Match(ctx, kept[i])
		if err != nil {
			return nil, fmt.Errorf("failed to match transaction %s: %w", kept[i].ID, err)
		}
		if p == nil {
			continue
		}

		if pattern.Annotate(&kept[i], p) {
			result.AutoMatched++
		} else if kept[i].SuggestedMatch != nil {
			result.Suggested++
		} else {
			continue
		}

		if err := e.store.IncrementPatternMatchCount(ctx, p.ID); err != nil {
			return nil, fmt.Errorf("failed to record pattern match: %w", err)
		}
	}

	// Concurrent imports can hit a busy database; the save is idempotent
	// until it commits, so retry it as a unit.
	retryErr := common.WithRetry(ctx, func() error {
		if saveErr := e.store.SaveStatement(ctx, statement, kept); saveErr != nil {
			return &common.RetryableError{Err: saveErr, Retryable: common.IsRetryable(saveErr)}
		}
		return nil
	}, service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
	})
	if retryErr != nil {
		return nil, fmt.Errorf("failed to save statement: %w", retryErr)
	}

	result.Transactions = kept
	result.Imported = len(kept)

	slog.Info("Imported statement",
		"statement_id", statement.ID,
		"bank", statement.Bank,
		"currency", statement.Currency,
		"imported", result.Imported,
		"duplicates", result.Duplicates,
		"auto_matched", result.AutoMatched,
		"suggested", result.Suggested)

	return result, nil
}

// UpdateField applies a single classification field change with its cascade,
// persists the result, and scans the statement for a bulk-apply opportunity.
func (e *Engine) UpdateField(ctx context.Context, id string, field reconcile.Field, value string) (*model.Transaction, *reconcile.BulkAction, error) {
	txn, err := e.store.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if err := reconcile.SetField(txn, field, value); err != nil {
		return nil, nil, err
	}
	if err := e.store.UpdateTransaction(ctx, txn); err != nil {
		return nil, nil, err
	}

	siblings, err := e.store.GetStatementTransactions(ctx, txn.StatementID)
	if err != nil {
		return nil, nil, err
	}

	return txn, reconcile.DetectOpportunity(id, field, value, siblings), nil
}

// BulkApply extends one classification decision to every transaction in the
// action. The writes happen atomically; with learn set, the source
// transaction's classification is also saved as a reusable pattern.
//
// Callers clear SourceCurrencyPair on the action when the user declined the
// currency-pair copy proposal.
func (e *Engine) BulkApply(ctx context.Context, action *reconcile.BulkAction, learn bool) (*service.BulkResult, error) {
	if action == nil || len(action.IDs) == 0 {
		return nil, fmt.Errorf("empty bulk action")
	}

	updated := make([]model.Transaction, 0, len(action.IDs))
	for _, id := range action.IDs {
		txn, err := e.store.GetTransactionByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := reconcile.SetField(txn, action.Field, action.Value); err != nil {
			return nil, err
		}
		if action.SourceCurrencyPair != "" {
			if err := reconcile.SetField(txn, reconcile.FieldCurrencyPair, action.SourceCurrencyPair); err != nil {
				return nil, err
			}
		}
		updated = append(updated, *txn)
	}

	if err := e.store.UpdateTransactions(ctx, updated); err != nil {
		return nil, err
	}

	result := &service.BulkResult{}
	for _, id := range action.IDs {
		txn, err := e.store.GetTransactionByID(ctx, id)
		if err != nil {
			return nil, err
		}
		result.Updated = append(result.Updated, *txn)
	}

	if learn {
		source, err := e.store.GetTransactionByID(ctx, action.Source.ID)
		if err != nil {
			return nil, err
		}
		p, err := e.learner.LearnFromTransaction(ctx, *source, model.PatternSourceBulk)
		if err != nil {
			slog.Warn("Bulk apply succeeded but pattern learning failed",
				"source_id", action.Source.ID,
				"error", err)
		} else {
			result.LearnedPattern = p
		}
	}

	return result, nil
}

// ConfirmMatch accepts an auto-applied classification and strengthens the
// pattern behind it.
func (e *Engine) ConfirmMatch(ctx context.Context, id string) (*model.Transaction, error) {
	txn, err := e.store.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reconcile.ConfirmMatch(txn)
	if err := e.store.UpdateTransaction(ctx, txn); err != nil {
		return nil, err
	}

	if txn.MatchedPatternID != 0 {
		if err := e.learner.RecordConfirmation(ctx, txn.MatchedPatternID); err != nil {
			slog.Warn("Failed to record pattern confirmation",
				"pattern_id", txn.MatchedPatternID,
				"error", err)
		}
	}
	return txn, nil
}

// RejectMatch discards an auto-applied classification and weakens the
// pattern behind it.
func (e *Engine) RejectMatch(ctx context.Context, id string) (*model.Transaction, error) {
	txn, err := e.store.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patternID := txn.MatchedPatternID
	if patternID == 0 && txn.SuggestedMatch != nil {
		patternID = txn.SuggestedMatch.PatternID
	}

	reconcile.RejectMatch(txn)
	if err := e.store.UpdateTransaction(ctx, txn); err != nil {
		return nil, err
	}

	if patternID != 0 {
		if err := e.learner.RecordRejection(ctx, patternID); err != nil {
			slog.Warn("Failed to record pattern rejection",
				"pattern_id", patternID,
				"error", err)
		}
	}
	return txn, nil
}

// ApplySuggestion promotes a suggestion into an applied classification. The
// whole change persists as one write.
func (e *Engine) ApplySuggestion(ctx context.Context, id string) (*model.Transaction, error) {
	txn, err := e.store.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reconcile.ApplySuggestion(txn)
	if err := e.store.UpdateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// CloseSuggestion dismisses a suggestion without applying it.
func (e *Engine) CloseSuggestion(ctx context.Context, id string) (*model.Transaction, error) {
	txn, err := e.store.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reconcile.CloseSuggestion(txn)
	if err := e.store.UpdateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// EditMatch demotes an auto-matched transaction to an editable state.
func (e *Engine) EditMatch(ctx context.Context, id string) (*model.Transaction, error) {
	txn, err := e.store.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reconcile.EditMatch(txn)
	if err := e.store.UpdateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// ResetTransaction clears a transaction's classification back to pending.
func (e *Engine) ResetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	txn, err := e.store.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reconcile.Reset(txn)
	if err := e.store.UpdateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// CompleteStatement marks a fully categorized statement as completed and
// learns patterns from its rows. Returns the number of newly learned
// patterns.
func (e *Engine) CompleteStatement(ctx context.Context, id string) (int, error) {
	txns, err := e.store.GetStatementTransactions(ctx, id)
	if err != nil {
		return 0, err
	}

	// MarkStatementComplete enforces the all-categorized precondition before
	// any pattern is learned.
	if err := e.store.MarkStatementComplete(ctx, id); err != nil {
		return 0, err
	}

	learned, err := e.learner.LearnFromTransactions(ctx, txns)
	if err != nil {
		return 0, fmt.Errorf("statement completed but pattern learning failed: %w", err)
	}

	return learned, nil
}

// QuickFilters returns the recurring-description quick filters for a
// statement.
func (e *Engine) QuickFilters(ctx context.Context, statementID string) ([]reconcile.Group, error) {
	txns, err := e.store.GetStatementTransactions(ctx, statementID)
	if err != nil {
		return nil, err
	}
	return reconcile.QuickFilters(reconcile.GroupByDescription(txns)), nil
}
