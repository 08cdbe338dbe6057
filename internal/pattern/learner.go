package pattern

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/statementworks/recon/internal/model"
	"github.com/statementworks/recon/internal/reconcile"
	"github.com/statementworks/recon/internal/service"
)

// Learning parameters. Confidence starts conservative and moves with user
// decisions: confirmations nudge it up toward the cap, rejections decay it
// until the pattern deactivates.
const (
	learnedBaseConfidence = 0.70
	bulkBaseConfidence    = 0.80
	confirmBoost          = 0.02
	maxConfidence         = 0.99
	rejectDecay           = 0.8
	deactivateBelow       = 0.30
	minGroupSize          = 2
)

// Ensure Learner implements PatternLearner.
var _ PatternLearner = (*Learner)(nil)

// Learner derives and maintains description patterns in storage.
type Learner struct {
	store service.Storage
}

// NewLearner creates a pattern learner backed by the given storage.
func NewLearner(store service.Storage) *Learner {
	return &Learner{store: store}
}

// classificationKey is the tuple a group must agree on before it is worth
// learning as a pattern.
type classificationKey struct {
	Type          model.TransactionType
	CategoryID    string
	SubCategoryID string
	CustomerID    string
	CurrencyPair  string
}

// LearnFromTransactions derives patterns from a statement's classified rows.
// Rows are grouped by normalized description; a group yields a pattern when
// at least two completed rows carry the exact same classification. Returns
// the number of newly created patterns.
func (l *Learner) LearnFromTransactions(ctx context.Context, txns []model.Transaction) (int, error) {
	type group struct {
		sample model.Transaction
		count  int
		mixed  bool
	}

	groups := make(map[string]*group)
	keys := make(map[string]classificationKey)

	for _, txn := range txns {
		if reconcile.Status(txn) != model.StatusCompleted {
			continue
		}
		normKey := reconcile.Normalize(txn.Description)
		if normKey == "" {
			continue
		}

		ck := classificationKey{
			Type:          txn.Type,
			CategoryID:    txn.CategoryID,
			SubCategoryID: txn.SubCategoryID,
			CustomerID:    txn.CustomerID,
			CurrencyPair:  txn.CurrencyPair,
		}

		g, ok := groups[normKey]
		if !ok {
			groups[normKey] = &group{sample: txn, count: 1}
			keys[normKey] = ck
			continue
		}
		if keys[normKey] != ck {
			g.mixed = true
			continue
		}
		g.count++
	}

	created := 0
	for normKey, g := range groups {
		if g.mixed || g.count < minGroupSize {
			continue
		}

		isNew, err := l.upsert(ctx, normKey, g.sample, model.PatternSourceLearned, learnedBaseConfidence)
		if err != nil {
			return created, fmt.Errorf("failed to learn pattern for %q: %w", normKey, err)
		}
		if isNew {
			created++
		}
	}

	if created > 0 {
		slog.Info("Learned new description patterns", "count", created)
	}

	return created, nil
}

// LearnFromTransaction persists one classified transaction as a pattern,
// typically during a bulk apply with the learn flag set.
func (l *Learner) LearnFromTransaction(ctx context.Context, txn model.Transaction, source model.PatternSource) (*model.DescriptionPattern, error) {
	if reconcile.Status(txn) != model.StatusCompleted {
		return nil, fmt.Errorf("cannot learn from an incompletely classified transaction %s", txn.ID)
	}

	normKey := reconcile.Normalize(txn.Description)
	if normKey == "" {
		return nil, fmt.Errorf("transaction %s normalizes to an empty key", txn.ID)
	}

	confidence := learnedBaseConfidence
	if source == model.PatternSourceBulk {
		confidence = bulkBaseConfidence
	}

	if _, err := l.upsert(ctx, normKey, txn, source, confidence); err != nil {
		return nil, err
	}

	return l.store.GetPatternByKey(ctx, normKey)
}

// upsert creates a pattern for the key or refreshes an existing one with the
// transaction's classification. Reports whether a new pattern was created.
func (l *Learner) upsert(ctx context.Context, normKey string, txn model.Transaction, source model.PatternSource, confidence float64) (bool, error) {
	existing, err := l.store.GetPatternByKey(ctx, normKey)
	if err != nil {
		return false, err
	}

	if existing == nil {
		p := &model.DescriptionPattern{
			NormalizedKey: normKey,
			Type:          txn.Type,
			CategoryID:    txn.CategoryID,
			SubCategoryID: txn.SubCategoryID,
			CustomerID:    txn.CustomerID,
			CurrencyPair:  txn.CurrencyPair,
			Source:        source,
			Confidence:    confidence,
			IsActive:      true,
		}
		if err := l.store.CreatePattern(ctx, p); err != nil {
			return false, err
		}
		return true, nil
	}

	existing.Type = txn.Type
	existing.CategoryID = txn.CategoryID
	existing.SubCategoryID = txn.SubCategoryID
	existing.CustomerID = txn.CustomerID
	existing.CurrencyPair = txn.CurrencyPair
	existing.IsActive = true
	if confidence > existing.Confidence {
		existing.Confidence = confidence
	}

	return false, l.store.UpdatePattern(ctx, existing)
}

// RecordConfirmation strengthens a pattern after the user confirmed a match.
func (l *Learner) RecordConfirmation(ctx context.Context, patternID int64) error {
	p, err := l.store.GetPattern(ctx, patternID)
	if err != nil {
		return err
	}

	p.ConfirmCount++
	p.Confidence += confirmBoost
	if p.Confidence > maxConfidence {
		p.Confidence = maxConfidence
	}

	return l.store.UpdatePattern(ctx, p)
}

// RecordRejection weakens a pattern after the user rejected a match. A
// pattern whose confidence decays below the floor is deactivated.
func (l *Learner) RecordRejection(ctx context.Context, patternID int64) error {
	p, err := l.store.GetPattern(ctx, patternID)
	if err != nil {
		return err
	}

	p.RejectCount++
	p.Confidence *= rejectDecay
	if p.Confidence < deactivateBelow {
		p.IsActive = false
		slog.Info("Deactivated pattern after repeated rejections",
			"pattern_id", p.ID,
			"key", p.NormalizedKey)
	}

	return l.store.UpdatePattern(ctx, p)
}
