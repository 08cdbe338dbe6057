package pattern

import (
	"context"
	"testing"

	"github.com/statementworks/recon/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_Match(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		patterns []model.DescriptionPattern
		txn      model.Transaction
		wantID   int64
	}{
		{
			name: "exact key match",
			patterns: []model.DescriptionPattern{
				{ID: 1, NormalizedKey: "Netflix Subscription", Confidence: 0.9, IsActive: true},
			},
			txn:    model.Transaction{Description: "Netflix Subscription 01/03/2024"},
			wantID: 1,
		},
		{
			name: "case insensitive key match",
			patterns: []model.DescriptionPattern{
				{ID: 1, NormalizedKey: "netflix subscription", Confidence: 0.9, IsActive: true},
			},
			txn:    model.Transaction{Description: "NETFLIX SUBSCRIPTION"},
			wantID: 1,
		},
		{
			name: "regex pattern match",
			patterns: []model.DescriptionPattern{
				{ID: 2, NormalizedKey: `.*cloud services.*`, IsRegex: true, Confidence: 0.8, IsActive: true},
			},
			txn:    model.Transaction{Description: "AWS Cloud Services 05/02/2024"},
			wantID: 2,
		},
		{
			name: "inactive pattern skipped",
			patterns: []model.DescriptionPattern{
				{ID: 1, NormalizedKey: "Netflix Subscription", Confidence: 0.9, IsActive: false},
			},
			txn:    model.Transaction{Description: "Netflix Subscription"},
			wantID: 0,
		},
		{
			name: "highest confidence wins",
			patterns: []model.DescriptionPattern{
				{ID: 1, NormalizedKey: `netflix.*`, IsRegex: true, Confidence: 0.6, IsActive: true},
				{ID: 2, NormalizedKey: "Netflix Subscription", Confidence: 0.9, IsActive: true},
			},
			txn:    model.Transaction{Description: "Netflix Subscription"},
			wantID: 2,
		},
		{
			name: "exact match preferred at equal confidence",
			patterns: []model.DescriptionPattern{
				{ID: 1, NormalizedKey: `netflix.*`, IsRegex: true, Confidence: 0.8, IsActive: true},
				{ID: 2, NormalizedKey: "Netflix Subscription", Confidence: 0.8, IsActive: true},
			},
			txn:    model.Transaction{Description: "Netflix Subscription"},
			wantID: 2,
		},
		{
			name:     "no patterns",
			patterns: nil,
			txn:      model.Transaction{Description: "anything"},
			wantID:   0,
		},
		{
			name: "empty description never matches",
			patterns: []model.DescriptionPattern{
				{ID: 1, NormalizedKey: "", Confidence: 0.9, IsActive: true},
			},
			txn:    model.Transaction{Description: "01/01/2024"},
			wantID: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(tt.patterns)
			got, err := m.Match(ctx, tt.txn)
			require.NoError(t, err)

			if tt.wantID == 0 {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestAnnotateAutoApply(t *testing.T) {
	txn := model.Transaction{Description: "Netflix Subscription"}
	p := &model.DescriptionPattern{
		ID:         4,
		Type:       model.TypePayment,
		CategoryID: "cat-1",
		Confidence: 0.95,
	}

	applied := Annotate(&txn, p)

	assert.True(t, applied)
	assert.True(t, txn.AutoMatched)
	assert.Equal(t, model.TypePayment, txn.Type)
	assert.Equal(t, "cat-1", txn.CategoryID)
	assert.Equal(t, int64(4), txn.MatchedPatternID)
	assert.InDelta(t, 0.95, txn.Confidence, 0.0001)
	assert.Nil(t, txn.SuggestedMatch)
}

func TestAnnotateSuggestion(t *testing.T) {
	txn := model.Transaction{Description: "Netflix Subscription"}
	p := &model.DescriptionPattern{
		ID:           4,
		Type:         model.TypePayment,
		CategoryID:   "cat-1",
		Confidence:   0.75,
		MatchCount:   6,
		ConfirmCount: 4,
	}

	applied := Annotate(&txn, p)

	assert.False(t, applied)
	assert.False(t, txn.AutoMatched)
	assert.Empty(t, txn.Type, "suggestion must not touch classification fields")
	require.NotNil(t, txn.SuggestedMatch)
	assert.Equal(t, model.TypePayment, txn.SuggestedMatch.Type)
	assert.Equal(t, int64(4), txn.SuggestedMatch.PatternID)
	assert.Equal(t, 6, txn.SuggestedMatch.MatchCount)
}

func TestAnnotateBelowThreshold(t *testing.T) {
	txn := model.Transaction{Description: "Netflix Subscription"}
	p := &model.DescriptionPattern{ID: 4, Confidence: 0.40}

	applied := Annotate(&txn, p)

	assert.False(t, applied)
	assert.Nil(t, txn.SuggestedMatch)
}
