package reconcile

import (
	"testing"

	"github.com/statementworks/recon/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		confidence float64
		want       ConfidenceTier
	}{
		{0.95, TierHigh},
		{0.90, TierHigh},
		{0.89, TierSuggested},
		{0.70, TierSuggested},
		{0.69, TierLow},
		{0, TierLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.confidence), "confidence %v", tt.confidence)
	}
}

func TestConfirmMatch(t *testing.T) {
	txn := model.Transaction{
		Type:             model.TypePayment,
		CategoryID:       "cat-1",
		AutoMatched:      true,
		MatchedPatternID: 3,
		Confidence:       0.95,
		SuggestedMatch:   &model.SuggestedMatch{PatternID: 3},
	}

	ConfirmMatch(&txn)

	assert.True(t, txn.MatchConfirmed)
	assert.Nil(t, txn.SuggestedMatch)
	// Classification fields stay as applied.
	assert.Equal(t, model.TypePayment, txn.Type)
	assert.Equal(t, "cat-1", txn.CategoryID)
	assert.True(t, txn.AutoMatched)
}

func TestRejectMatchResetsFully(t *testing.T) {
	txn := model.Transaction{
		Type:             model.TypeCollection,
		CategoryID:       "cat-2",
		CustomerID:       "cust-1",
		AutoMatched:      true,
		MatchedPatternID: 11,
		Confidence:       0.92,
		MatchConfirmed:   true,
		SuggestedMatch:   &model.SuggestedMatch{PatternID: 11},
	}

	RejectMatch(&txn)

	assert.Empty(t, txn.Type)
	assert.Empty(t, txn.CategoryID)
	assert.Empty(t, txn.SubCategoryID)
	assert.Empty(t, txn.CustomerID)
	assert.Empty(t, txn.CurrencyPair)
	assert.False(t, txn.AutoMatched)
	assert.Zero(t, txn.MatchedPatternID)
	assert.Zero(t, txn.Confidence)
	assert.Nil(t, txn.SuggestedMatch)
	assert.False(t, txn.MatchConfirmed)
	assert.Equal(t, model.StatusPending, Status(txn))
}

func TestApplySuggestion(t *testing.T) {
	txn := model.Transaction{
		Description: "Netflix Subscription 05/04/2024",
		SuggestedMatch: &model.SuggestedMatch{
			Type:          model.TypePayment,
			CategoryID:    "cat-7",
			SubCategoryID: "sub-2",
			PatternID:     19,
			Confidence:    0.75,
		},
	}

	ApplySuggestion(&txn)

	assert.Equal(t, model.TypePayment, txn.Type)
	assert.Equal(t, "cat-7", txn.CategoryID)
	assert.Equal(t, "sub-2", txn.SubCategoryID)
	assert.True(t, txn.AutoMatched)
	assert.Equal(t, int64(19), txn.MatchedPatternID)
	assert.InDelta(t, 0.75, txn.Confidence, 0.0001)
	assert.Nil(t, txn.SuggestedMatch)
	assert.Equal(t, model.StatusCompleted, Status(txn))
}

func TestApplySuggestionWithoutSuggestionIsNoop(t *testing.T) {
	txn := model.Transaction{Description: "x"}
	ApplySuggestion(&txn)
	require.False(t, txn.AutoMatched)
	assert.Empty(t, txn.Type)
}

func TestCloseSuggestion(t *testing.T) {
	txn := model.Transaction{SuggestedMatch: &model.SuggestedMatch{PatternID: 5}}
	CloseSuggestion(&txn)
	assert.Nil(t, txn.SuggestedMatch)
	assert.False(t, txn.AutoMatched)
}

func TestEditMatch(t *testing.T) {
	txn := model.Transaction{
		Type:        model.TypePayment,
		CategoryID:  "cat-1",
		AutoMatched: true,
		Confidence:  0.95,
	}

	EditMatch(&txn)

	assert.False(t, txn.AutoMatched)
	assert.True(t, txn.MatchConfirmed)
	// Field values stay put for manual adjustment.
	assert.Equal(t, model.TypePayment, txn.Type)
	assert.Equal(t, "cat-1", txn.CategoryID)
	assert.InDelta(t, 0.95, txn.Confidence, 0.0001)
}
