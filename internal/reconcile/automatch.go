package reconcile

import "github.com/statementworks/recon/internal/model"

// ConfidenceTier bands a match confidence for display. The tiers never feed
// back into matching decisions.
type ConfidenceTier string

// Confidence tier constants.
const (
	TierHigh      ConfidenceTier = "high"
	TierSuggested ConfidenceTier = "suggested"
	TierLow       ConfidenceTier = "low"
)

// Tier boundaries.
const (
	highConfidence      = 0.90
	suggestedConfidence = 0.70
)

// TierFor bands a confidence score: >=0.90 high, >=0.70 suggested, else low.
func TierFor(confidence float64) ConfidenceTier {
	switch {
	case confidence >= highConfidence:
		return TierHigh
	case confidence >= suggestedConfidence:
		return TierSuggested
	default:
		return TierLow
	}
}

// ConfirmMatch accepts an auto-applied classification. The classification
// fields were already applied when the match was made, so only the
// confirmation state changes.
func ConfirmMatch(txn *model.Transaction) {
	txn.SuggestedMatch = nil
	txn.MatchConfirmed = true
}

// RejectMatch discards an auto-applied classification entirely, returning the
// transaction to a blank pending state.
func RejectMatch(txn *model.Transaction) {
	Reset(txn)
}

// ApplySuggestion copies the suggested classification onto the transaction
// and promotes it to an auto-matched state awaiting confirmation.
func ApplySuggestion(txn *model.Transaction) {
	s := txn.SuggestedMatch
	if s == nil {
		return
	}

	txn.Type = s.Type
	txn.CategoryID = s.CategoryID
	txn.SubCategoryID = s.SubCategoryID
	txn.CustomerID = s.CustomerID
	txn.CurrencyPair = s.CurrencyPair
	txn.AutoMatched = true
	txn.MatchedPatternID = s.PatternID
	txn.Confidence = s.Confidence
	txn.SuggestedMatch = nil
}

// CloseSuggestion dismisses a suggestion without applying it.
func CloseSuggestion(txn *model.Transaction) {
	txn.SuggestedMatch = nil
}

// EditMatch demotes an auto-matched transaction to an editable state without
// altering its field values, so the user can adjust the applied
// classification manually.
func EditMatch(txn *model.Transaction) {
	txn.AutoMatched = false
	txn.MatchConfirmed = true
}
