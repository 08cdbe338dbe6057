package reconcile

import "github.com/statementworks/recon/internal/model"

// BulkAction captures a bulk-apply opportunity at the moment it is detected:
// the field/value just set on one transaction, and the other pending
// transactions whose descriptions normalize to the same key.
type BulkAction struct {
	Field  Field
	Value  string
	Key    string
	IDs    []string
	Source model.Transaction

	// SourceCurrencyPair proposes copying the source's currency pair along
	// with the triggering field. Empty when the source has none or when the
	// triggering field is the currency pair itself.
	SourceCurrencyPair string
}

// DetectOpportunity runs after a successful single-field update. It returns a
// BulkAction when at least two other pending transactions share the edited
// transaction's normalized description, and nil otherwise. Completed
// transactions and the edited transaction itself never qualify.
func DetectOpportunity(editedID string, field Field, value string, txns []model.Transaction) *BulkAction {
	var source *model.Transaction
	for i := range txns {
		if txns[i].ID == editedID {
			source = &txns[i]
			break
		}
	}
	if source == nil {
		return nil
	}

	key := Normalize(source.Description)
	if key == "" {
		return nil
	}

	var ids []string
	for i := range txns {
		txn := &txns[i]
		if txn.ID == editedID {
			continue
		}
		if Status(*txn) != model.StatusPending {
			continue
		}
		if Normalize(txn.Description) != key {
			continue
		}
		ids = append(ids, txn.ID)
	}

	if len(ids) < minRecurringCount {
		return nil
	}

	action := &BulkAction{
		Field:  field,
		Value:  value,
		Key:    key,
		IDs:    ids,
		Source: *source,
	}
	if field != FieldCurrencyPair && source.CurrencyPair != "" {
		action.SourceCurrencyPair = source.CurrencyPair
	}

	return action
}
