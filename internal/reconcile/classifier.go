package reconcile

import (
	"fmt"

	"github.com/statementworks/recon/internal/model"
)

// Field names a classification field that can be set on a transaction.
type Field string

// Classification field constants. Values match the storage column and API
// payload names.
const (
	FieldType         Field = "type"
	FieldCategory     Field = "category_id"
	FieldSubCategory  Field = "sub_category_id"
	FieldCustomer     Field = "customer_id"
	FieldCurrencyPair Field = "currency_pair"
)

// ErrUnknownField is returned when a field update names no known field.
var ErrUnknownField = fmt.Errorf("unknown classification field")

// RequiresCustomer reports whether the type needs a counterparty.
func RequiresCustomer(t model.TransactionType) bool {
	return t == model.TypeCollection
}

// RequiresCurrencyPair reports whether the type needs a currency-pair tag.
func RequiresCurrencyPair(t model.TransactionType) bool {
	return t == model.TypeFXBuy || t == model.TypeFXSell
}

// RequiresCategory reports whether the type needs a category. The empty type
// nominally requires one, but an empty type already fails the non-empty check
// in Status, so that branch is unreachable in practice.
func RequiresCategory(t model.TransactionType) bool {
	return t == model.TypePayment || t == model.TypeRefund || t == ""
}

// Status derives categorization completeness from the classification fields.
// It is recomputed on every mutation and never stored independently.
func Status(txn model.Transaction) model.TransactionStatus {
	if txn.Type == "" {
		return model.StatusPending
	}
	if RequiresCustomer(txn.Type) && txn.CustomerID == "" {
		return model.StatusPending
	}
	if RequiresCurrencyPair(txn.Type) && txn.CurrencyPair == "" {
		return model.StatusPending
	}
	if RequiresCategory(txn.Type) && txn.CategoryID == "" {
		return model.StatusPending
	}
	return model.StatusCompleted
}

// SetField applies one classification field mutation with its dependent-field
// cascade: changing the type invalidates fields the new type does not use,
// and changing the category always clears the sub-category.
func SetField(txn *model.Transaction, field Field, value string) error {
	switch field {
	case FieldType:
		newType := model.TransactionType(value)
		txn.Type = newType
		if !RequiresCustomer(newType) {
			txn.CustomerID = ""
		}
		if !RequiresCurrencyPair(newType) {
			txn.CurrencyPair = ""
		}
		if !RequiresCategory(newType) {
			txn.CategoryID = ""
			txn.SubCategoryID = ""
		}
	case FieldCategory:
		txn.CategoryID = value
		txn.SubCategoryID = ""
	case FieldSubCategory:
		txn.SubCategoryID = value
	case FieldCustomer:
		txn.CustomerID = value
	case FieldCurrencyPair:
		txn.CurrencyPair = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Reset clears the classification fields and all match metadata, returning
// the transaction to its initial pending state. Used for manual undo and for
// auto-match rejection.
func Reset(txn *model.Transaction) {
	txn.Type = ""
	txn.CategoryID = ""
	txn.SubCategoryID = ""
	txn.CustomerID = ""
	txn.CurrencyPair = ""
	txn.AutoMatched = false
	txn.MatchedPatternID = 0
	txn.Confidence = 0
	txn.SuggestedMatch = nil
	txn.MatchConfirmed = false
}
