package reconcile

import (
	"fmt"
	"testing"

	"github.com/statementworks/recon/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txnWithDescription(id, description string) model.Transaction {
	return model.Transaction{ID: id, Description: description}
}

func TestGroupByDescription(t *testing.T) {
	txns := []model.Transaction{
		txnWithDescription("t1", "Netflix Subscription 01/01/2024"),
		txnWithDescription("t2", "Netflix Subscription 01/02/2024"),
		txnWithDescription("t3", "Office Rent for Jan 2024"),
	}

	groups := GroupByDescription(txns)

	require.Len(t, groups, 2)

	netflix := groups["Netflix Subscription"]
	require.NotNil(t, netflix)
	assert.Equal(t, 2, netflix.Count)
	assert.Equal(t, []string{"t1", "t2"}, netflix.IDs)
	assert.Equal(t, "Netflix Subscription 01/01/2024", netflix.Original)

	rent := groups["Office Rent"]
	require.NotNil(t, rent)
	assert.Equal(t, 1, rent.Count)
}

func TestGroupByDescriptionSkipsEmptyKeys(t *testing.T) {
	txns := []model.Transaction{
		txnWithDescription("t1", "01/01/2024"),
		txnWithDescription("t2", "  "),
	}

	assert.Empty(t, GroupByDescription(txns))
}

func TestQuickFiltersThreshold(t *testing.T) {
	txns := []model.Transaction{
		txnWithDescription("t1", "A"),
		txnWithDescription("t2", "A"),
		txnWithDescription("t3", "A"),
		txnWithDescription("t4", "B"),
		txnWithDescription("t5", "C"),
	}

	filters := QuickFilters(GroupByDescription(txns))

	require.Len(t, filters, 1)
	assert.Equal(t, "A", filters[0].Key)
	assert.Equal(t, 3, filters[0].Count)
}

func TestQuickFiltersOrderAndTruncation(t *testing.T) {
	var txns []model.Transaction
	// 12 recurring groups with counts 2..13; only the top 10 should survive.
	for i := 0; i < 12; i++ {
		desc := fmt.Sprintf("Vendor %02d", i)
		for j := 0; j < i+2; j++ {
			txns = append(txns, txnWithDescription(fmt.Sprintf("t%d-%d", i, j), desc))
		}
	}

	filters := QuickFilters(GroupByDescription(txns))

	require.Len(t, filters, 10)
	assert.Equal(t, "Vendor 11", filters[0].Key)
	assert.Equal(t, 13, filters[0].Count)
	for i := 1; i < len(filters); i++ {
		assert.GreaterOrEqual(t, filters[i-1].Count, filters[i].Count)
	}
	// Counts 2 and 3 (Vendor 00, Vendor 01) fall off the end.
	for _, f := range filters {
		assert.NotEqual(t, "Vendor 00", f.Key)
		assert.NotEqual(t, "Vendor 01", f.Key)
	}
}
