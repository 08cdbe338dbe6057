package reconcile

import (
	"sort"

	"github.com/statementworks/recon/internal/model"
)

// Group collects the transactions that share one normalized description key.
type Group struct {
	Key      string
	Original string
	IDs      []string
	Count    int
}

// Quick-filter selection bounds.
const (
	minRecurringCount = 2
	maxQuickFilters   = 10
)

// GroupByDescription buckets transactions by normalized description.
// Original keeps the raw description of the first transaction seen for
// display purposes. Transactions whose descriptions normalize to the empty
// string are skipped.
func GroupByDescription(txns []model.Transaction) map[string]*Group {
	groups := make(map[string]*Group)

	for _, txn := range txns {
		key := Normalize(txn.Description)
		if key == "" {
			continue
		}

		g, ok := groups[key]
		if !ok {
			g = &Group{Key: key, Original: txn.Description}
			groups[key] = g
		}
		g.IDs = append(g.IDs, txn.ID)
		g.Count++
	}

	return groups
}

// QuickFilters ranks the recurring description groups: only groups with at
// least two occurrences qualify, sorted by count descending (key ascending on
// ties, for stable output), truncated to the top ten.
func QuickFilters(groups map[string]*Group) []Group {
	filtered := make([]Group, 0, len(groups))
	for _, g := range groups {
		if g.Count >= minRecurringCount {
			filtered = append(filtered, *g)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Count != filtered[j].Count {
			return filtered[i].Count > filtered[j].Count
		}
		return filtered[i].Key < filtered[j].Key
	})

	if len(filtered) > maxQuickFilters {
		filtered = filtered[:maxQuickFilters]
	}

	return filtered
}
