package pattern

import (
	"context"
	"regexp"
	"strings"

	"github.com/statementworks/recon/internal/model"
	"github.com/statementworks/recon/internal/reconcile"
)

// Ensure Matcher implements DescriptionMatcher.
var _ DescriptionMatcher = (*Matcher)(nil)

// Matcher evaluates transactions against a fixed set of description patterns.
type Matcher struct {
	compiledRegex map[int64]*regexp.Regexp
	patterns      []model.DescriptionPattern
}

// NewMatcher creates a matcher over the given patterns. Regex patterns that
// fail to compile are skipped.
func NewMatcher(patterns []model.DescriptionPattern) *Matcher {
	m := &Matcher{
		patterns:      patterns,
		compiledRegex: make(map[int64]*regexp.Regexp),
	}

	for _, p := range patterns {
		if p.IsRegex && p.NormalizedKey != "" {
			if re, err := regexp.Compile("(?i)" + p.NormalizedKey); err == nil {
				m.compiledRegex[p.ID] = re
			}
		}
	}

	return m
}

// Match returns the best pattern for a transaction: the highest-confidence
// active pattern whose key matches the normalized description. Exact key
// matches win over regex matches at equal confidence.
func (m *Matcher) Match(_ context.Context, txn model.Transaction) (*model.DescriptionPattern, error) {
	key := reconcile.Normalize(txn.Description)
	if key == "" {
		return nil, nil
	}

	var best *model.DescriptionPattern
	bestExact := false

	for i := range m.patterns {
		p := &m.patterns[i]
		if !p.IsActive {
			continue
		}

		exact := m.matchesKey(p, key)
		if !exact && !m.matchesRegex(p, key) {
			continue
		}

		if best == nil ||
			p.Confidence > best.Confidence ||
			(p.Confidence == best.Confidence && exact && !bestExact) {
			best = p
			bestExact = exact
		}
	}

	return best, nil
}

func (m *Matcher) matchesKey(p *model.DescriptionPattern, key string) bool {
	if p.IsRegex {
		return false
	}
	return strings.EqualFold(p.NormalizedKey, key)
}

func (m *Matcher) matchesRegex(p *model.DescriptionPattern, key string) bool {
	re, ok := m.compiledRegex[p.ID]
	return ok && re.MatchString(key)
}

// Annotate applies a matched pattern to a transaction: at or above the
// auto-apply threshold the classification is written directly; at or above
// the suggest threshold it becomes a suggestion payload instead. Returns true
// when the pattern was auto-applied.
func Annotate(txn *model.Transaction, p *model.DescriptionPattern) bool {
	switch {
	case p.Confidence >= AutoApplyThreshold:
		txn.Type = p.Type
		txn.CategoryID = p.CategoryID
		txn.SubCategoryID = p.SubCategoryID
		txn.CustomerID = p.CustomerID
		txn.CurrencyPair = p.CurrencyPair
		txn.AutoMatched = true
		txn.MatchedPatternID = p.ID
		txn.Confidence = p.Confidence
		txn.SuggestedMatch = nil
		return true
	case p.Confidence >= SuggestThreshold:
		txn.SuggestedMatch = &model.SuggestedMatch{
			Type:          p.Type,
			CategoryID:    p.CategoryID,
			SubCategoryID: p.SubCategoryID,
			CustomerID:    p.CustomerID,
			CurrencyPair:  p.CurrencyPair,
			PatternID:     p.ID,
			Confidence:    p.Confidence,
			MatchCount:    p.MatchCount,
			ConfirmCount:  p.ConfirmCount,
		}
	}
	return false
}
