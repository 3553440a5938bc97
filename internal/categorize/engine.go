// Package categorize assigns categories to ledger entries from keyword rules.
package categorize

import (
	"strings"

	"github.com/Veraticus/spice-ledger/internal/model"
)

type rule struct {
	keyword  string
	category string
}

// Engine matches descriptions against keyword rules. A rule matches when
// its keyword occurs anywhere in the description, ignoring case. Rules are
// tried in order and the last match wins.
type Engine struct {
	rules []rule
}

// NewEngine prepares rules for matching. A nil rule set matches nothing.
func NewEngine(rules *model.Rules) *Engine {
	e := &Engine{}
	rules.Each(func(keyword, category string) {
		e.rules = append(e.rules, rule{keyword: strings.ToLower(keyword), category: category})
	})
	return e
}

// Len is the number of rules.
func (e *Engine) Len() int {
	return len(e.rules)
}

// Match returns the category for description, if any rule matches.
func (e *Engine) Match(description string) (string, bool) {
	if description == "" {
		return "", false
	}

	desc := strings.ToLower(description)
	var (
		category string
		matched  bool
	)
	for _, r := range e.rules {
		if strings.Contains(desc, r.keyword) {
			category = r.category
			matched = true
		}
	}
	return category, matched
}

// Apply overwrites the category of every matching entry in place and
// returns entries. Entries no rule matches keep their category.
func (e *Engine) Apply(entries []model.LedgerEntry) []model.LedgerEntry {
	if len(e.rules) == 0 {
		return entries
	}
	for i := range entries {
		if category, ok := e.Match(entries[i].Description); ok {
			entries[i].Category = category
		}
	}
	return entries
}

// Apply categorizes entries with rules.
func Apply(entries []model.LedgerEntry, rules *model.Rules) []model.LedgerEntry {
	return NewEngine(rules).Apply(entries)
}
