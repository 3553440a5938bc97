package model

import "strings"

// Rules maps description keywords to category names. It behaves like a map
// but iterates in insertion order; re-setting a keyword replaces its
// category without moving it.
type Rules struct {
	categories map[string]string
	keywords   []string
}

// NewRules returns an empty rule set.
func NewRules() *Rules {
	return &Rules{categories: make(map[string]string)}
}

// Set maps keyword to category. Empty keywords are ignored because they
// would match every description.
func (r *Rules) Set(keyword, category string) {
	if strings.TrimSpace(keyword) == "" {
		return
	}
	if r.categories == nil {
		r.categories = make(map[string]string)
	}
	if _, ok := r.categories[keyword]; !ok {
		r.keywords = append(r.keywords, keyword)
	}
	r.categories[keyword] = category
}

// Get returns the category mapped to keyword.
func (r *Rules) Get(keyword string) (string, bool) {
	c, ok := r.categories[keyword]
	return c, ok
}

// Delete removes keyword and reports whether it was present.
func (r *Rules) Delete(keyword string) bool {
	if _, ok := r.categories[keyword]; !ok {
		return false
	}
	delete(r.categories, keyword)
	for i, k := range r.keywords {
		if k == keyword {
			r.keywords = append(r.keywords[:i], r.keywords[i+1:]...)
			break
		}
	}
	return true
}

// Len is the number of rules.
func (r *Rules) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keywords)
}

// Each calls fn for every rule in insertion order.
func (r *Rules) Each(fn func(keyword, category string)) {
	if r == nil {
		return
	}
	for _, k := range r.keywords {
		fn(k, r.categories[k])
	}
}
