// Package catalog implements the recipe list filter: one active category and a
// free-text search that narrows within it.
package catalog

import (
	"sort"
	"strings"

	"github.com/matprat/matprat/backend/internal/types"
)

// All is the category value that disables category filtering.
const All = "all"

type Filter struct {
	Category string `json:"category" form:"category"`
	Search   string `json:"search" form:"search"`
}

func NewFilter() *Filter {
	return &Filter{Category: All}
}

// SelectCategory activates a category and clears the search text.
func (f *Filter) SelectCategory(category string) {
	category = strings.TrimSpace(category)
	if category == "" {
		category = All
	}
	f.Category = category
	f.Search = ""
}

// SetSearch changes the search text and keeps the active category.
func (f *Filter) SetSearch(q string) {
	f.Search = q
}

// Apply returns the recipes visible under the filter, in input order.
func (f *Filter) Apply(recipes []types.RecipeSummary) []types.RecipeSummary {
	out := make([]types.RecipeSummary, 0, len(recipes))
	q := strings.ToLower(strings.TrimSpace(f.Search))
	for _, r := range recipes {
		if !f.matchesCategory(r) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(r.Name), q) &&
			!strings.Contains(strings.ToLower(r.Description), q) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (f *Filter) matchesCategory(r types.RecipeSummary) bool {
	if f.Category == "" || strings.EqualFold(f.Category, All) {
		return true
	}
	for _, c := range r.Categories {
		if strings.EqualFold(c, f.Category) {
			return true
		}
	}
	return false
}

// Categories lists the distinct labels used by recipes, sorted, for the
// filter buttons.
func Categories(recipes []types.RecipeSummary) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range recipes {
		for _, c := range r.Categories {
			key := strings.ToLower(c)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}
