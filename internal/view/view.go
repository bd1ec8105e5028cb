// Package view computes the derived lead views: filtering, score sorting
// and pagination. All functions are pure; the store owns the data.
package view

import (
	"sort"
	"strings"

	"github.com/sells-group/lead-console/internal/model"
)

// StatusAll is the filter value that matches every status.
const StatusAll = "all"

// Filter keeps leads matching the search term (case-insensitive substring
// across name, company and email) and the status filter. Order is
// preserved; an empty search and "all" status return the input unchanged.
func Filter(leads []model.Lead, searchTerm, statusFilter string) []model.Lead {
	term := strings.ToLower(searchTerm)
	out := make([]model.Lead, 0, len(leads))
	for _, lead := range leads {
		if term != "" && !matchesTerm(lead, term) {
			continue
		}
		if statusFilter != StatusAll && string(lead.Status) != statusFilter {
			continue
		}
		out = append(out, lead)
	}
	return out
}

func matchesTerm(lead model.Lead, term string) bool {
	return strings.Contains(strings.ToLower(lead.Name), term) ||
		strings.Contains(strings.ToLower(lead.Company), term) ||
		strings.Contains(strings.ToLower(lead.Email), term)
}

// HasActiveFilters reports whether either filter deviates from the default.
func HasActiveFilters(searchTerm, statusFilter string) bool {
	return strings.TrimSpace(searchTerm) != "" || statusFilter != StatusAll
}

// SortOrder is the three-state score sort toggle.
type SortOrder int

const (
	SortNone SortOrder = iota // original order retained
	SortDesc
	SortAsc
)

// Next advances the toggle: none, descending, ascending, back to none.
func (o SortOrder) Next() SortOrder {
	switch o {
	case SortNone:
		return SortDesc
	case SortDesc:
		return SortAsc
	default:
		return SortNone
	}
}

func (o SortOrder) String() string {
	switch o {
	case SortDesc:
		return "desc"
	case SortAsc:
		return "asc"
	default:
		return "none"
	}
}

// SortByScore returns a copy sorted by score in the given order. The sort
// is stable: equal scores keep their prior relative order, and SortNone
// leaves the input order untouched.
func SortByScore(leads []model.Lead, order SortOrder) []model.Lead {
	out := make([]model.Lead, len(leads))
	copy(out, leads)
	switch order {
	case SortDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	case SortAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	}
	return out
}

// TruncateText shortens s to max runes, appending an ellipsis marker when
// anything was cut.
func TruncateText(s string, max int) string {
	if max <= 0 {
		max = 50
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
