// Package query filters, searches and sorts a destination collection.
package query

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"wanderlist/internal/model"
)

// SortKey selects the result ordering.
type SortKey string

const (
	SortNameAsc    SortKey = "name-asc"
	SortNameDesc   SortKey = "name-desc"
	SortRatingDesc SortKey = "rating-desc"
	SortRatingAsc  SortKey = "rating-asc"
	SortDateDesc   SortKey = "date-desc"
	SortDateAsc    SortKey = "date-asc"

	DefaultSort = SortDateDesc
)

var sortLabels = map[SortKey]string{
	SortNameAsc:    "Name (A-Z)",
	SortNameDesc:   "Name (Z-A)",
	SortRatingDesc: "Rating (High-Low)",
	SortRatingAsc:  "Rating (Low-High)",
	SortDateDesc:   "Newest First",
	SortDateAsc:    "Oldest First",
}

// SortKeys returns the known sort keys in menu order.
func SortKeys() []SortKey {
	return []SortKey{SortDateDesc, SortDateAsc, SortNameAsc, SortNameDesc, SortRatingDesc, SortRatingAsc}
}

// ParseSortKey reports whether s names a known sort key.
func ParseSortKey(s string) (SortKey, bool) {
	k := SortKey(s)
	_, ok := sortLabels[k]
	return k, ok
}

// Label is the human readable name of k.
func (k SortKey) Label() string {
	if l, ok := sortLabels[k]; ok {
		return l
	}
	return string(k)
}

// Categories returns the category filter choices, All first.
func Categories() []string {
	return append([]string{model.CategoryAll}, model.Categories()...)
}

// Options describes one query.
type Options struct {
	SearchText string
	Category   string // empty means All
	Sort       SortKey
}

// Run returns the destinations matching opts in the requested order. The
// input slice is never modified. An unknown sort key keeps collection order.
func Run(collection []model.Destination, opts Options) []model.Destination {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(opts.SearchText))

	out := make([]model.Destination, 0, len(collection))
	for _, d := range collection {
		if needle != "" && !matchesSearch(fold, d, needle) {
			continue
		}
		if opts.Category != "" && opts.Category != model.CategoryAll && d.Category != opts.Category {
			continue
		}
		out = append(out, d)
	}

	if less := comparator(opts.Sort, out); less != nil {
		sort.SliceStable(out, less)
	}
	return out
}

func matchesSearch(fold cases.Caser, d model.Destination, needle string) bool {
	if strings.Contains(fold.String(d.Name), needle) {
		return true
	}
	if d.Notes != "" && strings.Contains(fold.String(d.Notes), needle) {
		return true
	}
	return strings.Contains(fold.String(d.Category), needle)
}

func comparator(key SortKey, s []model.Destination) func(i, j int) bool {
	switch key {
	case SortNameAsc, SortNameDesc:
		c := collate.New(language.English)
		if key == SortNameAsc {
			return func(i, j int) bool { return c.CompareString(s[i].Name, s[j].Name) < 0 }
		}
		return func(i, j int) bool { return c.CompareString(s[i].Name, s[j].Name) > 0 }
	case SortRatingAsc:
		return func(i, j int) bool { return s[i].Rating < s[j].Rating }
	case SortRatingDesc:
		return func(i, j int) bool { return s[i].Rating > s[j].Rating }
	case SortDateAsc:
		return func(i, j int) bool { return s[i].CreatedAt < s[j].CreatedAt }
	case SortDateDesc:
		return func(i, j int) bool { return s[i].CreatedAt > s[j].CreatedAt }
	default:
		return nil
	}
}
