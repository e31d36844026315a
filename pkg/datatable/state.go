package datatable

import (
	"maps"
	"slices"
	"time"
)

// SortDirection is the direction of one column's sort.
type SortDirection int

const (
	SortNone SortDirection = iota
	SortAscending
	SortDescending
)

// String returns the string representation of a SortDirection.
func (d SortDirection) String() string {
	switch d {
	case SortAscending:
		return "asc"
	case SortDescending:
		return "desc"
	default:
		return "none"
	}
}

// SortDirective sorts by one column.
type SortDirective struct {
	ColumnID string `json:"id"`
	Desc     bool   `json:"desc"`
}

// SortingState is the ordered list of active sorts; earlier entries take precedence.
type SortingState []SortDirective

// Direction reports how a column is sorted and its position in the list (-1 if unsorted).
func (s SortingState) Direction(columnID string) (SortDirection, int) {
	for i, d := range s {
		if d.ColumnID == columnID {
			if d.Desc {
				return SortDescending, i
			}
			return SortAscending, i
		}
	}
	return SortNone, -1
}

// FilterValue is the value of one column filter. Only the fields matching the
// column's FilterKind are read.
type FilterValue struct {
	// Text is the FilterText needle.
	Text string `json:"text,omitempty"`
	// Equals is the FilterSelect option value.
	Equals string `json:"equals,omitempty"`
	// From and To bound FilterDate inclusively; zero means open.
	From time.Time `json:"from,omitzero"`
	To   time.Time `json:"to,omitzero"`
	// Min and Max bound FilterNumber inclusively; nil means open.
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// IsZero reports whether the filter matches everything.
func (v FilterValue) IsZero() bool {
	return v.Text == "" && v.Equals == "" && v.From.IsZero() && v.To.IsZero() && v.Min == nil && v.Max == nil
}

// TextFilter builds a FilterText value.
func TextFilter(s string) FilterValue { return FilterValue{Text: s} }

// SelectFilter builds a FilterSelect value.
func SelectFilter(v string) FilterValue { return FilterValue{Equals: v} }

// DateFilter builds a FilterDate value.
func DateFilter(from, to time.Time) FilterValue { return FilterValue{From: from, To: to} }

// NumberFilter builds a FilterNumber value.
func NumberFilter(minimum, maximum *float64) FilterValue {
	return FilterValue{Min: minimum, Max: maximum}
}

// ColumnFilters maps column ids to filter values.
type ColumnFilters map[string]FilterValue

// VisibilityState maps column ids to visibility; absent ids are visible.
type VisibilityState map[string]bool

// RowSelectionState maps row ids to selection; only true entries are kept.
type RowSelectionState map[string]bool

// ExpandedState maps row ids to expansion; only true entries are kept.
type ExpandedState map[string]bool

// PaginationState is the page cursor.
type PaginationState struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
}

// State is a snapshot of every interactive concern. Callers persist it across
// navigations and feed it back through Options.Initial.
type State struct {
	Sorting      SortingState      `json:"sorting,omitempty"`
	Filters      ColumnFilters     `json:"filters,omitempty"`
	Visibility   VisibilityState   `json:"visibility,omitempty"`
	RowSelection RowSelectionState `json:"rowSelection,omitempty"`
	Expanded     ExpandedState     `json:"expanded,omitempty"`
	Pagination   PaginationState   `json:"pagination"`
	GlobalFilter string            `json:"globalFilter,omitempty"`
	ColumnSizes  map[string]int    `json:"columnSizes,omitempty"`
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	s.Sorting = slices.Clone(s.Sorting)
	s.Filters = maps.Clone(s.Filters)
	s.Visibility = maps.Clone(s.Visibility)
	s.RowSelection = maps.Clone(s.RowSelection)
	s.Expanded = maps.Clone(s.Expanded)
	s.ColumnSizes = maps.Clone(s.ColumnSizes)
	return s
}

// setFlag copies m and sets or clears key.
func setFlag[M ~map[string]bool](m M, key string, on bool) M {
	next := maps.Clone(m)
	if next == nil {
		next = make(M)
	}
	if on {
		next[key] = true
	} else {
		delete(next, key)
	}
	return next
}
