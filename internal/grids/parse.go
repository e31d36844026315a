package grids

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/admingrid/pkg/datatable"
)

// ErrInvalidFilter is returned when a filter's text form cannot be parsed.
var ErrInvalidFilter = errors.New("invalid filter")

// RangeSeparator splits the bounds of date and number filters: "10..20",
// "2026-01-01..", "..5".
const RangeSeparator = ".."

var dateLayouts = []string{time.DateOnly, "2006-01-02 15:04", time.DateTime, time.RFC3339}

// ParseDate parses a filter date. Empty input is the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a date (want YYYY-MM-DD)", ErrInvalidFilter, s)
}

// ParseNumber parses a filter bound. Empty input is an open bound.
func ParseNumber(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidFilter, s)
	}
	return &f, nil
}

// ParseFilter parses the text form of a filter for a column of the given kind.
// Text and select filters take the value as is. Date and number filters take
// a single value or a range: "a..b", "a.." or "..b". Empty input clears.
func ParseFilter(kind datatable.FilterKind, raw string) (datatable.FilterValue, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return datatable.FilterValue{}, nil
	}
	switch kind {
	case datatable.FilterText:
		return datatable.TextFilter(raw), nil
	case datatable.FilterSelect:
		return datatable.SelectFilter(raw), nil
	case datatable.FilterDate:
		from, to, isRange := strings.Cut(raw, RangeSeparator)
		if !isRange {
			to = from
		}
		f, err := ParseDate(from)
		if err != nil {
			return datatable.FilterValue{}, err
		}
		t, err := ParseDate(to)
		if err != nil {
			return datatable.FilterValue{}, err
		}
		if !f.IsZero() && !t.IsZero() && t.Before(f) {
			return datatable.FilterValue{}, fmt.Errorf("%w: %s is before %s", ErrInvalidFilter, to, from)
		}
		return datatable.DateFilter(f, t), nil
	case datatable.FilterNumber:
		lo, hi, isRange := strings.Cut(raw, RangeSeparator)
		if !isRange {
			hi = lo
		}
		minimum, err := ParseNumber(lo)
		if err != nil {
			return datatable.FilterValue{}, err
		}
		maximum, err := ParseNumber(hi)
		if err != nil {
			return datatable.FilterValue{}, err
		}
		if minimum != nil && maximum != nil && *maximum < *minimum {
			return datatable.FilterValue{}, fmt.Errorf("%w: %s is below %s", ErrInvalidFilter, hi, lo)
		}
		return datatable.NumberFilter(minimum, maximum), nil
	default:
		return datatable.FilterValue{}, fmt.Errorf("%w: column is not filterable", ErrInvalidFilter)
	}
}

// FormatFilter is the inverse of ParseFilter.
func FormatFilter(kind datatable.FilterKind, v datatable.FilterValue) string {
	switch kind {
	case datatable.FilterText:
		return v.Text
	case datatable.FilterSelect:
		return v.Equals
	case datatable.FilterDate:
		from, to := formatDate(v.From), formatDate(v.To)
		if from == to {
			return from
		}
		return from + RangeSeparator + to
	case datatable.FilterNumber:
		lo, hi := formatNumber(v.Min), formatNumber(v.Max)
		if lo == hi {
			return lo
		}
		return lo + RangeSeparator + hi
	}
	return ""
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func formatNumber(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// Header returns the header of a visible data column.
func Header(v datatable.View, columnID string) (datatable.HeaderCell, bool) {
	for _, h := range v.Headers {
		if h.Kind == datatable.CellData && h.ColumnID == columnID {
			return h, true
		}
	}
	return datatable.HeaderCell{}, false
}

// ApplyFilter parses raw for the column and sets it on the grid.
func ApplyFilter(res Resource, columnID, raw string) error {
	h, ok := Header(res.View(), columnID)
	if !ok {
		return fmt.Errorf("%w: unknown column %q", ErrInvalidFilter, columnID)
	}
	v, err := ParseFilter(h.Filter, raw)
	if err != nil {
		return fmt.Errorf("%s: %w", columnID, err)
	}
	return res.SetColumnFilter(columnID, v)
}

// ParseSortSpec parses "column", "column:asc", "column:desc" or "-column".
func ParseSortSpec(spec string) (datatable.SortDirective, error) {
	spec = strings.TrimSpace(spec)
	d := datatable.SortDirective{ColumnID: spec}
	if rest, ok := strings.CutPrefix(spec, "-"); ok {
		d = datatable.SortDirective{ColumnID: rest, Desc: true}
	} else if col, dir, ok := strings.Cut(spec, ":"); ok {
		d.ColumnID = col
		switch strings.ToLower(dir) {
		case "asc":
		case "desc":
			d.Desc = true
		default:
			return d, fmt.Errorf("invalid sort direction %q", dir)
		}
	}
	if d.ColumnID == "" {
		return d, errors.New("empty sort column")
	}
	return d, nil
}

// ApplySort sorts the grid by one column in the given direction, toggling
// through the table's own sort cycle.
func ApplySort(res Resource, d datatable.SortDirective) error {
	h, ok := Header(res.View(), d.ColumnID)
	if !ok {
		return fmt.Errorf("unknown column %q", d.ColumnID)
	}
	if !h.Sortable {
		return fmt.Errorf("column %q is not sortable", d.ColumnID)
	}
	want := datatable.SortAscending
	if d.Desc {
		want = datatable.SortDescending
	}
	// The cycle has three states; two toggles reach any of them.
	for range 3 {
		dir, _ := res.State().Sorting.Direction(d.ColumnID)
		if dir == want {
			return nil
		}
		if err := res.ToggleSort(d.ColumnID); err != nil {
			return err
		}
	}
	return fmt.Errorf("column %q did not reach %s sort", d.ColumnID, want)
}

// SplitRange splits a formatted range into its bounds. A single value is
// both bounds.
func SplitRange(raw string) (from, to string) {
	if lo, hi, ok := strings.Cut(raw, RangeSeparator); ok {
		return lo, hi
	}
	return raw, raw
}

// JoinRange is the inverse of SplitRange; two empty bounds clear the filter.
func JoinRange(from, to string) string {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	switch {
	case from == "" && to == "":
		return ""
	case from == to:
		return from
	default:
		return from + RangeSeparator + to
	}
}
