package grids

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/admingrid/pkg/datatable"
)

// Summary describes the page a view shows: "Rows 11-20 of 120 · Page 2 of 12 · 3 selected".
func Summary(v datatable.View) string {
	var parts []string
	if f := v.Footer; f != nil {
		if f.Total == 0 {
			parts = append(parts, "No rows")
		} else {
			parts = append(parts,
				fmt.Sprintf("Rows %d-%d of %d", f.From, f.To, f.Total),
				fmt.Sprintf("Page %d of %d", f.PageIndex+1, max(f.PageCount, 1)))
		}
	}
	if v.SelectionEnabled && v.SelectedCount > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", v.SelectedCount))
	}
	return strings.Join(parts, " · ")
}

// SortLabel renders a header's sort indicator: "▲", "▼", or "▲2" for the
// second key of a multi-column sort.
func SortLabel(h datatable.HeaderCell, multi bool) string {
	var mark string
	switch h.Sort {
	case datatable.SortAscending:
		mark = "▲"
	case datatable.SortDescending:
		mark = "▼"
	default:
		return ""
	}
	if multi {
		mark += fmt.Sprint(h.SortIndex + 1)
	}
	return mark
}
