package components

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/admingrid/internal/grids"
	"github.com/leapstack-labs/admingrid/pkg/datatable"
)

var jsQuote = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// GridID is the element id grid patches replace.
const GridID = "grid"

// SearchSignal holds the search box value.
const SearchSignal = "search"

// FilterSignal names the signal of a text or select filter.
func FilterSignal(columnID string) string { return "f_" + columnID }

// FilterFromSignal names the lower bound signal of a date or number filter.
func FilterFromSignal(columnID string) string { return "f_" + columnID + "_from" }

// FilterToSignal names the upper bound signal of a date or number filter.
func FilterToSignal(columnID string) string { return "f_" + columnID + "_to" }

// GridData is what Grid renders.
type GridData struct {
	Resource       string
	View           datatable.View
	MultiSort      bool
	SearchDebounce time.Duration
}

func debounce(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return fmt.Sprintf("__debounce.%dms", d.Milliseconds())
}

// searchAttrs carries the input handler, whose name holds the debounce.
func searchAttrs(d GridData) templ.Attributes {
	return templ.Attributes{"data-on:input" + debounce(d.SearchDebounce): post(Path(d.Resource, "search"))}
}

func toggleAttrs(resource string, c datatable.ColumnToggle) templ.Attributes {
	if !c.CanHide {
		return templ.Attributes{}
	}
	return templ.Attributes{"data-on:change": post(Path(resource, "columns", c.ColumnID))}
}

func exportLabel(v datatable.View) string {
	if v.SelectedCount > 0 {
		return fmt.Sprintf("Export %d selected", v.SelectedCount)
	}
	return "Export CSV"
}

func pageMarkAttrs(v datatable.View) templ.Attributes {
	if v.PageSelection == datatable.MarkSome {
		return templ.Attributes{"class": "some"}
	}
	return templ.Attributes{}
}

func headerAttrs(resource string, h datatable.HeaderCell) templ.Attributes {
	attrs := templ.Attributes{}
	if h.Width > 0 {
		attrs["style"] = fmt.Sprintf("width: %dch", h.Width)
	}
	switch h.Sort {
	case datatable.SortAscending:
		attrs["aria-sort"] = "ascending"
	case datatable.SortDescending:
		attrs["aria-sort"] = "descending"
	}
	if h.Resizable {
		attrs["class"] = "resizable"
		attrs["data-on:mouseup"] = fmt.Sprintf("@post('%s?w=' + Math.round(el.offsetWidth / 8))", Path(resource, "resize", h.ColumnID))
	}
	return attrs
}

func hasFilters(hs []datatable.HeaderCell) bool {
	for _, h := range hs {
		if h.Kind == datatable.CellData && h.Filter != datatable.FilterNone {
			return true
		}
	}
	return false
}

// rangeBound is one input of a date or number range filter.
type rangeBound struct {
	kind, signal, value, label string
}

func rangeBounds(h datatable.HeaderCell) []rangeBound {
	kind := "date"
	if h.Filter == datatable.FilterNumber {
		kind = "number"
	}
	from, to := grids.SplitRange(grids.FormatFilter(h.Filter, h.FilterValue))
	return []rangeBound{
		{kind: kind, signal: FilterFromSignal(h.ColumnID), value: from, label: "from"},
		{kind: kind, signal: FilterToSignal(h.ColumnID), value: to, label: "to"},
	}
}

func rowAttrs(r datatable.ViewRow) templ.Attributes {
	attrs := templ.Attributes{}
	if r.Selected {
		attrs["class"] = "selected"
	}
	if r.Depth > 0 {
		attrs["data-depth"] = strconv.Itoa(r.Depth)
	}
	return attrs
}

func cellAttrs(r datatable.ViewRow) templ.Attributes {
	if r.Depth == 0 {
		return templ.Attributes{}
	}
	return templ.Attributes{"style": fmt.Sprintf("padding-left: %dch", 1+2*r.Depth)}
}

func expandMark(r datatable.ViewRow) string {
	if r.Expanded {
		return "▾"
	}
	return "▸"
}

func expandLabel(r datatable.ViewRow) string {
	if r.Expanded {
		return "Collapse"
	}
	return "Expand"
}

// actionAttrs styles a row action button. Destructive actions ask first.
func actionAttrs(resource, rowID string, a datatable.ActionButton) templ.Attributes {
	click := post(Path(resource, "action", rowID, strconv.Itoa(a.Index)))
	if a.Variant == datatable.VariantDestructive {
		click = fmt.Sprintf("confirm('%s?') && %s", jsQuote.Replace(a.Label), click)
	}
	return templ.Attributes{
		"class":         "action " + a.Variant.String(),
		"data-on:click": click,
	}
}

func actionText(a datatable.ActionButton) string {
	if a.Icon != "" {
		return a.Icon + " " + a.Label
	}
	return a.Label
}

func pageSizeAction(resource string) string {
	return fmt.Sprintf("@post('%s/' + evt.target.value)", Path(resource, "size"))
}

func toastAttrs(kind string) templ.Attributes {
	return templ.Attributes{"class": "toast " + kind}
}
