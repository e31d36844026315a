// Package datatable provides a headless, generic data table: column and row action
// descriptors, sorting, filtering, pagination, selection, expansion, column
// visibility and CSV export over an arbitrary record type.
//
// The table never fetches or mutates data. It turns interaction into either local
// state changes or caller callbacks and produces a View that renderers (HTML,
// terminal, text) draw.
package datatable

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FilterKind selects the per-column filter editor and matching rule.
type FilterKind int

const (
	// FilterNone disables filtering on the column.
	FilterNone FilterKind = iota
	// FilterText matches a case-folded substring of the cell value.
	FilterText
	// FilterSelect matches one of FilterOptions exactly.
	FilterSelect
	// FilterDate matches time values inside an inclusive range.
	FilterDate
	// FilterNumber matches numeric values inside an inclusive range.
	FilterNumber
)

// String returns the string representation of a FilterKind.
func (k FilterKind) String() string {
	switch k {
	case FilterNone:
		return "none"
	case FilterText:
		return "text"
	case FilterSelect:
		return "select"
	case FilterDate:
		return "date"
	case FilterNumber:
		return "number"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// ParseFilterKind converts a name produced by FilterKind.String back to a kind.
func ParseFilterKind(s string) (FilterKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return FilterNone, nil
	case "text":
		return FilterText, nil
	case "select":
		return FilterSelect, nil
	case "date":
		return FilterDate, nil
	case "number", "numeric":
		return FilterNumber, nil
	default:
		return FilterNone, fmt.Errorf("unknown filter kind %q", s)
	}
}

// FilterOption is one selectable value of a FilterSelect column.
type FilterOption struct {
	Label string
	Value string
}

// Column describes one table column over records of type T.
//
// A column needs an Accessor or a Cell renderer; columns with neither are rejected
// when the table is built.
type Column[T any] struct {
	// ID identifies the column in state maps. Required and unique.
	ID string

	// Accessor reads the column value from a record. Sorting, filtering, global
	// search and export use it.
	Accessor func(T) any

	// AccessorKey names the record field Accessor reads. It is the header and
	// export fallback when Header is empty.
	AccessorKey string

	// Header is the plain header label.
	Header string

	// HeaderFunc computes the label when set; it takes precedence over Header.
	HeaderFunc func() string

	// Cell renders the display text. Defaults to the formatted accessor value.
	Cell func(T) string

	// ExportValue overrides the value written by the default CSV export.
	ExportValue func(T) any

	Sortable      bool
	Filter        FilterKind
	FilterOptions []FilterOption

	// DisableExport keeps the column out of the default CSV export.
	DisableExport bool

	// DisableHiding pins the column's visibility.
	DisableHiding bool

	// Size is the preferred width. MinSize and MaxSize bound ResizeColumn; zero
	// MaxSize means unbounded.
	Size    int
	MinSize int
	MaxSize int

	// Meta is handed to renderers untouched.
	Meta map[string]any
}

// Label returns the header text: HeaderFunc, Header, a title-cased AccessorKey, then ID.
func (c Column[T]) Label() string {
	if c.HeaderFunc != nil {
		return c.HeaderFunc()
	}
	if c.Header != "" {
		return c.Header
	}
	if c.AccessorKey != "" {
		return humanize(c.AccessorKey)
	}
	return c.ID
}

// exportHeader is the CSV header: the plain header, falling back to the id or accessor name.
func (c Column[T]) exportHeader() string {
	if c.Header != "" {
		return c.Header
	}
	if c.ID != "" {
		return c.ID
	}
	return c.AccessorKey
}

// Value returns the accessor value, or nil for computed columns.
func (c Column[T]) Value(row T) any {
	if c.Accessor == nil {
		return nil
	}
	return c.Accessor(row)
}

// Render returns the display text for a row.
func (c Column[T]) Render(row T) string {
	if c.Cell != nil {
		return c.Cell(row)
	}
	return FormatValue(c.Value(row))
}

func (c Column[T]) exportable() bool {
	return !c.DisableExport && (c.Accessor != nil || c.Cell != nil || c.ExportValue != nil)
}

func (c Column[T]) exportValue(row T) any {
	switch {
	case c.ExportValue != nil:
		return c.ExportValue(row)
	case c.Accessor != nil:
		return c.Accessor(row)
	default:
		return c.Cell(row)
	}
}

func (c Column[T]) validate() error {
	if c.Accessor == nil && c.Cell == nil {
		return fmt.Errorf("%w: %s", ErrColumnNotRenderable, c.ID)
	}
	if c.Filter == FilterSelect && len(c.FilterOptions) == 0 {
		return fmt.Errorf("column %s: select filter needs options", c.ID)
	}
	return nil
}

func humanize(key string) string {
	key = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(key)
	return cases.Title(language.English).String(key)
}

// validateColumns checks the descriptor list and indexes it by id.
func validateColumns[T any](cols []Column[T]) (map[string]int, error) {
	if len(cols) == 0 {
		return nil, ErrNoColumns
	}
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if strings.TrimSpace(c.ID) == "" {
			return nil, fmt.Errorf("column %d: empty id", i)
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		if _, dup := index[c.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, c.ID)
		}
		index[c.ID] = i
	}
	return index, nil
}
