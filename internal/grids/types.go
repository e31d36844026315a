package grids

import (
	"context"
	"io"
	"maps"
	"slices"

	"github.com/leapstack-labs/admingrid/internal/store"
	"github.com/leapstack-labs/admingrid/pkg/datatable"
)

// Resource is a grid with its record type erased, as surfaces drive it.
type Resource interface {
	Name() string
	Title() string
	Mode() Mode

	View() datatable.View
	State() datatable.State
	Query() store.GridQuery
	Refresh(ctx context.Context) error

	ToggleSort(columnID string) error
	SetColumnFilter(columnID string, value datatable.FilterValue) error
	ClearColumnFilters()
	Search(ctx context.Context, q string) error
	SetGlobalFilter(q string)
	GlobalFilter() string

	SetPageIndex(pageIndex int) error
	SetPageSize(pageSize int) error
	NextPage() error
	PreviousPage() error
	FirstPage() error
	LastPage() error

	ToggleRowSelected(rowID string) error
	ToggleAllPageRowsSelected(selected bool) error
	ClearSelection()
	ToggleExpanded(rowID string) error
	ToggleColumnVisibility(columnID string) error
	ResizeColumn(columnID string, width int) (int, error)

	RunAction(ctx context.Context, rowID string, index int) error
	Export(ctx context.Context, w io.Writer) (datatable.ExportResult, error)
	Records(ctx context.Context) (Records, error)
	Close()
}

// RecordColumn is one column of a Records dump.
type RecordColumn struct {
	ID    string
	Label string
}

// Records is a grid's export rows, rendered for output formats other than
// CSV. Text holds display strings; Values holds the raw accessor values.
type Records struct {
	Columns []RecordColumn
	Text    [][]string
	Values  [][]any
}

// Maps returns one map per row keyed by column id.
func (r Records) Maps() []map[string]any {
	out := make([]map[string]any, len(r.Values))
	for i, row := range r.Values {
		m := make(map[string]any, len(r.Columns))
		for j, c := range r.Columns {
			m[c.ID] = row[j]
		}
		out[i] = m
	}
	return out
}

// Labels returns the column labels.
func (r Records) Labels() []string {
	out := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		out[i] = c.Label
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
