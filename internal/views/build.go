package views

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/admingrid/internal/starlark"
	"github.com/leapstack-labs/admingrid/pkg/datatable"
)

// Meta keys set on built columns.
const (
	MetaField  = "field"
	MetaFormat = "format"
)

// DateTimeLayout renders datetime columns.
const DateTimeLayout = "2006-01-02 15:04"

// BuildOptions controls how a view becomes columns.
type BuildOptions struct {
	// Env compiles computed columns. Defaults to starlark.NewEnv().
	Env *starlark.Env
	// Currency formats money columns. Defaults to USD.
	Currency string
	// Server limits sorting and filtering to queryable fields, since the
	// store rather than the table does the work.
	Server bool
	Logger *slog.Logger
}

// Columns is the result of building a view.
type Columns[T any] struct {
	Columns []datatable.Column[T]
	// Hidden holds the columns that start hidden.
	Hidden datatable.VisibilityState
	// Fields maps field column ids to record field names.
	Fields map[string]string
}

// Build turns a view into data table columns over records described by schema.
func Build[T any](v View, schema Schema[T], opts BuildOptions) (Columns[T], error) {
	if err := schema.validate(); err != nil {
		return Columns[T]{}, err
	}
	if opts.Env == nil {
		opts.Env = starlark.NewEnv()
	}
	if opts.Currency == "" {
		opts.Currency = "USD"
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	out := Columns[T]{Hidden: datatable.VisibilityState{}, Fields: map[string]string{}}
	for _, def := range v.Columns {
		var col datatable.Column[T]
		var err error
		if def.Expr != "" {
			col, err = computedColumn(def, schema, opts)
		} else {
			col, err = fieldColumn(def, schema, opts)
			out.Fields[col.ID] = def.Field
		}
		if err != nil {
			return Columns[T]{}, err
		}
		if def.Hidden {
			out.Hidden[col.ID] = false
		}
		out.Columns = append(out.Columns, col)
	}
	return out, nil
}

func baseColumn[T any](def ColumnDef) datatable.Column[T] {
	return datatable.Column[T]{
		ID:            def.ColumnID(),
		AccessorKey:   def.Field,
		Header:        def.Label,
		DisableExport: def.Export != nil && !*def.Export,
		DisableHiding: def.Pinned,
		Size:          def.Size,
		MinSize:       def.MinSize,
		MaxSize:       def.MaxSize,
		Meta:          map[string]any{MetaField: def.Field, MetaFormat: strings.ToLower(def.Format)},
	}
}

func fieldColumn[T any](def ColumnDef, schema Schema[T], opts BuildOptions) (datatable.Column[T], error) {
	f, ok := schema.Field(def.Field)
	if !ok {
		return datatable.Column[T]{}, fmt.Errorf("column %s: unknown field %s", def.ColumnID(), def.Field)
	}
	col := baseColumn[T](def)
	get := f.Get

	format := strings.ToLower(def.Format)
	switch {
	case f.Kind == KindMoney || format == FormatMoney:
		currency := opts.Currency
		col.Accessor = func(row T) any { return float64(cents(get(row))) / 100 }
		col.Cell = func(row T) string { return starlark.FormatMoney(cents(get(row)), currency) }
	case f.Kind == KindHTML || format == FormatHTML:
		col.Accessor = func(row T) any { return HTMLToText(fmt.Sprint(get(row))) }
	case format == FormatDate:
		col.Accessor = get
		col.Cell = func(row T) string { return formatTime(get(row), time.DateOnly) }
	case format == FormatDateTime:
		col.Accessor = get
		col.Cell = func(row T) string { return formatTime(get(row), DateTimeLayout) }
	default:
		col.Accessor = get
	}

	sortable := f.Kind != KindHTML
	if def.Sortable != nil {
		sortable = *def.Sortable
	}
	filter := f.defaultFilter()
	if def.Filter != "" {
		kind, err := datatable.ParseFilterKind(def.Filter)
		if err != nil {
			return col, fmt.Errorf("column %s: %w", col.ID, err)
		}
		filter = kind
	}
	if opts.Server && !f.Queryable {
		sortable = false
		filter = datatable.FilterNone
	}
	col.Sortable = sortable
	col.Filter = filter

	if filter == datatable.FilterSelect {
		col.FilterOptions = f.filterOptions()
		if len(def.Options) > 0 {
			col.FilterOptions = make([]datatable.FilterOption, len(def.Options))
			for i, o := range def.Options {
				col.FilterOptions[i] = datatable.FilterOption{Label: o, Value: o}
			}
		}
		if len(col.FilterOptions) == 0 {
			return col, fmt.Errorf("column %s: select filter needs options", col.ID)
		}
	}
	return col, nil
}

func computedColumn[T any](def ColumnDef, schema Schema[T], opts BuildOptions) (datatable.Column[T], error) {
	col := baseColumn[T](def)
	prog, err := opts.Env.Compile("column "+col.ID, def.Expr, schema.Names())
	if err != nil {
		return col, err
	}

	logger := opts.Logger
	col.Accessor = func(row T) any {
		s, err := prog.EvalString(schema.Values(row))
		if err != nil {
			logger.Debug("computed column failed", "column", col.ID, "error", err)
			return "#error"
		}
		return s
	}

	// Computed values only exist in memory.
	col.Sortable = !opts.Server
	col.Filter = datatable.FilterNone
	if !opts.Server {
		col.Filter = datatable.FilterText
	}
	if def.Sortable != nil {
		col.Sortable = *def.Sortable && !opts.Server
	}
	if def.Filter != "" && !opts.Server {
		kind, err := datatable.ParseFilterKind(def.Filter)
		if err != nil {
			return col, fmt.Errorf("column %s: %w", col.ID, err)
		}
		if kind != datatable.FilterNone && kind != datatable.FilterText {
			return col, fmt.Errorf("column %s: computed columns support text filters only", col.ID)
		}
		col.Filter = kind
	}
	return col, nil
}

func cents(v any) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case float64:
		return int64(x)
	default:
		return 0
	}
}

func formatTime(v any, layout string) string {
	t, ok := v.(time.Time)
	if !ok || t.IsZero() {
		return datatable.FormatValue(v)
	}
	return t.Format(layout)
}
