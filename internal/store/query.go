package store

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// SortKey orders a query by one field.
type SortKey struct {
	Field string
	Desc  bool
}

// Filter restricts one field. Which members apply depends on the field kind:
// Text for text fields, Equals for enumerations, From and To for timestamps
// and Min and Max for numbers. Bounds are inclusive; zero or nil means open.
type Filter struct {
	Field  string
	Text   string
	Equals string
	From   time.Time
	To     time.Time
	Min    *float64
	Max    *float64
}

// GridQuery is a paged, filtered, sorted listing request. A PageSize of zero
// returns every matching row. A non-empty IDs restricts the listing to those
// records.
type GridQuery struct {
	IDs       []string
	Search    string
	Filters   []Filter
	Sort      []SortKey
	PageIndex int
	PageSize  int
}

// Page is one page of a listing together with the unpaged match count.
type Page[T any] struct {
	Items     []T
	Total     int
	PageIndex int
	PageSize  int
}

type fieldKind int

const (
	kindText fieldKind = iota
	kindEnum
	kindNumber
	kindTime
)

type field struct {
	expr       string
	kind       fieldKind
	searchable bool
	// scale converts filter bounds to stored units, e.g. 100 for cents.
	scale float64
}

// tableSpec describes a listable table. Only fields named here may be
// filtered or sorted, so user input never reaches the SQL text.
type tableSpec struct {
	from    string
	columns string
	id      string
	fields  map[string]field
}

// Fields returns the filterable and sortable field names in sorted order.
func (t tableSpec) Fields() []string {
	return slices.Sorted(maps.Keys(t.fields))
}

type builtQuery struct {
	count string
	list  string
	args  []any
}

func buildQuery(spec tableSpec, q GridQuery) (builtQuery, error) {
	var where []string
	var args []any

	if len(q.IDs) > 0 {
		where = append(where, spec.id+" IN ("+strings.TrimSuffix(strings.Repeat("?, ", len(q.IDs)), ", ")+")")
		for _, id := range q.IDs {
			args = append(args, id)
		}
	}

	if term := strings.TrimSpace(q.Search); term != "" {
		var ors []string
		for _, name := range spec.Fields() {
			f := spec.fields[name]
			if !f.searchable {
				continue
			}
			ors = append(ors, "LOWER("+f.expr+") "+likeOp)
			args = append(args, likePattern(term))
		}
		if len(ors) > 0 {
			where = append(where, "("+strings.Join(ors, " OR ")+")")
		}
	}

	for _, flt := range q.Filters {
		f, ok := spec.fields[flt.Field]
		if !ok {
			return builtQuery{}, fmt.Errorf("%w: %s", ErrUnknownField, flt.Field)
		}
		switch f.kind {
		case kindText:
			if flt.Text != "" {
				where = append(where, "LOWER("+f.expr+") "+likeOp)
				args = append(args, likePattern(flt.Text))
			}
		case kindEnum:
			if flt.Equals != "" {
				where = append(where, f.expr+" = ?")
				args = append(args, flt.Equals)
			}
		case kindNumber:
			if flt.Min != nil {
				where = append(where, f.expr+" >= ?")
				args = append(args, scaled(*flt.Min, f.scale))
			}
			if flt.Max != nil {
				where = append(where, f.expr+" <= ?")
				args = append(args, scaled(*flt.Max, f.scale))
			}
		case kindTime:
			if !flt.From.IsZero() {
				where = append(where, f.expr+" >= ?")
				args = append(args, storedTime(flt.From))
			}
			if !flt.To.IsZero() {
				where = append(where, f.expr+" <= ?")
				args = append(args, storedTime(flt.To))
			}
		}
	}

	var order []string
	for _, s := range q.Sort {
		f, ok := spec.fields[s.Field]
		if !ok {
			return builtQuery{}, fmt.Errorf("%w: %s", ErrUnknownField, s.Field)
		}
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		order = append(order, f.expr+" "+dir)
	}
	// The id tie-break keeps pages stable.
	order = append(order, spec.id+" ASC")

	filter := ""
	if len(where) > 0 {
		filter = " WHERE " + strings.Join(where, " AND ")
	}

	list := "SELECT " + spec.columns + " FROM " + spec.from + filter + " ORDER BY " + strings.Join(order, ", ")
	if q.PageSize > 0 {
		list += " LIMIT " + strconv.Itoa(q.PageSize) + " OFFSET " + strconv.Itoa(max(q.PageIndex, 0)*q.PageSize)
	}

	return builtQuery{
		count: "SELECT COUNT(*) FROM " + spec.from + filter,
		list:  list,
		args:  args,
	}, nil
}

// likeOp matches a likePattern. The escape character is spelled out so the
// same text works on SQLite and PostgreSQL.
const likeOp = `LIKE ? ESCAPE '\'`

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern builds a substring pattern in which the input's own wildcards
// match literally.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

func scaled(v, scale float64) any {
	if scale == 0 {
		return v
	}
	return int64(math.Round(v * scale))
}

type rowScanner interface {
	Scan(dest ...any) error
}

// list runs a grid query against spec and scans every row.
func list[T any](ctx context.Context, s *SQLStore, spec tableSpec, q GridQuery, scan func(rowScanner) (T, error)) (Page[T], error) {
	if s.db == nil {
		return Page[T]{}, ErrNotOpen
	}
	built, err := buildQuery(spec, q)
	if err != nil {
		return Page[T]{}, err
	}

	page := Page[T]{PageIndex: q.PageIndex, PageSize: q.PageSize}
	if err := s.queryRow(ctx, built.count, built.args...).Scan(&page.Total); err != nil {
		return Page[T]{}, fmt.Errorf("failed to count rows: %w", err)
	}

	rows, err := s.query(ctx, built.list, built.args...)
	if err != nil {
		return Page[T]{}, fmt.Errorf("failed to list rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return Page[T]{}, fmt.Errorf("failed to scan row: %w", err)
		}
		page.Items = append(page.Items, item)
	}
	if err := rows.Err(); err != nil {
		return Page[T]{}, fmt.Errorf("failed to read rows: %w", err)
	}
	return page, nil
}

// getOne scans a single row, mapping sql.ErrNoRows to ErrNotFound.
func getOne[T any](row *sql.Row, kind, id string, scan func(rowScanner) (T, error)) (T, error) {
	item, err := scan(row)
	if err == sql.ErrNoRows {
		var zero T
		return zero, fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to get %s: %w", kind, err)
	}
	return item, nil
}
