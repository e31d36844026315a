package views

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/admingrid/pkg/datatable"
)

// Kind is the value type of a record field.
type Kind int

// Field kinds.
const (
	KindText Kind = iota
	KindEnum
	KindNumber
	// KindMoney values are int64 cents.
	KindMoney
	KindTime
	KindBool
	// KindHTML values are HTML fragments.
	KindHTML
)

// Field exposes one record field to views.
type Field[T any] struct {
	Name string
	Kind Kind
	Get  func(T) any
	// Options are the values of an enum field.
	Options []string
	// Queryable marks fields the backing store can sort and filter by. It
	// only matters when columns are built for server-side querying.
	Queryable bool
}

// Schema lists the fields of a record type.
type Schema[T any] struct {
	Fields []Field[T]
}

// Field looks up a field by name.
func (s Schema[T]) Field(name string) (Field[T], bool) {
	i := slices.IndexFunc(s.Fields, func(f Field[T]) bool { return f.Name == name })
	if i < 0 {
		return Field[T]{}, false
	}
	return s.Fields[i], true
}

// Names returns the field names in declaration order.
func (s Schema[T]) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Values reads every field of a record, keyed by name.
func (s Schema[T]) Values(row T) map[string]any {
	out := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		out[f.Name] = f.Get(row)
	}
	return out
}

// defaultFilter is the filter a field gets when the view does not choose one.
func (f Field[T]) defaultFilter() datatable.FilterKind {
	switch f.Kind {
	case KindText:
		return datatable.FilterText
	case KindEnum, KindBool:
		return datatable.FilterSelect
	case KindNumber, KindMoney:
		return datatable.FilterNumber
	case KindTime:
		return datatable.FilterDate
	default:
		return datatable.FilterNone
	}
}

func (f Field[T]) filterOptions() []datatable.FilterOption {
	opts := f.Options
	if f.Kind == KindBool && len(opts) == 0 {
		opts = []string{"true", "false"}
	}
	out := make([]datatable.FilterOption, len(opts))
	for i, o := range opts {
		out[i] = datatable.FilterOption{Label: o, Value: o}
	}
	return out
}

func (s Schema[T]) validate() error {
	seen := map[string]bool{}
	for _, f := range s.Fields {
		if f.Name == "" || f.Get == nil {
			return fmt.Errorf("schema field needs a name and a getter")
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate schema field %s", f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}
