// Package views turns YAML view definitions into data table columns.
//
// A view lists the columns of one resource grid: which record field each
// column shows, its label, sorting and filtering, export and visibility
// defaults, and an optional Starlark expression for computed columns:
//
//	views:
//	  products:
//	    title: Products
//	    page_size: 20
//	    columns:
//	      - field: sku
//	        label: SKU
//	        pinned: true
//	      - id: stock_value
//	        label: Stock value
//	        expr: money(price * stock)
package views

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrUnknownView is returned for a resource with no view definition.
var ErrUnknownView = errors.New("unknown view")

// Formats a column can render with.
const (
	FormatText     = "text"
	FormatHTML     = "html"
	FormatMoney    = "money"
	FormatDate     = "date"
	FormatDateTime = "datetime"
)

// ColumnDef declares one column of a view.
type ColumnDef struct {
	// ID defaults to Field. Computed columns must set it.
	ID    string `yaml:"id"`
	Field string `yaml:"field"`
	Label string `yaml:"label"`
	// Sortable and Filter override the field's defaults; filter "none"
	// disables filtering.
	Sortable *bool    `yaml:"sortable"`
	Filter   string   `yaml:"filter"`
	Options  []string `yaml:"options"`
	// Export false keeps the column out of CSV exports.
	Export *bool `yaml:"export"`
	// Hidden columns start hidden; pinned columns cannot be hidden.
	Hidden  bool   `yaml:"hidden"`
	Pinned  bool   `yaml:"pinned"`
	Size    int    `yaml:"size"`
	MinSize int    `yaml:"min_size"`
	MaxSize int    `yaml:"max_size"`
	Format  string `yaml:"format"`
	// Expr is a Starlark expression over the record's fields.
	Expr string `yaml:"expr"`
}

// ColumnID returns the id the column is keyed by in table state.
func (c ColumnDef) ColumnID() string {
	if c.ID != "" {
		return c.ID
	}
	return c.Field
}

// View is the column layout of one resource grid.
type View struct {
	Title    string      `yaml:"title"`
	PageSize int         `yaml:"page_size"`
	Columns  []ColumnDef `yaml:"columns"`
}

// Set holds the views of every resource.
type Set struct {
	Views map[string]View `yaml:"views"`
	// Source is the file the set was loaded from; empty for built-in views.
	Source string `yaml:"-"`
}

// Parse reads a view set. Unknown keys are rejected.
func Parse(r io.Reader) (*Set, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var set Set
	if err := dec.Decode(&set); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid view file: %w", err)
	}
	if err := set.validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

// Load reads a view file. Resources it does not define keep the built-in view.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read view file: %w", err)
	}
	set, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	set.Source = path

	for name, v := range Default().Views {
		if _, ok := set.Views[name]; !ok {
			set.Views[name] = v
		}
	}
	return set, nil
}

// Default returns the built-in views.
func Default() *Set {
	set, err := Parse(bytes.NewReader(defaultsYAML))
	if err != nil {
		panic(fmt.Sprintf("built-in views: %v", err))
	}
	return set
}

// View returns the view of a resource.
func (s *Set) View(resource string) (View, error) {
	v, ok := s.Views[resource]
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrUnknownView, resource)
	}
	return v, nil
}

// Names returns the resources that have a view, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.Views))
	for name := range s.Views {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (s *Set) validate() error {
	if s.Views == nil {
		s.Views = map[string]View{}
	}
	for name, v := range s.Views {
		if len(v.Columns) == 0 {
			return fmt.Errorf("view %s: no columns", name)
		}
		if v.PageSize < 0 {
			return fmt.Errorf("view %s: negative page size", name)
		}
		seen := map[string]bool{}
		for i, c := range v.Columns {
			id := c.ColumnID()
			switch {
			case id == "":
				return fmt.Errorf("view %s column %d: needs a field or an id", name, i)
			case c.Field != "" && c.Expr != "":
				return fmt.Errorf("view %s column %s: field and expr are exclusive", name, id)
			case c.Field == "" && c.Expr == "":
				return fmt.Errorf("view %s column %s: needs a field or an expr", name, id)
			case seen[id]:
				return fmt.Errorf("view %s: duplicate column %s", name, id)
			case c.Hidden && c.Pinned:
				return fmt.Errorf("view %s column %s: a pinned column cannot start hidden", name, id)
			}
			switch strings.ToLower(c.Format) {
			case "", FormatText, FormatHTML, FormatMoney, FormatDate, FormatDateTime:
			default:
				return fmt.Errorf("view %s column %s: unknown format %q", name, id, c.Format)
			}
			seen[id] = true
		}
	}
	return nil
}
