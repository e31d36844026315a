package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/admingrid/internal/cli/output"
	"github.com/leapstack-labs/admingrid/internal/grids"
	"github.com/leapstack-labs/admingrid/pkg/datatable"
	"github.com/spf13/cobra"
)

// gridFlags are the grid state a command line can set.
type gridFlags struct {
	sorts   []string
	filters []string
	search  string
	columns []string
}

func (f *gridFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.sorts, "sort", "s", nil, "Sort by column (repeatable): price, -price or price:desc")
	cmd.Flags().StringArrayVarP(&f.filters, "filter", "f", nil, "Column filter (repeatable): status=draft, price=10..50, created_at=2026-01-01..")
	cmd.Flags().StringVarP(&f.search, "search", "q", "", "Search across columns")
	cmd.Flags().StringSliceVar(&f.columns, "columns", nil, "Columns to show, by id (default: the view's visible columns)")
}

// apply sets the flags on res and reloads it.
func (f *gridFlags) apply(ctx context.Context, res grids.Resource) error {
	for _, spec := range f.filters {
		col, raw, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("%w: %q (want column=value)", grids.ErrInvalidFilter, spec)
		}
		if err := grids.ApplyFilter(res, strings.TrimSpace(col), raw); err != nil {
			return err
		}
	}
	for _, spec := range f.sorts {
		d, err := grids.ParseSortSpec(spec)
		if err != nil {
			return err
		}
		if err := grids.ApplySort(res, d); err != nil {
			return err
		}
	}
	if len(f.columns) > 0 {
		if err := showOnly(res, f.columns); err != nil {
			return err
		}
	}
	if f.search != "" {
		return res.Search(ctx, f.search)
	}
	return res.Refresh(ctx)
}

// showOnly makes exactly the given columns visible.
func showOnly(res grids.Resource, columns []string) error {
	toggles := res.View().ColumnToggles
	for _, id := range columns {
		if !slices.ContainsFunc(toggles, func(c datatable.ColumnToggle) bool { return c.ColumnID == id }) {
			return fmt.Errorf("unknown column %q", id)
		}
	}
	for _, c := range toggles {
		want := slices.Contains(columns, c.ColumnID)
		if c.Visible == want || !c.CanHide {
			continue
		}
		if err := res.ToggleColumnVisibility(c.ColumnID); err != nil {
			return err
		}
	}
	return nil
}

// renderResource writes the grid's export rows in the renderer's mode. CSV
// goes through the table's own exporter so values stay raw.
func renderResource(ctx context.Context, r *output.Renderer, res grids.Resource) error {
	if r.EffectiveMode() == output.ModeCSV {
		_, err := res.Export(ctx, r.Writer())
		return err
	}
	rec, err := res.Records(ctx)
	if err != nil {
		return err
	}
	return r.RenderTable(output.Table{
		Headers: rec.Labels(),
		Rows:    rec.Text,
		Records: rec.Maps(),
	})
}

// completeResources completes resource names for positional arguments.
func completeResources(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return grids.Names(), cobra.ShellCompDirectiveNoFileComp
}
