package commands

import (
	"fmt"
	"os"

	"github.com/leapstack-labs/admingrid/internal/cli/output"
	"github.com/leapstack-labs/admingrid/internal/grids"
	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var (
		flags  gridFlags
		target string
	)

	cmd := &cobra.Command{
		Use:   "export <resource>",
		Short: "Print or save every matching row of a grid",
		Long: `Export a resource grid (products, customers, orders or settings) with
the same columns, formatting, filters and sorting the admin UI uses.

Every matching row is exported, not just one page.

Output adapts to environment:
  - Terminal: table
  - Piped/Scripted: Markdown
Use --output to override: auto, text, markdown, json, csv`,
		Example: `  # Draft products, most expensive first
  admingrid export products --filter status=draft --sort -price

  # Orders placed in March as CSV
  admingrid export orders --filter placed_at=2026-03-01..2026-03-31 -o csv > march.csv

  # Only a few columns, as JSON
  admingrid export customers --columns email,orders -o json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeResources,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], &flags, target)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&target, "file", "", "Write to a file instead of stdout")

	return cmd
}

func runExport(cmd *cobra.Command, resource string, flags *gridFlags, target string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	r := cc.Renderer
	if target != "" {
		f, err := os.Create(target)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", target, err)
		}
		defer func() { _ = f.Close() }()
		// Files never get terminal styling.
		r = output.NewRendererWithTTY(f, cmd.ErrOrStderr(), fileMode(r), false)
	}

	res, err := cc.Registry(true).Open(ctx, resource, grids.OpenOptions{})
	if err != nil {
		return err
	}
	defer res.Close()

	if err := flags.apply(ctx, res); err != nil {
		return err
	}
	if err := renderResource(ctx, r, res); err != nil {
		return fmt.Errorf("failed to export %s: %w", resource, err)
	}
	if target != "" {
		cc.Renderer.Success(fmt.Sprintf("exported %s to %s", resource, target))
	}
	return nil
}

// fileMode picks the format for a file target: an explicit mode wins,
// otherwise CSV.
func fileMode(r *output.Renderer) output.Mode {
	if r.Mode() == output.ModeAuto {
		return output.ModeCSV
	}
	return r.Mode()
}
