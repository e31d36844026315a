package commands

import (
	"errors"
	"fmt"
	"slices"

	"github.com/leapstack-labs/admingrid/internal/grids"
	"github.com/leapstack-labs/admingrid/internal/tui"
	"github.com/spf13/cobra"
)

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	var exportDir string

	cmd := &cobra.Command{
		Use:   "browse [resource]",
		Short: "Browse the grids in the terminal",
		Long: `Open a full-screen terminal browser over the admin's grids.

The browser offers what the web admin does: sorting, column filters,
search, pagination, row selection, row details, row actions, column
visibility and CSV export. Press ? for the key bindings.`,
		Example: `  # Start on products
  admingrid browse

  # Start on orders, exporting into ./exports
  admingrid browse orders --export-dir exports`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeResources,
		RunE: func(cmd *cobra.Command, args []string) error {
			var initial string
			if len(args) == 1 {
				initial = args[0]
				if !slices.Contains(grids.Names(), initial) {
					return fmt.Errorf("%w: %s", grids.ErrUnknownResource, initial)
				}
			}
			return runBrowse(cmd, initial, exportDir)
		},
	}

	cmd.Flags().StringVar(&exportDir, "export-dir", ".", "Directory CSV exports are written to")

	return cmd
}

func runBrowse(cmd *cobra.Command, initial, exportDir string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if !cc.Renderer.IsTTY() {
		return errors.New("browse needs an interactive terminal; use export for scripts")
	}

	return tui.Run(cmd.Context(), tui.Options{
		Registry:  cc.Registry(false),
		Initial:   initial,
		ExportDir: exportDir,
	})
}
