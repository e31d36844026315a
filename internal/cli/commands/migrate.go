package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [up|down|status]",
		Short: "Apply or roll back database migrations",
		Long: `Manage the database schema.

  up      apply every pending migration (default)
  down    roll back the most recent migration
  status  print the current schema version`,
		Example: `  admingrid migrate
  admingrid migrate status
  admingrid migrate down --driver postgres --dsn "$DATABASE_URL"`,
		ValidArgs: []string{"up", "down", "status"},
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}
			return runMigrate(cmd, action)
		},
	}
	return cmd
}

func runMigrate(cmd *cobra.Command, action string) error {
	cc := NewCommandContextWithoutStore(cmd)
	st, err := openStore(cmd.Context(), cc.Cfg, cc.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	switch action {
	case "up":
		if err := st.Migrate(); err != nil {
			return err
		}
	case "down":
		if err := st.MigrateDown(); err != nil {
			return err
		}
	}

	version, err := st.MigrationVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	switch action {
	case "up":
		cc.Renderer.Success(fmt.Sprintf("schema at version %d", version))
	case "down":
		cc.Renderer.Success(fmt.Sprintf("rolled back to version %d", version))
	default:
		cc.Renderer.Println(fmt.Sprintf("version %d", version))
	}
	return nil
}
