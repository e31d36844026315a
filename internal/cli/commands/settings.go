package commands

import (
	"fmt"

	"github.com/leapstack-labs/admingrid/internal/grids"
	"github.com/leapstack-labs/admingrid/internal/settings"
	"github.com/spf13/cobra"
)

// NewSettingsCommand creates the settings command and its subcommands.
func NewSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change store settings",
		Long: `Inspect and change the store's typed settings.

Values are validated against each setting's kind and stored in canonical
form: "yes" becomes "true", "7.5" money becomes "7.50".`,
	}

	cmd.AddCommand(newSettingsListCommand())
	cmd.AddCommand(newSettingsGetCommand())
	cmd.AddCommand(newSettingsSetCommand())
	cmd.AddCommand(newSettingsResetCommand())
	return cmd
}

func newSettingsListCommand() *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List settings with their effective values",
		Example: `  admingrid settings list
  admingrid settings list --group payment -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			res, err := cc.Registry(true).Open(ctx, grids.Settings, grids.OpenOptions{})
			if err != nil {
				return err
			}
			defer res.Close()

			if group != "" {
				if err := grids.ApplyFilter(res, "group", group); err != nil {
					return err
				}
			}
			return renderResource(ctx, cc.Renderer, res)
		},
	}
	cmd.Flags().StringVarP(&group, "group", "g", "", "Only settings of this group")
	_ = cmd.RegisterFlagCompletionFunc("group", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return settings.Groups(settings.Definitions), cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func newSettingsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "get <key>",
		Short:             "Print a setting's effective value",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSettingKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			v, err := cc.Settings.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cc.Renderer.Println(v)
			return nil
		},
	}
}

func newSettingsSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "set <key> <value>",
		Short:             "Validate and store a setting",
		Example:           `  admingrid settings set shipping.free_over 49.5`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeSettingKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			if err := cc.Settings.Set(ctx, args[0], args[1]); err != nil {
				return err
			}
			v, err := cc.Settings.Get(ctx, args[0])
			if err != nil {
				return err
			}
			cc.Renderer.Success(fmt.Sprintf("%s = %s", args[0], v))
			return nil
		},
	}
}

func newSettingsResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "reset <key>",
		Short:             "Restore a setting's default",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSettingKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			if err := cc.Settings.Reset(ctx, args[0]); err != nil {
				return err
			}
			v, err := cc.Settings.Get(ctx, args[0])
			if err != nil {
				return err
			}
			cc.Renderer.Success(fmt.Sprintf("%s reset to %s", args[0], v))
			return nil
		},
	}
}

func completeSettingKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	keys := make([]string, len(settings.Definitions))
	for i, d := range settings.Definitions {
		keys[i] = d.Key
	}
	return keys, cobra.ShellCompDirectiveNoFileComp
}
