package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/admingrid/internal/cli/config"
	"github.com/leapstack-labs/admingrid/internal/cli/output"
	"github.com/leapstack-labs/admingrid/internal/grids"
	"github.com/leapstack-labs/admingrid/internal/settings"
	"github.com/leapstack-labs/admingrid/internal/store"
	"github.com/leapstack-labs/admingrid/internal/views"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Store    *store.SQLStore
	Settings *settings.Service
	Views    *views.Set
	Renderer *output.Renderer
}

// NewCommandContext opens the store, applies migrations and seeds missing
// setting defaults. Returns the context and a cleanup function that must be
// called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cc := NewCommandContextWithoutStore(cmd)

	set, err := loadViews(cc.Cfg)
	if err != nil {
		return nil, nil, err
	}
	cc.Views = set

	st, err := openStore(cmd.Context(), cc.Cfg, cc.Logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = st.Close()
	}
	if err := st.Migrate(); err != nil {
		cleanup()
		return nil, nil, err
	}

	svc, err := settings.NewService(st, cc.Logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if _, err := svc.EnsureDefaults(cmd.Context()); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to seed setting defaults: %w", err)
	}

	cc.Store = st
	cc.Settings = svc
	return cc, cleanup, nil
}

// NewCommandContextWithoutStore creates a CommandContext without a database.
// Useful for commands that don't need database access.
func NewCommandContextWithoutStore(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.OutputMode(cfg.OutputFormat)),
	}
}

// Registry returns a grid registry over the context's store and settings.
// Markdown switches HTML details to Markdown for terminal surfaces.
func (cc *CommandContext) Registry(markdown bool) *grids.Registry {
	return grids.NewRegistry(grids.Deps{
		Store:    cc.Store,
		Settings: cc.Settings,
		Views:    cc.Views,
		Logger:   cc.Logger,
	}, RegistryOptions(cc.Cfg, markdown))
}

// RegistryOptions maps the table section of the configuration to grid options.
func RegistryOptions(cfg *config.Config, markdown bool) grids.Options {
	// Validated when the configuration was loaded.
	mode, _ := grids.ParseMode(strings.ToLower(cfg.Table.Mode))
	return grids.Options{
		Mode:            mode,
		PageSize:        cfg.Table.PageSize,
		PageSizeOptions: cfg.Table.PageSizeOptions,
		SearchDebounce:  cfg.Table.SearchDebounce,
		MultiSort:       cfg.Table.MultiSort,
		Currency:        cfg.Table.Currency,
		Markdown:        markdown,
	}
}

// getConfig returns the current configuration, or the defaults when no
// configuration has been loaded (as in command unit tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

func loadViews(cfg *config.Config) (*views.Set, error) {
	if cfg.Views == "" {
		return views.Default(), nil
	}
	return views.Load(cfg.Views)
}

// openStore connects to the configured database.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store.SQLStore, error) {
	dialect, dsn, err := cfg.Database.Source()
	if err != nil {
		return nil, err
	}

	if dialect == store.DialectSQLite && dsn != ":memory:" {
		dir := filepath.Dir(dsn)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	st := store.New(logger)
	if err := st.Open(ctx, dialect, dsn); err != nil {
		return nil, err
	}
	return st, nil
}
