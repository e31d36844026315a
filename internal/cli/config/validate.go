package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/leapstack-labs/admingrid/internal/store"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	dialect, err := store.ParseDialect(c.Database.Driver)
	if err != nil {
		return fmt.Errorf("%w: database.driver: %w", ErrInvalidConfig, err)
	}
	if dialect == store.DialectPostgres && c.Database.DSN == "" {
		return fmt.Errorf("%w: database.dsn is required for postgres", ErrInvalidConfig)
	}
	if dialect == store.DialectSQLite && c.Database.DSN == "" && c.Database.Path == "" {
		return fmt.Errorf("%w: database.path or database.dsn is required", ErrInvalidConfig)
	}
	if c.UI.Port < 0 || c.UI.Port > 65535 {
		return fmt.Errorf("%w: ui.port %d out of range", ErrInvalidConfig, c.UI.Port)
	}
	switch strings.ToLower(c.Table.Mode) {
	case "", "client", "server":
	default:
		return fmt.Errorf("%w: table.mode must be client or server, got %q", ErrInvalidConfig, c.Table.Mode)
	}
	if c.Table.PageSize < 0 {
		return fmt.Errorf("%w: table.page_size must not be negative", ErrInvalidConfig)
	}
	if slices.ContainsFunc(c.Table.PageSizeOptions, func(n int) bool { return n <= 0 }) {
		return fmt.Errorf("%w: table.page_size_options must be positive", ErrInvalidConfig)
	}
	if c.Table.SearchDebounce < 0 {
		return fmt.Errorf("%w: table.search_debounce must not be negative", ErrInvalidConfig)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Source returns the store dialect and connection string.
func (d DatabaseConfig) Source() (store.Dialect, string, error) {
	dialect, err := store.ParseDialect(d.Driver)
	if err != nil {
		return "", "", err
	}
	if d.DSN != "" || dialect == store.DialectPostgres {
		return dialect, d.DSN, nil
	}
	return dialect, d.Path, nil
}

// ParseLogLevel parses debug, info, warn or error. Empty means warn.
func ParseLogLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelWarn, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}
