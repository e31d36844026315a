// Package config provides configuration management for the admingrid CLI.
//
// Values are layered from built-in defaults, an admingrid.yaml file,
// ADMINGRID_* environment variables and explicitly set command-line flags,
// in increasing order of precedence.
package config

import (
	"time"
)

// Default configuration values.
const (
	DefaultDriver         = "sqlite"
	DefaultDatabasePath   = ".admingrid/admingrid.db"
	DefaultEnv            = "dev"
	DefaultOutput         = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel       = "warn"
	DefaultPort           = 8765
	DefaultHost           = "127.0.0.1"
	DefaultPageSize       = 10
	DefaultSearchDebounce = 300 * time.Millisecond
	DefaultMode           = "server"
)

// DefaultPageSizeOptions are the page sizes offered by every grid.
var DefaultPageSizeOptions = []int{10, 25, 50, 100}

// DatabaseConfig selects the backing database.
type DatabaseConfig struct {
	// Driver is sqlite or postgres.
	Driver string `koanf:"driver"`
	// DSN is the connection string. For SQLite it may be left empty in favour of Path.
	DSN string `koanf:"dsn"`
	// Path is the SQLite database file, or :memory:.
	Path string `koanf:"path"`
}

// UIConfig holds configuration for the web admin server.
type UIConfig struct {
	Host          string `koanf:"host"`
	Port          int    `koanf:"port"`
	AutoOpen      bool   `koanf:"auto_open"`
	Watch         bool   `koanf:"watch"`
	SessionSecret string `koanf:"session_secret"`
}

// TableConfig holds the defaults every grid starts with.
type TableConfig struct {
	// Mode is client or server.
	Mode            string        `koanf:"mode"`
	PageSize        int           `koanf:"page_size"`
	PageSizeOptions []int         `koanf:"page_size_options"`
	SearchDebounce  time.Duration `koanf:"search_debounce"`
	MultiSort       bool          `koanf:"multi_sort"`
	// Currency overrides the store.currency setting when set.
	Currency string `koanf:"currency"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	Database *DatabaseConfig `koanf:"database"`
	Views    string          `koanf:"views"`
}

// Config holds all CLI configuration options.
type Config struct {
	ProjectRoot  string               `koanf:"-"`
	Database     DatabaseConfig       `koanf:"database"`
	UI           UIConfig             `koanf:"ui"`
	Table        TableConfig          `koanf:"table"`
	Views        string               `koanf:"views"`
	LogLevel     string               `koanf:"log_level"`
	Verbose      bool                 `koanf:"verbose"`
	OutputFormat string               `koanf:"output"`
	Environment  string               `koanf:"environment"`
	Environments map[string]EnvConfig `koanf:"environments"`
}

// Default returns the configuration used when nothing else is loaded.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Driver: DefaultDriver, Path: DefaultDatabasePath},
		UI: UIConfig{
			Host:     DefaultHost,
			Port:     DefaultPort,
			AutoOpen: true,
			Watch:    true,
		},
		Table: TableConfig{
			Mode:            DefaultMode,
			PageSize:        DefaultPageSize,
			PageSizeOptions: append([]int(nil), DefaultPageSizeOptions...),
			SearchDebounce:  DefaultSearchDebounce,
		},
		LogLevel:     DefaultLogLevel,
		OutputFormat: DefaultOutput,
		Environment:  DefaultEnv,
	}
}

// defaults flattens Default into koanf keys.
func defaults() map[string]any {
	d := Default()
	return map[string]any{
		"database.driver":         d.Database.Driver,
		"database.path":           d.Database.Path,
		"ui.host":                 d.UI.Host,
		"ui.port":                 d.UI.Port,
		"ui.auto_open":            d.UI.AutoOpen,
		"ui.watch":                d.UI.Watch,
		"table.mode":              d.Table.Mode,
		"table.page_size":         d.Table.PageSize,
		"table.page_size_options": d.Table.PageSizeOptions,
		"table.search_debounce":   d.Table.SearchDebounce.String(),
		"table.multi_sort":        false,
		"log_level":               d.LogLevel,
		"verbose":                 false,
		"output":                  d.OutputFormat,
		"environment":             d.Environment,
	}
}
