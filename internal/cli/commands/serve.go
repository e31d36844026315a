package commands

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/leapstack-labs/admingrid/internal/ui"
	"github.com/spf13/cobra"
)

// ServeOptions holds options for the serve command that are not part of
// the configuration.
type ServeOptions struct {
	Dev bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web admin",
		Long: `Start a local web server with the store admin's data grids.

Each resource (products, customers, orders, settings) gets a grid with
search, column filters, sorting, pagination, row selection, row details,
row actions, column visibility and CSV export. Grid state is kept per
browser in a signed session cookie.

With --watch, editing the views file re-renders every open grid.`,
		Example: `  # Serve on the default address
  admingrid serve

  # Serve on every interface, port 3000, opening a browser
  admingrid serve --host 0.0.0.0 --port 3000 --open

  # Reload grids while editing column definitions
  admingrid serve --views views.yaml --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().String("host", "", "Interface to listen on (default: 127.0.0.1)")
	cmd.Flags().Int("port", 0, "Port to serve on, 0 picks a free one (default: 8765)")
	cmd.Flags().Bool("watch", false, "Reload grids when the views file changes")
	cmd.Flags().Bool("open", false, "Open a browser once the server is up")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "Enable page hot reload")
	_ = cmd.Flags().MarkHidden("dev")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cc.Cfg
	if cfg.UI.Watch && cfg.Views == "" {
		cc.Logger.Warn("--watch has no effect without a views file")
	}

	r := cc.Renderer
	server := ui.NewServer(ui.Config{
		Registry:       cc.Registry(false),
		Host:           cfg.UI.Host,
		Port:           cfg.UI.Port,
		Watch:          cfg.UI.Watch,
		ViewsFile:      cfg.Views,
		SessionSecret:  cfg.UI.SessionSecret,
		MultiSort:      cfg.Table.MultiSort,
		SearchDebounce: cfg.Table.SearchDebounce,
		IsDev:          opts.Dev,
		Logger:         cc.Logger,
		OnListen: func(url string) {
			r.Success(fmt.Sprintf("admin running at %s", url))
			r.Muted("Press Ctrl+C to stop")
			if cfg.UI.AutoOpen {
				go openBrowser(url)
			}
		},
	})

	return server.Serve(cmd.Context())
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
