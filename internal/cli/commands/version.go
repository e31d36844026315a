package commands

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/leapstack-labs/admingrid/internal/cli/output"
	"github.com/spf13/cobra"
)

// BuildInfo describes the running binary. Values are set at build time.
type BuildInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date,omitempty"`
	GitCommit string `json:"git_commit,omitempty"`
	Go        string `json:"go"`
	Platform  string `json:"platform"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	var short bool
	info.Go = runtime.Version()
	info.Platform = runtime.GOOS + "/" + runtime.GOARCH

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display admingrid version and build information.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if short {
				_, _ = fmt.Fprintln(out, info.Version)
				return nil
			}
			if NewCommandContextWithoutStore(cmd).Renderer.EffectiveMode() == output.ModeJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			_, _ = fmt.Fprintf(out, "admingrid v%s\n", info.Version)
			_, _ = fmt.Fprintln(out, "Store admin data grids for the web and the terminal")
			if known(info.GitCommit) {
				_, _ = fmt.Fprintf(out, "commit: %s\n", info.GitCommit)
			}
			if known(info.BuildDate) {
				_, _ = fmt.Fprintf(out, "built:  %s\n", info.BuildDate)
			}
			_, _ = fmt.Fprintf(out, "go:     %s %s\n", info.Go, info.Platform)
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	return cmd
}

func known(s string) bool { return s != "" && s != "unknown" }
