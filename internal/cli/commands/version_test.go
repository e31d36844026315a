package commands

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runVersion(t *testing.T, info BuildInfo, args ...string) string {
	t.Helper()
	cmd := NewVersionCommand(info)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return buf.String()
}

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		name    string
		info    BuildInfo
		wantOut []string
		notWant []string
	}{
		{
			name:    "release build",
			info:    BuildInfo{Version: "1.2.3", BuildDate: "2026-10-01", GitCommit: "abc1234"},
			wantOut: []string{"admingrid v1.2.3", "data grids", "commit: abc1234", "built:  2026-10-01", runtime.Version()},
		},
		{
			name:    "local build",
			info:    BuildInfo{Version: "dev", BuildDate: "unknown", GitCommit: "unknown"},
			wantOut: []string{"admingrid vdev"},
			notWant: []string{"commit:", "built:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runVersion(t, tt.info)
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
			for _, notWant := range tt.notWant {
				assert.NotContains(t, out, notWant)
			}
		})
	}
}

func TestVersion_Short(t *testing.T) {
	assert.Equal(t, "0.4.0\n", runVersion(t, BuildInfo{Version: "0.4.0", GitCommit: "abc"}, "--short"))
}
