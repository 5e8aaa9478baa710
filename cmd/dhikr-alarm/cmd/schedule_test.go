package cmd

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// execute runs the root command with args against settings in a temporary
// folder. Commands share package state, so these tests do not run in parallel.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("DHIKR_ALARM_STATE_FILE", filepath.Join(dir, "state.yaml"))

	var out bytes.Buffer

	in = 0

	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(dir, "settings.yaml")}, args...))

	err := rootCmd.Execute()

	return out.String(), err
}

func TestSet_RejectsMissingOrNegativeDelay(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", []string{"set"}},
		{"negative delay", []string{"set", "--in", "-5m"}},
		{"clock and delay", []string{"set", "06:00", "--in", "5m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				_, err := execute(t, tt.args...)
				require.ErrorIs(t, err, errClockOrDelay)
			})
		})
	}
}

func TestSet_ClockThenStatusAndCancel(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DHIKR_ALARM_STATE_FILE", filepath.Join(dir, "state.yaml"))

	run := func(args ...string) string {
		var out bytes.Buffer

		in = 0

		rootCmd.SetOut(&out)
		rootCmd.SetErr(io.Discard)
		rootCmd.SetArgs(append([]string{"--config", filepath.Join(dir, "settings.yaml")}, args...))
		require.NoError(t, rootCmd.Execute())

		return out.String()
	}

	require.Contains(t, run("set", "06:30"), "Alarm set for 06:30")
	require.Contains(t, run("status"), "Alarm set for 06:30")
	require.Contains(t, run("cancel"), "No alarm set")
	require.Contains(t, run("status"), "No alarm set")
}

func TestSet_InvalidClock(t *testing.T) {
	_, err := execute(t, "set", "25:99")
	require.Error(t, err)
}
