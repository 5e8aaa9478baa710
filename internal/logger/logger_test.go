package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":  zapcore.DebugLevel,
		"info":   zapcore.InfoLevel,
		" WARN ": zapcore.WarnLevel,
		"error":  zapcore.ErrorLevel,
		"panic":  zapcore.PanicLevel,
		"fatal":  zapcore.FatalLevel,
		"dpanic": zapcore.DPanicLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestFromContext_FallsBackToGlobal checks that an empty context yields the global logger.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))

	scoped := zap.NewNop().Sugar()
	ctx := ToContext(context.Background(), scoped)
	require.Same(t, scoped, FromContext(ctx))

	named := WithName(ctx, "ringer")
	require.NotSame(t, scoped, FromContext(named))
}

// TestRedirectToFile ensures log lines land in the file and the previous logger is restored.
//
//nolint:paralleltest // Swaps the global logger.
func TestRedirectToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ring.log")
	before := Logger()

	restore, err := RedirectToFile(path, zapcore.DebugLevel)
	require.NoError(t, err)

	DebugKV(context.Background(), "Tap registered", "tap_count", 7)
	restore()

	require.Same(t, before, Logger())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "Tap registered")
	require.Contains(t, string(contents), "tap_count")
}

// TestWithKVAndFields checks that scoped fields are attached to every entry.
func TestWithKVAndFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	ctx = WithKV(ctx, "goal", 100)
	ctx = WithFields(ctx, "time", "06:00", "armed", true)

	InfoKV(ctx, "Alarm due")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, map[string]any{"goal": int64(100), "time": "06:00", "armed": true}, entries[0].ContextMap())
}
