package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/dhikr-alarm/internal/config"
	"github.com/oshokin/dhikr-alarm/internal/logger"
	"github.com/oshokin/dhikr-alarm/internal/service/ringer"
	"github.com/oshokin/dhikr-alarm/internal/service/watcher"
)

var (
	// ringCmd shows the ringing screen immediately.
	ringCmd = &cobra.Command{
		Use:   "ring",
		Short: "Ring the alarm now.",
		Long: `Show the ringing screen right away, without waiting for the schedule.

Tap space or enter to count, minus to undo a tap, q or esc to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return ringScreen(settings)(ctx)
		},
	}

	// runCmd watches the schedule.
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Watch the schedule and ring when the alarm is due.",
		Long: `Background service that watches the alarm schedule.

Re-reads the schedule at the configured poll interval and shows the ringing
screen in this terminal when the alarm is due. An alarm that fired while the
service was not running rings as soon as it starts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return watcher.Run(ctx, &watcher.Options{
				Registration: newRegistration(settings),
				Ring:         ringScreen(settings),
				PollInterval: settings.PollInterval,
			})
		},
	}
)

// ringScreen returns a ring func showing the ringing screen with logs sent
// to the configured log file.
func ringScreen(cfg *config.Config) watcher.RingFunc {
	return func(ctx context.Context) error {
		level, _ := logger.ParseLogLevel(cfg.LogLevel)

		restore, err := logger.RedirectToFile(cfg.LogFile, level)
		if err != nil {
			return err
		}

		// Loggers already scoped in ctx still write to stdout.
		screenCtx := logger.ToContext(ctx, logger.Logger())

		result, err := ringer.Run(screenCtx, &ringer.Options{Config: cfg})

		restore()

		if err != nil {
			return fmt.Errorf("ringing screen: %w", err)
		}

		logger.InfoKV(ctx, "Ringing finished",
			"completed", result.Completed,
			"taps", result.TapCount,
			"goal", result.GoalCount,
			"duration", result.Duration.Round(time.Second).String())

		return nil
	}
}
