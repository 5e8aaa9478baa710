package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/oshokin/dhikr-alarm/internal/domain/alarm"
	"github.com/oshokin/dhikr-alarm/internal/logger"
)

// Registration is the part of the registration service the watcher drives.
type Registration interface {
	// Status returns the current schedule.
	Status(ctx context.Context) (*domain.Schedule, error)
	// Trigger marks the alarm as fired.
	Trigger(ctx context.Context) (*domain.Schedule, error)
	// WasTriggered consumes the fired flag.
	WasTriggered(ctx context.Context) (bool, error)
}

// RingFunc presents the ringing screen and blocks until it closes.
type RingFunc func(ctx context.Context) error

// Options controls the watcher polling behavior.
type Options struct {
	// Registration is the schedule the watcher polls.
	Registration Registration
	// Ring presents the ringing screen.
	Ring RingFunc
	// PollInterval defines the interval between schedule checks.
	PollInterval time.Duration
	// Now returns the current time. time.Now is used when nil.
	Now func() time.Time
}

// DefaultPollInterval defines the polling interval used when none is set.
const DefaultPollInterval = 5 * time.Second

// errRegistrationIsNotSet is returned when Options lack a registration or ring func.
var errRegistrationIsNotSet = errors.New("registration and ring func must be set")

// Run presents a pending alarm, then polls the schedule until ctx is cancelled.
func Run(ctx context.Context, opts *Options) error {
	if opts == nil || opts.Registration == nil || opts.Ring == nil {
		return errRegistrationIsNotSet
	}

	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "watcher")

	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	// An alarm that fired while nobody was watching rings right away.
	present(ctx, opts)

	logger.InfoKV(ctx, "Watching alarm schedule", "interval", opts.PollInterval.String())

	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case <-ticker.C:
			if err := check(ctx, opts); err != nil {
				logger.ErrorKV(ctx, "Check schedule failed", "error", err)
			}
		}
	}
}

// check fires the alarm when it is due.
func check(ctx context.Context, opts *Options) error {
	schedule, err := opts.Registration.Status(ctx)
	if err != nil {
		return fmt.Errorf("read schedule: %w", err)
	}

	ctx = logger.WithFields(ctx,
		"time", schedule.ClockString(),
		"armed", schedule.IsArmed,
		"scheduled_for", schedule.NextTrigger.Format(time.RFC3339))

	if !schedule.IsDue(opts.Now()) {
		logger.DebugKV(ctx, "Alarm not due")
		return nil
	}

	logger.Info(ctx, "Alarm due")

	if _, err = opts.Registration.Trigger(ctx); err != nil {
		return fmt.Errorf("trigger alarm: %w", err)
	}

	present(ctx, opts)

	return nil
}

// present consumes the triggered flag and, if it was set, rings until the
// screen closes. Failures are logged so that polling continues.
func present(ctx context.Context, opts *Options) {
	triggered, err := opts.Registration.WasTriggered(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Read triggered flag failed", "error", err)
		return
	}

	if !triggered {
		return
	}

	logger.Info(ctx, "Presenting ringing screen")

	if err = opts.Ring(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorKV(ctx, "Ringing screen failed", "error", err)
	}
}
