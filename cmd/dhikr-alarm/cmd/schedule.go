package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	domain "github.com/oshokin/dhikr-alarm/internal/domain/alarm"
	"github.com/oshokin/dhikr-alarm/internal/service/registration"
)

var (
	// in schedules the alarm relative to now instead of at a clock time.
	in time.Duration

	// errClockOrDelay is returned when set gets both or neither of HH:MM and
	// a positive --in.
	errClockOrDelay = errors.New("provide either HH:MM or a positive --in")

	// setCmd arms the alarm.
	setCmd = &cobra.Command{
		Use:   "set [HH:MM]",
		Short: "Schedule the alarm.",
		Long: `Schedule the alarm at a clock time or after a delay.

A clock time that has already passed today schedules the alarm for tomorrow.
Only one alarm exists; setting it again replaces the previous time.`,
		Example: "  dhikr-alarm set 05:30\n  dhikr-alarm set --in 10m",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if in < 0 || (len(args) == 0) == (in == 0) {
				return errClockOrDelay
			}

			service := newRegistration(settings)

			if !service.RequestExactAlarmPermission(ctx) {
				return errPermissionDenied
			}

			var (
				schedule *domain.Schedule
				err      error
			)

			if in > 0 {
				schedule, err = service.ScheduleAt(ctx, time.Now().Add(in))
			} else {
				schedule, err = scheduleClock(ctx, service, args[0])
			}

			if err != nil {
				return err
			}

			printSchedule(cmd.OutOrStdout(), schedule)

			return nil
		},
	}

	// cancelCmd disarms the alarm.
	cancelCmd = &cobra.Command{
		Use:   "cancel",
		Short: "Cancel the scheduled alarm.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schedule, err := newRegistration(settings).Cancel(cmd.Context())
			if err != nil {
				return err
			}

			printSchedule(cmd.OutOrStdout(), schedule)

			return nil
		},
	}

	// statusCmd prints the alarm schedule.
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the scheduled alarm.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schedule, err := newRegistration(settings).Status(cmd.Context())
			if err != nil {
				return err
			}

			printSchedule(cmd.OutOrStdout(), schedule)

			return nil
		},
	}
)

// scheduleClock parses HH:MM and arms the alarm for its next occurrence.
func scheduleClock(ctx context.Context, service *registration.Service, value string) (*domain.Schedule, error) {
	hour, minute, err := domain.ParseClock(value)
	if err != nil {
		return nil, err
	}

	return service.ScheduleClock(ctx, hour, minute)
}

// printSchedule writes a one-line description of schedule.
func printSchedule(w io.Writer, schedule *domain.Schedule) {
	switch {
	case schedule.IsArmed:
		_, _ = fmt.Fprintf(w, "Alarm set for %s (%s, in %s)\n",
			schedule.ClockString(),
			schedule.NextTrigger.Format(time.DateTime),
			time.Until(schedule.NextTrigger).Round(time.Second))
	case schedule.IsTriggered:
		_, _ = fmt.Fprintln(w, "Alarm fired and is waiting to be dismissed")
	default:
		_, _ = fmt.Fprintln(w, "No alarm set")
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	setCmd.Flags().DurationVar(&in, "in", 0, "ring after this delay instead of at a clock time")
}
