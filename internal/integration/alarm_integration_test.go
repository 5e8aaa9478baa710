package integration

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/dhikr-alarm/internal/config"
	"github.com/oshokin/dhikr-alarm/internal/domain/dismissal"
	"github.com/oshokin/dhikr-alarm/internal/platform/audio"
	"github.com/oshokin/dhikr-alarm/internal/repository/schedule"
	"github.com/oshokin/dhikr-alarm/internal/service/registration"
	"github.com/oshokin/dhikr-alarm/internal/service/ringer"
	"github.com/oshokin/dhikr-alarm/internal/service/watcher"
)

// scriptedDisplay replays a fixed list of key presses and discards drawing.
type scriptedDisplay struct {
	events chan tcell.Event
	done   chan struct{}
	once   sync.Once
}

func newScriptedDisplay(events []tcell.Event) *scriptedDisplay {
	queue := make(chan tcell.Event, len(events))
	for _, event := range events {
		queue <- event
	}

	return &scriptedDisplay{events: queue, done: make(chan struct{})}
}

func (d *scriptedDisplay) Init() error { return nil }
func (d *scriptedDisplay) Fini()       { d.once.Do(func() { close(d.done) }) }
func (d *scriptedDisplay) Clear()      {}
func (d *scriptedDisplay) Show()       {}
func (d *scriptedDisplay) Beep() error { return nil }

func (d *scriptedDisplay) Size() (int, int) {
	return 80, 24
}

func (d *scriptedDisplay) SetContent(int, int, rune, []rune, tcell.Style) {}

func (d *scriptedDisplay) PollEvent() tcell.Event {
	select {
	case event := <-d.events:
		return event
	case <-d.done:
		return nil
	}
}

// taps returns n space presses followed by a key closing the success screen.
func taps(n int) []tcell.Event {
	events := make([]tcell.Event, 0, n+1)
	for range n {
		events = append(events, tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	}

	return append(events, tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
}

// TestAlarm_ScheduledRingDismissedAfterGoal schedules an alarm, lets the
// watcher fire it and dismisses it with the default 100 taps.
func TestAlarm_ScheduledRingDismissedAfterGoal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	// Default settings with files in a temporary folder and no speaker.
	cfg := config.Default()
	cfg.StateFile = filepath.Join(dir, config.DefaultStateFilename)
	cfg.MarkerFile = filepath.Join(dir, config.DefaultMarkerFilename)
	cfg.SoundFile = filepath.Join(dir, "missing.mp3")

	// Arm the alarm a moment into the future.
	service := registration.New(schedule.NewFileRepository(cfg.StateFile))

	scheduled, err := service.ScheduleAt(context.Background(), time.Now().Add(50*time.Millisecond))
	require.NoError(t, err)
	require.True(t, scheduled.IsArmed)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var results []*ringer.Result

	// Ring through the real ringing screen with scripted input, then stop watching.
	ring := func(ctx context.Context) error {
		defer cancel()

		result, ringErr := ringer.Run(ctx, &ringer.Options{
			Config: cfg,
			NewDisplay: func() (ringer.Display, error) {
				return newScriptedDisplay(taps(dismissal.DefaultGoalCount)), nil
			},
			AudioOptions: []audio.Option{audio.WithoutSpeaker()},
		})
		if ringErr != nil {
			return ringErr
		}

		results = append(results, result)

		return nil
	}

	err = watcher.Run(ctx, &watcher.Options{
		Registration: service,
		Ring:         ring,
		PollInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	// The alarm rang once and was dismissed with the full count.
	require.Len(t, results, 1)
	require.True(t, results[0].Completed)
	require.Equal(t, dismissal.DefaultGoalCount, results[0].TapCount)

	// The schedule is disarmed and the fired flag consumed.
	status, err := service.Status(context.Background())
	require.NoError(t, err)
	require.False(t, status.IsArmed)
	require.False(t, status.IsTriggered)
	require.NoFileExists(t, cfg.MarkerFile)
}

// TestAlarm_RingerReclaimsOwnMarker checks that a marker naming the current
// process does not block the ringing screen.
func TestAlarm_RingerReclaimsOwnMarker(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg := config.Default()
	cfg.MarkerFile = filepath.Join(dir, config.DefaultMarkerFilename)
	cfg.SoundFile = filepath.Join(dir, "missing.mp3")

	// Hold the marker as this process.
	marker := ringer.NewMarker(cfg.MarkerFile)
	require.NoError(t, marker.Acquire(context.Background()))

	defer func() {
		require.NoError(t, marker.Release())
	}()

	result, err := ringer.Run(context.Background(), &ringer.Options{
		Config: cfg,
		NewDisplay: func() (ringer.Display, error) {
			return newScriptedDisplay(taps(1)), nil
		},
		AudioOptions: []audio.Option{audio.WithoutSpeaker()},
		GoalCount:    1,
	})
	require.NoError(t, err)
	require.True(t, result.Completed)
}
