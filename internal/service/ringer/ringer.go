package ringer

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/oshokin/dhikr-alarm/internal/config"
	"github.com/oshokin/dhikr-alarm/internal/domain/dismissal"
	"github.com/oshokin/dhikr-alarm/internal/logger"
	"github.com/oshokin/dhikr-alarm/internal/platform/audio"
	"github.com/oshokin/dhikr-alarm/internal/platform/loop"
	"github.com/oshokin/dhikr-alarm/internal/platform/vibration"
)

var errConfigIsNotSet = errors.New("configuration is not set")

// Options configures a ringing screen.
type Options struct {
	// Config supplies the session settings and the marker path.
	Config *config.Config
	// NewDisplay opens the drawing surface. A tcell terminal screen is used when nil.
	NewDisplay func() (Display, error)
	// AudioOptions are passed to audio.NewPlayer.
	AudioOptions []audio.Option
	// Random picks the phrase. The global source is used when nil.
	Random *rand.Rand
	// GoalCount overrides the tap goal. Zero keeps dismissal.DefaultGoalCount;
	// only tests shorten the session.
	GoalCount int
	// SilenceDuration overrides the silence window. Zero keeps
	// dismissal.DefaultSilenceDuration.
	SilenceDuration time.Duration
}

// Result describes how a ringing screen ended.
type Result struct {
	// Completed is true when the goal was reached.
	Completed bool
	// TapCount is the final tap count.
	TapCount int
	// GoalCount is the session's goal.
	GoalCount int
	// Duration is how long the screen was shown.
	Duration time.Duration
}

// Run shows the ringing screen until the user completes the goal and closes
// the success screen, leaves, or ctx is cancelled.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	if opts == nil || opts.Config == nil {
		return nil, errConfigIsNotSet
	}

	cfg := opts.Config
	ctx = logger.WithKV(logger.WithName(ctx, "ringer"), "pid", os.Getpid())

	marker := NewMarker(cfg.MarkerFile)
	if err := marker.Acquire(ctx); err != nil {
		return nil, err
	}

	defer func() {
		if err := marker.Release(); err != nil {
			logger.WarnKV(ctx, "Failed to release session marker", "error", err)
		}
	}()

	newDisplay := opts.NewDisplay
	if newDisplay == nil {
		newDisplay = newTerminal
	}

	display, err := newDisplay()
	if err != nil {
		return nil, fmt.Errorf("open screen: %w", err)
	}

	if err = display.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}

	defer display.Fini()

	r := newRinger(ctx, display, opts)
	defer r.close()

	started := time.Now()

	r.run(ctx)

	snapshot := r.session.Snapshot()
	result := &Result{
		Completed: snapshot.State == dismissal.StateComplete,
		TapCount:  snapshot.TapCount,
		GoalCount: snapshot.GoalCount,
		Duration:  time.Since(started),
	}

	logger.InfoKV(ctx, "Ringing screen closed",
		"completed", result.Completed,
		"taps", result.TapCount,
		"goal", result.GoalCount,
		"duration", result.Duration)

	return result, nil
}

// ringer binds one session to one display.
type ringer struct {
	// display is the terminal.
	display Display
	// loop serializes input, timers and audio completions.
	loop *loop.Loop
	// player plays the alarm sound.
	player *audio.Player
	// pulser drives the bell.
	pulser *vibration.Pulser
	// view draws the screens.
	view *view
	// session is the dismissal state machine.
	session *dismissal.Session
}

func newRinger(ctx context.Context, display Display, opts *Options) *ringer {
	cfg := opts.Config
	eventLoop := loop.New(loop.DefaultQueueSize)

	r := &ringer{
		display: display,
		loop:    eventLoop,
		player:  audio.NewPlayer(ctx, eventLoop.Post, opts.AudioOptions...),
		pulser: vibration.New(vibration.SinkFunc(func(time.Duration) {
			_ = display.Beep()
		})),
		view: newView(display),
	}

	r.session = dismissal.NewSession(ctx, r.player, r.pulser, eventLoop, dismissal.Options{
		GoalCount:        opts.GoalCount,
		SilenceDuration:  opts.SilenceDuration,
		TickInterval:     cfg.TickInterval,
		SoundResource:    cfg.SoundFile,
		Volume:           cfg.Volume,
		VibrationPattern: cfg.VibrationPattern,
		Phrases:          cfg.Phrases,
		Random:           opts.Random,
		OnComplete:       r.view.success,
		OnChange:         r.view.render,
	})

	return r
}

// run drives the loop until the screen is closed or ctx is done.
func (r *ringer) run(ctx context.Context) {
	r.loop.Post(func() {
		r.view.render(r.session.Snapshot())
		r.session.Start()
	})

	go r.pumpInput()

	r.loop.Run(ctx)
}

// pumpInput forwards terminal events onto the loop until the display is
// finalized or the loop stops.
func (r *ringer) pumpInput() {
	for {
		event := r.display.PollEvent()
		if event == nil {
			return
		}

		if !r.loop.Post(func() { r.handle(event) }) {
			return
		}
	}
}

// handle applies one terminal event. It runs on the loop.
func (r *ringer) handle(event tcell.Event) {
	act := actionFor(event)

	if r.view.done {
		if _, ok := event.(*tcell.EventKey); ok {
			r.loop.Stop()
		} else if act == actionRedraw {
			r.view.redraw()
		}

		return
	}

	switch act {
	case actionTap:
		r.session.Tap()
	case actionDecrement:
		r.session.Decrement()
	case actionLeave:
		r.session.Teardown()
		r.loop.Stop()
	case actionRedraw:
		r.view.redraw()
	case actionNone:
	}
}

// close releases every effect. The loop has stopped, so nothing else
// touches the session.
func (r *ringer) close() {
	r.session.Teardown()
	r.pulser.Cancel()
	r.player.Close()
}

func newTerminal() (Display, error) {
	return tcell.NewScreen()
}
