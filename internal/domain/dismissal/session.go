package dismissal

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/oshokin/dhikr-alarm/internal/logger"
)

const (
	// DefaultGoalCount is the number of taps needed to dismiss the alarm.
	DefaultGoalCount = 100
	// DefaultSilenceDuration is the silence window after every tap.
	DefaultSilenceDuration = 5 * time.Second
	// DefaultTickInterval is the countdown period.
	DefaultTickInterval = time.Second
	// fullVolume is the playback volume used when none is configured.
	fullVolume = 1.0
	// mutedVolume silences playback without stopping it.
	mutedVolume = 0.0
)

// Options configures a Session. Zero values fall back to defaults.
type Options struct {
	// GoalCount is the number of taps needed to complete the session.
	GoalCount int
	// SilenceDuration is how long the alarm stays silent after a tap.
	SilenceDuration time.Duration
	// TickInterval is the countdown period.
	TickInterval time.Duration
	// SoundResource is passed to AudioPlayer.Load.
	SoundResource string
	// Volume is the playback volume while ringing.
	Volume float64
	// VibrationPattern is passed to Vibrator.Vibrate while ringing.
	VibrationPattern []time.Duration
	// Phrases is the set the session picks its display phrase from.
	Phrases []string
	// Random picks the phrase. The global source is used when nil.
	Random *rand.Rand
	// OnComplete is invoked exactly once when the goal is reached.
	OnComplete func()
	// OnChange is invoked after every observable change.
	OnChange func(Snapshot)
}

// Snapshot is a copy of the session's observable state.
type Snapshot struct {
	// State is the state machine's current state.
	State State
	// TapCount is the number of taps counted so far.
	TapCount int
	// GoalCount is the number of taps needed to complete.
	GoalCount int
	// Remaining is the countdown value while silenced.
	Remaining int
	// SilenceDeadline is when the alarm resumes while silenced.
	SilenceDeadline time.Time
	// Phrase is the display phrase picked for this session.
	Phrase string
}

// Session is one ringing-to-dismissal episode. It owns the sound handle and
// the vibration pattern for its lifetime.
type Session struct {
	// audio plays the alarm sound.
	audio AudioPlayer
	// vibrator plays the vibration pattern.
	vibrator Vibrator
	// timer runs the silence/resume cycle.
	timer *ResumeTimer
	// log is the session-scoped logger.
	log *zap.SugaredLogger

	// goal is the number of taps needed to complete.
	goal int
	// volume is the playback volume while ringing.
	volume float64
	// resource is the sound to load.
	resource string
	// pattern is the vibration pattern.
	pattern []time.Duration
	// phrase is the display phrase picked at creation.
	phrase string

	// onComplete is the host's completion callback.
	onComplete func()
	// onChange is the host's redraw callback.
	onChange func(Snapshot)

	// state is the current state.
	state State
	// tapCount is the number of taps counted so far.
	tapCount int
	// sound is the loaded sound, zero until the load completes.
	sound SoundHandle
	// vibrating is true while a vibration pattern is active.
	vibrating bool
}

// NewSession creates an idle session. Call Start once the alarm screen is shown.
func NewSession(
	ctx context.Context,
	audio AudioPlayer,
	vibrator Vibrator,
	scheduler Scheduler,
	opts Options,
) *Session {
	if opts.GoalCount <= 0 {
		opts.GoalCount = DefaultGoalCount
	}

	if opts.SilenceDuration <= 0 {
		opts.SilenceDuration = DefaultSilenceDuration
	}

	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}

	if opts.Volume <= 0 || opts.Volume > fullVolume {
		opts.Volume = fullVolume
	}

	s := &Session{
		audio:      audio,
		vibrator:   vibrator,
		log:        logger.FromContext(ctx).Named("dismissal"),
		goal:       opts.GoalCount,
		volume:     opts.Volume,
		resource:   opts.SoundResource,
		pattern:    append([]time.Duration(nil), opts.VibrationPattern...),
		phrase:     PickPhrase(opts.Random, opts.Phrases),
		onComplete: opts.OnComplete,
		onChange:   opts.OnChange,
		state:      StateIdle,
	}

	s.timer = newResumeTimer(scheduler, s, opts.SilenceDuration, opts.TickInterval)

	return s
}

// Start begins ringing: looping audio at full volume and a repeating
// vibration pattern. Audio is best-effort, a load failure is only logged.
func (s *Session) Start() {
	if s.state != StateIdle {
		return
	}

	s.state = StateRinging
	s.startVibration()
	s.audio.Load(s.resource, s.soundLoaded)

	s.log.Infow("Alarm ringing", "goal_count", s.goal, "phrase", s.phrase)
	s.notify()
}

// Tap counts one tap. Reaching the goal completes the session; any other
// tap silences the alarm and restarts the silence window.
func (s *Session) Tap() {
	if !s.state.IsLive() || s.tapCount >= s.goal {
		return
	}

	s.tapCount++

	if s.tapCount >= s.goal {
		s.complete()
		return
	}

	s.timer.Arm()
	s.log.Debugw("Tap counted", "tap_count", s.tapCount, "resume_at", s.timer.Deadline())
	s.notify()
}

// Decrement takes one tap back, never going below zero. It does not touch
// the ring state or the silence window.
func (s *Session) Decrement() {
	if s.state.IsTerminal() || s.tapCount == 0 {
		return
	}

	s.tapCount--
	s.notify()
}

// Teardown releases every effect the session holds. It is meant for the host
// leaving the screen before completion, and is safe to call any number of
// times from any state.
func (s *Session) Teardown() {
	if s.state == StateClosed {
		return
	}

	s.releaseEffects()

	if s.state == StateComplete {
		return
	}

	s.log.Infow("Alarm screen closed before completion", "tap_count", s.tapCount)
	s.state = StateClosed
	s.notify()
}

// Snapshot returns the session's observable state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		State:           s.state,
		TapCount:        s.tapCount,
		GoalCount:       s.goal,
		Remaining:       s.timer.Remaining(),
		SilenceDeadline: s.timer.Deadline(),
		Phrase:          s.phrase,
	}
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// complete moves to the terminal state, releases effects and reports to the host.
func (s *Session) complete() {
	s.state = StateComplete
	s.releaseEffects()

	s.log.Infow("Alarm dismissed", "tap_count", s.tapCount)
	s.notify()

	if s.onComplete != nil {
		s.onComplete()
	}
}

// releaseEffects stops audio, vibration and the silence window.
func (s *Session) releaseEffects() {
	s.timer.Disarm()
	s.stopVibration()

	if s.sound != 0 {
		s.audio.Stop(s.sound)
		s.audio.Release(s.sound)
		s.sound = 0
	}
}

// soundLoaded is the audio load completion. It may arrive in any state.
func (s *Session) soundLoaded(handle SoundHandle, err error) {
	if err != nil {
		s.log.Warnw("Alarm sound unavailable, continuing without audio", "resource", s.resource, "error", err)
		return
	}

	if !s.state.IsLive() {
		s.audio.Release(handle)
		return
	}

	s.sound = handle

	volume := s.volume
	if s.state == StateSilenced {
		volume = mutedVolume
	}

	s.audio.Play(handle, true, volume)
}

// silence implements resumeTarget. Volume goes to zero instead of stopping
// so that resuming does not pay the load latency again.
func (s *Session) silence() {
	s.state = StateSilenced
	s.stopVibration()

	if s.sound != 0 {
		s.audio.SetVolume(s.sound, mutedVolume)
	}
}

// resume implements resumeTarget. The sound is already decoded, so replaying
// from the loop start costs no load.
func (s *Session) resume() {
	s.state = StateRinging
	s.startVibration()

	if s.sound != 0 {
		s.audio.Play(s.sound, true, s.volume)
	}

	s.log.Debugw("Silence window elapsed, ringing again", "tap_count", s.tapCount)
	s.notify()
}

// finished implements resumeTarget.
func (s *Session) finished() bool {
	return !s.state.IsLive()
}

// changed implements resumeTarget.
func (s *Session) changed() {
	s.notify()
}

// startVibration starts the repeating pattern.
func (s *Session) startVibration() {
	s.vibrator.Vibrate(s.pattern, true)
	s.vibrating = true
}

// stopVibration cancels the pattern if one is active.
func (s *Session) stopVibration() {
	if !s.vibrating {
		return
	}

	s.vibrator.Cancel()
	s.vibrating = false
}

// notify hands a snapshot to the host.
func (s *Session) notify() {
	if s.onChange != nil {
		s.onChange(s.Snapshot())
	}
}
