package dismissal

import "time"

// Token identifies an action registered with a Scheduler.
// The zero Token is never issued and cancelling it is a no-op.
type Token uint64

// Scheduler runs functions later on the session's execution context.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time
	// After runs fn once after d.
	After(d time.Duration, fn func()) Token
	// Every runs fn every interval until cancelled.
	Every(interval time.Duration, fn func()) Token
	// Cancel prevents any further run of the token's function.
	Cancel(token Token)
}

// SoundHandle identifies a loaded sound. The zero handle means "no sound".
type SoundHandle uint64

// AudioPlayer plays the alarm sound.
type AudioPlayer interface {
	// Load prepares resource for playback and calls done on the session's
	// execution context once ready, possibly after an arbitrary delay.
	Load(resource string, done func(SoundHandle, error))
	// Play starts the sound from its beginning at the given linear volume.
	Play(handle SoundHandle, loop bool, volume float64)
	// SetVolume changes the volume without interrupting playback.
	SetVolume(handle SoundHandle, volume float64)
	// Stop halts playback.
	Stop(handle SoundHandle)
	// Release frees the sound. The handle must not be used afterwards.
	Release(handle SoundHandle)
}

// Vibrator drives the vibration motor, or whatever stands in for it.
type Vibrator interface {
	// Vibrate plays pattern, a list of alternating wait and vibrate
	// durations starting with a wait, repeating it from the start if repeat.
	Vibrate(pattern []time.Duration, repeat bool)
	// Cancel stops any vibration in progress.
	Cancel()
}
