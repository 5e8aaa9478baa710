package dismissal

import (
	"fmt"
	"time"
)

// fakeTimer is one registration in fakeScheduler.
type fakeTimer struct {
	// at is the next firing time.
	at time.Time
	// every is the repeat interval, zero for single-shot timers.
	every time.Duration
	// fn is the scheduled function.
	fn func()
}

// fakeScheduler is a manual-clock Scheduler. Nothing fires until Advance.
type fakeScheduler struct {
	// now is the current fake time.
	now time.Time
	// last is the last issued token.
	last Token
	// timers holds the active registrations.
	timers map[Token]*fakeTimer
	// ignoreCancel keeps cancelled timers around to simulate a callback that
	// was already on its way when Cancel was called.
	ignoreCancel bool
}

// newFakeScheduler creates a scheduler starting at a fixed instant.
func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{
		now:    time.Date(2026, 10, 19, 5, 0, 0, 0, time.UTC),
		timers: make(map[Token]*fakeTimer),
	}
}

func (f *fakeScheduler) Now() time.Time {
	return f.now
}

func (f *fakeScheduler) After(d time.Duration, fn func()) Token {
	f.last++
	f.timers[f.last] = &fakeTimer{at: f.now.Add(d), fn: fn}

	return f.last
}

func (f *fakeScheduler) Every(interval time.Duration, fn func()) Token {
	f.last++
	f.timers[f.last] = &fakeTimer{at: f.now.Add(interval), every: interval, fn: fn}

	return f.last
}

func (f *fakeScheduler) Cancel(token Token) {
	if f.ignoreCancel {
		return
	}

	delete(f.timers, token)
}

// Advance moves the clock forward by d, firing due timers in time order.
func (f *fakeScheduler) Advance(d time.Duration) {
	target := f.now.Add(d)

	for {
		token, next := f.earliest(target)
		if next == nil {
			break
		}

		f.now = next.at

		if next.every > 0 {
			next.at = next.at.Add(next.every)
		} else {
			delete(f.timers, token)
		}

		next.fn()
	}

	f.now = target
}

// Active returns the number of live registrations.
func (f *fakeScheduler) Active() int {
	return len(f.timers)
}

// earliest returns the first timer due at or before limit, lowest token first on ties.
func (f *fakeScheduler) earliest(limit time.Time) (Token, *fakeTimer) {
	var (
		bestToken Token
		best      *fakeTimer
	)

	for token, timer := range f.timers {
		if timer.at.After(limit) {
			continue
		}

		if best == nil || timer.at.Before(best.at) || (timer.at.Equal(best.at) && token < bestToken) {
			bestToken, best = token, timer
		}
	}

	return bestToken, best
}

// fakeAudio records every AudioPlayer call. Loads complete only when the
// test calls finishLoad.
type fakeAudio struct {
	// calls lists the calls in order, e.g. "play 1 loop=true vol=1.00".
	calls []string
	// pending holds load callbacks that have not completed yet.
	pending []func(SoundHandle, error)
	// next is the last issued handle.
	next SoundHandle
	// volume is the last volume set per handle.
	volume map[SoundHandle]float64
	// playing is true per handle between Play and Stop.
	playing map[SoundHandle]bool
	// released marks released handles.
	released map[SoundHandle]bool
}

func newFakeAudio() *fakeAudio {
	return &fakeAudio{
		volume:   make(map[SoundHandle]float64),
		playing:  make(map[SoundHandle]bool),
		released: make(map[SoundHandle]bool),
	}
}

func (a *fakeAudio) Load(resource string, done func(SoundHandle, error)) {
	a.calls = append(a.calls, "load "+resource)
	a.pending = append(a.pending, done)
}

func (a *fakeAudio) Play(handle SoundHandle, loop bool, volume float64) {
	a.calls = append(a.calls, fmt.Sprintf("play %d loop=%t vol=%.2f", handle, loop, volume))
	a.playing[handle] = true
	a.volume[handle] = volume
}

func (a *fakeAudio) SetVolume(handle SoundHandle, volume float64) {
	a.calls = append(a.calls, fmt.Sprintf("volume %d %.2f", handle, volume))
	a.volume[handle] = volume
}

func (a *fakeAudio) Stop(handle SoundHandle) {
	a.calls = append(a.calls, fmt.Sprintf("stop %d", handle))
	a.playing[handle] = false
}

func (a *fakeAudio) Release(handle SoundHandle) {
	a.calls = append(a.calls, fmt.Sprintf("release %d", handle))
	a.released[handle] = true
}

// finishLoad completes the oldest pending load with a new handle, or with err.
func (a *fakeAudio) finishLoad(err error) SoundHandle {
	done := a.pending[0]
	a.pending = a.pending[1:]

	if err != nil {
		done(0, err)
		return 0
	}

	a.next++
	done(a.next, nil)

	return a.next
}

// fakeVibrator tracks whether a pattern is running.
type fakeVibrator struct {
	// active is true between Vibrate and Cancel.
	active bool
	// starts counts Vibrate calls.
	starts int
	// cancels counts Cancel calls.
	cancels int
	// pattern is the last pattern passed to Vibrate.
	pattern []time.Duration
}

func (v *fakeVibrator) Vibrate(pattern []time.Duration, _ bool) {
	v.active = true
	v.starts++
	v.pattern = pattern
}

func (v *fakeVibrator) Cancel() {
	v.active = false
	v.cancels++
}
