package dismissal

import "time"

// countdownUnit is the step of the remaining-seconds display.
const countdownUnit = time.Second

// resumeTarget is what the ResumeTimer silences and resumes.
type resumeTarget interface {
	// silence suppresses audio and vibration.
	silence()
	// resume restores audio and vibration.
	resume()
	// finished reports whether the session reached a terminal state.
	finished() bool
	// changed tells the target that the countdown moved.
	changed()
}

// ResumeTimer silences the alarm after a tap and resumes it once the silence
// window elapses, counting the remaining seconds down in the meantime.
type ResumeTimer struct {
	// scheduler runs the resume and tick actions.
	scheduler Scheduler
	// target receives silence and resume calls.
	target resumeTarget

	// window is how long the alarm stays silent after Arm.
	window time.Duration
	// tick is the countdown period.
	tick time.Duration

	// resumeToken is the pending single-shot resume action, zero if none.
	resumeToken Token
	// tickToken is the pending repeating countdown action, zero if none.
	tickToken Token
	// deadline is when the pending resume fires.
	deadline time.Time
	// remaining is the countdown value in whole seconds.
	remaining int
}

// newResumeTimer creates a disarmed timer.
func newResumeTimer(scheduler Scheduler, target resumeTarget, window, tick time.Duration) *ResumeTimer {
	return &ResumeTimer{
		scheduler: scheduler,
		target:    target,
		window:    window,
		tick:      tick,
	}
}

// Arm cancels any pending resume and countdown, silences the target
// immediately and schedules a fresh resume after the silence window.
func (r *ResumeTimer) Arm() {
	r.Disarm()
	r.target.silence()

	r.deadline = r.scheduler.Now().Add(r.window)
	// Truncated on purpose: a window that is not a whole number of seconds
	// shows 0 for a moment before the resume fires.
	r.remaining = int(r.window / countdownUnit)

	var resumeToken, tickToken Token

	resumeToken = r.scheduler.After(r.window, func() {
		r.fire(resumeToken)
	})
	tickToken = r.scheduler.Every(r.tick, func() {
		r.countDown(tickToken)
	})

	r.resumeToken = resumeToken
	r.tickToken = tickToken
}

// Disarm cancels the pending resume and countdown. It is safe to call when
// nothing is scheduled.
func (r *ResumeTimer) Disarm() {
	if r.resumeToken != 0 {
		r.scheduler.Cancel(r.resumeToken)
		r.resumeToken = 0
	}

	if r.tickToken != 0 {
		r.scheduler.Cancel(r.tickToken)
		r.tickToken = 0
	}
}

// IsArmed reports whether a resume is pending.
func (r *ResumeTimer) IsArmed() bool {
	return r.resumeToken != 0
}

// Deadline returns when the pending resume fires, or the last deadline if none is pending.
func (r *ResumeTimer) Deadline() time.Time {
	return r.deadline
}

// Remaining returns the countdown value in whole seconds.
func (r *ResumeTimer) Remaining() int {
	return r.remaining
}

// fire runs the resume action. Tokens from an earlier Arm are ignored.
func (r *ResumeTimer) fire(token Token) {
	if token != r.resumeToken {
		return
	}

	r.resumeToken = 0

	if r.tickToken != 0 {
		r.scheduler.Cancel(r.tickToken)
		r.tickToken = 0
	}

	r.remaining = 0

	if r.target.finished() {
		return
	}

	r.target.resume()
}

// countDown runs one countdown tick, floored at zero.
func (r *ResumeTimer) countDown(token Token) {
	if token != r.tickToken || r.target.finished() {
		return
	}

	if r.remaining > 0 {
		r.remaining--
	}

	r.target.changed()
}
