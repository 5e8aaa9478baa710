package vibration

import (
	"sync"
	"time"
)

// Sink receives one pulse per "on" segment of a pattern.
type Sink interface {
	Pulse(d time.Duration)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(d time.Duration)

// Pulse calls f(d).
func (f SinkFunc) Pulse(d time.Duration) {
	f(d)
}

// Pulser plays vibration patterns on a Sink.
type Pulser struct {
	// sink receives pulses.
	sink Sink

	// mu protects stop.
	mu sync.Mutex
	// stop is closed to end the current pattern, nil when idle.
	stop chan struct{}
}

// New creates a Pulser writing to sink.
func New(sink Sink) *Pulser {
	return &Pulser{sink: sink}
}

// Vibrate implements dismissal.Vibrator. The pattern alternates wait and
// pulse durations, starting with a wait. A pattern that adds up to zero is
// played once even if repeat is set.
func (p *Pulser) Vibrate(pattern []time.Duration, repeat bool) {
	p.Cancel()

	if len(pattern) == 0 {
		return
	}

	steps := append([]time.Duration(nil), pattern...)

	var total time.Duration
	for _, step := range steps {
		total += step
	}

	stop := make(chan struct{})

	p.mu.Lock()
	p.stop = stop
	p.mu.Unlock()

	go p.run(steps, repeat && total > 0, stop)
}

// Cancel implements dismissal.Vibrator. It is safe to call when idle.
func (p *Pulser) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
}

// IsActive reports whether a pattern is playing.
func (p *Pulser) IsActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.stop != nil
}

// run plays steps until they end or stop is closed.
func (p *Pulser) run(steps []time.Duration, repeat bool, stop chan struct{}) {
	defer p.finish(stop)

	for {
		for i, step := range steps {
			if i%2 == 1 {
				select {
				case <-stop:
					return
				default:
				}

				p.sink.Pulse(step)
			}

			if !wait(step, stop) {
				return
			}
		}

		if !repeat {
			return
		}
	}
}

// finish marks the pulser idle if stop is still the current pattern.
func (p *Pulser) finish(stop chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stop == stop {
		p.stop = nil
	}
}

// wait sleeps for d unless stop closes first. It reports whether the full duration elapsed.
func wait(d time.Duration, stop chan struct{}) bool {
	if d <= 0 {
		select {
		case <-stop:
			return false
		default:
			return true
		}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-stop:
		return false
	case <-timer.C:
		return true
	}
}
