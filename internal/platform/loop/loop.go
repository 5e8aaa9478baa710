package loop

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/dhikr-alarm/internal/domain/dismissal"
)

// DefaultQueueSize is the number of posted functions buffered before Post blocks.
const DefaultQueueSize = 64

// Loop runs posted functions sequentially on the goroutine that calls Run.
type Loop struct {
	// queue carries posted functions to Run.
	queue chan func()
	// quit is closed by Stop.
	quit chan struct{}
	// stopOnce guards closing quit.
	stopOnce sync.Once

	// mu protects last and active.
	mu sync.Mutex
	// last is the last issued token.
	last dismissal.Token
	// active maps live tokens to the function stopping their Go timer.
	active map[dismissal.Token]func()
}

// New creates a loop buffering up to queueSize posted functions.
func New(queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	return &Loop{
		queue:  make(chan func(), queueSize),
		quit:   make(chan struct{}),
		active: make(map[dismissal.Token]func()),
	}
}

// Run executes posted functions until ctx is done or Stop is called.
func (l *Loop) Run(ctx context.Context) {
	defer l.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.quit:
			return
		case fn := <-l.queue:
			fn()
		}
	}
}

// Post queues fn to run on the loop. It returns false if the loop has stopped.
// It must not be called from the loop itself while the queue is full.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.quit:
		return false
	default:
	}

	select {
	case l.queue <- fn:
		return true
	case <-l.quit:
		return false
	}
}

// Stop ends Run and cancels every pending timer. It is safe to call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.quit)

		l.mu.Lock()
		stops := make([]func(), 0, len(l.active))

		for token, stop := range l.active {
			stops = append(stops, stop)
			delete(l.active, token)
		}
		l.mu.Unlock()

		for _, stop := range stops {
			stop()
		}
	})
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.quit
}

// Now implements dismissal.Scheduler.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// After implements dismissal.Scheduler.
func (l *Loop) After(d time.Duration, fn func()) dismissal.Token {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.last++
	token := l.last

	timer := time.AfterFunc(d, func() {
		l.Post(func() {
			if l.release(token) {
				fn()
			}
		})
	})

	l.active[token] = func() {
		timer.Stop()
	}

	return token
}

// Every implements dismissal.Scheduler.
func (l *Loop) Every(interval time.Duration, fn func()) dismissal.Token {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.last++
	token := l.last

	var (
		ticker = time.NewTicker(interval)
		stop   = make(chan struct{})
	)

	go func() {
		for {
			select {
			case <-stop:
				return
			case <-l.quit:
				return
			case <-ticker.C:
				l.Post(func() {
					if l.isActive(token) {
						fn()
					}
				})
			}
		}
	}()

	l.active[token] = func() {
		ticker.Stop()
		close(stop)
	}

	return token
}

// Cancel implements dismissal.Scheduler. Unknown tokens are ignored.
func (l *Loop) Cancel(token dismissal.Token) {
	l.mu.Lock()
	stop, ok := l.active[token]
	delete(l.active, token)
	l.mu.Unlock()

	if ok {
		stop()
	}
}

// Pending returns the number of live timers.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.active)
}

// release removes a single-shot token, reporting whether it was still live.
func (l *Loop) release(token dismissal.Token) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.active[token]
	delete(l.active, token)

	return ok
}

// isActive reports whether a token was not cancelled.
func (l *Loop) isActive(token dismissal.Token) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.active[token]

	return ok
}
