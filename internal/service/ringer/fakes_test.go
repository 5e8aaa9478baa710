package ringer

import (
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mitchellh/go-ps"
)

// fakeDisplay records drawn cells and replays queued events.
type fakeDisplay struct {
	mu       sync.Mutex
	width    int
	height   int
	cells    map[[2]int]rune
	beeps    int
	initErr  error
	finished bool

	events chan tcell.Event
	done   chan struct{}
	once   sync.Once
}

func newFakeDisplay(events ...tcell.Event) *fakeDisplay {
	queue := make(chan tcell.Event, len(events))
	for _, event := range events {
		queue <- event
	}

	return &fakeDisplay{
		width:  80,
		height: 24,
		cells:  make(map[[2]int]rune),
		events: queue,
		done:   make(chan struct{}),
	}
}

func (d *fakeDisplay) Init() error {
	return d.initErr
}

func (d *fakeDisplay) Fini() {
	d.once.Do(func() {
		d.mu.Lock()
		d.finished = true
		d.mu.Unlock()

		close(d.done)
	})
}

func (d *fakeDisplay) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cells = make(map[[2]int]rune)
}

func (d *fakeDisplay) Show() {}

func (d *fakeDisplay) Size() (int, int) {
	return d.width, d.height
}

func (d *fakeDisplay) SetContent(x, y int, primary rune, _ []rune, _ tcell.Style) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cells[[2]int{x, y}] = primary
}

func (d *fakeDisplay) PollEvent() tcell.Event {
	select {
	case event := <-d.events:
		return event
	case <-d.done:
		return nil
	}
}

func (d *fakeDisplay) Beep() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.beeps++

	return nil
}

// text returns everything drawn, one line per row.
func (d *fakeDisplay) text() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var sb strings.Builder

	for y := range d.height {
		for x := range d.width {
			if r, ok := d.cells[[2]int{x, y}]; ok {
				sb.WriteRune(r)
			} else {
				sb.WriteByte(' ')
			}
		}

		sb.WriteByte('\n')
	}

	return sb.String()
}

func (d *fakeDisplay) isFinished() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.finished
}

// fakeProcess is a process table entry.
type fakeProcess struct {
	pid        int
	executable string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.executable }

// processTable returns a findProcess func backed by the given entries.
func processTable(processes ...fakeProcess) func(int) (ps.Process, error) {
	return func(pid int) (ps.Process, error) {
		for _, p := range processes {
			if p.pid == pid {
				return p, nil
			}
		}

		return nil, nil
	}
}

func keyRune(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}
