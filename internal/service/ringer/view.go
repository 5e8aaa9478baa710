package ringer

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oshokin/dhikr-alarm/internal/domain/dismissal"
)

// Display is the part of tcell.Screen the ringing screen draws on.
type Display interface {
	Init() error
	Fini()
	Clear()
	Show()
	Size() (width, height int)
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	PollEvent() tcell.Event
	Beep() error
}

const (
	// progressWidth is the widest the progress bar gets.
	progressWidth = 50
	// titleText is shown at the top of the ringing screen.
	titleText = "Dhikr Alarm"
	// ringingText is the status line while sound is on.
	ringingText = "Ringing"
	// silencedText is the status line during the silence window.
	silencedText = "Silenced (keep tapping!)"
	// encourageText is shown while ringing once tapping has started.
	encourageText = "KEEP GOING!"
	// helpText lists the keys.
	helpText = "space/enter: tap   -: undo   q/esc: leave"
	// successTitle heads the success screen.
	successTitle = "Alarm dismissed"
	// closeText tells how to leave the success screen.
	closeText = "press any key to close"
	// barFull and barEmpty are the progress bar cells.
	barFull  = '█'
	barEmpty = '░'
)

var (
	styleTitle    = tcell.StyleDefault.Foreground(tcell.ColorSilver).Bold(true)
	styleRinging  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleSilenced = tcell.StyleDefault.Foreground(tcell.ColorDeepSkyBlue)
	stylePhrase   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleCounter  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleBarFull  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleBarEmpty = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHint     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleSuccess  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
)

// view renders session snapshots onto a display.
type view struct {
	// display is the drawing surface.
	display Display
	// last is the most recent snapshot, kept for redraws.
	last dismissal.Snapshot
	// done is true once the success screen is shown.
	done bool
}

func newView(display Display) *view {
	return &view{display: display}
}

// render draws the ringing screen for snapshot.
func (v *view) render(snapshot dismissal.Snapshot) {
	v.last = snapshot

	if v.done || snapshot.State == dismissal.StateClosed {
		return
	}

	v.draw()
}

// success switches to the success screen.
func (v *view) success() {
	v.done = true
	v.draw()
}

// redraw repaints the current screen, e.g. after a resize.
func (v *view) redraw() {
	v.draw()
}

func (v *view) draw() {
	v.display.Clear()

	if v.done {
		v.drawSuccess()
	} else {
		v.drawRinging()
	}

	v.display.Show()
}

func (v *view) drawRinging() {
	_, height := v.display.Size()
	s := v.last
	row := max(height/2-5, 0)

	v.center(row, titleText, styleTitle)
	row += 2

	switch s.State {
	case dismissal.StateSilenced:
		v.center(row, silencedText, styleSilenced)
		v.center(row+1, fmt.Sprintf("Sound resumes in %ds", s.Remaining), styleSilenced)
	default:
		v.center(row, ringingText, styleRinging)
	}

	row += 3

	v.center(row, s.Phrase, stylePhrase)
	row += 2

	v.center(row, fmt.Sprintf("%d / %d", s.TapCount, s.GoalCount), styleCounter)
	row++

	v.drawProgress(row, s.TapCount, s.GoalCount)
	row += 2

	if s.State == dismissal.StateRinging && s.TapCount > 0 {
		v.center(row, encourageText, styleRinging)
	}

	v.center(height-1, helpText, styleHint)
}

func (v *view) drawSuccess() {
	_, height := v.display.Size()
	row := max(height/2-2, 0)

	v.center(row, successTitle, styleSuccess)
	v.center(row+2, fmt.Sprintf("%d taps completed", v.last.GoalCount), styleCounter)
	v.center(row+4, closeText, styleHint)
}

func (v *view) drawProgress(row, count, goal int) {
	width, _ := v.display.Size()
	barWidth := min(progressWidth, max(width-4, 0))
	x := (width - barWidth) / 2

	for _, r := range progressBar(count, goal, barWidth) {
		style := styleBarEmpty
		if r == barFull {
			style = styleBarFull
		}

		v.display.SetContent(x, row, r, nil, style)
		x++
	}
}

// center writes text horizontally centered on row.
func (v *view) center(row int, text string, style tcell.Style) {
	width, height := v.display.Size()
	if row < 0 || row >= height {
		return
	}

	text = strings.TrimSpace(text)
	if textWidth := runewidth.StringWidth(text); textWidth > width {
		text = runewidth.Truncate(text, width, "")
	}

	x := max((width-runewidth.StringWidth(text))/2, 0)

	for _, r := range text {
		v.display.SetContent(x, row, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}

// progressBar renders count out of goal as a bar width cells wide.
func progressBar(count, goal, width int) string {
	if goal <= 0 || width <= 0 {
		return ""
	}

	filled := min(max(count, 0)*width/goal, width)

	return strings.Repeat(string(barFull), filled) + strings.Repeat(string(barEmpty), width-filled)
}
