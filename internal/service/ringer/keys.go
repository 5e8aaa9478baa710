package ringer

import "github.com/gdamore/tcell/v2"

// action is what a terminal event asks the ringing screen to do.
type action int

const (
	actionNone action = iota
	actionTap
	actionDecrement
	actionLeave
	actionRedraw
)

// actionFor maps a terminal event to an action.
func actionFor(event tcell.Event) action {
	switch ev := event.(type) {
	case *tcell.EventResize:
		return actionRedraw
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEnter:
			return actionTap
		case tcell.KeyBackspace, tcell.KeyBackspace2, tcell.KeyDelete:
			return actionDecrement
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return actionLeave
		case tcell.KeyRune:
			switch ev.Rune() {
			case ' ', '+', '=':
				return actionTap
			case '-', '_':
				return actionDecrement
			case 'q', 'Q':
				return actionLeave
			}
		}
	}

	return actionNone
}
