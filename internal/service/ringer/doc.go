// Package ringer is the ringing screen: it owns the terminal while an alarm
// rings, mounts a dismissal session on entry, turns key presses into taps,
// and shows the success screen once the goal is reached.
//
// Only one ringing screen may exist at a time. A marker file holding the
// owner's PID enforces this across processes.
package ringer
