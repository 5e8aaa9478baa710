// Package dismissal implements the ringing-screen core: a tap counter that
// must reach its goal before the alarm is dismissed, and a silence/resume
// cycle that mutes the alarm after every tap and brings it back when the
// user stops tapping.
//
// Session and ResumeTimer are not safe for concurrent use. They expect every
// call, including scheduler and audio-load callbacks, to arrive on a single
// execution context (see the loop package). Callbacks still re-check session
// state before acting, since cancellation and firing can race.
package dismissal
