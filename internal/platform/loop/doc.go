// Package loop provides the single execution context the ringing screen runs
// on. Key presses, timer firings and audio-load completions are posted onto
// the loop and executed one at a time, so the dismissal session never sees
// concurrent calls.
//
// Loop also implements dismissal.Scheduler. A timer that fires after its token
// was cancelled is dropped on the loop, even if the underlying Go timer had
// already expired.
package loop
