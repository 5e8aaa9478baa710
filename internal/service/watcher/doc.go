// Package watcher is the alarm daemon. It polls the stored schedule, marks
// the alarm triggered once it is due and presents the ringing screen.
package watcher
