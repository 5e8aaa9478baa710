// Package alarm contains the domain types for the single alarm slot.
//
// It defines Schedule (the chosen clock time, the next trigger and the
// consume-once triggered flag) and the clock arithmetic used to roll a
// clock time over to its next occurrence.
package alarm
