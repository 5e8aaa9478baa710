// Package registration is the alarm registration service: it arms and
// disarms the single alarm slot, marks it triggered when it fires and hands
// the triggered flag out exactly once.
package registration
