// Package vibration implements dismissal.Vibrator for hosts without a
// vibration motor: every "on" segment of the pattern becomes a pulse sent to
// a Sink, such as the terminal bell.
package vibration
