// Package version holds the build metadata printed by the dhikr-alarm CLI.
//
// Version, Commit and BuildTime are set with -ldflags "-X" at build time.
package version
