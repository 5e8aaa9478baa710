// Package schedule implements persistence for the alarm Schedule.
//
// The FileRepository stores and loads the single alarm slot as YAML on disk
// and exposes a Repository interface that the registration service depends on.
package schedule
