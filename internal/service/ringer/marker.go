package ringer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/dhikr-alarm/internal/config"
	"github.com/oshokin/dhikr-alarm/internal/logger"
)

// ErrSessionActive is returned when another process is already showing the ringing screen.
var ErrSessionActive = errors.New("another ringing session is active")

// Marker is a PID file guarding the single ringing session.
type Marker struct {
	// path is the marker file location.
	path string
	// pid is this process's ID.
	pid int
	// executable is this process's executable name, used to tell a live
	// owner from an unrelated process that reused its PID.
	executable string
	// findProcess looks a PID up in the process table.
	findProcess func(pid int) (ps.Process, error)
}

// NewMarker creates a marker for the current process at path.
func NewMarker(path string) *Marker {
	executable, err := os.Executable()
	if err != nil {
		executable = os.Args[0]
	}

	return &Marker{
		path:        filepath.Clean(path),
		pid:         os.Getpid(),
		executable:  filepath.Base(executable),
		findProcess: ps.FindProcess,
	}
}

// Acquire claims the marker. It fails with ErrSessionActive while the
// recorded owner is alive and removes markers left by dead processes.
func (m *Marker) Acquire(ctx context.Context) error {
	for attempt := 0; attempt < 2; attempt++ {
		file, err := os.OpenFile(m.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, config.DefaultFilePermissions)
		if err == nil {
			_, err = file.WriteString(strconv.Itoa(m.pid))
			closeErr := file.Close()

			if err = errors.Join(err, closeErr); err != nil {
				return fmt.Errorf("write session marker: %w", err)
			}

			return nil
		}

		if !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("create session marker: %w", err)
		}

		owner, alive := m.owner()
		if alive {
			return fmt.Errorf("pid %d: %w", owner, ErrSessionActive)
		}

		logger.InfoKV(ctx, "Removing stale session marker", "path", m.path, "pid", owner)

		if err = os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove stale session marker: %w", err)
		}
	}

	return fmt.Errorf("%s: %w", m.path, ErrSessionActive)
}

// Release removes the marker if this process owns it.
func (m *Marker) Release() error {
	contents, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("read session marker: %w", err)
	}

	if pid, _ := strconv.Atoi(strings.TrimSpace(string(contents))); pid != m.pid {
		return nil
	}

	if err = os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session marker: %w", err)
	}

	return nil
}

// owner returns the PID recorded in the marker and whether that process is
// still a live instance of this program.
func (m *Marker) owner() (int, bool) {
	contents, err := os.ReadFile(m.path)
	if err != nil {
		return 0, false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil || pid <= 0 || pid == m.pid {
		return pid, false
	}

	process, err := m.findProcess(pid)
	if err != nil || process == nil {
		return pid, false
	}

	return pid, sameExecutable(process.Executable(), m.executable)
}

// commLength is the longest process name Linux reports, the rest is cut off.
const commLength = 15

// sameExecutable compares process names, allowing for the truncated names
// go-ps reads from /proc on Linux.
func sameExecutable(reported, own string) bool {
	if reported == own {
		return true
	}

	return len(reported) == commLength && len(own) > commLength && own[:commLength] == reported
}
