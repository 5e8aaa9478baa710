package ringer

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

const testExecutable = "dhikr-alarm"

func newTestMarker(path string, pid int, processes ...fakeProcess) *Marker {
	return &Marker{
		path:        path,
		pid:         pid,
		executable:  testExecutable,
		findProcess: processTable(processes...),
	}
}

func writeMarker(t *testing.T, path string, pid int) {
	t.Helper()

	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o600))
}

func readMarker(t *testing.T, path string) string {
	t.Helper()

	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(contents)
}

func TestMarker_AcquireAndRelease(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.pid")
	marker := newTestMarker(path, 1001)

	require.NoError(t, marker.Acquire(context.Background()))
	require.Equal(t, "1001", readMarker(t, path))

	require.NoError(t, marker.Release())
	require.NoFileExists(t, path)

	require.NoError(t, marker.Release())
}

func TestMarker_RefusesLiveOwner(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.pid")
	writeMarker(t, path, 2002)

	marker := newTestMarker(path, 1001, fakeProcess{pid: 2002, executable: testExecutable})

	err := marker.Acquire(context.Background())
	require.ErrorIs(t, err, ErrSessionActive)
	require.Equal(t, "2002", readMarker(t, path))
}

func TestMarker_ReclaimsDeadOwner(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.pid")
	writeMarker(t, path, 2002)

	marker := newTestMarker(path, 1001)

	require.NoError(t, marker.Acquire(context.Background()))
	require.Equal(t, "1001", readMarker(t, path))
}

func TestMarker_ReclaimsReusedPID(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.pid")
	writeMarker(t, path, 2002)

	marker := newTestMarker(path, 1001, fakeProcess{pid: 2002, executable: "bash"})

	require.NoError(t, marker.Acquire(context.Background()))
	require.Equal(t, "1001", readMarker(t, path))
}

func TestMarker_ReclaimsGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.pid")
	require.NoError(t, os.WriteFile(path, []byte("not a pid"), 0o600))

	marker := newTestMarker(path, 1001)

	require.NoError(t, marker.Acquire(context.Background()))
	require.Equal(t, "1001", readMarker(t, path))
}

func TestMarker_ReleaseKeepsForeignMarker(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.pid")
	writeMarker(t, path, 2002)

	marker := newTestMarker(path, 1001)

	require.NoError(t, marker.Release())
	require.FileExists(t, path)
}

func TestMarker_RefusesLiveOwnerWithTruncatedName(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.pid")
	writeMarker(t, path, 2002)

	marker := newTestMarker(path, 1001, fakeProcess{pid: 2002, executable: "dhikr-alarm-nig"})
	marker.executable = "dhikr-alarm-nightly"

	err := marker.Acquire(context.Background())
	require.ErrorIs(t, err, ErrSessionActive)
}

func TestSameExecutable(t *testing.T) {
	t.Parallel()

	require.True(t, sameExecutable("dhikr-alarm", "dhikr-alarm"))
	require.True(t, sameExecutable("dhikr-alarm-nig", "dhikr-alarm-nightly"))
	require.False(t, sameExecutable("dhikr-alarm-nig", "dhikr-alarm-other"))
	require.False(t, sameExecutable("dhikr", "dhikr-alarm"))
	require.False(t, sameExecutable("bash", "dhikr-alarm"))
}
