package schedule

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/dhikr-alarm/internal/config"
	domain "github.com/oshokin/dhikr-alarm/internal/domain/alarm"
)

// Repository defines persistence operations for the alarm schedule.
type Repository interface {
	Load(ctx context.Context) (*domain.Schedule, error)
	Save(ctx context.Context, schedule *domain.Schedule) error
}

// Locker is implemented by repositories shared between processes. Lock
// blocks until the caller owns the stored schedule or ctx is done.
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// FileRepository persists the alarm schedule to a YAML file on disk.
type FileRepository struct {
	// path is the filesystem location of the YAML state file.
	path string
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

// record is the on-disk layout of a schedule.
type record struct {
	Hour        int       `yaml:"hour"`
	Minute      int       `yaml:"minute"`
	NextTrigger time.Time `yaml:"next_trigger,omitempty"`
	UpdatedAt   time.Time `yaml:"updated_at,omitempty"`
	IsArmed     bool      `yaml:"is_armed"`
	IsTriggered bool      `yaml:"is_triggered"`
}

var (
	// ErrNotFound is returned when the state file does not exist yet.
	ErrNotFound = errors.New("schedule not found")
	// ErrLocked is returned when another process holds the state file lock for too long.
	ErrLocked = errors.New("schedule is locked by another process")
)

const (
	// lockSuffix is appended to the state file path to name its lock file.
	lockSuffix = ".lock"
	// lockRetryInterval is how often a held lock is retried.
	lockRetryInterval = 10 * time.Millisecond
	// lockTimeout bounds the wait for a held lock.
	lockTimeout = 5 * time.Second
	// staleLockAge is the age after which a lock left by a crashed process is removed.
	staleLockAge = 30 * time.Second
)

// NewFileRepository creates a repository that reads/writes YAML at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the schedule from disk.
func (r *FileRepository) Load(_ context.Context) (*domain.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var stored record
	if err = yaml.Unmarshal(contents, &stored); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return fromRecord(&stored), nil
}

// Save writes the schedule to disk. The file is replaced atomically so a
// watcher polling it never reads a half-written schedule.
func (r *FileRepository) Save(_ context.Context, schedule *domain.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(toRecord(schedule))
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	temporary := r.path + ".tmp"

	if err = os.WriteFile(temporary, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	if err = os.Rename(temporary, r.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	return nil
}

// Lock takes the lock file next to the state file, so that the CLI and the
// watcher never interleave read-modify-write cycles.
func (r *FileRepository) Lock(ctx context.Context) (func(), error) {
	lockPath := r.path + lockSuffix

	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, config.DefaultFilePermissions)
		if err == nil {
			_ = file.Close()

			return func() {
				_ = os.Remove(lockPath)
			}, nil
		}

		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}

		if info, statErr := os.Stat(lockPath); statErr == nil && time.Since(info.ModTime()) > staleLockAge {
			_ = os.Remove(lockPath)
			continue
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", lockPath, ErrLocked)
		case <-ticker.C:
		}
	}
}

// fromRecord converts the on-disk record into the domain Schedule model.
func fromRecord(stored *record) *domain.Schedule {
	return &domain.Schedule{
		Hour:        stored.Hour,
		Minute:      stored.Minute,
		NextTrigger: stored.NextTrigger,
		UpdatedAt:   stored.UpdatedAt,
		IsArmed:     stored.IsArmed,
		IsTriggered: stored.IsTriggered,
	}
}

// toRecord converts the domain Schedule model into the on-disk record.
func toRecord(schedule *domain.Schedule) *record {
	return &record{
		Hour:        schedule.Hour,
		Minute:      schedule.Minute,
		NextTrigger: schedule.NextTrigger,
		UpdatedAt:   schedule.UpdatedAt,
		IsArmed:     schedule.IsArmed,
		IsTriggered: schedule.IsTriggered,
	}
}
