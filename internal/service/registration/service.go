package registration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domain "github.com/oshokin/dhikr-alarm/internal/domain/alarm"
	"github.com/oshokin/dhikr-alarm/internal/logger"
	repo "github.com/oshokin/dhikr-alarm/internal/repository/schedule"
)

// ErrInPast is returned when an alarm is scheduled for a moment that has already passed.
var ErrInPast = errors.New("alarm time is not in the future")

// Service manages the alarm slot and persists every change.
type Service struct {
	// repo handles persistent storage of the schedule.
	repo repo.Repository
	// now returns the current time.
	now func() time.Time
	// mu serializes read-modify-write cycles on the schedule.
	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a service backed by the provided repository.
func New(repository repo.Repository, opts ...Option) *Service {
	s := &Service{
		repo: repository,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ScheduleAt arms the alarm for at, which must be in the future.
func (s *Service) ScheduleAt(ctx context.Context, at time.Time) (*domain.Schedule, error) {
	now := s.now()
	if !at.After(now) {
		return nil, fmt.Errorf("%s: %w", at.Format(time.RFC3339), ErrInPast)
	}

	return s.update(ctx, func(current *domain.Schedule) {
		current.Hour = at.Hour()
		current.Minute = at.Minute()
		current.NextTrigger = at
		current.IsArmed = true
	})
}

// ScheduleClock arms the alarm for the next occurrence of hour:minute.
func (s *Service) ScheduleClock(ctx context.Context, hour, minute int) (*domain.Schedule, error) {
	next, err := domain.NextOccurrence(s.now(), hour, minute)
	if err != nil {
		return nil, err
	}

	return s.ScheduleAt(ctx, next)
}

// Cancel disarms the alarm. The chosen clock time is kept.
func (s *Service) Cancel(ctx context.Context) (*domain.Schedule, error) {
	return s.update(ctx, func(current *domain.Schedule) {
		current.IsArmed = false
	})
}

// RequestExactAlarmPermission asks the host for permission to fire at an
// exact moment. Desktop hosts have no such restriction, so it is always granted.
func (s *Service) RequestExactAlarmPermission(ctx context.Context) bool {
	logger.Info(ctx, "Exact alarm permission is always granted on this host")

	return true
}

// Trigger records that the alarm fired and disarms it until the next ScheduleAt.
func (s *Service) Trigger(ctx context.Context) (*domain.Schedule, error) {
	return s.update(ctx, func(current *domain.Schedule) {
		current.IsArmed = false
		current.IsTriggered = true
	})
}

// WasTriggered reports whether the alarm fired since the last call, clearing the flag.
func (s *Service) WasTriggered(ctx context.Context) (bool, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return false, err
	}

	defer unlock()

	current, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	if !current.IsTriggered {
		return false, nil
	}

	current.IsTriggered = false
	current.UpdatedAt = s.now()

	if err = s.repo.Save(ctx, current); err != nil {
		return false, fmt.Errorf("persist schedule: %w", err)
	}

	return true, nil
}

// Status returns the current schedule.
func (s *Service) Status(ctx context.Context) (*domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// update applies change to the stored schedule and persists it.
func (s *Service) update(ctx context.Context, change func(*domain.Schedule)) (*domain.Schedule, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}

	defer unlock()

	current, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	change(current)
	current.UpdatedAt = s.now()

	if err = s.repo.Save(ctx, current); err != nil {
		return nil, fmt.Errorf("persist schedule: %w", err)
	}

	logger.InfoKV(ctx, "Alarm schedule updated",
		"clock", current.ClockString(),
		"next_trigger", current.NextTrigger,
		"is_armed", current.IsArmed,
		"is_triggered", current.IsTriggered,
	)

	return current.Clone(), nil
}

// lock serializes read-modify-write cycles within this process and, when the
// repository supports it, across processes.
func (s *Service) lock(ctx context.Context) (func(), error) {
	s.mu.Lock()

	locker, ok := s.repo.(repo.Locker)
	if !ok {
		return s.mu.Unlock, nil
	}

	unlock, err := locker.Lock(ctx)
	if err != nil {
		s.mu.Unlock()

		return nil, fmt.Errorf("lock schedule: %w", err)
	}

	return func() {
		unlock()
		s.mu.Unlock()
	}, nil
}

// load returns the stored schedule, or an empty one if nothing was saved yet.
func (s *Service) load(ctx context.Context) (*domain.Schedule, error) {
	current, err := s.repo.Load(ctx)

	switch {
	case err == nil && current != nil:
		return current, nil
	case err == nil, errors.Is(err, repo.ErrNotFound):
		return new(domain.Schedule), nil
	default:
		return nil, fmt.Errorf("load schedule: %w", err)
	}
}
