package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medcabinet/api/internal/cache"
	"github.com/medcabinet/api/internal/model"
	"github.com/medcabinet/api/internal/repository"
	apperrors "github.com/medcabinet/api/pkg/errors"
	"github.com/medcabinet/api/pkg/metrics"
)

const DefaultSlotDuration = 30 * time.Minute

type Service struct {
	repo         repository.SchedulingRepository
	doctorRepo   repository.DoctorRepository
	slotCache    *cache.SlotCache
	slotDuration time.Duration
	policy       model.RemovalPolicy
}

type Option func(*Service)

func WithSlotDuration(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.slotDuration = d
		}
	}
}

func WithRemovalPolicy(policy model.RemovalPolicy) Option {
	return func(s *Service) {
		if policy == model.RemovalPolicyProtect || policy == model.RemovalPolicyForce {
			s.policy = policy
		}
	}
}

// WithSlotCache enables the Redis-backed free-slot listing cache.
func WithSlotCache(c *cache.SlotCache) Option {
	return func(s *Service) {
		s.slotCache = c
	}
}

func NewService(repo repository.SchedulingRepository, doctorRepo repository.DoctorRepository, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		doctorRepo:   doctorRepo,
		slotDuration: DefaultSlotDuration,
		policy:       model.RemovalPolicyProtect,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateSlots cuts the window into contiguous fixed-duration slots.
// A trailing remainder shorter than the duration is dropped. An empty
// or inverted window yields no slots.
func GenerateSlots(doctorID uuid.UUID, date time.Time, windowStart, windowEnd time.Time, duration time.Duration) []*model.Slot {
	var slots []*model.Slot
	if duration <= 0 {
		return slots
	}

	now := time.Now()
	for start := windowStart; ; start = start.Add(duration) {
		end := start.Add(duration)
		if end.After(windowEnd) {
			break
		}
		slots = append(slots, &model.Slot{
			Base: model.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			DoctorID:  doctorID,
			Date:      date,
			StartTime: start,
			EndTime:   end,
			Available: true,
		})
	}
	return slots
}

// DeclareWorkingDay records a doctor's work interval for a date and
// generates its slots. Re-declaring the same window is idempotent at
// the slot level: existing slots are left untouched.
func (s *Service) DeclareWorkingDay(ctx context.Context, doctorID uuid.UUID, date, start, end time.Time) (*model.DeclareWorkingDayResponse, error) {
	if _, err := s.doctorRepo.Get(ctx, doctorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	day := &model.WorkingDay{
		DoctorID:  doctorID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}

	slots := GenerateSlots(doctorID, date, start, end, s.slotDuration)
	created, err := s.repo.CreateWorkingDay(ctx, day, slots)
	if err != nil {
		return nil, fmt.Errorf("failed to declare working day: %w", err)
	}

	metrics.SlotsGeneratedTotal.Add(float64(created))
	s.invalidate(ctx, doctorID, date)

	return &model.DeclareWorkingDayResponse{
		WorkingDay:   day,
		SlotsCreated: created,
	}, nil
}

// UpdateWorkingDay changes the window of an existing declaration.
// Free slots are regenerated for the new window; taken slots are
// preserved even when the new window excludes them.
func (s *Service) UpdateWorkingDay(ctx context.Context, id uuid.UUID, start, end time.Time) (*model.DeclareWorkingDayResponse, error) {
	day, err := s.repo.GetWorkingDay(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("working day", err)
		}
		return nil, fmt.Errorf("failed to get working day: %w", err)
	}

	day.StartTime = start
	day.EndTime = end

	slots := GenerateSlots(day.DoctorID, day.Date, start, end, s.slotDuration)
	created, err := s.repo.UpdateWorkingDay(ctx, day, slots)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("working day", err)
		}
		return nil, fmt.Errorf("failed to update working day: %w", err)
	}

	s.invalidate(ctx, day.DoctorID, day.Date)

	return &model.DeclareWorkingDayResponse{
		WorkingDay:   day,
		SlotsCreated: created,
	}, nil
}

// RemoveWorkingDay deletes the declaration and its slots. Under the
// protect policy removal is refused while any slot is booked; under
// force the slots go away and bound appointments cascade with them.
func (s *Service) RemoveWorkingDay(ctx context.Context, id uuid.UUID) error {
	day, err := s.repo.GetWorkingDay(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("working day", err)
		}
		return fmt.Errorf("failed to get working day: %w", err)
	}

	if s.policy == model.RemovalPolicyProtect {
		taken, err := s.repo.CountTakenSlots(ctx, day.DoctorID, day.Date)
		if err != nil {
			return fmt.Errorf("failed to count taken slots: %w", err)
		}
		if taken > 0 {
			return apperrors.Conflict(fmt.Sprintf("cannot remove working day: %d slot(s) are booked", taken))
		}
	}

	if err := s.repo.DeleteWorkingDay(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("working day", err)
		}
		return fmt.Errorf("failed to remove working day: %w", err)
	}

	s.invalidate(ctx, day.DoctorID, day.Date)
	return nil
}

func (s *Service) GetWorkingDay(ctx context.Context, id uuid.UUID) (*model.WorkingDay, error) {
	day, err := s.repo.GetWorkingDay(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("working day", err)
		}
		return nil, fmt.Errorf("failed to get working day: %w", err)
	}
	return day, nil
}

func (s *Service) ListWorkingDays(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.WorkingDay, error) {
	days, err := s.repo.ListWorkingDays(ctx, doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list working days: %w", err)
	}
	return days, nil
}

func (s *Service) ListSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Slot, error) {
	slots, err := s.repo.ListSlots(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	return slots, nil
}

// ListAvailableSlots returns the free slots for a doctor and date,
// ordered by start time.
func (s *Service) ListAvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Slot, error) {
	if s.slotCache != nil {
		if slots, ok := s.slotCache.GetAvailable(ctx, doctorID, date); ok {
			return slots, nil
		}
	}

	slots, err := s.repo.ListAvailableSlots(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list available slots: %w", err)
	}

	if s.slotCache != nil {
		s.slotCache.SetAvailable(ctx, doctorID, date, slots)
	}
	return slots, nil
}

// InvalidateAvailability drops the cached free-slot listing; the
// appointment binder calls this after every slot flip.
func (s *Service) InvalidateAvailability(ctx context.Context, doctorID uuid.UUID, date time.Time) {
	s.invalidate(ctx, doctorID, date)
}

func (s *Service) invalidate(ctx context.Context, doctorID uuid.UUID, date time.Time) {
	if s.slotCache != nil {
		s.slotCache.Invalidate(ctx, doctorID, date)
	}
}
