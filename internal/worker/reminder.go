package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/medcabinet/api/internal/email"
	"github.com/medcabinet/api/internal/model"
	"github.com/medcabinet/api/internal/repository"
	"github.com/medcabinet/api/pkg/metrics"
)

// Reminder sends next-day appointment reminder emails on an interval.
type Reminder struct {
	aptRepo     repository.AppointmentRepository
	patientRepo repository.PatientRepository
	doctorRepo  repository.DoctorRepository
	schedRepo   repository.SchedulingRepository
	emailSvc    email.Service
	log         *zap.Logger
	interval    time.Duration

	// sent dedupes reminders within a single process lifetime.
	sent map[string]struct{}
}

func NewReminder(
	aptRepo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	schedRepo repository.SchedulingRepository,
	emailSvc email.Service,
	log *zap.Logger,
	interval time.Duration,
) *Reminder {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Reminder{
		aptRepo:     aptRepo,
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
		schedRepo:   schedRepo,
		emailSvc:    emailSvc,
		log:         log,
		interval:    interval,
		sent:        make(map[string]struct{}),
	}
}

// Run blocks until the context is cancelled.
func (r *Reminder) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// startOfDay is midnight in t's location; truncating to UTC midnight
// would pick the wrong calendar day for non-UTC deployments.
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func (r *Reminder) sweep(ctx context.Context) {
	tomorrow := startOfDay(time.Now().AddDate(0, 0, 1))

	appointments, err := r.aptRepo.ListForDate(ctx, tomorrow, []model.AppointmentStatus{
		model.AppointmentStatusScheduled,
		model.AppointmentStatusConfirmed,
	})
	if err != nil {
		r.log.Error("failed to list appointments", zap.Error(err))
		return
	}

	for _, apt := range appointments {
		if _, done := r.sent[apt.ID.String()]; done {
			continue
		}
		if err := r.remind(ctx, apt); err != nil {
			metrics.RemindersFailedTotal.Inc()
			r.log.Error("failed to send reminder",
				zap.String("appointment_id", apt.ID.String()),
				zap.Error(err))
			continue
		}
		r.sent[apt.ID.String()] = struct{}{}
		metrics.RemindersSentTotal.Inc()
	}
}

func (r *Reminder) remind(ctx context.Context, apt *model.Appointment) error {
	if apt.SlotID == nil {
		return nil
	}

	patient, err := r.patientRepo.Get(ctx, apt.PatientID)
	if err != nil {
		return err
	}
	if patient.Email == nil {
		return nil
	}

	doctor, err := r.doctorRepo.Get(ctx, apt.DoctorID)
	if err != nil {
		return err
	}
	slot, err := r.schedRepo.GetSlot(ctx, *apt.SlotID)
	if err != nil {
		return err
	}

	return r.emailSvc.SendAppointmentReminder(*patient.Email,
		patient.FirstName+" "+patient.LastName,
		doctor.LastName, slot.StartTime)
}
