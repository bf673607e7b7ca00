package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medcabinet/api/internal/email"
	"github.com/medcabinet/api/internal/model"
	"github.com/medcabinet/api/internal/repository"
	apperrors "github.com/medcabinet/api/pkg/errors"
	"github.com/medcabinet/api/pkg/logger"
	"github.com/medcabinet/api/pkg/metrics"
)

// AvailabilityInvalidator drops cached free-slot listings after a
// ledger write.
type AvailabilityInvalidator interface {
	InvalidateAvailability(ctx context.Context, doctorID uuid.UUID, date time.Time)
}

type Service struct {
	repo        repository.AppointmentRepository
	schedRepo   repository.SchedulingRepository
	patientRepo repository.PatientRepository
	doctorRepo  repository.DoctorRepository
	emailSvc    email.Service
	invalidator AvailabilityInvalidator
	log         *logger.Logger
}

func NewService(
	repo repository.AppointmentRepository,
	schedRepo repository.SchedulingRepository,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	emailSvc email.Service,
	invalidator AvailabilityInvalidator,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:        repo,
		schedRepo:   schedRepo,
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
		emailSvc:    emailSvc,
		invalidator: invalidator,
		log:         log,
	}
}

// validateBinding checks the slot belongs to the appointment's doctor
// before any state changes.
func (s *Service) validateBinding(ctx context.Context, doctorID, slotID uuid.UUID) (*model.Slot, error) {
	slot, err := s.schedRepo.GetSlot(ctx, slotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("slot", err)
		}
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}

	if slot.DoctorID != doctorID {
		return nil, apperrors.Validation("slot does not belong to this doctor")
	}
	return slot, nil
}

// Book binds a patient to a slot. The slot claim and the appointment
// insert commit together; a lost claim surfaces as a conflict and
// leaves the ledger untouched.
func (s *Service) Book(ctx context.Context, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	patient, err := s.patientRepo.Get(ctx, req.PatientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	doctor, err := s.doctorRepo.Get(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	slot, err := s.validateBinding(ctx, req.DoctorID, req.SlotID)
	if err != nil {
		metrics.BookingsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	slotID := req.SlotID
	appointment := &model.Appointment{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		SlotID:    &slotID,
		Status:    model.AppointmentStatusScheduled,
		Notes:     req.Notes,
	}

	if err := s.repo.CreateBound(ctx, appointment); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			metrics.BookingsTotal.WithLabelValues("conflict").Inc()
			return nil, apperrors.Conflict("slot is no longer available")
		}
		return nil, fmt.Errorf("failed to book appointment: %w", err)
	}

	metrics.BookingsTotal.WithLabelValues("booked").Inc()
	s.invalidator.InvalidateAvailability(ctx, slot.DoctorID, slot.Date)
	s.notify(patient, doctor, slot, "confirmation")

	return appointment, nil
}

// Rebind moves an existing appointment to a different slot. The old
// slot is released and the new one claimed in the same transaction,
// so no interleaving can observe both taken or the old one leaked.
func (s *Service) Rebind(ctx context.Context, id uuid.UUID, req *model.RebindAppointmentRequest) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	newSlot, err := s.validateBinding(ctx, appointment.DoctorID, req.SlotID)
	if err != nil {
		metrics.BookingsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	if appointment.SlotID == nil {
		return nil, apperrors.Validation("appointment has no slot to rebind")
	}
	oldSlotID := *appointment.SlotID
	if oldSlotID == req.SlotID {
		return appointment, nil
	}

	newSlotID := req.SlotID
	if err := s.repo.Rebind(ctx, appointment, oldSlotID, newSlotID); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			metrics.BookingsTotal.WithLabelValues("conflict").Inc()
			return nil, apperrors.Conflict("slot is no longer available")
		}
		return nil, fmt.Errorf("failed to rebind appointment: %w", err)
	}
	appointment.SlotID = &newSlotID

	metrics.BookingsTotal.WithLabelValues("rebound").Inc()
	s.invalidator.InvalidateAvailability(ctx, newSlot.DoctorID, newSlot.Date)

	return appointment, nil
}

// Cancel deletes the appointment; its slot becomes available again in
// the same transaction.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("appointment", err)
		}
		return fmt.Errorf("failed to get appointment: %w", err)
	}

	var slot *model.Slot
	if appointment.SlotID != nil {
		slot, err = s.schedRepo.GetSlot(ctx, *appointment.SlotID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to get slot: %w", err)
		}
	}

	if err := s.repo.DeleteBound(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("appointment", err)
		}
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}

	metrics.BookingsTotal.WithLabelValues("cancelled").Inc()
	if slot != nil {
		s.invalidator.InvalidateAvailability(ctx, slot.DoctorID, slot.Date)

		patient, perr := s.patientRepo.Get(ctx, appointment.PatientID)
		doctor, derr := s.doctorRepo.Get(ctx, appointment.DoctorID)
		if perr == nil && derr == nil {
			s.notify(patient, doctor, slot, "cancellation")
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return appointment, nil
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// UpdateStatus moves the appointment through its workflow
// (scheduled, confirmed, in_consultation, completed, cancelled).
// Cancelled is terminal; the transition into it releases the bound
// slot.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	switch status {
	case model.AppointmentStatusScheduled,
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusInConsultation,
		model.AppointmentStatusCompleted,
		model.AppointmentStatusCancelled:
	default:
		return nil, apperrors.Validation(fmt.Sprintf("unknown appointment status %q", status))
	}

	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	// Reopening would have to re-claim a slot someone else may hold.
	if appointment.Status == model.AppointmentStatusCancelled && status != model.AppointmentStatusCancelled {
		return nil, apperrors.Validation("cannot reopen a cancelled appointment")
	}

	// Snapshot the status before the write: a repo that hands back the
	// stored object would otherwise mutate it out from under us.
	prevStatus := appointment.Status

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}

	if status == model.AppointmentStatusCancelled &&
		prevStatus != model.AppointmentStatusCancelled &&
		appointment.SlotID != nil {
		metrics.BookingsTotal.WithLabelValues("cancelled").Inc()
		if slot, serr := s.schedRepo.GetSlot(ctx, *appointment.SlotID); serr == nil {
			s.invalidator.InvalidateAvailability(ctx, slot.DoctorID, slot.Date)
		}
	}
	return s.repo.Get(ctx, id)
}

// startOfDay is midnight in t's location; the slot date column holds
// calendar days, so truncating to UTC midnight would shift the day
// for non-UTC deployments.
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// ListToday returns today's appointments ordered by slot start time.
func (s *Service) ListToday(ctx context.Context) ([]*model.Appointment, error) {
	today := startOfDay(time.Now())
	appointments, err := s.repo.ListForDate(ctx, today, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list today's appointments: %w", err)
	}
	return appointments, nil
}

// ListWaitingRoom returns today's confirmed appointments, the
// receptionist's waiting-room view.
func (s *Service) ListWaitingRoom(ctx context.Context) ([]*model.Appointment, error) {
	today := startOfDay(time.Now())
	appointments, err := s.repo.ListForDate(ctx, today, []model.AppointmentStatus{
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusInConsultation,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list waiting room: %w", err)
	}
	return appointments, nil
}

// notify sends booking emails best-effort; delivery failures are
// logged, never surfaced.
func (s *Service) notify(patient *model.Patient, doctor *model.Doctor, slot *model.Slot, kind string) {
	if s.emailSvc == nil || patient.Email == nil {
		return
	}

	var err error
	switch kind {
	case "confirmation":
		err = s.emailSvc.SendAppointmentConfirmation(*patient.Email,
			patient.FirstName+" "+patient.LastName,
			doctor.LastName, slot.StartTime)
	case "cancellation":
		err = s.emailSvc.SendAppointmentCancellation(*patient.Email,
			patient.FirstName+" "+patient.LastName,
			doctor.LastName, slot.StartTime)
	}
	if err != nil && s.log != nil {
		s.log.Error(err, "failed to send appointment email")
	}
}
