package consultation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medcabinet/api/internal/model"
	"github.com/medcabinet/api/internal/repository"
	apperrors "github.com/medcabinet/api/pkg/errors"
)

type Service struct {
	repo    repository.ConsultationRepository
	aptRepo repository.AppointmentRepository
}

func NewService(repo repository.ConsultationRepository, aptRepo repository.AppointmentRepository) *Service {
	return &Service{repo: repo, aptRepo: aptRepo}
}

// Create opens a consultation for a scheduled appointment and moves
// the appointment into the in_consultation state.
func (s *Service) Create(ctx context.Context, req *model.CreateConsultationRequest) (*model.Consultation, error) {
	appointment, err := s.aptRepo.Get(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	if req.DoctorID != appointment.DoctorID {
		return nil, apperrors.Validation("consultation doctor does not match the appointment's doctor")
	}
	if appointment.Status == model.AppointmentStatusCancelled {
		return nil, apperrors.Validation("cannot open a consultation for a cancelled appointment")
	}

	date, err := time.Parse(model.DateOnly, req.Date)
	if err != nil {
		return nil, apperrors.Validation("date must be YYYY-MM-DD")
	}

	consultation := &model.Consultation{
		AppointmentID:         req.AppointmentID,
		DoctorID:              req.DoctorID,
		Date:                  date,
		Diagnosis:             req.Diagnosis,
		Price:                 req.Price,
		InitialConsultationID: req.InitialConsultationID,
	}
	if err := s.repo.Create(ctx, consultation); err != nil {
		return nil, fmt.Errorf("failed to create consultation: %w", err)
	}

	if err := s.aptRepo.UpdateStatus(ctx, appointment.ID, model.AppointmentStatusInConsultation); err != nil {
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	return consultation, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Consultation, error) {
	consultation, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("consultation", err)
		}
		return nil, fmt.Errorf("failed to get consultation: %w", err)
	}
	return consultation, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Consultation, error) {
	consultations, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultations: %w", err)
	}
	return consultations, nil
}

// Close marks the underlying appointment completed.
func (s *Service) Close(ctx context.Context, id uuid.UUID) error {
	consultation, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.aptRepo.UpdateStatus(ctx, consultation.AppointmentID, model.AppointmentStatusCompleted); err != nil {
		return fmt.Errorf("failed to complete appointment: %w", err)
	}
	return nil
}

func (s *Service) CreateAct(ctx context.Context, req *model.CreateMedicalActRequest) (*model.MedicalAct, error) {
	act := &model.MedicalAct{Name: req.Name, Price: req.Price}
	if err := s.repo.CreateAct(ctx, act); err != nil {
		return nil, fmt.Errorf("failed to create medical act: %w", err)
	}
	return act, nil
}

func (s *Service) ListActs(ctx context.Context) ([]*model.MedicalAct, error) {
	acts, err := s.repo.ListActs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list medical acts: %w", err)
	}
	return acts, nil
}

// AddAct attaches a performed act to a consultation. The applied
// price defaults to the catalog price unless overridden, and the
// quantity to 1.
func (s *Service) AddAct(ctx context.Context, consultationID uuid.UUID, req *model.AddConsultationActRequest) (*model.ConsultationAct, error) {
	if _, err := s.Get(ctx, consultationID); err != nil {
		return nil, err
	}

	act, err := s.repo.GetAct(ctx, req.ActID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("medical act", err)
		}
		return nil, fmt.Errorf("failed to get medical act: %w", err)
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	applied := act.Price
	if req.AppliedPrice != nil {
		applied = *req.AppliedPrice
	}

	ca := &model.ConsultationAct{
		ConsultationID: consultationID,
		ActID:          req.ActID,
		Quantity:       quantity,
		AppliedPrice:   applied,
	}
	if err := s.repo.AddConsultationAct(ctx, ca); err != nil {
		return nil, fmt.Errorf("failed to add consultation act: %w", err)
	}
	return ca, nil
}

func (s *Service) ListConsultationActs(ctx context.Context, consultationID uuid.UUID) ([]*model.ConsultationAct, error) {
	acts, err := s.repo.ListConsultationActs(ctx, consultationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultation acts: %w", err)
	}
	return acts, nil
}
