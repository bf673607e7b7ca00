package prescription

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
	repo     repository.PrescriptionRepository
	consRepo repository.ConsultationRepository
}

func NewService(repo repository.PrescriptionRepository, consRepo repository.ConsultationRepository) *Service {
	return &Service{repo: repo, consRepo: consRepo}
}

func (s *Service) checkConsultation(ctx context.Context, id uuid.UUID) error {
	if _, err := s.consRepo.Get(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("consultation", err)
		}
		return fmt.Errorf("failed to get consultation: %w", err)
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	date, err := time.Parse(model.DateOnly, raw)
	if err != nil {
		return time.Time{}, apperrors.Validation("date must be YYYY-MM-DD")
	}
	return date, nil
}

func (s *Service) Create(ctx context.Context, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	if err := s.checkConsultation(ctx, req.ConsultationID); err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	prescription := &model.Prescription{
		ConsultationID: req.ConsultationID,
		Date:           date,
		Medications:    req.Medications,
	}
	if err := s.repo.Create(ctx, prescription); err != nil {
		return nil, fmt.Errorf("failed to create prescription: %w", err)
	}
	return prescription, nil
}

func (s *Service) ListByConsultation(ctx context.Context, consultationID uuid.UUID) ([]*model.Prescription, error) {
	prescriptions, err := s.repo.ListByConsultation(ctx, consultationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}

func (s *Service) CreateLabTest(ctx context.Context, test *model.LabTest) error {
	if err := s.repo.CreateLabTest(ctx, test); err != nil {
		return fmt.Errorf("failed to create lab test: %w", err)
	}
	return nil
}

func (s *Service) ListLabTests(ctx context.Context) ([]*model.LabTest, error) {
	return s.repo.ListLabTests(ctx)
}

// OrderLabTest prescribes a laboratory analysis from a consultation.
func (s *Service) OrderLabTest(ctx context.Context, req *model.CreateLabTestOrderRequest) (*model.LabTestOrder, error) {
	if err := s.checkConsultation(ctx, req.ConsultationID); err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	order := &model.LabTestOrder{
		ConsultationID: req.ConsultationID,
		LabTestID:      req.LabTestID,
		Date:           date,
	}
	if err := s.repo.CreateLabTestOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to order lab test: %w", err)
	}
	return order, nil
}

func (s *Service) ListLabTestOrders(ctx context.Context, consultationID uuid.UUID) ([]*model.LabTestOrder, error) {
	return s.repo.ListLabTestOrders(ctx, consultationID)
}

func (s *Service) CreateImagingExam(ctx context.Context, exam *model.ImagingExam) error {
	if err := s.repo.CreateImagingExam(ctx, exam); err != nil {
		return fmt.Errorf("failed to create imaging exam: %w", err)
	}
	return nil
}

func (s *Service) ListImagingExams(ctx context.Context) ([]*model.ImagingExam, error) {
	return s.repo.ListImagingExams(ctx)
}

// OrderImaging prescribes a radiology exam from a consultation.
func (s *Service) OrderImaging(ctx context.Context, req *model.CreateImagingOrderRequest) (*model.ImagingOrder, error) {
	if err := s.checkConsultation(ctx, req.ConsultationID); err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	order := &model.ImagingOrder{
		ConsultationID: req.ConsultationID,
		ImagingExamID:  req.ImagingExamID,
		Date:           date,
	}
	if err := s.repo.CreateImagingOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to order imaging exam: %w", err)
	}
	return order, nil
}

func (s *Service) ListImagingOrders(ctx context.Context, consultationID uuid.UUID) ([]*model.ImagingOrder, error) {
	return s.repo.ListImagingOrders(ctx, consultationID)
}
