package billing

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
	repo     repository.InvoiceRepository
	consRepo repository.ConsultationRepository
	aptRepo  repository.AppointmentRepository
}

func NewService(repo repository.InvoiceRepository, consRepo repository.ConsultationRepository, aptRepo repository.AppointmentRepository) *Service {
	return &Service{repo: repo, consRepo: consRepo, aptRepo: aptRepo}
}

// ComputeAmount totals a consultation: its base price plus each
// performed act at its applied price times quantity.
func (s *Service) ComputeAmount(ctx context.Context, consultationID uuid.UUID) (float64, error) {
	consultation, err := s.consRepo.Get(ctx, consultationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, apperrors.NotFound("consultation", err)
		}
		return 0, fmt.Errorf("failed to get consultation: %w", err)
	}

	acts, err := s.consRepo.ListConsultationActs(ctx, consultationID)
	if err != nil {
		return 0, fmt.Errorf("failed to list consultation acts: %w", err)
	}

	amount := consultation.Price
	for _, act := range acts {
		amount += act.AppliedPrice * float64(act.Quantity)
	}
	return amount, nil
}

// CreateInvoice bills a consultation. The amount is computed from the
// consultation and its acts at creation time; one invoice per
// consultation.
func (s *Service) CreateInvoice(ctx context.Context, req *model.CreateInvoiceRequest) (*model.Invoice, error) {
	consultation, err := s.consRepo.Get(ctx, req.ConsultationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("consultation", err)
		}
		return nil, fmt.Errorf("failed to get consultation: %w", err)
	}

	if _, err := s.repo.GetByConsultation(ctx, req.ConsultationID); err == nil {
		return nil, apperrors.Conflict("consultation is already invoiced")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing invoice: %w", err)
	}

	appointment, err := s.aptRepo.Get(ctx, consultation.AppointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	amount, err := s.ComputeAmount(ctx, req.ConsultationID)
	if err != nil {
		return nil, err
	}

	date := time.Now()
	if req.Date != "" {
		date, err = time.Parse(model.DateOnly, req.Date)
		if err != nil {
			return nil, apperrors.Validation("date must be YYYY-MM-DD")
		}
	}

	invoice := &model.Invoice{
		ConsultationID: req.ConsultationID,
		PatientID:      appointment.PatientID,
		Date:           date,
		Type:           req.Type,
		Amount:         amount,
	}
	if err := s.repo.Create(ctx, invoice); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("consultation is already invoiced")
		}
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return invoice, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("invoice", err)
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return invoice, nil
}

// GetDetail returns the invoice with one line per billed item, the
// consultation first then each act.
func (s *Service) GetDetail(ctx context.Context, id uuid.UUID) (*model.InvoiceDetail, error) {
	invoice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	consultation, err := s.consRepo.Get(ctx, invoice.ConsultationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get consultation: %w", err)
	}

	lines := []model.InvoiceLine{{
		Label:     "Consultation",
		Quantity:  1,
		UnitPrice: consultation.Price,
		Total:     consultation.Price,
	}}

	acts, err := s.consRepo.ListConsultationActs(ctx, invoice.ConsultationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultation acts: %w", err)
	}
	for _, ca := range acts {
		act, err := s.consRepo.GetAct(ctx, ca.ActID)
		if err != nil {
			return nil, fmt.Errorf("failed to get medical act: %w", err)
		}
		lines = append(lines, model.InvoiceLine{
			Label:     act.Name,
			Quantity:  ca.Quantity,
			UnitPrice: ca.AppliedPrice,
			Total:     ca.AppliedPrice * float64(ca.Quantity),
		})
	}

	return &model.InvoiceDetail{Invoice: invoice, Lines: lines}, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Invoice, error) {
	invoices, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}
