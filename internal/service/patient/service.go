package patient

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
	repo        repository.PatientRepository
	recordRepo  repository.RecordRepository
	insurerRepo repository.InsurerRepository
}

func NewService(repo repository.PatientRepository, recordRepo repository.RecordRepository, insurerRepo repository.InsurerRepository) *Service {
	return &Service{repo: repo, recordRepo: recordRepo, insurerRepo: insurerRepo}
}

// Create registers a patient and opens their medical record.
func (s *Service) Create(ctx context.Context, req *model.CreatePatientRequest, registeredBy *uuid.UUID) (*model.Patient, error) {
	dob, err := time.Parse(model.DateOnly, req.DateOfBirth)
	if err != nil {
		return nil, apperrors.Validation("date_of_birth must be YYYY-MM-DD")
	}

	patient := &model.Patient{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Gender:        req.Gender,
		NationalID:    req.NationalID,
		Address:       req.Address,
		DateOfBirth:   dob,
		Phone:         req.Phone,
		MaritalStatus: req.MaritalStatus,
		RegisteredBy:  registeredBy,
	}
	if req.Email != "" {
		email := req.Email
		patient.Email = &email
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("a patient with this national id already exists")
		}
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	if err := s.recordRepo.Create(ctx, &model.MedicalRecord{PatientID: patient.ID}); err != nil {
		return nil, fmt.Errorf("failed to create medical record: %w", err)
	}
	return patient, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		patient.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		patient.LastName = *req.LastName
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.Email != nil {
		patient.Email = req.Email
	}
	if req.MaritalStatus != nil {
		patient.MaritalStatus = *req.MaritalStatus
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return patient, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("patient", err)
		}
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

// FindByNationalID looks a patient up by their national id card
// number, the front-desk search path.
func (s *Service) FindByNationalID(ctx context.Context, nationalID string) (*model.Patient, error) {
	patient, err := s.repo.GetByNationalID(ctx, nationalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to find patient: %w", err)
	}
	return patient, nil
}

func (s *Service) SearchByName(ctx context.Context, name string) ([]*model.Patient, error) {
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	patients, err := s.repo.SearchByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to search patients: %w", err)
	}
	return patients, nil
}

func (s *Service) ListInsurers(ctx context.Context, patientID uuid.UUID) ([]*model.Insurer, error) {
	if _, err := s.Get(ctx, patientID); err != nil {
		return nil, err
	}
	insurers, err := s.repo.ListInsurers(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list insurers: %w", err)
	}
	return insurers, nil
}

func (s *Service) AddInsurer(ctx context.Context, patientID, insurerID uuid.UUID) error {
	if _, err := s.Get(ctx, patientID); err != nil {
		return err
	}
	if _, err := s.insurerRepo.Get(ctx, insurerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("insurer", err)
		}
		return fmt.Errorf("failed to get insurer: %w", err)
	}
	if err := s.repo.AddInsurer(ctx, patientID, insurerID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperrors.Conflict("patient is already affiliated with this insurer")
		}
		return fmt.Errorf("failed to add insurer: %w", err)
	}
	return nil
}

func (s *Service) RemoveInsurer(ctx context.Context, patientID, insurerID uuid.UUID) error {
	if err := s.repo.RemoveInsurer(ctx, patientID, insurerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("affiliation", err)
		}
		return fmt.Errorf("failed to remove insurer: %w", err)
	}
	return nil
}
