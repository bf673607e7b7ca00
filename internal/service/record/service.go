package record

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
	repo repository.RecordRepository
}

func NewService(repo repository.RecordRepository) *Service {
	return &Service{repo: repo}
}

// GetByPatient returns the patient's record with diseases, vaccines
// and allergies attached.
func (s *Service) GetByPatient(ctx context.Context, patientID uuid.UUID) (*model.RecordDetail, error) {
	rec, err := s.repo.GetByPatient(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("medical record", err)
		}
		return nil, fmt.Errorf("failed to get medical record: %w", err)
	}

	diseases, err := s.repo.ListDiseases(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list diseases: %w", err)
	}
	vaccines, err := s.repo.ListVaccines(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vaccines: %w", err)
	}
	allergies, err := s.repo.ListAllergies(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allergies: %w", err)
	}

	return &model.RecordDetail{
		Record:    rec,
		Diseases:  diseases,
		Vaccines:  vaccines,
		Allergies: allergies,
	}, nil
}

func (s *Service) recordID(ctx context.Context, patientID uuid.UUID) (uuid.UUID, error) {
	rec, err := s.repo.GetByPatient(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return uuid.Nil, apperrors.NotFound("medical record", err)
		}
		return uuid.Nil, fmt.Errorf("failed to get medical record: %w", err)
	}
	return rec.ID, nil
}

func (s *Service) AddDisease(ctx context.Context, patientID uuid.UUID, req *model.AddRecordDiseaseRequest) (*model.RecordDisease, error) {
	recID, err := s.recordID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	entry := &model.RecordDisease{
		RecordID:  recID,
		DiseaseID: req.DiseaseID,
		Duration:  req.Duration,
	}
	if err := s.repo.AddDisease(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to add disease: %w", err)
	}
	return entry, nil
}

func (s *Service) AddVaccine(ctx context.Context, patientID uuid.UUID, req *model.AddRecordVaccineRequest) (*model.RecordVaccine, error) {
	recID, err := s.recordID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	entry := &model.RecordVaccine{
		RecordID:  recID,
		VaccineID: req.VaccineID,
	}
	if req.AdministeredAt != nil {
		at, err := time.Parse(model.DateOnly, *req.AdministeredAt)
		if err != nil {
			return nil, apperrors.Validation("administered_at must be YYYY-MM-DD")
		}
		entry.AdministeredAt = &at
	}
	if err := s.repo.AddVaccine(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to add vaccine: %w", err)
	}
	return entry, nil
}

func (s *Service) AddAllergy(ctx context.Context, patientID uuid.UUID, req *model.AddRecordAllergyRequest) (*model.RecordAllergy, error) {
	recID, err := s.recordID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	entry := &model.RecordAllergy{
		RecordID:    recID,
		AllergyID:   req.AllergyID,
		Precautions: req.Precautions,
	}
	if err := s.repo.AddAllergy(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to add allergy: %w", err)
	}
	return entry, nil
}

func (s *Service) CreateDisease(ctx context.Context, name string) (*model.Disease, error) {
	disease := &model.Disease{Name: name}
	if err := s.repo.CreateDisease(ctx, disease); err != nil {
		return nil, fmt.Errorf("failed to create disease: %w", err)
	}
	return disease, nil
}

func (s *Service) CreateVaccine(ctx context.Context, vaccine *model.Vaccine) error {
	if err := s.repo.CreateVaccine(ctx, vaccine); err != nil {
		return fmt.Errorf("failed to create vaccine: %w", err)
	}
	return nil
}

func (s *Service) CreateAllergy(ctx context.Context, name string) (*model.Allergy, error) {
	allergy := &model.Allergy{Name: name}
	if err := s.repo.CreateAllergy(ctx, allergy); err != nil {
		return nil, fmt.Errorf("failed to create allergy: %w", err)
	}
	return allergy, nil
}

func (s *Service) ListDiseaseCatalog(ctx context.Context) ([]*model.Disease, error) {
	return s.repo.ListDiseaseCatalog(ctx)
}

func (s *Service) ListVaccineCatalog(ctx context.Context) ([]*model.Vaccine, error) {
	return s.repo.ListVaccineCatalog(ctx)
}

func (s *Service) ListAllergyCatalog(ctx context.Context) ([]*model.Allergy, error) {
	return s.repo.ListAllergyCatalog(ctx)
}
