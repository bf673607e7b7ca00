package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/medcabinet/api/internal/model"
	"github.com/medcabinet/api/internal/repository"
)

type recordRepository struct {
	BaseRepository
}

func NewRecordRepository(db *sqlx.DB) repository.RecordRepository {
	return &recordRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *recordRepository) Create(ctx context.Context, record *model.MedicalRecord) error {
	query := `
		INSERT INTO medical_records (id, patient_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`
	record.ID = uuid.New()
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query, record.ID, record.PatientID, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create medical record: %w", err)
	}
	return nil
}

func (r *recordRepository) GetByPatient(ctx context.Context, patientID uuid.UUID) (*model.MedicalRecord, error) {
	query := `
		SELECT id, patient_id, created_at, updated_at
		FROM medical_records
		WHERE patient_id = $1
	`
	var record model.MedicalRecord
	err := r.db.GetContext(ctx, &record, query, patientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get medical record: %w", err)
	}
	return &record, nil
}

func (r *recordRepository) AddDisease(ctx context.Context, entry *model.RecordDisease) error {
	query := `
		INSERT INTO record_diseases (id, record_id, disease_id, duration, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = time.Now()

	if _, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.RecordID, entry.DiseaseID, entry.Duration, entry.CreatedAt, entry.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to add disease entry: %w", err)
	}
	return nil
}

func (r *recordRepository) AddVaccine(ctx context.Context, entry *model.RecordVaccine) error {
	query := `
		INSERT INTO record_vaccines (id, record_id, vaccine_id, administered_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = time.Now()

	if _, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.RecordID, entry.VaccineID, entry.AdministeredAt, entry.CreatedAt, entry.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to add vaccine entry: %w", err)
	}
	return nil
}

func (r *recordRepository) AddAllergy(ctx context.Context, entry *model.RecordAllergy) error {
	query := `
		INSERT INTO record_allergies (id, record_id, allergy_id, precautions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = time.Now()

	if _, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.RecordID, entry.AllergyID, entry.Precautions, entry.CreatedAt, entry.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to add allergy entry: %w", err)
	}
	return nil
}

func (r *recordRepository) ListDiseases(ctx context.Context, recordID uuid.UUID) ([]*model.RecordDisease, error) {
	query := `
		SELECT id, record_id, disease_id, duration, created_at, updated_at
		FROM record_diseases
		WHERE record_id = $1
		ORDER BY created_at ASC
	`
	var entries []*model.RecordDisease
	if err := r.db.SelectContext(ctx, &entries, query, recordID); err != nil {
		return nil, fmt.Errorf("failed to list disease entries: %w", err)
	}
	return entries, nil
}

func (r *recordRepository) ListVaccines(ctx context.Context, recordID uuid.UUID) ([]*model.RecordVaccine, error) {
	query := `
		SELECT id, record_id, vaccine_id, administered_at, created_at, updated_at
		FROM record_vaccines
		WHERE record_id = $1
		ORDER BY created_at ASC
	`
	var entries []*model.RecordVaccine
	if err := r.db.SelectContext(ctx, &entries, query, recordID); err != nil {
		return nil, fmt.Errorf("failed to list vaccine entries: %w", err)
	}
	return entries, nil
}

func (r *recordRepository) ListAllergies(ctx context.Context, recordID uuid.UUID) ([]*model.RecordAllergy, error) {
	query := `
		SELECT id, record_id, allergy_id, precautions, created_at, updated_at
		FROM record_allergies
		WHERE record_id = $1
		ORDER BY created_at ASC
	`
	var entries []*model.RecordAllergy
	if err := r.db.SelectContext(ctx, &entries, query, recordID); err != nil {
		return nil, fmt.Errorf("failed to list allergy entries: %w", err)
	}
	return entries, nil
}

func (r *recordRepository) CreateDisease(ctx context.Context, disease *model.Disease) error {
	disease.ID = uuid.New()
	disease.CreatedAt = time.Now()
	disease.UpdatedAt = time.Now()

	query := `INSERT INTO diseases (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, disease.ID, disease.Name, disease.CreatedAt, disease.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create disease: %w", err)
	}
	return nil
}

func (r *recordRepository) CreateVaccine(ctx context.Context, vaccine *model.Vaccine) error {
	vaccine.ID = uuid.New()
	vaccine.CreatedAt = time.Now()
	vaccine.UpdatedAt = time.Now()

	query := `
		INSERT INTO vaccines (id, name, description, recommended_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query,
		vaccine.ID, vaccine.Name, vaccine.Description, vaccine.RecommendedDate, vaccine.CreatedAt, vaccine.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to create vaccine: %w", err)
	}
	return nil
}

func (r *recordRepository) CreateAllergy(ctx context.Context, allergy *model.Allergy) error {
	allergy.ID = uuid.New()
	allergy.CreatedAt = time.Now()
	allergy.UpdatedAt = time.Now()

	query := `INSERT INTO allergies (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, allergy.ID, allergy.Name, allergy.CreatedAt, allergy.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create allergy: %w", err)
	}
	return nil
}

func (r *recordRepository) ListDiseaseCatalog(ctx context.Context) ([]*model.Disease, error) {
	var diseases []*model.Disease
	query := `SELECT id, name, created_at, updated_at FROM diseases ORDER BY name ASC`
	if err := r.db.SelectContext(ctx, &diseases, query); err != nil {
		return nil, fmt.Errorf("failed to list diseases: %w", err)
	}
	return diseases, nil
}

func (r *recordRepository) ListVaccineCatalog(ctx context.Context) ([]*model.Vaccine, error) {
	var vaccines []*model.Vaccine
	query := `
		SELECT id, name, description, recommended_date, created_at, updated_at
		FROM vaccines
		ORDER BY name ASC
	`
	if err := r.db.SelectContext(ctx, &vaccines, query); err != nil {
		return nil, fmt.Errorf("failed to list vaccines: %w", err)
	}
	return vaccines, nil
}

func (r *recordRepository) ListAllergyCatalog(ctx context.Context) ([]*model.Allergy, error) {
	var allergies []*model.Allergy
	query := `SELECT id, name, created_at, updated_at FROM allergies ORDER BY name ASC`
	if err := r.db.SelectContext(ctx, &allergies, query); err != nil {
		return nil, fmt.Errorf("failed to list allergies: %w", err)
	}
	return allergies, nil
}
