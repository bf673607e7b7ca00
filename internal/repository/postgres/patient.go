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

const patientColumns = `id, first_name, last_name, gender, national_id, address,
	   date_of_birth, phone, email, marital_status, registered_by,
	   created_at, updated_at`

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, first_name, last_name, gender, national_id, address,
			date_of_birth, phone, email, marital_status, registered_by,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	patient.ID = uuid.New()
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.FirstName,
		patient.LastName,
		patient.Gender,
		patient.NationalID,
		patient.Address,
		patient.DateOfBirth,
		patient.Phone,
		patient.Email,
		patient.MaritalStatus,
		patient.RegisteredBy,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := fmt.Sprintf(`SELECT %s FROM patients WHERE id = $1`, patientColumns)

	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET first_name = $1, last_name = $2, gender = $3, address = $4,
			phone = $5, email = $6, marital_status = $7, updated_at = $8
		WHERE id = $9
	`
	patient.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		patient.FirstName,
		patient.LastName,
		patient.Gender,
		patient.Address,
		patient.Phone,
		patient.Email,
		patient.MaritalStatus,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	query := fmt.Sprintf(`SELECT %s FROM patients WHERE 1=1`, patientColumns)
	args := []interface{}{}
	argCount := 1

	if filters != nil && filters.NationalID != "" {
		query += fmt.Sprintf(" AND national_id = $%d", argCount)
		args = append(args, filters.NationalID)
		argCount++
	}

	if filters != nil && filters.Name != "" {
		query += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d)", argCount, argCount)
		args = append(args, "%"+filters.Name+"%")
		argCount++
	}

	query += " ORDER BY last_name ASC, first_name ASC"

	if filters != nil && filters.PageSize > 0 {
		page := filters.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1)
		args = append(args, filters.PageSize, (page-1)*filters.PageSize)
	}

	var patients []*model.Patient
	err := r.db.SelectContext(ctx, &patients, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) GetByNationalID(ctx context.Context, nationalID string) (*model.Patient, error) {
	query := fmt.Sprintf(`SELECT %s FROM patients WHERE national_id = $1`, patientColumns)

	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, nationalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get patient by national ID: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) SearchByName(ctx context.Context, name string) ([]*model.Patient, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM patients
		WHERE first_name ILIKE $1 OR last_name ILIKE $1
		ORDER BY last_name ASC, first_name ASC
	`, patientColumns)

	var patients []*model.Patient
	err := r.db.SelectContext(ctx, &patients, query, "%"+name+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) ListInsurers(ctx context.Context, patientID uuid.UUID) ([]*model.Insurer, error) {
	query := `
		SELECT i.id, i.name, i.type, i.created_at, i.updated_at
		FROM insurers i
		JOIN patient_insurers pi ON pi.insurer_id = i.id
		WHERE pi.patient_id = $1
		ORDER BY i.name ASC
	`
	var insurers []*model.Insurer
	err := r.db.SelectContext(ctx, &insurers, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient insurers: %w", err)
	}
	return insurers, nil
}

func (r *patientRepository) AddInsurer(ctx context.Context, patientID, insurerID uuid.UUID) error {
	query := `
		INSERT INTO patient_insurers (id, patient_id, insurer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (patient_id, insurer_id) DO NOTHING
	`
	now := time.Now()
	if _, err := r.db.ExecContext(ctx, query, uuid.New(), patientID, insurerID, now, now); err != nil {
		return fmt.Errorf("failed to add patient insurer: %w", err)
	}
	return nil
}

func (r *patientRepository) RemoveInsurer(ctx context.Context, patientID, insurerID uuid.UUID) error {
	query := `DELETE FROM patient_insurers WHERE patient_id = $1 AND insurer_id = $2`
	if _, err := r.db.ExecContext(ctx, query, patientID, insurerID); err != nil {
		return fmt.Errorf("failed to remove patient insurer: %w", err)
	}
	return nil
}
