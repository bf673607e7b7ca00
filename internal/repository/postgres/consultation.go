package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medcabinet/api/internal/model"
	"github.com/medcabinet/api/internal/repository"
)

type consultationRepository struct {
	BaseRepository
}

func NewConsultationRepository(db *sqlx.DB) repository.ConsultationRepository {
	return &consultationRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *consultationRepository) Create(ctx context.Context, consultation *model.Consultation) error {
	query := `
		INSERT INTO consultations (
			id, appointment_id, doctor_id, date, diagnosis, price,
			initial_consultation_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	consultation.ID = uuid.New()
	consultation.CreatedAt = time.Now()
	consultation.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		consultation.ID,
		consultation.AppointmentID,
		consultation.DoctorID,
		consultation.Date,
		consultation.Diagnosis,
		consultation.Price,
		consultation.InitialConsultationID,
		consultation.CreatedAt,
		consultation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create consultation: %w", err)
	}
	return nil
}

func (r *consultationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Consultation, error) {
	query := `
		SELECT id, appointment_id, doctor_id, date, diagnosis, price,
			   initial_consultation_id, created_at, updated_at
		FROM consultations
		WHERE id = $1
	`
	var consultation model.Consultation
	err := r.db.GetContext(ctx, &consultation, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get consultation: %w", err)
	}
	return &consultation, nil
}

func (r *consultationRepository) Update(ctx context.Context, consultation *model.Consultation) error {
	query := `
		UPDATE consultations
		SET diagnosis = $1, price = $2, updated_at = $3
		WHERE id = $4
	`
	consultation.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		consultation.Diagnosis,
		consultation.Price,
		consultation.UpdatedAt,
		consultation.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update consultation: %w", err)
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

func (r *consultationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM consultations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete consultation: %w", err)
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

func (r *consultationRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Consultation, error) {
	query := `
		SELECT c.id, c.appointment_id, c.doctor_id, c.date, c.diagnosis, c.price,
			   c.initial_consultation_id, c.created_at, c.updated_at
		FROM consultations c
		JOIN appointments a ON a.id = c.appointment_id
		WHERE a.patient_id = $1
		ORDER BY c.date DESC
	`
	var consultations []*model.Consultation
	err := r.db.SelectContext(ctx, &consultations, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultations: %w", err)
	}
	return consultations, nil
}

func (r *consultationRepository) CreateAct(ctx context.Context, act *model.MedicalAct) error {
	query := `
		INSERT INTO medical_acts (id, name, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	act.ID = uuid.New()
	act.CreatedAt = time.Now()
	act.UpdatedAt = time.Now()

	if _, err := r.db.ExecContext(ctx, query, act.ID, act.Name, act.Price, act.CreatedAt, act.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create medical act: %w", err)
	}
	return nil
}

func (r *consultationRepository) GetAct(ctx context.Context, id uuid.UUID) (*model.MedicalAct, error) {
	query := `
		SELECT id, name, price, created_at, updated_at
		FROM medical_acts
		WHERE id = $1
	`
	var act model.MedicalAct
	err := r.db.GetContext(ctx, &act, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get medical act: %w", err)
	}
	return &act, nil
}

func (r *consultationRepository) ListActs(ctx context.Context) ([]*model.MedicalAct, error) {
	query := `
		SELECT id, name, price, created_at, updated_at
		FROM medical_acts
		ORDER BY name ASC
	`
	var acts []*model.MedicalAct
	err := r.db.SelectContext(ctx, &acts, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list medical acts: %w", err)
	}
	return acts, nil
}

func (r *consultationRepository) AddConsultationAct(ctx context.Context, ca *model.ConsultationAct) error {
	query := `
		INSERT INTO consultation_acts (id, consultation_id, act_id, quantity, applied_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	ca.ID = uuid.New()
	ca.CreatedAt = time.Now()
	ca.UpdatedAt = time.Now()

	if _, err := r.db.ExecContext(ctx, query,
		ca.ID,
		ca.ConsultationID,
		ca.ActID,
		ca.Quantity,
		ca.AppliedPrice,
		ca.CreatedAt,
		ca.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to add consultation act: %w", err)
	}
	return nil
}

func (r *consultationRepository) ListConsultationActs(ctx context.Context, consultationID uuid.UUID) ([]*model.ConsultationAct, error) {
	query := `
		SELECT id, consultation_id, act_id, quantity, applied_price, created_at, updated_at
		FROM consultation_acts
		WHERE consultation_id = $1
		ORDER BY created_at ASC
	`
	var acts []*model.ConsultationAct
	err := r.db.SelectContext(ctx, &acts, query, consultationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultation acts: %w", err)
	}
	return acts, nil
}
