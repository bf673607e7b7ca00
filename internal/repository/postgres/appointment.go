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

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{BaseRepository: NewBaseRepository(db)}
}

// claimSlot flips the available flag with a compare-and-swap so two
// concurrent bookings cannot both win the same slot.
func claimSlot(ctx context.Context, tx *sqlx.Tx, slotID uuid.UUID) error {
	query := `
		UPDATE slots
		SET available = false, updated_at = $1
		WHERE id = $2 AND available = true
	`
	result, err := tx.ExecContext(ctx, query, time.Now(), slotID)
	if err != nil {
		return fmt.Errorf("failed to claim slot: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrSlotTaken
	}
	return nil
}

func releaseSlot(ctx context.Context, tx *sqlx.Tx, slotID uuid.UUID) error {
	query := `
		UPDATE slots
		SET available = true, updated_at = $1
		WHERE id = $2
	`
	if _, err := tx.ExecContext(ctx, query, time.Now(), slotID); err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}
	return nil
}

func (r *appointmentRepository) CreateBound(ctx context.Context, appointment *model.Appointment) error {
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if appointment.SlotID != nil {
			if err := claimSlot(ctx, tx, *appointment.SlotID); err != nil {
				return err
			}
		}

		query := `
			INSERT INTO appointments (id, patient_id, doctor_id, slot_id, status, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		if _, err := tx.ExecContext(ctx, query,
			appointment.ID,
			appointment.PatientID,
			appointment.DoctorID,
			appointment.SlotID,
			appointment.Status,
			appointment.Notes,
			appointment.CreatedAt,
			appointment.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}
		return nil
	})
}

func (r *appointmentRepository) Rebind(ctx context.Context, appointment *model.Appointment, oldSlotID, newSlotID uuid.UUID) error {
	appointment.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		// release before claim: the whole unit commits or none of it
		// does, so the old slot can never stay taken for a failed
		// rebind
		if err := releaseSlot(ctx, tx, oldSlotID); err != nil {
			return err
		}
		if err := claimSlot(ctx, tx, newSlotID); err != nil {
			return err
		}

		query := `
			UPDATE appointments
			SET slot_id = $1, updated_at = $2
			WHERE id = $3
		`
		result, err := tx.ExecContext(ctx, query, newSlotID, appointment.UpdatedAt, appointment.ID)
		if err != nil {
			return fmt.Errorf("failed to update appointment: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *appointmentRepository) DeleteBound(ctx context.Context, id uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var appointment model.Appointment
		getQuery := `
			SELECT id, patient_id, doctor_id, slot_id, status, notes, created_at, updated_at
			FROM appointments
			WHERE id = $1
		`
		if err := tx.GetContext(ctx, &appointment, getQuery, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to get appointment: %w", err)
		}

		delQuery := `DELETE FROM appointments WHERE id = $1`
		if _, err := tx.ExecContext(ctx, delQuery, id); err != nil {
			return fmt.Errorf("failed to delete appointment: %w", err)
		}

		if appointment.SlotID != nil {
			if err := releaseSlot(ctx, tx, *appointment.SlotID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_id, slot_id, status, notes, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

// UpdateStatus changes the appointment status. A transition into
// cancelled releases the bound slot in the same transaction, matching
// the partial unique index that treats cancelled rows as inactive.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var appointment model.Appointment
		getQuery := `
			SELECT id, patient_id, doctor_id, slot_id, status, notes, created_at, updated_at
			FROM appointments
			WHERE id = $1
		`
		if err := tx.GetContext(ctx, &appointment, getQuery, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to get appointment: %w", err)
		}

		query := `
			UPDATE appointments
			SET status = $1, updated_at = $2
			WHERE id = $3
		`
		if _, err := tx.ExecContext(ctx, query, status, time.Now(), id); err != nil {
			return fmt.Errorf("failed to update appointment status: %w", err)
		}

		if status == model.AppointmentStatusCancelled &&
			appointment.Status != model.AppointmentStatusCancelled &&
			appointment.SlotID != nil {
			return releaseSlot(ctx, tx, *appointment.SlotID)
		}
		return nil
	})
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT a.id, a.patient_id, a.doctor_id, a.slot_id, a.status, a.notes, a.created_at, a.updated_at
		FROM appointments a
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.DoctorID != uuid.Nil {
		query += fmt.Sprintf(" AND a.doctor_id = $%d", argCount)
		args = append(args, filters.DoctorID)
		argCount++
	}

	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND a.patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND a.status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if filters.Date != "" {
		query += fmt.Sprintf(" AND a.slot_id IN (SELECT id FROM slots WHERE date = $%d)", argCount)
		args = append(args, filters.Date)
		argCount++
	}

	query += " ORDER BY a.created_at ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListForDate(ctx context.Context, date time.Time, statuses []model.AppointmentStatus) ([]*model.Appointment, error) {
	query := `
		SELECT a.id, a.patient_id, a.doctor_id, a.slot_id, a.status, a.notes, a.created_at, a.updated_at
		FROM appointments a
		JOIN slots s ON s.id = a.slot_id
		WHERE s.date = $1
	`
	args := []interface{}{date}

	if len(statuses) > 0 {
		placeholders := ""
		for i, status := range statuses {
			if i > 0 {
				placeholders += ", "
			}
			placeholders += fmt.Sprintf("$%d", len(args)+1)
			args = append(args, status)
		}
		query += fmt.Sprintf(" AND a.status IN (%s)", placeholders)
	}

	query += " ORDER BY s.start_time ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments for date: %w", err)
	}
	return appointments, nil
}
