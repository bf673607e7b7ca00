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

type schedulingRepository struct {
	BaseRepository
}

func NewSchedulingRepository(db *sqlx.DB) repository.SchedulingRepository {
	return &schedulingRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *schedulingRepository) CreateWorkingDay(ctx context.Context, day *model.WorkingDay, slots []*model.Slot) (int, error) {
	day.ID = uuid.New()
	day.CreatedAt = time.Now()
	day.UpdatedAt = time.Now()

	var created int
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO working_days (id, doctor_id, date, start_time, end_time, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		if _, err := tx.ExecContext(ctx, query,
			day.ID,
			day.DoctorID,
			day.Date,
			day.StartTime,
			day.EndTime,
			day.CreatedAt,
			day.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create working day: %w", err)
		}

		n, err := insertSlots(ctx, tx, slots)
		if err != nil {
			return err
		}
		created = n
		return nil
	})
	return created, err
}

func (r *schedulingRepository) UpdateWorkingDay(ctx context.Context, day *model.WorkingDay, slots []*model.Slot) (int, error) {
	day.UpdatedAt = time.Now()

	var created int
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		// drop the free slots only; taken ones stay bound to their
		// appointments
		delQuery := `
			DELETE FROM slots
			WHERE doctor_id = $1 AND date = $2 AND available = true
		`
		if _, err := tx.ExecContext(ctx, delQuery, day.DoctorID, day.Date); err != nil {
			return fmt.Errorf("failed to delete available slots: %w", err)
		}

		query := `
			UPDATE working_days
			SET start_time = $1, end_time = $2, updated_at = $3
			WHERE id = $4
		`
		result, err := tx.ExecContext(ctx, query, day.StartTime, day.EndTime, day.UpdatedAt, day.ID)
		if err != nil {
			return fmt.Errorf("failed to update working day: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return repository.ErrNotFound
		}

		n, err := insertSlots(ctx, tx, slots)
		if err != nil {
			return err
		}
		created = n
		return nil
	})
	return created, err
}

// insertSlots bulk-inserts slots first-write-wins: an existing
// (doctor_id, date, start_time) row is left untouched.
func insertSlots(ctx context.Context, tx *sqlx.Tx, slots []*model.Slot) (int, error) {
	query := `
		INSERT INTO slots (id, doctor_id, date, start_time, end_time, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (doctor_id, date, start_time) DO NOTHING
	`
	created := 0
	for _, slot := range slots {
		result, err := tx.ExecContext(ctx, query,
			slot.ID,
			slot.DoctorID,
			slot.Date,
			slot.StartTime,
			slot.EndTime,
			slot.Available,
			slot.CreatedAt,
			slot.UpdatedAt,
		)
		if err != nil {
			return created, fmt.Errorf("failed to insert slot: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return created, fmt.Errorf("failed to get rows affected: %w", err)
		}
		created += int(rows)
	}
	return created, nil
}

func (r *schedulingRepository) DeleteWorkingDay(ctx context.Context, id uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var day model.WorkingDay
		getQuery := `
			SELECT id, doctor_id, date, start_time, end_time, created_at, updated_at
			FROM working_days
			WHERE id = $1
		`
		if err := tx.GetContext(ctx, &day, getQuery, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to get working day: %w", err)
		}

		delSlots := `
			DELETE FROM slots
			WHERE doctor_id = $1 AND date = $2
		`
		if _, err := tx.ExecContext(ctx, delSlots, day.DoctorID, day.Date); err != nil {
			return fmt.Errorf("failed to delete slots: %w", err)
		}

		delDay := `DELETE FROM working_days WHERE id = $1`
		if _, err := tx.ExecContext(ctx, delDay, id); err != nil {
			return fmt.Errorf("failed to delete working day: %w", err)
		}
		return nil
	})
}

func (r *schedulingRepository) GetWorkingDay(ctx context.Context, id uuid.UUID) (*model.WorkingDay, error) {
	query := `
		SELECT id, doctor_id, date, start_time, end_time, created_at, updated_at
		FROM working_days
		WHERE id = $1
	`
	var day model.WorkingDay
	err := r.db.GetContext(ctx, &day, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get working day: %w", err)
	}
	return &day, nil
}

func (r *schedulingRepository) ListWorkingDays(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.WorkingDay, error) {
	query := `
		SELECT id, doctor_id, date, start_time, end_time, created_at, updated_at
		FROM working_days
		WHERE doctor_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`
	var days []*model.WorkingDay
	err := r.db.SelectContext(ctx, &days, query, doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list working days: %w", err)
	}
	return days, nil
}

func (r *schedulingRepository) GetSlot(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	query := `
		SELECT id, doctor_id, date, start_time, end_time, available, created_at, updated_at
		FROM slots
		WHERE id = $1
	`
	var slot model.Slot
	err := r.db.GetContext(ctx, &slot, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return &slot, nil
}

func (r *schedulingRepository) ListSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Slot, error) {
	query := `
		SELECT id, doctor_id, date, start_time, end_time, available, created_at, updated_at
		FROM slots
		WHERE doctor_id = $1 AND date = $2
		ORDER BY start_time ASC
	`
	var slots []*model.Slot
	err := r.db.SelectContext(ctx, &slots, query, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	return slots, nil
}

func (r *schedulingRepository) ListAvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Slot, error) {
	query := `
		SELECT id, doctor_id, date, start_time, end_time, available, created_at, updated_at
		FROM slots
		WHERE doctor_id = $1 AND date = $2 AND available = true
		ORDER BY start_time ASC
	`
	var slots []*model.Slot
	err := r.db.SelectContext(ctx, &slots, query, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list available slots: %w", err)
	}
	return slots, nil
}

func (r *schedulingRepository) CountTakenSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM slots
		WHERE doctor_id = $1 AND date = $2 AND available = false
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, doctorID, date)
	if err != nil {
		return 0, fmt.Errorf("failed to count taken slots: %w", err)
	}
	return count, nil
}
