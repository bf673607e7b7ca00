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

type insurerRepository struct {
	BaseRepository
}

func NewInsurerRepository(db *sqlx.DB) repository.InsurerRepository {
	return &insurerRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *insurerRepository) Create(ctx context.Context, insurer *model.Insurer) error {
	query := `
		INSERT INTO insurers (id, name, type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	insurer.ID = uuid.New()
	insurer.CreatedAt = time.Now()
	insurer.UpdatedAt = time.Now()

	if _, err := r.db.ExecContext(ctx, query,
		insurer.ID, insurer.Name, insurer.Type, insurer.CreatedAt, insurer.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to create insurer: %w", err)
	}
	return nil
}

func (r *insurerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Insurer, error) {
	query := `SELECT id, name, type, created_at, updated_at FROM insurers WHERE id = $1`

	var insurer model.Insurer
	err := r.db.GetContext(ctx, &insurer, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get insurer: %w", err)
	}
	return &insurer, nil
}

func (r *insurerRepository) List(ctx context.Context) ([]*model.Insurer, error) {
	var insurers []*model.Insurer
	query := `SELECT id, name, type, created_at, updated_at FROM insurers ORDER BY name ASC`
	if err := r.db.SelectContext(ctx, &insurers, query); err != nil {
		return nil, fmt.Errorf("failed to list insurers: %w", err)
	}
	return insurers, nil
}

func (r *insurerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM insurers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete insurer: %w", err)
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
