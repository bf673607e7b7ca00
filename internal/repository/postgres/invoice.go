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

type invoiceRepository struct {
	BaseRepository
}

func NewInvoiceRepository(db *sqlx.DB) repository.InvoiceRepository {
	return &invoiceRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	query := `
		INSERT INTO invoices (id, consultation_id, patient_id, date, type, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	invoice.ID = uuid.New()
	invoice.CreatedAt = time.Now()
	invoice.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		invoice.ID,
		invoice.ConsultationID,
		invoice.PatientID,
		invoice.Date,
		invoice.Type,
		invoice.Amount,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	query := `
		SELECT id, consultation_id, patient_id, date, type, amount, created_at, updated_at
		FROM invoices
		WHERE id = $1
	`
	var invoice model.Invoice
	err := r.db.GetContext(ctx, &invoice, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &invoice, nil
}

func (r *invoiceRepository) GetByConsultation(ctx context.Context, consultationID uuid.UUID) (*model.Invoice, error) {
	query := `
		SELECT id, consultation_id, patient_id, date, type, amount, created_at, updated_at
		FROM invoices
		WHERE consultation_id = $1
	`
	var invoice model.Invoice
	err := r.db.GetContext(ctx, &invoice, query, consultationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invoice by consultation: %w", err)
	}
	return &invoice, nil
}

func (r *invoiceRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Invoice, error) {
	query := `
		SELECT id, consultation_id, patient_id, date, type, amount, created_at, updated_at
		FROM invoices
		WHERE patient_id = $1
		ORDER BY date DESC
	`
	var invoices []*model.Invoice
	err := r.db.SelectContext(ctx, &invoices, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}
