package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medcabinet/api/internal/model"
	"github.com/medcabinet/api/internal/repository"
)

type prescriptionRepository struct {
	BaseRepository
}

func NewPrescriptionRepository(db *sqlx.DB) repository.PrescriptionRepository {
	return &prescriptionRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *prescriptionRepository) Create(ctx context.Context, prescription *model.Prescription) error {
	query := `
		INSERT INTO prescriptions (id, consultation_id, date, medications, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	prescription.ID = uuid.New()
	prescription.CreatedAt = time.Now()
	prescription.UpdatedAt = time.Now()

	if _, err := r.db.ExecContext(ctx, query,
		prescription.ID,
		prescription.ConsultationID,
		prescription.Date,
		prescription.Medications,
		prescription.CreatedAt,
		prescription.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to create prescription: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) ListByConsultation(ctx context.Context, consultationID uuid.UUID) ([]*model.Prescription, error) {
	query := `
		SELECT id, consultation_id, date, medications, created_at, updated_at
		FROM prescriptions
		WHERE consultation_id = $1
		ORDER BY date DESC
	`
	var prescriptions []*model.Prescription
	if err := r.db.SelectContext(ctx, &prescriptions, query, consultationID); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}

func (r *prescriptionRepository) CreateLabTest(ctx context.Context, test *model.LabTest) error {
	test.ID = uuid.New()
	test.CreatedAt = time.Now()
	test.UpdatedAt = time.Now()

	query := `
		INSERT INTO lab_tests (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query, test.ID, test.Name, test.Description, test.CreatedAt, test.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create lab test: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) ListLabTests(ctx context.Context) ([]*model.LabTest, error) {
	var tests []*model.LabTest
	query := `SELECT id, name, description, created_at, updated_at FROM lab_tests ORDER BY name ASC`
	if err := r.db.SelectContext(ctx, &tests, query); err != nil {
		return nil, fmt.Errorf("failed to list lab tests: %w", err)
	}
	return tests, nil
}

func (r *prescriptionRepository) CreateLabTestOrder(ctx context.Context, order *model.LabTestOrder) error {
	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	query := `
		INSERT INTO lab_test_orders (id, consultation_id, lab_test_id, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query,
		order.ID, order.ConsultationID, order.LabTestID, order.Date, order.CreatedAt, order.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to create lab test order: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) ListLabTestOrders(ctx context.Context, consultationID uuid.UUID) ([]*model.LabTestOrder, error) {
	query := `
		SELECT id, consultation_id, lab_test_id, date, created_at, updated_at
		FROM lab_test_orders
		WHERE consultation_id = $1
		ORDER BY date DESC
	`
	var orders []*model.LabTestOrder
	if err := r.db.SelectContext(ctx, &orders, query, consultationID); err != nil {
		return nil, fmt.Errorf("failed to list lab test orders: %w", err)
	}
	return orders, nil
}

func (r *prescriptionRepository) CreateImagingExam(ctx context.Context, exam *model.ImagingExam) error {
	exam.ID = uuid.New()
	exam.CreatedAt = time.Now()
	exam.UpdatedAt = time.Now()

	query := `
		INSERT INTO imaging_exams (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query, exam.ID, exam.Name, exam.Description, exam.CreatedAt, exam.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create imaging exam: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) ListImagingExams(ctx context.Context) ([]*model.ImagingExam, error) {
	var exams []*model.ImagingExam
	query := `SELECT id, name, description, created_at, updated_at FROM imaging_exams ORDER BY name ASC`
	if err := r.db.SelectContext(ctx, &exams, query); err != nil {
		return nil, fmt.Errorf("failed to list imaging exams: %w", err)
	}
	return exams, nil
}

func (r *prescriptionRepository) CreateImagingOrder(ctx context.Context, order *model.ImagingOrder) error {
	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	query := `
		INSERT INTO imaging_orders (id, consultation_id, imaging_exam_id, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query,
		order.ID, order.ConsultationID, order.ImagingExamID, order.Date, order.CreatedAt, order.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to create imaging order: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) ListImagingOrders(ctx context.Context, consultationID uuid.UUID) ([]*model.ImagingOrder, error) {
	query := `
		SELECT id, consultation_id, imaging_exam_id, date, created_at, updated_at
		FROM imaging_orders
		WHERE consultation_id = $1
		ORDER BY date DESC
	`
	var orders []*model.ImagingOrder
	if err := r.db.SelectContext(ctx, &orders, query, consultationID); err != nil {
		return nil, fmt.Errorf("failed to list imaging orders: %w", err)
	}
	return orders, nil
}
