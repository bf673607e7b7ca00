package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medcabinet/api/internal/model"
	"github.com/medcabinet/api/internal/repository"
	apperrors "github.com/medcabinet/api/pkg/errors"
)

type fakeConsultationRepo struct {
	consultations map[uuid.UUID]*model.Consultation
	acts          map[uuid.UUID]*model.MedicalAct
	consActs      map[uuid.UUID][]*model.ConsultationAct
}

func newFakeConsultationRepo() *fakeConsultationRepo {
	return &fakeConsultationRepo{
		consultations: make(map[uuid.UUID]*model.Consultation),
		acts:          make(map[uuid.UUID]*model.MedicalAct),
		consActs:      make(map[uuid.UUID][]*model.ConsultationAct),
	}
}

func (f *fakeConsultationRepo) Create(_ context.Context, c *model.Consultation) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.consultations[c.ID] = c
	return nil
}

func (f *fakeConsultationRepo) Get(_ context.Context, id uuid.UUID) (*model.Consultation, error) {
	c, ok := f.consultations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeConsultationRepo) Update(context.Context, *model.Consultation) error { return nil }
func (f *fakeConsultationRepo) Delete(context.Context, uuid.UUID) error           { return nil }
func (f *fakeConsultationRepo) ListByPatient(context.Context, uuid.UUID) ([]*model.Consultation, error) {
	return nil, nil
}

func (f *fakeConsultationRepo) CreateAct(_ context.Context, act *model.MedicalAct) error {
	if act.ID == uuid.Nil {
		act.ID = uuid.New()
	}
	f.acts[act.ID] = act
	return nil
}

func (f *fakeConsultationRepo) GetAct(_ context.Context, id uuid.UUID) (*model.MedicalAct, error) {
	act, ok := f.acts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return act, nil
}

func (f *fakeConsultationRepo) ListActs(context.Context) ([]*model.MedicalAct, error) {
	return nil, nil
}

func (f *fakeConsultationRepo) AddConsultationAct(_ context.Context, ca *model.ConsultationAct) error {
	f.consActs[ca.ConsultationID] = append(f.consActs[ca.ConsultationID], ca)
	return nil
}

func (f *fakeConsultationRepo) ListConsultationActs(_ context.Context, consultationID uuid.UUID) ([]*model.ConsultationAct, error) {
	return f.consActs[consultationID], nil
}

type fakeInvoiceRepo struct {
	invoices map[uuid.UUID]*model.Invoice
}

func (f *fakeInvoiceRepo) Create(_ context.Context, inv *model.Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	f.invoices[inv.ID] = inv
	return nil
}

func (f *fakeInvoiceRepo) Get(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return inv, nil
}

func (f *fakeInvoiceRepo) GetByConsultation(_ context.Context, consultationID uuid.UUID) (*model.Invoice, error) {
	for _, inv := range f.invoices {
		if inv.ConsultationID == consultationID {
			return inv, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeInvoiceRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*model.Invoice, error) {
	var out []*model.Invoice
	for _, inv := range f.invoices {
		if inv.PatientID == patientID {
			out = append(out, inv)
		}
	}
	return out, nil
}

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
}

func (f *fakeAppointmentRepo) CreateBound(context.Context, *model.Appointment) error { return nil }
func (f *fakeAppointmentRepo) Rebind(context.Context, *model.Appointment, uuid.UUID, uuid.UUID) error {
	return nil
}
func (f *fakeAppointmentRepo) DeleteBound(context.Context, uuid.UUID) error { return nil }
func (f *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := f.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return apt, nil
}
func (f *fakeAppointmentRepo) UpdateStatus(context.Context, uuid.UUID, model.AppointmentStatus) error {
	return nil
}
func (f *fakeAppointmentRepo) List(context.Context, *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}
func (f *fakeAppointmentRepo) ListForDate(context.Context, time.Time, []model.AppointmentStatus) ([]*model.Appointment, error) {
	return nil, nil
}

func setup() (*Service, *fakeConsultationRepo, *model.Consultation) {
	consRepo := newFakeConsultationRepo()
	invRepo := &fakeInvoiceRepo{invoices: make(map[uuid.UUID]*model.Invoice)}

	apt := &model.Appointment{
		Base:      model.Base{ID: uuid.New()},
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Status:    model.AppointmentStatusInConsultation,
	}
	aptRepo := &fakeAppointmentRepo{
		appointments: map[uuid.UUID]*model.Appointment{apt.ID: apt},
	}

	consultation := &model.Consultation{
		Base:          model.Base{ID: uuid.New()},
		AppointmentID: apt.ID,
		DoctorID:      apt.DoctorID,
		Date:          time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		Diagnosis:     "seasonal rhinitis",
		Price:         150,
	}
	consRepo.consultations[consultation.ID] = consultation

	return NewService(invRepo, consRepo, aptRepo), consRepo, consultation
}

func TestComputeAmountConsultationOnly(t *testing.T) {
	svc, _, consultation := setup()

	amount, err := svc.ComputeAmount(context.Background(), consultation.ID)
	require.NoError(t, err)
	assert.Equal(t, 150.0, amount)
}

func TestComputeAmountWithActs(t *testing.T) {
	svc, consRepo, consultation := setup()

	consRepo.consActs[consultation.ID] = []*model.ConsultationAct{
		{ConsultationID: consultation.ID, Quantity: 2, AppliedPrice: 40},
		{ConsultationID: consultation.ID, Quantity: 1, AppliedPrice: 75.5},
	}

	amount, err := svc.ComputeAmount(context.Background(), consultation.ID)
	require.NoError(t, err)
	assert.Equal(t, 150+2*40+75.5, amount)
}

func TestComputeAmountUnknownConsultation(t *testing.T) {
	svc, _, _ := setup()

	_, err := svc.ComputeAmount(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestCreateInvoice(t *testing.T) {
	svc, consRepo, consultation := setup()

	consRepo.consActs[consultation.ID] = []*model.ConsultationAct{
		{ConsultationID: consultation.ID, Quantity: 1, AppliedPrice: 50},
	}

	invoice, err := svc.CreateInvoice(context.Background(), &model.CreateInvoiceRequest{
		ConsultationID: consultation.ID,
		Type:           "standard",
		Date:           "2026-09-14",
	})
	require.NoError(t, err)
	assert.Equal(t, 200.0, invoice.Amount)
	assert.Equal(t, consultation.ID, invoice.ConsultationID)
}

func TestCreateInvoiceTwiceConflicts(t *testing.T) {
	svc, _, consultation := setup()

	req := &model.CreateInvoiceRequest{ConsultationID: consultation.ID, Type: "standard"}

	_, err := svc.CreateInvoice(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.CreateInvoice(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
}

func TestInvoiceDetailLines(t *testing.T) {
	svc, consRepo, consultation := setup()

	scan := &model.MedicalAct{Base: model.Base{ID: uuid.New()}, Name: "Ultrasound", Price: 80}
	consRepo.acts[scan.ID] = scan
	consRepo.consActs[consultation.ID] = []*model.ConsultationAct{
		{ConsultationID: consultation.ID, ActID: scan.ID, Quantity: 2, AppliedPrice: 80},
	}

	invoice, err := svc.CreateInvoice(context.Background(), &model.CreateInvoiceRequest{
		ConsultationID: consultation.ID,
		Type:           "standard",
	})
	require.NoError(t, err)

	detail, err := svc.GetDetail(context.Background(), invoice.ID)
	require.NoError(t, err)
	require.Len(t, detail.Lines, 2)

	assert.Equal(t, "Consultation", detail.Lines[0].Label)
	assert.Equal(t, 150.0, detail.Lines[0].Total)
	assert.Equal(t, "Ultrasound", detail.Lines[1].Label)
	assert.Equal(t, 160.0, detail.Lines[1].Total)

	total := 0.0
	for _, line := range detail.Lines {
		total += line.Total
	}
	assert.Equal(t, invoice.Amount, total)
}
