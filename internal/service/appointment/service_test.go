package appointment

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

// fakeLedger backs both the scheduling and appointment fakes so slot
// claims and appointment writes share one store, as they do in the
// database.
type fakeLedger struct {
	slots        map[uuid.UUID]*model.Slot
	appointments map[uuid.UUID]*model.Appointment
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		slots:        make(map[uuid.UUID]*model.Slot),
		appointments: make(map[uuid.UUID]*model.Appointment),
	}
}

func (l *fakeLedger) addSlot(doctorID uuid.UUID, date time.Time, hour int) *model.Slot {
	start := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, time.UTC)
	slot := &model.Slot{
		Base:      model.Base{ID: uuid.New()},
		DoctorID:  doctorID,
		Date:      date,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Available: true,
	}
	l.slots[slot.ID] = slot
	return slot
}

func (l *fakeLedger) claim(id uuid.UUID) error {
	slot, ok := l.slots[id]
	if !ok || !slot.Available {
		return repository.ErrSlotTaken
	}
	slot.Available = false
	return nil
}

func (l *fakeLedger) release(id uuid.UUID) {
	if slot, ok := l.slots[id]; ok {
		slot.Available = true
	}
}

type fakeSchedRepo struct{ ledger *fakeLedger }

func (f *fakeSchedRepo) CreateWorkingDay(context.Context, *model.WorkingDay, []*model.Slot) (int, error) {
	return 0, nil
}
func (f *fakeSchedRepo) UpdateWorkingDay(context.Context, *model.WorkingDay, []*model.Slot) (int, error) {
	return 0, nil
}
func (f *fakeSchedRepo) DeleteWorkingDay(context.Context, uuid.UUID) error { return nil }
func (f *fakeSchedRepo) GetWorkingDay(context.Context, uuid.UUID) (*model.WorkingDay, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeSchedRepo) ListWorkingDays(context.Context, uuid.UUID, time.Time, time.Time) ([]*model.WorkingDay, error) {
	return nil, nil
}

func (f *fakeSchedRepo) GetSlot(_ context.Context, id uuid.UUID) (*model.Slot, error) {
	slot, ok := f.ledger.slots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return slot, nil
}

func (f *fakeSchedRepo) ListSlots(context.Context, uuid.UUID, time.Time) ([]*model.Slot, error) {
	return nil, nil
}

func (f *fakeSchedRepo) ListAvailableSlots(_ context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Slot, error) {
	var out []*model.Slot
	for _, slot := range f.ledger.slots {
		if slot.DoctorID == doctorID && slot.Date.Equal(date) && slot.Available {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (f *fakeSchedRepo) CountTakenSlots(context.Context, uuid.UUID, time.Time) (int, error) {
	return 0, nil
}

type fakeAppointmentRepo struct{ ledger *fakeLedger }

func (f *fakeAppointmentRepo) CreateBound(_ context.Context, apt *model.Appointment) error {
	if err := f.ledger.claim(*apt.SlotID); err != nil {
		return err
	}
	if apt.ID == uuid.Nil {
		apt.ID = uuid.New()
	}
	f.ledger.appointments[apt.ID] = apt
	return nil
}

func (f *fakeAppointmentRepo) Rebind(_ context.Context, apt *model.Appointment, oldSlotID, newSlotID uuid.UUID) error {
	if err := f.ledger.claim(newSlotID); err != nil {
		return err
	}
	f.ledger.release(oldSlotID)
	stored := f.ledger.appointments[apt.ID]
	stored.SlotID = &newSlotID
	return nil
}

func (f *fakeAppointmentRepo) DeleteBound(_ context.Context, id uuid.UUID) error {
	apt, ok := f.ledger.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if apt.SlotID != nil {
		f.ledger.release(*apt.SlotID)
	}
	delete(f.ledger.appointments, id)
	return nil
}

func (f *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := f.ledger.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return apt, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	apt, ok := f.ledger.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if status == model.AppointmentStatusCancelled &&
		apt.Status != model.AppointmentStatusCancelled &&
		apt.SlotID != nil {
		f.ledger.release(*apt.SlotID)
	}
	apt.Status = status
	return nil
}

func (f *fakeAppointmentRepo) List(context.Context, *model.AppointmentFilters) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range f.ledger.appointments {
		out = append(out, apt)
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListForDate(context.Context, time.Time, []model.AppointmentStatus) ([]*model.Appointment, error) {
	return nil, nil
}

type fakePatientRepo struct{ patients map[uuid.UUID]*model.Patient }

func (f *fakePatientRepo) Create(_ context.Context, p *model.Patient) error { return nil }
func (f *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}
func (f *fakePatientRepo) Update(context.Context, *model.Patient) error { return nil }
func (f *fakePatientRepo) Delete(context.Context, uuid.UUID) error      { return nil }
func (f *fakePatientRepo) List(context.Context, *model.PatientFilters) ([]*model.Patient, error) {
	return nil, nil
}
func (f *fakePatientRepo) GetByNationalID(context.Context, string) (*model.Patient, error) {
	return nil, repository.ErrNotFound
}
func (f *fakePatientRepo) SearchByName(context.Context, string) ([]*model.Patient, error) {
	return nil, nil
}
func (f *fakePatientRepo) ListInsurers(context.Context, uuid.UUID) ([]*model.Insurer, error) {
	return nil, nil
}
func (f *fakePatientRepo) AddInsurer(context.Context, uuid.UUID, uuid.UUID) error    { return nil }
func (f *fakePatientRepo) RemoveInsurer(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type fakeDoctorRepo struct{ doctors map[uuid.UUID]*model.Doctor }

func (f *fakeDoctorRepo) Create(_ context.Context, d *model.Doctor) error { return nil }
func (f *fakeDoctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return d, nil
}
func (f *fakeDoctorRepo) Update(context.Context, *model.Doctor) error     { return nil }
func (f *fakeDoctorRepo) Delete(context.Context, uuid.UUID) error         { return nil }
func (f *fakeDoctorRepo) List(context.Context) ([]*model.Doctor, error)   { return nil, nil }

type noopInvalidator struct{ calls int }

func (n *noopInvalidator) InvalidateAvailability(context.Context, uuid.UUID, time.Time) {
	n.calls++
}

func setup() (*Service, *fakeLedger, *model.Patient, *model.Doctor, *noopInvalidator) {
	ledger := newFakeLedger()

	patient := &model.Patient{
		Base:      model.Base{ID: uuid.New()},
		FirstName: "Nora",
		LastName:  "Quill",
	}
	doctor := &model.Doctor{
		Base:      model.Base{ID: uuid.New()},
		FirstName: "Eileen",
		LastName:  "Marsh",
	}

	inv := &noopInvalidator{}
	svc := NewService(
		&fakeAppointmentRepo{ledger: ledger},
		&fakeSchedRepo{ledger: ledger},
		&fakePatientRepo{patients: map[uuid.UUID]*model.Patient{patient.ID: patient}},
		&fakeDoctorRepo{doctors: map[uuid.UUID]*model.Doctor{doctor.ID: doctor}},
		nil,
		inv,
		nil,
	)
	return svc, ledger, patient, doctor, inv
}

func TestBook(t *testing.T) {
	svc, ledger, patient, doctor, inv := setup()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	slot := ledger.addSlot(doctor.ID, date, 9)

	apt, err := svc.Book(context.Background(), &model.BookAppointmentRequest{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		SlotID:    slot.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	assert.False(t, slot.Available)
	assert.Equal(t, 1, inv.calls)
}

func TestBookSlotAlreadyTaken(t *testing.T) {
	svc, ledger, patient, doctor, _ := setup()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	slot := ledger.addSlot(doctor.ID, date, 9)
	slot.Available = false

	_, err := svc.Book(context.Background(), &model.BookAppointmentRequest{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		SlotID:    slot.ID,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
	assert.Empty(t, ledger.appointments)
}

func TestBookDoctorMismatch(t *testing.T) {
	svc, ledger, patient, doctor, _ := setup()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	// Slot belongs to a different doctor.
	otherSlot := ledger.addSlot(uuid.New(), date, 9)

	_, err := svc.Book(context.Background(), &model.BookAppointmentRequest{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		SlotID:    otherSlot.ID,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))

	// No mutation: the slot stays free and no appointment exists.
	assert.True(t, otherSlot.Available)
	assert.Empty(t, ledger.appointments)
}

func TestBookUnknownSlot(t *testing.T) {
	svc, _, patient, doctor, _ := setup()

	_, err := svc.Book(context.Background(), &model.BookAppointmentRequest{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		SlotID:    uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestRebind(t *testing.T) {
	svc, ledger, patient, doctor, _ := setup()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	oldSlot := ledger.addSlot(doctor.ID, date, 9)
	newSlot := ledger.addSlot(doctor.ID, date, 10)

	apt, err := svc.Book(context.Background(), &model.BookAppointmentRequest{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		SlotID:    oldSlot.ID,
	})
	require.NoError(t, err)

	moved, err := svc.Rebind(context.Background(), apt.ID, &model.RebindAppointmentRequest{SlotID: newSlot.ID})
	require.NoError(t, err)
	assert.Equal(t, newSlot.ID, *moved.SlotID)
	assert.True(t, oldSlot.Available)
	assert.False(t, newSlot.Available)
}

func TestRebindToTakenSlot(t *testing.T) {
	svc, ledger, patient, doctor, _ := setup()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	oldSlot := ledger.addSlot(doctor.ID, date, 9)
	newSlot := ledger.addSlot(doctor.ID, date, 10)
	newSlot.Available = false

	apt, err := svc.Book(context.Background(), &model.BookAppointmentRequest{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		SlotID:    oldSlot.ID,
	})
	require.NoError(t, err)

	_, err = svc.Rebind(context.Background(), apt.ID, &model.RebindAppointmentRequest{SlotID: newSlot.ID})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))

	// The original binding is untouched.
	assert.False(t, oldSlot.Available)
	assert.Equal(t, oldSlot.ID, *apt.SlotID)
}

func TestRebindDoctorMismatch(t *testing.T) {
	svc, ledger, patient, doctor, _ := setup()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	oldSlot := ledger.addSlot(doctor.ID, date, 9)
	foreignSlot := ledger.addSlot(uuid.New(), date, 10)

	apt, err := svc.Book(context.Background(), &model.BookAppointmentRequest{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		SlotID:    oldSlot.ID,
	})
	require.NoError(t, err)

	_, err = svc.Rebind(context.Background(), apt.ID, &model.RebindAppointmentRequest{SlotID: foreignSlot.ID})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))
	assert.False(t, oldSlot.Available)
	assert.True(t, foreignSlot.Available)
}

func TestRebindSameSlotNoOp(t *testing.T) {
	svc, ledger, patient, doctor, _ := setup()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	slot := ledger.addSlot(doctor.ID, date, 9)

	apt, err := svc.Book(context.Background(), &model.BookAppointmentRequest{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		SlotID:    slot.ID,
	})
	require.NoError(t, err)

	moved, err := svc.Rebind(context.Background(), apt.ID, &model.RebindAppointmentRequest{SlotID: slot.ID})
	require.NoError(t, err)
	assert.Equal(t, slot.ID, *moved.SlotID)
	assert.False(t, slot.Available)
}

func TestCancelReleasesSlot(t *testing.T) {
	svc, ledger, patient, doctor, _ := setup()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	slot := ledger.addSlot(doctor.ID, date, 9)

	apt, err := svc.Book(context.Background(), &model.BookAppointmentRequest{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		SlotID:    slot.ID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), apt.ID))
	assert.True(t, slot.Available)
	assert.Empty(t, ledger.appointments)
}

func TestCancelUnknownAppointment(t *testing.T) {
	svc, _, _, _, _ := setup()

	err := svc.Cancel(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestUpdateStatus(t *testing.T) {
	svc, ledger, patient, doctor, _ := setup()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	slot := ledger.addSlot(doctor.ID, date, 9)

	apt, err := svc.Book(context.Background(), &model.BookAppointmentRequest{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		SlotID:    slot.ID,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, updated.Status)

	_, err = svc.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatus("bogus"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))
}

func TestUpdateStatusCancelledReleasesSlot(t *testing.T) {
	svc, ledger, patient, doctor, inv := setup()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	slot := ledger.addSlot(doctor.ID, date, 9)

	apt, err := svc.Book(context.Background(), &model.BookAppointmentRequest{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		SlotID:    slot.ID,
	})
	require.NoError(t, err)
	require.False(t, slot.Available)

	updated, err := svc.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, updated.Status)
	assert.True(t, slot.Available)

	// Booking + cancellation each drop the cached availability.
	assert.Equal(t, 2, inv.calls)
}

func TestUpdateStatusCancelledIsTerminal(t *testing.T) {
	svc, ledger, patient, doctor, _ := setup()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	slot := ledger.addSlot(doctor.ID, date, 9)

	apt, err := svc.Book(context.Background(), &model.BookAppointmentRequest{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		SlotID:    slot.ID,
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatusCancelled)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatusConfirmed)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))

	// The released slot is untouched by the rejected transition.
	assert.True(t, ledger.slots[slot.ID].Available)
}

func TestStartOfDayKeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)

	// 01:30 local is still the previous calendar day in UTC.
	now := time.Date(2026, 3, 14, 1, 30, 0, 0, loc)
	got := startOfDay(now)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, loc), got)
	assert.Equal(t, 14, got.Day())
}
