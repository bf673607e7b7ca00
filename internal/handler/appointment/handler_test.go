package appointment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medcabinet/api/internal/middleware"
	"github.com/medcabinet/api/internal/model"
	"github.com/medcabinet/api/internal/repository"
	"github.com/medcabinet/api/internal/service/appointment"
)

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
func (f *fakeSchedRepo) ListAvailableSlots(context.Context, uuid.UUID, time.Time) ([]*model.Slot, error) {
	return nil, nil
}
func (f *fakeSchedRepo) CountTakenSlots(context.Context, uuid.UUID, time.Time) (int, error) {
	return 0, nil
}

type fakeAppointmentRepo struct{ ledger *fakeLedger }

func (f *fakeAppointmentRepo) CreateBound(_ context.Context, apt *model.Appointment) error {
	slot, ok := f.ledger.slots[*apt.SlotID]
	if !ok || !slot.Available {
		return repository.ErrSlotTaken
	}
	slot.Available = false
	if apt.ID == uuid.Nil {
		apt.ID = uuid.New()
	}
	f.ledger.appointments[apt.ID] = apt
	return nil
}

func (f *fakeAppointmentRepo) Rebind(_ context.Context, apt *model.Appointment, oldSlotID, newSlotID uuid.UUID) error {
	slot, ok := f.ledger.slots[newSlotID]
	if !ok || !slot.Available {
		return repository.ErrSlotTaken
	}
	slot.Available = false
	if old, ok := f.ledger.slots[oldSlotID]; ok {
		old.Available = true
	}
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
		if slot, ok := f.ledger.slots[*apt.SlotID]; ok {
			slot.Available = true
		}
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
	apt.Status = status
	return nil
}

func (f *fakeAppointmentRepo) List(context.Context, *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) ListForDate(context.Context, time.Time, []model.AppointmentStatus) ([]*model.Appointment, error) {
	return nil, nil
}

type fakePatientRepo struct{ patients map[uuid.UUID]*model.Patient }

func (f *fakePatientRepo) Create(context.Context, *model.Patient) error { return nil }
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

func (f *fakeDoctorRepo) Create(context.Context, *model.Doctor) error { return nil }
func (f *fakeDoctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return d, nil
}
func (f *fakeDoctorRepo) Update(context.Context, *model.Doctor) error   { return nil }
func (f *fakeDoctorRepo) Delete(context.Context, uuid.UUID) error       { return nil }
func (f *fakeDoctorRepo) List(context.Context) ([]*model.Doctor, error) { return nil, nil }

type noopInvalidator struct{}

func (noopInvalidator) InvalidateAvailability(context.Context, uuid.UUID, time.Time) {}

type fixture struct {
	router *gin.Engine
	ledger *fakeLedger
	doctor *model.Doctor

	owner    *model.Patient
	stranger *model.Patient
}

// newFixture wires the handler over in-memory fakes. The user
// callback supplies the authenticated caller, injected into the gin
// context the way the auth middleware does.
func newFixture(t *testing.T, user func(f *fixture) *model.User) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		ledger: newFakeLedger(),
		doctor: &model.Doctor{Base: model.Base{ID: uuid.New()}, LastName: "Marsh"},
		owner:  &model.Patient{Base: model.Base{ID: uuid.New()}, LastName: "Quill"},
		stranger: &model.Patient{
			Base:     model.Base{ID: uuid.New()},
			LastName: "Voss",
		},
	}

	svc := appointment.NewService(
		&fakeAppointmentRepo{ledger: f.ledger},
		&fakeSchedRepo{ledger: f.ledger},
		&fakePatientRepo{patients: map[uuid.UUID]*model.Patient{
			f.owner.ID:    f.owner,
			f.stranger.ID: f.stranger,
		}},
		&fakeDoctorRepo{doctors: map[uuid.UUID]*model.Doctor{f.doctor.ID: f.doctor}},
		nil,
		noopInvalidator{},
		nil,
	)

	f.router = gin.New()
	group := f.router.Group("/api/v1")
	group.Use(func(c *gin.Context) {
		u := user(f)
		c.Set(middleware.ContextUserID, u.ID)
		c.Set(middleware.ContextUserRole, u.Role)
		c.Set(middleware.ContextUser, u)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(group)
	return f
}

func patientUser(p *model.Patient) *model.User {
	id := p.ID
	return &model.User{
		Base:      model.Base{ID: uuid.New()},
		Role:      model.RolePatient,
		PatientID: &id,
	}
}

func (f *fixture) book(t *testing.T, patient *model.Patient, hour int) *model.Appointment {
	t.Helper()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	slot := f.ledger.addSlot(f.doctor.ID, date, hour)
	slotID := slot.ID
	apt := &model.Appointment{
		Base:      model.Base{ID: uuid.New()},
		PatientID: patient.ID,
		DoctorID:  f.doctor.ID,
		SlotID:    &slotID,
		Status:    model.AppointmentStatusScheduled,
	}
	slot.Available = false
	f.ledger.appointments[apt.ID] = apt
	return apt
}

func (f *fixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestPatientCannotCancelOthersAppointment(t *testing.T) {
	f := newFixture(t, func(f *fixture) *model.User { return patientUser(f.stranger) })
	apt := f.book(t, f.owner, 9)

	w := f.do(http.MethodDelete, "/api/v1/appointments/"+apt.ID.String(), nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	_, exists := f.ledger.appointments[apt.ID]
	assert.True(t, exists)
	assert.False(t, f.ledger.slots[*apt.SlotID].Available)
}

func TestPatientCannotRebindOthersAppointment(t *testing.T) {
	f := newFixture(t, func(f *fixture) *model.User { return patientUser(f.stranger) })
	apt := f.book(t, f.owner, 9)
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	free := f.ledger.addSlot(f.doctor.ID, date, 10)

	w := f.do(http.MethodPut, "/api/v1/appointments/"+apt.ID.String()+"/slot",
		model.RebindAppointmentRequest{SlotID: free.ID})

	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NotNil(t, f.ledger.appointments[apt.ID].SlotID)
	assert.NotEqual(t, free.ID, *f.ledger.appointments[apt.ID].SlotID)
	assert.True(t, free.Available)
}

func TestPatientCannotReadOthersAppointment(t *testing.T) {
	f := newFixture(t, func(f *fixture) *model.User { return patientUser(f.stranger) })
	apt := f.book(t, f.owner, 9)

	w := f.do(http.MethodGet, "/api/v1/appointments/"+apt.ID.String(), nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPatientCanCancelOwnAppointment(t *testing.T) {
	f := newFixture(t, func(f *fixture) *model.User { return patientUser(f.owner) })
	apt := f.book(t, f.owner, 9)
	slotID := *apt.SlotID

	w := f.do(http.MethodDelete, "/api/v1/appointments/"+apt.ID.String(), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	_, exists := f.ledger.appointments[apt.ID]
	assert.False(t, exists)
	assert.True(t, f.ledger.slots[slotID].Available)
}

func TestStaffCanCancelAnyAppointment(t *testing.T) {
	f := newFixture(t, func(f *fixture) *model.User {
		return &model.User{Base: model.Base{ID: uuid.New()}, Role: model.RoleReceptionist}
	})
	apt := f.book(t, f.owner, 9)

	w := f.do(http.MethodDelete, "/api/v1/appointments/"+apt.ID.String(), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	_, exists := f.ledger.appointments[apt.ID]
	assert.False(t, exists)
}
