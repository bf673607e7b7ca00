package scheduling

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

type fakeSchedulingRepo struct {
	days  map[uuid.UUID]*model.WorkingDay
	slots map[uuid.UUID]*model.Slot
}

func newFakeSchedulingRepo() *fakeSchedulingRepo {
	return &fakeSchedulingRepo{
		days:  make(map[uuid.UUID]*model.WorkingDay),
		slots: make(map[uuid.UUID]*model.Slot),
	}
}

func (f *fakeSchedulingRepo) insertSlots(slots []*model.Slot) int {
	created := 0
	for _, slot := range slots {
		exists := false
		for _, have := range f.slots {
			if have.DoctorID == slot.DoctorID && have.Date.Equal(slot.Date) && have.StartTime.Equal(slot.StartTime) {
				exists = true
				break
			}
		}
		if !exists {
			f.slots[slot.ID] = slot
			created++
		}
	}
	return created
}

func (f *fakeSchedulingRepo) CreateWorkingDay(_ context.Context, day *model.WorkingDay, slots []*model.Slot) (int, error) {
	if day.ID == uuid.Nil {
		day.ID = uuid.New()
	}
	f.days[day.ID] = day
	return f.insertSlots(slots), nil
}

func (f *fakeSchedulingRepo) UpdateWorkingDay(_ context.Context, day *model.WorkingDay, slots []*model.Slot) (int, error) {
	if _, ok := f.days[day.ID]; !ok {
		return 0, repository.ErrNotFound
	}
	f.days[day.ID] = day
	for id, slot := range f.slots {
		if slot.DoctorID == day.DoctorID && slot.Date.Equal(day.Date) && slot.Available {
			delete(f.slots, id)
		}
	}
	return f.insertSlots(slots), nil
}

func (f *fakeSchedulingRepo) DeleteWorkingDay(_ context.Context, id uuid.UUID) error {
	day, ok := f.days[id]
	if !ok {
		return repository.ErrNotFound
	}
	for slotID, slot := range f.slots {
		if slot.DoctorID == day.DoctorID && slot.Date.Equal(day.Date) {
			delete(f.slots, slotID)
		}
	}
	delete(f.days, id)
	return nil
}

func (f *fakeSchedulingRepo) GetWorkingDay(_ context.Context, id uuid.UUID) (*model.WorkingDay, error) {
	day, ok := f.days[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return day, nil
}

func (f *fakeSchedulingRepo) ListWorkingDays(_ context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.WorkingDay, error) {
	var out []*model.WorkingDay
	for _, day := range f.days {
		if day.DoctorID == doctorID && !day.Date.Before(from) && !day.Date.After(to) {
			out = append(out, day)
		}
	}
	return out, nil
}

func (f *fakeSchedulingRepo) GetSlot(_ context.Context, id uuid.UUID) (*model.Slot, error) {
	slot, ok := f.slots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return slot, nil
}

func (f *fakeSchedulingRepo) ListSlots(_ context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Slot, error) {
	var out []*model.Slot
	for _, slot := range f.slots {
		if slot.DoctorID == doctorID && slot.Date.Equal(date) {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (f *fakeSchedulingRepo) ListAvailableSlots(_ context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Slot, error) {
	var out []*model.Slot
	for _, slot := range f.slots {
		if slot.DoctorID == doctorID && slot.Date.Equal(date) && slot.Available {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (f *fakeSchedulingRepo) CountTakenSlots(_ context.Context, doctorID uuid.UUID, date time.Time) (int, error) {
	n := 0
	for _, slot := range f.slots {
		if slot.DoctorID == doctorID && slot.Date.Equal(date) && !slot.Available {
			n++
		}
	}
	return n, nil
}

type fakeDoctorRepo struct {
	doctors map[uuid.UUID]*model.Doctor
}

func newFakeDoctorRepo(doctors ...*model.Doctor) *fakeDoctorRepo {
	f := &fakeDoctorRepo{doctors: make(map[uuid.UUID]*model.Doctor)}
	for _, d := range doctors {
		f.doctors[d.ID] = d
	}
	return f
}

func (f *fakeDoctorRepo) Create(_ context.Context, d *model.Doctor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	f.doctors[d.ID] = d
	return nil
}

func (f *fakeDoctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return d, nil
}

func (f *fakeDoctorRepo) Update(_ context.Context, d *model.Doctor) error { return nil }
func (f *fakeDoctorRepo) Delete(_ context.Context, id uuid.UUID) error   { return nil }
func (f *fakeDoctorRepo) List(_ context.Context) ([]*model.Doctor, error) {
	var out []*model.Doctor
	for _, d := range f.doctors {
		out = append(out, d)
	}
	return out, nil
}

func testDoctor() *model.Doctor {
	return &model.Doctor{
		Base:      model.Base{ID: uuid.New()},
		FirstName: "Eileen",
		LastName:  "Marsh",
		Specialty: "cardiology",
	}
}

func window(date time.Time, startHour, endHour int) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), startHour, 0, 0, 0, time.UTC)
	end := time.Date(date.Year(), date.Month(), date.Day(), endHour, 0, 0, 0, time.UTC)
	return start, end
}

func TestGenerateSlots(t *testing.T) {
	doctorID := uuid.New()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	t.Run("full window", func(t *testing.T) {
		start, end := window(date, 9, 12)
		slots := GenerateSlots(doctorID, date, start, end, 30*time.Minute)
		require.Len(t, slots, 6)

		// Contiguous, in order, all available.
		for i, slot := range slots {
			assert.Equal(t, start.Add(time.Duration(i)*30*time.Minute), slot.StartTime)
			assert.Equal(t, slot.StartTime.Add(30*time.Minute), slot.EndTime)
			assert.True(t, slot.Available)
			assert.Equal(t, doctorID, slot.DoctorID)
		}
	})

	t.Run("partial remainder dropped", func(t *testing.T) {
		start, _ := window(date, 9, 10)
		end := start.Add(50 * time.Minute)
		slots := GenerateSlots(doctorID, date, start, end, 30*time.Minute)
		require.Len(t, slots, 1)
		assert.Equal(t, start.Add(30*time.Minute), slots[0].EndTime)
	})

	t.Run("window shorter than duration", func(t *testing.T) {
		start, _ := window(date, 9, 10)
		slots := GenerateSlots(doctorID, date, start, start.Add(20*time.Minute), 30*time.Minute)
		assert.Empty(t, slots)
	})

	t.Run("inverted window", func(t *testing.T) {
		start, end := window(date, 12, 9)
		slots := GenerateSlots(doctorID, date, start, end, 30*time.Minute)
		assert.Empty(t, slots)
	})

	t.Run("custom duration", func(t *testing.T) {
		start, end := window(date, 9, 11)
		slots := GenerateSlots(doctorID, date, start, end, 20*time.Minute)
		assert.Len(t, slots, 6)
	})
}

func TestDeclareWorkingDay(t *testing.T) {
	doctor := testDoctor()
	repo := newFakeSchedulingRepo()
	svc := NewService(repo, newFakeDoctorRepo(doctor))

	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	start, end := window(date, 9, 12)

	resp, err := svc.DeclareWorkingDay(context.Background(), doctor.ID, date, start, end)
	require.NoError(t, err)
	assert.Equal(t, 6, resp.SlotsCreated)

	slots, err := svc.ListAvailableSlots(context.Background(), doctor.ID, date)
	require.NoError(t, err)
	assert.Len(t, slots, 6)
}

func TestDeclareWorkingDayUnknownDoctor(t *testing.T) {
	svc := NewService(newFakeSchedulingRepo(), newFakeDoctorRepo())

	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	start, end := window(date, 9, 12)

	_, err := svc.DeclareWorkingDay(context.Background(), uuid.New(), date, start, end)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestDeclareWorkingDayIdempotent(t *testing.T) {
	doctor := testDoctor()
	repo := newFakeSchedulingRepo()
	svc := NewService(repo, newFakeDoctorRepo(doctor))

	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	start, end := window(date, 9, 12)

	first, err := svc.DeclareWorkingDay(context.Background(), doctor.ID, date, start, end)
	require.NoError(t, err)
	assert.Equal(t, 6, first.SlotsCreated)

	// Re-declaring the same window creates nothing new.
	second, err := svc.DeclareWorkingDay(context.Background(), doctor.ID, date, start, end)
	require.NoError(t, err)
	assert.Equal(t, 0, second.SlotsCreated)

	slots, err := svc.ListSlots(context.Background(), doctor.ID, date)
	require.NoError(t, err)
	assert.Len(t, slots, 6)
}

func TestUpdateWorkingDayPreservesTakenSlots(t *testing.T) {
	doctor := testDoctor()
	repo := newFakeSchedulingRepo()
	svc := NewService(repo, newFakeDoctorRepo(doctor))

	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	start, end := window(date, 9, 12)

	resp, err := svc.DeclareWorkingDay(context.Background(), doctor.ID, date, start, end)
	require.NoError(t, err)

	// Book the 09:00 slot out of band.
	for _, slot := range repo.slots {
		if slot.StartTime.Equal(start) {
			slot.Available = false
		}
	}

	// Shrink the window so it no longer covers the booked slot.
	newStart, newEnd := window(date, 10, 12)
	_, err = svc.UpdateWorkingDay(context.Background(), resp.WorkingDay.ID, newStart, newEnd)
	require.NoError(t, err)

	slots, err := svc.ListSlots(context.Background(), doctor.ID, date)
	require.NoError(t, err)
	assert.Len(t, slots, 5)

	taken, err := repo.CountTakenSlots(context.Background(), doctor.ID, date)
	require.NoError(t, err)
	assert.Equal(t, 1, taken)
}

func TestRemoveWorkingDayProtectPolicy(t *testing.T) {
	doctor := testDoctor()
	repo := newFakeSchedulingRepo()
	svc := NewService(repo, newFakeDoctorRepo(doctor), WithRemovalPolicy(model.RemovalPolicyProtect))

	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	start, end := window(date, 9, 12)

	resp, err := svc.DeclareWorkingDay(context.Background(), doctor.ID, date, start, end)
	require.NoError(t, err)

	for _, slot := range repo.slots {
		slot.Available = false
		break
	}

	err = svc.RemoveWorkingDay(context.Background(), resp.WorkingDay.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))

	// The day and its slots survive the refused removal.
	_, err = svc.GetWorkingDay(context.Background(), resp.WorkingDay.ID)
	require.NoError(t, err)
}

func TestRemoveWorkingDayForcePolicy(t *testing.T) {
	doctor := testDoctor()
	repo := newFakeSchedulingRepo()
	svc := NewService(repo, newFakeDoctorRepo(doctor), WithRemovalPolicy(model.RemovalPolicyForce))

	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	start, end := window(date, 9, 12)

	resp, err := svc.DeclareWorkingDay(context.Background(), doctor.ID, date, start, end)
	require.NoError(t, err)

	for _, slot := range repo.slots {
		slot.Available = false
		break
	}

	require.NoError(t, svc.RemoveWorkingDay(context.Background(), resp.WorkingDay.ID))

	slots, err := svc.ListSlots(context.Background(), doctor.ID, date)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestRemoveWorkingDayFreeDay(t *testing.T) {
	doctor := testDoctor()
	repo := newFakeSchedulingRepo()
	svc := NewService(repo, newFakeDoctorRepo(doctor))

	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	start, end := window(date, 9, 12)

	resp, err := svc.DeclareWorkingDay(context.Background(), doctor.ID, date, start, end)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveWorkingDay(context.Background(), resp.WorkingDay.ID))

	_, err = svc.GetWorkingDay(context.Background(), resp.WorkingDay.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestWithSlotDurationOption(t *testing.T) {
	doctor := testDoctor()
	repo := newFakeSchedulingRepo()
	svc := NewService(repo, newFakeDoctorRepo(doctor), WithSlotDuration(20*time.Minute))

	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	start, end := window(date, 9, 10)

	resp, err := svc.DeclareWorkingDay(context.Background(), doctor.ID, date, start, end)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.SlotsCreated)
}
