package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medcabinet/api/internal/model"
)

// Sentinel errors shared by all repository implementations.
var (
	ErrNotFound = errors.New("record not found")
	// ErrSlotTaken is returned when a compare-and-swap claim on a
	// slot's available flag loses to a concurrent booking.
	ErrSlotTaken = errors.New("slot is no longer available")
	ErrDuplicate = errors.New("record already exists")
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
		GetByNationalID(ctx context.Context, nationalID string) (*model.Patient, error)
		SearchByName(ctx context.Context, name string) ([]*model.Patient, error)
		ListInsurers(ctx context.Context, patientID uuid.UUID) ([]*model.Insurer, error)
		AddInsurer(ctx context.Context, patientID, insurerID uuid.UUID) error
		RemoveInsurer(ctx context.Context, patientID, insurerID uuid.UUID) error
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Doctor, error)
	}

	// SchedulingRepository owns working days and the slot ledger.
	SchedulingRepository interface {
		// CreateWorkingDay inserts the working day and its generated
		// slots in one transaction. Slot insertion is idempotent on
		// (doctor_id, date, start_time); it returns the number of
		// slots actually created.
		CreateWorkingDay(ctx context.Context, day *model.WorkingDay, slots []*model.Slot) (int, error)
		// UpdateWorkingDay updates the window, removes available-only
		// slots for the day and inserts the regenerated ones, in one
		// transaction. Taken slots are preserved.
		UpdateWorkingDay(ctx context.Context, day *model.WorkingDay, slots []*model.Slot) (int, error)
		// DeleteWorkingDay removes the working day and every slot for
		// its (doctor, date); bound appointments cascade at the
		// database level.
		DeleteWorkingDay(ctx context.Context, id uuid.UUID) error
		GetWorkingDay(ctx context.Context, id uuid.UUID) (*model.WorkingDay, error)
		ListWorkingDays(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*model.WorkingDay, error)

		GetSlot(ctx context.Context, id uuid.UUID) (*model.Slot, error)
		ListSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Slot, error)
		ListAvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Slot, error)
		CountTakenSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) (int, error)
	}

	// AppointmentRepository persists appointments together with the
	// slot-availability flips they imply. Each mutating method is a
	// single transaction.
	AppointmentRepository interface {
		// CreateBound claims the slot (compare-and-swap on the
		// available flag, ErrSlotTaken on loss) and inserts the
		// appointment.
		CreateBound(ctx context.Context, appointment *model.Appointment) error
		// Rebind releases the old slot, claims the new one and
		// updates the appointment row.
		Rebind(ctx context.Context, appointment *model.Appointment, oldSlotID, newSlotID uuid.UUID) error
		// DeleteBound deletes the appointment and releases its slot.
		DeleteBound(ctx context.Context, id uuid.UUID) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		// UpdateStatus changes the status; a transition into
		// cancelled releases the bound slot in the same transaction.
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListForDate(ctx context.Context, date time.Time, statuses []model.AppointmentStatus) ([]*model.Appointment, error)
	}

	ConsultationRepository interface {
		Create(ctx context.Context, consultation *model.Consultation) error
		Get(ctx context.Context, id uuid.UUID) (*model.Consultation, error)
		Update(ctx context.Context, consultation *model.Consultation) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Consultation, error)
		CreateAct(ctx context.Context, act *model.MedicalAct) error
		GetAct(ctx context.Context, id uuid.UUID) (*model.MedicalAct, error)
		ListActs(ctx context.Context) ([]*model.MedicalAct, error)
		AddConsultationAct(ctx context.Context, ca *model.ConsultationAct) error
		ListConsultationActs(ctx context.Context, consultationID uuid.UUID) ([]*model.ConsultationAct, error)
	}

	InvoiceRepository interface {
		Create(ctx context.Context, invoice *model.Invoice) error
		Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
		GetByConsultation(ctx context.Context, consultationID uuid.UUID) (*model.Invoice, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Invoice, error)
	}

	RecordRepository interface {
		Create(ctx context.Context, record *model.MedicalRecord) error
		GetByPatient(ctx context.Context, patientID uuid.UUID) (*model.MedicalRecord, error)
		AddDisease(ctx context.Context, entry *model.RecordDisease) error
		AddVaccine(ctx context.Context, entry *model.RecordVaccine) error
		AddAllergy(ctx context.Context, entry *model.RecordAllergy) error
		ListDiseases(ctx context.Context, recordID uuid.UUID) ([]*model.RecordDisease, error)
		ListVaccines(ctx context.Context, recordID uuid.UUID) ([]*model.RecordVaccine, error)
		ListAllergies(ctx context.Context, recordID uuid.UUID) ([]*model.RecordAllergy, error)
		CreateDisease(ctx context.Context, disease *model.Disease) error
		CreateVaccine(ctx context.Context, vaccine *model.Vaccine) error
		CreateAllergy(ctx context.Context, allergy *model.Allergy) error
		ListDiseaseCatalog(ctx context.Context) ([]*model.Disease, error)
		ListVaccineCatalog(ctx context.Context) ([]*model.Vaccine, error)
		ListAllergyCatalog(ctx context.Context) ([]*model.Allergy, error)
	}

	PrescriptionRepository interface {
		Create(ctx context.Context, prescription *model.Prescription) error
		ListByConsultation(ctx context.Context, consultationID uuid.UUID) ([]*model.Prescription, error)
		CreateLabTest(ctx context.Context, test *model.LabTest) error
		ListLabTests(ctx context.Context) ([]*model.LabTest, error)
		CreateLabTestOrder(ctx context.Context, order *model.LabTestOrder) error
		ListLabTestOrders(ctx context.Context, consultationID uuid.UUID) ([]*model.LabTestOrder, error)
		CreateImagingExam(ctx context.Context, exam *model.ImagingExam) error
		ListImagingExams(ctx context.Context) ([]*model.ImagingExam, error)
		CreateImagingOrder(ctx context.Context, order *model.ImagingOrder) error
		ListImagingOrders(ctx context.Context, consultationID uuid.UUID) ([]*model.ImagingOrder, error)
	}

	InsurerRepository interface {
		Create(ctx context.Context, insurer *model.Insurer) error
		Get(ctx context.Context, id uuid.UUID) (*model.Insurer, error)
		List(ctx context.Context) ([]*model.Insurer, error)
		Delete(ctx context.Context, id uuid.UUID) error
	}
)
