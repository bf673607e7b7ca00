package model

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord is the per-patient file holding history entries,
// one per patient.
type MedicalRecord struct {
	Base
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
}

type Disease struct {
	Base
	Name string `db:"name" json:"name"`
}

type Vaccine struct {
	Base
	Name            string     `db:"name" json:"name"`
	Description     string     `db:"description" json:"description,omitempty"`
	RecommendedDate *time.Time `db:"recommended_date" json:"recommended_date,omitempty"`
}

type Allergy struct {
	Base
	Name string `db:"name" json:"name"`
}

// RecordDisease links a disease to a record with patient-specific
// duration notes.
type RecordDisease struct {
	Base
	RecordID  uuid.UUID `db:"record_id" json:"record_id"`
	DiseaseID uuid.UUID `db:"disease_id" json:"disease_id"`
	Duration  *string   `db:"duration" json:"duration,omitempty"`
}

type RecordVaccine struct {
	Base
	RecordID       uuid.UUID  `db:"record_id" json:"record_id"`
	VaccineID      uuid.UUID  `db:"vaccine_id" json:"vaccine_id"`
	AdministeredAt *time.Time `db:"administered_at" json:"administered_at,omitempty"`
}

type RecordAllergy struct {
	Base
	RecordID    uuid.UUID `db:"record_id" json:"record_id"`
	AllergyID   uuid.UUID `db:"allergy_id" json:"allergy_id"`
	Precautions *string   `db:"precautions" json:"precautions,omitempty"`
}

// RecordDetail aggregates a record with its history entries.
type RecordDetail struct {
	Record    *MedicalRecord   `json:"record"`
	Diseases  []*RecordDisease `json:"diseases"`
	Vaccines  []*RecordVaccine `json:"vaccines"`
	Allergies []*RecordAllergy `json:"allergies"`
}

type AddRecordDiseaseRequest struct {
	DiseaseID uuid.UUID `json:"disease_id" binding:"required"`
	Duration  *string   `json:"duration"`
}

type AddRecordVaccineRequest struct {
	VaccineID      uuid.UUID `json:"vaccine_id" binding:"required"`
	AdministeredAt *string   `json:"administered_at"`
}

type AddRecordAllergyRequest struct {
	AllergyID   uuid.UUID `json:"allergy_id" binding:"required"`
	Precautions *string   `json:"precautions"`
}
