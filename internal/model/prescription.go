package model

import (
	"time"

	"github.com/google/uuid"
)

// Prescription is a medication prescription issued after a
// consultation. Medications are free text, as written by the doctor.
type Prescription struct {
	Base
	ConsultationID uuid.UUID `db:"consultation_id" json:"consultation_id"`
	Date           time.Time `db:"date" json:"date"`
	Medications    string    `db:"medications" json:"medications"`
}

// LabTest is a catalog entry for a prescribable laboratory analysis.
type LabTest struct {
	Base
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`
}

// ImagingExam is a catalog entry for a prescribable radiology exam.
type ImagingExam struct {
	Base
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`
}

// LabTestOrder prescribes a lab test from a consultation.
type LabTestOrder struct {
	Base
	ConsultationID uuid.UUID `db:"consultation_id" json:"consultation_id"`
	LabTestID      uuid.UUID `db:"lab_test_id" json:"lab_test_id"`
	Date           time.Time `db:"date" json:"date"`
}

// ImagingOrder prescribes an imaging exam from a consultation.
type ImagingOrder struct {
	Base
	ConsultationID uuid.UUID `db:"consultation_id" json:"consultation_id"`
	ImagingExamID  uuid.UUID `db:"imaging_exam_id" json:"imaging_exam_id"`
	Date           time.Time `db:"date" json:"date"`
}

type CreatePrescriptionRequest struct {
	ConsultationID uuid.UUID `json:"consultation_id" binding:"required"`
	Date           string    `json:"date"`
	Medications    string    `json:"medications" binding:"required"`
}

type CreateLabTestOrderRequest struct {
	ConsultationID uuid.UUID `json:"consultation_id" binding:"required"`
	LabTestID      uuid.UUID `json:"lab_test_id" binding:"required"`
	Date           string    `json:"date"`
}

type CreateImagingOrderRequest struct {
	ConsultationID uuid.UUID `json:"consultation_id" binding:"required"`
	ImagingExamID  uuid.UUID `json:"imaging_exam_id" binding:"required"`
	Date           string    `json:"date"`
}
