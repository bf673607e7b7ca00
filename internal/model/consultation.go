package model

import (
	"time"

	"github.com/google/uuid"
)

type Consultation struct {
	Base
	AppointmentID         uuid.UUID  `db:"appointment_id" json:"appointment_id"`
	DoctorID              uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	Date                  time.Time  `db:"date" json:"date"`
	Diagnosis             string     `db:"diagnosis" json:"diagnosis"`
	Price                 float64    `db:"price" json:"price"`
	InitialConsultationID *uuid.UUID `db:"initial_consultation_id" json:"initial_consultation_id,omitempty"`
}

// MedicalAct is a catalog entry for a billable procedure.
type MedicalAct struct {
	Base
	Name  string  `db:"name" json:"name"`
	Price float64 `db:"price" json:"price"`
}

// ConsultationAct records one act performed during a consultation.
// AppliedPrice defaults to the catalog price at creation time.
type ConsultationAct struct {
	Base
	ConsultationID uuid.UUID `db:"consultation_id" json:"consultation_id"`
	ActID          uuid.UUID `db:"act_id" json:"act_id"`
	Quantity       int       `db:"quantity" json:"quantity"`
	AppliedPrice   float64   `db:"applied_price" json:"applied_price"`
}

type CreateConsultationRequest struct {
	AppointmentID         uuid.UUID  `json:"appointment_id" binding:"required"`
	DoctorID              uuid.UUID  `json:"doctor_id" binding:"required"`
	Date                  string     `json:"date" binding:"required"`
	Diagnosis             string     `json:"diagnosis" binding:"required"`
	Price                 float64    `json:"price" binding:"required,gt=0"`
	InitialConsultationID *uuid.UUID `json:"initial_consultation_id"`
}

type AddConsultationActRequest struct {
	ActID        uuid.UUID `json:"act_id" binding:"required"`
	Quantity     int       `json:"quantity" binding:"omitempty,gt=0"`
	AppliedPrice *float64  `json:"applied_price" binding:"omitempty,gt=0"`
}

type CreateMedicalActRequest struct {
	Name  string  `json:"name" binding:"required"`
	Price float64 `json:"price" binding:"required,gt=0"`
}
