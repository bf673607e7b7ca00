package model

import "github.com/google/uuid"

// Insurer is a health-insurance organization patients can be
// affiliated with.
type Insurer struct {
	Base
	Name string `db:"name" json:"name"`
	Type string `db:"type" json:"type"`
}

type PatientInsurer struct {
	Base
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	InsurerID uuid.UUID `db:"insurer_id" json:"insurer_id"`
}

type CreateInsurerRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required"`
}
