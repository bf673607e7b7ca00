package model

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	Base
	FirstName     string     `db:"first_name" json:"first_name"`
	LastName      string     `db:"last_name" json:"last_name"`
	Gender        string     `db:"gender" json:"gender"`
	NationalID    string     `db:"national_id" json:"national_id"`
	Address       string     `db:"address" json:"address"`
	DateOfBirth   time.Time  `db:"date_of_birth" json:"date_of_birth"`
	Phone         string     `db:"phone" json:"phone"`
	Email         *string    `db:"email" json:"email,omitempty"`
	MaritalStatus string     `db:"marital_status" json:"marital_status"`
	RegisteredBy  *uuid.UUID `db:"registered_by" json:"registered_by,omitempty"`
}

type CreatePatientRequest struct {
	FirstName     string `json:"first_name" binding:"required"`
	LastName      string `json:"last_name" binding:"required"`
	Gender        string `json:"gender" binding:"required,oneof=male female other"`
	NationalID    string `json:"national_id" binding:"required"`
	Address       string `json:"address"`
	DateOfBirth   string `json:"date_of_birth" binding:"required"`
	Phone         string `json:"phone"`
	Email         string `json:"email" binding:"omitempty,email"`
	MaritalStatus string `json:"marital_status"`
}

type UpdatePatientRequest struct {
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	Gender        *string `json:"gender"`
	Address       *string `json:"address"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email" binding:"omitempty,email"`
	MaritalStatus *string `json:"marital_status"`
}

type PatientFilters struct {
	NationalID string
	Name       string
	Pagination
}
