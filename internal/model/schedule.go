package model

import (
	"time"

	"github.com/google/uuid"
)

// Slot is a fixed-duration bookable interval of a doctor's day.
// Uniqueness key is (doctor_id, date, start_time).
type Slot struct {
	Base
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Date      time.Time `db:"date" json:"date"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	Available bool      `db:"available" json:"available"`
}

// WorkingDay is a doctor's declared availability window for one date.
// Creating one generates the slots covering its span.
type WorkingDay struct {
	Base
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Date      time.Time `db:"date" json:"date"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
}

// RemovalPolicy decides what happens to taken slots when a working
// day is removed.
type RemovalPolicy string

const (
	// RemovalPolicyProtect refuses removal while any slot is booked.
	RemovalPolicyProtect RemovalPolicy = "protect"
	// RemovalPolicyForce deletes all slots; bound appointments cascade.
	RemovalPolicyForce RemovalPolicy = "force"
)

type DeclareWorkingDayRequest struct {
	DoctorID  uuid.UUID `json:"doctor_id" binding:"required"`
	Date      string    `json:"date" binding:"required"`
	StartTime string    `json:"start_time" binding:"required"`
	EndTime   string    `json:"end_time" binding:"required"`
}

type UpdateWorkingDayRequest struct {
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// DeclareWorkingDayResponse reports how many slots the declaration
// actually created.
type DeclareWorkingDayResponse struct {
	WorkingDay   *WorkingDay `json:"working_day"`
	SlotsCreated int         `json:"slots_created"`
}
