package model

import (
	"time"

	"github.com/google/uuid"
)

type Invoice struct {
	Base
	ConsultationID uuid.UUID `db:"consultation_id" json:"consultation_id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	Date           time.Time `db:"date" json:"date"`
	Type           string    `db:"type" json:"type"`
	Amount         float64   `db:"amount" json:"amount"`
}

// InvoiceLine is one billed item on the invoice detail view.
type InvoiceLine struct {
	Label     string  `json:"label"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

type InvoiceDetail struct {
	Invoice *Invoice      `json:"invoice"`
	Lines   []InvoiceLine `json:"lines"`
}

type CreateInvoiceRequest struct {
	ConsultationID uuid.UUID `json:"consultation_id" binding:"required"`
	Type           string    `json:"type" binding:"required"`
	Date           string    `json:"date"`
}
