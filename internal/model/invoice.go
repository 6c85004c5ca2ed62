package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceStatusUnpaid    InvoiceStatus = "unpaid"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

type InvoiceItem struct {
	Description    string `json:"description" validate:"required"`
	Quantity       int    `json:"quantity" validate:"gt=0"`
	UnitPriceCents int64  `json:"unit_price_cents" validate:"gte=0"`
}

func (i InvoiceItem) AmountCents() int64 {
	return int64(i.Quantity) * i.UnitPriceCents
}

// InvoiceItems is stored as a JSONB array.
type InvoiceItems []InvoiceItem

func (items InvoiceItems) Value() (driver.Value, error) {
	if items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(items)
}

func (items *InvoiceItems) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*items = InvoiceItems{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for invoice items: %T", src)
	}
	return json.Unmarshal(data, items)
}

// TotalCents sums every line.
func (items InvoiceItems) TotalCents() int64 {
	var total int64
	for _, item := range items {
		total += item.AmountCents()
	}
	return total
}

type Invoice struct {
	Base
	PatientID  uuid.UUID     `db:"patient_id" json:"patient_id"`
	Items      InvoiceItems  `db:"items" json:"items"`
	TotalCents int64         `db:"total_cents" json:"total_cents"`
	Status     InvoiceStatus `db:"status" json:"status"`
	IssuedAt   time.Time     `db:"issued_at" json:"issued_at"`
	DueDate    *time.Time    `db:"due_date" json:"due_date,omitempty"`
	PaidAt     *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
	Notes      string        `db:"notes" json:"notes,omitempty"`
}

type CreateInvoiceRequest struct {
	PatientID uuid.UUID     `json:"patient_id" validate:"required"`
	Items     []InvoiceItem `json:"items" validate:"required,min=1,dive"`
	DueDate   string        `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Notes     string        `json:"notes"`
}

type InvoiceFilters struct {
	PatientID string    `form:"patient_id" validate:"omitempty,uuid"`
	Status    string    `form:"status" validate:"omitempty,oneof=unpaid paid cancelled"`
	From      time.Time `form:"from" time_format:"2006-01-02"`
	To        time.Time `form:"to" time_format:"2006-01-02"`
}
