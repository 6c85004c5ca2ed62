package model

import (
	"time"

	"github.com/google/uuid"
)

type MedicationStatus string

const (
	MedicationStatusActive       MedicationStatus = "active"
	MedicationStatusCompleted    MedicationStatus = "completed"
	MedicationStatusDiscontinued MedicationStatus = "discontinued"
)

type Medication struct {
	Base
	PatientID    uuid.UUID        `db:"patient_id" json:"patient_id"`
	DoctorID     uuid.UUID        `db:"doctor_id" json:"doctor_id"`
	Name         string           `db:"name" json:"name"`
	Dosage       string           `db:"dosage" json:"dosage"`
	Frequency    string           `db:"frequency" json:"frequency"`
	Instructions string           `db:"instructions" json:"instructions,omitempty"`
	StartDate    time.Time        `db:"start_date" json:"start_date"`
	EndDate      *time.Time       `db:"end_date" json:"end_date,omitempty"`
	Status       MedicationStatus `db:"status" json:"status"`
}

type MedicationRequest struct {
	PatientID    uuid.UUID        `json:"patient_id" validate:"required"`
	DoctorID     uuid.UUID        `json:"doctor_id" validate:"required"`
	Name         string           `json:"name" validate:"required"`
	Dosage       string           `json:"dosage" validate:"required"`
	Frequency    string           `json:"frequency" validate:"required"`
	Instructions string           `json:"instructions"`
	StartDate    string           `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string           `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Status       MedicationStatus `json:"status" validate:"omitempty,oneof=active completed discontinued"`
}

type MedicationFilters struct {
	PatientID string `form:"patient_id" validate:"omitempty,uuid"`
	DoctorID  string `form:"doctor_id" validate:"omitempty,uuid"`
	Status    string `form:"status" validate:"omitempty,oneof=active completed discontinued"`
	Query     string `form:"q"`
}
