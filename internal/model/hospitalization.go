package model

import (
	"time"

	"github.com/google/uuid"
)

type HospitalizationStatus string

const (
	HospitalizationStatusAdmitted   HospitalizationStatus = "admitted"
	HospitalizationStatusDischarged HospitalizationStatus = "discharged"
)

type Hospitalization struct {
	Base
	PatientID      uuid.UUID             `db:"patient_id" json:"patient_id"`
	DoctorID       uuid.UUID             `db:"doctor_id" json:"doctor_id"`
	Ward           string                `db:"ward" json:"ward"`
	Room           string                `db:"room" json:"room,omitempty"`
	Bed            string                `db:"bed" json:"bed,omitempty"`
	Reason         string                `db:"reason" json:"reason"`
	Status         HospitalizationStatus `db:"status" json:"status"`
	AdmittedAt     time.Time             `db:"admitted_at" json:"admitted_at"`
	DischargedAt   *time.Time            `db:"discharged_at" json:"discharged_at,omitempty"`
	DischargeNotes string                `db:"discharge_notes" json:"discharge_notes,omitempty"`
}

type AdmitRequest struct {
	PatientID  uuid.UUID  `json:"patient_id" validate:"required"`
	DoctorID   uuid.UUID  `json:"doctor_id" validate:"required"`
	Ward       string     `json:"ward" validate:"required"`
	Room       string     `json:"room"`
	Bed        string     `json:"bed"`
	Reason     string     `json:"reason" validate:"required"`
	AdmittedAt *time.Time `json:"admitted_at"`
}

type DischargeRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

type HospitalizationFilters struct {
	PatientID string `form:"patient_id" validate:"omitempty,uuid"`
	DoctorID  string `form:"doctor_id" validate:"omitempty,uuid"`
	Status    string `form:"status" validate:"omitempty,oneof=admitted discharged"`
	Ward      string `form:"ward"`
}
