package model

import (
	"time"

	"github.com/google/uuid"
)

type Examination struct {
	Base
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	ExaminedAt    time.Time  `db:"examined_at" json:"examined_at"`
	Symptoms      string     `db:"symptoms" json:"symptoms,omitempty"`
	Diagnosis     string     `db:"diagnosis" json:"diagnosis"`
	Treatment     string     `db:"treatment" json:"treatment,omitempty"`
	Notes         string     `db:"notes" json:"notes,omitempty"`
}

type ExaminationRequest struct {
	PatientID     uuid.UUID  `json:"patient_id" validate:"required"`
	DoctorID      uuid.UUID  `json:"doctor_id" validate:"required"`
	AppointmentID *uuid.UUID `json:"appointment_id"`
	ExaminedAt    *time.Time `json:"examined_at"`
	Symptoms      string     `json:"symptoms"`
	Diagnosis     string     `json:"diagnosis" validate:"required"`
	Treatment     string     `json:"treatment"`
	Notes         string     `json:"notes"`
}

type ExaminationFilters struct {
	PatientID string    `form:"patient_id" validate:"omitempty,uuid"`
	DoctorID  string    `form:"doctor_id" validate:"omitempty,uuid"`
	From      time.Time `form:"from" time_format:"2006-01-02"`
	To        time.Time `form:"to" time_format:"2006-01-02"`
	Query     string    `form:"q"`
}
