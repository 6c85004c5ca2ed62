package model

import (
	"time"
)

type Patient struct {
	Base
	FirstName        string    `db:"first_name" json:"first_name"`
	LastName         string    `db:"last_name" json:"last_name"`
	DateOfBirth      time.Time `db:"date_of_birth" json:"date_of_birth"`
	Gender           string    `db:"gender" json:"gender,omitempty"`
	Phone            string    `db:"phone" json:"phone,omitempty"`
	Email            string    `db:"email" json:"email,omitempty"`
	Address          string    `db:"address" json:"address,omitempty"`
	BloodType        string    `db:"blood_type" json:"blood_type,omitempty"`
	Allergies        string    `db:"allergies" json:"allergies,omitempty"`
	EmergencyContact string    `db:"emergency_contact" json:"emergency_contact,omitempty"`
}

// PatientRequest is used for both create and full update.
type PatientRequest struct {
	FirstName        string `json:"first_name" validate:"required,max=100"`
	LastName         string `json:"last_name" validate:"required,max=100"`
	DateOfBirth      string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Gender           string `json:"gender" validate:"omitempty,oneof=male female other"`
	Phone            string `json:"phone" validate:"max=30"`
	Email            string `json:"email" validate:"omitempty,email"`
	Address          string `json:"address"`
	BloodType        string `json:"blood_type" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Allergies        string `json:"allergies"`
	EmergencyContact string `json:"emergency_contact"`
}

type PatientFilters struct {
	Query     string `form:"q"`
	Gender    string `form:"gender" validate:"omitempty,oneof=male female other"`
	BloodType string `form:"blood_type"`
}
