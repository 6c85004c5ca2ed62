package model

import (
	"github.com/google/uuid"
)

type Doctor struct {
	Base
	UserID         *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	Specialization string     `db:"specialization" json:"specialization"`
	Department     string     `db:"department" json:"department,omitempty"`
	Phone          string     `db:"phone" json:"phone,omitempty"`
	Email          string     `db:"email" json:"email,omitempty"`
	LicenseNumber  string     `db:"license_number" json:"license_number"`
}

type DoctorRequest struct {
	UserID         *uuid.UUID `json:"user_id"`
	FirstName      string     `json:"first_name" validate:"required,max=100"`
	LastName       string     `json:"last_name" validate:"required,max=100"`
	Specialization string     `json:"specialization" validate:"required"`
	Department     string     `json:"department"`
	Phone          string     `json:"phone" validate:"max=30"`
	Email          string     `json:"email" validate:"omitempty,email"`
	LicenseNumber  string     `json:"license_number" validate:"required"`
}

type DoctorFilters struct {
	Query          string `form:"q"`
	Specialization string `form:"specialization"`
	Department     string `form:"department"`
}
