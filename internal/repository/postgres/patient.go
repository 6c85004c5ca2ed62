package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/pkg/pagination"
	"github.com/jwalitptl/hospital-api/pkg/query"
)

const patientSelect = `
		SELECT id, first_name, last_name, date_of_birth, gender, phone, email,
			   address, blood_type, allergies, emergency_contact,
			   created_at, updated_at
		FROM patients`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, first_name, last_name, date_of_birth, gender, phone, email,
			address, blood_type, allergies, emergency_contact,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	patient.ID = uuid.New()
	patient.CreatedAt = time.Now().UTC()
	patient.UpdatedAt = patient.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.FirstName,
		patient.LastName,
		patient.DateOfBirth,
		patient.Gender,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.BloodType,
		patient.Allergies,
		patient.EmergencyContact,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", mapError(err, "patient"))
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, patientSelect+" WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", mapError(err, "patient"))
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET first_name = $1, last_name = $2, date_of_birth = $3, gender = $4,
			phone = $5, email = $6, address = $7, blood_type = $8,
			allergies = $9, emergency_contact = $10, updated_at = $11
		WHERE id = $12
	`
	patient.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		patient.FirstName,
		patient.LastName,
		patient.DateOfBirth,
		patient.Gender,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.BloodType,
		patient.Allergies,
		patient.EmergencyContact,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", mapError(err, "patient"))
	}
	return checkAffected(result, "patient")
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM patients WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", mapDeleteError(err, "patient"))
	}
	return checkAffected(result, "patient")
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters, page pagination.Params) ([]*model.Patient, int, error) {
	if filters == nil {
		filters = &model.PatientFilters{}
	}
	q := query.New().
		Contains("first_name || ' ' || last_name", filters.Query).
		Eq("gender", filters.Gender).
		Eq("blood_type", filters.BloodType)

	countSQL, countArgs := q.Count("SELECT COUNT(*) FROM patients")
	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	listSQL, args := q.Select(patientSelect, "last_name, first_name, id", page.Limit, page.Offset)
	patients := []*model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, listSQL, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, total, nil
}
