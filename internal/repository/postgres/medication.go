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

const medicationSelect = `
		SELECT id, patient_id, doctor_id, name, dosage, frequency, instructions,
			   start_date, end_date, status, created_at, updated_at
		FROM medications`

func (r *medicationRepository) Create(ctx context.Context, medication *model.Medication) error {
	query := `
		INSERT INTO medications (
			id, patient_id, doctor_id, name, dosage, frequency, instructions,
			start_date, end_date, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	medication.ID = uuid.New()
	medication.CreatedAt = time.Now().UTC()
	medication.UpdatedAt = medication.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		medication.ID,
		medication.PatientID,
		medication.DoctorID,
		medication.Name,
		medication.Dosage,
		medication.Frequency,
		medication.Instructions,
		medication.StartDate,
		medication.EndDate,
		medication.Status,
		medication.CreatedAt,
		medication.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medication: %w", mapError(err, "medication"))
	}
	return nil
}

func (r *medicationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	var medication model.Medication
	if err := r.db.GetContext(ctx, &medication, medicationSelect+" WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to get medication: %w", mapError(err, "medication"))
	}
	return &medication, nil
}

func (r *medicationRepository) Update(ctx context.Context, medication *model.Medication) error {
	query := `
		UPDATE medications
		SET patient_id = $1, doctor_id = $2, name = $3, dosage = $4, frequency = $5,
			instructions = $6, start_date = $7, end_date = $8, status = $9, updated_at = $10
		WHERE id = $11
	`
	medication.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		medication.PatientID,
		medication.DoctorID,
		medication.Name,
		medication.Dosage,
		medication.Frequency,
		medication.Instructions,
		medication.StartDate,
		medication.EndDate,
		medication.Status,
		medication.UpdatedAt,
		medication.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medication: %w", mapError(err, "medication"))
	}
	return checkAffected(result, "medication")
}

func (r *medicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM medications WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete medication: %w", mapDeleteError(err, "medication"))
	}
	return checkAffected(result, "medication")
}

func (r *medicationRepository) List(ctx context.Context, filters *model.MedicationFilters, page pagination.Params) ([]*model.Medication, int, error) {
	if filters == nil {
		filters = &model.MedicationFilters{}
	}
	q := query.New().
		Eq("patient_id", filters.PatientID).
		Eq("doctor_id", filters.DoctorID).
		Eq("status", filters.Status).
		Contains("name", filters.Query)

	countSQL, countArgs := q.Count("SELECT COUNT(*) FROM medications")
	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count medications: %w", err)
	}

	listSQL, args := q.Select(medicationSelect, "start_date DESC, id", page.Limit, page.Offset)
	medications := []*model.Medication{}
	if err := r.db.SelectContext(ctx, &medications, listSQL, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list medications: %w", err)
	}
	return medications, total, nil
}
