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

const examinationSelect = `
		SELECT id, patient_id, doctor_id, appointment_id, examined_at,
			   symptoms, diagnosis, treatment, notes, created_at, updated_at
		FROM examinations`

func (r *examinationRepository) Create(ctx context.Context, exam *model.Examination) error {
	query := `
		INSERT INTO examinations (
			id, patient_id, doctor_id, appointment_id, examined_at,
			symptoms, diagnosis, treatment, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	exam.ID = uuid.New()
	exam.CreatedAt = time.Now().UTC()
	exam.UpdatedAt = exam.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		exam.ID,
		exam.PatientID,
		exam.DoctorID,
		exam.AppointmentID,
		exam.ExaminedAt,
		exam.Symptoms,
		exam.Diagnosis,
		exam.Treatment,
		exam.Notes,
		exam.CreatedAt,
		exam.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create examination: %w", mapError(err, "examination"))
	}
	return nil
}

func (r *examinationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Examination, error) {
	var exam model.Examination
	if err := r.db.GetContext(ctx, &exam, examinationSelect+" WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to get examination: %w", mapError(err, "examination"))
	}
	return &exam, nil
}

func (r *examinationRepository) Update(ctx context.Context, exam *model.Examination) error {
	query := `
		UPDATE examinations
		SET patient_id = $1, doctor_id = $2, appointment_id = $3, examined_at = $4,
			symptoms = $5, diagnosis = $6, treatment = $7, notes = $8, updated_at = $9
		WHERE id = $10
	`
	exam.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		exam.PatientID,
		exam.DoctorID,
		exam.AppointmentID,
		exam.ExaminedAt,
		exam.Symptoms,
		exam.Diagnosis,
		exam.Treatment,
		exam.Notes,
		exam.UpdatedAt,
		exam.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update examination: %w", mapError(err, "examination"))
	}
	return checkAffected(result, "examination")
}

func (r *examinationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM examinations WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete examination: %w", mapDeleteError(err, "examination"))
	}
	return checkAffected(result, "examination")
}

func (r *examinationRepository) List(ctx context.Context, filters *model.ExaminationFilters, page pagination.Params) ([]*model.Examination, int, error) {
	if filters == nil {
		filters = &model.ExaminationFilters{}
	}
	q := query.New().
		Eq("patient_id", filters.PatientID).
		Eq("doctor_id", filters.DoctorID).
		Gte("examined_at", filters.From).
		Lt("examined_at", nextDay(filters.To)).
		Contains("diagnosis", filters.Query)

	countSQL, countArgs := q.Count("SELECT COUNT(*) FROM examinations")
	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count examinations: %w", err)
	}

	listSQL, args := q.Select(examinationSelect, "examined_at DESC, id", page.Limit, page.Offset)
	exams := []*model.Examination{}
	if err := r.db.SelectContext(ctx, &exams, listSQL, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list examinations: %w", err)
	}
	return exams, total, nil
}
