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

const doctorSelect = `
		SELECT id, user_id, first_name, last_name, specialization, department,
			   phone, email, license_number, created_at, updated_at
		FROM doctors`

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (
			id, user_id, first_name, last_name, specialization, department,
			phone, email, license_number, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	doctor.ID = uuid.New()
	doctor.CreatedAt = time.Now().UTC()
	doctor.UpdatedAt = doctor.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		doctor.ID,
		doctor.UserID,
		doctor.FirstName,
		doctor.LastName,
		doctor.Specialization,
		doctor.Department,
		doctor.Phone,
		doctor.Email,
		doctor.LicenseNumber,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", mapError(err, "doctor"))
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, doctorSelect+" WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", mapError(err, "doctor"))
	}
	return &doctor, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	query := `
		UPDATE doctors
		SET user_id = $1, first_name = $2, last_name = $3, specialization = $4,
			department = $5, phone = $6, email = $7, license_number = $8,
			updated_at = $9
		WHERE id = $10
	`
	doctor.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		doctor.UserID,
		doctor.FirstName,
		doctor.LastName,
		doctor.Specialization,
		doctor.Department,
		doctor.Phone,
		doctor.Email,
		doctor.LicenseNumber,
		doctor.UpdatedAt,
		doctor.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update doctor: %w", mapError(err, "doctor"))
	}
	return checkAffected(result, "doctor")
}

func (r *doctorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM doctors WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete doctor: %w", mapDeleteError(err, "doctor"))
	}
	return checkAffected(result, "doctor")
}

func (r *doctorRepository) List(ctx context.Context, filters *model.DoctorFilters, page pagination.Params) ([]*model.Doctor, int, error) {
	if filters == nil {
		filters = &model.DoctorFilters{}
	}
	q := query.New().
		Contains("first_name || ' ' || last_name", filters.Query).
		Eq("specialization", filters.Specialization).
		Eq("department", filters.Department)

	countSQL, countArgs := q.Count("SELECT COUNT(*) FROM doctors")
	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count doctors: %w", err)
	}

	listSQL, args := q.Select(doctorSelect, "last_name, first_name, id", page.Limit, page.Offset)
	doctors := []*model.Doctor{}
	if err := r.db.SelectContext(ctx, &doctors, listSQL, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, total, nil
}
