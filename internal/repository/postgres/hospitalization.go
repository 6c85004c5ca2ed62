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

const hospitalizationSelect = `
		SELECT id, patient_id, doctor_id, ward, room, bed, reason, status,
			   admitted_at, discharged_at, discharge_notes, created_at, updated_at
		FROM hospitalizations`

// Create relies on hospitalizations_active_patient_key to reject a second
// open admission for the same patient.
func (r *hospitalizationRepository) Create(ctx context.Context, stay *model.Hospitalization) error {
	query := `
		INSERT INTO hospitalizations (
			id, patient_id, doctor_id, ward, room, bed, reason, status,
			admitted_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	stay.ID = uuid.New()
	stay.CreatedAt = time.Now().UTC()
	stay.UpdatedAt = stay.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		stay.ID,
		stay.PatientID,
		stay.DoctorID,
		stay.Ward,
		stay.Room,
		stay.Bed,
		stay.Reason,
		stay.Status,
		stay.AdmittedAt,
		stay.CreatedAt,
		stay.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create hospitalization: %w", mapError(err, "hospitalization"))
	}
	return nil
}

func (r *hospitalizationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Hospitalization, error) {
	var stay model.Hospitalization
	if err := r.db.GetContext(ctx, &stay, hospitalizationSelect+" WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to get hospitalization: %w", mapError(err, "hospitalization"))
	}
	return &stay, nil
}

func (r *hospitalizationRepository) Discharge(ctx context.Context, id uuid.UUID, notes string, at time.Time) (bool, error) {
	query := `
		UPDATE hospitalizations
		SET status = $1, discharged_at = $2, discharge_notes = $3, updated_at = $4
		WHERE id = $5 AND status = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		model.HospitalizationStatusDischarged,
		at,
		notes,
		time.Now().UTC(),
		id,
		model.HospitalizationStatusAdmitted,
	)
	if err != nil {
		return false, fmt.Errorf("failed to discharge: %w", mapError(err, "hospitalization"))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *hospitalizationRepository) List(ctx context.Context, filters *model.HospitalizationFilters, page pagination.Params) ([]*model.Hospitalization, int, error) {
	if filters == nil {
		filters = &model.HospitalizationFilters{}
	}
	q := query.New().
		Eq("patient_id", filters.PatientID).
		Eq("doctor_id", filters.DoctorID).
		Eq("status", filters.Status).
		Eq("ward", filters.Ward)

	countSQL, countArgs := q.Count("SELECT COUNT(*) FROM hospitalizations")
	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count hospitalizations: %w", err)
	}

	listSQL, args := q.Select(hospitalizationSelect, "admitted_at DESC, id", page.Limit, page.Offset)
	stays := []*model.Hospitalization{}
	if err := r.db.SelectContext(ctx, &stays, listSQL, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list hospitalizations: %w", err)
	}
	return stays, total, nil
}
