package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/pkg/pagination"
	"github.com/jwalitptl/hospital-api/pkg/query"
)

const appointmentSelect = `
		SELECT a.id, a.patient_id, a.doctor_id, a.scheduled_at, a.duration_minutes,
			   a.status, a.reason, a.notes, a.created_at, a.updated_at,
			   p.first_name || ' ' || p.last_name AS patient_name,
			   d.first_name || ' ' || d.last_name AS doctor_name
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		JOIN doctors d ON d.id = a.doctor_id`

// Create relies on appointments_doctor_slot_key to reject a second live
// booking of the same doctor slot.
func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment, event *model.OutboxEvent) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, scheduled_at, duration_minutes,
			status, reason, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	appointment.CreatedAt = time.Now().UTC()
	appointment.UpdatedAt = appointment.CreatedAt

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, query,
			appointment.ID,
			appointment.PatientID,
			appointment.DoctorID,
			appointment.ScheduledAt,
			appointment.DurationMinutes,
			appointment.Status,
			appointment.Reason,
			appointment.Notes,
			appointment.CreatedAt,
			appointment.UpdatedAt,
		); err != nil {
			return mapError(err, "appointment")
		}
		if event != nil {
			return insertOutboxEvent(ctx, tx, event)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, appointmentSelect+" WHERE a.id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", mapError(err, "appointment"))
	}
	return &appointment, nil
}

// Update writes the schedule and notes. Moving onto a live slot of the same
// doctor fails with a ConflictError from appointments_doctor_slot_key.
func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment, from model.AppointmentStatus) (bool, error) {
	query := `
		UPDATE appointments
		SET scheduled_at = $1, reason = $2, notes = $3, updated_at = $4
		WHERE id = $5 AND status = $6
	`
	appointment.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		appointment.ScheduledAt,
		appointment.Reason,
		appointment.Notes,
		appointment.UpdatedAt,
		appointment.ID,
		from,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update appointment: %w", mapError(err, "appointment"))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus) (bool, error) {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update appointment status: %w", mapError(err, "appointment"))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM appointments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", mapDeleteError(err, "appointment"))
	}
	return checkAffected(result, "appointment")
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters, page pagination.Params) ([]*model.Appointment, int, error) {
	if filters == nil {
		filters = &model.AppointmentFilters{}
	}
	q := query.New().
		Eq("a.doctor_id", filters.DoctorID).
		Eq("a.patient_id", filters.PatientID).
		Eq("a.status", filters.Status).
		Gte("a.scheduled_at", filters.From).
		Lt("a.scheduled_at", nextDay(filters.To))

	countSQL, countArgs := q.Count("SELECT COUNT(*) FROM appointments a")
	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	listSQL, args := q.Select(appointmentSelect, "a.scheduled_at ASC, a.id", page.Limit, page.Offset)
	appointments := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, listSQL, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, total, nil
}

func (r *appointmentRepository) BookedSlots(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	query := `
		SELECT scheduled_at
		FROM appointments
		WHERE doctor_id = $1
		AND scheduled_at >= $2
		AND scheduled_at < $3
		AND status <> 'cancelled'
		ORDER BY scheduled_at ASC
	`
	slots := []time.Time{}
	if err := r.db.SelectContext(ctx, &slots, query, doctorID, from, to); err != nil {
		return nil, fmt.Errorf("failed to get booked slots: %w", err)
	}
	return slots, nil
}
