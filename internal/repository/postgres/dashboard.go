package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
)

func (r *dashboardRepository) Stats(ctx context.Context, userID uuid.UUID, dayStart, dayEnd time.Time) (*model.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM patients) AS total_patients,
			(SELECT COUNT(*) FROM doctors) AS total_doctors,
			(SELECT COUNT(*) FROM appointments
				WHERE scheduled_at >= $1 AND scheduled_at < $2
				AND status <> 'cancelled') AS appointments_today,
			(SELECT COUNT(*) FROM hospitalizations WHERE status = 'admitted') AS active_admissions,
			(SELECT COUNT(*) FROM invoices WHERE status = 'unpaid') AS unpaid_invoices,
			(SELECT COALESCE(SUM(total_cents), 0) FROM invoices WHERE status = 'unpaid') AS unpaid_amount_cents,
			(SELECT COUNT(*) FROM notifications WHERE user_id = $3 AND NOT is_read) AS unread_notifications
	`
	var stats model.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query, dayStart, dayEnd, userID); err != nil {
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}
	return &stats, nil
}
