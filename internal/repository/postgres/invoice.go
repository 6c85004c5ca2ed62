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

const invoiceSelect = `
		SELECT id, patient_id, items, total_cents, status, issued_at,
			   due_date, paid_at, notes, created_at, updated_at
		FROM invoices`

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	query := `
		INSERT INTO invoices (
			id, patient_id, items, total_cents, status, issued_at,
			due_date, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	invoice.ID = uuid.New()
	invoice.CreatedAt = time.Now().UTC()
	invoice.UpdatedAt = invoice.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		invoice.ID,
		invoice.PatientID,
		invoice.Items,
		invoice.TotalCents,
		invoice.Status,
		invoice.IssuedAt,
		invoice.DueDate,
		invoice.Notes,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", mapError(err, "invoice"))
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := r.db.GetContext(ctx, &invoice, invoiceSelect+" WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", mapError(err, "invoice"))
	}
	return &invoice, nil
}

func (r *invoiceRepository) MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE invoices
		SET status = $1, paid_at = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		model.InvoiceStatusPaid,
		at,
		time.Now().UTC(),
		id,
		model.InvoiceStatusUnpaid,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark invoice paid: %w", mapError(err, "invoice"))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM invoices WHERE id = $1 AND status <> $2", id, model.InvoiceStatusPaid)
	if err != nil {
		return false, fmt.Errorf("failed to delete invoice: %w", mapDeleteError(err, "invoice"))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *invoiceRepository) List(ctx context.Context, filters *model.InvoiceFilters, page pagination.Params) ([]*model.Invoice, int, error) {
	if filters == nil {
		filters = &model.InvoiceFilters{}
	}
	q := query.New().
		Eq("patient_id", filters.PatientID).
		Eq("status", filters.Status).
		Gte("issued_at", filters.From).
		Lt("issued_at", nextDay(filters.To))

	countSQL, countArgs := q.Count("SELECT COUNT(*) FROM invoices")
	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	listSQL, args := q.Select(invoiceSelect, "issued_at DESC, id", page.Limit, page.Offset)
	invoices := []*model.Invoice{}
	if err := r.db.SelectContext(ctx, &invoices, listSQL, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, total, nil
}
