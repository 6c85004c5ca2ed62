package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/pagination"
)

type Service struct {
	repo repository.InvoiceRepository
	now  func() time.Time
}

func NewService(repo repository.InvoiceRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateInvoice computes the total from the line items; clients never send it.
func (s *Service) CreateInvoice(ctx context.Context, req *model.CreateInvoiceRequest) (*model.Invoice, error) {
	due, err := model.ParseDate(req.DueDate)
	if err != nil {
		return nil, apperrors.NewValidation("due_date must be a date in YYYY-MM-DD format", err)
	}

	items := model.InvoiceItems(req.Items)
	invoice := &model.Invoice{
		PatientID:  req.PatientID,
		Items:      items,
		TotalCents: items.TotalCents(),
		Status:     model.InvoiceStatusUnpaid,
		IssuedAt:   s.now().UTC(),
		DueDate:    due,
		Notes:      req.Notes,
	}
	if invoice.DueDate != nil && invoice.DueDate.Before(truncateDay(invoice.IssuedAt)) {
		return nil, apperrors.NewValidation("due_date must not be in the past", nil)
	}

	if err := s.repo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return invoice, nil
}

func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return invoice, nil
}

// PayInvoice moves an unpaid invoice to paid. The status check is part of the
// UPDATE, so two concurrent payments cannot both succeed.
func (s *Service) PayInvoice(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	ok, err := s.repo.MarkPaid(ctx, id, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to pay invoice: %w", err)
	}

	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if !ok {
		return nil, apperrors.NewConflict(fmt.Sprintf("invoice is %s and cannot be paid", invoice.Status), nil)
	}
	return invoice, nil
}

func (s *Service) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	if ok {
		return nil
	}

	// Nothing deleted: either missing or paid
	if _, err := s.repo.Get(ctx, id); err != nil {
		return fmt.Errorf("failed to get invoice: %w", err)
	}
	return apperrors.NewConflict("paid invoices cannot be deleted", nil)
}

func (s *Service) ListInvoices(ctx context.Context, filters *model.InvoiceFilters, page pagination.Params) ([]*model.Invoice, int, error) {
	invoices, total, err := s.repo.List(ctx, filters, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, total, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
