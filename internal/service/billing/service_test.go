package billing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/pagination"
)

type fakeRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*model.Invoice
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{invoices: make(map[uuid.UUID]*model.Invoice)}
}

func (f *fakeRepo) Create(ctx context.Context, invoice *model.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	invoice.ID = uuid.New()
	copied := *invoice
	f.invoices[invoice.ID] = &copied
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[id]
	if !ok {
		return nil, apperrors.NewNotFound("invoice", nil)
	}
	copied := *inv
	return &copied, nil
}

func (f *fakeRepo) MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[id]
	if !ok || inv.Status != model.InvoiceStatusUnpaid {
		return false, nil
	}
	inv.Status = model.InvoiceStatusPaid
	inv.PaidAt = &at
	return true, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[id]
	if !ok || inv.Status == model.InvoiceStatusPaid {
		return false, nil
	}
	delete(f.invoices, id)
	return true, nil
}

func (f *fakeRepo) List(ctx context.Context, filters *model.InvoiceFilters, page pagination.Params) ([]*model.Invoice, int, error) {
	return nil, 0, nil
}

var testNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	svc := NewService(repo)
	svc.now = func() time.Time { return testNow }
	return svc, repo
}

func createInvoice(t *testing.T, svc *Service) *model.Invoice {
	inv, err := svc.CreateInvoice(context.Background(), &model.CreateInvoiceRequest{
		PatientID: uuid.New(),
		Items: []model.InvoiceItem{
			{Description: "Consultation", Quantity: 1, UnitPriceCents: 5000},
			{Description: "Blood panel", Quantity: 3, UnitPriceCents: 1250},
		},
		DueDate: "2026-04-01",
	})
	require.NoError(t, err)
	return inv
}

func TestCreateInvoiceComputesTotal(t *testing.T) {
	svc, _ := newTestService()
	inv := createInvoice(t, svc)

	assert.EqualValues(t, 8750, inv.TotalCents)
	assert.Equal(t, model.InvoiceStatusUnpaid, inv.Status)
	assert.Equal(t, testNow, inv.IssuedAt)
	require.NotNil(t, inv.DueDate)
	assert.Equal(t, "2026-04-01", inv.DueDate.Format("2006-01-02"))
}

func TestCreateInvoiceRejectsBadDueDate(t *testing.T) {
	svc, _ := newTestService()

	for _, due := range []string{"01/04/2026", "2026-03-01"} {
		_, err := svc.CreateInvoice(context.Background(), &model.CreateInvoiceRequest{
			PatientID: uuid.New(),
			Items:     []model.InvoiceItem{{Description: "X-ray", Quantity: 1, UnitPriceCents: 100}},
			DueDate:   due,
		})
		assert.True(t, apperrors.IsValidation(err), due)
	}

	// due today is allowed
	_, err := svc.CreateInvoice(context.Background(), &model.CreateInvoiceRequest{
		PatientID: uuid.New(),
		Items:     []model.InvoiceItem{{Description: "X-ray", Quantity: 1, UnitPriceCents: 100}},
		DueDate:   "2026-03-02",
	})
	assert.NoError(t, err)
}

func TestPayInvoiceOnce(t *testing.T) {
	svc, _ := newTestService()
	inv := createInvoice(t, svc)

	paid, err := svc.PayInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	_, err = svc.PayInvoice(context.Background(), inv.ID)
	assert.True(t, apperrors.IsConflict(err))
	assert.ErrorContains(t, err, "invoice is paid")

	_, err = svc.PayInvoice(context.Background(), uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteInvoice(t *testing.T) {
	svc, _ := newTestService()

	unpaid := createInvoice(t, svc)
	require.NoError(t, svc.DeleteInvoice(context.Background(), unpaid.ID))
	_, err := svc.GetInvoice(context.Background(), unpaid.ID)
	assert.True(t, apperrors.IsNotFound(err))

	paid := createInvoice(t, svc)
	_, err = svc.PayInvoice(context.Background(), paid.ID)
	require.NoError(t, err)
	assert.True(t, apperrors.IsConflict(svc.DeleteInvoice(context.Background(), paid.ID)))

	assert.True(t, apperrors.IsNotFound(svc.DeleteInvoice(context.Background(), uuid.New())))
}
