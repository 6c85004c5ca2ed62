package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/pkg/pagination"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		List(ctx context.Context, filters *model.UserFilters, page pagination.Params) ([]*model.User, int, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PatientFilters, page pagination.Params) ([]*model.Patient, int, error)
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.DoctorFilters, page pagination.Params) ([]*model.Doctor, int, error)
	}

	AppointmentRepository interface {
		// Create inserts the appointment and, when event is non-nil, the
		// outbox event in the same transaction.
		Create(ctx context.Context, appointment *model.Appointment, event *model.OutboxEvent) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		// Update and UpdateStatus only write while the appointment is still in
		// status from; they report false otherwise.
		Update(ctx context.Context, appointment *model.Appointment, from model.AppointmentStatus) (bool, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus) (bool, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters, page pagination.Params) ([]*model.Appointment, int, error)
		BookedSlots(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]time.Time, error)
	}

	ExaminationRepository interface {
		Create(ctx context.Context, exam *model.Examination) error
		Get(ctx context.Context, id uuid.UUID) (*model.Examination, error)
		Update(ctx context.Context, exam *model.Examination) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.ExaminationFilters, page pagination.Params) ([]*model.Examination, int, error)
	}

	HospitalizationRepository interface {
		Create(ctx context.Context, stay *model.Hospitalization) error
		Get(ctx context.Context, id uuid.UUID) (*model.Hospitalization, error)
		// Discharge reports false when the stay was not in the admitted state.
		Discharge(ctx context.Context, id uuid.UUID, notes string, at time.Time) (bool, error)
		List(ctx context.Context, filters *model.HospitalizationFilters, page pagination.Params) ([]*model.Hospitalization, int, error)
	}

	MedicationRepository interface {
		Create(ctx context.Context, medication *model.Medication) error
		Get(ctx context.Context, id uuid.UUID) (*model.Medication, error)
		Update(ctx context.Context, medication *model.Medication) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.MedicationFilters, page pagination.Params) ([]*model.Medication, int, error)
	}

	InvoiceRepository interface {
		Create(ctx context.Context, invoice *model.Invoice) error
		Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
		// MarkPaid reports false when the invoice was not unpaid.
		MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
		// Delete reports false when the invoice has been paid.
		Delete(ctx context.Context, id uuid.UUID) (bool, error)
		List(ctx context.Context, filters *model.InvoiceFilters, page pagination.Params) ([]*model.Invoice, int, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification, event *model.OutboxEvent) error
		MarkRead(ctx context.Context, id, userID uuid.UUID, at time.Time) error
		List(ctx context.Context, userID uuid.UUID, filters *model.NotificationFilters, page pagination.Params) ([]*model.Notification, int, error)
	}

	DashboardRepository interface {
		Stats(ctx context.Context, userID uuid.UUID, dayStart, dayEnd time.Time) (*model.DashboardStats, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// ClaimPending moves up to limit pending events to PROCESSING and
		// returns them. Concurrent workers never claim the same event.
		ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
