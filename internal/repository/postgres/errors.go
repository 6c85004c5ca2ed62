package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

var constraintMessages = map[string]string{
	"appointments_doctor_slot_key":        "doctor already has an appointment in this slot",
	"hospitalizations_active_patient_key": "patient is already admitted",
	"doctors_license_number_key":          "license number is already registered",
	"users_email_key":                     "email is already registered",
	"medications_dates_check":             "end_date must not be before start_date",
}

// mapError translates driver errors into application errors. Unknown errors
// are returned unchanged.
func mapError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFound(resource, err)
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case pqUniqueViolation:
		return apperrors.NewConflict(constraintMessage(pqErr, resource+" already exists"), err)
	case pqForeignKeyViolation:
		return apperrors.NewValidation("referenced record does not exist", err)
	case pqCheckViolation:
		return apperrors.NewValidation(constraintMessage(pqErr, "invalid "+resource), err)
	}
	return err
}

// mapDeleteError treats foreign key violations as conflicts: the row is still
// referenced by other records.
func mapDeleteError(err error, resource string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
		return apperrors.NewConflict(resource+" has related records", err)
	}
	return mapError(err, resource)
}

func constraintMessage(pqErr *pq.Error, fallback string) string {
	if msg, ok := constraintMessages[pqErr.Constraint]; ok {
		return msg
	}
	return fallback
}

// checkAffected returns NotFound when an update or delete touched no rows.
func checkAffected(result sql.Result, resource string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.NewNotFound(resource, nil)
	}
	return nil
}
