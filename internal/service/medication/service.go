package medication

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/pagination"
)

type Service struct {
	repo repository.MedicationRepository
}

func NewService(repo repository.MedicationRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateMedication(ctx context.Context, req *model.MedicationRequest) (*model.Medication, error) {
	medication := &model.Medication{}
	if err := applyRequest(medication, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, medication); err != nil {
		return nil, fmt.Errorf("failed to create medication: %w", err)
	}
	return medication, nil
}

func (s *Service) GetMedication(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	medication, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get medication: %w", err)
	}
	return medication, nil
}

func (s *Service) UpdateMedication(ctx context.Context, id uuid.UUID, req *model.MedicationRequest) (*model.Medication, error) {
	medication, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get medication: %w", err)
	}
	if err := applyRequest(medication, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, medication); err != nil {
		return nil, fmt.Errorf("failed to update medication: %w", err)
	}
	return medication, nil
}

func (s *Service) DeleteMedication(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
	}
	return nil
}

func (s *Service) ListMedications(ctx context.Context, filters *model.MedicationFilters, page pagination.Params) ([]*model.Medication, int, error) {
	medications, total, err := s.repo.List(ctx, filters, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list medications: %w", err)
	}
	return medications, total, nil
}

// applyRequest also checks the date range before storage; the
// medications_dates_check constraint backs it up.
func applyRequest(medication *model.Medication, req *model.MedicationRequest) error {
	start, err := model.ParseDate(req.StartDate)
	if err != nil || start == nil {
		return apperrors.NewValidation("start_date must be a date in YYYY-MM-DD format", err)
	}
	end, err := model.ParseDate(req.EndDate)
	if err != nil {
		return apperrors.NewValidation("end_date must be a date in YYYY-MM-DD format", err)
	}
	if end != nil && end.Before(*start) {
		return apperrors.NewValidation("end_date must not be before start_date", nil)
	}

	medication.PatientID = req.PatientID
	medication.DoctorID = req.DoctorID
	medication.Name = req.Name
	medication.Dosage = req.Dosage
	medication.Frequency = req.Frequency
	medication.Instructions = req.Instructions
	medication.StartDate = *start
	medication.EndDate = end
	medication.Status = req.Status
	if medication.Status == "" {
		medication.Status = model.MedicationStatusActive
	}
	return nil
}
