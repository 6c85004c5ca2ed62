package hospitalization

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
	repo repository.HospitalizationRepository
	now  func() time.Time
}

func NewService(repo repository.HospitalizationRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Admit opens a stay. A patient with an open stay is rejected by
// hospitalizations_active_patient_key.
func (s *Service) Admit(ctx context.Context, req *model.AdmitRequest) (*model.Hospitalization, error) {
	stay := &model.Hospitalization{
		PatientID:  req.PatientID,
		DoctorID:   req.DoctorID,
		Ward:       req.Ward,
		Room:       req.Room,
		Bed:        req.Bed,
		Reason:     req.Reason,
		Status:     model.HospitalizationStatusAdmitted,
		AdmittedAt: s.now().UTC(),
	}
	if req.AdmittedAt != nil {
		stay.AdmittedAt = req.AdmittedAt.UTC()
	}

	if err := s.repo.Create(ctx, stay); err != nil {
		return nil, fmt.Errorf("failed to admit patient: %w", err)
	}
	return stay, nil
}

func (s *Service) Discharge(ctx context.Context, id uuid.UUID, req *model.DischargeRequest) (*model.Hospitalization, error) {
	ok, err := s.repo.Discharge(ctx, id, req.Notes, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to discharge patient: %w", err)
	}

	stay, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get hospitalization: %w", err)
	}
	if !ok {
		return nil, apperrors.NewConflict("patient is already discharged", nil)
	}
	return stay, nil
}

func (s *Service) GetHospitalization(ctx context.Context, id uuid.UUID) (*model.Hospitalization, error) {
	stay, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get hospitalization: %w", err)
	}
	return stay, nil
}

func (s *Service) ListHospitalizations(ctx context.Context, filters *model.HospitalizationFilters, page pagination.Params) ([]*model.Hospitalization, int, error) {
	stays, total, err := s.repo.List(ctx, filters, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list hospitalizations: %w", err)
	}
	return stays, total, nil
}
