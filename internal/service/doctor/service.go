package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/pagination"
)

type Service struct {
	repo repository.DoctorRepository
}

func NewService(repo repository.DoctorRepository) *Service {
	return &Service{repo: repo}
}

// CreateDoctor relies on doctors_license_number_key for duplicate licenses.
func (s *Service) CreateDoctor(ctx context.Context, req *model.DoctorRequest) (*model.Doctor, error) {
	doctor := &model.Doctor{}
	applyRequest(doctor, req)
	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}
	return doctor, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return doctor, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, req *model.DoctorRequest) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	applyRequest(doctor, req)
	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to update doctor: %w", err)
	}
	return doctor, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete doctor: %w", err)
	}
	return nil
}

func (s *Service) ListDoctors(ctx context.Context, filters *model.DoctorFilters, page pagination.Params) ([]*model.Doctor, int, error) {
	doctors, total, err := s.repo.List(ctx, filters, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, total, nil
}

func applyRequest(doctor *model.Doctor, req *model.DoctorRequest) {
	doctor.UserID = req.UserID
	doctor.FirstName = strings.TrimSpace(req.FirstName)
	doctor.LastName = strings.TrimSpace(req.LastName)
	doctor.Specialization = req.Specialization
	doctor.Department = req.Department
	doctor.Phone = req.Phone
	doctor.Email = req.Email
	doctor.LicenseNumber = strings.TrimSpace(req.LicenseNumber)
}
