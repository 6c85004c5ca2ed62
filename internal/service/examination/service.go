package examination

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/pagination"
)

type Service struct {
	repo repository.ExaminationRepository
	now  func() time.Time
}

func NewService(repo repository.ExaminationRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) CreateExamination(ctx context.Context, req *model.ExaminationRequest) (*model.Examination, error) {
	exam := &model.Examination{}
	s.applyRequest(exam, req)
	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("failed to create examination: %w", err)
	}
	return exam, nil
}

func (s *Service) GetExamination(ctx context.Context, id uuid.UUID) (*model.Examination, error) {
	exam, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get examination: %w", err)
	}
	return exam, nil
}

func (s *Service) UpdateExamination(ctx context.Context, id uuid.UUID, req *model.ExaminationRequest) (*model.Examination, error) {
	exam, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get examination: %w", err)
	}
	if req.ExaminedAt == nil {
		req.ExaminedAt = &exam.ExaminedAt
	}
	s.applyRequest(exam, req)
	if err := s.repo.Update(ctx, exam); err != nil {
		return nil, fmt.Errorf("failed to update examination: %w", err)
	}
	return exam, nil
}

func (s *Service) DeleteExamination(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete examination: %w", err)
	}
	return nil
}

func (s *Service) ListExaminations(ctx context.Context, filters *model.ExaminationFilters, page pagination.Params) ([]*model.Examination, int, error) {
	exams, total, err := s.repo.List(ctx, filters, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list examinations: %w", err)
	}
	return exams, total, nil
}

func (s *Service) applyRequest(exam *model.Examination, req *model.ExaminationRequest) {
	exam.PatientID = req.PatientID
	exam.DoctorID = req.DoctorID
	exam.AppointmentID = req.AppointmentID
	exam.ExaminedAt = s.now().UTC()
	if req.ExaminedAt != nil {
		exam.ExaminedAt = req.ExaminedAt.UTC()
	}
	exam.Symptoms = req.Symptoms
	exam.Diagnosis = req.Diagnosis
	exam.Treatment = req.Treatment
	exam.Notes = req.Notes
}
