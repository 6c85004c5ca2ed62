package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/config"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/pagination"
)

type Service struct {
	repo     repository.AppointmentRepository
	doctors  repository.DoctorRepository
	schedule config.SchedulingConfig
	now      func() time.Time
}

func NewService(repo repository.AppointmentRepository, doctors repository.DoctorRepository, schedule config.SchedulingConfig) *Service {
	return &Service{
		repo:     repo,
		doctors:  doctors,
		schedule: schedule,
		now:      time.Now,
	}
}

func (s *Service) slotDuration() time.Duration {
	return time.Duration(s.schedule.SlotMinutes) * time.Minute
}

// validateSlot checks that at is a future slot on the booking grid, inside
// working hours (UTC) and within the advance booking window.
func (s *Service) validateSlot(at time.Time) error {
	now := s.now().UTC()

	if !at.After(now) {
		return apperrors.NewValidation("scheduled_at must be in the future", nil)
	}
	if at.After(now.AddDate(0, 0, s.schedule.MaxAdvanceDays)) {
		return apperrors.NewValidation(fmt.Sprintf("scheduled_at must be within %d days", s.schedule.MaxAdvanceDays), nil)
	}
	if at.Second() != 0 || at.Nanosecond() != 0 || at.Minute()%s.schedule.SlotMinutes != 0 {
		return apperrors.NewValidation(fmt.Sprintf("scheduled_at must align to a %d minute slot", s.schedule.SlotMinutes), nil)
	}

	dayStart, dayEnd := s.workingHours(at)
	if at.Before(dayStart) || at.Add(s.slotDuration()).After(dayEnd) {
		return apperrors.NewValidation(fmt.Sprintf("scheduled_at must be between %02d:00 and %02d:00",
			s.schedule.DayStartHour, s.schedule.DayEndHour), nil)
	}
	return nil
}

func (s *Service) workingHours(day time.Time) (time.Time, time.Time) {
	y, m, d := day.UTC().Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return midnight.Add(time.Duration(s.schedule.DayStartHour) * time.Hour),
		midnight.Add(time.Duration(s.schedule.DayEndHour) * time.Hour)
}

// BookAppointment inserts the booking together with its outbox event. Two
// concurrent bookings of the same doctor slot cannot both succeed: the loser
// gets a ConflictError from appointments_doctor_slot_key.
func (s *Service) BookAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	at := req.ScheduledAt.UTC()
	if err := s.validateSlot(at); err != nil {
		return nil, err
	}

	apt := &model.Appointment{
		Base:            model.Base{ID: uuid.New()},
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		ScheduledAt:     at,
		DurationMinutes: s.schedule.SlotMinutes,
		Status:          model.AppointmentStatusScheduled,
		Reason:          req.Reason,
	}

	event, err := model.NewOutboxEvent(messaging.ChannelAppointmentBooked, model.AppointmentEvent{
		AppointmentID: apt.ID,
		PatientID:     apt.PatientID,
		DoctorID:      apt.DoctorID,
		ScheduledAt:   apt.ScheduledAt,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, apt, event); err != nil {
		return nil, fmt.Errorf("failed to book appointment: %w", err)
	}

	// Refetch for the joined patient and doctor names
	created, err := s.repo.Get(ctx, apt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return created, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return apt, nil
}

// UpdateAppointment reschedules or edits notes. Terminal appointments are
// read-only.
func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if isTerminal(apt.Status) {
		return nil, apperrors.NewValidation(fmt.Sprintf("cannot modify a %s appointment", apt.Status), nil)
	}

	if req.ScheduledAt != nil {
		at := req.ScheduledAt.UTC()
		if !at.Equal(apt.ScheduledAt) {
			if err := s.validateSlot(at); err != nil {
				return nil, err
			}
		}
		apt.ScheduledAt = at
	}
	if req.Reason != nil {
		apt.Reason = *req.Reason
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}

	ok, err := s.repo.Update(ctx, apt, apt.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	if !ok {
		return nil, s.statusChanged(ctx, id)
	}
	return apt, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if !apt.Status.CanTransitionTo(status) {
		return nil, apperrors.NewValidation(fmt.Sprintf("cannot change appointment status from %s to %s", apt.Status, status), nil)
	}

	ok, err := s.repo.UpdateStatus(ctx, id, apt.Status, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	if !ok {
		return nil, s.statusChanged(ctx, id)
	}
	apt.Status = status
	return apt, nil
}

// statusChanged explains a conditional write that matched no row: the
// appointment was removed or another request changed its status first.
func (s *Service) statusChanged(ctx context.Context, id uuid.UUID) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get appointment: %w", err)
	}
	return apperrors.NewConflict(fmt.Sprintf("appointment is now %s", current.Status), nil)
}

// DeleteAppointment only removes cancelled appointments.
func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get appointment: %w", err)
	}
	if apt.Status != model.AppointmentStatusCancelled {
		return apperrors.NewConflict("only cancelled appointments can be deleted", nil)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters, page pagination.Params) ([]*model.Appointment, int, error) {
	appointments, total, err := s.repo.List(ctx, filters, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, total, nil
}

// AvailableSlots lists the free future slots of a doctor on the given day.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]model.TimeSlot, error) {
	if _, err := s.doctors.Get(ctx, doctorID); err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	start, end := s.workingHours(date)
	booked, err := s.repo.BookedSlots(ctx, doctorID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get booked slots: %w", err)
	}

	slots := generateTimeSlots(start, end, s.slotDuration())
	return filterAvailableSlots(slots, booked, s.now().UTC()), nil
}

func isTerminal(status model.AppointmentStatus) bool {
	return status == model.AppointmentStatusCancelled || status == model.AppointmentStatusCompleted
}

func generateTimeSlots(start, end time.Time, duration time.Duration) []model.TimeSlot {
	var slots []model.TimeSlot
	for t := start; !t.Add(duration).After(end); t = t.Add(duration) {
		slots = append(slots, model.TimeSlot{
			Start: t,
			End:   t.Add(duration),
		})
	}
	return slots
}

func filterAvailableSlots(slots []model.TimeSlot, booked []time.Time, now time.Time) []model.TimeSlot {
	taken := make(map[int64]struct{}, len(booked))
	for _, b := range booked {
		taken[b.UTC().Unix()] = struct{}{}
	}

	available := []model.TimeSlot{}
	for _, slot := range slots {
		if !slot.Start.After(now) {
			continue
		}
		if _, ok := taken[slot.Start.Unix()]; ok {
			continue
		}
		available = append(available, slot)
	}
	return available
}
