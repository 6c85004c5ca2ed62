package appointment

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/config"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/pagination"
)

// fakeRepo enforces one live booking per doctor and slot, like the partial
// unique index in the schema.
type fakeRepo struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]*model.Appointment
	slots  map[string]uuid.UUID
	events []*model.OutboxEvent
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byID:  make(map[uuid.UUID]*model.Appointment),
		slots: make(map[string]uuid.UUID),
	}
}

func slotKey(doctorID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("%s/%d", doctorID, at.Unix())
}

func (r *fakeRepo) Create(ctx context.Context, apt *model.Appointment, event *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := slotKey(apt.DoctorID, apt.ScheduledAt)
	if _, taken := r.slots[key]; taken {
		return apperrors.NewConflict("doctor already has an appointment at this time", nil)
	}
	cp := *apt
	r.byID[apt.ID] = &cp
	r.slots[key] = apt.ID
	if event != nil {
		r.events = append(r.events, event)
	}
	return nil
}

func (r *fakeRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	apt, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	cp := *apt
	return &cp, nil
}

func (r *fakeRepo) Update(ctx context.Context, apt *model.Appointment, from model.AppointmentStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[apt.ID]
	if !ok || stored.Status != from {
		return false, nil
	}

	oldKey := slotKey(stored.DoctorID, stored.ScheduledAt)
	newKey := slotKey(apt.DoctorID, apt.ScheduledAt)
	if newKey != oldKey {
		if owner, taken := r.slots[newKey]; taken && owner != apt.ID {
			return false, apperrors.NewConflict("doctor already has an appointment at this time", nil)
		}
		delete(r.slots, oldKey)
		r.slots[newKey] = apt.ID
	}
	cp := *apt
	r.byID[apt.ID] = &cp
	return true, nil
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	apt, ok := r.byID[id]
	if !ok || apt.Status != from {
		return false, nil
	}
	apt.Status = to
	if to == model.AppointmentStatusCancelled {
		delete(r.slots, slotKey(apt.DoctorID, apt.ScheduledAt))
	}
	return true, nil
}

func (r *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filters *model.AppointmentFilters, page pagination.Params) ([]*model.Appointment, int, error) {
	return nil, 0, nil
}

func (r *fakeRepo) BookedSlots(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []time.Time
	for _, apt := range r.byID {
		if apt.DoctorID == doctorID && apt.Status != model.AppointmentStatusCancelled &&
			!apt.ScheduledAt.Before(from) && apt.ScheduledAt.Before(to) {
			out = append(out, apt.ScheduledAt)
		}
	}
	return out, nil
}

type fakeDoctors struct {
	repository.DoctorRepository
	known map[uuid.UUID]bool
}

func (d *fakeDoctors) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	if !d.known[id] {
		return nil, apperrors.NewNotFound("doctor", nil)
	}
	return &model.Doctor{Base: model.Base{ID: id}}, nil
}

var testNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func newTestService(repo *fakeRepo, doctorIDs ...uuid.UUID) *Service {
	known := make(map[uuid.UUID]bool)
	for _, id := range doctorIDs {
		known[id] = true
	}
	svc := NewService(repo, &fakeDoctors{known: known}, config.SchedulingConfig{
		SlotMinutes:    30,
		DayStartHour:   9,
		DayEndHour:     17,
		MaxAdvanceDays: 90,
	})
	svc.now = func() time.Time { return testNow }
	return svc
}

func bookingAt(doctorID uuid.UUID, at time.Time) *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		PatientID:   uuid.New(),
		DoctorID:    doctorID,
		ScheduledAt: at,
	}
}

func TestBookAppointment(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	doctorID := uuid.New()
	at := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)

	apt, err := svc.BookAppointment(context.Background(), bookingAt(doctorID, at))
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	assert.Equal(t, 30, apt.DurationMinutes)
	assert.True(t, at.Equal(apt.ScheduledAt))

	require.Len(t, repo.events, 1)
	assert.Equal(t, messaging.ChannelAppointmentBooked, repo.events[0].EventType)
	assert.Contains(t, string(repo.events[0].Payload), apt.ID.String())
}

func TestConcurrentBookingsOfSameSlot(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	doctorID := uuid.New()
	at := time.Date(2026, 3, 3, 11, 30, 0, 0, time.UTC)

	const attempts = 20
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	start := make(chan struct{})

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.BookAppointment(context.Background(), bookingAt(doctorID, at))
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	succeeded, conflicts := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case apperrors.IsConflict(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)
}

func TestSlotFreedByCancellation(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	doctorID := uuid.New()
	at := time.Date(2026, 3, 3, 14, 0, 0, 0, time.UTC)

	first, err := svc.BookAppointment(context.Background(), bookingAt(doctorID, at))
	require.NoError(t, err)

	_, err = svc.BookAppointment(context.Background(), bookingAt(doctorID, at))
	require.True(t, apperrors.IsConflict(err))

	_, err = svc.UpdateStatus(context.Background(), first.ID, model.AppointmentStatusCancelled)
	require.NoError(t, err)

	_, err = svc.BookAppointment(context.Background(), bookingAt(doctorID, at))
	assert.NoError(t, err)
}

func TestBookAppointmentRejectsInvalidSlots(t *testing.T) {
	svc := newTestService(newFakeRepo())
	doctorID := uuid.New()

	tests := []struct {
		name string
		at   time.Time
	}{
		{"in the past", testNow.Add(-time.Hour)},
		{"now", testNow},
		{"off grid", time.Date(2026, 3, 3, 10, 15, 0, 0, time.UTC)},
		{"seconds set", time.Date(2026, 3, 3, 10, 0, 30, 0, time.UTC)},
		{"before opening", time.Date(2026, 3, 3, 8, 30, 0, 0, time.UTC)},
		{"last slot overruns close", time.Date(2026, 3, 3, 17, 0, 0, 0, time.UTC)},
		{"beyond advance window", testNow.AddDate(0, 0, 91).Truncate(24 * time.Hour).Add(10 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.BookAppointment(context.Background(), bookingAt(doctorID, tt.at))
			assert.True(t, apperrors.IsValidation(err), "got %v", err)
		})
	}
}

func TestBookAppointmentNormalisesTimezone(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ist := time.FixedZone("IST", 5*3600+1800)

	// 15:30 IST is 10:00 UTC
	apt, err := svc.BookAppointment(context.Background(), bookingAt(uuid.New(), time.Date(2026, 3, 3, 15, 30, 0, 0, ist)))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, apt.ScheduledAt.Location())
	assert.Equal(t, 10, apt.ScheduledAt.Hour())
}

func TestUpdateStatusTransitions(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	apt, err := svc.BookAppointment(context.Background(), bookingAt(uuid.New(), time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatusCompleted)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatusScheduled)
	assert.True(t, apperrors.IsValidation(err))

	notes := "late"
	_, err = svc.UpdateAppointment(context.Background(), apt.ID, &model.UpdateAppointmentRequest{Notes: &notes})
	assert.True(t, apperrors.IsValidation(err))
}

func TestDeleteAppointmentRequiresCancelled(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	apt, err := svc.BookAppointment(context.Background(), bookingAt(uuid.New(), time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)))
	require.NoError(t, err)

	err = svc.DeleteAppointment(context.Background(), apt.ID)
	assert.True(t, apperrors.IsConflict(err))

	_, err = svc.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatusCancelled)
	require.NoError(t, err)
	assert.NoError(t, svc.DeleteAppointment(context.Background(), apt.ID))

	_, err = svc.GetAppointment(context.Background(), apt.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAvailableSlots(t *testing.T) {
	repo := newFakeRepo()
	doctorID := uuid.New()
	svc := newTestService(repo, doctorID)
	day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

	_, err := svc.BookAppointment(context.Background(), bookingAt(doctorID, day.Add(9*time.Hour)))
	require.NoError(t, err)

	slots, err := svc.AvailableSlots(context.Background(), doctorID, day)
	require.NoError(t, err)

	// 9:00 to 17:00 in 30 minute slots, minus the booked 9:00
	require.Len(t, slots, 15)
	assert.True(t, slots[0].Start.Equal(day.Add(9*time.Hour+30*time.Minute)))
	assert.True(t, slots[len(slots)-1].End.Equal(day.Add(17*time.Hour)))

	_, err = svc.AvailableSlots(context.Background(), uuid.New(), day)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAvailableSlotsSkipsPast(t *testing.T) {
	doctorID := uuid.New()
	svc := newTestService(newFakeRepo(), doctorID)
	svc.now = func() time.Time { return time.Date(2026, 3, 3, 12, 10, 0, 0, time.UTC) }

	slots, err := svc.AvailableSlots(context.Background(), doctorID, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NotEmpty(t, slots)
	assert.Equal(t, 12, slots[0].Start.Hour())
	assert.Equal(t, 30, slots[0].Start.Minute())
	assert.Len(t, slots, 9)
}

// readBarrier holds every Get until parties callers have read, so concurrent
// requests all act on the same snapshot.
type readBarrier struct {
	*fakeRepo
	mu      sync.Mutex
	arrived int
	parties int
	release chan struct{}
}

func newReadBarrier(repo *fakeRepo, parties int) *readBarrier {
	return &readBarrier{fakeRepo: repo, parties: parties, release: make(chan struct{})}
}

func (b *readBarrier) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := b.fakeRepo.Get(ctx, id)
	b.mu.Lock()
	b.arrived++
	if b.arrived == b.parties {
		close(b.release)
	}
	b.mu.Unlock()
	<-b.release
	return apt, err
}

func TestConcurrentStatusChangesOnStaleRead(t *testing.T) {
	repo := newFakeRepo()
	apt, err := newTestService(repo).BookAppointment(context.Background(),
		bookingAt(uuid.New(), time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	svc := newTestService(repo)
	svc.repo = newReadBarrier(repo, 2)

	targets := []model.AppointmentStatus{model.AppointmentStatusCancelled, model.AppointmentStatusConfirmed}
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, status := range targets {
		wg.Add(1)
		go func(i int, status model.AppointmentStatus) {
			defer wg.Done()
			_, errs[i] = svc.UpdateStatus(context.Background(), apt.ID, status)
		}(i, status)
	}
	wg.Wait()

	var winner model.AppointmentStatus
	succeeded := 0
	for i, err := range errs {
		if err == nil {
			succeeded++
			winner = targets[i]
			continue
		}
		assert.True(t, apperrors.IsConflict(err), "got %v", err)
	}
	require.Equal(t, 1, succeeded)

	final, err := repo.Get(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, winner, final.Status)
}

func TestCancelledAppointmentIsNotRevived(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	apt, err := svc.BookAppointment(context.Background(),
		bookingAt(uuid.New(), time.Date(2026, 3, 5, 11, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	// a confirm that read "scheduled" before the cancel was written
	_, err = svc.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatusCancelled)
	require.NoError(t, err)
	ok, err := repo.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatusScheduled, model.AppointmentStatusConfirmed)
	require.NoError(t, err)
	assert.False(t, ok)

	final, err := repo.Get(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, final.Status)
}

func TestUpdateAfterConcurrentCancelConflicts(t *testing.T) {
	repo := newFakeRepo()
	apt, err := newTestService(repo).BookAppointment(context.Background(),
		bookingAt(uuid.New(), time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	svc := newTestService(repo)
	svc.repo = newReadBarrier(repo, 2)

	notes := "bring previous scans"
	var updateErr, cancelErr error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, cancelErr = svc.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatusCancelled)
	}()
	go func() {
		defer wg.Done()
		_, updateErr = svc.UpdateAppointment(context.Background(), apt.ID, &model.UpdateAppointmentRequest{Notes: &notes})
	}()
	wg.Wait()

	require.NoError(t, cancelErr)
	if updateErr != nil {
		assert.True(t, apperrors.IsConflict(updateErr), "got %v", updateErr)
	}
	final, err := repo.Get(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, final.Status)
}

func TestRescheduleOntoTakenSlot(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	doctorID := uuid.New()
	nine := time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC)
	ten := nine.Add(time.Hour)

	first, err := svc.BookAppointment(context.Background(), bookingAt(doctorID, nine))
	require.NoError(t, err)
	_, err = svc.BookAppointment(context.Background(), bookingAt(doctorID, ten))
	require.NoError(t, err)

	_, err = svc.UpdateAppointment(context.Background(), first.ID, &model.UpdateAppointmentRequest{ScheduledAt: &ten})
	assert.True(t, apperrors.IsConflict(err), "got %v", err)

	// moving to a free slot releases the old one
	eleven := ten.Add(time.Hour)
	moved, err := svc.UpdateAppointment(context.Background(), first.ID, &model.UpdateAppointmentRequest{ScheduledAt: &eleven})
	require.NoError(t, err)
	assert.True(t, eleven.Equal(moved.ScheduledAt))

	_, err = svc.BookAppointment(context.Background(), bookingAt(doctorID, nine))
	assert.NoError(t, err)
}
