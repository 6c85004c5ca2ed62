package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
)

type fakeRepo struct {
	userID           uuid.UUID
	dayStart, dayEnd time.Time
	stats            *model.DashboardStats
	err              error
}

func (f *fakeRepo) Stats(ctx context.Context, userID uuid.UUID, dayStart, dayEnd time.Time) (*model.DashboardStats, error) {
	f.userID, f.dayStart, f.dayEnd = userID, dayStart, dayEnd
	return f.stats, f.err
}

func TestStatsUsesUTCDay(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		day  time.Time
	}{
		{"midday", time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"local evening is next UTC day", time.Date(2026, 3, 2, 20, 0, 0, 0, time.FixedZone("PST", -8*3600)), time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)},
		{"first instant", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{stats: &model.DashboardStats{AppointmentsToday: 4}}
			svc := NewService(repo)
			svc.now = func() time.Time { return tt.now }
			userID := uuid.New()

			stats, err := svc.Stats(context.Background(), userID)
			require.NoError(t, err)
			assert.Equal(t, 4, stats.AppointmentsToday)
			assert.Equal(t, userID, repo.userID)
			assert.Equal(t, tt.day, repo.dayStart)
			assert.Equal(t, tt.day.Add(24*time.Hour), repo.dayEnd)
		})
	}
}

func TestStatsError(t *testing.T) {
	repo := &fakeRepo{err: errors.New("connection refused")}
	svc := NewService(repo)

	_, err := svc.Stats(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get dashboard stats")
}
