package notification

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/pagination"
)

// fakeRepo keeps the owner check the SQL applies: rows of other users are
// invisible to MarkRead and List.
type fakeRepo struct {
	mu            sync.Mutex
	notifications map[uuid.UUID]*model.Notification
	events        []*model.OutboxEvent
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{notifications: make(map[uuid.UUID]*model.Notification)}
}

func (f *fakeRepo) Create(ctx context.Context, notification *model.Notification, event *model.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *notification
	f.notifications[notification.ID] = &copied
	if event != nil {
		f.events = append(f.events, event)
	}
	return nil
}

func (f *fakeRepo) MarkRead(ctx context.Context, id, userID uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok || n.UserID != userID {
		return apperrors.NewNotFound("notification", nil)
	}
	n.IsRead = true
	if n.ReadAt == nil {
		n.ReadAt = &at
	}
	return nil
}

func (f *fakeRepo) List(ctx context.Context, userID uuid.UUID, filters *model.NotificationFilters, page pagination.Params) ([]*model.Notification, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.Notification{}
	for _, n := range f.notifications {
		if n.UserID != userID {
			continue
		}
		if filters != nil && filters.Read != nil && n.IsRead != *filters.Read {
			continue
		}
		copied := *n
		out = append(out, &copied)
	}
	return out, len(out), nil
}

var testNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	svc := NewService(repo)
	svc.now = func() time.Time { return testNow }
	return svc, repo
}

func send(t *testing.T, svc *Service, userID uuid.UUID, title string) *model.Notification {
	t.Helper()
	n, err := svc.Send(context.Background(), &model.CreateNotificationRequest{
		UserID:  userID,
		Title:   title,
		Message: title + " body",
	})
	require.NoError(t, err)
	return n
}

func TestSendDefaultsAndQueuesEvent(t *testing.T) {
	svc, repo := newTestService()
	userID := uuid.New()

	n := send(t, svc, userID, "Lab results ready")

	assert.NotEqual(t, uuid.Nil, n.ID)
	assert.Equal(t, model.NotificationTypeInfo, n.Type)
	assert.Equal(t, model.NotificationChannelInApp, n.Channel)

	require.Len(t, repo.events, 1)
	event := repo.events[0]
	assert.Equal(t, messaging.ChannelNotificationCreated, event.EventType)

	var payload model.NotificationEvent
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, n.ID, payload.NotificationID)
	assert.Equal(t, userID, payload.UserID)
	assert.Equal(t, "Lab results ready", payload.Title)
}

func TestListOnlyReturnsOwnNotifications(t *testing.T) {
	svc, _ := newTestService()
	alice, bob := uuid.New(), uuid.New()

	send(t, svc, alice, "for alice")
	send(t, svc, alice, "also for alice")
	send(t, svc, bob, "for bob")

	list, total, err := svc.List(context.Background(), alice, nil, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, n := range list {
		assert.Equal(t, alice, n.UserID)
	}

	list, total, err = svc.List(context.Background(), bob, nil, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "for bob", list[0].Title)
}

func TestMarkReadOtherUsersNotificationNotFound(t *testing.T) {
	svc, repo := newTestService()
	alice, bob := uuid.New(), uuid.New()
	n := send(t, svc, alice, "for alice")

	err := svc.MarkRead(context.Background(), n.ID, bob)
	assert.True(t, apperrors.IsNotFound(err))
	assert.False(t, repo.notifications[n.ID].IsRead)

	require.NoError(t, svc.MarkRead(context.Background(), n.ID, alice))
	assert.True(t, repo.notifications[n.ID].IsRead)
	require.NotNil(t, repo.notifications[n.ID].ReadAt)
	assert.Equal(t, testNow, *repo.notifications[n.ID].ReadAt)

	unread := false
	list, _, err := svc.List(context.Background(), alice, &model.NotificationFilters{Read: &unread}, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMissingUserIdentityRefused(t *testing.T) {
	svc, _ := newTestService()
	n := send(t, svc, uuid.New(), "hello")

	err := svc.MarkRead(context.Background(), n.ID, uuid.Nil)
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))

	_, _, err = svc.List(context.Background(), uuid.Nil, nil, pagination.Params{Page: 1, Limit: 10})
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))
}
