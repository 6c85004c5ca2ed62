package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func testMetrics() *metrics.Metrics {
	return metrics.NewMetrics(prometheus.NewRegistry(), "test", "worker")
}

type fakeOutbox struct {
	mu        sync.Mutex
	pending   []*model.OutboxEvent
	processed []uuid.UUID
	failed    map[uuid.UUID]string
	deleted   int64
	cutoff    time.Time
}

func (f *fakeOutbox) Create(ctx context.Context, event *model.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, event)
	return nil
}

func (f *fakeOutbox) ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.pending) {
		limit = len(f.pending)
	}
	claimed := f.pending[:limit]
	f.pending = f.pending[limit:]
	return claimed, nil
}

func (f *fakeOutbox) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed = append(f.processed, id)
	return nil
}

func (f *fakeOutbox) MarkFailed(ctx context.Context, id uuid.UUID, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed == nil {
		f.failed = make(map[uuid.UUID]string)
	}
	f.failed[id] = msg
	return nil
}

func (f *fakeOutbox) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	f.cutoff = before
	return f.deleted, nil
}

// flakyPublisher fails the first failures calls per channel.
type flakyPublisher struct {
	mu        sync.Mutex
	failures  map[string]int
	published map[string][]interface{}
}

func (p *flakyPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures[channel] > 0 {
		p.failures[channel]--
		return errors.New("redis unavailable")
	}
	if p.published == nil {
		p.published = make(map[string][]interface{})
	}
	p.published[channel] = append(p.published[channel], message)
	return nil
}

func newEvent(t *testing.T, eventType string) *model.OutboxEvent {
	event, err := model.NewOutboxEvent(eventType, map[string]string{"id": uuid.NewString()})
	require.NoError(t, err)
	return event
}

func newProcessor(repo *fakeOutbox, pub messaging.Publisher, m *metrics.Metrics) *OutboxProcessor {
	return NewOutboxProcessor(repo, pub, OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	}, testLogger(), m)
}

func TestOutboxProcessorPublishesByEventType(t *testing.T) {
	booked := newEvent(t, messaging.ChannelAppointmentBooked)
	created := newEvent(t, messaging.ChannelNotificationCreated)
	repo := &fakeOutbox{pending: []*model.OutboxEvent{booked, created}}
	pub := &flakyPublisher{}
	m := testMetrics()

	n, err := newProcessor(repo, pub, m).ProcessBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []uuid.UUID{booked.ID, created.ID}, repo.processed)
	assert.Len(t, pub.published[messaging.ChannelAppointmentBooked], 1)
	assert.Len(t, pub.published[messaging.ChannelNotificationCreated], 1)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.OutboxEventsProcessed))
}

func TestOutboxProcessorRetriesThenSucceeds(t *testing.T) {
	event := newEvent(t, messaging.ChannelAppointmentBooked)
	repo := &fakeOutbox{pending: []*model.OutboxEvent{event}}
	pub := &flakyPublisher{failures: map[string]int{messaging.ChannelAppointmentBooked: 2}}
	m := testMetrics()

	_, err := newProcessor(repo, pub, m).ProcessBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{event.ID}, repo.processed)
	assert.Empty(t, repo.failed)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.OutboxRetries.WithLabelValues(messaging.ChannelAppointmentBooked)))
}

func TestOutboxProcessorMarksFailedAfterRetries(t *testing.T) {
	event := newEvent(t, messaging.ChannelNotificationCreated)
	repo := &fakeOutbox{pending: []*model.OutboxEvent{event}}
	pub := &flakyPublisher{failures: map[string]int{messaging.ChannelNotificationCreated: 10}}
	m := testMetrics()

	_, err := newProcessor(repo, pub, m).ProcessBatch(context.Background())
	require.NoError(t, err)

	assert.Empty(t, repo.processed)
	assert.Contains(t, repo.failed[event.ID], "redis unavailable")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OutboxEventsFailed))
	// three attempts leave seven failures queued
	assert.Equal(t, 7, pub.failures[messaging.ChannelNotificationCreated])
}

func TestCleanupUsesRetention(t *testing.T) {
	repo := &fakeOutbox{deleted: 4}
	m := testMetrics()
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	w := NewOutboxCleanupWorker(repo, 7*24*time.Hour, time.Hour, testLogger(), m)
	w.now = func() time.Time { return now }

	n, err := w.Cleanup(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), repo.cutoff)
	assert.Equal(t, float64(4), testutil.ToFloat64(m.OutboxEventsDeleted))
}

type fakeRecipients struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeRecipients) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, body})
	return nil
}

func notificationPayload(t *testing.T, userID uuid.UUID, channel model.NotificationChannel) []byte {
	payload, err := json.Marshal(model.NotificationEvent{
		NotificationID: uuid.New(),
		UserID:         userID,
		Title:          "Lab results ready",
		Message:        "Your results are available.",
		Channel:        channel,
	})
	require.NoError(t, err)
	return payload
}

func TestDispatcherEmailsRecipient(t *testing.T) {
	userID := uuid.New()
	mailer := &fakeMailer{}
	m := testMetrics()
	d := NewNotificationDispatcher(nil, &fakeRecipients{users: map[uuid.UUID]*model.User{
		userID: {Email: "nurse@example.com"},
	}}, mailer, testLogger(), m)

	require.NoError(t, d.Handle(context.Background(), notificationPayload(t, userID, model.NotificationChannelEmail)))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "nurse@example.com", mailer.sent[0].to)
	assert.Equal(t, "Lab results ready", mailer.sent[0].subject)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.NotificationsSent.WithLabelValues("email")))
}

func TestDispatcherSkipsInApp(t *testing.T) {
	mailer := &fakeMailer{}
	m := testMetrics()
	d := NewNotificationDispatcher(nil, &fakeRecipients{}, mailer, testLogger(), m)

	require.NoError(t, d.Handle(context.Background(), notificationPayload(t, uuid.New(), model.NotificationChannelInApp)))

	assert.Empty(t, mailer.sent)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.NotificationsSent.WithLabelValues("in_app")))
}

func TestDispatcherCountsFailures(t *testing.T) {
	m := testMetrics()
	d := NewNotificationDispatcher(nil, &fakeRecipients{}, &fakeMailer{}, testLogger(), m)

	err := d.Handle(context.Background(), notificationPayload(t, uuid.New(), model.NotificationChannelEmail))
	assert.ErrorContains(t, err, "failed to look up recipient")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.NotificationsFailed.WithLabelValues("email")))

	assert.Error(t, d.Handle(context.Background(), []byte("not json")))
}

// chanBroker hands out a channel the test writes to directly.
type chanBroker struct {
	ch chan []byte
}

func (b *chanBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	return nil
}

func (b *chanBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return b.ch, nil
}

func (b *chanBroker) Close() error { return nil }

func TestDispatcherStartConsumesUntilClosed(t *testing.T) {
	userID := uuid.New()
	broker := &chanBroker{ch: make(chan []byte, 2)}
	mailer := &fakeMailer{}
	d := NewNotificationDispatcher(broker, &fakeRecipients{users: map[uuid.UUID]*model.User{
		userID: {Email: "doc@example.com"},
	}}, mailer, testLogger(), testMetrics())

	broker.ch <- notificationPayload(t, userID, model.NotificationChannelEmail)
	broker.ch <- []byte("garbage")
	close(broker.ch)

	require.NoError(t, d.Start(context.Background()))
	assert.Len(t, mailer.sent, 1)
}
