package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

// RecipientLookup resolves the user a notification is addressed to.
type RecipientLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Mailer is satisfied by internal/email.Service.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NotificationDispatcher delivers notifications published on the
// notification.created channel. In-app notifications are already stored, so
// only the email channel needs work here.
type NotificationDispatcher struct {
	broker     messaging.Broker
	recipients RecipientLookup
	mailer     Mailer
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

func NewNotificationDispatcher(broker messaging.Broker, recipients RecipientLookup, mailer Mailer, logger *logger.Logger, m *metrics.Metrics) *NotificationDispatcher {
	return &NotificationDispatcher{
		broker:     broker,
		recipients: recipients,
		mailer:     mailer,
		logger:     logger,
		metrics:    m,
	}
}

// Start blocks until ctx is cancelled or the subscription ends.
func (d *NotificationDispatcher) Start(ctx context.Context) error {
	d.logger.Info("Starting notification dispatcher")
	return messaging.Consume(ctx, d.broker, messaging.ChannelNotificationCreated, d.Handle, func(err error) {
		d.logger.Error(err, "Failed to dispatch notification")
	})
}

func (d *NotificationDispatcher) Handle(ctx context.Context, payload []byte) error {
	var event model.NotificationEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to decode notification event: %w", err)
	}

	channel := string(event.Channel)
	if event.Channel != model.NotificationChannelEmail {
		d.metrics.NotificationsSent.WithLabelValues(channel).Inc()
		return nil
	}

	if err := d.sendEmail(ctx, &event); err != nil {
		d.metrics.NotificationsFailed.WithLabelValues(channel).Inc()
		return err
	}
	d.metrics.NotificationsSent.WithLabelValues(channel).Inc()
	return nil
}

func (d *NotificationDispatcher) sendEmail(ctx context.Context, event *model.NotificationEvent) error {
	user, err := d.recipients.Get(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("failed to look up recipient %s: %w", event.UserID, err)
	}
	if err := d.mailer.Send(ctx, user.Email, event.Title, event.Message); err != nil {
		return fmt.Errorf("failed to email notification %s: %w", event.NotificationID, err)
	}
	return nil
}
