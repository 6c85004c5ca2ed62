package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/pagination"
)

var errNoUser = apperrors.NewUnauthorized("missing user identity", nil)

type Service struct {
	repo repository.NotificationRepository
	now  func() time.Time
}

func NewService(repo repository.NotificationRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Send stores the notification and queues a notification.created event in the
// same transaction. Delivery happens in the worker.
func (s *Service) Send(ctx context.Context, req *model.CreateNotificationRequest) (*model.Notification, error) {
	notification := &model.Notification{
		ID:      uuid.New(),
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
		Channel: req.Channel,
	}
	if notification.Type == "" {
		notification.Type = model.NotificationTypeInfo
	}
	if notification.Channel == "" {
		notification.Channel = model.NotificationChannelInApp
	}

	event, err := model.NewOutboxEvent(messaging.ChannelNotificationCreated, model.NotificationEvent{
		NotificationID: notification.ID,
		UserID:         notification.UserID,
		Title:          notification.Title,
		Message:        notification.Message,
		Channel:        notification.Channel,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, notification, event); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return notification, nil
}

// MarkRead marks one of userID's notifications as read.
func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return errNoUser
	}
	if err := s.repo.MarkRead(ctx, id, userID, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// List only returns userID's notifications. A nil user id would drop the
// owner filter, so it is refused.
func (s *Service) List(ctx context.Context, userID uuid.UUID, filters *model.NotificationFilters, page pagination.Params) ([]*model.Notification, int, error) {
	if userID == uuid.Nil {
		return nil, 0, errNoUser
	}
	notifications, total, err := s.repo.List(ctx, userID, filters, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}
