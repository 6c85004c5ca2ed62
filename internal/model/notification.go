package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeInfo        NotificationType = "info"
	NotificationTypeAppointment NotificationType = "appointment"
	NotificationTypeBilling     NotificationType = "billing"
	NotificationTypeAlert       NotificationType = "alert"
)

type NotificationChannel string

const (
	NotificationChannelInApp NotificationChannel = "in_app"
	NotificationChannelEmail NotificationChannel = "email"
)

type Notification struct {
	ID        uuid.UUID           `db:"id" json:"id"`
	UserID    uuid.UUID           `db:"user_id" json:"user_id"`
	Title     string              `db:"title" json:"title"`
	Message   string              `db:"message" json:"message"`
	Type      NotificationType    `db:"type" json:"type"`
	Channel   NotificationChannel `db:"channel" json:"channel"`
	IsRead    bool                `db:"is_read" json:"is_read"`
	ReadAt    *time.Time          `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time           `db:"created_at" json:"created_at"`
}

type CreateNotificationRequest struct {
	UserID  uuid.UUID           `json:"user_id" validate:"required"`
	Title   string              `json:"title" validate:"required,max=200"`
	Message string              `json:"message" validate:"required"`
	Type    NotificationType    `json:"type" validate:"omitempty,oneof=info appointment billing alert"`
	Channel NotificationChannel `json:"channel" validate:"omitempty,oneof=in_app email"`
}

type NotificationFilters struct {
	Read *bool  `form:"read"`
	Type string `form:"type" validate:"omitempty,oneof=info appointment billing alert"`
}

func (n Notification) EntityID() uuid.UUID {
	return n.ID
}

// NotificationEvent is the outbox payload published for new notifications.
type NotificationEvent struct {
	NotificationID uuid.UUID           `json:"notification_id"`
	UserID         uuid.UUID           `json:"user_id"`
	Title          string              `json:"title"`
	Message        string              `json:"message"`
	Channel        NotificationChannel `json:"channel"`
}

// AppointmentEvent is the outbox payload published for bookings.
type AppointmentEvent struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	PatientID     uuid.UUID `json:"patient_id"`
	DoctorID      uuid.UUID `json:"doctor_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
}
