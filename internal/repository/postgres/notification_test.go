package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/pagination"
)

func TestNotificationMarkReadScopedToOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)
	id, otherUser := uuid.New(), uuid.New()
	at := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $2 AND user_id = $3")).
		WithArgs(at, id, otherUser).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkRead(context.Background(), id, otherUser, at)
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationListFiltersByOwnerFirst(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db)
	userID := uuid.New()
	unread := false

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = $2",
	)).WithArgs(userID, false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND is_read = $2 ORDER BY created_at DESC, id LIMIT $3 OFFSET $4")).
		WithArgs(userID, false, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "is_read"}).
			AddRow(uuid.New().String(), userID.String(), "Lab results ready", false))

	notifications, total, err := repo.List(context.Background(), userID,
		&model.NotificationFilters{Read: &unread}, pagination.Params{Page: 1, Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, notifications, 1)
	assert.Equal(t, userID, notifications[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
