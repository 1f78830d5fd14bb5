package database

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/smartvisit/visitor-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var notificationTestColumns = []string{
	"id", "target_email", "target_role", "message", "visitor_id",
	"visitor_name", "type", "is_read", "created_at",
}

func TestInsertNotification(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: sqlx.NewDb(db, "sqlmock")}
	repo := NewNotificationRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO notifications`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		notification, err := repo.Insert(&models.Notification{
			TargetEmail: "bob@co.com",
			Message:     "Alice Perera from Acme has requested to visit you.",
			VisitorID:   uuid.New().String(),
			VisitorName: "Alice Perera",
			Type:        models.NotificationPendingApproval,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, notification.ID)
		assert.False(t, notification.IsRead, "new notifications start unread")
		assert.False(t, notification.CreatedAt.IsZero())

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO notifications`).
			WillReturnError(fmt.Errorf("database error"))

		notification, err := repo.Insert(&models.Notification{
			TargetRole: models.RoleSecurity,
			Message:    "Visitor approved",
			VisitorID:  uuid.New().String(),
			Type:       models.NotificationApproved,
		})
		assert.Error(t, err)
		assert.Nil(t, notification)
		assert.Contains(t, err.Error(), "failed to insert notification")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetNotificationByDedupKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: sqlx.NewDb(db, "sqlmock")}
	repo := NewNotificationRepository(mockDB)

	visitorID := uuid.New().String()

	t.Run("Direct Recipient Matches On Email", func(t *testing.T) {
		id := uuid.New().String()

		mock.ExpectQuery(`FROM notifications\s+WHERE visitor_id = \$1\s+AND type = \$2\s+AND target_email = \$3`).
			WithArgs(visitorID, string(models.NotificationPendingApproval), "bob@co.com").
			WillReturnRows(sqlmock.NewRows(notificationTestColumns).
				AddRow(id, "bob@co.com", "", "please approve", visitorID,
					"Alice Perera", string(models.NotificationPendingApproval), false, time.Now()))

		notification, err := repo.GetByDedupKey(visitorID, models.NotificationPendingApproval,
			models.DirectRecipient("bob@co.com"))
		require.NoError(t, err)
		require.NotNil(t, notification)
		assert.Equal(t, id, notification.ID)
		assert.Equal(t, "bob@co.com", notification.TargetEmail)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Broadcast Recipient Matches On Role", func(t *testing.T) {
		id := uuid.New().String()

		mock.ExpectQuery(`FROM notifications\s+WHERE visitor_id = \$1\s+AND type = \$2\s+AND target_role = \$3`).
			WithArgs(visitorID, string(models.NotificationApproved), models.RoleSecurity).
			WillReturnRows(sqlmock.NewRows(notificationTestColumns).
				AddRow(id, "", models.RoleSecurity, "approved by Admin", visitorID,
					"Alice Perera", string(models.NotificationApproved), true, time.Now()))

		notification, err := repo.GetByDedupKey(visitorID, models.NotificationApproved,
			models.BroadcastRecipient(models.RoleSecurity))
		require.NoError(t, err)
		require.NotNil(t, notification)
		assert.Equal(t, models.RoleSecurity, notification.TargetRole)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`FROM notifications`).
			WillReturnError(sql.ErrNoRows)

		notification, err := repo.GetByDedupKey(visitorID, models.NotificationRejected,
			models.DirectRecipient("nobody@co.com"))
		require.NoError(t, err)
		assert.Nil(t, notification)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`FROM notifications`).
			WillReturnError(fmt.Errorf("database error"))

		notification, err := repo.GetByDedupKey(visitorID, models.NotificationApproved,
			models.BroadcastRecipient(models.RoleSecurity))
		assert.Error(t, err)
		assert.Nil(t, notification)
		assert.Contains(t, err.Error(), "failed to look up notification")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRefreshNotification(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: sqlx.NewDb(db, "sqlmock")}
	repo := NewNotificationRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		id := uuid.New().String()

		mock.ExpectExec(`UPDATE notifications\s+SET message = \$1,\s+is_read = FALSE`).
			WithArgs("new message", sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Refresh(id, "new message")
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectExec(`UPDATE notifications`).
			WillReturnError(fmt.Errorf("database error"))

		err := repo.Refresh("any", "message")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to refresh notification")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetNotificationsForRecipient(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: sqlx.NewDb(db, "sqlmock")}
	repo := NewNotificationRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()

		mock.ExpectQuery(`FROM notifications\s+WHERE target_email = \$1\s+OR target_role = \$2\s+ORDER BY created_at DESC, id DESC`).
			WithArgs("bob@co.com", models.RoleEmployee).
			WillReturnRows(sqlmock.NewRows(notificationTestColumns).
				AddRow(uuid.New().String(), "bob@co.com", "", "newest", "v1",
					"Alice", string(models.NotificationPendingApproval), false, now).
				AddRow(uuid.New().String(), "", models.RoleEmployee, "older", "v2",
					"Carol", string(models.NotificationPendingApproval), true, now.Add(-time.Hour)))

		notifications, err := repo.GetForRecipient("bob@co.com", models.RoleEmployee)
		require.NoError(t, err)
		require.Len(t, notifications, 2)
		assert.Equal(t, "newest", notifications[0].Message)
		assert.Equal(t, "older", notifications[1].Message)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty Inbox", func(t *testing.T) {
		mock.ExpectQuery(`FROM notifications`).
			WithArgs("nobody@co.com", models.RoleEmployee).
			WillReturnRows(sqlmock.NewRows(notificationTestColumns))

		notifications, err := repo.GetForRecipient("nobody@co.com", models.RoleEmployee)
		require.NoError(t, err)
		assert.Empty(t, notifications)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCountUnreadNotifications(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: sqlx.NewDb(db, "sqlmock")}
	repo := NewNotificationRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM notifications\s+WHERE is_read = FALSE`).
			WithArgs("bob@co.com", models.RoleEmployee).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.CountUnread("bob@co.com", models.RoleEmployee)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\)`).
			WillReturnError(fmt.Errorf("database error"))

		count, err := repo.CountUnread("bob@co.com", models.RoleEmployee)
		assert.Error(t, err)
		assert.Zero(t, count)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMarkNotificationsRead(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: sqlx.NewDb(db, "sqlmock")}
	repo := NewNotificationRepository(mockDB)

	t.Run("Mark One", func(t *testing.T) {
		id := uuid.New().String()

		mock.ExpectExec(`UPDATE notifications\s+SET is_read = TRUE\s+WHERE id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.MarkRead(id)
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Mark All Scoped To Recipient", func(t *testing.T) {
		// The bulk update filter is the recipient's own inbox filter,
		// so other recipients' rows are never touched
		mock.ExpectExec(`UPDATE notifications\s+SET is_read = TRUE\s+WHERE is_read = FALSE\s+AND \(target_email = \$1 OR target_role = \$2\)`).
			WithArgs("bob@co.com", models.RoleEmployee).
			WillReturnResult(sqlmock.NewResult(0, 2))

		err := repo.MarkAllRead("bob@co.com", models.RoleEmployee)
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectExec(`UPDATE notifications`).
			WillReturnError(fmt.Errorf("database error"))

		err := repo.MarkRead("any")
		assert.Error(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteNotification(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: sqlx.NewDb(db, "sqlmock")}
	repo := NewNotificationRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		id := uuid.New().String()

		mock.ExpectExec(`DELETE FROM notifications\s+WHERE id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(id)
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM notifications`).
			WillReturnError(fmt.Errorf("database error"))

		err := repo.Delete("any")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to delete notification")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
