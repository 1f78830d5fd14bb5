package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/smartvisit/visitor-backend/internal/models"
)

// NotificationRepository handles notification database operations
type NotificationRepository struct {
	db DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db DB) *NotificationRepository {
	return &NotificationRepository{
		db: db,
	}
}

const notificationColumns = `id, target_email, target_role, message, visitor_id,
	       visitor_name, type, is_read, created_at`

// Insert persists a new notification row with a store-assigned id,
// unread, stamped now
func (r *NotificationRepository) Insert(n *models.Notification) (*models.Notification, error) {
	n.ID = uuid.New().String()
	n.IsRead = false
	n.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO notifications (
			id, target_email, target_role, message, visitor_id,
			visitor_name, type, is_read, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(
		query,
		n.ID,
		n.TargetEmail,
		n.TargetRole,
		n.Message,
		n.VisitorID,
		n.VisitorName,
		n.Type,
		n.IsRead,
		n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}

	return n, nil
}

// GetByDedupKey looks up the single notification matching
// (visitor_id, type, routing key). The routing key is the target email
// when the recipient is direct, the target role when it is a broadcast.
// Returns (nil, nil) when no such row exists.
func (r *NotificationRepository) GetByDedupKey(visitorID string, ntype models.NotificationType, recipient models.Recipient) (*models.Notification, error) {
	var notification models.Notification

	var query string
	if recipient.Email != "" {
		query = `
			SELECT ` + notificationColumns + `
			FROM notifications
			WHERE visitor_id = $1
			  AND type = $2
			  AND target_email = $3
		`
	} else {
		query = `
			SELECT ` + notificationColumns + `
			FROM notifications
			WHERE visitor_id = $1
			  AND type = $2
			  AND target_role = $3
		`
	}

	err := r.db.Get(&notification, query, visitorID, ntype, recipient.RoutingKey())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up notification: %w", err)
	}

	return &notification, nil
}

// Refresh re-raises an existing notification: new message, unread,
// created_at moved to now. Identity and routing stay untouched.
func (r *NotificationRepository) Refresh(id, message string) error {
	query := `
		UPDATE notifications
		SET message = $1,
		    is_read = FALSE,
		    created_at = $2
		WHERE id = $3
	`

	_, err := r.db.Exec(query, message, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to refresh notification: %w", err)
	}

	return nil
}

// GetForRecipient retrieves all notifications addressed to the email or
// broadcast to the role, newest first. Insertion order breaks ties on
// equal timestamps.
func (r *NotificationRepository) GetForRecipient(email, role string) ([]*models.Notification, error) {
	var notifications []*models.Notification

	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE target_email = $1
		   OR target_role = $2
		ORDER BY created_at DESC, id DESC
	`

	err := r.db.Select(&notifications, query, email, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

// CountUnread counts unread notifications for the same filter set as
// GetForRecipient
func (r *NotificationRepository) CountUnread(email, role string) (int64, error) {
	var count int64

	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE is_read = FALSE
		  AND (target_email = $1 OR target_role = $2)
	`

	err := r.db.QueryRow(query, email, role).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// MarkRead marks a single notification as read
func (r *NotificationRepository) MarkRead(id string) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = $1
	`

	_, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	return nil
}

// MarkAllRead marks every unread notification for the recipient as
// read. The filter never overlaps across distinct recipients, so this
// is safe to run concurrently with other recipients' operations.
func (r *NotificationRepository) MarkAllRead(email, role string) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE is_read = FALSE
		  AND (target_email = $1 OR target_role = $2)
	`

	_, err := r.db.Exec(query, email, role)
	if err != nil {
		return fmt.Errorf("failed to mark all notifications read: %w", err)
	}

	return nil
}

// Delete permanently removes a notification. Clients call this once
// they have acted on the alert, so it cannot reappear on the next poll.
func (r *NotificationRepository) Delete(id string) error {
	query := `
		DELETE FROM notifications
		WHERE id = $1
	`

	_, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	return nil
}
