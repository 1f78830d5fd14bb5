package services

import (
	"fmt"

	"github.com/smartvisit/visitor-backend/internal/database"
	"github.com/smartvisit/visitor-backend/internal/models"
)

// NotificationService is the deduplication layer over the notification
// store. Repeated events for the same (visitor, type, recipient) tuple
// collapse into a single row that is re-raised as unread, so a
// recipient's inbox never accumulates duplicates for one event.
type NotificationService struct {
	notificationRepo *database.NotificationRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(notificationRepo *database.NotificationRepository) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
	}
}

// Upsert raises a notification. If a row already exists for the
// candidate's dedup tuple it is refreshed in place (new message, unread,
// created_at moved forward); otherwise the candidate is inserted.
// Callers never need to distinguish the two: either way the recipient
// ends up with exactly one unread notification for the event.
func (s *NotificationService) Upsert(candidate *models.Notification) error {
	recipient := candidate.Recipient()
	if recipient.RoutingKey() == "" {
		return models.ErrEmptyRecipient
	}

	existing, err := s.notificationRepo.GetByDedupKey(candidate.VisitorID, candidate.Type, recipient)
	if err != nil {
		return err
	}

	if existing != nil {
		if err := s.notificationRepo.Refresh(existing.ID, candidate.Message); err != nil {
			return err
		}
		return nil
	}

	if _, err := s.notificationRepo.Insert(candidate); err != nil {
		return err
	}

	return nil
}

// GetForRecipient returns all notifications addressed to the email or
// broadcast to the role, newest first
func (s *NotificationService) GetForRecipient(email, role string) ([]*models.Notification, error) {
	return s.notificationRepo.GetForRecipient(email, role)
}

// UnreadCount returns the recipient's unread notification count
func (s *NotificationService) UnreadCount(email, role string) (int64, error) {
	return s.notificationRepo.CountUnread(email, role)
}

// MarkRead marks a single notification as read
func (s *NotificationService) MarkRead(id string) error {
	return s.notificationRepo.MarkRead(id)
}

// MarkAllRead marks every unread notification for the recipient as read
func (s *NotificationService) MarkAllRead(email, role string) error {
	return s.notificationRepo.MarkAllRead(email, role)
}

// Delete permanently removes a notification
func (s *NotificationService) Delete(id string) error {
	return s.notificationRepo.Delete(id)
}

// pendingApprovalMessage renders the host-facing approval request
func pendingApprovalMessage(v *models.Visitor) string {
	return fmt.Sprintf("%s from %s has requested to visit you on %s at %s. Please approve or reject this visit.",
		v.FullName, v.Company, v.Date, v.Time)
}

// decisionMessage renders the security-facing decision broadcast
func decisionMessage(v *models.Visitor, status models.VisitorStatus, actionBy string) string {
	if status == models.StatusApproved {
		return fmt.Sprintf("Visitor %s has been approved by %s.", v.FullName, actionBy)
	}
	return fmt.Sprintf("Visitor %s has been rejected by %s.", v.FullName, actionBy)
}
