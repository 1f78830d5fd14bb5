package models

import (
	"errors"
	"time"
)

// NotificationType classifies the workflow event a notification reports
type NotificationType string

const (
	NotificationPendingApproval NotificationType = "pending_approval"
	NotificationApproved        NotificationType = "approved"
	NotificationRejected        NotificationType = "rejected"

	// Reserved types, not emitted by the workflow engine
	NotificationCheckedIn  NotificationType = "checked_in"
	NotificationCheckedOut NotificationType = "checked_out"
)

// RoleSecurity is the broadcast role for decision notifications
const RoleSecurity = "Security"

// ErrEmptyRecipient is returned when a notification carries neither a
// target email nor a target role
var ErrEmptyRecipient = errors.New("notification has no recipient")

// Recipient models notification routing: either a direct email or a
// role-wide broadcast. The persisted form keeps both columns, with the
// unused one empty.
type Recipient struct {
	Email string
	Role  string
}

// DirectRecipient addresses a single user by email
func DirectRecipient(email string) Recipient {
	return Recipient{Email: email}
}

// BroadcastRecipient addresses every user holding a role
func BroadcastRecipient(role string) Recipient {
	return Recipient{Role: role}
}

// RoutingKey returns the effective recipient identity: the email when
// present, the role otherwise. Part of the dedup tuple.
func (r Recipient) RoutingKey() string {
	if r.Email != "" {
		return r.Email
	}
	return r.Role
}

// Notification represents a single inbox entry. At most one row exists
// per (visitor_id, type, routing key) at any time; repeats refresh the
// existing row instead of inserting a new one.
type Notification struct {
	ID          string           `json:"id" db:"id"`
	TargetEmail string           `json:"target_email" db:"target_email"`
	TargetRole  string           `json:"target_role" db:"target_role"`
	Message     string           `json:"message" db:"message"`
	VisitorID   string           `json:"visitor_id" db:"visitor_id"`
	VisitorName string           `json:"visitor_name" db:"visitor_name"`
	Type        NotificationType `json:"type" db:"type"`
	IsRead      bool             `json:"is_read" db:"is_read"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}

// Recipient returns the routing union for this notification
func (n *Notification) Recipient() Recipient {
	if n.TargetEmail != "" {
		return DirectRecipient(n.TargetEmail)
	}
	return BroadcastRecipient(n.TargetRole)
}

// CreateNotificationRequest is the payload for direct notification
// injection (admin/testing); it goes through the same dedup upsert as
// workflow-emitted notifications.
type CreateNotificationRequest struct {
	TargetEmail string `json:"target_email"`
	TargetRole  string `json:"target_role"`
	Message     string `json:"message" binding:"required"`
	VisitorID   string `json:"visitor_id" binding:"required"`
	VisitorName string `json:"visitor_name"`
	Type        string `json:"type" binding:"required"`
}
