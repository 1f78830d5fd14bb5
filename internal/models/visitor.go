package models

import (
	"errors"
	"fmt"
	"time"
)

// VisitorStatus represents the lifecycle state of a visitor
type VisitorStatus string

const (
	StatusPendingApproval VisitorStatus = "Pending Approval"
	StatusApproved        VisitorStatus = "Approved"
	StatusRejected        VisitorStatus = "Rejected"
	StatusCheckedIn       VisitorStatus = "Checked In"
	StatusCheckedOut      VisitorStatus = "Checked Out"
)

// RegisteredByAdmin is the registeredBy marker that makes a visitor
// start out approved instead of pending
const RegisteredByAdmin = "Admin"

// ActionByAdmin is recorded as action_by when an admin decides,
// employee decisions record the employee's email instead
const ActionByAdmin = "Admin"

// ErrInvalidStatus is returned when a status string is not one of the
// defined visitor states, or not allowed for the attempted operation
var ErrInvalidStatus = errors.New("invalid visitor status")

// ErrNotAuthorized is returned when the acting user may not decide on
// the targeted visitor
var ErrNotAuthorized = errors.New("not authorized to act on this visitor")

// ParseVisitorStatus translates a wire-format status string into a
// VisitorStatus. This is the single translation point between the
// free-form strings clients send and the closed set the core uses.
func ParseVisitorStatus(s string) (VisitorStatus, error) {
	switch VisitorStatus(s) {
	case StatusPendingApproval, StatusApproved, StatusRejected, StatusCheckedIn, StatusCheckedOut:
		return VisitorStatus(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// IsDecision reports whether the status may be set through the status
// update operation. Checked In / Checked Out are only reachable through
// the dedicated check-in/check-out operations.
func (s VisitorStatus) IsDecision() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusPendingApproval
}

// Visitor represents a registered visitor and their workflow state
type Visitor struct {
	ID           string        `json:"id" db:"id"`
	FullName     string        `json:"full_name" db:"full_name"`
	Email        string        `json:"email" db:"email"`
	Phone        string        `json:"phone" db:"phone"`
	Company      string        `json:"company" db:"company"`
	Purpose      string        `json:"purpose" db:"purpose"`
	Host         string        `json:"host" db:"host"`
	HostEmail    string        `json:"host_email" db:"host_email"`
	Date         string        `json:"date" db:"date"`
	Time         string        `json:"time" db:"time"`
	IDType       string        `json:"id_type" db:"id_type"`
	IDNumber     string        `json:"id_number" db:"id_number"`
	Photo        *string       `json:"photo,omitempty" db:"photo"`
	Status       VisitorStatus `json:"status" db:"status"`
	RegisteredBy string        `json:"registered_by" db:"registered_by"`
	ActionBy     *string       `json:"action_by,omitempty" db:"action_by"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	CheckedInAt  *time.Time    `json:"checked_in_at,omitempty" db:"checked_in_at"`
	CheckedOutAt *time.Time    `json:"checked_out_at,omitempty" db:"checked_out_at"`
}

// RegisterVisitorRequest represents the visitor registration form.
// The photo arrives as a separate multipart file and is attached by the
// handler as a base64 data URL.
type RegisterVisitorRequest struct {
	FullName     string `form:"full_name" binding:"required"`
	Email        string `form:"email"`
	Phone        string `form:"phone"`
	Company      string `form:"company"`
	Purpose      string `form:"purpose"`
	Host         string `form:"host"`
	HostEmail    string `form:"host_email"`
	Date         string `form:"date"`
	Time         string `form:"time"`
	IDType       string `form:"id_type"`
	IDNumber     string `form:"id_number"`
	RegisteredBy string `form:"registered_by" binding:"required"`
	Photo        string `form:"-"`
}

// StatusUpdateRequest represents a decision on a pending visitor
type StatusUpdateRequest struct {
	Status   string `json:"status" binding:"required"`
	ActionBy string `json:"action_by"`
}

// DashboardStats holds the per-status visitor counts shown on the
// dashboards. Recomputed on every call, never cached.
type DashboardStats struct {
	Total     int64 `json:"total" db:"total"`
	Pending   int64 `json:"pending" db:"pending"`
	Approved  int64 `json:"approved" db:"approved"`
	CheckedIn int64 `json:"checked_in" db:"checked_in"`
	Rejected  int64 `json:"rejected" db:"rejected"`
}
