package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/smartvisit/visitor-backend/internal/database"
	"github.com/smartvisit/visitor-backend/internal/utils"
)

// AuditService records security-relevant events: logins and visitor
// workflow actions. Entries are written best effort; callers log and
// continue when a write fails.
type AuditService struct {
	db database.DB
}

// NewAuditService creates a new audit service
func NewAuditService(db database.DB) *AuditService {
	return &AuditService{
		db: db,
	}
}

// AuditEvent represents one audit log entry
type AuditEvent struct {
	ActorEmail string                 // Empty for failed logins with unknown accounts
	Action     string                 // e.g. "login_success", "visitor_approved", "visitor_checked_in"
	EntityType string                 // "user" or "visitor"
	EntityID   string                 // ID of the affected entity
	IPAddress  string                 // Client IP address
	UserAgent  string                 // Raw client user agent
	Details    map[string]interface{} // Additional details as JSONB
}

// LogLogin records a login attempt with parsed device information
func (s *AuditService) LogLogin(email, ipAddress, userAgent string, success bool, reason string) error {
	deviceInfo := utils.ParseUserAgent(userAgent)

	details := map[string]interface{}{
		"success":     success,
		"device_info": deviceInfo,
	}
	if reason != "" {
		details["reason"] = reason
	}

	action := "login_failed"
	if success {
		action = "login_success"
	}

	return s.logEvent(AuditEvent{
		ActorEmail: email,
		Action:     action,
		EntityType: "user",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogVisitorAction records a workflow action on a visitor
func (s *AuditService) LogVisitorAction(actorEmail, action, visitorID, ipAddress, userAgent string, details map[string]interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["device_info"] = utils.ParseUserAgent(userAgent)

	return s.logEvent(AuditEvent{
		ActorEmail: actorEmail,
		Action:     action,
		EntityType: "visitor",
		EntityID:   visitorID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// logEvent writes a single audit row
func (s *AuditService) logEvent(event AuditEvent) error {
	detailsJSON, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	query := `
		INSERT INTO audit_log (
			id, actor_email, action, entity_type, entity_id,
			ip_address, user_agent, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = s.db.Exec(
		query,
		uuid.New(),
		event.ActorEmail,
		event.Action,
		event.EntityType,
		event.EntityID,
		event.IPAddress,
		event.UserAgent,
		detailsJSON,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	return nil
}
