package services

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smartvisit/visitor-backend/internal/database"
	"github.com/smartvisit/visitor-backend/internal/models"
	"github.com/smartvisit/visitor-backend/pkg/facegate"
)

// Actor identifies who is performing a workflow action
type Actor struct {
	Email    string
	Role     string
	FullName string
}

// VisitorService is the visitor workflow engine. It owns the status
// state machine, decides who may move a visitor between states, and
// raises notifications as a one-way side effect. The visitor record is
// the source of truth; a failed notification never rolls back a
// visitor mutation.
type VisitorService struct {
	visitorRepo   *database.VisitorRepository
	notifications *NotificationService
	gateway       facegate.Gateway
	logger        *logrus.Logger
}

// NewVisitorService creates a new visitor service
func NewVisitorService(visitorRepo *database.VisitorRepository, notifications *NotificationService, gateway facegate.Gateway, logger *logrus.Logger) *VisitorService {
	return &VisitorService{
		visitorRepo:   visitorRepo,
		notifications: notifications,
		gateway:       gateway,
		logger:        logger,
	}
}

// Register creates a visitor from a registration request. Visitors
// registered by an admin start out Approved; everyone else starts
// Pending Approval and the host gets an approval-request notification.
// Face enrollment with the AI service is best effort: a failure is
// logged and the registration still succeeds.
func (s *VisitorService) Register(req *models.RegisterVisitorRequest) (*models.Visitor, error) {
	status := models.StatusPendingApproval
	if req.RegisteredBy == models.RegisteredByAdmin {
		status = models.StatusApproved
	}

	visitor := &models.Visitor{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Company:      req.Company,
		Purpose:      req.Purpose,
		Host:         req.Host,
		HostEmail:    req.HostEmail,
		Date:         req.Date,
		Time:         req.Time,
		IDType:       req.IDType,
		IDNumber:     req.IDNumber,
		RegisteredBy: req.RegisteredBy,
		Status:       status,
	}
	if req.Photo != "" {
		visitor.Photo = &req.Photo
	}

	visitor, err := s.visitorRepo.Create(visitor)
	if err != nil {
		return nil, err
	}

	if status == models.StatusPendingApproval && visitor.HostEmail != "" {
		notification := &models.Notification{
			TargetEmail: visitor.HostEmail,
			Message:     pendingApprovalMessage(visitor),
			VisitorID:   visitor.ID,
			VisitorName: visitor.FullName,
			Type:        models.NotificationPendingApproval,
		}
		if err := s.notifications.Upsert(notification); err != nil {
			s.logger.WithFields(logrus.Fields{
				"visitor_id": visitor.ID,
				"host_email": visitor.HostEmail,
			}).Warnf("Failed to notify host of pending approval: %v", err)
		}
	}

	if err := s.gateway.EnrollFace(visitor.ID, visitor.FullName, req.Photo); err != nil {
		s.logger.WithField("visitor_id", visitor.ID).
			Warnf("Visitor saved but face enrollment failed: %v", err)
	}

	return visitor, nil
}

// UpdateStatus applies an approval decision to a visitor. Only
// Approved, Rejected and the Pending Approval revert are reachable
// here; check-in and check-out have their own operations so the
// occupancy preconditions cannot be bypassed.
//
// Authorization is enforced at this boundary: admins may decide on any
// visitor, an employee only on visitors hosted by them. Reverting to
// Pending Approval clears action_by, since the decision it recorded has
// been withdrawn.
//
// The returned bool is false when the visitor does not exist, which is
// a benign no-op rather than an error.
func (s *VisitorService) UpdateStatus(id string, status models.VisitorStatus, actor Actor) (bool, error) {
	if !status.IsDecision() {
		return false, models.ErrInvalidStatus
	}

	visitor, err := s.visitorRepo.GetByID(id)
	if err != nil {
		return false, err
	}
	if visitor == nil {
		return false, nil
	}

	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleEmployee:
		if actor.Email != visitor.HostEmail {
			return false, models.ErrNotAuthorized
		}
	default:
		return false, models.ErrNotAuthorized
	}

	actionBy := actor.Email
	if actor.Role == models.RoleAdmin {
		actionBy = models.ActionByAdmin
	}

	var actionByField *string
	if status != models.StatusPendingApproval {
		actionByField = &actionBy
	}

	found, err := s.visitorRepo.UpdateStatus(id, status, actionByField)
	if err != nil || !found {
		return found, err
	}

	if status == models.StatusApproved || status == models.StatusRejected {
		ntype := models.NotificationApproved
		if status == models.StatusRejected {
			ntype = models.NotificationRejected
		}
		notification := &models.Notification{
			TargetRole:  models.RoleSecurity,
			Message:     decisionMessage(visitor, status, actionBy),
			VisitorID:   visitor.ID,
			VisitorName: visitor.FullName,
			Type:        ntype,
		}
		if err := s.notifications.Upsert(notification); err != nil {
			s.logger.WithFields(logrus.Fields{
				"visitor_id": visitor.ID,
				"status":     status,
			}).Warnf("Visitor status updated but security notification failed: %v", err)
		}
	}

	return true, nil
}

// CheckIn records a visitor's arrival. Succeeds only when the visitor
// is currently Approved; false for any other state, including a repeat
// check-in, without mutating anything. Arrival is observed by security
// directly, so no notification is raised.
func (s *VisitorService) CheckIn(id string) (bool, error) {
	return s.visitorRepo.CheckIn(id, time.Now().UTC())
}

// CheckOut records a visitor's departure. Succeeds only when the
// visitor is currently Checked In.
func (s *VisitorService) CheckOut(id string) (bool, error) {
	return s.visitorRepo.CheckOut(id, time.Now().UTC())
}

// GetAll lists every visitor
func (s *VisitorService) GetAll() ([]*models.Visitor, error) {
	return s.visitorRepo.GetAll()
}

// GetByHost lists the visitors hosted by the given employee
func (s *VisitorService) GetByHost(hostEmail string) ([]*models.Visitor, error) {
	return s.visitorRepo.GetByHostEmail(hostEmail)
}

// GetByID returns a visitor, or (nil, nil) when absent
func (s *VisitorService) GetByID(id string) (*models.Visitor, error) {
	return s.visitorRepo.GetByID(id)
}

// DashboardStats returns the per-status visitor counts
func (s *VisitorService) DashboardStats() (*models.DashboardStats, error) {
	return s.visitorRepo.GetDashboardStats()
}
