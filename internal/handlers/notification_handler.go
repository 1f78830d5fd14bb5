package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartvisit/visitor-backend/internal/models"
	"github.com/smartvisit/visitor-backend/internal/services"
)

// NotificationHandler exposes the notification inbox over HTTP
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// recipientParams extracts the email+role recipient identity from the
// query string; both are required
func recipientParams(c *gin.Context) (string, string, bool) {
	email := c.Query("email")
	role := c.Query("role")
	if email == "" || role == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "email and role query params are required",
			"code":    "INVALID_INPUT",
		})
		return "", "", false
	}
	return email, role, true
}

// GetForUser returns the recipient's inbox, newest first
// GET /api/v1/notifications?email=x@x.com&role=Employee
func (h *NotificationHandler) GetForUser(c *gin.Context) {
	email, role, ok := recipientParams(c)
	if !ok {
		return
	}

	notifications, err := h.notificationService.GetForRecipient(email, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// GetUnreadCount returns the recipient's unread notification count
// GET /api/v1/notifications/unread-count?email=x@x.com&role=Security
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	email, role, ok := recipientParams(c)
	if !ok {
		return
	}

	count, err := h.notificationService.UnreadCount(email, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkAsRead marks a single notification as read
// PATCH /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	if err := h.notificationService.MarkRead(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read."})
}

// MarkAllAsRead marks every unread notification for the recipient
// PATCH /api/v1/notifications/mark-all-read?email=x@x.com&role=Employee
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	email, role, ok := recipientParams(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAllRead(email, role); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read."})
}

// Delete permanently removes a notification. Employees call this after
// acting on an approval request so the alert never resurfaces.
// DELETE /api/v1/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.notificationService.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted."})
}

// Create injects a notification directly through the dedup upsert.
// Admin/testing entry point, not part of the normal workflow path.
// POST /api/v1/notifications
func (h *NotificationHandler) Create(c *gin.Context) {
	var req models.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
			"code":    "INVALID_INPUT",
		})
		return
	}

	notification := &models.Notification{
		TargetEmail: req.TargetEmail,
		TargetRole:  req.TargetRole,
		Message:     req.Message,
		VisitorID:   req.VisitorID,
		VisitorName: req.VisitorName,
		Type:        models.NotificationType(req.Type),
	}

	if err := h.notificationService.Upsert(notification); err != nil {
		if err == models.ErrEmptyRecipient {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "target_email or target_role is required",
				"code":    "INVALID_INPUT",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification created."})
}
