package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smartvisit/visitor-backend/internal/middleware"
	"github.com/smartvisit/visitor-backend/internal/models"
	"github.com/smartvisit/visitor-backend/internal/services"
	"github.com/smartvisit/visitor-backend/pkg/facegate"
)

// VisitorHandler exposes the visitor workflow over HTTP
type VisitorHandler struct {
	visitorService *services.VisitorService
	auditService   *services.AuditService
	gateway        facegate.Gateway
}

// NewVisitorHandler creates a new visitor handler
func NewVisitorHandler(visitorService *services.VisitorService, auditService *services.AuditService, gateway facegate.Gateway) *VisitorHandler {
	return &VisitorHandler{
		visitorService: visitorService,
		auditService:   auditService,
		gateway:        gateway,
	}
}

// Register creates a new visitor from a multipart registration form
// POST /api/v1/visitors/register
func (h *VisitorHandler) Register(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.RegisterVisitorRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
			"code":    "INVALID_INPUT",
		})
		return
	}

	// Only an admin can register pre-approved visitors
	if req.RegisteredBy == models.RegisteredByAdmin && userCtx.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "Only administrators can register pre-approved visitors",
			"code":    "INSUFFICIENT_ROLE",
		})
		return
	}

	photo, err := readPhoto(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Photo is required for face enrollment",
			"code":    "PHOTO_REQUIRED",
		})
		return
	}
	req.Photo = photo

	visitor, err := h.visitorService.Register(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register visitor"})
		return
	}

	h.safeLogVisitorAction(c, userCtx.Email, "visitor_registered", visitor.ID, map[string]interface{}{
		"visitor_name": visitor.FullName,
		"status":       visitor.Status,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Registered successfully",
		"status":     visitor.Status,
		"visitor_id": visitor.ID,
	})
}

// readPhoto loads the uploaded photo file and re-encodes it as a
// base64 data URL, which is how the photo is persisted and forwarded
// to the face service
func readPhoto(c *gin.Context) (string, error) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("empty photo upload")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}

// GetAll lists every visitor
// GET /api/v1/visitors
func (h *VisitorHandler) GetAll(c *gin.Context) {
	visitors, err := h.visitorService.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch visitors"})
		return
	}

	c.JSON(http.StatusOK, visitors)
}

// GetByHost lists the visitors hosted by an employee
// GET /api/v1/visitors/host/:email
func (h *VisitorHandler) GetByHost(c *gin.Context) {
	visitors, err := h.visitorService.GetByHost(c.Param("email"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch visitors"})
		return
	}

	c.JSON(http.StatusOK, visitors)
}

// GetByID returns a single visitor
// GET /api/v1/visitors/:id
func (h *VisitorHandler) GetByID(c *gin.Context) {
	visitor, err := h.visitorService.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch visitor"})
		return
	}
	if visitor == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Visitor not found",
			"code":    "VISITOR_NOT_FOUND",
		})
		return
	}

	c.JSON(http.StatusOK, visitor)
}

// UpdateStatus applies an approval decision to a visitor. Requests that
// carry the check-in/check-out statuses are redirected to the dedicated
// operations so their occupancy preconditions still apply.
// PATCH /api/v1/visitors/:id/status
func (h *VisitorHandler) UpdateStatus(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Status is required",
			"code":    "INVALID_INPUT",
		})
		return
	}

	status, err := models.ParseVisitorStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid status",
			"code":    "INVALID_STATUS",
		})
		return
	}

	id := c.Param("id")

	// Legacy clients send check-in/check-out through the status
	// endpoint; route them to the dedicated operations so the
	// occupancy preconditions still apply
	if status == models.StatusCheckedIn || status == models.StatusCheckedOut {
		if userCtx.Role != models.RoleSecurity {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Only security staff can check visitors in or out",
				"code":    "INSUFFICIENT_ROLE",
			})
			return
		}
		if status == models.StatusCheckedIn {
			h.CheckIn(c)
		} else {
			h.CheckOut(c)
		}
		return
	}

	actor := services.Actor{
		Email:    userCtx.Email,
		Role:     userCtx.Role,
		FullName: userCtx.FullName,
	}

	found, err := h.visitorService.UpdateStatus(id, status, actor)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "You may only decide on visitors hosted by you",
				"code":    "NOT_VISITOR_HOST",
			})
		case errors.Is(err, models.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "Invalid status",
				"code":    "INVALID_STATUS",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update visitor status"})
		}
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Visitor not found",
			"code":    "VISITOR_NOT_FOUND",
		})
		return
	}

	h.safeLogVisitorAction(c, userCtx.Email, "visitor_status_"+string(status), id, map[string]interface{}{
		"status": status,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Visitor status updated to %s.", status),
	})
}

// CheckIn records a visitor's arrival
// PATCH /api/v1/visitors/:id/checkin
func (h *VisitorHandler) CheckIn(c *gin.Context) {
	id := c.Param("id")

	ok, err := h.visitorService.CheckIn(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check in visitor"})
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_state",
			"message": "Visitor must be Approved to check in",
			"code":    "CHECKIN_NOT_ALLOWED",
		})
		return
	}

	if userCtx, exists := middleware.GetUserContext(c); exists {
		h.safeLogVisitorAction(c, userCtx.Email, "visitor_checked_in", id, nil)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Checked in."})
}

// CheckOut records a visitor's departure
// PATCH /api/v1/visitors/:id/checkout
func (h *VisitorHandler) CheckOut(c *gin.Context) {
	id := c.Param("id")

	ok, err := h.visitorService.CheckOut(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check out visitor"})
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_state",
			"message": "Visitor must be Checked In to check out",
			"code":    "CHECKOUT_NOT_ALLOWED",
		})
		return
	}

	if userCtx, exists := middleware.GetUserContext(c); exists {
		h.safeLogVisitorAction(c, userCtx.Email, "visitor_checked_out", id, nil)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Checked out."})
}

// GetDashboardStats returns visitor counts per status
// GET /api/v1/visitors/stats
func (h *VisitorHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.visitorService.DashboardStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetAlerts proxies the face service's recognition alert feed
// GET /api/v1/visitors/alerts
func (h *VisitorHandler) GetAlerts(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), 50)

	alerts, err := h.gateway.FetchAlerts(limit)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Face service offline"})
		return
	}

	c.Data(http.StatusOK, "application/json", alerts)
}

// GetGeofenceAlerts proxies the face service's geofence alert feed
// GET /api/v1/visitors/alerts/geofence
func (h *VisitorHandler) GetGeofenceAlerts(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), 50)

	alerts, err := h.gateway.FetchGeofenceAlerts(limit)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Face service offline"})
		return
	}

	c.Data(http.StatusOK, "application/json", alerts)
}

func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
