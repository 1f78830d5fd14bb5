package handlers

import (
	"log"

	"github.com/gin-gonic/gin"
)

// logAuditError logs audit service failures without failing the request
func logAuditError(operation string, err error) {
	if err != nil {
		log.Printf("AUDIT ERROR [%s]: %v", operation, err)
	}
}

func (h *VisitorHandler) safeLogVisitorAction(c *gin.Context, actorEmail, action, visitorID string, details map[string]interface{}) {
	err := h.auditService.LogVisitorAction(actorEmail, action, visitorID, c.ClientIP(), c.Request.UserAgent(), details)
	logAuditError("LogVisitorAction", err)
}

func (h *AuthHandler) safeLogLogin(c *gin.Context, email string, success bool, reason string) {
	err := h.auditService.LogLogin(email, c.ClientIP(), c.Request.UserAgent(), success, reason)
	logAuditError("LogLogin", err)
}
