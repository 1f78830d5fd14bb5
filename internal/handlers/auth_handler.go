package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartvisit/visitor-backend/internal/models"
	"github.com/smartvisit/visitor-backend/internal/services"
	"github.com/smartvisit/visitor-backend/pkg/jwt"
)

// AuthHandler exposes login and account management over HTTP
type AuthHandler struct {
	authService  *services.AuthService
	auditService *services.AuditService
	jwtService   *jwt.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, auditService *services.AuditService, jwtService *jwt.Service) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		auditService: auditService,
		jwtService:   jwtService,
	}
}

// Login verifies credentials and issues access and refresh tokens
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "email and password are required",
			"code":    "INVALID_INPUT",
		})
		return
	}

	user, err := h.authService.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.safeLogLogin(c, req.Email, false, "invalid credentials")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid email or password.",
				"code":    "INVALID_CREDENTIALS",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	// The role selection screen sends the intended role; an account
	// cannot log into a portal for a role it does not hold
	if req.Role != "" && req.Role != user.Role {
		h.safeLogLogin(c, req.Email, false, "role mismatch")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Invalid email or password.",
			"code":    "INVALID_CREDENTIALS",
		})
		return
	}

	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.Email, user.Role, user.FullName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	h.safeLogLogin(c, req.Email, true, "")

	c.JSON(http.StatusOK, gin.H{
		"token":         accessToken,
		"refresh_token": refreshToken,
		"full_name":     user.FullName,
		"role":          user.Role,
		"email":         user.Email,
	})
}

// RefreshToken exchanges a valid refresh token for a new access token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "refresh_token is required",
			"code":    "INVALID_INPUT",
		})
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_token",
			"message": "Invalid or expired refresh token",
			"code":    "INVALID_TOKEN",
		})
		return
	}

	user, err := h.authService.GetUser(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh token"})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_token",
			"message": "Account no longer exists",
			"code":    "INVALID_TOKEN",
		})
		return
	}

	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.Email, user.Role, user.FullName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": accessToken})
}

// Register creates a staff account
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
			"code":    "INVALID_INPUT",
		})
		return
	}

	user, err := h.authService.RegisterUser(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
			"code":    "REGISTRATION_FAILED",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User registered successfully",
		"user_id": user.ID,
	})
}

// GetEmployees returns the employee directory for host selection
// GET /api/v1/auth/employees
func (h *AuthHandler) GetEmployees(c *gin.Context) {
	employees, err := h.authService.ListEmployees()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch employees"})
		return
	}

	c.JSON(http.StatusOK, employees)
}
