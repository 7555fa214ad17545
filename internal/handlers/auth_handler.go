package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hrdocs/personnel-backend/internal/middleware"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/internal/services"
	"github.com/hrdocs/personnel-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService  *services.AuthService
	rateLimit    *services.RateLimitService
	auditService *services.AuditService
	logger       *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, rateLimit *services.RateLimitService, auditService *services.AuditService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, rateLimit: rateLimit, auditService: auditService, logger: logger}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Username and password are required")
		return
	}

	if err := h.rateLimit.CheckLogin(c.Request.Context(), req.Username, utils.ClientIP(c)); err != nil {
		var limited *services.RateLimitError
		if errors.As(err, &limited) {
			retry := int(time.Until(limited.RetryAfter).Seconds()) + 1
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate_limited", Message: limited.Message, Code: "TOO_MANY_ATTEMPTS"})
			return
		}
		respondError(c, h.logger, err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			h.auditService.Record(c.Request.Context(), auditEvent(c, services.AuditLoginFailed, "user", req.Username, nil))
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid_credentials", Message: err.Error(), Code: "INVALID_CREDENTIALS"})
		case errors.Is(err, services.ErrAccountDeactivated):
			h.auditService.Record(c.Request.Context(), auditEvent(c, services.AuditLoginFailed, "user", req.Username,
				map[string]interface{}{"reason": "deactivated"}))
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "account_deactivated", Message: err.Error(), Code: "ACCOUNT_DEACTIVATED"})
		default:
			respondError(c, h.logger, err)
		}
		return
	}

	ev := auditEvent(c, services.AuditLogin, "user", resp.User.ID, nil)
	ev.UserID = &resp.User.ID
	h.auditService.Record(c.Request.Context(), ev)
	c.JSON(http.StatusOK, resp)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "refresh_token is required")
		return
	}

	resp, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRefreshToken):
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid_token", Message: err.Error(), Code: "INVALID_REFRESH_TOKEN"})
		case errors.Is(err, services.ErrAccountDeactivated):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "account_deactivated", Message: err.Error(), Code: "ACCOUNT_DEACTIVATED"})
		default:
			respondError(c, h.logger, err)
		}
		return
	}

	ev := auditEvent(c, services.AuditTokenRefresh, "user", resp.User.ID, nil)
	ev.UserID = &resp.User.ID
	h.auditService.Record(c.Request.Context(), ev)
	c.JSON(http.StatusOK, resp)
}

// Logout handles POST /api/v1/auth/logout. Unknown tokens are ignored.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "refresh_token is required")
		return
	}
	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil && !errors.Is(err, sql.ErrNoRows) {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)
	user, err := h.authService.Me(c.Request.Context(), userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
