package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/internal/services"
	"github.com/sirupsen/logrus"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler serves the dashboard, registry exports, accounts and settings
type AdminHandler struct {
	dashboard    *services.DashboardService
	exports      *services.ExportService
	users        *services.UserService
	auditService *services.AuditService
	logger       *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	dashboard *services.DashboardService,
	exports *services.ExportService,
	users *services.UserService,
	auditService *services.AuditService,
	logger *logrus.Logger,
) *AdminHandler {
	return &AdminHandler{dashboard: dashboard, exports: exports, users: users, auditService: auditService, logger: logger}
}

// SetActiveRequest is the body of PUT /users/:id/active
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// CreateUserRequest is the body of POST /users
type CreateUserRequest struct {
	Username string          `json:"username" binding:"required"`
	Password string          `json:"password" binding:"required"`
	Role     models.UserRole `json:"role" binding:"required"`
}

// Dashboard handles GET /dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportEmployees handles GET /exports/employees.xlsx
func (h *AdminHandler) ExportEmployees(c *gin.Context) {
	f, ok := employeeFilter(c)
	if !ok {
		return
	}
	h.sendWorkbook(c, func(ctx context.Context) (*bytes.Buffer, string, error) {
		return h.exports.ExportEmployees(ctx, f)
	})
}

// ExportDocuments handles GET /exports/documents.xlsx
func (h *AdminHandler) ExportDocuments(c *gin.Context) {
	f, ok := documentFilter(c)
	if !ok {
		return
	}
	h.sendWorkbook(c, func(ctx context.Context) (*bytes.Buffer, string, error) {
		return h.exports.ExportDocuments(ctx, f)
	})
}

func (h *AdminHandler) sendWorkbook(c *gin.Context, build func(context.Context) (*bytes.Buffer, string, error)) {
	buf, filename, err := build(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ListUsers handles GET /users?search=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser handles POST /users (admin and hr accounts only)
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username, password and role are required")
		return
	}
	id, err := h.users.CreateStaffAccount(c.Request.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.auditService.Record(c.Request.Context(), auditEvent(c, services.AuditAccountChanged, "user", id,
		map[string]interface{}{"created": true, "role": req.Role}))
	c.JSON(http.StatusCreated, gin.H{"id": id, "username": req.Username, "role": req.Role})
}

// SetActive handles PUT /users/:id/active
func (h *AdminHandler) SetActive(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "active is required")
		return
	}
	if err := h.users.SetActive(c.Request.Context(), actorFrom(c), id, *req.Active); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.auditService.Record(c.Request.Context(), auditEvent(c, services.AuditAccountChanged, "user", id,
		map[string]interface{}{"active": *req.Active}))
	c.JSON(http.StatusOK, gin.H{"id": id, "is_active": *req.Active})
}

// ResetPassword handles POST /users/:id/reset-password. The new password is
// returned once and also written to the credentials directory.
func (h *AdminHandler) ResetPassword(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	creds, err := h.users.ResetPassword(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.auditService.Record(c.Request.Context(), auditEvent(c, services.AuditPasswordReset, "user", id, nil))
	c.JSON(http.StatusOK, creds)
}

// ListSettings handles GET /settings
func (h *AdminHandler) ListSettings(c *gin.Context) {
	settings, err := h.users.Settings(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSetting handles PUT /settings/:key
func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	key := c.Param("key")
	var req models.UpdateAppSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if err := h.users.UpdateSetting(c.Request.Context(), key, req.Value); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.auditService.Record(c.Request.Context(), auditEvent(c, services.AuditSettingChanged, "setting", key,
		map[string]interface{}{"value": req.Value}))
	c.JSON(http.StatusOK, gin.H{"key": key, "value": req.Value})
}

// AuditLogs handles GET /audit-logs?user_id=&limit=
func (h *AdminHandler) AuditLogs(c *gin.Context) {
	userID, ok := queryInt64(c, "user_id")
	if !ok {
		return
	}
	limit, ok := queryInt64(c, "limit")
	if !ok {
		return
	}
	logs, err := h.auditService.Recent(c.Request.Context(), userID, int(limit))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
