package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hrdocs/personnel-backend/internal/middleware"
	"github.com/hrdocs/personnel-backend/internal/services"
	"github.com/hrdocs/personnel-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error                string      `json:"error"`
	Message              string      `json:"message"`
	Code                 string      `json:"code,omitempty"`
	Details              interface{} `json:"details,omitempty"`
	RequiresConfirmation bool        `json:"requires_confirmation,omitempty"`
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: message})
}

// respondError maps service errors onto HTTP statuses. Anything unrecognised
// is logged and reported as a generic 500.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var (
		validation *services.ValidationError
		conflict   *services.ConflictError
		state      *services.InvalidStateError
		confirm    *services.ConfirmationRequiredError
		notFound   *services.NotFoundError
		forbidden  *services.ForbiddenError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: validation.Error(), Details: gin.H{"field": validation.Field}})
	case errors.As(err, &confirm):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "confirmation_required", Message: confirm.Message, Details: confirm.Details, RequiresConfirmation: true})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict", Message: conflict.Message, Details: conflict.Details})
	case errors.As(err, &state):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "invalid_state", Message: state.Message})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: notFound.Error()})
	case errors.Is(err, sql.ErrNoRows):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "Resource not found"})
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: forbidden.Message})
	default:
		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"request_id": c.GetString("request_id"),
		}).WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "Internal server error"})
	}
}

// pathID parses a positive integer path parameter, writing a 400 when it is not one
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// queryInt64 returns a non-negative integer query parameter, 0 when absent
func queryInt64(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return v, true
}

// actorFrom builds the service actor from the authenticated user
func actorFrom(c *gin.Context) services.Actor {
	u := middleware.MustGetUserContext(c)
	return services.Actor{UserID: u.UserID, Username: u.Username, Role: u.Role, EmployeeID: u.EmployeeID}
}

// auditEvent fills the request-derived audit fields
func auditEvent(c *gin.Context, action, entityType string, entityID interface{}, details map[string]interface{}) services.AuditEvent {
	ev := services.AuditEvent{
		Action:     action,
		EntityType: entityType,
		IPAddress:  utils.ClientIP(c),
		UserAgent:  utils.UserAgent(c),
		Details:    details,
	}
	if entityID != nil {
		switch v := entityID.(type) {
		case int64:
			ev.EntityID = strconv.FormatInt(v, 10)
		case string:
			ev.EntityID = v
		}
	}
	if u, ok := middleware.GetUserContext(c); ok {
		id := u.UserID
		ev.UserID = &id
	}
	return ev
}
