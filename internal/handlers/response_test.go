package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		confirm    bool
	}{
		{"validation", &services.ValidationError{Field: "email", Message: "is required"}, http.StatusBadRequest, "validation_error", false},
		{"conflict", &services.ConflictError{Message: "overlap"}, http.StatusConflict, "conflict", false},
		{"confirmation", &services.ConfirmationRequiredError{Message: "over limit"}, http.StatusConflict, "confirmation_required", true},
		{"invalid state", &services.InvalidStateError{Message: "not sent"}, http.StatusUnprocessableEntity, "invalid_state", false},
		{"not found", &services.NotFoundError{Entity: "document", ID: 7}, http.StatusNotFound, "not_found", false},
		{"wrapped no rows", fmt.Errorf("failed to get: %w", sql.ErrNoRows), http.StatusNotFound, "not_found", false},
		{"forbidden", &services.ForbiddenError{Message: "not yours"}, http.StatusForbidden, "forbidden", false},
		{"storage failure", errors.New("connection reset"), http.StatusInternalServerError, "internal_error", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/x", func(c *gin.Context) { respondError(c, quietLogger(), tt.err) })

			w := perform(router, http.MethodGet, "/x", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, tt.confirm, resp.RequiresConfirmation)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, resp.Message, "connection reset")
			}
		})
	}
}

func TestPathID(t *testing.T) {
	router := gin.New()
	router.GET("/items/:id", func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	assert.Equal(t, http.StatusOK, perform(router, http.MethodGet, "/items/42", nil).Code)
	for _, bad := range []string{"0", "-3", "abc"} {
		w := perform(router, http.MethodGet, "/items/"+bad, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}

func TestQueryInt64(t *testing.T) {
	router := gin.New()
	router.GET("/x", func(c *gin.Context) {
		v, ok := queryInt64(c, "limit")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"limit": v})
	})

	assert.Equal(t, http.StatusOK, perform(router, http.MethodGet, "/x", nil).Code)
	assert.Equal(t, http.StatusOK, perform(router, http.MethodGet, "/x?limit=5", nil).Code)
	assert.Equal(t, http.StatusBadRequest, perform(router, http.MethodGet, "/x?limit=-1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, perform(router, http.MethodGet, "/x?limit=many", nil).Code)
}

func TestAuditEvent(t *testing.T) {
	router := gin.New()
	var got services.AuditEvent
	employeeID := int64(3)
	router.POST("/documents/:id/sign", asUser(models.RoleEmployee, &employeeID), func(c *gin.Context) {
		got = auditEvent(c, services.AuditDocumentSigned, "document", int64(12), map[string]interface{}{"k": "v"})
		c.Status(http.StatusNoContent)
	})

	perform(router, http.MethodPost, "/documents/12/sign", nil)

	assert.Equal(t, services.AuditDocumentSigned, got.Action)
	assert.Equal(t, "12", got.EntityID)
	if assert.NotNil(t, got.UserID) {
		assert.Equal(t, int64(1), *got.UserID)
	}
	assert.Equal(t, "v", got.Details["k"])
}
