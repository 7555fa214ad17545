package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// InternshipHandler serves internship tracking
type InternshipHandler struct {
	internships  *services.InternshipService
	auditService *services.AuditService
	logger       *logrus.Logger
}

// NewInternshipHandler creates a new internship handler
func NewInternshipHandler(internships *services.InternshipService, auditService *services.AuditService, logger *logrus.Logger) *InternshipHandler {
	return &InternshipHandler{internships: internships, auditService: auditService, logger: logger}
}

// ExtendRequest is the body of POST /internships/:id/extend
type ExtendRequest struct {
	Months int    `json:"months" binding:"required"`
	Note   string `json:"note"`
}

// NoteRequest is the optional body of complete/fail
type NoteRequest struct {
	Note string `json:"note"`
}

// List handles GET /internships?status=&search=
func (h *InternshipHandler) List(c *gin.Context) {
	items, err := h.internships.List(c.Request.Context(), models.InternshipFilter{
		Status: models.InternshipStatus(c.Query("status")),
		Search: c.Query("search"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Get handles GET /internships/:id
func (h *InternshipHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.internships.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Counters handles GET /internships/counters
func (h *InternshipHandler) Counters(c *gin.Context) {
	counters, err := h.internships.Counters(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, counters)
}

// Sweep handles POST /internships/sweep
func (h *InternshipHandler) Sweep(c *gin.Context) {
	n, err := h.internships.SweepOverdue(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.auditService.Record(c.Request.Context(), auditEvent(c, services.AuditInternshipsSwept, "internship", nil,
		map[string]interface{}{"completed": n, "source": "api"}))
	c.JSON(http.StatusOK, gin.H{"completed": n})
}

// Extend handles POST /internships/:id/extend
func (h *InternshipHandler) Extend(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req ExtendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "months is required")
		return
	}
	h.respond(c, id, "extend", map[string]interface{}{"months": req.Months}, func(ctx context.Context) (*models.InternshipListItem, error) {
		return h.internships.Extend(ctx, id, req.Months, req.Note)
	})
}

// Complete handles POST /internships/:id/complete
func (h *InternshipHandler) Complete(c *gin.Context) {
	h.finish(c, "complete", h.internships.CompleteNow)
}

// Fail handles POST /internships/:id/fail
func (h *InternshipHandler) Fail(c *gin.Context) {
	h.finish(c, "fail", h.internships.MarkFailed)
}

func (h *InternshipHandler) finish(c *gin.Context, action string, fn func(context.Context, int64, string) (*models.InternshipListItem, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req NoteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request body")
			return
		}
	}
	h.respond(c, id, action, nil, func(ctx context.Context) (*models.InternshipListItem, error) {
		return fn(ctx, id, req.Note)
	})
}

func (h *InternshipHandler) respond(c *gin.Context, id int64, action string, details map[string]interface{}, fn func(context.Context) (*models.InternshipListItem, error)) {
	item, err := fn(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if details == nil {
		details = map[string]interface{}{}
	}
	details["action"] = action
	details["status"] = item.Status
	h.auditService.Record(c.Request.Context(), auditEvent(c, services.AuditInternshipChanged, "internship", id, details))
	c.JSON(http.StatusOK, item)
}
