package handlers

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/internal/services"
	"github.com/hrdocs/personnel-backend/pkg/dates"
	"github.com/sirupsen/logrus"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DocumentHandler serves the document lifecycle
type DocumentHandler struct {
	documents    *services.DocumentService
	auditService *services.AuditService
	logger       *logrus.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documents *services.DocumentService, auditService *services.AuditService, logger *logrus.Logger) *DocumentHandler {
	return &DocumentHandler{documents: documents, auditService: auditService, logger: logger}
}

func (h *DocumentHandler) created(c *gin.Context, doc *models.Document, body interface{}) {
	h.auditService.Record(c.Request.Context(), auditEvent(c, services.AuditDocumentCreated, "document", doc.ID,
		map[string]interface{}{
			"type":         doc.Type,
			"employee_id":  doc.EmployeeID,
			"order_number": doc.OrderNumber,
			"status":       doc.Status,
		}))
	c.JSON(http.StatusCreated, body)
}

// CreateHire handles POST /documents/hire
func (h *DocumentHandler) CreateHire(c *gin.Context) {
	var req models.HireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	actor := actorFrom(c)
	res, err := h.documents.CreateHire(c.Request.Context(), &actor, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if res.Referral != nil {
		h.auditService.Record(c.Request.Context(), auditEvent(c, services.AuditDocumentCreated, "document", res.Referral.ID,
			map[string]interface{}{"type": res.Referral.Type, "employee_id": res.Referral.EmployeeID, "order_number": res.Referral.OrderNumber}))
	}
	h.created(c, res.Document, res)
}

// CreateDismissal handles POST /documents/dismissal
func (h *DocumentHandler) CreateDismissal(c *gin.Context) {
	var req models.DismissalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	actor := actorFrom(c)
	doc, err := h.documents.CreateDismissal(c.Request.Context(), &actor, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.created(c, doc, doc)
}

// CreateVacation handles POST /documents/vacation
func (h *DocumentHandler) CreateVacation(c *gin.Context) {
	var req models.VacationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	actor := actorFrom(c)
	doc, err := h.documents.CreateVacation(c.Request.Context(), &actor, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.created(c, doc, doc)
}

// CreateTraining handles POST /documents/training
func (h *DocumentHandler) CreateTraining(c *gin.Context) {
	var req models.TrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	actor := actorFrom(c)
	doc, err := h.documents.CreateTraining(c.Request.Context(), &actor, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.created(c, doc, doc)
}

// CreateInternshipReferral handles POST /documents/internship-referral
func (h *DocumentHandler) CreateInternshipReferral(c *gin.Context) {
	var req models.InternshipReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	actor := actorFrom(c)
	doc, err := h.documents.CreateInternshipReferral(c.Request.Context(), &actor, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.created(c, doc, doc)
}

// NextNumber handles GET /documents/next-number?type=&year=
func (h *DocumentHandler) NextNumber(c *gin.Context) {
	docType, err := models.ParseDocumentType(c.Query("type"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	year := 0
	if raw := c.Query("year"); raw != "" {
		if year, err = strconv.Atoi(raw); err != nil || year < 1900 || year > 9999 {
			badRequest(c, "Invalid year")
			return
		}
	}
	number, err := h.documents.NextOrderNumber(c.Request.Context(), docType, year)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": docType, "order_number": number})
}

// documentFilter reads status (comma separated), type, employee_id, search and limit
func documentFilter(c *gin.Context) (models.DocumentFilter, bool) {
	var f models.DocumentFilter
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			st, err := models.ParseDocumentStatus(strings.TrimSpace(s))
			if err != nil {
				badRequest(c, err.Error())
				return f, false
			}
			f.Statuses = append(f.Statuses, st)
		}
	}
	if raw := c.Query("type"); raw != "" {
		t, err := models.ParseDocumentType(raw)
		if err != nil {
			badRequest(c, err.Error())
			return f, false
		}
		f.Type = t
	}
	empID, ok := queryInt64(c, "employee_id")
	if !ok {
		return f, false
	}
	limit, ok := queryInt64(c, "limit")
	if !ok {
		return f, false
	}
	f.EmployeeID = empID
	f.Limit = int(limit)
	f.Search = c.Query("search")
	return f, true
}

// List handles GET /documents
func (h *DocumentHandler) List(c *gin.Context) {
	f, ok := documentFilter(c)
	if !ok {
		return
	}
	docs, err := h.documents.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// Get handles GET /documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	doc, err := h.documents.GetForActor(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Send handles POST /documents/:id/send
func (h *DocumentHandler) Send(c *gin.Context) {
	h.transition(c, services.AuditDocumentSent, h.documents.Send)
}

// Archive handles POST /documents/:id/archive
func (h *DocumentHandler) Archive(c *gin.Context) {
	h.transition(c, services.AuditDocumentArchived, h.documents.Archive)
}

func (h *DocumentHandler) transition(c *gin.Context, action string, fn func(ctx context.Context, id int64) (*models.DocumentListItem, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	doc, err := fn(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.auditService.Record(c.Request.Context(), auditEvent(c, action, "document", id, map[string]interface{}{"status": doc.Status}))
	c.JSON(http.StatusOK, doc)
}

// Sign handles POST /documents/:id/sign and /me/documents/:id/sign
func (h *DocumentHandler) Sign(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.documents.Sign(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.auditService.Record(c.Request.Context(), auditEvent(c, services.AuditDocumentSigned, "document", id,
		map[string]interface{}{
			"type":               res.Document.Type,
			"sha256":             res.Signature.FileHashSHA256,
			"employee_dismissed": res.EmployeeDismissed,
			"accounts_disabled":  res.AccountsDisabled,
		}))
	c.JSON(http.StatusOK, res)
}

// Preview handles GET /documents/:id/preview: renders the stored context and serves it
func (h *DocumentHandler) Preview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	path, err := h.documents.Preview(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	serveDocx(c, path)
}

// Download handles GET /documents/:id/download and /me/documents/:id/download
func (h *DocumentHandler) Download(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	doc, err := h.documents.GetForActor(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	path, err := h.documents.File(c.Request.Context(), doc)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	serveDocx(c, path)
}

func serveDocx(c *gin.Context, path string) {
	c.Header("Content-Type", docxContentType)
	c.FileAttachment(path, filepath.Base(path))
}

// WorkYear handles GET /vacations/work-year?employee_id=&date=
func (h *DocumentHandler) WorkYear(c *gin.Context) {
	empID, ok := queryInt64(c, "employee_id")
	if !ok {
		return
	}
	if empID == 0 {
		badRequest(c, "employee_id is required")
		return
	}
	anchor := time.Now()
	if raw := c.Query("date"); raw != "" {
		d, err := dates.ParseISO(raw)
		if err != nil {
			badRequest(c, fmt.Sprintf("Invalid date: %v", err))
			return
		}
		anchor = d
	}
	period, err := h.documents.WorkYearFor(c.Request.Context(), empID, anchor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, period)
}
