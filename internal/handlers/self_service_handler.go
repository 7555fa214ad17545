package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hrdocs/personnel-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// SelfServiceHandler serves the employee's own records. Routes are mounted
// behind RequireEmployeeLink so the actor always carries an employee id.
type SelfServiceHandler struct {
	directory   *services.DirectoryService
	documents   *services.DocumentService
	internships *services.InternshipService
	logger      *logrus.Logger
}

// NewSelfServiceHandler creates a new self-service handler
func NewSelfServiceHandler(
	directory *services.DirectoryService,
	documents *services.DocumentService,
	internships *services.InternshipService,
	logger *logrus.Logger,
) *SelfServiceHandler {
	return &SelfServiceHandler{directory: directory, documents: documents, internships: internships, logger: logger}
}

// Profile handles GET /me/profile
func (h *SelfServiceHandler) Profile(c *gin.Context) {
	emp, err := h.directory.GetEmployee(c.Request.Context(), *actorFrom(c).EmployeeID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, emp)
}

// Documents handles GET /me/documents
func (h *SelfServiceHandler) Documents(c *gin.Context) {
	docs, err := h.documents.ListForEmployee(c.Request.Context(), *actorFrom(c).EmployeeID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// Internship handles GET /me/internship; the body is null when there is none
func (h *SelfServiceHandler) Internship(c *gin.Context) {
	item, err := h.internships.ForEmployee(c.Request.Context(), *actorFrom(c).EmployeeID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Notes handles GET /me/notes
func (h *SelfServiceHandler) Notes(c *gin.Context) {
	notes, err := h.documents.Notes(c.Request.Context(), *actorFrom(c).EmployeeID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}
