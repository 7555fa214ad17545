package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// DirectoryHandler serves departments, positions and employee records
type DirectoryHandler struct {
	directory    *services.DirectoryService
	auditService *services.AuditService
	logger       *logrus.Logger
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(directory *services.DirectoryService, auditService *services.AuditService, logger *logrus.Logger) *DirectoryHandler {
	return &DirectoryHandler{directory: directory, auditService: auditService, logger: logger}
}

func bindName(c *gin.Context) (string, bool) {
	var req models.NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return "", false
	}
	return req.Name, true
}

func (h *DirectoryHandler) deleted(c *gin.Context, entity string, id int64) {
	h.auditService.Record(c.Request.Context(), auditEvent(c, services.AuditDirectoryDeleted, entity, id, nil))
	c.Status(http.StatusNoContent)
}

// ListDepartments handles GET /departments
func (h *DirectoryHandler) ListDepartments(c *gin.Context) {
	deps, err := h.directory.ListDepartments(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, deps)
}

// CreateDepartment handles POST /departments
func (h *DirectoryHandler) CreateDepartment(c *gin.Context) {
	name, ok := bindName(c)
	if !ok {
		return
	}
	dep, err := h.directory.CreateDepartment(c.Request.Context(), name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dep)
}

// RenameDepartment handles PUT /departments/:id
func (h *DirectoryHandler) RenameDepartment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	name, ok := bindName(c)
	if !ok {
		return
	}
	if err := h.directory.RenameDepartment(c.Request.Context(), id, name); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteDepartment handles DELETE /departments/:id
func (h *DirectoryHandler) DeleteDepartment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.directory.DeleteDepartment(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.deleted(c, "department", id)
}

// ListDepartmentPositions handles GET /departments/:id/positions
func (h *DirectoryHandler) ListDepartmentPositions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	positions, err := h.directory.ListPositions(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, positions)
}

// LinkPosition handles PUT /departments/:id/positions/:positionId
func (h *DirectoryHandler) LinkPosition(c *gin.Context) {
	depID, ok := pathID(c, "id")
	if !ok {
		return
	}
	posID, ok := pathID(c, "positionId")
	if !ok {
		return
	}
	if err := h.directory.LinkPosition(c.Request.Context(), depID, posID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UnlinkPosition handles DELETE /departments/:id/positions/:positionId
func (h *DirectoryHandler) UnlinkPosition(c *gin.Context) {
	depID, ok := pathID(c, "id")
	if !ok {
		return
	}
	posID, ok := pathID(c, "positionId")
	if !ok {
		return
	}
	if err := h.directory.UnlinkPosition(c.Request.Context(), depID, posID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListPositions handles GET /positions[?department_id=]
func (h *DirectoryHandler) ListPositions(c *gin.Context) {
	depID, ok := queryInt64(c, "department_id")
	if !ok {
		return
	}
	positions, err := h.directory.ListPositions(c.Request.Context(), depID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, positions)
}

// CreatePosition handles POST /positions
func (h *DirectoryHandler) CreatePosition(c *gin.Context) {
	name, ok := bindName(c)
	if !ok {
		return
	}
	pos, err := h.directory.CreatePosition(c.Request.Context(), name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, pos)
}

// RenamePosition handles PUT /positions/:id
func (h *DirectoryHandler) RenamePosition(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	name, ok := bindName(c)
	if !ok {
		return
	}
	if err := h.directory.RenamePosition(c.Request.Context(), id, name); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeletePosition handles DELETE /positions/:id
func (h *DirectoryHandler) DeletePosition(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.directory.DeletePosition(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.deleted(c, "position", id)
}

func employeeFilter(c *gin.Context) (models.EmployeeFilter, bool) {
	depID, ok := queryInt64(c, "department_id")
	if !ok {
		return models.EmployeeFilter{}, false
	}
	return models.EmployeeFilter{
		Search:       c.Query("search"),
		DepartmentID: depID,
		Status:       models.EmploymentStatus(c.Query("status")),
		ActiveOnly:   c.Query("active_only") == "true",
	}, true
}

// ListEmployees handles GET /employees
func (h *DirectoryHandler) ListEmployees(c *gin.Context) {
	f, ok := employeeFilter(c)
	if !ok {
		return
	}
	employees, err := h.directory.ListEmployees(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, employees)
}

// GetEmployee handles GET /employees/:id
func (h *DirectoryHandler) GetEmployee(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	emp, err := h.directory.GetEmployee(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, emp)
}

// UpdateEmployee handles PUT /employees/:id
func (h *DirectoryHandler) UpdateEmployee(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in models.EmployeeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	emp, err := h.directory.UpdateEmployee(c.Request.Context(), id, &in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, emp)
}

// DeleteEmployee handles DELETE /employees/:id
func (h *DirectoryHandler) DeleteEmployee(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.directory.DeleteEmployee(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.deleted(c, "employee", id)
}
