package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/hrdocs/personnel-backend/internal/config"
	"github.com/hrdocs/personnel-backend/internal/database"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDocumentRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	db, mock := setupTestDB(t)
	logger := quietLogger()
	repos := database.NewRepositories(db)
	documents := services.NewDocumentService(database.NewTransactor(db), repos, nil, nil,
		services.StaticSettings{}, config.DefaultPolicy(), logger)
	h := NewDocumentHandler(documents, services.NewAuditService(repos.AuditLogs, false, logger), logger)

	router := gin.New()
	staff := router.Group("", asUser(models.RoleHR, nil))
	staff.GET("/documents", h.List)
	staff.GET("/documents/next-number", h.NextNumber)
	staff.GET("/vacations/work-year", h.WorkYear)
	return router, mock
}

func TestNextNumber(t *testing.T) {
	router, mock := setupDocumentRouter(t)

	mock.ExpectQuery(`SELECT order_number FROM documents WHERE type = \$1 AND order_number LIKE \$2`).
		WithArgs("VACATION", "%/2025").
		WillReturnRows(sqlmock.NewRows([]string{"order_number"}).AddRow("1/2025").AddRow("7/2025").AddRow("x/2025"))

	w := perform(router, http.MethodGet, "/documents/next-number?type=vacation&year=2025", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "8/2025", resp["order_number"])
	assert.Equal(t, "VACATION", resp["type"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextNumber_BadInput(t *testing.T) {
	router, mock := setupDocumentRouter(t)

	for _, q := range []string{"?type=bonus", "", "?type=HIRE&year=20x5", "?type=HIRE&year=12"} {
		w := perform(router, http.MethodGet, "/documents/next-number"+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDocuments_BadFilter(t *testing.T) {
	router, mock := setupDocumentRouter(t)

	for _, q := range []string{"?status=sent,lost", "?type=memo", "?employee_id=abc", "?limit=-5"} {
		w := perform(router, http.MethodGet, "/documents"+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkYear_RequiresEmployee(t *testing.T) {
	router, mock := setupDocumentRouter(t)

	w := perform(router, http.MethodGet, "/vacations/work-year", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
