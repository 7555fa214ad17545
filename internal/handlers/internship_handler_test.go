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

func setupInternshipRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	db, mock := setupTestDB(t)
	logger := quietLogger()
	repos := database.NewRepositories(db)
	internships := services.NewInternshipService(database.NewTransactor(db), repos.Internships, config.DefaultPolicy(), logger)
	h := NewInternshipHandler(internships, services.NewAuditService(repos.AuditLogs, false, logger), logger)

	router := gin.New()
	group := router.Group("/internships", asUser(models.RoleHR, nil))
	group.GET("", h.List)
	group.POST("/sweep", h.Sweep)
	group.POST("/:id/extend", h.Extend)
	group.POST("/:id/complete", h.Complete)
	return router, mock
}

func TestSweepInternships(t *testing.T) {
	router, mock := setupInternshipRouter(t)

	mock.ExpectExec(`UPDATE internships SET status = 'completed'`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	w := perform(router, http.MethodPost, "/internships/sweep", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp map[string]int64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp["completed"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListInternships_UnknownStatus(t *testing.T) {
	router, mock := setupInternshipRouter(t)

	w := perform(router, http.MethodGet, "/internships?status=paused", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decodeError(t, w).Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExtendInternship_Validation(t *testing.T) {
	tests := []struct {
		name string
		path string
		body interface{}
	}{
		{"missing months", "/internships/4/extend", gin.H{"note": "x"}},
		{"too many months", "/internships/4/extend", gin.H{"months": 13}},
		{"negative months", "/internships/4/extend", gin.H{"months": -1}},
		{"bad id", "/internships/zero/extend", gin.H{"months": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mock := setupInternshipRouter(t)

			w := perform(router, http.MethodPost, tt.path, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCompleteInternship_NotFound(t *testing.T) {
	router, mock := setupInternshipRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM internships (.+) FOR UPDATE`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	w := perform(router, http.MethodPost, "/internships/9/complete", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
