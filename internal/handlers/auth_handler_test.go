package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/hrdocs/personnel-backend/internal/config"
	"github.com/hrdocs/personnel-backend/internal/database"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/internal/services"
	"github.com/hrdocs/personnel-backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var userRowColumns = []string{"id", "username", "password_hash", "role", "is_active", "employee_id", "last_login_at", "created_at", "updated_at"}

func setupAuthRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	db, mock := setupTestDB(t)
	logger := quietLogger()
	jwtService := jwt.NewService("test-secret", "test-refresh-secret", time.Hour, 7*24*time.Hour)
	authService := services.NewAuthService(database.NewUserRepository(db), database.NewRefreshTokenRepository(db), jwtService, logger)
	audit := services.NewAuditService(database.NewAuditLogRepository(db), false, logger)
	h := NewAuthHandler(authService, nil, audit, logger)

	router := gin.New()
	router.POST("/auth/login", h.Login)
	router.POST("/auth/refresh", h.Refresh)
	router.GET("/auth/me", asUser(models.RoleHR, nil), h.Me)
	return router, mock
}

func userRow(t *testing.T, password string, active bool) *sqlmock.Rows {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now()
	return sqlmock.NewRows(userRowColumns).
		AddRow(1, "kovalenko", string(hash), "hr", active, nil, nil, now, now)
}

func TestLogin_Success(t *testing.T) {
	router, mock := setupAuthRouter(t)

	mock.ExpectQuery(`SELECT (.+) FROM users u WHERE u.username = \$1`).
		WithArgs("kovalenko").
		WillReturnRows(userRow(t, "s3cret-pass", true))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(sqlmock.AnyArg(), int64(1), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET last_login_at").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := perform(router, http.MethodPost, "/auth/login", gin.H{"username": "kovalenko", "password": "s3cret-pass"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.NotContains(t, w.Body.String(), "password_hash")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_WrongPassword(t *testing.T) {
	router, mock := setupAuthRouter(t)

	mock.ExpectQuery(`SELECT (.+) FROM users u WHERE u.username = \$1`).
		WithArgs("kovalenko").
		WillReturnRows(userRow(t, "s3cret-pass", true))

	w := perform(router, http.MethodPost, "/auth/login", gin.H{"username": "kovalenko", "password": "wrong"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, w).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_Deactivated(t *testing.T) {
	router, mock := setupAuthRouter(t)

	mock.ExpectQuery(`SELECT (.+) FROM users u WHERE u.username = \$1`).
		WithArgs("kovalenko").
		WillReturnRows(userRow(t, "s3cret-pass", false))

	w := perform(router, http.MethodPost, "/auth/login", gin.H{"username": "kovalenko", "password": "s3cret-pass"})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "ACCOUNT_DEACTIVATED", decodeError(t, w).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_MissingFields(t *testing.T) {
	router, mock := setupAuthRouter(t)

	w := perform(router, http.MethodPost, "/auth/login", gin.H{"username": "kovalenko"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_DatabaseFailure(t *testing.T) {
	router, mock := setupAuthRouter(t)

	mock.ExpectQuery(`SELECT (.+) FROM users u WHERE u.username = \$1`).
		WillReturnError(errors.New("connection refused"))

	w := perform(router, http.MethodPost, "/auth/login", gin.H{"username": "kovalenko", "password": "x"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefresh_InvalidToken(t *testing.T) {
	router, mock := setupAuthRouter(t)

	w := perform(router, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": "not-a-jwt"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", decodeError(t, w).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMe_UserNotFound(t *testing.T) {
	router, mock := setupAuthRouter(t)

	mock.ExpectQuery(`SELECT (.+) FROM users u WHERE u.id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	w := perform(router, http.MethodGet, "/auth/me", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_RateLimited(t *testing.T) {
	db, mock := setupTestDB(t)
	logger := quietLogger()
	jwtService := jwt.NewService("test-secret", "test-refresh-secret", time.Hour, 7*24*time.Hour)
	logs := database.NewAuditLogRepository(db)
	limiter := services.NewRateLimitService(logs, config.RateLimitConfig{
		Enabled: true, MaxUserFailures: 3, UserWindow: 15 * time.Minute,
	})
	h := NewAuthHandler(services.NewAuthService(database.NewUserRepository(db), database.NewRefreshTokenRepository(db), jwtService, logger),
		limiter, services.NewAuditService(logs, false, logger), logger)
	router := gin.New()
	router.POST("/auth/login", h.Login)

	mock.ExpectQuery(`FROM audit_logs WHERE action = \$1 AND entity_type = 'user'`).
		WithArgs("login_failed", "kovalenko", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count", "last"}).AddRow(3, time.Now()))

	w := perform(router, http.MethodPost, "/auth/login", gin.H{"username": "kovalenko", "password": "guess"})

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "TOO_MANY_ATTEMPTS", decodeError(t, w).Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
