package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hrdocs/personnel-backend/internal/database"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for an unknown username or a wrong password
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrAccountDeactivated is returned when the account exists but is disabled
	ErrAccountDeactivated = errors.New("account deactivated")
	// ErrInvalidRefreshToken is returned for unknown, revoked or expired refresh tokens
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// AuthService handles login and token refresh
type AuthService struct {
	users         *database.UserRepository
	refreshTokens *database.RefreshTokenRepository
	jwtService    *jwt.Service
	logger        *logrus.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users *database.UserRepository, refreshTokens *database.RefreshTokenRepository, jwtService *jwt.Service, logger *logrus.Logger) *AuthService {
	return &AuthService{
		users:         users,
		refreshTokens: refreshTokens,
		jwtService:    jwtService,
		logger:        logger,
	}
}

func subjectOf(u *models.User) jwt.Subject {
	sub := jwt.Subject{UserID: u.ID, Username: u.Username, Role: string(u.Role)}
	if u.EmployeeID.Valid {
		id := u.EmployeeID.Int64
		sub.EmployeeID = &id
	}
	return sub
}

// Login verifies the password and issues an access/refresh token pair
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	resp, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to update last login")
	}
	return resp, nil
}

// Refresh exchanges a valid refresh token for a new pair and revokes the old one
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.LoginResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if _, err := s.refreshTokens.GetValid(ctx, refreshToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	if err := s.refreshTokens.Revoke(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// Logout revokes a refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.refreshTokens.Revoke(ctx, refreshToken)
}

// Me returns the account behind an access token
func (s *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user", userID)
	}
	return user, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*models.LoginResponse, error) {
	sub := subjectOf(user)
	access, err := s.jwtService.GenerateAccessToken(sub)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwtService.GenerateRefreshToken(sub)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	if err := s.refreshTokens.Store(ctx, user.ID, refresh, time.Now().Add(s.jwtService.RefreshTokenExpiry())); err != nil {
		return nil, err
	}

	return &models.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwtService.AccessTokenExpiry().Seconds()),
		TokenType:    "Bearer",
		User:         user,
	}, nil
}
