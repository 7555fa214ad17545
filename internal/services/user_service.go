package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrdocs/personnel-backend/internal/database"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// UserService is the admin view of login accounts and application settings
type UserService struct {
	tx          *database.Transactor
	repos       *database.Repositories
	credentials *CredentialService
	logger      *logrus.Logger
}

// NewUserService creates a new user service
func NewUserService(tx *database.Transactor, repos *database.Repositories, credentials *CredentialService, logger *logrus.Logger) *UserService {
	return &UserService{tx: tx, repos: repos, credentials: credentials, logger: logger}
}

// List returns accounts with the linked employee names
func (s *UserService) List(ctx context.Context, search string) ([]models.UserListItem, error) {
	return s.repos.Users.List(ctx, strings.TrimSpace(search))
}

// SetActive enables or disables an account. Disabling also revokes its refresh tokens.
func (s *UserService) SetActive(ctx context.Context, actor Actor, userID int64, active bool) error {
	if !active && actor.UserID == userID {
		return &InvalidStateError{Message: "you cannot deactivate your own account"}
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repos.Users.SetActive(ctx, userID, active); err != nil {
			return notFound(err, "user", userID)
		}
		if !active {
			if err := s.repos.RefreshTokens.RevokeAllForUser(ctx, userID); err != nil {
				return err
			}
		}
		s.logger.WithFields(logrus.Fields{"user_id": userID, "active": active}).Info("Account status changed")
		return nil
	})
}

// ResetPassword issues a new temporary password and revokes existing sessions
func (s *UserService) ResetPassword(ctx context.Context, userID int64) (*models.Credentials, error) {
	var creds *models.Credentials
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if creds, err = s.credentials.ResetPassword(ctx, userID); err != nil {
			return err
		}
		return s.repos.RefreshTokens.RevokeAllForUser(ctx, userID)
	})
	if err != nil {
		if creds != nil {
			removeFiles([]string{creds.ExportPath})
		}
		return nil, err
	}
	return creds, nil
}

// CreateStaffAccount creates an admin or hr login
func (s *UserService) CreateStaffAccount(ctx context.Context, username, password string, role models.UserRole) (int64, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return 0, invalid("username", "is required")
	}
	if role != models.RoleAdmin && role != models.RoleHR {
		return 0, invalid("role", "must be admin or hr")
	}
	if len(password) < 8 {
		return 0, invalid("password", "must be at least 8 characters")
	}
	exists, err := s.repos.Users.UsernameExists(ctx, username)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, &ConflictError{Message: fmt.Sprintf("username %s is taken", username)}
	}
	hash, err := s.credentials.hash(password)
	if err != nil {
		return 0, err
	}
	return s.repos.Users.Create(ctx, username, hash, role, nil)
}

// Settings returns every application setting
func (s *UserService) Settings(ctx context.Context) ([]models.AppSetting, error) {
	return s.repos.Settings.GetAll(ctx)
}

// UpdateSetting changes one setting. director_employee_id must name an existing employee.
func (s *UserService) UpdateSetting(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" {
		return invalid("key", "is required")
	}
	if key == models.SettingDirectorEmployeeID && value != "" {
		var id int64
		if _, err := fmt.Sscan(value, &id); err != nil {
			return invalid("value", "must be an employee id")
		}
		if _, err := s.repos.Employees.GetByID(ctx, id); err != nil {
			return notFound(err, "employee", id)
		}
	}
	return s.repos.Settings.Upsert(ctx, key, value)
}
