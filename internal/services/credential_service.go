package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/hrdocs/personnel-backend/internal/config"
	"github.com/hrdocs/personnel-backend/internal/database"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// CredentialService creates login accounts and their one-time credential exports
type CredentialService struct {
	users          *database.UserRepository
	dir            string
	bcryptCost     int
	passwordLength int
}

// NewCredentialService creates a new credential service
func NewCredentialService(users *database.UserRepository, storage config.StorageConfig, security config.SecurityConfig) *CredentialService {
	return &CredentialService{
		users:          users,
		dir:            storage.CredentialsDir,
		bcryptCost:     security.BcryptCost,
		passwordLength: security.TempPasswordLength,
	}
}

// SuggestUsername derives a login from the email local part, or from
// "lastname_f" when there is no email.
func SuggestUsername(email, lastName, firstName string) string {
	var base string
	if at := strings.Index(email, "@"); at > 0 {
		base = email[:at]
	} else {
		last := []rune(strings.TrimSpace(lastName))
		if len(last) > 10 {
			last = last[:10]
		}
		first := []rune(strings.TrimSpace(firstName))
		if len(first) > 1 {
			first = first[:1]
		}
		base = string(last) + "_" + string(first)
	}

	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '_', r == '-':
			return r
		}
		return -1
	}, base)
	if base == "" || base == "_" {
		return "user"
	}
	return base
}

func (s *CredentialService) uniqueUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 2; ; i++ {
		exists, err := s.users.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(i)
	}
}

func (s *CredentialService) password(initial string) (string, error) {
	if initial = strings.TrimSpace(initial); initial != "" {
		if len(initial) < 8 {
			return "", invalid("initial_password", "must be at least 8 characters")
		}
		return initial, nil
	}
	return utils.GeneratePassword(s.passwordLength)
}

func (s *CredentialService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}

// CreateEmployeeAccount creates an employee-role login for a new hire and
// writes the credential export. The caller removes ExportPath if the
// surrounding transaction fails.
func (s *CredentialService) CreateEmployeeAccount(ctx context.Context, emp *models.EmployeeInput, employeeID int64, initialPassword string) (*models.Credentials, error) {
	username, err := s.uniqueUsername(ctx, SuggestUsername(emp.Email, emp.LastName, emp.FirstName))
	if err != nil {
		return nil, err
	}
	password, err := s.password(initialPassword)
	if err != nil {
		return nil, err
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	userID, err := s.users.Create(ctx, username, hash, models.RoleEmployee, &employeeID)
	if err != nil {
		return nil, err
	}

	creds := &models.Credentials{UserID: userID, Username: username, Password: password}
	if creds.ExportPath, err = s.writeExport(employeeID, username, password); err != nil {
		return nil, err
	}
	return creds, nil
}

// ResetPassword sets a new random password and writes a fresh export
func (s *CredentialService) ResetPassword(ctx context.Context, userID int64) (*models.Credentials, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user", userID)
	}
	password, err := utils.GeneratePassword(s.passwordLength)
	if err != nil {
		return nil, err
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return nil, err
	}

	creds := &models.Credentials{UserID: userID, Username: user.Username, Password: password}
	if user.EmployeeID.Valid {
		if creds.ExportPath, err = s.writeExport(user.EmployeeID.Int64, user.Username, password); err != nil {
			return nil, err
		}
	}
	return creds, nil
}

func (s *CredentialService) writeExport(employeeID int64, username, password string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create credentials dir: %w", err)
	}
	path := filepath.Join(s.dir, fmt.Sprintf("emp_%04d_%s.txt", employeeID, username))
	body := fmt.Sprintf("username: %s\npassword: %s\n", username, password)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		return "", fmt.Errorf("failed to write credentials: %w", err)
	}
	return path, nil
}
