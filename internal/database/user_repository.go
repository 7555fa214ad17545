package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hrdocs/personnel-backend/internal/models"
)

const userColumns = `u.id, u.username, u.password_hash, u.role, u.is_active, u.employee_id,
	u.last_login_at, u.created_at, u.updated_at`

// UserRepository handles database operations for login accounts
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts an account and returns its id
func (r *UserRepository) Create(ctx context.Context, username, passwordHash string, role models.UserRole, employeeID *int64) (int64, error) {
	query := `
		INSERT INTO users (username, password_hash, role, is_active, employee_id)
		VALUES ($1, $2, $3, TRUE, $4)
		RETURNING id
	`
	var empID models.NullInt64
	if employeeID != nil {
		empID = models.NewNullInt64(*employeeID)
	}

	var id int64
	if err := conn(ctx, r.db).QueryRowxContext(ctx, query, username, passwordHash, role, empID).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

// GetByUsername retrieves an account by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.username = $1`
	if err := conn(ctx, r.db).GetContext(ctx, &u, query, strings.TrimSpace(username)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sql.ErrNoRows)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// GetByID retrieves an account by id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`
	if err := conn(ctx, r.db).GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sql.ErrNoRows)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// UsernameExists reports whether the username is taken
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	if err := conn(ctx, r.db).GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

// List returns accounts joined with employee details
func (r *UserRepository) List(ctx context.Context, search string) ([]models.UserListItem, error) {
	query := `SELECT ` + userColumns + `,
			NULLIF(TRIM(COALESCE(e.last_name, '') || ' ' || COALESCE(e.first_name, '') || ' ' || COALESCE(e.middle_name, '')), '') AS full_name,
			d.name AS department_name, p.name AS position_name
		FROM users u
		LEFT JOIN employees e ON e.id = u.employee_id
		LEFT JOIN departments d ON d.id = e.department_id
		LEFT JOIN positions p ON p.id = e.position_id`
	var args []interface{}
	if search != "" {
		query += ` WHERE LOWER(u.username || ' ' || u.role || ' ' || COALESCE(e.last_name, '') || ' ' || COALESCE(e.first_name, '')) LIKE $1`
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	query += ` ORDER BY u.created_at DESC`

	users := []models.UserListItem{}
	if err := conn(ctx, r.db).SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// SetActive toggles the active flag
func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}
	return requireAffected(result)
}

// DeactivateByEmployee deactivates every account linked to the employee
func (r *UserRepository) DeactivateByEmployee(ctx context.Context, employeeID int64) (int64, error) {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE employee_id = $1 AND is_active`, employeeID)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate accounts: %w", err)
	}
	return result.RowsAffected()
}

// UpdatePassword stores a new password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireAffected(result)
}

// UpdateLastLogin stamps the last successful login
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	if _, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
