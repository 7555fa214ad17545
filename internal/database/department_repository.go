package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hrdocs/personnel-backend/internal/models"
)

// DepartmentRepository handles departments, positions and the allowed-position links
type DepartmentRepository struct {
	db DB
}

// NewDepartmentRepository creates a new DepartmentRepository
func NewDepartmentRepository(db DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// ListDepartments returns all departments with employee counts
func (r *DepartmentRepository) ListDepartments(ctx context.Context) ([]models.Department, error) {
	query := `
		SELECT d.id, d.name, d.created_at, d.updated_at,
		       (SELECT COUNT(*) FROM employees e WHERE e.department_id = d.id) AS employee_count
		FROM departments d
		ORDER BY d.name
	`
	departments := []models.Department{}
	if err := conn(ctx, r.db).SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return departments, nil
}

// GetDepartment retrieves a department by id
func (r *DepartmentRepository) GetDepartment(ctx context.Context, id int64) (*models.Department, error) {
	var d models.Department
	err := conn(ctx, r.db).GetContext(ctx, &d, `SELECT id, name, created_at, updated_at FROM departments WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("department %d not found: %w", id, sql.ErrNoRows)
		}
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return &d, nil
}

// CreateDepartment inserts a department
func (r *DepartmentRepository) CreateDepartment(ctx context.Context, name string) (*models.Department, error) {
	var d models.Department
	query := `INSERT INTO departments (name) VALUES ($1) RETURNING id, name, created_at, updated_at`
	if err := conn(ctx, r.db).GetContext(ctx, &d, query, strings.TrimSpace(name)); err != nil {
		return nil, fmt.Errorf("failed to create department: %w", err)
	}
	return &d, nil
}

// RenameDepartment changes a department name
func (r *DepartmentRepository) RenameDepartment(ctx context.Context, id int64, name string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE departments SET name = $1, updated_at = NOW() WHERE id = $2`, strings.TrimSpace(name), id)
	if err != nil {
		return fmt.Errorf("failed to rename department: %w", err)
	}
	return requireAffected(result)
}

// DeleteDepartment removes a department
func (r *DepartmentRepository) DeleteDepartment(ctx context.Context, id int64) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete department: %w", err)
	}
	return requireAffected(result)
}

// CountEmployeesInDepartment returns how many employees reference the department
func (r *DepartmentRepository) CountEmployeesInDepartment(ctx context.Context, id int64) (int, error) {
	var n int
	if err := conn(ctx, r.db).GetContext(ctx, &n, `SELECT COUNT(*) FROM employees WHERE department_id = $1`, id); err != nil {
		return 0, fmt.Errorf("failed to count department employees: %w", err)
	}
	return n, nil
}

// ListPositions returns all positions with employee counts
func (r *DepartmentRepository) ListPositions(ctx context.Context) ([]models.Position, error) {
	query := `
		SELECT p.id, p.name, p.created_at, p.updated_at,
		       (SELECT COUNT(*) FROM employees e WHERE e.position_id = p.id) AS employee_count
		FROM positions p
		ORDER BY p.name
	`
	positions := []models.Position{}
	if err := conn(ctx, r.db).SelectContext(ctx, &positions, query); err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	return positions, nil
}

// ListPositionsByDepartment returns the positions allowed in a department
func (r *DepartmentRepository) ListPositionsByDepartment(ctx context.Context, departmentID int64) ([]models.Position, error) {
	query := `
		SELECT p.id, p.name, p.created_at, p.updated_at
		FROM positions p
		JOIN department_positions dp ON dp.position_id = p.id
		WHERE dp.department_id = $1
		ORDER BY p.name
	`
	positions := []models.Position{}
	if err := conn(ctx, r.db).SelectContext(ctx, &positions, query, departmentID); err != nil {
		return nil, fmt.Errorf("failed to list department positions: %w", err)
	}
	return positions, nil
}

// CreatePosition inserts a position, returning the existing one when the name is taken
func (r *DepartmentRepository) CreatePosition(ctx context.Context, name string) (*models.Position, error) {
	var p models.Position
	query := `
		INSERT INTO positions (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at, updated_at
	`
	if err := conn(ctx, r.db).GetContext(ctx, &p, query, strings.TrimSpace(name)); err != nil {
		return nil, fmt.Errorf("failed to create position: %w", err)
	}
	return &p, nil
}

// RenamePosition changes a position name
func (r *DepartmentRepository) RenamePosition(ctx context.Context, id int64, name string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE positions SET name = $1, updated_at = NOW() WHERE id = $2`, strings.TrimSpace(name), id)
	if err != nil {
		return fmt.Errorf("failed to rename position: %w", err)
	}
	return requireAffected(result)
}

// DeletePosition removes a position
func (r *DepartmentRepository) DeletePosition(ctx context.Context, id int64) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM positions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	return requireAffected(result)
}

// CountEmployeesInPosition returns how many employees hold the position
func (r *DepartmentRepository) CountEmployeesInPosition(ctx context.Context, id int64) (int, error) {
	var n int
	if err := conn(ctx, r.db).GetContext(ctx, &n, `SELECT COUNT(*) FROM employees WHERE position_id = $1`, id); err != nil {
		return 0, fmt.Errorf("failed to count position employees: %w", err)
	}
	return n, nil
}

// LinkPosition allows a position in a department
func (r *DepartmentRepository) LinkPosition(ctx context.Context, departmentID, positionID int64) error {
	query := `
		INSERT INTO department_positions (department_id, position_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, departmentID, positionID); err != nil {
		return fmt.Errorf("failed to link position: %w", err)
	}
	return nil
}

// UnlinkPosition removes a position from a department
func (r *DepartmentRepository) UnlinkPosition(ctx context.Context, departmentID, positionID int64) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`DELETE FROM department_positions WHERE department_id = $1 AND position_id = $2`, departmentID, positionID)
	if err != nil {
		return fmt.Errorf("failed to unlink position: %w", err)
	}
	return requireAffected(result)
}

// IsPositionAllowed reports whether the position is linked to the department
func (r *DepartmentRepository) IsPositionAllowed(ctx context.Context, departmentID, positionID int64) (bool, error) {
	var allowed bool
	query := `SELECT EXISTS (SELECT 1 FROM department_positions WHERE department_id = $1 AND position_id = $2)`
	if err := conn(ctx, r.db).GetContext(ctx, &allowed, query, departmentID, positionID); err != nil {
		return false, fmt.Errorf("failed to check position: %w", err)
	}
	return allowed, nil
}
