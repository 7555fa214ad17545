package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hrdocs/personnel-backend/internal/models"
)

const employeeColumns = `
	e.id, e.last_name, e.first_name, e.middle_name, e.birth_date, e.email, e.phone,
	e.department_id, e.position_id, e.hire_date, e.dismissal_date, e.employment_status,
	e.created_at, e.updated_at`

// EmployeeRepository handles database operations for employees
type EmployeeRepository struct {
	db DB
}

// NewEmployeeRepository creates a new EmployeeRepository
func NewEmployeeRepository(db DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create inserts an employee and returns its id
func (r *EmployeeRepository) Create(ctx context.Context, in *models.EmployeeInput) (int64, error) {
	status := in.EmploymentStatus
	if status == "" {
		status = models.EmploymentStatusActive
	}

	query := `
		INSERT INTO employees (
			last_name, first_name, middle_name, birth_date, email, phone,
			department_id, position_id, hire_date, employment_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	var id int64
	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		strings.TrimSpace(in.LastName),
		strings.TrimSpace(in.FirstName),
		strings.TrimSpace(in.MiddleName),
		in.BirthDate,
		models.NewNullString(strings.TrimSpace(in.Email)),
		models.NewNullString(strings.TrimSpace(in.Phone)),
		in.DepartmentID,
		in.PositionID,
		in.HireDate,
		status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create employee: %w", err)
	}
	return id, nil
}

// GetByID retrieves an employee with department and position names
func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*models.EmployeeListItem, error) {
	query := `SELECT ` + employeeColumns + `, d.name AS department_name, p.name AS position_name
		FROM employees e
		LEFT JOIN departments d ON d.id = e.department_id
		LEFT JOIN positions p ON p.id = e.position_id
		WHERE e.id = $1`

	var emp models.EmployeeListItem
	if err := conn(ctx, r.db).GetContext(ctx, &emp, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("employee %d not found: %w", id, sql.ErrNoRows)
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &emp, nil
}

// GetByEmail finds an employee by case-insensitive email. Returns nil when absent.
func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees e WHERE LOWER(e.email) = LOWER($1) LIMIT 1`

	var emp models.Employee
	if err := conn(ctx, r.db).GetContext(ctx, &emp, query, strings.TrimSpace(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get employee by email: %w", err)
	}
	return &emp, nil
}

// List returns employees joined with directory names
func (r *EmployeeRepository) List(ctx context.Context, f models.EmployeeFilter) ([]models.EmployeeListItem, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.Search != "" {
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(LOWER(e.last_name || ' ' || e.first_name || ' ' || e.middle_name) LIKE $%d OR LOWER(COALESCE(e.email, '')) LIKE $%d OR LOWER(COALESCE(d.name, '')) LIKE $%d OR LOWER(COALESCE(p.name, '')) LIKE $%d)",
			n, n, n, n))
	}
	if f.DepartmentID > 0 {
		args = append(args, f.DepartmentID)
		where = append(where, fmt.Sprintf("e.department_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("e.employment_status = $%d", len(args)))
	}
	if f.ActiveOnly {
		where = append(where, "e.employment_status <> 'dismissed'")
	}

	query := `SELECT ` + employeeColumns + `, d.name AS department_name, p.name AS position_name
		FROM employees e
		LEFT JOIN departments d ON d.id = e.department_id
		LEFT JOIN positions p ON p.id = e.position_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.last_name, e.first_name"

	employees := []models.EmployeeListItem{}
	if err := conn(ctx, r.db).SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

// Update overwrites the editable fields of an employee
func (r *EmployeeRepository) Update(ctx context.Context, id int64, in *models.EmployeeInput) error {
	query := `
		UPDATE employees
		SET last_name = $1, first_name = $2, middle_name = $3, birth_date = $4,
		    email = $5, phone = $6, department_id = $7, position_id = $8,
		    hire_date = $9, employment_status = $10, updated_at = NOW()
		WHERE id = $11
	`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		strings.TrimSpace(in.LastName),
		strings.TrimSpace(in.FirstName),
		strings.TrimSpace(in.MiddleName),
		in.BirthDate,
		models.NewNullString(strings.TrimSpace(in.Email)),
		models.NewNullString(strings.TrimSpace(in.Phone)),
		in.DepartmentID,
		in.PositionID,
		in.HireDate,
		in.EmploymentStatus,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	return requireAffected(result)
}

// Delete removes an employee row
func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return requireAffected(result)
}

// CountDocuments returns how many documents reference the employee
func (r *EmployeeRepository) CountDocuments(ctx context.Context, id int64) (int, error) {
	var n int
	if err := conn(ctx, r.db).GetContext(ctx, &n, `SELECT COUNT(*) FROM documents WHERE employee_id = $1`, id); err != nil {
		return 0, fmt.Errorf("failed to count employee documents: %w", err)
	}
	return n, nil
}

// MarkDismissed sets status dismissed and the dismissal date
func (r *EmployeeRepository) MarkDismissed(ctx context.Context, id int64, on time.Time) error {
	query := `
		UPDATE employees
		SET employment_status = 'dismissed', dismissal_date = $1, updated_at = NOW()
		WHERE id = $2
	`
	result, err := conn(ctx, r.db).ExecContext(ctx, query, on, id)
	if err != nil {
		return fmt.Errorf("failed to dismiss employee: %w", err)
	}
	return requireAffected(result)
}

// SetHireDateIfUnset fills hire_date only when it is NULL
func (r *EmployeeRepository) SetHireDateIfUnset(ctx context.Context, id int64, hireDate time.Time) error {
	query := `
		UPDATE employees
		SET hire_date = COALESCE(hire_date, $1), updated_at = NOW()
		WHERE id = $2
	`
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, hireDate, id); err != nil {
		return fmt.Errorf("failed to set hire date: %w", err)
	}
	return nil
}

// requireAffected maps a zero-row update to sql.ErrNoRows
func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
