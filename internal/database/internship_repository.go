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

const internshipColumns = `i.id, i.employee_id, i.mentor_employee_id, i.document_id, i.start_date,
	i.months, i.planned_end_date, i.status, i.notes, i.created_at, i.updated_at`

const internshipJoins = `
		FROM internships i
		JOIN employees e ON e.id = i.employee_id
		LEFT JOIN departments d ON d.id = e.department_id
		LEFT JOIN positions p ON p.id = e.position_id
		LEFT JOIN employees m ON m.id = i.mentor_employee_id
		LEFT JOIN departments md ON md.id = m.department_id
		LEFT JOIN positions mp ON mp.id = m.position_id`

const internshipDetailColumns = `,
		TRIM(e.last_name || ' ' || e.first_name || ' ' || e.middle_name) AS full_name,
		d.name AS department_name, p.name AS position_name,
		NULLIF(TRIM(COALESCE(m.last_name, '') || ' ' || COALESCE(m.first_name, '') || ' ' || COALESCE(m.middle_name, '')), '') AS mentor_full_name,
		md.name AS mentor_department_name, mp.name AS mentor_position_name`

// InternshipRepository handles database operations for internships
type InternshipRepository struct {
	db DB
}

// NewInternshipRepository creates a new InternshipRepository
func NewInternshipRepository(db DB) *InternshipRepository {
	return &InternshipRepository{db: db}
}

// Create inserts an internship and fills its id
func (r *InternshipRepository) Create(ctx context.Context, in *models.Internship) error {
	query := `
		INSERT INTO internships (
			employee_id, mentor_employee_id, document_id, start_date, months,
			planned_end_date, status, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		in.EmployeeID,
		in.MentorEmployeeID,
		in.DocumentID,
		in.StartDate,
		in.Months,
		in.PlannedEndDate,
		in.Status,
		in.Notes,
	).Scan(&in.ID, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create internship: %w", err)
	}
	return nil
}

// GetByID retrieves an internship with employee and mentor details
func (r *InternshipRepository) GetByID(ctx context.Context, id int64) (*models.InternshipListItem, error) {
	query := `SELECT ` + internshipColumns + internshipDetailColumns + internshipJoins + ` WHERE i.id = $1`

	var item models.InternshipListItem
	if err := conn(ctx, r.db).GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("internship %d not found: %w", id, sql.ErrNoRows)
		}
		return nil, fmt.Errorf("failed to get internship: %w", err)
	}
	return &item, nil
}

// GetForUpdate loads an internship and locks its row
func (r *InternshipRepository) GetForUpdate(ctx context.Context, id int64) (*models.Internship, error) {
	query := `SELECT ` + internshipColumns + ` FROM internships i WHERE i.id = $1 FOR UPDATE`

	var in models.Internship
	if err := conn(ctx, r.db).GetContext(ctx, &in, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("internship %d not found: %w", id, sql.ErrNoRows)
		}
		return nil, fmt.Errorf("failed to lock internship: %w", err)
	}
	return &in, nil
}

// GetLatestForEmployee returns the most recent internship of an employee, nil when none
func (r *InternshipRepository) GetLatestForEmployee(ctx context.Context, employeeID int64) (*models.InternshipListItem, error) {
	query := `SELECT ` + internshipColumns + internshipDetailColumns + internshipJoins + `
		WHERE i.employee_id = $1
		ORDER BY (i.status = 'active') DESC, i.start_date DESC
		LIMIT 1`

	var item models.InternshipListItem
	if err := conn(ctx, r.db).GetContext(ctx, &item, query, employeeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get employee internship: %w", err)
	}
	return &item, nil
}

// HasActive reports whether the employee already has an active internship
func (r *InternshipRepository) HasActive(ctx context.Context, employeeID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM internships WHERE employee_id = $1 AND status = 'active')`
	if err := conn(ctx, r.db).GetContext(ctx, &exists, query, employeeID); err != nil {
		return false, fmt.Errorf("failed to check active internship: %w", err)
	}
	return exists, nil
}

// List returns internships, active first then by planned end date
func (r *InternshipRepository) List(ctx context.Context, f models.InternshipFilter) ([]models.InternshipListItem, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("i.status = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(LOWER(e.last_name || ' ' || e.first_name || ' ' || e.middle_name) LIKE $%d OR LOWER(COALESCE(d.name, '')) LIKE $%d OR LOWER(COALESCE(p.name, '')) LIKE $%d)", n, n, n))
	}

	query := `SELECT ` + internshipColumns + internshipDetailColumns + internshipJoins
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY (i.status = 'active') DESC, i.planned_end_date ASC"

	items := []models.InternshipListItem{}
	if err := conn(ctx, r.db).SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list internships: %w", err)
	}
	return items, nil
}

// CompleteOverdue moves every active internship whose planned end is before
// today to completed and returns how many changed.
func (r *InternshipRepository) CompleteOverdue(ctx context.Context, today time.Time) (int64, error) {
	query := `
		UPDATE internships
		SET status = 'completed', updated_at = NOW()
		WHERE status = 'active' AND planned_end_date < $1
	`
	result, err := conn(ctx, r.db).ExecContext(ctx, query, today)
	if err != nil {
		return 0, fmt.Errorf("failed to complete overdue internships: %w", err)
	}
	return result.RowsAffected()
}

// UpdateActive rewrites months, end date, status and notes of an internship
// that is still active. A zero-row update returns sql.ErrNoRows.
func (r *InternshipRepository) UpdateActive(ctx context.Context, in *models.Internship) error {
	query := `
		UPDATE internships
		SET months = $1, planned_end_date = $2, status = $3, notes = $4, updated_at = NOW()
		WHERE id = $5 AND status = 'active'
	`
	result, err := conn(ctx, r.db).ExecContext(ctx, query, in.Months, in.PlannedEndDate, in.Status, in.Notes, in.ID)
	if err != nil {
		return fmt.Errorf("failed to update internship: %w", err)
	}
	return requireAffected(result)
}

// LinkDocument attaches a document to the internship
func (r *InternshipRepository) LinkDocument(ctx context.Context, id, documentID int64) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE internships SET document_id = $1, updated_at = NOW() WHERE id = $2`, documentID, id)
	if err != nil {
		return fmt.Errorf("failed to link internship document: %w", err)
	}
	return requireAffected(result)
}

// Counters returns the overdue and due-within-14-days counts of active internships
func (r *InternshipRepository) Counters(ctx context.Context, today time.Time) (*models.InternshipCounters, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE planned_end_date < $1) AS overdue,
			COUNT(*) FILTER (WHERE planned_end_date BETWEEN $1 AND $2) AS due_soon
		FROM internships
		WHERE status = 'active'
	`
	var c models.InternshipCounters
	if err := conn(ctx, r.db).GetContext(ctx, &c, query, today, today.AddDate(0, 0, 14)); err != nil {
		return nil, fmt.Errorf("failed to count internships: %w", err)
	}
	return &c, nil
}
