package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hrdocs/personnel-backend/internal/database"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// PostgreSQL error codes handled by the services
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// constraintConflict turns unique and foreign-key violations into a ConflictError
func constraintConflict(err error, message string) error {
	switch pgCode(err) {
	case pgUniqueViolation, pgForeignKeyViolation:
		return &ConflictError{Message: message}
	}
	return err
}

// DirectoryService manages departments, positions and employee records
type DirectoryService struct {
	tx     *database.Transactor
	repos  *database.Repositories
	logger *logrus.Logger
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(tx *database.Transactor, repos *database.Repositories, logger *logrus.Logger) *DirectoryService {
	return &DirectoryService{tx: tx, repos: repos, logger: logger}
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "is required")
	}
	return name, nil
}

// ListDepartments returns all departments with employee counts
func (s *DirectoryService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	return s.repos.Departments.ListDepartments(ctx)
}

// CreateDepartment adds a department
func (s *DirectoryService) CreateDepartment(ctx context.Context, name string) (*models.Department, error) {
	name, err := requireName(name)
	if err != nil {
		return nil, err
	}
	d, err := s.repos.Departments.CreateDepartment(ctx, name)
	if err != nil {
		return nil, constraintConflict(err, fmt.Sprintf("department %q already exists", name))
	}
	return d, nil
}

// RenameDepartment changes a department name
func (s *DirectoryService) RenameDepartment(ctx context.Context, id int64, name string) error {
	name, err := requireName(name)
	if err != nil {
		return err
	}
	if err := s.repos.Departments.RenameDepartment(ctx, id, name); err != nil {
		return notFound(constraintConflict(err, fmt.Sprintf("department %q already exists", name)), "department", id)
	}
	return nil
}

// DeleteDepartment removes a department that no employee references
func (s *DirectoryService) DeleteDepartment(ctx context.Context, id int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := s.repos.Departments.CountEmployeesInDepartment(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &ConflictError{
				Message: fmt.Sprintf("department %d has %d employee(s)", id, n),
				Details: map[string]int{"employees": n},
			}
		}
		if err := s.repos.Departments.DeleteDepartment(ctx, id); err != nil {
			return notFound(err, "department", id)
		}
		s.logger.WithField("department_id", id).Info("Department deleted")
		return nil
	})
}

// ListPositions returns every position, or the positions allowed in a department when departmentID > 0
func (s *DirectoryService) ListPositions(ctx context.Context, departmentID int64) ([]models.Position, error) {
	if departmentID > 0 {
		if _, err := s.repos.Departments.GetDepartment(ctx, departmentID); err != nil {
			return nil, notFound(err, "department", departmentID)
		}
		return s.repos.Departments.ListPositionsByDepartment(ctx, departmentID)
	}
	return s.repos.Departments.ListPositions(ctx)
}

// CreatePosition adds a position, returning the existing row when the name is taken
func (s *DirectoryService) CreatePosition(ctx context.Context, name string) (*models.Position, error) {
	name, err := requireName(name)
	if err != nil {
		return nil, err
	}
	return s.repos.Departments.CreatePosition(ctx, name)
}

// RenamePosition changes a position name
func (s *DirectoryService) RenamePosition(ctx context.Context, id int64, name string) error {
	name, err := requireName(name)
	if err != nil {
		return err
	}
	if err := s.repos.Departments.RenamePosition(ctx, id, name); err != nil {
		return notFound(constraintConflict(err, fmt.Sprintf("position %q already exists", name)), "position", id)
	}
	return nil
}

// DeletePosition removes a position that no employee holds
func (s *DirectoryService) DeletePosition(ctx context.Context, id int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := s.repos.Departments.CountEmployeesInPosition(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &ConflictError{
				Message: fmt.Sprintf("position %d is held by %d employee(s)", id, n),
				Details: map[string]int{"employees": n},
			}
		}
		if err := s.repos.Departments.DeletePosition(ctx, id); err != nil {
			return notFound(err, "position", id)
		}
		s.logger.WithField("position_id", id).Info("Position deleted")
		return nil
	})
}

// LinkPosition allows a position in a department
func (s *DirectoryService) LinkPosition(ctx context.Context, departmentID, positionID int64) error {
	if err := s.repos.Departments.LinkPosition(ctx, departmentID, positionID); err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return &NotFoundError{Entity: "department or position", ID: fmt.Sprintf("%d/%d", departmentID, positionID)}
		}
		return err
	}
	return nil
}

// UnlinkPosition removes a position from a department
func (s *DirectoryService) UnlinkPosition(ctx context.Context, departmentID, positionID int64) error {
	if err := s.repos.Departments.UnlinkPosition(ctx, departmentID, positionID); err != nil {
		return notFound(err, "department position", fmt.Sprintf("%d/%d", departmentID, positionID))
	}
	return nil
}

// IsPositionAllowed reports whether a position may be used in a department
func (s *DirectoryService) IsPositionAllowed(ctx context.Context, departmentID, positionID int64) (bool, error) {
	return s.repos.Departments.IsPositionAllowed(ctx, departmentID, positionID)
}

// ListEmployees returns employees matching the filter
func (s *DirectoryService) ListEmployees(ctx context.Context, f models.EmployeeFilter) ([]models.EmployeeListItem, error) {
	if f.Status != "" && !f.Status.IsValid() {
		return nil, invalid("status", "unknown employment status %q", f.Status)
	}
	return s.repos.Employees.List(ctx, f)
}

// GetEmployee returns one employee
func (s *DirectoryService) GetEmployee(ctx context.Context, id int64) (*models.EmployeeListItem, error) {
	emp, err := s.repos.Employees.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "employee", id)
	}
	return emp, nil
}

// UpdateEmployee rewrites an employee record after re-checking email
// uniqueness and the department/position pairing.
func (s *DirectoryService) UpdateEmployee(ctx context.Context, id int64, in *models.EmployeeInput) (*models.EmployeeListItem, error) {
	if err := normalizeEmployeeInput(in); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repos.Employees.GetByID(ctx, id); err != nil {
			return notFound(err, "employee", id)
		}
		other, err := s.repos.Employees.GetByEmail(ctx, in.Email)
		if err != nil {
			return err
		}
		if other != nil && other.ID != id {
			return &ConflictError{
				Message: fmt.Sprintf("email %s belongs to employee %d", in.Email, other.ID),
				Details: map[string]int64{"employee_id": other.ID},
			}
		}
		allowed, err := s.repos.Departments.IsPositionAllowed(ctx, in.DepartmentID.Int64, in.PositionID.Int64)
		if err != nil {
			return err
		}
		if !allowed {
			return &ConflictError{Message: fmt.Sprintf("position %d is not allowed in department %d", in.PositionID.Int64, in.DepartmentID.Int64)}
		}
		return s.repos.Employees.Update(ctx, id, in)
	})
	if err != nil {
		return nil, err
	}
	return s.GetEmployee(ctx, id)
}

// DeleteEmployee removes an employee that no document references
func (s *DirectoryService) DeleteEmployee(ctx context.Context, id int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := s.repos.Employees.CountDocuments(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &ConflictError{
				Message: fmt.Sprintf("employee %d has %d document(s)", id, n),
				Details: map[string]int{"documents": n},
			}
		}
		if err := s.repos.Employees.Delete(ctx, id); err != nil {
			return notFound(constraintConflict(err, fmt.Sprintf("employee %d is still referenced", id)), "employee", id)
		}
		s.logger.WithField("employee_id", id).Info("Employee deleted")
		return nil
	})
}
