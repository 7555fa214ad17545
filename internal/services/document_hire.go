package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/pkg/dates"
	"github.com/hrdocs/personnel-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

// HireResult is everything created by a hire order
type HireResult struct {
	Document    *models.Document           `json:"document"`
	Employee    *models.EmployeeListItem   `json:"employee"`
	Internship  *models.InternshipListItem `json:"internship"`
	Credentials *models.Credentials        `json:"credentials,omitempty"`
	Referral    *models.Document           `json:"internship_referral,omitempty"`
}

var phones = validator.NewPhoneValidator()

// normalizeEmployeeInput trims and validates the fields of a new or edited employee
func normalizeEmployeeInput(in *models.EmployeeInput) error {
	in.LastName = strings.TrimSpace(in.LastName)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.MiddleName = strings.TrimSpace(in.MiddleName)
	if in.LastName == "" {
		return invalid("last_name", "is required")
	}
	if in.FirstName == "" {
		return invalid("first_name", "is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return invalid("email", "is required")
	}
	email, err := validator.NormalizeEmail(in.Email)
	if err != nil {
		return invalid("email", "%v", err)
	}
	in.Email = email

	if strings.TrimSpace(in.Phone) != "" {
		phone, err := phones.Validate(in.Phone)
		if err != nil {
			return invalid("phone", "%v", err)
		}
		in.Phone = phone
	} else {
		in.Phone = ""
	}

	if !in.DepartmentID.Valid {
		return invalid("department_id", "is required")
	}
	if !in.PositionID.Valid {
		return invalid("position_id", "is required")
	}
	if in.EmploymentStatus == "" {
		in.EmploymentStatus = models.EmploymentStatusActive
	}
	if !in.EmploymentStatus.IsValid() {
		return invalid("employment_status", "unknown status %q", in.EmploymentStatus)
	}
	return nil
}

// checkPlacement rejects a position that is not allowed in the department
func (s *DocumentService) checkPlacement(ctx context.Context, departmentID, positionID int64) error {
	allowed, err := s.repos.Departments.IsPositionAllowed(ctx, departmentID, positionID)
	if err != nil {
		return err
	}
	if !allowed {
		return &ConflictError{Message: fmt.Sprintf("position %d is not allowed in department %d", positionID, departmentID)}
	}
	return nil
}

func (s *DocumentService) hireTerms(req *models.HireRequest) (*models.HireTerms, time.Time, error) {
	terms := req.HireTerms
	if strings.TrimSpace(terms.StartDate) == "" {
		return nil, time.Time{}, invalid("start_date", "is required")
	}
	start, err := dates.ParseISO(terms.StartDate)
	if err != nil {
		return nil, time.Time{}, invalid("start_date", "%v", err)
	}
	terms.StartDate = dates.FormatISO(start)

	if terms.ContractUntil != "" {
		until, err := dates.ParseISO(terms.ContractUntil)
		if err != nil {
			return nil, time.Time{}, invalid("contract_until", "%v", err)
		}
		if until.Before(start) {
			return nil, time.Time{}, invalid("contract_until", "must not be before start_date")
		}
		terms.ContractUntil = dates.FormatISO(until)
	}
	if terms.WorkHours < 0 || terms.WorkHours > 24 || terms.WorkMinutes < 0 || terms.WorkMinutes > 59 {
		return nil, time.Time{}, invalid("work_hours", "working time is out of range")
	}
	if terms.SalaryGrn < 0 || terms.SalaryKop < 0 || terms.SalaryKop > 99 {
		return nil, time.Time{}, invalid("salary", "amount is out of range")
	}

	p := s.policy
	if terms.InternshipMonths == 0 {
		terms.InternshipMonths = p.InternshipDefaultMonths
	}
	if terms.InternshipMonths < p.InternshipMinMonths || terms.InternshipMonths > p.InternshipMaxMonths {
		return nil, time.Time{}, invalid("internship_months", "must be between %d and %d", p.InternshipMinMonths, p.InternshipMaxMonths)
	}
	terms.OtherText = strings.TrimSpace(terms.OtherText)
	return &terms, start, nil
}

// CreateHire issues a P-1 order. With new_employee set it also creates the
// employee and a login account; in every case it opens the internship and,
// when asked, issues the internship assignment order. All rows are written in
// one transaction and files written along the way are removed on failure.
func (s *DocumentService) CreateHire(ctx context.Context, actor *Actor, req *models.HireRequest) (*HireResult, error) {
	terms, start, err := s.hireTerms(req)
	if err != nil {
		return nil, err
	}
	if req.NewEmployee == nil && req.EmployeeID <= 0 {
		return nil, invalid("employee_id", "either employee_id or new_employee is required")
	}
	if req.NewEmployee != nil {
		if err := normalizeEmployeeInput(req.NewEmployee); err != nil {
			return nil, err
		}
	}

	result := &HireResult{}
	err = s.withinTx(ctx, func(ctx context.Context, files *artifacts) error {
		employeeID := req.EmployeeID
		if in := req.NewEmployee; in != nil {
			existing, err := s.repos.Employees.GetByEmail(ctx, in.Email)
			if err != nil {
				return err
			}
			if existing != nil {
				return &ConflictError{
					Message: fmt.Sprintf("employee with email %s already exists", in.Email),
					Details: map[string]int64{"employee_id": existing.ID},
				}
			}
			if err := s.checkPlacement(ctx, in.DepartmentID.Int64, in.PositionID.Int64); err != nil {
				return err
			}
			if employeeID, err = s.repos.Employees.Create(ctx, in); err != nil {
				return err
			}

			creds, err := s.credentials.CreateEmployeeAccount(ctx, in, employeeID, req.InitialPassword)
			if err != nil {
				return err
			}
			files.add(creds.ExportPath)
			result.Credentials = creds
		}

		emp, err := s.employee(ctx, employeeID)
		if err != nil {
			return err
		}
		if emp.EmploymentStatus == models.EmploymentStatusDismissed {
			return &InvalidStateError{Message: fmt.Sprintf("employee %d is dismissed", emp.ID)}
		}
		if req.NewEmployee == nil {
			active, err := s.repos.Internships.HasActive(ctx, emp.ID)
			if err != nil {
				return err
			}
			if active {
				return &ConflictError{Message: fmt.Sprintf("employee %d already has an active internship", emp.ID)}
			}
		}
		result.Employee = emp

		internship, err := s.openInternship(ctx, emp.ID, start, terms)
		if err != nil {
			return err
		}

		result.Document, err = s.issue(ctx, issueRequest{
			base:     req.DocumentRequest,
			docType:  models.DocumentTypeHire,
			employee: emp,
			context:  models.DocumentContext{Hire: terms},
			actor:    actor,
		}, files)
		if err != nil {
			return err
		}

		if req.IssueInternshipReferral {
			base := models.DocumentRequest{OrderDate: req.OrderDate, DirectorFullName: req.DirectorFullName, Draft: req.Draft}
			if result.Referral, err = s.issueReferral(ctx, actor, base, internship.ID, files); err != nil {
				return err
			}
		}

		result.Internship, err = s.repos.Internships.GetByID(ctx, internship.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"employee_id":     result.Employee.ID,
		"document_id":     result.Document.ID,
		"internship_id":   result.Internship.ID,
		"account_created": result.Credentials != nil,
	}).Info("Hire order created")
	return result, nil
}

func (s *DocumentService) openInternship(ctx context.Context, employeeID int64, start time.Time, terms *models.HireTerms) (*models.Internship, error) {
	in := &models.Internship{
		EmployeeID:     employeeID,
		StartDate:      start,
		Months:         terms.InternshipMonths,
		PlannedEndDate: dates.AddMonths(start, terms.InternshipMonths),
		Status:         models.InternshipStatusActive,
	}

	if id := terms.MentorEmployeeID; id != nil {
		if *id == employeeID {
			return nil, invalid("mentor_employee_id", "an employee cannot mentor themselves")
		}
		mentor, err := s.repos.Employees.GetByID(ctx, *id)
		if err != nil {
			return nil, notFound(err, "mentor", *id)
		}
		if mentor.EmploymentStatus == models.EmploymentStatusDismissed {
			return nil, invalid("mentor_employee_id", "mentor %d is dismissed", *id)
		}
		in.MentorEmployeeID = models.NewNullInt64(*id)
	}

	if err := s.repos.Internships.Create(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}
