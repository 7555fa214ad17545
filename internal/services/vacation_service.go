package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/pkg/dates"
	"github.com/sirupsen/logrus"
)

// WorkYear returns the working year that contains anchor: from the hire
// anniversary on or before anchor to the day before the next one. Without a
// hire date the calendar year of anchor is used.
func WorkYear(hireDate *time.Time, anchor time.Time) (time.Time, time.Time) {
	anchor = dates.Today(anchor)
	if hireDate == nil || hireDate.IsZero() {
		return time.Date(anchor.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(anchor.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	}

	year := anchor.Year()
	start := dates.Anniversary(*hireDate, year)
	if start.After(anchor) {
		year--
		start = dates.Anniversary(*hireDate, year)
	}
	end := dates.Anniversary(*hireDate, year+1).AddDate(0, 0, -1)
	return start, end
}

// WorkYearPeriod is a work year returned to API clients
type WorkYearPeriod struct {
	EmployeeID int64  `json:"employee_id"`
	HireDate   string `json:"hire_date,omitempty"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

// WorkYearFor computes the work year of an employee around anchor
func (s *DocumentService) WorkYearFor(ctx context.Context, employeeID int64, anchor time.Time) (*WorkYearPeriod, error) {
	emp, err := s.employee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	start, end := WorkYear(emp.HireDate.Ptr(), anchor)
	p := &WorkYearPeriod{EmployeeID: emp.ID, Start: dates.FormatISO(start), End: dates.FormatISO(end)}
	if emp.HireDate.Valid {
		p.HireDate = dates.FormatISO(emp.HireDate.Time)
	}
	return p, nil
}

// VacationIntervals extracts the periods of vacation documents, skipping
// documents whose stored period does not parse.
func VacationIntervals(docs []models.Document) ([]models.VacationInterval, []int64) {
	out := make([]models.VacationInterval, 0, len(docs))
	var skipped []int64
	for _, d := range docs {
		v := d.Context.Vacation
		if v == nil {
			skipped = append(skipped, d.ID)
			continue
		}
		start, end, err := v.Interval()
		if err != nil {
			skipped = append(skipped, d.ID)
			continue
		}
		out = append(out, models.VacationInterval{
			DocumentID:  d.ID,
			OrderNumber: d.OrderNumber,
			StartDate:   start,
			EndDate:     end,
			Days:        dates.DaysInclusive(start, end),
		})
	}
	return out, skipped
}

// FindVacationConflicts returns every interval sharing at least one day with [start, end]
func FindVacationConflicts(existing []models.VacationInterval, start, end time.Time) []models.VacationInterval {
	var conflicts []models.VacationInterval
	for _, iv := range existing {
		if dates.Overlaps(start, end, iv.StartDate, iv.EndDate) {
			conflicts = append(conflicts, iv)
		}
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].StartDate.Before(conflicts[j].StartDate) })
	return conflicts
}

// signedVacations loads the parsed intervals of an employee's signed vacation orders
func (s *DocumentService) signedVacations(ctx context.Context, employeeID int64) ([]models.VacationInterval, error) {
	docs, err := s.repos.Documents.ListForEmployee(ctx, employeeID, models.DocumentTypeVacation, models.DocumentStatusSigned)
	if err != nil {
		return nil, err
	}
	intervals, skipped := VacationIntervals(docs)
	if len(skipped) > 0 {
		s.logger.WithFields(logrus.Fields{
			"employee_id":  employeeID,
			"document_ids": skipped,
		}).Warn("Skipping vacation documents with unreadable periods")
	}
	return intervals, nil
}

// CreateVacation issues a vacation order after the overlap and soft-limit checks
func (s *DocumentService) CreateVacation(ctx context.Context, actor *Actor, req *models.VacationRequest) (*models.Document, error) {
	vType := models.VacationType(strings.TrimSpace(string(req.VacationType)))
	if vType == "" {
		vType = models.VacationAnnualMain
	}
	if !vType.IsValid() {
		return nil, invalid("vacation_type", "unknown vacation type %q", req.VacationType)
	}
	start, err := dates.ParseISO(req.StartDate)
	if err != nil {
		return nil, invalid("start_date", "%v", err)
	}
	end, err := dates.ParseISO(req.EndDate)
	if err != nil {
		return nil, invalid("end_date", "%v", err)
	}
	days := dates.DaysInclusive(start, end)
	if days <= 0 {
		return nil, invalid("end_date", "vacation must last at least one day")
	}

	var doc *models.Document
	err = s.withinTx(ctx, func(ctx context.Context, files *artifacts) error {
		emp, err := s.employee(ctx, req.EmployeeID)
		if err != nil {
			return err
		}
		if emp.EmploymentStatus == models.EmploymentStatusDismissed {
			return &InvalidStateError{Message: fmt.Sprintf("employee %d is dismissed", emp.ID)}
		}

		existing, err := s.signedVacations(ctx, emp.ID)
		if err != nil {
			return err
		}
		if conflicts := FindVacationConflicts(existing, start, end); len(conflicts) > 0 {
			return &ConflictError{
				Message: fmt.Sprintf("vacation overlaps %d signed vacation order(s)", len(conflicts)),
				Details: conflicts,
			}
		}

		limit := s.policy.AnnualLeaveSoftLimitDays
		if vType == models.VacationAnnualMain && days > limit && !req.ConfirmOverLimit {
			return &ConfirmationRequiredError{
				Message: fmt.Sprintf("annual leave of %d days exceeds the %d-day limit", days, limit),
				Details: map[string]int{"days": days, "limit": limit},
			}
		}

		wyStart, wyEnd := WorkYear(emp.HireDate.Ptr(), start)
		terms := &models.VacationTerms{
			VacationType:  vType,
			StartDate:     dates.FormatISO(start),
			EndDate:       dates.FormatISO(end),
			Days:          days,
			WorkYearStart: dates.FormatISO(wyStart),
			WorkYearEnd:   dates.FormatISO(wyEnd),
			MaterialAid:   req.MaterialAid,
			BasisText:     strings.TrimSpace(req.BasisText),
		}

		doc, err = s.issue(ctx, issueRequest{
			base:     req.DocumentRequest,
			docType:  models.DocumentTypeVacation,
			employee: emp,
			context:  models.DocumentContext{Vacation: terms},
			actor:    actor,
		}, files)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}
