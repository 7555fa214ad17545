package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hrdocs/personnel-backend/internal/config"
	"github.com/hrdocs/personnel-backend/internal/database"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/pkg/dates"
	"github.com/sirupsen/logrus"
)

// Actor is the authenticated user performing an operation
type Actor struct {
	UserID     int64
	Username   string
	Role       models.UserRole
	EmployeeID *int64
}

// Owns reports whether the actor is the employee with the given id
func (a Actor) Owns(employeeID int64) bool {
	return a.EmployeeID != nil && *a.EmployeeID == employeeID
}

// DocumentService implements the document lifecycle: creation, queries,
// status changes and signing.
type DocumentService struct {
	tx          *database.Transactor
	repos       *database.Repositories
	numbering   *NumberingService
	renderer    *DocumentRenderer
	credentials *CredentialService
	settings    SettingsProvider
	policy      config.PolicyConfig
	logger      *logrus.Logger
	now         func() time.Time
}

// NewDocumentService creates a new document service
func NewDocumentService(
	tx *database.Transactor,
	repos *database.Repositories,
	renderer *DocumentRenderer,
	credentials *CredentialService,
	settings SettingsProvider,
	policy config.PolicyConfig,
	logger *logrus.Logger,
) *DocumentService {
	return &DocumentService{
		tx:          tx,
		repos:       repos,
		numbering:   NewNumberingService(repos.Documents),
		renderer:    renderer,
		credentials: credentials,
		settings:    settings,
		policy:      policy,
		logger:      logger,
		now:         time.Now,
	}
}

// NextOrderNumber previews the number the next document of docType would get
func (s *DocumentService) NextOrderNumber(ctx context.Context, docType models.DocumentType, year int) (string, error) {
	if year <= 0 {
		year = s.now().Year()
	}
	return s.numbering.Next(ctx, docType, year)
}

// artifacts collects files written during a transaction so they can be
// removed when it rolls back.
type artifacts []string

func (a *artifacts) add(path string) { *a = append(*a, path) }

func (a artifacts) cleanup() { removeFiles(a) }

// issueRequest is a fully prepared document ready to be numbered and stored
type issueRequest struct {
	base     models.DocumentRequest
	docType  models.DocumentType
	employee *models.EmployeeListItem
	context  models.DocumentContext
	actor    *Actor
}

func employeeRef(emp *models.EmployeeListItem) models.EmployeeRef {
	return models.EmployeeRef{
		ID:         emp.ID,
		LastName:   emp.LastName,
		FirstName:  emp.FirstName,
		MiddleName: emp.MiddleName,
		FullName:   emp.FullName(),
		Department: emp.DepartmentName.String,
		Position:   emp.PositionName.String,
	}
}

// issue numbers, stores and renders a document. It must run inside a
// transaction; the preview file is recorded in files.
func (s *DocumentService) issue(ctx context.Context, req issueRequest, files *artifacts) (*models.Document, error) {
	orderDate := dates.Today(s.now())
	if strings.TrimSpace(req.base.OrderDate) != "" {
		d, err := dates.ParseISO(req.base.OrderDate)
		if err != nil {
			return nil, invalid("order_date", "%v", err)
		}
		orderDate = d
	}

	number, err := s.numbering.Resolve(ctx, req.docType, req.base.OrderNumber, orderDate)
	if err != nil {
		return nil, err
	}

	director := strings.TrimSpace(req.base.DirectorFullName)
	if director == "" {
		if director, err = s.settings.DirectorName(ctx); err != nil {
			return nil, err
		}
	}
	company, err := s.settings.CompanyName(ctx)
	if err != nil {
		return nil, err
	}

	docCtx := req.context
	docCtx.SchemaVersion = models.ContextSchemaVersion
	docCtx.OrderNumber = number
	docCtx.OrderDate = dates.FormatISO(orderDate)
	docCtx.Employee = employeeRef(req.employee)
	docCtx.DirectorFullName = director
	docCtx.CompanyName = company
	if err := docCtx.Validate(req.docType); err != nil {
		return nil, invalid("context", "%v", err)
	}

	title := strings.TrimSpace(req.base.Title)
	if title == "" {
		title = fmt.Sprintf("%s: %s", s.renderer.Title(req.docType), models.JoinName(req.employee.LastName, req.employee.FirstName))
	}

	status := models.DocumentStatusSent
	if req.base.Draft {
		status = models.DocumentStatusDraft
	}

	doc := &models.Document{
		Type:        req.docType,
		EmployeeID:  req.employee.ID,
		Status:      status,
		Title:       title,
		OrderNumber: number,
		Context:     docCtx,
	}
	if req.actor != nil && req.actor.UserID > 0 {
		doc.CreatedBy = models.NewNullInt64(req.actor.UserID)
	}
	if err := s.repos.Documents.Create(ctx, doc); err != nil {
		return nil, err
	}

	path, err := s.renderer.RenderPreview(doc)
	if err != nil {
		return nil, err
	}
	files.add(path)
	if err := s.repos.Documents.UpdateFile(ctx, doc.ID, doc.Context, path); err != nil {
		return nil, err
	}
	doc.FilePath = path

	s.logger.WithFields(logrus.Fields{
		"document_id":  doc.ID,
		"type":         doc.Type,
		"employee_id":  doc.EmployeeID,
		"order_number": doc.OrderNumber,
		"status":       doc.Status,
	}).Info("Document issued")
	return doc, nil
}

// withinTx runs fn in a transaction and removes files written by fn when it fails.
func (s *DocumentService) withinTx(ctx context.Context, fn func(ctx context.Context, files *artifacts) error) error {
	var files artifacts
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return fn(ctx, &files)
	})
	if err != nil {
		files.cleanup()
	}
	return err
}

func (s *DocumentService) employee(ctx context.Context, id int64) (*models.EmployeeListItem, error) {
	if id <= 0 {
		return nil, invalid("employee_id", "is required")
	}
	emp, err := s.repos.Employees.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "employee", id)
	}
	return emp, nil
}

// CreateDismissal issues a P-4 order for an employee who is not yet dismissed
func (s *DocumentService) CreateDismissal(ctx context.Context, actor *Actor, req *models.DismissalRequest) (*models.Document, error) {
	if strings.TrimSpace(req.DismissalDate) == "" {
		return nil, invalid("dismissal_date", "is required")
	}
	d, err := dates.ParseISO(req.DismissalDate)
	if err != nil {
		return nil, invalid("dismissal_date", "%v", err)
	}
	if req.SeveranceGrn < 0 || req.SeveranceKop < 0 || req.SeveranceKop > 99 {
		return nil, invalid("severance", "amount is out of range")
	}

	terms := req.DismissalTerms
	terms.DismissalDate = dates.FormatISO(d)
	terms.Reason = strings.TrimSpace(terms.Reason)
	terms.Basis = strings.TrimSpace(terms.Basis)

	var doc *models.Document
	err = s.withinTx(ctx, func(ctx context.Context, files *artifacts) error {
		emp, err := s.employee(ctx, req.EmployeeID)
		if err != nil {
			return err
		}
		if emp.EmploymentStatus == models.EmploymentStatusDismissed {
			return &InvalidStateError{Message: fmt.Sprintf("employee %d is already dismissed", emp.ID)}
		}
		doc, err = s.issue(ctx, issueRequest{
			base:     req.DocumentRequest,
			docType:  models.DocumentTypeDismissal,
			employee: emp,
			context:  models.DocumentContext{Dismissal: &terms},
			actor:    actor,
		}, files)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// CreateTraining issues a training referral
func (s *DocumentService) CreateTraining(ctx context.Context, actor *Actor, req *models.TrainingRequest) (*models.Document, error) {
	terms, err := trainingTerms(req)
	if err != nil {
		return nil, err
	}

	var doc *models.Document
	err = s.withinTx(ctx, func(ctx context.Context, files *artifacts) error {
		emp, err := s.employee(ctx, req.EmployeeID)
		if err != nil {
			return err
		}
		doc, err = s.issue(ctx, issueRequest{
			base:     req.DocumentRequest,
			docType:  models.DocumentTypeTraining,
			employee: emp,
			context:  models.DocumentContext{Training: terms},
			actor:    actor,
		}, files)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func trainingTerms(req *models.TrainingRequest) (*models.TrainingTerms, error) {
	title := strings.TrimSpace(req.CourseTitle)
	if title == "" {
		return nil, invalid("course_title", "is required")
	}
	if strings.TrimSpace(req.OrderDate) == "" {
		return nil, invalid("order_date", "is required")
	}
	if req.Format != "" && !req.Format.IsValid() {
		return nil, invalid("format", "unknown training format %q", req.Format)
	}
	if req.Mode != "" && !req.Mode.IsValid() {
		return nil, invalid("mode", "unknown training mode %q", req.Mode)
	}

	start, err := dates.ParseISO(req.StartDate)
	if err != nil {
		return nil, invalid("start_date", "%v", err)
	}
	end, err := dates.ParseISO(req.EndDate)
	if err != nil {
		return nil, invalid("end_date", "%v", err)
	}
	if end.Before(start) {
		return nil, invalid("end_date", "must not be before start_date")
	}

	hours, err := req.Hours.Float()
	if err != nil || hours <= 0 {
		return nil, invalid("hours", "must be a positive number")
	}

	return &models.TrainingTerms{
		CourseTitle:   title,
		Provider:      strings.TrimSpace(req.Provider),
		Format:        req.Format,
		Place:         strings.TrimSpace(req.Place),
		Mode:          req.Mode,
		StartDate:     dates.FormatISO(start),
		EndDate:       dates.FormatISO(end),
		Hours:         hours,
		Funding:       strings.TrimSpace(req.Funding),
		EstimatedCost: strings.TrimSpace(req.EstimatedCost),
		BasisText:     strings.TrimSpace(req.BasisText),
	}, nil
}

// CreateInternshipReferral issues an assignment order for an active internship
// and links it to the internship.
func (s *DocumentService) CreateInternshipReferral(ctx context.Context, actor *Actor, req *models.InternshipReferralRequest) (*models.Document, error) {
	if req.InternshipID <= 0 {
		return nil, invalid("internship_id", "is required")
	}

	var doc *models.Document
	err := s.withinTx(ctx, func(ctx context.Context, files *artifacts) error {
		var err error
		doc, err = s.issueReferral(ctx, actor, req.DocumentRequest, req.InternshipID, files)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) issueReferral(ctx context.Context, actor *Actor, base models.DocumentRequest, internshipID int64, files *artifacts) (*models.Document, error) {
	if _, err := s.repos.Internships.GetForUpdate(ctx, internshipID); err != nil {
		return nil, notFound(err, "internship", internshipID)
	}
	in, err := s.repos.Internships.GetByID(ctx, internshipID)
	if err != nil {
		return nil, notFound(err, "internship", internshipID)
	}
	if in.Status != models.InternshipStatusActive {
		return nil, &InvalidStateError{Message: fmt.Sprintf("internship %d is %s", in.ID, in.Status)}
	}

	emp, err := s.employee(ctx, in.EmployeeID)
	if err != nil {
		return nil, err
	}

	terms := &models.InternshipTerms{
		InternshipID:   in.ID,
		StartDate:      dates.FormatISO(in.StartDate),
		Months:         in.Months,
		PlannedEndDate: dates.FormatISO(in.PlannedEndDate),
		MentorFullName: in.MentorFullName.String,
	}
	if in.MentorEmployeeID.Valid {
		id := in.MentorEmployeeID.Int64
		terms.MentorEmployeeID = &id
	}

	base.EmployeeID = emp.ID
	doc, err := s.issue(ctx, issueRequest{
		base:     base,
		docType:  models.DocumentTypeInternshipReferral,
		employee: emp,
		context:  models.DocumentContext{Internship: terms},
		actor:    actor,
	}, files)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Internships.LinkDocument(ctx, in.ID, doc.ID); err != nil {
		return nil, err
	}
	return doc, nil
}
