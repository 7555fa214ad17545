package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/pkg/dates"
)

// List returns documents matching the filter
func (s *DocumentService) List(ctx context.Context, f models.DocumentFilter) ([]models.DocumentListItem, error) {
	return s.repos.Documents.List(ctx, f)
}

// Get returns one document
func (s *DocumentService) Get(ctx context.Context, id int64) (*models.DocumentListItem, error) {
	doc, err := s.repos.Documents.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "document", id)
	}
	return doc, nil
}

// GetForActor returns a document the actor is allowed to see. Employees see
// only their own documents that have left draft.
func (s *DocumentService) GetForActor(ctx context.Context, id int64, actor Actor) (*models.DocumentListItem, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleEmployee && (!actor.Owns(doc.EmployeeID) || doc.Status == models.DocumentStatusDraft) {
		return nil, &NotFoundError{Entity: "document", ID: id}
	}
	return doc, nil
}

// ListForEmployee returns an employee's non-draft documents
func (s *DocumentService) ListForEmployee(ctx context.Context, employeeID int64) ([]models.DocumentListItem, error) {
	return s.repos.Documents.List(ctx, models.DocumentFilter{
		EmployeeID: employeeID,
		Statuses: []models.DocumentStatus{
			models.DocumentStatusSent,
			models.DocumentStatusSigned,
			models.DocumentStatusArchived,
		},
	})
}

// Send routes a draft to the employee for signing
func (s *DocumentService) Send(ctx context.Context, id int64) (*models.DocumentListItem, error) {
	return s.transition(ctx, id, models.DocumentStatusSent)
}

// Archive retires a document from any non-archived status
func (s *DocumentService) Archive(ctx context.Context, id int64) (*models.DocumentListItem, error) {
	return s.transition(ctx, id, models.DocumentStatusArchived)
}

func (s *DocumentService) transition(ctx context.Context, id int64, to models.DocumentStatus) (*models.DocumentListItem, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.Status.CanTransitionTo(to) {
		return nil, &InvalidStateError{Message: fmt.Sprintf("document %d cannot move from %s to %s", id, doc.Status, to)}
	}

	var from []models.DocumentStatus
	for _, st := range models.AllDocumentStatuses() {
		if st.CanTransitionTo(to) {
			from = append(from, st)
		}
	}
	if err := s.repos.Documents.TransitionStatus(ctx, id, from, to); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &InvalidStateError{Message: fmt.Sprintf("document %d changed status concurrently", id)}
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Preview re-renders the stored context into the preview directory without
// touching the database.
func (s *DocumentService) Preview(ctx context.Context, id int64) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.renderer.RenderPreview(&doc.Document)
}

// File returns the path of the document's current artifact, rendering a
// preview when the recorded file is gone.
func (s *DocumentService) File(ctx context.Context, doc *models.DocumentListItem) (string, error) {
	if doc.FilePath != "" {
		if _, err := os.Stat(doc.FilePath); err == nil {
			return doc.FilePath, nil
		}
	}
	if doc.Status == models.DocumentStatusSigned {
		return "", fmt.Errorf("signed artifact of document %d is missing", doc.ID)
	}
	return s.renderer.RenderPreview(&doc.Document)
}

// TrainingReminder is the nearest upcoming training of an employee
type TrainingReminder struct {
	DocumentID  int64  `json:"document_id"`
	CourseTitle string `json:"course_title"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Status      string `json:"status"`
}

// EmployeeNotes are the reminders shown on the employee home screen
type EmployeeNotes struct {
	CurrentVacation  *models.VacationInterval `json:"current_vacation"`
	UpcomingTraining *TrainingReminder        `json:"upcoming_training"`
}

// Notes returns the current vacation and the nearest upcoming training of an employee
func (s *DocumentService) Notes(ctx context.Context, employeeID int64) (*EmployeeNotes, error) {
	today := dates.Today(s.now())
	notes := &EmployeeNotes{}

	vacations, err := s.signedVacations(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	for i := range vacations {
		v := vacations[i]
		if !today.Before(v.StartDate) && !today.After(v.EndDate) {
			notes.CurrentVacation = &v
			break
		}
	}

	trainings, err := s.repos.Documents.ListForEmployee(ctx, employeeID, models.DocumentTypeTraining,
		models.DocumentStatusSent, models.DocumentStatusSigned)
	if err != nil {
		return nil, err
	}
	notes.UpcomingTraining = nearestTraining(trainings, today)
	return notes, nil
}

func nearestTraining(docs []models.Document, today time.Time) *TrainingReminder {
	type candidate struct {
		doc   models.Document
		start time.Time
	}
	var upcoming []candidate
	for _, d := range docs {
		t := d.Context.Training
		if t == nil {
			continue
		}
		start, err := dates.ParseISO(t.StartDate)
		if err != nil || start.Before(today) {
			continue
		}
		upcoming = append(upcoming, candidate{doc: d, start: start})
	}
	if len(upcoming) == 0 {
		return nil
	}
	sort.Slice(upcoming, func(i, j int) bool { return upcoming[i].start.Before(upcoming[j].start) })

	c := upcoming[0]
	return &TrainingReminder{
		DocumentID:  c.doc.ID,
		CourseTitle: c.doc.Context.Training.CourseTitle,
		StartDate:   c.doc.Context.Training.StartDate,
		EndDate:     c.doc.Context.Training.EndDate,
		Status:      string(c.doc.Status),
	}
}
