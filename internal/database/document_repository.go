package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/lib/pq"
)

const documentColumns = `d.id, d.type, d.employee_id, d.status, d.title, d.order_number, d.context,
	d.file_path, d.created_by, d.signed_by, d.created_at, d.sent_at, d.signed_at, d.updated_at`

// DocumentRepository handles database operations for personnel documents
type DocumentRepository struct {
	db DB
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a document and fills its id and timestamps
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (
			type, employee_id, status, title, order_number, context, file_path, created_by, sent_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CASE WHEN $3 = 'sent' THEN NOW() END)
		RETURNING id, created_at, updated_at
	`
	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		doc.Type,
		doc.EmployeeID,
		doc.Status,
		doc.Title,
		doc.OrderNumber,
		doc.Context,
		doc.FilePath,
		doc.CreatedBy,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// GetByID retrieves a document with the employee name
func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*models.DocumentListItem, error) {
	query := `SELECT ` + documentColumns + `,
			TRIM(e.last_name || ' ' || e.first_name || ' ' || e.middle_name) AS employee_full_name
		FROM documents d
		JOIN employees e ON e.id = d.employee_id
		WHERE d.id = $1`

	var doc models.DocumentListItem
	if err := conn(ctx, r.db).GetContext(ctx, &doc, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %d not found: %w", id, sql.ErrNoRows)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

// GetForUpdate loads a document and locks its row for the current transaction
func (r *DocumentRepository) GetForUpdate(ctx context.Context, id int64) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents d WHERE d.id = $1 FOR UPDATE`

	var doc models.Document
	if err := conn(ctx, r.db).GetContext(ctx, &doc, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %d not found: %w", id, sql.ErrNoRows)
		}
		return nil, fmt.Errorf("failed to lock document: %w", err)
	}
	return &doc, nil
}

// List returns documents matching the filter, newest first
func (r *DocumentRepository) List(ctx context.Context, f models.DocumentFilter) ([]models.DocumentListItem, error) {
	var (
		where []string
		args  []interface{}
	)
	if len(f.Statuses) > 0 {
		args = append(args, pq.Array(statusStrings(f.Statuses)))
		where = append(where, fmt.Sprintf("d.status = ANY($%d)", len(args)))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		where = append(where, fmt.Sprintf("d.type = $%d", len(args)))
	}
	if f.EmployeeID > 0 {
		args = append(args, f.EmployeeID)
		where = append(where, fmt.Sprintf("d.employee_id = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(LOWER(d.title) LIKE $%d OR LOWER(d.order_number) LIKE $%d OR LOWER(e.last_name || ' ' || e.first_name) LIKE $%d)", n, n, n))
	}

	query := `SELECT ` + documentColumns + `,
			TRIM(e.last_name || ' ' || e.first_name || ' ' || e.middle_name) AS employee_full_name
		FROM documents d
		JOIN employees e ON e.id = d.employee_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY d.created_at DESC, d.id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	docs := []models.DocumentListItem{}
	if err := conn(ctx, r.db).SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// ListOrderNumbers returns the stored order numbers of a type that end in /year
func (r *DocumentRepository) ListOrderNumbers(ctx context.Context, docType models.DocumentType, year int) ([]string, error) {
	query := `SELECT order_number FROM documents WHERE type = $1 AND order_number LIKE $2`

	numbers := []string{}
	if err := conn(ctx, r.db).SelectContext(ctx, &numbers, query, docType, fmt.Sprintf("%%/%d", year)); err != nil {
		return nil, fmt.Errorf("failed to list order numbers: %w", err)
	}
	return numbers, nil
}

// OrderNumberExists reports whether the exact order number is already used for the type
func (r *DocumentRepository) OrderNumberExists(ctx context.Context, docType models.DocumentType, number string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM documents WHERE type = $1 AND order_number = $2)`
	if err := conn(ctx, r.db).GetContext(ctx, &exists, query, docType, strings.TrimSpace(number)); err != nil {
		return false, fmt.Errorf("failed to check order number: %w", err)
	}
	return exists, nil
}

// ListForEmployee returns an employee's documents of a type in the given statuses
func (r *DocumentRepository) ListForEmployee(ctx context.Context, employeeID int64, docType models.DocumentType, statuses ...models.DocumentStatus) ([]models.Document, error) {
	query := `SELECT ` + documentColumns + `
		FROM documents d
		WHERE d.employee_id = $1 AND d.type = $2 AND d.status = ANY($3)
		ORDER BY d.id`

	docs := []models.Document{}
	if err := conn(ctx, r.db).SelectContext(ctx, &docs, query, employeeID, docType, pq.Array(statusStrings(statuses))); err != nil {
		return nil, fmt.Errorf("failed to list employee documents: %w", err)
	}
	return docs, nil
}

// TransitionStatus moves a document to status `to` only if it is currently in
// one of `from`. A zero-row update returns sql.ErrNoRows.
func (r *DocumentRepository) TransitionStatus(ctx context.Context, id int64, from []models.DocumentStatus, to models.DocumentStatus) error {
	query := `
		UPDATE documents
		SET status = $1,
		    sent_at = CASE WHEN $1 = 'sent' THEN NOW() ELSE sent_at END,
		    updated_at = NOW()
		WHERE id = $2 AND status = ANY($3)
	`
	result, err := conn(ctx, r.db).ExecContext(ctx, query, to, id, pq.Array(statusStrings(from)))
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	return requireAffected(result)
}

// MarkSigned finalizes a sent document. A zero-row update (the document is no
// longer sent) returns sql.ErrNoRows.
func (r *DocumentRepository) MarkSigned(ctx context.Context, id, signerID int64, docCtx models.DocumentContext, filePath string, signedAt time.Time) error {
	query := `
		UPDATE documents
		SET status = 'signed', signed_by = $1, signed_at = $2, context = $3,
		    file_path = $4, updated_at = NOW()
		WHERE id = $5 AND status = 'sent'
	`
	result, err := conn(ctx, r.db).ExecContext(ctx, query, signerID, signedAt, docCtx, filePath, id)
	if err != nil {
		return fmt.Errorf("failed to mark document signed: %w", err)
	}
	return requireAffected(result)
}

// UpdateFile records the latest rendered artifact and context
func (r *DocumentRepository) UpdateFile(ctx context.Context, id int64, docCtx models.DocumentContext, filePath string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE documents SET context = $1, file_path = $2, updated_at = NOW() WHERE id = $3`, docCtx, filePath, id)
	if err != nil {
		return fmt.Errorf("failed to update document file: %w", err)
	}
	return requireAffected(result)
}

func statusStrings(statuses []models.DocumentStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
