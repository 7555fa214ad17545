package database

import (
	"context"
	"fmt"

	"github.com/hrdocs/personnel-backend/internal/models"
)

// SignatureRepository appends and reads signature records
type SignatureRepository struct {
	db DB
}

// NewSignatureRepository creates a new SignatureRepository
func NewSignatureRepository(db DB) *SignatureRepository {
	return &SignatureRepository{db: db}
}

// Create appends a signature record
func (r *SignatureRepository) Create(ctx context.Context, s *models.Signature) error {
	query := `
		INSERT INTO signatures (id, document_id, user_id, role, method, file_hash_sha256, file_path, signed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		s.ID, s.DocumentID, s.UserID, s.Role, s.Method, s.FileHashSHA256, s.FilePath, s.SignedAt)
	if err != nil {
		return fmt.Errorf("failed to record signature: %w", err)
	}
	return nil
}

// ListByDocument returns the signatures of a document, oldest first
func (r *SignatureRepository) ListByDocument(ctx context.Context, documentID int64) ([]models.Signature, error) {
	query := `
		SELECT id, document_id, user_id, role, method, file_hash_sha256, file_path, signed_at
		FROM signatures
		WHERE document_id = $1
		ORDER BY signed_at
	`
	sigs := []models.Signature{}
	if err := conn(ctx, r.db).SelectContext(ctx, &sigs, query, documentID); err != nil {
		return nil, fmt.Errorf("failed to list signatures: %w", err)
	}
	return sigs, nil
}
