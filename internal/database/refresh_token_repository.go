package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hrdocs/personnel-backend/internal/models"
)

// RefreshTokenRepository handles refresh token database operations
type RefreshTokenRepository struct {
	db DB
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// hashToken creates a SHA-256 hash of the token for storage
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// Store saves the hash of a refresh token
func (r *RefreshTokenRepository) Store(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, uuid.New(), userID, hashToken(token), expiresAt); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// GetValid returns a non-revoked, unexpired token
func (r *RefreshTokenRepository) GetValid(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE token_hash = $1 AND revoked = FALSE AND expires_at > NOW()
	`
	var rt models.RefreshToken
	if err := conn(ctx, r.db).GetContext(ctx, &rt, query, hashToken(token)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("refresh token not found or expired: %w", sql.ErrNoRows)
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return &rt, nil
}

// Revoke marks a token as revoked
func (r *RefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	if _, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE token_hash = $1`, hashToken(token)); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllForUser revokes every token of a user
func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	if _, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE`, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}
