package models

import (
	"time"

	"github.com/google/uuid"
)

// SignatureMethodClick is the only signing method supported
const SignatureMethodClick = "click-to-sign"

// Signature is an append-only record of a document signing
type Signature struct {
	ID             uuid.UUID `json:"id" db:"id"`
	DocumentID     int64     `json:"document_id" db:"document_id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	Role           UserRole  `json:"role" db:"role"`
	Method         string    `json:"method" db:"method"`
	FileHashSHA256 string    `json:"file_hash_sha256" db:"file_hash_sha256"`
	FilePath       string    `json:"file_path" db:"file_path"`
	SignedAt       time.Time `json:"signed_at" db:"signed_at"`
}
