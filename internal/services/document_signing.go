package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/pkg/dates"
	"github.com/sirupsen/logrus"
)

// SignResult describes a completed signing
type SignResult struct {
	Document          *models.Document  `json:"document"`
	Signature         *models.Signature `json:"signature"`
	EmployeeDismissed bool              `json:"employee_dismissed,omitempty"`
	AccountsDisabled  int64             `json:"accounts_disabled,omitempty"`
	HireDateRecorded  bool              `json:"hire_date_recorded,omitempty"`
}

// Sign finalizes a sent document: stamps the context, renders the signed
// artifact, records the signature and applies the type-specific effects.
// Anything that is not sent is rejected before any write.
func (s *DocumentService) Sign(ctx context.Context, documentID int64, actor Actor) (*SignResult, error) {
	result := &SignResult{}

	err := s.withinTx(ctx, func(ctx context.Context, files *artifacts) error {
		doc, err := s.repos.Documents.GetForUpdate(ctx, documentID)
		if err != nil {
			return notFound(err, "document", documentID)
		}
		if actor.Role == models.RoleEmployee {
			if !actor.Owns(doc.EmployeeID) {
				return &ForbiddenError{Message: "employees can sign only their own documents"}
			}
			// access tokens outlive a dismissal until they expire
			user, err := s.repos.Users.GetByID(ctx, actor.UserID)
			if err != nil {
				return notFound(err, "user", actor.UserID)
			}
			if !user.IsActive {
				return &ForbiddenError{Message: "account is deactivated"}
			}
		}
		if doc.Status != models.DocumentStatusSent {
			return &InvalidStateError{Message: fmt.Sprintf("document %d is %s; only sent documents can be signed", doc.ID, doc.Status)}
		}

		now := s.now()
		signedBy := actor.Username
		if actor.Owns(doc.EmployeeID) && doc.Context.Employee.FullName != "" {
			signedBy = doc.Context.Employee.FullName
		}
		doc.Context.EmployeeSign = models.NewSignStamp(now, signedBy)
		if doc.Context.DirectorFullName == "" {
			if doc.Context.DirectorFullName, err = s.settings.DirectorName(ctx); err != nil {
				return err
			}
		}

		path, hash, err := s.renderer.RenderFinal(doc)
		if err != nil {
			return err
		}
		files.add(path)

		if err := s.repos.Documents.MarkSigned(ctx, doc.ID, actor.UserID, doc.Context, path, now); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &InvalidStateError{Message: fmt.Sprintf("document %d is no longer sent", doc.ID)}
			}
			return err
		}
		doc.Status = models.DocumentStatusSigned
		doc.FilePath = path
		doc.SignedBy = models.NewNullInt64(actor.UserID)
		doc.SignedAt.Time, doc.SignedAt.Valid = now, true

		if err := s.applySignEffects(ctx, doc, result); err != nil {
			return err
		}

		sig := &models.Signature{
			ID:             uuid.New(),
			DocumentID:     doc.ID,
			UserID:         actor.UserID,
			Role:           actor.Role,
			Method:         models.SignatureMethodClick,
			FileHashSHA256: hash,
			FilePath:       path,
			SignedAt:       now,
		}
		if err := s.repos.Signatures.Create(ctx, sig); err != nil {
			return err
		}

		result.Document = doc
		result.Signature = sig
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"document_id": result.Document.ID,
		"type":        result.Document.Type,
		"signer_id":   actor.UserID,
		"sha256":      result.Signature.FileHashSHA256,
	}).Info("Document signed")
	return result, nil
}

func (s *DocumentService) applySignEffects(ctx context.Context, doc *models.Document, result *SignResult) error {
	switch doc.Type {
	case models.DocumentTypeDismissal:
		if err := s.repos.Employees.MarkDismissed(ctx, doc.EmployeeID, dates.Today(s.now())); err != nil {
			return err
		}
		n, err := s.repos.Users.DeactivateByEmployee(ctx, doc.EmployeeID)
		if err != nil {
			return err
		}
		result.EmployeeDismissed = true
		result.AccountsDisabled = n

	case models.DocumentTypeHire:
		if start, ok := doc.Context.HireStartDate(); ok {
			if err := s.repos.Employees.SetHireDateIfUnset(ctx, doc.EmployeeID, start); err != nil {
				return err
			}
			result.HireDateRecorded = true
		}
	}
	return nil
}
