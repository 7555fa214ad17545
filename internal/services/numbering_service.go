package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hrdocs/personnel-backend/internal/database"
	"github.com/hrdocs/personnel-backend/internal/models"
)

// NumberingService allocates "N/YYYY" order numbers per document type.
//
// Allocation reads the current maximum and adds one. Two concurrent callers can
// receive the same number; nothing in the schema prevents it.
type NumberingService struct {
	documents *database.DocumentRepository
}

// NewNumberingService creates a new numbering service
func NewNumberingService(documents *database.DocumentRepository) *NumberingService {
	return &NumberingService{documents: documents}
}

// NextOrderNumber returns max+1 over the numbers of the given year.
// Entries from other years or with a non-numeric prefix are ignored.
func NextOrderNumber(existing []string, year int) string {
	suffix := "/" + strconv.Itoa(year)
	max := 0
	for _, n := range existing {
		n = strings.TrimSpace(n)
		if !strings.HasSuffix(n, suffix) {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(n, suffix)))
		if err != nil || v <= 0 {
			continue
		}
		if v > max {
			max = v
		}
	}
	return fmt.Sprintf("%d/%d", max+1, year)
}

// Next returns the next free number of docType for year
func (s *NumberingService) Next(ctx context.Context, docType models.DocumentType, year int) (string, error) {
	existing, err := s.documents.ListOrderNumbers(ctx, docType, year)
	if err != nil {
		return "", err
	}
	return NextOrderNumber(existing, year), nil
}

// Resolve returns explicit when it is still unused, or allocates the next
// number in the year of orderDate.
func (s *NumberingService) Resolve(ctx context.Context, docType models.DocumentType, explicit string, orderDate time.Time) (string, error) {
	explicit = strings.TrimSpace(explicit)
	if explicit == "" {
		return s.Next(ctx, docType, orderDate.Year())
	}
	exists, err := s.documents.OrderNumberExists(ctx, docType, explicit)
	if err != nil {
		return "", err
	}
	if exists {
		return "", &ConflictError{Message: fmt.Sprintf("order number %s is already used", explicit)}
	}
	return explicit, nil
}
