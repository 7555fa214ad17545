package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListOrderNumbers(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)

	mock.ExpectQuery(`SELECT order_number FROM documents WHERE type`).
		WithArgs("HIRE", "%/2025").
		WillReturnRows(sqlmock.NewRows([]string{"order_number"}).AddRow("1/2025").AddRow("12/2025"))

	numbers, err := repo.ListOrderNumbers(context.Background(), models.DocumentTypeHire, 2025)
	require.NoError(t, err)
	assert.Equal(t, []string{"1/2025", "12/2025"}, numbers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDocumentByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`SELECT (.+) FROM documents d JOIN employees e`).
			WithArgs(int64(9)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "type", "employee_id", "status", "title", "order_number", "context",
				"file_path", "created_at", "updated_at", "employee_full_name",
			}).AddRow(
				int64(9), "VACATION", int64(3), "sent", "Наказ про відпустку", "4/2025",
				[]byte(`{"schema_version":1,"vacation":{"start_date":"2025-06-01","end_date":"2025-06-10"}}`),
				"/tmp/x.docx", now, now, "Коваль Олена",
			))

		doc, err := repo.GetByID(ctx, 9)
		require.NoError(t, err)
		assert.Equal(t, models.DocumentTypeVacation, doc.Type)
		assert.Equal(t, models.DocumentStatusSent, doc.Status)
		require.NotNil(t, doc.Context.Vacation)
		assert.Equal(t, "2025-06-10", doc.Context.Vacation.EndDate)
		assert.Equal(t, "Коваль Олена", doc.EmployeeFullName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM documents d JOIN employees e`).
			WithArgs(int64(10)).
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.GetByID(ctx, 10)
		assert.Nil(t, doc)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMarkSigned(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE documents SET status = 'signed'`).
			WithArgs(int64(2), sqlmock.AnyArg(), sqlmock.AnyArg(), "/docs/a.docx", int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.MarkSigned(ctx, 5, 2, models.DocumentContext{}, "/docs/a.docx", time.Now())
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No Longer Sent", func(t *testing.T) {
		mock.ExpectExec(`UPDATE documents SET status = 'signed'`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkSigned(ctx, 5, 2, models.DocumentContext{}, "/docs/a.docx", time.Now())
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransitionStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)

	mock.ExpectExec(`UPDATE documents SET status = \$1`).
		WithArgs("archived", int64(7), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.TransitionStatus(context.Background(), 7,
		[]models.DocumentStatus{models.DocumentStatusSigned}, models.DocumentStatusArchived)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
