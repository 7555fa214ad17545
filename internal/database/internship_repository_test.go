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

func TestCompleteOverdue(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInternshipRepository(db)
	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE internships SET status = 'completed'`).
		WithArgs(today).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.CompleteOverdue(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateActive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInternshipRepository(db)
	end := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	in := &models.Internship{ID: 4, Months: 4, PlannedEndDate: end, Status: models.InternshipStatusActive, Notes: "x"}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE internships SET months`).
			WithArgs(4, end, "active", "x", int64(4)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.UpdateActive(context.Background(), in))
	})

	t.Run("Not Active", func(t *testing.T) {
		mock.ExpectExec(`UPDATE internships SET months`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.UpdateActive(context.Background(), in), sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInternshipCounters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInternshipRepository(db)
	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM internships WHERE status = 'active'`).
		WithArgs(today, today.AddDate(0, 0, 14)).
		WillReturnRows(sqlmock.NewRows([]string{"overdue", "due_soon"}).AddRow(2, 5))

	c, err := repo.Counters(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Overdue)
	assert.Equal(t, 5, c.DueSoon)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasActiveInternship(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInternshipRepository(db)
	query := `SELECT EXISTS \(SELECT 1 FROM internships WHERE employee_id = \$1 AND status = 'active'\)`

	mock.ExpectQuery(query).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(query).WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	active, err := repo.HasActive(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, active)

	active, err = repo.HasActive(context.Background(), 6)
	require.NoError(t, err)
	assert.False(t, active)
	assert.NoError(t, mock.ExpectationsWereMet())
}
