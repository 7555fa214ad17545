package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lockInternshipQuery = `SELECT (.+) FROM internships i WHERE i.id = \$1 FOR UPDATE`

func TestSweepOverdue(t *testing.T) {
	svc, mock := setupInternshipTest(t)

	mock.ExpectExec(`UPDATE internships SET status = 'completed'`).
		WithArgs(date(2025, 6, 15)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := svc.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepOverdue_EndDateBoundary(t *testing.T) {
	svc, mock := setupInternshipTest(t)
	today := date(2025, 6, 15)

	// one active internship ended yesterday and one ends tomorrow: the strict
	// comparison completes only the first and leaves the second due soon

	mock.ExpectExec(`UPDATE internships SET status = 'completed', updated_at = NOW\(\) WHERE status = 'active' AND planned_end_date < \$1`).
		WithArgs(today).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`COUNT\(\*\) FILTER \(WHERE planned_end_date < \$1\) AS overdue, COUNT\(\*\) FILTER \(WHERE planned_end_date BETWEEN \$1 AND \$2\) AS due_soon FROM internships WHERE status = 'active'`).
		WithArgs(today, today.AddDate(0, 0, 14)).
		WillReturnRows(sqlmock.NewRows([]string{"overdue", "due_soon"}).AddRow(0, 1))

	n, err := svc.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	c, err := svc.Counters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, c.Overdue)
	assert.Equal(t, 1, c.DueSoon)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInternshipList_InvalidStatus(t *testing.T) {
	svc, mock := setupInternshipTest(t)

	_, err := svc.List(context.Background(), models.InternshipFilter{Status: "paused"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExtend(t *testing.T) {
	end := date(2025, 7, 31)

	t.Run("Out Of Range", func(t *testing.T) {
		svc, mock := setupInternshipTest(t)
		for _, months := range []int{0, -1, 13} {
			_, err := svc.Extend(context.Background(), 4, months, "")
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Completed Is Untouched", func(t *testing.T) {
		svc, mock := setupInternshipTest(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockInternshipQuery).WithArgs(int64(4)).
			WillReturnRows(internshipRow(4, models.InternshipStatusCompleted, end))
		mock.ExpectRollback()

		_, err := svc.Extend(context.Background(), 4, 1, "")
		var stateErr *InvalidStateError
		require.ErrorAs(t, err, &stateErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Extends From Planned End", func(t *testing.T) {
		svc, mock := setupInternshipTest(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockInternshipQuery).WithArgs(int64(4)).
			WillReturnRows(internshipRow(4, models.InternshipStatusActive, end))
		mock.ExpectExec(`UPDATE internships SET months`).
			WithArgs(5, date(2025, 9, 30), "active", "слабкі результати", int64(4)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		mock.ExpectQuery(`SELECT (.+) FROM internships i`).WithArgs(int64(4)).
			WillReturnRows(internshipRow(4, models.InternshipStatusActive, date(2025, 9, 30)))

		_, err := svc.Extend(context.Background(), 4, 2, " слабкі результати ")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFinish(t *testing.T) {
	svc, mock := setupInternshipTest(t)
	end := date(2025, 7, 31)

	mock.ExpectBegin()
	mock.ExpectQuery(lockInternshipQuery).WithArgs(int64(4)).
		WillReturnRows(internshipRow(4, models.InternshipStatusActive, end))
	mock.ExpectExec(`UPDATE internships SET months`).
		WithArgs(3, end, "failed", "", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.MarkFailed(context.Background(), 4, "")
	var stateErr *InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}
