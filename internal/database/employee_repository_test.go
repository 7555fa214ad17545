package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEmployee(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEmployeeRepository(db)
	ctx := context.Background()

	in := &models.EmployeeInput{LastName: " Коваль ", FirstName: "Олена", Email: "olena@example.com"}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO employees`).
			WithArgs("Коваль", "Олена", "", sqlmock.AnyArg(), "olena@example.com", sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "active").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(17)))

		id, err := repo.Create(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, int64(17), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO employees`).
			WillReturnError(fmt.Errorf("database error"))

		_, err := repo.Create(ctx, in)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create employee")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetEmployeeByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEmployeeRepository(db)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`SELECT (.+) FROM employees e WHERE LOWER\(e.email\)`).
			WithArgs("olena@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "last_name", "first_name", "middle_name", "email", "employment_status", "created_at", "updated_at"}).
				AddRow(int64(3), "Коваль", "Олена", "", "olena@example.com", "active", now, now))

		emp, err := repo.GetByEmail(ctx, "olena@example.com")
		require.NoError(t, err)
		require.NotNil(t, emp)
		assert.Equal(t, int64(3), emp.ID)
		assert.Equal(t, models.EmploymentStatusActive, emp.EmploymentStatus)
	})

	t.Run("Absent", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM employees e WHERE LOWER\(e.email\)`).
			WithArgs("none@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		emp, err := repo.GetByEmail(ctx, "none@example.com")
		require.NoError(t, err)
		assert.Nil(t, emp)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkDismissed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEmployeeRepository(db)
	on := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE employees SET employment_status = 'dismissed'`).
		WithArgs(on, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkDismissed(context.Background(), 3, on))
	assert.NoError(t, mock.ExpectationsWereMet())
}
