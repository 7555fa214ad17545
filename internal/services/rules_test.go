package services

import (
	"testing"
	"time"

	"github.com/hrdocs/personnel-backend/internal/config"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextOrderNumber(t *testing.T) {
	t.Run("Empty Year", func(t *testing.T) {
		assert.Equal(t, "1/2025", NextOrderNumber(nil, 2025))
	})

	t.Run("Max Plus One", func(t *testing.T) {
		existing := []string{"3/2025", "12/2025", "7/2025", "40/2024", "abc/2025", " 5/2025 "}
		assert.Equal(t, "13/2025", NextOrderNumber(existing, 2025))
	})

	t.Run("Idempotent Without Inserts", func(t *testing.T) {
		existing := []string{"1/2025", "2/2025"}
		assert.Equal(t, NextOrderNumber(existing, 2025), NextOrderNumber(existing, 2025))
	})

	t.Run("Monotonic", func(t *testing.T) {
		existing := []string{}
		for i := 1; i <= 5; i++ {
			n := NextOrderNumber(existing, 2026)
			existing = append(existing, n)
		}
		assert.Equal(t, []string{"1/2026", "2/2026", "3/2026", "4/2026", "5/2026"}, existing)
	})
}

func TestWorkYear(t *testing.T) {
	tests := []struct {
		name      string
		hire      *time.Time
		anchor    time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"Leap Day Hire", ptrTime(date(2020, 2, 29)), date(2025, 3, 1), date(2025, 2, 28), date(2026, 2, 27)},
		{"Before Anniversary", ptrTime(date(2021, 9, 1)), date(2025, 6, 15), date(2024, 9, 1), date(2025, 8, 31)},
		{"On Anniversary", ptrTime(date(2021, 9, 1)), date(2025, 9, 1), date(2025, 9, 1), date(2026, 8, 31)},
		{"No Hire Date", nil, date(2025, 6, 15), date(2025, 1, 1), date(2025, 12, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WorkYear(tt.hire, tt.anchor)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestFindVacationConflicts(t *testing.T) {
	existing := []models.VacationInterval{
		{DocumentID: 2, StartDate: date(2025, 8, 1), EndDate: date(2025, 8, 5)},
		{DocumentID: 1, StartDate: date(2025, 6, 1), EndDate: date(2025, 6, 10)},
		{DocumentID: 3, StartDate: date(2025, 6, 18), EndDate: date(2025, 6, 25)},
	}

	conflicts := FindVacationConflicts(existing, date(2025, 6, 5), date(2025, 6, 20))
	require.Len(t, conflicts, 2)
	assert.Equal(t, int64(1), conflicts[0].DocumentID)
	assert.Equal(t, int64(3), conflicts[1].DocumentID)

	t.Run("Touching Boundary Overlaps", func(t *testing.T) {
		assert.Len(t, FindVacationConflicts(existing, date(2025, 6, 10), date(2025, 6, 12)), 1)
	})

	t.Run("Adjacent Does Not Overlap", func(t *testing.T) {
		assert.Empty(t, FindVacationConflicts(existing, date(2025, 6, 11), date(2025, 6, 17)))
	})
}

func TestVacationIntervals(t *testing.T) {
	docs := []models.Document{
		{ID: 1, OrderNumber: "1/2025", Context: models.DocumentContext{Vacation: &models.VacationTerms{StartDate: "2025-06-01", EndDate: "2025-06-10"}}},
		{ID: 2, Context: models.DocumentContext{Vacation: &models.VacationTerms{StartDate: "bad", EndDate: "2025-06-10"}}},
		{ID: 3},
	}
	intervals, skipped := VacationIntervals(docs)
	require.Len(t, intervals, 1)
	assert.Equal(t, 10, intervals[0].Days)
	assert.Equal(t, "1/2025", intervals[0].OrderNumber)
	assert.Equal(t, []int64{2, 3}, skipped)
}

func TestSuggestUsername(t *testing.T) {
	tests := []struct {
		email, last, first string
		want               string
	}{
		{"Maria.Koval@Example.com", "", "", "maria.koval"},
		{"", "Коваленко", "Марія", "коваленко_м"},
		{"", "Шевченко-Коваленко", "Тарас", "шевченко-к_т"},
		{"", "", "", "user"},
		{"++@example.com", "", "", "user"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SuggestUsername(tt.email, tt.last, tt.first))
	}
}

func TestAppendNote(t *testing.T) {
	assert.Equal(t, "", appendNote("", "  "))
	assert.Equal(t, "first", appendNote("", " first "))
	assert.Equal(t, "first\nsecond", appendNote("first", "second"))
	assert.Equal(t, "first", appendNote("first", ""))
}

func TestTrainingTerms(t *testing.T) {
	valid := func() *models.TrainingRequest {
		return &models.TrainingRequest{
			DocumentRequest: models.DocumentRequest{EmployeeID: 5, OrderDate: "2025-06-01"},
			CourseTitle:     " Охорона праці ",
			StartDate:       "2025-06-10",
			EndDate:         "2025-06-12",
			Hours:           "7,5",
		}
	}

	t.Run("Normalizes", func(t *testing.T) {
		terms, err := trainingTerms(valid())
		require.NoError(t, err)
		assert.Equal(t, "Охорона праці", terms.CourseTitle)
		assert.Equal(t, 7.5, terms.Hours)
	})

	t.Run("Rejects", func(t *testing.T) {
		cases := map[string]func(r *models.TrainingRequest){
			"course_title": func(r *models.TrainingRequest) { r.CourseTitle = "" },
			"order_date":   func(r *models.TrainingRequest) { r.OrderDate = "" },
			"end_date":     func(r *models.TrainingRequest) { r.EndDate = "2025-06-01" },
			"hours":        func(r *models.TrainingRequest) { r.Hours = "0" },
			"format":       func(r *models.TrainingRequest) { r.Format = "webinar" },
		}
		for field, mutate := range cases {
			req := valid()
			mutate(req)
			_, err := trainingTerms(req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr, field)
			assert.Equal(t, field, verr.Field)
		}
	})
}

func TestHireTerms(t *testing.T) {
	svc := &DocumentService{policy: config.DefaultPolicy()}

	terms, start, err := svc.hireTerms(&models.HireRequest{HireTerms: models.HireTerms{StartDate: "2025-07-01"}})
	require.NoError(t, err)
	assert.Equal(t, date(2025, 7, 1), start)
	assert.Equal(t, 3, terms.InternshipMonths)

	_, _, err = svc.hireTerms(&models.HireRequest{HireTerms: models.HireTerms{StartDate: "2025-07-01", InternshipMonths: 4}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "internship_months", verr.Field)

	_, _, err = svc.hireTerms(&models.HireRequest{HireTerms: models.HireTerms{StartDate: "2025-07-01", ContractUntil: "2025-06-01"}})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "contract_until", verr.Field)
}

func TestNormalizeEmployeeInput(t *testing.T) {
	in := &models.EmployeeInput{
		LastName:     " Коваленко ",
		FirstName:    "Марія",
		Email:        "Maria@Example.COM",
		Phone:        "067 123 45 67",
		DepartmentID: models.NewNullInt64(1),
		PositionID:   models.NewNullInt64(2),
	}
	require.NoError(t, normalizeEmployeeInput(in))
	assert.Equal(t, "Коваленко", in.LastName)
	assert.Equal(t, "+380671234567", in.Phone)
	assert.Equal(t, models.EmploymentStatusActive, in.EmploymentStatus)

	in.PositionID = models.NullInt64{}
	var verr *ValidationError
	require.ErrorAs(t, normalizeEmployeeInput(in), &verr)
	assert.Equal(t, "position_id", verr.Field)
}
