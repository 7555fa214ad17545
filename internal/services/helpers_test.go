package services

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hrdocs/personnel-backend/internal/config"
	"github.com/hrdocs/personnel-backend/internal/database"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/pkg/docx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

var documentRowColumns = []string{
	"id", "type", "employee_id", "status", "title", "order_number", "context",
	"file_path", "created_by", "signed_by", "created_at", "sent_at", "signed_at", "updated_at",
}

var employeeRowColumns = []string{
	"id", "last_name", "first_name", "middle_name", "birth_date", "email", "phone",
	"department_id", "position_id", "hire_date", "dismissal_date", "employment_status",
	"created_at", "updated_at", "department_name", "position_name",
}

var internshipRowColumns = []string{
	"id", "employee_id", "mentor_employee_id", "document_id", "start_date",
	"months", "planned_end_date", "status", "notes", "created_at", "updated_at",
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestDB(t *testing.T) (*database.PostgresDB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.Wrap(db, "sqlmock"), mock
}

// writeTemplates puts a one-paragraph template for every document type into dir
func writeTemplates(t *testing.T, dir string) {
	t.Helper()
	for _, spec := range docx.DefaultManifest().Templates {
		f, err := os.Create(filepath.Join(dir, spec.File))
		require.NoError(t, err)
		zw := zip.NewWriter(f)
		w, err := zw.Create("word/document.xml")
		require.NoError(t, err)
		_, err = w.Write([]byte(`<w:document><w:t>{{ order_number }} {{ employee_full_name }}</w:t></w:document>`))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		require.NoError(t, f.Close())
	}
}

func testStorage(t *testing.T) config.StorageConfig {
	t.Helper()
	root := t.TempDir()
	cfg := config.StorageConfig{
		TemplatesDir:   filepath.Join(root, "templates"),
		DocumentsDir:   filepath.Join(root, "documents"),
		PreviewDir:     filepath.Join(root, "preview"),
		CredentialsDir: filepath.Join(root, "credentials"),
	}
	require.NoError(t, os.MkdirAll(cfg.TemplatesDir, 0o755))
	writeTemplates(t, cfg.TemplatesDir)
	return cfg
}

func setupDocumentTest(t *testing.T) (*DocumentService, sqlmock.Sqlmock, config.StorageConfig) {
	t.Helper()
	db, mock := newTestDB(t)
	storage := testStorage(t)

	renderer, err := NewDocumentRenderer(storage)
	require.NoError(t, err)

	repos := database.NewRepositories(db)
	creds := NewCredentialService(repos.Users, storage, config.SecurityConfig{BcryptCost: 4, TempPasswordLength: 12})
	svc := NewDocumentService(
		database.NewTransactor(db),
		repos,
		renderer,
		creds,
		StaticSettings{Director: "Петренко Олег Іванович", Company: "ТОВ «Приклад»"},
		config.DefaultPolicy(),
		quietLogger(),
	)
	svc.now = func() time.Time { return fixedNow }
	return svc, mock, storage
}

func setupInternshipTest(t *testing.T) (*InternshipService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	svc := NewInternshipService(database.NewTransactor(db), database.NewInternshipRepository(db), config.DefaultPolicy(), quietLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc, mock
}

func documentRow(doc models.Document) *sqlmock.Rows {
	ctxValue, _ := doc.Context.Value()
	return sqlmock.NewRows(documentRowColumns).AddRow(
		doc.ID, string(doc.Type), doc.EmployeeID, string(doc.Status), doc.Title, doc.OrderNumber, ctxValue,
		doc.FilePath, nil, nil, fixedNow, nil, nil, fixedNow,
	)
}

func employeeRow(id int64, status models.EmploymentStatus, hire *time.Time) *sqlmock.Rows {
	var hireDate interface{}
	if hire != nil {
		hireDate = *hire
	}
	return sqlmock.NewRows(employeeRowColumns).AddRow(
		id, "Коваленко", "Марія", "Петрівна", nil, "maria@example.com", "+380671234567",
		int64(1), int64(2), hireDate, nil, string(status),
		fixedNow, fixedNow, "Бухгалтерія", "Бухгалтер",
	)
}

func internshipRow(id int64, status models.InternshipStatus, end time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(internshipRowColumns).AddRow(
		id, int64(5), nil, nil, end.AddDate(0, -3, 0), 3, end, string(status), "", fixedNow, fixedNow,
	)
}
