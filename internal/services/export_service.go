package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/hrdocs/personnel-backend/internal/database"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/pkg/dates"
	"github.com/xuri/excelize/v2"
)

// ExportService builds XLSX registers. Workbooks are returned as buffers and
// the handler sets the download headers.
type ExportService struct {
	repos *database.Repositories
	now   func() time.Time
}

// NewExportService creates a new export service
func NewExportService(repos *database.Repositories) *ExportService {
	return &ExportService{repos: repos, now: time.Now}
}

type column struct {
	title string
	width float64
}

// ExportEmployees writes the employee register
func (s *ExportService) ExportEmployees(ctx context.Context, f models.EmployeeFilter) (*bytes.Buffer, string, error) {
	employees, err := s.repos.Employees.List(ctx, f)
	if err != nil {
		return nil, "", err
	}

	cols := []column{
		{"ID", 8}, {"ПІБ", 36}, {"Підрозділ", 28}, {"Посада", 28}, {"Email", 28},
		{"Телефон", 18}, {"Дата прийняття", 16}, {"Дата звільнення", 16}, {"Статус", 16},
	}
	rows := make([][]interface{}, 0, len(employees))
	for _, e := range employees {
		rows = append(rows, []interface{}{
			e.ID,
			e.FullName(),
			e.DepartmentName.String,
			e.PositionName.String,
			e.Email.String,
			e.Phone.String,
			displayDate(e.HireDate),
			displayDate(e.DismissalDate),
			e.EmploymentStatus.Label(),
		})
	}

	buf, err := writeSheet("Працівники", "Реєстр працівників", cols, rows)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("employees_%s.xlsx", s.now().Format("20060102")), nil
}

// ExportDocuments writes the document register
func (s *ExportService) ExportDocuments(ctx context.Context, f models.DocumentFilter) (*bytes.Buffer, string, error) {
	docs, err := s.repos.Documents.List(ctx, f)
	if err != nil {
		return nil, "", err
	}

	cols := []column{
		{"ID", 8}, {"№ наказу", 12}, {"Дата наказу", 14}, {"Тип", 22}, {"Назва", 48},
		{"Працівник", 36}, {"Статус", 12}, {"Створено", 18}, {"Підписано", 18},
	}
	rows := make([][]interface{}, 0, len(docs))
	for _, d := range docs {
		signed := ""
		if d.SignedAt.Valid {
			signed = d.SignedAt.Time.Format("02.01.2006 15:04")
		}
		rows = append(rows, []interface{}{
			d.ID,
			d.OrderNumber,
			dates.DisplayFromISO(d.Context.OrderDate),
			string(d.Type),
			d.Title,
			d.EmployeeFullName,
			string(d.Status),
			d.CreatedAt.Format("02.01.2006 15:04"),
			signed,
		})
	}

	buf, err := writeSheet("Документи", "Реєстр наказів", cols, rows)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("documents_%s.xlsx", s.now().Format("20060102")), nil
}

func displayDate(d models.NullDate) string {
	if !d.Valid {
		return ""
	}
	return dates.FormatDisplay(d.Time)
}

// writeSheet renders a titled table: title in row 1, header in row 2, data from row 3
func writeSheet(sheet, title string, cols []column, rows [][]interface{}) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 13}})
	if err != nil {
		return nil, fmt.Errorf("failed to create title style: %w", err)
	}

	f.SetCellValue(sheet, "A1", title)
	f.SetCellStyle(sheet, "A1", "A1", titleStyle)

	for i, c := range cols {
		name, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, name, name, c.width)
		f.SetCellValue(sheet, cellName(i+1, 2), c.title)
	}
	last, _ := excelize.ColumnNumberToName(len(cols))
	f.SetCellStyle(sheet, "A2", last+"2", headerStyle)

	for r, row := range rows {
		for c, v := range row {
			f.SetCellValue(sheet, cellName(c+1, r+3), v)
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 2, TopLeftCell: "A3", ActivePane: "bottomLeft"}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
