package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hrdocs/personnel-backend/pkg/dates"
)

// ContextSchemaVersion is written into every stored context.
const ContextSchemaVersion = 1

// Checkbox glyphs printed into templates.
const (
	CheckboxOn  = "☑"
	CheckboxOff = "☐"
)

// VacationType is the kind of leave.
type VacationType string

const (
	VacationAnnualMain  VacationType = "щорічна основна"
	VacationAnnualExtra VacationType = "щорічна додаткова"
	VacationStudy       VacationType = "навчальна"
	VacationUnpaid      VacationType = "без збереження заробітної плати"
	VacationOther       VacationType = "інше"
)

// IsValid reports whether v is a known vacation type.
func (v VacationType) IsValid() bool {
	switch v {
	case VacationAnnualMain, VacationAnnualExtra, VacationStudy, VacationUnpaid, VacationOther:
		return true
	}
	return false
}

// TrainingFormat is how the course is delivered.
type TrainingFormat string

const (
	TrainingInPerson TrainingFormat = "очний"
	TrainingRemote   TrainingFormat = "дистанційний"
	TrainingBlended  TrainingFormat = "змішаний"
)

// IsValid reports whether f is a known format.
func (f TrainingFormat) IsValid() bool {
	return f == TrainingInPerson || f == TrainingRemote || f == TrainingBlended
}

// TrainingMode says whether the employee leaves work for the course.
type TrainingMode string

const (
	TrainingOffJob TrainingMode = "з відривом"
	TrainingOnJob  TrainingMode = "без відриву"
)

// IsValid reports whether m is a known mode.
func (m TrainingMode) IsValid() bool {
	return m == TrainingOffJob || m == TrainingOnJob
}

// EmployeeRef is the employee snapshot printed on a document
type EmployeeRef struct {
	ID         int64  `json:"id"`
	LastName   string `json:"last_name"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	FullName   string `json:"full_name"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

// SignStamp is written at signing time
type SignStamp struct {
	Day      string `json:"day"`
	Month    string `json:"month"`
	Year     string `json:"year"`
	SignedBy string `json:"signed_by"`
	SignedAt string `json:"signed_at"`
}

// NewSignStamp builds a stamp for the given moment.
func NewSignStamp(at time.Time, signedBy string) *SignStamp {
	return &SignStamp{
		Day:      fmt.Sprintf("%02d", at.Day()),
		Month:    fmt.Sprintf("%02d", int(at.Month())),
		Year:     strconv.Itoa(at.Year()),
		SignedBy: signedBy,
		SignedAt: dates.FormatISO(at),
	}
}

// HireTerms are the P-1 order fields
type HireTerms struct {
	StartDate        string `json:"start_date"`
	IsCompetition    bool   `json:"is_competition"`
	IsContract       bool   `json:"is_contract"`
	IsProbation      bool   `json:"is_probation"`
	IsAbsence        bool   `json:"is_absence"`
	IsReserve        bool   `json:"is_reserve"`
	IsInternship     bool   `json:"is_internship"`
	IsTransfer       bool   `json:"is_transfer"`
	IsOther          bool   `json:"is_other"`
	ContractUntil    string `json:"contract_until"`
	ProbationMonths  int    `json:"probation_months"`
	OtherText        string `json:"other_text"`
	IsMainJob        bool   `json:"is_main_job"`
	IsFullTime       bool   `json:"is_full_time"`
	WorkHours        int    `json:"work_hours"`
	WorkMinutes      int    `json:"work_minutes"`
	SalaryGrn        int    `json:"salary_grn"`
	SalaryKop        int    `json:"salary_kop"`
	InternshipMonths int    `json:"internship_months"`
	MentorEmployeeID *int64 `json:"mentor_employee_id,omitempty"`
}

// DismissalTerms are the P-4 order fields
type DismissalTerms struct {
	DismissalDate string `json:"dismissal_date"`
	Reason        string `json:"reason"`
	Basis         string `json:"basis"`
	SeveranceGrn  int    `json:"severance_grn"`
	SeveranceKop  int    `json:"severance_kop"`
}

// HasSeverance reports whether a severance payment is due.
func (t *DismissalTerms) HasSeverance() bool {
	return t.SeveranceGrn > 0 || t.SeveranceKop > 0
}

// VacationTerms are the vacation order fields
type VacationTerms struct {
	VacationType  VacationType `json:"vacation_type"`
	StartDate     string       `json:"start_date"`
	EndDate       string       `json:"end_date"`
	Days          int          `json:"days"`
	WorkYearStart string       `json:"work_year_start"`
	WorkYearEnd   string       `json:"work_year_end"`
	MaterialAid   bool         `json:"material_aid"`
	BasisText     string       `json:"basis_text"`
}

// Interval parses the stored period.
func (t *VacationTerms) Interval() (time.Time, time.Time, error) {
	start, err := dates.ParseISO(t.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := dates.ParseISO(t.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// TrainingTerms are the training referral fields
type TrainingTerms struct {
	CourseTitle   string         `json:"course_title"`
	Provider      string         `json:"provider"`
	Format        TrainingFormat `json:"format"`
	Place         string         `json:"place"`
	Mode          TrainingMode   `json:"mode"`
	StartDate     string         `json:"start_date"`
	EndDate       string         `json:"end_date"`
	Hours         float64        `json:"hours"`
	Funding       string         `json:"funding"`
	EstimatedCost string         `json:"estimated_cost"`
	BasisText     string         `json:"basis_text"`
}

// InternshipTerms are the internship assignment fields
type InternshipTerms struct {
	InternshipID     int64  `json:"internship_id"`
	StartDate        string `json:"start_date"`
	Months           int    `json:"months"`
	PlannedEndDate   string `json:"planned_end_date"`
	MentorEmployeeID *int64 `json:"mentor_employee_id,omitempty"`
	MentorFullName   string `json:"mentor_full_name"`
}

// DocumentContext is the versioned template contract stored with a
// document. Exactly one of the type sections is set.
type DocumentContext struct {
	SchemaVersion    int              `json:"schema_version"`
	OrderNumber      string           `json:"order_number"`
	OrderDate        string           `json:"order_date"`
	Employee         EmployeeRef      `json:"employee"`
	DirectorFullName string           `json:"director_full_name"`
	CompanyName      string           `json:"company_name"`
	EmployeeSign     *SignStamp       `json:"employee_sign,omitempty"`
	Hire             *HireTerms       `json:"hire,omitempty"`
	Dismissal        *DismissalTerms  `json:"dismissal,omitempty"`
	Vacation         *VacationTerms   `json:"vacation,omitempty"`
	Training         *TrainingTerms   `json:"training,omitempty"`
	Internship       *InternshipTerms `json:"internship,omitempty"`
}

// Scan implements sql.Scanner for JSONB columns
func (c *DocumentContext) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*c = DocumentContext{}
		return nil
	default:
		return fmt.Errorf("unsupported context source %T", src)
	}
	return json.Unmarshal(data, c)
}

// Value implements driver.Valuer
func (c DocumentContext) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Validate checks that the section matching docType is the only one present
// and that its dates parse.
func (c *DocumentContext) Validate(docType DocumentType) error {
	sections := map[DocumentType]bool{
		DocumentTypeHire:               c.Hire != nil,
		DocumentTypeDismissal:          c.Dismissal != nil,
		DocumentTypeVacation:           c.Vacation != nil,
		DocumentTypeTraining:           c.Training != nil,
		DocumentTypeInternshipReferral: c.Internship != nil,
	}
	present, ok := sections[docType]
	if !ok {
		return fmt.Errorf("unknown document type %q", docType)
	}
	if !present {
		return fmt.Errorf("context has no %s section", strings.ToLower(string(docType)))
	}
	for t, set := range sections {
		if set && t != docType {
			return fmt.Errorf("context for %s carries a %s section", docType, strings.ToLower(string(t)))
		}
	}

	if c.OrderDate != "" {
		if _, err := dates.ParseISO(c.OrderDate); err != nil {
			return fmt.Errorf("order_date: %w", err)
		}
	}

	var required []string
	switch docType {
	case DocumentTypeHire:
		required = []string{c.Hire.StartDate}
	case DocumentTypeDismissal:
		required = []string{c.Dismissal.DismissalDate}
	case DocumentTypeVacation:
		required = []string{c.Vacation.StartDate, c.Vacation.EndDate}
	case DocumentTypeTraining:
		required = []string{c.Training.StartDate, c.Training.EndDate}
	case DocumentTypeInternshipReferral:
		required = []string{c.Internship.StartDate, c.Internship.PlannedEndDate}
	}
	for _, s := range required {
		if _, err := dates.ParseISO(s); err != nil {
			return err
		}
	}
	return nil
}

// HireStartDate returns the recorded start date of a hire order.
func (c *DocumentContext) HireStartDate() (time.Time, bool) {
	if c.Hire == nil || c.Hire.StartDate == "" {
		return time.Time{}, false
	}
	t, err := dates.ParseISO(c.Hire.StartDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func checkbox(v bool) string {
	if v {
		return CheckboxOn
	}
	return CheckboxOff
}

func longFromISO(s string) string {
	t, err := dates.ParseISO(s)
	if err != nil {
		return ""
	}
	return dates.FormatLong(t)
}

// FormatHours renders academic hours, e.g. "36 акад. год.".
func FormatHours(h float64) string {
	return fmt.Sprintf("%g акад. год.", h)
}

// TemplateData flattens the context into the key/value map consumed by the
// DOCX renderer. Preview and final renders share it; the sign stamp is the
// only difference between them.
func (c *DocumentContext) TemplateData() map[string]interface{} {
	data := map[string]interface{}{
		"order_number":       c.OrderNumber,
		"order_date":         c.OrderDate,
		"order_date_str":     dates.DisplayFromISO(c.OrderDate),
		"order_date_long":    longFromISO(c.OrderDate),
		"director_full_name": c.DirectorFullName,
		"company_name":       c.CompanyName,
		"full_name":          c.Employee.FullName,
		"department":         c.Employee.Department,
		"position":           c.Employee.Position,
		"employee": map[string]interface{}{
			"id":          c.Employee.ID,
			"last_name":   c.Employee.LastName,
			"first_name":  c.Employee.FirstName,
			"middle_name": c.Employee.MiddleName,
			"full_name":   c.Employee.FullName,
			"department":  c.Employee.Department,
			"position":    c.Employee.Position,
		},
		"employee_sign_day":   "",
		"employee_sign_month": "",
		"employee_sign_year":  "",
		"signed_by":           "",
	}
	if t, err := dates.ParseISO(c.OrderDate); err == nil {
		data["sign_day"] = fmt.Sprintf("%02d", t.Day())
		data["sign_month"] = dates.GenitiveMonth(t.Month())
		data["sign_year"] = t.Year()
	}
	if s := c.EmployeeSign; s != nil {
		data["employee_sign_day"] = s.Day
		data["employee_sign_month"] = s.Month
		data["employee_sign_year"] = s.Year
		data["signed_by"] = s.SignedBy
	}

	if h := c.Hire; h != nil {
		data["hire_date"] = h.StartDate
		data["hire_date_str"] = dates.DisplayFromISO(h.StartDate)
		data["start_date_str"] = dates.DisplayFromISO(h.StartDate)
		data["hire_date_long"] = longFromISO(h.StartDate)
		data["cb_competition"] = checkbox(h.IsCompetition)
		data["cb_contract"] = checkbox(h.IsContract)
		data["cb_probation"] = checkbox(h.IsProbation)
		data["cb_absence"] = checkbox(h.IsAbsence)
		data["cb_reserve"] = checkbox(h.IsReserve)
		data["cb_internship"] = checkbox(h.IsInternship)
		data["cb_transfer"] = checkbox(h.IsTransfer)
		data["cb_other"] = checkbox(h.IsOther)
		data["cb_main_job"] = checkbox(h.IsMainJob)
		data["cb_secondary_job"] = checkbox(!h.IsMainJob)
		data["cb_worktime_full"] = checkbox(h.IsFullTime)
		data["contract_until_str"] = dates.DisplayFromISO(h.ContractUntil)
		data["probation_months"] = h.ProbationMonths
		data["other_text"] = h.OtherText
		data["work_hours"] = h.WorkHours
		data["work_minutes"] = fmt.Sprintf("%02d", h.WorkMinutes)
		data["salary_grn"] = h.SalaryGrn
		data["salary_kop"] = fmt.Sprintf("%02d", h.SalaryKop)
		data["internship_months"] = h.InternshipMonths
	}

	if d := c.Dismissal; d != nil {
		data["dismissal_date"] = d.DismissalDate
		data["dismissal_date_str"] = dates.DisplayFromISO(d.DismissalDate)
		data["dismissal_date_long"] = longFromISO(d.DismissalDate)
		data["dismissal_reason"] = d.Reason
		data["dismissal_basis"] = d.Basis
		data["severance"] = d.HasSeverance()
		data["cb_severance"] = checkbox(d.HasSeverance())
		data["severance_grn"] = d.SeveranceGrn
		data["severance_kop"] = fmt.Sprintf("%02d", d.SeveranceKop)
	}

	if v := c.Vacation; v != nil {
		data["vacation_type"] = string(v.VacationType)
		data["cb_annual_main"] = checkbox(v.VacationType == VacationAnnualMain)
		data["cb_annual_extra"] = checkbox(v.VacationType == VacationAnnualExtra)
		data["cb_study"] = checkbox(v.VacationType == VacationStudy)
		data["cb_unpaid"] = checkbox(v.VacationType == VacationUnpaid)
		data["cb_other_vacation"] = checkbox(v.VacationType == VacationOther)
		data["cb_health_aid"] = checkbox(v.MaterialAid)
		data["start_date_str"] = dates.DisplayFromISO(v.StartDate)
		data["end_date_str"] = dates.DisplayFromISO(v.EndDate)
		data["days"] = v.Days
		data["work_year_str"] = periodString(v.WorkYearStart, v.WorkYearEnd)
		data["period_str"] = periodString(v.StartDate, v.EndDate)
		data["basis_text"] = v.BasisText
	}

	if t := c.Training; t != nil {
		data["course_title"] = t.CourseTitle
		data["provider"] = t.Provider
		data["format"] = string(t.Format)
		data["cb_format_in_person"] = checkbox(t.Format == TrainingInPerson)
		data["cb_format_remote"] = checkbox(t.Format == TrainingRemote)
		data["cb_format_blended"] = checkbox(t.Format == TrainingBlended)
		data["place"] = t.Place
		data["mode"] = string(t.Mode)
		data["cb_mode_off_job"] = checkbox(t.Mode == TrainingOffJob)
		data["cb_mode_on_job"] = checkbox(t.Mode == TrainingOnJob)
		data["start_date_str"] = dates.DisplayFromISO(t.StartDate)
		data["end_date_str"] = dates.DisplayFromISO(t.EndDate)
		data["period_str"] = periodString(t.StartDate, t.EndDate)
		data["hours"] = t.Hours
		data["hours_str"] = FormatHours(t.Hours)
		data["funding"] = t.Funding
		data["estimated_cost"] = t.EstimatedCost
		data["basis_text"] = t.BasisText
	}

	if i := c.Internship; i != nil {
		data["internship_start_str"] = dates.DisplayFromISO(i.StartDate)
		data["internship_end_str"] = dates.DisplayFromISO(i.PlannedEndDate)
		data["internship_months"] = i.Months
		data["mentor_full_name"] = i.MentorFullName
		data["period_str"] = periodString(i.StartDate, i.PlannedEndDate)
	}

	return data
}

func periodString(start, end string) string {
	if start == "" && end == "" {
		return ""
	}
	return dates.DisplayFromISO(start) + " — " + dates.DisplayFromISO(end)
}
