package database

// Repositories groups the repositories that share one connection
type Repositories struct {
	Employees     *EmployeeRepository
	Departments   *DepartmentRepository
	Users         *UserRepository
	RefreshTokens *RefreshTokenRepository
	Documents     *DocumentRepository
	Internships   *InternshipRepository
	Signatures    *SignatureRepository
	Settings      *AppSettingRepository
	Dashboard     *DashboardRepository
	AuditLogs     *AuditLogRepository
}

// NewRepositories builds every repository over db
func NewRepositories(db DB) *Repositories {
	return &Repositories{
		Employees:     NewEmployeeRepository(db),
		Departments:   NewDepartmentRepository(db),
		Users:         NewUserRepository(db),
		RefreshTokens: NewRefreshTokenRepository(db),
		Documents:     NewDocumentRepository(db),
		Internships:   NewInternshipRepository(db),
		Signatures:    NewSignatureRepository(db),
		Settings:      NewAppSettingRepository(db),
		Dashboard:     NewDashboardRepository(db),
		AuditLogs:     NewAuditLogRepository(db),
	}
}
