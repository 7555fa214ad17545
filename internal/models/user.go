package models

import "time"

// User is a login account
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	EmployeeID   NullInt64 `json:"employee_id" db:"employee_id"`
	LastLoginAt  NullTime  `json:"last_login_at" db:"last_login_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserListItem is a user joined with the linked employee
type UserListItem struct {
	User
	FullName       NullString `json:"full_name" db:"full_name"`
	DepartmentName NullString `json:"department_name" db:"department_name"`
	PositionName   NullString `json:"position_name" db:"position_name"`
}

// Credentials is a generated login/password pair, returned once
type Credentials struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	ExportPath string `json:"export_path"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	User         *User  `json:"user"`
}

// RefreshTokenRequest represents the refresh request body
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshToken is a stored refresh token
type RefreshToken struct {
	ID        string    `db:"id"`
	UserID    int64     `db:"user_id"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	Revoked   bool      `db:"revoked"`
	CreatedAt time.Time `db:"created_at"`
}
