package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles. Role gates which workflow operations a user may call:
// Security runs check-in/check-out, Employees decide on their own
// visitors, Admins decide on anyone.
const (
	RoleAdmin    = "Admin"
	RoleEmployee = "Employee"
)

// User represents a staff account that can log into the system
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	FullName     string    `json:"full_name" db:"full_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// RegisterUserRequest represents admin-side account creation
type RegisterUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
}

// EmployeeSummary is the directory entry returned to the
// register-visitor form for host selection
type EmployeeSummary struct {
	FullName string `json:"full_name" db:"full_name"`
	Email    string `json:"email" db:"email"`
}
