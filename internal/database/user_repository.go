package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/smartvisit/visitor-backend/internal/models"
)

// UserRepository handles user account database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Create persists a new user account
func (r *UserRepository) Create(email, passwordHash, role, fullName string) (*models.User, error) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		FullName:     fullName,
		CreatedAt:    time.Now().UTC(),
	}

	query := `
		INSERT INTO users (id, email, password_hash, role, full_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(
		query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.FullName,
		user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email. Returns (nil, nil) when no
// account exists for that email.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User

	query := `
		SELECT id, email, password_hash, role, full_name, created_at
		FROM users
		WHERE email = $1
	`

	err := r.db.Get(&user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// GetByID retrieves a user by id. Returns (nil, nil) when absent.
func (r *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User

	query := `
		SELECT id, email, password_hash, role, full_name, created_at
		FROM users
		WHERE id = $1
	`

	err := r.db.Get(&user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return &user, nil
}

// ListEmployees retrieves the employee directory used for host
// selection on the registration form
func (r *UserRepository) ListEmployees() ([]*models.EmployeeSummary, error) {
	var employees []*models.EmployeeSummary

	query := `
		SELECT full_name, email
		FROM users
		WHERE role = $1
		ORDER BY full_name
	`

	err := r.db.Select(&employees, query, models.RoleEmployee)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	return employees, nil
}
