package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/smartvisit/visitor-backend/internal/database"
	"github.com/smartvisit/visitor-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for a wrong email/password pair.
// Deliberately indistinguishable between unknown account and wrong
// password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService handles account credentials and the employee directory
type AuthService struct {
	userRepo   *database.UserRepository
	bcryptCost int
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *database.UserRepository, bcryptCost int) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
	}
}

// Authenticate verifies an email/password pair and returns the account
func (s *AuthService) Authenticate(email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// RegisterUser creates a staff account with a hashed password
func (s *AuthService) RegisterUser(req *models.RegisterUserRequest) (*models.User, error) {
	existing, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("account already exists for %s", req.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.userRepo.Create(req.Email, string(hash), req.Role, req.FullName)
}

// GetUser returns an account by id, or (nil, nil) when absent
func (s *AuthService) GetUser(id uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

// ListEmployees returns the employee directory for host selection
func (s *AuthService) ListEmployees() ([]*models.EmployeeSummary, error) {
	return s.userRepo.ListEmployees()
}
