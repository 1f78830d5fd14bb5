package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/smartvisit/visitor-backend/internal/models"
)

// VisitorRepository handles visitor database operations
type VisitorRepository struct {
	db DB
}

// NewVisitorRepository creates a new visitor repository
func NewVisitorRepository(db DB) *VisitorRepository {
	return &VisitorRepository{
		db: db,
	}
}

const visitorColumns = `id, full_name, email, phone, company, purpose, host, host_email,
	       date, time, id_type, id_number, photo, status, registered_by,
	       action_by, created_at, checked_in_at, checked_out_at`

// Create persists a new visitor with a store-assigned id
func (r *VisitorRepository) Create(v *models.Visitor) (*models.Visitor, error) {
	v.ID = uuid.New().String()
	v.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO visitors (
			id, full_name, email, phone, company, purpose, host, host_email,
			date, time, id_type, id_number, photo, status, registered_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.Exec(
		query,
		v.ID,
		v.FullName,
		v.Email,
		v.Phone,
		v.Company,
		v.Purpose,
		v.Host,
		v.HostEmail,
		v.Date,
		v.Time,
		v.IDType,
		v.IDNumber,
		v.Photo,
		v.Status,
		v.RegisteredBy,
		v.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create visitor: %w", err)
	}

	return v, nil
}

// GetByID retrieves a visitor by id. Returns (nil, nil) when no visitor
// with that id exists.
func (r *VisitorRepository) GetByID(id string) (*models.Visitor, error) {
	var visitor models.Visitor

	query := `
		SELECT ` + visitorColumns + `
		FROM visitors
		WHERE id = $1
	`

	err := r.db.Get(&visitor, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get visitor by ID: %w", err)
	}

	return &visitor, nil
}

// GetAll retrieves all visitors, newest registrations first
func (r *VisitorRepository) GetAll() ([]*models.Visitor, error) {
	var visitors []*models.Visitor

	query := `
		SELECT ` + visitorColumns + `
		FROM visitors
		ORDER BY created_at DESC
	`

	err := r.db.Select(&visitors, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list visitors: %w", err)
	}

	return visitors, nil
}

// GetByHostEmail retrieves all visitors scheduled to meet the given host
func (r *VisitorRepository) GetByHostEmail(hostEmail string) ([]*models.Visitor, error) {
	var visitors []*models.Visitor

	query := `
		SELECT ` + visitorColumns + `
		FROM visitors
		WHERE host_email = $1
		ORDER BY created_at DESC
	`

	err := r.db.Select(&visitors, query, hostEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list visitors by host: %w", err)
	}

	return visitors, nil
}

// UpdateStatus sets the status and action_by fields of a visitor.
// Returns false when the visitor does not exist; a missing visitor is a
// benign no-op, not an error.
func (r *VisitorRepository) UpdateStatus(id string, status models.VisitorStatus, actionBy *string) (bool, error) {
	query := `
		UPDATE visitors
		SET status = $1,
		    action_by = $2
		WHERE id = $3
	`

	result, err := r.db.Exec(query, status, actionBy, id)
	if err != nil {
		return false, fmt.Errorf("failed to update visitor status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// CheckIn transitions an Approved visitor to Checked In and stamps
// checked_in_at. The status precondition is part of the UPDATE filter,
// so two racing check-ins can never both succeed.
func (r *VisitorRepository) CheckIn(id string, at time.Time) (bool, error) {
	query := `
		UPDATE visitors
		SET status = $1,
		    checked_in_at = $2
		WHERE id = $3
		  AND status = $4
	`

	result, err := r.db.Exec(query, models.StatusCheckedIn, at, id, models.StatusApproved)
	if err != nil {
		return false, fmt.Errorf("failed to check in visitor: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// CheckOut transitions a Checked In visitor to Checked Out and stamps
// checked_out_at. Same atomic precondition shape as CheckIn.
func (r *VisitorRepository) CheckOut(id string, at time.Time) (bool, error) {
	query := `
		UPDATE visitors
		SET status = $1,
		    checked_out_at = $2
		WHERE id = $3
		  AND status = $4
	`

	result, err := r.db.Exec(query, models.StatusCheckedOut, at, id, models.StatusCheckedIn)
	if err != nil {
		return false, fmt.Errorf("failed to check out visitor: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// GetDashboardStats counts visitors per status over the current snapshot
func (r *VisitorRepository) GetDashboardStats() (*models.DashboardStats, error) {
	var stats models.DashboardStats

	query := `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE status = $1) AS pending,
		       COUNT(*) FILTER (WHERE status = $2) AS approved,
		       COUNT(*) FILTER (WHERE status = $3) AS checked_in,
		       COUNT(*) FILTER (WHERE status = $4) AS rejected
		FROM visitors
	`

	err := r.db.Get(&stats, query,
		models.StatusPendingApproval,
		models.StatusApproved,
		models.StatusCheckedIn,
		models.StatusRejected,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}

	return &stats, nil
}
