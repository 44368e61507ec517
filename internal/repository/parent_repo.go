package repository

import (
	"database/sql"
	"fmt"
	"time"

	"craftacademy/internal/database"
	"craftacademy/internal/models"
)

// ParentRepository handles database operations for parent accounts and
// their login sessions
type ParentRepository struct {
	db database.DBTX
}

// NewParentRepository creates a new parent repository
func NewParentRepository(db database.DBTX) *ParentRepository {
	return &ParentRepository{db: db}
}

// Create creates a new parent account
func (r *ParentRepository) Create(name, email, passwordHash string, isAdmin bool) (*models.Parent, error) {
	query := "INSERT INTO parents (name, email, password_hash, is_admin) VALUES (?, ?, ?, ?)"
	parentID, err := r.db.ExecReturningID(query, name, email, passwordHash, isAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to create parent: %w", err)
	}

	return r.GetByID(parentID)
}

// GetByID retrieves a parent by ID
func (r *ParentRepository) GetByID(parentID int64) (*models.Parent, error) {
	query := "SELECT id, name, email, password_hash, is_admin, created_at FROM parents WHERE id = ?"
	return r.scanParent(r.db.QueryRow(query, parentID))
}

// GetByName retrieves a parent by name
func (r *ParentRepository) GetByName(name string) (*models.Parent, error) {
	query := "SELECT id, name, email, password_hash, is_admin, created_at FROM parents WHERE name = ?"
	return r.scanParent(r.db.QueryRow(query, name))
}

// GetByEmail retrieves a parent by email address
func (r *ParentRepository) GetByEmail(email string) (*models.Parent, error) {
	query := "SELECT id, name, email, password_hash, is_admin, created_at FROM parents WHERE email = ? AND email != ''"
	return r.scanParent(r.db.QueryRow(query, email))
}

func (r *ParentRepository) scanParent(row *sql.Row) (*models.Parent, error) {
	parent := &models.Parent{}
	err := row.Scan(
		&parent.ID,
		&parent.Name,
		&parent.Email,
		&parent.PasswordHash,
		&parent.IsAdmin,
		&parent.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get parent: %w", err)
	}

	return parent, nil
}

// GetAll retrieves all parent accounts
func (r *ParentRepository) GetAll() ([]models.Parent, error) {
	query := "SELECT id, name, email, password_hash, is_admin, created_at FROM parents ORDER BY name ASC"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query parents: %w", err)
	}
	defer rows.Close()

	var parents []models.Parent
	for rows.Next() {
		var parent models.Parent
		if err := rows.Scan(
			&parent.ID,
			&parent.Name,
			&parent.Email,
			&parent.PasswordHash,
			&parent.IsAdmin,
			&parent.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan parent: %w", err)
		}
		parents = append(parents, parent)
	}

	return parents, rows.Err()
}

// Count returns the number of parent accounts
func (r *ParentRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM parents").Scan(&count)
	return count, err
}

// UpdatePassword replaces a parent's password hash
func (r *ParentRepository) UpdatePassword(parentID int64, passwordHash string) error {
	query := "UPDATE parents SET password_hash = ? WHERE id = ?"
	_, err := r.db.Exec(query, passwordHash, parentID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// Delete removes a parent account and its sessions
func (r *ParentRepository) Delete(parentID int64) error {
	query := "DELETE FROM parents WHERE id = ?"
	_, err := r.db.Exec(query, parentID)
	if err != nil {
		return fmt.Errorf("failed to delete parent: %w", err)
	}
	return nil
}

// CreateSession stores a login session for a parent
func (r *ParentRepository) CreateSession(sessionID string, parentID int64, expiresAt time.Time) error {
	query := "INSERT INTO sessions (id, parent_id, expires_at) VALUES (?, ?, ?)"
	_, err := r.db.Exec(query, sessionID, parentID, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession retrieves a login session by ID
func (r *ParentRepository) GetSession(sessionID string) (*models.Session, error) {
	query := "SELECT id, parent_id, expires_at, created_at FROM sessions WHERE id = ?"
	session := &models.Session{}
	err := r.db.QueryRow(query, sessionID).Scan(
		&session.ID,
		&session.ParentID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// DeleteSession removes a login session
func (r *ParentRepository) DeleteSession(sessionID string) error {
	_, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", sessionID)
	return err
}

// DeleteExpiredSessions removes sessions past their expiry time
func (r *ParentRepository) DeleteExpiredSessions() (int64, error) {
	result, err := r.db.Exec("DELETE FROM sessions WHERE expires_at < ?", time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
