package repository

import (
	"database/sql"
	"fmt"

	"craftacademy/internal/database"
	"craftacademy/internal/models"
)

// ChildRepository handles database operations for children
type ChildRepository struct {
	db database.DBTX
}

// NewChildRepository creates a new child repository
func NewChildRepository(db database.DBTX) *ChildRepository {
	return &ChildRepository{db: db}
}

// Create creates a new child profile
func (r *ChildRepository) Create(name string) (*models.Child, error) {
	query := "INSERT INTO children (name) VALUES (?)"
	childID, err := r.db.ExecReturningID(query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create child: %w", err)
	}

	return r.GetByID(childID)
}

// GetByID retrieves a child by ID
func (r *ChildRepository) GetByID(childID int64) (*models.Child, error) {
	query := "SELECT id, name, created_at FROM children WHERE id = ?"
	child := &models.Child{}
	err := r.db.QueryRow(query, childID).Scan(&child.ID, &child.Name, &child.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}

	return child, nil
}

// GetByName retrieves a child by name
func (r *ChildRepository) GetByName(name string) (*models.Child, error) {
	query := "SELECT id, name, created_at FROM children WHERE name = ?"
	child := &models.Child{}
	err := r.db.QueryRow(query, name).Scan(&child.ID, &child.Name, &child.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}

	return child, nil
}

// GetAll retrieves all children ordered by name
func (r *ChildRepository) GetAll() ([]models.Child, error) {
	query := "SELECT id, name, created_at FROM children ORDER BY name ASC"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	var children []models.Child
	for rows.Next() {
		var child models.Child
		if err := rows.Scan(&child.ID, &child.Name, &child.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, child)
	}

	return children, rows.Err()
}

// Delete deletes a child profile. Sessions, scores, stats and reimbursement
// records are removed by the ON DELETE CASCADE constraints.
func (r *ChildRepository) Delete(childID int64) error {
	query := "DELETE FROM children WHERE id = ?"
	_, err := r.db.Exec(query, childID)
	if err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	return nil
}
