package repository

import (
	"database/sql"
	"fmt"
	"time"

	"craftacademy/internal/database"
	"craftacademy/internal/models"
)

// ReimbursementRepository handles redemption history, weekly cooldown and
// point deduction database operations
type ReimbursementRepository struct {
	db database.DBTX
}

// NewReimbursementRepository creates a new reimbursement repository
func NewReimbursementRepository(db database.DBTX) *ReimbursementRepository {
	return &ReimbursementRepository{db: db}
}

// CreateHistory records a redemption and returns its ID
func (r *ReimbursementRepository) CreateHistory(childID int64, itemName string, pointsCost int) (int64, error) {
	query := "INSERT INTO reimbursement_history (child_id, item_name, points_cost) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(query, childID, itemName, pointsCost)
	if err != nil {
		return 0, fmt.Errorf("failed to record reimbursement: %w", err)
	}
	return id, nil
}

// GetHistory retrieves a child's redemptions, newest first
func (r *ReimbursementRepository) GetHistory(childID int64, limit int) ([]models.ReimbursementHistory, error) {
	query := `
		SELECT id, child_id, item_name, points_cost, redeemed_at
		FROM reimbursement_history
		WHERE child_id = ?
		ORDER BY redeemed_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, childID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reimbursement history: %w", err)
	}
	defer rows.Close()

	var history []models.ReimbursementHistory
	for rows.Next() {
		var h models.ReimbursementHistory
		if err := rows.Scan(&h.ID, &h.ChildID, &h.ItemName, &h.PointsCost, &h.RedeemedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reimbursement: %w", err)
		}
		history = append(history, h)
	}

	return history, rows.Err()
}

// GetWeeklyStatus retrieves the cooldown row for a child's week, or nil when
// no redemption has touched that week yet
func (r *ReimbursementRepository) GetWeeklyStatus(childID int64, weekStartDate string) (*models.WeeklyReimbursementStatus, error) {
	query := `
		SELECT id, child_id, week_start_date, can_reimburse, last_reimbursement_date
		FROM weekly_reimbursement_status
		WHERE child_id = ? AND week_start_date = ?
	`

	status := &models.WeeklyReimbursementStatus{}
	var lastDate sql.NullTime
	err := r.db.QueryRow(query, childID, weekStartDate).Scan(
		&status.ID,
		&status.ChildID,
		&status.WeekStartDate,
		&status.CanReimburse,
		&lastDate,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly status: %w", err)
	}

	if lastDate.Valid {
		status.LastReimbursementDate = &lastDate.Time
	}

	return status, nil
}

// SetWeeklyStatus upserts the cooldown row for a child's week
func (r *ReimbursementRepository) SetWeeklyStatus(childID int64, weekStartDate string, canReimburse bool, lastReimbursement time.Time) error {
	query := r.db.GetDialect().UpsertWeeklyStatus()
	_, err := r.db.Exec(query, childID, weekStartDate, canReimburse, lastReimbursement)
	if err != nil {
		return fmt.Errorf("failed to set weekly status: %w", err)
	}
	return nil
}

// CreateDeduction records a point deduction tied to a redemption
func (r *ReimbursementRepository) CreateDeduction(childID int64, points int, reimbursementID int64) error {
	query := "INSERT INTO point_deductions (child_id, points_deducted, reimbursement_id) VALUES (?, ?, ?)"
	_, err := r.db.Exec(query, childID, points, reimbursementID)
	if err != nil {
		return fmt.Errorf("failed to record deduction: %w", err)
	}
	return nil
}

// GetTotalDeductions sums every point a child has spent
func (r *ReimbursementRepository) GetTotalDeductions(childID int64) (int, error) {
	query := "SELECT COALESCE(SUM(points_deducted), 0) FROM point_deductions WHERE child_id = ?"

	var total int
	err := r.db.QueryRow(query, childID).Scan(&total)
	return total, err
}
