package repository

import (
	"database/sql"
	"fmt"

	"craftacademy/internal/database"
	"craftacademy/internal/models"
)

// StatsRepository handles daily stats database operations
type StatsRepository struct {
	db database.DBTX
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db database.DBTX) *StatsRepository {
	return &StatsRepository{db: db}
}

// AddToDay increments the rollup row for (child, date), creating it if needed
func (r *StatsRepository) AddToDay(childID int64, date string, activities, points, minutes int) error {
	query := r.db.GetDialect().UpsertDailyStatsAdd()
	_, err := r.db.Exec(query, childID, date, activities, points, minutes)
	if err != nil {
		return fmt.Errorf("failed to update daily stats: %w", err)
	}
	return nil
}

// SetDay overwrites the rollup row for (child, date) with absolute values
func (r *StatsRepository) SetDay(childID int64, date string, activities, points, minutes int) error {
	query := r.db.GetDialect().UpsertDailyStatsSet()
	_, err := r.db.Exec(query, childID, date, activities, points, minutes)
	if err != nil {
		return fmt.Errorf("failed to set daily stats: %w", err)
	}
	return nil
}

// GetDay retrieves the rollup for a child on a date. Returns a zeroed row
// when none exists, so callers can treat absence as zero.
func (r *StatsRepository) GetDay(childID int64, date string) (*models.DailyStats, error) {
	query := `
		SELECT id, child_id, date, activities_completed, total_points, total_time_minutes
		FROM daily_stats
		WHERE child_id = ? AND date = ?
	`

	stats := &models.DailyStats{}
	err := r.db.QueryRow(query, childID, date).Scan(
		&stats.ID,
		&stats.ChildID,
		&stats.Date,
		&stats.ActivitiesCompleted,
		&stats.TotalPoints,
		&stats.TotalTimeMinutes,
	)

	if err == sql.ErrNoRows {
		return &models.DailyStats{ChildID: childID, Date: date}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}

	return stats, nil
}

// GetRange retrieves rollups for a child between two dates inclusive,
// oldest first. Days without activity have no row.
func (r *StatsRepository) GetRange(childID int64, fromDate, toDate string) ([]models.DailyStats, error) {
	query := `
		SELECT id, child_id, date, activities_completed, total_points, total_time_minutes
		FROM daily_stats
		WHERE child_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := r.db.Query(query, childID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	var stats []models.DailyStats
	for rows.Next() {
		var s models.DailyStats
		if err := rows.Scan(
			&s.ID,
			&s.ChildID,
			&s.Date,
			&s.ActivitiesCompleted,
			&s.TotalPoints,
			&s.TotalTimeMinutes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetLifetimePoints sums every point a child has ever earned
func (r *StatsRepository) GetLifetimePoints(childID int64) (int, error) {
	query := "SELECT COALESCE(SUM(total_points), 0) FROM daily_stats WHERE child_id = ?"

	var total int
	err := r.db.QueryRow(query, childID).Scan(&total)
	return total, err
}

// DeleteDay removes the rollup row for a child on a date
func (r *StatsRepository) DeleteDay(childID int64, date string) error {
	_, err := r.db.Exec("DELETE FROM daily_stats WHERE child_id = ? AND date = ?", childID, date)
	return err
}
