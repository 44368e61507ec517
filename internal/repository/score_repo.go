package repository

import (
	"database/sql"
	"fmt"

	"craftacademy/internal/database"
	"craftacademy/internal/models"
)

// ScoreRepository handles activity score database operations
type ScoreRepository struct {
	db database.DBTX
}

// NewScoreRepository creates a new score repository
func NewScoreRepository(db database.DBTX) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Create records a score for a session. The UNIQUE constraint on session_id
// rejects a second score.
func (r *ScoreRepository) Create(sessionID, parentID int64, score int) (*models.ActivityScore, error) {
	query := "INSERT INTO activity_scores (session_id, parent_id, score) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(query, sessionID, parentID, score)
	if err != nil {
		return nil, fmt.Errorf("failed to create score: %w", err)
	}

	return r.GetByID(id)
}

// GetByID retrieves a score by ID
func (r *ScoreRepository) GetByID(scoreID int64) (*models.ActivityScore, error) {
	query := "SELECT id, session_id, parent_id, score, scored_at FROM activity_scores WHERE id = ?"
	return r.scanScore(r.db.QueryRow(query, scoreID))
}

// GetBySessionID retrieves the score for a session, if one exists
func (r *ScoreRepository) GetBySessionID(sessionID int64) (*models.ActivityScore, error) {
	query := "SELECT id, session_id, parent_id, score, scored_at FROM activity_scores WHERE session_id = ?"
	return r.scanScore(r.db.QueryRow(query, sessionID))
}

func (r *ScoreRepository) scanScore(row *sql.Row) (*models.ActivityScore, error) {
	score := &models.ActivityScore{}
	err := row.Scan(
		&score.ID,
		&score.SessionID,
		&score.ParentID,
		&score.Score,
		&score.ScoredAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get score: %w", err)
	}

	return score, nil
}
