package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"craftacademy/internal/database"
	"craftacademy/internal/models"
)

const activitySessionColumns = `id, child_id, status, selected_duration, selected_materials,
	       selected_objectives, selected_category, prompt, generated_activity,
	       generation_timestamp, start_time, actual_duration, extensions_used,
	       max_possible_score, created_at, updated_at`

// ActivityRepository handles activity session database operations.
// List selections and the generated activity are stored as JSON text so the
// schema stays identical across dialects.
type ActivityRepository struct {
	db database.DBTX
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db database.DBTX) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create inserts a new activity session and returns it with its ID set
func (r *ActivityRepository) Create(session *models.ActivitySession) (*models.ActivitySession, error) {
	materials, err := json.Marshal(session.SelectedMaterials)
	if err != nil {
		return nil, fmt.Errorf("failed to encode materials: %w", err)
	}
	objectives, err := json.Marshal(session.SelectedObjectives)
	if err != nil {
		return nil, fmt.Errorf("failed to encode objectives: %w", err)
	}
	activity, err := json.Marshal(session.Activity)
	if err != nil {
		return nil, fmt.Errorf("failed to encode activity: %w", err)
	}

	query := `
		INSERT INTO activity_sessions
		(child_id, status, selected_duration, selected_materials, selected_objectives,
		 selected_category, prompt, generated_activity, generation_timestamp, max_possible_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(query,
		session.ChildID,
		models.StatusActive,
		session.SelectedDuration,
		string(materials),
		string(objectives),
		session.SelectedCategory,
		session.Prompt,
		string(activity),
		session.GenerationTimestamp,
		session.MaxPossibleScore,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create activity session: %w", err)
	}

	return r.GetByID(id)
}

// GetByID retrieves an activity session by ID
func (r *ActivityRepository) GetByID(sessionID int64) (*models.ActivitySession, error) {
	query := "SELECT " + activitySessionColumns + " FROM activity_sessions WHERE id = ?"

	session, err := scanActivitySession(r.db.QueryRow(query, sessionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity session: %w", err)
	}
	return session, nil
}

// GetOutstandingByChild returns the child's active or completed session, if any.
// At most one can exist.
func (r *ActivityRepository) GetOutstandingByChild(childID int64) (*models.ActivitySession, error) {
	query := "SELECT " + activitySessionColumns + `
		FROM activity_sessions
		WHERE child_id = ? AND status IN (?, ?)
		ORDER BY created_at DESC
		LIMIT 1`

	session, err := scanActivitySession(r.db.QueryRow(query, childID, models.StatusActive, models.StatusCompleted))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outstanding session: %w", err)
	}
	return session, nil
}

// GetByChild retrieves a child's sessions, newest first
func (r *ActivityRepository) GetByChild(childID int64, limit int) ([]models.ActivitySession, error) {
	query := "SELECT " + activitySessionColumns + `
		FROM activity_sessions
		WHERE child_id = ?
		ORDER BY created_at DESC
		LIMIT ?`

	rows, err := r.db.Query(query, childID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity sessions: %w", err)
	}
	defer rows.Close()

	return collectActivitySessions(rows)
}

// GetRecentTitles returns the titles of a child's most recent activities,
// used to steer generation away from repeats.
func (r *ActivityRepository) GetRecentTitles(childID int64, limit int) ([]string, error) {
	sessions, err := r.GetByChild(childID, limit)
	if err != nil {
		return nil, err
	}

	var titles []string
	for _, s := range sessions {
		if s.Activity.Title != "" {
			titles = append(titles, s.Activity.Title)
		}
	}
	return titles, nil
}

// GetScoredByChildDate retrieves a child's scored sessions created on a given
// date, joined with their scores. Used for stats recalculation. The bounds are
// YYYY-MM-DD strings; every dialect compares them against timestamps directly.
func (r *ActivityRepository) GetScoredByChildDate(childID int64, date, nextDate string) ([]models.ScoredSession, error) {
	query := `
		SELECT a.id, a.actual_duration, a.selected_duration, s.score
		FROM activity_sessions a
		JOIN activity_scores s ON s.session_id = a.id
		WHERE a.child_id = ? AND a.status = ? AND a.created_at >= ? AND a.created_at < ?
		ORDER BY a.created_at ASC
	`

	rows, err := r.db.Query(query, childID, models.StatusScored, date, nextDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query scored sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.ScoredSession
	for rows.Next() {
		var s models.ScoredSession
		if err := rows.Scan(&s.SessionID, &s.ActualDuration, &s.SelectedDuration, &s.Score); err != nil {
			return nil, fmt.Errorf("failed to scan scored session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// MarkStarted records the timer start for a session
func (r *ActivityRepository) MarkStarted(sessionID int64, startTime time.Time) error {
	query := `
		UPDATE activity_sessions
		SET start_time = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND start_time IS NULL
	`
	result, err := r.db.Exec(query, startTime, sessionID)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("session %d already started", sessionID)
	}
	return nil
}

// RecordExtension updates the extension count and reduced score ceiling
func (r *ActivityRepository) RecordExtension(sessionID int64, extensionsUsed, maxPossibleScore int) error {
	query := `
		UPDATE activity_sessions
		SET extensions_used = ?, max_possible_score = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, extensionsUsed, maxPossibleScore, sessionID)
	if err != nil {
		return fmt.Errorf("failed to record extension: %w", err)
	}
	return nil
}

// MarkCompleted transitions a session to completed and records elapsed time
func (r *ActivityRepository) MarkCompleted(sessionID int64, actualDuration int) error {
	query := `
		UPDATE activity_sessions
		SET status = ?, actual_duration = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`
	result, err := r.db.Exec(query, models.StatusCompleted, actualDuration, sessionID, models.StatusActive)
	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("session %d is not active", sessionID)
	}
	return nil
}

// MarkScored transitions a completed session to scored
func (r *ActivityRepository) MarkScored(sessionID int64) error {
	query := `
		UPDATE activity_sessions
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`
	result, err := r.db.Exec(query, models.StatusScored, sessionID, models.StatusCompleted)
	if err != nil {
		return fmt.Errorf("failed to mark session scored: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("session %d is not completed", sessionID)
	}
	return nil
}

// Delete removes an activity session and its score
func (r *ActivityRepository) Delete(sessionID int64) error {
	_, err := r.db.Exec("DELETE FROM activity_sessions WHERE id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete activity session: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanActivitySession(row rowScanner) (*models.ActivitySession, error) {
	session := &models.ActivitySession{}
	var materials, objectives, activity string
	var startTime sql.NullTime

	err := row.Scan(
		&session.ID,
		&session.ChildID,
		&session.Status,
		&session.SelectedDuration,
		&materials,
		&objectives,
		&session.SelectedCategory,
		&session.Prompt,
		&activity,
		&session.GenerationTimestamp,
		&startTime,
		&session.ActualDuration,
		&session.ExtensionsUsed,
		&session.MaxPossibleScore,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if startTime.Valid {
		session.StartTime = &startTime.Time
	}
	if err := json.Unmarshal([]byte(materials), &session.SelectedMaterials); err != nil {
		return nil, fmt.Errorf("failed to decode materials: %w", err)
	}
	if err := json.Unmarshal([]byte(objectives), &session.SelectedObjectives); err != nil {
		return nil, fmt.Errorf("failed to decode objectives: %w", err)
	}
	if err := json.Unmarshal([]byte(activity), &session.Activity); err != nil {
		return nil, fmt.Errorf("failed to decode activity: %w", err)
	}

	return session, nil
}

func collectActivitySessions(rows *sql.Rows) ([]models.ActivitySession, error) {
	var sessions []models.ActivitySession
	for rows.Next() {
		session, err := scanActivitySession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity session: %w", err)
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}
