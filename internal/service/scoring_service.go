package service

import (
	"time"

	"craftacademy/internal/config"
	"craftacademy/internal/database"
	"craftacademy/internal/models"
	"craftacademy/internal/repository"
)

// ScoringService handles parent scoring and the daily stats rollups
type ScoringService struct {
	db  *database.DB
	cfg *config.Config
}

// NewScoringService creates a new scoring service
func NewScoringService(db *database.DB, cfg *config.Config) *ScoringService {
	return &ScoringService{db: db, cfg: cfg}
}

// ScoreActivity records a parent's score for a completed session. The score
// row, the status flip and the stats rollup commit together or not at all.
func (s *ScoringService) ScoreActivity(sessionID, parentID int64, score int) (*models.ActivityScore, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	activityRepo := repository.NewActivityRepository(tx)
	session, err := activityRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Status != models.StatusCompleted {
		return nil, ErrNotCompleted
	}
	if score < 0 || score > session.MaxPossibleScore {
		return nil, ErrScoreOutOfRange
	}

	scoreRepo := repository.NewScoreRepository(tx)
	record, err := scoreRepo.Create(sessionID, parentID, score)
	if err != nil {
		return nil, err
	}

	if err := activityRepo.MarkScored(sessionID); err != nil {
		return nil, err
	}

	statsRepo := repository.NewStatsRepository(tx)
	today := time.Now().Format("2006-01-02")
	if err := statsRepo.AddToDay(session.ChildID, today, 1, score, session.ActualDuration); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return record, nil
}

// DeleteSession removes an activity session and, when it had been scored,
// rebuilds that day's rollup so the totals do not drift. Returns the owning
// child's ID.
func (s *ScoringService) DeleteSession(sessionID int64) (int64, error) {
	activityRepo := repository.NewActivityRepository(s.db)
	session, err := activityRepo.GetByID(sessionID)
	if err != nil {
		return 0, err
	}
	if session == nil {
		return 0, ErrSessionNotFound
	}

	var scoredDate string
	if session.Status == models.StatusScored {
		score, err := repository.NewScoreRepository(s.db).GetBySessionID(sessionID)
		if err != nil {
			return 0, err
		}
		if score != nil {
			scoredDate = score.ScoredAt.Format("2006-01-02")
		}
	}

	if err := activityRepo.Delete(sessionID); err != nil {
		return 0, err
	}

	if scoredDate != "" {
		if _, err := s.RecalculateDailyStats(session.ChildID, scoredDate); err != nil {
			return 0, err
		}
	}

	return session.ChildID, nil
}

// GetScore retrieves the score for a session, or nil when unscored
func (s *ScoringService) GetScore(sessionID int64) (*models.ActivityScore, error) {
	return repository.NewScoreRepository(s.db).GetBySessionID(sessionID)
}

// GetDailyStats retrieves a child's rollup for a date, zero-filled when absent
func (s *ScoringService) GetDailyStats(childID int64, date string) (*models.DailyStats, error) {
	return repository.NewStatsRepository(s.db).GetDay(childID, date)
}

// GetProgress returns one entry per day for the trailing window, oldest
// first, with zero rows for days without activity.
func (s *ScoringService) GetProgress(childID int64, days int) ([]models.DailyStats, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -(days - 1))
	fromDate := start.Format("2006-01-02")
	toDate := end.Format("2006-01-02")

	recorded, err := repository.NewStatsRepository(s.db).GetRange(childID, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]models.DailyStats, len(recorded))
	for _, r := range recorded {
		byDate[r.Date] = r
	}

	progress := make([]models.DailyStats, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format("2006-01-02")
		if r, ok := byDate[date]; ok {
			progress = append(progress, r)
		} else {
			progress = append(progress, models.DailyStats{ChildID: childID, Date: date})
		}
	}

	return progress, nil
}

// RecalculateDailyStats rebuilds a child's rollup for one date from the
// scored sessions themselves. Idempotent; used after admin deletions.
func (s *ScoringService) RecalculateDailyStats(childID int64, date string) (*models.DailyStats, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, err
	}
	nextDate := day.AddDate(0, 0, 1).Format("2006-01-02")

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	scored, err := repository.NewActivityRepository(tx).GetScoredByChildDate(childID, date, nextDate)
	if err != nil {
		return nil, err
	}

	stats := &models.DailyStats{ChildID: childID, Date: date}
	for _, sess := range scored {
		stats.ActivitiesCompleted++
		stats.TotalPoints += sess.Score
		stats.TotalTimeMinutes += sess.ActualDuration
	}

	statsRepo := repository.NewStatsRepository(tx)
	if stats.ActivitiesCompleted == 0 {
		if err := statsRepo.DeleteDay(childID, date); err != nil {
			return nil, err
		}
	} else {
		if err := statsRepo.SetDay(childID, date, stats.ActivitiesCompleted, stats.TotalPoints, stats.TotalTimeMinutes); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return stats, nil
}

// GetLifetimePoints sums every point a child has earned across all days
func (s *ScoringService) GetLifetimePoints(childID int64) (int, error) {
	return repository.NewStatsRepository(s.db).GetLifetimePoints(childID)
}
