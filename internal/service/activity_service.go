package service

import (
	"context"
	"fmt"
	"time"

	"craftacademy/internal/config"
	"craftacademy/internal/database"
	"craftacademy/internal/generation"
	"craftacademy/internal/models"
	"craftacademy/internal/repository"
)

const recentTitleCount = 5

// Generator produces the free-text activity for a rendered prompt. Satisfied
// by generation.Client; tests substitute a stub.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ActivityService handles activity generation and the session lifecycle
type ActivityService struct {
	db        *database.DB
	cfg       *config.Config
	generator Generator
}

// NewActivityService creates a new activity service
func NewActivityService(db *database.DB, cfg *config.Config, generator Generator) *ActivityService {
	return &ActivityService{
		db:        db,
		cfg:       cfg,
		generator: generator,
	}
}

// validateSelections checks the child's setup choices against configured limits
func (s *ActivityService) validateSelections(duration int, materials, objectives []string, category string) error {
	validDuration := false
	for _, d := range s.cfg.DurationOptions() {
		if duration == d {
			validDuration = true
			break
		}
	}
	if !validDuration {
		return fmt.Errorf("%w: duration %d is not selectable", ErrInvalidSelection, duration)
	}

	if len(materials) < s.cfg.MinMaterialsSelection || len(materials) > s.cfg.MaxMaterialsSelection {
		return fmt.Errorf("%w: select between %d and %d materials",
			ErrInvalidSelection, s.cfg.MinMaterialsSelection, s.cfg.MaxMaterialsSelection)
	}

	if len(objectives) == 0 {
		return fmt.Errorf("%w: select at least one learning objective", ErrInvalidSelection)
	}

	if !s.cfg.ValidCategory(category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidSelection, category)
	}

	return nil
}

// CanStartNewActivity reports whether a child may generate a new activity:
// under the daily cap and with no outstanding session.
func (s *ActivityService) CanStartNewActivity(childID int64) (bool, error) {
	statsRepo := repository.NewStatsRepository(s.db)
	today := time.Now().Format("2006-01-02")
	stats, err := statsRepo.GetDay(childID, today)
	if err != nil {
		return false, err
	}
	if stats.ActivitiesCompleted >= s.cfg.MaxActivitiesPerDay {
		return false, nil
	}

	activityRepo := repository.NewActivityRepository(s.db)
	outstanding, err := activityRepo.GetOutstandingByChild(childID)
	if err != nil {
		return false, err
	}
	return outstanding == nil, nil
}

// GenerateActivity validates the selections, calls the generation gateway and
// creates the session. The outstanding-session rule is re-checked inside the
// creation transaction so two concurrent generations cannot both land.
func (s *ActivityService) GenerateActivity(ctx context.Context, childID int64, duration int, materials, objectives []string, category string) (*models.ActivitySession, error) {
	if err := s.validateSelections(duration, materials, objectives, category); err != nil {
		return nil, err
	}

	statsRepo := repository.NewStatsRepository(s.db)
	today := time.Now().Format("2006-01-02")
	stats, err := statsRepo.GetDay(childID, today)
	if err != nil {
		return nil, err
	}
	if stats.ActivitiesCompleted >= s.cfg.MaxActivitiesPerDay {
		return nil, ErrDailyLimitReached
	}

	activityRepo := repository.NewActivityRepository(s.db)
	recentTitles, err := activityRepo.GetRecentTitles(childID, recentTitleCount)
	if err != nil {
		return nil, err
	}

	prompt, err := generation.BuildPrompt(generation.PromptData{
		Category:        category,
		DurationMinutes: duration,
		Materials:       materials,
		Objectives:      objectives,
		RecentTitles:    recentTitles,
	})
	if err != nil {
		return nil, err
	}

	content, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("activity generation failed: %w", err)
	}

	activity := generation.ParseActivity(content)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	txActivityRepo := repository.NewActivityRepository(tx)
	outstanding, err := txActivityRepo.GetOutstandingByChild(childID)
	if err != nil {
		return nil, err
	}
	if outstanding != nil {
		return nil, ErrOutstandingSession
	}

	session, err := txActivityRepo.Create(&models.ActivitySession{
		ChildID:             childID,
		SelectedDuration:    duration,
		SelectedMaterials:   materials,
		SelectedObjectives:  objectives,
		SelectedCategory:    category,
		Prompt:              prompt,
		Activity:            activity,
		GenerationTimestamp: time.Now().UTC(),
		MaxPossibleScore:    100,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return session, nil
}

// GetSession retrieves an activity session
func (s *ActivityService) GetSession(sessionID int64) (*models.ActivitySession, error) {
	session, err := repository.NewActivityRepository(s.db).GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// GetOutstandingSession retrieves a child's unscored session, or nil
func (s *ActivityService) GetOutstandingSession(childID int64) (*models.ActivitySession, error) {
	return repository.NewActivityRepository(s.db).GetOutstandingByChild(childID)
}

// GetRecentSessions retrieves a child's latest sessions
func (s *ActivityService) GetRecentSessions(childID int64, limit int) ([]models.ActivitySession, error) {
	return repository.NewActivityRepository(s.db).GetByChild(childID, limit)
}

// StartActivity begins the session timer. Starting twice is an error.
func (s *ActivityService) StartActivity(sessionID int64) error {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return err
	}
	if session.Started() {
		return ErrAlreadyStarted
	}
	return repository.NewActivityRepository(s.db).MarkStarted(sessionID, time.Now().UTC())
}

// CanExtend reports whether the extend button should be offered: extensions
// remaining and the original timer has run out.
func (s *ActivityService) CanExtend(session *models.ActivitySession) bool {
	if session.ExtensionsUsed >= s.cfg.MaxExtensionsPerActivity {
		return false
	}
	if !session.Started() {
		return false
	}
	elapsed := time.Since(*session.StartTime)
	return elapsed >= time.Duration(session.SelectedDuration)*time.Minute
}

// ExtendActivity grants extra timer minutes in exchange for a score penalty.
// The score ceiling never drops below zero.
func (s *ActivityService) ExtendActivity(sessionID int64) (*models.ActivitySession, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	if session.ExtensionsUsed >= s.cfg.MaxExtensionsPerActivity {
		return nil, ErrMaxExtensions
	}

	extensionsUsed := session.ExtensionsUsed + 1
	maxScore := session.MaxPossibleScore - s.cfg.ExtensionPenalty
	if maxScore < 0 {
		maxScore = 0
	}

	repo := repository.NewActivityRepository(s.db)
	if err := repo.RecordExtension(sessionID, extensionsUsed, maxScore); err != nil {
		return nil, err
	}

	session.ExtensionsUsed = extensionsUsed
	session.MaxPossibleScore = maxScore
	return session, nil
}

// CompleteActivity marks the session finished. Durations outside the sane
// range fall back to the selected duration.
func (s *ActivityService) CompleteActivity(sessionID int64, actualDuration int) error {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return err
	}

	if actualDuration <= 0 || actualDuration > s.cfg.MaxActualDuration {
		actualDuration = session.SelectedDuration
	}

	return repository.NewActivityRepository(s.db).MarkCompleted(sessionID, actualDuration)
}

// ExtensionMinutes returns the timer minutes each extension grants
func (s *ActivityService) ExtensionMinutes() int {
	return s.cfg.ExtensionMinutes
}
