package service

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"craftacademy/internal/config"
	"craftacademy/internal/database"
	"craftacademy/internal/models"
	"craftacademy/internal/repository"
)

const historyLimit = 50

// ReimbursementService handles the point shop: catalog, weekly cooldown and
// redemption. The reimbursement week starts on Friday.
type ReimbursementService struct {
	db          *database.DB
	catalogPath string
}

// NewReimbursementService creates a new reimbursement service
func NewReimbursementService(db *database.DB, cfg *config.Config) *ReimbursementService {
	return &ReimbursementService{db: db, catalogPath: cfg.CatalogPath}
}

// Catalog loads the active reimbursement items from the JSON catalog file.
// Read on every call so the file can be edited without a restart.
func (s *ReimbursementService) Catalog() ([]models.ReimbursementItem, error) {
	data, err := os.ReadFile(s.catalogPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var items []models.ReimbursementItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	active := make([]models.ReimbursementItem, 0, len(items))
	for _, item := range items {
		if item.IsActive {
			active = append(active, item)
		}
	}
	return active, nil
}

// ItemByName finds an active catalog item by name
func (s *ReimbursementService) ItemByName(name string) (*models.ReimbursementItem, error) {
	items, err := s.Catalog()
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Name == name {
			return &items[i], nil
		}
	}
	return nil, nil
}

// WeekStart returns the YYYY-MM-DD of the most recent Friday on or before t
func WeekStart(t time.Time) string {
	daysSinceFriday := (int(t.Weekday()) - int(time.Friday) + 7) % 7
	return t.AddDate(0, 0, -daysSinceFriday).Format("2006-01-02")
}

// TotalPoints returns a child's spendable points: lifetime earnings minus
// everything already spent, floored at zero.
func (s *ReimbursementService) TotalPoints(childID int64) (int, error) {
	earned, err := repository.NewStatsRepository(s.db).GetLifetimePoints(childID)
	if err != nil {
		return 0, err
	}
	spent, err := repository.NewReimbursementRepository(s.db).GetTotalDeductions(childID)
	if err != nil {
		return 0, err
	}

	points := earned - spent
	if points < 0 {
		points = 0
	}
	return points, nil
}

// CanReimburseThisWeek reports whether the child's weekly redemption is
// still available. No row for the current week means yes.
func (s *ReimbursementService) CanReimburseThisWeek(childID int64) (bool, error) {
	weekStart := WeekStart(time.Now())
	status, err := repository.NewReimbursementRepository(s.db).GetWeeklyStatus(childID, weekStart)
	if err != nil {
		return false, err
	}
	if status == nil {
		return true, nil
	}
	return status.CanReimburse, nil
}

// Validate checks an intended redemption without performing it. Returns the
// item and the child's current points on success.
func (s *ReimbursementService) Validate(childID int64, itemName string) (*models.ReimbursementItem, int, error) {
	item, err := s.ItemByName(itemName)
	if err != nil {
		return nil, 0, err
	}
	if item == nil {
		return nil, 0, ErrItemNotFound
	}

	canReimburse, err := s.CanReimburseThisWeek(childID)
	if err != nil {
		return nil, 0, err
	}
	if !canReimburse {
		return nil, 0, ErrWeeklyLimitUsed
	}

	points, err := s.TotalPoints(childID)
	if err != nil {
		return nil, 0, err
	}
	if points < item.PointsCost {
		return nil, 0, fmt.Errorf("%w: need %d points, have %d", ErrInsufficientPoints, item.PointsCost, points)
	}

	return item, points, nil
}

// Process performs a redemption: the history record, the weekly cooldown and
// the point deduction are written in one transaction. Returns the remaining
// points.
func (s *ReimbursementService) Process(childID int64, itemName string) (int, error) {
	item, points, err := s.Validate(childID, itemName)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	repo := repository.NewReimbursementRepository(tx)

	historyID, err := repo.CreateHistory(childID, item.Name, item.PointsCost)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	if err := repo.SetWeeklyStatus(childID, WeekStart(now), false, now); err != nil {
		return 0, err
	}

	if err := repo.CreateDeduction(childID, item.PointsCost, historyID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return points - item.PointsCost, nil
}

// History retrieves a child's redemptions, newest first
func (s *ReimbursementService) History(childID int64) ([]models.ReimbursementHistory, error) {
	return repository.NewReimbursementRepository(s.db).GetHistory(childID, historyLimit)
}

// WeeklyStatus returns the current week's view for the reimbursement page
func (s *ReimbursementService) WeeklyStatus(childID int64) (*models.WeeklyStatus, error) {
	now := time.Now()
	weekStart := WeekStart(now)

	start, err := time.Parse("2006-01-02", weekStart)
	if err != nil {
		return nil, err
	}
	nextReset := start.AddDate(0, 0, 7).Format("2006-01-02")

	status, err := repository.NewReimbursementRepository(s.db).GetWeeklyStatus(childID, weekStart)
	if err != nil {
		return nil, err
	}

	if status == nil {
		return &models.WeeklyStatus{CanReimburse: true, NextReset: nextReset}, nil
	}

	return &models.WeeklyStatus{
		CanReimburse:      status.CanReimburse,
		LastReimbursement: status.LastReimbursementDate,
		NextReset:         nextReset,
	}, nil
}
