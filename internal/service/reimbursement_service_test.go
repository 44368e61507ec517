package service

import (
	"errors"
	"testing"
	"time"

	"craftacademy/internal/database"
	"craftacademy/internal/repository"
)

const testCatalog = `[
	{"name": "Ice Cream Trip", "description": "A trip to the ice cream shop", "points_cost": 100, "is_active": true},
	{"name": "Movie Night", "description": "Pick the Friday movie", "points_cost": 200, "is_active": true},
	{"name": "Retired Prize", "description": "No longer offered", "points_cost": 50, "is_active": false}
]`

func newReimbursementService(t *testing.T, db *database.DB) *ReimbursementService {
	t.Helper()
	cfg := testConfig()
	cfg.CatalogPath = writeTestCatalog(t, testCatalog)
	return NewReimbursementService(db, cfg)
}

// seedPoints gives a child earned points via the daily stats rollup
func seedPoints(t *testing.T, db *database.DB, childID int64, date string, points int) {
	t.Helper()
	if err := repository.NewStatsRepository(db).SetDay(childID, date, 1, points, 30); err != nil {
		t.Fatalf("Failed to seed points: %v", err)
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		day  string
		want string
	}{
		{"friday maps to itself", "2026-08-28", "2026-08-28"},
		{"saturday maps back one day", "2026-08-29", "2026-08-28"},
		{"sunday", "2026-08-30", "2026-08-28"},
		{"monday", "2026-08-31", "2026-08-28"},
		{"thursday maps back six days", "2026-09-03", "2026-08-28"},
		{"next friday starts a new week", "2026-09-04", "2026-09-04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, err := time.Parse("2006-01-02", tt.day)
			if err != nil {
				t.Fatalf("bad test date: %v", err)
			}
			if got := WeekStart(day); got != tt.want {
				t.Errorf("WeekStart(%s) = %s, want %s", tt.day, got, tt.want)
			}
		})
	}
}

func TestCatalogFiltersInactiveItems(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db := setupTestDB(t)
	svc := newReimbursementService(t, db)

	items, err := svc.Catalog()
	if err != nil {
		t.Fatalf("Catalog failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 active items, got %d", len(items))
	}
	for _, item := range items {
		if item.Name == "Retired Prize" {
			t.Error("inactive item should be filtered out")
		}
	}

	item, err := svc.ItemByName("Retired Prize")
	if err != nil {
		t.Fatalf("ItemByName failed: %v", err)
	}
	if item != nil {
		t.Error("inactive item should not be found by name")
	}
}

func TestTotalPoints(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db := setupTestDB(t)
	svc := newReimbursementService(t, db)
	child := createTestChild(t, db, "Nova")

	points, err := svc.TotalPoints(child.ID)
	if err != nil {
		t.Fatalf("TotalPoints failed: %v", err)
	}
	if points != 0 {
		t.Errorf("new child should have 0 points, got %d", points)
	}

	seedPoints(t, db, child.ID, "2026-08-24", 80)
	seedPoints(t, db, child.ID, "2026-08-25", 70)

	points, err = svc.TotalPoints(child.ID)
	if err != nil {
		t.Fatalf("TotalPoints failed: %v", err)
	}
	if points != 150 {
		t.Errorf("expected 150 points, got %d", points)
	}
}

func TestTotalPointsClampedAtZero(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db := setupTestDB(t)
	svc := newReimbursementService(t, db)
	child := createTestChild(t, db, "Nova")

	seedPoints(t, db, child.ID, "2026-08-24", 120)
	if _, err := svc.Process(child.ID, "Ice Cream Trip"); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	points, err := svc.TotalPoints(child.ID)
	if err != nil {
		t.Fatalf("TotalPoints failed: %v", err)
	}
	if points != 20 {
		t.Errorf("expected 20 points after spending 100, got %d", points)
	}

	// A stats rebuild can shrink earnings below what was already spent;
	// the balance bottoms out at zero rather than going negative.
	seedPoints(t, db, child.ID, "2026-08-24", 50)

	points, err = svc.TotalPoints(child.ID)
	if err != nil {
		t.Fatalf("TotalPoints failed: %v", err)
	}
	if points != 0 {
		t.Errorf("expected 0 points when deductions exceed earnings, got %d", points)
	}
}

func TestProcessReimbursement(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db := setupTestDB(t)
	svc := newReimbursementService(t, db)
	child := createTestChild(t, db, "Nova")
	seedPoints(t, db, child.ID, "2026-08-24", 150)

	remaining, err := svc.Process(child.ID, "Ice Cream Trip")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if remaining != 50 {
		t.Errorf("expected 50 remaining, got %d", remaining)
	}

	// The deduction shows up in the balance
	points, err := svc.TotalPoints(child.ID)
	if err != nil {
		t.Fatalf("TotalPoints failed: %v", err)
	}
	if points != 50 {
		t.Errorf("expected balance 50, got %d", points)
	}

	// History was recorded
	history, err := svc.History(child.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 || history[0].ItemName != "Ice Cream Trip" || history[0].PointsCost != 100 {
		t.Errorf("unexpected history: %+v", history)
	}

	// The weekly cooldown is now used
	status, err := svc.WeeklyStatus(child.ID)
	if err != nil {
		t.Fatalf("WeeklyStatus failed: %v", err)
	}
	if status.CanReimburse {
		t.Error("weekly redemption should be used")
	}
	if status.LastReimbursement == nil {
		t.Error("last reimbursement time should be set")
	}
}

func TestProcessReimbursementWeeklyLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db := setupTestDB(t)
	svc := newReimbursementService(t, db)
	child := createTestChild(t, db, "Nova")
	seedPoints(t, db, child.ID, "2026-08-24", 500)

	if _, err := svc.Process(child.ID, "Ice Cream Trip"); err != nil {
		t.Fatalf("first Process failed: %v", err)
	}
	if _, err := svc.Process(child.ID, "Movie Night"); !errors.Is(err, ErrWeeklyLimitUsed) {
		t.Errorf("expected ErrWeeklyLimitUsed, got %v", err)
	}

	// Only one deduction happened
	points, err := svc.TotalPoints(child.ID)
	if err != nil {
		t.Fatalf("TotalPoints failed: %v", err)
	}
	if points != 400 {
		t.Errorf("expected 400 points, got %d", points)
	}
}

func TestProcessReimbursementInsufficientPoints(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db := setupTestDB(t)
	svc := newReimbursementService(t, db)
	child := createTestChild(t, db, "Nova")
	seedPoints(t, db, child.ID, "2026-08-24", 99)

	if _, err := svc.Process(child.ID, "Ice Cream Trip"); !errors.Is(err, ErrInsufficientPoints) {
		t.Errorf("expected ErrInsufficientPoints, got %v", err)
	}

	// Nothing was written
	history, err := svc.History(child.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected no history, got %+v", history)
	}
}

func TestProcessReimbursementUnknownItem(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db := setupTestDB(t)
	svc := newReimbursementService(t, db)
	child := createTestChild(t, db, "Nova")
	seedPoints(t, db, child.ID, "2026-08-24", 500)

	if _, err := svc.Process(child.ID, "Pony"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
	if _, err := svc.Process(child.ID, "Retired Prize"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("inactive item should behave as not found, got %v", err)
	}
}

func TestWeeklyStatusFreshWeek(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db := setupTestDB(t)
	svc := newReimbursementService(t, db)
	child := createTestChild(t, db, "Nova")

	status, err := svc.WeeklyStatus(child.ID)
	if err != nil {
		t.Fatalf("WeeklyStatus failed: %v", err)
	}
	if !status.CanReimburse {
		t.Error("fresh week should allow redemption")
	}
	if status.LastReimbursement != nil {
		t.Error("fresh week should have no last reimbursement")
	}

	wantReset, err := time.Parse("2006-01-02", WeekStart(time.Now()))
	if err != nil {
		t.Fatalf("bad week start: %v", err)
	}
	if status.NextReset != wantReset.AddDate(0, 0, 7).Format("2006-01-02") {
		t.Errorf("unexpected next reset %s", status.NextReset)
	}
}
