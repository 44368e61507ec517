package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"craftacademy/internal/config"
	"craftacademy/internal/database"
	"craftacademy/internal/models"
	"craftacademy/internal/repository"
)

// stubGenerator returns canned content without calling the API
type stubGenerator struct {
	content string
	err     error
	calls   int
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.content, nil
}

const stubActivityContent = `Galactic Rocket Builder

Build a cardboard rocket and blast off!

1. Gather your materials (5 minutes)
2. Build the rocket body (15 minutes)
3. Decorate and launch (10 minutes)`

func testConfig() *config.Config {
	return &config.Config{
		MaxActivitiesPerDay:      3,
		MinActivityDuration:      15,
		MaxActivityDuration:      60,
		DurationIncrement:        15,
		ExtensionPenalty:         5,
		ExtensionMinutes:         5,
		MaxExtensionsPerActivity: 2,
		MaxActualDuration:        180,
		MinMaterialsSelection:    3,
		MaxMaterialsSelection:    8,
		Categories:               []string{"building", "painting", "crafting", "jewelry_making"},
		SessionDuration:          time.Hour,
	}
}

func todayString() string {
	return time.Now().Format("2006-01-02")
}

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func createTestChild(t *testing.T, db *database.DB, name string) *models.Child {
	t.Helper()
	child, err := repository.NewChildRepository(db).Create(name)
	if err != nil {
		t.Fatalf("Failed to create child: %v", err)
	}
	return child
}

func createTestParent(t *testing.T, db *database.DB, name string) *models.Parent {
	t.Helper()
	parent, err := repository.NewParentRepository(db).Create(name, "", "not-a-real-hash", false)
	if err != nil {
		t.Fatalf("Failed to create parent: %v", err)
	}
	return parent
}

// generateTestSession creates an activity session through the service with a
// stub generator
func generateTestSession(t *testing.T, svc *ActivityService, childID int64) *models.ActivitySession {
	t.Helper()
	session, err := svc.GenerateActivity(context.Background(), childID, 30,
		[]string{"cardboard", "scissors", "tape"}, []string{"engineering"}, "building")
	if err != nil {
		t.Fatalf("Failed to generate session: %v", err)
	}
	return session
}

// writeTestCatalog writes a reimbursement catalog to a temp file
func writeTestCatalog(t *testing.T, items string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reimbursement_items.json")
	if err := os.WriteFile(path, []byte(items), 0o644); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}
	return path
}
