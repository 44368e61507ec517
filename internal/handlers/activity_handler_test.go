package handlers

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"craftacademy/internal/config"
	"craftacademy/internal/database"
	"craftacademy/internal/models"
	"craftacademy/internal/security"
	"craftacademy/internal/service"
)

type stubGenerator struct{}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return `Galactic Rocket Builder

Build a cardboard rocket and blast off!

1. Gather your materials (5 minutes)
2. Build the rocket body (15 minutes)
3. Decorate and launch (10 minutes)`, nil
}

func setupActivityTest(t *testing.T) (*ActivityHandler, *service.ActivityService, *models.Child) {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cfg := &config.Config{
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

	tokens := security.NewChildTokenIssuer("test-secret", time.Hour)
	authService := service.NewAuthService(db, time.Hour, tokens)
	activityService := service.NewActivityService(db, cfg, &stubGenerator{})
	scoringService := service.NewScoringService(db, cfg)
	reimbursementService := service.NewReimbursementService(db, cfg)

	templates := template.Must(template.New("test").Parse(`{{define "activity.tmpl"}}ok{{end}}`))
	handler := NewActivityHandler(activityService, scoringService, reimbursementService, cfg, templates)

	child, _, err := authService.SelectChild("Nova")
	if err != nil {
		t.Fatalf("SelectChild failed: %v", err)
	}

	return handler, activityService, child
}

func postAsChild(handler http.HandlerFunc, child *models.Child, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = req.WithContext(context.WithValue(req.Context(), ChildContextKey, child))
	recorder := httptest.NewRecorder()
	handler(recorder, req)
	return recorder
}

func TestCompleteRedirectsWhenAlreadyCompleted(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	handler, activityService, child := setupActivityTest(t)

	session, err := activityService.GenerateActivity(context.Background(), child.ID, 30,
		[]string{"cardboard", "scissors", "tape"}, []string{"engineering"}, "building")
	if err != nil {
		t.Fatalf("GenerateActivity failed: %v", err)
	}
	if err := activityService.StartActivity(session.ID); err != nil {
		t.Fatalf("StartActivity failed: %v", err)
	}

	form := url.Values{"actual_duration": {"30"}}

	recorder := postAsChild(handler.Complete, child, "/activity/complete", form)
	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("first complete: expected redirect, got %d", recorder.Code)
	}

	// A stale tab re-submitting the form lands back on the waiting page
	recorder = postAsChild(handler.Complete, child, "/activity/complete", form)
	if recorder.Code != http.StatusSeeOther {
		t.Errorf("second complete: expected redirect, got %d", recorder.Code)
	}
	if loc := recorder.Header().Get("Location"); loc != "/activity" {
		t.Errorf("expected redirect to /activity, got %q", loc)
	}

	updated, err := activityService.GetSession(session.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if updated.Status != models.StatusCompleted {
		t.Errorf("expected status completed, got %q", updated.Status)
	}
	if updated.ActualDuration != 30 {
		t.Errorf("re-submit should not change actual duration, got %d", updated.ActualDuration)
	}
}
