package main

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"craftacademy/internal/config"
	"craftacademy/internal/database"
	"craftacademy/internal/generation"
	"craftacademy/internal/handlers"
	"craftacademy/internal/repository"
	"craftacademy/internal/security"
	"craftacademy/internal/service"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Load templates
	templates, err := loadTemplates(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	log.Println("Templates loaded successfully")

	// Initialize services
	childTokens := security.NewChildTokenIssuer(cfg.SecretKey, cfg.SessionDuration)
	authService := service.NewAuthService(db, cfg.SessionDuration, childTokens)

	generator := generation.NewClient(cfg)
	activityService := service.NewActivityService(db, cfg, generator)
	scoringService := service.NewScoringService(db, cfg)
	reimbursementService := service.NewReimbursementService(db, cfg)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	if emailService.IsEnabled() {
		log.Println("Email notifications enabled")
	} else {
		log.Println("Email notifications disabled (SES_FROM_EMAIL not set)")
	}

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
	}

	// Initialize handlers
	csrf := security.NewCSRFGenerator(cfg.SecretKey)
	limiter := security.NewRateLimiter(10, time.Minute)
	middleware := handlers.NewMiddleware(authService, csrf, limiter)

	authHandler := handlers.NewAuthHandler(authService, templates, oauthProviders, cfg.AppBaseURL)
	activityHandler := handlers.NewActivityHandler(activityService, scoringService, reimbursementService, cfg, templates)
	scoringHandler := handlers.NewScoringHandler(activityService, scoringService, authService, emailService, middleware, templates)
	dashboardHandler := handlers.NewDashboardHandler(authService, activityService, scoringService, reimbursementService, middleware, templates)
	reimbursementHandler := handlers.NewReimbursementHandler(reimbursementService, authService, emailService, templates)
	adminHandler := handlers.NewAdminHandler(authService, scoringService, dashboardHandler,
		repository.NewParentRepository(db), repository.NewChildRepository(db), middleware, templates)

	// Setup routes
	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticFilesPath))))

	// Public routes
	mux.HandleFunc("GET /", authHandler.Home)
	mux.HandleFunc("GET /setup", authHandler.ShowSetup)
	mux.HandleFunc("POST /setup", middleware.RateLimit(authHandler.Setup))
	mux.HandleFunc("GET /parent/login", authHandler.ShowLogin)
	mux.HandleFunc("POST /parent/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /parent/logout", authHandler.Logout)
	mux.HandleFunc("GET /auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", authHandler.OAuthCallback)

	// Child profile selection
	mux.HandleFunc("GET /select", authHandler.ShowChildSelect)
	mux.HandleFunc("POST /select", middleware.RateLimit(authHandler.ChildLogin))
	mux.HandleFunc("POST /logout", authHandler.ChildLogout)

	// Child activity flow
	mux.HandleFunc("GET /home", middleware.RequireChild(activityHandler.ChildHome))
	mux.HandleFunc("GET /activity/new", middleware.RequireChild(activityHandler.ShowActivitySetup))
	mux.HandleFunc("POST /activity/generate", middleware.RequireChild(activityHandler.Generate))
	mux.HandleFunc("GET /activity", middleware.RequireChild(activityHandler.ShowActivity))
	mux.HandleFunc("POST /activity/start", middleware.RequireChild(activityHandler.Start))
	mux.HandleFunc("POST /activity/extend", middleware.RequireChild(activityHandler.Extend))
	mux.HandleFunc("POST /activity/complete", middleware.RequireChild(activityHandler.Complete))

	// Prize shop
	mux.HandleFunc("GET /shop", middleware.RequireChild(reimbursementHandler.ShowShop))
	mux.HandleFunc("POST /shop/redeem", middleware.RequireChild(reimbursementHandler.Redeem))

	// Protected parent routes
	mux.HandleFunc("GET /parent/dashboard", middleware.RequireParent(dashboardHandler.Dashboard))
	mux.HandleFunc("GET /parent/children/{id}", middleware.RequireParent(dashboardHandler.ChildDetail))
	mux.HandleFunc("GET /parent/score", middleware.RequireParent(scoringHandler.ShowScoreForm))
	mux.HandleFunc("POST /parent/score", middleware.RequireParent(middleware.CSRFProtect(scoringHandler.Score)))

	// Admin routes
	mux.HandleFunc("GET /admin", middleware.RequireAdmin(adminHandler.ShowAdminDashboard))
	mux.HandleFunc("POST /admin/parents/create", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.CreateParent)))
	mux.HandleFunc("POST /admin/parents/{id}/delete", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.DeleteParent)))
	mux.HandleFunc("POST /admin/children/{id}/delete", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.DeleteChild)))
	mux.HandleFunc("POST /admin/children/{id}/recalculate", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.RecalculateStats)))
	mux.HandleFunc("POST /admin/sessions/{id}/delete", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.DeleteSession)))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	go cleanupExpiredSessions(authService)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}

// loadTemplates loads all template files
func loadTemplates(templatesPath string) (*template.Template, error) {
	baseTemplate := filepath.Join(templatesPath, "base.tmpl")

	patterns := []string{
		filepath.Join(templatesPath, "auth/*.tmpl"),
		filepath.Join(templatesPath, "child/*.tmpl"),
		filepath.Join(templatesPath, "parent/*.tmpl"),
		filepath.Join(templatesPath, "admin/*.tmpl"),
	}

	var files []string
	files = append(files, baseTemplate)

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
		}
		files = append(files, matches...)
	}

	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"seconds": func(minutes int) int {
			return minutes * 60
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return tmpl, nil
}

// cleanupExpiredSessions periodically removes expired parent sessions
func cleanupExpiredSessions(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		removed, err := authService.CleanupExpiredSessions()
		if err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		} else if removed > 0 {
			log.Printf("Removed %d expired parent sessions", removed)
		}
	}
}
