package handlers

import (
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"craftacademy/internal/models"
	"craftacademy/internal/service"
)

// DashboardHandler handles the parent dashboard and per-child detail pages
type DashboardHandler struct {
	authService          *service.AuthService
	activityService      *service.ActivityService
	scoringService       *service.ScoringService
	reimbursementService *service.ReimbursementService
	middleware           *Middleware
	templates            *template.Template
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(authService *service.AuthService, activityService *service.ActivityService, scoringService *service.ScoringService, reimbursementService *service.ReimbursementService, middleware *Middleware, templates *template.Template) *DashboardHandler {
	return &DashboardHandler{
		authService:          authService,
		activityService:      activityService,
		scoringService:       scoringService,
		reimbursementService: reimbursementService,
		middleware:           middleware,
		templates:            templates,
	}
}

// Dashboard renders the parent dashboard with a summary card per child
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	parent := GetParentFromContext(r.Context())
	if parent == nil {
		http.Redirect(w, r, "/parent/login", http.StatusSeeOther)
		return
	}

	summaries, err := h.childSummaries()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error building child summaries", err)
		return
	}

	data := ParentDashboardViewData{
		Title:     "Dashboard - Craft Academy",
		Parent:    parent,
		Children:  summaries,
		CSRFToken: h.middleware.CSRFToken(r),
	}

	if err := h.templates.ExecuteTemplate(w, "parent_dashboard.tmpl", data); err != nil {
		log.Printf("Error rendering dashboard template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// ChildDetail renders a single child's progress, recent activities and
// redemption history.
func (h *DashboardHandler) ChildDetail(w http.ResponseWriter, r *http.Request) {
	parent := GetParentFromContext(r.Context())
	if parent == nil {
		http.Redirect(w, r, "/parent/login", http.StatusSeeOther)
		return
	}

	childID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid child ID", http.StatusBadRequest)
		return
	}

	child := h.findChild(childID)
	if child == nil {
		http.Error(w, "Child not found", http.StatusNotFound)
		return
	}

	progress, err := h.scoringService.GetProgress(childID, 14)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting progress", err)
		return
	}

	sessions, err := h.activityService.GetRecentSessions(childID, 10)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting recent sessions", err)
		return
	}

	history, err := h.reimbursementService.History(childID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting history", err)
		return
	}

	points, err := h.reimbursementService.TotalPoints(childID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting points", err)
		return
	}

	data := ChildDetailViewData{
		Title:     child.Name + " - Craft Academy",
		Parent:    parent,
		Child:     child,
		Progress:  progress,
		Sessions:  sessions,
		History:   history,
		Points:    points,
		CSRFToken: h.middleware.CSRFToken(r),
	}

	if err := h.templates.ExecuteTemplate(w, "child_detail.tmpl", data); err != nil {
		log.Printf("Error rendering child detail template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

func (h *DashboardHandler) findChild(childID int64) *models.Child {
	children, err := h.authService.GetChildren()
	if err != nil {
		return nil
	}
	for i := range children {
		if children[i].ID == childID {
			return &children[i]
		}
	}
	return nil
}

func (h *DashboardHandler) childSummaries() ([]ChildSummary, error) {
	children, err := h.authService.GetChildren()
	if err != nil {
		return nil, err
	}

	today := time.Now().Format("2006-01-02")
	var summaries []ChildSummary
	for _, child := range children {
		points, err := h.reimbursementService.TotalPoints(child.ID)
		if err != nil {
			return nil, err
		}
		stats, err := h.scoringService.GetDailyStats(child.ID, today)
		if err != nil {
			return nil, err
		}
		outstanding, err := h.activityService.GetOutstandingSession(child.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, ChildSummary{
			Child:       child,
			TotalPoints: points,
			Today:       stats,
			Outstanding: outstanding,
		})
	}

	return summaries, nil
}
