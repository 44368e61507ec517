package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"craftacademy/internal/repository"
	"craftacademy/internal/service"
)

// AdminHandler handles household administration: parent accounts, child
// profiles and stats repair.
type AdminHandler struct {
	authService      *service.AuthService
	scoringService   *service.ScoringService
	dashboardHandler *DashboardHandler
	parentRepo       *repository.ParentRepository
	childRepo        *repository.ChildRepository
	middleware       *Middleware
	templates        *template.Template
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(authService *service.AuthService, scoringService *service.ScoringService, dashboardHandler *DashboardHandler, parentRepo *repository.ParentRepository, childRepo *repository.ChildRepository, middleware *Middleware, templates *template.Template) *AdminHandler {
	return &AdminHandler{
		authService:      authService,
		scoringService:   scoringService,
		dashboardHandler: dashboardHandler,
		parentRepo:       parentRepo,
		childRepo:        childRepo,
		middleware:       middleware,
		templates:        templates,
	}
}

// ShowAdminDashboard renders the admin page with parents and children
func (h *AdminHandler) ShowAdminDashboard(w http.ResponseWriter, r *http.Request) {
	h.renderAdmin(w, r, "", "")
}

// CreateParent adds a parent account
func (h *AdminHandler) CreateParent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	name := r.FormValue("name")
	email := r.FormValue("email")
	password := r.FormValue("password")
	isAdmin := r.FormValue("is_admin") == "on"

	if _, err := h.authService.RegisterParent(name, email, password, isAdmin); err != nil {
		h.renderAdmin(w, r, err.Error(), "")
		return
	}

	h.renderAdmin(w, r, "", "Parent account created")
}

// DeleteParent removes a parent account. Admins can't delete themselves.
func (h *AdminHandler) DeleteParent(w http.ResponseWriter, r *http.Request) {
	parent := GetParentFromContext(r.Context())
	if parent == nil {
		http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
		return
	}

	parentID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid parent ID", http.StatusBadRequest)
		return
	}

	if parentID == parent.ID {
		h.renderAdmin(w, r, "You can't delete your own account", "")
		return
	}

	if err := h.parentRepo.Delete(parentID); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error deleting parent", err)
		return
	}

	h.renderAdmin(w, r, "", "Parent account deleted")
}

// DeleteChild removes a child profile and everything attached to it
func (h *AdminHandler) DeleteChild(w http.ResponseWriter, r *http.Request) {
	childID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid child ID", http.StatusBadRequest)
		return
	}

	if err := h.childRepo.Delete(childID); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error deleting child", err)
		return
	}

	h.renderAdmin(w, r, "", "Child profile deleted")
}

// DeleteSession removes one activity session and rebuilds the affected
// day's stats, then returns to the child's detail page.
func (h *AdminHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid session ID", http.StatusBadRequest)
		return
	}

	childID, err := h.scoringService.DeleteSession(sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			http.Error(w, "Activity not found", http.StatusNotFound)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error deleting session", err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/parent/children/%d", childID), http.StatusSeeOther)
}

// RecalculateStats rebuilds a child's daily rollup from scored sessions.
// Defaults to today when no date is given.
func (h *AdminHandler) RecalculateStats(w http.ResponseWriter, r *http.Request) {
	childID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid child ID", http.StatusBadRequest)
		return
	}

	date := r.FormValue("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		h.renderAdmin(w, r, "Date must look like 2026-08-28", "")
		return
	}

	if _, err := h.scoringService.RecalculateDailyStats(childID, date); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error recalculating stats", err)
		return
	}

	h.renderAdmin(w, r, "", "Stats rebuilt for "+date)
}

func (h *AdminHandler) renderAdmin(w http.ResponseWriter, r *http.Request, errMsg, success string) {
	parent := GetParentFromContext(r.Context())
	if parent == nil {
		http.Redirect(w, r, "/parent/login", http.StatusSeeOther)
		return
	}

	parents, err := h.authService.GetParents()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing parents", err)
		return
	}

	summaries, err := h.dashboardHandler.childSummaries()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error building child summaries", err)
		return
	}

	data := AdminDashboardViewData{
		Title:     "Admin - Craft Academy",
		Parent:    parent,
		Parents:   parents,
		Children:  summaries,
		CSRFToken: h.middleware.CSRFToken(r),
		Error:     errMsg,
		Success:   success,
	}

	if err := h.templates.ExecuteTemplate(w, "admin_dashboard.tmpl", data); err != nil {
		log.Printf("Error rendering admin template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}
