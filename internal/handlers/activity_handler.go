package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"craftacademy/internal/config"
	"craftacademy/internal/models"
	"craftacademy/internal/service"
)

// ActivityHandler handles the child-facing activity flow: setup, generation,
// the timer and completion.
type ActivityHandler struct {
	activityService      *service.ActivityService
	scoringService       *service.ScoringService
	reimbursementService *service.ReimbursementService
	cfg                  *config.Config
	templates            *template.Template
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityService *service.ActivityService, scoringService *service.ScoringService, reimbursementService *service.ReimbursementService, cfg *config.Config, templates *template.Template) *ActivityHandler {
	return &ActivityHandler{
		activityService:      activityService,
		scoringService:       scoringService,
		reimbursementService: reimbursementService,
		cfg:                  cfg,
		templates:            templates,
	}
}

// ChildHome displays the child home page with points, today's progress and
// the outstanding activity if there is one.
func (h *ActivityHandler) ChildHome(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())
	if child == nil {
		http.Redirect(w, r, "/select", http.StatusSeeOther)
		return
	}

	points, err := h.reimbursementService.TotalPoints(child.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting points", err)
		return
	}

	today, err := h.scoringService.GetDailyStats(child.ID, time.Now().Format("2006-01-02"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting daily stats", err)
		return
	}

	canStart, err := h.activityService.CanStartNewActivity(child.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error checking activity state", err)
		return
	}

	outstanding, err := h.activityService.GetOutstandingSession(child.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting outstanding session", err)
		return
	}

	progress, err := h.scoringService.GetProgress(child.ID, 7)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting progress", err)
		return
	}

	data := ChildHomeViewData{
		Title:       "My Academy - Craft Academy",
		Child:       child,
		TotalPoints: points,
		TodayStats:  today,
		CanStart:    canStart,
		Outstanding: outstanding,
		Progress:    progress,
	}

	if err := h.templates.ExecuteTemplate(w, "child_home.tmpl", data); err != nil {
		log.Printf("Error rendering child home template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// ShowActivitySetup renders the mission setup page
func (h *ActivityHandler) ShowActivitySetup(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())
	if child == nil {
		http.Redirect(w, r, "/select", http.StatusSeeOther)
		return
	}

	// An outstanding session always wins over a new setup
	outstanding, err := h.activityService.GetOutstandingSession(child.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting outstanding session", err)
		return
	}
	if outstanding != nil {
		http.Redirect(w, r, "/activity", http.StatusSeeOther)
		return
	}

	h.renderSetup(w, child, "")
}

func (h *ActivityHandler) renderSetup(w http.ResponseWriter, child *models.Child, errMsg string) {
	data := ActivitySetupViewData{
		Title:           "Plan Your Mission - Craft Academy",
		Child:           child,
		DurationOptions: h.cfg.DurationOptions(),
		Materials:       h.cfg.AvailableMaterials,
		Objectives:      h.cfg.LearningObjectives,
		Categories:      h.cfg.Categories,
		MinMaterials:    h.cfg.MinMaterialsSelection,
		MaxMaterials:    h.cfg.MaxMaterialsSelection,
		Error:           errMsg,
	}

	if err := h.templates.ExecuteTemplate(w, "activity_setup.tmpl", data); err != nil {
		log.Printf("Error rendering activity setup template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// Generate handles the setup form and creates a new activity session
func (h *ActivityHandler) Generate(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())
	if child == nil {
		http.Redirect(w, r, "/select", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	duration, err := strconv.Atoi(r.FormValue("duration"))
	if err != nil {
		h.renderSetup(w, child, "Pick one of the listed durations")
		return
	}
	materials := r.Form["materials"]
	objectives := r.Form["objectives"]
	category := r.FormValue("category")

	_, err = h.activityService.GenerateActivity(r.Context(), child.ID, duration, materials, objectives, category)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSelection):
			h.renderSetup(w, child, "Those choices don't work. Check your duration, materials and category.")
		case errors.Is(err, service.ErrDailyLimitReached):
			h.renderSetup(w, child, "You've finished all your missions for today. Come back tomorrow!")
		case errors.Is(err, service.ErrOutstandingSession):
			http.Redirect(w, r, "/activity", http.StatusSeeOther)
		default:
			log.Printf("Error generating activity: %v", err)
			h.renderSetup(w, child, "Mission control couldn't build an activity. Try again in a moment.")
		}
		return
	}

	http.Redirect(w, r, "/activity", http.StatusSeeOther)
}

// ShowActivity displays the outstanding activity: the review screen before
// start, the running timer, or the waiting-for-score screen.
func (h *ActivityHandler) ShowActivity(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())
	if child == nil {
		http.Redirect(w, r, "/select", http.StatusSeeOther)
		return
	}

	session, err := h.activityService.GetOutstandingSession(child.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting outstanding session", err)
		return
	}
	if session == nil {
		http.Redirect(w, r, "/home", http.StatusSeeOther)
		return
	}

	data := ActivityViewData{
		Title:            session.Activity.Title + " - Craft Academy",
		Child:            child,
		Session:          session,
		CanExtend:        h.activityService.CanExtend(session),
		ExtensionMinutes: h.activityService.ExtensionMinutes(),
	}

	if err := h.templates.ExecuteTemplate(w, "activity.tmpl", data); err != nil {
		log.Printf("Error rendering activity template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// Start begins the activity timer
func (h *ActivityHandler) Start(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())
	if child == nil {
		http.Redirect(w, r, "/select", http.StatusSeeOther)
		return
	}

	session, err := h.outstandingSession(w, child.ID)
	if session == nil || err != nil {
		return
	}

	if err := h.activityService.StartActivity(session.ID); err != nil && !errors.Is(err, service.ErrAlreadyStarted) {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error starting activity", err)
		return
	}

	http.Redirect(w, r, "/activity", http.StatusSeeOther)
}

// Extend grants extra timer minutes at the cost of max score
func (h *ActivityHandler) Extend(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())
	if child == nil {
		http.Redirect(w, r, "/select", http.StatusSeeOther)
		return
	}

	session, err := h.outstandingSession(w, child.ID)
	if session == nil || err != nil {
		return
	}

	if _, err := h.activityService.ExtendActivity(session.ID); err != nil && !errors.Is(err, service.ErrMaxExtensions) {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error extending activity", err)
		return
	}

	http.Redirect(w, r, "/activity", http.StatusSeeOther)
}

// Complete marks the activity done and records the elapsed time
func (h *ActivityHandler) Complete(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())
	if child == nil {
		http.Redirect(w, r, "/select", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	session, err := h.outstandingSession(w, child.ID)
	if session == nil || err != nil {
		return
	}

	// A re-submit after completion just lands back on the waiting page
	if session.Status == models.StatusCompleted {
		http.Redirect(w, r, "/activity", http.StatusSeeOther)
		return
	}

	// An unparseable duration falls back to the selected duration downstream
	actualDuration, _ := strconv.Atoi(r.FormValue("actual_duration"))

	if err := h.activityService.CompleteActivity(session.ID, actualDuration); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error completing activity", err)
		return
	}

	http.Redirect(w, r, "/activity", http.StatusSeeOther)
}

func (h *ActivityHandler) outstandingSession(w http.ResponseWriter, childID int64) (*models.ActivitySession, error) {
	session, err := h.activityService.GetOutstandingSession(childID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting outstanding session", err)
		return nil, err
	}
	if session == nil {
		http.Error(w, "No activity in progress", http.StatusNotFound)
		return nil, nil
	}
	return session, nil
}
