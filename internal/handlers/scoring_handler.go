package handlers

import (
	"context"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"craftacademy/internal/models"
	"craftacademy/internal/service"
)

// ScoringHandler handles the parent scoring flow
type ScoringHandler struct {
	activityService *service.ActivityService
	scoringService  *service.ScoringService
	authService     *service.AuthService
	emailService    *service.EmailService
	middleware      *Middleware
	templates       *template.Template
}

// NewScoringHandler creates a new scoring handler
func NewScoringHandler(activityService *service.ActivityService, scoringService *service.ScoringService, authService *service.AuthService, emailService *service.EmailService, middleware *Middleware, templates *template.Template) *ScoringHandler {
	return &ScoringHandler{
		activityService: activityService,
		scoringService:  scoringService,
		authService:     authService,
		emailService:    emailService,
		middleware:      middleware,
		templates:       templates,
	}
}

// ShowScoreForm lists completed activities waiting for a score
func (h *ScoringHandler) ShowScoreForm(w http.ResponseWriter, r *http.Request) {
	parent := GetParentFromContext(r.Context())
	if parent == nil {
		http.Redirect(w, r, "/parent/login", http.StatusSeeOther)
		return
	}

	candidates, children, err := h.scoreCandidates()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing completed activities", err)
		return
	}

	h.renderScoreForm(w, r, parent, candidates, children, "", "")
}

// Score records a parent's score for a completed activity. The parent's
// password is re-checked so a child can't score from an open browser tab.
func (h *ScoringHandler) Score(w http.ResponseWriter, r *http.Request) {
	parent := GetParentFromContext(r.Context())
	if parent == nil {
		http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	sessionID, err := strconv.ParseInt(r.FormValue("session_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid session ID", http.StatusBadRequest)
		return
	}
	score, err := strconv.Atoi(r.FormValue("score"))
	if err != nil {
		h.rerenderScoreForm(w, r, parent, "Enter a whole-number score", "")
		return
	}
	password := r.FormValue("password")

	ok, err := h.authService.VerifyParentPassword(parent.ID, password)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error verifying password", err)
		return
	}
	if !ok {
		h.rerenderScoreForm(w, r, parent, "Password doesn't match", "")
		return
	}

	session, err := h.activityService.GetSession(sessionID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting session", err)
		return
	}
	if session == nil {
		http.Error(w, "Activity not found", http.StatusNotFound)
		return
	}

	if _, err := h.scoringService.ScoreActivity(sessionID, parent.ID, score); err != nil {
		switch {
		case errors.Is(err, service.ErrScoreOutOfRange):
			h.rerenderScoreForm(w, r, parent, "Score must be between 0 and the activity's maximum", "")
		case errors.Is(err, service.ErrNotCompleted):
			h.rerenderScoreForm(w, r, parent, "That activity isn't waiting for a score", "")
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error scoring activity", err)
		}
		return
	}

	h.notifyScore(parent, session, score)

	h.rerenderScoreForm(w, r, parent, "", "Score saved!")
}

// notifyScore emails the parent a record of the score when email is enabled
func (h *ScoringHandler) notifyScore(parent *models.Parent, session *models.ActivitySession, score int) {
	if h.emailService == nil || !h.emailService.IsEnabled() || parent.Email == "" {
		return
	}

	childName := ""
	if children, err := h.authService.GetChildren(); err == nil {
		for _, child := range children {
			if child.ID == session.ChildID {
				childName = child.Name
				break
			}
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := h.emailService.SendScoreNotification(ctx, parent.Email, parent.Name, childName,
			session.Activity.Title, score, session.MaxPossibleScore); err != nil {
			log.Printf("Error sending score notification: %v", err)
		}
	}()
}

func (h *ScoringHandler) rerenderScoreForm(w http.ResponseWriter, r *http.Request, parent *models.Parent, errMsg, success string) {
	candidates, children, err := h.scoreCandidates()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing completed activities", err)
		return
	}
	h.renderScoreForm(w, r, parent, candidates, children, errMsg, success)
}

func (h *ScoringHandler) renderScoreForm(w http.ResponseWriter, r *http.Request, parent *models.Parent, candidates []ScoreCandidate, children []models.Child, errMsg, success string) {
	data := ScoreViewData{
		Title:     "Score Activities - Craft Academy",
		Parent:    parent,
		Children:  children,
		Sessions:  candidates,
		CSRFToken: h.middleware.CSRFToken(r),
		Error:     errMsg,
		Success:   success,
	}

	if err := h.templates.ExecuteTemplate(w, "score.tmpl", data); err != nil {
		log.Printf("Error rendering score template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// scoreCandidates collects each child's completed-but-unscored session
func (h *ScoringHandler) scoreCandidates() ([]ScoreCandidate, []models.Child, error) {
	children, err := h.authService.GetChildren()
	if err != nil {
		return nil, nil, err
	}

	var candidates []ScoreCandidate
	for _, child := range children {
		session, err := h.activityService.GetOutstandingSession(child.ID)
		if err != nil {
			return nil, nil, err
		}
		if session == nil || session.Status != models.StatusCompleted {
			continue
		}
		candidates = append(candidates, ScoreCandidate{
			Session:   *session,
			ChildName: child.Name,
		})
	}

	return candidates, children, nil
}
