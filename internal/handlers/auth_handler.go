package handlers

import (
	"html/template"
	"log"
	"net/http"
	"time"

	"craftacademy/internal/security"
	"craftacademy/internal/service"
)

// AuthHandler handles first-run setup, parent login and child profile
// selection.
type AuthHandler struct {
	authService          *service.AuthService
	templates            *template.Template
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, templates *template.Template, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		templates:            templates,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

// Home routes visitors to the right place: setup on first run, the child
// home when a child is signed in, otherwise profile selection.
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	needsSetup, err := h.authService.NeedsSetup()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error checking setup state", err)
		return
	}
	if needsSetup {
		http.Redirect(w, r, "/setup", http.StatusSeeOther)
		return
	}

	if cookie, err := r.Cookie(ChildTokenCookieName); err == nil && cookie.Value != "" {
		if _, err := h.authService.VerifyChildToken(cookie.Value); err == nil {
			http.Redirect(w, r, "/home", http.StatusSeeOther)
			return
		}
	}

	http.Redirect(w, r, "/select", http.StatusSeeOther)
}

// ShowSetup renders the first-run setup page
func (h *AuthHandler) ShowSetup(w http.ResponseWriter, r *http.Request) {
	needsSetup, err := h.authService.NeedsSetup()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error checking setup state", err)
		return
	}
	if !needsSetup {
		http.Redirect(w, r, "/parent/login", http.StatusSeeOther)
		return
	}

	h.renderSetup(w, SetupViewData{Title: "Welcome - Craft Academy"})
}

// Setup creates the first parent account. That account is the admin.
func (h *AuthHandler) Setup(w http.ResponseWriter, r *http.Request) {
	needsSetup, err := h.authService.NeedsSetup()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error checking setup state", err)
		return
	}
	if !needsSetup {
		http.Redirect(w, r, "/parent/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	name := r.FormValue("name")
	email := r.FormValue("email")
	password := r.FormValue("password")

	if _, err := h.authService.RegisterParent(name, email, password, true); err != nil {
		h.renderSetup(w, SetupViewData{
			Title: "Welcome - Craft Academy",
			Error: err.Error(),
			Name:  name,
			Email: email,
		})
		return
	}

	session, _, err := h.authService.LoginParent(name, password)
	if err != nil {
		http.Redirect(w, r, "/parent/login", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	http.Redirect(w, r, "/parent/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) renderSetup(w http.ResponseWriter, data SetupViewData) {
	if err := h.templates.ExecuteTemplate(w, "setup.tmpl", data); err != nil {
		log.Printf("Error rendering setup template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// ShowLogin renders the parent login page
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if _, err := h.authService.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/parent/dashboard", http.StatusSeeOther)
			return
		}
	}

	h.renderLogin(w, LoginViewData{
		Title:          "Parent Login - Craft Academy",
		OAuthProviders: h.oauthProviderViews(),
	})
}

// Login handles parent login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	name := r.FormValue("name")
	password := r.FormValue("password")

	session, _, err := h.authService.LoginParent(name, password)
	if err != nil {
		h.renderLogin(w, LoginViewData{
			Title:          "Parent Login - Craft Academy",
			Error:          "Invalid name or password",
			Name:           name,
			OAuthProviders: h.oauthProviderViews(),
		})
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	http.Redirect(w, r, "/parent/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, data LoginViewData) {
	if err := h.templates.ExecuteTemplate(w, "parent_login.tmpl", data); err != nil {
		log.Printf("Error rendering login template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// Logout handles parent logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		_ = h.authService.Logout(cookie.Value)
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ShowChildSelect displays the child profile selection page
func (h *AuthHandler) ShowChildSelect(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(ChildTokenCookieName); err == nil && cookie.Value != "" {
		if _, err := h.authService.VerifyChildToken(cookie.Value); err == nil {
			http.Redirect(w, r, "/home", http.StatusSeeOther)
			return
		}
	}

	children, err := h.authService.GetChildren()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting children", err)
		return
	}

	data := ChildSelectViewData{
		Title:    "Who's Creating Today? - Craft Academy",
		Children: children,
	}

	if err := h.templates.ExecuteTemplate(w, "child_select.tmpl", data); err != nil {
		log.Printf("Error rendering child select template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// ChildLogin signs a child in by name, creating the profile on first use
func (h *AuthHandler) ChildLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	name := r.FormValue("name")

	_, token, err := h.authService.SelectChild(name)
	if err != nil {
		children, listErr := h.authService.GetChildren()
		if listErr != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting children", listErr)
			return
		}
		data := ChildSelectViewData{
			Title:    "Who's Creating Today? - Craft Academy",
			Children: children,
			Error:    err.Error(),
		}
		if err := h.templates.ExecuteTemplate(w, "child_select.tmpl", data); err != nil {
			log.Printf("Error rendering child select template: %v", err)
			http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
		}
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, ChildTokenCookieName, token, tokenExpiry()))
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

// tokenExpiry is the child token cookie lifetime. The token itself carries
// its own expiry; the cookie just needs to outlive it.
func tokenExpiry() time.Time {
	return time.Now().Add(24 * time.Hour)
}

// ChildLogout clears the child token
func (h *AuthHandler) ChildLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r, ChildTokenCookieName))
	http.Redirect(w, r, "/select", http.StatusSeeOther)
}
