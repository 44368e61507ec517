package service

import (
	"fmt"
	"time"

	"craftacademy/internal/database"
	"craftacademy/internal/models"
	"craftacademy/internal/repository"
	"craftacademy/internal/security"
	"craftacademy/internal/validation"
)

// AuthService handles parent authentication, parent sessions and child
// profile selection. Children have no passwords; picking a profile issues a
// signed token instead.
type AuthService struct {
	db              *database.DB
	sessionDuration time.Duration
	childTokens     *security.ChildTokenIssuer
}

// NewAuthService creates a new auth service
func NewAuthService(db *database.DB, sessionDuration time.Duration, childTokens *security.ChildTokenIssuer) *AuthService {
	return &AuthService{
		db:              db,
		sessionDuration: sessionDuration,
		childTokens:     childTokens,
	}
}

// NeedsSetup reports whether no parent account exists yet. The first parent
// created through setup becomes the admin.
func (s *AuthService) NeedsSetup() (bool, error) {
	count, err := repository.NewParentRepository(s.db).Count()
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// RegisterParent creates a new parent account
func (s *AuthService) RegisterParent(name, email, password string, isAdmin bool) (*models.Parent, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	parentRepo := repository.NewParentRepository(s.db)

	existing, err := parentRepo.GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing parent: %w", err)
	}
	if existing != nil {
		return nil, ErrNameTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	parent, err := parentRepo.Create(name, email, passwordHash, isAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to create parent: %w", err)
	}

	return parent, nil
}

// LoginParent authenticates a parent and creates a session
func (s *AuthService) LoginParent(name, password string) (*models.Session, *models.Parent, error) {
	parentRepo := repository.NewParentRepository(s.db)

	parent, err := parentRepo.GetByName(name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get parent: %w", err)
	}
	if parent == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, parent.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	if err := parentRepo.CreateSession(sessionID, parent.ID, expiresAt); err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	session := &models.Session{
		ID:        sessionID,
		ParentID:  parent.ID,
		ExpiresAt: expiresAt,
	}
	return session, parent, nil
}

// OAuthLoginParent signs in a parent whose verified email matches an existing
// account. Accounts are provisioned through setup or the admin pages, never
// created from an OAuth callback.
func (s *AuthService) OAuthLoginParent(email string) (*models.Session, *models.Parent, error) {
	if email == "" {
		return nil, nil, ErrInvalidCredentials
	}

	parentRepo := repository.NewParentRepository(s.db)

	parent, err := parentRepo.GetByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get parent: %w", err)
	}
	if parent == nil {
		return nil, nil, ErrInvalidCredentials
	}

	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	if err := parentRepo.CreateSession(sessionID, parent.ID, expiresAt); err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	session := &models.Session{
		ID:        sessionID,
		ParentID:  parent.ID,
		ExpiresAt: expiresAt,
	}
	return session, parent, nil
}

// VerifyParentPassword checks a parent's password without creating a session.
// Used to confirm identity at scoring time.
func (s *AuthService) VerifyParentPassword(parentID int64, password string) (bool, error) {
	parent, err := repository.NewParentRepository(s.db).GetByID(parentID)
	if err != nil {
		return false, err
	}
	if parent == nil {
		return false, nil
	}
	return security.CheckPassword(password, parent.PasswordHash), nil
}

// ValidateSession checks a session and returns the associated parent
func (s *AuthService) ValidateSession(sessionID string) (*models.Parent, error) {
	parentRepo := repository.NewParentRepository(s.db)

	session, err := parentRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionExpired
	}

	if session.IsExpired() {
		_ = parentRepo.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	parent, err := parentRepo.GetByID(session.ParentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get parent: %w", err)
	}
	if parent == nil {
		return nil, ErrSessionExpired
	}

	return parent, nil
}

// Logout invalidates a parent session
func (s *AuthService) Logout(sessionID string) error {
	return repository.NewParentRepository(s.db).DeleteSession(sessionID)
}

// CleanupExpiredSessions removes sessions past their expiry. Run periodically
// from main.
func (s *AuthService) CleanupExpiredSessions() (int64, error) {
	return repository.NewParentRepository(s.db).DeleteExpiredSessions()
}

// SelectChild logs a child in by name, creating the profile on first use,
// and returns a signed token for the child's cookie.
func (s *AuthService) SelectChild(name string) (*models.Child, string, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, "", err
	}

	childRepo := repository.NewChildRepository(s.db)

	child, err := childRepo.GetByName(name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		child, err = childRepo.Create(name)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create child: %w", err)
		}
	}

	token, err := s.childTokens.Issue(child.ID, child.Name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue child token: %w", err)
	}

	return child, token, nil
}

// VerifyChildToken resolves a child token to the child profile
func (s *AuthService) VerifyChildToken(token string) (*models.Child, error) {
	childID, err := s.childTokens.Verify(token)
	if err != nil {
		return nil, ErrSessionExpired
	}

	child, err := repository.NewChildRepository(s.db).GetByID(childID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, ErrChildNotFound
	}

	return child, nil
}

// GetChildren retrieves all child profiles
func (s *AuthService) GetChildren() ([]models.Child, error) {
	return repository.NewChildRepository(s.db).GetAll()
}

// GetParents retrieves all parent accounts
func (s *AuthService) GetParents() ([]models.Parent, error) {
	return repository.NewParentRepository(s.db).GetAll()
}
