package service

import (
	"errors"
	"testing"
	"time"

	"craftacademy/internal/security"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	db := setupTestDB(t)
	tokens := security.NewChildTokenIssuer("test-secret", time.Hour)
	return NewAuthService(db, time.Hour, tokens)
}

func TestNeedsSetup(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	svc := newAuthService(t)

	needs, err := svc.NeedsSetup()
	if err != nil {
		t.Fatalf("NeedsSetup failed: %v", err)
	}
	if !needs {
		t.Error("empty database should need setup")
	}

	if _, err := svc.RegisterParent("Alex", "", "password123", true); err != nil {
		t.Fatalf("RegisterParent failed: %v", err)
	}

	needs, err = svc.NeedsSetup()
	if err != nil {
		t.Fatalf("NeedsSetup failed: %v", err)
	}
	if needs {
		t.Error("setup should be complete after first parent")
	}
}

func TestRegisterAndLoginParent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	svc := newAuthService(t)

	parent, err := svc.RegisterParent("Alex", "alex@example.com", "password123", false)
	if err != nil {
		t.Fatalf("RegisterParent failed: %v", err)
	}
	if parent.IsAdmin {
		t.Error("parent should not be admin")
	}
	if parent.PasswordHash == "password123" {
		t.Error("password must be hashed")
	}

	// Duplicate name rejected
	if _, err := svc.RegisterParent("Alex", "", "password456", false); !errors.Is(err, ErrNameTaken) {
		t.Errorf("expected ErrNameTaken, got %v", err)
	}

	// Login with correct password
	session, loggedIn, err := svc.LoginParent("Alex", "password123")
	if err != nil {
		t.Fatalf("LoginParent failed: %v", err)
	}
	if loggedIn.ID != parent.ID {
		t.Error("login returned the wrong parent")
	}

	// Session resolves back to the parent
	resolved, err := svc.ValidateSession(session.ID)
	if err != nil {
		t.Fatalf("ValidateSession failed: %v", err)
	}
	if resolved.ID != parent.ID {
		t.Error("session resolved to the wrong parent")
	}

	// Wrong password rejected
	if _, _, err := svc.LoginParent("Alex", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}

	// Unknown parent rejected
	if _, _, err := svc.LoginParent("Nobody", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterParentValidation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	svc := newAuthService(t)

	if _, err := svc.RegisterParent("A", "", "password123", false); err == nil {
		t.Error("one-character name should be rejected")
	}
	if _, err := svc.RegisterParent("Alex", "", "short", false); err == nil {
		t.Error("short password should be rejected")
	}
	if _, err := svc.RegisterParent("Alex", "not-an-email", "password123", false); err == nil {
		t.Error("malformed email should be rejected")
	}
}

func TestLogout(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	svc := newAuthService(t)
	if _, err := svc.RegisterParent("Alex", "", "password123", false); err != nil {
		t.Fatalf("RegisterParent failed: %v", err)
	}

	session, _, err := svc.LoginParent("Alex", "password123")
	if err != nil {
		t.Fatalf("LoginParent failed: %v", err)
	}

	if err := svc.Logout(session.ID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := svc.ValidateSession(session.ID); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired after logout, got %v", err)
	}
}

func TestVerifyParentPassword(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	svc := newAuthService(t)
	parent, err := svc.RegisterParent("Alex", "", "password123", false)
	if err != nil {
		t.Fatalf("RegisterParent failed: %v", err)
	}

	ok, err := svc.VerifyParentPassword(parent.ID, "password123")
	if err != nil {
		t.Fatalf("VerifyParentPassword failed: %v", err)
	}
	if !ok {
		t.Error("correct password should verify")
	}

	ok, err = svc.VerifyParentPassword(parent.ID, "nope")
	if err != nil {
		t.Fatalf("VerifyParentPassword failed: %v", err)
	}
	if ok {
		t.Error("wrong password should not verify")
	}
}

func TestSelectChild(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	svc := newAuthService(t)

	// First selection creates the profile
	child, token, err := svc.SelectChild("Nova")
	if err != nil {
		t.Fatalf("SelectChild failed: %v", err)
	}
	if child.ID == 0 || token == "" {
		t.Fatal("expected a child and a token")
	}

	// The token resolves back to the child
	resolved, err := svc.VerifyChildToken(token)
	if err != nil {
		t.Fatalf("VerifyChildToken failed: %v", err)
	}
	if resolved.ID != child.ID {
		t.Error("token resolved to the wrong child")
	}

	// Second selection reuses the profile
	again, _, err := svc.SelectChild("Nova")
	if err != nil {
		t.Fatalf("second SelectChild failed: %v", err)
	}
	if again.ID != child.ID {
		t.Error("selecting the same name should reuse the profile")
	}

	children, err := svc.GetChildren()
	if err != nil {
		t.Fatalf("GetChildren failed: %v", err)
	}
	if len(children) != 1 {
		t.Errorf("expected 1 child, got %d", len(children))
	}
}

func TestVerifyChildTokenGarbage(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	svc := newAuthService(t)
	if _, err := svc.VerifyChildToken("garbage"); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired for garbage token, got %v", err)
	}
}
