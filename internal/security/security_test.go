package security

import (
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping bcrypt test in short mode")
	}

	hash, err := HashPassword("family-secret")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "family-secret" {
		t.Fatal("hash should not equal the password")
	}

	if !CheckPassword("family-secret", hash) {
		t.Error("correct password should verify")
	}
	if CheckPassword("wrong", hash) {
		t.Error("wrong password should not verify")
	}
}

func TestCSRFTokenRoundTrip(t *testing.T) {
	gen := NewCSRFGenerator("test-secret")

	token, err := gen.GenerateToken("session-123")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if !gen.ValidateToken("session-123", token) {
		t.Error("token should validate for its session")
	}
	if gen.ValidateToken("other-session", token) {
		t.Error("token should not validate for a different session")
	}
	if gen.ValidateToken("session-123", "forged") {
		t.Error("forged token should not validate")
	}
}

func TestCSRFTokenEmptySession(t *testing.T) {
	gen := NewCSRFGenerator("test-secret")

	if _, err := gen.GenerateToken(""); err == nil {
		t.Error("expected error for empty session ID")
	}
	if gen.ValidateToken("", "anything") {
		t.Error("empty session should never validate")
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("fourth request should be denied")
	}

	// A different IP has its own bucket
	if !rl.Allow("10.0.0.2") {
		t.Error("different IP should be allowed")
	}
}

func TestChildTokenRoundTrip(t *testing.T) {
	issuer := NewChildTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(42, "Nova")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	childID, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if childID != 42 {
		t.Errorf("expected child ID 42, got %d", childID)
	}
}

func TestChildTokenWrongSecret(t *testing.T) {
	issuer := NewChildTokenIssuer("secret-a", time.Hour)
	other := NewChildTokenIssuer("secret-b", time.Hour)

	token, err := issuer.Issue(7, "Rex")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := other.Verify(token); err == nil {
		t.Error("token signed with a different secret should not verify")
	}
}

func TestChildTokenExpired(t *testing.T) {
	issuer := NewChildTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue(7, "Rex")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := issuer.Verify(token); err == nil {
		t.Error("expired token should not verify")
	}
}

func TestChildTokenGarbage(t *testing.T) {
	issuer := NewChildTokenIssuer("test-secret", time.Hour)

	if _, err := issuer.Verify("not-a-token"); err == nil {
		t.Error("garbage token should not verify")
	}
}
