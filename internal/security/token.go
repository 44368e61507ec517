package security

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ChildTokenIssuer signs and verifies the child session tokens stored in the
// child's cookie. Children have no passwords, so a signed token is what ties
// a browser to a child profile.
type ChildTokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewChildTokenIssuer creates a token issuer using the application secret
func NewChildTokenIssuer(secret string, ttl time.Duration) *ChildTokenIssuer {
	return &ChildTokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token identifying a child
func (i *ChildTokenIssuer) Issue(childID int64, name string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(childID, 10),
		"name": name,
		"typ":  "child",
		"iat":  now.Unix(),
		"exp":  now.Add(i.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify parses a token and returns the child ID it identifies
func (i *ChildTokenIssuer) Verify(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid token claims")
	}

	if typ, _ := claims["typ"].(string); typ != "child" {
		return 0, fmt.Errorf("not a child token")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("missing subject: %w", err)
	}

	childID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed subject: %w", err)
	}

	return childID, nil
}
