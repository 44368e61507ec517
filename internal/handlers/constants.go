package handlers

const (
	SessionCookieName    = "session_id"
	ChildTokenCookieName = "child_token"

	ErrInvalidFormData     = "Invalid form data"
	ErrUnauthorized        = "Unauthorized"
	ErrInternalServerError = "Internal server error"
)
