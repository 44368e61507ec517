package service

import "errors"

// Sentinel errors for business rule violations. Handlers translate these
// into user-facing messages and status codes.
var (
	ErrSessionNotFound    = errors.New("activity session not found")
	ErrChildNotFound      = errors.New("child not found")
	ErrParentNotFound     = errors.New("parent not found")
	ErrOutstandingSession = errors.New("an unscored activity already exists")
	ErrDailyLimitReached  = errors.New("daily activity limit reached")
	ErrNotCompleted       = errors.New("activity is not completed yet")
	ErrAlreadyStarted     = errors.New("activity already started")
	ErrMaxExtensions      = errors.New("maximum extensions reached")
	ErrScoreOutOfRange    = errors.New("score is outside the allowed range")
	ErrInvalidSelection   = errors.New("invalid activity selection")
	ErrItemNotFound       = errors.New("reimbursement item not found")
	ErrWeeklyLimitUsed    = errors.New("weekly reimbursement already used")
	ErrInsufficientPoints = errors.New("not enough points")
	ErrInvalidCredentials = errors.New("invalid name or password")
	ErrNameTaken          = errors.New("name is already taken")
	ErrSessionExpired     = errors.New("session expired")
)
