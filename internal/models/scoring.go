package models

import "time"

// ActivityScore links one session to the parent who scored it. Created
// exactly once per session; creation flips the session to scored.
type ActivityScore struct {
	ID        int64
	SessionID int64
	ParentID  int64
	Score     int
	ScoredAt  time.Time
}

// ScoredSession is the slice of a session needed to rebuild daily stats.
type ScoredSession struct {
	SessionID        int64
	ActualDuration   int
	SelectedDuration int
	Score            int
}

// DailyStats is the per-(child, calendar date) rollup, upserted on scoring.
type DailyStats struct {
	ID                  int64
	ChildID             int64
	Date                string // YYYY-MM-DD
	ActivitiesCompleted int
	TotalPoints         int
	TotalTimeMinutes    int
}
