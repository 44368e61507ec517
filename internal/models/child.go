package models

import "time"

// Child represents a kid profile in the system. Children carry no
// credentials; they are created on first login by name.
type Child struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// ChildWithStats combines a child with rollup numbers for dashboards.
type ChildWithStats struct {
	Child           Child
	TotalActivities int
	TotalPoints     int
	TodayCompleted  int
	TodayPoints     int
}
