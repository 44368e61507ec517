package models

import "time"

// Activity session statuses. Transitions are monotonic:
// active -> completed -> scored. A session with a nil StartTime is
// generated but not yet started.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusScored    = "scored"
)

// GeneratedActivity is the structured form of the gateway's free-text output.
type GeneratedActivity struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
	RawContent  string   `json:"raw_content"`
}

// ActivitySession tracks one child's attempt at a single generated activity,
// from creation through scoring.
type ActivitySession struct {
	ID      int64
	ChildID int64
	Status  string

	// Child selections
	SelectedDuration   int // minutes
	SelectedMaterials  []string
	SelectedObjectives []string
	SelectedCategory   string

	// Generated content
	Prompt              string
	Activity            GeneratedActivity
	GenerationTimestamp time.Time

	// Session tracking
	StartTime        *time.Time
	ActualDuration   int // minutes, set on completion
	ExtensionsUsed   int
	MaxPossibleScore int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Started reports whether the session's timer has begun.
func (s *ActivitySession) Started() bool {
	return s.StartTime != nil
}

// Outstanding reports whether the session blocks a new one: generated or
// running but not yet scored.
func (s *ActivitySession) Outstanding() bool {
	return s.Status == StatusActive || s.Status == StatusCompleted
}
