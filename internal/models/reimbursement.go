package models

import "time"

// ReimbursementItem is a catalog entry a child can spend points on.
// The catalog is loaded from a JSON file at startup.
type ReimbursementItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PointsCost  int    `json:"points_cost"`
	IsActive    bool   `json:"is_active"`
}

// ReimbursementHistory is the append-only record of a redemption.
type ReimbursementHistory struct {
	ID         int64
	ChildID    int64
	ItemName   string
	PointsCost int
	RedeemedAt time.Time
}

// WeeklyReimbursementStatus tracks the once-per-week cooldown. The week key
// is the most recent Friday on or before the redemption date.
type WeeklyReimbursementStatus struct {
	ID                    int64
	ChildID               int64
	WeekStartDate         string // YYYY-MM-DD, always a Friday
	CanReimburse          bool
	LastReimbursementDate *time.Time
}

// PointDeduction mirrors a history row for points bookkeeping. Spendable
// points = sum(DailyStats.TotalPoints) - sum(PointsDeducted), floored at zero.
type PointDeduction struct {
	ID              int64
	ChildID         int64
	PointsDeducted  int
	DeductionDate   time.Time
	ReimbursementID int64
}

// WeeklyStatus is the view of the current week for the reimbursement page.
type WeeklyStatus struct {
	CanReimburse      bool
	LastReimbursement *time.Time
	NextReset         string // YYYY-MM-DD of next Friday
}
