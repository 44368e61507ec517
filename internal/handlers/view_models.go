package handlers

import (
	"craftacademy/internal/models"
)

type SetupViewData struct {
	Title string
	Error string
	Name  string
	Email string
}

type LoginViewData struct {
	Title          string
	Error          string
	Name           string
	OAuthProviders []OAuthProviderView
}

type ChildSelectViewData struct {
	Title    string
	Children []models.Child
	Error    string
}

type ChildHomeViewData struct {
	Title       string
	Child       *models.Child
	TotalPoints int
	TodayStats  *models.DailyStats
	CanStart    bool
	Outstanding *models.ActivitySession
	Progress    []models.DailyStats
}

type ActivitySetupViewData struct {
	Title           string
	Child           *models.Child
	DurationOptions []int
	Materials       []string
	Objectives      []string
	Categories      []string
	MinMaterials    int
	MaxMaterials    int
	Error           string
}

type ActivityViewData struct {
	Title            string
	Child            *models.Child
	Session          *models.ActivitySession
	CanExtend        bool
	ExtensionMinutes int
	Error            string
}

type ScoreViewData struct {
	Title     string
	Parent    *models.Parent
	Children  []models.Child
	Sessions  []ScoreCandidate
	CSRFToken string
	Error     string
	Success   string
}

type ScoreCandidate struct {
	Session   models.ActivitySession
	ChildName string
}

type ParentDashboardViewData struct {
	Title     string
	Parent    *models.Parent
	Children  []ChildSummary
	CSRFToken string
}

type ChildSummary struct {
	Child       models.Child
	TotalPoints int
	Today       *models.DailyStats
	Outstanding *models.ActivitySession
}

type ChildDetailViewData struct {
	Title     string
	Parent    *models.Parent
	Child     *models.Child
	Progress  []models.DailyStats
	Sessions  []models.ActivitySession
	History   []models.ReimbursementHistory
	Points    int
	CSRFToken string
}

type ShopViewData struct {
	Title        string
	Child        *models.Child
	Items        []models.ReimbursementItem
	Points       int
	WeeklyStatus *models.WeeklyStatus
	History      []models.ReimbursementHistory
	Error        string
	Success      string
}

type AdminDashboardViewData struct {
	Title     string
	Parent    *models.Parent
	Parents   []models.Parent
	Children  []ChildSummary
	CSRFToken string
	Error     string
	Success   string
}
