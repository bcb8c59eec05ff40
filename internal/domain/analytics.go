package domain

import "time"

type ScholarshipCount struct {
	ScholarshipID string `json:"scholarship_id"`
	Title         string `json:"title"`
	Count         int    `json:"count"`
}

// AnalyticsSummary agrega los contadores del back-office.
type AnalyticsSummary struct {
	Users                int                `json:"users"`
	NewUsersLast30Days   int                `json:"new_users_last_30_days"`
	Scholarships         int                `json:"scholarships"`
	Universities         int                `json:"universities"`
	ApplicationsByStatus map[string]int     `json:"applications_by_status"`
	TopFavorited         []ScholarshipCount `json:"top_favorited"`
	GeneratedAt          time.Time          `json:"generated_at"`
}
