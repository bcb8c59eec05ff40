package domain

import "time"

type Favorite struct {
	UserID        string       `json:"user_id"`
	ScholarshipID string       `json:"scholarship_id"`
	CreatedAt     time.Time    `json:"created_at"`
	Scholarship   *Scholarship `json:"scholarship,omitempty"`
}
