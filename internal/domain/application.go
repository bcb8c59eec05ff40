package domain

import (
	"errors"
	"strings"
	"time"
)

const (
	ApplicationDraft      = "draft"
	ApplicationInProgress = "in_progress"
	ApplicationSubmitted  = "submitted"
	ApplicationAccepted   = "accepted"
	ApplicationRejected   = "rejected"
)

var ApplicationStatuses = []string{
	ApplicationDraft,
	ApplicationInProgress,
	ApplicationSubmitted,
	ApplicationAccepted,
	ApplicationRejected,
}

func ValidApplicationStatus(status string) bool {
	for _, s := range ApplicationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Application struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	ScholarshipID string     `json:"scholarship_id"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes,omitempty"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Solo en lecturas con join.
	ScholarshipTitle string     `json:"scholarship_title,omitempty"`
	Deadline         *time.Time `json:"deadline,omitempty"`
}

func (a Application) Validate() error {
	if a.ScholarshipID == "" {
		return errors.New("scholarship_id is required")
	}
	if !ValidApplicationStatus(a.Status) {
		return errors.New("status is invalid")
	}
	return nil
}

type ApplicationPatch struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

func (p ApplicationPatch) IsEmpty() bool {
	return p.Status == nil && p.Notes == nil
}

// Apply fusiona el patch. Pasar a submitted fija SubmittedAt una sola vez.
func (p ApplicationPatch) Apply(a *Application, now time.Time) {
	if p.Status != nil {
		a.Status = strings.TrimSpace(*p.Status)
		if a.Status == ApplicationSubmitted && a.SubmittedAt == nil {
			ts := now.UTC()
			a.SubmittedAt = &ts
		}
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
}

const (
	DocumentPending  = "pending"
	DocumentUploaded = "uploaded"
	DocumentApproved = "approved"
)

func ValidDocumentStatus(status string) bool {
	return status == DocumentPending || status == DocumentUploaded || status == DocumentApproved
}

type Document struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	Name          string    `json:"name"`
	Status        string    `json:"status"`
	URL           string    `json:"url,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (d Document) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("name is required")
	}
	if !ValidDocumentStatus(d.Status) {
		return errors.New("status is invalid")
	}
	return nil
}

type DocumentPatch struct {
	Name   *string `json:"name"`
	Status *string `json:"status"`
	URL    *string `json:"url"`
	Notes  *string `json:"notes"`
}

func (p DocumentPatch) Apply(d *Document) {
	if p.Name != nil {
		d.Name = strings.TrimSpace(*p.Name)
	}
	if p.Status != nil {
		d.Status = strings.TrimSpace(*p.Status)
	}
	if p.URL != nil {
		d.URL = strings.TrimSpace(*p.URL)
	}
	if p.Notes != nil {
		d.Notes = *p.Notes
	}
}

type Task struct {
	ID            string     `json:"id"`
	ApplicationID string     `json:"application_id"`
	Title         string     `json:"title"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	Completed     bool       `json:"completed"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("title is required")
	}
	return nil
}

// TaskPatch es un update parcial. Un due_date nulo u omitido no cambia la
// fecha; para borrarla se manda clear_due_date.
type TaskPatch struct {
	Title        *string    `json:"title"`
	DueDate      *time.Time `json:"due_date"`
	ClearDueDate bool       `json:"clear_due_date"`
	Completed    *bool      `json:"completed"`
}

func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		d := p.DueDate.UTC()
		t.DueDate = &d
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}
