package domain

import (
	"errors"
	"strings"
	"time"
)

type Scholarship struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Provider          string     `json:"provider,omitempty"`
	Description       string     `json:"description,omitempty"`
	AmountCents       int64      `json:"amount_cents"`
	Currency          string     `json:"currency"`
	Deadline          *time.Time `json:"deadline,omitempty"`
	CountryCode       string     `json:"country_code,omitempty"`
	FieldID           string     `json:"field_id,omitempty"`
	DegreeLevelID     string     `json:"degree_level_id,omitempty"`
	UniversityID      *string    `json:"university_id,omitempty"`
	URL               string     `json:"url,omitempty"`
	RequiredDocuments []string   `json:"required_documents"`
	Active            bool       `json:"active"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (s Scholarship) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return errors.New("title is required")
	}
	if s.AmountCents < 0 {
		return errors.New("amount must not be negative")
	}
	if len(s.Currency) != 3 {
		return errors.New("currency must be a 3 letter code")
	}
	for _, doc := range s.RequiredDocuments {
		if strings.TrimSpace(doc) == "" {
			return errors.New("required documents must have a name")
		}
	}
	return nil
}

// SearchFields devuelve el texto libre que alimenta la busqueda.
func (s Scholarship) SearchFields() []string {
	return []string{s.Title, s.Provider, s.Description}
}

// ScholarshipPatch: nil conserva, no-nil reemplaza. UniversityID vacio la desvincula.
type ScholarshipPatch struct {
	Title             *string    `json:"title"`
	Provider          *string    `json:"provider"`
	Description       *string    `json:"description"`
	AmountCents       *int64     `json:"amount_cents"`
	Currency          *string    `json:"currency"`
	Deadline          *time.Time `json:"deadline"`
	CountryCode       *string    `json:"country_code"`
	FieldID           *string    `json:"field_id"`
	DegreeLevelID     *string    `json:"degree_level_id"`
	UniversityID      *string    `json:"university_id"`
	URL               *string    `json:"url"`
	RequiredDocuments *[]string  `json:"required_documents"`
	Active            *bool      `json:"active"`
}

func (p ScholarshipPatch) Apply(s *Scholarship) {
	if p.Title != nil {
		s.Title = strings.TrimSpace(*p.Title)
	}
	if p.Provider != nil {
		s.Provider = strings.TrimSpace(*p.Provider)
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.AmountCents != nil {
		s.AmountCents = *p.AmountCents
	}
	if p.Currency != nil {
		s.Currency = strings.ToUpper(strings.TrimSpace(*p.Currency))
	}
	if p.Deadline != nil {
		d := p.Deadline.UTC()
		s.Deadline = &d
	}
	if p.CountryCode != nil {
		s.CountryCode = strings.ToUpper(strings.TrimSpace(*p.CountryCode))
	}
	if p.FieldID != nil {
		s.FieldID = strings.TrimSpace(*p.FieldID)
	}
	if p.DegreeLevelID != nil {
		s.DegreeLevelID = strings.TrimSpace(*p.DegreeLevelID)
	}
	if p.UniversityID != nil {
		id := strings.TrimSpace(*p.UniversityID)
		if id == "" {
			s.UniversityID = nil
		} else {
			s.UniversityID = &id
		}
	}
	if p.URL != nil {
		s.URL = strings.TrimSpace(*p.URL)
	}
	if p.RequiredDocuments != nil {
		s.RequiredDocuments = append([]string(nil), (*p.RequiredDocuments)...)
	}
	if p.Active != nil {
		s.Active = *p.Active
	}
}

type ScholarshipFilter struct {
	Query          string
	CountryCode    string
	FieldID        string
	DegreeLevelID  string
	UniversityID   string
	MinAmountCents int64
	DeadlineAfter  *time.Time
	IncludeClosed  bool
	Page           Page
}
