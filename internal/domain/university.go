package domain

import (
	"errors"
	"strings"
	"time"
)

type University struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CountryCode string    `json:"country_code,omitempty"`
	City        string    `json:"city,omitempty"`
	Website     string    `json:"website,omitempty"`
	Ranking     *int      `json:"ranking,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (u University) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return errors.New("name is required")
	}
	if u.Ranking != nil && *u.Ranking <= 0 {
		return errors.New("ranking must be positive")
	}
	return nil
}

func (u University) SearchFields() []string {
	return []string{u.Name, u.City, u.Description}
}

type UniversityPatch struct {
	Name        *string `json:"name"`
	CountryCode *string `json:"country_code"`
	City        *string `json:"city"`
	Website     *string `json:"website"`
	Ranking     *int    `json:"ranking"`
	Description *string `json:"description"`
}

func (p UniversityPatch) Apply(u *University) {
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.CountryCode != nil {
		u.CountryCode = strings.ToUpper(strings.TrimSpace(*p.CountryCode))
	}
	if p.City != nil {
		u.City = strings.TrimSpace(*p.City)
	}
	if p.Website != nil {
		u.Website = strings.TrimSpace(*p.Website)
	}
	if p.Ranking != nil {
		r := *p.Ranking
		u.Ranking = &r
	}
	if p.Description != nil {
		u.Description = *p.Description
	}
}

type UniversityFilter struct {
	Query       string
	CountryCode string
	Page        Page
}
