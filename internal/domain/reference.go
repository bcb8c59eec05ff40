package domain

import (
	"errors"
	"strings"
)

// Tipos de datos de referencia administrables.
const (
	ReferenceCountries    = "countries"
	ReferenceFields       = "fields"
	ReferenceDegreeLevels = "degree-levels"
)

var ReferenceKinds = []string{ReferenceCountries, ReferenceFields, ReferenceDegreeLevels}

func ValidReferenceKind(kind string) bool {
	for _, k := range ReferenceKinds {
		if k == kind {
			return true
		}
	}
	return false
}

type ReferenceItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (r ReferenceItem) Validate(kind string) error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if kind == ReferenceCountries && len(r.ID) != 2 {
		return errors.New("country id must be a 2 letter code")
	}
	return nil
}

type ReferenceData struct {
	Countries    []ReferenceItem `json:"countries"`
	Fields       []ReferenceItem `json:"fields"`
	DegreeLevels []ReferenceItem `json:"degree_levels"`
}
