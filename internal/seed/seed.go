// Package seed carga datos de referencia y de demo desde un archivo YAML y los
// aplica de forma idempotente: correr el seed dos veces deja el mismo estado.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"scholarship-finder/internal/domain"
	"scholarship-finder/internal/repository"
)

type File struct {
	Countries    []domain.ReferenceItem `yaml:"countries"`
	Fields       []domain.ReferenceItem `yaml:"fields"`
	DegreeLevels []domain.ReferenceItem `yaml:"degree_levels"`
	Universities []University           `yaml:"universities"`
	Scholarships []Scholarship          `yaml:"scholarships"`
	Admin        *Admin                 `yaml:"admin"`
}

type University struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	CountryCode string `yaml:"country"`
	City        string `yaml:"city"`
	Website     string `yaml:"website"`
	Ranking     *int   `yaml:"ranking"`
	Description string `yaml:"description"`
}

type Scholarship struct {
	ID                string   `yaml:"id"`
	Title             string   `yaml:"title"`
	Provider          string   `yaml:"provider"`
	Description       string   `yaml:"description"`
	AmountCents       int64    `yaml:"amount_cents"`
	Currency          string   `yaml:"currency"`
	Deadline          string   `yaml:"deadline"`
	CountryCode       string   `yaml:"country"`
	FieldID           string   `yaml:"field"`
	DegreeLevelID     string   `yaml:"degree"`
	UniversityID      string   `yaml:"university"`
	URL               string   `yaml:"url"`
	RequiredDocuments []string `yaml:"required_documents"`
	Active            *bool    `yaml:"active"`
}

// Admin es la cuenta que se crea (o se promueve) con rol admin.
type Admin struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Repos agrupa los repositorios que toca el seed.
type Repos struct {
	Users        repository.UserRepository
	Reference    repository.ReferenceRepository
	Universities repository.UniversityRepository
	Scholarships repository.ScholarshipRepository
}

// Stats cuenta lo creado y lo actualizado en una corrida.
type Stats struct {
	Created int
	Updated int
}

func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*File, error) {
	var f File
	if err := yaml.UnmarshalWithOptions(raw, &f, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// Apply inserta cada registro y, si ya existe, lo actualiza.
func Apply(ctx context.Context, logger *zap.Logger, repos Repos, f *File) (Stats, error) {
	var st Stats
	now := time.Now().UTC()

	kinds := []struct {
		kind  string
		items []domain.ReferenceItem
	}{
		{domain.ReferenceCountries, f.Countries},
		{domain.ReferenceFields, f.Fields},
		{domain.ReferenceDegreeLevels, f.DegreeLevels},
	}
	for _, k := range kinds {
		for _, item := range k.items {
			if k.kind == domain.ReferenceCountries {
				item.ID = strings.ToUpper(strings.TrimSpace(item.ID))
			}
			if err := item.Validate(k.kind); err != nil {
				return st, fmt.Errorf("%s %q: %w", k.kind, item.ID, err)
			}
			err := repos.Reference.Create(ctx, k.kind, item)
			if errors.Is(err, repository.ErrDuplicate) {
				err = repos.Reference.Update(ctx, k.kind, item)
				st.Updated++
			} else if err == nil {
				st.Created++
			}
			if err != nil {
				return st, fmt.Errorf("seed %s %q: %w", k.kind, item.ID, err)
			}
		}
	}

	for _, u := range f.Universities {
		uni := domain.University{
			ID:          u.ID,
			Name:        u.Name,
			CountryCode: strings.ToUpper(u.CountryCode),
			City:        u.City,
			Website:     u.Website,
			Ranking:     u.Ranking,
			Description: u.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := uni.Validate(); err != nil {
			return st, fmt.Errorf("university %q: %w", u.ID, err)
		}
		created, err := upsert(ctx, uni, repos.Universities.Create, repos.Universities.Update)
		if err != nil {
			return st, fmt.Errorf("seed university %q: %w", u.ID, err)
		}
		st.count(created)
	}

	for _, s := range f.Scholarships {
		sch, err := s.toDomain(now)
		if err != nil {
			return st, fmt.Errorf("scholarship %q: %w", s.ID, err)
		}
		created, err := upsert(ctx, sch, repos.Scholarships.Create, repos.Scholarships.Update)
		if err != nil {
			return st, fmt.Errorf("seed scholarship %q: %w", s.ID, err)
		}
		st.count(created)
	}

	if f.Admin != nil {
		created, err := seedAdmin(ctx, repos.Users, *f.Admin, now)
		if err != nil {
			return st, fmt.Errorf("seed admin: %w", err)
		}
		st.count(created)
	}

	logger.Info("seed applied", zap.Int("created", st.Created), zap.Int("updated", st.Updated))
	return st, nil
}

func (st *Stats) count(created bool) {
	if created {
		st.Created++
	} else {
		st.Updated++
	}
}

func upsert[T any](ctx context.Context, v T, create, update func(context.Context, T) error) (bool, error) {
	err := create(ctx, v)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return false, err
	}
	return false, update(ctx, v)
}

func (s Scholarship) toDomain(now time.Time) (domain.Scholarship, error) {
	sch := domain.Scholarship{
		ID:                s.ID,
		Title:             s.Title,
		Provider:          s.Provider,
		Description:       s.Description,
		AmountCents:       s.AmountCents,
		Currency:          strings.ToUpper(s.Currency),
		CountryCode:       strings.ToUpper(s.CountryCode),
		FieldID:           s.FieldID,
		DegreeLevelID:     s.DegreeLevelID,
		URL:               s.URL,
		RequiredDocuments: s.RequiredDocuments,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if sch.Currency == "" {
		sch.Currency = "USD"
	}
	if sch.RequiredDocuments == nil {
		sch.RequiredDocuments = []string{}
	}
	if s.Active != nil {
		sch.Active = *s.Active
	}
	if s.UniversityID != "" {
		id := s.UniversityID
		sch.UniversityID = &id
	}
	if s.Deadline != "" {
		d, err := time.Parse(time.DateOnly, s.Deadline)
		if err != nil {
			return domain.Scholarship{}, fmt.Errorf("deadline must be YYYY-MM-DD: %w", err)
		}
		sch.Deadline = &d
	}
	if err := sch.Validate(); err != nil {
		return domain.Scholarship{}, err
	}
	return sch, nil
}

func seedAdmin(ctx context.Context, users repository.UserRepository, a Admin, now time.Time) (bool, error) {
	email := domain.NormalizeEmail(a.Email)
	if !domain.ValidEmail(email) || a.Password == "" {
		return false, errors.New("admin needs a valid email and a password")
	}

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		// Se respeta la contrasena existente; solo se asegura el rol.
		if existing.Role == domain.RoleAdmin {
			return false, nil
		}
		existing.Role = domain.RoleAdmin
		existing.UpdatedAt = now
		return false, users.Update(ctx, existing)
	case !errors.Is(err, pgx.ErrNoRows):
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	name := strings.TrimSpace(a.Name)
	if name == "" {
		name = "Admin"
	}
	return true, users.Create(ctx, domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
