package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scholarship-finder/internal/domain"
	"scholarship-finder/internal/repository"
)

// ListResult es una pagina de resultados junto con el total sin paginar.
type ListResult[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ScholarshipService expone la busqueda publica y el ABM de becas.
type ScholarshipService struct {
	logger       *zap.Logger
	scholarships repository.ScholarshipRepository
	now          func() time.Time
}

func NewScholarshipService(logger *zap.Logger, scholarships repository.ScholarshipRepository) *ScholarshipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScholarshipService{
		logger:       logger,
		scholarships: scholarships,
		now:          time.Now,
	}
}

func (s *ScholarshipService) Search(ctx context.Context, filter domain.ScholarshipFilter) (ListResult[domain.Scholarship], error) {
	filter.Page = filter.Page.Normalize()
	filter.Query = strings.TrimSpace(filter.Query)
	filter.CountryCode = strings.ToUpper(strings.TrimSpace(filter.CountryCode))
	if filter.MinAmountCents < 0 {
		return ListResult[domain.Scholarship]{}, invalidf("min_amount must not be negative")
	}

	items, total, err := s.scholarships.Search(ctx, filter)
	if err != nil {
		return ListResult[domain.Scholarship]{}, err
	}
	return ListResult[domain.Scholarship]{
		Items:  items,
		Total:  total,
		Limit:  filter.Page.Limit,
		Offset: filter.Page.Offset,
	}, nil
}

func (s *ScholarshipService) Get(ctx context.Context, id string) (domain.Scholarship, error) {
	sch, err := s.scholarships.GetByID(ctx, id)
	if err != nil {
		return domain.Scholarship{}, translate(err, "scholarship")
	}
	return sch, nil
}

// Create construye la beca aplicando el patch sobre los valores por defecto.
func (s *ScholarshipService) Create(ctx context.Context, input domain.ScholarshipPatch) (domain.Scholarship, error) {
	now := s.now().UTC()
	sch := domain.Scholarship{
		ID:                uuid.NewString(),
		Currency:          "USD",
		Active:            true,
		RequiredDocuments: []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	input.Apply(&sch)
	if err := sch.Validate(); err != nil {
		return domain.Scholarship{}, invalid(err)
	}
	if err := s.scholarships.Create(ctx, sch); err != nil {
		return domain.Scholarship{}, translate(err, "scholarship")
	}
	s.logger.Info("scholarship created", zap.String("scholarship_id", sch.ID))
	return sch, nil
}

func (s *ScholarshipService) Update(ctx context.Context, id string, patch domain.ScholarshipPatch) (domain.Scholarship, error) {
	sch, err := s.scholarships.GetByID(ctx, id)
	if err != nil {
		return domain.Scholarship{}, translate(err, "scholarship")
	}
	patch.Apply(&sch)
	if err := sch.Validate(); err != nil {
		return domain.Scholarship{}, invalid(err)
	}
	sch.UpdatedAt = s.now().UTC()
	if err := s.scholarships.Update(ctx, sch); err != nil {
		return domain.Scholarship{}, translate(err, "scholarship")
	}
	return sch, nil
}

func (s *ScholarshipService) Delete(ctx context.Context, id string) error {
	if err := s.scholarships.Delete(ctx, id); err != nil {
		return translate(err, "scholarship")
	}
	s.logger.Info("scholarship deleted", zap.String("scholarship_id", id))
	return nil
}
