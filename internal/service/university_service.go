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

type UniversityService struct {
	logger       *zap.Logger
	universities repository.UniversityRepository
	now          func() time.Time
}

func NewUniversityService(logger *zap.Logger, universities repository.UniversityRepository) *UniversityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UniversityService{
		logger:       logger,
		universities: universities,
		now:          time.Now,
	}
}

func (s *UniversityService) Search(ctx context.Context, filter domain.UniversityFilter) (ListResult[domain.University], error) {
	filter.Page = filter.Page.Normalize()
	filter.Query = strings.TrimSpace(filter.Query)
	filter.CountryCode = strings.ToUpper(strings.TrimSpace(filter.CountryCode))

	items, total, err := s.universities.Search(ctx, filter)
	if err != nil {
		return ListResult[domain.University]{}, err
	}
	return ListResult[domain.University]{
		Items:  items,
		Total:  total,
		Limit:  filter.Page.Limit,
		Offset: filter.Page.Offset,
	}, nil
}

func (s *UniversityService) Get(ctx context.Context, id string) (domain.University, error) {
	u, err := s.universities.GetByID(ctx, id)
	if err != nil {
		return domain.University{}, translate(err, "university")
	}
	return u, nil
}

func (s *UniversityService) Create(ctx context.Context, input domain.UniversityPatch) (domain.University, error) {
	now := s.now().UTC()
	u := domain.University{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	input.Apply(&u)
	if err := u.Validate(); err != nil {
		return domain.University{}, invalid(err)
	}
	if err := s.universities.Create(ctx, u); err != nil {
		return domain.University{}, translate(err, "university")
	}
	s.logger.Info("university created", zap.String("university_id", u.ID))
	return u, nil
}

func (s *UniversityService) Update(ctx context.Context, id string, patch domain.UniversityPatch) (domain.University, error) {
	u, err := s.universities.GetByID(ctx, id)
	if err != nil {
		return domain.University{}, translate(err, "university")
	}
	patch.Apply(&u)
	if err := u.Validate(); err != nil {
		return domain.University{}, invalid(err)
	}
	u.UpdatedAt = s.now().UTC()
	if err := s.universities.Update(ctx, u); err != nil {
		return domain.University{}, translate(err, "university")
	}
	return u, nil
}

// Delete quita la universidad; las becas vinculadas quedan sin universidad.
func (s *UniversityService) Delete(ctx context.Context, id string) error {
	if err := s.universities.Delete(ctx, id); err != nil {
		return translate(err, "university")
	}
	s.logger.Info("university deleted", zap.String("university_id", id))
	return nil
}
