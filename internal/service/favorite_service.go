package service

import (
	"context"
	"strings"
	"time"

	"scholarship-finder/internal/domain"
	"scholarship-finder/internal/repository"
)

type FavoriteService struct {
	favorites    repository.FavoriteRepository
	scholarships repository.ScholarshipRepository
	now          func() time.Time
}

func NewFavoriteService(favorites repository.FavoriteRepository, scholarships repository.ScholarshipRepository) *FavoriteService {
	return &FavoriteService{
		favorites:    favorites,
		scholarships: scholarships,
		now:          time.Now,
	}
}

func (s *FavoriteService) List(ctx context.Context, identity domain.Identity) ([]domain.Favorite, error) {
	if !identity.Authenticated() {
		return nil, ErrUnauthenticated
	}
	return s.favorites.ListByUser(ctx, identity.UserID)
}

func (s *FavoriteService) Add(ctx context.Context, identity domain.Identity, scholarshipID string) (domain.Favorite, error) {
	if !identity.Authenticated() {
		return domain.Favorite{}, ErrUnauthenticated
	}
	scholarshipID = strings.TrimSpace(scholarshipID)
	if scholarshipID == "" {
		return domain.Favorite{}, invalidf("scholarship_id is required")
	}
	sch, err := s.scholarships.GetByID(ctx, scholarshipID)
	if err != nil {
		return domain.Favorite{}, translate(err, "scholarship")
	}
	fav := domain.Favorite{
		UserID:        identity.UserID,
		ScholarshipID: sch.ID,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.favorites.Create(ctx, fav); err != nil {
		if isDuplicate(err) {
			return domain.Favorite{}, conflict("scholarship already in favorites")
		}
		return domain.Favorite{}, translate(err, "favorite")
	}
	fav.Scholarship = &sch
	return fav, nil
}

func (s *FavoriteService) Remove(ctx context.Context, identity domain.Identity, scholarshipID string) error {
	if !identity.Authenticated() {
		return ErrUnauthenticated
	}
	return translate(s.favorites.Delete(ctx, identity.UserID, scholarshipID), "favorite")
}
