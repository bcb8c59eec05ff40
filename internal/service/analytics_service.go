package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"scholarship-finder/internal/domain"
	"scholarship-finder/internal/repository"
)

const topFavoritedLimit = 5

// AnalyticsService arma el resumen del back-office con consultas independientes
// en paralelo.
type AnalyticsService struct {
	analytics repository.AnalyticsRepository
	now       func() time.Time
}

func NewAnalyticsService(analytics repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{analytics: analytics, now: time.Now}
}

func (s *AnalyticsService) Summary(ctx context.Context) (domain.AnalyticsSummary, error) {
	now := s.now().UTC()
	summary := domain.AnalyticsSummary{GeneratedAt: now}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary.Users, err = s.analytics.CountUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.NewUsersLast30Days, err = s.analytics.CountUsersSince(gctx, now.AddDate(0, 0, -30))
		return err
	})
	g.Go(func() (err error) {
		summary.Scholarships, err = s.analytics.CountScholarships(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.Universities, err = s.analytics.CountUniversities(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.ApplicationsByStatus, err = s.analytics.ApplicationsByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.TopFavorited, err = s.analytics.TopFavorited(gctx, topFavoritedLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.AnalyticsSummary{}, err
	}

	if summary.ApplicationsByStatus == nil {
		summary.ApplicationsByStatus = make(map[string]int)
	}
	for _, status := range domain.ApplicationStatuses {
		if _, ok := summary.ApplicationsByStatus[status]; !ok {
			summary.ApplicationsByStatus[status] = 0
		}
	}
	return summary, nil
}
