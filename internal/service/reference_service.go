package service

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"scholarship-finder/internal/domain"
	"scholarship-finder/internal/repository"
)

// ReferenceService administra paises, areas de estudio y niveles.
type ReferenceService struct {
	reference repository.ReferenceRepository
}

func NewReferenceService(reference repository.ReferenceRepository) *ReferenceService {
	return &ReferenceService{reference: reference}
}

// All carga los tres catalogos en paralelo.
func (s *ReferenceService) All(ctx context.Context) (domain.ReferenceData, error) {
	var data domain.ReferenceData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.reference.List(gctx, domain.ReferenceCountries)
		data.Countries = items
		return err
	})
	g.Go(func() error {
		items, err := s.reference.List(gctx, domain.ReferenceFields)
		data.Fields = items
		return err
	})
	g.Go(func() error {
		items, err := s.reference.List(gctx, domain.ReferenceDegreeLevels)
		data.DegreeLevels = items
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.ReferenceData{}, err
	}
	return data, nil
}

func (s *ReferenceService) List(ctx context.Context, kind string) ([]domain.ReferenceItem, error) {
	if !domain.ValidReferenceKind(kind) {
		return nil, notFound("reference kind not found")
	}
	items, err := s.reference.List(ctx, kind)
	if err != nil {
		return nil, translate(err, kind)
	}
	return items, nil
}

func (s *ReferenceService) Create(ctx context.Context, kind string, item domain.ReferenceItem) (domain.ReferenceItem, error) {
	if !domain.ValidReferenceKind(kind) {
		return domain.ReferenceItem{}, notFound("reference kind not found")
	}
	item = normalizeReferenceItem(kind, item)
	if err := item.Validate(kind); err != nil {
		return domain.ReferenceItem{}, invalid(err)
	}
	if err := s.reference.Create(ctx, kind, item); err != nil {
		return domain.ReferenceItem{}, translate(err, "reference item")
	}
	return item, nil
}

// Update renombra un item; el id es estable.
func (s *ReferenceService) Update(ctx context.Context, kind, id, name string) (domain.ReferenceItem, error) {
	if !domain.ValidReferenceKind(kind) {
		return domain.ReferenceItem{}, notFound("reference kind not found")
	}
	item := normalizeReferenceItem(kind, domain.ReferenceItem{ID: id, Name: name})
	if err := item.Validate(kind); err != nil {
		return domain.ReferenceItem{}, invalid(err)
	}
	if err := s.reference.Update(ctx, kind, item); err != nil {
		return domain.ReferenceItem{}, translate(err, "reference item")
	}
	return item, nil
}

func (s *ReferenceService) Delete(ctx context.Context, kind, id string) error {
	if !domain.ValidReferenceKind(kind) {
		return notFound("reference kind not found")
	}
	if kind == domain.ReferenceCountries {
		id = strings.ToUpper(strings.TrimSpace(id))
	}
	return translate(s.reference.Delete(ctx, kind, id), "reference item")
}

func normalizeReferenceItem(kind string, item domain.ReferenceItem) domain.ReferenceItem {
	item.ID = strings.TrimSpace(item.ID)
	item.Name = strings.TrimSpace(item.Name)
	if kind == domain.ReferenceCountries {
		item.ID = strings.ToUpper(item.ID)
	} else {
		item.ID = strings.ToLower(item.ID)
	}
	return item
}
