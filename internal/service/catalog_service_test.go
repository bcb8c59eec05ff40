package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scholarship-finder/internal/domain"
	"scholarship-finder/internal/repository/memory"
)

func strPtr(s string) *string { return &s }

func TestScholarshipServiceCreateDefaultsAndSearch(t *testing.T) {
	store := memory.NewStore()
	svc := NewScholarshipService(zap.NewNop(), store.Scholarships())
	ctx := context.Background()

	deadline := time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC)
	amount := int64(500000)
	created, err := svc.Create(ctx, domain.ScholarshipPatch{
		Title:       strPtr("Becas Chevening"),
		Description: strPtr("Estudios de posgrado en el Reino Unido"),
		CountryCode: strPtr("gb"),
		AmountCents: &amount,
		Deadline:    &deadline,
	})
	require.NoError(t, err)
	assert.Equal(t, "USD", created.Currency)
	assert.True(t, created.Active)
	assert.Equal(t, "GB", created.CountryCode)

	_, err = svc.Create(ctx, domain.ScholarshipPatch{Title: strPtr("Fulbright"), CountryCode: strPtr("US")})
	require.NoError(t, err)

	res, err := svc.Search(ctx, domain.ScholarshipFilter{Query: "  POSGRADO "})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, created.ID, res.Items[0].ID)
	assert.Equal(t, domain.DefaultPageLimit, res.Limit)

	res, err = svc.Search(ctx, domain.ScholarshipFilter{CountryCode: "us"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)

	res, err = svc.Search(ctx, domain.ScholarshipFilter{Page: domain.Page{Limit: 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, created.ID, res.Items[0].ID, "dated scholarships sort first")

	_, err = svc.Search(ctx, domain.ScholarshipFilter{MinAmountCents: -1})
	require.ErrorIs(t, err, ErrValidation)
}

func TestScholarshipServiceValidationAndNotFound(t *testing.T) {
	store := memory.NewStore()
	svc := NewScholarshipService(zap.NewNop(), store.Scholarships())
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.ScholarshipPatch{})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Update(ctx, "missing", domain.ScholarshipPatch{Title: strPtr("x")})
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, "missing"), ErrNotFound)
}

func TestScholarshipServiceUpdateAndDelete(t *testing.T) {
	store := memory.NewStore()
	svc := NewScholarshipService(zap.NewNop(), store.Scholarships())
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.ScholarshipPatch{
		Title:        strPtr("Erasmus"),
		Provider:     strPtr("EU"),
		UniversityID: strPtr("u1"),
	})
	require.NoError(t, err)

	closed := false
	updated, err := svc.Update(ctx, created.ID, domain.ScholarshipPatch{Active: &closed, UniversityID: strPtr("")})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Nil(t, updated.UniversityID)
	assert.Equal(t, "EU", updated.Provider)

	res, err := svc.Search(ctx, domain.ScholarshipFilter{})
	require.NoError(t, err)
	assert.Zero(t, res.Total, "closed scholarships are hidden by default")

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUniversityServiceCRUD(t *testing.T) {
	store := memory.NewStore()
	svc := NewUniversityService(zap.NewNop(), store.Universities())
	ctx := context.Background()

	rank := 3
	u, err := svc.Create(ctx, domain.UniversityPatch{Name: strPtr("Universidad de São Paulo"), CountryCode: strPtr("br"), Ranking: &rank})
	require.NoError(t, err)
	assert.Equal(t, "BR", u.CountryCode)

	res, err := svc.Search(ctx, domain.UniversityFilter{Query: "sao paulo"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)

	bad := 0
	_, err = svc.Update(ctx, u.ID, domain.UniversityPatch{Ranking: &bad})
	require.ErrorIs(t, err, ErrValidation)

	u, err = svc.Update(ctx, u.ID, domain.UniversityPatch{City: strPtr("São Paulo")})
	require.NoError(t, err)
	assert.Equal(t, "São Paulo", u.City)

	require.NoError(t, svc.Delete(ctx, u.ID))
	require.ErrorIs(t, svc.Delete(ctx, u.ID), ErrNotFound)
}

func TestReferenceServiceCRUD(t *testing.T) {
	store := memory.NewStore()
	svc := NewReferenceService(store.Reference())
	ctx := context.Background()

	item, err := svc.Create(ctx, domain.ReferenceCountries, domain.ReferenceItem{ID: "ar", Name: "Argentina"})
	require.NoError(t, err)
	assert.Equal(t, "AR", item.ID)

	_, err = svc.Create(ctx, domain.ReferenceCountries, domain.ReferenceItem{ID: "AR", Name: "Otra"})
	require.ErrorIs(t, err, ErrConflict)
	_, err = svc.Create(ctx, domain.ReferenceCountries, domain.ReferenceItem{ID: "ARG", Name: "Argentina"})
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, "planets", domain.ReferenceItem{ID: "x", Name: "y"})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(ctx, domain.ReferenceFields, domain.ReferenceItem{ID: "CS", Name: "Computer Science"})
	require.NoError(t, err)

	data, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, data.Countries, 1)
	require.Len(t, data.Fields, 1)
	assert.Equal(t, "cs", data.Fields[0].ID)
	assert.Empty(t, data.DegreeLevels)

	renamed, err := svc.Update(ctx, domain.ReferenceCountries, "ar", "República Argentina")
	require.NoError(t, err)
	assert.Equal(t, "AR", renamed.ID)
	_, err = svc.Update(ctx, domain.ReferenceCountries, "BR", "Brasil")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, domain.ReferenceCountries, "ar"))
	require.ErrorIs(t, svc.Delete(ctx, domain.ReferenceCountries, "ar"), ErrNotFound)
}

func TestFavoriteService(t *testing.T) {
	store := memory.NewStore()
	seedScholarship(t, store, "s1")
	svc := NewFavoriteService(store.Favorites(), store.Scholarships())
	ctx := context.Background()

	fav, err := svc.Add(ctx, alice, "s1")
	require.NoError(t, err)
	require.NotNil(t, fav.Scholarship)

	_, err = svc.Add(ctx, alice, "s1")
	require.ErrorIs(t, err, ErrConflict)
	_, err = svc.Add(ctx, alice, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Add(ctx, domain.Identity{}, "s1")
	require.ErrorIs(t, err, ErrUnauthenticated)

	list, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Scholarship s1", list[0].Scholarship.Title)

	others, err := svc.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, others)

	require.ErrorIs(t, svc.Remove(ctx, bob, "s1"), ErrNotFound)
	require.NoError(t, svc.Remove(ctx, alice, "s1"))
	require.ErrorIs(t, svc.Remove(ctx, alice, "s1"), ErrNotFound)
}

func TestAnalyticsServiceSummary(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, created := range []time.Time{now.AddDate(0, 0, -5), now.AddDate(0, -3, 0)} {
		require.NoError(t, store.Users().Create(ctx, domain.User{
			ID:        string(rune('a' + i)),
			Email:     string(rune('a'+i)) + "@example.com",
			CreatedAt: created,
		}))
	}
	seedScholarship(t, store, "s1")
	seedScholarship(t, store, "s2")
	favs := NewFavoriteService(store.Favorites(), store.Scholarships())
	_, err := favs.Add(ctx, alice, "s2")
	require.NoError(t, err)
	_, err = favs.Add(ctx, bob, "s2")
	require.NoError(t, err)
	_, err = favs.Add(ctx, alice, "s1")
	require.NoError(t, err)
	_, err = newApplicationService(store).Create(ctx, alice, ApplicationInput{ScholarshipID: "s1"})
	require.NoError(t, err)

	svc := NewAnalyticsService(store.Analytics())
	svc.now = func() time.Time { return now }
	summary, err := svc.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Users)
	assert.Equal(t, 1, summary.NewUsersLast30Days)
	assert.Equal(t, 2, summary.Scholarships)
	assert.Equal(t, 1, summary.ApplicationsByStatus[domain.ApplicationDraft])
	assert.Contains(t, summary.ApplicationsByStatus, domain.ApplicationAccepted)
	require.Len(t, summary.TopFavorited, 2)
	assert.Equal(t, "s2", summary.TopFavorited[0].ScholarshipID)
	assert.Equal(t, 2, summary.TopFavorited[0].Count)
}

func TestSessionJanitorSweep(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Users().Create(ctx, domain.User{ID: "u", Name: "U", Email: "u@example.com", Role: domain.RoleUser}))
	require.NoError(t, store.Sessions().Create(ctx, domain.Session{Token: "old", UserID: "u", ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, store.Sessions().Create(ctx, domain.Session{Token: "live", UserID: "u", ExpiresAt: now.Add(time.Hour)}))

	j := NewSessionJanitor(zap.NewNop(), store.Sessions(), time.Minute)
	j.now = func() time.Time { return now }
	n, err := j.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, ok := store.Session("live")
	assert.True(t, ok)
}
