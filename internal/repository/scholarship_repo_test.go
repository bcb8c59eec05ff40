package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship-finder/internal/domain"
	"scholarship-finder/internal/search"
)

var scholarshipTestColumns = []string{
	"id", "title", "provider", "description", "amount_cents", "currency", "deadline",
	"country_code", "field_id", "degree_level_id", "university_id", "url", "required_documents",
	"active", "created_at", "updated_at",
}

func TestPgScholarshipRepository_SearchNumbersPlaceholders(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPgScholarshipRepository(mock)
	after := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	deadline := time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC)
	pattern := search.LikePattern(search.Normalize("Becas  Alemania"))

	where := `WHERE active = TRUE AND search_text LIKE $1 AND country_code = $2 AND amount_cents >= $3 AND (deadline IS NULL OR deadline >= $4)`
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM scholarships `+where)).
		WithArgs(pattern, "DE", int64(100000), after).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(21))
	mock.ExpectQuery(regexp.QuoteMeta(where + ` ORDER BY deadline ASC NULLS LAST, title ASC LIMIT $5 OFFSET $6`)).
		WithArgs(pattern, "DE", int64(100000), after, 10, 20).
		WillReturnRows(pgxmock.NewRows(scholarshipTestColumns).AddRow(
			"daad", "DAAD Master", "DAAD", "", int64(1200000), "EUR", &deadline,
			"DE", "ing", "master", (*string)(nil), "", []string{"CV"},
			true, after, after,
		))

	got, total, err := repo.Search(context.Background(), domain.ScholarshipFilter{
		Query:          "Becas  Alemania",
		CountryCode:    "de",
		MinAmountCents: 100000,
		DeadlineAfter:  &after,
		Page:           domain.Page{Limit: 10, Offset: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, 21, total)
	require.Len(t, got, 1)
	assert.Equal(t, "daad", got[0].ID)
	assert.Equal(t, []string{"CV"}, got[0].RequiredDocuments)
	assert.Nil(t, got[0].UniversityID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgScholarshipRepository_SearchIncludeClosedWithoutFilters(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPgScholarshipRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM scholarships`)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM scholarships ORDER BY deadline ASC NULLS LAST, title ASC LIMIT $1 OFFSET $2`)).
		WithArgs(domain.DefaultPageLimit, 0).
		WillReturnRows(pgxmock.NewRows(scholarshipTestColumns))

	got, total, err := repo.Search(context.Background(), domain.ScholarshipFilter{IncludeClosed: true})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
