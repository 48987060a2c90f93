package detail

import (
	"context"
	"errors"
	"testing"

	"github.com/mmcdole/filmora/internal/adapter/catalog/catalogtest"
	"github.com/mmcdole/filmora/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog() *catalogtest.Catalog {
	return &catalogtest.Catalog{
		Details: map[int]*domain.MovieDetail{
			10: {
				Movie:   domain.Movie{ID: 10, Title: "Heat"},
				Genres:  []domain.Genre{{ID: 80, Name: "Crime"}},
				Runtime: 170,
			},
		},
		Cast: map[int][]domain.CastMember{
			10: {
				{ID: 1, Name: "Al Pacino", Character: "Hanna"},
				{ID: 2, Name: "Robert De Niro", Character: "McCauley"},
				{ID: 1, Name: "Al Pacino", Character: "Narrator"},
			},
		},
		Recs: map[int][]domain.Movie{
			10: {{ID: 20, Title: "Collateral"}, {ID: 21, Title: "Thief"}, {ID: 20, Title: "Collateral (dup)"}},
		},
		Persons: map[int]*domain.Person{
			1: {ID: 1, Name: "Al Pacino", Biography: "Actor."},
		},
		Translations: map[int][]domain.Translation{
			10: {
				{Language: "fr", Name: "Français", Title: "Heat (FR)"},
				{Language: "pt", Name: "Português", Title: "Fogo Contra Fogo"},
				{Language: "de", Name: "Deutsch"},
			},
		},
	}
}

func TestFetchBundle(t *testing.T) {
	c := newCatalog()
	s := NewService(c, nil)

	b, err := s.Fetch(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, "Heat", b.Detail.Title)
	assert.Equal(t, "2h 50m", b.Detail.FormattedRuntime())

	require.Len(t, b.Cast, 2)
	assert.Equal(t, "Hanna", b.Cast[0].Character, "first occurrence wins")
	require.Len(t, b.Recommendations, 2)
	assert.Equal(t, "Collateral", b.Recommendations[0].Title)

	assert.Equal(t, 1, c.Calls(catalogtest.Detail))
	assert.Equal(t, 1, c.Calls(catalogtest.Credits))
	assert.Equal(t, 1, c.Calls(catalogtest.Recommendations))
}

func TestFetchFailsWhenAnyPartFails(t *testing.T) {
	for _, endpoint := range []string{catalogtest.Detail, catalogtest.Credits, catalogtest.Recommendations} {
		t.Run(endpoint, func(t *testing.T) {
			boom := errors.New("boom")
			c := newCatalog()
			c.Fail = func(e string, _ int) error {
				if e == endpoint {
					return boom
				}
				return nil
			}

			b, err := NewService(c, nil).Fetch(context.Background(), 10)
			assert.Nil(t, b)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestFetchUnknownMovie(t *testing.T) {
	_, err := NewService(newCatalog(), nil).Fetch(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPerson(t *testing.T) {
	s := NewService(newCatalog(), nil)

	p, err := s.Person(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Actor.", p.Biography)
	assert.Equal(t, "AP", p.Initials())

	_, err = s.Person(context.Background(), 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLocalizedTitle(t *testing.T) {
	s := NewService(newCatalog(), nil)
	ctx := context.Background()

	tests := []struct {
		lang string
		want string
	}{
		{"pt-BR", "Fogo Contra Fogo"},
		{"pt_BR", "Fogo Contra Fogo"},
		{"FR", "Heat (FR)"},
		{"de", "Heat"}, // translation without a title
		{"ja", "Heat"},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			title, err := s.LocalizedTitle(ctx, 10, tt.lang)
			require.NoError(t, err)
			assert.Equal(t, tt.want, title)
		})
	}
}

func TestTranslations(t *testing.T) {
	ts, err := NewService(newCatalog(), nil).Translations(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, ts, 3)
}
