package search

import (
	"context"
	"errors"
	"testing"

	"github.com/mmcdole/filmora/internal/adapter/catalog/catalogtest"
	"github.com/mmcdole/filmora/internal/domain"
	"github.com/mmcdole/filmora/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *catalogtest.Catalog) {
	t.Helper()
	c := &catalogtest.Catalog{
		PageSize: 2,
		Lists: map[string][]domain.Movie{
			catalogtest.Search: {
				{ID: 1, Title: "Alien"},
				{ID: 2, Title: "Aliens"},
				{ID: 3, Title: "Alien 3"},
				{ID: 4, Title: "Heat"},
			},
		},
	}
	st, err := store.NewLocalStore("")
	require.NoError(t, err)
	return NewService(c, st, nil), c
}

func titles(movies []domain.Movie) []string {
	out := make([]string, len(movies))
	for i, m := range movies {
		out[i] = m.Title
	}
	return out
}

func TestSearchAndLoadMore(t *testing.T) {
	s, c := newService(t)
	ctx := context.Background()

	res, err := s.Search(ctx, "  alien ")
	require.NoError(t, err)
	assert.Equal(t, "alien", res.Query)
	assert.Equal(t, []string{"Alien", "Aliens"}, titles(res.Movies))
	assert.True(t, res.HasMore())

	res, err = s.LoadMore(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alien", "Aliens", "Alien 3"}, titles(res.Movies))
	assert.False(t, res.HasMore())

	// exhausted: no request
	_, err = s.LoadMore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Calls(catalogtest.Search))

	assert.Equal(t, []string{"alien"}, s.Recent())
}

func TestSearchResetsPaging(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	_, err := s.Search(ctx, "alien")
	require.NoError(t, err)
	_, err = s.LoadMore(ctx)
	require.NoError(t, err)

	res, err := s.Search(ctx, "heat")
	require.NoError(t, err)
	assert.Equal(t, []string{"Heat"}, titles(res.Movies))
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, []string{"heat", "alien"}, s.Recent())
}

func TestSearchIgnoresEmptyQuery(t *testing.T) {
	s, c := newService(t)

	_, err := s.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Equal(t, 0, c.Calls(catalogtest.Search))
	assert.Empty(t, s.Recent())
}

func TestLoadMoreFailureKeepsPage(t *testing.T) {
	s, c := newService(t)
	ctx := context.Background()

	_, err := s.Search(ctx, "alien")
	require.NoError(t, err)

	boom := errors.New("offline")
	c.Fail = func(_ string, page int) error {
		if page == 2 {
			return boom
		}
		return nil
	}
	res, err := s.LoadMore(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, res.Page)
	assert.Len(t, res.Movies, 2)

	c.Fail = nil
	res, err = s.LoadMore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Page)
}

func TestSuggestions(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	for _, q := range []string{"alien", "heat", "aliens"} {
		_, err := s.Search(ctx, q)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"aliens", "heat", "alien"}, s.Suggestions(""))
	assert.Equal(t, []string{"alien", "aliens"}, s.Suggestions("ALI"))
	assert.Empty(t, s.Suggestions("xyz"))

	require.NoError(t, s.Forget("heat"))
	assert.Equal(t, []string{"aliens", "alien"}, s.Recent())

	require.NoError(t, s.ClearRecent())
	assert.Empty(t, s.Recent())
}
