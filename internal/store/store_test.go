package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/mmcdole/filmora/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stores returns a memory-only store and a bolt-backed one so every test
// covers both modes.
func stores(t *testing.T) map[string]*LocalStore {
	t.Helper()

	mem, err := NewLocalStore("")
	require.NoError(t, err)

	disk, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { disk.Close() })

	return map[string]*LocalStore{"memory": mem, "bolt": disk}
}

func fixedClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		next = next.Add(time.Second)
		return next
	}
}

func TestFavoritesRoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s.now = fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

			require.NoError(t, s.AddFavorite(domain.Movie{ID: 7, Title: "Seven", PosterPath: "/7.jpg"}))
			require.NoError(t, s.AddFavorite(domain.Movie{ID: 3, Title: "Three"}))

			assert.True(t, s.IsFavorite(7))
			assert.True(t, s.IsFavorite(3))
			assert.False(t, s.IsFavorite(99))
			assert.Equal(t, 2, s.FavoriteCount())

			favs, err := s.Favorites()
			require.NoError(t, err)
			require.Len(t, favs, 2)
			assert.Equal(t, 7, favs[0].ID, "insertion order, not ID order")
			assert.Equal(t, 3, favs[1].ID)
			assert.Equal(t, "/7.jpg", favs[0].PosterPath)

			require.NoError(t, s.RemoveFavorite(7))
			assert.False(t, s.IsFavorite(7))
			assert.Equal(t, 1, s.FavoriteCount())

			// removing twice is fine
			require.NoError(t, s.RemoveFavorite(7))
		})
	}
}

func TestAddFavoriteTwiceKeepsSingleRecord(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s.now = fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

			require.NoError(t, s.AddFavorite(domain.Movie{ID: 1, Title: "Old"}))
			first, err := s.Favorites()
			require.NoError(t, err)

			require.NoError(t, s.AddFavorite(domain.Movie{ID: 1, Title: "New"}))
			favs, err := s.Favorites()
			require.NoError(t, err)

			require.Len(t, favs, 1)
			assert.Equal(t, "New", favs[0].Title)
			assert.True(t, first[0].AddedAt.Equal(favs[0].AddedAt))
		})
	}
}

func TestUpdateFavorite(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.AddFavorite(domain.Movie{ID: 5, Title: "Stale", PosterPath: "/old.jpg"}))

			require.NoError(t, s.UpdateFavorite(5, "Fresh", ""))
			favs, err := s.Favorites()
			require.NoError(t, err)
			assert.Equal(t, "Fresh", favs[0].Title)
			assert.Equal(t, "/old.jpg", favs[0].PosterPath, "empty poster keeps the stored one")

			require.NoError(t, s.UpdateFavorite(5, "Fresh", "/new.jpg"))
			favs, err = s.Favorites()
			require.NoError(t, err)
			assert.Equal(t, "/new.jpg", favs[0].PosterPath)

			err = s.UpdateFavorite(404, "Nope", "")
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestFavoritesSurviveReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewLocalStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.AddFavorite(domain.Movie{ID: 42, Title: "Answer"}))
	require.NoError(t, s.AddRecentSearch("dune"))
	require.NoError(t, s.Close())

	s, err = NewLocalStore(dir)
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, s.IsFavorite(42))
	assert.Equal(t, []string{"dune"}, s.RecentSearches())
}

func TestRecentSearches(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, s.RecentSearches())

			require.NoError(t, s.AddRecentSearch("  alien "))
			require.NoError(t, s.AddRecentSearch("   "))
			require.NoError(t, s.AddRecentSearch("heat"))
			require.NoError(t, s.AddRecentSearch("alien"))

			assert.Equal(t, []string{"alien", "heat"}, s.RecentSearches())

			require.NoError(t, s.RemoveRecentSearch("heat"))
			assert.Equal(t, []string{"alien"}, s.RecentSearches())

			require.NoError(t, s.ClearRecentSearches())
			assert.Empty(t, s.RecentSearches())
		})
	}
}

func TestRecentSearchesCapped(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < MaxRecentSearches+5; i++ {
				require.NoError(t, s.AddRecentSearch(fmt.Sprintf("q%d", i)))
			}

			recent := s.RecentSearches()
			require.Len(t, recent, MaxRecentSearches)
			assert.Equal(t, fmt.Sprintf("q%d", MaxRecentSearches+4), recent[0])
			assert.Equal(t, "q5", recent[len(recent)-1])
		})
	}
}
