package favorites

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/filmora/internal/adapter/catalog/catalogtest"
	"github.com/mmcdole/filmora/internal/domain"
	"github.com/mmcdole/filmora/internal/events"
	"github.com/mmcdole/filmora/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loadRecorder struct {
	mu    sync.Mutex
	loads [][]domain.Favorite
}

func (r *loadRecorder) OnFavoritesLoaded(favs []domain.Favorite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads = append(r.loads, favs)
}

func (r *loadRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.loads)
}

func newStore(t *testing.T, movies ...domain.Movie) *store.LocalStore {
	t.Helper()
	s, err := store.NewLocalStore("")
	require.NoError(t, err)
	for _, m := range movies {
		require.NoError(t, s.AddFavorite(m))
	}
	return s
}

func detail(id int, title, poster string) *domain.MovieDetail {
	return &domain.MovieDetail{Movie: domain.Movie{ID: id, Title: title, PosterPath: poster}}
}

func TestLoadReconcilesDriftedTitles(t *testing.T) {
	st := newStore(t,
		domain.Movie{ID: 1, Title: "Old Title", PosterPath: "/old.jpg"},
		domain.Movie{ID: 2, Title: "Same", PosterPath: "/same.jpg"},
		domain.Movie{ID: 3, Title: "Keep Poster", PosterPath: "/keep.jpg"},
		domain.Movie{ID: 4, Title: "Blank Canonical"},
	)
	c := &catalogtest.Catalog{Details: map[int]*domain.MovieDetail{
		1: detail(1, "New Title", "/new.jpg"),
		2: detail(2, "Same", "/changed.jpg"),
		3: detail(3, "Renamed", ""),
		4: detail(4, "", "/ignored.jpg"),
	}}
	obs := &loadRecorder{}
	s := NewService(st, c, nil, obs, nil)

	favs, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, favs, 4)

	byID := map[int]domain.Favorite{}
	for _, f := range favs {
		byID[f.ID] = f
	}
	assert.Equal(t, "New Title", byID[1].Title)
	assert.Equal(t, "/new.jpg", byID[1].PosterPath)
	assert.Equal(t, "/same.jpg", byID[2].PosterPath, "equal titles are left alone")
	assert.Equal(t, "Renamed", byID[3].Title)
	assert.Equal(t, "/keep.jpg", byID[3].PosterPath, "missing canonical poster keeps stored one")
	assert.Equal(t, "Blank Canonical", byID[4].Title, "empty canonical title is ignored")

	// changes were persisted
	stored, err := st.Favorites()
	require.NoError(t, err)
	assert.Equal(t, favs, stored)

	require.Len(t, obs.loads, 1)
	assert.Equal(t, 4, c.Calls(catalogtest.Detail))
}

func TestLoadToleratesFailedLookups(t *testing.T) {
	st := newStore(t,
		domain.Movie{ID: 1, Title: "A"},
		domain.Movie{ID: 2, Title: "B"},
		domain.Movie{ID: 3, Title: "C"},
	)
	c := &catalogtest.Catalog{
		Details: map[int]*domain.MovieDetail{
			1: detail(1, "A2", ""),
			3: detail(3, "C2", ""),
		},
		Fail: func(_ string, id int) error {
			if id == 1 {
				return errors.New("timeout")
			}
			return nil
		},
	}
	obs := &loadRecorder{}
	s := NewService(st, c, nil, obs, nil)
	s.SetConcurrency(1)

	favs, err := s.Load(context.Background())
	require.NoError(t, err)

	titles := []string{favs[0].Title, favs[1].Title, favs[2].Title}
	// 1 failed, 2 is unknown to the catalog, 3 reconciled
	assert.Equal(t, []string{"A", "B", "C2"}, titles)
	assert.Len(t, obs.loads, 1)
	assert.Equal(t, 3, c.Calls(catalogtest.Detail), "no short-circuit on failure")
}

func TestLoadWaitsForSlowLookup(t *testing.T) {
	st := newStore(t,
		domain.Movie{ID: 1, Title: "One"},
		domain.Movie{ID: 2, Title: "Two"},
		domain.Movie{ID: 3, Title: "Three"},
	)
	slow := make(chan struct{})
	c := &catalogtest.Catalog{
		Details: map[int]*domain.MovieDetail{
			1: detail(1, "One", ""),
			2: detail(2, "Two (Director's Cut)", "/two.jpg"),
			3: detail(3, "Three", ""),
		},
		GateFor: func(endpoint string, id int) <-chan struct{} {
			if endpoint == catalogtest.Detail && id == 2 {
				return slow
			}
			return nil
		},
	}
	obs := &loadRecorder{}
	s := NewService(st, c, nil, obs, nil)

	done := make(chan []domain.Favorite, 1)
	go func() {
		favs, err := s.Load(context.Background())
		assert.NoError(t, err)
		done <- favs
	}()

	require.Eventually(t, func() bool { return c.Calls(catalogtest.Detail) == 3 }, time.Second, time.Millisecond)
	assert.Never(t, func() bool { return obs.count() > 0 }, 50*time.Millisecond, 5*time.Millisecond,
		"observer fired before the slow lookup resolved")

	close(slow)
	favs := <-done

	require.Len(t, favs, 3)
	assert.Equal(t, []string{"One", "Two (Director's Cut)", "Three"}, []string{favs[0].Title, favs[1].Title, favs[2].Title})
	assert.Equal(t, 1, obs.count())

	stored, err := st.Favorites()
	require.NoError(t, err)
	assert.Equal(t, "One", stored[0].Title)
	assert.Equal(t, "Two (Director's Cut)", stored[1].Title)
	assert.Equal(t, "Three", stored[2].Title)
}

func TestRemoveDuringLoadStaysRemoved(t *testing.T) {
	st := newStore(t,
		domain.Movie{ID: 1, Title: "One"},
		domain.Movie{ID: 2, Title: "Two"},
	)
	gate := make(chan struct{})
	c := &catalogtest.Catalog{
		Details: map[int]*domain.MovieDetail{
			1: detail(1, "One", ""),
			2: detail(2, "Two Renamed", ""),
		},
		Gate: gate,
	}
	obs := &loadRecorder{}
	s := NewService(st, c, nil, obs, nil)

	done := make(chan []domain.Favorite, 1)
	go func() {
		favs, err := s.Load(context.Background())
		assert.NoError(t, err)
		done <- favs
	}()

	require.Eventually(t, func() bool { return c.Calls(catalogtest.Detail) == 2 }, time.Second, time.Millisecond)
	require.NoError(t, s.Remove(2))
	require.NoError(t, s.Add(domain.Movie{ID: 3, Title: "Three"}))
	close(gate)

	favs := <-done
	ids := make([]int, len(favs))
	for i, f := range favs {
		ids[i] = f.ID
	}
	assert.Equal(t, []int{1, 3}, ids)
	assert.False(t, st.IsFavorite(2))
	assert.False(t, s.IsFavorite(2))

	require.Equal(t, 1, obs.count())
	assert.Len(t, obs.loads[0], 2)
	assert.Len(t, s.Favorites(), 2)
}

func TestLoadEmpty(t *testing.T) {
	obs := &loadRecorder{}
	s := NewService(newStore(t), &catalogtest.Catalog{}, nil, obs, nil)

	favs, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, favs)
	assert.Len(t, obs.loads, 1)
}

func TestAddRemovePublishOnce(t *testing.T) {
	bus := events.NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	s := NewService(newStore(t), &catalogtest.Catalog{}, bus, nil, nil)
	m := domain.Movie{ID: 9, Title: "Nine"}

	require.NoError(t, s.Add(m))
	assert.True(t, s.IsFavorite(9))
	assert.Len(t, s.Favorites(), 1)

	require.NoError(t, s.Remove(9))
	assert.False(t, s.IsFavorite(9))
	assert.Empty(t, s.Favorites())

	require.Len(t, ch, 2)
	assert.Equal(t, domain.FavoritesChanged{MovieID: 9, Favorited: true}, <-ch)
	assert.Equal(t, domain.FavoritesChanged{MovieID: 9, Favorited: false}, <-ch)
}

func TestToggle(t *testing.T) {
	s := NewService(newStore(t), &catalogtest.Catalog{}, nil, nil, nil)
	m := domain.Movie{ID: 5, Title: "Five"}

	on, err := s.Toggle(m)
	require.NoError(t, err)
	assert.True(t, on)

	on, err = s.Toggle(m)
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, s.IsFavorite(5))
}

func TestFilter(t *testing.T) {
	s := NewService(newStore(t,
		domain.Movie{ID: 1, Title: "The Godfather"},
		domain.Movie{ID: 2, Title: "Goodfellas"},
		domain.Movie{ID: 3, Title: "Heat"},
	), &catalogtest.Catalog{}, nil, nil, nil)
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	all := s.Filter("  ")
	assert.Len(t, all, 3)

	hits := s.Filter("heat")
	require.NotEmpty(t, hits)
	assert.Equal(t, 3, hits[0].ID)
	assert.Equal(t, []int{0, 1, 2, 3}, hits[0].MatchedIndexes)

	hits = s.Filter("GOD")
	var ids []int
	for _, h := range hits {
		ids = append(ids, h.ID)
	}
	assert.ElementsMatch(t, []int{1, 2}, ids)

	assert.Empty(t, s.Filter("zzz"))
}
