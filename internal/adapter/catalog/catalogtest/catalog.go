// Package catalogtest provides an in-memory domain.CatalogClient for tests.
package catalogtest

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/mmcdole/filmora/internal/domain"
)

// Endpoint names used for call counting and failure injection.
const (
	Popular         = "popular"
	Trending        = "trending"
	TopRated        = "top_rated"
	NowPlaying      = "now_playing"
	Upcoming        = "upcoming"
	Persons         = "persons"
	Search          = "search"
	Detail          = "detail"
	Credits         = "credits"
	Recommendations = "recommendations"
	Person          = "person"
	Translations    = "translations"
)

// Catalog serves fixed data. List endpoints are paginated by PageSize
// (default 2). Zero value is usable.
type Catalog struct {
	Lists        map[string][]domain.Movie
	People       []domain.Person
	Details      map[int]*domain.MovieDetail
	Cast         map[int][]domain.CastMember
	Recs         map[int][]domain.Movie
	Persons      map[int]*domain.Person
	Translations map[int][]domain.Translation
	PageSize     int

	// Fail, when set, is consulted before every call with the endpoint and
	// the page or ID; a non-nil result is returned as the call's error.
	Fail func(endpoint string, key int) error

	// Gate, when set, blocks every call until it is closed or ctx ends.
	Gate chan struct{}

	// GateFor, when set, returns a channel the call for endpoint and key
	// waits on before Gate; nil lets the call through.
	GateFor func(endpoint string, key int) <-chan struct{}

	mu    sync.Mutex
	calls map[string]int
}

var _ domain.CatalogClient = (*Catalog)(nil)

// Calls returns how many times endpoint was requested.
func (c *Catalog) Calls(endpoint string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[endpoint]
}

func (c *Catalog) enter(ctx context.Context, endpoint string, key int) error {
	c.mu.Lock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[endpoint]++
	gate := c.Gate
	c.mu.Unlock()

	if c.GateFor != nil {
		if own := c.GateFor(endpoint, key); own != nil {
			select {
			case <-own:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.Fail != nil {
		return c.Fail(endpoint, key)
	}
	return nil
}

func paginate[T any](all []T, page, size int) domain.Page[T] {
	if size <= 0 {
		size = 2
	}
	total := (len(all) + size - 1) / size
	if total == 0 {
		total = 1
	}
	start := (page - 1) * size
	if start < 0 || start > len(all) {
		start = len(all)
	}
	end := min(start+size, len(all))
	return domain.Page[T]{
		Page:         page,
		Results:      append([]T(nil), all[start:end]...),
		TotalPages:   total,
		TotalResults: len(all),
	}
}

func (c *Catalog) list(ctx context.Context, endpoint string, page int) (domain.Page[domain.Movie], error) {
	if err := c.enter(ctx, endpoint, page); err != nil {
		return domain.Page[domain.Movie]{}, err
	}
	return paginate(c.Lists[endpoint], page, c.PageSize), nil
}

func (c *Catalog) PopularMovies(ctx context.Context, page int) (domain.Page[domain.Movie], error) {
	return c.list(ctx, Popular, page)
}

func (c *Catalog) TrendingMovies(ctx context.Context, page int) (domain.Page[domain.Movie], error) {
	return c.list(ctx, Trending, page)
}

func (c *Catalog) TopRatedMovies(ctx context.Context, page int) (domain.Page[domain.Movie], error) {
	return c.list(ctx, TopRated, page)
}

func (c *Catalog) NowPlayingMovies(ctx context.Context, page int) (domain.Page[domain.Movie], error) {
	return c.list(ctx, NowPlaying, page)
}

func (c *Catalog) UpcomingMovies(ctx context.Context, page int) (domain.Page[domain.Movie], error) {
	return c.list(ctx, Upcoming, page)
}

func (c *Catalog) PopularPersons(ctx context.Context, page int) (domain.Page[domain.Person], error) {
	if err := c.enter(ctx, Persons, page); err != nil {
		return domain.Page[domain.Person]{}, err
	}
	return paginate(c.People, page, c.PageSize), nil
}

// SearchMovies matches titles in Lists[Search], case-insensitively.
func (c *Catalog) SearchMovies(ctx context.Context, query string, page int) (domain.Page[domain.Movie], error) {
	if err := c.enter(ctx, Search, page); err != nil {
		return domain.Page[domain.Movie]{}, err
	}
	var hits []domain.Movie
	for _, m := range c.Lists[Search] {
		if strings.Contains(strings.ToLower(m.Title), strings.ToLower(query)) {
			hits = append(hits, m)
		}
	}
	return paginate(hits, page, c.PageSize), nil
}

func (c *Catalog) MovieDetail(ctx context.Context, id int) (*domain.MovieDetail, error) {
	if err := c.enter(ctx, Detail, id); err != nil {
		return nil, err
	}
	d, ok := c.Details[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *d
	return &out, nil
}

func (c *Catalog) MovieCredits(ctx context.Context, id int) ([]domain.CastMember, error) {
	if err := c.enter(ctx, Credits, id); err != nil {
		return nil, err
	}
	return append([]domain.CastMember(nil), c.Cast[id]...), nil
}

func (c *Catalog) MovieRecommendations(ctx context.Context, id int) ([]domain.Movie, error) {
	if err := c.enter(ctx, Recommendations, id); err != nil {
		return nil, err
	}
	return append([]domain.Movie(nil), c.Recs[id]...), nil
}

func (c *Catalog) PersonDetail(ctx context.Context, id int) (*domain.Person, error) {
	if err := c.enter(ctx, Person, id); err != nil {
		return nil, err
	}
	p, ok := c.Persons[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (c *Catalog) MovieTranslations(ctx context.Context, id int) ([]domain.Translation, error) {
	if err := c.enter(ctx, Translations, id); err != nil {
		return nil, err
	}
	return append([]domain.Translation(nil), c.Translations[id]...), nil
}

// Movies builds n movies with IDs start..start+n-1 titled "<prefix> <id>".
func Movies(prefix string, start, n int) []domain.Movie {
	out := make([]domain.Movie, n)
	for i := range out {
		id := start + i
		out[i] = domain.Movie{ID: id, Title: prefix + " " + strconv.Itoa(id)}
	}
	return out
}
