// Package search runs paginated catalog searches and remembers recent queries.
package search

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/filmora/internal/domain"
)

// ErrBusy is returned when a search or load-more is already running.
var ErrBusy = errors.New("search already in progress")

// Result is the accumulated state of the current query.
type Result struct {
	Query      string
	Movies     []domain.Movie
	Page       int
	TotalPages int
}

// HasMore reports whether another page can be loaded.
func (r Result) HasMore() bool { return r.Page < r.TotalPages }

// Service handles catalog search with paging
type Service struct {
	client  domain.CatalogClient
	history domain.SearchHistory
	logger  *slog.Logger

	mu       sync.Mutex
	result   Result
	fetching bool
}

// NewService creates a new search service. history may be nil.
func NewService(client domain.CatalogClient, history domain.SearchHistory, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:  client,
		history: history,
		logger:  logger,
	}
}

// Search starts a new query from page 1, discarding previous results.
// The trimmed query is recorded in the recent-search history.
func (s *Service) Search(ctx context.Context, query string) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.Result(), domain.ErrInvalidRequest
	}

	s.mu.Lock()
	if s.fetching {
		s.mu.Unlock()
		return s.Result(), ErrBusy
	}
	s.fetching = true
	s.result = Result{Query: query, Page: 0, TotalPages: 1}
	s.mu.Unlock()

	if s.history != nil {
		if err := s.history.AddRecentSearch(query); err != nil {
			s.logger.Error("failed to save recent search", "error", err, "query", query)
		}
	}

	return s.fetch(ctx, query, 1)
}

// LoadMore appends the next page of the current query. It is a no-op when
// every page has been loaded.
func (s *Service) LoadMore(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if s.fetching {
		s.mu.Unlock()
		return s.Result(), ErrBusy
	}
	if s.result.Query == "" || !s.result.HasMore() {
		res := s.cloneLocked()
		s.mu.Unlock()
		return res, nil
	}
	s.fetching = true
	query, page := s.result.Query, s.result.Page+1
	s.mu.Unlock()

	return s.fetch(ctx, query, page)
}

func (s *Service) fetch(ctx context.Context, query string, page int) (Result, error) {
	resp, err := s.client.SearchMovies(ctx, query, page)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetching = false

	if err != nil {
		s.logger.Error("failed to search movies", "error", err, "query", query, "page", page)
		return s.cloneLocked(), err
	}
	if s.result.Query != query {
		return s.cloneLocked(), nil
	}

	if page == 1 {
		s.result.Movies = domain.DedupeMovies(resp.Results)
	} else {
		s.result.Movies = domain.DedupeMovies(append(s.result.Movies, resp.Results...))
	}
	s.result.Page = page
	s.result.TotalPages = resp.TotalPages

	s.logger.Debug("searched movies", "query", query, "page", page, "count", len(s.result.Movies))
	return s.cloneLocked(), nil
}

// Result returns the current accumulated result.
func (s *Service) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneLocked()
}

func (s *Service) cloneLocked() Result {
	r := s.result
	r.Movies = slices.Clone(r.Movies)
	return r
}

// Recent returns recent queries, most recent first.
func (s *Service) Recent() []string {
	if s.history == nil {
		return nil
	}
	return s.history.RecentSearches()
}

// Forget removes one query from the recent-search history.
func (s *Service) Forget(query string) error {
	if s.history == nil {
		return nil
	}
	if err := s.history.RemoveRecentSearch(query); err != nil {
		s.logger.Error("failed to remove recent search", "error", err, "query", query)
		return err
	}
	return nil
}

// ClearRecent empties the recent-search history.
func (s *Service) ClearRecent() error {
	if s.history == nil {
		return nil
	}
	if err := s.history.ClearRecentSearches(); err != nil {
		s.logger.Error("failed to clear recent searches", "error", err)
		return err
	}
	return nil
}

// Suggestions ranks recent queries against the partially typed input,
// closest first. Empty input returns the full history.
func (s *Service) Suggestions(input string) []string {
	recent := s.Recent()

	input = strings.TrimSpace(input)
	if input == "" {
		return recent
	}

	ranks := fuzzy.RankFindFold(input, recent)
	sort.Stable(ranks)

	out := make([]string, len(ranks))
	for i, r := range ranks {
		out[i] = r.Target
	}
	return out
}
