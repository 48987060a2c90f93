// Package favorites keeps the local favorites list in sync with the catalog.
package favorites

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/mmcdole/filmora/internal/domain"
	"github.com/mmcdole/filmora/internal/fanout"
	"github.com/sahilm/fuzzy"
)

// Publisher broadcasts favorite changes to the rest of the process.
type Publisher interface {
	PublishFavorite(movieID int, favorited bool)
}

// Observer is told when a Load has reconciled every favorite.
type Observer interface {
	OnFavoritesLoaded(favs []domain.Favorite)
}

// Service orchestrates the favorites store, the catalog and the event bus.
type Service struct {
	store     domain.FavoritesStore
	client    domain.CatalogClient
	publisher Publisher
	observer  Observer
	logger    *slog.Logger

	// max concurrent detail lookups during Load; 0 is unbounded
	concurrency int

	mu   sync.RWMutex
	favs []domain.Favorite
}

// NewService creates a favorites service. publisher and observer may be nil.
func NewService(
	store domain.FavoritesStore,
	client domain.CatalogClient,
	publisher Publisher,
	observer Observer,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		client:    client,
		publisher: publisher,
		observer:  observer,
		logger:    logger,
	}
}

// SetConcurrency bounds the number of detail lookups Load runs at once.
func (s *Service) SetConcurrency(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.concurrency = n
}

// Load reads every stored favorite and re-fetches its detail record
// concurrently. When the canonical title is non-empty and differs from the
// stored one, the store and the in-memory list are updated (the poster only
// when the catalog has one). A failed lookup keeps the stored record; Load
// completes once every lookup has resolved and notifies the observer once.
// Favorites added or removed while Load runs are reflected in its result.
func (s *Service) Load(ctx context.Context) ([]domain.Favorite, error) {
	favs, err := s.store.Favorites()
	if err != nil {
		s.logger.Error("failed to read favorites", "error", err)
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}

	s.mu.RLock()
	limit := s.concurrency
	s.mu.RUnlock()

	tasks := make([]fanout.Task, len(favs))
	for i := range favs {
		tasks[i] = func(ctx context.Context) error {
			return s.reconcile(ctx, &favs[i])
		}
	}
	errs := fanout.Limit(ctx, limit, tasks...)

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}

	// Adds and removes may have landed while the lookups ran. The store holds
	// those along with every reconciled title.
	current, err := s.store.Favorites()
	if err != nil {
		s.logger.Error("failed to re-read favorites", "error", err)
		current = slices.DeleteFunc(favs, func(f domain.Favorite) bool { return !s.store.IsFavorite(f.ID) })
	}

	s.mu.Lock()
	s.favs = current
	s.mu.Unlock()

	s.logger.Debug("loaded favorites", "count", len(current), "failedLookups", failed)
	if s.observer != nil {
		s.observer.OnFavoritesLoaded(s.Favorites())
	}
	return s.Favorites(), nil
}

// reconcile refreshes one favorite from its canonical record. Each call owns
// its *domain.Favorite exclusively.
func (s *Service) reconcile(ctx context.Context, fav *domain.Favorite) error {
	detail, err := s.client.MovieDetail(ctx, fav.ID)
	if err != nil {
		s.logger.Warn("failed to refresh favorite", "error", err, "movieID", fav.ID)
		return err
	}

	if detail.Title == "" || detail.Title == fav.Title {
		return nil
	}

	if err := s.store.UpdateFavorite(fav.ID, detail.Title, detail.PosterPath); err != nil {
		s.logger.Error("failed to update favorite", "error", err, "movieID", fav.ID)
		return err
	}

	s.logger.Debug("reconciled favorite", "movieID", fav.ID, "from", fav.Title, "to", detail.Title)
	fav.Title = detail.Title
	if detail.PosterPath != "" {
		fav.PosterPath = detail.PosterPath
	}
	return nil
}

// Favorites returns the in-memory list as of the last Load or mutation.
func (s *Service) Favorites() []domain.Favorite {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.favs)
}

// IsFavorite reports whether id is stored as a favorite.
func (s *Service) IsFavorite(id int) bool {
	return s.store.IsFavorite(id)
}

// Add stores m as a favorite and broadcasts the change.
func (s *Service) Add(m domain.Movie) error {
	if err := s.store.AddFavorite(m); err != nil {
		s.logger.Error("failed to add favorite", "error", err, "movieID", m.ID)
		return err
	}

	if err := s.Reload(); err != nil {
		s.logger.Error("failed to refresh favorites", "error", err)
	}
	if s.publisher != nil {
		s.publisher.PublishFavorite(m.ID, true)
	}
	return nil
}

// Remove deletes the favorite with id and broadcasts the change.
func (s *Service) Remove(id int) error {
	if err := s.store.RemoveFavorite(id); err != nil {
		s.logger.Error("failed to remove favorite", "error", err, "movieID", id)
		return err
	}

	s.mu.Lock()
	s.favs = slices.DeleteFunc(s.favs, func(f domain.Favorite) bool { return f.ID == id })
	s.mu.Unlock()

	if s.publisher != nil {
		s.publisher.PublishFavorite(id, false)
	}
	return nil
}

// Toggle adds m if it is not a favorite and removes it otherwise. It returns
// the new favorited state.
func (s *Service) Toggle(m domain.Movie) (bool, error) {
	if s.store.IsFavorite(m.ID) {
		if err := s.Remove(m.ID); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := s.Add(m); err != nil {
		return false, err
	}
	return true, nil
}

// Reload re-reads the stored favorites without any catalog lookups.
func (s *Service) Reload() error {
	favs, err := s.store.Favorites()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.favs = favs
	s.mu.Unlock()
	return nil
}

// FilterResult is a favorite matched by Filter.
type FilterResult struct {
	domain.Favorite
	MatchedIndexes []int // Character positions that matched
	Score          int
}

// filterIndex implements sahilm/fuzzy.Source over favorite titles
type filterIndex struct {
	favs        []domain.Favorite
	lowerTitles []string
}

func (idx *filterIndex) String(i int) string { return idx.lowerTitles[i] }

func (idx *filterIndex) Len() int { return len(idx.favs) }

// Filter fuzzy-matches query against favorite titles, best match first.
// An empty query returns every favorite in list order.
func (s *Service) Filter(query string) []FilterResult {
	favs := s.Favorites()

	query = strings.TrimSpace(query)
	if query == "" {
		results := make([]FilterResult, len(favs))
		for i, f := range favs {
			results[i] = FilterResult{Favorite: f}
		}
		return results
	}

	idx := &filterIndex{favs: favs, lowerTitles: make([]string, len(favs))}
	for i, f := range favs {
		idx.lowerTitles[i] = strings.ToLower(f.Title)
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), idx)
	results := make([]FilterResult, len(matches))
	for i, m := range matches {
		results[i] = FilterResult{
			Favorite:       favs[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}
