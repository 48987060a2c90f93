// Package feed maintains the independently paginated sections of the home screen.
package feed

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/mmcdole/filmora/internal/domain"
	"github.com/mmcdole/filmora/internal/fanout"
)

// Snapshot holds a copy of every section's items at one point in time.
type Snapshot map[domain.Section][]domain.FeedItem

// Update is the result of a fetch: the items before and after it, plus any
// per-section failures.
type Update struct {
	Before Snapshot
	After  Snapshot
	Errors []SectionError
}

// Changes returns the per-section diff between Before and After.
func (u Update) Changes() []SectionChange {
	return Diff(u.Before, u.After)
}

// SectionError reports a failed page fetch for one section.
type SectionError struct {
	Section domain.Section
	Page    int
	Err     error
}

func (e SectionError) Error() string {
	return e.Section.String() + ": " + e.Err.Error()
}

func (e SectionError) Unwrap() error { return e.Err }

// Observer receives feed notifications. OnUpdate fires once per completed
// fetch; OnError fires once per failed section.
type Observer interface {
	OnUpdate(Update)
	OnError(SectionError)
}

// State is a read-only view of one section's pagination state.
type State struct {
	Cursor     int // next page to request
	TotalPages int
	Count      int
	InFlight   bool
}

// Exhausted reports whether every page has been fetched.
func (s State) Exhausted() bool { return s.Cursor > s.TotalPages }

type section struct {
	items      []domain.FeedItem
	cursor     int
	totalPages int
	inFlight   bool
}

func newSection() *section {
	return &section{cursor: 1, totalPages: 1}
}

func (s *section) exhausted() bool { return s.cursor > s.totalPages }

// Service owns the per-section cursors and items. All state is guarded by mu;
// catalog requests run outside the lock.
type Service struct {
	client   domain.CatalogClient
	observer Observer
	logger   *slog.Logger

	// pick returns a uniform index in [0, n) for the hero spotlight
	pick func(n int) int

	mu         sync.Mutex
	sections   map[domain.Section]*section
	generation int // bumped on reset so late responses are dropped
}

// NewService creates a feed service. observer may be nil.
func NewService(client domain.CatalogClient, observer Observer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		client:   client,
		observer: observer,
		logger:   logger,
		pick:     rand.IntN,
		sections: make(map[domain.Section]*section, len(domain.Sections)),
	}
	s.resetLocked()
	return s
}

// SetPicker replaces the hero picker. Used to make the spotlight deterministic.
func (s *Service) SetPicker(pick func(n int) int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pick = pick
}

type request struct {
	section domain.Section
	page    int
}

// FetchAll fetches every section concurrently and waits for all of them.
// With reset, all sections are cleared first and page 1 is requested;
// otherwise each section requests its cursor page, and sections that are
// exhausted or already loading are skipped. Before is captured prior to the
// reset. Successful sections are merged even when others fail.
func (s *Service) FetchAll(ctx context.Context, reset bool) Update {
	s.mu.Lock()
	before := s.snapshotLocked()
	if reset {
		s.resetLocked()
	}
	gen := s.generation

	var plan []request
	for _, sec := range domain.Sections {
		st := s.sections[sec]
		if st.inFlight || st.exhausted() {
			continue
		}
		st.inFlight = true
		page := st.cursor
		if sec == domain.SectionHero {
			page = 1
		}
		plan = append(plan, request{section: sec, page: page})
	}
	s.mu.Unlock()

	s.logger.Debug("fetching feed", "reset", reset, "sections", len(plan))

	var (
		errMu  sync.Mutex
		errs   []SectionError
		update Update
	)
	barrier := fanout.NewBarrier(len(plan), func() {
		s.mu.Lock()
		update = Update{Before: before, After: s.snapshotLocked()}
		s.mu.Unlock()

		errMu.Lock()
		update.Errors = orderErrors(errs)
		errMu.Unlock()
	})

	for _, req := range plan {
		go func() {
			defer barrier.Done()
			if err := s.load(ctx, req, gen); err != nil {
				errMu.Lock()
				errs = append(errs, *err)
				errMu.Unlock()
			}
		}()
	}
	barrier.Wait(context.Background())

	s.notify(update)
	return update
}

// LoadMore requests the next page of one section and appends it. It returns
// false without touching state when the section is the hero, is loading,
// or has no pages left.
func (s *Service) LoadMore(ctx context.Context, sec domain.Section) (Update, bool) {
	s.mu.Lock()
	st, ok := s.sections[sec]
	if !ok || !sec.Pageable() || st.inFlight || st.exhausted() {
		s.mu.Unlock()
		return Update{}, false
	}
	st.inFlight = true
	req := request{section: sec, page: st.cursor}
	before := Snapshot{sec: cloneItems(st.items)}
	gen := s.generation
	s.mu.Unlock()

	s.logger.Debug("loading more", "section", sec.String(), "page", req.page)

	update := Update{Before: before}
	if err := s.load(ctx, req, gen); err != nil {
		update.Errors = []SectionError{*err}
		update.After = before
		if s.observer != nil {
			s.observer.OnError(*err)
		}
		return update, true
	}

	s.mu.Lock()
	update.After = Snapshot{sec: cloneItems(s.sections[sec].items)}
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.OnUpdate(update)
	}
	return update, true
}

// ShouldLoadMore reports whether rendering item index of sec should trigger
// LoadMore: index is the section's last item, pages remain, and nothing is
// loading.
func (s *Service) ShouldLoadMore(sec domain.Section, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sections[sec]
	if !ok {
		return false
	}
	return index == len(st.items)-1 && st.cursor <= st.totalPages && !st.inFlight
}

// Items returns a copy of a section's items.
func (s *Service) Items(sec domain.Section) []domain.FeedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sections[sec]
	if !ok {
		return nil
	}
	return cloneItems(st.items)
}

// Hero returns the spotlight movie, if one has been picked.
func (s *Service) Hero() (domain.Movie, bool) {
	items := s.Items(domain.SectionHero)
	if len(items) == 0 || items[0].Movie == nil {
		return domain.Movie{}, false
	}
	return *items[0].Movie, true
}

// State returns a section's pagination state.
func (s *Service) State(sec domain.Section) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sections[sec]
	if !ok {
		return State{}
	}
	return State{
		Cursor:     st.cursor,
		TotalPages: st.totalPages,
		Count:      len(st.items),
		InFlight:   st.inFlight,
	}
}

// Snapshot returns a copy of every section's items.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// load fetches one page and merges it. Responses from before a reset are
// discarded.
func (s *Service) load(ctx context.Context, req request, gen int) *SectionError {
	page, err := s.fetchPage(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug("dropping stale page", "section", req.section.String(), "page", req.page)
		return nil
	}

	st := s.sections[req.section]
	st.inFlight = false

	if err != nil {
		s.logger.Error("failed to fetch section", "error", err, "section", req.section.String(), "page", req.page)
		return &SectionError{Section: req.section, Page: req.page, Err: err}
	}

	if req.section == domain.SectionHero {
		st.items = nil
		if n := len(page.Results); n > 0 {
			st.items = []domain.FeedItem{page.Results[s.pick(n)]}
		}
		// single pick; never pages
		st.cursor, st.totalPages = 2, 1
		return nil
	}

	st.items = appendUnique(st.items, page.Results)
	next := page.Page + 1
	if page.Page <= 0 {
		next = req.page + 1
	}
	st.cursor = next
	st.totalPages = page.TotalPages
	return nil
}

func (s *Service) fetchPage(ctx context.Context, req request) (domain.Page[domain.FeedItem], error) {
	switch req.section {
	case domain.SectionHero, domain.SectionTrending:
		return movies(s.client.TrendingMovies(ctx, req.page))
	case domain.SectionPopularMovies:
		return movies(s.client.PopularMovies(ctx, req.page))
	case domain.SectionTopRated:
		return movies(s.client.TopRatedMovies(ctx, req.page))
	case domain.SectionUpcoming:
		return movies(s.client.UpcomingMovies(ctx, req.page))
	case domain.SectionNowPlaying:
		return movies(s.client.NowPlayingMovies(ctx, req.page))
	case domain.SectionPopularPersons:
		return persons(s.client.PopularPersons(ctx, req.page))
	default:
		return domain.Page[domain.FeedItem]{}, domain.ErrInvalidRequest
	}
}

func (s *Service) notify(u Update) {
	if s.observer == nil {
		return
	}
	s.observer.OnUpdate(u)
	for _, e := range u.Errors {
		s.observer.OnError(e)
	}
}

func (s *Service) resetLocked() {
	s.generation++
	for _, sec := range domain.Sections {
		s.sections[sec] = newSection()
	}
}

func (s *Service) snapshotLocked() Snapshot {
	snap := make(Snapshot, len(s.sections))
	for sec, st := range s.sections {
		snap[sec] = cloneItems(st.items)
	}
	return snap
}

func movies(p domain.Page[domain.Movie], err error) (domain.Page[domain.FeedItem], error) {
	if err != nil {
		return domain.Page[domain.FeedItem]{}, err
	}
	out := domain.Page[domain.FeedItem]{Page: p.Page, TotalPages: p.TotalPages, TotalResults: p.TotalResults}
	out.Results = make([]domain.FeedItem, 0, len(p.Results))
	for _, m := range p.Results {
		out.Results = append(out.Results, domain.MovieItem(m))
	}
	return out, nil
}

func persons(p domain.Page[domain.Person], err error) (domain.Page[domain.FeedItem], error) {
	if err != nil {
		return domain.Page[domain.FeedItem]{}, err
	}
	out := domain.Page[domain.FeedItem]{Page: p.Page, TotalPages: p.TotalPages, TotalResults: p.TotalResults}
	out.Results = make([]domain.FeedItem, 0, len(p.Results))
	for _, person := range p.Results {
		out.Results = append(out.Results, domain.PersonItem(person))
	}
	return out, nil
}

// appendUnique appends items whose ID is not already present. Catalog pages
// can overlap when rankings shift between requests.
func appendUnique(dst, src []domain.FeedItem) []domain.FeedItem {
	seen := make(map[int]struct{}, len(dst)+len(src))
	for _, it := range dst {
		seen[it.ID()] = struct{}{}
	}
	for _, it := range src {
		if _, ok := seen[it.ID()]; ok {
			continue
		}
		seen[it.ID()] = struct{}{}
		dst = append(dst, it)
	}
	return dst
}

func cloneItems(items []domain.FeedItem) []domain.FeedItem {
	if items == nil {
		return nil
	}
	out := make([]domain.FeedItem, len(items))
	copy(out, items)
	return out
}

// orderErrors sorts errors into display order of their sections.
func orderErrors(errs []SectionError) []SectionError {
	if len(errs) == 0 {
		return nil
	}
	out := make([]SectionError, 0, len(errs))
	for _, sec := range domain.Sections {
		for _, e := range errs {
			if e.Section == sec {
				out = append(out, e)
			}
		}
	}
	return out
}
