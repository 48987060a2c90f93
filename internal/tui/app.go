package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/filmora/internal/adapter/catalog/tmdb"
	"github.com/mmcdole/filmora/internal/chat"
	"github.com/mmcdole/filmora/internal/detail"
	"github.com/mmcdole/filmora/internal/domain"
	"github.com/mmcdole/filmora/internal/events"
	"github.com/mmcdole/filmora/internal/favorites"
	"github.com/mmcdole/filmora/internal/feed"
	"github.com/mmcdole/filmora/internal/search"
	"github.com/mmcdole/filmora/internal/tui/styles"
)

// Tab is one top-level screen
type Tab int

const (
	TabHome Tab = iota
	TabSearch
	TabFavorites
	TabChat
)

var tabNames = []string{"Home", "Search", "Favorites", "Chat"}

func (t Tab) String() string { return tabNames[t] }

// Services bundles everything the TUI drives
type Services struct {
	Feed      *feed.Service
	Detail    *detail.Service
	Search    *search.Service
	Favorites *favorites.Service
	Chat      *chat.Session // nil when no chat API key is configured
	Opener    Opener

	// Observer output and favorites changes
	Msgs   <-chan tea.Msg
	Events <-chan events.Event
}

// Options holds UI settings
type Options struct {
	Language    string        // catalog locale, used for localized titles
	FeedTimeout time.Duration // bound on one feed fetch
}

// homeState is the Home tab: a spotlight plus one strip per section
type homeState struct {
	loading bool
	err     error
	row     int                    // index into rowSections
	col     map[domain.Section]int // cursor within each strip
	failed  map[domain.Section]error
}

// searchState is the Search tab
type searchState struct {
	input   textinput.Model
	result  search.Result
	loading bool
	err     error
	cursor  int  // into result.Movies, or into suggestions when results are empty
	browse  bool // focus is on results instead of the input
}

// favoritesState is the Favorites tab
type favoritesState struct {
	filter  textinput.Model
	loaded  bool
	loading bool
	err     error
	cursor  int
}

// chatState is the Chat tab
type chatState struct {
	input   textinput.Model
	view    viewport.Model
	turns   []domain.ChatTurn
	sending bool
	err     error
}

// detailTarget is one entry of the detail navigation stack
type detailTarget struct {
	kind domain.ContentKind
	id   int
}

// detailState is the detail overlay for a movie or person
type detailState struct {
	stack     []detailTarget
	loading   bool
	err       error
	bundle    *domain.MovieBundle
	person    *domain.Person
	localized string
	cursor    int // into recommendations
}

func (d *detailState) open() bool { return len(d.stack) > 0 }

func (d *detailState) top() detailTarget { return d.stack[len(d.stack)-1] }

// Model is the main Bubble Tea model for the application
type Model struct {
	svc  Services
	opts Options

	Tab      Tab
	Ready    bool
	ShowHelp bool

	// Dimensions
	Width  int
	Height int

	home   homeState
	search searchState
	favs   favoritesState
	chat   chatState
	detail detailState

	// Favorited movie IDs, kept current from the event bus
	favorited map[int]bool

	spinner spinner.Model

	// UI state
	StatusMsg   string
	StatusIsErr bool
}

// rowSections are the Home strips below the spotlight
var rowSections = domain.Sections[1:]

// NewModel creates a new application model
func NewModel(svc Services, opts Options) Model {
	if opts.FeedTimeout <= 0 {
		opts.FeedTimeout = 30 * time.Second
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	searchInput := textinput.New()
	searchInput.Placeholder = "search movies..."
	searchInput.Prompt = "› "
	searchInput.PromptStyle = styles.PromptStyle
	searchInput.TextStyle = styles.InputStyle

	filter := textinput.New()
	filter.Placeholder = "type to filter..."
	filter.Prompt = "/ "
	filter.PromptStyle = styles.PromptStyle
	filter.TextStyle = styles.InputStyle

	chatInput := textinput.New()
	chatInput.Placeholder = "ask about movies..."
	chatInput.Prompt = "› "
	chatInput.PromptStyle = styles.PromptStyle
	chatInput.CharLimit = 2000

	m := Model{
		svc:       svc,
		opts:      opts,
		Tab:       TabHome,
		spinner:   sp,
		favorited: make(map[int]bool),
		home: homeState{
			loading: true,
			col:     make(map[domain.Section]int),
			failed:  make(map[domain.Section]error),
		},
		search: searchState{input: searchInput},
		favs:   favoritesState{filter: filter, loading: true},
		chat:   chatState{input: chatInput, view: viewport.New(0, 0)},
	}
	if svc.Favorites != nil {
		for _, f := range svc.Favorites.Favorites() {
			m.favorited[f.ID] = true
		}
	}
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		FetchFeedCmd(m.svc.Feed, true, m.opts.FeedTimeout),
		LoadFavoritesCmd(m.svc.Favorites),
		m.spinner.Tick,
	}
	if cmd := m.waitForMsg(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if cmd := m.waitForEvent(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case FeedUpdatedMsg:
		m.applyFeedUpdate(msg.Update)
		return m, m.waitForMsg()

	case FeedErrorMsg:
		// LoadMore failures arrive here alone; FetchAll errors were already
		// folded in from the update.
		m.home.failed[msg.Err.Section] = msg.Err.Err
		return m, m.waitForMsg()

	case FavoritesLoadedMsg:
		m.favs.loaded = true
		m.favs.loading = false
		m.favs.err = nil
		m.favorited = make(map[int]bool, len(msg.Favorites))
		for _, f := range msg.Favorites {
			m.favorited[f.ID] = true
		}
		m.clampFavoritesCursor()
		return m, m.waitForMsg()

	case FavoriteChangedMsg:
		if msg.Change.Favorited {
			m.favorited[msg.Change.MovieID] = true
		} else {
			delete(m.favorited, msg.Change.MovieID)
		}
		m.clampFavoritesCursor()
		return m, m.waitForEvent()

	case ChatTurnsMsg:
		m.chat.turns = msg.Turns
		if n := len(msg.Turns); n > 0 && !msg.Turns[n-1].FromUser {
			m.chat.sending = false
			m.chat.err = nil
		}
		m.refreshChatView()
		return m, m.waitForMsg()

	case ChatFailedMsg:
		m.chat.sending = false
		m.chat.err = msg.Err
		m.refreshChatView()
		return m, m.waitForMsg()

	case DetailLoadedMsg:
		if !m.detail.open() || m.detail.top() != (detailTarget{domain.KindMovie, msg.ID}) {
			return m, nil // navigated away
		}
		m.detail.loading = false
		m.detail.err = nil
		m.detail.bundle = msg.Bundle
		m.detail.cursor = 0
		if lang := m.opts.Language; lang != "" && !isEnglish(lang) {
			return m, LocalizedTitleCmd(m.svc.Detail, msg.ID, tmdb.LanguageTag(lang))
		}
		return m, nil

	case DetailFailedMsg:
		if !m.detail.open() || m.detail.top() != (detailTarget{domain.KindMovie, msg.ID}) {
			return m, nil
		}
		m.detail.loading = false
		m.detail.err = msg.Err
		m.detail.bundle = nil
		return m, nil

	case LocalizedTitleMsg:
		if m.detail.bundle != nil && m.detail.bundle.Detail.ID == msg.ID && msg.Title != m.detail.bundle.Detail.Title {
			m.detail.localized = msg.Title
		}
		return m, nil

	case PersonLoadedMsg:
		if !m.detail.open() || m.detail.top() != (detailTarget{domain.KindPerson, msg.Person.ID}) {
			return m, nil
		}
		m.detail.loading = false
		m.detail.err = nil
		m.detail.person = msg.Person
		return m, nil

	case PersonFailedMsg:
		if !m.detail.open() || m.detail.top() != (detailTarget{domain.KindPerson, msg.ID}) {
			return m, nil
		}
		m.detail.loading = false
		m.detail.err = msg.Err
		m.detail.person = nil
		return m, nil

	case SearchResultsMsg:
		if msg.Result.Query != m.search.result.Query {
			return m, nil // superseded by a newer query
		}
		m.search.loading = false
		m.search.err = nil
		m.search.result = msg.Result
		if m.search.cursor >= len(msg.Result.Movies) {
			m.search.cursor = max(0, len(msg.Result.Movies)-1)
		}
		return m, nil

	case SearchFailedMsg:
		if msg.Query != m.search.result.Query {
			return m, nil
		}
		m.search.loading = false
		m.search.err = msg.Err
		return m, nil

	case ErrMsg:
		if msg.Context == "loading favorites" {
			m.favs.loading = false
			m.favs.err = msg.Err
		}
		return m.setStatus(msg.Error(), true)

	case StatusMsg:
		return m.setStatus(msg.Message, msg.IsError)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

func (m Model) waitForMsg() tea.Cmd {
	if m.svc.Msgs == nil {
		return nil
	}
	return WaitForMsg(m.svc.Msgs)
}

func (m Model) waitForEvent() tea.Cmd {
	if m.svc.Events == nil {
		return nil
	}
	return WaitForEvent(m.svc.Events)
}

func (m Model) setStatus(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return m, ClearStatusCmd(4 * time.Second)
}

// applyFeedUpdate folds a completed fetch into the Home state. When nothing
// loaded at all, the screen switches to its error state.
func (m *Model) applyFeedUpdate(u feed.Update) {
	m.home.loading = false
	for _, e := range u.Errors {
		m.home.failed[e.Section] = e.Err
	}
	for _, c := range u.Changes() {
		if c.Inserted.Len() > 0 {
			delete(m.home.failed, c.Section)
		}
		col := m.home.col[c.Section]
		// The row under the cursor was replaced; go back to the first changed row.
		// Appends leave the cursor where it is.
		if c.Removed.Len() > 0 && col >= c.Removed.Start {
			col = c.Removed.Start
		}
		m.home.col[c.Section] = max(0, min(col, len(u.After[c.Section])-1))
	}

	empty := true
	for _, sec := range domain.Sections {
		if len(m.svc.Feed.Items(sec)) > 0 {
			empty = false
			break
		}
	}
	m.home.err = nil
	if empty && len(u.Errors) > 0 {
		m.home.err = u.Errors[0].Err
	}
}

// refreshFeed starts a full reload of the Home tab
func (m *Model) refreshFeed() tea.Cmd {
	m.home.loading = true
	m.home.err = nil
	m.home.failed = make(map[domain.Section]error)
	m.home.col = make(map[domain.Section]int)
	return FetchFeedCmd(m.svc.Feed, true, m.opts.FeedTimeout)
}

// openMovie pushes a movie onto the detail stack and starts loading it
func (m *Model) openMovie(id int) tea.Cmd {
	m.detail.stack = append(m.detail.stack, detailTarget{kind: domain.KindMovie, id: id})
	return m.loadDetail()
}

// openPerson pushes a person onto the detail stack and starts loading it
func (m *Model) openPerson(id int) tea.Cmd {
	m.detail.stack = append(m.detail.stack, detailTarget{kind: domain.KindPerson, id: id})
	return m.loadDetail()
}

// closeDetail pops the detail stack and reloads what is underneath
func (m *Model) closeDetail() tea.Cmd {
	if !m.detail.open() {
		return nil
	}
	m.detail.stack = m.detail.stack[:len(m.detail.stack)-1]
	if !m.detail.open() {
		m.detail = detailState{}
		return nil
	}
	return m.loadDetail()
}

func (m *Model) loadDetail() tea.Cmd {
	t := m.detail.top()
	m.detail.loading = true
	m.detail.err = nil
	m.detail.bundle = nil
	m.detail.person = nil
	m.detail.localized = ""
	m.detail.cursor = 0
	if t.kind == domain.KindPerson {
		return FetchPersonCmd(m.svc.Detail, t.id)
	}
	return FetchDetailCmd(m.svc.Detail, t.id)
}

// runSearch starts a new query from the input
func (m *Model) runSearch() tea.Cmd {
	query := strings.TrimSpace(m.search.input.Value())
	if query == "" || m.search.loading {
		return nil
	}
	m.search.loading = true
	m.search.err = nil
	m.search.result = search.Result{Query: query}
	m.search.cursor = 0
	m.search.browse = true
	m.search.input.Blur()
	return SearchCmd(m.svc.Search, query)
}

// searchMore loads the next results page when the cursor reaches the end
func (m *Model) searchMore() tea.Cmd {
	r := m.search.result
	if m.search.loading || !r.HasMore() || m.search.cursor < len(r.Movies)-1 {
		return nil
	}
	m.search.loading = true
	return SearchMoreCmd(m.svc.Search)
}

// suggestions lists recent searches matching the current input
func (m Model) suggestions() []string {
	if m.svc.Search == nil {
		return nil
	}
	return m.svc.Search.Suggestions(m.search.input.Value())
}

// filteredFavorites applies the favorites filter input
func (m Model) filteredFavorites() []favorites.FilterResult {
	if m.svc.Favorites == nil {
		return nil
	}
	return m.svc.Favorites.Filter(m.favs.filter.Value())
}

func (m *Model) clampFavoritesCursor() {
	n := len(m.filteredFavorites())
	if m.favs.cursor >= n {
		m.favs.cursor = max(0, n-1)
	}
}

// sendChat sends the chat input as a new message
func (m *Model) sendChat() tea.Cmd {
	if m.svc.Chat == nil || m.chat.sending {
		return nil
	}
	text := strings.TrimSpace(m.chat.input.Value())
	if text == "" {
		return nil
	}
	m.chat.input.SetValue("")
	m.chat.sending = true
	m.chat.err = nil
	return SendChatCmd(m.svc.Chat, text)
}

func (m *Model) retryChat() tea.Cmd {
	if m.svc.Chat == nil || m.chat.sending || m.chat.err == nil {
		return nil
	}
	m.chat.sending = true
	m.chat.err = nil
	m.refreshChatView()
	return RetryChatCmd(m.svc.Chat)
}

// selectedHomeItem returns the focused item on the Home tab
func (m Model) selectedHomeItem() (domain.FeedItem, bool) {
	sec := rowSections[m.home.row]
	items := m.svc.Feed.Items(sec)
	i := m.home.col[sec]
	if i < 0 || i >= len(items) {
		return domain.FeedItem{}, false
	}
	return items[i], true
}

// selectedMovie returns the movie the current screen is focused on
func (m Model) selectedMovie() (domain.Movie, bool) {
	if m.detail.open() {
		if m.detail.bundle != nil {
			return m.detail.bundle.Detail.Movie, true
		}
		return domain.Movie{}, false
	}

	switch m.Tab {
	case TabHome:
		item, ok := m.selectedHomeItem()
		if ok && item.Movie != nil {
			return *item.Movie, true
		}
	case TabSearch:
		if m.search.browse && m.search.cursor < len(m.search.result.Movies) {
			return m.search.result.Movies[m.search.cursor], true
		}
	case TabFavorites:
		favs := m.filteredFavorites()
		if m.favs.cursor < len(favs) {
			return favs[m.favs.cursor].Favorite.Movie(), true
		}
	}
	return domain.Movie{}, false
}

// movieURL is the page opened in the browser: the movie's homepage when the
// detail view has one, its catalog page otherwise
func (m Model) movieURL(mv domain.Movie) string {
	if m.detail.open() && m.detail.bundle != nil && m.detail.bundle.Detail.Homepage != "" {
		return m.detail.bundle.Detail.Homepage
	}
	return tmdb.MovieURL(mv.ID)
}

func isEnglish(lang string) bool {
	return strings.HasPrefix(strings.ToLower(lang), "en")
}

// describeError turns service errors into short user-facing text
func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuthFailed):
		return "The catalog rejected the access token. Run `filmora setup`."
	case errors.Is(err, domain.ErrServerOffline), tmdb.IsTransient(err):
		return "The catalog is unreachable. Try again in a moment."
	case errors.Is(err, domain.ErrNotFound):
		return "Not found."
	default:
		return fmt.Sprintf("Something went wrong: %v", err)
	}
}
