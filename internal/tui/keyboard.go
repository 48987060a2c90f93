package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/filmora/internal/domain"
)

// handleKeyMsg routes key presses: help overlay, then detail overlay, then a
// focused text input, then global and per-tab bindings.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.ShowHelp {
		m.ShowHelp = false
		return m, nil
	}

	if m.detail.open() {
		return m.handleDetailKey(msg)
	}

	if m.inputFocused() {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Help):
		m.ShowHelp = true
		return m, nil
	case key.Matches(msg, Keys.NextTab):
		return m.switchTab((m.Tab + 1) % Tab(len(tabNames)))
	case key.Matches(msg, Keys.PrevTab):
		return m.switchTab((m.Tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames)))
	case key.Matches(msg, Keys.Home):
		return m.switchTab(TabHome)
	case key.Matches(msg, Keys.Search):
		return m.switchTab(TabSearch)
	case key.Matches(msg, Keys.Favs):
		return m.switchTab(TabFavorites)
	case key.Matches(msg, Keys.Chat):
		return m.switchTab(TabChat)
	case key.Matches(msg, Keys.Favorite):
		if mv, ok := m.selectedMovie(); ok {
			return m, ToggleFavoriteCmd(m.svc.Favorites, mv)
		}
		return m, nil
	case key.Matches(msg, Keys.Open):
		if mv, ok := m.selectedMovie(); ok && m.svc.Opener != nil {
			return m, OpenURLCmd(m.svc.Opener, m.movieURL(mv))
		}
		return m, nil
	}

	switch m.Tab {
	case TabHome:
		return m.handleHomeKey(msg)
	case TabSearch:
		return m.handleSearchKey(msg)
	case TabFavorites:
		return m.handleFavoritesKey(msg)
	case TabChat:
		return m.handleChatKey(msg)
	}
	return m, nil
}

// inputFocused reports whether keys should go to a text input
func (m Model) inputFocused() bool {
	switch m.Tab {
	case TabSearch:
		return m.search.input.Focused()
	case TabFavorites:
		return m.favs.filter.Focused()
	case TabChat:
		return m.chat.input.Focused()
	}
	return false
}

// switchTab changes the active tab and focuses its input where it has one
func (m Model) switchTab(t Tab) (tea.Model, tea.Cmd) {
	m.Tab = t
	m.search.input.Blur()
	m.favs.filter.Blur()
	m.chat.input.Blur()

	switch t {
	case TabSearch:
		if !m.search.browse {
			return m, m.search.input.Focus()
		}
	case TabFavorites:
		if !m.favs.loaded && !m.favs.loading {
			m.favs.loading = true
			return m, LoadFavoritesCmd(m.svc.Favorites)
		}
	case TabChat:
		if m.svc.Chat != nil {
			return m, m.chat.input.Focus()
		}
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Tab {
	case TabSearch:
		return m.handleSearchInputKey(msg)
	case TabFavorites:
		switch msg.String() {
		case "esc":
			m.favs.filter.SetValue("")
			m.favs.filter.Blur()
			m.favs.cursor = 0
			return m, nil
		case "enter", "down", "tab":
			m.favs.filter.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.favs.filter, cmd = m.favs.filter.Update(msg)
		m.favs.cursor = 0
		return m, cmd
	case TabChat:
		switch msg.String() {
		case "esc":
			m.chat.input.Blur()
			return m, nil
		case "tab":
			m.chat.input.Blur()
			return m.switchTab(TabHome)
		case "shift+tab":
			m.chat.input.Blur()
			return m.switchTab(TabFavorites)
		case "enter":
			return m, m.sendChat()
		case "ctrl+r":
			return m, m.retryChat()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.chat.view, cmd = m.chat.view.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.chat.input, cmd = m.chat.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleSearchInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.input.Blur()
		if len(m.search.result.Movies) > 0 {
			m.search.browse = true
		}
		return m, nil
	case "tab":
		m.search.input.Blur()
		return m.switchTab(TabFavorites)
	case "shift+tab":
		m.search.input.Blur()
		return m.switchTab(TabHome)
	case "enter":
		if m.search.input.Value() == "" {
			// pick the highlighted recent search
			if s := m.suggestions(); m.search.cursor < len(s) {
				m.search.input.SetValue(s[m.search.cursor])
			}
		}
		return m, m.runSearch()
	case "up":
		if m.search.cursor > 0 {
			m.search.cursor--
		}
		return m, nil
	case "down":
		if m.search.cursor < len(m.suggestions())-1 {
			m.search.cursor++
		}
		return m, nil
	case "ctrl+x":
		if err := m.svc.Search.ClearRecent(); err != nil {
			return m, func() tea.Msg { return ErrMsg{Err: err, Context: "clearing recent searches"} }
		}
		m.search.cursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.search.input, cmd = m.search.input.Update(msg)
	m.search.cursor = 0
	return m, cmd
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.home.err != nil {
		if key.Matches(msg, Keys.Refresh, Keys.Retry, Keys.Enter) {
			return m, m.refreshFeed()
		}
		return m, nil
	}

	sec := rowSections[m.home.row]
	items := m.svc.Feed.Items(sec)

	switch {
	case key.Matches(msg, Keys.Refresh):
		return m, m.refreshFeed()
	case key.Matches(msg, Keys.Retry):
		// retry only the failed strips
		if len(m.home.failed) == 0 {
			return m, nil
		}
		m.home.failed = make(map[domain.Section]error)
		return m, FetchFeedCmd(m.svc.Feed, false, m.opts.FeedTimeout)
	case key.Matches(msg, Keys.Up):
		if m.home.row > 0 {
			m.home.row--
		}
	case key.Matches(msg, Keys.Down):
		if m.home.row < len(rowSections)-1 {
			m.home.row++
		}
	case key.Matches(msg, Keys.Left):
		if m.home.col[sec] > 0 {
			m.home.col[sec]--
		}
	case key.Matches(msg, Keys.Right):
		if m.home.col[sec] < len(items)-1 {
			m.home.col[sec]++
		}
		if m.svc.Feed.ShouldLoadMore(sec, m.home.col[sec]) {
			delete(m.home.failed, sec)
			return m, LoadMoreCmd(m.svc.Feed, sec, m.opts.FeedTimeout)
		}
	case key.Matches(msg, Keys.Enter):
		item, ok := m.selectedHomeItem()
		if !ok {
			return m, nil
		}
		if item.Kind == domain.KindPerson {
			return m, m.openPerson(item.ID())
		}
		return m, m.openMovie(item.ID())
	case msg.String() == " ":
		// spotlight
		if hero, ok := m.svc.Feed.Hero(); ok {
			return m, m.openMovie(hero.ID)
		}
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	movies := m.search.result.Movies

	switch {
	case key.Matches(msg, Keys.Filter), msg.String() == "i":
		m.search.browse = false
		m.search.cursor = 0
		return m, m.search.input.Focus()
	case key.Matches(msg, Keys.Retry):
		if m.search.err == nil {
			return m, nil
		}
		if len(movies) == 0 {
			return m, m.runSearch()
		}
		m.search.err = nil
		m.search.loading = true
		return m, SearchMoreCmd(m.svc.Search)
	case key.Matches(msg, Keys.Up):
		if m.search.cursor > 0 {
			m.search.cursor--
		}
	case key.Matches(msg, Keys.Down):
		if m.search.cursor < len(movies)-1 {
			m.search.cursor++
		}
		return m, m.searchMore()
	case key.Matches(msg, Keys.Enter):
		if m.search.cursor < len(movies) {
			return m, m.openMovie(movies[m.search.cursor].ID)
		}
	case key.Matches(msg, Keys.Back):
		m.search.browse = false
		return m, m.search.input.Focus()
	}
	return m, nil
}

func (m Model) handleFavoritesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	favs := m.filteredFavorites()

	switch {
	case key.Matches(msg, Keys.Filter):
		return m, m.favs.filter.Focus()
	case key.Matches(msg, Keys.Refresh), key.Matches(msg, Keys.Retry):
		m.favs.loading = true
		m.favs.err = nil
		return m, LoadFavoritesCmd(m.svc.Favorites)
	case key.Matches(msg, Keys.Up):
		if m.favs.cursor > 0 {
			m.favs.cursor--
		}
	case key.Matches(msg, Keys.Down):
		if m.favs.cursor < len(favs)-1 {
			m.favs.cursor++
		}
	case key.Matches(msg, Keys.Enter):
		if m.favs.cursor < len(favs) {
			return m, m.openMovie(favs[m.favs.cursor].ID)
		}
	case key.Matches(msg, Keys.Delete):
		if m.favs.cursor < len(favs) {
			return m, RemoveFavoriteCmd(m.svc.Favorites, favs[m.favs.cursor].ID)
		}
	case key.Matches(msg, Keys.Back):
		if m.favs.filter.Value() != "" {
			m.favs.filter.SetValue("")
			m.favs.cursor = 0
		}
	}
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.svc.Chat == nil {
		return m, nil
	}
	switch {
	case key.Matches(msg, Keys.Retry):
		return m, m.retryChat()
	case key.Matches(msg, Keys.Enter), msg.String() == "i":
		return m, m.chat.input.Focus()
	case key.Matches(msg, Keys.Clear):
		m.svc.Chat.Reset()
		m.chat.turns = nil
		m.chat.err = nil
		m.refreshChatView()
		return m, nil
	}

	var cmd tea.Cmd
	m.chat.view, cmd = m.chat.view.Update(msg)
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Back):
		return m, m.closeDetail()
	case key.Matches(msg, Keys.Retry), key.Matches(msg, Keys.Refresh):
		return m, m.loadDetail()
	case key.Matches(msg, Keys.Favorite):
		if mv, ok := m.selectedMovie(); ok {
			return m, ToggleFavoriteCmd(m.svc.Favorites, mv)
		}
	case key.Matches(msg, Keys.Open):
		if mv, ok := m.selectedMovie(); ok && m.svc.Opener != nil {
			return m, OpenURLCmd(m.svc.Opener, m.movieURL(mv))
		}
	}

	if m.detail.bundle == nil {
		return m, nil
	}
	recs := m.detail.bundle.Recommendations
	switch {
	case key.Matches(msg, Keys.Up), key.Matches(msg, Keys.Left):
		if m.detail.cursor > 0 {
			m.detail.cursor--
		}
	case key.Matches(msg, Keys.Down), key.Matches(msg, Keys.Right):
		if m.detail.cursor < len(recs)-1 {
			m.detail.cursor++
		}
	case key.Matches(msg, Keys.Enter):
		if m.detail.cursor < len(recs) {
			return m, m.openMovie(recs[m.detail.cursor].ID)
		}
	}
	return m, nil
}
