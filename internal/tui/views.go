package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/filmora/internal/domain"
	"github.com/mmcdole/filmora/internal/tui/styles"
)

// Layout constants
const (
	TabBarHeight = 2 // tabs plus bottom border
	FooterHeight = 1
	HeroHeight   = 5
	StripHeight  = 2 // section title plus one row of items
	StripGap     = 3
	MaxCastShown = 8
)

// View renders the whole screen
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.ShowHelp {
		return m.renderHelp()
	}

	var body string
	if m.detail.open() {
		body = m.renderDetail()
	} else {
		switch m.Tab {
		case TabHome:
			body = m.renderHome()
		case TabSearch:
			body = m.renderSearch()
		case TabFavorites:
			body = m.renderFavorites()
		case TabChat:
			body = m.renderChat()
		}
	}

	bodyHeight := max(0, m.Height-TabBarHeight-FooterHeight)
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(styles.ContentStyle.Render(body))

	return lipgloss.JoinVertical(lipgloss.Left, m.renderTabs(), body, m.renderFooter())
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if Tab(i) == m.Tab {
			tabs[i] = styles.ActiveTabStyle.Render(name)
		} else {
			tabs[i] = styles.InactiveTabStyle.Render(name)
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	return styles.TabBarStyle.Width(m.Width).Render(row)
}

// renderFooter renders a single-line minimal footer
func (m Model) renderFooter() string {
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			return styles.ErrorStyle.Render(styles.Truncate(m.StatusMsg, m.Width))
		}
		return styles.SuccessStyle.Render(styles.Truncate(m.StatusMsg, m.Width))
	}
	h := help.New()
	h.Width = m.Width
	return h.ShortHelpView(Keys.ShortHelp())
}

func (m Model) renderHelp() string {
	h := help.New()
	h.Width = m.Width
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Keys"),
		"",
		h.FullHelpView(Keys.FullHelp()),
		"",
		styles.DimStyle.Render("press any key to close"),
	)
}

// renderLoading renders a spinner with a label
func (m Model) renderLoading(label string) string {
	return m.spinner.View() + " " + styles.DimStyle.Render(label)
}

// renderError renders an error state with a retry hint
func renderError(err error) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.ErrorStyle.Render(describeError(err)),
		"",
		styles.DimStyle.Render("press ctrl+r to retry"),
	)
}

func (m Model) heart(id int) string {
	if m.favorited[id] {
		return styles.Heart
	}
	return styles.EmptyHeart
}

// Home

func (m Model) renderHome() string {
	if m.home.err != nil {
		return renderError(m.home.err)
	}
	if m.home.loading && len(m.svc.Feed.Items(domain.SectionTrending)) == 0 {
		return m.renderLoading("Loading movies...")
	}

	parts := []string{m.renderHero()}

	// keep the focused strip on screen
	avail := max(1, (m.Height-TabBarHeight-FooterHeight-HeroHeight)/(StripHeight+1))
	start := 0
	if m.home.row >= avail {
		start = m.home.row - avail + 1
	}
	for i := start; i < len(rowSections) && i < start+avail; i++ {
		parts = append(parts, m.renderStrip(rowSections[i], i == m.home.row))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHero() string {
	hero, ok := m.svc.Feed.Hero()
	if !ok {
		return styles.HeroStyle.Width(max(10, m.Width-4)).Render(styles.DimStyle.Render("No spotlight"))
	}

	meta := []string{}
	if y := hero.Year(); y > 0 {
		meta = append(meta, fmt.Sprint(y))
	}
	if r := hero.Rating(); r != "" {
		meta = append(meta, "★ "+r)
	}
	width := max(10, m.Width-6)
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.AccentStyle.Render(domain.SectionHero.String())+"  "+m.heart(hero.ID)+" "+styles.TitleStyle.Render(hero.Title),
		styles.SubtitleStyle.Render(strings.Join(meta, "  ")),
		styles.DimStyle.Render(styles.Truncate(hero.Overview, width)),
	)
	return styles.HeroStyle.Width(width + 2).Render(content)
}

// renderStrip renders one section as a horizontally scrolling row
func (m Model) renderStrip(sec domain.Section, focused bool) string {
	title := styles.SectionTitleStyle.Render(sec.String())
	if !focused {
		title = styles.SubtitleStyle.Render(sec.String())
	}
	st := m.svc.Feed.State(sec)
	if st.InFlight {
		title += " " + m.spinner.View()
	}

	items := m.svc.Feed.Items(sec)
	var row string
	switch {
	case m.home.failed[sec] != nil && len(items) == 0:
		row = styles.ErrorStyle.Render("failed to load") + styles.DimStyle.Render("  ctrl+r to retry")
	case len(items) == 0:
		row = styles.DimStyle.Render("nothing here")
	default:
		row = m.renderStripItems(sec, items, focused)
		if m.home.failed[sec] != nil {
			row += styles.ErrorStyle.Render("  ! more failed")
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, row)
}

func (m Model) renderStripItems(sec domain.Section, items []domain.FeedItem, focused bool) string {
	const cellWidth = 22
	visible := max(1, (m.Width-4)/(cellWidth+StripGap))
	cursor := m.home.col[sec]
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}

	cells := make([]string, 0, visible)
	for i := start; i < len(items) && i < start+visible; i++ {
		label := items[i].Title()
		if items[i].Kind == domain.KindMovie {
			label = m.heart(items[i].ID()) + " " + label
		}
		label = styles.Truncate(label, cellWidth)
		if focused && i == cursor {
			cells = append(cells, styles.SelectedItemStyle.Width(cellWidth).Render(label))
		} else {
			cells = append(cells, styles.NormalItemStyle.Width(cellWidth).Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// Search

func (m Model) renderSearch() string {
	parts := []string{m.search.input.View(), ""}

	switch {
	case m.search.err != nil:
		parts = append(parts, renderError(m.search.err))
	case m.search.loading && len(m.search.result.Movies) == 0:
		parts = append(parts, m.renderLoading(fmt.Sprintf("Searching for %q...", m.search.result.Query)))
	case m.search.result.Query == "" || !m.search.browse && len(m.search.result.Movies) == 0:
		parts = append(parts, m.renderSuggestions())
	case len(m.search.result.Movies) == 0:
		parts = append(parts, styles.DimStyle.Render(fmt.Sprintf("No movies match %q", m.search.result.Query)))
	default:
		parts = append(parts, m.renderMovieList(m.search.result.Movies, m.search.cursor, m.search.browse))
		if m.search.loading {
			parts = append(parts, m.renderLoading("Loading more..."))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderSuggestions() string {
	recent := m.suggestions()
	if len(recent) == 0 {
		return styles.DimStyle.Render("No recent searches")
	}
	lines := []string{styles.SubtitleStyle.Render("Recent searches")}
	for i, q := range recent {
		if m.search.input.Focused() && i == m.search.cursor {
			lines = append(lines, styles.SelectedItemStyle.Render(q))
		} else {
			lines = append(lines, styles.NormalItemStyle.Render(q))
		}
	}
	lines = append(lines, "", styles.DimStyle.Render("ctrl+x clears history"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderMovieList renders a vertical list of movies around cursor
func (m Model) renderMovieList(movies []domain.Movie, cursor int, focused bool) string {
	rows := m.listHeight()
	start := 0
	if cursor >= rows {
		start = cursor - rows + 1
	}

	lines := make([]string, 0, rows)
	for i := start; i < len(movies) && i < start+rows; i++ {
		lines = append(lines, m.renderMovieRow(movies[i], "", nil, focused && i == cursor))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderMovieRow(mv domain.Movie, title string, matched []int, selected bool) string {
	if title == "" {
		title = mv.Title
	}
	title = styles.HighlightMatches(title, matched, selected)

	meta := ""
	if y := mv.Year(); y > 0 {
		meta = fmt.Sprintf(" (%d)", y)
	}
	if r := mv.Rating(); r != "" {
		meta += "  ★ " + r
	}

	line := m.heart(mv.ID) + " " + title + styles.DimStyle.Render(meta)
	if selected {
		return styles.SelectedItemStyle.Width(max(10, m.Width-4)).Render(line)
	}
	return styles.NormalItemStyle.Render(line)
}

func (m Model) listHeight() int {
	return max(1, m.Height-TabBarHeight-FooterHeight-4)
}

// Favorites

func (m Model) renderFavorites() string {
	if m.favs.err != nil {
		return renderError(m.favs.err)
	}
	if m.favs.loading && !m.favs.loaded {
		return m.renderLoading("Refreshing favorites...")
	}

	favs := m.filteredFavorites()
	header := m.favs.filter.View()
	if !m.favs.filter.Focused() && m.favs.filter.Value() == "" {
		header = styles.SubtitleStyle.Render(fmt.Sprintf("%d favorites", len(favs)))
		if m.favs.loading {
			header += " " + m.spinner.View()
		}
	}

	if len(favs) == 0 {
		empty := "No favorites yet. Press f on any movie."
		if m.favs.filter.Value() != "" {
			empty = "No favorites match."
		}
		return lipgloss.JoinVertical(lipgloss.Left, header, "", styles.DimStyle.Render(empty))
	}

	rows := m.listHeight()
	start := 0
	if m.favs.cursor >= rows {
		start = m.favs.cursor - rows + 1
	}
	lines := []string{header, ""}
	for i := start; i < len(favs) && i < start+rows; i++ {
		f := favs[i]
		lines = append(lines, m.renderMovieRow(f.Favorite.Movie(), f.Title, f.MatchedIndexes, i == m.favs.cursor))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Chat

func (m Model) renderChat() string {
	if m.svc.Chat == nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			styles.TitleStyle.Render("Movie assistant"),
			"",
			styles.DimStyle.Render("Set chat.api_key (or FILMORA_CHAT_API_KEY) to enable chat."),
		)
	}

	status := ""
	switch {
	case m.chat.sending:
		status = m.renderLoading("Thinking...")
	case m.chat.err != nil:
		status = styles.ErrorStyle.Render(describeError(m.chat.err)) + styles.DimStyle.Render("  ctrl+r to retry")
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.chat.view.View(), status, m.chat.input.View())
}

// renderTranscript renders every chat turn for the viewport
func (m Model) renderTranscript() string {
	if len(m.chat.turns) == 0 {
		return styles.DimStyle.Render("Ask for a recommendation, a plot summary or trivia.")
	}
	width := max(10, m.Width-6)
	blocks := make([]string, 0, len(m.chat.turns))
	for _, t := range m.chat.turns {
		if t.FromUser {
			blocks = append(blocks, styles.UserTurnStyle.MaxWidth(width).Render(lipgloss.NewStyle().Width(width-2).Render(t.Text)))
		} else {
			blocks = append(blocks, styles.AssistantTurnStyle.Width(width).Render(t.Text))
		}
	}
	return strings.Join(blocks, "\n\n")
}

// Detail

func (m Model) renderDetail() string {
	if m.detail.err != nil {
		return lipgloss.JoinVertical(lipgloss.Left, renderError(m.detail.err), styles.DimStyle.Render("esc to go back"))
	}
	if m.detail.loading {
		return m.renderLoading("Loading...")
	}
	if m.detail.person != nil {
		return m.renderPerson(m.detail.person)
	}
	if m.detail.bundle == nil {
		return ""
	}

	b := m.detail.bundle
	d := b.Detail
	width := max(10, m.Width-4)

	title := d.Title
	if m.detail.localized != "" {
		title = m.detail.localized + styles.DimStyle.Render("  ("+d.Title+")")
	}

	meta := []string{}
	if y := d.Year(); y > 0 {
		meta = append(meta, fmt.Sprint(y))
	}
	if rt := d.FormattedRuntime(); rt != "" {
		meta = append(meta, rt)
	}
	if r := d.Rating(); r != "" {
		meta = append(meta, "★ "+r)
	}
	if g := d.GenreNames(); len(g) > 0 {
		meta = append(meta, strings.Join(g, ", "))
	}

	parts := []string{
		m.heart(d.ID) + " " + styles.TitleStyle.Render(title),
		styles.SubtitleStyle.Render(strings.Join(meta, " · ")),
		"",
		lipgloss.NewStyle().Width(width).Render(d.Overview),
	}

	if len(b.Cast) > 0 {
		names := make([]string, 0, MaxCastShown)
		for i, c := range b.Cast {
			if i == MaxCastShown {
				break
			}
			names = append(names, c.Name+styles.DimStyle.Render(" as "+c.Character))
		}
		parts = append(parts, "", styles.SectionTitleStyle.Render("Cast"), lipgloss.NewStyle().Width(width).Render(strings.Join(names, ", ")))
	}

	if len(b.Recommendations) > 0 {
		parts = append(parts, "", styles.SectionTitleStyle.Render("Recommended"))
		rows := max(1, m.Height-TabBarHeight-FooterHeight-lipgloss.Height(strings.Join(parts, "\n"))-2)
		start := 0
		if m.detail.cursor >= rows {
			start = m.detail.cursor - rows + 1
		}
		for i := start; i < len(b.Recommendations) && i < start+rows; i++ {
			parts = append(parts, m.renderMovieRow(b.Recommendations[i], "", nil, i == m.detail.cursor))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderPerson(p *domain.Person) string {
	width := max(10, m.Width-4)
	lines := []string{
		styles.HighlightStyle.Render(p.Initials()) + " " + styles.TitleStyle.Render(p.Name),
	}
	if p.Birthday != "" {
		born := "Born " + p.Birthday
		if p.PlaceOfBirth != "" {
			born += " in " + p.PlaceOfBirth
		}
		lines = append(lines, styles.SubtitleStyle.Render(born))
	}
	if p.Deathday != "" {
		lines = append(lines, styles.SubtitleStyle.Render("Died "+p.Deathday))
	}
	bio := p.Biography
	if bio == "" {
		bio = "No biography available."
	}
	lines = append(lines, "", lipgloss.NewStyle().Width(width).Render(bio))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
