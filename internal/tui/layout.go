package tui

// Chat layout: input line plus status line below the transcript
const chatChromeHeight = 3

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}

	contentHeight := m.Height - TabBarHeight - FooterHeight
	inputWidth := max(10, m.Width-6)

	m.search.input.Width = inputWidth
	m.favs.filter.Width = inputWidth
	m.chat.input.Width = inputWidth

	m.chat.view.Width = max(10, m.Width-2)
	m.chat.view.Height = max(1, contentHeight-chatChromeHeight)
	m.refreshChatView()
}

// refreshChatView re-renders the transcript and scrolls to the newest turn
func (m *Model) refreshChatView() {
	m.chat.view.SetContent(m.renderTranscript())
	m.chat.view.GotoBottom()
}
