package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/filmora/internal/chat"
	"github.com/mmcdole/filmora/internal/domain"
	"github.com/mmcdole/filmora/internal/events"
	"github.com/mmcdole/filmora/internal/favorites"
	"github.com/mmcdole/filmora/internal/feed"
)

// ChannelObserver adapts the service observers to a channel for Bubble Tea.
type ChannelObserver struct {
	ch chan<- tea.Msg
}

var (
	_ feed.Observer      = (*ChannelObserver)(nil)
	_ favorites.Observer = (*ChannelObserver)(nil)
	_ chat.Observer      = (*ChannelObserver)(nil)
)

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver(ch chan<- tea.Msg) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// send delivers msg (non-blocking if full).
func (o *ChannelObserver) send(msg tea.Msg) {
	select {
	case o.ch <- msg:
	default: // Non-blocking if channel full
	}
}

func (o *ChannelObserver) OnUpdate(u feed.Update) { o.send(FeedUpdatedMsg{Update: u}) }

func (o *ChannelObserver) OnError(e feed.SectionError) { o.send(FeedErrorMsg{Err: e}) }

func (o *ChannelObserver) OnFavoritesLoaded(favs []domain.Favorite) {
	o.send(FavoritesLoadedMsg{Favorites: favs})
}

func (o *ChannelObserver) OnTurns(turns []domain.ChatTurn) { o.send(ChatTurnsMsg{Turns: turns}) }

func (o *ChannelObserver) OnChatError(err error) { o.send(ChatFailedMsg{Err: err}) }

// WaitForMsg blocks until an observer delivers the next message.
func WaitForMsg(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// WaitForEvent blocks until the event bus delivers a favorites change.
func WaitForEvent(ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		for e := range ch {
			if change, ok := e.(domain.FavoritesChanged); ok {
				return FavoriteChangedMsg{Change: change}
			}
		}
		return nil
	}
}
