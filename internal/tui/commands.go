package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/filmora/internal/chat"
	"github.com/mmcdole/filmora/internal/detail"
	"github.com/mmcdole/filmora/internal/domain"
	"github.com/mmcdole/filmora/internal/favorites"
	"github.com/mmcdole/filmora/internal/feed"
	"github.com/mmcdole/filmora/internal/search"
)

// Command factories for async operations. Feed, favorites and chat results
// arrive through the ChannelObserver; the rest return their message.

// Opener opens a web page outside the terminal
type Opener interface {
	Open(url string) error
}

// FetchFeedCmd loads every home section; reset starts over from page 1
func FetchFeedCmd(svc *feed.Service, reset bool, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		svc.FetchAll(ctx, reset)
		return nil
	}
}

// LoadMoreCmd loads the next page of one section
func LoadMoreCmd(svc *feed.Service, sec domain.Section, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		svc.LoadMore(ctx, sec)
		return nil
	}
}

// FetchDetailCmd loads a movie's detail, cast and recommendations
func FetchDetailCmd(svc *detail.Service, id int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		bundle, err := svc.Fetch(ctx, id)
		if err != nil {
			return DetailFailedMsg{ID: id, Err: err}
		}
		return DetailLoadedMsg{ID: id, Bundle: bundle}
	}
}

// LocalizedTitleCmd looks up a movie's title in lang. Failures are silent;
// the catalog title stays on screen.
func LocalizedTitleCmd(svc *detail.Service, id int, lang string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		title, err := svc.LocalizedTitle(ctx, id, lang)
		if err != nil || title == "" {
			return nil
		}
		return LocalizedTitleMsg{ID: id, Title: title}
	}
}

// FetchPersonCmd loads a person's profile
func FetchPersonCmd(svc *detail.Service, id int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		p, err := svc.Person(ctx, id)
		if err != nil {
			return PersonFailedMsg{ID: id, Err: err}
		}
		return PersonLoadedMsg{Person: p}
	}
}

// SearchCmd runs a new search
func SearchCmd(svc *search.Service, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		res, err := svc.Search(ctx, query)
		if errors.Is(err, search.ErrBusy) {
			return nil
		}
		if err != nil {
			return SearchFailedMsg{Query: query, Err: err}
		}
		return SearchResultsMsg{Result: res}
	}
}

// SearchMoreCmd appends the next page of the current search
func SearchMoreCmd(svc *search.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		res, err := svc.LoadMore(ctx)
		if errors.Is(err, search.ErrBusy) {
			return nil
		}
		if err != nil {
			return SearchFailedMsg{Query: res.Query, Err: err}
		}
		return SearchResultsMsg{Result: res}
	}
}

// LoadFavoritesCmd reads and reconciles favorites
func LoadFavoritesCmd(svc *favorites.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		if _, err := svc.Load(ctx); err != nil {
			return ErrMsg{Err: err, Context: "loading favorites"}
		}
		return nil
	}
}

// ToggleFavoriteCmd adds or removes a favorite. The bus reports the change.
func ToggleFavoriteCmd(svc *favorites.Service, m domain.Movie) tea.Cmd {
	return func() tea.Msg {
		on, err := svc.Toggle(m)
		if err != nil {
			return ErrMsg{Err: err, Context: "updating favorites"}
		}
		if on {
			return StatusMsg{Message: fmt.Sprintf("Added %q to favorites", m.Title)}
		}
		return StatusMsg{Message: fmt.Sprintf("Removed %q from favorites", m.Title)}
	}
}

// RemoveFavoriteCmd removes a favorite by ID
func RemoveFavoriteCmd(svc *favorites.Service, id int) tea.Cmd {
	return func() tea.Msg {
		if err := svc.Remove(id); err != nil {
			return ErrMsg{Err: err, Context: "removing favorite"}
		}
		return nil
	}
}

// SendChatCmd sends a chat message. Turns and errors arrive via the observer.
func SendChatCmd(session *chat.Session, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		session.Send(ctx, text)
		return nil
	}
}

// RetryChatCmd asks again for a reply to the last message
func RetryChatCmd(session *chat.Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		if _, err := session.Retry(ctx); errors.Is(err, chat.ErrNothingToRetry) {
			return StatusMsg{Message: "Nothing to retry"}
		}
		return nil
	}
}

// OpenURLCmd opens url in the browser
func OpenURLCmd(opener Opener, url string) tea.Cmd {
	return func() tea.Msg {
		if err := opener.Open(url); err != nil {
			return ErrMsg{Err: err, Context: "opening browser"}
		}
		return StatusMsg{Message: "Opened in browser"}
	}
}

// ClearStatusCmd clears the status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
