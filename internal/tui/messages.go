package tui

import (
	"github.com/mmcdole/filmora/internal/domain"
	"github.com/mmcdole/filmora/internal/feed"
	"github.com/mmcdole/filmora/internal/search"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// FeedUpdatedMsg carries a completed feed fetch or page load
type FeedUpdatedMsg struct {
	Update feed.Update
}

// FeedErrorMsg carries one failed section request
type FeedErrorMsg struct {
	Err feed.SectionError
}

// DetailLoadedMsg signals that a movie's detail bundle is ready
type DetailLoadedMsg struct {
	ID     int
	Bundle *domain.MovieBundle
}

// DetailFailedMsg signals that a movie's detail could not be loaded
type DetailFailedMsg struct {
	ID  int
	Err error
}

// LocalizedTitleMsg carries a movie title in the configured language
type LocalizedTitleMsg struct {
	ID    int
	Title string
}

// PersonLoadedMsg signals that a person's profile is ready
type PersonLoadedMsg struct {
	Person *domain.Person
}

// PersonFailedMsg signals that a person's profile could not be loaded
type PersonFailedMsg struct {
	ID  int
	Err error
}

// SearchResultsMsg signals that search results are ready
type SearchResultsMsg struct {
	Result search.Result
}

// SearchFailedMsg signals that a search request failed
type SearchFailedMsg struct {
	Query string
	Err   error
}

// FavoritesLoadedMsg signals that favorites were read and reconciled
type FavoritesLoadedMsg struct {
	Favorites []domain.Favorite
}

// FavoriteChangedMsg relays a favorites change from the event bus
type FavoriteChangedMsg struct {
	Change domain.FavoritesChanged
}

// ChatTurnsMsg carries the chat transcript after a change
type ChatTurnsMsg struct {
	Turns []domain.ChatTurn
}

// ChatFailedMsg signals that the assistant did not reply
type ChatFailedMsg struct {
	Err error
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
