package domain

// FavoritesStore persists favorited movies locally, keyed by catalog ID.
// Every mutation is committed before it returns.
type FavoritesStore interface {
	AddFavorite(m Movie) error
	RemoveFavorite(id int) error
	UpdateFavorite(id int, title, posterPath string) error
	IsFavorite(id int) bool
	Favorites() ([]Favorite, error)
	FavoriteCount() int
}

// SearchHistory persists recently submitted search queries, most recent first.
type SearchHistory interface {
	RecentSearches() []string
	AddRecentSearch(query string) error
	RemoveRecentSearch(query string) error
	ClearRecentSearches() error
}

// Store is the process-wide local store (BoltDB + memory).
type Store interface {
	FavoritesStore
	SearchHistory

	Close() error
}

// FavoritesChanged is broadcast whenever a movie is favorited or unfavorited.
type FavoritesChanged struct {
	MovieID   int
	Favorited bool
}
