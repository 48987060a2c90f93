package domain

import (
	"context"
)

// MovieListFunc fetches one page of a movie listing.
type MovieListFunc func(ctx context.Context, page int) (Page[Movie], error)

// CatalogClient provides access to the remote movie catalog.
// Implemented by the TMDB adapter.
type CatalogClient interface {
	// Paginated listings; page starts at 1
	PopularMovies(ctx context.Context, page int) (Page[Movie], error)
	TrendingMovies(ctx context.Context, page int) (Page[Movie], error)
	TopRatedMovies(ctx context.Context, page int) (Page[Movie], error)
	NowPlayingMovies(ctx context.Context, page int) (Page[Movie], error)
	UpcomingMovies(ctx context.Context, page int) (Page[Movie], error)
	PopularPersons(ctx context.Context, page int) (Page[Person], error)
	SearchMovies(ctx context.Context, query string, page int) (Page[Movie], error)

	// Single-record lookups
	MovieDetail(ctx context.Context, id int) (*MovieDetail, error)
	MovieCredits(ctx context.Context, id int) ([]CastMember, error)
	MovieRecommendations(ctx context.Context, id int) ([]Movie, error)
	PersonDetail(ctx context.Context, id int) (*Person, error)
	MovieTranslations(ctx context.Context, id int) ([]Translation, error)
}

// ChatClient sends a conversation to a generative-language model and returns
// the assistant's reply text.
type ChatClient interface {
	// Reply sends turns (oldest first, the last one being the new user turn)
	// and returns the text of the first candidate.
	Reply(ctx context.Context, turns []ChatTurn) (string, error)
}
