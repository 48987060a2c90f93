package domain

import (
	"fmt"
	"strings"
	"time"
)

// Movie is a catalog item as it appears in lists and search results.
//
// Identity is the catalog ID alone. Title and PosterPath are display fields
// that may drift from the canonical record (favorites are reconciled against
// it), so two Movies with the same ID are the same entity even when those
// fields differ. Use Same or Key for comparisons, never ==.
type Movie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	PosterPath   string  `json:"poster_path,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	VoteAverage  float64 `json:"vote_average,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	Overview     string  `json:"overview,omitempty"`
}

// Same reports whether m and other are the same catalog entity.
// Only the ID is compared; this is intentional, see Movie.
func (m Movie) Same(other Movie) bool { return m.ID == other.ID }

// Key returns the identity used for set membership.
func (m Movie) Key() int { return m.ID }

// Year returns the release year, or 0 if the release date is missing or malformed.
func (m Movie) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	var y int
	if _, err := fmt.Sscanf(m.ReleaseDate[:4], "%d", &y); err != nil {
		return 0
	}
	return y
}

// Rating returns the vote average formatted to one decimal ("7.4"), or "" when unrated.
func (m Movie) Rating() string {
	if m.VoteAverage <= 0 {
		return ""
	}
	return fmt.Sprintf("%.1f", m.VoteAverage)
}

// Person is a person summary from the popular-persons feed or a person detail lookup.
type Person struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Biography    string `json:"biography,omitempty"`
	Birthday     string `json:"birthday,omitempty"`
	Deathday     string `json:"deathday,omitempty"`
	PlaceOfBirth string `json:"place_of_birth,omitempty"`
	ProfilePath  string `json:"profile_path,omitempty"`
}

// Initials returns up to two initials of the person's name, used when no
// profile image is available.
func (p Person) Initials() string {
	var out []rune
	for _, part := range strings.Fields(p.Name) {
		out = append(out, []rune(part)[0])
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}

// CastMember is one credit entry of a movie.
// Identity is the person ID; Same compares only that.
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// Same reports whether c and other credit the same person.
func (c CastMember) Same(other CastMember) bool { return c.ID == other.ID }

// Key returns the identity used for set membership.
func (c CastMember) Key() int { return c.ID }

// Genre is a catalog genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ProductionCompany is a studio credited on a movie.
type ProductionCompany struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	LogoPath      string `json:"logo_path,omitempty"`
	OriginCountry string `json:"origin_country,omitempty"`
}

// MovieDetail is the canonical detail record of a movie.
type MovieDetail struct {
	Movie

	OriginalTitle       string              `json:"original_title,omitempty"`
	OriginalLanguage    string              `json:"original_language,omitempty"`
	Genres              []Genre             `json:"genres,omitempty"`
	ProductionCompanies []ProductionCompany `json:"production_companies,omitempty"`
	Budget              int64               `json:"budget,omitempty"`
	Revenue             int64               `json:"revenue,omitempty"`
	Runtime             int                 `json:"runtime,omitempty"` // minutes
	Homepage            string              `json:"homepage,omitempty"`
}

// GenreNames returns the genre names in catalog order.
func (d MovieDetail) GenreNames() []string {
	names := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		names = append(names, g.Name)
	}
	return names
}

// FormattedRuntime returns the runtime as "2h 5m" or "" when unknown.
func (d MovieDetail) FormattedRuntime() string {
	if d.Runtime <= 0 {
		return ""
	}
	dur := time.Duration(d.Runtime) * time.Minute
	h := int(dur.Hours())
	mins := int(dur.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// MovieBundle is everything the detail screen renders for one movie.
type MovieBundle struct {
	Detail          MovieDetail
	Cast            []CastMember
	Recommendations []Movie
}

// Translation is one localized variant of a movie's title and overview.
type Translation struct {
	Language    string `json:"iso_639_1"`
	Name        string `json:"name"`
	EnglishName string `json:"english_name"`
	Title       string `json:"title,omitempty"`
	Overview    string `json:"overview,omitempty"`
}

// Page is one page of a paginated catalog listing.
type Page[T any] struct {
	Page         int
	Results      []T
	TotalPages   int
	TotalResults int
}

// Favorite is a locally persisted favorited movie.
type Favorite struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	PosterPath string    `json:"poster_path,omitempty"`
	AddedAt    time.Time `json:"added_at"`
}

// Movie converts the favorite back into a list item for display.
func (f Favorite) Movie() Movie {
	return Movie{ID: f.ID, Title: f.Title, PosterPath: f.PosterPath}
}

// ChatTurn is one message of a chat session.
type ChatTurn struct {
	ID       string
	Text     string
	FromUser bool
	SentAt   time.Time
}

// DedupeMovies removes movies with a repeated ID, keeping the first occurrence.
func DedupeMovies(movies []Movie) []Movie {
	return dedupe(movies, Movie.Key)
}

// DedupeCast removes cast entries with a repeated person ID, keeping the first occurrence.
func DedupeCast(cast []CastMember) []CastMember {
	return dedupe(cast, CastMember.Key)
}

func dedupe[T any](items []T, key func(T) int) []T {
	if items == nil {
		return nil
	}
	seen := make(map[int]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}
