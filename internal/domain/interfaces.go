package domain

// ContentKind identifies what a feed section holds.
type ContentKind int

const (
	KindMovie ContentKind = iota
	KindPerson
)

// String returns "movie" or "person".
func (k ContentKind) String() string {
	switch k {
	case KindMovie:
		return "movie"
	case KindPerson:
		return "person"
	default:
		return "unknown"
	}
}

// FeedItem is the tagged union stored in feed sections.
// Exactly one of Movie or Person is set, matching Kind.
type FeedItem struct {
	Kind   ContentKind
	Movie  *Movie
	Person *Person
}

// MovieItem wraps a movie as a feed item.
func MovieItem(m Movie) FeedItem { return FeedItem{Kind: KindMovie, Movie: &m} }

// PersonItem wraps a person as a feed item.
func PersonItem(p Person) FeedItem { return FeedItem{Kind: KindPerson, Person: &p} }

// ID returns the catalog ID of the wrapped entity.
func (f FeedItem) ID() int {
	switch f.Kind {
	case KindMovie:
		if f.Movie != nil {
			return f.Movie.ID
		}
	case KindPerson:
		if f.Person != nil {
			return f.Person.ID
		}
	}
	return 0
}

// Title returns the display title (movie title or person name).
func (f FeedItem) Title() string {
	switch f.Kind {
	case KindMovie:
		if f.Movie != nil {
			return f.Movie.Title
		}
	case KindPerson:
		if f.Person != nil {
			return f.Person.Name
		}
	}
	return ""
}

// Section identifies one independently paginated feed on the home screen.
type Section int

const (
	SectionHero Section = iota
	SectionTrending
	SectionPopularMovies
	SectionTopRated
	SectionUpcoming
	SectionNowPlaying
	SectionPopularPersons
)

// Sections lists every home section in display order.
var Sections = []Section{
	SectionHero,
	SectionTrending,
	SectionPopularMovies,
	SectionTopRated,
	SectionUpcoming,
	SectionNowPlaying,
	SectionPopularPersons,
}

// Kind returns the content kind the section holds.
func (s Section) Kind() ContentKind {
	if s == SectionPopularPersons {
		return KindPerson
	}
	return KindMovie
}

// Pageable reports whether the section supports load-more.
// The hero spotlight is a single pick and never pages.
func (s Section) Pageable() bool { return s != SectionHero }

// String returns the section's display name.
func (s Section) String() string {
	switch s {
	case SectionHero:
		return "Spotlight"
	case SectionTrending:
		return "Trending Today"
	case SectionPopularMovies:
		return "Popular"
	case SectionTopRated:
		return "Top Rated"
	case SectionUpcoming:
		return "Upcoming"
	case SectionNowPlaying:
		return "Now Playing"
	case SectionPopularPersons:
		return "Popular People"
	default:
		return "Unknown"
	}
}
