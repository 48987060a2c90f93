package tmdb

import (
	"github.com/mmcdole/filmora/internal/domain"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// MapMovies converts TMDB list results to domain movies
func MapMovies(results []MovieResult) []domain.Movie {
	movies := make([]domain.Movie, 0, len(results))
	for _, r := range results {
		movies = append(movies, mapMovie(r))
	}
	return movies
}

func mapMovie(r MovieResult) domain.Movie {
	return domain.Movie{
		ID:           r.ID,
		Title:        r.Title,
		PosterPath:   deref(r.PosterPath),
		ReleaseDate:  r.ReleaseDate,
		VoteAverage:  r.VoteAverage,
		BackdropPath: deref(r.BackdropPath),
		Overview:     r.Overview,
	}
}

// MapMoviePage converts a paginated movie listing
func MapMoviePage(p PagedResponse[MovieResult]) domain.Page[domain.Movie] {
	return domain.Page[domain.Movie]{
		Page:         p.Page,
		Results:      MapMovies(p.Results),
		TotalPages:   p.TotalPages,
		TotalResults: p.TotalResults,
	}
}

// MapPersonPage converts a paginated person listing
func MapPersonPage(p PagedResponse[PersonResult]) domain.Page[domain.Person] {
	persons := make([]domain.Person, 0, len(p.Results))
	for _, r := range p.Results {
		persons = append(persons, MapPerson(r))
	}
	return domain.Page[domain.Person]{
		Page:         p.Page,
		Results:      persons,
		TotalPages:   p.TotalPages,
		TotalResults: p.TotalResults,
	}
}

// MapPerson converts a TMDB person
func MapPerson(r PersonResult) domain.Person {
	return domain.Person{
		ID:           r.ID,
		Name:         r.Name,
		Biography:    r.Biography,
		Birthday:     deref(r.Birthday),
		Deathday:     deref(r.Deathday),
		PlaceOfBirth: deref(r.PlaceOfBirth),
		ProfilePath:  deref(r.ProfilePath),
	}
}

// MapMovieDetail converts the detail response
func MapMovieDetail(d MovieDetails) *domain.MovieDetail {
	detail := &domain.MovieDetail{
		Movie:            mapMovie(d.MovieResult),
		OriginalTitle:    d.OriginalTitle,
		OriginalLanguage: d.OriginalLanguage,
		Budget:           d.Budget,
		Revenue:          d.Revenue,
		Runtime:          d.Runtime,
		Homepage:         d.Homepage,
	}
	for _, g := range d.Genres {
		detail.Genres = append(detail.Genres, domain.Genre{ID: g.ID, Name: g.Name})
	}
	for _, c := range d.ProductionCompanies {
		detail.ProductionCompanies = append(detail.ProductionCompanies, domain.ProductionCompany{
			ID:            c.ID,
			Name:          c.Name,
			LogoPath:      deref(c.LogoPath),
			OriginCountry: c.OriginCountry,
		})
	}
	return detail
}

// MapCast converts credits, preserving billing order
func MapCast(cast []CastResult) []domain.CastMember {
	members := make([]domain.CastMember, 0, len(cast))
	for _, c := range cast {
		members = append(members, domain.CastMember{
			ID:          c.ID,
			Name:        c.Name,
			Character:   c.Character,
			ProfilePath: deref(c.ProfilePath),
		})
	}
	return members
}

// MapTranslations converts translations
func MapTranslations(ts []Translation) []domain.Translation {
	out := make([]domain.Translation, 0, len(ts))
	for _, t := range ts {
		out = append(out, domain.Translation{
			Language:    t.ISO639,
			Name:        t.Name,
			EnglishName: t.EnglishName,
			Title:       t.Data.Title,
			Overview:    t.Data.Overview,
		})
	}
	return out
}
