// Package detail assembles everything the detail screen shows for a movie.
package detail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/filmora/internal/domain"
	"github.com/mmcdole/filmora/internal/fanout"
)

// Service fetches detail bundles from the catalog.
type Service struct {
	client domain.CatalogClient
	logger *slog.Logger
}

// NewService creates a new detail service.
func NewService(client domain.CatalogClient, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, logger: logger}
}

// Fetch requests the detail record, credits and recommendations for id
// concurrently. It succeeds only if all three succeed; on the first failure
// the remaining requests are cancelled and partial results are discarded.
func (s *Service) Fetch(ctx context.Context, id int) (*domain.MovieBundle, error) {
	var (
		detail *domain.MovieDetail
		cast   []domain.CastMember
		recs   []domain.Movie
	)

	err := fanout.First(ctx,
		func(ctx context.Context) error {
			d, err := s.client.MovieDetail(ctx, id)
			if err != nil {
				return fmt.Errorf("detail: %w", err)
			}
			detail = d
			return nil
		},
		func(ctx context.Context) error {
			c, err := s.client.MovieCredits(ctx, id)
			if err != nil {
				return fmt.Errorf("credits: %w", err)
			}
			cast = c
			return nil
		},
		func(ctx context.Context) error {
			r, err := s.client.MovieRecommendations(ctx, id)
			if err != nil {
				return fmt.Errorf("recommendations: %w", err)
			}
			recs = r
			return nil
		},
	)
	if err != nil {
		s.logger.Error("failed to fetch movie bundle", "error", err, "movieID", id)
		return nil, err
	}

	s.logger.Debug("fetched movie bundle", "movieID", id, "cast", len(cast), "recommendations", len(recs))
	return &domain.MovieBundle{
		Detail:          *detail,
		Cast:            domain.DedupeCast(cast),
		Recommendations: domain.DedupeMovies(recs),
	}, nil
}

// Person fetches a cast member's biography.
func (s *Service) Person(ctx context.Context, id int) (*domain.Person, error) {
	p, err := s.client.PersonDetail(ctx, id)
	if err != nil {
		s.logger.Error("failed to fetch person", "error", err, "personID", id)
		return nil, err
	}
	return p, nil
}

// Translations lists the localized variants of a movie.
func (s *Service) Translations(ctx context.Context, id int) ([]domain.Translation, error) {
	ts, err := s.client.MovieTranslations(ctx, id)
	if err != nil {
		s.logger.Error("failed to fetch translations", "error", err, "movieID", id)
		return nil, err
	}
	return ts, nil
}

// LocalizedTitle returns the title of the translation matching lang (an ISO
// 639-1 code, or a locale such as "pt-BR"), falling back to the detail
// record's title when no translation carries one.
func (s *Service) LocalizedTitle(ctx context.Context, id int, lang string) (string, error) {
	var (
		detail *domain.MovieDetail
		ts     []domain.Translation
	)
	err := fanout.First(ctx,
		func(ctx context.Context) (err error) {
			detail, err = s.client.MovieDetail(ctx, id)
			return err
		},
		func(ctx context.Context) (err error) {
			ts, err = s.client.MovieTranslations(ctx, id)
			return err
		},
	)
	if err != nil {
		s.logger.Error("failed to fetch localized title", "error", err, "movieID", id, "lang", lang)
		return "", err
	}

	if t, ok := Match(ts, lang); ok && t.Title != "" {
		return t.Title, nil
	}
	return detail.Title, nil
}

// Match finds the translation for lang. The language part of a locale
// ("pt" in "pt-BR" or "pt_BR") is compared case-insensitively.
func Match(ts []domain.Translation, lang string) (domain.Translation, bool) {
	code, _, _ := strings.Cut(strings.ReplaceAll(lang, "_", "-"), "-")
	for _, t := range ts {
		if strings.EqualFold(t.Language, code) {
			return t, true
		}
	}
	return domain.Translation{}, false
}
