package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/filmora/internal/domain"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"
	WebBaseURL          = "https://www.themoviedb.org"

	defaultTimeout = 30 * time.Second
	userAgent      = "Filmora/1.0"

	// TMDB allows roughly 50 requests per second per IP; stay under it
	defaultRequestsPerSecond = 40
)

// Options configures a Client
type Options struct {
	BaseURL           string
	AccessToken       string
	Locale            string // e.g. "en_US"; sent as the language parameter
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 uses the default
}

// Client implements domain.CatalogClient for the TMDB v3 API
type Client struct {
	http     *resty.Client
	language string
	limiter  *rate.Limiter
	logger   *slog.Logger
}

var _ domain.CatalogClient = (*Client)(nil)

// NewClient creates a new TMDB API client. It fails with
// domain.ErrInvalidRequest when the base URL is not absolute.
func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: base URL %q", domain.ErrInvalidRequest, baseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetAuthToken(opts.AccessToken).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)

	return &Client{
		http:     rc,
		language: LanguageTag(opts.Locale),
		limiter:  rate.NewLimiter(rate.Limit(rps), max(1, int(math.Ceil(rps)))),
		logger:   logger,
	}, nil
}

// LanguageTag converts a locale identifier ("pt_BR") to the form TMDB
// expects ("pt-BR"). Empty input yields "en-US".
func LanguageTag(locale string) string {
	if locale == "" {
		return "en-US"
	}
	locale, _, _ = strings.Cut(locale, ".") // drop encoding, e.g. en_US.UTF-8
	return strings.ReplaceAll(locale, "_", "-")
}

// Language returns the language tag sent with localized requests
func (c *Client) Language() string { return c.language }

// doRequest performs an authenticated GET. localized controls whether the
// language parameter is sent.
func (c *Client) doRequest(ctx context.Context, path string, params map[string]string, localized bool) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	req := c.http.R().SetContext(ctx)
	if localized {
		req.SetQueryParam("language", c.language)
	}
	req.SetQueryParams(params)

	c.logger.Debug("tmdb request", "path", path, "params", params)

	resp, err := req.Get(path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Error("tmdb request failed", "error", err, "path", path)
		return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}

	body := resp.Body()
	switch status := resp.StatusCode(); {
	case status == http.StatusUnauthorized:
		return nil, domain.ErrAuthFailed
	case status == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case status < 200 || status > 299:
		c.logger.Error("tmdb request error", "status", status, "path", path, "message", statusMessage(body))
		return nil, &domain.StatusError{StatusCode: status, Body: string(body)}
	}

	return body, nil
}

func statusMessage(body []byte) string {
	var e ErrorResponse
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	return e.StatusMessage
}

// get performs a request and decodes the JSON body into a T
func get[T any](ctx context.Context, c *Client, path string, params map[string]string, localized bool) (T, error) {
	var out T
	body, err := c.doRequest(ctx, path, params, localized)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		c.logger.Error("JSON parse error", "error", err, "path", path, "bodyLen", len(body))
		return out, fmt.Errorf("failed to parse response: %w: %w", domain.ErrDecode, err)
	}
	return out, nil
}

func pageParams(page int) map[string]string {
	if page <= 0 {
		page = 1
	}
	return map[string]string{"page": strconv.Itoa(page)}
}

func (c *Client) movieList(ctx context.Context, path string, page int) (domain.Page[domain.Movie], error) {
	resp, err := get[PagedResponse[MovieResult]](ctx, c, path, pageParams(page), true)
	if err != nil {
		return domain.Page[domain.Movie]{}, err
	}
	return MapMoviePage(resp), nil
}

func (c *Client) PopularMovies(ctx context.Context, page int) (domain.Page[domain.Movie], error) {
	return c.movieList(ctx, "/movie/popular", page)
}

func (c *Client) TrendingMovies(ctx context.Context, page int) (domain.Page[domain.Movie], error) {
	return c.movieList(ctx, "/trending/movie/day", page)
}

func (c *Client) TopRatedMovies(ctx context.Context, page int) (domain.Page[domain.Movie], error) {
	return c.movieList(ctx, "/movie/top_rated", page)
}

func (c *Client) NowPlayingMovies(ctx context.Context, page int) (domain.Page[domain.Movie], error) {
	return c.movieList(ctx, "/movie/now_playing", page)
}

func (c *Client) UpcomingMovies(ctx context.Context, page int) (domain.Page[domain.Movie], error) {
	return c.movieList(ctx, "/movie/upcoming", page)
}

func (c *Client) PopularPersons(ctx context.Context, page int) (domain.Page[domain.Person], error) {
	resp, err := get[PagedResponse[PersonResult]](ctx, c, "/person/popular", pageParams(page), true)
	if err != nil {
		return domain.Page[domain.Person]{}, err
	}
	return MapPersonPage(resp), nil
}

// SearchMovies searches movie titles. An empty query is rejected without a request.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (domain.Page[domain.Movie], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Page[domain.Movie]{}, fmt.Errorf("%w: empty query", domain.ErrInvalidRequest)
	}
	params := pageParams(page)
	params["query"] = query

	resp, err := get[PagedResponse[MovieResult]](ctx, c, "/search/movie", params, true)
	if err != nil {
		return domain.Page[domain.Movie]{}, err
	}
	return MapMoviePage(resp), nil
}

func (c *Client) MovieDetail(ctx context.Context, id int) (*domain.MovieDetail, error) {
	resp, err := get[MovieDetails](ctx, c, fmt.Sprintf("/movie/%d", id), nil, true)
	if err != nil {
		return nil, err
	}
	return MapMovieDetail(resp), nil
}

func (c *Client) MovieCredits(ctx context.Context, id int) ([]domain.CastMember, error) {
	resp, err := get[CreditsResponse](ctx, c, fmt.Sprintf("/movie/%d/credits", id), nil, true)
	if err != nil {
		return nil, err
	}
	return MapCast(resp.Cast), nil
}

// MovieRecommendations returns the first page of recommendations
func (c *Client) MovieRecommendations(ctx context.Context, id int) ([]domain.Movie, error) {
	resp, err := get[PagedResponse[MovieResult]](ctx, c, fmt.Sprintf("/movie/%d/recommendations", id), pageParams(1), true)
	if err != nil {
		return nil, err
	}
	return MapMovies(resp.Results), nil
}

func (c *Client) PersonDetail(ctx context.Context, id int) (*domain.Person, error) {
	resp, err := get[PersonResult](ctx, c, fmt.Sprintf("/person/%d", id), nil, true)
	if err != nil {
		return nil, err
	}
	p := MapPerson(resp)
	return &p, nil
}

// MovieTranslations lists every translation; TMDB ignores language here so none is sent
func (c *Client) MovieTranslations(ctx context.Context, id int) ([]domain.Translation, error) {
	resp, err := get[TranslationsResponse](ctx, c, fmt.Sprintf("/movie/%d/translations", id), nil, false)
	if err != nil {
		return nil, err
	}
	return MapTranslations(resp.Translations), nil
}

// ImageURL joins an image path from the API with the image CDN base and a
// size such as "w500" or "original". Returns "" for an empty path.
func ImageURL(base, size, path string) string {
	if path == "" {
		return ""
	}
	if base == "" {
		base = DefaultImageBaseURL
	}
	if size == "" {
		size = "original"
	}
	return strings.TrimRight(base, "/") + "/" + size + "/" + strings.TrimLeft(path, "/")
}

// MovieURL returns the public web page for a movie
func MovieURL(id int) string {
	return fmt.Sprintf("%s/movie/%d", WebBaseURL, id)
}

// IsTransient reports whether err is worth surfacing as "try again later"
// rather than a configuration problem.
func IsTransient(err error) bool {
	var se *domain.StatusError
	switch {
	case errors.Is(err, domain.ErrServerOffline):
		return true
	case errors.As(err, &se):
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	default:
		return false
	}
}
