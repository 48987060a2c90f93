package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mmcdole/filmora/internal/adapter"
	"github.com/mmcdole/filmora/internal/adapter/catalog/catalogtest"
	"github.com/mmcdole/filmora/internal/domain"
	"github.com/mmcdole/filmora/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	env     *env
	cfg     *adapter.Config
	catalog *catalogtest.Catalog
	store   *store.LocalStore
	saved   *adapter.Config
}

func newHarness(t *testing.T, token string) *harness {
	t.Helper()

	cfg := adapter.DefaultConfig()
	cfg.Catalog.AccessToken = token
	cfg.Storage.Dir = ""
	cfg.Logging.File = filepath.Join(t.TempDir(), "filmora.log")

	st, err := store.NewLocalStore("")
	require.NoError(t, err)

	h := &harness{cfg: cfg, catalog: &catalogtest.Catalog{PageSize: 2}, store: st}
	h.env = &env{
		loadConfig: func() (*adapter.Config, error) { return h.cfg, nil },
		saveConfig: func(c *adapter.Config) error {
			saved := *c
			h.saved = &saved
			return nil
		},
		openCatalog: func(*adapter.Config, *slog.Logger) (domain.CatalogClient, error) {
			return h.catalog, nil
		},
		openStore: func(string) (domain.Store, error) { return h.store, nil },
	}
	return h
}

func (h *harness) run(t *testing.T, in string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(h.env)
	var out bytes.Buffer
	root.SetArgs(args)
	root.SetIn(strings.NewReader(in))
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())
	h.env.close()
	return out.String(), err
}

func TestRootRequiresToken(t *testing.T) {
	h := newHarness(t, "")

	_, err := h.run(t, "")
	require.ErrorIs(t, err, errNotConfigured)
	assert.Contains(t, err.Error(), "filmora setup")
}

func TestSearchPrintsResults(t *testing.T) {
	h := newHarness(t, "token")
	h.catalog.Lists = map[string][]domain.Movie{
		catalogtest.Search: {
			{ID: 1, Title: "Heat", ReleaseDate: "1995-12-15", VoteAverage: 7.9},
			{ID: 2, Title: "Heathers", ReleaseDate: "1989-03-31"},
			{ID: 3, Title: "Heat Lightning"},
			{ID: 4, Title: "Alien"},
		},
	}

	out, err := h.run(t, "", "search", "heat")
	require.NoError(t, err)
	assert.Contains(t, out, "Heat")
	assert.Contains(t, out, "1995")
	assert.Contains(t, out, "7.9")
	assert.Contains(t, out, "Heathers")
	assert.NotContains(t, out, "Heat Lightning")
	assert.Contains(t, out, "page 1 of 2")
	assert.Equal(t, []string{"heat"}, h.store.RecentSearches())

	out, err = h.run(t, "", "search", "--pages", "2", "heat")
	require.NoError(t, err)
	assert.Contains(t, out, "Heat Lightning")
	assert.NotContains(t, out, "page ")
}

func TestSearchNoResults(t *testing.T) {
	h := newHarness(t, "token")

	out, err := h.run(t, "", "search", "nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "No results")
}

func TestFavoritesList(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, h.store.AddFavorite(domain.Movie{ID: 238, Title: "The Godfather"}))
	require.NoError(t, h.store.AddFavorite(domain.Movie{ID: 949, Title: "Heat"}))

	// Listing works offline
	out, err := h.run(t, "", "favorites", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "The Godfather")
	assert.Contains(t, out, "Heat")

	out, err = h.run(t, "", "favorites", "list", "--filter", "godf")
	require.NoError(t, err)
	assert.Contains(t, out, "The Godfather")
	assert.NotContains(t, out, "Heat")
}

func TestFavoritesListEmpty(t *testing.T) {
	h := newHarness(t, "")

	out, err := h.run(t, "", "favs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No favorites yet")
}

func TestFavoritesRefreshReportsRenames(t *testing.T) {
	h := newHarness(t, "token")
	require.NoError(t, h.store.AddFavorite(domain.Movie{ID: 1, Title: "Old Title"}))
	require.NoError(t, h.store.AddFavorite(domain.Movie{ID: 2, Title: "Same"}))
	h.catalog.Details = map[int]*domain.MovieDetail{
		1: {Movie: domain.Movie{ID: 1, Title: "New Title"}},
		2: {Movie: domain.Movie{ID: 2, Title: "Same"}},
	}

	out, err := h.run(t, "", "favorites", "refresh")
	require.NoError(t, err)
	assert.Contains(t, out, `1: "Old Title" -> "New Title"`)
	assert.Contains(t, out, "2 favorites, 1 updated")

	favs, err := h.store.Favorites()
	require.NoError(t, err)
	titles := map[int]string{}
	for _, f := range favs {
		titles[f.ID] = f.Title
	}
	assert.Equal(t, "New Title", titles[1])
}

func TestSetupSavesCredentials(t *testing.T) {
	h := newHarness(t, "")
	h.cfg.Catalog.Language = "en_US"

	out, err := h.run(t, "\nmy-token\ngemini-key\nde_DE\n", "setup")
	require.NoError(t, err)
	assert.Contains(t, out, "Access token cannot be empty")
	assert.Contains(t, out, "Configuration saved")

	require.NotNil(t, h.saved)
	assert.Equal(t, "my-token", h.saved.Catalog.AccessToken)
	assert.Equal(t, "gemini-key", h.saved.Chat.APIKey)
	assert.Equal(t, "de_DE", h.saved.Catalog.Language)
}

func TestSetupKeepsExistingValues(t *testing.T) {
	h := newHarness(t, "old-token")
	h.cfg.Catalog.Language = "fr_FR"

	out, err := h.run(t, "\n\n\n", "setup")
	require.NoError(t, err)
	assert.Contains(t, out, "Chat is disabled")

	require.NotNil(t, h.saved)
	assert.Equal(t, "old-token", h.saved.Catalog.AccessToken)
	assert.Empty(t, h.saved.Chat.APIKey)
	assert.Equal(t, "fr_FR", h.saved.Catalog.Language)
}

func TestSetupFailsOnClosedInput(t *testing.T) {
	h := newHarness(t, "")

	_, err := h.run(t, "", "setup")
	require.Error(t, err)
	assert.Nil(t, h.saved)
}
