package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/filmora/internal/adapter"
	"github.com/mmcdole/filmora/internal/adapter/catalog/tmdb"
	"github.com/mmcdole/filmora/internal/adapter/chat/gemini"
	"github.com/mmcdole/filmora/internal/chat"
	"github.com/mmcdole/filmora/internal/detail"
	"github.com/mmcdole/filmora/internal/domain"
	"github.com/mmcdole/filmora/internal/events"
	"github.com/mmcdole/filmora/internal/favorites"
	"github.com/mmcdole/filmora/internal/feed"
	"github.com/mmcdole/filmora/internal/search"
	"github.com/mmcdole/filmora/internal/store"
	"github.com/mmcdole/filmora/internal/tui"
	"github.com/spf13/cobra"
)

// observer channel depth; the TUI drains it one message per update
const msgBuffer = 64

var errNotConfigured = errors.New("no TMDB access token configured; run `filmora setup` first")

// env carries what every command needs once config is loaded. The open*
// hooks are swapped out in tests.
type env struct {
	cfg    *adapter.Config
	logger *slog.Logger

	loadConfig  func() (*adapter.Config, error)
	saveConfig  func(*adapter.Config) error
	openCatalog func(cfg *adapter.Config, logger *slog.Logger) (domain.CatalogClient, error)
	openStore   func(dir string) (domain.Store, error)

	closers []io.Closer
}

func newEnv() *env {
	return &env{
		loadConfig:  adapter.LoadConfig,
		saveConfig:  adapter.SaveConfig,
		openCatalog: openTMDB,
		openStore:   func(dir string) (domain.Store, error) { return store.NewLocalStore(dir) },
	}
}

func openTMDB(cfg *adapter.Config, logger *slog.Logger) (domain.CatalogClient, error) {
	return tmdb.NewClient(tmdb.Options{
		BaseURL:           cfg.Catalog.BaseURL,
		AccessToken:       cfg.Catalog.AccessToken,
		Locale:            cfg.Catalog.Language,
		Timeout:           cfg.Catalog.Timeout,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
	}, logger)
}

// catalog returns a catalog client, failing when no token is configured
func (e *env) catalog() (domain.CatalogClient, error) {
	if !e.cfg.IsConfigured() {
		return nil, errNotConfigured
	}
	client, err := e.openCatalog(e.cfg, e.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog client: %w", err)
	}
	return client, nil
}

func (e *env) store() (domain.Store, error) {
	st, err := e.openStore(e.cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	e.closers = append(e.closers, st)
	return st, nil
}

// close releases everything opened while running a command, newest first
func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil && e.logger != nil {
			e.logger.Warn("failed to close resource", "error", err)
		}
	}
	e.closers = nil
}

func newRootCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filmora",
		Short: "Browse movies, keep favorites and chat about films from your terminal",
		Long: `Filmora is a terminal client for The Movie Database.

It shows trending, popular, top rated, now playing and upcoming movies,
full movie and person details, search with recent queries, a local
favorites list and, when a Gemini API key is configured, a movie chat.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), e)
		},
	}

	cmd.AddCommand(newSetupCmd(e))
	cmd.AddCommand(newFavoritesCmd(e))
	cmd.AddCommand(newSearchCmd(e))

	return cmd
}

// init loads .env, the config file and the logger
func (e *env) init() error {
	if err := adapter.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := e.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	e.cfg = cfg

	logger, closer, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		e.closers = append(e.closers, closer)
	}
	e.logger = logger
	slog.SetDefault(logger)

	return nil
}

func runTUI(ctx context.Context, e *env) error {
	e.logger.Info("starting filmora", "version", Version)

	client, err := e.catalog()
	if err != nil {
		return err
	}
	st, err := e.store()
	if err != nil {
		return err
	}

	msgs := make(chan tea.Msg, msgBuffer)
	observer := tui.NewChannelObserver(msgs)

	bus := events.NewBus()
	favEvents, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	svc := tui.Services{
		Feed:      feed.NewService(client, observer, e.logger),
		Detail:    detail.NewService(client, e.logger),
		Search:    search.NewService(client, st, e.logger),
		Favorites: favorites.NewService(st, client, bus, observer, e.logger),
		Opener:    adapter.NewLauncher(e.cfg.UI.Browser, e.cfg.UI.BrowserArgs, e.logger),
		Msgs:      msgs,
		Events:    favEvents,
	}

	if e.cfg.ChatEnabled() {
		gc, err := gemini.NewClient(ctx, gemini.Options{
			APIKey:            e.cfg.Chat.APIKey,
			Model:             e.cfg.Chat.Model,
			SystemInstruction: e.cfg.Chat.SystemInstruction,
			MaxHistory:        e.cfg.Chat.MaxHistory,
		}, e.logger)
		if err != nil {
			// The rest of the app works without chat
			e.logger.Error("failed to create chat client", "error", err)
		} else {
			e.closers = append(e.closers, gc)
			svc.Chat = chat.NewSession(gc, e.cfg.Chat.MaxHistory, observer, e.logger)
		}
	}

	model := tui.NewModel(svc, tui.Options{
		Language:    e.cfg.Catalog.Language,
		FeedTimeout: e.cfg.UI.FeedTimeout,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	e.logger.Info("starting TUI")

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		e.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	e.logger.Info("shutting down")
	return nil
}
