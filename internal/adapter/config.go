package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Storage StorageConfig `mapstructure:"storage"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CatalogConfig holds movie catalog API configuration
type CatalogConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	ImageBaseURL      string        `mapstructure:"image_base_url"`
	AccessToken       string        `mapstructure:"access_token"` // TMDB v4 read access token
	Language          string        `mapstructure:"language"`     // locale, e.g. "en_US"
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// ChatConfig holds movie assistant configuration
type ChatConfig struct {
	APIKey            string `mapstructure:"api_key"`
	Model             string `mapstructure:"model"`
	SystemInstruction string `mapstructure:"system_instruction"` // empty uses the built-in persona
	MaxHistory        int    `mapstructure:"max_history"`        // at most 10
}

// StorageConfig holds local persistence configuration
type StorageConfig struct {
	Dir string `mapstructure:"dir"` // empty keeps favorites in memory only
}

// UIConfig holds UI configuration
type UIConfig struct {
	Browser     string        `mapstructure:"browser"` // empty for system default
	BrowserArgs []string      `mapstructure:"browser_args"`
	FeedTimeout time.Duration `mapstructure:"feed_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			BaseURL:           "https://api.themoviedb.org/3",
			ImageBaseURL:      "https://image.tmdb.org/t/p",
			Language:          defaultLocale(),
			Timeout:           30 * time.Second,
			RequestsPerSecond: 40,
		},
		Chat: ChatConfig{
			Model:      "gemini-1.5-flash",
			MaxHistory: 10,
		},
		Storage: StorageConfig{
			Dir: defaultDataPath(),
		},
		UI: UIConfig{
			FeedTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			File:       defaultLogPath(),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// defaultLocale derives the catalog locale from the environment, the way a
// POSIX shell exposes it.
func defaultLocale() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" && v != "C" && v != "POSIX" {
			return v
		}
	}
	return "en_US"
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	return filepath.Join(defaultDataPath(), "filmora.log")
}

// defaultDataPath returns the directory holding the database and logs
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "filmora")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "filmora")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "filmora")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "filmora")
	}
}

// ConfigPath returns the file SaveConfig writes to
func ConfigPath() string {
	return filepath.Join(defaultConfigPath(), "config.yaml")
}

// LoadDotEnv loads variables from a .env file in the working directory, if
// present. Existing environment variables win.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error reading .env file: %w", err)
	}
	return nil
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return loadConfig(viper.GetViper(), defaultConfigPath())
}

func loadConfig(v *viper.Viper, configDir string) (*Config, error) {
	cfg := DefaultConfig()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Environment variable overrides, e.g. FILMORA_CATALOG_ACCESS_TOKEN
	v.SetEnvPrefix("FILMORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// configKeys lists every key so AutomaticEnv can see them before a file
// has set them.
var configKeys = []string{
	"catalog.base_url",
	"catalog.image_base_url",
	"catalog.access_token",
	"catalog.language",
	"catalog.timeout",
	"catalog.requests_per_second",
	"chat.api_key",
	"chat.model",
	"chat.system_instruction",
	"chat.max_history",
	"storage.dir",
	"ui.browser",
	"ui.browser_args",
	"ui.feed_timeout",
	"logging.file",
	"logging.level",
	"logging.max_size_mb",
	"logging.max_backups",
}

func bindEnv(v *viper.Viper) {
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	return saveConfig(viper.GetViper(), cfg, defaultConfigPath())
}

func saveConfig(v *viper.Viper, cfg *Config, configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("catalog.base_url", cfg.Catalog.BaseURL)
	v.Set("catalog.image_base_url", cfg.Catalog.ImageBaseURL)
	v.Set("catalog.access_token", cfg.Catalog.AccessToken)
	v.Set("catalog.language", cfg.Catalog.Language)
	v.Set("catalog.timeout", cfg.Catalog.Timeout.String())
	v.Set("catalog.requests_per_second", cfg.Catalog.RequestsPerSecond)

	v.Set("chat.api_key", cfg.Chat.APIKey)
	v.Set("chat.model", cfg.Chat.Model)
	v.Set("chat.system_instruction", cfg.Chat.SystemInstruction)
	v.Set("chat.max_history", cfg.Chat.MaxHistory)

	v.Set("storage.dir", cfg.Storage.Dir)

	v.Set("ui.browser", cfg.UI.Browser)
	v.Set("ui.browser_args", cfg.UI.BrowserArgs)
	v.Set("ui.feed_timeout", cfg.UI.FeedTimeout.String())

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	v.Set("logging.max_backups", cfg.Logging.MaxBackups)

	configFile := filepath.Join(configDir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	// Secrets live here; keep the file private
	if err := os.Chmod(configFile, 0600); err != nil {
		return fmt.Errorf("failed to restrict config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if the catalog access token is set
func (c *Config) IsConfigured() bool {
	return c.Catalog.AccessToken != ""
}

// ChatEnabled returns true if the movie assistant can be used
func (c *Config) ChatEnabled() bool {
	return c.Chat.APIKey != ""
}
