package adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "tr_TR.UTF-8")

	cfg := DefaultConfig()
	assert.Equal(t, "tr_TR.UTF-8", cfg.Catalog.Language)
	assert.Equal(t, 30*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 10, cfg.Chat.MaxHistory)
	assert.False(t, cfg.IsConfigured())
	assert.False(t, cfg.ChatEnabled())
}

func TestDefaultLocaleIgnoresPOSIX(t *testing.T) {
	t.Setenv("LC_ALL", "C")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
	assert.Equal(t, "en_US", defaultLocale())
}

func TestLoadConfigWithoutFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Catalog.BaseURL, cfg.Catalog.BaseURL)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg := DefaultConfig()
	cfg.Catalog.AccessToken = "token"
	cfg.Catalog.Timeout = 5 * time.Second
	cfg.Chat.APIKey = "gemini"
	cfg.Storage.Dir = ""
	cfg.UI.Browser = "firefox"
	cfg.UI.BrowserArgs = []string{"--new-tab"}

	require.NoError(t, saveConfig(viper.New(), cfg, dir))

	info, err := os.Stat(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, "token", loaded.Catalog.AccessToken)
	assert.Equal(t, 5*time.Second, loaded.Catalog.Timeout)
	assert.Equal(t, "firefox", loaded.UI.Browser)
	assert.Equal(t, []string{"--new-tab"}, loaded.UI.BrowserArgs)
	assert.Empty(t, loaded.Storage.Dir)
	assert.True(t, loaded.IsConfigured())
	assert.True(t, loaded.ChatEnabled())
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg := DefaultConfig()
	cfg.Catalog.AccessToken = "from-file"
	require.NoError(t, saveConfig(viper.New(), cfg, dir))

	t.Setenv("FILMORA_CATALOG_ACCESS_TOKEN", "from-env")
	t.Setenv("FILMORA_CHAT_MODEL", "gemini-pro")

	loaded, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", loaded.Catalog.AccessToken)
	assert.Equal(t, "gemini-pro", loaded.Chat.Model)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("catalog: [\n"), 0600))

	_, err := loadConfig(viper.New(), dir)
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	// no file is fine
	require.NoError(t, LoadDotEnv())

	require.NoError(t, os.WriteFile(".env", []byte("FILMORA_TEST_DOTENV=loaded\n"), 0600))
	t.Setenv("FILMORA_TEST_DOTENV", "")
	os.Unsetenv("FILMORA_TEST_DOTENV")

	require.NoError(t, LoadDotEnv())
	assert.Equal(t, "loaded", os.Getenv("FILMORA_TEST_DOTENV"))
}
