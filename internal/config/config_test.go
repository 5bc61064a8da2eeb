package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults without a config file", func(t *testing.T) {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddress)
		assert.Equal(t, "http://zip.getziptastic.com/v2/", cfg.ZiptasticBaseURL)
		assert.Equal(t, "http://api.postcodes.io/postcodes/", cfg.PostcodesBaseURL)
		assert.Equal(t, time.Duration(0), cfg.LookupTimeout)
	})

	t.Run("file values", func(t *testing.T) {
		dir := t.TempDir()
		content := "SERVER_ADDRESS=127.0.0.1:9000\nZIPTASTIC_API_KEY=from-file\nLOOKUP_TIMEOUT=5s\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

		cfg, err := LoadConfig(dir)
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:9000", cfg.ServerAddress)
		assert.Equal(t, "from-file", cfg.ZiptasticAPIKey)
		assert.Equal(t, 5*time.Second, cfg.LookupTimeout)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte("ZIPTASTIC_API_KEY=from-file\n"), 0o600))
		t.Setenv("ZIPTASTIC_API_KEY", "from-env")

		cfg, err := LoadConfig(dir)
		require.NoError(t, err)

		assert.Equal(t, "from-env", cfg.ZiptasticAPIKey)
	})
}

func TestLoadConfig_DotEnv(t *testing.T) {
	t.Run("loads variables", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ZIPTASTIC_API_KEY=from-dotenv\n"), 0o600))
		t.Setenv("ZIPTASTIC_API_KEY", "")
		require.NoError(t, os.Unsetenv("ZIPTASTIC_API_KEY"))
		chdir(t, dir)

		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "from-dotenv", cfg.ZiptasticAPIKey)
	})

	t.Run("unreadable .env is not fatal", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, ".env"), 0o700))
		chdir(t, dir)

		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddress)
	})
}

// chdir mirrors testing.T.Chdir (Go 1.24+): it changes the working
// directory and restores the previous one when the test finishes.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestSetupLogger(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	SetupLogger(Config{LogLevel: "warn", LogFormat: "json"})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	SetupLogger(Config{LogLevel: "nonsense", LogFormat: "json"})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
