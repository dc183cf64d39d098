package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "KUKA_DB", "KUKA_DB_DRIVER", "BRASILAPI_URL", "KUKA_DEBUG"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "kukacrm", cfg.Name)
	assert.Equal(t, DriverModernc, cfg.Storage.Driver)
	assert.Equal(t, int32(32768), cfg.Gemini.ThinkingBudget)
	assert.Equal(t, "gemini-3-pro-preview", cfg.Gemini.AnalysisModel)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.MapsModel)
	assert.False(t, cfg.Logging.DebugMode)
	require.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	ws := t.TempDir()
	path := DefaultPath(ws)

	cfg := DefaultConfig()
	cfg.Storage.Driver = DriverMattn
	cfg.Gemini.APIKey = "gem-test"
	cfg.Logging.DebugMode = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverMattn, loaded.Storage.Driver)
	assert.Equal(t, "gem-test", loaded.Gemini.APIKey)
	assert.True(t, loaded.Logging.DebugMode)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), ".kuka", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := DefaultPath(t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("storage: [unterminated"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("KUKA_DB", "/tmp/other.db")
	t.Setenv("KUKA_DB_DRIVER", "sqlite3")
	t.Setenv("BRASILAPI_URL", "http://registry.local")
	t.Setenv("KUKA_DEBUG", "1")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "env-key", cfg.Gemini.APIKey)
	assert.Equal(t, "/tmp/other.db", cfg.Storage.Path)
	assert.Equal(t, "sqlite3", cfg.Storage.Driver)
	assert.Equal(t, "http://registry.local", cfg.Registry.BaseURL)
	assert.True(t, cfg.Logging.DebugMode)
	assert.True(t, cfg.HasGeminiKey())
}

func TestLoad_DotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	clearEnv(t)
	ws := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(ws, ".env"), []byte("GEMINI_API_KEY=from-dotenv\nKUKA_DB_DRIVER=sqlite3\n"), 0644))
	t.Setenv("KUKA_DB_DRIVER", "sqlite")
	t.Cleanup(func() { os.Unsetenv("GEMINI_API_KEY") })

	cfg, err := Load(DefaultPath(ws))
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Gemini.APIKey)
	assert.Equal(t, DriverModernc, cfg.Storage.Driver)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Driver = "postgres"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Storage.Path = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Gemini.BriefConcurrency = -1
	assert.Error(t, cfg.Validate())
}

func TestPathsAndTimeouts(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join("/ws", ".kuka", "kuka.db"), cfg.DatabasePath("/ws"))
	assert.Equal(t, "/ws", cfg.ExportDir("/ws"))

	cfg.Storage.Path = ":memory:"
	assert.Equal(t, ":memory:", cfg.DatabasePath("/ws"))

	assert.Equal(t, 120*time.Second, cfg.GetGeminiTimeout())
	cfg.Registry.Timeout = "bogus"
	assert.Equal(t, 15*time.Second, cfg.GetRegistryTimeout())
}
