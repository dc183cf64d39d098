package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all kukacrm configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Local record store
	Storage StorageConfig `yaml:"storage"`

	// Gemini advisor
	Gemini GeminiConfig `yaml:"gemini"`

	// Document registry (CNPJ lookup)
	Registry RegistryConfig `yaml:"registry"`

	// Export artifacts
	Export ExportConfig `yaml:"export"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig configures the KV blob backend.
type StorageConfig struct {
	Driver string `yaml:"driver"` // sqlite (modernc, default) or sqlite3 (mattn, cgo builds)
	Path   string `yaml:"path"`   // relative paths resolve against the workspace
}

// GeminiConfig configures the AI advisor.
type GeminiConfig struct {
	APIKey           string `yaml:"api_key"`
	AnalysisModel    string `yaml:"analysis_model"`
	MapsModel        string `yaml:"maps_model"`
	ThinkingBudget   int32  `yaml:"thinking_budget"`
	Timeout          string `yaml:"timeout"`
	BriefConcurrency int    `yaml:"brief_concurrency"`
}

// RegistryConfig configures the public CNPJ registry.
type RegistryConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// ExportConfig configures where CSV and GeoJSON files land.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig configures logging. Mirrored by internal/logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	JSONFormat bool            `yaml:"json_format"`
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// Storage drivers accepted by Validate.
const (
	DriverModernc = "sqlite"
	DriverMattn   = "sqlite3"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "kukacrm",
		Version: "1.0.0",

		Storage: StorageConfig{
			Driver: DriverModernc,
			Path:   "kuka.db",
		},

		Gemini: GeminiConfig{
			AnalysisModel:    "gemini-3-pro-preview",
			MapsModel:        "gemini-2.5-flash",
			ThinkingBudget:   32768,
			Timeout:          "120s",
			BriefConcurrency: 3,
		},

		Registry: RegistryConfig{
			BaseURL: "https://brasilapi.com.br",
			Timeout: "15s",
		},

		Export: ExportConfig{
			Dir: ".",
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Dir returns the .kuka directory inside a workspace.
func Dir(workspace string) string {
	return filepath.Join(workspace, ".kuka")
}

// DefaultPath returns the config file location inside a workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(Dir(workspace), "config.yaml")
}

// Load loads configuration from a YAML file.
// A .env file next to the workspace root is loaded into the environment first;
// variables already set in the process environment win.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	envFile := filepath.Join(filepath.Dir(filepath.Dir(path)), ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if path := os.Getenv("KUKA_DB"); path != "" {
		c.Storage.Path = path
	}
	if driver := os.Getenv("KUKA_DB_DRIVER"); driver != "" {
		c.Storage.Driver = driver
	}
	if url := os.Getenv("BRASILAPI_URL"); url != "" {
		c.Registry.BaseURL = url
	}
	if v := os.Getenv("KUKA_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = b
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverModernc, DriverMattn:
	default:
		return fmt.Errorf("invalid storage driver: %s (valid: %s, %s)", c.Storage.Driver, DriverModernc, DriverMattn)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path not configured")
	}
	if c.Registry.BaseURL == "" {
		return fmt.Errorf("registry base_url not configured")
	}
	if c.Gemini.BriefConcurrency < 0 {
		return fmt.Errorf("gemini brief_concurrency must not be negative")
	}
	return nil
}

// DatabasePath resolves the storage path against the workspace.
// ":memory:" is returned unchanged.
func (c *Config) DatabasePath(workspace string) string {
	if c.Storage.Path == ":memory:" || filepath.IsAbs(c.Storage.Path) {
		return c.Storage.Path
	}
	return filepath.Join(Dir(workspace), c.Storage.Path)
}

// ExportDir resolves the export directory against the workspace.
func (c *Config) ExportDir(workspace string) string {
	if filepath.IsAbs(c.Export.Dir) {
		return c.Export.Dir
	}
	return filepath.Join(workspace, c.Export.Dir)
}

// HasGeminiKey reports whether the advisor can reach Gemini.
func (c *Config) HasGeminiKey() bool {
	return c.Gemini.APIKey != ""
}

// GetGeminiTimeout returns the Gemini timeout as a duration.
func (c *Config) GetGeminiTimeout() time.Duration {
	d, err := time.ParseDuration(c.Gemini.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetRegistryTimeout returns the registry timeout as a duration.
func (c *Config) GetRegistryTimeout() time.Duration {
	d, err := time.ParseDuration(c.Registry.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}
