package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// envAliases maps CHATBOT_* environment variables to their config keys.
// These mirror the variable names the deployment scripts have always used.
var envAliases = map[string]string{
	"HOST":              "server.host",
	"PORT":              "server.port",
	"ALLOW_ALL_ORIGINS": "server.allow_all",
	"DATA_DIR":          "data.dir",
	"CACHE_DIR":         "data.cache_dir",
	"SCALEDOWN_URL":     "scaledown.url",
	"SCALEDOWN_RATE":    "scaledown.rate",
	"SCALEDOWN_MODEL":   "scaledown.model",
	"SCALEDOWN_TIMEOUT": "scaledown.timeout_seconds",
	"PROVIDER":          "generation.provider",
	"GEMINI_MODEL":      "generation.model",
	"TEMPERATURE":       "generation.temperature",
	"TOP_P":             "generation.top_p",
	"MAX_TOKENS":        "generation.max_tokens",
	"SCRAPING_ENABLED":  "scraping.enabled",
	"WEBSITE_URL":       "scraping.base_url",
	"CACHE_TTL":         "scraping.cache_ttl_seconds",
	"LOG_LEVEL":         "log_level",
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (CHATBOT_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: CHATBOT_PORT -> server.port, etc.
	if err := k.Load(env.Provider("CHATBOT_", ".", func(s string) string {
		name := strings.TrimPrefix(s, "CHATBOT_")
		if key, ok := envAliases[name]; ok {
			return key
		}
		return strings.ToLower(name)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized generation provider values.
var validProviders = map[ProviderType]bool{
	ProviderGoogle: true,
	ProviderOpenAI: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	if c.Data.Dir == "" {
		return fmt.Errorf("data dir is required")
	}

	if c.ScaleDown.URL == "" {
		return fmt.Errorf("scaledown url is required")
	}
	if c.ScaleDown.TimeoutSeconds <= 0 {
		return fmt.Errorf("scaledown timeout_seconds must be positive")
	}

	g := c.Generation
	if g.Provider == "" {
		return fmt.Errorf("generation provider is required")
	}
	if !validProviders[g.Provider] {
		return fmt.Errorf("invalid generation provider %q: must be one of google, openai", g.Provider)
	}
	if g.Model == "" {
		return fmt.Errorf("generation model is required")
	}
	if g.Temperature < 0 || g.Temperature > 2 {
		return fmt.Errorf("generation temperature must be between 0 and 2")
	}
	if g.TopP < 0 || g.TopP > 1 {
		return fmt.Errorf("generation top_p must be between 0 and 1")
	}
	if g.MaxTokens <= 0 {
		return fmt.Errorf("generation max_tokens must be positive")
	}
	if g.RPM < 0 {
		return fmt.Errorf("generation rpm must be non-negative")
	}

	if c.Scraping.Enabled && c.Scraping.BaseURL == "" {
		return fmt.Errorf("scraping base_url is required when scraping is enabled")
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given generation provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderGoogle:
		return "GEMINI_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}

// ScaleDownAPIKeyEnvVar is the environment variable holding the compression
// service API key.
const ScaleDownAPIKeyEnvVar = "SCALEDOWN_API_KEY"
