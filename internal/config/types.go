package config

// ProviderType identifies a generation provider.
type ProviderType string

const (
	ProviderGoogle ProviderType = "google"
	ProviderOpenAI ProviderType = "openai"
)

// Config is the top-level chatbot configuration, corresponding to .chatbot.yml.
type Config struct {
	Server     ServerConfig     `yaml:"server" koanf:"server"`
	Data       DataConfig       `yaml:"data" koanf:"data"`
	ScaleDown  ScaleDownConfig  `yaml:"scaledown" koanf:"scaledown"`
	Generation GenerationConfig `yaml:"generation" koanf:"generation"`
	Scraping   ScrapingConfig   `yaml:"scraping" koanf:"scraping"`
	LogLevel   string           `yaml:"log_level" koanf:"log_level"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host     string `yaml:"host" koanf:"host"`
	Port     int    `yaml:"port" koanf:"port"`
	AllowAll bool   `yaml:"allow_all" koanf:"allow_all"` // allow all CORS origins (dev mode)
}

// DataConfig describes where knowledge sources live and which files to read.
type DataConfig struct {
	Dir      string   `yaml:"dir" koanf:"dir"`
	Include  []string `yaml:"include" koanf:"include"`
	Exclude  []string `yaml:"exclude" koanf:"exclude"`
	CacheDir string   `yaml:"cache_dir" koanf:"cache_dir"`
}

// ScaleDownConfig holds the compression service settings. The API key comes
// from the SCALEDOWN_API_KEY environment variable, never from the file.
type ScaleDownConfig struct {
	URL            string `yaml:"url" koanf:"url"`
	Rate           string `yaml:"rate" koanf:"rate"` // "auto" or a fixed rate like "0.5"
	Model          string `yaml:"model" koanf:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds" koanf:"timeout_seconds"`
}

// GenerationConfig holds the answer-generation settings. The provider API key
// comes from the environment variable named by APIKeyEnvVar.
type GenerationConfig struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	Temperature       float64      `yaml:"temperature" koanf:"temperature"`
	TopP              float64      `yaml:"top_p" koanf:"top_p"`
	MaxTokens         int          `yaml:"max_tokens" koanf:"max_tokens"`
	TimeoutSeconds    int          `yaml:"timeout_seconds" koanf:"timeout_seconds"`
	RPM               int          `yaml:"rpm" koanf:"rpm"` // requests per minute, 0 = unlimited
	SystemInstruction string       `yaml:"system_instruction" koanf:"system_instruction"`
}

// ScrapingConfig controls the optional university-website scraper.
type ScrapingConfig struct {
	Enabled         bool           `yaml:"enabled" koanf:"enabled"`
	BaseURL         string         `yaml:"base_url" koanf:"base_url"`
	Targets         []ScrapeTarget `yaml:"targets" koanf:"targets"`
	TimeoutSeconds  int            `yaml:"timeout_seconds" koanf:"timeout_seconds"`
	CacheTTLSeconds int            `yaml:"cache_ttl_seconds" koanf:"cache_ttl_seconds"`
	UserAgent       string         `yaml:"user_agent" koanf:"user_agent"`
}

// ScrapeTarget is one page to scrape: a path under the base URL and the CSS
// selectors whose text content is extracted from it.
type ScrapeTarget struct {
	Path      string   `yaml:"path" koanf:"path"`
	Selectors []string `yaml:"selectors" koanf:"selectors"`
}
