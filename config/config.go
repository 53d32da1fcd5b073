package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Search  SearchConfig
	Catalog CatalogConfig
	Cache   CacheConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SearchConfig holds search-provider configuration
type SearchConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Burst         int           `mapstructure:"burst"`
}

// CatalogConfig holds target-site configuration
type CatalogConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	ProductPath  string        `mapstructure:"product_path"`
	MaxResults   int           `mapstructure:"max_results"`
	Overfetch    int           `mapstructure:"overfetch"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/personamatcher/")

	// Environment variable settings
	v.SetEnvPrefix("PERSONAMATCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Search provider defaults
	v.SetDefault("search.base_url", "https://html.duckduckgo.com/html/")
	v.SetDefault("search.timeout", "20s")
	v.SetDefault("search.rate_per_second", 1.0)
	v.SetDefault("search.burst", 3)

	// Catalog defaults
	v.SetDefault("catalog.base_url", "https://anuschkaleather.com")
	v.SetDefault("catalog.product_path", "/products/")
	v.SetDefault("catalog.max_results", 5)
	v.SetDefault("catalog.overfetch", 15)
	v.SetDefault("catalog.fetch_timeout", "20s")
	v.SetDefault("catalog.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	// Cache defaults
	v.SetDefault("cache.ttl", "1h")
}

// validate validates the configuration
func validate(config *Config) error {
	parsed, err := url.Parse(config.Catalog.BaseURL)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("catalog base URL must be an absolute URL, got: %q", config.Catalog.BaseURL)
	}

	if config.Catalog.MaxResults <= 0 {
		return fmt.Errorf("catalog max_results must be positive, got: %d", config.Catalog.MaxResults)
	}

	if config.Catalog.Overfetch < config.Catalog.MaxResults {
		return fmt.Errorf("catalog overfetch (%d) must be >= max_results (%d)",
			config.Catalog.Overfetch, config.Catalog.MaxResults)
	}

	if config.Search.RatePerSecond <= 0 {
		return fmt.Errorf("search rate_per_second must be positive, got: %f", config.Search.RatePerSecond)
	}

	return nil
}
