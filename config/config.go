package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Tarkov    TarkovConfig
	Matching  MatchingConfig
	Lookup    LookupConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// TarkovConfig holds tarkov.dev API configuration
type TarkovConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxRetries        int           `mapstructure:"max_retries"`
}

// MatchingConfig holds catalog matching and price aggregation configuration
type MatchingConfig struct {
	ExcludedVendor     string `mapstructure:"excluded_vendor"`
	EnableDebugLogging bool   `mapstructure:"enable_debug_logging"`
}

// LookupConfig holds batch lookup configuration
type LookupConfig struct {
	MaxBatchSize int `mapstructure:"max_batch_size"`
	Concurrency  int `mapstructure:"concurrency"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP    int    `mapstructure:"per_ip"` // requests per minute
	Store    string `mapstructure:"store"`  // "memory" or "redis"
	RedisURL string `mapstructure:"redis_url"`
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/tarkovlens/")

	// Environment variable settings: server.port -> TARKOVLENS_SERVER_PORT
	v.SetEnvPrefix("TARKOVLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
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

	// tarkov.dev defaults
	v.SetDefault("tarkov.base_url", "https://api.tarkov.dev/graphql")
	v.SetDefault("tarkov.timeout", "30s")
	v.SetDefault("tarkov.requests_per_second", 2.0)
	v.SetDefault("tarkov.burst", 5)
	v.SetDefault("tarkov.max_retries", 3)

	// Matching defaults
	v.SetDefault("matching.excluded_vendor", "Flea Market")
	v.SetDefault("matching.enable_debug_logging", false)

	// Lookup defaults
	v.SetDefault("lookup.max_batch_size", 20)
	v.SetDefault("lookup.concurrency", 4)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)
	v.SetDefault("ratelimit.store", "memory")
	v.SetDefault("ratelimit.redis_url", "")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Tarkov.BaseURL == "" {
		return fmt.Errorf("tarkov base URL is required (set TARKOVLENS_TARKOV_BASE_URL)")
	}

	if config.Matching.ExcludedVendor == "" {
		return fmt.Errorf("excluded vendor must not be empty")
	}

	if config.Lookup.MaxBatchSize <= 0 {
		return fmt.Errorf("lookup max batch size must be positive, got: %d", config.Lookup.MaxBatchSize)
	}

	if config.Lookup.Concurrency <= 0 {
		return fmt.Errorf("lookup concurrency must be positive, got: %d", config.Lookup.Concurrency)
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("per-IP rate limit must be positive, got: %d", config.RateLimit.PerIP)
	}

	if config.RateLimit.Store != "memory" && config.RateLimit.Store != "redis" {
		return fmt.Errorf("rate limit store must be 'memory' or 'redis', got: %s", config.RateLimit.Store)
	}

	if config.RateLimit.Store == "redis" && config.RateLimit.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when rate limit store is 'redis'")
	}

	return nil
}
