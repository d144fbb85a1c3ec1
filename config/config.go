package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load loads the configuration from file and environment. A missing config
// file is only an error when a path was given explicitly: defaults plus
// environment variables are a complete configuration.
func Load(configPath string) (*Config, error) {
	// Best effort: a .env in the working directory supplies credentials
	// during development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("strollerscout")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Credentials are environment-first; OPENAI_API_KEY also works bare
	// since that is what the ecosystem expects.
	_ = v.BindEnv("openai.api_key", "STROLLERSCOUT_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("safety.client_id", "STROLLERSCOUT_SAFETY_CLIENT_ID")
	_ = v.BindEnv("safety.client_secret", "STROLLERSCOUT_SAFETY_CLIENT_SECRET")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".strollerscout"))
		}
		v.AddConfigPath("/etc/strollerscout/")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("geocoding.url", "https://geocoding-api.open-meteo.com")
	v.SetDefault("weather.url", "https://api.open-meteo.com")
	v.SetDefault("weather.days", 5)

	v.SetDefault("safety.enabled", true)
	v.SetDefault("safety.url", "https://api.safeplaces.example.com")

	v.SetDefault("openai.model", "gpt-4o-mini")

	// Retry/backoff defaults: up to 3 attempts, delays of 1s, 2s, 4s.
	v.SetDefault("http.max_retries", 2)
	v.SetDefault("http.base_delay_ms", 1000)
	v.SetDefault("http.timeout_ms", 30000)

	v.SetDefault("cache.ttl_minutes", 30)
	v.SetDefault("cache.max_entries", 256)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Geocoding.URL == "" {
		return fmt.Errorf("geocoding.url is required")
	}
	if cfg.Weather.URL == "" {
		return fmt.Errorf("weather.url is required")
	}
	if cfg.Weather.Days < 1 || cfg.Weather.Days > 16 {
		return fmt.Errorf("weather.days must be between 1 and 16, got %d", cfg.Weather.Days)
	}

	if cfg.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must not be negative")
	}
	if cfg.HTTP.BaseDelayMs < 0 {
		return fmt.Errorf("http.base_delay_ms must not be negative")
	}
	if cfg.HTTP.TimeoutMs <= 0 {
		return fmt.Errorf("http.timeout_ms must be positive")
	}

	if cfg.Cache.TTLMinutes <= 0 {
		return fmt.Errorf("cache.ttl_minutes must be positive")
	}
	if cfg.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be positive")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
