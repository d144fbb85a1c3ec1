package config

// Config represents the complete configuration structure
type Config struct {
	Geocoding GeocodingConfig `mapstructure:"geocoding"`
	Weather   WeatherConfig   `mapstructure:"weather"`
	Safety    SafetyConfig    `mapstructure:"safety"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// GeocodingConfig holds geocoding API settings
type GeocodingConfig struct {
	URL string `mapstructure:"url"`
}

// WeatherConfig holds forecast API settings
type WeatherConfig struct {
	URL  string `mapstructure:"url"`
	Days int    `mapstructure:"days"`
}

// SafetyConfig holds the safety API connection and credentials. Credentials
// normally come from the environment; leaving them empty disables the
// integration instead of failing startup.
type SafetyConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	URL          string `mapstructure:"url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// OpenAIConfig holds model credentials and selection
type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// HTTPConfig tunes the shared upstream executor
type HTTPConfig struct {
	MaxRetries  int `mapstructure:"max_retries"`
	BaseDelayMs int `mapstructure:"base_delay_ms"`
	TimeoutMs   int `mapstructure:"timeout_ms"`
}

// CacheConfig tunes the per-adapter content caches
type CacheConfig struct {
	TTLMinutes int `mapstructure:"ttl_minutes"`
	MaxEntries int `mapstructure:"max_entries"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
