package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// UpstreamConfig holds the spreadsheet API endpoint settings.
type UpstreamConfig struct {
	// BaseURL is the deployed Apps Script exec URL.
	BaseURL string `mapstructure:"base_url"`

	// Timeout bounds each upstream call.
	Timeout time.Duration `mapstructure:"timeout"`

	// IDToken is an optional service-level token. Per-request tokens
	// from signed-in staff take precedence.
	IDToken string `mapstructure:"id_token"`
}

// CacheConfig holds response cache configuration.
type CacheConfig struct {
	// MaxAge bounds how long a cached upstream response is served.
	MaxAge time.Duration `mapstructure:"max_age"`
}

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from the YAML file, a local .env overlay, and
// environment variables.
func Load(configPath string) (*Config, error) {
	// A missing .env is fine; it only exists in development.
	_ = gotenv.Load()

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("upstream.timeout", 30*time.Second)

	viper.SetDefault("cache.max_age", 10*time.Minute)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "console")
}

func bindEnvVars() {
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("upstream.base_url", "UPSTREAM_BASE_URL")
	viper.BindEnv("upstream.id_token", "UPSTREAM_ID_TOKEN")
	viper.BindEnv("logger.level", "LOG_LEVEL")
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid port number")
	}
	return nil
}
