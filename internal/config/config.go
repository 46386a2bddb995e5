// Package config provides configuration loading and validation for the
// dishpatch service. Values come from defaults, an optional YAML file, and
// DISHPATCH_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines the application configuration for all components: HTTP
// server, logging, Gemini model access, Yelp search access, and the default
// search context.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Logger LoggerConfig `mapstructure:"logger"`
	Gemini GeminiConfig `mapstructure:"gemini"`
	Yelp   YelpConfig   `mapstructure:"yelp"`
	Search SearchConfig `mapstructure:"search"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,min=1s,max=1m"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// GeminiConfig holds Gemini API settings.
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"     validate:"required"`
	Model       string  `mapstructure:"model"       validate:"required"`
	Temperature float32 `mapstructure:"temperature" validate:"min=0,max=2"`
}

// YelpConfig holds Yelp AI chat API settings.
type YelpConfig struct {
	APIKey   string        `mapstructure:"api_key"  validate:"required"`
	Endpoint string        `mapstructure:"endpoint" validate:"required,url"`
	Timeout  time.Duration `mapstructure:"timeout"  validate:"required,min=1s,max=10m"`
}

// SearchConfig holds the search context defaults applied when a request omits
// the corresponding form fields.
type SearchConfig struct {
	Location string `mapstructure:"location" validate:"required"`
	Date     string `mapstructure:"date"     validate:"required"`
	Time     string `mapstructure:"time"     validate:"required"`
}

// LoadConfig loads and validates configuration from:
// 1. Default values
// 2. The YAML file at path (optional)
// 3. DISHPATCH_* environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("DISHPATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The original deployment's variable names keep working alongside the
	// DISHPATCH_* forms.
	v.MustBindEnv("gemini.api_key", "DISHPATCH_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY")
	v.MustBindEnv("yelp.api_key", "DISHPATCH_YELP_API_KEY", "YELP_API_KEY")
	v.MustBindEnv("yelp.endpoint", "DISHPATCH_YELP_ENDPOINT", "YELP_AI_ENDPOINT")
	v.MustBindEnv("server.port", "DISHPATCH_SERVER_PORT", "PORT")

	// Allow missing config file, everything can come from env
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration against the struct validation rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// setDefaults sets default values for optional configuration parameters
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)

	// Logger defaults
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", DefaultLogJSON)

	// Gemini defaults
	v.SetDefault("gemini.model", DefaultGeminiModel)
	v.SetDefault("gemini.temperature", DefaultGeminiTemperature)

	// Yelp defaults
	v.SetDefault("yelp.endpoint", DefaultYelpEndpoint)
	v.SetDefault("yelp.timeout", DefaultYelpTimeout)

	// Search context defaults
	v.SetDefault("search.location", DefaultSearchLocation)
	v.SetDefault("search.date", DefaultSearchDate)
	v.SetDefault("search.time", DefaultSearchTime)
}
