// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. RESUME_ANALYZER_PORT.
const EnvPrefix = "RESUME_ANALYZER"

// DefaultConfigName is the file looked up in the working directory when no path is given.
const DefaultConfigName = "resume_analyzer"

// Config is the process configuration. Every field is optional.
type Config struct {
	// DatabaseURL enables the Postgres rule and catalog store.
	DatabaseURL string `mapstructure:"database_url" json:"database_url,omitempty" validate:"required_if=PersistResults true,omitempty,url"`
	// GeminiAPIKey enables the model-backed feature extractor.
	GeminiAPIKey string `mapstructure:"gemini_api_key" json:"-"`
	// RulesFile and CatalogFile select the YAML file store when no database is configured.
	RulesFile   string `mapstructure:"rules_file" json:"rules_file,omitempty"`
	CatalogFile string `mapstructure:"catalog_file" json:"catalog_file,omitempty"`

	UseRuleEngine   bool          `mapstructure:"use_rule_engine" json:"use_rule_engine"`
	Port            int           `mapstructure:"port" json:"port" validate:"min=1,max=65535"`
	LogJSON         bool          `mapstructure:"log_json" json:"log_json"`
	Debug           bool          `mapstructure:"debug" json:"debug"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval" json:"refresh_interval" validate:"gte=0"`
	PersistResults  bool          `mapstructure:"persist_results" json:"persist_results"`

	// RateLimit is requests per second per client; 0 disables limiting.
	RateLimit float64 `mapstructure:"rate_limit" json:"rate_limit" validate:"gte=0"`
	RateBurst int     `mapstructure:"rate_burst" json:"rate_burst" validate:"gte=0"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		UseRuleEngine:   true,
		Port:            8080,
		RefreshInterval: time.Minute,
		RateLimit:       5,
		RateBurst:       10,
	}
}

// NewViper returns a viper instance carrying the defaults and environment bindings. Callers
// may bind flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	d := Defaults()
	v.SetDefault("database_url", d.DatabaseURL)
	v.SetDefault("gemini_api_key", d.GeminiAPIKey)
	v.SetDefault("rules_file", d.RulesFile)
	v.SetDefault("catalog_file", d.CatalogFile)
	v.SetDefault("use_rule_engine", d.UseRuleEngine)
	v.SetDefault("port", d.Port)
	v.SetDefault("log_json", d.LogJSON)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("refresh_interval", d.RefreshInterval)
	v.SetDefault("persist_results", d.PersistResults)
	v.SetDefault("rate_limit", d.RateLimit)
	v.SetDefault("rate_burst", d.RateBurst)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// Unprefixed names used by other tooling
	_ = v.BindEnv("database_url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("gemini_api_key", EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY")
	return v
}

// Load reads the config file at path into v and returns the validated configuration. An
// empty path looks for resume_analyzer.{yaml,json} in the working directory and tolerates
// its absence; an explicit path must exist.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = NewViper()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field values and cross-field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// LoadEnvFiles loads .env style files into the process environment without overriding
// variables already set. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}
