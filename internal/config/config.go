package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config carries the service tunables. Env vars win over the yaml file;
// the yaml file wins over defaults.
type Config struct {
	Port            string `yaml:"port" validate:"required"`
	AppEnv          string `yaml:"app_env" validate:"oneof=development production"`
	UpstreamBaseURL string `yaml:"upstream_base_url" validate:"required,url"`

	// DefaultMaxTokens bounds responses when the request carries no
	// max_tokens of its own.
	DefaultMaxTokens int `yaml:"default_max_tokens" validate:"gt=0"`

	JWTSecret string `yaml:"jwt_secret" validate:"required,min=16"`
	APIKey    string `yaml:"api_key" validate:"required,min=8"`
}

func defaults() *Config {
	return &Config{
		Port:             "8080",
		AppEnv:           "development",
		UpstreamBaseURL:  "https://www.arukumachikyoto.jp",
		DefaultMaxTokens: 4096,
	}
}

// Load reads .env, the optional CONFIG_FILE yaml, then env vars, and
// validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	overlayEnv(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

func overlayEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.AppEnv = v
	}
	if v := os.Getenv("UPSTREAM_BASE_URL"); v != "" {
		cfg.UpstreamBaseURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.APIKey = v
	}
}
