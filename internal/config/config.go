package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting of the server and the tourctl client.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	BearerToken string

	TourAPIBaseURL string
	TourAPIToken   string
	TourAPITimeout time.Duration
	TourPageSize   int
	TourMaxPages   int

	CacheTTL       time.Duration
	SnapshotMaxAge time.Duration
	WarmScopes     []string
	MigrationsDir  string

	LogLevel  string
	LogFormat string
}

var defaults = map[string]any{
	"port":              "8080",
	"tour_api_timeout":  "10s",
	"tour_page_size":    10,
	"tour_max_pages":    1000,
	"cache_ttl":         "15m",
	"snapshot_max_age":  "24h",
	"warm_scopes":       "",
	"migrations_dir":    "migrations",
	"log_level":         "info",
	"log_format":        "json",
	"database_url":      "",
	"redis_url":         "",
	"bearer_token":      "",
	"tour_api_base_url": "",
	"tour_api_token":    "",
}

// Load reads .env (if present), an optional tourfront.yaml and the environment.
// Environment variables win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetConfigName("tourfront")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.AutomaticEnv()

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:           v.GetString("port"),
		DatabaseURL:    v.GetString("database_url"),
		RedisURL:       v.GetString("redis_url"),
		BearerToken:    v.GetString("bearer_token"),
		TourAPIBaseURL: v.GetString("tour_api_base_url"),
		TourAPIToken:   v.GetString("tour_api_token"),
		TourAPITimeout: v.GetDuration("tour_api_timeout"),
		TourPageSize:   v.GetInt("tour_page_size"),
		TourMaxPages:   v.GetInt("tour_max_pages"),
		CacheTTL:       v.GetDuration("cache_ttl"),
		SnapshotMaxAge: v.GetDuration("snapshot_max_age"),
		WarmScopes:     splitList(v.GetString("warm_scopes")),
		MigrationsDir:  v.GetString("migrations_dir"),
		LogLevel:       strings.ToLower(v.GetString("log_level")),
		LogFormat:      strings.ToLower(v.GetString("log_format")),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateClient checks the settings needed to talk to the tour API.
func (c *Config) ValidateClient() error {
	var errs []error
	if c.TourAPIBaseURL == "" {
		errs = append(errs, errors.New("TOUR_API_BASE_URL is required"))
	}
	if c.TourPageSize <= 0 {
		errs = append(errs, fmt.Errorf("TOUR_PAGE_SIZE must be positive, got %d", c.TourPageSize))
	}
	if c.TourMaxPages <= 0 {
		errs = append(errs, fmt.Errorf("TOUR_MAX_PAGES must be positive, got %d", c.TourMaxPages))
	}
	if c.TourAPITimeout <= 0 {
		errs = append(errs, errors.New("TOUR_API_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// ValidateServer checks everything the HTTP server needs.
func (c *Config) ValidateServer() error {
	errs := []error{c.ValidateClient()}
	for key, val := range map[string]string{
		"DATABASE_URL": c.DatabaseURL,
		"REDIS_URL":    c.RedisURL,
		"BEARER_TOKEN": c.BearerToken,
	} {
		if val == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive"))
	}
	return errors.Join(errs...)
}
