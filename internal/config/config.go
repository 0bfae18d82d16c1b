// Package config loads Kindling configuration from defaults, an optional YAML
// file and environment variables, in that order of increasing priority.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"kindling/internal/domain"
)

// Storage backends.
const (
	BackendNone     = ""
	BackendDynamoDB = "dynamodb"
	BackendSupabase = "supabase"
)

// Config holds all application configuration.
type Config struct {
	Environment string    `yaml:"environment" validate:"oneof=development staging production"`
	Server      Server    `yaml:"server"`
	Storage     Storage   `yaml:"storage"`
	Supabase    Supabase  `yaml:"supabase"`
	Auth        Auth      `yaml:"auth"`
	RateLimit   RateLimit `yaml:"rateLimit"`
	AI          AI        `yaml:"ai"`
	Events      Events    `yaml:"events"`
	Metrics     Metrics   `yaml:"metrics"`
	Tracing     Tracing   `yaml:"tracing"`
	Logging     Logging   `yaml:"logging"`
	CORS        CORS      `yaml:"cors"`
	Client      Client    `yaml:"client"`
}

// Server configures the HTTP listener.
type Server struct {
	Address         string        `yaml:"address" validate:"required"`
	ReadTimeout     time.Duration `yaml:"readTimeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idleTimeout" validate:"gt=0"`
	RequestTimeout  time.Duration `yaml:"requestTimeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" validate:"gt=0"`
}

// Storage selects the remote tabular store.
type Storage struct {
	Backend   string `yaml:"backend" validate:"omitempty,oneof=dynamodb supabase"`
	TableName string `yaml:"tableName"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint" validate:"omitempty,url"`
}

// Supabase holds the PostgREST credentials used by the supabase backend.
type Supabase struct {
	URL string `yaml:"url" validate:"omitempty,url"`
	Key string `yaml:"key"`
}

// Auth holds the shared secrets of the gate. Both empty means the API is open.
type Auth struct {
	SitePassword  string        `yaml:"sitePassword"`
	APIKey        string        `yaml:"apiKey"`
	SessionSecret string        `yaml:"sessionSecret"`
	SessionTTL    time.Duration `yaml:"sessionTTL" validate:"gt=0"`
	SecureCookie  bool          `yaml:"secureCookie"`
}

// RateLimit toggles the per-client throttles.
type RateLimit struct {
	Enabled bool `yaml:"enabled"`
}

// AI configures the local completion server.
type AI struct {
	OllamaHost  string        `yaml:"ollamaHost"`
	OllamaModel string        `yaml:"ollamaModel" validate:"required"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
}

// Events configures lifecycle event publishing.
type Events struct {
	Enabled      bool   `yaml:"enabled"`
	EventBusName string `yaml:"eventBusName" validate:"required_if=Enabled true"`
}

// Metrics configures the Prometheus collector.
type Metrics struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace" validate:"required"`
	Path      string `yaml:"path" validate:"required,startswith=/"`
}

// Tracing configures OpenTelemetry export.
type Tracing struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"serviceName" validate:"required"`
	Endpoint    string  `yaml:"endpoint" validate:"required_if=Enabled true"`
	Insecure    bool    `yaml:"insecure"`
	SampleRate  float64 `yaml:"sampleRate" validate:"gte=0,lte=1"`
}

// Logging configures zap.
type Logging struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// CORS configures cross-origin access to the API.
type CORS struct {
	AllowedOrigins   []string `yaml:"allowedOrigins"`
	AllowCredentials bool     `yaml:"allowCredentials"`
}

// Client configures the CLI session.
type Client struct {
	ServerURL string        `yaml:"serverURL" validate:"omitempty,url"`
	APIKey    string        `yaml:"apiKey"`
	CachePath string        `yaml:"cachePath"`
	Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
	// AITimeout bounds suggest and chat calls, which wait on the server's model.
	AITimeout time.Duration `yaml:"aiTimeout" validate:"gt=0"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Environment: "development",
		Server: Server{
			Address:         ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    90 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: Storage{
			TableName: "kindling",
			Region:    "us-east-1",
		},
		Auth: Auth{
			SessionTTL: 30 * 24 * time.Hour,
		},
		RateLimit: RateLimit{Enabled: true},
		AI: AI{
			OllamaHost:  "http://localhost:11434",
			OllamaModel: domain.DefaultOllamaModel,
			Timeout:     60 * time.Second,
		},
		Events: Events{
			EventBusName: "kindling-events",
		},
		Metrics: Metrics{
			Enabled:   true,
			Namespace: "kindling",
			Path:      "/metrics",
		},
		Tracing: Tracing{
			ServiceName: "kindling-api",
			Endpoint:    "localhost:4317",
			Insecure:    true,
			SampleRate:  0.1,
		},
		Logging: Logging{Level: "info"},
		CORS: CORS{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowCredentials: true,
		},
		Client: Client{
			CachePath: defaultCachePath(),
			Timeout:   30 * time.Second,
			AITimeout: 3 * time.Minute,
		},
	}
}

// Load builds the configuration. path may be empty; a missing file at an explicit
// path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("KINDLING_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Validate checks field constraints and the requirements of the selected backend.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	switch c.Storage.Backend {
	case BackendDynamoDB:
		if c.Storage.TableName == "" {
			return errors.New("storage.tableName is required for the dynamodb backend")
		}
	case BackendSupabase:
		if c.Supabase.URL == "" || c.Supabase.Key == "" {
			return errors.New("supabase.url and supabase.key are required for the supabase backend")
		}
	}
	if c.IsProduction() && c.Auth.SitePassword == "" && c.Auth.APIKey == "" {
		return errors.New("auth.sitePassword or auth.apiKey is required in production")
	}
	return nil
}

// StorageConfigured reports whether a remote store backs the API.
func (c *Config) StorageConfigured() bool {
	return c.Storage.Backend != BackendNone
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "kindling.db"
	}
	return filepath.Join(dir, "kindling", "kindling.db")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
