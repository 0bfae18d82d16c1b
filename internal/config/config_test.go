package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindling/internal/domain"
)

func envOf(m map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.StorageConfigured())
	assert.Equal(t, "http://localhost:11434", cfg.AI.OllamaHost)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.SessionTTL)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, domain.DefaultOllamaModel, cfg.AI.OllamaModel)
	assert.Greater(t, cfg.Client.AITimeout, cfg.AI.Timeout+cfg.Server.RequestTimeout)
}

func TestApplyEnv(t *testing.T) {
	t.Run("Should honor the unprefixed names", func(t *testing.T) {
		cfg := Default()
		cfg.applyEnv(envOf(map[string]string{
			"SITE_PASSWORD": "pw",
			"OLLAMA_HOST":   "http://127.0.0.1:9999",
			"OLLAMA_MODEL":  "mistral",
			"TABLE_NAME":    "ideas-prod",
			"AWS_REGION":    "eu-west-1",
		}))
		assert.Equal(t, "pw", cfg.Auth.SitePassword)
		assert.Equal(t, "http://127.0.0.1:9999", cfg.AI.OllamaHost)
		assert.Equal(t, "mistral", cfg.AI.OllamaModel)
		assert.Equal(t, "ideas-prod", cfg.Storage.TableName)
		assert.Equal(t, "eu-west-1", cfg.Storage.Region)
	})

	t.Run("Should prefer prefixed names", func(t *testing.T) {
		cfg := Default()
		cfg.applyEnv(envOf(map[string]string{
			"SITE_PASSWORD":          "old",
			"KINDLING_SITE_PASSWORD": "new",
		}))
		assert.Equal(t, "new", cfg.Auth.SitePassword)
	})

	t.Run("Should share the api key between server and client", func(t *testing.T) {
		cfg := Default()
		cfg.applyEnv(envOf(map[string]string{"KINDLING_API_KEY": "k"}))
		assert.Equal(t, "k", cfg.Auth.APIKey)
		assert.Equal(t, "k", cfg.Client.APIKey)
	})

	t.Run("Should parse typed values and ignore garbage", func(t *testing.T) {
		cfg := Default()
		cfg.applyEnv(envOf(map[string]string{
			"PORT":                       "3000",
			"KINDLING_RATE_LIMIT":        "false",
			"KINDLING_SESSION_TTL":       "1h",
			"KINDLING_AI_TIMEOUT":        "soon",
			"KINDLING_LOG_LEVEL":         "DEBUG",
			"KINDLING_CORS_ORIGINS":      "https://a.example, ,https://b.example",
			"KINDLING_METRICS":           "nope",
			"KINDLING_CLIENT_AI_TIMEOUT": "5m",
		}))
		assert.Equal(t, ":3000", cfg.Server.Address)
		assert.False(t, cfg.RateLimit.Enabled)
		assert.Equal(t, time.Hour, cfg.Auth.SessionTTL)
		assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, 5*time.Minute, cfg.Client.AITimeout)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "sheets" }, wantErr: true},
		{name: "dynamodb without table", mutate: func(c *Config) {
			c.Storage.Backend = BackendDynamoDB
			c.Storage.TableName = ""
		}, wantErr: true},
		{name: "supabase without key", mutate: func(c *Config) {
			c.Storage.Backend = BackendSupabase
			c.Supabase.URL = "https://x.supabase.co"
		}, wantErr: true},
		{name: "supabase complete", mutate: func(c *Config) {
			c.Storage.Backend = BackendSupabase
			c.Supabase.URL = "https://x.supabase.co"
			c.Supabase.Key = "anon"
		}},
		{name: "events without bus", mutate: func(c *Config) {
			c.Events.Enabled = true
			c.Events.EventBusName = ""
		}, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: true},
		{name: "sample rate above one", mutate: func(c *Config) { c.Tracing.SampleRate = 2 }, wantErr: true},
		{name: "open production", mutate: func(c *Config) { c.Environment = "production" }, wantErr: true},
		{name: "guarded production", mutate: func(c *Config) {
			c.Environment = "production"
			c.Auth.APIKey = "k"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("Should overlay a YAML file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "kindling.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
storage:
  backend: dynamodb
  tableName: from-file
ai:
  timeout: 15s
metrics:
  enabled: false
`), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, BackendDynamoDB, cfg.Storage.Backend)
		assert.Equal(t, 15*time.Second, cfg.AI.Timeout)
		assert.False(t, cfg.Metrics.Enabled)
		assert.Equal(t, domain.DefaultOllamaModel, cfg.AI.OllamaModel)
	})

	t.Run("Should let the environment win over the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "kindling.yaml")
		require.NoError(t, os.WriteFile(path, []byte("ai:\n  ollamaModel: from-file\n"), 0o600))
		t.Setenv("KINDLING_OLLAMA_MODEL", "from-env")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.AI.OllamaModel)
	})

	t.Run("Should reject unknown keys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "kindling.yaml")
		require.NoError(t, os.WriteFile(path, []byte("sheets:\n  id: abc\n"), 0o600))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("Should accept an empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "kindling.yaml")
		require.NoError(t, os.WriteFile(path, nil, 0o600))
		_, err := Load(path)
		assert.NoError(t, err)
	})

	t.Run("Should fail on a missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}
