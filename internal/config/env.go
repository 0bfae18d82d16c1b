package config

import (
	"strconv"
	"strings"
	"time"
)

// lookupFunc matches os.LookupEnv.
type lookupFunc func(key string) (string, bool)

// applyEnv overlays environment variables. The unprefixed names are the ones
// existing deployments already set.
func (c *Config) applyEnv(lookup lookupFunc) {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}
	boolean := func(dst *bool, key string) {
		if v, ok := lookup(key); ok && v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	duration := func(dst *time.Duration, key string) {
		if v, ok := lookup(key); ok && v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	str(&c.Environment, "KINDLING_ENV", "ENVIRONMENT")

	str(&c.Server.Address, "KINDLING_ADDRESS", "SERVER_ADDRESS")
	if v, ok := lookup("PORT"); ok && v != "" {
		if _, err := strconv.Atoi(v); err == nil {
			c.Server.Address = ":" + v
		}
	}
	duration(&c.Server.RequestTimeout, "KINDLING_REQUEST_TIMEOUT")

	str(&c.Storage.Backend, "KINDLING_STORAGE")
	str(&c.Storage.TableName, "KINDLING_TABLE_NAME", "TABLE_NAME")
	str(&c.Storage.Region, "KINDLING_AWS_REGION", "AWS_REGION")
	str(&c.Storage.Endpoint, "KINDLING_DYNAMODB_ENDPOINT")
	str(&c.Supabase.URL, "SUPABASE_URL")
	str(&c.Supabase.Key, "SUPABASE_KEY")

	str(&c.Auth.SitePassword, "KINDLING_SITE_PASSWORD", "SITE_PASSWORD")
	str(&c.Auth.APIKey, "KINDLING_API_KEY")
	str(&c.Auth.SessionSecret, "KINDLING_SESSION_SECRET")
	duration(&c.Auth.SessionTTL, "KINDLING_SESSION_TTL")
	boolean(&c.Auth.SecureCookie, "KINDLING_SECURE_COOKIE")

	boolean(&c.RateLimit.Enabled, "KINDLING_RATE_LIMIT")

	str(&c.AI.OllamaHost, "KINDLING_OLLAMA_HOST", "OLLAMA_HOST")
	str(&c.AI.OllamaModel, "KINDLING_OLLAMA_MODEL", "OLLAMA_MODEL")
	duration(&c.AI.Timeout, "KINDLING_AI_TIMEOUT")

	boolean(&c.Events.Enabled, "KINDLING_EVENTS")
	str(&c.Events.EventBusName, "KINDLING_EVENT_BUS", "EVENT_BUS_NAME")

	boolean(&c.Metrics.Enabled, "KINDLING_METRICS")
	boolean(&c.Tracing.Enabled, "KINDLING_TRACING")
	str(&c.Tracing.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	if v, ok := lookup("KINDLING_TRACE_SAMPLE_RATE"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Tracing.SampleRate = f
		}
	}

	str(&c.Logging.Level, "KINDLING_LOG_LEVEL", "LOG_LEVEL")
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	boolean(&c.Logging.Development, "KINDLING_LOG_DEV")

	if v, ok := lookup("KINDLING_CORS_ORIGINS"); ok && v != "" {
		c.CORS.AllowedOrigins = splitList(v)
	}

	str(&c.Client.ServerURL, "KINDLING_SERVER_URL")
	str(&c.Client.APIKey, "KINDLING_API_KEY")
	str(&c.Client.CachePath, "KINDLING_CACHE_PATH")
	duration(&c.Client.Timeout, "KINDLING_CLIENT_TIMEOUT")
	duration(&c.Client.AITimeout, "KINDLING_CLIENT_AI_TIMEOUT")
}
