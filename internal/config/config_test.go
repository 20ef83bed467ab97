package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_PORT", "API_ENDPOINT", "SESSION_BACKEND", "JWT_SECRET", "SESSION_VERIFY_SIGNATURE", "SESSION_TTL", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8000/api", cfg.APIEndpoint)
	assert.Equal(t, "token", cfg.SessionCookieName)
	assert.Equal(t, SessionBackendCookie, cfg.SessionBackend)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.VerifySignature, "no secret means decode-only")
	assert.Equal(t, 2*time.Second, cfg.UpstreamReadTimeout)
	assert.Equal(t, 5*time.Second, cfg.UpstreamWriteTimeout)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("API_ENDPOINT", "http://api.local/v1/")
	t.Setenv("SESSION_BACKEND", "REDIS")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("RATE_LIMIT_RPM", "10")
	t.Setenv("UPSTREAM_READ_TIMEOUT", "bogus")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "http://api.local/v1", cfg.APIEndpoint)
	assert.Equal(t, SessionBackendRedis, cfg.SessionBackend)
	assert.True(t, cfg.VerifySignature)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.RateLimitRPM)
	assert.Equal(t, 2*time.Second, cfg.UpstreamReadTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.UsesRedis())
}

func TestLoad_VerifyCanBeDisabled(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SESSION_VERIFY_SIGNATURE", "false")

	assert.False(t, Load().VerifySignature)
}
