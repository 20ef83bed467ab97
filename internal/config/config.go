package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SessionBackendCookie = "cookie"
	SessionBackendRedis  = "redis"
)

type Config struct {
	Port        string
	APIEndpoint string

	SessionCookieName string
	SessionBackend    string
	SessionTTL        time.Duration
	CookieSecure      bool
	JWTSecret         string
	VerifySignature   bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitEnabled bool
	RateLimitRPM     int

	// CORSAllowedOrigins lists browser origins allowed to call /api with
	// credentials. Empty disables CORS.
	CORSAllowedOrigins []string

	UpstreamReadTimeout  time.Duration
	UpstreamWriteTimeout time.Duration

	TracingEnabled     bool
	TracingSampleRatio float64
	OTLPEndpoint       string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	secret := getEnv("JWT_SECRET", "")
	return &Config{
		Port:        getEnv("HTTP_PORT", "8080"),
		APIEndpoint: strings.TrimRight(getEnv("API_ENDPOINT", "http://localhost:8000/api"), "/"),

		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "token"),
		SessionBackend:    strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendCookie)),
		SessionTTL:        getDuration("SESSION_TTL", 24*time.Hour),
		CookieSecure:      getBool("SESSION_COOKIE_SECURE", false),
		JWTSecret:         secret,
		VerifySignature:   getBool("SESSION_VERIFY_SIGNATURE", secret != ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),

		RateLimitEnabled: getBool("RATE_LIMIT_ENABLED", true),
		RateLimitRPM:     getInt("RATE_LIMIT_RPM", 60),

		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS"),

		UpstreamReadTimeout:  getDuration("UPSTREAM_READ_TIMEOUT", 2*time.Second),
		UpstreamWriteTimeout: getDuration("UPSTREAM_WRITE_TIMEOUT", 5*time.Second),

		TracingEnabled:     getBool("TRACING_ENABLED", false),
		TracingSampleRatio: getFloat("TRACING_SAMPLE_RATIO", 1),
		OTLPEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.SessionBackend == SessionBackendRedis || c.RateLimitEnabled
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getList splits a comma-separated variable, dropping blanks.
func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
