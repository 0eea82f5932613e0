package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string

	ServerPort int

	DatabaseURL string

	SessionTTL   time.Duration
	CookieSecure bool

	TrackingSecret []byte

	CORSOrigins []string
	CSRFEnabled bool

	KafkaBrokers []string
	KafkaTopic   string

	ElasticURLs     []string
	ElasticUser     string
	ElasticPassword string
	ElasticIndex    string

	LogLevel  string
	LogFormat string
}

// Load reads the process environment. A .env file in the working directory is
// applied first when present; real environment variables win over it.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "general-store"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		SessionTTL:   EnvDurationDefault("SESSION_TTL", 30*24*time.Hour),
		CookieSecure: EnvBoolDefault("COOKIE_SECURE", true),

		TrackingSecret: []byte(os.Getenv("ORDER_TRACKING_SECRET")),

		CORSOrigins: CSV(os.Getenv("CORS_ORIGINS")),
		CSRFEnabled: EnvBoolDefault("CSRF_ENABLED", true),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   EnvDefault("KAFKA_TOPIC", "store.events"),

		ElasticURLs:     CSV(os.Getenv("ELASTIC_URLS")),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),
		ElasticIndex:    EnvDefault("ELASTIC_INDEX", "products"),

		LogLevel:  EnvDefault("LOG_LEVEL", "info"),
		LogFormat: EnvDefault("LOG_FORMAT", "json"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
