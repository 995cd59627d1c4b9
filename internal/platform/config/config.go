package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"redhope/pkg/platform/collections"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	Environment   string
	DatabaseURL   string
	JWTSigningKey string
	JWTIssuer     string
	TokenTTL      time.Duration
	HTTP          HTTPConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
}

// HTTPConfig bounds request handling and graceful shutdown.
type HTTPConfig struct {
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// RedisConfig configures the revocation list client. An empty URL selects
// the in-memory revocation list.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// ConnectAttempts is how many pings New tries before giving up.
	ConnectAttempts int
}

// KafkaConfig configures the audit publisher. No brokers selects the
// in-memory audit sink.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
	// RelayInterval and RelayBatch pace the outbox relay when Postgres is
	// also configured.
	RelayInterval time.Duration
	RelayBatch    int
}

const devSigningKey = "dev-secret-key-change-in-production"

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:          envOr("REDHOPE_ADDR", ":8080"),
		Environment:   envOr("ENVIRONMENT", "development"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", devSigningKey),
		JWTIssuer:     envOr("JWT_ISSUER", "redhope"),
		TokenTTL:      durationOr("TOKEN_TTL", 24*time.Hour),
		HTTP: HTTPConfig{
			ReadHeaderTimeout: durationOr("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       durationOr("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:      durationOr("HTTP_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:       durationOr("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout:   durationOr("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: intOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),

			ConnectAttempts: intOr("REDIS_CONNECT_ATTEMPTS", 3),
		},
		Kafka: KafkaConfig{
			Brokers:    collections.SplitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: envOr("AUDIT_TOPIC", "redhope.audit"),

			RelayInterval: durationOr("AUDIT_RELAY_INTERVAL", time.Second),
			RelayBatch:    intOr("AUDIT_RELAY_BATCH", 100),
		},
	}
}

// IsProduction reports whether the process runs with production defaults.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// UsesDevSigningKey is true when JWT_SIGNING_KEY was not provided.
func (s Server) UsesDevSigningKey() bool {
	return s.JWTSigningKey == devSigningKey
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intOr(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}
