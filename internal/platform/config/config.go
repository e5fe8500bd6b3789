package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "campuspass/pkg/platform/strings"
)

// Environment selects production vs development behavior. Development mode
// relaxes two things only: a missing push token is replaced with a generated
// placeholder, and permissive pass-auth verification may be enabled.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Server captures process-level configuration for the pass service.
type Server struct {
	Addr        string
	Environment string

	// DatabaseURL selects the Postgres-backed stores; when empty the server
	// runs on in-memory stores (development only).
	DatabaseURL string

	Redis RedisConfig
	Kafka KafkaConfig

	// PassTypeID is the pass type identifier wallet clients address in URLs.
	PassTypeID string
	// PassAuthSecret keys the HMAC pass-auth token scheme.
	PassAuthSecret string
	// PassAuthPermissive downgrades auth mismatches to warnings. It is an
	// explicit, auditable switch and is refused in production.
	PassAuthPermissive bool

	// PassSigningKey keys the development pass signer.
	PassSigningKey string
	// OrgName appears on built passes as the issuing organization.
	OrgName string

	// StaffJWTSigningKey verifies staff tokens on the admin enrollment API.
	StaffJWTSigningKey string

	// PhotoFetchTimeout bounds the builder's photo download.
	PhotoFetchTimeout time.Duration
	// PhotoCacheTTL bounds how long fetched photos stay in the Redis cache.
	PhotoCacheTTL time.Duration
}

// RedisConfig captures Redis connection settings. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig captures the pass-update event topic settings. Empty brokers
// disable the Kafka publisher (events are logged only).
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:               envOr("CAMPUSPASS_ADDR", ":8080"),
		Environment:        envOr("CAMPUSPASS_ENV", EnvDevelopment),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		PassTypeID:         envOr("PASS_TYPE_ID", "pass.ac.campus.student"),
		PassAuthSecret:     os.Getenv("PASS_AUTH_SECRET"),
		PassSigningKey:     os.Getenv("PASS_SIGNING_KEY"),
		OrgName:            envOr("CAMPUSPASS_ORG_NAME", "Campus University"),
		StaffJWTSigningKey: os.Getenv("STAFF_JWT_SIGNING_KEY"),
		PhotoFetchTimeout:  durationOr("PHOTO_FETCH_TIMEOUT", 10*time.Second),
		PhotoCacheTTL:      durationOr("PHOTO_CACHE_TTL", 15*time.Minute),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: intOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			Topic:   envOr("KAFKA_PASS_EVENTS_TOPIC", "campuspass.pass-events"),
		},
	}

	// Permissive auth exists for protocol conformance testing against clients
	// that do not yet send credentials. Production always runs strict.
	if os.Getenv("PASS_AUTH_MODE") == "permissive" && cfg.Environment != EnvProduction {
		cfg.PassAuthPermissive = true
	}

	if cfg.PassAuthSecret == "" {
		// Use a default for development - must be overridden in production
		cfg.PassAuthSecret = "dev-pass-auth-secret-change-in-production"
	}
	if cfg.StaffJWTSigningKey == "" {
		cfg.StaffJWTSigningKey = "dev-secret-key-change-in-production"
	}
	if cfg.PassSigningKey == "" {
		cfg.PassSigningKey = "dev-pass-signing-key-change-in-production"
	}

	return cfg
}

// IsProduction reports whether the server runs with production strictness.
func (s Server) IsProduction() bool {
	return s.Environment == EnvProduction
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// splitNonEmpty turns a comma-separated broker list into a deduplicated,
// trimmed slice. A repeated broker in the env var would otherwise double up
// the Kafka seed list.
func splitNonEmpty(v string) []string {
	if v == "" {
		return nil
	}
	return platformstrings.DedupeAndTrim(strings.Split(v, ","))
}
