package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pkgstrings "quoteguard/pkg/platform/strings"
)

// Server captures process-level configuration. Persistence, sequencing, and
// audit backends are all optional: when their URLs are empty the process runs
// on in-memory implementations, which keeps local development dependency-free.
type Server struct {
	Addr          string
	BaseURL       string
	JWTSigningKey string

	DatabaseURL string
	Redis       RedisConfig

	KafkaBrokers []string
	AuditTopic   string

	ArtifactDir  string
	ChromiumPath string
	PDFTimeout   time.Duration
}

// RedisConfig captures connection tuning for the sequence backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("QUOTEGUARD_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	baseURL := strings.TrimRight(os.Getenv("QUOTEGUARD_BASE_URL"), "/")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = pkgstrings.DedupeAndTrim(strings.Split(raw, ","))
	}
	auditTopic := os.Getenv("AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "quoteguard.audit"
	}

	artifactDir := os.Getenv("ARTIFACT_DIR")
	if artifactDir == "" {
		artifactDir = "artifacts"
	}

	return Server{
		Addr:          addr,
		BaseURL:       baseURL,
		JWTSigningKey: jwtSigningKey,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intFromEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: intFromEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationFromEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationFromEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationFromEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		KafkaBrokers: brokers,
		AuditTopic:   auditTopic,
		ArtifactDir:  artifactDir,
		ChromiumPath: os.Getenv("PDF_CHROMIUM_PATH"),
		PDFTimeout:   durationFromEnv("PDF_TIMEOUT", 15*time.Second),
	}
}

func intFromEnv(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
