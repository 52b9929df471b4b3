package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "crm/pkg/platform/strings"
)

// Config is the full process configuration, built once in main.
type Config struct {
	Server     Server
	Database   Database
	Redis      RedisConfig
	Audit      Audit
	Assignment Assignment
	Activity   Activity
	Session    Session
	Kafka      Kafka
	Authz      Authz
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
	LogFormat       string
}

// Database holds the Postgres DSN. An empty URL selects in-memory stores.
type Database struct {
	URL          string
	MaxOpenConns int
	AutoMigrate  bool
}

// RedisConfig holds connection settings. An empty URL keeps dedup and
// fairness state in process memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Audit struct {
	BufferSize       int
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

type Assignment struct {
	IsolationWindow time.Duration
}

type Activity struct {
	IdleTimeout time.Duration
}

type Session struct {
	SigningKey string
	CookieName string
	TokenTTL   time.Duration
}

// Kafka fan-out is disabled when Brokers is empty.
type Kafka struct {
	Brokers         []string
	AssignmentTopic string
}

type Authz struct {
	AdminRoleAliases []string
}

// Defaults shared by FromEnv and tests.
const (
	DefaultIsolationWindow = 2 * time.Second
	DefaultIdleTimeout     = 10 * time.Minute
)

// DefaultAdminRoleAliases are role names granted the superuser bypass.
var DefaultAdminRoleAliases = []string{"admin", "administrador", "administrator", "administradora"}

// FromEnv builds a Config from environment variables so main stays lean.
// Nothing is required; every setting has a development default.
func FromEnv() Config {
	signingKey := os.Getenv("SESSION_SIGNING_KEY")
	if signingKey == "" {
		// Use a default for development - should be overridden in production
		signingKey = "dev-secret-key-change-in-production"
	}

	return Config{
		Server: Server{
			Addr:            envString("CRM_ADDR", ":8080"),
			ShutdownTimeout: envDuration("CRM_SHUTDOWN_TIMEOUT", 10*time.Second),
			LogFormat:       envString("LOG_FORMAT", "json"),
		},
		Database: Database{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 20),
			AutoMigrate:  envString("DATABASE_AUTO_MIGRATE", "true") == "true",
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Audit: Audit{
			BufferSize:       envInt("AUDIT_BUFFER_SIZE", 1024),
			BreakerThreshold: envInt("AUDIT_BREAKER_THRESHOLD", 5),
			BreakerCooldown:  envDuration("AUDIT_BREAKER_COOLDOWN", time.Minute),
		},
		Assignment: Assignment{
			IsolationWindow: envDuration("ASSIGNMENT_ISOLATION_WINDOW", DefaultIsolationWindow),
		},
		Activity: Activity{
			IdleTimeout: envDuration("ACTIVITY_IDLE_TIMEOUT", DefaultIdleTimeout),
		},
		Session: Session{
			SigningKey: signingKey,
			CookieName: envString("SESSION_COOKIE_NAME", "crm_session"),
			TokenTTL:   envDuration("SESSION_TOKEN_TTL", 12*time.Hour),
		},
		Kafka: Kafka{
			Brokers:         envList("KAFKA_BROKERS", nil),
			AssignmentTopic: envString("KAFKA_ASSIGNMENT_TOPIC", "crm.conversation-assignments"),
		},
		Authz: Authz{
			AdminRoleAliases: envList("ADMIN_ROLE_ALIASES", DefaultAdminRoleAliases),
		},
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// envDuration accepts Go duration syntax ("2s") or a bare millisecond count.
func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}

func envList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return platformstrings.SplitList(v)
}
