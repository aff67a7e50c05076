package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// AuthMode selects the request authentication strategy at startup.
const (
	AuthModeBasic   = "basic"
	AuthModeSession = "session"
)

// SessionBackend selects where the session registry keeps its state.
const (
	SessionBackendStore = "store"
	SessionBackendRedis = "redis"
)

type AppConfig struct {
	App      AppSettings      `mapstructure:"app"`
	Postgres PostgresSettings `mapstructure:"postgres"`
	Redis    RedisSettings    `mapstructure:"redis"`
	Kafka    KafkaSettings    `mapstructure:"kafka"`
	Session  SessionSettings  `mapstructure:"session"`
	Auth     AuthSettings     `mapstructure:"auth"`
	Bcrypt   BcryptSettings   `mapstructure:"bcrypt"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type PostgresSettings struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// RedisSettings configures the Redis connection used by the Redis-backed
// session registry.
type RedisSettings struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
	KeyPrefix  string `mapstructure:"key_prefix"`
}

// KafkaSettings configures the event publisher. An empty broker list falls
// back to the logging stub publisher.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
	Async       bool     `mapstructure:"async"`
}

// SessionSettings configures the session cookie and lifetime.
// Duration is whole seconds; a non-positive value disables expiry.
type SessionSettings struct {
	Name     string `mapstructure:"name"`
	Duration int    `mapstructure:"-"`
	Backend  string `mapstructure:"backend"`
}

// AuthSettings selects the authentication strategy and the request paths it
// never applies to.
type AuthSettings struct {
	Mode          string   `mapstructure:"mode"`
	ExcludedPaths []string `mapstructure:"excluded_paths"`
}

// BcryptSettings configures the password hashing work factor.
type BcryptSettings struct {
	Cost int `mapstructure:"cost"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("AUTH")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.key_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
		"kafka.async",
		"session.name",
		"session.duration",
		"session.backend",
		"auth.mode",
		"auth.excluded_paths",
		"bcrypt.cost",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// A non-numeric or absent SESSION_DURATION means "never expires", so
	// the value is parsed leniently instead of failing the whole load.
	cfg.Session.Duration = parseSeconds(v.GetString("session.duration"))

	switch cfg.Auth.Mode {
	case AuthModeBasic, AuthModeSession:
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}

	switch cfg.Session.Backend {
	case SessionBackendStore, SessionBackendRedis:
	default:
		return nil, fmt.Errorf("unsupported session backend %q", cfg.Session.Backend)
	}

	return &cfg, nil
}

func parseSeconds(raw string) int {
	seconds, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return seconds
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "user-auth-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "auth")
	v.SetDefault("postgres.password", "auth_password")
	v.SetDefault("postgres.database", "auth")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.key_prefix", "auth:session")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "auth")
	v.SetDefault("kafka.async", true)

	v.SetDefault("session.name", "session_id")
	v.SetDefault("session.duration", "0")
	v.SetDefault("session.backend", SessionBackendStore)

	v.SetDefault("auth.mode", AuthModeSession)
	v.SetDefault("auth.excluded_paths", []string{
		"/",
		"/users/",
		"/sessions/",
		"/reset_password/",
		"/healthz/",
		"/readyz/",
		"/metrics/",
	})

	v.SetDefault("bcrypt.cost", 10)
}

// bindEnvs registers both the AUTH_-prefixed and the bare environment name
// for each key, so SESSION_NAME and SESSION_DURATION keep working alongside
// AUTH_SESSION_NAME and AUTH_SESSION_DURATION.
func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "AUTH_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
