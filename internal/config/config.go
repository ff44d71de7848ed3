package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Admin    AdminConfig
	Activity ActivityConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	StaticDir             string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	HitsKey  string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret           string
	JWTIssuer           string
	DefaultTokenSeconds int
	ArgonTime           int
	ArgonMemoryKiB      int
	ArgonThreads        int
}

// AdminConfig gates the admin endpoints.
type AdminConfig struct {
	AllowDataReset bool
}

// ActivityConfig holds stub activity notification targets.
type ActivityConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "chirpy"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			StaticDir:             getEnv("APP_STATIC_DIR", "./app"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			HitsKey:  getEnv("REDIS_HITS_KEY", "chirpy:fileserver_hits"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:           os.Getenv("AUTH_JWT_SECRET"),
			JWTIssuer:           getEnv("AUTH_JWT_ISSUER", "chirpy"),
			DefaultTokenSeconds: getEnvAsInt("AUTH_TOKEN_DEFAULT_SECONDS", 3600),
			ArgonTime:           getEnvAsInt("AUTH_ARGON2_TIME", 3),
			ArgonMemoryKiB:      getEnvAsInt("AUTH_ARGON2_MEMORY_KIB", 64*1024),
			ArgonThreads:        getEnvAsInt("AUTH_ARGON2_THREADS", 4),
		},
		Admin: AdminConfig{
			AllowDataReset: getEnvAsBool("ADMIN_ALLOW_DATA_RESET", false),
		},
		Activity: ActivityConfig{
			WebhookURL: getEnv("ACTIVITY_WEBHOOK_URL", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports missing required settings.
func (c *Config) Validate() error {
	var errs []error
	if c.Postgres.DSN == "" {
		errs = append(errs, errors.New("POSTGRES_DSN is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET is required"))
	}
	if c.Auth.DefaultTokenSeconds <= 0 {
		errs = append(errs, fmt.Errorf("AUTH_TOKEN_DEFAULT_SECONDS must be positive, got %d", c.Auth.DefaultTokenSeconds))
	}
	if c.Auth.ArgonTime < 1 || int64(c.Auth.ArgonTime) > math.MaxUint32 {
		errs = append(errs, fmt.Errorf("AUTH_ARGON2_TIME must be between 1 and %d, got %d", uint32(math.MaxUint32), c.Auth.ArgonTime))
	}
	if c.Auth.ArgonMemoryKiB < 1 || int64(c.Auth.ArgonMemoryKiB) > math.MaxUint32 {
		errs = append(errs, fmt.Errorf("AUTH_ARGON2_MEMORY_KIB must be between 1 and %d, got %d", uint32(math.MaxUint32), c.Auth.ArgonMemoryKiB))
	}
	if c.Auth.ArgonThreads < 1 || c.Auth.ArgonThreads > math.MaxUint8 {
		errs = append(errs, fmt.Errorf("AUTH_ARGON2_THREADS must be between 1 and %d, got %d", math.MaxUint8, c.Auth.ArgonThreads))
	}
	return errors.Join(errs...)
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// DefaultTokenTTL is both the default and the maximum access token lifetime.
func (a AuthConfig) DefaultTokenTTL() time.Duration {
	return time.Duration(a.DefaultTokenSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
