package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	envDevelopment   = "development"
	defaultJWTSecret = "dev-secret"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
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

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr              string
	Password          string
	DB                int
	DialTimeoutMillis int
	IOTimeoutMillis   int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Development bool
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	JWTAlgorithm          string
	AccessTokenTTLMinutes int
	BcryptCost            int
	LoginMaxAttempts      int
	LoginLockoutMinutes   int
	AdminName             string
	AdminPhone            string
	AdminPassword         string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	env := getEnv("APP_ENV", envDevelopment)

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "yuhuhero-service"),
			Env:                   env,
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8000"),
			Version:               getEnv("APP_VERSION", "dev"),
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
			Addr:              os.Getenv("REDIS_ADDR"),
			Password:          os.Getenv("REDIS_PASSWORD"),
			DB:                redisDB,
			DialTimeoutMillis: getEnvAsInt("REDIS_DIAL_TIMEOUT_MS", 500),
			IOTimeoutMillis:   getEnvAsInt("REDIS_IO_TIMEOUT_MS", 250),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: env == envDevelopment,
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", defaultJWTSecret),
			JWTAlgorithm:          strings.ToUpper(getEnv("AUTH_JWT_ALGORITHM", "HS256")),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60*24*7),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			LoginMaxAttempts:      getEnvAsInt("AUTH_LOGIN_MAX_ATTEMPTS", 5),
			LoginLockoutMinutes:   getEnvAsInt("AUTH_LOGIN_LOCKOUT_MINUTES", 15),
			AdminName:             getEnv("AUTH_ADMIN_NAME", "Administrator"),
			AdminPhone:            os.Getenv("AUTH_ADMIN_PHONE"),
			AdminPassword:         os.Getenv("AUTH_ADMIN_PASSWORD"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET must not be empty"))
	} else if c.Auth.JWTSecret == defaultJWTSecret && c.App.Env != envDevelopment {
		errs = append(errs, fmt.Errorf("AUTH_JWT_SECRET must be set when APP_ENV is %q", c.App.Env))
	}
	switch c.Auth.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("AUTH_JWT_ALGORITHM %q is not supported", c.Auth.JWTAlgorithm))
	}
	if c.Auth.AccessTokenTTLMinutes <= 0 {
		errs = append(errs, errors.New("AUTH_ACCESS_TOKEN_TTL_MINUTES must be positive"))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("AUTH_BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if (c.Auth.AdminPhone == "") != (c.Auth.AdminPassword == "") {
		errs = append(errs, errors.New("AUTH_ADMIN_PHONE and AUTH_ADMIN_PASSWORD must be set together"))
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

// DialTimeout bounds connection setup; zero keeps the go-redis default.
func (r RedisConfig) DialTimeout() time.Duration {
	return millis(r.DialTimeoutMillis)
}

// IOTimeout bounds each read and write so an unreachable Redis fails fast.
func (r RedisConfig) IOTimeout() time.Duration {
	return millis(r.IOTimeoutMillis)
}

func millis(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Millisecond
}

// AccessTokenTTL returns the default lifetime of issued access tokens.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// LoginLockout returns the window failed logins are counted over.
func (a AuthConfig) LoginLockout() time.Duration {
	if a.LoginLockoutMinutes <= 0 {
		return 0
	}
	return time.Duration(a.LoginLockoutMinutes) * time.Minute
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
