package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	// Fallback secrets keep local runs working without a .env file. Load refuses
	// them in production.
	FallbackJWTSecret        = "fallback-access-secret-never-use-in-production"
	FallbackJWTRefreshSecret = "fallback-refresh-secret-never-use-in-production"
)

var ErrMissingSecrets = errors.New("JWT_SECRET and JWT_REFRESH_SECRET must be set in production")

type Config struct {
	Env     string
	Port    int
	DBURL   string
	Storage string

	DBAutoMigrate bool

	JWTSecret        string
	JWTRefreshSecret string
	JWTAccessTTL     time.Duration
	JWTRefreshTTL    time.Duration
	// UsingFallbackSecrets is true when at least one secret came from the fallback.
	UsingFallbackSecrets bool

	BcryptCost int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AuthRateLimit  int
	AuthRateWindow time.Duration

	OTELEndpoint   string
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := Config{
		Env:              getEnv("APP_ENV", EnvDevelopment),
		Port:             getEnvInt("PORT", 3000),
		DBURL:            getEnv("DATABASE_URL", buildDBURL()),
		Storage:          strings.ToLower(getEnv("STORAGE", StoragePostgres)),
		DBAutoMigrate:    getEnvBool("DB_AUTO_MIGRATE", false),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		BcryptCost:       getEnvInt("BCRYPT_COST", 10),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		AuthRateLimit:    getEnvInt("AUTH_RATE_LIMIT", 20),
		OTELEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		AllowedOrigins:   splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		MaxBodyBytes:     int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
	}

	var err error

	cfg.JWTAccessTTL, err = ParseExpiry(getEnv("JWT_EXPIRES_IN", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}

	cfg.JWTRefreshTTL, err = ParseExpiry(getEnv("JWT_REFRESH_EXPIRES_IN", "7d"))
	if err != nil {
		return Config{}, fmt.Errorf("JWT_REFRESH_EXPIRES_IN: %w", err)
	}

	cfg.AuthRateWindow, err = ParseExpiry(getEnv("AUTH_RATE_WINDOW", "1m"))
	if err != nil {
		return Config{}, fmt.Errorf("AUTH_RATE_WINDOW: %w", err)
	}

	if err := cfg.applySecretFallbacks(); err != nil {
		return Config{}, err
	}

	if cfg.Storage != StoragePostgres && cfg.Storage != StorageMemory {
		return Config{}, fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, cfg.Storage)
	}

	return cfg, nil
}

func (c *Config) applySecretFallbacks() error {
	if c.JWTSecret != "" && c.JWTRefreshSecret != "" {
		return nil
	}

	if c.IsProduction() {
		return ErrMissingSecrets
	}

	if c.JWTSecret == "" {
		c.JWTSecret = FallbackJWTSecret
	}
	if c.JWTRefreshSecret == "" {
		c.JWTRefreshSecret = FallbackJWTRefreshSecret
	}
	c.UsingFallbackSecrets = true

	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// ExposeErrorDetail controls whether error responses echo the underlying error.
func (c Config) ExposeErrorDetail() bool {
	return c.Env == EnvDevelopment
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "kinerja")
	pass := getEnv("DB_PASSWORD", "kinerja")
	name := getEnv("DB_NAME", "kinerja")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// ParseExpiry accepts Go durations ("15m", "1h30m"), whole days ("7d") and bare
// seconds ("900").
func ParseExpiry(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("empty duration")
	}

	if n, err := strconv.Atoi(raw); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("duration must be positive, got %q", raw)
		}
		return time.Duration(n) * time.Second, nil
	}

	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day count %q", raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", raw)
	}
	return d, nil
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return b
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
