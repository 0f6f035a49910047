package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"esocial/internal/domain/esocial"
)

type Config struct {
	Addr               string
	DatabaseURL        string
	JWTSecret          string
	Environment        string
	RunMigrations      bool
	MigrationsDir      string
	RunSeed            bool
	SeedTenantName     string
	SeedRegistry       string
	MaxBodyBytes       int64
	MetricsEnabled     bool
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
	LogLevel           string
	RateLimitPerMinute int
	ESocial            esocial.Options
}

func Load() Config {
	defaults := esocial.DefaultOptions()
	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		Environment:        getEnv("APP_ENV", "development"),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", "migrations"),
		RunSeed:            getEnvBool("RUN_SEED", false),
		SeedTenantName:     getEnv("SEED_TENANT_NAME", "Default Tenant"),
		SeedRegistry:       getEnv("SEED_INSTITUTION_REGISTRY", ""),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 8*1048576)),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		ESocial: esocial.Options{
			Environment:          getEnv("ESOCIAL_ENVIRONMENT", defaults.Environment),
			ProcessCode:          getEnv("ESOCIAL_PROCESS_CODE", defaults.ProcessCode),
			ProcessVersion:       getEnv("ESOCIAL_PROCESS_VERSION", defaults.ProcessVersion),
			Retification:         getEnv("ESOCIAL_RETIFICATION", defaults.Retification),
			RubricTable:          getEnv("ESOCIAL_RUBRIC_TABLE", defaults.RubricTable),
			FallbackRubric:       getEnv("ESOCIAL_FALLBACK_RUBRIC", defaults.FallbackRubric),
			SocialSecurityRubric: getEnv("ESOCIAL_SOCIAL_SECURITY_RUBRIC", defaults.SocialSecurityRubric),
			IncomeTaxRubric:      getEnv("ESOCIAL_INCOME_TAX_RUBRIC", defaults.IncomeTaxRubric),
			PaymentDay:           getEnvInt("ESOCIAL_PAYMENT_DAY", defaults.PaymentDay),
			PaymentType:          getEnv("ESOCIAL_PAYMENT_TYPE", defaults.PaymentType),
			LotacaoCode:          getEnv("ESOCIAL_LOTACAO", defaults.LotacaoCode),
			Workers:              getEnvInt("ESOCIAL_WORKERS", defaults.Workers),
		},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) Validate() error {
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if err := c.ESocial.Validate(); err != nil {
		return fmt.Errorf("ESOCIAL settings: %w", err)
	}
	return nil
}
