package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	SMTP     SMTPConfig
	Workflow WorkflowConfig
	Admin    AdminSeed
}

type AppConfig struct {
	Port               string
	Environment        string
	JWTSecret          string
	TokenTTL           time.Duration
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	SentryDSN          string
}

type DatabaseConfig struct {
	URI     string
	Name    string
	Timeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type WorkflowConfig struct {
	ReconcileInterval time.Duration
	IntentRetryAfter  time.Duration
	PlanCacheTTL      time.Duration
}

// AdminSeed is the bootstrap admin account created when no admin with that
// email exists yet.
type AdminSeed struct {
	Email    string
	Password string
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}

// Load reads .env (when present) and the process environment
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	mongoURI := getEnv("MONGO_URI", "")
	if mongoURI == "" {
		mongoURI = getEnv("MONGODB_URI", "")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("PORT", "8080"),
			Environment:        getEnv("ENV", "development"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			TokenTTL:           getEnvAsDuration("TOKEN_TTL", 7*24*time.Hour),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/couplecanvas.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			SentryDSN:          getEnv("SENTRY_DSN", ""),
		},
		Database: DatabaseConfig{
			URI:     mongoURI,
			Name:    getEnv("DB_NAME", "couplecanvas"),
			Timeout: getEnvAsDuration("DB_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 2525),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("FROM_EMAIL", ""),
		},
		Workflow: WorkflowConfig{
			ReconcileInterval: getEnvAsDuration("RECONCILE_INTERVAL", 0),
			IntentRetryAfter:  getEnvAsDuration("INTENT_RETRY_AFTER", 2*time.Minute),
			PlanCacheTTL:      getEnvAsDuration("PLAN_CACHE_TTL", 5*time.Minute),
		},
		Admin: AdminSeed{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid duration %q for %s, using %s", raw, key, fallback)
		return fallback
	}
	return d
}
