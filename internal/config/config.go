package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	Telemetry TelemetryConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
	DBMigrate         bool

	Auth   AuthConfig
	Admin  AdminConfig
	Redis  RedisConfig
	Assets AssetsConfig

	CORSAllowedOrigins  []string
	InvoicingConfigFile string
}

// TelemetryConfig drives logging, tracing and the SQL statement log.
type TelemetryConfig struct {
	DeploymentEnv  string
	ServiceVersion string

	LogLevel  string
	LogFormat string

	OtelEnabled       bool
	OtelEndpoint      string
	OtelProtocol      string
	OtelSamplingRatio float64

	SQLLogLevel      string
	SlowSQLThreshold time.Duration
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

// AdminConfig seeds the platform admin account on boot.
type AdminConfig struct {
	Email    string
	Password string
}

type RedisConfig struct {
	Enabled         bool
	Addr            string
	Password        string
	DB              int
	LoginRatePerSec float64
	LoginBurst      int
	FinalizeLockTTL time.Duration
}

type AssetsConfig struct {
	Driver          string
	Bucket          string
	LocalDir        string
	PublicBaseURL   string
	CredentialsJSON string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")

	cfg := Config{
		AppName:           getenv("APP_NAME", "innledger"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       environment,
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		DBType:            getenv("DB_TYPE", "postgres"),
		DBHost:            getenv("DB_HOST", "localhost"),
		DBPort:            getenv("DB_PORT", "5432"),
		DBName:            getenv("DB_NAME", "innledger"),
		DBUser:            getenv("DB_USER", "postgres"),
		DBPassword:        getenv("DB_PASSWORD", ""),
		DBSSLMode:         getenv("DB_SSL_MODE", "disable"),
		DBPath:            getenv("DB_PATH", "innledger.db"),
		DBMaxIdleConn:     getenvInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConn:     getenvInt("DB_MAX_OPEN_CONNS", 50),
		DBConnMaxLifetime: getenvInt("DB_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DB_CONN_MAX_IDLE_TIME", 60),
		DBMigrate:         getenvBool("DB_MIGRATE", true),
		Telemetry: TelemetryConfig{
			DeploymentEnv:     strings.TrimSpace(getenv("DEPLOYMENT_ENV", environment)),
			ServiceVersion:    strings.TrimSpace(getenv("SERVICE_VERSION", getenv("APP_VERSION", "0.1.0"))),
			LogLevel:          strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
			LogFormat:         strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
			OtelEnabled:       getenvBool("OTEL_ENABLED", false),
			OtelEndpoint:      strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", getenv("OTLP_ENDPOINT", "localhost:4317"))),
			OtelProtocol:      strings.ToLower(strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"))),
			OtelSamplingRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
			SQLLogLevel:       strings.ToLower(strings.TrimSpace(getenv("SQL_LOG_LEVEL", "warn"))),
			SlowSQLThreshold:  getenvDuration("SLOW_SQL_THRESHOLD", 200*time.Millisecond),
		},
		Auth: AuthConfig{
			JWTSecret: strings.TrimSpace(getenv("AUTH_JWT_SECRET", "")),
			Issuer:    getenv("AUTH_ISSUER", "innledger"),
			TokenTTL:  getenvDuration("AUTH_TOKEN_TTL", 12*time.Hour),
		},
		Admin: AdminConfig{
			Email:    strings.ToLower(strings.TrimSpace(getenv("ADMIN_EMAIL", ""))),
			Password: getenv("ADMIN_PASSWORD", ""),
		},
		Redis: RedisConfig{
			Enabled:         getenvBool("REDIS_ENABLED", false),
			Addr:            strings.TrimSpace(getenv("REDIS_ADDR", "localhost:6379")),
			Password:        strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			DB:              getenvInt("REDIS_DB", 0),
			LoginRatePerSec: getenvFloat("LOGIN_RATE_PER_SEC", 0.2),
			LoginBurst:      getenvInt("LOGIN_BURST", 5),
			FinalizeLockTTL: getenvDuration("FINALIZE_LOCK_TTL", 10*time.Second),
		},
		Assets: AssetsConfig{
			Driver:          strings.ToLower(getenv("ASSETS_DRIVER", "local")),
			Bucket:          strings.TrimSpace(getenv("ASSETS_BUCKET", "")),
			LocalDir:        getenv("ASSETS_LOCAL_DIR", "./data/assets"),
			PublicBaseURL:   strings.TrimRight(getenv("ASSETS_PUBLIC_BASE_URL", "/assets"), "/"),
			CredentialsJSON: strings.TrimSpace(os.Getenv("GCS_CREDENTIALS_JSON")),
		},
		CORSAllowedOrigins:  splitAndTrim(getenv("CORS_ALLOWED_ORIGINS", "")),
		InvoicingConfigFile: strings.TrimSpace(getenv("INVOICING_CONFIG_FILE", "")),
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
