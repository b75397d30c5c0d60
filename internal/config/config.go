package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const defaultJWTSecret = "supersecret"

// Config holds every runtime setting read from the environment.
type Config struct {
	Env       string
	AppPort   int
	APIPrefix string

	DBDialect  string // postgres, mysql or sqlite
	DBDriver   string // pgx or postgres (lib/pq), postgres dialect only
	DBDSN      string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimezone string

	JWTSecret string
	JWTTTL    time.Duration

	DefaultUserPassword string
	AdminEmail          string
	AdminPassword       string

	MediaDir       string
	MediaURLPrefix string

	LogFile  string
	LogLevel string

	CORSAllowedOrigins []string
	LoginRateRPS       float64
	LoginRateBurst     int
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found – relying on env vars")
	}

	cfg := Config{
		Env:       cast.ToString(getOrReturnDefault("APP_ENV", "development")),
		AppPort:   cast.ToInt(getOrReturnDefault("APP_PORT", 8080)),
		APIPrefix: cast.ToString(getOrReturnDefault("API_PREFIX", "/api")),

		DBDialect:  strings.ToLower(cast.ToString(getOrReturnDefault("DB_DIALECT", "postgres"))),
		DBDriver:   strings.ToLower(cast.ToString(getOrReturnDefault("DB_DRIVER", "pgx"))),
		DBDSN:      cast.ToString(getOrReturnDefault("DB_DSN", "")),
		DBHost:     cast.ToString(getOrReturnDefault("DB_HOST", "localhost")),
		DBPort:     cast.ToString(getOrReturnDefault("DB_PORT", "5432")),
		DBUser:     cast.ToString(getOrReturnDefault("DB_USER", "postgres")),
		DBPassword: cast.ToString(getOrReturnDefault("DB_PASSWORD", "password")),
		DBName:     cast.ToString(getOrReturnDefault("DB_NAME", "pilotos")),
		DBSSLMode:  cast.ToString(getOrReturnDefault("DB_SSLMODE", "disable")),
		DBTimezone: cast.ToString(getOrReturnDefault("DB_TIMEZONE", "UTC")),

		JWTSecret: cast.ToString(getOrReturnDefault("JWT_SECRET", defaultJWTSecret)),
		JWTTTL:    time.Duration(cast.ToInt(getOrReturnDefault("JWT_TTL_MINUTES", 60))) * time.Minute,

		DefaultUserPassword: cast.ToString(getOrReturnDefault("DEFAULT_USER_PASSWORD", "")),
		AdminEmail:          cast.ToString(getOrReturnDefault("ADMIN_EMAIL", "")),
		AdminPassword:       cast.ToString(getOrReturnDefault("ADMIN_PASSWORD", "")),

		MediaDir:       cast.ToString(getOrReturnDefault("MEDIA_DIR", "./storage/app/public")),
		MediaURLPrefix: cast.ToString(getOrReturnDefault("MEDIA_URL_PREFIX", "/storage")),

		LogFile:  cast.ToString(getOrReturnDefault("LOG_FILE", "./logs/app.log")),
		LogLevel: cast.ToString(getOrReturnDefault("LOG_LEVEL", "debug")),

		CORSAllowedOrigins: splitList(cast.ToString(getOrReturnDefault("CORS_ALLOWED_ORIGINS", ""))),
		LoginRateRPS:       cast.ToFloat64(getOrReturnDefault("LOGIN_RATE_RPS", 1)),
		LoginRateBurst:     cast.ToInt(getOrReturnDefault("LOGIN_RATE_BURST", 5)),
	}

	if cfg.Env == "production" && cfg.JWTSecret == defaultJWTSecret {
		log.Fatal("JWT_SECRET must be set in production environment")
	}
	return cfg
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	if v, exists := os.LookupEnv(key); exists && v != "" {
		return v
	}
	return defaultValue
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
