package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env             string
	HTTPPort        string
	MongoURI        string
	MongoDatabase   string
	RedisAddr       string
	JWTIssuer       string
	JWTSigningKey   string
	TokenTTL        time.Duration
	QueueBackend    string
	RateLimitPerMin int
	MetricsPort     string

	ResendAPIKey string
	EmailFrom    string
	AdminEmail   string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	// DevMode enables the fixed local admin login. It is forced off in
	// production regardless of the environment variable.
	DevMode      bool
	DevAdminUser string
	DevAdminPass string
}

// Load returns application config populated from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() App {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}

	cfg := App{
		Env:             getEnv("APP_ENV", "dev"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DB", "vbc"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		JWTIssuer:       getEnv("JWT_ISSUER", "vbc-web"),
		JWTSigningKey:   getEnv("JWT_SIGNING_KEY", "dev-signing-secret-change"),
		TokenTTL:        durationEnv("TOKEN_TTL", 24*time.Hour),
		QueueBackend:    getEnv("QUEUE_BACKEND", "redis"),
		MetricsPort:     getEnv("WORKER_METRICS_PORT", "9091"),
		RateLimitPerMin: intEnv("RATE_LIMIT_PER_MIN", 120),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailFrom:    getEnv("EMAIL_FROM", "VBC <noreply@vbc.example.org>"),
		AdminEmail:   os.Getenv("ADMIN_EMAIL"),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "vbc"),

		DevMode:      boolEnv("DEV_MODE", false),
		DevAdminUser: getEnv("DEV_ADMIN_USER", "admin@localhost"),
		DevAdminPass: os.Getenv("DEV_ADMIN_PASS"),
	}

	if cfg.Env == "production" || cfg.Env == "prod" {
		if cfg.DevMode {
			log.Println("DEV_MODE ignored in production")
		}
		cfg.DevMode = false
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if val == "1" || val == "true" || val == "TRUE" {
			return true
		}
		if val == "0" || val == "false" || val == "FALSE" {
			return false
		}
		log.Printf("invalid bool for %s, using fallback %v", key, fallback)
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
