package config

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port        string
	SQLitePath  string
	RedisAddr   string
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	// AdminSignupCode, when non-empty, lets a sign-up request claim the
	// admin role by presenting the same code.
	AdminSignupCode string

	// LogFile enables rotating file logging when set.
	LogFile string

	// Blob store settings; all empty means images are always inlined.
	BlobEndpoint  string
	BlobAccessKey string
	BlobSecretKey string
	BlobBucket    string
	BlobUseSSL    bool
}

var (
	cfg  *Config
	once sync.Once
)

// Get loads the configuration on first use. A .env file in the working
// directory is honored if present; real environment variables win.
func Get() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		cfg = &Config{
			Port:            getEnv("PORT", "8008"),
			SQLitePath:      getEnv("SQLITE_PATH", "project-collab.db"),
			RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
			JWTSecret:       getEnv("JWT_SECRET", "development-insecure-secret-change-me"),
			JWTIssuer:       getEnv("JWT_ISSUER", "project-collab-api"),
			JWTAudience:     getEnv("JWT_AUDIENCE", "project-collab-clients"),
			AdminSignupCode: getEnv("ADMIN_SIGNUP_CODE", ""),
			LogFile:         getEnv("LOG_FILE", ""),
			BlobEndpoint:    getEnv("BLOB_ENDPOINT", ""),
			BlobAccessKey:   getEnv("BLOB_ACCESS_KEY", ""),
			BlobSecretKey:   getEnv("BLOB_SECRET_KEY", ""),
			BlobBucket:      getEnv("BLOB_BUCKET", "comment-images"),
			BlobUseSSL:      getEnv("BLOB_USE_SSL", "") == "true",
		}
	})
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
