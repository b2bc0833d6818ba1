package config

import (
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// StorageConfig selects and configures the blob store used for uploaded images.
type StorageConfig struct {
	// Driver is either "local" or "minio".
	Driver    string
	LocalRoot string
	// PublicURL is the base every stored relative path is appended to in responses.
	PublicURL      string
	MaxImageKB     int64
	MaxPostImages  int
	DefaultAvatar  string
	LegacyPrefixes []string
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RedisConfig configures the optional read cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTLSec   int
}

// NATSConfig configures the optional event publisher. An empty URL disables it.
type NATSConfig struct {
	URL string
}

// AuthConfig holds bearer token and password hashing settings.
type AuthConfig struct {
	// TokenTTLHours of 0 issues tokens that never expire.
	TokenTTLHours int
	BcryptCost    int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	AppURL   string
	LogLevel string
	Database DatabaseConfig
	Storage  StorageConfig
	MinIO    MinIOConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Auth     AuthConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	appURL := strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/")

	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"), // default only for non-sensitive value
		AppURL:   appURL,
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Storage: StorageConfig{
			Driver:         getEnv("STORAGE_DRIVER", "local"),
			LocalRoot:      getEnv("STORAGE_LOCAL_ROOT", "storage/app/public"),
			PublicURL:      strings.TrimRight(getEnv("STORAGE_PUBLIC_URL", appURL+"/storage"), "/"),
			MaxImageKB:     int64(getEnvInt("STORAGE_MAX_IMAGE_KB", 2048)),
			MaxPostImages:  getEnvInt("STORAGE_MAX_POST_IMAGES", 10),
			DefaultAvatar:  getEnv("STORAGE_DEFAULT_AVATAR", "download.jpg"),
			LegacyPrefixes: getEnvList("STORAGE_LEGACY_PREFIXES", []string{"http://127.0.0.1:8000/storage/"}),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTLSec:   getEnvInt("CACHE_TTL_SECONDS", 300),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", ""),
		},
		Auth: AuthConfig{
			TokenTTLHours: getEnvInt("TOKEN_TTL_HOURS", 0),
			BcryptCost:    getEnvInt("BCRYPT_COST", 10),
		},
	}
}

// formOverhead covers text fields and multipart framing on top of the image payload.
const formOverhead = 1 << 20

// BodyLimit is the largest request body worth reading: a post carrying the maximum
// number of maximum-size images. Single-image forms fit within it too.
func (c *AppConfig) BodyLimit() int {
	images := int64(c.Storage.MaxPostImages)
	if images < 1 {
		images = 1
	}
	return int(images*c.Storage.MaxImageKB*1024 + formOverhead)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvList splits a comma separated value, dropping empty items.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
