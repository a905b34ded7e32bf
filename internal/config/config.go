package config

import (
	"os"
	"strconv"
)

// MongoConfig holds the document database connection settings.
type MongoConfig struct {
	Host              string
	Port              string
	User              string
	Password          string
	Name              string
	AuthSource        string
	MaxPoolSize       int
	MinPoolSize       int
	ConnectTimeoutSec int
}

// MinIOConfig holds object storage settings for the result offload store.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// OffloadConfig controls when execution results are moved out of the
// document store into object storage.
type OffloadConfig struct {
	// ThresholdBytes is the serialized result size above which the payload
	// is offloaded. Zero disables offloading.
	ThresholdBytes int
	KeyPrefix      string
}

// AppConfig is the centralized configuration struct for the service,
// populated from environment variables.
type AppConfig struct {
	AppHost string
	Port    string
	Mongo   MongoConfig
	MinIO   MinIOConfig
	Offload OffloadConfig
}

// Load reads configuration from environment variables. A .env file can be
// auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
		Mongo: MongoConfig{
			Host:              getEnv("MONGO_HOST", ""),
			Port:              getEnv("MONGO_PORT", "27017"),
			User:              getEnv("MONGO_USER", ""),
			Password:          getEnv("MONGO_PASSWORD", ""),
			Name:              getEnv("MONGO_DB", "execapi"),
			AuthSource:        getEnv("MONGO_AUTH_SOURCE", "admin"),
			MaxPoolSize:       getEnvInt("MONGO_MAX_POOL_SIZE", 20),
			MinPoolSize:       getEnvInt("MONGO_MIN_POOL_SIZE", 0),
			ConnectTimeoutSec: getEnvInt("MONGO_CONNECT_TIMEOUT_SEC", 5),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Offload: OffloadConfig{
			ThresholdBytes: getEnvInt("RESULT_OFFLOAD_THRESHOLD_BYTES", 512*1024),
			KeyPrefix:      getEnv("RESULT_OFFLOAD_KEY_PREFIX", "executions"),
		},
	}
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
