package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	origHost := os.Getenv("MONGO_HOST")
	defer os.Setenv("MONGO_HOST", origHost)

	os.Setenv("MONGO_HOST", "test-host")
	os.Setenv("MONGO_MAX_POOL_SIZE", "40")
	os.Setenv("MINIO_USE_SSL", "true")
	os.Setenv("RESULT_OFFLOAD_THRESHOLD_BYTES", "1024")
	defer func() {
		os.Unsetenv("MONGO_MAX_POOL_SIZE")
		os.Unsetenv("MINIO_USE_SSL")
		os.Unsetenv("RESULT_OFFLOAD_THRESHOLD_BYTES")
	}()

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Mongo.Host)
	assert.Equal(t, "27017", cfg.Mongo.Port)
	assert.Equal(t, 40, cfg.Mongo.MaxPoolSize)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 1024, cfg.Offload.ThresholdBytes)
	assert.Equal(t, "executions", cfg.Offload.KeyPrefix)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}
