package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content map[string]any) string {
	data, err := yaml.Marshal(content)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoadFile_BundledConfig(t *testing.T) {
	cfg, err := LoadFile("config.yaml")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 30*time.Second, cfg.DBConnectTimeout)
	assert.True(t, cfg.KafkaEnabled())
}

func TestLoadFile_EnvironmentOverride(t *testing.T) {
	path := writeConfig(t, map[string]any{
		"HTTP_PORT":     8080,
		"GRPC_PORT":     50051,
		"DB_HOST":       "localhost",
		"DB_NAME":       "jobboard",
		"JWT_SECRET":    "from-file",
		"KAFKA_BROKERS": []string{"localhost:9092"},
	})

	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 50051, cfg.GRPCPort, "unset variables keep the file value")
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoadFile_EnvironmentOnlyKey(t *testing.T) {
	path := writeConfig(t, map[string]any{
		"DB_HOST": "localhost",
		"DB_NAME": "jobboard",
	})
	t.Setenv("JWT_SECRET", "only-in-env")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "only-in-env", cfg.JWTSecret)
}

func TestLoadFile_EmptyBrokersDisableKafka(t *testing.T) {
	path := writeConfig(t, map[string]any{
		"DB_HOST":    "localhost",
		"DB_NAME":    "jobboard",
		"JWT_SECRET": "secret",
	})

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, 8080, cfg.HTTPPort, "defaults apply to missing keys")
	assert.Equal(t, 30*time.Second, cfg.DBConnectTimeout)
}

func TestLoadFile_Invalid(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		path := writeConfig(t, map[string]any{"DB_HOST": "localhost", "DB_NAME": "jobboard"})
		_, err := LoadFile(path)
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("bad port in env", func(t *testing.T) {
		path := writeConfig(t, map[string]any{"DB_HOST": "localhost", "DB_NAME": "jobboard", "JWT_SECRET": "s"})
		t.Setenv("GRPC_PORT", "not-a-port")
		_, err := LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, strings.ToUpper(err.Error()), "GRPC_PORT")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
