package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "qrmenu.db", cfg.DatabasePath)
	assert.Equal(t, "964", cfg.CountryCode)
	assert.Equal(t, "ar-IQ", cfg.Locale)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL.Std())
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("http_port: \"9090\"\nredis_addr: \"localhost:6379\"\nsession_ttl: 24h\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL.Std())
	// Untouched keys keep their defaults.
	assert.Equal(t, "qrmenu.db", cfg.DatabasePath)
}

func TestLoad_EnvWinsOverYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_port: \"9090\"\n"), 0o644))

	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("COUNTRY_CODE", "971")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.HTTPPort)
	assert.Equal(t, "971", cfg.CountryCode)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
