package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrepo/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DOCREPO_CONFIG", "")
	t.Setenv("DOCREPO_API_BASE_URL", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, config.SessionBackendFile, cfg.Session.Backend)
	assert.Equal(t, 4, cfg.Lookup.Concurrency)
	assert.Equal(t, 100*time.Millisecond, cfg.Selector.BlurDelay)
	assert.Equal(t, "docrepo", cfg.Archive.Prefix)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DOCREPO_CONFIG", "")
	t.Setenv("DOCREPO_API_BASE_URL", "https://docs.example.com/")
	t.Setenv("DOCREPO_SESSION_BACKEND", "Memory")
	t.Setenv("DOCREPO_LOOKUP_CONCURRENCY", "0")
	t.Setenv("DOCREPO_SELECTOR_BLUR_DELAY", "250ms")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://docs.example.com", cfg.API.BaseURL)
	assert.Equal(t, config.SessionBackendMemory, cfg.Session.Backend)
	assert.Equal(t, 1, cfg.Lookup.Concurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.Selector.BlurDelay)
}

func TestLoad_UnknownSessionBackend(t *testing.T) {
	t.Setenv("DOCREPO_CONFIG", "")
	t.Setenv("DOCREPO_SESSION_BACKEND", "cookie-jar")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docrepo.yaml")
	content := []byte("api:\n  base_url: http://files.internal:9000\narchive:\n  bucket: doc-archive\n  prefix: /backups/\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("DOCREPO_CONFIG", path)
	t.Setenv("DOCREPO_API_BASE_URL", "")
	t.Setenv("DOCREPO_SESSION_BACKEND", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "http://files.internal:9000", cfg.API.BaseURL)
	assert.Equal(t, "doc-archive", cfg.Archive.Bucket)
	assert.Equal(t, "backups", cfg.Archive.Prefix)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("DOCREPO_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := config.Load()
	assert.Error(t, err)
}
