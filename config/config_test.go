package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "openai", cfg.Provider.Name)
	assert.Equal(t, 1024, cfg.Provider.MaxTokens)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TRIAGE_PROVIDER_NAME", "anthropic")
	t.Setenv("TRIAGE_SERVER_ADDR", ":9090")
	t.Setenv("TRIAGE_SESSION_BACKEND", "sqlite")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Provider.Name)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Session.Backend)
}

func TestLoadFileThenEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := []byte("server:\n  addr: \":7070\"\nprovider:\n  name: mock\n  model: scripted\n")
	require.NoError(t, os.WriteFile(path, doc, 0o600))

	t.Setenv("TRIAGE_SERVER_ADDR", ":9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr, "environment wins over file")
	assert.Equal(t, "mock", cfg.Provider.Name)
	assert.Equal(t, "scripted", cfg.Provider.Model)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("TRIAGE_PROVIDER_NAME", "carrier-pigeon")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider")
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
