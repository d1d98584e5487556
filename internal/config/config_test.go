package config_test

import (
	"os"
	"path/filepath"
	"sigscan/internal/config"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: production
http:
  addr: ":9090"
  enablePprof: true
scanner:
  workers: 3
  extensions: [exe, dll, sys]
  algorithm: blake2b-256
  blocklistPath: /etc/sigscan/blocklist.txt
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, ":9090", cfg.HTTP.Addr)
	require.True(t, cfg.HTTP.EnablePprof)
	require.Equal(t, 3, cfg.Scanner.Workers)
	require.Equal(t, []string{"exe", "dll", "sys"}, cfg.Scanner.Extensions)
	require.Equal(t, "blake2b-256", cfg.Scanner.Algorithm)
	require.Equal(t, "/etc/sigscan/blocklist.txt", cfg.Scanner.BlocklistPath)
	// untouched keys keep their defaults
	require.Equal(t, "/metrics", cfg.HTTP.MetricsPath)
	require.Equal(t, 8192, cfg.Scanner.BufferSize)
	require.Equal(t, 10*time.Second, cfg.GracefulShutdownTimeout)
}

func TestLoad_MissingFileUsesEnvironment(t *testing.T) {
	t.Setenv("SCANNER_EXTENSIONS", "exe,msi")
	t.Setenv("SCANNER_WORKERS", "2")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, []string{"exe", "msi"}, cfg.Scanner.Extensions)
	require.Equal(t, 2, cfg.Scanner.Workers)
	require.Equal(t, "sha256", cfg.Scanner.Algorithm)
	require.False(t, cfg.Scanner.CaseInsensitiveExtensions)
	require.Empty(t, cfg.JWT.PublicKey)
	require.Equal(t, "127.0.0.1:8080", cfg.HTTP.Addr)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  addr: \":9090\"\n"), 0o600))
	t.Setenv("HTTP_ADDR", ":7070")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.HTTP.Addr)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("scanner: [not, a, map"), 0o600))

	_, err := config.Load(path)
	require.ErrorContains(t, err, "could not read config")
}
