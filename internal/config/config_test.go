package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dkeye/Duet/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, int64(32768), cfg.ReadLimit)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, 10*time.Second, cfg.WriteWait)
	assert.Equal(t, 32, cfg.SendBuffer)
	assert.Equal(t, []string{"*"}, cfg.CORSAllow)
	assert.Equal(t, "echo", cfg.MessageFormat)
}

func TestLoadFile_YAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	yaml := []byte(`
mode: debug
port: 9090
ping_period: 30s
message_format: prefixed
cors_allow:
  - http://localhost:4200
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))
	t.Setenv("DUET_PORT", "7070")

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 7070, cfg.Port, "env overrides file")
	assert.Equal(t, 30*time.Second, cfg.PingPeriod)
	assert.Equal(t, "prefixed", cfg.MessageFormat)
	assert.Equal(t, []string{"http://localhost:4200"}, cfg.CORSAllow)
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("message_format: shout\n"), 0o600))

	_, err := config.LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message_format")
}
