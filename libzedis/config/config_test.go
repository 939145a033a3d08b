package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zedis.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
network = "unix"
address = "/tmp/zedis.sock"
dial_timeout = "2s"
read_timeout = "500ms"
prefer_resp2 = true
log_level = "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "unix", cfg.Network)
	assert.Equal(t, "/tmp/zedis.sock", cfg.Address)
	assert.Equal(t, 2*time.Second, cfg.DialTimeout.Duration)
	assert.Equal(t, 500*time.Millisecond, cfg.ReadTimeout.Duration)
	assert.True(t, cfg.PreferRESP2)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFillsDefaults(t *testing.T) {
	path := writeConfig(t, `address = "redis.internal:6380"`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tcp", cfg.Network)
	assert.Equal(t, "redis.internal:6380", cfg.Address)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout.Duration)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadBadTOML(t *testing.T) {
	path := writeConfig(t, `network = [`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadBadDuration(t *testing.T) {
	path := writeConfig(t, `dial_timeout = "soon"`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(Default()))

	cfg := Default()
	cfg.Network = "udp"
	assert.Error(t, Validate(cfg))

	cfg = Default()
	cfg.Address = ""
	assert.Error(t, Validate(cfg))

	cfg = Default()
	cfg.Network = "ws"
	cfg.Address = "ws://localhost:8080/resp"
	cfg.Proxy = "localhost:1080"
	assert.Error(t, Validate(cfg))
}

func TestClientOptions(t *testing.T) {
	cfg := Default()
	cfg.Proxy = "localhost:1080"
	opts := cfg.ClientOptions()
	assert.Equal(t, cfg.Network, opts.Network)
	assert.Equal(t, cfg.Address, opts.Address)
	assert.Equal(t, cfg.Proxy, opts.ProxyAddr)
	assert.Equal(t, cfg.DialTimeout.Duration, opts.DialTimeout)
}
