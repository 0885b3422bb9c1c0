package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs the test from an empty directory so no config file is found.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	inTempDir(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, 60*time.Second, cfg.PongWait)
	assert.Equal(t, "local", cfg.Broker)
	assert.Equal(t, "kick", cfg.Backpressure)
	assert.Equal(t, 64, cfg.SendBuffer)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), []byte(
		"port: 9000\nbroker: redis\nredis_addr: redis:6379\nlog_level: debug\n"), 0o644))
	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("CODEROOM_PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port, "env wins over file")
	assert.Equal(t, "redis", cfg.Broker)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	inTempDir(t)
	t.Setenv("CODEROOM_BROKER", "carrier-pigeon")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{Port: 8080, PingPeriod: time.Second, PongWait: 2 * time.Second, SendBuffer: 1, Broker: "local"}
	require.NoError(t, base.Validate())

	bad := base
	bad.PongWait = bad.PingPeriod
	assert.Error(t, bad.Validate())

	bad = base
	bad.SendBuffer = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.Port = 0
	assert.Error(t, bad.Validate())
}

func TestLoadAndWatch_ReportsChanges(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "config"), 0o755))
	file := filepath.Join(dir, "config", "config.watch.yaml")
	require.NoError(t, os.WriteFile(file, []byte("log_level: info\n"), 0o644))
	t.Setenv("CONFIG_ENV", "watch")

	changes := make(chan *Config, 4)
	cfg, err := LoadAndWatch(func(c *Config) {
		select {
		case changes <- c:
		default:
		}
	})
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)

	require.NoError(t, os.WriteFile(file, []byte("log_level: debug\n"), 0o644))
	// A rewrite may surface as several events; wait for the final content.
	deadline := time.After(3 * time.Second)
	for {
		select {
		case next := <-changes:
			if next.LogLevel == "debug" {
				return
			}
		case <-deadline:
			t.Fatal("no config change observed")
		}
	}
}
