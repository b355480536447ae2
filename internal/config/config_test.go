package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TEST_REDIS_PASSWORD", "s3cret")

	raw := `
database:
  path: ` + filepath.Join(dir, "data", "booking.db") + `
redis:
  address: "localhost:6379"
  password: "${TEST_REDIS_PASSWORD}"
campus:
  timezone: "Asia/Ho_Chi_Minh"
  open_time: "07:00"
  close_time: "22:00"
penalty:
  no_show_limit: 4
  block_days: 30
`
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Redis.Password, "env placeholders expand")
	assert.Equal(t, "Asia/Ho_Chi_Minh", cfg.Campus.Timezone)
	assert.Equal(t, 4, cfg.NoShowLimit())
	assert.Equal(t, 30*24*time.Hour, cfg.BlockDuration())
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  path: "+filepath.Join(dir, "db", "b.db")+"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "UTC", cfg.Campus.Timezone)
	assert.Equal(t, 4, cfg.NoShowLimit())
	assert.Equal(t, 30*24*time.Hour, cfg.BlockDuration())
	assert.Equal(t, 60*time.Second, cfg.CacheTTL())
	assert.DirExists(t, filepath.Join(dir, "db"))
}
