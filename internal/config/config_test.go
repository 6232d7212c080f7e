package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bq28z610-go/drivers/bq28z610"
)

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, uint16(bq28z610.AddressDefault), cfg.Gauge.Address)
	assert.True(t, cfg.Gauge.CheckSealed)
	assert.Equal(t, 10*time.Second, cfg.Exporter.Interval)

	unseal, full, err := cfg.Keys()
	require.NoError(t, err)
	assert.Equal(t, bq28z610.DefaultUnsealKey, unseal)
	assert.Equal(t, bq28z610.DefaultFullAccessKey, full)

	dc := cfg.DriverConfig()
	assert.Equal(t, bq28z610.DefaultUnsealKey, dc.UnsealKey)
	assert.NoError(t, dc.Validate())
}

func TestFileEnvAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gauge.yaml")
	doc := `
bus:
  name: "/dev/i2c-1"
gauge:
  address: 0x0B
  unsealKey: "0x01234567"
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	t.Setenv("GAUGE_EXPORTER_ADDR", "127.0.0.1:9999")

	cfg, err := Load(path, map[string]any{"bus.sim": true})
	require.NoError(t, err)
	assert.Equal(t, "/dev/i2c-1", cfg.Bus.Name)
	assert.True(t, cfg.Bus.Sim)
	assert.Equal(t, uint16(0x0B), cfg.Gauge.Address)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "127.0.0.1:9999", cfg.Exporter.Addr)
	assert.Equal(t, uint32(0x01234567), cfg.DriverConfig().UnsealKey)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	for name, over := range map[string]map[string]any{
		"address": {"gauge.address": 0x80},
		"key":     {"gauge.unsealKey": "not-a-key"},
		"format":  {"logging.format": "xml"},
		"retries": {"gauge.retries": -1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load("", over)
			assert.Error(t, err)
		})
	}
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey(" 0x36720414 ")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x36720414), k)

	_, err = ParseKey("0x1FFFFFFFF")
	assert.Error(t, err)
}
