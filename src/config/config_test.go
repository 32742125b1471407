package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"xapi-connector/src/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
name: gateway
host: 0.0.0.0
port: 8080
log_level: DEBUG
xapi:
  mode: real
  transport: websocket
  user: "12345"
  app_name: tests
storage:
  db_type: sqlite
  db_path: ticks.db
data_source:
  symbols: [EURUSD, US500]
  update_interval_seconds: 2
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestNewConfigAppliesModeDefaults(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "gateway", cfg.Name)
	assert.Equal(t, DefaultXapiHost, cfg.Xapi.Host)
	assert.Equal(t, RealPort, cfg.Xapi.Port)
	assert.Equal(t, RealStreamPort, cfg.Xapi.StreamPort)
	assert.Equal(t, "wss://ws.xtb.com/real", cfg.Xapi.URL)
	assert.Equal(t, "wss://ws.xtb.com/realStream", cfg.Xapi.StreamURL)
	assert.Equal(t, 200, cfg.Xapi.MinRequestIntervalMs)
	assert.Equal(t, 2, cfg.DataSource.UpdateIntervalSeconds)
	assert.Equal(t, 7, cfg.DataSource.DataRetentionDays)
	assert.Equal(t, []string{"EURUSD", "US500"}, cfg.DataSource.Symbols)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("XAPI_USER", "999")
	t.Setenv("XAPI_PASSWORD", "secret")
	t.Setenv("XAPI_MODE", "DEMO")
	t.Setenv("XAPI_LOG_LEVEL", "ERROR")

	cfg, err := NewConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "999", cfg.Xapi.User)
	assert.Equal(t, "secret", cfg.Xapi.Password)
	assert.Equal(t, "demo", cfg.Xapi.Mode)
	assert.Equal(t, DemoPort, cfg.Xapi.Port)
	assert.Equal(t, "ERROR", cfg.LogLevel)
	assert.True(t, cfg.HasCredentials())
}

func TestUnprefixedUserIsIgnored(t *testing.T) {
	t.Setenv("USER", "root")
	t.Setenv("XAPI_USER", "")

	cfg, err := NewConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "12345", cfg.Xapi.User)
}

func TestValidationErrors(t *testing.T) {
	cases := map[string]string{
		"bad mode":        "name: x\nxapi:\n  mode: paper\n",
		"bad transport":   "name: x\nxapi:\n  transport: udp\n",
		"missing name":    "port: 8080\n",
		"sqlite no path":  "name: x\nstorage:\n  db_type: sqlite\n",
		"postgres no dsn": "name: x\nstorage:\n  db_type: postgres\n",
		"low port":        "name: x\nport: 80\n",
		"empty symbol":    "name: x\ndata_source:\n  symbols: [\"\"]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewConfig(writeConfig(t, body))
			require.Error(t, err)
			var cfgErr *helpers.ConfigurationError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	var cfgErr *helpers.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultAndSaveRoundTrip(t *testing.T) {
	t.Setenv("XAPI_PASSWORD", "hunter2")
	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Xapi.Mode)
	assert.Equal(t, DemoPort, cfg.Xapi.Port)

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")

	t.Setenv("XAPI_PASSWORD", "")
	loaded, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Xapi.Port, loaded.Xapi.Port)
	assert.Equal(t, cfg.DataSource.Symbols, loaded.DataSource.Symbols)
	assert.Empty(t, loaded.Xapi.Password)
	assert.Equal(t, "hunter2", cfg.Xapi.Password)
}
