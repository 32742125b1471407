package logger

import (
	"os"
	"path/filepath"
	"testing"

	"xapi-connector/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARNING"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("ERROR"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xapi.log")
	cfg := &models.MConfig{LogLevel: "DEBUG", LogFormat: "json", LogFile: path}

	log := NewLogger(cfg, "Connector")
	log.Info("connected to %s", "xapi.xtb.com:5124")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "connected to xapi.xtb.com:5124")
	assert.Contains(t, string(data), `"logger":"Connector"`)
	assert.Equal(t, "Connector", log.Name())
}

func TestLoggersShareBaseCore(t *testing.T) {
	cfg := &models.MConfig{LogLevel: "INFO", LogFile: filepath.Join(t.TempDir(), "a.log")}
	assert.Same(t, baseLogger(cfg), baseLogger(cfg))
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	log.Debug("dropped %d", 1)
	log.With("k", "v").Error("dropped")
}
