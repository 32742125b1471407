package logger

import (
	"os"
	"strings"
	"sync"

	"xapi-connector/src/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// -----------------------------------------------------------------------------

// Logger provides structured logging functionality
type Logger struct {
	name  string
	sugar *zap.SugaredLogger
}

var (
	baseMu    sync.Mutex
	baseCores = map[string]*zap.Logger{}
)

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance. cfg may be nil, in which case
// INFO level console output to stderr is used.
func NewLogger(cfg *models.MConfig, name string) *Logger {
	return &Logger{
		name:  name,
		sugar: baseLogger(cfg).Named(name).Sugar(),
	}
}

// -----------------------------------------------------------------------------

// NewNopLogger returns a logger that drops everything. Handy in tests.
func NewNopLogger() *Logger {
	return &Logger{name: "nop", sugar: zap.NewNop().Sugar()}
}

// -----------------------------------------------------------------------------

// baseLogger shares one core per (level, format, file) so that loggers created
// by different components append to the same rotated file.
func baseLogger(cfg *models.MConfig) *zap.Logger {
	level, format, file := "INFO", "console", ""
	if cfg != nil {
		if cfg.LogLevel != "" {
			level = cfg.LogLevel
		}
		if cfg.LogFormat != "" {
			format = cfg.LogFormat
		}
		file = cfg.LogFile
	}

	key := strings.ToUpper(level) + "|" + format + "|" + file
	baseMu.Lock()
	defer baseMu.Unlock()
	if l, ok := baseCores[key]; ok {
		return l
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if format == "json" {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	sink := zapcore.Lock(os.Stderr)
	if file != "" {
		sink = zapcore.NewMultiWriteSyncer(sink, zapcore.AddSync(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		}))
	}

	core := zapcore.NewCore(encoder, sink, parseLevel(level))
	l := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	baseCores[key] = l
	return l
}

// -----------------------------------------------------------------------------

func parseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARNING", "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// -----------------------------------------------------------------------------

func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// -----------------------------------------------------------------------------

func (l *Logger) Warning(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.sugar.Errorf("CRITICAL: "+format, args...)
	_ = l.sugar.Sync()
	os.Exit(1)
}

// -----------------------------------------------------------------------------

// With returns a child logger carrying structured key/value pairs.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{name: l.name, sugar: l.sugar.With(keysAndValues...)}
}

// -----------------------------------------------------------------------------

// Name returns the component name the logger was created with.
func (l *Logger) Name() string {
	return l.name
}

// -----------------------------------------------------------------------------

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
