// internal/logger/logger.go
package logger

import (
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls log destinations and rotation.
type Config struct {
	LogFile    string
	MaxSize    int // megabytes
	MaxAge     int // days
	MaxBackups int
	Compress   bool
	Debug      bool
}

// DefaultConfig returns sane production rotation settings.
func DefaultConfig() *Config {
	return &Config{
		LogFile:    "monitor.log",
		MaxSize:    100,
		MaxAge:     7,
		MaxBackups: 3,
		Compress:   true,
	}
}

// Logger extends zap.Logger with monitoring-specific helpers.
type Logger struct {
	*zap.Logger
	config *Config
}

// New builds a logger writing a console stream to stdout and rotated JSON to
// the configured file.
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	logRotator := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)
	fileEncoder := zapcore.NewJSONEncoder(encoderConfig)

	level := zapcore.InfoLevel
	if cfg.Debug {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level),
		zapcore.NewCore(fileEncoder, zapcore.AddSync(logRotator), level),
	)

	return &Logger{
		Logger: zap.New(core,
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		),
		config: cfg,
	}, nil
}

// WithComponent tags log entries with the owning subsystem.
func (l *Logger) WithComponent(component string) *zap.Logger {
	return l.With(zap.String("component", component))
}

// WithCycle returns a child logger carrying a fresh correlation id, grouping
// one monitoring cycle's worth of entries.
func WithCycle(l *zap.Logger) *zap.Logger {
	return l.With(zap.String("cycle_id", uuid.New().String()))
}

// WithSymbol tags entries with the normalized instrument symbol.
func WithSymbol(l *zap.Logger, symbol string) *zap.Logger {
	return l.With(zap.String("symbol", symbol))
}

// Sync flushes buffered entries, swallowing the spurious stdout sync errors
// some platforms report.
func (l *Logger) Sync() error {
	err := l.Logger.Sync()
	if err != nil && (err.Error() == "sync /dev/stdout: invalid argument" ||
		err.Error() == "sync /dev/stderr: inappropriate ioctl for device") {
		return nil
	}
	return err
}
