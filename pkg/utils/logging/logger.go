package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogsDir is where run logs are written, relative to the working directory
const LogsDir = "logs"

// Options tune the console half of the logger. The file half always records debug.
type Options struct {
	// Verbose lowers the console level to debug
	Verbose bool
	// Dir overrides LogsDir
	Dir string
}

// InitLogger builds a zap logger that writes human-readable lines to stderr and
// JSON lines to logs/admission_<env>_<timestamp>.log. The returned path is the log file.
func InitLogger(env string, opts Options) (*zap.Logger, string, error) {
	dir := opts.Dir
	if dir == "" {
		dir = LogsDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create logs directory: %w", err)
	}

	logPath := filepath.Join(dir, logFileName(env, time.Now()))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open log file: %w", err)
	}

	consoleLevel := zapcore.InfoLevel
	if opts.Verbose {
		consoleLevel = zapcore.DebugLevel
	}

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder(), zapcore.Lock(os.Stderr), consoleLevel),
		zapcore.NewCore(fileEncoder(), zapcore.AddSync(logFile), zapcore.DebugLevel),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("env", env))

	return logger, logPath, nil
}

func logFileName(env string, at time.Time) string {
	if env == "" {
		env = "default"
	}
	return fmt.Sprintf("admission_%s_%s.log", env, at.Format("2006-01-02_15-04-05"))
}

func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func fileEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(cfg)
}
