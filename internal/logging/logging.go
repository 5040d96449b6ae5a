package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const fileTimestamp = "20060102_150405"

type Options struct {
	// Dir receives instaflow_<timestamp>.log. Empty disables the file sink.
	Dir     string
	Now     time.Time
	Console io.Writer
	Level   zapcore.Level
}

// Logger bundles the root logger with the file it writes to.
type Logger struct {
	*zap.Logger
	Path  string
	close func() error
}

// New builds a logger writing JSON lines to a per-run file and human-readable
// lines to the console.
func New(opts Options) (*Logger, error) {
	if opts.Console == nil {
		opts.Console = os.Stderr
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	level := zap.NewAtomicLevelAt(opts.Level)

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.AddSync(opts.Console), level),
	}

	result := &Logger{close: func() error { return nil }}
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		path := filepath.Join(opts.Dir, fmt.Sprintf("instaflow_%s.log", opts.Now.Format(fileTimestamp)))
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}

		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(file), level))

		result.Path = path
		result.close = file.Close
	}

	result.Logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return result, nil
}

// Close flushes buffered entries and closes the log file.
func (l *Logger) Close() error {
	_ = l.Sync()
	return l.close()
}

func Nop() *Logger {
	return &Logger{Logger: zap.NewNop(), close: func() error { return nil }}
}
