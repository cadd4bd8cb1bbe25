// Package logger provides process-wide logging for the supportdesk CLI and servers.
// Debug, Info and Section output appears only in verbose mode (--verbose), which
// traces routing, retrieval and tool calls. Warnings and errors are always shown.
package logger

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	levels  *zap.SugaredLogger
	plain   *zap.SugaredLogger
)

func init() {
	rebuild()
}

// rebuild recreates the zap loggers for the current output. Callers hold mu.
func rebuild() {
	sink := zapcore.Lock(zapcore.AddSync(output))

	cfg := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		EncodeLevel:      bracketLevel,
		ConsoleSeparator: " ",
		LineEnding:       zapcore.DefaultLineEnding,
	}
	levels = zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), sink, zap.DebugLevel)).Sugar()

	cfg.LevelKey = ""
	plain = zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), sink, zap.DebugLevel)).Sugar()
}

func bracketLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + l.CapitalString() + "]")
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	rebuild()
}

// Zap returns the structured logger backing this package.
// It is not gated by verbose mode.
func Zap() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return levels.Desugar()
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		levels.Debugf(format, args...)
	}
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		plain.Infof("\n=== %s ===", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		levels.Infof(format, args...)
	}
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	levels.Warnf(format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	levels.Errorf(format, args...)
}
