package logging

import (
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/nerrad567/pmc-config/internal/infrastructure/config"
)

// ServiceName is attached to every log record.
const ServiceName = "pmcconfig"

// Logger wraps slog.Logger with pmcconfig-specific functionality.
//
// Records go to the configured console stream and, when a log file is
// configured, to a size-rotated file as well.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	*slog.Logger
	file *lumberjack.Logger
}

// New creates a new Logger with the specified configuration.
//
// It configures:
//   - Output format (text or JSON)
//   - Log level filtering
//   - Default fields (service name, version)
//   - Console destination (stdout or stderr per cfg.Output, default
//     stderr) plus the optional rotating file
func New(cfg config.LoggingConfig, version string, stdout, stderr io.Writer) *Logger {
	w := stderr
	if strings.EqualFold(cfg.Output, "stdout") {
		w = stdout
	}

	l := &Logger{}

	output := w
	if cfg.File.Path != "" {
		l.file = &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSize,    // megabytes
			MaxBackups: cfg.File.MaxBackups, // number of backups
			MaxAge:     cfg.File.MaxAge,     // days
			Compress:   cfg.File.Compress,
			LocalTime:  true,
		}
		output = io.MultiWriter(w, l.file)
	}

	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", ServiceName),
		slog.String("version", version),
	})

	l.Logger = slog.New(handler)
	return l
}

// parseLevel converts a string log level to slog.Level.
//
// Supported levels: debug, info, warn, error
// Defaults to warn if unrecognised.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// With returns a new Logger with additional default attributes.
// The child shares the parent's log file.
//
// Example:
//
//	storeLogger := logger.With("component", "store")
//	storeLogger.Info("saved") // Includes component=store
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
		file:   l.file,
	}
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
