package capability

import "log/slog"

// SlogLogger adapts Logger to log/slog — every teacher binary in cmd/
// builds its logger this way; acpgo injects the same *slog.Logger
// through this capability instead of reaching for a package-level
// global.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps logger as a Logger.
func NewSlogLogger(logger *slog.Logger) SlogLogger {
	return SlogLogger{logger: logger}
}

// Log implements Logger.
func (s SlogLogger) Log(level Level, msg string, args ...any) {
	switch level {
	case LevelDebug:
		s.logger.Debug(msg, args...)
	case LevelInfo:
		s.logger.Info(msg, args...)
	case LevelWarn:
		s.logger.Warn(msg, args...)
	case LevelError:
		s.logger.Error(msg, args...)
	default:
		s.logger.Info(msg, args...)
	}
}
