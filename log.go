package layercanvas

import "log/slog"

var logger = slog.Default()

// SetLogger sets the logger used for recoverable problems such as singular transformations and paint failures without an error handler. Passing nil restores slog.Default().
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	logger = l
}

// logError logs err if it is non-nil and returns it.
func logError(msg string, err error, args ...any) error {
	if err != nil {
		logger.Error(msg, append([]any{"error", err}, args...)...)
	}
	return err
}

// Logger returns the logger set by SetLogger, for use by surfaces and hosts.
func Logger() *slog.Logger {
	return logger
}
