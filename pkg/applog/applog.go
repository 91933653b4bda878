// Package applog constructs the engine's single process-wide logger.
// There is no package-level global: the CLI command that needs a logger
// builds one *zap.SugaredLogger from its flags and passes it explicitly
// to every component that logs, matching sigmaseven-cerberus's
// cmd/feeds.go construction.
package applog

import "go.uber.org/zap"

// New builds a SugaredLogger: a human-readable console encoder when
// verbose output is requested (development-style, with stack traces on
// warnings and above), otherwise a quiet production JSON encoder.
func New(verbose bool) (*zap.SugaredLogger, error) {
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		return logger.Sugar(), nil
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Noop returns a logger that discards everything, for tests and library
// callers that do not want the engine's own logging.
func Noop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
