// Package logging provides structured logging for ccdir on top of log/slog.
//
// Two output formats are supported: a colorized text format tuned for
// terminals and JSON for machines. A [MultiHandler] tees records to several
// handlers, which the CLI uses to mirror logs into a --log-file.
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("catalog loaded", "resources", 42)
//
// Values whose key looks sensitive (token, secret, password, ...) or whose
// value carries a well-known token prefix are masked by the text handler.
//
// In tests, [ForTest] routes output through t.Log.
package logging
