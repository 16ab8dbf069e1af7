// Package log provides the slog loggers used by autoreport.
//
// Loggers write at Warn level by default and at Debug level in verbose
// mode. Every logger is wrapped in a PathHandler, which rewrites absolute
// file paths below the working directory as relative paths so log lines
// stay short and do not leak the user's directory layout into shared logs.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("loaded results", "path", "/home/me/eval/VGG19_results.csv")
//	// path=eval/VGG19_results.csv when run from /home/me
//
//	slog.SetDefault(logger)
package log
