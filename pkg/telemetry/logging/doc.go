// Package logging builds the process logger on log/slog.
//
// The logger writes JSON (or text) records, scrubs credentials from every
// attribute before it reaches the output, and stamps each record with the
// request ID carried in its context. The level lives in a slog.LevelVar so
// it can be changed while the server runs:
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json", Redact: true})
//	slog.SetDefault(logger.Logger)
//	...
//	logger.SetLevel("debug")
package logging
