// Package logging defines the structured-logging interface used across the
// server and the operator CLI, together with a log/slog backed implementation.
package logging

import "context"

// Logger is a context-aware, structured logger. Args are key/value pairs,
// e.g. log.Info(ctx, "movie inserted", "tmdb_id", 603, "movie_id", id).
// Pairs attached to ctx with ContextWith are emitted before args.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}
