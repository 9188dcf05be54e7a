// Package logging is the structured logger used by the server, the HTTP
// layer and the admin CLI. The only implementation wraps log/slog.
package logging

import "context"

// Logger writes leveled records with key/value attributes:
//
//	log.Info(ctx, "avatar stored", "user_id", id, "storage", store.Name())
//
// The request id carried by ctx, if any, is attached to every record.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every record.
	With(args ...any) Logger
}
