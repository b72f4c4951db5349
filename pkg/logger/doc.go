// Package logger builds the *slog.Logger used across notifykit and provides
// attribute helpers so every component names its log fields the same way.
//
// New creates a logger from functional options:
//
//	log := logger.New(
//		logger.WithDevelopment("notifywatch"),
//		logger.WithAttr(logger.UserID("u1")),
//	)
//
// Records can pick up attributes stored in a context.Context. Attach them with
// ContextWithAttrs, or register a ContextExtractor for values already stored
// under your own keys:
//
//	ctx = logger.ContextWithAttrs(ctx, logger.NotificationID(n.ID))
//	log.InfoContext(ctx, "notification received")
//
// Helpers such as UserID, NotificationID, State, Attempt and Delay return
// slog.Attr values with fixed keys. Helpers that take an optional value return
// an empty Attr, which slog drops, when the value is missing.
package logger
