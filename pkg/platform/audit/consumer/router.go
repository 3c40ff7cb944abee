package consumer

import (
	"context"
	"log/slog"

	audit "evidentia/pkg/platform/audit"
)

// Router dispatches messages by their category header. The producer sets the
// header on every record; messages without a known category go to fallback.
type Router struct {
	handlers map[audit.EventCategory]Handler
	fallback Handler
	logger   *slog.Logger
}

// NewRouter creates a category router with an optional fallback handler.
func NewRouter(logger *slog.Logger, fallback Handler) *Router {
	return &Router{
		handlers: make(map[audit.EventCategory]Handler),
		fallback: fallback,
		logger:   logger,
	}
}

// Register adds a handler for a category.
func (r *Router) Register(category audit.EventCategory, handler Handler) {
	r.handlers[category] = handler
}

func (r *Router) Handle(ctx context.Context, msg *Message) error {
	category := audit.EventCategory(msg.Headers["category"])
	handler, ok := r.handlers[category]
	if !ok {
		if r.fallback != nil {
			return r.fallback.Handle(ctx, msg)
		}
		r.logger.WarnContext(ctx, "no handler for audit category, skipping message",
			"category", category,
			"key", string(msg.Key),
			"offset", msg.Offset,
		)
		return nil // commit to avoid redelivery
	}
	return handler.Handle(ctx, msg)
}
