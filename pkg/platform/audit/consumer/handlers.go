package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	audit "evidentia/pkg/platform/audit"
)

// Sink persists events under caller-chosen ids and ignores duplicates.
type Sink interface {
	AppendWithID(ctx context.Context, eventID uuid.UUID, event audit.Event) error
}

// eventNamespace seeds the deterministic event ids derived from offsets.
var eventNamespace = uuid.MustParse("6b1f7c4e-3a5d-4e8b-9f2a-1c0d7e6b5a49")

// EventID is the id a message is stored under. It depends only on the
// record's position, so replays land on the same row.
func EventID(msg *Message) uuid.UUID {
	pos := msg.Topic + "/" + strconv.FormatInt(int64(msg.Partition), 10) + "/" + strconv.FormatInt(msg.Offset, 10)
	return uuid.NewSHA1(eventNamespace, []byte(pos))
}

// EventHandler decodes an audit event and writes it to a sink. Malformed
// messages are logged and committed; sink failures stop the consumer.
type EventHandler struct {
	sink     Sink
	logger   *slog.Logger
	category audit.EventCategory
	level    slog.Level
	strict   bool
}

// NewComplianceHandler rejects events without an owning profile and logs
// malformed messages at error level.
func NewComplianceHandler(sink Sink, logger *slog.Logger) *EventHandler {
	return &EventHandler{sink: sink, logger: logger, category: audit.CategoryCompliance, level: slog.LevelError, strict: true}
}

// NewSecurityHandler stores tamper signals; malformed messages warn.
func NewSecurityHandler(sink Sink, logger *slog.Logger) *EventHandler {
	return &EventHandler{sink: sink, logger: logger, category: audit.CategorySecurity, level: slog.LevelWarn}
}

// NewOpsHandler stores routine activity; malformed messages are debug noise.
func NewOpsHandler(sink Sink, logger *slog.Logger) *EventHandler {
	return &EventHandler{sink: sink, logger: logger, category: audit.CategoryOperations, level: slog.LevelDebug}
}

func (h *EventHandler) Handle(ctx context.Context, msg *Message) error {
	eventID := EventID(msg)

	var event audit.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.logger.Log(ctx, h.level, "failed to unmarshal audit event",
			"event_id", eventID,
			"category", h.category,
			"error", err,
		)
		return nil
	}
	if h.strict && event.ProfileID.IsNil() {
		h.logger.Log(ctx, h.level, "audit event missing profile id",
			"event_id", eventID,
			"action", event.Action,
		)
		return nil
	}
	event.Category = h.category

	if err := h.sink.AppendWithID(ctx, eventID, event); err != nil {
		h.logger.ErrorContext(ctx, "failed to store audit event",
			"event_id", eventID,
			"action", event.Action,
			"error", err,
		)
		return fmt.Errorf("store %s event: %w", h.category, err)
	}
	if event.Category == audit.CategorySecurity && event.Decision == string(audit.SeverityCritical) {
		h.logger.WarnContext(ctx, "critical security event stored",
			"event_id", eventID,
			"profile_id", event.ProfileID,
			"subject", event.Subject,
			"reason", event.Reason,
		)
	}
	return nil
}

// NewStoreRouter routes each category to its handler over one sink.
func NewStoreRouter(sink Sink, logger *slog.Logger) *Router {
	r := NewRouter(logger, NewOpsHandler(sink, logger))
	r.Register(audit.CategoryCompliance, NewComplianceHandler(sink, logger))
	r.Register(audit.CategorySecurity, NewSecurityHandler(sink, logger))
	r.Register(audit.CategoryOperations, NewOpsHandler(sink, logger))
	return r
}
