package event

import (
	"context"

	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/murdhanno/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditLogHandler writes every domain event to the structured log. It is the
// audit trail for order, print job and user changes.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a wildcard handler logging through l
func NewAuditLogHandler(l *zap.Logger) *AuditLogHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &AuditLogHandler{logger: l.Named("audit")}
}

func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	logger.WithLogger(ctx, h.logger).Info("domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
		zap.Any("event", event),
	)
	return nil
}

func (h *AuditLogHandler) EventTypes() []string { return nil }

var _ shared.EventHandler = (*AuditLogHandler)(nil)
