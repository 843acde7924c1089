package ledger

import (
	"context"

	"go.uber.org/zap"

	"github.com/vastra-erp/backend/internal/domain/shared"
)

// publishEvents drains an aggregate's pending domain events onto the bus.
// Publishing is best-effort: ledger state is already committed, so a failed
// dispatch is logged and dropped rather than failing the mutation.
func publishEvents(ctx context.Context, bus shared.EventPublisher, logger *zap.Logger, agg shared.AggregateRoot) {
	events := agg.GetDomainEvents()
	if bus == nil || len(events) == 0 {
		agg.ClearDomainEvents()
		return
	}
	if err := bus.Publish(ctx, events...); err != nil {
		logger.Warn("domain event publish failed", zap.Error(err))
	}
	agg.ClearDomainEvents()
}
