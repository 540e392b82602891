package ports

import (
	"context"

	"payments-service/internal/core/domain/entity"
)

// EventPublisher pushes a transaction state change to whatever is relaying
// updates to subscribers. Delivery is best-effort from the caller's view.
type EventPublisher interface {
	PublishUpdated(ctx context.Context, tx *entity.Transaction) error
}
