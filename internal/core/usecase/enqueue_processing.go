package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"payments-service/internal/core/domain/ports"
	apperrors "payments-service/internal/core/errors"
)

type EnqueueProcessingUseCase struct {
	queue  ports.JobQueue
	logger *slog.Logger
}

func NewEnqueueProcessingUseCase(queue ports.JobQueue, logger *slog.Logger) *EnqueueProcessingUseCase {
	return &EnqueueProcessingUseCase{queue: queue, logger: logger}
}

// Execute submits the transaction for asynchronous processing. The job is
// acknowledged before any work happens; progress is observable through the
// transaction status and the update stream.
func (uc *EnqueueProcessingUseCase) Execute(ctx context.Context, transactionID string) error {
	if _, err := uuid.Parse(transactionID); err != nil {
		return apperrors.BadRequest(apperrors.WithMessage("transaction_id must be a valid UUID"))
	}

	if err := uc.queue.Enqueue(ctx, transactionID); err != nil {
		uc.logger.ErrorContext(ctx, "enqueue processing failed",
			slog.String("transaction_id", transactionID),
			slog.String("error", err.Error()),
		)
		return apperrors.Unexpected(apperrors.WithError(err))
	}

	uc.logger.InfoContext(ctx, "processing enqueued", slog.String("transaction_id", transactionID))
	return nil
}
