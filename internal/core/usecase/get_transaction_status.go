package usecase

import (
	"context"
	"log/slog"

	"payments-service/internal/core/domain/entity"
	"payments-service/internal/core/domain/ports"
	apperrors "payments-service/internal/core/errors"
)

type GetTransactionStatusUseCase struct {
	repo   ports.TransactionRepository
	logger *slog.Logger
}

func NewGetTransactionStatusUseCase(repo ports.TransactionRepository, logger *slog.Logger) *GetTransactionStatusUseCase {
	return &GetTransactionStatusUseCase{repo: repo, logger: logger}
}

func (uc *GetTransactionStatusUseCase) Execute(ctx context.Context, id string) (*entity.Transaction, error) {
	tx, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		uc.logger.ErrorContext(ctx, "find transaction failed",
			slog.String("transaction_id", id),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Unexpected(apperrors.WithError(err))
	}
	if tx == nil {
		return nil, apperrors.NotFound()
	}
	return tx, nil
}
