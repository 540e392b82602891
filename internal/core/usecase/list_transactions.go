package usecase

import (
	"context"
	"log/slog"

	"payments-service/internal/core/domain/entity"
	"payments-service/internal/core/domain/ports"
	apperrors "payments-service/internal/core/errors"
)

// listLimit caps the listing at the 50 most recent transactions.
const listLimit = 50

type ListTransactionsUseCase struct {
	repo   ports.TransactionRepository
	logger *slog.Logger
}

func NewListTransactionsUseCase(repo ports.TransactionRepository, logger *slog.Logger) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{repo: repo, logger: logger}
}

func (uc *ListTransactionsUseCase) Execute(ctx context.Context) ([]*entity.Transaction, error) {
	txs, err := uc.repo.ListRecent(ctx, listLimit)
	if err != nil {
		uc.logger.ErrorContext(ctx, "list transactions failed", slog.String("error", err.Error()))
		return nil, apperrors.Unexpected(apperrors.WithError(err))
	}
	return txs, nil
}
