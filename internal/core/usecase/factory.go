package usecase

import (
	"log/slog"

	"payments-service/internal/core/domain/ports"
)

type Factory struct {
	Create  *CreateTransactionUseCase
	Enqueue *EnqueueProcessingUseCase
	List    *ListTransactionsUseCase
	Status  *GetTransactionStatusUseCase
}

func NewFactory(repo ports.TransactionRepository, queue ports.JobQueue, logger *slog.Logger) *Factory {
	return &Factory{
		Create:  NewCreateTransactionUseCase(repo, logger),
		Enqueue: NewEnqueueProcessingUseCase(queue, logger),
		List:    NewListTransactionsUseCase(repo, logger),
		Status:  NewGetTransactionStatusUseCase(repo, logger),
	}
}
