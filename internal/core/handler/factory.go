package handler

import "payments-service/internal/core/usecase"

func NewTransactionHandlerFactory(f *usecase.Factory) *TransactionHandler {
	return NewTransactionHandler(f.Create, f.Enqueue, f.List, f.Status)
}
