package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"payments-service/internal/core/domain/entity"
	"payments-service/internal/core/domain/ports"
	apperrors "payments-service/internal/core/errors"
)

type (
	CreateInput struct {
		Kind            string
		Amount          string
		IdempotencyKey  string
		ClientRequestID string
	}

	CreateOutput struct {
		Transaction *entity.Transaction
		// Idempotent marks a replay: the transaction already existed for
		// the supplied key and no new row was written.
		Idempotent bool
	}

	CreateTransactionUseCase struct {
		repo   ports.TransactionRepository
		logger *slog.Logger
	}
)

func NewCreateTransactionUseCase(repo ports.TransactionRepository, logger *slog.Logger) *CreateTransactionUseCase {
	return &CreateTransactionUseCase{repo: repo, logger: logger}
}

// Execute resolves or creates the transaction for the supplied idempotency
// identifier. Exactly one row is persisted per distinct key, even under
// concurrent duplicate submissions; existing rows are never mutated.
func (uc *CreateTransactionUseCase) Execute(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.IdempotencyKey == "" && input.ClientRequestID == "" {
		return nil, entity.ErrMissingIdempotencyKey
	}

	amount, err := decimal.NewFromString(input.Amount)
	if err != nil {
		return nil, entity.ErrInvalidAmount
	}

	kind := entity.Kind(input.Kind)
	if kind != entity.KindCredit && kind != entity.KindDebit {
		return nil, entity.ErrInvalidKind
	}

	requestHash := entity.PayloadHash(kind, amount)

	existing, err := uc.resolve(ctx, input)
	if err != nil {
		return nil, apperrors.Unexpected(apperrors.WithError(err))
	}
	if existing != nil {
		if existing.RequestHash != requestHash {
			return nil, entity.ErrIdempotencyConflict
		}
		uc.logger.InfoContext(ctx, "idempotent replay",
			slog.String("transaction_id", existing.ID),
		)
		return &CreateOutput{Transaction: existing, Idempotent: true}, nil
	}

	tx, err := entity.NewTransaction(kind, amount, optional(input.IdempotencyKey), optional(input.ClientRequestID))
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Insert(ctx, tx); err != nil {
		if !errors.Is(err, ports.ErrDuplicateKey) {
			return nil, apperrors.Unexpected(apperrors.WithError(err))
		}
		// A concurrent caller won the insert race; the winner must be
		// visible now through the same lookup path.
		winner, ferr := uc.resolve(ctx, input)
		if ferr != nil {
			return nil, apperrors.Unexpected(apperrors.WithError(ferr))
		}
		if winner == nil {
			return nil, apperrors.Unexpected(apperrors.WithError(err))
		}
		if winner.RequestHash != requestHash {
			return nil, entity.ErrIdempotencyConflict
		}
		return &CreateOutput{Transaction: winner, Idempotent: true}, nil
	}

	uc.logger.InfoContext(ctx, "transaction created",
		slog.String("transaction_id", tx.ID),
		slog.String("kind", string(tx.Kind)),
		slog.String("amount", tx.Amount.StringFixed(2)),
	)

	return &CreateOutput{Transaction: tx}, nil
}

// resolve looks up an existing transaction by whichever identifier is
// present; the idempotency key takes precedence when both are supplied.
func (uc *CreateTransactionUseCase) resolve(ctx context.Context, input CreateInput) (*entity.Transaction, error) {
	if input.IdempotencyKey != "" {
		return uc.repo.FindByIdempotencyKey(ctx, input.IdempotencyKey)
	}
	return uc.repo.FindByClientRequestID(ctx, input.ClientRequestID)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
