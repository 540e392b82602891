package ports

import (
	"context"
	"errors"

	"payments-service/internal/core/domain/entity"
)

// ErrDuplicateKey is returned by Insert when a uniqueness constraint on
// idempotency_key or client_request_id rejects the row, meaning a concurrent
// caller already created the transaction for that key.
var ErrDuplicateKey = errors.New("duplicate idempotency identifier")

type TransactionRepository interface {
	// Insert persists a new transaction. The insert is atomic with respect
	// to the uniqueness constraints: when two callers race on the same key,
	// exactly one succeeds and the other sees ErrDuplicateKey.
	Insert(ctx context.Context, tx *entity.Transaction) error

	// FindByIdempotencyKey and FindByClientRequestID return (nil, nil) when
	// no row matches.
	FindByIdempotencyKey(ctx context.Context, key string) (*entity.Transaction, error)
	FindByClientRequestID(ctx context.Context, id string) (*entity.Transaction, error)

	FindByID(ctx context.Context, id string) (*entity.Transaction, error)

	// ListRecent returns at most limit transactions, newest first.
	ListRecent(ctx context.Context, limit int) ([]*entity.Transaction, error)

	// MarkPending moves the row to pending under an exclusive row lock.
	// Returns the row as left in the store and whether a transition
	// happened; (nil, false, nil) when the row does not exist. A row already
	// past created is left untouched.
	MarkPending(ctx context.Context, id string) (*entity.Transaction, bool, error)

	// Finalize moves the row to the given terminal status under an
	// exclusive row lock, with the same no-op semantics as MarkPending for
	// missing or already-terminal rows.
	Finalize(ctx context.Context, id string, status entity.Status) (*entity.Transaction, bool, error)
}
