package ports

import "context"

// JobQueue submits a transaction for asynchronous processing. The handler
// layer holds this capability by injection so the request path never imports
// the consumer side.
type JobQueue interface {
	Enqueue(ctx context.Context, transactionID string) error
}
