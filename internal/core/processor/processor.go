package processor

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"payments-service/internal/core/domain/entity"
	"payments-service/internal/core/domain/ports"
)

// Simulator decides how long a processing job "works" and which terminal
// status it reaches. The production implementation is randomized; tests
// inject fixed values. In a real deployment this is the extension point for
// the actual downstream call.
type Simulator interface {
	Work() (time.Duration, entity.Status)
}

type randomSimulator struct {
	mu          sync.Mutex
	rng         *rand.Rand
	minDelay    time.Duration
	maxDelay    time.Duration
	successRate float64
}

func NewRandomSimulator(minDelay, maxDelay time.Duration, successRate float64) Simulator {
	return &randomSimulator{
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		minDelay:    minDelay,
		maxDelay:    maxDelay,
		successRate: successRate,
	}
}

func (s *randomSimulator) Work() (time.Duration, entity.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delay := s.minDelay
	if s.maxDelay > s.minDelay {
		delay += time.Duration(s.rng.Int63n(int64(s.maxDelay - s.minDelay)))
	}
	if s.rng.Float64() < s.successRate {
		return delay, entity.StatusProcessed
	}
	return delay, entity.StatusFailed
}

// Processor drives one transaction through its lifecycle per job. Jobs are
// delivered at least once, so both transitions are guarded: a redelivered
// job finds the row already advanced and leaves it alone.
type Processor struct {
	repo   ports.TransactionRepository
	events ports.EventPublisher
	sim    Simulator
	logger *slog.Logger
}

func New(repo ports.TransactionRepository, events ports.EventPublisher, sim Simulator, logger *slog.Logger) *Processor {
	return &Processor{
		repo:   repo,
		events: events,
		sim:    sim,
		logger: logger,
	}
}

// Process handles one job. The row lock is held only inside MarkPending and
// Finalize, never across the simulated work. A missing row is a terminal
// no-op so a bad job cannot cause a retry storm.
func (p *Processor) Process(ctx context.Context, transactionID string) error {
	tx, transitioned, err := p.repo.MarkPending(ctx, transactionID)
	if err != nil {
		return err
	}
	if tx == nil {
		p.logger.WarnContext(ctx, "transaction not found", slog.String("transaction_id", transactionID))
		return nil
	}
	if transitioned {
		p.publish(ctx, tx)
	}
	if tx.Status.Terminal() {
		// Redelivered job for a finished transaction.
		return nil
	}

	delay, outcome := p.sim.Work()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
	}

	tx, transitioned, err = p.repo.Finalize(ctx, transactionID, outcome)
	if err != nil {
		return err
	}
	if tx == nil {
		p.logger.WarnContext(ctx, "transaction not found", slog.String("transaction_id", transactionID))
		return nil
	}
	if transitioned {
		transactionsProcessed.WithLabelValues(string(tx.Status)).Inc()
		p.publish(ctx, tx)
		p.logger.InfoContext(ctx, "transaction processed",
			slog.String("transaction_id", tx.ID),
			slog.String("status", string(tx.Status)),
		)
	}
	return nil
}

// publish is best-effort: a lost update event never fails the job, since the
// status is already durable in the store.
func (p *Processor) publish(ctx context.Context, tx *entity.Transaction) {
	if err := p.events.PublishUpdated(ctx, tx); err != nil {
		p.logger.ErrorContext(ctx, "publish update failed",
			slog.String("transaction_id", tx.ID),
			slog.String("error", err.Error()),
		)
	}
}
