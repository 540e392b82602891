package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	apperrors "payments-service/internal/core/errors"
	"payments-service/internal/core/usecase"
)

type stubJobQueue struct {
	enqueueFn func(ctx context.Context, transactionID string) error
}

func (s *stubJobQueue) Enqueue(ctx context.Context, transactionID string) error {
	if s.enqueueFn != nil {
		return s.enqueueFn(ctx, transactionID)
	}
	return nil
}

func TestEnqueueProcessing_SubmitsJob(t *testing.T) {
	var captured string
	queue := &stubJobQueue{
		enqueueFn: func(_ context.Context, id string) error {
			captured = id
			return nil
		},
	}
	uc := usecase.NewEnqueueProcessingUseCase(queue, testLogger())

	id := uuid.NewString()
	if err := uc.Execute(context.Background(), id); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if captured != id {
		t.Fatalf("expected job for %s, got %q", id, captured)
	}
}

func TestEnqueueProcessing_RejectsInvalidID(t *testing.T) {
	calls := 0
	queue := &stubJobQueue{
		enqueueFn: func(context.Context, string) error {
			calls++
			return nil
		},
	}
	uc := usecase.NewEnqueueProcessingUseCase(queue, testLogger())

	err := uc.Execute(context.Background(), "not-a-uuid")

	var exc *apperrors.Exception
	if !errors.As(err, &exc) || exc.Code != 400 {
		t.Fatalf("expected a 400 exception, got: %v", err)
	}
	if calls != 0 {
		t.Fatal("invalid id must not reach the queue")
	}
}

func TestEnqueueProcessing_QueueFailure(t *testing.T) {
	queue := &stubJobQueue{
		enqueueFn: func(context.Context, string) error {
			return errors.New("broker gone")
		},
	}
	uc := usecase.NewEnqueueProcessingUseCase(queue, testLogger())

	err := uc.Execute(context.Background(), uuid.NewString())

	var exc *apperrors.Exception
	if !errors.As(err, &exc) || exc.Code != 500 {
		t.Fatalf("expected a 500 exception, got: %v", err)
	}
}
