package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"payments-service/internal/core/domain/entity"
	"payments-service/internal/core/handler"
	"payments-service/internal/core/usecase"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubTransactionRepository implements ports.TransactionRepository for
// handler tests.
type stubTransactionRepository struct {
	insertFn                func(ctx context.Context, tx *entity.Transaction) error
	findByIdempotencyKeyFn  func(ctx context.Context, key string) (*entity.Transaction, error)
	findByClientRequestIDFn func(ctx context.Context, id string) (*entity.Transaction, error)
	findByIDFn              func(ctx context.Context, id string) (*entity.Transaction, error)
	listRecentFn            func(ctx context.Context, limit int) ([]*entity.Transaction, error)
}

func (s *stubTransactionRepository) Insert(ctx context.Context, tx *entity.Transaction) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, tx)
	}
	return nil
}

func (s *stubTransactionRepository) FindByIdempotencyKey(ctx context.Context, key string) (*entity.Transaction, error) {
	if s.findByIdempotencyKeyFn != nil {
		return s.findByIdempotencyKeyFn(ctx, key)
	}
	return nil, nil
}

func (s *stubTransactionRepository) FindByClientRequestID(ctx context.Context, id string) (*entity.Transaction, error) {
	if s.findByClientRequestIDFn != nil {
		return s.findByClientRequestIDFn(ctx, id)
	}
	return nil, nil
}

func (s *stubTransactionRepository) FindByID(ctx context.Context, id string) (*entity.Transaction, error) {
	if s.findByIDFn != nil {
		return s.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (s *stubTransactionRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Transaction, error) {
	if s.listRecentFn != nil {
		return s.listRecentFn(ctx, limit)
	}
	return nil, nil
}

func (s *stubTransactionRepository) MarkPending(context.Context, string) (*entity.Transaction, bool, error) {
	return nil, false, nil
}

func (s *stubTransactionRepository) Finalize(context.Context, string, entity.Status) (*entity.Transaction, bool, error) {
	return nil, false, nil
}

type stubJobQueue struct {
	enqueueFn func(ctx context.Context, transactionID string) error
}

func (s *stubJobQueue) Enqueue(ctx context.Context, transactionID string) error {
	if s.enqueueFn != nil {
		return s.enqueueFn(ctx, transactionID)
	}
	return nil
}

func newTestMux(repo *stubTransactionRepository, queue *stubJobQueue) *http.ServeMux {
	h := handler.NewTransactionHandlerFactory(usecase.NewFactory(repo, queue, testLogger()))
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out.Data
}

func sampleTransaction(t *testing.T, key string) *entity.Transaction {
	t.Helper()
	tx, err := entity.NewTransaction(entity.KindCredit, decimal.RequireFromString("10.00"), &key, nil)
	if err != nil {
		t.Fatalf("new transaction: %v", err)
	}
	return tx
}

func TestHandleCreate_Returns201(t *testing.T) {
	mux := newTestMux(&stubTransactionRepository{}, &stubJobQueue{})

	rec := postJSON(t, mux, "/api/v1/transactions",
		map[string]any{"kind": "credit", "amount": "10.00"},
		map[string]string{"Idempotency-Key": "abc"},
	)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	if data["id"] == "" {
		t.Fatal("expected non-empty id")
	}
	if data["status"] != "created" {
		t.Fatalf("expected status created, got %v", data["status"])
	}
	if data["amount"] != "10.00" {
		t.Fatalf("expected amount 10.00, got %v", data["amount"])
	}
}

func TestHandleCreate_ReplayStillReturns201WithSameID(t *testing.T) {
	existing := sampleTransaction(t, "abc")
	repo := &stubTransactionRepository{
		findByIdempotencyKeyFn: func(context.Context, string) (*entity.Transaction, error) {
			return existing, nil
		},
	}
	mux := newTestMux(repo, &stubJobQueue{})

	rec := postJSON(t, mux, "/api/v1/transactions",
		map[string]any{"kind": "credit", "amount": "10.00"},
		map[string]string{"Idempotency-Key": "abc"},
	)

	if rec.Code != http.StatusCreated {
		t.Fatalf("replay must still answer 201, got %d", rec.Code)
	}
	if data := decodeData(t, rec); data["id"] != existing.ID {
		t.Fatalf("expected id %s, got %v", existing.ID, data["id"])
	}
}

func TestHandleCreate_MissingIdentifiers_Returns400(t *testing.T) {
	mux := newTestMux(&stubTransactionRepository{}, &stubJobQueue{})

	rec := postJSON(t, mux, "/api/v1/transactions",
		map[string]any{"kind": "credit", "amount": "10.00"}, nil,
	)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleCreate_PayloadMismatch_Returns409(t *testing.T) {
	existing := sampleTransaction(t, "xyz")
	repo := &stubTransactionRepository{
		findByIdempotencyKeyFn: func(context.Context, string) (*entity.Transaction, error) {
			return existing, nil
		},
	}
	mux := newTestMux(repo, &stubJobQueue{})

	rec := postJSON(t, mux, "/api/v1/transactions",
		map[string]any{"kind": "debit", "amount": "10.00"},
		map[string]string{"Idempotency-Key": "xyz"},
	)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestHandleCreate_InvalidKind_Returns400(t *testing.T) {
	mux := newTestMux(&stubTransactionRepository{}, &stubJobQueue{})

	rec := postJSON(t, mux, "/api/v1/transactions",
		map[string]any{"kind": "transfer", "amount": "10.00"},
		map[string]string{"Idempotency-Key": "abc"},
	)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleCreate_InvalidBody_Returns400(t *testing.T) {
	mux := newTestMux(&stubTransactionRepository{}, &stubJobQueue{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewReader([]byte("not-json")))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleProcess_Returns202(t *testing.T) {
	var enqueued string
	queue := &stubJobQueue{
		enqueueFn: func(_ context.Context, id string) error {
			enqueued = id
			return nil
		},
	}
	mux := newTestMux(&stubTransactionRepository{}, queue)

	id := uuid.NewString()
	rec := postJSON(t, mux, "/api/v1/transactions/"+id+"/process", nil, nil)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if enqueued != id {
		t.Fatalf("expected job for %s, got %q", id, enqueued)
	}
	if data := decodeData(t, rec); data["status"] != "queued" {
		t.Fatalf("expected queued acknowledgment, got %v", data["status"])
	}
}

func TestHandleProcess_InvalidID_Returns400(t *testing.T) {
	mux := newTestMux(&stubTransactionRepository{}, &stubJobQueue{})

	rec := postJSON(t, mux, "/api/v1/transactions/not-a-uuid/process", nil, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleList_Returns200(t *testing.T) {
	first := sampleTransaction(t, "k1")
	second := sampleTransaction(t, "k2")
	repo := &stubTransactionRepository{
		listRecentFn: func(context.Context, int) ([]*entity.Transaction, error) {
			return []*entity.Transaction{second, first}, nil
		},
	}
	mux := newTestMux(repo, &stubJobQueue{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var out struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out.Data) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(out.Data))
	}
	if out.Data[0]["id"] != second.ID {
		t.Fatal("expected repository order to be preserved (newest first)")
	}
}

func TestHandleGet_Returns200(t *testing.T) {
	tx := sampleTransaction(t, "k1")
	repo := &stubTransactionRepository{
		findByIDFn: func(context.Context, string) (*entity.Transaction, error) {
			return tx, nil
		},
	}
	mux := newTestMux(repo, &stubJobQueue{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/"+tx.ID, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandleGet_NotFound_Returns404(t *testing.T) {
	mux := newTestMux(&stubTransactionRepository{}, &stubJobQueue{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/unknown", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
