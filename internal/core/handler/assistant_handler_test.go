package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"payments-service/internal/core/domain/entity"
	"payments-service/internal/core/handler"
	"payments-service/internal/core/usecase"
)

type stubSummaryRepository struct {
	saveFn func(ctx context.Context, s *entity.Summary) error
}

func (r *stubSummaryRepository) Save(ctx context.Context, s *entity.Summary) error {
	if r.saveFn != nil {
		return r.saveFn(ctx, s)
	}
	return nil
}

func newAssistantMux(repo *stubSummaryRepository) *http.ServeMux {
	h := handler.NewAssistantHandler(usecase.NewSummarizeUseCase(repo, testLogger(), "", ""))
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func TestHandleSummarize_Returns200(t *testing.T) {
	mux := newAssistantMux(&stubSummaryRepository{})

	body, _ := json.Marshal(map[string]string{"text": "One fact. Another fact. More."})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant/summarize", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var out struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Summary == "" {
		t.Fatal("expected non-empty summary")
	}
}

func TestHandleSummarize_EmptyText_Returns400(t *testing.T) {
	mux := newAssistantMux(&stubSummaryRepository{})

	body, _ := json.Marshal(map[string]string{"text": ""})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant/summarize", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleSummarize_InvalidBody_Returns400(t *testing.T) {
	mux := newAssistantMux(&stubSummaryRepository{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant/summarize", bytes.NewReader([]byte("not-json")))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
