package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"payments-service/internal/core/domain/entity"
	apperrors "payments-service/internal/core/errors"
	"payments-service/internal/core/usecase"
)

type TransactionHandler struct {
	createUC  *usecase.CreateTransactionUseCase
	enqueueUC *usecase.EnqueueProcessingUseCase
	listUC    *usecase.ListTransactionsUseCase
	statusUC  *usecase.GetTransactionStatusUseCase
	BaseHandler
}

type createTransactionRequest struct {
	Kind            string `json:"kind"`
	Amount          string `json:"amount"`
	ClientRequestID string `json:"client_request_id"`
}

type transactionResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Amount    string    `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newTransactionResponse(tx *entity.Transaction) transactionResponse {
	return transactionResponse{
		ID:        tx.ID,
		Kind:      string(tx.Kind),
		Amount:    tx.Amount.StringFixed(2),
		Status:    string(tx.Status),
		CreatedAt: tx.CreatedAt,
		UpdatedAt: tx.UpdatedAt,
	}
}

func NewTransactionHandler(
	createUC *usecase.CreateTransactionUseCase,
	enqueueUC *usecase.EnqueueProcessingUseCase,
	listUC *usecase.ListTransactionsUseCase,
	statusUC *usecase.GetTransactionStatusUseCase,
) *TransactionHandler {
	return &TransactionHandler{
		createUC:  createUC,
		enqueueUC: enqueueUC,
		listUC:    listUC,
		statusUC:  statusUC,
	}
}

func (h *TransactionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/transactions", h.wrap(h.handleCreate))
	mux.HandleFunc("POST /api/v1/transactions/{id}/process", h.wrap(h.handleProcess))
	mux.HandleFunc("GET /api/v1/transactions", h.wrap(h.handleList))
	mux.HandleFunc("GET /api/v1/transactions/{id}", h.wrap(h.handleGet))
}

// handleCreate creates a transaction idempotently.
//
// @Summary  Create a transaction
// @Accept   json
// @Produce  json
// @Param    Idempotency-Key  header  string                    false  "idempotency token"
// @Param    request          body    createTransactionRequest  true   "transaction payload"
// @Success  201  {object}  HttpResponse{data=transactionResponse}
// @Failure  400  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse
// @Router   /api/v1/transactions [post]
func (h *TransactionHandler) handleCreate(w http.ResponseWriter, r *http.Request) error {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondWithError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return nil
	}

	out, err := h.createUC.Execute(r.Context(), usecase.CreateInput{
		Kind:            req.Kind,
		Amount:          req.Amount,
		IdempotencyKey:  r.Header.Get("Idempotency-Key"),
		ClientRequestID: req.ClientRequestID,
	})
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrMissingIdempotencyKey),
			errors.Is(err, entity.ErrInvalidKind),
			errors.Is(err, entity.ErrInvalidAmount):
			h.RespondWithError(w, r, http.StatusBadRequest, "validation error", err.Error())
			return nil
		case errors.Is(err, entity.ErrIdempotencyConflict):
			h.RespondWithError(w, r, http.StatusConflict, "idempotency conflict", err.Error())
			return nil
		}
		return err
	}

	// Replays answer 201 as well: from the client's view the resource was
	// created by this request's key.
	h.RespondWithSuccess(w, http.StatusCreated, "transaction created", newTransactionResponse(out.Transaction))
	return nil
}

// handleProcess enqueues asynchronous processing for a transaction.
//
// @Summary  Enqueue transaction processing
// @Produce  json
// @Param    id  path  string  true  "transaction id"
// @Success  202  {object}  HttpResponse
// @Failure  400  {object}  ErrorResponse
// @Router   /api/v1/transactions/{id}/process [post]
func (h *TransactionHandler) handleProcess(w http.ResponseWriter, r *http.Request) error {
	id := r.PathValue("id")

	if err := h.enqueueUC.Execute(r.Context(), id); err != nil {
		return err
	}

	h.RespondWithSuccess(w, http.StatusAccepted, "processing queued", map[string]string{
		"status": "queued",
	})
	return nil
}

// handleList returns the most recent transactions, newest first.
//
// @Summary  List recent transactions
// @Produce  json
// @Success  200  {object}  HttpResponse{data=[]transactionResponse}
// @Router   /api/v1/transactions [get]
func (h *TransactionHandler) handleList(w http.ResponseWriter, r *http.Request) error {
	txs, err := h.listUC.Execute(r.Context())
	if err != nil {
		return err
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, newTransactionResponse(tx))
	}

	h.RespondWithSuccess(w, http.StatusOK, "ok", out)
	return nil
}

// handleGet returns a single transaction.
//
// @Summary  Get a transaction
// @Produce  json
// @Param    id  path  string  true  "transaction id"
// @Success  200  {object}  HttpResponse{data=transactionResponse}
// @Failure  404  {object}  ErrorResponse
// @Router   /api/v1/transactions/{id} [get]
func (h *TransactionHandler) handleGet(w http.ResponseWriter, r *http.Request) error {
	tx, err := h.statusUC.Execute(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}

	h.RespondWithSuccess(w, http.StatusOK, "ok", newTransactionResponse(tx))
	return nil
}

func (h *TransactionHandler) wrap(fn func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			var exc *apperrors.Exception
			if errors.As(err, &exc) {
				h.RespondWithError(w, r, exc.Code, exc.Message, exc.Err)
				return
			}
			h.RespondWithError(w, r, http.StatusInternalServerError, "internal server error", err.Error())
		}
	}
}
