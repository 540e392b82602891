package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "payments-service/internal/core/errors"
	"payments-service/internal/core/usecase"
)

type AssistantHandler struct {
	summarizeUC *usecase.SummarizeUseCase
	BaseHandler
}

type summarizeRequest struct {
	Text string `json:"text"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

func NewAssistantHandler(summarizeUC *usecase.SummarizeUseCase) *AssistantHandler {
	return &AssistantHandler{summarizeUC: summarizeUC}
}

func (h *AssistantHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/assistant/summarize", h.handleSummarize)
}

// handleSummarize summarizes a block of text.
//
// @Summary  Summarize text
// @Accept   json
// @Produce  json
// @Param    request  body  summarizeRequest  true  "text to summarize"
// @Success  200  {object}  summarizeResponse
// @Failure  400  {object}  ErrorResponse
// @Router   /api/v1/assistant/summarize [post]
func (h *AssistantHandler) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondWithError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	out, err := h.summarizeUC.Execute(r.Context(), req.Text)
	if err != nil {
		var exc *apperrors.Exception
		if errors.As(err, &exc) {
			h.RespondWithError(w, r, exc.Code, exc.Message, exc.Err)
			return
		}
		h.RespondWithError(w, r, http.StatusInternalServerError, "internal server error", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summarizeResponse{Summary: out.Summary})
}
