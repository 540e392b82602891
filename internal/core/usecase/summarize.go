package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"payments-service/internal/core/domain/entity"
	"payments-service/internal/core/domain/ports"
	apperrors "payments-service/internal/core/errors"
)

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	sentenceRe   = regexp.MustCompile(`(?:[.!?])\s+`)
)

type (
	SummarizeOutput struct {
		Summary string
	}

	SummarizeUseCase struct {
		repo    ports.SummaryRepository
		logger  *slog.Logger
		client  *http.Client
		apiKey  string
		model   string
		baseURL string
	}
)

func NewSummarizeUseCase(repo ports.SummaryRepository, logger *slog.Logger, apiKey, model string) *SummarizeUseCase {
	return &SummarizeUseCase{
		repo:    repo,
		logger:  logger,
		client:  &http.Client{Timeout: 20 * time.Second},
		apiKey:  apiKey,
		model:   model,
		baseURL: openAIEndpoint,
	}
}

// Execute summarizes the text, preferring the OpenAI API when a key is
// configured and falling back to a sentence heuristic otherwise or on any
// API failure. Every summarization is recorded for audit.
func (uc *SummarizeUseCase) Execute(ctx context.Context, text string) (*SummarizeOutput, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.BadRequest(apperrors.WithMessage("text is required"))
	}

	summary := uc.summarize(ctx, text)

	if err := uc.repo.Save(ctx, entity.NewSummary(text, summary)); err != nil {
		uc.logger.ErrorContext(ctx, "save summary failed", slog.String("error", err.Error()))
		return nil, apperrors.Unexpected(apperrors.WithError(err))
	}

	return &SummarizeOutput{Summary: summary}, nil
}

func (uc *SummarizeUseCase) summarize(ctx context.Context, text string) string {
	if uc.apiKey == "" {
		return heuristicSummary(text)
	}
	summary, err := uc.openAISummary(ctx, text)
	if err != nil {
		uc.logger.WarnContext(ctx, "openai request failed, using heuristic summary",
			slog.String("error", err.Error()),
		)
		return heuristicSummary(text)
	}
	return summary
}

// heuristicSummary keeps the first one or two sentences, with an ellipsis
// when anything was trimmed.
func heuristicSummary(text string) string {
	cleaned := strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	if cleaned == "" {
		return ""
	}
	sentences := splitSentences(cleaned)
	summary := strings.Join(sentences[:min(2, len(sentences))], " ")
	if len(summary) < len(cleaned) {
		summary += " ..."
	}
	return summary
}

func splitSentences(text string) []string {
	bounds := sentenceRe.FindAllStringIndex(text, -1)
	var out []string
	start := 0
	for _, b := range bounds {
		out = append(out, text[start:b[0]+1])
		start = b[1]
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func (uc *SummarizeUseCase) openAISummary(ctx context.Context, text string) (string, error) {
	payload := map[string]any{
		"model": uc.model,
		"messages": []map[string]string{
			{
				"role":    "developer",
				"content": "Summarize the input in 1-2 concise sentences. Preserve key facts. Return plain text only.",
			},
			{"role": "user", "content": text},
		},
		"temperature": 0.2,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uc.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+uc.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := uc.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai status %d", res.StatusCode)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
