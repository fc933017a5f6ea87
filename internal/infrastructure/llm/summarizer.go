package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"flashpost/internal/config"
	"flashpost/internal/domain"
	"flashpost/internal/ports"
)

// maxSummaryRunes is the hard cap applied to the model output before the
// variant prefix is attached. The slice is per character, not word-aware.
const maxSummaryRunes = 240

// Summarizer renders language variants through an OpenAI-compatible
// chat-completion endpoint.
type Summarizer struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.Summarizer = (*Summarizer)(nil)

// NewSummarizer builds a client from configuration.
func NewSummarizer(cfg config.CompletionConfig) *Summarizer {
	return &Summarizer{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Summarize sends the variant's instruction template as the system message and
// title+content as the user message, then returns prefix plus the capped
// completion text.
func (s *Summarizer) Summarize(ctx context.Context, article domain.Article, variant domain.Variant) (domain.SummaryVariant, error) {
	if s.apiKey == "" || s.endpoint == "" || s.model == "" {
		return domain.SummaryVariant{}, fmt.Errorf("completion client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "system", "content": variant.Template},
			{"role": "user", "content": article.Title + " " + article.Content},
		},
	})
	if err != nil {
		return domain.SummaryVariant{}, fmt.Errorf("marshal completion payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.SummaryVariant{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.SummaryVariant{}, fmt.Errorf("request completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.SummaryVariant{}, fmt.Errorf("completion error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return domain.SummaryVariant{}, fmt.Errorf("decode completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return domain.SummaryVariant{}, fmt.Errorf("completion returned no choices")
	}

	return domain.SummaryVariant{
		LanguageTag: variant.Tag,
		Text:        variant.Prefix + truncate(completion.Choices[0].Message.Content, maxSummaryRunes),
	}, nil
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
