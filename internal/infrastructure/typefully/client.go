package typefully

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"flashpost/internal/config"
	"flashpost/internal/domain"
	"flashpost/internal/ports"
)

// Client schedules drafts through the Typefully API. Obtaining the public
// post URL is best-effort: a fixed delay, then a bounded number of polls of
// the public-draft endpoint; a slow remote publish simply yields "".
type Client struct {
	draftsURL      string
	publicDraftURL string
	location       *time.Location
	scheduleOffset time.Duration
	publishWait    time.Duration
	pollAttempts   int
	httpClient     *http.Client
	logger         *slog.Logger
	now            func() time.Time
}

var _ ports.Publisher = (*Client)(nil)

// NewClient builds a publisher from configuration.
func NewClient(cfg config.PublisherConfig, logger *slog.Logger) *Client {
	attempts := cfg.StatusPollAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		draftsURL:      cfg.DraftsURL,
		publicDraftURL: cfg.PublicDraftURL,
		location:       cfg.Location(),
		scheduleOffset: cfg.ScheduleOffset(),
		publishWait:    cfg.PublishWait(),
		pollAttempts:   attempts,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		logger:         logger,
		now:            time.Now,
	}
}

type draftResponse struct {
	ID       json.Number `json:"id"`
	ShareURL string      `json:"share_url"`
}

type publicDraftResponse struct {
	ThreadHeadTwitterURL string `json:"thread_head_twitter_url"`
}

// Publish submits the draft with a near-future schedule date and the share
// flag set. When waitForPublicURL is requested it waits the configured delay
// and polls the public-draft endpoint for the published post's URL.
func (c *Client) Publish(ctx context.Context, draft domain.PostDraft, waitForPublicURL bool) (string, error) {
	scheduleDate := c.now().In(c.location).Add(c.scheduleOffset).Format(time.RFC3339)

	body, err := json.Marshal(map[string]any{
		"content":       draft.Body,
		"schedule-date": scheduleDate,
		"share":         true,
	})
	if err != nil {
		return "", fmt.Errorf("marshal draft payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.draftsURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("X-API-KEY", "Bearer "+draft.AccountKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("schedule draft: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("scheduling api error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var created draftResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode draft response: %w", err)
	}

	shareID := shareIdentifier(created.ShareURL)
	c.debug("draft scheduled", "draft_id", created.ID.String(), "share_id", shareID, "schedule_date", scheduleDate)

	if !waitForPublicURL || shareID == "" {
		return "", nil
	}

	return c.pollPublicURL(ctx, shareID)
}

// pollPublicURL is best-effort: the draft is already scheduled by the time it
// runs, so poll failures are logged and collapsed into an empty URL instead of
// being reported as a publish error.
func (c *Client) pollPublicURL(ctx context.Context, shareID string) (string, error) {
	for attempt := 1; attempt <= c.pollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			c.debug("public url wait cancelled", "share_id", shareID)
			return "", nil
		case <-time.After(c.publishWait):
		}

		publicURL, err := c.fetchPublicURL(ctx, shareID)
		if err != nil {
			c.warn("public url poll failed", "share_id", shareID, "attempt", attempt, "error", err)
			continue
		}
		if publicURL != "" {
			return publicURL, nil
		}
		c.debug("public url not available yet", "share_id", shareID, "attempt", attempt)
	}

	return "", nil
}

func (c *Client) fetchPublicURL(ctx context.Context, shareID string) (string, error) {
	endpoint := strings.TrimSuffix(c.publicDraftURL, "/") + "/" + shareID

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request public draft: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("public draft returned %s", resp.Status)
	}

	var public publicDraftResponse
	if err := json.NewDecoder(resp.Body).Decode(&public); err != nil {
		return "", fmt.Errorf("decode public draft: %w", err)
	}

	return public.ThreadHeadTwitterURL, nil
}

// shareIdentifier extracts the last path segment of a share URL.
func shareIdentifier(shareURL string) string {
	trimmed := strings.TrimSuffix(shareURL, "/")
	if trimmed == "" {
		return ""
	}
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
