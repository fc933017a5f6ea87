package chaincatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"flashpost/internal/config"
	"flashpost/internal/domain"
	"flashpost/internal/ports"
)

// Client fetches the newest newsflash from the ChainCatcher open API and
// scrapes the article page for its canonical source link.
type Client struct {
	apiURL        string
	token         string
	newsType      int
	newsFlashType int
	page          int
	limit         int
	containerSel  string
	linkMarker    string
	httpClient    *http.Client
}

var _ ports.ArticleSource = (*Client)(nil)

// NewClient builds a source client from configuration.
func NewClient(cfg config.SourceConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{
		apiURL:        cfg.APIURL,
		token:         cfg.Token,
		newsType:      cfg.NewsType,
		newsFlashType: cfg.NewsFlashType,
		page:          cfg.Page,
		limit:         cfg.Limit,
		containerSel:  cfg.ContainerSel,
		linkMarker:    cfg.LinkMarker,
		httpClient:    httpClient,
	}
}

type listEnvelope struct {
	Result int `json:"result"`
	Data   struct {
		List []listItem `json:"list"`
	} `json:"data"`
}

type listItem struct {
	// The API serves numeric ids; json.Number also tolerates quoted ones.
	ID      json.Number `json:"id"`
	Title   string      `json:"title"`
	Content string      `json:"content"`
	URL     string      `json:"url"`
}

// FetchLatest requests the single most recent item. A well-formed empty list
// yields found=false; transport errors, bad statuses, and unexpected payloads
// are reported as errors so the caller can tell the two apart.
func (c *Client) FetchLatest(ctx context.Context) (domain.Article, bool, error) {
	body, err := json.Marshal(map[string]int{
		"type":          c.newsType,
		"newsFlashType": c.newsFlashType,
		"page":          c.page,
		"limit":         c.limit,
	})
	if err != nil {
		return domain.Article{}, false, fmt.Errorf("marshal list request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return domain.Article{}, false, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Article{}, false, fmt.Errorf("request list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Article{}, false, fmt.Errorf("content api returned %s", resp.Status)
	}

	var envelope listEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return domain.Article{}, false, fmt.Errorf("decode list response: %w", err)
	}

	if envelope.Result != 1 {
		return domain.Article{}, false, fmt.Errorf("content api result %d", envelope.Result)
	}

	if len(envelope.Data.List) == 0 {
		return domain.Article{}, false, nil
	}

	item := envelope.Data.List[0]
	article := domain.Article{
		ID:      item.ID.String(),
		Title:   item.Title,
		Content: item.Content,
		PageURL: item.URL,
	}
	return article, true, nil
}

// ResolveSourceLink fetches the rendered article page and returns the href of
// the anchor inside the content container whose visible text equals the
// marker string. A missing container or anchor yields found=false.
func (c *Client) ResolveSourceLink(ctx context.Context, pageURL string) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", false, fmt.Errorf("new request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("article page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("parse page: %w", err)
	}

	container := doc.Find(c.containerSel).First()
	if container.Length() == 0 {
		return "", false, nil
	}

	var href string
	container.Find("a").EachWithBreak(func(i int, a *goquery.Selection) bool {
		if strings.TrimSpace(a.Text()) != c.linkMarker {
			return true
		}
		href, _ = a.Attr("href")
		return false
	})

	if href == "" {
		return "", false, nil
	}
	return href, true, nil
}
