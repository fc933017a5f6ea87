package ports

import (
	"context"
	"time"

	"flashpost/internal/domain"
)

// ArticleSource pulls the newest article from the upstream content API and
// resolves the canonical source link from the article's rendered page.
// The boolean result separates "legitimately nothing there" from a failed
// call, which is reported through the error.
type ArticleSource interface {
	FetchLatest(ctx context.Context) (domain.Article, bool, error)
	ResolveSourceLink(ctx context.Context, pageURL string) (string, bool, error)
}

// DedupStore answers whether an article id was already processed and records
// new ids. Record is plain insert-after-check; callers must call Exists first.
type DedupStore interface {
	Exists(ctx context.Context, articleID string) (bool, error)
	Record(ctx context.Context, articleID, title string) error
}

// Summarizer produces one language-specific rendering of an article.
type Summarizer interface {
	Summarize(ctx context.Context, article domain.Article, variant domain.Variant) (domain.SummaryVariant, error)
}

// Publisher submits a draft to the scheduling API. With waitForPublicURL it
// blocks for the configured delay and polls once for the published post's
// public URL; an empty string means the URL was not obtained in time.
type Publisher interface {
	Publish(ctx context.Context, draft domain.PostDraft, waitForPublicURL bool) (string, error)
}

// Scheduler controls when pipeline runs execute in poll mode.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
