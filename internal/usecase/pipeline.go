package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"flashpost/internal/domain"
	"flashpost/internal/ports"
)

// fallbackSummary replaces the model output when summarization fails, so a
// broken completion call never stops the run.
const fallbackSummary = "Content formatting failed."

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source         ports.ArticleSource
	Store          ports.DedupStore
	Summarizer     ports.Summarizer
	Publisher      ports.Publisher
	Variants       []domain.Variant
	InterPostDelay time.Duration
	Logger         *slog.Logger
}

// Pipeline implements the fetch → dedup → summarize → scrape-link → publish →
// record workflow for a single invocation.
type Pipeline struct {
	source         ports.ArticleSource
	store          ports.DedupStore
	summarizer     ports.Summarizer
	publisher      ports.Publisher
	variants       []domain.Variant
	interPostDelay time.Duration
	logger         *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:         deps.Source,
		store:          deps.Store,
		summarizer:     deps.Summarizer,
		publisher:      deps.Publisher,
		variants:       deps.Variants,
		interPostDelay: deps.InterPostDelay,
		logger:         deps.Logger,
	}
}

// Run executes one pass of the pipeline and reports how it ended. Errors are
// returned alongside the outcome for logging; the caller decides whether they
// are fatal (in the scheduled-job setup they never are).
func (p *Pipeline) Run(ctx context.Context) (domain.Outcome, error) {
	if len(p.variants) == 0 {
		return domain.OutcomeNoContent, fmt.Errorf("no language variants configured")
	}

	article, found, err := p.source.FetchLatest(ctx)
	if err != nil {
		return domain.OutcomeNoContent, fmt.Errorf("fetch latest: %w", err)
	}
	if !found || article.ID == "" {
		return domain.OutcomeNoContent, nil
	}

	seen, err := p.store.Exists(ctx, article.ID)
	if err != nil {
		// Fail safe: an inconclusive dedup check must never lead to a repost.
		return domain.OutcomeAlreadyProcessed, fmt.Errorf("check processed %s: %w", article.ID, err)
	}
	if seen {
		p.debug("article already processed", "article_id", article.ID)
		return domain.OutcomeAlreadyProcessed, nil
	}

	summaries := make([]domain.SummaryVariant, 0, len(p.variants))
	for _, variant := range p.variants {
		summary, sErr := p.summarizer.Summarize(ctx, article, variant)
		if sErr != nil {
			p.warn("summarize failed, using fallback", "article_id", article.ID, "tag", variant.Tag, "error", sErr)
			summary = domain.SummaryVariant{
				LanguageTag: variant.Tag,
				Text:        variant.Prefix + fallbackSummary,
			}
		}
		summaries = append(summaries, summary)
	}

	link, found, err := p.source.ResolveSourceLink(ctx, article.PageURL)
	if err != nil {
		return domain.OutcomeNoSourceLink, fmt.Errorf("resolve source link: %w", err)
	}
	if !found {
		// Not marked processed: the article stays retryable on the next poll.
		p.debug("source link not found", "article_id", article.ID, "page_url", article.PageURL)
		return domain.OutcomeNoSourceLink, nil
	}

	primary := domain.PostDraft{
		Body:       composeBody(summaries[0].Text, link),
		AccountKey: p.variants[0].AccountKey,
	}
	waitForPublicURL := len(p.variants) > 1

	publicURL, err := p.publisher.Publish(ctx, primary, waitForPublicURL)
	if err != nil {
		p.warn("publish failed", "article_id", article.ID, "tag", p.variants[0].Tag, "error", err)
		publicURL = ""
	}

	for i := 1; i < len(p.variants); i++ {
		if err := p.pause(ctx); err != nil {
			break
		}

		trailing := link
		if publicURL != "" {
			trailing = publicURL
		}

		draft := domain.PostDraft{
			Body:       composeBody(summaries[i].Text, trailing),
			AccountKey: p.variants[i].AccountKey,
		}
		if _, pErr := p.publisher.Publish(ctx, draft, false); pErr != nil {
			p.warn("publish failed", "article_id", article.ID, "tag", p.variants[i].Tag, "error", pErr)
		}
	}

	// The record is written after both publish attempts regardless of their
	// individual outcomes; there is no rollback for a partial publish.
	if err := p.store.Record(ctx, article.ID, article.Title); err != nil {
		return domain.OutcomePublished, fmt.Errorf("record processed %s: %w", article.ID, err)
	}

	p.debug("article published", "article_id", article.ID, "variants", len(p.variants))
	return domain.OutcomePublished, nil
}

func composeBody(summary, link string) string {
	return summary + "\n\n" + link
}

func (p *Pipeline) pause(ctx context.Context) error {
	if p.interPostDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.interPostDelay):
		return nil
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
