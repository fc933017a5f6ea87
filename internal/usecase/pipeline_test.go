package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"flashpost/internal/domain"
)

type fakeSource struct {
	article    domain.Article
	found      bool
	fetchErr   error
	link       string
	linkFound  bool
	linkErr    error
	fetchCalls int
	linkCalls  int
}

func (f *fakeSource) FetchLatest(ctx context.Context) (domain.Article, bool, error) {
	f.fetchCalls++
	return f.article, f.found, f.fetchErr
}

func (f *fakeSource) ResolveSourceLink(ctx context.Context, pageURL string) (string, bool, error) {
	f.linkCalls++
	return f.link, f.linkFound, f.linkErr
}

type fakeStore struct {
	existing  map[string]bool
	existsErr error
	recordErr error
	recorded  []domain.ProcessedRecord
}

func (f *fakeStore) Exists(ctx context.Context, articleID string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.existing[articleID], nil
}

func (f *fakeStore) Record(ctx context.Context, articleID, title string) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, domain.ProcessedRecord{ArticleID: articleID, Title: title})
	return nil
}

type fakeSummarizer struct {
	output string
	err    error
	calls  int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, article domain.Article, variant domain.Variant) (domain.SummaryVariant, error) {
	f.calls++
	if f.err != nil {
		return domain.SummaryVariant{}, f.err
	}
	return domain.SummaryVariant{LanguageTag: variant.Tag, Text: variant.Prefix + f.output}, nil
}

type fakePublisher struct {
	publicURL string
	err       error
	drafts    []domain.PostDraft
	waits     []bool
}

func (f *fakePublisher) Publish(ctx context.Context, draft domain.PostDraft, waitForPublicURL bool) (string, error) {
	f.drafts = append(f.drafts, draft)
	f.waits = append(f.waits, waitForPublicURL)
	if f.err != nil {
		return "", f.err
	}
	if len(f.drafts) == 1 {
		return f.publicURL, nil
	}
	return "", nil
}

var (
	primaryVariant   = domain.Variant{Tag: "zh", Prefix: "💡资讯\n", Template: "zh template", AccountKey: "key-zh"}
	secondaryVariant = domain.Variant{Tag: "ko", Prefix: "💡뉴스\n", Template: "ko template", AccountKey: "key-ko"}
)

func freshArticle() domain.Article {
	return domain.Article{ID: "42", Title: "T", Content: "C", PageURL: "https://x/42"}
}

func newTestPipeline(source *fakeSource, store *fakeStore, summarizer *fakeSummarizer, publisher *fakePublisher, variants ...domain.Variant) *Pipeline {
	return NewPipeline(PipelineDeps{
		Source:     source,
		Store:      store,
		Summarizer: summarizer,
		Publisher:  publisher,
		Variants:   variants,
	})
}

func TestRunPublishesNewArticle(t *testing.T) {
	t.Parallel()

	source := &fakeSource{article: freshArticle(), found: true, link: "https://source/abc", linkFound: true}
	store := &fakeStore{existing: map[string]bool{}}
	summarizer := &fakeSummarizer{output: "Short summary #BTC"}
	publisher := &fakePublisher{}

	pipeline := newTestPipeline(source, store, summarizer, publisher, primaryVariant)

	outcome, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if outcome != domain.OutcomePublished {
		t.Fatalf("unexpected outcome: %s", outcome)
	}

	if len(publisher.drafts) != 1 {
		t.Fatalf("expected 1 publish call, got %d", len(publisher.drafts))
	}
	want := "💡资讯\nShort summary #BTC\n\nhttps://source/abc"
	if publisher.drafts[0].Body != want {
		t.Fatalf("unexpected draft body: %q", publisher.drafts[0].Body)
	}
	if publisher.drafts[0].AccountKey != "key-zh" {
		t.Fatalf("unexpected account key: %s", publisher.drafts[0].AccountKey)
	}
	if publisher.waits[0] {
		t.Fatal("single-variant run should not wait for the public url")
	}

	if len(store.recorded) != 1 {
		t.Fatalf("expected 1 record, got %d", len(store.recorded))
	}
	if store.recorded[0].ArticleID != "42" || store.recorded[0].Title != "T" {
		t.Fatalf("unexpected record: %+v", store.recorded[0])
	}
}

func TestRunDraftBodyHasSingleBlankLine(t *testing.T) {
	t.Parallel()

	source := &fakeSource{article: freshArticle(), found: true, link: "https://source/abc", linkFound: true}
	store := &fakeStore{existing: map[string]bool{}}
	publisher := &fakePublisher{}

	pipeline := newTestPipeline(source, store, &fakeSummarizer{output: "Short summary #BTC"}, publisher, primaryVariant)

	if _, err := pipeline.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	body := publisher.drafts[0].Body
	if got := strings.Count(body, "\n\n"); got != 1 {
		t.Fatalf("expected exactly one blank line, found %d in %q", got, body)
	}
}

func TestRunSkipsProcessedArticle(t *testing.T) {
	t.Parallel()

	source := &fakeSource{article: freshArticle(), found: true, link: "https://source/abc", linkFound: true}
	store := &fakeStore{existing: map[string]bool{"42": true}}
	summarizer := &fakeSummarizer{output: "Short summary #BTC"}
	publisher := &fakePublisher{}

	pipeline := newTestPipeline(source, store, summarizer, publisher, primaryVariant)

	outcome, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if outcome != domain.OutcomeAlreadyProcessed {
		t.Fatalf("unexpected outcome: %s", outcome)
	}

	if summarizer.calls != 0 {
		t.Fatalf("summarizer called %d times for a processed article", summarizer.calls)
	}
	if len(publisher.drafts) != 0 {
		t.Fatalf("publisher called %d times for a processed article", len(publisher.drafts))
	}
	if len(store.recorded) != 0 {
		t.Fatalf("record written for a processed article")
	}
}

func TestRunSecondInvocationShortCircuits(t *testing.T) {
	t.Parallel()

	source := &fakeSource{article: freshArticle(), found: true, link: "https://source/abc", linkFound: true}
	store := &fakeStore{existing: map[string]bool{}}
	publisher := &fakePublisher{}

	pipeline := newTestPipeline(source, store, &fakeSummarizer{output: "s"}, publisher, primaryVariant)

	if _, err := pipeline.Run(context.Background()); err != nil {
		t.Fatalf("first Run error: %v", err)
	}

	// Simulate persistence surviving between runs.
	store.existing["42"] = true

	outcome, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run error: %v", err)
	}
	if outcome != domain.OutcomeAlreadyProcessed {
		t.Fatalf("unexpected second outcome: %s", outcome)
	}

	if len(publisher.drafts) != 1 {
		t.Fatalf("expected 1 total publish call, got %d", len(publisher.drafts))
	}
	if len(store.recorded) != 1 {
		t.Fatalf("expected 1 total record, got %d", len(store.recorded))
	}
}

func TestRunFetchFailure(t *testing.T) {
	t.Parallel()

	source := &fakeSource{fetchErr: errors.New("timeout")}
	store := &fakeStore{existing: map[string]bool{}}
	summarizer := &fakeSummarizer{}
	publisher := &fakePublisher{}

	pipeline := newTestPipeline(source, store, summarizer, publisher, primaryVariant)

	outcome, err := pipeline.Run(context.Background())
	if err == nil {
		t.Fatal("expected error for fetch failure")
	}
	if outcome != domain.OutcomeNoContent {
		t.Fatalf("unexpected outcome: %s", outcome)
	}

	if summarizer.calls != 0 || len(publisher.drafts) != 0 || len(store.recorded) != 0 {
		t.Fatal("side effects after a fetch failure")
	}
}

func TestRunNoNewContent(t *testing.T) {
	t.Parallel()

	source := &fakeSource{found: false}
	pipeline := newTestPipeline(source, &fakeStore{}, &fakeSummarizer{}, &fakePublisher{}, primaryVariant)

	outcome, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if outcome != domain.OutcomeNoContent {
		t.Fatalf("unexpected outcome: %s", outcome)
	}
}

func TestRunEmptyArticleID(t *testing.T) {
	t.Parallel()

	article := freshArticle()
	article.ID = ""
	source := &fakeSource{article: article, found: true}
	store := &fakeStore{existing: map[string]bool{}}
	publisher := &fakePublisher{}

	pipeline := newTestPipeline(source, store, &fakeSummarizer{output: "s"}, publisher, primaryVariant)

	outcome, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if outcome != domain.OutcomeNoContent {
		t.Fatalf("unexpected outcome: %s", outcome)
	}
	if len(publisher.drafts) != 0 || len(store.recorded) != 0 {
		t.Fatal("side effects for an article without id")
	}
}

func TestRunMissingSourceLinkAborts(t *testing.T) {
	t.Parallel()

	source := &fakeSource{article: freshArticle(), found: true, linkFound: false}
	store := &fakeStore{existing: map[string]bool{}}
	publisher := &fakePublisher{}

	pipeline := newTestPipeline(source, store, &fakeSummarizer{output: "s"}, publisher, primaryVariant)

	outcome, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if outcome != domain.OutcomeNoSourceLink {
		t.Fatalf("unexpected outcome: %s", outcome)
	}

	if len(publisher.drafts) != 0 {
		t.Fatal("publish attempted without a source link")
	}
	if len(store.recorded) != 0 {
		t.Fatal("article marked processed without a source link; it must stay retryable")
	}
}

func TestRunSecondaryUsesPrimaryPublicURL(t *testing.T) {
	t.Parallel()

	source := &fakeSource{article: freshArticle(), found: true, link: "https://source/abc", linkFound: true}
	store := &fakeStore{existing: map[string]bool{}}
	publisher := &fakePublisher{publicURL: "https://x.com/user/status/1"}

	pipeline := newTestPipeline(source, store, &fakeSummarizer{output: "summary"}, publisher, primaryVariant, secondaryVariant)

	outcome, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if outcome != domain.OutcomePublished {
		t.Fatalf("unexpected outcome: %s", outcome)
	}

	if len(publisher.drafts) != 2 {
		t.Fatalf("expected 2 publish calls, got %d", len(publisher.drafts))
	}
	if !publisher.waits[0] {
		t.Fatal("primary publish should wait for the public url when a secondary follows")
	}
	if publisher.waits[1] {
		t.Fatal("secondary publish should not wait")
	}

	if !strings.HasSuffix(publisher.drafts[0].Body, "\n\nhttps://source/abc") {
		t.Fatalf("primary draft should trail the source link: %q", publisher.drafts[0].Body)
	}
	if !strings.HasSuffix(publisher.drafts[1].Body, "\n\nhttps://x.com/user/status/1") {
		t.Fatalf("secondary draft should trail the primary public url: %q", publisher.drafts[1].Body)
	}
	if publisher.drafts[1].AccountKey != "key-ko" {
		t.Fatalf("unexpected secondary account key: %s", publisher.drafts[1].AccountKey)
	}

	if len(store.recorded) != 1 {
		t.Fatalf("expected 1 record, got %d", len(store.recorded))
	}
}

func TestRunSecondaryFallsBackToSourceLink(t *testing.T) {
	t.Parallel()

	source := &fakeSource{article: freshArticle(), found: true, link: "https://source/abc", linkFound: true}
	store := &fakeStore{existing: map[string]bool{}}
	publisher := &fakePublisher{publicURL: ""}

	pipeline := newTestPipeline(source, store, &fakeSummarizer{output: "summary"}, publisher, primaryVariant, secondaryVariant)

	if _, err := pipeline.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(publisher.drafts) != 2 {
		t.Fatalf("expected 2 publish calls, got %d", len(publisher.drafts))
	}
	if !strings.HasSuffix(publisher.drafts[1].Body, "\n\nhttps://source/abc") {
		t.Fatalf("secondary draft should fall back to the source link: %q", publisher.drafts[1].Body)
	}
}

func TestRunSummarizerFailureUsesFallback(t *testing.T) {
	t.Parallel()

	source := &fakeSource{article: freshArticle(), found: true, link: "https://source/abc", linkFound: true}
	store := &fakeStore{existing: map[string]bool{}}
	publisher := &fakePublisher{}

	pipeline := newTestPipeline(source, store, &fakeSummarizer{err: errors.New("completion down")}, publisher, primaryVariant)

	outcome, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if outcome != domain.OutcomePublished {
		t.Fatalf("unexpected outcome: %s", outcome)
	}

	want := "💡资讯\nContent formatting failed.\n\nhttps://source/abc"
	if publisher.drafts[0].Body != want {
		t.Fatalf("unexpected fallback body: %q", publisher.drafts[0].Body)
	}
	if len(store.recorded) != 1 {
		t.Fatalf("expected fallback run to be recorded, got %d records", len(store.recorded))
	}
}

func TestRunPublishFailureStillRecords(t *testing.T) {
	t.Parallel()

	source := &fakeSource{article: freshArticle(), found: true, link: "https://source/abc", linkFound: true}
	store := &fakeStore{existing: map[string]bool{}}
	publisher := &fakePublisher{err: errors.New("scheduling api down")}

	pipeline := newTestPipeline(source, store, &fakeSummarizer{output: "s"}, publisher, primaryVariant, secondaryVariant)

	outcome, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if outcome != domain.OutcomePublished {
		t.Fatalf("unexpected outcome: %s", outcome)
	}

	if len(publisher.drafts) != 2 {
		t.Fatalf("expected both publishes to be attempted, got %d", len(publisher.drafts))
	}
	if len(store.recorded) != 1 {
		t.Fatalf("expected the article to be recorded despite publish failures, got %d", len(store.recorded))
	}
}

func TestRunDedupCheckFailureIsFailSafe(t *testing.T) {
	t.Parallel()

	source := &fakeSource{article: freshArticle(), found: true, link: "https://source/abc", linkFound: true}
	store := &fakeStore{existsErr: errors.New("db unreachable")}
	summarizer := &fakeSummarizer{output: "s"}
	publisher := &fakePublisher{}

	pipeline := newTestPipeline(source, store, summarizer, publisher, primaryVariant)

	outcome, err := pipeline.Run(context.Background())
	if err == nil {
		t.Fatal("expected error for dedup check failure")
	}
	if outcome != domain.OutcomeAlreadyProcessed {
		t.Fatalf("unexpected outcome: %s", outcome)
	}

	if summarizer.calls != 0 || len(publisher.drafts) != 0 {
		t.Fatal("side effects after an inconclusive dedup check")
	}
}

func TestRunRecordFailureSurfaces(t *testing.T) {
	t.Parallel()

	source := &fakeSource{article: freshArticle(), found: true, link: "https://source/abc", linkFound: true}
	store := &fakeStore{existing: map[string]bool{}, recordErr: errors.New("insert failed")}
	publisher := &fakePublisher{}

	pipeline := newTestPipeline(source, store, &fakeSummarizer{output: "s"}, publisher, primaryVariant)

	outcome, err := pipeline.Run(context.Background())
	if err == nil {
		t.Fatal("expected error when recording fails")
	}
	if outcome != domain.OutcomePublished {
		t.Fatalf("unexpected outcome: %s", outcome)
	}
}
