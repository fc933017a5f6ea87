package domain

// Article is one newsflash item fetched from the content API. It lives for a
// single pipeline run; only its ID survives, as a ProcessedRecord.
type Article struct {
	ID      string
	Title   string
	Content string
	PageURL string
}

// ProcessedRecord is the persisted dedup entry for an article that completed
// the publish stage. Never updated or deleted by this system.
type ProcessedRecord struct {
	ArticleID string
	Title     string
}

// Variant selects one language-specific rendering of an article: the
// instruction template the model receives, the prefix stitched onto its
// output, and which publisher account the resulting post goes to.
type Variant struct {
	Tag        string
	Prefix     string
	Template   string
	AccountKey string
}

// SummaryVariant is the produced rendering: prefix plus length-capped model
// output.
type SummaryVariant struct {
	LanguageTag string
	Text        string
}

// PostDraft is a composed, ready-to-publish post body plus the account
// credential it should be submitted with.
type PostDraft struct {
	Body       string
	AccountKey string
}

// Outcome classifies how a single pipeline run ended.
type Outcome string

const (
	OutcomePublished        Outcome = "published"
	OutcomeNoContent        Outcome = "no-content"
	OutcomeAlreadyProcessed Outcome = "already-processed"
	OutcomeNoSourceLink     Outcome = "no-source-link"
)
