package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/obinna-dev/drivesage/internal/core"
	"github.com/obinna-dev/drivesage/internal/models"
)

// SentinelSummary is stored when a document's content could not be
// extracted. It is a normal outcome, distinct from "not yet analyzed",
// so the batch path does not hammer unreadable files every run.
const SentinelSummary = "No readable content is available for this document."

// DefaultMaxTokens bounds the summarization output.
const DefaultMaxTokens int32 = 1000

// analysisTemperature favors deterministic summaries.
const analysisTemperature float32 = 0.3

const systemInstruction = "You are an AI assistant that analyzes documents and provides concise summaries and key insights."

// Analyzer turns a document's extracted text into a short semantic
// summary via the language model, updating the cache on success.
type Analyzer struct {
	db        core.DbClient
	extractor core.TextExtractor
	llm       core.LLMProvider
	creds     core.CredentialProvider
	maxTokens int32
	now       func() time.Time
}

func NewAnalyzer(db core.DbClient, extractor core.TextExtractor, llm core.LLMProvider, creds core.CredentialProvider, maxTokens int32) *Analyzer {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Analyzer{
		db:        db,
		extractor: extractor,
		llm:       llm,
		creds:     creds,
		maxTokens: maxTokens,
		now:       time.Now,
	}
}

// Analyze produces and caches a summary for the document, mutating doc
// in place on success. Unreadable content (empty text, unsupported
// format, corrupt bytes) yields the sentinel summary instead of an
// error. Remote failures (store, credential, model) surface typed and
// leave the cached state untouched.
func (a *Analyzer) Analyze(ctx context.Context, userID string, doc *models.Document) (string, error) {
	text := doc.ContentText
	if text == "" {
		tok, err := a.creds.Credential(ctx, userID)
		if err != nil {
			return "", &core.AnalysisError{DocumentID: doc.ID, Err: err}
		}
		text, err = a.extractor.Extract(ctx, tok, doc)
		if err != nil {
			if errors.Is(err, core.ErrUnsupportedFormat) || errors.Is(err, core.ErrDecodeFailure) {
				return a.commit(ctx, doc, "", SentinelSummary)
			}
			return "", &core.AnalysisError{DocumentID: doc.ID, Err: err}
		}
	}
	if text == "" {
		return a.commit(ctx, doc, "", SentinelSummary)
	}

	prompt := buildAnalysisPrompt(doc, text)
	msgs := []core.Message{
		{Role: models.RoleSystem, Content: systemInstruction},
		{Role: models.RoleUser, Content: prompt},
	}

	summary, err := a.llm.Complete(ctx, msgs, a.maxTokens, analysisTemperature)
	if err != nil {
		return "", &core.AnalysisError{DocumentID: doc.ID, Err: err}
	}
	// An empty summary would read as never-analyzed and trigger
	// re-analysis every run; refuse to cache it.
	if summary == "" {
		return "", &core.AnalysisError{DocumentID: doc.ID, Err: core.ErrEmptyCompletion}
	}

	return a.commit(ctx, doc, text, summary)
}

// commit replaces the cached (text, summary, analyzedAt) triple in one
// write and mirrors it onto the in-memory document.
func (a *Analyzer) commit(ctx context.Context, doc *models.Document, text, summary string) (string, error) {
	analyzedAt := a.now()
	if err := a.db.UpdateDocumentAnalysis(ctx, doc.ID, text, summary, analyzedAt); err != nil {
		return "", &core.AnalysisError{DocumentID: doc.ID, Err: err}
	}
	doc.ContentText = text
	doc.ContentSummary = summary
	doc.LastAnalyzed = &analyzedAt
	return summary, nil
}

func buildAnalysisPrompt(doc *models.Document, content string) string {
	return fmt.Sprintf(
		"Please analyze the following document and provide:\n"+
			"1. A brief summary (2-3 sentences)\n"+
			"2. Key topics and themes\n"+
			"3. Important dates, names, or numbers mentioned\n"+
			"4. Suggested tags or categories\n\n"+
			"Document: %s\n"+
			"Type: %s\n"+
			"Content:\n%s",
		doc.Name, doc.MimeType, content,
	)
}
