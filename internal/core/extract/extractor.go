package extract

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/obinna-dev/drivesage/internal/core"
	"github.com/obinna-dev/drivesage/internal/models"
)

var _ core.TextExtractor = (*Extractor)(nil)

// Extractor converts remote documents into normalized UTF-8 text.
// It dispatches on the document kind and delegates the remote fetch to
// the store; the per-variant rendering itself is pure. Extraction is
// never retried here and nothing is persisted; both belong to callers.
type Extractor struct {
	store core.DocumentStore
}

func NewExtractor(store core.DocumentStore) *Extractor {
	return &Extractor{store: store}
}

// Extract fetches the document body and renders it as plain text.
// Unsupported kinds (folders, unknown binaries) yield a typed
// ExtractionError wrapping ErrUnsupportedFormat.
func (e *Extractor) Extract(ctx context.Context, token *oauth2.Token, doc *models.Document) (string, error) {
	switch doc.Kind() {
	case models.KindWordDoc:
		wd, err := e.store.FetchDocument(ctx, token, doc.ID)
		if err != nil {
			return "", &core.ExtractionError{DocumentID: doc.ID, Err: err}
		}
		return RenderWordDocument(wd), nil

	case models.KindSpreadsheet:
		sheets, err := e.store.FetchSpreadsheet(ctx, token, doc.ID)
		if err != nil {
			return "", &core.ExtractionError{DocumentID: doc.ID, Err: err}
		}
		return RenderSpreadsheet(sheets), nil

	case models.KindPDF:
		raw, err := e.store.FetchRawBytes(ctx, token, doc.ID)
		if err != nil {
			return "", &core.ExtractionError{DocumentID: doc.ID, Err: err}
		}
		text, err := pdfText(raw)
		if err != nil {
			return "", &core.ExtractionError{DocumentID: doc.ID, Err: err}
		}
		return text, nil

	case models.KindPlainText:
		raw, err := e.store.FetchRawBytes(ctx, token, doc.ID)
		if err != nil {
			return "", &core.ExtractionError{DocumentID: doc.ID, Err: err}
		}
		return decodePlainText(raw, doc.MimeType), nil

	default:
		return "", &core.ExtractionError{
			DocumentID: doc.ID,
			Err:        fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, doc.MimeType),
		}
	}
}
