package drive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/docs/v1"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/obinna-dev/drivesage/internal/core"
	"github.com/obinna-dev/drivesage/internal/models"
)

var _ core.DocumentStore = (*Store)(nil)

// listFields is the metadata projection requested from Drive.
const listFields = "nextPageToken, files(id, name, mimeType, size, modifiedTime, webViewLink)"

// Store talks to Google Drive, Docs and Sheets. Services are built per
// call from the supplied token so a refreshed credential is always used.
// A shared token bucket keeps the request rate below Google's per-user
// quota (10/sec/user for Drive).
type Store struct {
	limiter *rate.Limiter
}

func NewStore() *Store {
	return &Store{limiter: rate.NewLimiter(rate.Limit(8), 10)}
}

// ListFiles returns metadata for the user's files matching the optional
// Drive query. Folder entries are included so they can be cached, but
// they are never extracted.
func (s *Store) ListFiles(ctx context.Context, token *oauth2.Token, query string, pageSize int64) ([]models.Document, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	svc, err := s.driveService(ctx, token)
	if err != nil {
		return nil, err
	}

	call := svc.Files.List().PageSize(pageSize).Fields(listFields).Context(ctx)
	if query != "" {
		call = call.Q(query)
	}
	list, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("list drive files: %w", core.WrapGoogleError(err))
	}

	out := make([]models.Document, 0, len(list.Files))
	for _, f := range list.Files {
		out = append(out, fileToDocument(f))
	}
	return out, nil
}

// GetMetadata fetches fresh metadata for a single file.
func (s *Store) GetMetadata(ctx context.Context, token *oauth2.Token, fileID string) (*models.Document, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	svc, err := s.driveService(ctx, token)
	if err != nil {
		return nil, err
	}

	f, err := svc.Files.Get(fileID).
		Fields("id, name, mimeType, size, modifiedTime, webViewLink").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get drive file %s: %w", fileID, core.WrapGoogleError(err))
	}
	doc := fileToDocument(f)
	return &doc, nil
}

// FetchDocument pulls the structural body of a Google Doc and converts
// it to the provider-neutral paragraph/run shape.
func (s *Store) FetchDocument(ctx context.Context, token *oauth2.Token, fileID string) (*core.WordDocument, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	svc, err := docs.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(token)))
	if err != nil {
		return nil, fmt.Errorf("docs service: %w", err)
	}

	doc, err := svc.Documents.Get(fileID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get google doc %s: %w", fileID, core.WrapGoogleError(err))
	}

	out := &core.WordDocument{}
	if doc.Body == nil {
		return out, nil
	}
	for _, el := range doc.Body.Content {
		if el.Paragraph == nil {
			continue
		}
		var p core.Paragraph
		for _, pe := range el.Paragraph.Elements {
			if pe.TextRun != nil && pe.TextRun.Content != "" {
				p.Runs = append(p.Runs, pe.TextRun.Content)
			}
		}
		out.Paragraphs = append(out.Paragraphs, p)
	}
	return out, nil
}

// FetchSpreadsheet pulls every sheet of a Google Sheet in workbook order,
// reading the bounded A:Z range of each.
func (s *Store) FetchSpreadsheet(ctx context.Context, token *oauth2.Token, fileID string) ([]core.SheetData, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	svc, err := sheets.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(token)))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	ss, err := svc.Spreadsheets.Get(fileID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet %s: %w", fileID, core.WrapGoogleError(err))
	}

	var out []core.SheetData
	for _, sheet := range ss.Sheets {
		if sheet.Properties == nil {
			continue
		}
		name := sheet.Properties.Title
		data := core.SheetData{Name: name}

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		values, err := svc.Spreadsheets.Values.
			Get(fileID, sheetRange(name)).
			Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("read sheet %q of %s: %w", name, fileID, core.WrapGoogleError(err))
		}
		for _, row := range values.Values {
			cells := make([]string, len(row))
			for i, cell := range row {
				if cell != nil {
					cells[i] = fmt.Sprint(cell)
				}
			}
			data.Rows = append(data.Rows, cells)
		}
		out = append(out, data)
	}
	return out, nil
}

// FetchRawBytes downloads a binary file (PDF, plain text) via the Drive
// media endpoint.
func (s *Store) FetchRawBytes(ctx context.Context, token *oauth2.Token, fileID string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	svc, err := s.driveService(ctx, token)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download drive file %s: %w", fileID, core.WrapGoogleError(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read drive file %s: %w", fileID, core.ErrRemoteUnavailable)
	}
	return raw, nil
}

func (s *Store) driveService(ctx context.Context, token *oauth2.Token) (*drive.Service, error) {
	svc, err := drive.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(token)))
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return svc, nil
}

// sheetRange builds an A1-notation range over columns A-Z, quoting the
// sheet name so titles with spaces or quotes stay valid.
func sheetRange(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'!A:Z"
}

func fileToDocument(f *drive.File) models.Document {
	doc := models.Document{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		Size:        f.Size,
		WebViewLink: f.WebViewLink,
	}
	if f.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			doc.ModifiedTime = t
		}
	}
	return doc
}
