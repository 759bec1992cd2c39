package core

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"github.com/obinna-dev/drivesage/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUserGoogleToken(ctx context.Context, userID, accessToken, refreshToken string, expiry time.Time) error

	// UpsertDocumentMetadata refreshes provider-owned fields only; it never
	// touches content_text, content_summary or last_analyzed.
	UpsertDocumentMetadata(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error)

	// UpdateDocumentAnalysis replaces the (text, summary, analyzedAt) triple
	// in a single statement so concurrent readers never observe a
	// half-written analysis.
	UpdateDocumentAnalysis(ctx context.Context, id, contentText, summary string, analyzedAt time.Time) error

	CreateChatSession(ctx context.Context, session *models.ChatSession) error
	GetChatSessionByID(ctx context.Context, id string) (*models.ChatSession, error)
	ListChatSessionsByUser(ctx context.Context, userID string) ([]models.ChatSession, error)
	TouchChatSession(ctx context.Context, id string) error

	AddChatMessage(ctx context.Context, message *models.ChatMessage) error
	GetMessagesBySession(ctx context.Context, sessionID string) ([]models.ChatMessage, error)

	Close() error
}

// CredentialProvider supplies a valid, non-expired Google token for a
// user. Implementations refresh and persist tokens as needed; callers
// must fetch a fresh token per operation rather than caching one.
type CredentialProvider interface {
	Credential(ctx context.Context, userID string) (*oauth2.Token, error)
}

// WordDocument is the structural body of a word-processor document:
// ordered paragraphs, each an ordered sequence of literal run texts.
type WordDocument struct {
	Paragraphs []Paragraph
}

// Paragraph holds the text runs of one paragraph in document order.
type Paragraph struct {
	Runs []string
}

// SheetData is one sheet of a spreadsheet in workbook order, with rows
// from the bounded used range.
type SheetData struct {
	Name string
	Rows [][]string
}

// DocumentStore abstracts the remote file store (Google Drive plus the
// Docs and Sheets APIs). All calls take the credential explicitly.
type DocumentStore interface {
	ListFiles(ctx context.Context, token *oauth2.Token, query string, pageSize int64) ([]models.Document, error)
	GetMetadata(ctx context.Context, token *oauth2.Token, fileID string) (*models.Document, error)
	FetchDocument(ctx context.Context, token *oauth2.Token, fileID string) (*WordDocument, error)
	FetchSpreadsheet(ctx context.Context, token *oauth2.Token, fileID string) ([]SheetData, error)
	FetchRawBytes(ctx context.Context, token *oauth2.Token, fileID string) ([]byte, error)
}

// TextExtractor converts one remote document into normalized plain text.
// Implementations must be pure transforms over their inputs: no retries,
// no persistence.
type TextExtractor interface {
	Extract(ctx context.Context, token *oauth2.Token, doc *models.Document) (string, error)
}
