package models

import (
	"time"
)

// User represents an authenticated user of the system. The Google token
// fields are populated once the user connects their Drive account.
type User struct {
	ID                 string    `db:"id" json:"id"`
	FirstName          string    `db:"first_name" json:"first_name"`
	Email              string    `db:"email" json:"email"`
	PasswordHash       string    `db:"password" json:"-"`
	GoogleAccessToken  string    `db:"google_access_token" json:"-"`
	GoogleRefreshToken string    `db:"google_refresh_token" json:"-"`
	GoogleTokenExpiry  time.Time `db:"google_token_expiry" json:"-"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// DocumentKind tags the extraction strategy for a Drive file.
type DocumentKind string

const (
	KindWordDoc     DocumentKind = "word-doc"
	KindSpreadsheet DocumentKind = "spreadsheet"
	KindPDF         DocumentKind = "pdf"
	KindPlainText   DocumentKind = "plain-text"
	KindFolder      DocumentKind = "folder"
	KindOther       DocumentKind = "other"
)

// Drive MIME types that get dedicated handling.
const (
	MimeGoogleDoc   = "application/vnd.google-apps.document"
	MimeGoogleSheet = "application/vnd.google-apps.spreadsheet"
	MimeFolder      = "application/vnd.google-apps.folder"
	MimePDF         = "application/pdf"
)

// KindForMime maps a provider MIME type to a DocumentKind.
func KindForMime(mimeType string) DocumentKind {
	switch {
	case mimeType == MimeGoogleDoc:
		return KindWordDoc
	case mimeType == MimeGoogleSheet:
		return KindSpreadsheet
	case mimeType == MimeFolder:
		return KindFolder
	case mimeType == MimePDF:
		return KindPDF
	case len(mimeType) >= 5 && mimeType[:5] == "text/":
		return KindPlainText
	default:
		return KindOther
	}
}

// Document mirrors one remote Drive file plus the locally owned
// extraction/analysis fields. Metadata (name, mime type, size, modified
// time) is owned by Drive and refreshed on every sync; ContentText,
// ContentSummary and LastAnalyzed are owned by this service.
type Document struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"user_id"`
	Name           string     `db:"name" json:"name"`
	MimeType       string     `db:"mime_type" json:"mime_type"`
	Size           int64      `db:"size" json:"size"`
	WebViewLink    string     `db:"web_view_link" json:"web_view_link"`
	ModifiedTime   time.Time  `db:"modified_time" json:"modified_time"`
	ContentText    string     `db:"content_text" json:"-"`
	ContentSummary string     `db:"content_summary" json:"content_summary,omitempty"`
	LastAnalyzed   *time.Time `db:"last_analyzed" json:"last_analyzed,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Kind returns the extraction variant for the document.
func (d *Document) Kind() DocumentKind {
	return KindForMime(d.MimeType)
}

// IsStale reports whether the cached analysis is too old to trust.
// A document that was never summarized is always stale.
func (d *Document) IsStale(now time.Time, horizon time.Duration) bool {
	if d.ContentSummary == "" || d.LastAnalyzed == nil {
		return true
	}
	return now.Sub(*d.LastAnalyzed) > horizon
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatSession groups the messages of one conversation.
type ChatSession struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ChatMessage is one persisted conversation turn. Messages within a
// session are ordered by CreatedAt; system messages injected during
// context assembly are never persisted.
type ChatMessage struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	Role      Role      `db:"role" json:"role"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
