package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKindForMime(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		want     DocumentKind
	}{
		{"google doc", "application/vnd.google-apps.document", KindWordDoc},
		{"google sheet", "application/vnd.google-apps.spreadsheet", KindSpreadsheet},
		{"folder", "application/vnd.google-apps.folder", KindFolder},
		{"pdf", "application/pdf", KindPDF},
		{"plain text", "text/plain", KindPlainText},
		{"text with charset", "text/plain; charset=utf-8", KindPlainText},
		{"csv", "text/csv", KindPlainText},
		{"image", "image/png", KindOther},
		{"empty", "", KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindForMime(tt.mimeType))
		})
	}
}

func TestIsStale_NeverAnalyzed(t *testing.T) {
	now := time.Now()
	horizon := 24 * time.Hour

	// No summary, no timestamp.
	doc := Document{}
	assert.True(t, doc.IsStale(now, horizon))

	// A timestamp without a summary is still stale.
	analyzed := now.Add(-time.Minute)
	doc = Document{LastAnalyzed: &analyzed}
	assert.True(t, doc.IsStale(now, horizon))

	// A summary without a timestamp is stale too.
	doc = Document{ContentSummary: "summary"}
	assert.True(t, doc.IsStale(now, horizon))
}

func TestIsStale_Horizon(t *testing.T) {
	analyzedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	horizon := 24 * time.Hour
	doc := Document{ContentSummary: "summary", LastAnalyzed: &analyzedAt}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"at analysis time", analyzedAt, false},
		{"within horizon", analyzedAt.Add(12 * time.Hour), false},
		{"exactly at horizon", analyzedAt.Add(horizon), false},
		{"just past horizon", analyzedAt.Add(horizon + time.Second), true},
		{"far past horizon", analyzedAt.Add(30 * 24 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, doc.IsStale(tt.now, horizon))
		})
	}
}
