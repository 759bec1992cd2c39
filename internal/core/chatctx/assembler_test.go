package chatctx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/obinna-dev/drivesage/internal/core"
	"github.com/obinna-dev/drivesage/internal/models"
)

type fakeDB struct {
	core.DbClient
	docs map[string]*models.Document
}

func (f *fakeDB) GetDocumentByID(_ context.Context, id string) (*models.Document, error) {
	return f.docs[id], nil
}

type fakeExtractor struct {
	texts map[string]string
	err   error
	calls int
}

func (f *fakeExtractor) Extract(_ context.Context, _ *oauth2.Token, doc *models.Document) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.texts[doc.ID], nil
}

type fakeCreds struct {
	err error
}

func (f *fakeCreds) Credential(_ context.Context, _ string) (*oauth2.Token, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &oauth2.Token{AccessToken: "tok"}, nil
}

func fixedClock() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestAssembler(db *fakeDB, ex core.TextExtractor, creds core.CredentialProvider) *Assembler {
	a := NewAssembler(db, ex, creds, 24*time.Hour)
	a.now = fixedClock
	return a
}

func roles(msgs []core.Message) []models.Role {
	out := make([]models.Role, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role
	}
	return out
}

func TestBuild_OrderingWithDocumentRef(t *testing.T) {
	analyzedAt := fixedClock().Add(-time.Hour)
	db := &fakeDB{docs: map[string]*models.Document{
		"doc-1": {
			ID:             "doc-1",
			UserID:         "user-1",
			Name:           "Plan",
			MimeType:       models.MimeGoogleDoc,
			ContentText:    "the plan",
			ContentSummary: "summary",
			LastAnalyzed:   &analyzedAt,
		},
	}}
	a := newTestAssembler(db, &fakeExtractor{}, &fakeCreds{})

	history := []models.ChatMessage{
		{Role: models.RoleUser, Content: "u1"},
		{Role: models.RoleAssistant, Content: "a1"},
		{Role: models.RoleUser, Content: "u2"},
	}

	msgs, err := a.Build(context.Background(), "user-1", history, "u3", "", []string{"doc-1"})
	require.NoError(t, err)

	assert.Equal(t, []models.Role{
		models.RoleSystem,
		models.RoleUser,
		models.RoleAssistant,
		models.RoleUser,
		models.RoleSystem,
		models.RoleUser,
	}, roles(msgs))

	assert.Contains(t, msgs[4].Content, "Plan")
	assert.Contains(t, msgs[4].Content, "the plan")
	assert.Equal(t, "u3", msgs[5].Content)
}

func TestBuild_FreeformContext(t *testing.T) {
	a := newTestAssembler(&fakeDB{}, &fakeExtractor{}, &fakeCreds{})

	msgs, err := a.Build(context.Background(), "user-1", nil, "Summarize my files", "User is a student", nil)
	require.NoError(t, err)

	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, Persona)
	assert.Contains(t, msgs[0].Content, "User is a student")
	assert.Equal(t, models.RoleUser, msgs[1].Role)
	assert.Equal(t, "Summarize my files", msgs[1].Content)
}

func TestBuild_NoFreeformContext(t *testing.T) {
	a := newTestAssembler(&fakeDB{}, &fakeExtractor{}, &fakeCreds{})

	msgs, err := a.Build(context.Background(), "user-1", nil, "hi", "", nil)
	require.NoError(t, err)
	assert.Equal(t, Persona, msgs[0].Content)
}

func TestBuild_StaleDocumentReExtracted(t *testing.T) {
	stale := fixedClock().Add(-48 * time.Hour)
	db := &fakeDB{docs: map[string]*models.Document{
		"doc-1": {
			ID:             "doc-1",
			UserID:         "user-1",
			Name:           "Old",
			MimeType:       models.MimeGoogleDoc,
			ContentText:    "old text",
			ContentSummary: "old summary",
			LastAnalyzed:   &stale,
		},
	}}
	ex := &fakeExtractor{texts: map[string]string{"doc-1": "fresh text"}}
	a := newTestAssembler(db, ex, &fakeCreds{})

	msgs, err := a.Build(context.Background(), "user-1", nil, "q", "", []string{"doc-1"})
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, 1, ex.calls)
	assert.Contains(t, msgs[1].Content, "fresh text")
}

func TestBuild_FreshDocumentUsesCache(t *testing.T) {
	analyzedAt := fixedClock().Add(-time.Hour)
	db := &fakeDB{docs: map[string]*models.Document{
		"doc-1": {
			ID:             "doc-1",
			UserID:         "user-1",
			Name:           "Fresh",
			ContentText:    "cached text",
			ContentSummary: "summary",
			LastAnalyzed:   &analyzedAt,
		},
	}}
	ex := &fakeExtractor{}
	a := newTestAssembler(db, ex, &fakeCreds{})

	msgs, err := a.Build(context.Background(), "user-1", nil, "q", "", []string{"doc-1"})
	require.NoError(t, err)
	assert.Equal(t, 0, ex.calls)
	assert.Contains(t, msgs[1].Content, "cached text")
}

func TestBuild_ExtractionFailureSkipsDocument(t *testing.T) {
	db := &fakeDB{docs: map[string]*models.Document{
		"doc-1": {ID: "doc-1", UserID: "user-1", Name: "Broken", MimeType: models.MimeGoogleDoc},
	}}
	ex := &fakeExtractor{err: &core.ExtractionError{DocumentID: "doc-1", Err: core.ErrRemoteUnavailable}}
	a := newTestAssembler(db, ex, &fakeCreds{})

	msgs, err := a.Build(context.Background(), "user-1", nil, "q", "", []string{"doc-1"})
	require.NoError(t, err)

	// The turn proceeds without the document.
	assert.Equal(t, []models.Role{models.RoleSystem, models.RoleUser}, roles(msgs))
}

func TestBuild_ForeignDocumentSkipped(t *testing.T) {
	analyzedAt := fixedClock().Add(-time.Hour)
	db := &fakeDB{docs: map[string]*models.Document{
		"doc-1": {
			ID:             "doc-1",
			UserID:         "owner",
			Name:           "Payroll",
			MimeType:       models.MimeGoogleDoc,
			ContentText:    "CEO salary: 1,000,000",
			ContentSummary: "summary",
			LastAnalyzed:   &analyzedAt,
		},
	}}
	ex := &fakeExtractor{}
	a := newTestAssembler(db, ex, &fakeCreds{})

	msgs, err := a.Build(context.Background(), "someone-else", nil, "q", "", []string{"doc-1"})
	require.NoError(t, err)

	// Another user's cached text never enters the window, and no remote
	// fetch is attempted on their behalf.
	assert.Equal(t, []models.Role{models.RoleSystem, models.RoleUser}, roles(msgs))
	for _, m := range msgs {
		assert.NotContains(t, m.Content, "CEO salary")
	}
	assert.Equal(t, 0, ex.calls)
}

func TestBuild_UnknownDocumentSkipped(t *testing.T) {
	a := newTestAssembler(&fakeDB{}, &fakeExtractor{}, &fakeCreds{})

	msgs, err := a.Build(context.Background(), "user-1", nil, "q", "", []string{"missing"})
	require.NoError(t, err)
	assert.Equal(t, []models.Role{models.RoleSystem, models.RoleUser}, roles(msgs))
}

func TestBuild_NoCredentialSkipsDocumentContext(t *testing.T) {
	db := &fakeDB{docs: map[string]*models.Document{
		"doc-1": {ID: "doc-1", UserID: "user-1", Name: "NeedsAuth", MimeType: models.MimeGoogleDoc},
	}}
	a := newTestAssembler(db, &fakeExtractor{}, &fakeCreds{err: core.ErrCredentialUnavailable})

	msgs, err := a.Build(context.Background(), "user-1", nil, "q", "", []string{"doc-1"})
	require.NoError(t, err)
	assert.Equal(t, []models.Role{models.RoleSystem, models.RoleUser}, roles(msgs))
}
