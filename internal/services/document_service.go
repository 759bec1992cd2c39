package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/obinna-dev/drivesage/internal/core"
	"github.com/obinna-dev/drivesage/internal/core/batch"
	"github.com/obinna-dev/drivesage/internal/models"
)

// DefaultPageSize bounds Drive listing requests.
const DefaultPageSize int64 = 100

// DocumentService syncs Drive metadata into the local cache and fronts
// the batch re-analysis path.
type DocumentService struct {
	db        core.DbClient
	store     core.DocumentStore
	creds     core.CredentialProvider
	scheduler *batch.Scheduler
}

func NewDocumentService(db core.DbClient, store core.DocumentStore, creds core.CredentialProvider, scheduler *batch.Scheduler) *DocumentService {
	return &DocumentService{db: db, store: store, creds: creds, scheduler: scheduler}
}

// Sync lists the user's Drive files and refreshes the cached metadata.
// Drive is the source of truth for metadata, so every sync overwrites
// the cached copy; analysis fields are left untouched by the upsert.
func (s *DocumentService) Sync(ctx context.Context, userID, query string) ([]models.Document, error) {
	token, err := s.creds.Credential(ctx, userID)
	if err != nil {
		return nil, err
	}

	files, err := s.store.ListFiles(ctx, token, query, DefaultPageSize)
	if err != nil {
		return nil, fmt.Errorf("sync drive files: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range files {
		doc := files[i]
		doc.UserID = userID
		g.Go(func() error {
			return s.db.UpsertDocumentMetadata(gctx, &doc)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("cache drive metadata: %w", err)
	}

	return s.db.ListDocumentsByUser(ctx, userID)
}

// Search finds Drive files whose name or full text matches the query.
func (s *DocumentService) Search(ctx context.Context, userID, searchQuery string) ([]models.Document, error) {
	query := fmt.Sprintf("name contains '%s' or fullText contains '%s'", searchQuery, searchQuery)
	return s.Sync(ctx, userID, query)
}

// List returns the cached documents for a user.
func (s *DocumentService) List(ctx context.Context, userID string) ([]models.Document, error) {
	return s.db.ListDocumentsByUser(ctx, userID)
}

// Get returns one cached document after checking ownership.
func (s *DocumentService) Get(ctx context.Context, userID, docID string) (*models.Document, error) {
	doc, err := s.db.GetDocumentByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.UserID != userID {
		return nil, fmt.Errorf("document not found: %s", docID)
	}
	return doc, nil
}

// RunBatchAnalysis re-analyzes all of the user's stale documents.
// Folders and unknown binaries are cached for listing but can never be
// extracted, so they are excluded up front instead of being reported as
// a failure or a sentinel commit on every run.
func (s *DocumentService) RunBatchAnalysis(ctx context.Context, userID string) (batch.Report, error) {
	docs, err := s.db.ListDocumentsByUser(ctx, userID)
	if err != nil {
		return batch.Report{}, fmt.Errorf("list documents: %w", err)
	}

	analyzable := make([]models.Document, 0, len(docs))
	for _, doc := range docs {
		switch doc.Kind() {
		case models.KindFolder, models.KindOther:
			continue
		}
		analyzable = append(analyzable, doc)
	}
	return s.scheduler.RunForUser(ctx, userID, analyzable)
}
