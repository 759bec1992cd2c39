package chatctx

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/oauth2"

	"github.com/obinna-dev/drivesage/internal/core"
	"github.com/obinna-dev/drivesage/internal/models"
)

// Persona is the fixed system instruction opening every context window.
const Persona = "You are an AI assistant that helps users manage and analyze their Google Drive files. " +
	"You can help with file organization, content analysis, document creation, and business process automation. " +
	"Always be helpful and provide accurate information based on the user's Drive content."

// Assembler builds the ordered message sequence for one conversational
// turn: system preamble, stored history, optional document context, then
// the new user message. It does not enforce a token budget; capping
// history length is the caller's job.
type Assembler struct {
	db        core.DbClient
	extractor core.TextExtractor
	creds     core.CredentialProvider
	horizon   time.Duration
	now       func() time.Time
}

func NewAssembler(db core.DbClient, extractor core.TextExtractor, creds core.CredentialProvider, horizon time.Duration) *Assembler {
	return &Assembler{
		db:        db,
		extractor: extractor,
		creds:     creds,
		horizon:   horizon,
		now:       time.Now,
	}
}

// Build assembles the context window. Document refs that cannot be
// resolved degrade to being skipped; the turn itself never fails because
// one document could not be read.
func (a *Assembler) Build(ctx context.Context, userID string, history []models.ChatMessage, userMessage, freeformContext string, documentIDs []string) ([]core.Message, error) {
	system := Persona
	if freeformContext != "" {
		system += "\n\n" + freeformContext
	}

	msgs := make([]core.Message, 0, len(history)+len(documentIDs)+2)
	msgs = append(msgs, core.Message{Role: models.RoleSystem, Content: system})

	for _, turn := range history {
		msgs = append(msgs, core.Message{Role: turn.Role, Content: turn.Content})
	}

	if len(documentIDs) > 0 {
		msgs = append(msgs, a.documentContext(ctx, userID, documentIDs)...)
	}

	msgs = append(msgs, core.Message{Role: models.RoleUser, Content: userMessage})
	return msgs, nil
}

// documentContext resolves each referenced document's text, reusing the
// cache when fresh and re-extracting when stale. The credential is
// fetched once, lazily, for the refs that actually need a remote call.
func (a *Assembler) documentContext(ctx context.Context, userID string, documentIDs []string) []core.Message {
	var (
		msgs  []core.Message
		token *oauth2.Token
	)
	for _, id := range documentIDs {
		doc, err := a.db.GetDocumentByID(ctx, id)
		if err != nil || doc == nil {
			log.Printf("chatctx: document %s unavailable, skipping: %v", id, err)
			continue
		}
		// Drive file ids are guessable from shared links; a ref to a
		// document cached for another user must never leak its text.
		if doc.UserID != userID {
			log.Printf("chatctx: document %s not owned by user %s, skipping", id, userID)
			continue
		}

		text := doc.ContentText
		if text == "" || doc.IsStale(a.now(), a.horizon) {
			if token == nil {
				token, err = a.creds.Credential(ctx, userID)
				if err != nil {
					log.Printf("chatctx: no credential for user %s, skipping document context: %v", userID, err)
					continue
				}
			}
			fresh, err := a.extractor.Extract(ctx, token, doc)
			if err != nil {
				// Degrade gracefully: answer without this document.
				log.Printf("chatctx: extraction failed for %s, skipping: %v", id, err)
				if text == "" {
					continue
				}
			} else {
				text = fresh
			}
		}
		if text == "" {
			continue
		}

		msgs = append(msgs, core.Message{
			Role:    models.RoleSystem,
			Content: fmt.Sprintf("Document: %s\n\n%s", doc.Name, text),
		})
	}
	return msgs
}
