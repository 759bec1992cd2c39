package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/obinna-dev/drivesage/internal/core"
	"github.com/obinna-dev/drivesage/internal/core/chatctx"
	"github.com/obinna-dev/drivesage/internal/models"
)

// FallbackMessage is returned (and persisted) when the language model
// cannot be reached, so a turn never surfaces as an exception.
const FallbackMessage = "I'm sorry, I couldn't generate a response at this time. Please try again."

const chatMaxTokens int32 = 2000
const chatTemperature float32 = 0.7

// ConversationService runs one conversational turn end to end: persist
// the user message, assemble the context window, call the model and
// persist the reply.
type ConversationService struct {
	db        core.DbClient
	assembler *chatctx.Assembler
	llm       core.LLMProvider
	now       func() time.Time
}

func NewConversationService(db core.DbClient, assembler *chatctx.Assembler, llm core.LLMProvider) *ConversationService {
	return &ConversationService{db: db, assembler: assembler, llm: llm, now: time.Now}
}

// Turn processes one user message in the given session, creating the
// session when sessionID is empty. It returns the persisted assistant
// message.
func (s *ConversationService) Turn(ctx context.Context, userID, sessionID, message, freeformContext string, documentIDs []string) (*models.ChatMessage, error) {
	session, err := s.resolveSession(ctx, userID, sessionID, message)
	if err != nil {
		return nil, err
	}

	// History is loaded before the new message is stored so the context
	// window gets it exactly once, as the final user entry.
	history, err := s.db.GetMessagesBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	userTurn := &models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      models.RoleUser,
		Content:   message,
		CreatedAt: s.now(),
	}
	if err := s.db.AddChatMessage(ctx, userTurn); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	msgs, err := s.assembler.Build(ctx, userID, history, message, freeformContext, documentIDs)
	if err != nil {
		return nil, fmt.Errorf("assemble context: %w", err)
	}

	answer, err := s.llm.Complete(ctx, msgs, chatMaxTokens, chatTemperature)
	if err != nil {
		log.Printf("conversation: llm call failed for session %s: %v", session.ID, err)
		answer = FallbackMessage
	}

	assistantTurn := &models.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      models.RoleAssistant,
		Content:   answer,
		CreatedAt: s.now(),
	}
	if err := s.db.AddChatMessage(ctx, assistantTurn); err != nil {
		return nil, fmt.Errorf("save assistant message: %w", err)
	}
	if err := s.db.TouchChatSession(ctx, session.ID); err != nil {
		log.Printf("conversation: touch session %s: %v", session.ID, err)
	}

	return assistantTurn, nil
}

// Sessions lists the user's conversations, most recently active first.
func (s *ConversationService) Sessions(ctx context.Context, userID string) ([]models.ChatSession, error) {
	return s.db.ListChatSessionsByUser(ctx, userID)
}

// SessionMessages returns the stored turns of one session after checking
// ownership.
func (s *ConversationService) SessionMessages(ctx context.Context, userID, sessionID string) ([]models.ChatMessage, error) {
	session, err := s.db.GetChatSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != userID {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}
	return s.db.GetMessagesBySession(ctx, sessionID)
}

func (s *ConversationService) resolveSession(ctx context.Context, userID, sessionID, message string) (*models.ChatSession, error) {
	if sessionID != "" {
		session, err := s.db.GetChatSessionByID(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		if session == nil || session.UserID != userID {
			return nil, fmt.Errorf("session not found: %s", sessionID)
		}
		return session, nil
	}

	session := &models.ChatSession{
		ID:     uuid.NewString(),
		UserID: userID,
		Title:  sessionTitle(message),
	}
	if err := s.db.CreateChatSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// sessionTitle derives a short title from the opening message.
func sessionTitle(message string) string {
	const max = 60
	runes := []rune(message)
	if len(runes) <= max {
		return message
	}
	return string(runes[:max]) + "..."
}
