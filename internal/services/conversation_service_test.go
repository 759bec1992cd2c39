package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/obinna-dev/drivesage/internal/core"
	"github.com/obinna-dev/drivesage/internal/core/chatctx"
	"github.com/obinna-dev/drivesage/internal/models"
)

type fakeChatDB struct {
	core.DbClient

	sessions map[string]*models.ChatSession
	messages map[string][]models.ChatMessage
	touched  []string
}

func newFakeChatDB() *fakeChatDB {
	return &fakeChatDB{
		sessions: make(map[string]*models.ChatSession),
		messages: make(map[string][]models.ChatMessage),
	}
}

func (f *fakeChatDB) CreateChatSession(_ context.Context, session *models.ChatSession) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeChatDB) GetChatSessionByID(_ context.Context, id string) (*models.ChatSession, error) {
	return f.sessions[id], nil
}

func (f *fakeChatDB) ListChatSessionsByUser(_ context.Context, userID string) ([]models.ChatSession, error) {
	var out []models.ChatSession
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeChatDB) TouchChatSession(_ context.Context, id string) error {
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeChatDB) AddChatMessage(_ context.Context, msg *models.ChatMessage) error {
	f.messages[msg.SessionID] = append(f.messages[msg.SessionID], *msg)
	return nil
}

func (f *fakeChatDB) GetMessagesBySession(_ context.Context, sessionID string) ([]models.ChatMessage, error) {
	return f.messages[sessionID], nil
}

func (f *fakeChatDB) GetDocumentByID(_ context.Context, _ string) (*models.Document, error) {
	return nil, nil
}

type fakeChatLLM struct {
	reply   string
	err     error
	gotMsgs []core.Message
}

func (f *fakeChatLLM) Complete(_ context.Context, msgs []core.Message, _ int32, _ float32) (string, error) {
	f.gotMsgs = msgs
	return f.reply, f.err
}

type noExtractor struct{}

func (noExtractor) Extract(_ context.Context, _ *oauth2.Token, _ *models.Document) (string, error) {
	return "", errors.New("extractor must not be called")
}

type noCreds struct{}

func (noCreds) Credential(_ context.Context, _ string) (*oauth2.Token, error) {
	return nil, core.ErrCredentialUnavailable
}

func newTestConversationService(db *fakeChatDB, llm core.LLMProvider) *ConversationService {
	assembler := chatctx.NewAssembler(db, noExtractor{}, noCreds{}, 24*time.Hour)
	s := NewConversationService(db, assembler, llm)
	s.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestTurn_NewSessionPersistsBothMessages(t *testing.T) {
	db := newFakeChatDB()
	llm := &fakeChatLLM{reply: "Here is your answer."}
	s := newTestConversationService(db, llm)

	reply, err := s.Turn(context.Background(), "user-1", "", "What is in my files?", "", nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAssistant, reply.Role)
	assert.Equal(t, "Here is your answer.", reply.Content)

	require.Len(t, db.sessions, 1)
	session := db.sessions[reply.SessionID]
	require.NotNil(t, session)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, "What is in my files?", session.Title)

	stored := db.messages[session.ID]
	require.Len(t, stored, 2)
	assert.Equal(t, models.RoleUser, stored[0].Role)
	assert.Equal(t, "What is in my files?", stored[0].Content)
	assert.Equal(t, models.RoleAssistant, stored[1].Role)

	assert.Equal(t, []string{session.ID}, db.touched)
}

func TestTurn_LongOpeningMessageTruncatedTitle(t *testing.T) {
	db := newFakeChatDB()
	s := newTestConversationService(db, &fakeChatLLM{reply: "ok"})

	long := ""
	for i := 0; i < 20; i++ {
		long += "words "
	}
	reply, err := s.Turn(context.Background(), "user-1", "", long, "", nil)
	require.NoError(t, err)

	title := db.sessions[reply.SessionID].Title
	assert.Len(t, []rune(title), 63)
	assert.Equal(t, "...", title[len(title)-3:])
}

func TestTurn_ExistingSessionIncludesHistory(t *testing.T) {
	db := newFakeChatDB()
	db.sessions["sess-1"] = &models.ChatSession{ID: "sess-1", UserID: "user-1", Title: "t"}
	db.messages["sess-1"] = []models.ChatMessage{
		{SessionID: "sess-1", Role: models.RoleUser, Content: "earlier question"},
		{SessionID: "sess-1", Role: models.RoleAssistant, Content: "earlier answer"},
	}
	llm := &fakeChatLLM{reply: "followup answer"}
	s := newTestConversationService(db, llm)

	_, err := s.Turn(context.Background(), "user-1", "sess-1", "followup", "", nil)
	require.NoError(t, err)

	// system, two history turns, then the new message exactly once.
	require.Len(t, llm.gotMsgs, 4)
	assert.Equal(t, "earlier question", llm.gotMsgs[1].Content)
	assert.Equal(t, "earlier answer", llm.gotMsgs[2].Content)
	assert.Equal(t, "followup", llm.gotMsgs[3].Content)

	assert.Len(t, db.messages["sess-1"], 4)
}

func TestTurn_LLMFailureFallsBack(t *testing.T) {
	db := newFakeChatDB()
	llm := &fakeChatLLM{err: core.ErrRateLimited}
	s := newTestConversationService(db, llm)

	reply, err := s.Turn(context.Background(), "user-1", "", "hello", "", nil)
	require.NoError(t, err)
	assert.Equal(t, FallbackMessage, reply.Content)

	// The fallback is persisted like any other assistant turn.
	stored := db.messages[reply.SessionID]
	require.Len(t, stored, 2)
	assert.Equal(t, FallbackMessage, stored[1].Content)
}

func TestTurn_ForeignSessionRejected(t *testing.T) {
	db := newFakeChatDB()
	db.sessions["sess-1"] = &models.ChatSession{ID: "sess-1", UserID: "someone-else"}
	s := newTestConversationService(db, &fakeChatLLM{reply: "ok"})

	_, err := s.Turn(context.Background(), "user-1", "sess-1", "hi", "", nil)
	require.Error(t, err)
	assert.Empty(t, db.messages["sess-1"])
}

func TestSessionMessages_OwnershipChecked(t *testing.T) {
	db := newFakeChatDB()
	db.sessions["sess-1"] = &models.ChatSession{ID: "sess-1", UserID: "user-1"}
	db.messages["sess-1"] = []models.ChatMessage{{SessionID: "sess-1", Role: models.RoleUser, Content: "hi"}}
	s := newTestConversationService(db, &fakeChatLLM{})

	msgs, err := s.SessionMessages(context.Background(), "user-1", "sess-1")
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	_, err = s.SessionMessages(context.Background(), "intruder", "sess-1")
	require.Error(t, err)
}
