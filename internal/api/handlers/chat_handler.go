package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/obinna-dev/drivesage/internal/services"
)

type ChatHandler struct {
	conversations *services.ConversationService
}

func NewChatHandler(conversations *services.ConversationService) *ChatHandler {
	return &ChatHandler{conversations: conversations}
}

type chatRequest struct {
	SessionID   string   `json:"session_id,omitempty"`
	Message     string   `json:"message"`
	Context     string   `json:"context,omitempty"`
	DocumentIDs []string `json:"document_ids,omitempty"`
}

// SendMessage runs one conversational turn and returns the assistant reply.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := ctx.Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", 400)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", 400)
		return
	}

	reply, err := h.conversations.Turn(ctx, userID, req.SessionID, req.Message, req.Context, req.DocumentIDs)
	if err != nil {
		http.Error(w, "failed to process message", 500)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"session_id": reply.SessionID,
		"message_id": reply.ID,
		"role":       reply.Role,
		"content":    reply.Content,
		"created_at": reply.CreatedAt,
	})
}

// GetSessions lists the user's chat sessions.
func (h *ChatHandler) GetSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := ctx.Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	sessions, err := h.conversations.Sessions(ctx, userID)
	if err != nil {
		http.Error(w, "failed to load sessions", 500)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// GetSessionMessages returns the stored turns of one session.
func (h *ChatHandler) GetSessionMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := ctx.Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID := chi.URLParam(r, "session_id")
	messages, err := h.conversations.SessionMessages(ctx, userID, sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"messages": messages,
		"count":    len(messages),
	})
}
