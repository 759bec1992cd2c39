package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/obinna-dev/drivesage/internal/core"
	"github.com/obinna-dev/drivesage/internal/models"
)

var _ core.LLMProvider = (*GeminiLLM)(nil)

type GeminiLLM struct {
	client    *genai.Client
	modelName string
}

func NewGeminiLLM(ctx context.Context, apiKey, modelName string) (*GeminiLLM, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiLLM{client: cl, modelName: modelName}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Complete sends an ordered message sequence to Gemini. A leading
// system-role message becomes the system instruction; any system-role
// message later in the sequence (injected document context) is carried
// as user content since Gemini only supports user/model turns.
func (g *GeminiLLM) Complete(ctx context.Context, msgs []core.Message, maxTokens int32, temperature float32) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	m.SetMaxOutputTokens(maxTokens)
	m.SetTemperature(temperature)

	if len(msgs) > 0 && msgs[0].Role == models.RoleSystem {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(msgs[0].Content)},
		}
		msgs = msgs[1:]
	}
	if len(msgs) == 0 {
		return "", errors.New("gemini: no messages to send")
	}

	last := msgs[len(msgs)-1]
	cs := m.StartChat()
	for _, msg := range msgs[:len(msgs)-1] {
		role := "user"
		if msg.Role == models.RoleAssistant {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", core.WrapGoogleError(err))
	}
	return responseText(resp)
}

// responseText flattens the first candidate's text parts. Gemini may
// return zero candidates or a text-free candidate (safety blocks);
// callers must see that as a typed failure, never as an empty string
// they might cache.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: %w", core.ErrEmptyCompletion)
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("gemini: %w", core.ErrEmptyCompletion)
	}
	return b.String(), nil
}
