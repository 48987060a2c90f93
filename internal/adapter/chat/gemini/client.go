package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mmcdole/filmora/internal/domain"
	"google.golang.org/api/option"
)

const (
	DefaultModel      = "gemini-1.5-flash"
	DefaultMaxHistory = 10

	roleUser  = "user"
	roleModel = "model"
)

// DefaultSystemInstruction is the assistant persona sent with every request.
const DefaultSystemInstruction = `You are Filmora, a friendly AI chatbot specialized in movies.
You love movies and help both movie lovers and those who rarely watch movies.
You provide detailed, helpful, and warm responses about movies, recommendations, trivia, and general film discussions.
Keep conversations engaging, polite, and empathetic.
Remember the context of last messages to maintain smooth dialogue.
Always respond in plain text without using any formatting such as *, **, _, or markdown.
Please keep your answers brief.
Everything, especially movie titles, should be in the speaker's language.`

// Options configures a Client
type Options struct {
	APIKey            string
	Model             string
	SystemInstruction string
	MaxHistory        int
}

// Client implements domain.ChatClient on the Gemini API
type Client struct {
	client     *genai.Client
	model      *genai.GenerativeModel
	maxHistory int
	logger     *slog.Logger
}

var _ domain.ChatClient = (*Client)(nil)

// NewClient creates a Gemini client. Close releases its connection.
func NewClient(ctx context.Context, opts Options, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key not set", domain.ErrInvalidRequest)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}

	name := opts.Model
	if name == "" {
		name = DefaultModel
	}
	instruction := opts.SystemInstruction
	if instruction == "" {
		instruction = DefaultSystemInstruction
	}
	maxHistory := opts.MaxHistory
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}

	model := client.GenerativeModel(name)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(instruction)}}

	return &Client{
		client:     client,
		model:      model,
		maxHistory: maxHistory,
		logger:     logger,
	}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Reply sends the trailing turns of a conversation and returns the model's
// answer, trimmed. The last turn must be from the user.
func (c *Client) Reply(ctx context.Context, turns []domain.ChatTurn) (string, error) {
	history, prompt, err := buildConversation(turns, c.maxHistory)
	if err != nil {
		return "", err
	}

	cs := c.model.StartChat()
	cs.History = history

	c.logger.Debug("gemini request", "historyTurns", len(history), "promptParts", len(prompt))

	resp, err := cs.SendMessage(ctx, prompt...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		c.logger.Error("gemini request failed", "error", err)
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return replyText(resp)
}

// buildConversation keeps the last maxHistory turns and converts them to
// Gemini contents, dropping leading assistant turns. Adjacent turns from the
// same side are merged into one content since roles must alternate. The
// final user content is returned separately as the prompt.
func buildConversation(turns []domain.ChatTurn, maxHistory int) ([]*genai.Content, []genai.Part, error) {
	if maxHistory > 0 && len(turns) > maxHistory {
		turns = turns[len(turns)-maxHistory:]
	}
	// the conversation sent must open with a user turn
	for len(turns) > 0 && !turns[0].FromUser {
		turns = turns[1:]
	}
	if len(turns) == 0 || !turns[len(turns)-1].FromUser {
		return nil, nil, fmt.Errorf("%w: conversation must end with a user message", domain.ErrInvalidRequest)
	}

	var contents []*genai.Content
	for _, t := range turns {
		role := roleModel
		if t.FromUser {
			role = roleUser
		}
		part := genai.Text(t.Text)
		if n := len(contents); n > 0 && contents[n-1].Role == role {
			contents[n-1].Parts = append(contents[n-1].Parts, part)
			continue
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []genai.Part{part}})
	}

	last := contents[len(contents)-1]
	return contents[:len(contents)-1], last.Parts, nil
}

// replyText extracts the first candidate's first part, which must be text
func replyText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", domain.ErrInvalidResponse)
	}
	cand := resp.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty content", domain.ErrInvalidResponse)
	}
	txt, ok := cand.Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("%w: first part is not text", domain.ErrInvalidResponse)
	}
	return strings.TrimSpace(string(txt)), nil
}
