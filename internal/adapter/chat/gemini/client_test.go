package gemini

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/mmcdole/filmora/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func turn(text string, fromUser bool) domain.ChatTurn {
	return domain.ChatTurn{Text: text, FromUser: fromUser}
}

func TestBuildConversationRoles(t *testing.T) {
	history, prompt, err := buildConversation([]domain.ChatTurn{
		turn("hi", true),
		turn("hello!", false),
		turn("recommend a thriller", true),
	}, DefaultMaxHistory)
	require.NoError(t, err)

	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "model", history[1].Role)
	assert.Equal(t, []genai.Part{genai.Text("hello!")}, history[1].Parts)
	assert.Equal(t, []genai.Part{genai.Text("recommend a thriller")}, prompt)
}

func TestBuildConversationMergesAdjacentUserTurns(t *testing.T) {
	// a failed reply leaves two user turns in a row
	history, prompt, err := buildConversation([]domain.ChatTurn{
		turn("first", true),
		turn("second", true),
	}, DefaultMaxHistory)
	require.NoError(t, err)

	assert.Empty(t, history)
	assert.Equal(t, []genai.Part{genai.Text("first"), genai.Text("second")}, prompt)
}

func TestBuildConversationWindow(t *testing.T) {
	var turns []domain.ChatTurn
	for i := 0; i < 15; i++ {
		turns = append(turns, turn(fmt.Sprintf("t%d", i), i%2 == 0))
	}

	history, prompt, err := buildConversation(turns, 4)
	require.NoError(t, err)
	// t11 is an assistant turn and cannot open the conversation
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, []genai.Part{genai.Text("t12")}, history[0].Parts)
	assert.Equal(t, []genai.Part{genai.Text("t14")}, prompt)
}

func TestBuildConversationRequiresUserLast(t *testing.T) {
	_, _, err := buildConversation(nil, DefaultMaxHistory)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, _, err = buildConversation([]domain.ChatTurn{turn("hi", true), turn("yo", false)}, DefaultMaxHistory)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestReplyText(t *testing.T) {
	got, err := replyText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("  Watch Heat.\n")}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Watch Heat.", got)
}

func TestReplyTextInvalid(t *testing.T) {
	cases := map[string]*genai.GenerateContentResponse{
		"nil response":  nil,
		"no candidates": {},
		"nil content":   {Candidates: []*genai.Candidate{{}}},
		"no parts":      {Candidates: []*genai.Candidate{{Content: &genai.Content{}}}},
		"non-text part": {Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}},
		}}},
	}
	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := replyText(resp)
			assert.ErrorIs(t, err, domain.ErrInvalidResponse)
		})
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), Options{}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}
