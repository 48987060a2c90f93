package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/mmcdole/filmora/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu      sync.Mutex
	prompts [][]domain.ChatTurn
	reply   string
	err     error
}

func (f *fakeClient) Reply(_ context.Context, turns []domain.ChatTurn) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, turns)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type recorder struct {
	turnCounts []int
	errs       []error
}

func (r *recorder) OnTurns(turns []domain.ChatTurn) { r.turnCounts = append(r.turnCounts, len(turns)) }
func (r *recorder) OnChatError(err error)           { r.errs = append(r.errs, err) }

func TestSendAppendsUserThenReply(t *testing.T) {
	client := &fakeClient{reply: "  Try Heat (1995).\n"}
	rec := &recorder{}
	s := NewSession(client, 0, rec, nil)

	turn, err := s.Send(context.Background(), "recommend a heist movie")
	require.NoError(t, err)
	assert.Equal(t, "Try Heat (1995).", turn.Text)
	assert.False(t, turn.FromUser)
	assert.NotEmpty(t, turn.ID)

	turns := s.Turns()
	require.Len(t, turns, 2)
	assert.True(t, turns[0].FromUser)
	assert.NotEqual(t, turns[0].ID, turns[1].ID)

	// user turn is visible before the reply arrives
	assert.Equal(t, []int{1, 2}, rec.turnCounts)
	require.Len(t, client.prompts, 1)
	assert.Len(t, client.prompts[0], 1)
}

func TestSendFailureAppendsNothing(t *testing.T) {
	boom := errors.New("quota")
	client := &fakeClient{err: boom}
	rec := &recorder{}
	s := NewSession(client, 0, rec, nil)

	_, err := s.Send(context.Background(), "hello")
	assert.ErrorIs(t, err, boom)
	assert.Len(t, s.Turns(), 1, "only the user turn")
	require.Len(t, rec.errs, 1)

	client.err = nil
	client.reply = "hi"
	turn, err := s.Retry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hi", turn.Text)
	assert.Len(t, s.Turns(), 2, "retry does not duplicate the user turn")

	_, err = s.Retry(context.Background())
	assert.ErrorIs(t, err, ErrNothingToRetry)
}

func TestPromptWindow(t *testing.T) {
	client := &fakeClient{reply: "ok"}
	s := NewSession(client, 0, nil, nil)

	for i := 0; i < 7; i++ {
		_, err := s.Send(context.Background(), fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}

	// 6 completed exchanges + the new user turn = 13 turns; only 10 are sent
	last := client.prompts[len(client.prompts)-1]
	require.Len(t, last, DefaultHistory)
	assert.Equal(t, "msg 6", last[len(last)-1].Text)
	assert.True(t, last[len(last)-1].FromUser)
	assert.Equal(t, "ok", last[0].Text, "window starts mid-conversation")
}

func TestPromptWindowIsCapped(t *testing.T) {
	client := &fakeClient{reply: "ok"}
	s := NewSession(client, 50, nil, nil)

	for i := 0; i < 30; i++ {
		_, err := s.Send(context.Background(), fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}

	last := client.prompts[len(client.prompts)-1]
	assert.Len(t, last, DefaultHistory)
	assert.Equal(t, "msg 29", last[len(last)-1].Text)
}

func TestSendRejectsEmpty(t *testing.T) {
	client := &fakeClient{}
	s := NewSession(client, 0, nil, nil)

	_, err := s.Send(context.Background(), "  \n")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Empty(t, s.Turns())
	assert.Empty(t, client.prompts)
}

func TestReset(t *testing.T) {
	s := NewSession(&fakeClient{reply: "x"}, 3, nil, nil)
	_, err := s.Send(context.Background(), "a")
	require.NoError(t, err)
	s.Reset()
	assert.Empty(t, s.Turns())
}
