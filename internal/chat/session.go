// Package chat holds one in-memory conversation with the movie assistant.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/filmora/internal/domain"
)

// DefaultHistory is how many trailing turns are sent with each prompt.
const DefaultHistory = 10

// ErrNothingToRetry is returned by Retry when the last turn already has a reply.
var ErrNothingToRetry = errors.New("no unanswered message to retry")

// Observer is notified on the caller's goroutine whenever the transcript
// grows or a reply fails.
type Observer interface {
	OnTurns(turns []domain.ChatTurn)
	OnChatError(err error)
}

// Session is a single conversation. It is not persisted.
type Session struct {
	client   domain.ChatClient
	observer Observer
	logger   *slog.Logger
	history  int

	now func() time.Time

	mu    sync.Mutex
	turns []domain.ChatTurn
}

// NewSession creates an empty conversation. history <= 0 uses DefaultHistory
// and larger values are capped at it; observer may be nil.
func NewSession(client domain.ChatClient, history int, observer Observer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if history <= 0 || history > DefaultHistory {
		history = DefaultHistory
	}
	return &Session{
		client:   client,
		observer: observer,
		logger:   logger,
		history:  history,
		now:      time.Now,
	}
}

// Send appends the user's message, notifies the observer, then asks the
// model for a reply using the last turns (including this one). On success
// the reply is appended and returned; on failure nothing more is appended.
func (s *Session) Send(ctx context.Context, text string) (domain.ChatTurn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ChatTurn{}, domain.ErrInvalidRequest
	}

	s.mu.Lock()
	s.turns = append(s.turns, s.newTurn(text, true))
	window := s.windowLocked(len(s.turns))
	snapshot := slices.Clone(s.turns)
	s.mu.Unlock()

	s.notifyTurns(snapshot)
	return s.reply(ctx, window)
}

// Retry asks again for a reply to the last user message when the previous
// attempt failed. The user message is not duplicated.
func (s *Session) Retry(ctx context.Context) (domain.ChatTurn, error) {
	s.mu.Lock()
	n := len(s.turns)
	if n == 0 || !s.turns[n-1].FromUser {
		s.mu.Unlock()
		return domain.ChatTurn{}, ErrNothingToRetry
	}
	window := s.windowLocked(n)
	s.mu.Unlock()

	return s.reply(ctx, window)
}

func (s *Session) reply(ctx context.Context, window []domain.ChatTurn) (domain.ChatTurn, error) {
	text, err := s.client.Reply(ctx, window)
	if err != nil {
		s.logger.Error("failed to get chat reply", "error", err, "turns", len(window))
		if s.observer != nil {
			s.observer.OnChatError(err)
		}
		return domain.ChatTurn{}, err
	}

	turn := s.newTurn(strings.TrimSpace(text), false)

	s.mu.Lock()
	s.turns = append(s.turns, turn)
	snapshot := slices.Clone(s.turns)
	s.mu.Unlock()

	s.notifyTurns(snapshot)
	return turn, nil
}

// Turns returns a copy of the transcript, oldest first.
func (s *Session) Turns() []domain.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.turns)
}

// Reset clears the transcript.
func (s *Session) Reset() {
	s.mu.Lock()
	s.turns = nil
	s.mu.Unlock()
	s.notifyTurns(nil)
}

// windowLocked returns the last s.history turns of the first end turns.
func (s *Session) windowLocked(end int) []domain.ChatTurn {
	start := max(0, end-s.history)
	return slices.Clone(s.turns[start:end])
}

func (s *Session) newTurn(text string, fromUser bool) domain.ChatTurn {
	return domain.ChatTurn{
		ID:       uuid.NewString(),
		Text:     text,
		FromUser: fromUser,
		SentAt:   s.now(),
	}
}

func (s *Session) notifyTurns(turns []domain.ChatTurn) {
	if s.observer != nil {
		s.observer.OnTurns(turns)
	}
}
