package state

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrStateNotFound = errors.New("conversation state not found")
	ErrNilState      = errors.New("conversation state is nil")
	ErrInvalidUser   = errors.New("user id is empty")
)

// Store keeps at most one ConversationState per user, plus the queue of
// message ids the bot has sent to that user since the last flush. The queue
// exists purely so the transport can delete stale bot messages.
type Store interface {
	Get(ctx context.Context, userID string) (*ConversationState, error)
	Set(ctx context.Context, userID string, st *ConversationState) error
	Clear(ctx context.Context, userID string) error

	PushBotMessage(ctx context.Context, userID string, messageID int) error
	// FlushBotMessages returns the queued ids and empties the queue.
	FlushBotMessages(ctx context.Context, userID string) ([]int, error)
}

// MemoryStore is the default Store: process-local maps behind one mutex,
// serializing concurrent writes for the same user.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*ConversationState
	messages map[string][]int
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*ConversationState),
		messages: make(map[string][]int),
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, userID string) (*ConversationState, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[userID]
	if !ok {
		return nil, ErrStateNotFound
	}
	return st.Clone(), nil
}

func (m *MemoryStore) Set(_ context.Context, userID string, st *ConversationState) error {
	if userID == "" {
		return ErrInvalidUser
	}
	if st == nil {
		return ErrNilState
	}
	stored := st.Clone()
	stored.UpdatedAt = m.now().UTC()
	m.mu.Lock()
	m.sessions[userID] = stored
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidUser
	}
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) PushBotMessage(_ context.Context, userID string, messageID int) error {
	if userID == "" {
		return ErrInvalidUser
	}
	m.mu.Lock()
	m.messages[userID] = append(m.messages[userID], messageID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) FlushBotMessages(_ context.Context, userID string) ([]int, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}
	m.mu.Lock()
	ids := m.messages[userID]
	delete(m.messages, userID)
	m.mu.Unlock()
	return ids, nil
}
