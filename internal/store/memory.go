// Package store persists conversations and their messages. The memory backend
// is the default; the postgres backend survives restarts.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pkdindustries/scry/internal/core"
)

// ErrConversationNotFound reports an operation against an unknown
// conversation id
var ErrConversationNotFound = errors.New("conversation not found")

// MemoryStore keeps conversations in process memory
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]core.Conversation
	messages      map[string][]core.StoredMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]core.Conversation),
		messages:      make(map[string][]core.StoredMessage),
	}
}

var _ core.ChatStore = (*MemoryStore)(nil)

func (s *MemoryStore) Create(_ context.Context, title string) (core.Conversation, error) {
	conv := core.Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.conversations[conv.ID] = conv
	s.mu.Unlock()
	return conv, nil
}

func (s *MemoryStore) Append(_ context.Context, conversationID, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[conversationID]; !ok {
		return ErrConversationNotFound
	}
	s.messages[conversationID] = append(s.messages[conversationID], core.StoredMessage{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now(),
	})
	return nil
}

// List returns conversations newest first
func (s *MemoryStore) List(_ context.Context) ([]core.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		out = append(out, conv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Rename(_ context.Context, conversationID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[conversationID]
	if !ok {
		return ErrConversationNotFound
	}
	conv.Title = title
	s.conversations[conversationID] = conv
	return nil
}

// Messages returns a conversation's messages in append order
func (s *MemoryStore) Messages(_ context.Context, conversationID string) ([]core.StoredMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.conversations[conversationID]; !ok {
		return nil, ErrConversationNotFound
	}
	msgs := s.messages[conversationID]
	out := make([]core.StoredMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}
