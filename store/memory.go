package store

import (
	"context"
	"sync"
	"time"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/chatmodel"
)

type inMemory struct {
	mu       sync.RWMutex
	messages map[string][]Message
	info     map[string]*ConversationInfo
}

// NewMemoryStore creates a process-local store, used in tests and
// single-instance deployments.
func NewMemoryStore() MessageStore {
	return &inMemory{}
}

func (m *inMemory) Messages(ctx context.Context) []Message {
	conversationID, err := chatmodel.GetConversationID(ctx)
	if err != nil {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.messages == nil {
		return nil
	}
	return m.messages[conversationID]
}

func (m *inMemory) Add(ctx context.Context, msg Message) error {
	conversationID, err := chatmodel.GetConversationID(ctx)
	if err != nil {
		return err
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.messages == nil {
		// create on first use
		m.messages = make(map[string][]Message)
	}
	m.messages[conversationID] = append(m.messages[conversationID], msg)
	m.touch(conversationID)
	return nil
}

func (m *inMemory) Reset(ctx context.Context) error {
	conversationID, err := chatmodel.GetConversationID(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.messages != nil {
		delete(m.messages, conversationID)
	}
	if m.info != nil {
		delete(m.info, conversationID)
	}
	return nil
}

func (m *inMemory) UpdateConversation(ctx context.Context, title string, metadata map[string]any) error {
	conversationID, err := chatmodel.GetConversationID(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	info := m.touch(conversationID)
	if title != "" {
		info.Title = title
	}
	if metadata != nil {
		if info.Metadata == nil {
			info.Metadata = make(map[string]any)
		}
		for k, v := range metadata {
			info.Metadata[k] = v
		}
	}
	return nil
}

func (m *inMemory) ListConversations(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.info))
	for id := range m.info {
		ids = append(ids, id)
	}
	return ids, nil
}

// touch must be called with the write lock held.
func (m *inMemory) touch(conversationID string) *ConversationInfo {
	if m.info == nil {
		m.info = make(map[string]*ConversationInfo)
	}
	info := m.info[conversationID]
	if info == nil {
		info = &ConversationInfo{
			ConversationID: conversationID,
			Title:          "New Conversation",
			CreatedAt:      time.Now(),
		}
		m.info[conversationID] = info
	}
	info.UpdatedAt = time.Now()
	return info
}
