// Package store persists conversation history. Stores resolve the
// conversation from the request context, not from a parameter.
package store

import (
	"context"
	"time"

	"github.com/effective-security/xlog"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/llms"
)

var logger = xlog.NewPackageLogger("github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client", "store")

// Message is one persisted conversation entry.
type Message struct {
	Role      llms.Role `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationInfo is the metadata kept per conversation, without messages.
type ConversationInfo struct {
	ConversationID string         `json:"conversation_id"`
	Title          string         `json:"title"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// MessageStore persists and retrieves conversation history. The
// conversation ID is taken from the context, see chatmodel.GetConversationID.
type MessageStore interface {
	Messages(ctx context.Context) []Message
	Add(ctx context.Context, msg Message) error
	Reset(ctx context.Context) error

	// UpdateConversation creates or updates the conversation metadata.
	// Empty title and nil metadata leave the existing values in place.
	UpdateConversation(ctx context.Context, title string, metadata map[string]any) error
	ListConversations(ctx context.Context) ([]string, error)
}
