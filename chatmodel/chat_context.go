package chatmodel

import (
	"context"
	"strconv"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xdb/pkg/flake"
)

// ErrInvalidChatContext is returned when the context does not carry a ChatContext.
var ErrInvalidChatContext = errors.New("invalid chat context")

// ChatContext carries the identity of a single conversation turn.
// It is stored in context.Context so that logging, metrics and storage
// can resolve the conversation without ambient global state.
type ChatContext interface {
	GetConversationID() string
	// GetMetadata retrieves metadata by key
	GetMetadata(key string) (value any, ok bool)
	// SetMetadata sets metadata by key
	SetMetadata(key string, value any)
}

type chatContext struct {
	conversationID string
	metadata       sync.Map
}

func (c *chatContext) GetConversationID() string {
	return c.conversationID
}

func (c *chatContext) GetMetadata(key string) (value any, ok bool) {
	return c.metadata.Load(key)
}

func (c *chatContext) SetMetadata(key string, value any) {
	c.metadata.Store(key, value)
}

// NewChatContext creates a ChatContext for the given conversation.
// An empty conversationID gets a generated flake ID.
func NewChatContext(conversationID string) ChatContext {
	return &chatContext{
		conversationID: values.StringsCoalesce(conversationID, NewConversationID()),
	}
}

type contextKey int

const (
	keyContext contextKey = iota
)

// WithChatContext returns a new context with ChatContext value
func WithChatContext(ctx context.Context, chatCtx ChatContext) context.Context {
	return context.WithValue(ctx, keyContext, chatCtx)
}

// GetChatContext retrieves the ChatContext from the context,
// or nil if not present.
func GetChatContext(ctx context.Context) ChatContext {
	if v, ok := ctx.Value(keyContext).(ChatContext); ok {
		return v
	}
	return nil
}

// GetConversationID retrieves the conversation ID from the provided context.
func GetConversationID(ctx context.Context) (string, error) {
	v, ok := ctx.Value(keyContext).(ChatContext)
	if !ok {
		return "", errors.WithStack(ErrInvalidChatContext)
	}
	return v.GetConversationID(), nil
}

// SetConversationID ensures the context carries a ChatContext with the given ID.
func SetConversationID(ctx context.Context, conversationID string) context.Context {
	if cc := GetChatContext(ctx); cc != nil && cc.GetConversationID() == conversationID {
		return ctx
	}
	return WithChatContext(ctx, NewChatContext(conversationID))
}

// NewConversationID generates a new conversation ID using the flake ID generator.
func NewConversationID() string {
	return strconv.FormatUint(flake.DefaultIDGenerator.NextID(), 10)
}
