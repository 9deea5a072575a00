package store

import (
	"context"
	"encoding/json"
	"path"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/redis/go-redis/v9"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/chatmodel"
)

// keepMessages bounds the history kept per conversation.
const keepMessages = 50

// The redis store implements the MessageStore interface using Redis as the
// backend. The keys namespace is organized as follows:
// - `/<prefix>/chatstore/messages/<conversationID>` for the message list
// - `/<prefix>/chatstore/info/<conversationID>` for conversation metadata
// - `/<prefix>/chatstore/conversations` for the set of known conversation IDs

type redisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) MessageStore {
	return &redisStore{
		client: client,
		prefix: prefix,
	}
}

func (m *redisStore) messagesKey(conversationID string) string {
	return path.Join(m.prefix, "chatstore", "messages", conversationID)
}

func (m *redisStore) infoKey(conversationID string) string {
	return path.Join(m.prefix, "chatstore", "info", conversationID)
}

func (m *redisStore) listKey() string {
	return path.Join(m.prefix, "chatstore", "conversations")
}

func (m *redisStore) Messages(ctx context.Context) []Message {
	conversationID, err := chatmodel.GetConversationID(ctx)
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "reason", "GetConversationID", "err", err.Error())
		return nil
	}

	data, err := m.client.LRange(ctx, m.messagesKey(conversationID), 0, -1).Result()
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "reason", "LRange", "err", err.Error())
		return nil
	}

	var messages []Message
	for _, item := range data {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			logger.ContextKV(ctx, xlog.ERROR, "reason", "unmarshal message", "err", err.Error())
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}

func (m *redisStore) Add(ctx context.Context, msg Message) error {
	conversationID, err := chatmodel.GetConversationID(ctx)
	if err != nil {
		return err
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal message")
	}

	key := m.messagesKey(conversationID)
	pipe := m.client.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -keepMessages, -1)
	_, err = pipe.Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to store message in Redis")
	}

	// Update the time
	return m.UpdateConversation(ctx, "", nil)
}

func (m *redisStore) Reset(ctx context.Context) error {
	conversationID, err := chatmodel.GetConversationID(ctx)
	if err != nil {
		return err
	}

	pipe := m.client.Pipeline()
	pipe.Del(ctx, m.messagesKey(conversationID))
	pipe.Del(ctx, m.infoKey(conversationID))
	pipe.SRem(ctx, m.listKey(), conversationID)
	_, err = pipe.Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to reset conversation in Redis")
	}

	return nil
}

func (m *redisStore) UpdateConversation(ctx context.Context, title string, metadata map[string]any) error {
	conversationID, err := chatmodel.GetConversationID(ctx)
	if err != nil {
		return err
	}

	info, err := m.getInfo(ctx, conversationID)
	if err != nil {
		return errors.Wrap(err, "failed to get conversation info")
	}

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
	info.UpdatedAt = time.Now()

	return m.putInfo(ctx, info, false)
}

func (m *redisStore) putInfo(ctx context.Context, info *ConversationInfo, isNew bool) error {
	data, err := json.Marshal(info)
	if err != nil {
		return errors.Wrap(err, "failed to marshal conversation info")
	}

	pipe := m.client.Pipeline()
	pipe.Set(ctx, m.infoKey(info.ConversationID), data, 0)
	if isNew {
		pipe.SAdd(ctx, m.listKey(), info.ConversationID)
	}
	_, err = pipe.Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to store conversation info in Redis")
	}

	return nil
}

func (m *redisStore) getInfo(ctx context.Context, conversationID string) (*ConversationInfo, error) {
	data, err := m.client.Get(ctx, m.infoKey(conversationID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return nil, errors.Wrap(err, "failed to get conversation info from Redis")
		}
		info := &ConversationInfo{
			ConversationID: conversationID,
			Title:          "New Conversation",
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
			Metadata:       make(map[string]any),
		}
		if err := m.putInfo(ctx, info, true); err != nil {
			return nil, errors.Wrap(err, "failed to initialize conversation info")
		}
		return info, nil
	}

	info := &ConversationInfo{}
	if err := json.Unmarshal([]byte(data), info); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal conversation info")
	}
	return info, nil
}

func (m *redisStore) ListConversations(ctx context.Context) ([]string, error) {
	ids, err := m.client.SMembers(ctx, m.listKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to list conversations from Redis")
	}
	return ids, nil
}
