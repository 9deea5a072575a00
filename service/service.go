// Package service ties the graph, the model gateway and the message store
// into the chat operation exposed to callers.
package service

import (
	"context"

	"github.com/effective-security/xlog"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/agent"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/chatmodel"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/gateway"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/llms"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/prompts"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/store"
)

var logger = xlog.NewPackageLogger("github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client", "service")

// ApologyMessage is streamed to the user when the run fails. Internal
// error details are logged, never surfaced.
const ApologyMessage = "I encountered an error processing your request. Please try again."

// StreamFunc receives response chunks as the final answer is generated.
type StreamFunc func(ctx context.Context, chunk []byte) error

// AgentService runs one chat turn: persist the user message, drive the
// graph, then stream the final answer and persist it.
type AgentService struct {
	store        store.MessageStore
	gw           gateway.Gateway
	orchestrator *agent.Orchestrator
}

func NewAgentService(st store.MessageStore, gw gateway.Gateway, orchestrator *agent.Orchestrator) *AgentService {
	return &AgentService{
		store:        st,
		gw:           gw,
		orchestrator: orchestrator,
	}
}

// Chat processes one user message for the conversation and streams the
// assistant's answer through streamFn. It returns the complete answer
// text after streaming finishes.
func (s *AgentService) Chat(ctx context.Context, conversationID, content string, streamFn StreamFunc) (string, error) {
	ctx = chatmodel.SetConversationID(ctx, conversationID)

	if err := s.store.Add(ctx, store.Message{Role: llms.RoleHuman, Content: content}); err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "reason", "store_user_message", "err", err.Error())
	}

	cc := agent.NewConversationContext(conversationID, content)
	if _, err := s.orchestrator.Run(ctx, cc); err != nil {
		logger.ContextKV(ctx, xlog.ERROR,
			"reason", "agent_run_failed",
			"conversation", conversationID,
			"err", err.Error())
		return s.finish(ctx, ApologyMessage, streamFn)
	}

	var opts []llms.CallOption
	if streamFn != nil {
		opts = append(opts, llms.WithStreamingFunc(streamFn))
	}
	answer, err := s.gw.Generate(ctx, prompts.ResponderSystem, cc.FinalPreparedContext(), opts...)
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR,
			"reason", "streaming_generation_failed",
			"conversation", conversationID,
			"err", err.Error())
		return s.finish(ctx, ApologyMessage, streamFn)
	}

	if err := s.store.Add(ctx, store.Message{Role: llms.RoleAI, Content: answer}); err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "reason", "store_assistant_message", "err", err.Error())
	}
	return answer, nil
}

// finish streams and persists the fallback message. The original failure
// was already logged by the caller.
func (s *AgentService) finish(ctx context.Context, message string, streamFn StreamFunc) (string, error) {
	if streamFn != nil {
		if err := streamFn(ctx, chatmodel.ToBytes(message)); err != nil {
			return "", err
		}
	}
	if err := s.store.Add(ctx, store.Message{Role: llms.RoleAI, Content: message}); err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "reason", "store_assistant_message", "err", err.Error())
	}
	return message, nil
}
