package agent

import "context"

// Callback receives cross-cutting events from the orchestrator and the
// executor. Timing and logging wrappers compose through this interface
// instead of being baked into the nodes.
type Callback interface {
	OnNodeStart(ctx context.Context, cc *ConversationContext, kind NodeKind)
	OnNodeEnd(ctx context.Context, cc *ConversationContext, kind NodeKind, next NodeKind, err error)
	OnToolCallStart(ctx context.Context, cc *ConversationContext, call *ToolCall)
	OnToolCallEnd(ctx context.Context, cc *ConversationContext, call *ToolCall)
	OnToolCallError(ctx context.Context, cc *ConversationContext, call *ToolCall, err error)
	OnRunEnd(ctx context.Context, cc *ConversationContext, err error)
}
