package agent

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/chatmodel"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/mcpclient"
)

// Phase tracks which part of the graph currently owns the context.
type Phase string

const (
	PhaseRouting    Phase = "routing"
	PhasePlanning   Phase = "planning"
	PhaseExecuting  Phase = "executing"
	PhaseAnalyzing  Phase = "analyzing"
	PhaseResponding Phase = "responding"
)

// ToolCallStatus is the lifecycle state of a single tool call.
type ToolCallStatus string

const (
	StatusPending   ToolCallStatus = "pending"
	StatusExecuting ToolCallStatus = "executing"
	StatusCompleted ToolCallStatus = "completed"
	StatusFailed    ToolCallStatus = "failed"
)

// ToolCall is a single planned tool invocation. A call lives in exactly one
// of the pending/completed lists; it moves from pending to completed when it
// finishes, and back only through the explicit retry rule.
type ToolCall struct {
	ID        string          `json:"id,omitempty"`
	ToolName  string          `json:"tool_name" validate:"required"`
	Arguments map[string]any  `json:"arguments"`
	Status    ToolCallStatus  `json:"status,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// PlannedToolCalls is the structured output contract for the planner.
type PlannedToolCalls struct {
	ToolCalls []*ToolCall `json:"tool_calls" jsonschema:"description=A list of specific tool calls to be executed."`
}

// ConversationContext is the mutable record threaded through the graph.
// It is owned exclusively by one run and must not be shared across runs.
type ConversationContext struct {
	ConversationID string
	UserMessage    string

	// AvailableTools is populated once by discovery, then read-only.
	AvailableTools []*mcpclient.ToolDescriptor

	PendingToolCalls   []*ToolCall
	CompletedToolCalls []*ToolCall

	// AccumulatedEvidence holds one line per tool outcome, in the order
	// the calls left the pending list.
	AccumulatedEvidence []string

	LastError string

	// DiscoveredSchema is the payload surfaced by a schema-discovery tool
	// call, consumed by the planner on the next iteration.
	DiscoveredSchema json.RawMessage

	finalPreparedContext string

	Phase     Phase
	CreatedAt time.Time
}

// NewConversationContext creates the context for one chat turn.
func NewConversationContext(conversationID, userMessage string) *ConversationContext {
	return &ConversationContext{
		ConversationID: conversationID,
		UserMessage:    userMessage,
		Phase:          PhaseRouting,
		CreatedAt:      time.Now(),
	}
}

// NewToolCall creates a pending call with a generated id.
func NewToolCall(toolName string, arguments map[string]any) *ToolCall {
	return &ToolCall{
		ID:        uuid.NewString(),
		ToolName:  toolName,
		Arguments: arguments,
		Status:    StatusPending,
	}
}

// AddEvidence appends a line to the accumulated evidence.
func (c *ConversationContext) AddEvidence(line string) {
	c.AccumulatedEvidence = append(c.AccumulatedEvidence, line)
}

// CompleteToolCall marks a pending call as completed, moves it to the
// completed list and records its evidence line. Unknown ids are ignored.
func (c *ConversationContext) CompleteToolCall(callID string, result json.RawMessage) {
	call := c.removePending(callID)
	if call == nil {
		return
	}
	call.Status = StatusCompleted
	call.Result = result
	c.CompletedToolCalls = append(c.CompletedToolCalls, call)
	c.AddEvidence("Tool '" + call.ToolName + "' result: " + chatmodel.Stringify(result))
}

// FailToolCall marks a pending call as failed, moves it to the completed
// list, records the failure evidence and updates the last error.
func (c *ConversationContext) FailToolCall(callID string, errMsg string) {
	call := c.removePending(callID)
	if call == nil {
		return
	}
	call.Status = StatusFailed
	call.Error = errMsg
	c.CompletedToolCalls = append(c.CompletedToolCalls, call)
	c.LastError = errMsg
	c.AddEvidence("Tool '" + call.ToolName + "' failed with error: " + errMsg)
}

func (c *ConversationContext) removePending(callID string) *ToolCall {
	for i, call := range c.PendingToolCalls {
		if call.ID == callID {
			c.PendingToolCalls = append(c.PendingToolCalls[:i], c.PendingToolCalls[i+1:]...)
			return call
		}
	}
	return nil
}

// RetryFailedCalls resets every failed call to pending with its error
// cleared and moves it back to the pending list. Returns the calls that
// were moved.
func (c *ConversationContext) RetryFailedCalls() []*ToolCall {
	var kept, moved []*ToolCall
	for _, call := range c.CompletedToolCalls {
		if call.Status != StatusFailed {
			kept = append(kept, call)
			continue
		}
		call.Status = StatusPending
		call.Error = ""
		c.PendingToolCalls = append(c.PendingToolCalls, call)
		moved = append(moved, call)
	}
	c.CompletedToolCalls = kept
	return moved
}

// ClearToolHistory drops completed calls. Replanning is additive by
// default; callers clear history explicitly when they want a fresh slate.
func (c *ConversationContext) ClearToolHistory() {
	c.CompletedToolCalls = nil
}

// SetFinalContext writes the prepared context. It may be written at most
// once per run.
func (c *ConversationContext) SetFinalContext(prepared string) error {
	if c.finalPreparedContext != "" {
		return errors.New("final context already set")
	}
	c.finalPreparedContext = prepared
	return nil
}

// FinalPreparedContext returns the context prepared by the terminal node,
// or empty if the run has not reached it.
func (c *ConversationContext) FinalPreparedContext() string {
	return c.finalPreparedContext
}
