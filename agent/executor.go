package agent

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"github.com/effective-security/xlog"
	"github.com/tidwall/gjson"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/mcpclient"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/metricskey"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/schema"
)

// SchemaDiscoveryTool is the tool whose successful result is captured as
// the discovered schema for the next planning pass.
const SchemaDiscoveryTool = "discover_schema"

// Executor runs the pending tool calls in order over one provider session.
// Per-call failures are recorded as data and never abort the batch.
type Executor struct {
	mcp      mcpclient.Factory
	callback Callback
}

func NewExecutor(mcp mcpclient.Factory, callback Callback) *Executor {
	return &Executor{mcp: mcp, callback: callback}
}

func (n *Executor) Kind() NodeKind {
	return NodeExecutor
}

func (n *Executor) Run(ctx context.Context, cc *ConversationContext) (NodeKind, error) {
	cc.Phase = PhaseExecuting

	// Snapshot so calls added during this pass are not executed in the
	// same batch. An empty batch makes no network calls.
	batch := slices.Clone(cc.PendingToolCalls)
	if len(batch) == 0 {
		return NodeAnalyzer, nil
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "executing_tools",
		"conversation", cc.ConversationID,
		"count", len(batch))

	schemas := make(map[string]json.RawMessage, len(cc.AvailableTools))
	for _, tool := range cc.AvailableTools {
		schemas[tool.Name] = tool.InputSchema
	}

	client := n.mcp()
	defer client.Close()

	for _, call := range batch {
		call.Status = StatusExecuting
		n.callback.OnToolCallStart(ctx, cc, call)

		arguments := call.Arguments
		if schema.ExpectsArgsWrapper(schemas[call.ToolName]) {
			arguments = schema.WrapArguments(arguments)
		}

		started := time.Now()
		result, err := client.CallTool(ctx, call.ID, call.ToolName, arguments)
		metricskey.PerfToolCall.MeasureSince(started, call.ToolName)

		if err != nil {
			metricskey.StatsToolCallsFailed.IncrCounter(1, call.ToolName)
			logger.ContextKV(ctx, xlog.ERROR,
				"reason", "tool_execution_failed",
				"tool", call.ToolName,
				"err", err.Error())
			n.callback.OnToolCallError(ctx, cc, call, err)
			cc.FailToolCall(call.ID, err.Error())
			continue
		}

		if call.ToolName == SchemaDiscoveryTool && !gjson.GetBytes(result, "isError").Bool() {
			if sc := gjson.GetBytes(result, "structuredContent"); sc.Exists() {
				cc.DiscoveredSchema = json.RawMessage(sc.Raw)
			}
		}

		metricskey.StatsToolCallsSucceeded.IncrCounter(1, call.ToolName)
		cc.CompleteToolCall(call.ID, result)
		n.callback.OnToolCallEnd(ctx, cc, call)
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "batch_completed",
		"conversation", cc.ConversationID,
		"completed", len(batch),
		"remaining", len(cc.PendingToolCalls))
	return NodeAnalyzer, nil
}
