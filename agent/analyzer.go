package agent

import (
	"context"

	"github.com/effective-security/xlog"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/gateway"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/metricskey"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/prompts"
)

// Analyzer inspects completed tool calls and decides whether to respond,
// re-plan, or retry the failed calls as-is.
type Analyzer struct {
	gw gateway.Gateway
}

func NewAnalyzer(gw gateway.Gateway) *Analyzer {
	return &Analyzer{gw: gw}
}

func (n *Analyzer) Kind() NodeKind {
	return NodeAnalyzer
}

func (n *Analyzer) Run(ctx context.Context, cc *ConversationContext) (NodeKind, error) {
	cc.Phase = PhaseAnalyzing
	logger.ContextKV(ctx, xlog.DEBUG, "status", "analyzing_results", "conversation", cc.ConversationID)

	completed := make([]prompts.CompletedCall, len(cc.CompletedToolCalls))
	for i, call := range cc.CompletedToolCalls {
		completed[i] = prompts.CompletedCall{
			ToolName: call.ToolName,
			Status:   string(call.Status),
			Result:   call.Result,
			Error:    call.Error,
		}
	}

	prompt, err := prompts.Analyzer(prompts.AnalyzerInput{
		Query:            cc.UserMessage,
		CompletedCalls:   completed,
		DiscoveredSchema: string(cc.DiscoveredSchema),
	})
	if err != nil {
		return "", err
	}

	decision, err := n.gw.Decide(ctx, prompts.AnalyzerSystem, prompt)
	if err != nil {
		return "", err
	}

	switch decision {
	case DecisionPlanner:
		logger.ContextKV(ctx, xlog.DEBUG, "status", "replanning", "conversation", cc.ConversationID)
		return NodePlanner, nil
	case DecisionRetry:
		moved := cc.RetryFailedCalls()
		for _, call := range moved {
			metricskey.StatsToolCallsRetried.IncrCounter(1, call.ToolName)
		}
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "retrying_failed_calls",
			"conversation", cc.ConversationID,
			"count", len(moved))
		return NodeExecutor, nil
	default:
		return NodeResponder, nil
	}
}
