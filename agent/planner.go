package agent

import (
	"context"

	"github.com/effective-security/xlog"
	"github.com/google/uuid"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/gateway"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/prompts"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/schema"
)

// Planner asks the model for the complete sequence of tool calls needed to
// fulfill the request. Replanning is additive: new calls are appended to
// the pending list without clearing history.
type Planner struct {
	gw gateway.Gateway
}

func NewPlanner(gw gateway.Gateway) *Planner {
	return &Planner{gw: gw}
}

func (n *Planner) Kind() NodeKind {
	return NodePlanner
}

func (n *Planner) Run(ctx context.Context, cc *ConversationContext) (NodeKind, error) {
	cc.Phase = PhasePlanning
	logger.ContextKV(ctx, xlog.DEBUG, "status", "creating_plan", "conversation", cc.ConversationID)

	catalog := make([]prompts.CatalogTool, len(cc.AvailableTools))
	for i, tool := range cc.AvailableTools {
		catalog[i] = prompts.CatalogTool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: schema.FlattenForPrompt(tool.InputSchema),
		}
	}

	prompt, err := prompts.Planner(prompts.PlannerInput{
		Query:            cc.UserMessage,
		Tools:            catalog,
		DiscoveredSchema: string(cc.DiscoveredSchema),
		LastError:        cc.LastError,
	})
	if err != nil {
		return "", err
	}

	planned, err := gateway.GenerateTyped[PlannedToolCalls](ctx, n.gw, prompts.PlannerSystem, prompt)
	if err != nil {
		return "", err
	}

	if len(planned.ToolCalls) == 0 {
		logger.ContextKV(ctx, xlog.DEBUG, "status", "no_tools_needed", "conversation", cc.ConversationID)
		return NodeResponder, nil
	}

	for _, call := range planned.ToolCalls {
		if call.ID == "" {
			call.ID = uuid.NewString()
		}
		call.Status = StatusPending
	}
	cc.PendingToolCalls = append(cc.PendingToolCalls, planned.ToolCalls...)

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "plan_created",
		"conversation", cc.ConversationID,
		"tool_calls", len(planned.ToolCalls))
	return NodeExecutor, nil
}
