package agent

import (
	"context"

	"github.com/effective-security/xlog"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/gateway"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/mcpclient"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/prompts"
)

// Router decides whether the query needs tools at all. It also performs
// one-time tool discovery when the catalog is empty.
type Router struct {
	gw  gateway.Gateway
	mcp mcpclient.Factory
}

func NewRouter(gw gateway.Gateway, mcp mcpclient.Factory) *Router {
	return &Router{gw: gw, mcp: mcp}
}

func (n *Router) Kind() NodeKind {
	return NodeRouter
}

func (n *Router) Run(ctx context.Context, cc *ConversationContext) (NodeKind, error) {
	cc.Phase = PhaseRouting
	logger.ContextKV(ctx, xlog.DEBUG, "status", "routing_query", "conversation", cc.ConversationID)

	if len(cc.AvailableTools) == 0 {
		client := n.mcp()
		defer client.Close()

		tools, err := client.ListTools(ctx)
		if err != nil {
			return "", err
		}
		cc.AvailableTools = tools
		logger.ContextKV(ctx, xlog.DEBUG, "status", "tools_discovered", "count", len(tools))
	}

	names := make([]string, len(cc.AvailableTools))
	for i, tool := range cc.AvailableTools {
		names[i] = tool.Name
	}

	prompt, err := prompts.Router(prompts.RouterInput{
		Query:     cc.UserMessage,
		ToolNames: names,
	})
	if err != nil {
		return "", err
	}

	decision, err := n.gw.Decide(ctx, prompts.RouterSystem, prompt)
	if err != nil {
		return "", err
	}

	if decision == DecisionResponder {
		logger.ContextKV(ctx, xlog.DEBUG, "status", "routing_direct", "conversation", cc.ConversationID)
		return NodeResponder, nil
	}

	// Anything else means tool use; PLANNER is the safer default.
	logger.ContextKV(ctx, xlog.DEBUG, "status", "routing_to_planner", "conversation", cc.ConversationID)
	return NodePlanner, nil
}
