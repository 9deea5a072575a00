// Package agent implements the conversation graph: a router, planner, tool
// executor, result analyzer and responder connected by an explicit
// transition table and driven by a trampoline loop.
package agent

import (
	"context"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/gateway"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/mcpclient"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/metricskey"
)

var logger = xlog.NewPackageLogger("github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client", "agent")

// NodeKind identifies a node in the graph.
type NodeKind string

const (
	NodeRouter    NodeKind = "router"
	NodePlanner   NodeKind = "planner"
	NodeExecutor  NodeKind = "tool_executor"
	NodeAnalyzer  NodeKind = "tool_analyzer"
	NodeResponder NodeKind = "responder"

	// NodeEnd is the terminal sentinel returned by the responder.
	NodeEnd NodeKind = "end"
)

// Single-word decisions returned by the routing and analysis calls.
const (
	DecisionResponder = "RESPONDER"
	DecisionPlanner   = "PLANNER"
	DecisionRetry     = "RETRY"
)

// ReadyForStreaming is returned by Run when the graph has prepared the
// final context and the caller should start the streaming generation.
const ReadyForStreaming = "READY_FOR_STREAMING"

// DefaultMaxCycles bounds the number of node executions per run. When the
// bound is reached the run is forced to the responder so the user always
// gets an answer from whatever evidence was gathered.
const DefaultMaxCycles = 8

// graphName tags run-level metrics. Conversation ids are unbounded and
// never used as metric tags.
const graphName = "conversation"

// Node is one executable step of the graph. Run returns the kind of the
// next node, or NodeEnd to finish.
type Node interface {
	Kind() NodeKind
	Run(ctx context.Context, cc *ConversationContext) (NodeKind, error)
}

// transitions is the set of legal edges. A node returning a kind outside
// its row is a programming error, not a model error.
var transitions = map[NodeKind][]NodeKind{
	NodeRouter:    {NodePlanner, NodeResponder},
	NodePlanner:   {NodeExecutor, NodeResponder},
	NodeExecutor:  {NodeAnalyzer},
	NodeAnalyzer:  {NodePlanner, NodeExecutor, NodeResponder},
	NodeResponder: {NodeEnd},
}

type noopCallback struct{}

func (noopCallback) OnNodeStart(context.Context, *ConversationContext, NodeKind)                {}
func (noopCallback) OnNodeEnd(context.Context, *ConversationContext, NodeKind, NodeKind, error) {}
func (noopCallback) OnToolCallStart(context.Context, *ConversationContext, *ToolCall)           {}
func (noopCallback) OnToolCallEnd(context.Context, *ConversationContext, *ToolCall)             {}
func (noopCallback) OnToolCallError(context.Context, *ConversationContext, *ToolCall, error)    {}
func (noopCallback) OnRunEnd(context.Context, *ConversationContext, error)                      {}

// Orchestrator drives a conversation context through the graph until the
// responder finishes or the cycle bound forces it there.
type Orchestrator struct {
	nodes     map[NodeKind]Node
	maxCycles int
	callback  Callback
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithMaxCycles overrides the per-run node execution bound.
func WithMaxCycles(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxCycles = n
		}
	}
}

// WithCallback installs an observer for node and tool call events.
func WithCallback(cb Callback) Option {
	return func(o *Orchestrator) {
		if cb != nil {
			o.callback = cb
		}
	}
}

// NewOrchestrator wires the standard graph over the given gateway and
// tool provider.
func NewOrchestrator(gw gateway.Gateway, mcp mcpclient.Factory, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		maxCycles: DefaultMaxCycles,
		callback:  noopCallback{},
	}
	for _, opt := range opts {
		opt(o)
	}
	o.nodes = map[NodeKind]Node{
		NodeRouter:    NewRouter(gw, mcp),
		NodePlanner:   NewPlanner(gw),
		NodeExecutor:  NewExecutor(mcp, o.callback),
		NodeAnalyzer:  NewAnalyzer(gw),
		NodeResponder: NewResponder(),
	}
	return o
}

// Run executes the graph for one conversation turn, starting at the
// router. On success it returns ReadyForStreaming and the context holds
// the final prepared context.
func (o *Orchestrator) Run(ctx context.Context, cc *ConversationContext) (string, error) {
	started := time.Now()
	result, err := o.run(ctx, cc)
	metricskey.PerfAgentRun.MeasureSince(started, graphName)
	if err != nil {
		metricskey.StatsAgentRunsFailed.IncrCounter(1, graphName)
	} else {
		metricskey.StatsAgentRunsSucceeded.IncrCounter(1, graphName)
	}
	o.callback.OnRunEnd(ctx, cc, err)
	return result, err
}

func (o *Orchestrator) run(ctx context.Context, cc *ConversationContext) (string, error) {
	current := NodeRouter
	cycles := 0

	for current != NodeEnd {
		if err := ctx.Err(); err != nil {
			return "", errors.WithStack(err)
		}

		cycles++
		if cycles > o.maxCycles && current != NodeResponder {
			logger.ContextKV(ctx, xlog.WARNING,
				"reason", "max_cycles_reached",
				"conversation", cc.ConversationID,
				"cycles", cycles,
				"node", current)
			current = NodeResponder
		}

		node, ok := o.nodes[current]
		if !ok {
			return "", errors.Errorf("unknown node: %s", current)
		}

		o.callback.OnNodeStart(ctx, cc, current)
		nodeStarted := time.Now()
		next, err := node.Run(ctx, cc)
		metricskey.PerfAgentNode.MeasureSince(nodeStarted, string(current))
		metricskey.StatsAgentNodeExecutions.IncrCounter(1, string(current))
		o.callback.OnNodeEnd(ctx, cc, current, next, err)
		if err != nil {
			return "", errors.Wrapf(err, "node %s failed", current)
		}

		if !slices.Contains(transitions[current], next) {
			return "", errors.Errorf("invalid transition: %s -> %s", current, next)
		}
		current = next
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "run_completed",
		"conversation", cc.ConversationID,
		"cycles", cycles)
	return ReadyForStreaming, nil
}
