package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	// StatsAgentRunsSucceeded is base for counter metric for completed agent runs
	StatsAgentRunsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_agent_runs_succeeded",
		Help:         "stats_agent_runs_succeeded provides total agent graph runs succeeded",
		RequiredTags: []string{"graph"},
	}

	StatsAgentRunsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_agent_runs_failed",
		Help:         "stats_agent_runs_failed provides total agent graph runs failed",
		RequiredTags: []string{"graph"},
	}

	StatsAgentNodeExecutions = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_agent_node_executions",
		Help:         "stats_agent_node_executions provides total node executions by node kind",
		RequiredTags: []string{"node"},
	}

	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsRetried = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_retried",
		Help:         "stats_tool_calls_retried provides total failed tool calls moved back for retry",
		RequiredTags: []string{"tool"},
	}

	StatsMCPRequests = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_mcp_requests",
		Help:         "stats_mcp_requests provides total MCP requests by method",
		RequiredTags: []string{"method"},
	}

	StatsMCPRequestsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_mcp_requests_failed",
		Help:         "stats_mcp_requests_failed provides total failed MCP requests by method",
		RequiredTags: []string{"method"},
	}

	StatsGatewayCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_gateway_calls_succeeded",
		Help:         "stats_gateway_calls_succeeded provides total LLM gateway calls succeeded",
		RequiredTags: []string{"model"},
	}

	StatsGatewayCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_gateway_calls_failed",
		Help:         "stats_gateway_calls_failed provides total LLM gateway calls failed",
		RequiredTags: []string{"model"},
	}

	StatsGatewayParseErrors = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_gateway_parse_errors",
		Help:         "stats_gateway_parse_errors provides total structured output parse failures",
		RequiredTags: []string{"kind"},
	}
)

// Perf
var (
	// PerfAgentRun is base for sample metric of full graph run latency
	PerfAgentRun = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_agent_run",
		Help:         "perf_agent_run provides the full graph run latency",
		RequiredTags: []string{"graph"},
	}

	PerfAgentNode = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_agent_node",
		Help:         "perf_agent_node provides node execution latency by node kind",
		RequiredTags: []string{"node"},
	}

	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides tool call latency",
		RequiredTags: []string{"tool"},
	}

	PerfMCPRequest = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_mcp_request",
		Help:         "perf_mcp_request provides MCP request latency by method",
		RequiredTags: []string{"method"},
	}

	PerfGatewayCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_gateway_call",
		Help:         "perf_gateway_call provides LLM gateway call latency",
		RequiredTags: []string{"model"},
	}
)
