// Package prompts holds the prompt templates for the agent graph nodes.
package prompts

import (
	"encoding/json"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/cockroachdb/errors"
)

// System prompts for the decision and planning calls.
const (
	RouterSystem = `Analyze the user query and available tools.
- If the query can be answered without tools, respond with: RESPONDER
- If the query requires external data or actions via tools, respond with: PLANNER

Your response must be a single word.`

	PlannerSystem = `You are an expert planning agent. Analyze the user request and create a complete execution plan with ALL specific tool calls needed.

Your output must be a JSON object matching the provided schema with ALL tool calls needed to complete the request.

Do NOT plan incrementally - determine the COMPLETE sequence of tool calls needed and return them all at once.`

	AnalyzerSystem = `You are a tool result analyzer. Based on the completed tool calls, decide the next step.
- If all tools succeeded and the results are sufficient, respond with: RESPONDER
- If any tool failed, respond with: PLANNER to re-plan.
- If you need to retry a failed tool, respond with: RETRY

Your response must be a single word.`

	ResponderSystem = `You are a helpful AI assistant. Provide a comprehensive response to the user's query based on the available context and tool results.`
)

var (
	routerTmpl = parse("router", `Query: {{ .Query }}

Available tools: [{{ join ", " .ToolNames }}]`)

	plannerTmpl = parse("planner", `User Request: {{ .Query }}

Available Tools (with schemas): {{ .Tools | toPrettyJson }}
{{- if .DiscoveredSchema }}

Discovered Schema: {{ .DiscoveredSchema }}
{{- end }}
{{- if .LastError }}

Last Error: {{ .LastError }}
{{- end }}

Create a complete execution plan by determining ALL the specific tool calls needed to fulfill the user's request.
You MUST use the EXACT database, table, and column names from the Discovered Schema if it is provided. Do NOT hallucinate or guess any names.

If a previous attempt failed, analyze the error and create a new plan to fix it.
- If the error is about a missing column or table, you MUST call a schema tool to get the correct schema before generating a new query.
- If the query is invalid, you MUST generate a corrected query.

Return them as a single JSON object with all tool calls that should be executed in sequence.

If no tools are needed, return: {"tool_calls": []}`)

	analyzerTmpl = parse("analyzer", `User Request: {{ .Query }}
Completed Tool Calls: {{ .CompletedCalls | toPrettyJson }}
{{- if .DiscoveredSchema }}

Discovered Schema: {{ .DiscoveredSchema }}
{{- end }}

Based on the results, what is the next step?`)
)

func parse(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(sprig.FuncMap()).Parse(text))
}

// RouterInput feeds the routing classification prompt.
type RouterInput struct {
	Query     string
	ToolNames []string
}

// Router renders the routing classification prompt.
func Router(in RouterInput) (string, error) {
	return render(routerTmpl, in)
}

// CatalogTool is one tool catalog entry as presented to the model.
// InputSchema carries the flattened schema.
type CatalogTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// PlannerInput feeds the planning prompt.
type PlannerInput struct {
	Query            string
	Tools            []CatalogTool
	DiscoveredSchema string
	LastError        string
}

// Planner renders the planning prompt.
func Planner(in PlannerInput) (string, error) {
	return render(plannerTmpl, in)
}

// CompletedCall summarizes one finished tool call for the analyzer.
type CompletedCall struct {
	ToolName string          `json:"tool_name"`
	Status   string          `json:"status"`
	Result   json.RawMessage `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// AnalyzerInput feeds the result-analysis prompt.
type AnalyzerInput struct {
	Query            string
	CompletedCalls   []CompletedCall
	DiscoveredSchema string
}

// Analyzer renders the result-analysis prompt.
func Analyzer(in AnalyzerInput) (string, error) {
	return render(analyzerTmpl, in)
}

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", errors.Wrapf(err, "failed to render %s prompt", t.Name())
	}
	return b.String(), nil
}
