package mcpclient

import (
	"encoding/json"
	"fmt"
)

// Streamable HTTP transport constants.
const (
	// ProtocolVersion is the protocol revision declared in the handshake.
	ProtocolVersion = "2025-03-26"

	ClientName    = "govcloud-ai-agent"
	ClientVersion = "1.0.0"

	// SessionHeader carries the provider-assigned session identifier.
	SessionHeader = "Mcp-Session-Id"

	endpointPath = "/mcp/"

	methodInitialize = "initialize"
	methodListTools  = "tools/list"
	methodCallTool   = "tools/call"
)

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response envelope.
// Exactly one of Result/Error is present.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

// ResponseError is the provider-reported error payload.
type ResponseError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("mcp error %d: %s", e.Code, e.Message)
}

type initializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ClientInfo      clientInfo     `json:"clientInfo"`
}

type clientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeResult is the provider's handshake reply.
type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      ServerInfo     `json:"serverInfo"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type callToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type listToolsResult struct {
	Tools []*ToolDescriptor `json:"tools"`
}

// ToolDescriptor describes a tool exposed by the provider.
// InputSchema is kept raw: tool argument shapes are discovered at runtime
// and flattened separately for prompting.
type ToolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}
