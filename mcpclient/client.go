package mcpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/metricskey"
)

var logger = xlog.NewPackageLogger("github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client", "mcpclient")

// DefaultTimeout bounds every request.
const DefaultTimeout = 30 * time.Second

// Client holds one logical session against a single tool-provider endpoint.
// It is not safe for concurrent use; open one client per executor batch.
type Client struct {
	serverURL  string
	httpClient *http.Client
	timeout    time.Duration

	sessionID   string
	initialized bool
}

// Factory opens a new session. The executor acquires one client per batch
// and closes it when the batch completes.
type Factory func() *Client

// NewFactory returns a Factory bound to a server URL.
func NewFactory(serverURL string, opts ...Option) Factory {
	return func() *Client {
		return New(serverURL, opts...)
	}
}

type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// New creates a client for the given provider base URL.
func New(serverURL string, opts ...Option) *Client {
	c := &Client{
		serverURL:  strings.TrimSuffix(serverURL, "/"),
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases the session. The streamable HTTP transport holds no
// connection state, so this only resets the client.
func (c *Client) Close() {
	c.sessionID = ""
	c.initialized = false
}

// Initialize performs the protocol handshake. It is idempotent: a second
// call is a no-op once the handshake succeeded.
func (c *Client) Initialize(ctx context.Context) error {
	if c.initialized {
		return nil
	}

	logger.ContextKV(ctx, xlog.DEBUG, "status", "initializing_mcp", "server_url", c.serverURL)

	req := Request{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  methodInitialize,
		Params: initializeParams{
			ProtocolVersion: ProtocolVersion,
			Capabilities: map[string]any{
				"tools": map[string]any{"listChanged": true},
			},
			ClientInfo: clientInfo{
				Name:    ClientName,
				Version: ClientVersion,
			},
		},
	}

	resp, err := c.makeRequest(ctx, &req)
	if err != nil {
		return errors.WithMessage(err, "initialization failed")
	}
	if resp.Error != nil {
		return errors.WithMessage(resp.Error, "initialization failed")
	}

	var result InitializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return errors.Wrap(err, "failed to parse initialize result")
	}

	c.initialized = true
	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "mcp_initialized",
		"protocol_version", result.ProtocolVersion,
		"server_name", result.ServerInfo.Name)
	return nil
}

// ListTools discovers the provider's tool catalog, initializing first if needed.
func (c *Client) ListTools(ctx context.Context) ([]*ToolDescriptor, error) {
	if !c.initialized {
		if err := c.Initialize(ctx); err != nil {
			return nil, err
		}
	}

	req := Request{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  methodListTools,
		Params:  map[string]any{},
	}

	resp, err := c.makeRequest(ctx, &req)
	if err != nil {
		return nil, errors.WithMessage(err, "tool discovery failed")
	}
	if resp.Error != nil {
		return nil, errors.WithMessage(resp.Error, "tool discovery failed")
	}

	var result listToolsResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, errors.Wrap(err, "failed to parse tools list")
	}

	logger.ContextKV(ctx, xlog.DEBUG, "status", "tools_discovered", "count", len(result.Tools))
	return result.Tools, nil
}

// CallTool invokes a tool with the given call id and arguments, initializing
// first if needed. The call id doubles as the request correlation id.
func (c *Client) CallTool(ctx context.Context, callID, toolName string, arguments map[string]any) (json.RawMessage, error) {
	if !c.initialized {
		if err := c.Initialize(ctx); err != nil {
			return nil, err
		}
	}

	req := Request{
		JSONRPC: "2.0",
		ID:      callID,
		Method:  methodCallTool,
		Params: callToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "executing_tool",
		"tool", toolName,
		"call_id", callID)

	resp, err := c.makeRequest(ctx, &req)
	if err != nil {
		return nil, errors.WithMessagef(err, "tool execution failed: %s", toolName)
	}
	if resp.Error != nil {
		return nil, errors.WithMessagef(resp.Error, "tool execution failed: %s", toolName)
	}
	return resp.Result, nil
}

// makeRequest posts the envelope, captures session affinity and decodes
// either a single JSON object or an event-stream body.
func (c *Client) makeRequest(ctx context.Context, req *Request) (*Response, error) {
	started := time.Now()
	defer metricskey.PerfMCPRequest.MeasureSince(started, req.Method)
	metricskey.StatsMCPRequests.IncrCounter(1, req.Method)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+endpointPath, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, text/event-stream")
	if c.sessionID != "" {
		httpReq.Header.Set(SessionHeader, c.sessionID)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metricskey.StatsMCPRequestsFailed.IncrCounter(1, req.Method)
		return nil, errors.Wrap(err, "request failed")
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		metricskey.StatsMCPRequestsFailed.IncrCounter(1, req.Method)
		return nil, errors.Wrap(err, "failed to read response")
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		metricskey.StatsMCPRequestsFailed.IncrCounter(1, req.Method)
		return nil, errors.Newf("unexpected status %d: %s", httpResp.StatusCode, string(respBody))
	}

	if sid := httpResp.Header.Get(SessionHeader); sid != "" {
		c.sessionID = sid
		logger.ContextKV(ctx, xlog.DEBUG, "status", "session_updated", "session_id", sid)
	}

	if strings.Contains(httpResp.Header.Get("Content-Type"), "text/event-stream") {
		resp, err := parseSSEResponse(ctx, respBody, req.ID)
		if err != nil {
			metricskey.StatsMCPRequestsFailed.IncrCounter(1, req.Method)
		}
		return resp, err
	}

	var resp Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		metricskey.StatsMCPRequestsFailed.IncrCounter(1, req.Method)
		return nil, errors.Wrap(err, "failed to decode response")
	}
	return &resp, nil
}
