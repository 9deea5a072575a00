package agent_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/mcpclient"
)

// testProvider is a minimal in-process tool provider speaking the
// streamable HTTP transport, JSON framing only.
type testProvider struct {
	t        *testing.T
	server   *httptest.Server
	tools    []map[string]any
	callTool func(name string, args map[string]any) (json.RawMessage, *rpcError)

	callCount atomic.Int32
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newTestProvider(t *testing.T) *testProvider {
	p := &testProvider{t: t}
	p.server = httptest.NewServer(http.HandlerFunc(p.handle))
	t.Cleanup(p.server.Close)
	return p
}

func (p *testProvider) URL() string {
	return p.server.URL
}

func newTestFactory(p *testProvider) mcpclient.Factory {
	return mcpclient.NewFactory(p.URL())
}

func (p *testProvider) handle(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	require.NoError(p.t, err)

	id := gjson.GetBytes(raw, "id").String()
	method := gjson.GetBytes(raw, "method").String()

	resp := map[string]any{"jsonrpc": "2.0", "id": id}
	switch method {
	case "initialize":
		resp["result"] = map[string]any{
			"protocolVersion": "2025-03-26",
			"capabilities":    map[string]any{},
			"serverInfo":      map[string]any{"name": "test-provider", "version": "0.0.1"},
		}
	case "tools/list":
		resp["result"] = map[string]any{"tools": p.tools}
	case "tools/call":
		p.callCount.Add(1)
		name := gjson.GetBytes(raw, "params.name").String()
		var args map[string]any
		if arguments := gjson.GetBytes(raw, "params.arguments"); arguments.Exists() {
			require.NoError(p.t, json.Unmarshal([]byte(arguments.Raw), &args))
		}
		result, rpcErr := p.callTool(name, args)
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
	default:
		resp["error"] = &rpcError{Code: -32601, Message: "method not found"}
	}

	w.Header().Set("Content-Type", "application/json")
	require.NoError(p.t, json.NewEncoder(w).Encode(resp))
}
