package mcpclient_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/mcpclient"
)

func initResult() map[string]any {
	return map[string]any{
		"protocolVersion": mcpclient.ProtocolVersion,
		"capabilities":    map[string]any{},
		"serverInfo":      map[string]any{"name": "test-provider", "version": "0.0.1"},
	}
}

func writeJSONRPC(w http.ResponseWriter, id string, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
}

func Test_Initialize(t *testing.T) {
	var initCalls int
	var lastReq []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/mcp/", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "application/json, text/event-stream", r.Header.Get("Accept"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		lastReq = body

		initCalls++
		writeJSONRPC(w, gjson.GetBytes(body, "id").String(), initResult())
	}))
	defer server.Close()

	client := mcpclient.New(server.URL + "/")
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Initialize(ctx))

	assert.Equal(t, "2.0", gjson.GetBytes(lastReq, "jsonrpc").String())
	assert.Equal(t, "initialize", gjson.GetBytes(lastReq, "method").String())
	assert.Equal(t, mcpclient.ProtocolVersion, gjson.GetBytes(lastReq, "params.protocolVersion").String())
	assert.Equal(t, mcpclient.ClientName, gjson.GetBytes(lastReq, "params.clientInfo.name").String())
	assert.True(t, gjson.GetBytes(lastReq, "params.capabilities.tools.listChanged").Bool())

	// second call is a no-op
	require.NoError(t, client.Initialize(ctx))
	assert.Equal(t, 1, initCalls)
}

func Test_SessionAffinity(t *testing.T) {
	var sessionSeen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionSeen = append(sessionSeen, r.Header.Get(mcpclient.SessionHeader))
		w.Header().Set(mcpclient.SessionHeader, "sess-1")

		body, _ := io.ReadAll(r.Body)
		id := gjson.GetBytes(body, "id").String()
		switch gjson.GetBytes(body, "method").String() {
		case "initialize":
			writeJSONRPC(w, id, initResult())
		default:
			writeJSONRPC(w, id, map[string]any{"tools": []any{}})
		}
	}))
	defer server.Close()

	client := mcpclient.New(server.URL)
	defer client.Close()

	ctx := context.Background()
	_, err := client.ListTools(ctx)
	require.NoError(t, err)

	// initialize carries no session, the follow-up echoes the assigned one
	require.Len(t, sessionSeen, 2)
	assert.Empty(t, sessionSeen[0])
	assert.Equal(t, "sess-1", sessionSeen[1])
}

func Test_ListTools(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		id := gjson.GetBytes(body, "id").String()
		switch gjson.GetBytes(body, "method").String() {
		case "initialize":
			writeJSONRPC(w, id, initResult())
		case "tools/list":
			writeJSONRPC(w, id, map[string]any{
				"tools": []map[string]any{
					{
						"name":        "lookup_weather",
						"description": "Weather lookup",
						"inputSchema": map[string]any{"type": "object"},
					},
				},
			})
		}
	}))
	defer server.Close()

	client := mcpclient.New(server.URL)
	defer client.Close()

	// auto-initializes
	tools, err := client.ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "lookup_weather", tools[0].Name)
	assert.Equal(t, "Weather lookup", tools[0].Description)
	assert.JSONEq(t, `{"type":"object"}`, string(tools[0].InputSchema))
}

func Test_ListTools_RepeatedCalls(t *testing.T) {
	var initCalls, listCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		id := gjson.GetBytes(body, "id").String()
		switch gjson.GetBytes(body, "method").String() {
		case "initialize":
			initCalls++
			writeJSONRPC(w, id, initResult())
		case "tools/list":
			listCalls++
			writeJSONRPC(w, id, map[string]any{
				"tools": []map[string]any{
					{"name": "lookup_weather", "description": "Weather lookup"},
					{"name": "query_database", "description": "SQL query"},
				},
			})
		}
	}))
	defer server.Close()

	client := mcpclient.New(server.URL)
	defer client.Close()

	ctx := context.Background()
	first, err := client.ListTools(ctx)
	require.NoError(t, err)
	second, err := client.ListTools(ctx)
	require.NoError(t, err)

	// discovery is repeatable without re-initializing and without mutation
	assert.Equal(t, 1, initCalls)
	assert.Equal(t, 2, listCalls)
	assert.Equal(t, first, second)
	require.Len(t, second, 2)
	assert.Equal(t, "lookup_weather", second[0].Name)
	assert.Equal(t, "query_database", second[1].Name)
}

func Test_CallTool_UsesCallID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		id := gjson.GetBytes(body, "id").String()
		switch gjson.GetBytes(body, "method").String() {
		case "initialize":
			writeJSONRPC(w, id, initResult())
		case "tools/call":
			require.Equal(t, "call-42", id)
			require.Equal(t, "lookup_weather", gjson.GetBytes(body, "params.name").String())
			require.Equal(t, "Paris", gjson.GetBytes(body, "params.arguments.city").String())
			writeJSONRPC(w, id, map[string]any{"content": []any{}})
		}
	}))
	defer server.Close()

	client := mcpclient.New(server.URL)
	defer client.Close()

	result, err := client.CallTool(context.Background(), "call-42", "lookup_weather", map[string]any{"city": "Paris"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[]}`, string(result))
}

func Test_CallTool_ErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		id := gjson.GetBytes(body, "id").String()
		switch gjson.GetBytes(body, "method").String() {
		case "initialize":
			writeJSONRPC(w, id, initResult())
		default:
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"jsonrpc": "2.0",
				"id":      id,
				"error":   map[string]any{"code": -32000, "message": "tool exploded"},
			})
		}
	}))
	defer server.Close()

	client := mcpclient.New(server.URL)
	defer client.Close()

	_, err := client.CallTool(context.Background(), "call-1", "lookup_weather", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mcp error -32000: tool exploded")
	assert.Contains(t, err.Error(), "lookup_weather")
}

func Test_HTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := mcpclient.New(server.URL)
	defer client.Close()

	err := client.Initialize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func Test_SSEResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		id := gjson.GetBytes(body, "id").String()
		if gjson.GetBytes(body, "method").String() == "initialize" {
			writeJSONRPC(w, id, initResult())
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, ": comment line\n\n")
		fmt.Fprintf(w, "data: {\"jsonrpc\":\"2.0\",\"method\":\"notifications/progress\",\"params\":{\"progress\":1}}\n\n")
		fmt.Fprintf(w, "data: not-json\n\n")
		fmt.Fprintf(w, "data: {\"jsonrpc\":\"2.0\",\"id\":%q,\"result\":{\"content\":[{\"type\":\"text\",\"text\":\"done\"}]}}\n\n", id)
	}))
	defer server.Close()

	client := mcpclient.New(server.URL)
	defer client.Close()

	result, err := client.CallTool(context.Background(), "42", "lookup_weather", nil)
	require.NoError(t, err)
	assert.Contains(t, string(result), "done")
}

func Test_SSENoMatchingResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		id := gjson.GetBytes(body, "id").String()
		if gjson.GetBytes(body, "method").String() == "initialize" {
			writeJSONRPC(w, id, initResult())
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data: {\"jsonrpc\":\"2.0\",\"method\":\"notifications/progress\",\"params\":{}}\n\n")
		fmt.Fprintf(w, "data: {\"jsonrpc\":\"2.0\",\"id\":\"other\",\"result\":{}}\n\n")
	}))
	defer server.Close()

	client := mcpclient.New(server.URL)
	defer client.Close()

	_, err := client.CallTool(context.Background(), "42", "lookup_weather", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no response found in event stream for request id 42")
}

func Test_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := mcpclient.New(server.URL, mcpclient.WithTimeout(20*time.Millisecond))
	defer client.Close()

	err := client.Initialize(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func Test_CloseResetsSession(t *testing.T) {
	var initCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		id := gjson.GetBytes(body, "id").String()
		switch gjson.GetBytes(body, "method").String() {
		case "initialize":
			initCalls++
			writeJSONRPC(w, id, initResult())
		default:
			writeJSONRPC(w, id, map[string]any{"tools": []any{}})
		}
	}))
	defer server.Close()

	client := mcpclient.New(server.URL)
	ctx := context.Background()

	_, err := client.ListTools(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, initCalls)

	client.Close()
	_, err = client.ListTools(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, initCalls)
}
