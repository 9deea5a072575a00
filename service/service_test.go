package service_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/mock/gomock"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/agent"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/chatmodel"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/mcpclient"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/mocks/mockgateway"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/llms"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/prompts"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/service"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/store"
)

func newProvider(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		resp := map[string]any{
			"jsonrpc": "2.0",
			"id":      gjson.GetBytes(body, "id").String(),
		}
		switch gjson.GetBytes(body, "method").String() {
		case "initialize":
			resp["result"] = map[string]any{
				"protocolVersion": mcpclient.ProtocolVersion,
				"capabilities":    map[string]any{},
				"serverInfo":      map[string]any{"name": "test", "version": "0"},
			}
		case "tools/list":
			resp["result"] = map[string]any{"tools": []map[string]any{
				{"name": "lookup_weather", "description": "Weather lookup"},
			}}
		case "tools/call":
			resp["result"] = map[string]any{"content": []map[string]any{
				{"type": "text", "text": "21C in Paris"},
			}}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(server.Close)
	return server
}

func Test_Chat_DirectAnswer(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mockgateway.NewMockGateway(ctrl)
	provider := newProvider(t)

	gw.EXPECT().Decide(gomock.Any(), prompts.RouterSystem, gomock.Any()).Return("RESPONDER", nil)
	gw.EXPECT().Generate(gomock.Any(), prompts.ResponderSystem, "User Query: what is 2+2?", gomock.Any()).
		Return("2+2 equals 4.", nil)

	st := store.NewMemoryStore()
	svc := service.NewAgentService(st, gw, agent.NewOrchestrator(gw, mcpclient.NewFactory(provider.URL)))

	var streamed []byte
	answer, err := svc.Chat(context.Background(), "conv1", "what is 2+2?",
		func(_ context.Context, chunk []byte) error {
			streamed = append(streamed, chunk...)
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, "2+2 equals 4.", answer)

	// both turns are persisted
	ctx := chatmodel.SetConversationID(context.Background(), "conv1")
	messages := st.Messages(ctx)
	require.Len(t, messages, 2)
	assert.Equal(t, llms.RoleHuman, messages[0].Role)
	assert.Equal(t, "what is 2+2?", messages[0].Content)
	assert.Equal(t, llms.RoleAI, messages[1].Role)
	assert.Equal(t, "2+2 equals 4.", messages[1].Content)
}

func Test_Chat_WithTools(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mockgateway.NewMockGateway(ctrl)
	provider := newProvider(t)

	gw.EXPECT().Decide(gomock.Any(), prompts.RouterSystem, gomock.Any()).Return("PLANNER", nil)
	gw.EXPECT().Generate(gomock.Any(), prompts.PlannerSystem, gomock.Any(), gomock.Any()).
		Return(`{"tool_calls": [{"tool_name": "lookup_weather", "arguments": {"city": "Paris"}}]}`, nil)
	gw.EXPECT().Decide(gomock.Any(), prompts.AnalyzerSystem, gomock.Any()).Return("RESPONDER", nil)
	gw.EXPECT().Generate(gomock.Any(), prompts.ResponderSystem, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, prepared string, _ ...llms.CallOption) (string, error) {
			assert.Contains(t, prepared, "User Query: weather in Paris?")
			assert.Contains(t, prepared, "Information Gathered:")
			assert.Contains(t, prepared, "21C in Paris")
			return "It is 21C and sunny in Paris.", nil
		})

	svc := service.NewAgentService(store.NewMemoryStore(), gw,
		agent.NewOrchestrator(gw, mcpclient.NewFactory(provider.URL)))

	answer, err := svc.Chat(context.Background(), "conv1", "weather in Paris?", nil)
	require.NoError(t, err)
	assert.Equal(t, "It is 21C and sunny in Paris.", answer)
}

func Test_Chat_AgentFailureReturnsApology(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mockgateway.NewMockGateway(ctrl)
	provider := newProvider(t)

	gw.EXPECT().Decide(gomock.Any(), prompts.RouterSystem, gomock.Any()).
		Return("", assert.AnError)

	st := store.NewMemoryStore()
	svc := service.NewAgentService(st, gw, agent.NewOrchestrator(gw, mcpclient.NewFactory(provider.URL)))

	var streamed string
	answer, err := svc.Chat(context.Background(), "conv1", "hello",
		func(_ context.Context, chunk []byte) error {
			streamed += string(chunk)
			return nil
		})
	require.NoError(t, err)

	// internal details never reach the user
	assert.Equal(t, service.ApologyMessage, answer)
	assert.Equal(t, service.ApologyMessage, streamed)
	assert.NotContains(t, answer, assert.AnError.Error())

	ctx := chatmodel.SetConversationID(context.Background(), "conv1")
	messages := st.Messages(ctx)
	require.Len(t, messages, 2)
	assert.Equal(t, service.ApologyMessage, messages[1].Content)
}

func Test_Chat_StreamingFailureReturnsApology(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mockgateway.NewMockGateway(ctrl)
	provider := newProvider(t)

	gw.EXPECT().Decide(gomock.Any(), prompts.RouterSystem, gomock.Any()).Return("RESPONDER", nil)
	gw.EXPECT().Generate(gomock.Any(), prompts.ResponderSystem, gomock.Any(), gomock.Any()).
		Return("", assert.AnError)

	svc := service.NewAgentService(store.NewMemoryStore(), gw,
		agent.NewOrchestrator(gw, mcpclient.NewFactory(provider.URL)))

	answer, err := svc.Chat(context.Background(), "conv1", "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, service.ApologyMessage, answer)
}
