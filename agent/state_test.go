package agent_test

import (
	"encoding/json"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/agent"
)

func Test_ConversationContext(t *testing.T) {
	cc := agent.NewConversationContext("conv1", "what is the weather?")
	assert.Equal(t, agent.PhaseRouting, cc.Phase)
	assert.Empty(t, cc.PendingToolCalls)
	assert.Empty(t, cc.AccumulatedEvidence)
	assert.Empty(t, cc.FinalPreparedContext())
	assert.False(t, cc.CreatedAt.IsZero())
}

func Test_ToolCallLifecycle(t *testing.T) {
	cc := agent.NewConversationContext("conv1", gofakeit.Question())

	call := agent.NewToolCall("lookup_weather", map[string]any{"city": "Paris"})
	require.NotEmpty(t, call.ID)
	assert.Equal(t, agent.StatusPending, call.Status)

	cc.PendingToolCalls = append(cc.PendingToolCalls, call)

	cc.CompleteToolCall(call.ID, json.RawMessage(`{"temp": 21}`))
	assert.Empty(t, cc.PendingToolCalls)
	require.Len(t, cc.CompletedToolCalls, 1)
	assert.Equal(t, agent.StatusCompleted, cc.CompletedToolCalls[0].Status)

	// one evidence line per call that left the pending list
	require.Len(t, cc.AccumulatedEvidence, 1)
	assert.Equal(t, `Tool 'lookup_weather' result: {"temp": 21}`, cc.AccumulatedEvidence[0])

	// completing an unknown id is a no-op
	cc.CompleteToolCall("unknown", json.RawMessage(`{}`))
	assert.Len(t, cc.CompletedToolCalls, 1)
	assert.Len(t, cc.AccumulatedEvidence, 1)
}

func Test_FailAndRetry(t *testing.T) {
	cc := agent.NewConversationContext("conv1", gofakeit.Question())

	ok := agent.NewToolCall("lookup_weather", nil)
	bad := agent.NewToolCall("query_database", nil)
	cc.PendingToolCalls = append(cc.PendingToolCalls, ok, bad)

	cc.CompleteToolCall(ok.ID, json.RawMessage(`{"temp": 21}`))
	cc.FailToolCall(bad.ID, "column not found")

	assert.Empty(t, cc.PendingToolCalls)
	require.Len(t, cc.CompletedToolCalls, 2)
	assert.Equal(t, "column not found", cc.LastError)
	require.Len(t, cc.AccumulatedEvidence, 2)
	assert.Equal(t, "Tool 'query_database' failed with error: column not found", cc.AccumulatedEvidence[1])

	// retry moves only the failed call back, keeping its id
	moved := cc.RetryFailedCalls()
	require.Len(t, moved, 1)
	assert.Equal(t, bad.ID, moved[0].ID)
	assert.Equal(t, "query_database", moved[0].ToolName)
	require.Len(t, cc.PendingToolCalls, 1)
	assert.Equal(t, bad.ID, cc.PendingToolCalls[0].ID)
	assert.Equal(t, agent.StatusPending, cc.PendingToolCalls[0].Status)
	assert.Empty(t, cc.PendingToolCalls[0].Error)
	require.Len(t, cc.CompletedToolCalls, 1)
	assert.Equal(t, ok.ID, cc.CompletedToolCalls[0].ID)

	// no failed calls left
	assert.Empty(t, cc.RetryFailedCalls())
}

func Test_EvidenceOrder(t *testing.T) {
	cc := agent.NewConversationContext("conv1", gofakeit.Question())

	var calls []*agent.ToolCall
	for range 5 {
		call := agent.NewToolCall(gofakeit.Word(), nil)
		calls = append(calls, call)
		cc.PendingToolCalls = append(cc.PendingToolCalls, call)
	}

	cc.CompleteToolCall(calls[1].ID, json.RawMessage(`1`))
	cc.FailToolCall(calls[3].ID, "boom")
	cc.CompleteToolCall(calls[0].ID, json.RawMessage(`2`))

	require.Len(t, cc.AccumulatedEvidence, 3)
	assert.Contains(t, cc.AccumulatedEvidence[0], calls[1].ToolName)
	assert.Contains(t, cc.AccumulatedEvidence[1], calls[3].ToolName)
	assert.Contains(t, cc.AccumulatedEvidence[2], calls[0].ToolName)
	assert.Len(t, cc.PendingToolCalls, 2)
}

func Test_FinalContextWriteOnce(t *testing.T) {
	cc := agent.NewConversationContext("conv1", "hi")
	require.NoError(t, cc.SetFinalContext("prepared"))
	assert.Equal(t, "prepared", cc.FinalPreparedContext())

	err := cc.SetFinalContext("again")
	require.Error(t, err)
	assert.Equal(t, "prepared", cc.FinalPreparedContext())
}

func Test_ClearToolHistory(t *testing.T) {
	cc := agent.NewConversationContext("conv1", "hi")
	call := agent.NewToolCall("lookup_weather", nil)
	cc.PendingToolCalls = append(cc.PendingToolCalls, call)
	cc.CompleteToolCall(call.ID, json.RawMessage(`{}`))

	cc.ClearToolHistory()
	assert.Empty(t, cc.CompletedToolCalls)
	// evidence survives, it feeds the final context
	assert.Len(t, cc.AccumulatedEvidence, 1)
}
