package encoding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/encoding"
)

type testOutput struct {
	Decision string `json:"decision" validate:"required"`
	Reason   string `json:"reason,omitempty"`
}

func Test_Encoder_Unmarshal(t *testing.T) {
	enc, err := encoding.NewEncoder(testOutput{})
	require.NoError(t, err)

	tcases := []struct {
		name string
		in   string
	}{
		{"clean", `{"decision": "RESPONDER", "reason": "simple"}`},
		{"fenced", "```json\n{\"decision\": \"RESPONDER\", \"reason\": \"simple\"}\n```"},
		{"prose_prefix", `Sure, here you go: {"decision": "RESPONDER", "reason": "simple"}`},
		{"prose_suffix", `{"decision": "RESPONDER", "reason": "simple"} Hope that helps!`},
		{"trailing_comma", `{"decision": "RESPONDER", "reason": "simple",}`},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			var out testOutput
			require.NoError(t, enc.Unmarshal([]byte(tc.in), &out))
			assert.Equal(t, "RESPONDER", out.Decision)
			assert.Equal(t, "simple", out.Reason)
		})
	}
}

func Test_Encoder_Validate(t *testing.T) {
	enc, err := encoding.NewEncoder(testOutput{})
	require.NoError(t, err)

	require.NoError(t, enc.Validate(&testOutput{Decision: "PLANNER"}))
	assert.Error(t, enc.Validate(&testOutput{Reason: "missing decision"}))
}

func Test_Encoder_FormatInstructions(t *testing.T) {
	enc, err := encoding.NewEncoder(testOutput{})
	require.NoError(t, err)

	instr := enc.GetFormatInstructions()
	assert.Contains(t, instr, "Respond with JSON in the following JSON schema:")
	assert.Contains(t, instr, "```json")
	assert.Contains(t, instr, "decision")
	assert.Contains(t, instr, "not the schema itself")
}

func Test_Encoder_Marshal(t *testing.T) {
	enc, err := encoding.NewEncoder(testOutput{})
	require.NoError(t, err)

	bs, err := enc.Marshal(&testOutput{Decision: "RETRY"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"decision":"RETRY"}`, string(bs))
}
