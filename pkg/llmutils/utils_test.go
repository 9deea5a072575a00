package llmutils_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/llms"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/llmutils"
)

func Test_CleanJSON(t *testing.T) {
	tcases := []struct {
		name string
		in   string
		exp  string
	}{
		{"clean", `{"a": 1}`, `{"a": 1}`},
		{"prefix", `Sure, here you go: {"a": 1}`, `{"a": 1}`},
		{"suffix", `{"a": 1} Hope that helps!`, `{"a": 1}`},
		{"both", `Result: {"a": 1}. Done.`, `{"a": 1}`},
		{"array", `The list is: [1, 2, 3] ok`, `[1, 2, 3]`},
		{"no_json", `nothing here`, `nothing here`},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.exp, string(llmutils.CleanJSON([]byte(tc.in))))
		})
	}
}

func Test_TrimBackticks(t *testing.T) {
	tcases := []struct {
		name string
		in   string
		exp  string
	}{
		{"json_fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare_fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"no_fence", `{"a": 1}`, `{"a": 1}`},
		{"unterminated", "```json\n{\"a\": 1}", `{"a": 1}`},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.exp, llmutils.TrimBackticks(tc.in))
		})
	}
}

func Test_ToJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, llmutils.ToJSON(map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}", llmutils.ToJSONIndent(map[string]int{"a": 1}))
	assert.Equal(t, "a: 1\n", llmutils.ToYAML(map[string]int{"a": 1}))
}

func Test_PrintMessages(t *testing.T) {
	messages := []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "be brief"),
		llms.MessageFromTextParts(llms.RoleHuman, "hello"),
	}

	var b bytes.Buffer
	llmutils.PrintMessages(&b, messages)
	assert.Contains(t, b.String(), "system:\nbe brief")
	assert.Contains(t, b.String(), "human:\nhello")

	assert.Equal(t, uint64(13), llmutils.CountMessagesContentSize(messages))
}
