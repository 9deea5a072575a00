package chatmodel_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/chatmodel"
)

type namedValue struct{}

func (namedValue) String() string { return "named" }

type contentValue struct {
	content string
}

func (c contentValue) GetContent() string { return c.content }

func Test_Stringify(t *testing.T) {
	assert.Equal(t, "plain text", chatmodel.Stringify("plain text"))
	// raw JSON passes through verbatim, whitespace included
	assert.Equal(t, `{"temp": 21}`, chatmodel.Stringify(json.RawMessage(`{"temp": 21}`)))
	assert.Equal(t, "bytes", chatmodel.Stringify([]byte("bytes")))
	assert.Equal(t, "named", chatmodel.Stringify(namedValue{}))
	assert.Equal(t, "inner", chatmodel.Stringify(contentValue{content: "inner"}))
	assert.Equal(t, `{"a":1}`, chatmodel.Stringify(map[string]int{"a": 1}))
}

func Test_ToBytes(t *testing.T) {
	assert.Equal(t, []byte("plain text"), chatmodel.ToBytes("plain text"))
	assert.Equal(t, []byte(`{"temp": 21}`), chatmodel.ToBytes(json.RawMessage(`{"temp": 21}`)))
	assert.Equal(t, []byte("bytes"), chatmodel.ToBytes([]byte("bytes")))
	assert.Equal(t, []byte("named"), chatmodel.ToBytes(namedValue{}))
	assert.Equal(t, []byte("inner"), chatmodel.ToBytes(contentValue{content: "inner"}))
	assert.Equal(t, []byte(`{"a":1}`), chatmodel.ToBytes(map[string]int{"a": 1}))
}
