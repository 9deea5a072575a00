package encoding

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/bububa/ljson"
	"github.com/go-playground/validator/v10"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/llmutils"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/schema"
)

// SchemaEncoder marshals and unmarshals structured LLM outputs.
type SchemaEncoder interface {
	Marshal(req any) ([]byte, error)
	Unmarshal([]byte, any) error
	// GetFormatInstructions returns the output schema instructions for the prompt
	GetFormatInstructions() string
}

var validate = validator.New()

// Encoder is a JSON SchemaEncoder for a fixed output type.
// Unmarshal is lenient: it strips prose and code fences around the JSON
// and tolerates minor syntax damage, since LLM replies are not always
// well formed.
type Encoder struct {
	schema *schema.Schema
}

func NewEncoder(req any) (*Encoder, error) {
	t := reflect.TypeOf(req)
	s, err := schema.New(t)
	if err != nil {
		return nil, err
	}
	return &Encoder{
		schema: s,
	}, nil
}

func (e *Encoder) Marshal(req any) ([]byte, error) {
	return json.Marshal(req)
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	data := llmutils.CleanJSON(bs)
	return ljson.Unmarshal(data, ret)
}

func (e *Encoder) Validate(req any) error {
	return validate.Struct(req)
}

func (e *Encoder) GetFormatInstructions() string {
	var b bytes.Buffer
	b.WriteString("\nRespond with JSON in the following JSON schema:\n")
	b.WriteString("```json\n")
	b.WriteString(e.schema.String())
	b.WriteString("\n```")
	b.WriteString("\nMake sure to return an instance of the JSON, not the schema itself.\n")
	b.WriteString("Use the exact field names as they are defined in the schema.\n")
	return b.String()
}

func (e *Encoder) Schema() *schema.Schema {
	return e.schema
}
