package schema

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Many MCP tool input schemas wrap the real parameter set behind a single
// "args" property that is a $ref into the schema's local $defs table.
// The indirection is noise for the model, so prompts show the referenced
// definition directly, while the actual invocation re-nests the arguments
// one level deeper (see ArgumentsWrapper / WrapArguments).

const argsProperty = "args"

// FlattenForPrompt replaces a schema whose "args" property is a local
// reference with the referenced definition. The input is never mutated;
// if the indirection is absent or the reference cannot be resolved, the
// original schema is returned unchanged.
func FlattenForPrompt(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return raw
	}

	ref := gjson.GetBytes(raw, "properties."+argsProperty+".$ref")
	if !ref.Exists() {
		return raw
	}

	refPath := ref.String()
	idx := strings.LastIndex(refPath, "/")
	if idx < 0 || idx == len(refPath)-1 {
		return raw
	}
	name := refPath[idx+1:]

	def := gjson.GetBytes(raw, "$defs."+escapePath(name))
	if !def.Exists() || !def.IsObject() {
		return raw
	}
	return json.RawMessage(def.Raw)
}

// ExpectsArgsWrapper reports whether the tool's original input schema
// declares the "args" indirection property, in which case the planned
// arguments must be wrapped before invocation.
func ExpectsArgsWrapper(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	props := gjson.GetBytes(raw, "properties")
	if !props.IsObject() {
		return false
	}
	return props.Get(argsProperty).Exists()
}

// WrapArguments nests the arguments one level deeper under the
// indirection property.
func WrapArguments(args map[string]any) map[string]any {
	return map[string]any{argsProperty: args}
}
