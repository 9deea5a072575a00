package schema

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	"github.com/tidwall/sjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/llms"
	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/llmutils"
)

var (
	cache   = make(map[reflect.Type]*Schema)
	cacheMu sync.RWMutex
)

// Schema holds the JSON schema derived from a Go type, used as the
// structured-output contract for LLM calls.
type Schema struct {
	*jsonschema.Schema
	// Parameters represents the inlined object schema with all local
	// references resolved.
	Parameters *jsonschema.Schema
}

// New creates a new schema from the given type.
func New(t reflect.Type) (*Schema, error) {
	cacheMu.RLock()
	s, ok := cache[t]
	cacheMu.RUnlock()
	if ok {
		return s, nil
	}

	s, err := buildSchema(t)
	if err != nil {
		return nil, err
	}

	cacheMu.Lock()
	cache[t] = s
	cacheMu.Unlock()

	return s, nil
}

func (s *Schema) String() string {
	return llmutils.ToJSONIndent(s.Parameters)
}

func buildSchema(t reflect.Type) (*Schema, error) {
	schema := JSONSchema(t)

	inlined, err := toObjectSchema(schema)
	if err != nil {
		return nil, err
	}
	return &Schema{
		Schema:     schema,
		Parameters: inlined,
	}, nil
}

// toObjectSchema inlines the root definition and resolves local $defs
// references so providers receive a single self-contained object schema.
func toObjectSchema(tSchema *jsonschema.Schema) (*jsonschema.Schema, error) {
	refID := strings.TrimPrefix(tSchema.Ref, "#/$defs/")

	defs := make(map[string]*jsonschema.Schema)
	var root *jsonschema.Schema

	for name, def := range tSchema.Definitions {
		if name == refID {
			root = def
		} else {
			defs[name] = def
		}
	}
	if root == nil {
		// Already expanded, no definitions table.
		return tSchema, nil
	}

	res := &jsonschema.Schema{
		Type:       root.Type,
		Properties: root.Properties,
		Required:   root.Required,
	}

	if err := resolveRefs(res.Properties, defs); err != nil {
		return nil, err
	}
	return res, nil
}

func resolveRefs(props *orderedmap.OrderedMap[string, *jsonschema.Schema], defs map[string]*jsonschema.Schema) error {
	if props == nil {
		return nil
	}
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		child := pair.Value
		if child.Ref != "" {
			name := strings.TrimPrefix(child.Ref, "#/$defs/")
			def, ok := defs[name]
			if !ok {
				return errors.Newf("unresolved schema reference: %s", child.Ref)
			}
			pair.Value = def
			child = def
		}
		if child.Items != nil && child.Items.Ref != "" {
			name := strings.TrimPrefix(child.Items.Ref, "#/$defs/")
			def, ok := defs[name]
			if !ok {
				return errors.Newf("unresolved schema reference: %s", child.Items.Ref)
			}
			child.Items = def
		}
		if child.Items != nil && child.Items.Properties != nil {
			if err := resolveRefs(child.Items.Properties, defs); err != nil {
				return err
			}
		}
		if child.Properties != nil {
			if err := resolveRefs(child.Properties, defs); err != nil {
				return err
			}
		}
	}
	return nil
}

// JSONSchema returns the json schema of the given type.
func JSONSchema(t reflect.Type) *jsonschema.Schema {
	r := new(jsonschema.Reflector)
	r.AllowAdditionalProperties = true

	// Struct names may collide across packages, which would produce wrong
	// $ref targets. Disambiguate by hashing the full package path.
	// See https://github.com/invopop/jsonschema/issues/42
	r.Namer = func(t reflect.Type) string {
		name := t.Name()
		if t.Kind() == reflect.Struct {
			fullname := t.PkgPath() + "/" + t.Name()
			name = t.Name() + "@" + strconv.FormatUint(xxhash.Sum64String(fullname), 10)
		}
		return name
	}

	return r.ReflectFromType(t)
}

// NewResponseFormat builds a response-format contract for the given type.
// With strict enabled, additionalProperties is forced to false on every
// object so providers can enforce the schema exactly.
func NewResponseFormat(t reflect.Type, strict bool) (*llms.ResponseFormat, error) {
	s, err := New(t)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(s.Parameters)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal schema")
	}
	if strict {
		raw, err = enforceStrict(raw)
		if err != nil {
			return nil, err
		}
	}

	var params any
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal schema")
	}

	name := t.Name()
	if name == "" {
		name = "response"
	}
	return &llms.ResponseFormat{
		Type:   "json_schema",
		Name:   name,
		Schema: params,
		Strict: strict,
	}, nil
}

// enforceStrict sets additionalProperties=false on the root object and on
// every object-typed property, as required by strict schema modes.
func enforceStrict(raw []byte) ([]byte, error) {
	var node map[string]json.RawMessage
	if err := json.Unmarshal(raw, &node); err != nil {
		return raw, nil
	}

	out := raw
	var err error
	if string(node["type"]) == `"object"` {
		out, err = sjson.SetBytes(out, "additionalProperties", false)
		if err != nil {
			return nil, errors.Wrap(err, "failed to set additionalProperties")
		}

		var props map[string]json.RawMessage
		if rawProps, ok := node["properties"]; ok {
			if err := json.Unmarshal(rawProps, &props); err == nil {
				for name, prop := range props {
					strictProp, err := enforceStrict(prop)
					if err != nil {
						return nil, err
					}
					out, err = sjson.SetRawBytes(out, "properties."+escapePath(name), strictProp)
					if err != nil {
						return nil, errors.Wrap(err, "failed to set property")
					}
				}
			}
		}
	}

	if items, ok := node["items"]; ok {
		strictItems, err := enforceStrict(items)
		if err != nil {
			return nil, err
		}
		out, err = sjson.SetRawBytes(out, "items", strictItems)
		if err != nil {
			return nil, errors.Wrap(err, "failed to set items")
		}
	}
	return out, nil
}

func escapePath(name string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`)
	return r.Replace(name)
}
