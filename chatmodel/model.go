package chatmodel

import (
	"encoding/json"
)

// ContentProvider is implemented by values that can render themselves
// as chat content.
type ContentProvider interface {
	GetContent() string
}

type Stringer interface {
	String() string
}

// Stringify renders any value for inclusion in prompts and evidence lines.
// Raw JSON and plain text pass through verbatim, everything else is
// marshaled.
func Stringify(s any) string {
	switch v := s.(type) {
	case string:
		return v
	case json.RawMessage:
		return string(v)
	case []byte:
		return string(v)
	}
	if v, ok := s.(Stringer); ok {
		return v.String()
	}
	if v, ok := s.(ContentProvider); ok {
		return v.GetContent()
	}
	bs, _ := json.Marshal(s)
	return string(bs)
}

func ToBytes(s any) []byte {
	switch v := s.(type) {
	case string:
		return []byte(v)
	case json.RawMessage:
		return v
	case []byte:
		return v
	}
	if v, ok := s.(Stringer); ok {
		return []byte(v.String())
	}
	if v, ok := s.(ContentProvider); ok {
		return []byte(v.GetContent())
	}
	bs, _ := json.Marshal(s)
	return bs
}
