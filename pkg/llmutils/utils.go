package llmutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/pkg/llms"
)

// CleanJSON returns JSON by trimming prefixes and postfixes,
// this is more useful than TrimBackticks,
// as LLM can reply like,
// `Here you go: {json}`
func CleanJSON(bs []byte) []byte {
	trimmedPrefix := trimPrefixBeforeJSON(bs)
	trimmedJSON := trimPostfixAfterJSON(trimmedPrefix)
	return trimmedJSON
}

// Removes any prefixes before the JSON (like "Sure, here you go:")
func trimPrefixBeforeJSON(bs []byte) []byte {
	startObject := bytes.IndexByte(bs, '{')
	startArray := bytes.IndexByte(bs, '[')

	var start int
	if startObject == -1 && startArray == -1 {
		return bs // No opening brace or bracket found, return the original string
	} else if startObject == -1 {
		start = startArray
	} else if startArray == -1 {
		start = startObject
	} else {
		start = min(startObject, startArray)
	}

	return bs[start:]
}

// Removes any postfixes after the JSON
func trimPostfixAfterJSON(bs []byte) []byte {
	endObject := bytes.LastIndexByte(bs, '}')
	endArray := bytes.LastIndexByte(bs, ']')

	var end int
	if endObject == -1 && endArray == -1 {
		return bs // No closing brace or bracket found, return the original string
	} else if endObject == -1 {
		end = endArray
	} else if endArray == -1 {
		end = endObject
	} else {
		end = max(endObject, endArray)
	}

	return bs[:end+1]
}

var backtick = []byte("```")

// TrimBackticks removes ```json or ```
func TrimBackticks(text string) string {
	return string(BytesTrimBackticks([]byte(text)))
}

// BytesTrimBackticks removes ```json or ```
func BytesTrimBackticks(bs []byte) []byte {
	size := len(bs)
	startIndex := bytes.Index(bs, backtick)
	if startIndex == -1 {
		// If the start marker is not found, return the original string directly
		return bs
	}
	startIndex += len(backtick)

	for i := startIndex; i < size && bs[i] != '{' && bs[i] != '['; i++ {
		if bs[i] == '\n' {
			startIndex = i + 1
			break
		}
	}

	// Calculate the string after removing the start marker and its preceding content
	contentAfterStart := bs[startIndex:]

	// Find the position of the last "```"
	endIndex := bytes.LastIndex(contentAfterStart, backtick)
	if endIndex == -1 {
		// If the end marker is not found, return the content after the start marker
		return contentAfterStart
	}

	return bytes.TrimSpace(contentAfterStart[:endIndex])
}

// ToJSON marshals a value to compact JSON, ignoring errors.
func ToJSON(v any) string {
	bs, _ := json.Marshal(v)
	return string(bs)
}

// ToJSONIndent marshals a value to indented JSON, ignoring errors.
func ToJSONIndent(v any) string {
	bs, _ := json.MarshalIndent(v, "", "  ")
	return string(bs)
}

// ToYAML marshals a value to YAML, ignoring errors.
// Used for verbose debug dumps where YAML reads better than JSON.
func ToYAML(v any) string {
	bs, _ := yaml.Marshal(v)
	return string(bs)
}

// PrintMessages writes the messages to the writer in a readable form.
func PrintMessages(w io.Writer, messages []llms.Message) {
	for _, msg := range messages {
		fmt.Fprintf(w, "%s:\n%s\n", msg.Role, msg.Text())
	}
}

// CountMessagesContentSize returns the total byte size of the text parts.
func CountMessagesContentSize(messages []llms.Message) uint64 {
	var total uint64
	for _, msg := range messages {
		total += uint64(len(msg.Text()))
	}
	return total
}
