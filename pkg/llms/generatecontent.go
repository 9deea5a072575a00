package llms

// Role is the type of chat message.
type Role string

const (
	// RoleAI is a message sent by an AI.
	RoleAI Role = "ai"
	// RoleHuman is a message sent by a human.
	RoleHuman Role = "human"
	// RoleSystem is a message sent by the system.
	RoleSystem Role = "system"
)

// Message is the message sent to a LLM. It has a role and a sequence of
// parts. For example, it can represent one message in a chat session sent
// by the user.
type Message struct {
	Role  Role          `json:"role"`
	Parts []ContentPart `json:"parts"`
}

// ContentPart is an interface all parts of content have to implement.
type ContentPart interface {
	isPart()
}

// TextContent is content with some text.
type TextContent struct {
	Text string `json:"text"`
}

func (tc TextContent) String() string {
	return tc.Text
}

func (TextContent) isPart() {}

// TextPart creates TextContent from a given string.
func TextPart(s string) TextContent {
	return TextContent{Text: s}
}

// MessageFromTextParts returns a Message with a role and a list of
// text parts.
func MessageFromTextParts(role Role, parts ...string) Message {
	result := Message{
		Role: role,
	}
	for _, part := range parts {
		result.Parts = append(result.Parts, TextPart(part))
	}
	return result
}

// Text joins the text parts of a message.
func (m Message) Text() string {
	var out string
	for _, part := range m.Parts {
		if tc, ok := part.(TextContent); ok {
			out += tc.Text
		}
	}
	return out
}

// ContentChoice is one of the response choices returned by GenerateContent.
type ContentChoice struct {
	// Content is the textual content of a response
	Content string
	// StopReason is the reason the model stopped generating output.
	StopReason string
	// GenerationInfo is arbitrary information the model adds to the response.
	GenerationInfo map[string]any
}

// ContentResponse is the response returned by GenerateContent.
type ContentResponse struct {
	Choices []*ContentChoice
}
