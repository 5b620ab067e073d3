package model

// Message roles as they appear in persisted transcripts and on the wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleFunction  = "function"
)

// Message represents a chat message in the conversation. The ordered message
// sequence of a session is replayed verbatim to the completion boundary, so
// Content must survive persistence byte-identical, including embedded
// newlines and triple-quoted blocks.
type Message struct {
	Role         string        `json:"role"`
	Content      string        `json:"content"`
	Name         string        `json:"name,omitempty"`
	FunctionCall *FunctionCall `json:"function_call,omitempty"`
}

// FunctionCall records a model-requested function invocation inside an
// assistant message. Arguments is the raw JSON object string as produced by
// the provider.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-role message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// FunctionMessage builds a function-role message carrying the textual output
// of a local function execution, named after the function that produced it.
func FunctionMessage(name, content string) Message {
	return Message{Role: RoleFunction, Content: content, Name: name}
}
