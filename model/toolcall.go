package model

import "encoding/json"

// ToolCall is a provider-agnostic function-call intent returned by the
// completion boundary instead of a final answer.
type ToolCall struct {
	Name      string
	Arguments map[string]any
}

// ArgumentsJSON renders the call arguments as a canonical JSON object string,
// suitable for persisting inside a FunctionCall record.
func (t ToolCall) ArgumentsJSON() string {
	if len(t.Arguments) == 0 {
		return "{}"
	}
	data, err := json.Marshal(t.Arguments)
	if err != nil {
		return "{}"
	}
	return string(data)
}
