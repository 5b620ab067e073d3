package provider

import (
	"encoding/json"

	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"

	"shellm/model"
)

// ConvertToOpenAIMessages converts shellm messages to OpenAI chat format.
//
// Function-result messages are replayed as user messages: their content
// already carries the execution output in textual form, and the transcript on
// disk keeps the original function role.
func ConvertToOpenAIMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))
		case model.RoleAssistant:
			// Content-free tool-call intents are skipped on replay; the
			// call's outcome follows as a function message.
			if msg.Content == "" {
				continue
			}
			result = append(result, openai.AssistantMessage(msg.Content))
		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}

	return result
}

// ConvertToOllamaMessages converts shellm messages to Ollama api.Message.
// The function role maps to Ollama's tool role.
func ConvertToOllamaMessages(messages []model.Message) []api.Message {
	result := make([]api.Message, len(messages))
	for i, msg := range messages {
		role := msg.Role
		if role == model.RoleFunction {
			role = "tool"
		}
		result[i] = api.Message{
			Role:    role,
			Content: msg.Content,
		}
	}
	return result
}

// ConvertOllamaToolCalls converts Ollama tool calls to provider-agnostic
// model.ToolCall values. Returns nil for empty input.
func ConvertOllamaToolCalls(ollamaCalls []api.ToolCall) []model.ToolCall {
	if len(ollamaCalls) == 0 {
		return nil
	}

	result := make([]model.ToolCall, len(ollamaCalls))
	for i, call := range ollamaCalls {
		result[i] = model.ToolCall{
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		}
	}
	return result
}

// ParseToolArguments parses a JSON arguments string into a map. Used by the
// OpenAI provider, whose SDK hands tool arguments back as raw JSON.
func ParseToolArguments(argsJSON string) map[string]any {
	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return make(map[string]any)
	}
	return args
}
