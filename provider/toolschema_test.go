package provider

import (
	"testing"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"
)

func shellTool() mcptypes.Tool {
	return mcptypes.Tool{
		Name:        "execute_shell_command",
		Description: "Executes a shell command and returns the output.",
		InputSchema: mcptypes.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"shell_command": map[string]any{
					"type":        "string",
					"description": "Shell command to execute.",
				},
			},
			Required: []string{"shell_command"},
		},
	}
}

func TestConvertToolsToOpenAIFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    []mcptypes.Tool
		expected int
	}{
		{name: "nil tools", input: nil, expected: 0},
		{name: "empty tools", input: []mcptypes.Tool{}, expected: 0},
		{name: "shell tool", input: []mcptypes.Tool{shellTool()}, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertToolsToOpenAIFormat(tt.input)
			if len(result) != tt.expected {
				t.Fatalf("expected %d tools, got %d", tt.expected, len(result))
			}

			if tt.expected == 0 {
				return
			}

			fn := result[0].OfFunction
			if fn == nil {
				t.Fatal("expected function tool variant")
			}
			if fn.Function.Name != "execute_shell_command" {
				t.Errorf("name mismatch: %q", fn.Function.Name)
			}
			params := fn.Function.Parameters
			if params["type"] != "object" {
				t.Errorf("expected object parameters, got %v", params["type"])
			}
			required, ok := params["required"].([]string)
			if !ok || len(required) != 1 || required[0] != "shell_command" {
				t.Errorf("required mismatch: %v", params["required"])
			}
		})
	}
}

func TestConvertToolsToOllamaFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    []mcptypes.Tool
		expected int
		validate func(t *testing.T, result []api.Tool)
	}{
		{
			name:     "empty tools",
			input:    []mcptypes.Tool{},
			expected: 0,
		},
		{
			name:     "shell tool",
			input:    []mcptypes.Tool{shellTool()},
			expected: 1,
			validate: func(t *testing.T, result []api.Tool) {
				if result[0].Type != "function" {
					t.Errorf("expected type 'function', got %q", result[0].Type)
				}
				if result[0].Function.Name != "execute_shell_command" {
					t.Errorf("name mismatch: %q", result[0].Function.Name)
				}
				params := result[0].Function.Parameters
				if len(params.Required) != 1 {
					t.Errorf("expected 1 required field, got %d", len(params.Required))
				}
				prop, ok := params.Properties["shell_command"]
				if !ok {
					t.Fatal("shell_command property not found")
				}
				if len(prop.Type) != 1 || prop.Type[0] != "string" {
					t.Errorf("expected type [string], got %v", prop.Type)
				}
			},
		},
		{
			name: "tool with enum property",
			input: []mcptypes.Tool{
				{
					Name:        "set_mode",
					Description: "Switch mode",
					InputSchema: mcptypes.ToolInputSchema{
						Type: "object",
						Properties: map[string]any{
							"mode": map[string]any{
								"type": "string",
								"enum": []any{"shell", "code"},
							},
						},
						Required: []string{"mode"},
					},
				},
			},
			expected: 1,
			validate: func(t *testing.T, result []api.Tool) {
				prop := result[0].Function.Parameters.Properties["mode"]
				if len(prop.Enum) != 2 {
					t.Errorf("expected 2 enum values, got %d", len(prop.Enum))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertToolsToOllamaFormat(tt.input)

			if len(result) != tt.expected {
				t.Fatalf("expected %d tools, got %d", tt.expected, len(result))
			}

			if tt.validate != nil {
				tt.validate(t, result)
			}
		})
	}
}

func TestConvertToolsToAnthropicFormat(t *testing.T) {
	result := ConvertToolsToAnthropicFormat([]mcptypes.Tool{shellTool()})

	if len(result) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(result))
	}
	if result[0].OfTool == nil {
		t.Fatal("expected tool variant")
	}
	if result[0].OfTool.Name != "execute_shell_command" {
		t.Errorf("name mismatch: %q", result[0].OfTool.Name)
	}
	if len(result[0].OfTool.InputSchema.Required) != 1 {
		t.Errorf("required mismatch: %v", result[0].OfTool.InputSchema.Required)
	}
}
