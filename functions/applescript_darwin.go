//go:build darwin

package functions

import (
	"context"
	"fmt"
	"os/exec"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

func registerPlatformFunctions(d *Dispatcher) {
	d.Register(&AppleScriptFunction{})
}

// AppleScriptFunction runs an AppleScript snippet through osascript, giving
// the model access to macOS application automation.
type AppleScriptFunction struct{}

func (f *AppleScriptFunction) Tool() mcptypes.Tool {
	return mcptypes.Tool{
		Name: "execute_apple_script",
		Description: "Executes an AppleScript snippet on macOS and returns its output. " +
			"Use this to interact with macOS applications.",
		InputSchema: mcptypes.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"apple_script": map[string]any{
					"type":        "string",
					"description": "The AppleScript source to run.",
				},
			},
			Required: []string{"apple_script"},
		},
	}
}

func (f *AppleScriptFunction) Execute(ctx context.Context, args map[string]any) string {
	script, ok := args["apple_script"].(string)
	if !ok || script == "" {
		return "Error: missing required argument apple_script"
	}

	output, err := exec.CommandContext(ctx, "osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("Output: %s", output)
}
