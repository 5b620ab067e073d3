package functions

import (
	"context"
	"strings"
	"testing"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

type echoFunction struct{}

func (echoFunction) Tool() mcptypes.Tool {
	return mcptypes.Tool{
		Name:        "echo",
		Description: "Echoes the given text.",
		InputSchema: mcptypes.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"text": map[string]any{"type": "string"},
			},
			Required: []string{"text"},
		},
	}
}

func (echoFunction) Execute(_ context.Context, args map[string]any) string {
	text, _ := args["text"].(string)
	return text
}

func TestSchemasRegistrationOrder(t *testing.T) {
	d := NewDispatcher("/bin/sh")
	d.Register(echoFunction{})

	schemas := d.Schemas()
	if len(schemas) < 2 {
		t.Fatalf("expected shell + echo schemas, got %d", len(schemas))
	}
	if schemas[0].Name != "execute_shell_command" {
		t.Errorf("first schema = %q, want execute_shell_command", schemas[0].Name)
	}
	if schemas[len(schemas)-1].Name != "echo" {
		t.Errorf("last schema = %q, want echo", schemas[len(schemas)-1].Name)
	}
}

func TestExecuteUnknownFunction(t *testing.T) {
	d := NewDispatcher("/bin/sh")

	result := d.Execute(context.Background(), "launch_rocket", nil)
	if !strings.Contains(result, "does not exist") {
		t.Errorf("unknown function must return an error message, got %q", result)
	}
}

func TestExecuteRoutesByName(t *testing.T) {
	d := NewDispatcher("/bin/sh")
	d.Register(echoFunction{})

	result := d.Execute(context.Background(), "echo", map[string]any{"text": "hello"})
	if result != "hello" {
		t.Errorf("got %q, want %q", result, "hello")
	}
}

func TestShellFunctionSuccess(t *testing.T) {
	fn := &ShellFunction{Shell: "/bin/sh"}

	result := fn.Execute(context.Background(), map[string]any{"shell_command": "echo hi"})
	if !strings.HasPrefix(result, "Exit code: 0, Output:\n") {
		t.Errorf("unexpected prefix: %q", result)
	}
	if !strings.Contains(result, "hi") {
		t.Errorf("output missing command result: %q", result)
	}
}

func TestShellFunctionNonZeroExit(t *testing.T) {
	fn := &ShellFunction{Shell: "/bin/sh"}

	result := fn.Execute(context.Background(), map[string]any{"shell_command": "exit 3"})
	if !strings.HasPrefix(result, "Exit code: 3,") {
		t.Errorf("exit code not reported: %q", result)
	}
}

func TestShellFunctionMissingArgument(t *testing.T) {
	fn := &ShellFunction{Shell: "/bin/sh"}

	result := fn.Execute(context.Background(), map[string]any{"command": "ls"})
	if !strings.HasPrefix(result, "Error:") {
		t.Errorf("missing argument must produce an error message, got %q", result)
	}
}
