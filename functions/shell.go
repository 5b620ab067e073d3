package functions

import (
	"context"
	"fmt"
	"os/exec"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// ShellFunction executes a command line in the user's shell and reports the
// combined output plus exit code back to the model.
type ShellFunction struct {
	Shell string
}

func (f *ShellFunction) Tool() mcptypes.Tool {
	return mcptypes.Tool{
		Name: "execute_shell_command",
		Description: "Executes a shell command and returns the output (result). " +
			"The command runs in the user's login shell.",
		InputSchema: mcptypes.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"shell_command": map[string]any{
					"type":        "string",
					"description": "The shell command to execute.",
				},
			},
			Required: []string{"shell_command"},
		},
	}
}

func (f *ShellFunction) Execute(ctx context.Context, args map[string]any) string {
	command, ok := args["shell_command"].(string)
	if !ok || command == "" {
		return "Error: missing required argument shell_command"
	}

	shell := f.Shell
	if shell == "" {
		shell = "/bin/sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	output, err := cmd.CombinedOutput()

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return fmt.Sprintf("Error: %v", err)
		}
	}

	return fmt.Sprintf("Exit code: %d, Output:\n%s", exitCode, output)
}
