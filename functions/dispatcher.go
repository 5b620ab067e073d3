// Package functions exposes local capabilities the model can invoke during a
// completion: each function publishes a JSON-schema tool declaration and an
// executor. Execution failures are reported back to the model as text so the
// conversation can continue.
package functions

import (
	"context"
	"fmt"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// Function is a locally executable capability offered to the model.
type Function interface {
	// Tool returns the schema advertised to the provider.
	Tool() mcptypes.Tool
	// Execute runs the function. Failures are encoded into the returned
	// text; they are conversation content, not Go errors.
	Execute(ctx context.Context, args map[string]any) string
}

// Dispatcher routes model-issued tool calls to registered functions.
type Dispatcher struct {
	functions map[string]Function
	order     []string
}

// NewDispatcher builds a dispatcher carrying the platform's builtin
// functions: shell execution everywhere, AppleScript on macOS.
func NewDispatcher(shell string) *Dispatcher {
	d := &Dispatcher{functions: make(map[string]Function)}
	d.Register(&ShellFunction{Shell: shell})
	registerPlatformFunctions(d)
	return d
}

// Register adds a function, replacing any previous one of the same name.
func (d *Dispatcher) Register(fn Function) {
	name := fn.Tool().Name
	if _, exists := d.functions[name]; !exists {
		d.order = append(d.order, name)
	}
	d.functions[name] = fn
}

// Schemas returns the tool declarations in registration order, for inclusion
// in completion requests.
func (d *Dispatcher) Schemas() []mcptypes.Tool {
	tools := make([]mcptypes.Tool, 0, len(d.order))
	for _, name := range d.order {
		tools = append(tools, d.functions[name].Tool())
	}
	return tools
}

// Execute runs the named function and returns its textual result. Unknown
// names and malformed arguments produce an error message for the model rather
// than a failure: the turn must survive a bad tool call.
func (d *Dispatcher) Execute(ctx context.Context, name string, args map[string]any) string {
	fn, ok := d.functions[name]
	if !ok {
		return fmt.Sprintf("Error: function %q does not exist", name)
	}
	return fn.Execute(ctx, args)
}
