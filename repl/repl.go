// Package repl implements the interactive read-eval-print loop. Input lines
// become completion turns against one persistent session; triple-quoted
// blocks allow multiline prompts and a handful of single-letter commands
// drive shell-mode follow-ups.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"

	"shellm/engine"
	"shellm/model"
)

const multilineDelimiter = `"""`

var (
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	noticeStyle = lipgloss.NewStyle().Faint(true)
)

// Runner is the slice of the engine the loop needs: one turn executor plus
// history access for the resume digest.
type Runner interface {
	Run(ctx context.Context, opts engine.RunOptions, onChunk func(string)) (string, error)
	ShowSession(id string) ([]model.Message, error)
}

// Repl drives an interactive session over a line-oriented input.
type Repl struct {
	runner Runner
	opts   engine.RunOptions
	shell  string
	in     io.Reader
	out    io.Writer

	lastAnswer string
}

// New builds a loop. opts is the per-turn template; its Prompt field is
// replaced with each input line.
func New(runner Runner, opts engine.RunOptions, shell string, in io.Reader, out io.Writer) *Repl {
	return &Repl{
		runner: runner,
		opts:   opts,
		shell:  shell,
		in:     in,
		out:    out,
	}
}

// Loop reads prompts until exit(), EOF or a failed turn. The first resumed
// turn replays the stored history as a digest so the user sees what the
// session already contains.
func (r *Repl) Loop(ctx context.Context) error {
	r.printIntro()
	r.printHistory()

	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(r.out, promptStyle.Render(">>> "))

		input, ok := r.readInput(scanner)
		if !ok {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		if input == "exit()" {
			return nil
		}

		if r.opts.Mode == model.ModeShell && r.lastAnswer != "" {
			if handled, err := r.handleShellCommand(ctx, strings.TrimSpace(input)); err != nil {
				return err
			} else if handled {
				continue
			}
		}

		opts := r.opts
		opts.Prompt = input

		answer, err := r.runner.Run(ctx, opts, func(chunk string) {
			fmt.Fprint(r.out, chunk)
		})
		if err != nil {
			return err
		}

		r.lastAnswer = answer
		r.opts.FreshSession = false
		fmt.Fprintln(r.out)
	}
}

// readInput returns one prompt: a single line, or the joined body of a
// triple-quoted block. The delimiters themselves are never part of the
// prompt.
func (r *Repl) readInput(scanner *bufio.Scanner) (string, bool) {
	if !scanner.Scan() {
		return "", false
	}
	line := scanner.Text()
	if strings.TrimSpace(line) != multilineDelimiter {
		return line, true
	}

	var lines []string
	for scanner.Scan() {
		next := scanner.Text()
		if strings.TrimSpace(next) == multilineDelimiter {
			break
		}
		lines = append(lines, next)
	}
	return strings.Join(lines, "\n"), true
}

// handleShellCommand interprets the shell-mode follow-up tokens against the
// last generated command: [e]xecute, [d]escribe, [c]opy.
func (r *Repl) handleShellCommand(ctx context.Context, input string) (bool, error) {
	switch input {
	case "e":
		return true, r.executeLast(ctx)
	case "d":
		return true, r.describeLast(ctx)
	case "c":
		if err := clipboard.WriteAll(r.lastAnswer); err != nil {
			fmt.Fprintln(r.out, noticeStyle.Render(fmt.Sprintf("clipboard unavailable: %v", err)))
			return true, nil
		}
		fmt.Fprintln(r.out, noticeStyle.Render("Copied command to clipboard."))
		return true, nil
	}
	return false, nil
}

func (r *Repl) executeLast(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, r.shell, "-c", r.lastAnswer)
	cmd.Stdin = os.Stdin
	cmd.Stdout = r.out
	cmd.Stderr = r.out
	// The command's own exit status is conversation feedback, not a loop
	// failure.
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return err
		}
	}
	return nil
}

func (r *Repl) describeLast(ctx context.Context) error {
	opts := engine.RunOptions{
		Prompt:    r.lastAnswer,
		Mode:      model.ModeDescribeShell,
		Caching:   r.opts.Caching,
		Streaming: r.opts.Streaming,
	}
	if _, err := r.runner.Run(ctx, opts, func(chunk string) {
		fmt.Fprint(r.out, chunk)
	}); err != nil {
		return err
	}
	fmt.Fprintln(r.out)
	return nil
}

func (r *Repl) printIntro() {
	switch r.opts.Mode {
	case model.ModeShell:
		fmt.Fprintln(r.out, noticeStyle.Render(
			"Entering shell REPL mode, type [e] to execute commands, [d] to describe them, [c] to copy, or exit() to quit."))
	default:
		fmt.Fprintln(r.out, noticeStyle.Render(
			`Entering REPL mode, type exit() to quit. Use """ to open and close multiline prompts.`))
	}
}

// printHistory replays an existing session as a digest when the loop resumes
// one, so earlier turns are visible before the first new prompt.
func (r *Repl) printHistory() {
	if r.opts.SessionID == "" || r.opts.FreshSession || r.opts.SessionID == engine.TempSessionID {
		return
	}

	messages, err := r.runner.ShowSession(r.opts.SessionID)
	if err != nil || len(messages) == 0 {
		return
	}

	fmt.Fprintln(r.out, headerStyle.Render("Chat History"))
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleUser:
			fmt.Fprintf(r.out, "%s %s\n", promptStyle.Render(">>>"), msg.Content)
		case model.RoleAssistant:
			if msg.Content != "" {
				fmt.Fprintln(r.out, msg.Content)
			}
		}
	}
	fmt.Fprintln(r.out)
}
