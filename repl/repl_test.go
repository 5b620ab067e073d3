package repl

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"shellm/engine"
	"shellm/model"
)

type recordedRun struct {
	prompt string
	mode   model.Mode
}

type fakeRunner struct {
	answer  string
	runs    []recordedRun
	history []model.Message
}

func (f *fakeRunner) Run(_ context.Context, opts engine.RunOptions, onChunk func(string)) (string, error) {
	f.runs = append(f.runs, recordedRun{prompt: opts.Prompt, mode: opts.Mode})
	if onChunk != nil {
		onChunk(f.answer)
	}
	return f.answer, nil
}

func (f *fakeRunner) ShowSession(string) ([]model.Message, error) {
	return f.history, nil
}

func runLoop(t *testing.T, runner Runner, opts engine.RunOptions, input string) string {
	t.Helper()
	var out bytes.Buffer
	r := New(runner, opts, "/bin/sh", strings.NewReader(input), &out)
	if err := r.Loop(context.Background()); err != nil {
		t.Fatalf("Loop: %v", err)
	}
	return out.String()
}

func TestExitEndsLoop(t *testing.T) {
	runner := &fakeRunner{answer: "hi"}
	runLoop(t, runner, engine.RunOptions{Mode: model.ModeChat}, "hello\nexit()\nnever sent\n")

	if len(runner.runs) != 1 {
		t.Fatalf("expected 1 turn before exit(), got %d", len(runner.runs))
	}
	if runner.runs[0].prompt != "hello" {
		t.Errorf("prompt = %q", runner.runs[0].prompt)
	}
}

func TestMultilineBlock(t *testing.T) {
	runner := &fakeRunner{answer: "ok"}
	input := "\"\"\"\nline one\nline two\n\"\"\"\nexit()\n"
	runLoop(t, runner, engine.RunOptions{Mode: model.ModeChat}, input)

	if len(runner.runs) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(runner.runs))
	}
	if runner.runs[0].prompt != "line one\nline two" {
		t.Errorf("prompt = %q, want joined block without delimiters", runner.runs[0].prompt)
	}
}

func TestBlankLinesSkipped(t *testing.T) {
	runner := &fakeRunner{answer: "ok"}
	runLoop(t, runner, engine.RunOptions{Mode: model.ModeChat}, "\n   \nreal prompt\nexit()\n")

	if len(runner.runs) != 1 || runner.runs[0].prompt != "real prompt" {
		t.Fatalf("blank lines must not become turns: %+v", runner.runs)
	}
}

func TestEOFEndsLoop(t *testing.T) {
	runner := &fakeRunner{answer: "ok"}
	runLoop(t, runner, engine.RunOptions{Mode: model.ModeChat}, "only prompt\n")

	if len(runner.runs) != 1 {
		t.Fatalf("expected 1 turn before EOF, got %d", len(runner.runs))
	}
}

func TestDescribeToken(t *testing.T) {
	runner := &fakeRunner{answer: "ls -la"}
	runLoop(t, runner, engine.RunOptions{Mode: model.ModeShell}, "list files\nd\nexit()\n")

	if len(runner.runs) != 2 {
		t.Fatalf("expected shell turn + describe turn, got %d", len(runner.runs))
	}
	if runner.runs[0].mode != model.ModeShell {
		t.Errorf("first turn mode = %q", runner.runs[0].mode)
	}
	if runner.runs[1].mode != model.ModeDescribeShell {
		t.Errorf("describe turn mode = %q", runner.runs[1].mode)
	}
	if runner.runs[1].prompt != "ls -la" {
		t.Errorf("describe turn must target the last command, got %q", runner.runs[1].prompt)
	}
}

func TestTokensAreTurnsOutsideShellMode(t *testing.T) {
	runner := &fakeRunner{answer: "ok"}
	runLoop(t, runner, engine.RunOptions{Mode: model.ModeChat}, "hi\ne\nexit()\n")

	if len(runner.runs) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(runner.runs))
	}
	if runner.runs[1].prompt != "e" {
		t.Errorf("chat mode must treat %q as a prompt", "e")
	}
}

func TestHistoryDigestOnResume(t *testing.T) {
	runner := &fakeRunner{
		answer: "ok",
		history: []model.Message{
			model.SystemMessage("You are shellm\nassistant"),
			model.UserMessage("earlier question"),
			model.AssistantMessage("earlier answer"),
		},
	}
	out := runLoop(t, runner, engine.RunOptions{Mode: model.ModeChat, SessionID: "resume"}, "exit()\n")

	if !strings.Contains(out, "Chat History") {
		t.Error("resume must print the history header")
	}
	if !strings.Contains(out, "earlier question") || !strings.Contains(out, "earlier answer") {
		t.Error("digest must include prior turns")
	}
	if strings.Contains(out, "You are shellm") {
		t.Error("digest must not print the system message")
	}
}

func TestNoDigestForTempSession(t *testing.T) {
	runner := &fakeRunner{
		answer:  "ok",
		history: []model.Message{model.UserMessage("stale")},
	}
	out := runLoop(t, runner, engine.RunOptions{Mode: model.ModeChat, SessionID: engine.TempSessionID}, "exit()\n")

	if strings.Contains(out, "Chat History") {
		t.Error("temp session must start without a history digest")
	}
}
