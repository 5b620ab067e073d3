package engine

import (
	"context"
	"fmt"
	"strings"

	"shellm/cache"
	"shellm/model"
)

// TempSessionID names the throwaway session the REPL uses when no id is
// given. Its previous history is discarded on every start.
const TempSessionID = "temp"

// RunOptions selects the behavior of one completion turn.
type RunOptions struct {
	Prompt    string
	Mode      model.Mode
	SessionID string
	RoleName  string
	Caching   bool
	Streaming bool
	Functions bool

	// FreshSession discards any existing history of SessionID before the
	// turn. The temp session is always fresh on the first turn.
	FreshSession bool
}

// Run executes one completion turn. onChunk receives response text as it
// arrives when streaming, or the whole answer once otherwise; it may be nil.
// The returned string is the post-processed final answer.
func (e *Engine) Run(ctx context.Context, opts RunOptions, onChunk func(string)) (string, error) {
	role, err := e.roles.Resolve(opts.RoleName, opts.Mode)
	if err != nil {
		return "", err
	}

	if opts.Mode != model.ModeChat && !model.Compatible(role.Expect, opts.Mode) {
		return "", fmt.Errorf("%w: role %q expects %s output", model.ErrRoleModeConflict, role.Name, role.Expect)
	}

	history, err := e.loadHistory(opts)
	if err != nil {
		return "", err
	}

	// A continued session stays bound to the role that initiated it. The
	// check runs before any network call so a conflicting turn costs nothing.
	if len(history) > 0 && history[0].Role == model.RoleSystem {
		if expect, ok := e.roles.DetectExpect(history[0].Content); ok {
			if !model.Compatible(expect, opts.Mode) {
				return "", fmt.Errorf("%w: session %q was started for %s output", model.ErrRoleModeConflict, opts.SessionID, expect)
			}
		}
	}

	messages := make([]model.Message, 0, len(history)+2)
	if len(history) == 0 {
		messages = append(messages, role.SystemMessage())
	} else {
		messages = append(messages, history...)
	}
	messages = append(messages, model.UserMessage(opts.Prompt))

	turn := []model.Message{model.UserMessage(opts.Prompt)}

	// Shell and code answers are rewritten by postProcess, so their raw
	// stream is withheld and the processed answer is emitted once instead;
	// the terminal must never show fences the caller doesn't get back.
	emit := onChunk
	if role.Expect == model.ExpectShell || role.Expect == model.ExpectCode {
		emit = nil
	}

	answer, toolMessages, err := e.complete(ctx, messages, opts, emit)
	if err != nil {
		return "", err
	}

	final := postProcess(answer, role.Expect)
	if emit == nil && onChunk != nil {
		onChunk(final)
	}
	turn = append(turn, toolMessages...)
	turn = append(turn, model.AssistantMessage(final))

	if opts.SessionID != "" {
		if err := e.persistTurn(opts, history, role.SystemMessage(), turn); err != nil {
			return "", err
		}
	}

	return final, nil
}

func (e *Engine) loadHistory(opts RunOptions) ([]model.Message, error) {
	if opts.SessionID == "" {
		return nil, nil
	}
	if opts.FreshSession || opts.SessionID == TempSessionID {
		return nil, nil
	}
	return e.sessions.Load(opts.SessionID)
}

func (e *Engine) persistTurn(opts RunOptions, history []model.Message, system model.Message, turn []model.Message) error {
	if err := e.sessions.Lock(opts.SessionID); err != nil {
		return err
	}
	defer e.sessions.Unlock(opts.SessionID)

	if len(history) == 0 {
		full := append([]model.Message{system}, turn...)
		return e.sessions.Overwrite(opts.SessionID, full)
	}
	return e.sessions.Append(opts.SessionID, turn...)
}

// complete drives the provider until it yields a text answer, executing
// function calls in between. Rounds are bounded: past the limit one last
// request is sent without tools so the model has to answer in text.
func (e *Engine) complete(ctx context.Context, messages []model.Message, opts RunOptions, onChunk func(string)) (string, []model.Message, error) {
	var tools = e.dispatcher.Schemas()
	if !opts.Functions {
		tools = nil
	}

	maxRounds := e.cfg.ToolRounds
	if maxRounds <= 0 {
		maxRounds = 1
	}

	var toolMessages []model.Message

	for round := 0; ; round++ {
		// Past the round ceiling the request goes out without tools, so
		// the model has to answer in text and the loop terminates.
		forced := round >= maxRounds

		req := model.Request{
			Messages:    messages,
			Tools:       tools,
			Temperature: e.cfg.Temperature,
			TopP:        e.cfg.TopP,
		}
		if forced {
			req.Tools = nil
		}

		text, calls, err := e.completeOnce(ctx, req, opts, onChunk)
		if err != nil {
			return "", nil, err
		}

		if len(calls) == 0 || forced {
			return text, toolMessages, nil
		}

		for i, call := range calls {
			content := ""
			if i == 0 {
				content = text
			}
			assistant := model.Message{
				Role:    model.RoleAssistant,
				Content: content,
				FunctionCall: &model.FunctionCall{
					Name:      call.Name,
					Arguments: call.ArgumentsJSON(),
				},
			}
			result := e.dispatcher.Execute(ctx, call.Name, call.Arguments)
			function := model.FunctionMessage(call.Name, result)

			messages = append(messages, assistant, function)
			toolMessages = append(toolMessages, assistant, function)
		}
	}
}

// completeOnce issues one request, consulting the cache first. Only pure text
// answers are cached: a function-call intent cannot be replayed as text.
func (e *Engine) completeOnce(ctx context.Context, req model.Request, opts RunOptions, onChunk func(string)) (string, []model.ToolCall, error) {
	key := cache.Fingerprint(req, e.provider.GetModel())

	if opts.Caching {
		if value, ok, err := e.cache.Get(key); err == nil && ok {
			if onChunk != nil {
				onChunk(value)
			}
			return value, nil, nil
		}
	}

	var sb strings.Builder
	var calls []model.ToolCall

	err := e.provider.Complete(ctx, req, func(chunk string, toolCalls []model.ToolCall) error {
		if chunk != "" {
			sb.WriteString(chunk)
			if opts.Streaming && onChunk != nil {
				onChunk(chunk)
			}
		}
		calls = append(calls, toolCalls...)
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	text := sb.String()
	if !opts.Streaming && len(calls) == 0 && onChunk != nil {
		onChunk(text)
	}

	if opts.Caching && len(calls) == 0 {
		if err := e.cache.Put(key, text); err != nil {
			return "", nil, err
		}
	}

	return text, calls, nil
}

// postProcess normalizes the final answer for its expected output variant.
// Shell commands lose surrounding whitespace; code answers lose Markdown
// fences the model added despite instructions.
func postProcess(text string, expect model.Expect) string {
	switch expect {
	case model.ExpectShell:
		return strings.TrimSpace(text)
	case model.ExpectCode:
		return stripCodeFences(strings.TrimSpace(text))
	default:
		return text
	}
}

// stripCodeFences removes one enclosing Markdown code fence, language tag
// included. Fences inside the body are left alone.
func stripCodeFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}

	body, ok := strings.CutPrefix(text, "```")
	if !ok {
		return text
	}
	// Drop the language tag on the opening fence line.
	if idx := strings.Index(body, "\n"); idx >= 0 {
		body = body[idx+1:]
	} else {
		return text
	}

	body, ok = strings.CutSuffix(strings.TrimRight(body, "\n"), "```")
	if !ok {
		return text
	}
	return strings.TrimRight(body, "\n")
}
