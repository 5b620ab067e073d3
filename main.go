package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"shellm/cache"
	"shellm/chat"
	"shellm/config"
	"shellm/engine"
	"shellm/functions"
	"shellm/model"
	"shellm/provider"
	"shellm/repl"
	"shellm/roles"
)

const Version = "v0.1.0"

// newSessionID is the sentinel value of -chat and -repl that asks for a
// generated session id.
const newSessionID = "new"

type cliOptions struct {
	shell         bool
	describeShell bool
	code          bool

	chatID string
	replID string

	roleName    string
	createRole  string
	showRole    string
	deleteRole  string
	listRoles   bool
	roleVariant string

	listChats  bool
	showChat   string
	deleteChat string
	exportChat string
	search     string

	modelID     string
	temperature float64
	topP        float64

	noCache   bool
	noStream  bool
	functions bool

	listModels bool
	ping       bool
	version    bool
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts cliOptions

	flag.BoolVar(&opts.shell, "s", false, "generate and return a shell command")
	flag.BoolVar(&opts.shell, "shell", false, "generate and return a shell command")
	flag.BoolVar(&opts.describeShell, "d", false, "describe a shell command")
	flag.BoolVar(&opts.describeShell, "describe-shell", false, "describe a shell command")
	flag.BoolVar(&opts.code, "c", false, "generate only code")
	flag.BoolVar(&opts.code, "code", false, "generate only code")

	flag.StringVar(&opts.chatID, "chat", "", "continue conversation under the given session id (use \"new\" to generate one)")
	flag.StringVar(&opts.replID, "repl", "", "start an interactive REPL under the given session id")

	flag.StringVar(&opts.roleName, "role", "", "use a named role for this turn")
	flag.StringVar(&opts.createRole, "create-role", "", "create a role with the given name; the role text is the prompt argument or stdin")
	flag.StringVar(&opts.roleVariant, "role-variant", "plain", "output variant of a created role: plain, shell, code or description")
	flag.StringVar(&opts.showRole, "show-role", "", "print a role definition")
	flag.StringVar(&opts.deleteRole, "delete-role", "", "delete a stored role")
	flag.BoolVar(&opts.listRoles, "list-roles", false, "list all roles")

	flag.BoolVar(&opts.listChats, "list-chats", false, "list stored sessions")
	flag.StringVar(&opts.showChat, "show-chat", "", "print a session transcript")
	flag.StringVar(&opts.deleteChat, "delete-chat", "", "delete a stored session")
	flag.StringVar(&opts.exportChat, "export-chat", "", "export a session to a JSON file in the current directory")
	flag.StringVar(&opts.search, "search", "", "search all stored sessions for the given text")

	flag.StringVar(&opts.modelID, "model", "", "override the configured model")
	flag.Float64Var(&opts.temperature, "temperature", -1, "override the sampling temperature")
	flag.Float64Var(&opts.topP, "top-p", -1, "override nucleus sampling")

	flag.BoolVar(&opts.noCache, "no-cache", false, "bypass the completion cache")
	flag.BoolVar(&opts.noStream, "no-stream", false, "print the answer only when complete")
	flag.BoolVar(&opts.functions, "functions", false, "allow the model to call local functions")

	flag.BoolVar(&opts.listModels, "list-models", false, "list models offered by the provider")
	flag.BoolVar(&opts.ping, "ping", false, "check that the provider is reachable")
	flag.BoolVar(&opts.version, "version", false, "print version and exit")
	flag.Parse()

	if opts.version {
		fmt.Println("shellm", Version)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dispatch(ctx, &opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if isValidationError(err) {
			return 2
		}
		return 1
	}
	return 0
}

// isValidationError reports errors detected before any work is done; they
// exit with a distinct status so scripts can tell misuse from failure.
func isValidationError(err error) bool {
	return errors.Is(err, model.ErrModeConflict) ||
		errors.Is(err, model.ErrRoleNotFound) ||
		errors.Is(err, model.ErrRoleModeConflict) ||
		errors.Is(err, errUsage)
}

var errUsage = errors.New("invalid usage")

func dispatch(ctx context.Context, opts *cliOptions) error {
	mode, err := model.SelectMode(opts.shell, opts.describeShell, opts.code)
	if err != nil {
		return err
	}
	if opts.chatID != "" && opts.replID != "" {
		return fmt.Errorf("%w: --chat and --repl are mutually exclusive", errUsage)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	config.InitDebugLog(cfg.DataDir())
	applyOverrides(cfg, opts)

	e, closeEngine, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer closeEngine()

	prompt, err := readPrompt()
	if err != nil {
		return err
	}

	if done, err := runManagement(ctx, e, opts, prompt); done {
		return err
	}

	runOpts := engine.RunOptions{
		Prompt:    prompt,
		Mode:      mode,
		RoleName:  opts.roleName,
		Caching:   cfg.Caching && !opts.noCache,
		Streaming: cfg.Streaming && !opts.noStream,
		Functions: cfg.Functions || opts.functions,
	}

	if opts.replID != "" {
		runOpts.SessionID = resolveSessionID(opts.replID)
		runOpts.FreshSession = opts.replID == newSessionID
		loop := repl.New(e, runOpts, cfg.Shell, os.Stdin, os.Stdout)
		return loop.Loop(ctx)
	}

	if prompt == "" {
		return fmt.Errorf("%w: a prompt is required", errUsage)
	}

	runOpts.SessionID = resolveSessionID(opts.chatID)
	runOpts.FreshSession = opts.chatID == newSessionID

	streamed := false
	answer, err := e.Run(ctx, runOpts, func(chunk string) {
		streamed = true
		fmt.Print(chunk)
	})
	if err != nil {
		return err
	}
	if streamed {
		fmt.Println()
	} else {
		fmt.Println(answer)
	}
	return nil
}

func resolveSessionID(id string) string {
	if id == newSessionID {
		generated := uuid.New().String()
		fmt.Fprintf(os.Stderr, "Session id: %s\n", generated)
		return generated
	}
	return id
}

func applyOverrides(cfg *config.Config, opts *cliOptions) {
	if opts.modelID != "" {
		cfg.DefaultModel = opts.modelID
	}
	if opts.temperature >= 0 {
		cfg.Temperature = opts.temperature
	}
	if opts.topP >= 0 {
		cfg.TopP = opts.topP
	}
}

func buildEngine(cfg *config.Config) (*engine.Engine, func(), error) {
	p, err := provider.NewProvider(provider.Config{
		Type:    provider.MapProviderIDToType(cfg.Provider),
		BaseURL: cfg.BaseURL,
		Model:   cfg.DefaultModel,
		APIKey:  cfg.APIKey,
	})
	if err != nil {
		return nil, nil, err
	}

	roleStore, err := roles.NewStore(cfg.RolesDir(), cfg.OS, cfg.Shell)
	if err != nil {
		return nil, nil, err
	}
	sessionStore, err := chat.NewStore(cfg.SessionsDir(), cfg.ChatMessages)
	if err != nil {
		return nil, nil, err
	}
	completionCache, err := cache.New(cfg.CachePath(), cfg.CacheEntries)
	if err != nil {
		return nil, nil, err
	}

	dispatcher := functions.NewDispatcher(cfg.Shell)
	e := engine.New(cfg, p, roleStore, sessionStore, completionCache, dispatcher)
	return e, func() { completionCache.Close() }, nil
}

// readPrompt combines piped stdin with the positional arguments, piped
// content first. An interactive terminal contributes nothing.
func readPrompt() (string, error) {
	args := strings.TrimSpace(strings.Join(flag.Args(), " "))

	stat, err := os.Stdin.Stat()
	if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
		return args, nil
	}

	piped, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	pipedText := strings.TrimSpace(string(piped))

	switch {
	case pipedText == "":
		return args, nil
	case args == "":
		return pipedText, nil
	default:
		return pipedText + "\n\n" + args, nil
	}
}

// runManagement handles the non-completion subcommands. It reports whether
// the invocation was fully handled.
func runManagement(ctx context.Context, e *engine.Engine, opts *cliOptions, prompt string) (bool, error) {
	switch {
	case opts.ping:
		if err := e.Ping(ctx); err != nil {
			return true, err
		}
		fmt.Println("provider is reachable")
		return true, nil

	case opts.listModels:
		models, err := e.ListModels(ctx)
		if err != nil {
			return true, err
		}
		for _, m := range models {
			fmt.Println(m.Name)
		}
		return true, nil

	case opts.listRoles:
		list, err := e.ListRoles()
		if err != nil {
			return true, err
		}
		for _, r := range list {
			fmt.Printf("%s (%s)\n", r.Name, r.Expect)
		}
		return true, nil

	case opts.showRole != "":
		r, err := e.ShowRole(opts.showRole)
		if err != nil {
			return true, err
		}
		fmt.Println(r.RoleText)
		return true, nil

	case opts.createRole != "":
		if prompt == "" {
			return true, fmt.Errorf("%w: --create-role needs the role text as argument or on stdin", errUsage)
		}
		variant := model.Expect(opts.roleVariant)
		switch variant {
		case model.ExpectPlain, model.ExpectShell, model.ExpectCode, model.ExpectDescription:
		default:
			return true, fmt.Errorf("%w: unknown role variant %q", errUsage, opts.roleVariant)
		}
		r, err := e.CreateRole(opts.createRole, prompt, variant)
		if err != nil {
			return true, err
		}
		fmt.Printf("Created role %q\n", r.Name)
		return true, nil

	case opts.deleteRole != "":
		if err := e.DeleteRole(opts.deleteRole); err != nil {
			return true, err
		}
		fmt.Printf("Deleted role %q\n", opts.deleteRole)
		return true, nil

	case opts.listChats:
		sessions, err := e.ListSessions()
		if err != nil {
			return true, err
		}
		for _, s := range sessions {
			fmt.Printf("%s\t%d messages\t%s\n", s.ID, s.MessageCount, s.UpdatedAt.Format(time.RFC3339))
		}
		return true, nil

	case opts.showChat != "":
		messages, err := e.ShowSession(opts.showChat)
		if err != nil {
			return true, err
		}
		for _, m := range messages {
			fmt.Printf("%s: %s\n", m.Role, m.Content)
		}
		return true, nil

	case opts.deleteChat != "":
		if err := e.DeleteSession(opts.deleteChat); err != nil {
			return true, err
		}
		fmt.Printf("Deleted session %q\n", opts.deleteChat)
		return true, nil

	case opts.exportChat != "":
		path := filepath.Join(".", fmt.Sprintf("shellm-session-%s-%s.json",
			chat.SanitizeID(opts.exportChat), time.Now().Format("20060102-150405")))
		if err := e.ExportSession(opts.exportChat, path); err != nil {
			return true, err
		}
		fmt.Printf("Exported session to %s\n", path)
		return true, nil

	case opts.search != "":
		matches, err := e.SearchSessions(opts.search)
		if err != nil {
			return true, err
		}
		for _, m := range matches {
			fmt.Printf("%s\t#%d\t%s: %s\n", m.SessionID, m.MessageIndex, m.Role, m.Preview)
		}
		return true, nil
	}

	return false, nil
}
