// Package shell runs the interactive session: it reads command lines, resolves them
// against the service's catalog, collects missing arguments, dispatches the command and
// renders the reply.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"bofhshell/internal/catalog"
	"bofhshell/internal/completion"
	"bofhshell/internal/elicit"
	"bofhshell/internal/logger"
	"bofhshell/internal/output"
	"bofhshell/internal/parser"
	"bofhshell/internal/render"
	"bofhshell/pkg/bofhtypes"
)

// DefaultPrompt is the command prompt used when none is configured.
const DefaultPrompt = "jbofh> "

const farewell = "I'll be back"

// Credentials is a username and password pair used to log in without prompting.
type Credentials struct {
	Username string
	Password string
}

// Options configures a Session.
type Options struct {
	// Prompt is shown when reading a command line.
	Prompt string
	// ClientName and Version are reported to the service for the message of the day.
	ClientName string
	Version    string
	// Username is offered as the default at the login prompt.
	Username string
	// Bootstrap, when set, logs in without prompting.
	Bootstrap *Credentials
	// Highlight colours resolved commands while typing.
	Highlight bool
	// NewID returns a correlation id for each command line.
	NewID func() string
}

// Session is one login to the command service. It owns the catalog and every cache
// derived from it; nothing outlives the session.
type Session struct {
	service  bofhtypes.CommandService
	terminal Terminal
	printer  *output.Printer
	options  Options
	log      *log.Logger

	catalog  *catalog.Catalog
	renderer *render.Renderer
	elicitor *elicit.Elicitor
	adapter  *completion.Adapter

	username string
	password string
	// sourcing is set while a source file runs.
	sourcing bool
}

// New creates a session. It does not contact the service until Start.
func New(service bofhtypes.CommandService, terminal Terminal, printer *output.Printer, options Options) *Session {
	if options.Prompt == "" {
		options.Prompt = DefaultPrompt
	}
	if options.NewID == nil {
		options.NewID = uuid.NewString
	}

	s := &Session{
		service:  service,
		terminal: terminal,
		printer:  printer,
		options:  options,
		log:      logger.NewStyledLogger("session"),
		renderer: render.New(service, printer),
		elicitor: elicit.New(service, terminal, printer),
	}
	s.adapter = completion.NewAdapter(s.trie)

	if editing, ok := terminal.(EditingTerminal); ok {
		editing.Bind(s.adapter, &commandHighlighter{source: s.currentCatalog, enabled: options.Highlight})
	}
	return s
}

func (s *Session) trie() *catalog.Trie {
	if s.catalog == nil {
		return nil
	}
	return s.catalog.Trie()
}

func (s *Session) currentCatalog() *catalog.Catalog {
	return s.catalog
}

// Catalog returns the current catalog, or nil before Start.
func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

// Completer returns the tab completion of this session.
func (s *Session) Completer() *completion.Adapter {
	return s.adapter
}

// Start logs in, shows the message of the day and loads the catalog.
func (s *Session) Start(ctx context.Context) error {
	if err := s.login(ctx); err != nil {
		return err
	}

	motd, err := s.service.GetMotd(ctx, s.options.ClientName, s.options.Version)
	if err != nil {
		s.log.Warn("Cannot fetch message of the day", "error", err)
	} else if motd != "" {
		s.printer.Highlight(motd)
	}

	if err := s.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load commands: %w", err)
	}

	s.printer.Info(fmt.Sprintf("Welcome to %s %s, type \"help\" for help", s.options.ClientName, s.options.Version))
	return nil
}

func (s *Session) login(ctx context.Context) error {
	if creds := s.options.Bootstrap; creds != nil {
		s.username, s.password = creds.Username, creds.Password
		return s.service.Login(ctx, creds.Username, creds.Password)
	}

	username, err := s.terminal.ReadLine(fmt.Sprintf("Username [%s]: ", s.options.Username))
	if err != nil {
		return fmt.Errorf("reading username: %w", err)
	}
	if username == "" {
		username = s.options.Username
	}
	password, err := s.terminal.ReadPassword("Password:")
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	if err := s.service.Login(ctx, username, password); err != nil {
		return err
	}
	s.username = username
	s.log.Debug("Logged in", "user", username)
	return nil
}

// Refresh reloads the catalog. The completion tree and the format cache are rebuilt
// from the new catalog.
func (s *Session) Refresh(ctx context.Context) error {
	commands, err := s.service.FetchCatalog(ctx)
	if err != nil {
		return err
	}
	s.catalog = catalog.New(commands)
	s.renderer.Reset()
	s.log.Debug("Catalog loaded", "commands", s.catalog.Len())
	return nil
}

// Reauthenticate logs in again as the same user after the session expired.
func (s *Session) Reauthenticate(ctx context.Context) error {
	s.printer.Warning("Session expired, you must re-authenticate")
	password := s.password
	if s.options.Bootstrap == nil {
		var err error
		password, err = s.terminal.ReadPassword("Password:")
		if err != nil {
			return elicitAbort(err)
		}
	}
	return s.service.Login(ctx, s.username, password)
}

func (s *Session) readCommand() (string, error) {
	if editing, ok := s.terminal.(EditingTerminal); ok {
		return editing.ReadCommand(s.options.Prompt)
	}
	return s.terminal.ReadLine(s.options.Prompt)
}

// Run reads and executes command lines until end of input or quit, then logs out.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := s.readCommand()
		if errors.Is(err, bofhtypes.ErrInterrupted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return s.close(ctx)
		}
		if err != nil {
			return fmt.Errorf("reading command: %w", err)
		}

		if s.Execute(ctx, line) {
			return s.close(ctx)
		}
	}
}

func (s *Session) close(ctx context.Context) error {
	s.printer.Println(farewell)
	if err := s.service.Logout(ctx); err != nil {
		s.log.Warn("Logout failed", "error", err)
	}
	return nil
}

// Execute runs one command line and reports any error to the operator. It returns true
// when the operator asked to quit.
func (s *Session) Execute(ctx context.Context, line string) (quit bool) {
	cid := s.options.NewID()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Recovered from panic", "cid", cid, "panic", r, "stack", string(debug.Stack()))
			s.printer.Error(fmt.Sprintf("Unexpected error (bug): %v", r))
			quit = false
		}
	}()

	quit, err := s.execute(ctx, cid, line)
	if err != nil {
		s.report(cid, err)
	}
	return quit
}

func (s *Session) execute(ctx context.Context, cid, line string) (bool, error) {
	tokens, err := parser.Split(line)
	if err != nil {
		return false, err
	}
	if len(tokens) == 0 {
		return false, nil
	}

	if builtin := s.builtin(tokens[0]); builtin != nil {
		return builtin(ctx, tokens[1:])
	}
	return false, s.runCommand(ctx, cid, tokens)
}

// runCommand resolves, completes, dispatches and renders one command.
func (s *Session) runCommand(ctx context.Context, cid string, tokens []string) error {
	if s.catalog == nil {
		return fmt.Errorf("%w: no commands loaded", bofhtypes.ErrInternal)
	}

	id, args, err := s.catalog.Resolve(tokens)
	if err != nil {
		return err
	}
	def, ok := s.catalog.Definition(id)
	if !ok {
		return fmt.Errorf("%w: %s resolved but has no definition", bofhtypes.ErrInternal, id)
	}

	if !s.sourcing {
		args, err = s.elicitor.Elicit(ctx, id, def.Params, args)
		if err != nil {
			return err
		}
	}

	logger.CommandExecution(s.log, cid, id, bofhtypes.MaskArgs(args, def.Params.SecretPositions()))
	reply, err := s.service.Dispatch(ctx, id, args)
	if err != nil {
		return err
	}
	return s.renderer.Render(ctx, id, reply)
}

// report shows err to the operator. Expected failures print their message; anything
// else is a bug.
func (s *Session) report(cid string, err error) {
	var serviceErr *bofhtypes.ServiceError
	var ambiguous *bofhtypes.AmbiguousCommandError
	var formatting *bofhtypes.FormattingError
	var pathErr *fs.PathError

	switch {
	case errors.Is(err, bofhtypes.ErrInputAbort):
		s.log.Debug("Input aborted", "cid", cid)
	case errors.As(err, &serviceErr):
		s.log.Debug("Service error", "cid", cid, "method", serviceErr.Method, "error", err)
		s.printer.Error(serviceErr.Message)
	case errors.As(err, &ambiguous):
		s.printer.Error(fmt.Sprintf("Ambiguous command, %d matches: %s", ambiguous.Count, joinCandidates(ambiguous.Candidates)))
	case errors.Is(err, parser.ErrUnterminatedQuote):
		s.printer.Error("Error parsing command: " + err.Error())
	case errors.As(err, &formatting):
		s.log.Error("Formatting failed", "cid", cid, "error", err)
		s.printer.Error(render.FormattingNotice)
	case errors.Is(err, bofhtypes.ErrUnknownCommand),
		errors.Is(err, bofhtypes.ErrBadParameterSpec),
		errors.Is(err, bofhtypes.ErrMissingFormatSpec),
		errors.Is(err, errSourceUsage),
		errors.As(err, &pathErr):
		s.log.Debug("Command failed", "cid", cid, "error", err)
		s.printer.Error("Error: " + err.Error())
	default:
		s.log.Error("Unexpected error", "cid", cid, "error", err)
		s.printer.Error(fmt.Sprintf("Unexpected error (bug): %v", err))
	}
}

func elicitAbort(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, bofhtypes.ErrInterrupted) {
		return bofhtypes.ErrInputAbort
	}
	return err
}
