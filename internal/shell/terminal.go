package shell

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/chzyer/readline"

	"bofhshell/internal/logger"
	"bofhshell/pkg/bofhtypes"
)

// Terminal reads operator input. ReadLine returns io.EOF at end of input and
// bofhtypes.ErrInterrupted when the operator presses Ctrl-C.
type Terminal interface {
	ReadLine(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
}

// EditingTerminal is a Terminal with line editing. The session binds its command
// completion and highlighting to it; they apply to ReadCommand only, never to argument
// or login prompts read with ReadLine.
type EditingTerminal interface {
	Terminal
	Bind(completer readline.AutoCompleter, painter readline.Painter)
	ReadCommand(prompt string) (string, error)
}

// ReadlineTerminal is a Terminal on github.com/chzyer/readline with history, tab
// completion and masked password input.
type ReadlineTerminal struct {
	rl        *readline.Instance
	completer readline.AutoCompleter
	painter   readline.Painter
	// command is set while ReadCommand waits for input.
	command atomic.Bool
}

var _ EditingTerminal = (*ReadlineTerminal)(nil)

// NewReadlineTerminal opens the terminal. historyFile may be empty to disable history.
func NewReadlineTerminal(historyFile string) (*ReadlineTerminal, error) {
	t := &ReadlineTerminal{}
	rl, err := readline.NewEx(&readline.Config{
		HistoryFile:       historyFile,
		HistorySearchFold: true,
		AutoComplete:      t,
		Painter:           t,
		InterruptPrompt:   "^C",
		EOFPrompt:         "",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal: %w", err)
	}
	t.rl = rl
	logger.Debug("Terminal opened", "history", historyFile)
	return t, nil
}

// Bind sets the completion and highlighting used from the next keystroke on.
func (t *ReadlineTerminal) Bind(completer readline.AutoCompleter, painter readline.Painter) {
	t.completer = completer
	t.painter = painter
}

// Do implements readline.AutoCompleter by delegating to the bound completer.
func (t *ReadlineTerminal) Do(line []rune, pos int) ([][]rune, int) {
	if t.completer == nil || !t.command.Load() {
		return nil, 0
	}
	return t.completer.Do(line, pos)
}

// Paint implements readline.Painter by delegating to the bound painter.
func (t *ReadlineTerminal) Paint(line []rune, pos int) []rune {
	if t.painter == nil || !t.command.Load() {
		return line
	}
	return t.painter.Paint(line, pos)
}

// ReadCommand reads one command line with the bound completion and highlighting.
func (t *ReadlineTerminal) ReadCommand(prompt string) (string, error) {
	t.command.Store(true)
	defer t.command.Store(false)
	return t.ReadLine(prompt)
}

// ReadLine shows prompt and reads one line as plain text.
func (t *ReadlineTerminal) ReadLine(prompt string) (string, error) {
	t.rl.SetPrompt(prompt)
	line, err := t.rl.Readline()
	return line, mapReadError(err)
}

// ReadPassword reads one line without echo. It is never saved to history.
func (t *ReadlineTerminal) ReadPassword(prompt string) (string, error) {
	secret, err := t.rl.ReadPassword(prompt)
	return string(secret), mapReadError(err)
}

// Stderr returns a writer that prints above the prompt without corrupting it.
func (t *ReadlineTerminal) Stderr() io.Writer {
	return t.rl.Stderr()
}

// Close restores the terminal.
func (t *ReadlineTerminal) Close() error {
	return t.rl.Close()
}

func mapReadError(err error) error {
	if errors.Is(err, readline.ErrInterrupt) {
		return bofhtypes.ErrInterrupted
	}
	return err
}
