package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var errSourceUsage = errors.New("usage: source <file>")

// builtinFunc handles a reserved input. It returns true when the session should end.
type builtinFunc func(ctx context.Context, args []string) (bool, error)

// isReserved reports whether word is handled by the shell itself.
func isReserved(word string) bool {
	switch word {
	case "commands", "help", "quit", "source":
		return true
	}
	return false
}

func (s *Session) builtin(word string) builtinFunc {
	switch word {
	case "commands":
		return s.listCommands
	case "help":
		return s.help
	case "quit":
		return s.quit
	case "source":
		return s.source
	}
	return nil
}

// listCommands dumps the raw catalog, ordered by protocol command id.
func (s *Session) listCommands(_ context.Context, _ []string) (bool, error) {
	if s.catalog == nil {
		return false, nil
	}
	out, err := yaml.Marshal(s.catalog.Commands())
	if err != nil {
		return false, fmt.Errorf("failed to dump commands: %w", err)
	}
	s.printer.Print(string(out))
	return false, nil
}

func (s *Session) help(ctx context.Context, topic []string) (bool, error) {
	text, err := s.service.GetHelp(ctx, topic...)
	if err != nil {
		return false, err
	}
	s.printer.Println(text)
	return false, nil
}

func (s *Session) quit(_ context.Context, _ []string) (bool, error) {
	return true, nil
}

// source runs each line of a file as if typed, without prompting for missing
// arguments. Blank lines and lines starting with # are skipped.
func (s *Session) source(ctx context.Context, args []string) (bool, error) {
	if len(args) != 1 {
		return false, errSourceUsage
	}
	if s.sourcing {
		return false, fmt.Errorf("%w: source files cannot be nested", errSourceUsage)
	}

	file, err := os.Open(args[0])
	if err != nil {
		return false, err
	}
	defer file.Close()

	s.sourcing = true
	defer func() { s.sourcing = false }()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s.printer.Command(s.options.Prompt + line)
		if s.Execute(ctx, line) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("reading %s: %w", args[0], err)
	}
	return false, nil
}

func joinCandidates(candidates []string) string {
	return strings.Join(candidates, ", ")
}
