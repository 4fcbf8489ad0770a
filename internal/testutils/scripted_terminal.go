package testutils

import (
	"io"
	"sync"
)

type scriptedStep struct {
	line string
	err  error
}

// PromptRecord is one prompt shown by a ScriptedTerminal.
type PromptRecord struct {
	Prompt string
	Masked bool
}

// ScriptedTerminal answers prompts from a queue of lines, then returns io.EOF.
type ScriptedTerminal struct {
	mu      sync.Mutex
	steps   []scriptedStep
	prompts []PromptRecord
}

// NewScriptedTerminal creates a terminal that answers with lines, in order.
func NewScriptedTerminal(lines ...string) *ScriptedTerminal {
	t := &ScriptedTerminal{}
	for _, line := range lines {
		t.steps = append(t.steps, scriptedStep{line: line})
	}
	return t
}

// Push queues another answer.
func (t *ScriptedTerminal) Push(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.steps = append(t.steps, scriptedStep{line: line})
}

// PushError queues an error, e.g. an interrupt, as the next answer.
func (t *ScriptedTerminal) PushError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.steps = append(t.steps, scriptedStep{err: err})
}

// ReadLine returns the next queued answer.
func (t *ScriptedTerminal) ReadLine(prompt string) (string, error) {
	return t.next(prompt, false)
}

// ReadPassword returns the next queued answer and records the prompt as masked.
func (t *ScriptedTerminal) ReadPassword(prompt string) (string, error) {
	return t.next(prompt, true)
}

func (t *ScriptedTerminal) next(prompt string, masked bool) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.prompts = append(t.prompts, PromptRecord{Prompt: prompt, Masked: masked})
	if len(t.steps) == 0 {
		return "", io.EOF
	}
	step := t.steps[0]
	t.steps = t.steps[1:]
	return step.line, step.err
}

// Prompts returns every prompt shown so far.
func (t *ScriptedTerminal) Prompts() []PromptRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]PromptRecord(nil), t.prompts...)
}

// PromptTexts returns the text of every prompt shown so far.
func (t *ScriptedTerminal) PromptTexts() []string {
	var texts []string
	for _, p := range t.Prompts() {
		texts = append(texts, p.Prompt)
	}
	return texts
}

// Remaining returns the number of queued answers not consumed yet.
func (t *ScriptedTerminal) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.steps)
}
