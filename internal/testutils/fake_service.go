package testutils

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"bofhshell/pkg/bofhtypes"
)

// Call is one recorded FakeService invocation.
type Call struct {
	Method string
	ID     string
	Args   []string
}

// FakeService implements bofhtypes.CommandService in memory and records every call.
type FakeService struct {
	mu sync.Mutex

	Catalog bofhtypes.CommandCatalog
	Replies map[string]bofhtypes.Reply
	Formats map[string]bofhtypes.FormatSpec
	// Defaults answers GetDefaultParam per command id.
	Defaults map[string]string
	// Prompts is consumed one answer per CallPromptFunc.
	Prompts []bofhtypes.PromptInfo
	// Help is keyed by the topic path joined with spaces.
	Help map[string]string
	Motd string

	// ValidUser and ValidPassword, when set, are the only accepted credentials.
	ValidUser     string
	ValidPassword string

	calls []Call

	// For testing error scenarios
	dispatchErrors map[string]error
	catalogError   error
	formatError    error
	panicOn        string
}

// NewFakeService creates a fake service serving catalog.
func NewFakeService(catalog bofhtypes.CommandCatalog) *FakeService {
	return &FakeService{
		Catalog:        catalog,
		Replies:        make(map[string]bofhtypes.Reply),
		Formats:        make(map[string]bofhtypes.FormatSpec),
		Defaults:       make(map[string]string),
		Help:           make(map[string]string),
		dispatchErrors: make(map[string]error),
	}
}

// SetDispatchError makes Dispatch of id fail with err.
func (f *FakeService) SetDispatchError(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatchErrors[id] = err
}

// SetCatalogError makes FetchCatalog fail with err.
func (f *FakeService) SetCatalogError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catalogError = err
}

// SetFormatError makes GetFormatSuggestion fail with err.
func (f *FakeService) SetFormatError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.formatError = err
}

// PanicOnDispatch makes Dispatch of id panic, simulating a client bug.
func (f *FakeService) PanicOnDispatch(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.panicOn = id
}

// Calls returns every recorded call.
func (f *FakeService) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the recorded calls of one method.
func (f *FakeService) CallsTo(method string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// CallCount returns how often method was called.
func (f *FakeService) CallCount(method string) int {
	return len(f.CallsTo(method))
}

func (f *FakeService) record(method, id string, args []string) {
	f.calls = append(f.calls, Call{Method: method, ID: id, Args: append([]string(nil), args...)})
}

// Login implements CommandService.Login.
func (f *FakeService) Login(_ context.Context, username, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("login", "", []string{username})

	if f.ValidUser != "" && (username != f.ValidUser || password != f.ValidPassword) {
		return bofhtypes.NewServiceError("login", nil, "Error: Unknown username or password")
	}
	return nil
}

// Logout implements CommandService.Logout.
func (f *FakeService) Logout(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("logout", "", nil)
	return nil
}

// FetchCatalog implements CommandService.FetchCatalog.
func (f *FakeService) FetchCatalog(_ context.Context) (bofhtypes.CommandCatalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("get_commands", "", nil)

	if f.catalogError != nil {
		return nil, f.catalogError
	}
	return f.Catalog, nil
}

// Dispatch implements CommandService.Dispatch.
func (f *FakeService) Dispatch(_ context.Context, id string, args []string) (bofhtypes.Reply, error) {
	f.mu.Lock()
	f.record("run_command", id, args)
	panicOn := f.panicOn
	err := f.dispatchErrors[id]
	reply, ok := f.Replies[id]
	f.mu.Unlock()

	if panicOn == id {
		panic(fmt.Sprintf("fake service asked to panic on %s", id))
	}
	if err != nil {
		return bofhtypes.Reply{}, err
	}
	if !ok {
		return bofhtypes.NoReply(), nil
	}
	return reply, nil
}

// GetDefaultParam implements CommandService.GetDefaultParam.
func (f *FakeService) GetDefaultParam(_ context.Context, id string, args []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("get_default_param", id, args)
	return f.Defaults[id], nil
}

// CallPromptFunc implements CommandService.CallPromptFunc.
func (f *FakeService) CallPromptFunc(_ context.Context, id string, args []string) (bofhtypes.PromptInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("call_prompt_func", id, args)

	if len(f.Prompts) == 0 {
		return bofhtypes.PromptInfo{}, bofhtypes.NewServiceError("call_prompt_func", nil, "Error: no more prompts")
	}
	info := f.Prompts[0]
	f.Prompts = f.Prompts[1:]
	return info, nil
}

// GetFormatSuggestion implements CommandService.GetFormatSuggestion.
func (f *FakeService) GetFormatSuggestion(_ context.Context, id string) (bofhtypes.FormatSpec, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("get_format_suggestion", id, nil)

	if f.formatError != nil {
		return bofhtypes.FormatSpec{}, false, f.formatError
	}
	spec, ok := f.Formats[id]
	return spec, ok, nil
}

// GetHelp implements CommandService.GetHelp.
func (f *FakeService) GetHelp(_ context.Context, topic ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.Join(topic, " ")
	f.record("help", "", topic)

	if text, ok := f.Help[key]; ok {
		return text, nil
	}
	return "", bofhtypes.NewServiceError("help", nil, "Error: no help for %q", key)
}

// GetMotd implements CommandService.GetMotd.
func (f *FakeService) GetMotd(_ context.Context, client, version string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("get_motd", "", []string{client, version})
	return f.Motd, nil
}

var _ bofhtypes.CommandService = (*FakeService)(nil)
