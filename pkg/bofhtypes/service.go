package bofhtypes

import "context"

// CommandService is the remote command service as seen by the shell. All calls block
// until the service answers; the context is only used for shutdown.
type CommandService interface {
	// Login authenticates and stores the session handle for later calls.
	Login(ctx context.Context, username, password string) error
	// Logout ends the remote session.
	Logout(ctx context.Context) error
	// FetchCatalog returns every command available in this session.
	FetchCatalog(ctx context.Context) (CommandCatalog, error)
	// Dispatch runs a command with a complete argument list.
	Dispatch(ctx context.Context, id string, args []string) (Reply, error)
	// GetDefaultParam computes the default for the next argument of id.
	GetDefaultParam(ctx context.Context, id string, args []string) (string, error)
	// CallPromptFunc asks the service what to prompt for next.
	CallPromptFunc(ctx context.Context, id string, args []string) (PromptInfo, error)
	// GetFormatSuggestion returns the display format of id; ok is false when the
	// service has none.
	GetFormatSuggestion(ctx context.Context, id string) (spec FormatSpec, ok bool, err error)
	// GetHelp returns help text for a topic path (empty for general help).
	GetHelp(ctx context.Context, topic ...string) (string, error)
	// GetMotd returns the message of the day for this client and version.
	GetMotd(ctx context.Context, client, version string) (string, error)
}
