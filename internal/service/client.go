// Package service implements the bofhd command service over XML-RPC.
package service

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"net/rpc"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kolo/xmlrpc"

	"bofhshell/internal/logger"
	"bofhshell/pkg/bofhtypes"
)

// faultPrefix starts the fault string of every error class raised by bofhd itself.
const faultPrefix = "Cerebrum.modules.bofhd.errors."

const (
	faultServerRestarted = "ServerRestartedError"
	faultSessionExpired  = "SessionExpiredError"
)

// faultPattern matches a fault as it surfaces through net/rpc.
var faultPattern = regexp.MustCompile(`(?s)^Fault\(-?\d+\): (.*)$`)

// RecoveryHandler is invoked when the service reports a condition the client can
// recover from. The failed call is retried once after the handler succeeds.
type RecoveryHandler func(ctx context.Context) error

// Option configures an XMLRPCClient.
type Option func(*clientOptions)

type clientOptions struct {
	transport http.RoundTripper
	caFile    string
	onRestart RecoveryHandler
	onExpired RecoveryHandler
}

// WithTransport sets the HTTP transport used for calls.
func WithTransport(transport http.RoundTripper) Option {
	return func(o *clientOptions) {
		o.transport = transport
	}
}

// WithCAFile verifies the service certificate against the PEM bundle in path.
func WithCAFile(path string) Option {
	return func(o *clientOptions) {
		o.caFile = path
	}
}

// WithRestartHandler sets what to do when the service says it was restarted.
func WithRestartHandler(handler RecoveryHandler) Option {
	return func(o *clientOptions) {
		o.onRestart = handler
	}
}

// WithSessionExpiredHandler sets how to re-authenticate when the session expires.
func WithSessionExpiredHandler(handler RecoveryHandler) Option {
	return func(o *clientOptions) {
		o.onExpired = handler
	}
}

// XMLRPCClient is a bofhtypes.CommandService talking to bofhd. It is not safe for
// concurrent use; the shell makes one call at a time.
type XMLRPCClient struct {
	rpc       *xmlrpc.Client
	transport *loggingTransport
	log       *log.Logger

	sessionID string
	// secrets holds the secret argument positions of each command, for log masking.
	secrets map[string][]int

	onRestart  RecoveryHandler
	onExpired  RecoveryHandler
	recovering bool
}

var _ bofhtypes.CommandService = (*XMLRPCClient)(nil)

// NewXMLRPCClient creates a client for the service at url.
func NewXMLRPCClient(url string, opts ...Option) (*XMLRPCClient, error) {
	options := &clientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	base := options.transport
	if options.caFile != "" {
		tlsTransport, err := caTransport(options.caFile)
		if err != nil {
			return nil, err
		}
		base = tlsTransport
	}

	styled := logger.NewStyledLogger("xmlrpc")
	transport := newLoggingTransport(base, styled)
	rpcClient, err := xmlrpc.NewClient(url, transport)
	if err != nil {
		return nil, fmt.Errorf("failed to create XML-RPC client for %s: %w", url, err)
	}

	return &XMLRPCClient{
		rpc:       rpcClient,
		transport: transport,
		log:       styled,
		secrets:   make(map[string][]int),
		onRestart: options.onRestart,
		onExpired: options.onExpired,
	}, nil
}

func caTransport(path string) (*http.Transport, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	return transport, nil
}

// OnServerRestart replaces the handler run when the service reports a restart.
func (c *XMLRPCClient) OnServerRestart(handler RecoveryHandler) {
	c.onRestart = handler
}

// OnSessionExpired replaces the handler run when the session has expired.
func (c *XMLRPCClient) OnSessionExpired(handler RecoveryHandler) {
	c.onExpired = handler
}

// lastExchange returns a JSON summary of the last HTTP exchange.
func (c *XMLRPCClient) lastExchange() string {
	return c.transport.Last()
}

// Close releases the underlying connection.
func (c *XMLRPCClient) Close() error {
	return c.rpc.Close()
}

// request is one remote call. params excludes the session id, which is added when the
// request is sent so that a retry after re-authentication uses the new one.
type request struct {
	method        string
	authenticated bool
	params        []interface{}
	// logArgs are the arguments as they may appear in logs.
	logArgs []string
}

// newRequest washes args for method. secret lists the positions in args to mask.
// The arguments follow the leading values as separate parameters.
func newRequest(method string, authenticated bool, leading []string, args []string, secret []int) (request, error) {
	washed, err := washArgs(args)
	if err != nil {
		var illegal *illegalCharacterError
		if errors.As(err, &illegal) {
			return request{}, bofhtypes.NewServiceError(method, err, "Illegal character: %d", illegal.char)
		}
		return request{}, bofhtypes.NewServiceError(method, err, "Error: %v", err)
	}

	params := make([]interface{}, 0, len(leading)+len(washed))
	for _, value := range leading {
		params = append(params, value)
	}
	params = append(params, washed...)

	return request{
		method:        method,
		authenticated: authenticated,
		params:        params,
		logArgs:       append(append([]string(nil), leading...), bofhtypes.MaskArgs(args, secret)...),
	}, nil
}

func (c *XMLRPCClient) call(ctx context.Context, req request) (interface{}, error) {
	return c.send(ctx, req, false)
}

func (c *XMLRPCClient) send(ctx context.Context, req request, retried bool) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := req.params
	if req.authenticated {
		params = append([]interface{}{c.sessionID}, req.params...)
	}

	startTime := time.Now()
	var result interface{}
	err := c.rpc.Call(req.method, params, &result)
	elapsed := time.Since(startTime)
	if err == nil {
		c.log.Debug("Call", "method", req.method, "args", req.logArgs, "elapsed", elapsed)
		return washResponse(result), nil
	}

	c.log.Debug("Call failed", "method", req.method, "args", req.logArgs, "elapsed", elapsed, "error", err, "exchange", c.lastExchange())
	return c.handleError(ctx, req, retried, err)
}

// handleError turns a failed call into a ServiceError, recovering first from a
// restarted service or an expired session.
func (c *XMLRPCClient) handleError(ctx context.Context, req request, retried bool, err error) (interface{}, error) {
	text, ok := faultString(err)
	if !ok {
		return nil, bofhtypes.NewServiceError(req.method, err, "Error: communication with the server failed: %v", err)
	}
	if !strings.HasPrefix(text, faultPrefix) {
		return nil, bofhtypes.NewServiceError(req.method, err, "Unexpected error: %s", text)
	}

	class, _, _ := strings.Cut(strings.TrimPrefix(text, faultPrefix), ":")
	var handler RecoveryHandler
	switch class {
	case faultServerRestarted:
		handler = c.onRestart
	case faultSessionExpired:
		handler = c.onExpired
	}
	if handler != nil && !retried && !c.recovering {
		logger.ServiceOperation(req.method, "recover", class)
		c.recovering = true
		recoverErr := handler(ctx)
		c.recovering = false
		if recoverErr != nil {
			return nil, recoverErr
		}
		return c.send(ctx, req, true)
	}

	message := text
	if _, rest, found := strings.Cut(text, ":"); found {
		message = strings.TrimSpace(rest)
	}
	return nil, bofhtypes.NewServiceError(req.method, err, "Error: %s", message)
}

// faultString extracts the fault string from an XML-RPC fault.
func faultString(err error) (string, bool) {
	var fault xmlrpc.FaultError
	if errors.As(err, &fault) {
		return fault.String, true
	}
	var faultPtr *xmlrpc.FaultError
	if errors.As(err, &faultPtr) {
		return faultPtr.String, true
	}
	var serverErr rpc.ServerError
	if errors.As(err, &serverErr) {
		m := faultPattern.FindStringSubmatch(string(serverErr))
		if m == nil {
			return "", false
		}
		return m[1], true
	}
	return "", false
}

// Login authenticates and stores the session id.
func (c *XMLRPCClient) Login(ctx context.Context, username, password string) error {
	req, err := newRequest("login", false, nil, []string{username, password}, []int{1})
	if err != nil {
		return err
	}
	result, err := c.call(ctx, req)
	if err != nil {
		return err
	}
	sessionID, ok := result.(string)
	if !ok || sessionID == "" {
		return bofhtypes.NewServiceError("login", nil, "Error: login returned no session")
	}
	c.sessionID = sessionID
	logger.ServiceOperation("login", "authenticated", "user", username)
	return nil
}

// Logout ends the session. It does nothing when not logged in.
func (c *XMLRPCClient) Logout(ctx context.Context) error {
	if c.sessionID == "" {
		return nil
	}
	_, err := c.call(ctx, request{method: "logout", authenticated: true})
	c.sessionID = ""
	return err
}

// FetchCatalog returns the commands available in this session.
func (c *XMLRPCClient) FetchCatalog(ctx context.Context) (bofhtypes.CommandCatalog, error) {
	result, err := c.call(ctx, request{method: "get_commands", authenticated: true})
	if err != nil {
		return nil, err
	}
	catalog, err := decodeCatalog(result)
	if err != nil {
		return nil, bofhtypes.NewServiceError("get_commands", err, "Error: %v", err)
	}

	secrets := make(map[string][]int, len(catalog))
	for id, def := range catalog {
		if positions := def.Params.SecretPositions(); len(positions) > 0 {
			secrets[id] = positions
		}
	}
	c.secrets = secrets
	logger.ServiceOperation("get_commands", "fetched", "commands", len(catalog))
	return catalog, nil
}

// Dispatch runs command id with args.
func (c *XMLRPCClient) Dispatch(ctx context.Context, id string, args []string) (bofhtypes.Reply, error) {
	req, err := newRequest("run_command", true, []string{id}, args, c.secrets[id])
	if err != nil {
		return bofhtypes.Reply{}, err
	}
	result, err := c.call(ctx, req)
	if err != nil {
		return bofhtypes.Reply{}, err
	}
	return decodeReply(result), nil
}

// GetDefaultParam asks the service for the default of the next argument of id.
func (c *XMLRPCClient) GetDefaultParam(ctx context.Context, id string, args []string) (string, error) {
	req, err := newRequest("get_default_param", true, []string{id}, args, c.secrets[id])
	if err != nil {
		return "", err
	}
	result, err := c.call(ctx, req)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", nil
	}
	return stringify(result), nil
}

// CallPromptFunc asks the service what to prompt for after args.
func (c *XMLRPCClient) CallPromptFunc(ctx context.Context, id string, args []string) (bofhtypes.PromptInfo, error) {
	req, err := newRequest("call_prompt_func", true, []string{id}, args, c.secrets[id])
	if err != nil {
		return bofhtypes.PromptInfo{}, err
	}
	result, err := c.call(ctx, req)
	if err != nil {
		return bofhtypes.PromptInfo{}, err
	}
	info, err := decodePromptInfo(result)
	if err != nil {
		return bofhtypes.PromptInfo{}, bofhtypes.NewServiceError("call_prompt_func", err, "Error: %v", err)
	}
	return info, nil
}

// GetFormatSuggestion returns the display format of id.
func (c *XMLRPCClient) GetFormatSuggestion(ctx context.Context, id string) (bofhtypes.FormatSpec, bool, error) {
	result, err := c.call(ctx, request{
		method:  "get_format_suggestion",
		params:  []interface{}{id},
		logArgs: []string{id},
	})
	if err != nil {
		return bofhtypes.FormatSpec{}, false, err
	}
	spec, ok, err := decodeFormatSpec(result)
	if err != nil {
		return bofhtypes.FormatSpec{}, false, bofhtypes.NewServiceError("get_format_suggestion", err, "Error: %v", err)
	}
	return spec, ok, nil
}

// GetHelp returns the help text for topic.
func (c *XMLRPCClient) GetHelp(ctx context.Context, topic ...string) (string, error) {
	req, err := newRequest("help", true, nil, topic, nil)
	if err != nil {
		return "", err
	}
	result, err := c.call(ctx, req)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", nil
	}
	return stringify(result), nil
}

// GetMotd returns the message of the day.
func (c *XMLRPCClient) GetMotd(ctx context.Context, client, version string) (string, error) {
	req, err := newRequest("get_motd", false, nil, []string{client, version}, nil)
	if err != nil {
		return "", err
	}
	result, err := c.call(ctx, req)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", nil
	}
	return stringify(result), nil
}
