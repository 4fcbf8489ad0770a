// Package elicit collects the missing arguments of a resolved command by prompting the
// operator, driven either by the command's static parameter descriptors or by the
// service's dynamic prompt function.
package elicit

import (
	"context"
	"errors"
	"fmt"
	"io"

	"bofhshell/internal/logger"
	"bofhshell/internal/output"
	"bofhshell/pkg/bofhtypes"
)

// helpRequest is the operator input that asks for argument help instead of a value.
const helpRequest = "?"

// Prompter reads one answer from the operator.
type Prompter interface {
	ReadLine(prompt string) (string, error)
	// ReadPassword reads without echoing the input.
	ReadPassword(prompt string) (string, error)
}

// Elicitor prompts for arguments. It keeps no state between commands.
type Elicitor struct {
	service  bofhtypes.CommandService
	prompter Prompter
	printer  *output.Printer
}

// New creates an Elicitor.
func New(service bofhtypes.CommandService, prompter Prompter, printer *output.Printer) *Elicitor {
	return &Elicitor{service: service, prompter: prompter, printer: printer}
}

// Elicit returns supplied extended with every argument the operator was asked for.
// It returns bofhtypes.ErrInputAbort when the operator ends input during a prompt.
func (e *Elicitor) Elicit(ctx context.Context, id string, spec bofhtypes.ParameterSpec, supplied []string) ([]string, error) {
	if spec.Malformed != "" {
		return nil, fmt.Errorf("%w for %s: %s", bofhtypes.ErrBadParameterSpec, id, spec.Malformed)
	}
	args := append([]string(nil), supplied...)
	if spec.PromptFunc {
		return e.elicitDynamic(ctx, id, args)
	}
	return e.elicitStatic(ctx, id, spec.Params, args)
}

func (e *Elicitor) elicitStatic(ctx context.Context, id string, params []bofhtypes.ParameterDescriptor, args []string) ([]string, error) {
	for i := len(args); i < len(params); i++ {
		param := params[i]
		// Optional parameters are trailing, so the first one ends prompting.
		if param.Optional {
			logger.Debug("Stopping at optional parameter", "command", id, "position", i)
			break
		}

		defval, hasDefault, err := e.resolveDefault(ctx, id, param.Default, args)
		if err != nil {
			return nil, err
		}

		for {
			var input string
			if param.Type == bofhtypes.ParamSecret {
				input, err = e.prompter.ReadPassword(param.Prompt + " > ")
			} else {
				input, err = e.prompter.ReadLine(promptText(param.Prompt, defval, hasDefault))
			}
			if err != nil {
				return nil, abortError(err)
			}

			if input == helpRequest {
				e.showArgHelp(ctx, param.HelpRef)
				continue
			}
			if input == "" && hasDefault {
				input = defval
			}
			args = append(args, input)
			break
		}
	}
	return args, nil
}

func (e *Elicitor) elicitDynamic(ctx context.Context, id string, args []string) ([]string, error) {
	for {
		info, err := e.service.CallPromptFunc(ctx, id, args)
		if err != nil {
			return nil, err
		}
		if info.Prompt == "" && info.LastArg {
			return args, nil
		}
		if info.Prompt == "" && len(info.Choices) == 0 {
			return nil, fmt.Errorf("%w: prompt function for %s returned no prompt", bofhtypes.ErrBadParameterSpec, id)
		}

		e.showChoices(info)
		value, err := e.readDynamic(ctx, info)
		if err != nil {
			return nil, err
		}
		args = append(args, value)

		if info.LastArg {
			return args, nil
		}
	}
}

// readDynamic prompts until the operator gives an acceptable answer to info and returns
// the value to send.
func (e *Elicitor) readDynamic(ctx context.Context, info bofhtypes.PromptInfo) (string, error) {
	for {
		input, err := e.prompter.ReadLine(promptText(info.Prompt, info.Default, info.HasDefault))
		if err != nil {
			return "", abortError(err)
		}

		if input == helpRequest && info.HelpRef != "" {
			e.showArgHelp(ctx, info.HelpRef)
			continue
		}
		if input == "" {
			if !info.HasDefault {
				continue
			}
			input = info.Default
		}
		if info.ValueMap == nil {
			return input, nil
		}
		value, ok := info.ValueMap[input]
		if !ok {
			e.printer.Warning("Value not in list")
			continue
		}
		return value, nil
	}
}

// resolveDefault returns the default for the next argument, asking the service when the
// descriptor says it is computed.
func (e *Elicitor) resolveDefault(ctx context.Context, id string, def bofhtypes.DefaultValue, args []string) (string, bool, error) {
	switch def.Kind {
	case bofhtypes.DefaultLiteral:
		return def.Literal, true, nil
	case bofhtypes.DefaultAskService:
		value, err := e.service.GetDefaultParam(ctx, id, args)
		if err != nil {
			return "", false, err
		}
		return value, true, nil
	default:
		return "", false, nil
	}
}

func (e *Elicitor) showChoices(info bofhtypes.PromptInfo) {
	if len(info.Choices) == 0 {
		return
	}
	if info.ChoiceHeader != "" {
		e.printer.Println("Num " + info.ChoiceHeader)
	}
	for _, choice := range info.Choices {
		e.printer.Println(fmt.Sprintf("%4s %s", choice.Key, choice.Description))
	}
}

func (e *Elicitor) showArgHelp(ctx context.Context, helpRef string) {
	if helpRef == "" {
		e.printer.Warning("No help available for this argument")
		return
	}
	text, err := e.service.GetHelp(ctx, "arg_help", helpRef)
	if err != nil {
		e.printer.Error(err.Error())
		return
	}
	e.printer.Println(text)
}

// promptText formats the prompt shown for one argument.
func promptText(prompt, defval string, hasDefault bool) string {
	if hasDefault {
		return fmt.Sprintf("%s [%s] > ", prompt, defval)
	}
	return prompt + " > "
}

// abortError maps end of input and interrupts to ErrInputAbort.
func abortError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, bofhtypes.ErrInterrupted) {
		return bofhtypes.ErrInputAbort
	}
	return fmt.Errorf("reading argument: %w", err)
}
