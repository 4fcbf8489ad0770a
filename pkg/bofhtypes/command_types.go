// Package bofhtypes defines the data model shared by the bofh shell packages.
// This file contains the command catalog types: command definitions as declared by the
// remote service, and the parameter specifications used to collect their arguments.
package bofhtypes

// CommandCatalog maps an opaque protocol-command-id to its definition.
// It is fetched once per session and only replaced wholesale on refresh.
type CommandCatalog map[string]CommandDefinition

// CommandDefinition describes one server-side command: the human-readable path the
// operator types (e.g. ["user", "create"]) and how its arguments are collected.
type CommandDefinition struct {
	Path   []string      `yaml:"path"`
	Params ParameterSpec `yaml:"params"`
}

// ParamType is the input type tag of a parameter descriptor.
type ParamType int

const (
	// ParamPlain is echoed input.
	ParamPlain ParamType = iota
	// ParamSecret is read with masked input and never logged.
	ParamSecret
)

// String returns the wire-independent name of the parameter type.
func (t ParamType) String() string {
	if t == ParamSecret {
		return "secret"
	}
	return "plain"
}

// MarshalYAML renders the parameter type by name in catalog dumps.
func (t ParamType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// DefaultKind tells where a parameter's default value comes from.
type DefaultKind int

const (
	// DefaultNone means the parameter has no default.
	DefaultNone DefaultKind = iota
	// DefaultLiteral means the default is carried verbatim in the descriptor.
	DefaultLiteral
	// DefaultAskService means the default must be computed by the service
	// from the arguments collected so far.
	DefaultAskService
)

// String returns the name of the default kind.
func (k DefaultKind) String() string {
	switch k {
	case DefaultLiteral:
		return "literal"
	case DefaultAskService:
		return "ask_service"
	default:
		return "none"
	}
}

// MarshalYAML renders the default kind by name in catalog dumps.
func (k DefaultKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// DefaultValue is the default of a parameter descriptor.
type DefaultValue struct {
	Kind    DefaultKind `yaml:"kind"`
	Literal string      `yaml:"literal,omitempty"`
}

// NoDefault returns a DefaultValue without any default.
func NoDefault() DefaultValue {
	return DefaultValue{Kind: DefaultNone}
}

// LiteralDefault returns a DefaultValue carrying s verbatim.
func LiteralDefault(s string) DefaultValue {
	return DefaultValue{Kind: DefaultLiteral, Literal: s}
}

// AskServiceDefault returns a DefaultValue that is resolved by a service round trip.
func AskServiceDefault() DefaultValue {
	return DefaultValue{Kind: DefaultAskService}
}

// ParameterDescriptor declares one positional argument of a command.
type ParameterDescriptor struct {
	Prompt   string       `yaml:"prompt"`
	Type     ParamType    `yaml:"type"`
	Optional bool         `yaml:"optional,omitempty"`
	Default  DefaultValue `yaml:"default"`
	HelpRef  string       `yaml:"help_ref,omitempty"`
}

// ParameterSpec declares how a command's arguments are collected: either through the
// fully dynamic prompt-function protocol, or from an ordered list of descriptors.
type ParameterSpec struct {
	PromptFunc bool                  `yaml:"prompt_func,omitempty"`
	Params     []ParameterDescriptor `yaml:"params,omitempty"`
	// Malformed, when set, says why the service's spec could not be understood.
	// Collecting arguments for such a command fails; the rest of the catalog is usable.
	Malformed string `yaml:"malformed,omitempty"`
}

// PromptFunction returns a ParameterSpec using the dynamic prompt-function protocol.
func PromptFunction() ParameterSpec {
	return ParameterSpec{PromptFunc: true}
}

// StaticParams returns a ParameterSpec made of the given descriptors, in order.
func StaticParams(params ...ParameterDescriptor) ParameterSpec {
	return ParameterSpec{Params: params}
}

// MalformedParams returns a ParameterSpec that fails argument collection with reason.
func MalformedParams(reason string) ParameterSpec {
	return ParameterSpec{Malformed: reason}
}

// SecretPositions returns the argument positions holding secret values.
// A prompt-function spec has no known positions.
func (p ParameterSpec) SecretPositions() []int {
	var positions []int
	for i, param := range p.Params {
		if param.Type == ParamSecret {
			positions = append(positions, i)
		}
	}
	return positions
}

// SecretMask replaces secret arguments wherever arguments are logged.
const SecretMask = "**********"

// MaskArgs returns a copy of args with the given positions replaced by SecretMask.
func MaskArgs(args []string, positions []int) []string {
	masked := append([]string(nil), args...)
	for _, pos := range positions {
		if pos >= 0 && pos < len(masked) {
			masked[pos] = SecretMask
		}
	}
	return masked
}

// PromptInfo is one answer of the service's dynamic prompt function.
type PromptInfo struct {
	Prompt     string
	Default    string
	HasDefault bool
	// ValueMap, when non-nil, restricts the operator's answer to its keys;
	// the mapped value is what gets sent to the service.
	ValueMap map[string]string
	// Choices lists the offered entries in the order the service offered them,
	// under ChoiceHeader. Choices may be present without a ValueMap when the
	// service accepts raw input.
	Choices      []Choice
	ChoiceHeader string
	HelpRef      string
	LastArg      bool
}

// Choice is one selectable entry offered by the prompt function.
type Choice struct {
	Key         string
	Description string
}
