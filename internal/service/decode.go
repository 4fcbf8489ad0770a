package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"bofhshell/internal/logger"
	"bofhshell/internal/printf"
	"bofhshell/pkg/bofhtypes"
)

const (
	promptFuncTag      = "prompt_func"
	secretParamTypeTag = "accountPassword"
)

// decodeCatalog converts a washed get_commands reply. Definitions the shell cannot use
// are skipped with a warning; a malformed parameter spec is kept and fails only when
// that command collects arguments.
func decodeCatalog(raw interface{}) (bofhtypes.CommandCatalog, error) {
	entries, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("command list is %T, not a struct", raw)
	}

	catalog := make(bofhtypes.CommandCatalog, len(entries))
	for id, entry := range entries {
		def, ok := decodeDefinition(id, entry)
		if !ok {
			continue
		}
		catalog[id] = def
	}
	return catalog, nil
}

func decodeDefinition(id string, entry interface{}) (bofhtypes.CommandDefinition, bool) {
	parts, ok := entry.([]interface{})
	if !ok || len(parts) == 0 {
		logger.Warn("Skipping command with unknown definition", "command", id)
		return bofhtypes.CommandDefinition{}, false
	}
	if _, old := parts[0].(string); old {
		logger.Warn("Command uses the old protocol, skipping", "command", id)
		return bofhtypes.CommandDefinition{}, false
	}

	segments, ok := parts[0].([]interface{})
	if !ok || len(segments) == 0 {
		logger.Warn("Skipping command without a path", "command", id)
		return bofhtypes.CommandDefinition{}, false
	}
	path := make([]string, len(segments))
	for i, segment := range segments {
		s, ok := segment.(string)
		if !ok || s == "" {
			logger.Warn("Skipping command with a bad path segment", "command", id, "segment", segment)
			return bofhtypes.CommandDefinition{}, false
		}
		path[i] = s
	}

	def := bofhtypes.CommandDefinition{Path: path}
	if len(parts) > 1 {
		def.Params = decodeParamSpec(parts[1])
	}
	return def, true
}

func decodeParamSpec(raw interface{}) bofhtypes.ParameterSpec {
	switch spec := raw.(type) {
	case nil:
		return bofhtypes.StaticParams()
	case string:
		if spec == promptFuncTag {
			return bofhtypes.PromptFunction()
		}
		return bofhtypes.MalformedParams(fmt.Sprintf("unknown parameter spec %q", spec))
	case []interface{}:
		params := make([]bofhtypes.ParameterDescriptor, 0, len(spec))
		for i, item := range spec {
			fields, ok := item.(map[string]interface{})
			if !ok {
				return bofhtypes.MalformedParams(fmt.Sprintf("parameter %d is %T, not a struct", i, item))
			}
			params = append(params, decodeDescriptor(fields))
		}
		return bofhtypes.StaticParams(params...)
	default:
		return bofhtypes.MalformedParams(fmt.Sprintf("parameter spec is %T", raw))
	}
}

func decodeDescriptor(fields map[string]interface{}) bofhtypes.ParameterDescriptor {
	param := bofhtypes.ParameterDescriptor{
		Prompt:   stringField(fields, "prompt"),
		HelpRef:  stringField(fields, "help_ref"),
		Optional: truthy(fields["optional"]),
		Default:  bofhtypes.NoDefault(),
	}
	if stringField(fields, "type") == secretParamTypeTag {
		param.Type = bofhtypes.ParamSecret
	}
	if def, ok := fields["default"]; ok && def != nil {
		if literal, isString := def.(string); isString {
			param.Default = bofhtypes.LiteralDefault(literal)
		} else {
			param.Default = bofhtypes.AskServiceDefault()
		}
	}
	return param
}

// decodeReply converts a washed run_command reply.
func decodeReply(raw interface{}) bofhtypes.Reply {
	switch value := raw.(type) {
	case nil:
		return bofhtypes.NoReply()
	case string:
		return bofhtypes.ScalarReply(value)
	case map[string]interface{}:
		return bofhtypes.RowsReply([]map[string]string{decodeRecord(value)}, false)
	case []interface{}:
		rows := make([]map[string]string, 0, len(value))
		var scalars []string
		for _, item := range value {
			if record, ok := item.(map[string]interface{}); ok {
				rows = append(rows, decodeRecord(record))
			} else {
				scalars = append(scalars, stringify(item))
			}
		}
		if len(rows) == 0 && len(scalars) > 0 {
			return bofhtypes.ScalarReply(strings.Join(scalars, "\n"))
		}
		if len(scalars) > 0 {
			logger.Warn("Dropping scalar items from a structured reply", "count", len(scalars))
		}
		return bofhtypes.RowsReply(rows, true)
	default:
		return bofhtypes.ScalarReply(stringify(value))
	}
}

func decodeRecord(fields map[string]interface{}) map[string]string {
	record := make(map[string]string, len(fields))
	for k, v := range fields {
		record[k] = stringify(v)
	}
	return record
}

// decodeFormatSpec converts a washed get_format_suggestion reply. An empty string or
// nil means the service has no format for the command.
func decodeFormatSpec(raw interface{}) (bofhtypes.FormatSpec, bool, error) {
	switch value := raw.(type) {
	case nil:
		return bofhtypes.FormatSpec{}, false, nil
	case string:
		if value == "" {
			return bofhtypes.FormatSpec{}, false, nil
		}
		return bofhtypes.FormatSpec{}, false, fmt.Errorf("format suggestion is a string")
	case map[string]interface{}:
		spec := bofhtypes.FormatSpec{}
		if hdr, ok := value["hdr"].(string); ok {
			spec.Header = hdr
			spec.HasHeader = true
		}
		lines, err := decodeFormatLines(value["str_vars"])
		if err != nil {
			return bofhtypes.FormatSpec{}, false, err
		}
		spec.Lines = lines
		return spec, true, nil
	default:
		return bofhtypes.FormatSpec{}, false, fmt.Errorf("format suggestion is %T", raw)
	}
}

func decodeFormatLines(raw interface{}) ([]bofhtypes.FormatLine, error) {
	switch value := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return []bofhtypes.FormatLine{{Template: value}}, nil
	case []interface{}:
		lines := make([]bofhtypes.FormatLine, 0, len(value))
		for i, item := range value {
			parts, ok := item.([]interface{})
			if !ok || len(parts) < 2 {
				return nil, fmt.Errorf("format line %d is malformed", i)
			}
			template, ok := parts[0].(string)
			if !ok {
				return nil, fmt.Errorf("format line %d has no template", i)
			}
			fieldList, ok := parts[1].([]interface{})
			if !ok {
				return nil, fmt.Errorf("format line %d has no field list", i)
			}
			line := bofhtypes.FormatLine{Template: template, Fields: make([]string, len(fieldList))}
			for j, field := range fieldList {
				line.Fields[j] = stringify(field)
			}
			if len(parts) > 2 {
				if header, ok := parts[2].(string); ok {
					line.Header = header
				}
			}
			lines = append(lines, line)
		}
		return lines, nil
	default:
		return nil, fmt.Errorf("format lines are %T", raw)
	}
}

// decodePromptInfo converts a washed call_prompt_func reply.
func decodePromptInfo(raw interface{}) (bofhtypes.PromptInfo, error) {
	fields, ok := raw.(map[string]interface{})
	if !ok {
		return bofhtypes.PromptInfo{}, fmt.Errorf("prompt function answered %T, not a struct", raw)
	}

	info := bofhtypes.PromptInfo{
		Prompt:  stringField(fields, "prompt"),
		HelpRef: stringField(fields, "help_ref"),
	}
	if def, ok := fields["default"]; ok && def != nil {
		info.Default = stringify(def)
		info.HasDefault = true
	}
	if last, ok := fields["last_arg"]; ok && last != nil && last != false {
		info.LastArg = true
	}

	if err := decodeChoices(&info, fields["map"]); err != nil {
		return bofhtypes.PromptInfo{}, err
	}
	if _, raw := fields["raw"]; raw {
		info.ValueMap = nil
	}
	return info, nil
}

// decodeChoices fills the selectable values of a prompt. The list form carries a header
// row followed by [description, value] rows numbered from 1; the struct form maps keys
// to values directly.
func decodeChoices(info *bofhtypes.PromptInfo, raw interface{}) error {
	switch value := raw.(type) {
	case nil:
		return nil
	case map[string]interface{}:
		keys := make([]string, 0, len(value))
		for k := range value {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		info.ValueMap = make(map[string]string, len(value))
		for _, k := range keys {
			info.ValueMap[k] = stringify(value[k])
			info.Choices = append(info.Choices, bofhtypes.Choice{Key: k, Description: info.ValueMap[k]})
		}
		return nil
	case []interface{}:
		info.ValueMap = make(map[string]string, len(value))
		for n, item := range value {
			row, ok := item.([]interface{})
			if !ok || len(row) == 0 {
				return fmt.Errorf("choice %d is malformed", n)
			}
			description := describeChoice(row[0])
			if n == 0 {
				info.ChoiceHeader = description
				continue
			}
			key := strconv.Itoa(n)
			var choiceValue interface{}
			if len(row) > 1 {
				choiceValue = row[1]
			}
			info.ValueMap[key] = stringify(choiceValue)
			info.Choices = append(info.Choices, bofhtypes.Choice{Key: key, Description: description})
		}
		return nil
	default:
		return fmt.Errorf("choice map is %T", raw)
	}
}

// describeChoice renders a [template, args...] description.
func describeChoice(raw interface{}) string {
	parts, ok := raw.([]interface{})
	if !ok || len(parts) == 0 {
		return stringify(raw)
	}
	template, ok := parts[0].(string)
	if !ok {
		return stringify(raw)
	}
	args := make([]string, len(parts)-1)
	for i, arg := range parts[1:] {
		args[i] = stringify(arg)
	}
	text, err := printf.Sprintf(template, args)
	if err != nil {
		logger.Warn("Cannot format choice description", "template", template, "error", err)
		return template
	}
	return text
}

func stringField(fields map[string]interface{}, key string) string {
	s, _ := fields[key].(string)
	return s
}

// truthy interprets the service's 0/1 and boolean flags.
func truthy(v interface{}) bool {
	switch value := v.(type) {
	case bool:
		return value
	case int64:
		return value != 0
	case int:
		return value != 0
	case string:
		return value == "1" || value == "True" || value == "true"
	default:
		return false
	}
}
