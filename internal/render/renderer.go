// Package render prints command replies, formatting structured data with the display
// format the command service suggests for each command.
package render

import (
	"context"
	"fmt"

	"bofhshell/internal/logger"
	"bofhshell/internal/output"
	"bofhshell/internal/printf"
	"bofhshell/pkg/bofhtypes"
)

// FormattingNotice replaces a record that could not be formatted.
const FormattingNotice = "An error occurred formatting the response, see log for details"

// Renderer prints replies. It caches one FormatSpec per command id for the lifetime of a
// catalog generation; a missing format is remembered too, so each id is fetched at most
// once.
type Renderer struct {
	service bofhtypes.CommandService
	printer *output.Printer
	// cache maps a command id to its format, or to nil when the service has none.
	cache map[string]*bofhtypes.FormatSpec
}

// New creates a Renderer with an empty format cache.
func New(service bofhtypes.CommandService, printer *output.Printer) *Renderer {
	return &Renderer{
		service: service,
		printer: printer,
		cache:   make(map[string]*bofhtypes.FormatSpec),
	}
}

// Render prints reply as the result of command id.
func (r *Renderer) Render(ctx context.Context, id string, reply bofhtypes.Reply) error {
	switch reply.Kind {
	case bofhtypes.ReplyNone:
		return nil
	case bofhtypes.ReplyScalar:
		r.printer.Println(reply.Scalar)
		return nil
	}

	spec, err := r.formatSpec(ctx, id)
	if err != nil {
		return err
	}

	if reply.IsSequence && spec.HasHeader {
		r.printer.Header(spec.Header)
	}
	for _, line := range spec.Lines {
		r.renderLine(id, line, reply.Rows)
	}
	return nil
}

// renderLine prints line once for each record holding all of its fields.
func (r *Renderer) renderLine(id string, line bofhtypes.FormatLine, records []map[string]string) {
	if line.Header != "" {
		r.printer.Header(line.Header)
	}

	refs := make([]fieldRef, len(line.Fields))
	for i, field := range line.Fields {
		refs[i] = parseFieldRef(field)
	}

	for _, record := range records {
		if !hasFields(record, refs) {
			continue
		}
		text, err := formatRecord(line.Template, refs, record)
		if err != nil {
			logger.Error("Cannot format record", "command", id, "template", line.Template, "record", record, "error", err)
			r.printer.Error(FormattingNotice)
			continue
		}
		r.printer.Println(text)
	}
}

func hasFields(record map[string]string, refs []fieldRef) bool {
	for _, ref := range refs {
		if _, ok := record[ref.name]; !ok {
			return false
		}
	}
	return true
}

func formatRecord(template string, refs []fieldRef, record map[string]string) (string, error) {
	values := make([]string, len(refs))
	for i, ref := range refs {
		value, err := ref.value(record)
		if err != nil {
			return "", &bofhtypes.FormattingError{Template: template, Reason: err.Error()}
		}
		values[i] = value
	}
	return printf.Sprintf(template, values)
}

// formatSpec returns the cached format of id, fetching it on first use.
func (r *Renderer) formatSpec(ctx context.Context, id string) (bofhtypes.FormatSpec, error) {
	spec, cached := r.cache[id]
	if !cached {
		fetched, ok, err := r.service.GetFormatSuggestion(ctx, id)
		if err != nil {
			return bofhtypes.FormatSpec{}, err
		}
		if ok {
			spec = &fetched
		}
		r.cache[id] = spec
		logger.Debug("Cached format suggestion", "command", id, "found", ok)
	}
	if spec == nil {
		return bofhtypes.FormatSpec{}, fmt.Errorf("%w for %s", bofhtypes.ErrMissingFormatSpec, id)
	}
	return *spec, nil
}

// Cached reports whether the format of id has been fetched.
func (r *Renderer) Cached(id string) bool {
	_, ok := r.cache[id]
	return ok
}

// Reset drops every cached format. The session calls it when the catalog is refreshed.
func (r *Renderer) Reset() {
	r.cache = make(map[string]*bofhtypes.FormatSpec)
}
