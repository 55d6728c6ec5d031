package output

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dshills/pa/internal/assemble"
	"github.com/dshills/pa/internal/library"
)

// SchemaVersion is the version of the json and yaml envelopes.
const SchemaVersion = 1

// ErrUnsupportedView is returned when a format cannot render a view, such as
// a prompt listing in SARIF.
var ErrUnsupportedView = errors.New("format does not support this view")

// Writer writes listings, prompt details and validation reports in a
// specific format.
type Writer interface {
	WriteList(w io.Writer, prompts []*assemble.PromptInfo) error
	WritePrompt(w io.Writer, prompt *assemble.PromptInfo) error
	WriteReport(w io.Writer, report library.Report) error
}

// GetWriter returns a writer for the specified format. version identifies
// the tool in formats that record it.
func GetWriter(format, version string) (Writer, error) {
	switch format {
	case "text", "":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "yaml":
		return &YAMLWriter{}, nil
	case "markdown":
		return &MarkdownWriter{}, nil
	case "sarif":
		return &SARIFWriter{Version: version}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// ListEnvelope wraps a prompt listing.
type ListEnvelope struct {
	SchemaVersion int                    `json:"schema_version" yaml:"schema_version"`
	GeneratedAt   string                 `json:"generated_at" yaml:"generated_at"`
	Prompts       []*assemble.PromptInfo `json:"prompts" yaml:"prompts"`
}

// ReportEnvelope wraps a validation report.
type ReportEnvelope struct {
	SchemaVersion int                  `json:"schema_version" yaml:"schema_version"`
	GeneratedAt   string               `json:"generated_at" yaml:"generated_at"`
	Errors        []library.Diagnostic `json:"errors" yaml:"errors"`
	Warnings      []library.Diagnostic `json:"warnings" yaml:"warnings"`
}

var now = time.Now

func generatedAt() string {
	return now().UTC().Format(time.RFC3339)
}

func listEnvelope(prompts []*assemble.PromptInfo) ListEnvelope {
	if prompts == nil {
		prompts = []*assemble.PromptInfo{}
	}
	return ListEnvelope{
		SchemaVersion: SchemaVersion,
		GeneratedAt:   generatedAt(),
		Prompts:       prompts,
	}
}

func reportEnvelope(report library.Report) ReportEnvelope {
	env := ReportEnvelope{
		SchemaVersion: SchemaVersion,
		GeneratedAt:   generatedAt(),
		Errors:        report.Errors,
		Warnings:      report.Warnings,
	}
	if env.Errors == nil {
		env.Errors = []library.Diagnostic{}
	}
	if env.Warnings == nil {
		env.Warnings = []library.Diagnostic{}
	}
	return env
}
