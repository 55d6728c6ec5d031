package library

import (
	"fmt"
	"sort"
)

// Severity of a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic codes. These are part of the machine-readable validate output
// and must stay stable.
const (
	CodeParseError        = "parse-error"
	CodeUnknownKey        = "unknown-key"
	CodeInvalidDefinition = "invalid-definition"
	CodeMissingFragment   = "missing-fragment"
	CodeMissingTemplate   = "missing-template"
	CodeDuplicateName     = "duplicate-name"
)

// Diagnostic is one problem found in a configuration file.
type Diagnostic struct {
	File     string   `json:"file" yaml:"file"`
	Line     int      `json:"line,omitempty" yaml:"line,omitempty"`
	Column   int      `json:"-" yaml:"-"`
	Prompt   string   `json:"-" yaml:"-"`
	Code     string   `json:"code" yaml:"code"`
	Message  string   `json:"message" yaml:"message"`
	Severity Severity `json:"severity" yaml:"severity"`
}

// String formats the diagnostic as "file:line: message (code)".
func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d: %s (%s)", d.File, d.Line, d.Message, d.Code)
	}
	return fmt.Sprintf("%s: %s (%s)", d.File, d.Message, d.Code)
}

// Report is the result of validating a merged configuration.
type Report struct {
	Errors   []Diagnostic `json:"errors" yaml:"errors"`
	Warnings []Diagnostic `json:"warnings" yaml:"warnings"`
}

// OK reports whether the report holds no errors.
func (r Report) OK() bool {
	return len(r.Errors) == 0
}

// Add files d under errors or warnings according to its severity.
func (r *Report) Add(d Diagnostic) {
	if d.Severity == SeverityWarning {
		r.Warnings = append(r.Warnings, d)
		return
	}
	r.Errors = append(r.Errors, d)
}

// sortDiagnostics orders by file, prompt name, line and code.
func sortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Prompt != b.Prompt {
			return a.Prompt < b.Prompt
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
}
