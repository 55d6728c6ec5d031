package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/pa/internal/assemble"
	"github.com/dshills/pa/internal/library"
)

// TextWriter outputs human-readable text.
type TextWriter struct{}

// WriteList prints one prompt name per line.
func (t *TextWriter) WriteList(w io.Writer, prompts []*assemble.PromptInfo) error {
	ew := &errWriter{w: w}
	for _, p := range prompts {
		ew.println(p.Name)
	}
	return ew.err
}

func (t *TextWriter) WritePrompt(w io.Writer, p *assemble.PromptInfo) error {
	ew := &errWriter{w: w}

	ew.printf("name: %s\n", p.Name)
	ew.printf("kind: %s\n", p.Kind)
	if p.Description != "" {
		ew.printf("description: %s\n", p.Description)
	}
	if len(p.Tags) > 0 {
		ew.printf("tags: %s\n", strings.Join(p.Tags, ", "))
	}
	ew.printf("stdin supported: %s\n", yesNo(p.StdinSupported))
	if p.LastModified != "" {
		ew.printf("last modified: %s\n", p.LastModified)
	}
	ew.printf("source: %s\n", p.SourcePath)
	if len(p.Vars) > 0 {
		ew.println("vars:")
		for _, v := range p.Vars {
			ew.printf("  - {%d}\n", v)
		}
	}

	if p.Profile != nil {
		ew.println(strings.Repeat("─", 60))
		for _, part := range p.Profile.Parts {
			ew.printf("# %s\n", part.Path)
		}
		if p.Profile.Template != nil {
			ew.printf("# %s\n", p.Profile.Template.Path)
		}
		ew.printf("%s", p.Profile.Content)
		if p.Profile.Content != "" && !strings.HasSuffix(p.Profile.Content, "\n") {
			ew.println("")
		}
	}
	return ew.err
}

// WriteReport prints one line per diagnostic, errors first, and a closing
// line when the configuration holds no errors.
func (t *TextWriter) WriteReport(w io.Writer, report library.Report) error {
	ew := &errWriter{w: w}
	for _, d := range report.Errors {
		ew.printf("error: %s\n", d)
	}
	for _, d := range report.Warnings {
		ew.printf("warning: %s\n", d)
	}
	if report.OK() {
		ew.println("configuration is valid")
	}
	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
