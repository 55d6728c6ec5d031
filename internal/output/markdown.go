package output

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dshills/pa/internal/assemble"
	"github.com/dshills/pa/internal/library"
)

// MarkdownWriter outputs markdown suitable for notes and issue comments.
type MarkdownWriter struct{}

func (m *MarkdownWriter) WriteList(w io.Writer, prompts []*assemble.PromptInfo) error {
	ew := &errWriter{w: w}
	ew.println("## Prompts")
	ew.println("")
	if len(prompts) == 0 {
		ew.println("No prompts defined.")
		return ew.err
	}
	ew.println("| Name | Kind | Description | Tags |")
	ew.println("|------|------|-------------|------|")
	for _, p := range prompts {
		ew.printf("| `%s` | %s | %s | %s |\n",
			p.Name, p.Kind, mdCell(p.Description), mdCell(strings.Join(p.Tags, ", ")))
	}
	return ew.err
}

func (m *MarkdownWriter) WritePrompt(w io.Writer, p *assemble.PromptInfo) error {
	ew := &errWriter{w: w}
	ew.printf("## %s\n\n", p.Name)
	if p.Description != "" {
		ew.printf("%s\n\n", p.Description)
	}
	ew.printf("- **Kind:** %s\n", p.Kind)
	if len(p.Tags) > 0 {
		ew.printf("- **Tags:** %s\n", strings.Join(p.Tags, ", "))
	}
	if len(p.Vars) > 0 {
		vars := make([]string, len(p.Vars))
		for i, v := range p.Vars {
			vars[i] = fmt.Sprintf("`{%d}`", v)
		}
		ew.printf("- **Placeholders:** %s\n", strings.Join(vars, " "))
	}
	ew.printf("- **Stdin:** %s\n", yesNo(p.StdinSupported))
	ew.printf("- **Source:** `%s`\n", p.SourcePath)

	if p.Profile == nil {
		return ew.err
	}
	parts := p.Profile.Parts
	if p.Profile.Template != nil {
		parts = []assemble.Part{*p.Profile.Template}
	}
	for _, part := range parts {
		ew.printf("\n<details>\n<summary>%s</summary>\n\n", filepath.Base(part.Path))
		ew.printf("````%s\n%s", inferLang(part.Path), part.Content)
		if !strings.HasSuffix(part.Content, "\n") {
			ew.println("")
		}
		ew.println("````")
		ew.println("")
		ew.println("</details>")
	}
	return ew.err
}

func (m *MarkdownWriter) WriteReport(w io.Writer, report library.Report) error {
	ew := &errWriter{w: w}
	ew.println("## Configuration Validation")
	ew.println("")
	ew.println("| Severity | Count |")
	ew.println("|----------|-------|")
	ew.printf("| Errors   | %d    |\n", len(report.Errors))
	ew.printf("| Warnings | %d    |\n\n", len(report.Warnings))

	if len(report.Errors) == 0 && len(report.Warnings) == 0 {
		ew.println("Configuration is valid. :white_check_mark:")
		return ew.err
	}

	for _, group := range []struct {
		title string
		diags []library.Diagnostic
	}{
		{"Errors", report.Errors},
		{"Warnings", report.Warnings},
	} {
		if len(group.diags) == 0 {
			continue
		}
		ew.printf("### %s\n\n", group.title)
		for _, d := range group.diags {
			loc := d.File
			if d.Line > 0 {
				loc = fmt.Sprintf("%s:%d", d.File, d.Line)
			}
			ew.printf("- **`%s`** %s `%s`\n", loc, d.Message, d.Code)
		}
		ew.println("")
	}
	return ew.err
}

func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func inferLang(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return "markdown"
	case ".j2", ".jinja", ".jinja2":
		return "jinja"
	case ".txt":
		return "text"
	default:
		return ""
	}
}
