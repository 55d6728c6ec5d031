package output

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dshills/pa/internal/assemble"
	"github.com/dshills/pa/internal/library"
)

// YAMLWriter outputs the json documents as YAML.
type YAMLWriter struct{}

func (y *YAMLWriter) WriteList(w io.Writer, prompts []*assemble.PromptInfo) error {
	return writeYAML(w, listEnvelope(prompts))
}

func (y *YAMLWriter) WritePrompt(w io.Writer, prompt *assemble.PromptInfo) error {
	return writeYAML(w, prompt)
}

func (y *YAMLWriter) WriteReport(w io.Writer, report library.Report) error {
	return writeYAML(w, reportEnvelope(report))
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing YAML: %w", err)
	}
	return enc.Close()
}
