package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/pa/internal/assemble"
	"github.com/dshills/pa/internal/library"
)

// JSONWriter outputs pretty-printed JSON documents.
type JSONWriter struct{}

func (j *JSONWriter) WriteList(w io.Writer, prompts []*assemble.PromptInfo) error {
	return writeJSON(w, listEnvelope(prompts))
}

func (j *JSONWriter) WritePrompt(w io.Writer, prompt *assemble.PromptInfo) error {
	return writeJSON(w, prompt)
}

func (j *JSONWriter) WriteReport(w io.Writer, report library.Report) error {
	return writeJSON(w, reportEnvelope(report))
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
