package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/pa/internal/assemble"
	"github.com/dshills/pa/internal/library"
)

// SARIFWriter outputs validation diagnostics in SARIF v2.1.0 format.
type SARIFWriter struct {
	Version string
}

func (s *SARIFWriter) WriteList(io.Writer, []*assemble.PromptInfo) error {
	return fmt.Errorf("sarif: listing: %w", ErrUnsupportedView)
}

func (s *SARIFWriter) WritePrompt(io.Writer, *assemble.PromptInfo) error {
	return fmt.Errorf("sarif: prompt details: %w", ErrUnsupportedView)
}

func (s *SARIFWriter) WriteReport(w io.Writer, report library.Report) error {
	data, err := json.MarshalIndent(buildSARIF(report, s.Version), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

var ruleDescriptions = map[string]string{
	library.CodeParseError:        "Configuration file is not valid TOML",
	library.CodeUnknownKey:        "Configuration uses a key outside the schema",
	library.CodeInvalidDefinition: "Prompt definition breaks the schema rules",
	library.CodeMissingFragment:   "Sequence fragment file cannot be read",
	library.CodeMissingTemplate:   "Template file cannot be read",
	library.CodeDuplicateName:     "Prompt is overridden by a later file",
}

func buildSARIF(report library.Report, version string) sarifLog {
	results := []sarifResult{}
	var rules []sarifRule
	seen := make(map[string]bool)

	all := append(append([]library.Diagnostic{}, report.Errors...), report.Warnings...)
	for _, d := range all {
		if !seen[d.Code] {
			seen[d.Code] = true
			rules = append(rules, sarifRule{
				ID:               d.Code,
				ShortDescription: sarifMessage{Text: ruleDescriptions[d.Code]},
				DefaultConfig:    sarifDefaultConfig{Level: severityToLevel(d.Severity)},
			})
		}

		loc := sarifLocation{
			PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{URI: d.File},
			},
		}
		if d.Line > 0 {
			loc.PhysicalLocation.Region = &sarifRegion{StartLine: d.Line, StartColumn: d.Column}
		}

		results = append(results, sarifResult{
			RuleID:    d.Code,
			Level:     severityToLevel(d.Severity),
			Message:   sarifMessage{Text: d.Message},
			Locations: []sarifLocation{loc},
		})
	}
	if rules == nil {
		rules = []sarifRule{}
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           "pa",
						Version:        version,
						InformationURI: "https://github.com/dshills/pa",
						Rules:          rules,
					},
				},
				Results: results,
			},
		},
	}
}

func severityToLevel(s library.Severity) string {
	if s == library.SeverityWarning {
		return "warning"
	}
	return "error"
}
