package library

import (
	"fmt"
	"os"
	"path/filepath"
)

// Validate checks a merged configuration without rendering anything. It
// reports invalid definitions (including overridden ones), fragment and
// template files that cannot be read, and a duplicate-name warning for every
// definition a later file replaced. The result is sorted.
func Validate(cfg *Config) Report {
	var diags []Diagnostic
	diags = append(diags, cfg.problems...)

	for _, o := range cfg.Superseded {
		diags = append(diags, Diagnostic{
			File:     o.Previous.SourcePath,
			Line:     o.Previous.Line,
			Prompt:   o.Name,
			Code:     CodeDuplicateName,
			Message:  fmt.Sprintf("prompt %q is overridden by %s", o.Name, o.Winner.SourcePath),
			Severity: SeverityWarning,
		})
	}

	for _, name := range cfg.Names() {
		def := cfg.Prompts[name]
		code := CodeMissingFragment
		what := "fragment"
		switch def.Kind() {
		case KindInvalid:
			continue
		case KindTemplate:
			code = CodeMissingTemplate
			what = "template"
		}

		root := cfg.RootFor(def)
		for _, file := range def.Files() {
			if err := checkReadable(FilePath(root, file)); err != nil {
				diags = append(diags, Diagnostic{
					File:     def.SourcePath,
					Line:     def.Line,
					Prompt:   def.Name,
					Code:     code,
					Message:  fmt.Sprintf("prompt %q: %s %q: %v", def.Name, what, file, err),
					Severity: SeverityError,
				})
			}
		}
	}

	sortDiagnostics(diags)

	var r Report
	for _, d := range diags {
		r.Add(d)
	}
	return r
}

// FilePath joins a fragment or template name onto a search root. Absolute
// names are used as they are.
func FilePath(root, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(root, name)
}

func checkReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("not found in %s", filepath.Dir(path))
		}
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}
