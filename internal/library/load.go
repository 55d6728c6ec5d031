package library

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

// BaseFile is the name of the base configuration file inside a library root.
const BaseFile = "config.toml"

// Option configures [Merge] and [Load].
type Option func(*loader)

// WithLogger sets the logger used to trace which files are read and which
// prompts get overridden.
func WithLogger(log *zap.Logger) Option {
	return func(l *loader) {
		if log != nil {
			l.log = log
		}
	}
}

type loader struct {
	log *zap.Logger
}

// rawFile mirrors the TOML schema of a configuration file.
type rawFile struct {
	PromptPath *string              `toml:"prompt_path"`
	Prompt     map[string]rawPrompt `toml:"prompt"`
}

type rawPrompt struct {
	PromptPath  *string   `toml:"prompt_path"`
	Description string    `toml:"description"`
	Tags        []string  `toml:"tags"`
	Prompts     *[]string `toml:"prompts"`
	Template    *string   `toml:"template"`
}

// Fragment is the parsed content of one configuration file.
type Fragment struct {
	Path string
	// PromptPath is the resolved library-wide prompt_path, empty when the
	// file does not set one.
	PromptPath string
	// Prompts holds the file's definitions sorted by name.
	Prompts []*Definition
	// Problems holds invalid-definition diagnostics for this file.
	Problems []Diagnostic
}

// Merge reads dir/config.toml and then every dir/conf.d/*.toml in byte-wise
// filename order, folding their prompt definitions into one namespace. A
// definition replaces any earlier one of the same name.
//
// Merge fails with ErrMissing when config.toml cannot be read and with
// ErrParse when any file is malformed; every file is parsed before
// failing so all parse problems are reported together. Structurally
// invalid definitions do not make Merge fail: they stay in the namespace
// with KindInvalid and are listed by [Config.Problems].
func Merge(dir string, opts ...Option) (*Config, error) {
	l := &loader{log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, &Error{Kind: ErrMissing, Path: dir, Err: err}
	}

	files, err := discover(root)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Root:    root,
		Prompts: make(map[string]*Definition),
	}

	var parseDiags []Diagnostic
	for _, path := range files {
		l.log.Debug("reading configuration", zap.String("path", path))

		frag, diags, err := ReadFragment(path)
		if err != nil {
			return nil, &Error{Kind: ErrMissing, Path: path, Err: err}
		}
		if len(diags) > 0 {
			parseDiags = append(parseDiags, diags...)
			continue
		}
		l.fold(cfg, frag)
	}

	if len(parseDiags) > 0 {
		sortDiagnostics(parseDiags)
		return nil, &Error{Kind: ErrParse, Path: root, Diagnostics: parseDiags}
	}

	l.log.Debug("configuration merged",
		zap.Int("files", len(cfg.Sources)),
		zap.Int("prompts", len(cfg.Prompts)),
		zap.Int("overrides", len(cfg.Superseded)),
	)
	return cfg, nil
}

// Load is [Merge] followed by a structural check: if any definition read
// from any file is invalid, Load fails with ErrInvalid and reports all of
// them.
func Load(dir string, opts ...Option) (*Config, error) {
	cfg, err := Merge(dir, opts...)
	if err != nil {
		return nil, err
	}
	if problems := cfg.Problems(); len(problems) > 0 {
		return nil, &Error{Kind: ErrInvalid, Path: cfg.Root, Diagnostics: problems}
	}
	return cfg, nil
}

// Problems returns the invalid-definition diagnostics collected while
// merging, including those of definitions that were later overridden.
func (c *Config) Problems() []Diagnostic {
	out := make([]Diagnostic, len(c.problems))
	copy(out, c.problems)
	sortDiagnostics(out)
	return out
}

func (l *loader) fold(cfg *Config, frag *Fragment) {
	cfg.Sources = append(cfg.Sources, frag.Path)
	if frag.PromptPath != "" {
		cfg.PromptPath = frag.PromptPath
	}
	for _, def := range frag.Prompts {
		if prev, ok := cfg.Prompts[def.Name]; ok {
			l.log.Debug("prompt overridden",
				zap.String("prompt", def.Name),
				zap.String("previous", prev.SourcePath),
				zap.String("source", def.SourcePath),
			)
			cfg.Superseded = append(cfg.Superseded, Override{Name: def.Name, Previous: prev, Winner: def})
		}
		cfg.Prompts[def.Name] = def
	}
	cfg.problems = append(cfg.problems, frag.Problems...)
}

// discover lists the base file followed by the sorted conf.d fragments.
func discover(root string) ([]string, error) {
	base := filepath.Join(root, BaseFile)
	info, err := os.Stat(base)
	if err != nil {
		return nil, &Error{Kind: ErrMissing, Path: base, Err: err}
	}
	if info.IsDir() {
		return nil, &Error{Kind: ErrMissing, Path: base, Err: errors.New("is a directory")}
	}

	files := []string{base}

	confDir := ConfDir(root)
	entries, err := os.ReadDir(confDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return files, nil
		}
		return nil, &Error{Kind: ErrMissing, Path: confDir, Err: err}
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".toml" {
			continue
		}
		names = append(names, e.Name())
	}
	// Later fragments override earlier ones, so this order is load-bearing.
	sort.Strings(names)

	for _, name := range names {
		files = append(files, filepath.Join(confDir, name))
	}
	return files, nil
}

// ReadFragment parses one configuration file. A non-nil error means the file
// could not be read; TOML problems come back as diagnostics.
func ReadFragment(path string) (*Fragment, []Diagnostic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var raw rawFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, decodeDiagnostics(path, err), nil
	}

	frag := &Fragment{Path: path}

	if raw.PromptPath != nil && *raw.PromptPath != "" {
		resolved, err := expandPath(*raw.PromptPath, path)
		if err != nil {
			return nil, []Diagnostic{{
				File:     path,
				Code:     CodeParseError,
				Message:  fmt.Sprintf("prompt_path: %v", err),
				Severity: SeverityError,
			}}, nil
		}
		frag.PromptPath = resolved
	}

	names := make([]string, 0, len(raw.Prompt))
	for name := range raw.Prompt {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rp := raw.Prompt[name]
		def := &Definition{
			Name:        name,
			Description: rp.Description,
			Tags:        rp.Tags,
			SourcePath:  path,
			Line:        headerLine(data, name),
		}
		if rp.Prompts != nil {
			def.Prompts = *rp.Prompts
			if def.Prompts == nil {
				def.Prompts = []string{}
			}
		}
		if rp.Template != nil {
			def.Template = *rp.Template
			def.hasTemplate = true
		}

		problem := def.problem()
		if rp.PromptPath != nil && *rp.PromptPath != "" {
			resolved, err := expandPath(*rp.PromptPath, path)
			if err != nil && problem == "" {
				problem = fmt.Sprintf("prompt_path: %v", err)
			}
			def.PromptPath = resolved
		}
		if problem != "" {
			frag.Problems = append(frag.Problems, invalidDefinition(def, problem))
		}

		frag.Prompts = append(frag.Prompts, def)
	}

	return frag, nil, nil
}

func invalidDefinition(def *Definition, problem string) Diagnostic {
	return Diagnostic{
		File:     def.SourcePath,
		Line:     def.Line,
		Prompt:   def.Name,
		Code:     CodeInvalidDefinition,
		Message:  fmt.Sprintf("prompt %q: %s", def.Name, problem),
		Severity: SeverityError,
	}
}

func decodeDiagnostics(path string, err error) []Diagnostic {
	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		diags := make([]Diagnostic, 0, len(strict.Errors))
		for _, e := range strict.Errors {
			row, col := e.Position()
			diags = append(diags, Diagnostic{
				File:     path,
				Line:     row,
				Column:   col,
				Code:     CodeUnknownKey,
				Message:  fmt.Sprintf("unexpected key %q", strings.Join(e.Key(), ".")),
				Severity: SeverityError,
			})
		}
		return diags
	}

	var de *toml.DecodeError
	if errors.As(err, &de) {
		row, col := de.Position()
		return []Diagnostic{{
			File:     path,
			Line:     row,
			Column:   col,
			Code:     CodeParseError,
			Message:  de.Error(),
			Severity: SeverityError,
		}}
	}

	return []Diagnostic{{
		File:     path,
		Code:     CodeParseError,
		Message:  err.Error(),
		Severity: SeverityError,
	}}
}

// headerLine finds the 1-based line of the [prompt.<name>] table header.
func headerLine(data []byte, name string) int {
	want := []string{
		"[prompt." + name + "]",
		`[prompt."` + name + `"]`,
		"[prompt.'" + name + "']",
	}
	for i, line := range strings.Split(string(data), "\n") {
		if hash := strings.IndexByte(line, '#'); hash >= 0 {
			line = line[:hash]
		}
		compact := strings.Map(func(r rune) rune {
			if r == ' ' || r == '\t' || r == '\r' {
				return -1
			}
			return r
		}, line)
		for _, w := range want {
			if compact == w {
				return i + 1
			}
		}
	}
	return 0
}
