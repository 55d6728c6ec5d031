package library

import (
	"path/filepath"
	"sort"
)

// Kind distinguishes the two prompt shapes a definition may take.
type Kind string

const (
	KindSequence Kind = "sequence"
	KindTemplate Kind = "template"
	KindInvalid  Kind = "invalid"
)

// Definition is one [prompt.<name>] table as it was read from disk.
type Definition struct {
	Name        string
	Description string
	Tags        []string

	// PromptPath is the per-prompt search root, already absolute. Empty when unset.
	PromptPath string

	// Prompts is nil when the key was absent; an empty non-nil slice means
	// the key was present with no entries.
	Prompts  []string
	Template string

	hasTemplate bool

	// SourcePath is the absolute path of the file that defined the prompt.
	SourcePath string
	// Line is the line of the table header, 0 when it could not be found.
	Line int
}

// NewSequence returns a sequence definition that reads files in order.
func NewSequence(name, source string, files ...string) *Definition {
	if files == nil {
		files = []string{}
	}
	return &Definition{Name: name, SourcePath: source, Prompts: files}
}

// NewTemplate returns a template definition rendering file.
func NewTemplate(name, source, file string) *Definition {
	return &Definition{Name: name, SourcePath: source, Template: file, hasTemplate: true}
}

// Kind reports whether the definition is a sequence or template prompt.
// Definitions with both, neither, or an empty prompts list are KindInvalid.
func (d *Definition) Kind() Kind {
	if d.problem() != "" {
		return KindInvalid
	}
	if d.hasTemplate {
		return KindTemplate
	}
	return KindSequence
}

// Files returns the fragment or template filenames the definition refers to.
func (d *Definition) Files() []string {
	switch d.Kind() {
	case KindSequence:
		return d.Prompts
	case KindTemplate:
		return []string{d.Template}
	default:
		return nil
	}
}

func (d *Definition) problem() string {
	switch {
	case d.Prompts != nil && d.hasTemplate:
		return "prompts and template are exclusive options"
	case d.Prompts == nil && !d.hasTemplate:
		return "prompt must define either 'prompts' or 'template'"
	case d.Prompts != nil && len(d.Prompts) == 0:
		return "prompt sequence cannot be empty"
	case d.hasTemplate && d.Template == "":
		return "template name cannot be empty"
	}
	return ""
}

// Override records a definition that a later fragment replaced.
type Override struct {
	Name     string
	Previous *Definition
	Winner   *Definition
}

// Config is the merged view of a library directory.
type Config struct {
	// Root is the library directory that holds config.toml.
	Root string
	// PromptPath is the library-wide default search root. Empty when unset.
	PromptPath string
	Prompts    map[string]*Definition
	// Sources lists every file consulted, in load order.
	Sources    []string
	Superseded []Override

	problems []Diagnostic
}

// Names returns the prompt names in sorted order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Prompts))
	for name := range c.Prompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the definition for name.
func (c *Config) Lookup(name string) (*Definition, bool) {
	def, ok := c.Prompts[name]
	return def, ok
}

// RootFor returns the directory the files of def are read from.
func (c *Config) RootFor(def *Definition) string {
	return Resolve(def, c.PromptPath)
}

// ConfDir returns the override fragment directory for a library root.
func ConfDir(root string) string {
	return filepath.Join(root, "conf.d")
}
