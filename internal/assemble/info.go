package assemble

import (
	"context"
	"os"
	"time"

	"github.com/dshills/pa/internal/library"
)

// PromptInfo describes a prompt for listings.
type PromptInfo struct {
	Name           string       `json:"name" yaml:"name"`
	Kind           library.Kind `json:"kind" yaml:"kind"`
	Description    string       `json:"description,omitempty" yaml:"description,omitempty"`
	Tags           []string     `json:"tags,omitempty" yaml:"tags,omitempty"`
	Vars           []int        `json:"vars,omitempty" yaml:"vars,omitempty"`
	StdinSupported bool         `json:"stdin_supported" yaml:"stdin_supported"`
	LastModified   string       `json:"last_modified,omitempty" yaml:"last_modified,omitempty"`
	SourcePath     string       `json:"source_path" yaml:"source_path"`
	Profile        *Profile     `json:"profile,omitempty" yaml:"profile,omitempty"`
}

// Part is one file of a prompt and its raw content.
type Part struct {
	Path    string `json:"path" yaml:"path"`
	Content string `json:"content" yaml:"content"`
}

// Profile is the unrendered content behind a prompt.
type Profile struct {
	Kind     library.Kind `json:"kind" yaml:"kind"`
	Parts    []Part       `json:"parts,omitempty" yaml:"parts,omitempty"`
	Template *Part        `json:"template,omitempty" yaml:"template,omitempty"`
	// Content is the parts joined, or the template text.
	Content string `json:"content" yaml:"content"`
}

// Info describes the named prompt. Files that cannot be read are skipped;
// listing a prompt never fails because of its fragments.
func (a *Assembler) Info(name string) (*PromptInfo, error) {
	def, err := a.lookup(name)
	if err != nil {
		return nil, err
	}

	info := &PromptInfo{
		Name:        def.Name,
		Kind:        def.Kind(),
		Description: def.Description,
		Tags:        def.Tags,
		SourcePath:  def.SourcePath,
	}

	root := a.cfg.RootFor(def)
	var latest time.Time
	seen := make(map[int]bool)
	for i, file := range def.Files() {
		path := library.FilePath(root, file)
		if info.Kind == library.KindTemplate {
			if found := locate(file, a.searchRoots(def)); found != "" {
				path = found
			}
		}
		if st, err := os.Stat(path); err == nil && st.ModTime().After(latest) {
			latest = st.ModTime()
		}
		if info.Kind != library.KindSequence {
			continue
		}
		text, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		for _, idx := range Scan(string(text)) {
			if idx == 0 && i == 0 {
				info.StdinSupported = true
			}
			seen[idx] = true
		}
	}
	for idx := 0; idx <= MaxPlaceholder; idx++ {
		if seen[idx] {
			info.Vars = append(info.Vars, idx)
		}
	}
	if !latest.IsZero() {
		info.LastModified = latest.UTC().Format(time.RFC3339)
	}
	return info, nil
}

// Infos describes every prompt in name order.
func (a *Assembler) Infos() ([]*PromptInfo, error) {
	names := a.cfg.Names()
	out := make([]*PromptInfo, 0, len(names))
	for _, name := range names {
		info, err := a.Info(name)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

// Profile is [Assembler.Info] with the raw content of every file attached.
// Unlike Info it fails when a file cannot be read.
func (a *Assembler) Profile(name string) (*PromptInfo, error) {
	info, err := a.Info(name)
	if err != nil {
		return nil, err
	}
	def, _ := a.cfg.Lookup(name)
	root := a.cfg.RootFor(def)

	profile := &Profile{Kind: info.Kind}
	switch info.Kind {
	case library.KindSequence:
		fragments, err := a.readFragments(context.Background(), def)
		if err != nil {
			return nil, err
		}
		for _, f := range fragments {
			profile.Parts = append(profile.Parts, Part{Path: f.Path, Content: f.Text})
			profile.Content += f.Text
		}
	case library.KindTemplate:
		path := library.FilePath(root, def.Template)
		if found := locate(def.Template, a.searchRoots(def)); found != "" {
			path = found
		}
		text, err := os.ReadFile(path)
		if err != nil {
			return nil, &RenderError{Kind: ErrMissingFragmentFile, Prompt: name, Path: path, Err: err}
		}
		profile.Template = &Part{Path: path, Content: string(text)}
		profile.Content = string(text)
	}

	info.Profile = profile
	return info, nil
}
