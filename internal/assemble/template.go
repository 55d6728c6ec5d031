package assemble

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/flosch/pongo2/v6"

	"github.com/dshills/pa/internal/library"
)

func init() {
	// Prompts are plain text, not HTML.
	pongo2.SetAutoescape(false)
}

// ArgsKey is the context key holding extra positional arguments.
const ArgsKey = "_args"

// RenderTemplate renders the template file name against the data file at
// dataPath. The template and anything it includes are looked up in roots,
// first match wins. Non-empty args are exposed to the template as _args.
func RenderTemplate(name string, roots []string, dataPath string, args []string) (string, error) {
	if _, ok := DetectFormat(dataPath); !ok {
		return "", &RenderError{Kind: ErrUnknownDataFormat, Path: dataPath, Err: errors.New("expected a .json or .toml file")}
	}

	found, root := locateIn(name, roots)
	if found == "" {
		return "", &RenderError{Kind: ErrMissingFragmentFile, Path: name, Err: errors.New("template not found in search roots")}
	}

	data, err := LoadData(dataPath)
	if err != nil {
		return "", err
	}

	set, err := templateSet(root, roots, found)
	if err != nil {
		return "", &RenderError{Kind: ErrTemplateFailure, Path: found, Err: err}
	}

	tpl, err := set.FromFile(name)
	if err != nil {
		return "", &RenderError{Kind: ErrTemplateFailure, Path: found, Err: err}
	}

	ctx := pongo2.Context{}
	for k, v := range data {
		if isIdentifier(k) {
			ctx[k] = v
		}
	}
	if len(args) > 0 {
		ctx[ArgsKey] = args
	}

	out, err := tpl.Execute(ctx)
	if err != nil {
		return "", &RenderError{Kind: ErrTemplateFailure, Path: found, Err: err}
	}
	return out, nil
}

// locate returns the first regular file named name under roots.
func locate(name string, roots []string) string {
	path, _ := locateIn(name, roots)
	return path
}

func locateIn(name string, roots []string) (string, string) {
	for _, root := range roots {
		path := library.FilePath(root, name)
		if isFile(path) {
			return path, root
		}
	}
	return "", ""
}

// templateSet builds loaders over the search roots. Includes are resolved
// against the first loader, so the root holding the template goes first.
func templateSet(first string, roots []string, found string) (*pongo2.TemplateSet, error) {
	ordered := append([]string{first}, roots...)
	seen := make(map[string]bool, len(ordered))

	var loaders []pongo2.TemplateLoader
	for _, root := range ordered {
		if seen[root] {
			continue
		}
		seen[root] = true
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			continue
		}
		loader, err := pongo2.NewLocalFileSystemLoader(root)
		if err != nil {
			return nil, err
		}
		loaders = append(loaders, loader)
	}
	if len(loaders) == 0 {
		// Absolute template name outside every root.
		loader, err := pongo2.NewLocalFileSystemLoader(filepath.Dir(found))
		if err != nil {
			return nil, err
		}
		loaders = append(loaders, loader)
	}
	return pongo2.NewSet("pa", loaders...), nil
}

// isIdentifier reports whether key can be referenced from a template.
func isIdentifier(key string) bool {
	if key == "" {
		return false
	}
	for i, r := range key {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
