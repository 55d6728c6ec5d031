package assemble

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Parts concatenates files named on the command line without substitution.
// A relative name is looked up in cwd, then the library prompt_path, then the
// library root.
func (a *Assembler) Parts(cwd string, names []string) (string, error) {
	if len(names) == 0 {
		return "", &RenderError{Kind: ErrNoParts}
	}

	var b strings.Builder
	for _, name := range names {
		path, err := a.resolvePart(cwd, name)
		if err != nil {
			return "", err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", &RenderError{Kind: ErrMissingFragmentFile, Path: path, Err: err}
		}
		b.Write(data)
	}
	return b.String(), nil
}

func (a *Assembler) resolvePart(cwd, name string) (string, error) {
	if filepath.IsAbs(name) {
		if isFile(name) {
			return name, nil
		}
		return "", missingPart(name)
	}

	for _, dir := range []string{cwd, a.cfg.PromptPath, a.cfg.Root} {
		if dir == "" {
			continue
		}
		if p := filepath.Join(dir, name); isFile(p) {
			return p, nil
		}
	}
	return "", missingPart(name)
}

func missingPart(name string) error {
	return &RenderError{Kind: ErrMissingFragmentFile, Path: name, Err: errors.New("missing part")}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
