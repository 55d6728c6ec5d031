package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolve returns the search root for def. The prompt's own prompt_path wins,
// then the library-wide prompt_path, then the directory of the file that
// defined the prompt.
func Resolve(def *Definition, libraryPromptPath string) string {
	if def.PromptPath != "" {
		return def.PromptPath
	}
	if libraryPromptPath != "" {
		return libraryPromptPath
	}
	return filepath.Dir(def.SourcePath)
}

// expandPath turns a prompt_path value written in the file at source into an
// absolute path. "~/" expands to the home directory; other relative values
// are taken relative to the directory holding source.
func expandPath(raw, source string) (string, error) {
	if raw == "~" || strings.HasPrefix(raw, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot resolve %q without a home directory: %w", raw, err)
		}
		return filepath.Join(home, strings.TrimPrefix(raw, "~")), nil
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw), nil
	}
	return filepath.Join(filepath.Dir(source), raw), nil
}
