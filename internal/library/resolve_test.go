package library

import (
	"path/filepath"
	"testing"
)

func TestResolve(t *testing.T) {
	source := filepath.Join("/lib", "conf.d", "team.toml")

	tests := []struct {
		name    string
		def     *Definition
		library string
		want    string
	}{
		{"own prompt_path wins", &Definition{PromptPath: "/own", SourcePath: source}, "/library", "/own"},
		{"library prompt_path", &Definition{SourcePath: source}, "/library", "/library"},
		{"defining file directory", &Definition{SourcePath: source}, "", filepath.Join("/lib", "conf.d")},
		{"own without library", &Definition{PromptPath: "/own", SourcePath: source}, "", "/own"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.def, tt.library); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	source := filepath.Join("/lib", "config.toml")
	tests := []struct {
		raw  string
		want string
	}{
		{"~", home},
		{"~/prompts", filepath.Join(home, "prompts")},
		{"/abs/./dir", "/abs/dir"},
		{"fragments", filepath.Join("/lib", "fragments")},
		{"../up", "/up"},
		{"~user/x", filepath.Join("/lib", "~user", "x")},
	}

	for _, tt := range tests {
		got, err := expandPath(tt.raw, source)
		if err != nil {
			t.Fatalf("expandPath(%q) error: %v", tt.raw, err)
		}
		if got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
