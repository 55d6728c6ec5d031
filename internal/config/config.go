package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// AppName names the library directory under the user config directory.
const AppName = "prompt-assembler"

// Output formats accepted by list, show and validate. SARIF only applies to
// validate.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
	FormatSARIF    = "sarif"
)

// Settings are the effective application settings for one invocation.
type Settings struct {
	ConfigDir   string
	Format      string
	Verbose     bool
	Redact      bool
	GitHubToken string
}

// Default returns Settings with all defaults applied. ConfigDir stays empty
// until [Load] resolves it.
func Default() Settings {
	return Settings{
		Format: FormatText,
	}
}

// ConfigDir returns the platform-appropriate library directory.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", AppName), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName), nil
		}
		return filepath.Join(home, "AppData", "Roaming", AppName), nil
	default:
		return filepath.Join(home, ".config", AppName), nil
	}
}

// Load builds the effective settings by merging: defaults <- env <- overrides.
// The overrides map comes from CLI flags (only flags the user set).
func Load(overrides map[string]string) (Settings, error) {
	s := Default()

	if err := mergeEnv(&s); err != nil {
		return Settings{}, err
	}
	if err := mergeOverrides(&s, overrides); err != nil {
		return Settings{}, err
	}
	if err := ValidateFormat(s.Format); err != nil {
		return Settings{}, err
	}

	if s.ConfigDir == "" {
		dir, err := ConfigDir()
		if err != nil {
			return Settings{}, err
		}
		s.ConfigDir = dir
	}
	return s, nil
}

func mergeEnv(s *Settings) error {
	if v := os.Getenv("PA_CONFIG_DIR"); v != "" {
		s.ConfigDir = v
	}
	if v := os.Getenv("PA_FORMAT"); v != "" {
		s.Format = strings.ToLower(v)
	}
	if v := os.Getenv("PA_VERBOSE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PA_VERBOSE must be a boolean: %w", err)
		}
		s.Verbose = b
	}
	if v := os.Getenv("PA_GITHUB_TOKEN"); v != "" {
		s.GitHubToken = v
	}
	return nil
}

func mergeOverrides(s *Settings, overrides map[string]string) error {
	for key, v := range overrides {
		if v == "" {
			continue
		}
		if err := SetField(s, key, v); err != nil {
			return err
		}
	}
	return nil
}

// SetField sets a single setting by key name. Returns error if key is unknown.
func SetField(s *Settings, key, value string) error {
	switch key {
	case "configDir":
		s.ConfigDir = value
	case "format":
		s.Format = strings.ToLower(value)
	case "verbose", "redact":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be a boolean: %w", key, err)
		}
		if key == "verbose" {
			s.Verbose = b
		} else {
			s.Redact = b
		}
	default:
		return fmt.Errorf("unknown setting: %s", key)
	}
	return nil
}

// Formats lists the accepted output formats.
var Formats = []string{FormatText, FormatJSON, FormatYAML, FormatMarkdown, FormatSARIF}

// ValidateFormat rejects unknown output formats.
func ValidateFormat(format string) error {
	for _, f := range Formats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

//go:embed defaults
var defaults embed.FS

// Init seeds dir with the example library unless dir/config.toml already
// exists. It returns the paths it wrote.
func Init(dir string) ([]string, error) {
	base := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(base); err == nil {
		return nil, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("checking %s: %w", base, err)
	}

	if err := os.MkdirAll(filepath.Join(dir, "conf.d"), 0o755); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	entries, err := fs.ReadDir(defaults, "defaults")
	if err != nil {
		return nil, err
	}

	var written []string
	for _, e := range entries {
		target := filepath.Join(dir, e.Name())
		if _, err := os.Stat(target); err == nil {
			continue
		}
		data, err := defaults.ReadFile(path.Join("defaults", e.Name()))
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", target, err)
		}
		written = append(written, target)
	}
	return written, nil
}
