package library

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestMergeBaseOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.toml"), `
[prompt.greet]
description = "Say hello"
tags = ["demo"]
prompts = ["hello.md", "bye.md"]

[prompt.report]
template = "report.j2"
`)

	cfg, err := Merge(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"greet", "report"}, cfg.Names())
	assert.Equal(t, []string{filepath.Join(dir, "config.toml")}, cfg.Sources)
	assert.Empty(t, cfg.Superseded)

	greet, ok := cfg.Lookup("greet")
	require.True(t, ok)
	assert.Equal(t, KindSequence, greet.Kind())
	assert.Equal(t, "Say hello", greet.Description)
	assert.Equal(t, []string{"demo"}, greet.Tags)
	assert.Equal(t, []string{"hello.md", "bye.md"}, greet.Files())
	assert.Equal(t, 2, greet.Line)

	report, ok := cfg.Lookup("report")
	require.True(t, ok)
	assert.Equal(t, KindTemplate, report.Kind())
	assert.Equal(t, []string{"report.j2"}, report.Files())
	assert.Equal(t, 7, report.Line)

	_, ok = cfg.Lookup("missing")
	assert.False(t, ok)
}

func TestMergeOverrideOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.toml"), "[prompt.greet]\nprompts = [\"base.md\"]\n")
	// Written out of order on purpose; load order is by name.
	writeFile(t, filepath.Join(dir, "conf.d", "b.toml"), "[prompt.greet]\nprompts = [\"b.md\"]\n")
	writeFile(t, filepath.Join(dir, "conf.d", "a.toml"), "[prompt.greet]\nprompts = [\"a.md\"]\n\n[prompt.extra]\nprompts = [\"x.md\"]\n")
	writeFile(t, filepath.Join(dir, "conf.d", "notes.txt"), "not toml")
	writeFile(t, filepath.Join(dir, "conf.d", "nested", "c.toml"), "[prompt.greet]\nprompts = [\"c.md\"]\n")

	cfg, err := Merge(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "config.toml"),
		filepath.Join(dir, "conf.d", "a.toml"),
		filepath.Join(dir, "conf.d", "b.toml"),
	}, cfg.Sources)

	greet, _ := cfg.Lookup("greet")
	assert.Equal(t, []string{"b.md"}, greet.Prompts)
	assert.Equal(t, filepath.Join(dir, "conf.d", "b.toml"), greet.SourcePath)
	assert.Equal(t, []string{"extra", "greet"}, cfg.Names())

	require.Len(t, cfg.Superseded, 2)
	assert.Equal(t, filepath.Join(dir, "config.toml"), cfg.Superseded[0].Previous.SourcePath)
	assert.Equal(t, filepath.Join(dir, "conf.d", "a.toml"), cfg.Superseded[0].Winner.SourcePath)
	assert.Equal(t, filepath.Join(dir, "conf.d", "a.toml"), cfg.Superseded[1].Previous.SourcePath)
	assert.Equal(t, filepath.Join(dir, "conf.d", "b.toml"), cfg.Superseded[1].Winner.SourcePath)
}

func TestMergeReplacesWholeDefinition(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.toml"), `
[prompt.greet]
description = "old"
tags = ["a", "b"]
prompts = ["base.md"]
`)
	writeFile(t, filepath.Join(dir, "conf.d", "10-greet.toml"), `
[prompt.greet]
template = "greet.j2"
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	greet, _ := cfg.Lookup("greet")
	assert.Equal(t, KindTemplate, greet.Kind())
	assert.Empty(t, greet.Description)
	assert.Nil(t, greet.Tags)
	assert.Nil(t, greet.Prompts)
}

func TestMergeWithoutConfDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.toml"), "")

	cfg, err := Merge(dir)
	require.NoError(t, err)
	assert.Empty(t, cfg.Names())
	assert.Len(t, cfg.Sources, 1)
}

func TestMergeMissing(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
	}{
		{
			name: "missing directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope")
			},
		},
		{
			name: "missing config.toml",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, filepath.Join(dir, "conf.d", "a.toml"), "")
				return dir
			},
		},
		{
			name: "config.toml is a directory",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				require.NoError(t, os.MkdirAll(filepath.Join(dir, "config.toml"), 0o755))
				return dir
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Merge(tt.setup(t))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissing))
			assert.False(t, errors.Is(err, ErrParse))
		})
	}
}

func TestMergeParseErrorsAccumulate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.toml"), "[prompt.ok]\nprompts = [\"a.md\"]\n")
	writeFile(t, filepath.Join(dir, "conf.d", "a.toml"), "[prompt.bad\nprompts = [\"a.md\"]\n")
	writeFile(t, filepath.Join(dir, "conf.d", "b.toml"), "prompt_path = \n")

	_, err := Merge(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))

	diags := Diagnostics(err)
	require.Len(t, diags, 2)
	assert.Equal(t, filepath.Join(dir, "conf.d", "a.toml"), diags[0].File)
	assert.Equal(t, filepath.Join(dir, "conf.d", "b.toml"), diags[1].File)
	for _, d := range diags {
		assert.Equal(t, CodeParseError, d.Code)
		assert.Equal(t, SeverityError, d.Severity)
		assert.NotEmpty(t, d.Message)
	}
	assert.Contains(t, err.Error(), "2 problems")
}

func TestMergeUnknownKey(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.toml"), "[prompt.a]\nprompts = [\"a.md\"]\ncolour = \"red\"\n")

	_, err := Merge(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))

	diags := Diagnostics(err)
	require.Len(t, diags, 1)
	assert.Equal(t, CodeUnknownKey, diags[0].Code)
	assert.Equal(t, 3, diags[0].Line)
	assert.Contains(t, diags[0].Message, "colour")
}

func TestMergeRejectsDeclaredStdinAndVars(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.toml"), `[prompt.alpha]
prompts = ["a.md"]
stdin = true
vars = [{ name = "topic", required = true, type = "string", description = "what" }]
`)

	_, err := Merge(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))

	diags := Diagnostics(err)
	require.NotEmpty(t, diags)
	var messages []string
	for _, d := range diags {
		assert.Equal(t, CodeUnknownKey, d.Code)
		messages = append(messages, d.Message)
	}
	joined := strings.Join(messages, "\n")
	assert.Contains(t, joined, `"prompt.alpha.stdin"`)
	assert.Contains(t, joined, `"prompt.alpha.vars`)
}

func TestMergeKeepsInvalidDefinitions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.toml"), `
[prompt.both]
prompts = ["a.md"]
template = "a.j2"

[prompt.neither]
description = "nothing to render"

[prompt.empty]
prompts = []

[prompt.fine]
prompts = ["a.md"]
`)

	cfg, err := Merge(dir)
	require.NoError(t, err)

	for _, name := range []string{"both", "neither", "empty"} {
		def, ok := cfg.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, KindInvalid, def.Kind(), name)
		assert.Nil(t, def.Files(), name)
	}

	problems := cfg.Problems()
	require.Len(t, problems, 3)
	assert.Equal(t, "both", problems[0].Prompt)
	assert.Contains(t, problems[0].Message, "exclusive")
	assert.Equal(t, 2, problems[0].Line)
	assert.Equal(t, "empty", problems[1].Prompt)
	assert.Contains(t, problems[1].Message, "cannot be empty")
	assert.Equal(t, "neither", problems[2].Prompt)
	assert.Contains(t, problems[2].Message, "either 'prompts' or 'template'")

	_, err = Load(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.Len(t, Diagnostics(err), 3)
}

func TestLoadFailsOnOverriddenInvalidDefinition(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.toml"), "[prompt.a]\nprompts = []\n")
	writeFile(t, filepath.Join(dir, "conf.d", "fix.toml"), "[prompt.a]\nprompts = [\"a.md\"]\n")

	cfg, err := Merge(dir)
	require.NoError(t, err)
	def, _ := cfg.Lookup("a")
	assert.Equal(t, KindSequence, def.Kind())

	_, err = Load(dir)
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestMergePromptPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.toml"), `
prompt_path = "fragments"

[prompt.rel]
prompt_path = "../shared"
prompts = ["a.md"]

[prompt.abs]
prompt_path = "/opt/prompts"
prompts = ["a.md"]

[prompt.tilde]
prompt_path = "~/prompts"
prompts = ["a.md"]

[prompt.plain]
prompts = ["a.md"]
`)
	writeFile(t, filepath.Join(dir, "conf.d", "team.toml"), `
[prompt.team]
prompt_path = "team"
prompts = ["a.md"]
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "fragments"), cfg.PromptPath)

	tests := map[string]string{
		"rel":   filepath.Join(filepath.Dir(dir), "shared"),
		"abs":   "/opt/prompts",
		"tilde": filepath.Join(home, "prompts"),
		"plain": filepath.Join(dir, "fragments"),
		"team":  filepath.Join(dir, "conf.d", "team"),
	}
	for name, want := range tests {
		def, ok := cfg.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, want, cfg.RootFor(def), name)
	}
}

func TestMergeLibraryPromptPathLastWriteWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.toml"), "prompt_path = \"one\"\n")
	writeFile(t, filepath.Join(dir, "conf.d", "a.toml"), "prompt_path = \"/two\"\n")
	writeFile(t, filepath.Join(dir, "conf.d", "b.toml"), "[prompt.x]\nprompts = [\"x.md\"]\n")

	cfg, err := Merge(dir)
	require.NoError(t, err)
	assert.Equal(t, "/two", cfg.PromptPath)
}

func TestMergeLogsOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.toml"), "[prompt.greet]\nprompts = [\"base.md\"]\n")
	writeFile(t, filepath.Join(dir, "conf.d", "a.toml"), "[prompt.greet]\nprompts = [\"a.md\"]\n")

	core, logs := observer.New(zap.DebugLevel)
	_, err := Merge(dir, WithLogger(zap.New(core)))
	require.NoError(t, err)

	assert.Equal(t, 2, logs.FilterMessage("reading configuration").Len())
	overridden := logs.FilterMessage("prompt overridden").All()
	require.Len(t, overridden, 1)
	assert.Equal(t, "greet", overridden[0].ContextMap()["prompt"])
}

func TestHeaderLine(t *testing.T) {
	data := []byte(strings.Join([]string{
		"# [prompt.greet]",
		"[prompt.other]",
		"prompts = [\"a.md\"]",
		"",
		`[ prompt . "greet" ]  # the real one`,
		"prompts = [\"b.md\"]",
	}, "\n"))

	assert.Equal(t, 5, headerLine(data, "greet"))
	assert.Equal(t, 2, headerLine(data, "other"))
	assert.Equal(t, 0, headerLine(data, "absent"))
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: ErrMissing, Path: "/x/config.toml", Err: os.ErrNotExist}
	assert.Equal(t, "configuration unreadable: /x/config.toml: file does not exist", err.Error())
	assert.True(t, errors.Is(err, ErrMissing))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	err = &Error{Kind: ErrInvalid, Path: "/x", Diagnostics: []Diagnostic{{
		File: "/x/config.toml", Line: 4, Code: CodeInvalidDefinition, Message: "bad",
	}}}
	assert.Equal(t, "configuration invalid: /x: /x/config.toml:4: bad (invalid-definition)", err.Error())
	assert.Nil(t, Diagnostics(errors.New("plain")))
}
