package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/pa/internal/assemble"
	"github.com/dshills/pa/internal/library"
	"github.com/dshills/pa/internal/redact"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

func (a *app) runPrompt(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadLibrary()
	if err != nil {
		return err
	}
	if len(cfg.Prompts) == 0 {
		return errNoPrompts
	}
	if len(args) == 0 {
		return usageErrorf("a prompt name is required; run 'pa list' to see %d available prompts", len(cfg.Prompts))
	}

	name, rest := args[0], args[1:]
	def, ok := cfg.Lookup(name)
	if !ok {
		return &assemble.RenderError{Kind: assemble.ErrUnknownPrompt, Prompt: name}
	}

	req := assemble.Request{Name: name, DataPath: a.flagData}
	if req.DataPath == "" && len(rest) > 0 {
		// A template takes its data file first unless the argument has no
		// extension at all; a sequence only gets one when it looks like
		// data. Either way the kind check can then reject the request.
		isTemplate := def.Kind() == library.KindTemplate
		if (isTemplate && filepath.Ext(rest[0]) != "") || assemble.IsDataFile(rest[0]) {
			req.DataPath, rest = rest[0], rest[1:]
		}
	}

	if piped, ok := a.readStdin(); ok {
		req.Args = append([]string{piped}, rest...)
	} else {
		req.Args = rest
	}

	out, err := assemble.New(cfg, assemble.WithLogger(a.log)).Render(cmd.Context(), req)
	if err != nil {
		return err
	}
	return a.emit(out)
}

// emit writes rendered text verbatim, scrubbing secrets when asked to.
func (a *app) emit(out string) error {
	if a.settings.Redact {
		res := redact.Text(out)
		if n := res.Total(); n > 0 {
			a.log.Debug("secrets redacted", zap.Int("count", n))
		}
		out = res.Text
	}
	_, err := io.WriteString(a.stdout, out)
	return err
}

// readStdin returns piped input with one trailing newline removed. A
// terminal, a missing stream and empty input all count as no input.
func (a *app) readStdin() (string, bool) {
	if a.stdin == nil {
		return "", false
	}
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", false
	}
	data, err := io.ReadAll(a.stdin)
	if err != nil {
		a.log.Debug("reading stdin failed", zap.Error(err))
		return "", false
	}
	text := string(data)
	if t, ok := strings.CutSuffix(text, "\r\n"); ok {
		text = t
	} else {
		text = strings.TrimSuffix(text, "\n")
	}
	if text == "" {
		return "", false
	}
	return text, true
}

func (a *app) completeRootArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	return a.promptNames(cmd), cobra.ShellCompDirectiveNoFileComp
}

// promptNames lists the library's prompts, or nothing if it cannot be read.
func (a *app) promptNames(cmd *cobra.Command) []string {
	if err := a.setup(cmd); err != nil {
		return nil
	}
	cfg, err := library.Merge(a.settings.ConfigDir, library.WithLogger(a.log))
	if err != nil {
		return nil
	}
	return cfg.Names()
}
