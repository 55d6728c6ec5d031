package cli

import (
	"errors"
	"fmt"

	"github.com/dshills/pa/internal/assemble"
	"github.com/dshills/pa/internal/library"
	"github.com/spf13/cobra"
)

// errNoPrompts is returned when the library defines nothing to render.
var errNoPrompts = errors.New("no prompts defined; ensure config.toml exists with prompt entries")

// usageError marks a command-line mistake.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

// usageArgs wraps a positional argument validator so its failures exit as
// usage errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

var noArgs = usageArgs(cobra.NoArgs)

func exitCodeFor(err error) int {
	var ue usageError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &ue):
		return ExitUsageError
	case errors.Is(err, errNoPrompts), errors.Is(err, assemble.ErrNoParts):
		return ExitUsageError
	case errors.Is(err, library.ErrMissing):
		return ExitUnreadableConfig
	case errors.Is(err, library.ErrParse), errors.Is(err, library.ErrInvalid):
		return ExitInvalidConfig
	case errors.Is(err, assemble.ErrUnknownPrompt):
		return ExitUnknownPrompt
	case errors.Is(err, assemble.ErrMissingArgument),
		errors.Is(err, assemble.ErrWrongPromptKind),
		errors.Is(err, assemble.ErrUnknownDataFormat),
		errors.Is(err, assemble.ErrInvalidData),
		errors.Is(err, assemble.ErrTemplateFailure),
		errors.Is(err, assemble.ErrMissingFragmentFile):
		return ExitRenderFailure
	default:
		return ExitRuntimeError
	}
}

// reportError prints err to stderr. Load errors with several diagnostics
// list each one on its own line.
func (a *app) reportError(err error) {
	fmt.Fprintf(a.stderr, "error: %v\n", err)
	if diags := library.Diagnostics(err); len(diags) > 1 {
		for _, d := range diags {
			fmt.Fprintf(a.stderr, "  %s\n", d)
		}
	}
}
