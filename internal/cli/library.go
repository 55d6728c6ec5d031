package cli

import (
	"errors"
	"io"

	"github.com/dshills/pa/internal/assemble"
	"github.com/dshills/pa/internal/config"
	"github.com/dshills/pa/internal/library"
	"github.com/dshills/pa/internal/output"
	"github.com/spf13/cobra"
)

// formatFlags are the output selectors shared by list, show and validate.
type formatFlags struct {
	json   bool
	format string
}

func (f *formatFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.json, "json", false, "Shorthand for --format json")
	cmd.Flags().StringVar(&f.format, "format", "", "Output format (text, json, yaml, markdown, sarif)")
}

func (a *app) writer(f *formatFlags) (output.Writer, string, error) {
	format := a.settings.Format
	switch {
	case f.json:
		format = config.FormatJSON
	case f.format != "":
		format = f.format
	}
	if err := config.ValidateFormat(format); err != nil {
		return nil, "", usageError{err}
	}
	w, err := output.GetWriter(format, version)
	if err != nil {
		return nil, "", usageError{err}
	}
	return w, format, nil
}

func viewError(err error) error {
	if errors.Is(err, output.ErrUnsupportedView) {
		return usageError{err}
	}
	return err
}

func (a *app) listCommand() *cobra.Command {
	var ff formatFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the prompts the library defines",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, _, err := a.writer(&ff)
			if err != nil {
				return err
			}
			cfg, err := a.loadLibrary()
			if err != nil {
				return err
			}
			if len(cfg.Prompts) == 0 {
				return errNoPrompts
			}
			infos, err := assemble.New(cfg, assemble.WithLogger(a.log)).Infos()
			if err != nil {
				return err
			}
			return viewError(w.WriteList(a.stdout, infos))
		},
	}
	ff.bind(cmd)
	return cmd
}

func (a *app) showCommand() *cobra.Command {
	var ff formatFlags
	cmd := &cobra.Command{
		Use:   "show <prompt>",
		Short: "Show a prompt's metadata and the parts it is built from",
		Args:  usageArgs(cobra.ExactArgs(1)),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return a.promptNames(cmd), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			w, _, err := a.writer(&ff)
			if err != nil {
				return err
			}
			cfg, err := a.loadLibrary()
			if err != nil {
				return err
			}
			info, err := assemble.New(cfg, assemble.WithLogger(a.log)).Profile(args[0])
			if err != nil {
				return err
			}
			return viewError(w.WritePrompt(a.stdout, info))
		},
	}
	ff.bind(cmd)
	return cmd
}

func (a *app) validateCommand() *cobra.Command {
	var ff formatFlags
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the library for errors without rendering",
		Long: "validate parses every configuration file, checks each definition and\n" +
			"confirms referenced fragments and templates are readable. It exits 2\n" +
			"when any error is found; warnings alone do not fail.",
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, format, err := a.writer(&ff)
			if err != nil {
				return err
			}

			var report library.Report
			cfg, err := library.Merge(a.settings.ConfigDir, library.WithLogger(a.log))
			switch {
			case errors.Is(err, library.ErrParse):
				for _, d := range library.Diagnostics(err) {
					report.Add(d)
				}
			case err != nil:
				return err
			default:
				report = library.Validate(cfg)
			}

			var dst io.Writer = a.stdout
			if format == config.FormatText && !report.OK() {
				dst = a.stderr
			}
			if err := w.WriteReport(dst, report); err != nil {
				return viewError(err)
			}
			if !report.OK() {
				a.exitCode = ExitInvalidConfig
			}
			return nil
		},
	}
	ff.bind(cmd)
	return cmd
}
