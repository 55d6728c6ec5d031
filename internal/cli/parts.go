package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/pa/internal/assemble"
	"github.com/dshills/pa/internal/library"
	"github.com/spf13/cobra"
)

func (a *app) partsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parts <file>...",
		Short: "Concatenate fragment files verbatim",
		Long: "parts prints the named files back to back with no placeholder\n" +
			"substitution. Relative names are looked up in the working directory,\n" +
			"then the library prompt_path, then the library directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.partsLibrary()
			if err != nil {
				return err
			}
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("working directory: %w", err)
			}
			out, err := assemble.New(cfg, assemble.WithLogger(a.log)).Parts(cwd, args)
			if err != nil {
				return err
			}
			return a.emit(out)
		},
	}
}

// partsLibrary loads the library for its search paths. parts works without
// one, falling back to the bare config directory.
func (a *app) partsLibrary() (*library.Config, error) {
	cfg, err := library.Merge(a.settings.ConfigDir, library.WithLogger(a.log))
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, library.ErrMissing) {
		return nil, err
	}
	root, absErr := filepath.Abs(a.settings.ConfigDir)
	if absErr != nil {
		root = a.settings.ConfigDir
	}
	return &library.Config{Root: root, Prompts: map[string]*library.Definition{}}, nil
}
