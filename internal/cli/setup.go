package cli

import (
	"fmt"

	"github.com/dshills/pa/internal/config"
	"github.com/spf13/cobra"
)

func (a *app) initCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a starter library in the config directory",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := config.Init(a.settings.ConfigDir)
			if err != nil {
				return err
			}
			if len(written) == 0 {
				fmt.Fprintf(a.stderr, "Configuration already exists in %s\n", a.settings.ConfigDir)
				return nil
			}
			for _, path := range written {
				fmt.Fprintf(a.stdout, "Created %s\n", path)
			}
			return nil
		},
	}
}
