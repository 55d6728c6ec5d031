package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/pa/internal/cache"
	"github.com/dshills/pa/internal/update"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// updateTimeout bounds the whole self-update, download included.
const updateTimeout = 5 * time.Minute

// checkCacheTTL is how long --check trusts a previous release lookup.
const checkCacheTTL = time.Hour

// updateOptions lets tests point self-update at a fake API.
var updateOptions []update.Option

func (a *app) selfUpdateCommand() *cobra.Command {
	var (
		flagVersion string
		flagCheck   bool
	)
	cmd := &cobra.Command{
		Use:   "self-update",
		Short: "Replace this binary with a release from GitHub",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), updateTimeout)
			defer cancel()

			opts := []update.Option{update.WithLogger(a.log)}
			if flagCheck {
				if c, err := cache.New("", checkCacheTTL); err == nil {
					opts = append(opts, update.WithCache(c))
				} else {
					a.log.Debug("release cache unavailable", zap.Error(err))
				}
			}
			opts = append(opts, updateOptions...)
			u, err := update.New(a.settings.GitHubToken, opts...)
			if err != nil {
				return err
			}

			rel, err := u.Find(ctx, flagVersion)
			if err != nil {
				return err
			}
			if flagVersion == "" && !update.Newer(version, rel.Tag) {
				fmt.Fprintf(a.stdout, "pa %s is up to date\n", version)
				return nil
			}
			if flagCheck {
				fmt.Fprintf(a.stdout, "update available: %s -> %s\n", version, rel.Tag)
				return nil
			}

			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locate executable: %w", err)
			}
			if resolved, err := filepath.EvalSymlinks(exe); err == nil {
				exe = resolved
			}
			if err := u.Apply(ctx, rel, exe); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "updated pa to %s\n", rel.Tag)
			return nil
		},
	}
	cmd.Flags().StringVar(&flagVersion, "version", "", "Install this release tag instead of the latest")
	cmd.Flags().BoolVar(&flagCheck, "check", false, "Only report whether an update is available")
	return cmd
}
