package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var shells = []string{"bash", "zsh", "fish", "powershell"}

func (a *app) completionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "completions <bash|zsh|fish|powershell>",
		Short:     "Generate a shell completion script",
		Args:      usageArgs(cobra.ExactArgs(1)),
		ValidArgs: shells,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			out := a.stdout
			shell := strings.ToLower(args[0])

			var err error
			switch shell {
			case "bash":
				err = root.GenBashCompletionV2(out, true)
			case "zsh":
				err = root.GenZshCompletion(out)
			case "fish":
				err = root.GenFishCompletion(out, true)
			case "powershell":
				err = root.GenPowerShellCompletionWithDesc(out)
			default:
				return usageErrorf("unsupported shell '%s'", args[0])
			}
			if err != nil {
				return err
			}

			// Scripts that want the names without invoking pa can read them here.
			names := strings.Join(a.promptNames(cmd), " ")
			if shell == "powershell" {
				_, err = fmt.Fprintf(out, "# prompts: %s\n", names)
			} else {
				_, err = fmt.Fprintf(out, "_pa_prompt_list=%q\n", names)
			}
			return err
		},
	}
}
