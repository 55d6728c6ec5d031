package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dshills/pa/internal/config"
	"github.com/dshills/pa/internal/library"
	"github.com/dshills/pa/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is overridden at link time with -ldflags "-X".
var version = "dev"

// Exit codes. These are stable; scripts depend on them.
const (
	ExitSuccess          = 0
	ExitRenderFailure    = 1
	ExitInvalidConfig    = 2
	ExitUnknownPrompt    = 3
	ExitUsageError       = 4
	ExitRuntimeError     = 5
	ExitUnreadableConfig = 127
)

// app holds the streams and flag values of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	flagVerbose   bool
	flagConfigDir string
	flagData      string
	flagRedact    bool

	settings config.Settings
	log      *zap.Logger

	// exitCode is set by command handlers that succeed but still need a
	// non-zero status, such as validate finding errors.
	exitCode int
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		log:    zap.NewNop(),
	}
}

// Run executes pa with the process arguments and returns an exit code.
func Run() int {
	return Execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// Execute runs the command tree against the given arguments and streams.
func Execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := newApp(stdin, stdout, stderr)
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		a.reportError(err)
		return exitCodeFor(err)
	}
	return a.exitCode
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "pa <prompt> [args...]",
		Short: "Assemble prompts from a library of fragments and templates",
		Long: "pa renders named prompts defined in config.toml and conf.d/*.toml.\n" +
			"Sequence prompts concatenate fragments and fill {0}..{8} from the\n" +
			"arguments (piped stdin becomes {0}); template prompts render against\n" +
			"a JSON or TOML data file.",
		Args:              cobra.ArbitraryArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.setup(cmd) },
		RunE:              a.runPrompt,
		ValidArgsFunction: a.completeRootArgs,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.BoolVarP(&a.flagVerbose, "verbose", "v", false, "Log configuration loading and rendering to stderr")
	pf.StringVar(&a.flagConfigDir, "config-dir", "", "Library directory (default: $PA_CONFIG_DIR or the platform config dir)")
	pf.BoolVar(&a.flagRedact, "redact", false, "Replace secrets in rendered output with [REDACTED]")

	root.Flags().StringVar(&a.flagData, "data", "", "JSON or TOML data file for template prompts")
	// Flags after the prompt name belong to the prompt.
	root.Flags().SetInterspersed(false)

	root.AddCommand(
		a.listCommand(),
		a.showCommand(),
		a.validateCommand(),
		a.partsCommand(),
		a.completionsCommand(),
		a.initCommand(),
		a.selfUpdateCommand(),
		a.versionCommand(),
	)
	return root
}

// setup resolves settings and the logger from the parsed flags. Completion
// callbacks see flags the pre-run hook did not, so they call it again.
func (a *app) setup(cmd *cobra.Command) error {
	overrides := make(map[string]string)
	if a.flagConfigDir != "" {
		overrides["configDir"] = a.flagConfigDir
	}
	if cmd.Flags().Changed("verbose") {
		overrides["verbose"] = strconv.FormatBool(a.flagVerbose)
	}
	if a.flagRedact {
		overrides["redact"] = "true"
	}

	s, err := config.Load(overrides)
	if err != nil {
		return usageError{err}
	}
	a.settings = s
	a.log = logger.New(s.Verbose, a.stderr)

	a.log.Debug("settings resolved",
		zap.String("config_dir", s.ConfigDir),
		zap.String("format", s.Format),
		zap.Bool("redact", s.Redact),
	)
	return nil
}

func (a *app) loadLibrary() (*library.Config, error) {
	return library.Load(a.settings.ConfigDir, library.WithLogger(a.log))
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print pa version",
		Args:  noArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "pa version %s\n", version)
		},
	}
}
