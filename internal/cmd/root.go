package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/sixhats/internal/config"
	"github.com/Iron-Ham/sixhats/internal/errors"
)

// Version is stamped at build time with -ldflags "-X".
var Version = "dev"

// globalOptions holds persistent flags and the configuration they resolve to.
type globalOptions struct {
	configFile string
	v          *viper.Viper
	cfg        *config.Config
}

// NewRootCmd builds a fresh command tree. Each call returns independent
// commands, flag state and configuration.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{v: viper.New()}

	root := &cobra.Command{
		Use:   "sixhats",
		Short: "Six Thinking Hats facilitation tool",
		Long: `sixhats sends a topic through a sequence of thinking-hat personas
(blue, white, red, black, yellow, green), asks a language model to answer as
each hat in turn, and prints the resulting discussion as JSON.

In dialog mode each hat sees a short window of its own earlier remarks and
replies to the previous message; the blue hat periodically re-focuses the
discussion. In batch mode every hat answers the topic independently.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.init()
		},
	}

	root.PersistentFlags().StringVarP(&g.configFile, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/sixhats/config.yaml)")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.NewInvalidInputError(err.Error())
	})

	registerAnalyzeCmd(root, g)
	registerBatchCmd(root, g)
	registerHatsCmd(root, g)
	registerServeCmd(root, g)
	registerMCPCmd(root, g)
	registerWatchCmd(root, g)
	registerHistoryCmd(root, g)
	registerConfigCmd(root, g)
	registerLogsCmd(root, g)

	return root
}

// Execute runs the command tree against os.Args and returns the process exit
// code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return execute(ctx, NewRootCmd())
}

// payloadAnnotation marks commands whose failures are reported as a JSON
// payload on stdout.
const payloadAnnotation = "sixhats/payload"

// execute runs root and maps the outcome to an exit code. Input errors raised
// before a payload command's RunE (flag parsing, argument checks, config
// loading) still produce the error payload.
func execute(ctx context.Context, root *cobra.Command) int {
	cmd, err := root.ExecuteContextC(ctx)

	var ee *exitError
	if err != nil && !errors.As(err, &ee) && errors.IsInputError(err) &&
		cmd != nil && cmd.Annotations[payloadAnnotation] != "" {
		err = writeInputError(cmd.OutOrStdout(), err)
	}
	return exitCode(root.ErrOrStderr(), err)
}

// inputArgs reports argument validation failures as invalid input.
func inputArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return errors.NewInvalidInputError(err.Error()).WithField("args").WithValue(len(args))
		}
		return nil
	}
}

// init resolves configuration from defaults, the config file, and SIXHATS_*
// environment variables.
func (g *globalOptions) init() error {
	v := g.v
	// Set defaults first so they're available even without a config file
	config.SetDefaults(v)

	if g.configFile != "" {
		v.SetConfigFile(g.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(config.ConfigDir())
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("SIXHATS")
	// Replace dots with underscores for nested keys in env vars
	// e.g., SIXHATS_COMPLETION_PROVIDER for completion.provider
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit --config must exist; the default location is optional.
		if g.configFile != "" || !errors.As(err, &notFound) {
			return errors.NewInvalidInputError("cannot read config file").
				WithField("config").
				WithCause(err)
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return errors.NewInvalidInputError("invalid configuration").WithCause(err)
	}
	g.cfg = cfg
	return nil
}

// exitError carries a process exit code for a failure whose details were
// already written to stdout.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// Exit codes.
const (
	exitOK         = 0
	exitFailure    = 1
	exitInputError = 2
)

// exitCode maps err to a process exit code, reporting it on w unless the
// command already did.
func exitCode(w io.Writer, err error) int {
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	if errors.IsInputError(err) {
		return exitInputError
	}
	return exitFailure
}
