package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/hylla/leadflow/internal/platform"
	"github.com/spf13/cobra"
)

// version is stamped at build time.
var version = "dev"

// program is the part of tea.Program the CLI drives.
type program interface {
	Run() (tea.Model, error)
}

// programFactory builds the board program; tests swap it out.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// cliOptions holds the persistent flags shared by every command.
type cliOptions struct {
	configPath string
	dbPath     string
	driver     string
	appName    string
	devMode    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(os.Stdout, os.Stderr)
	if err := fang.Execute(ctx, root, fang.WithVersion(version)); err != nil {
		stop()
		os.Exit(1)
	}
}

// run executes the CLI with args; main wraps the same tree with fang.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// newRootCommand builds the command tree. The bare command opens the board.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	opts := &cliOptions{appName: platform.DefaultAppName, devMode: version == "dev"}
	if envApp := strings.TrimSpace(os.Getenv("LEADFLOW_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}
	if envDev, ok := parseBoolEnv("LEADFLOW_DEV_MODE"); ok {
		opts.devMode = envDev
	}

	root := &cobra.Command{
		Use:           "leadflow",
		Short:         "Sales leads kanban for the terminal",
		Long:          "leadflow tracks sales leads across five pipeline stages.\nRun without a subcommand to open the board.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML (env LEADFLOW_CONFIG)")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite database (env LEADFLOW_DB_PATH)")
	flags.StringVar(&opts.driver, "driver", "", "repository driver: memory, sqlite or postgres")
	flags.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev) and the dev log file")

	root.AddCommand(
		newTUICommand(opts, stderr),
		newServeCommand(opts, stderr),
		newListCommand(opts, stderr),
		newAddCommand(opts, stderr),
		newMoveCommand(opts, stderr),
		newNavCommand(),
		newExportCommand(opts, stderr),
		newImportCommand(opts, stderr),
		newPathsCommand(opts),
	)
	return root
}

// parseBoolEnv parses a boolean environment variable; ok is false when unset or invalid.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// withRuntime opens the runtime for one command and always closes it.
func withRuntime(ctx context.Context, opts *cliOptions, oo openOptions, fn func(*appRuntime) error) error {
	rt, err := openRuntime(ctx, opts, oo)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.Close(); closeErr != nil && rt.logger.ConsoleEnabled() {
			_, _ = fmt.Fprintf(oo.stderr, "warning: close runtime: %v\n", closeErr)
		}
	}()

	rt.logger.Info("command flow start", "command", oo.command)
	if err := fn(rt); err != nil {
		rt.logger.Error("command flow failed", "command", oo.command, "err", err)
		return err
	}
	rt.logger.Info("command flow complete", "command", oo.command)
	return nil
}
