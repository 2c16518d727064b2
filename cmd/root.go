package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sambabib/dependency-version-checker/pkg/config"
	"github.com/sambabib/dependency-version-checker/pkg/logger"
	"github.com/sambabib/dependency-version-checker/pkg/registry"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

// Version is set during build using ldflags
var Version = "dev"

// options holds the flags that are not config keys.
type options struct {
	configPath string
	path       string
}

// newRootCmd builds the dvc command tree.
func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "dvc [flags] [<pkg-name>...]",
		Short: "Reports outdated dependencies of npm packages",
		Long: `Dependency Version Checker looks up the latest published version of every
dependency and devDependency of the given packages and reports the ones the
declared semver range does not allow.

Without package names, the name in ./package.json is checked.`,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.String("registry", registry.DefaultURL, "Registry base URL used for all lookups")
	flags.StringP("format", "f", "text", "Output format: text, json, yaml or sarif")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.Duration("timeout", 0, "Abort the check after this long (0 means no limit)")
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file (default: nearest "+config.FileName+")")
	flags.StringVarP(&opts.path, "path", "p", ".", "Directory whose package.json names the package when none is given")

	return cmd
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	logger.Sync()
	os.Exit(code)
}

// run executes dvc with args and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	logger.SetOutput(zapcore.AddSync(stderr))

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	printError(stderr, err)
	return exitCode(err)
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if isManifestNotFound(err) {
		fmt.Fprintln(w, "usage:")
		fmt.Fprintln(w, "  dvc [--registry <url>] [<pkg-name>[ <pkg-name>]]")
		fmt.Fprintln(w, "  or call it within a node module")
	}
}
