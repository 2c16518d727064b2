package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sambabib/dependency-version-checker/pkg/analyzer"
	"github.com/sambabib/dependency-version-checker/pkg/config"
	"github.com/sambabib/dependency-version-checker/pkg/logger"
	"github.com/sambabib/dependency-version-checker/pkg/manifest"
	"github.com/sambabib/dependency-version-checker/pkg/output"
	"github.com/sambabib/dependency-version-checker/pkg/registry"
	"github.com/spf13/cobra"
)

func runCheck(cmd *cobra.Command, opts *options, args []string) error {
	cfg, err := config.Load(opts.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	logger.SetVerbose(cfg.Verbose)
	logger.Debugf("Using registry %s", cfg.Registry)

	names := args
	if len(names) == 0 {
		name, err := manifest.ReadPackageName(opts.path)
		if err != nil {
			return err
		}
		names = []string{name}
	}

	out := cmd.OutOrStdout()
	if cfg.Format == "text" {
		fmt.Fprintf(out, "Checking the dependencies of: %s\n", strings.Join(names, ", "))
	} else {
		// keep machine-readable output clean
		logger.Infof("Checking the dependencies of: %s", strings.Join(names, ", "))
	}

	ctx := cmd.Context()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	a := analyzer.NewNpmAnalyzer(
		analyzer.WithRegistryURL(cfg.Registry),
		analyzer.WithClientOptions(registry.WithUserAgent("dvc/"+Version)),
	)

	start := time.Now()
	report, err := a.Check(ctx, names...)
	if err != nil {
		return fmt.Errorf("dependency check failed: %w", err)
	}

	return render(out, cfg, report, start)
}

func render(w io.Writer, cfg *config.Config, report analyzer.Report, start time.Time) error {
	var (
		data []byte
		err  error
	)
	switch cfg.Format {
	case "text":
		return output.WriteTextReport(w, report)
	case "json":
		data, err = output.GenerateJSONReport(report)
	case "yaml":
		data, err = output.GenerateYAMLReport(report)
	case "sarif":
		data, err = output.GenerateSarifReport(report, output.SarifOptions{
			RegistryURL: strings.TrimRight(cfg.Registry, "/"),
			ToolVersion: Version,
			StartTime:   start,
			EndTime:     time.Now(),
		})
	default:
		return fmt.Errorf("unknown output format %q", cfg.Format)
	}
	if err != nil {
		return fmt.Errorf("failed to render %s report: %w", cfg.Format, err)
	}

	if _, err := w.Write(data); err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, err = io.WriteString(w, "\n")
	}
	return err
}
