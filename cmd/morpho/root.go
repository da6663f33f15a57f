package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/project8/morpho"
	"github.com/project8/morpho/config"
	"github.com/project8/morpho/logging"
	"github.com/project8/morpho/processors"
)

type rootOptions struct {
	configPath      string
	verbosity       string
	stderrVerbosity string
	logFormat       string
	metricsFile     string
	summary         bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "morpho -c <config> [key.path=value ...]",
		Short: "Run a chain of analysis processors",
		Long: "morpho creates the processors declared under processors-toolbox in the\n" +
			"configuration file, connects their attributes and runs them in order.\n" +
			"Positional key.path=value arguments override configuration entries.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToolbox(cmd.Context(), opts, args, stdout, stderr)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "full path to the configuration file used by morpho")
	f.StringVarP(&opts.verbosity, "verbosity", "v", "DEBUG", "logger verbosity: DEBUG, INFO, WARNING, ERROR or CRITICAL")
	f.StringVar(&opts.stderrVerbosity, "stderr-verbosity", "WARNING", "messages at or above this level go to stderr (alias -sev)")
	f.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write processor metrics in Prometheus text format to this file")
	f.BoolVar(&opts.summary, "summary", false, "print a table of processor outcomes after the run")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

// normalizeArgs maps the single-dash -sev flag onto --stderr-verbosity
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case arg == "-sev":
			out = append(out, "--stderr-verbosity")
		case strings.HasPrefix(arg, "-sev="):
			out = append(out, "--stderr-verbosity="+strings.TrimPrefix(arg, "-sev="))
		default:
			out = append(out, arg)
		}
	}
	return out
}

func runToolbox(ctx context.Context, opts *rootOptions, overrides []string, stdout, stderr io.Writer) error {
	verbosity, err := logging.ParseLevel(opts.verbosity)
	if err != nil {
		return err
	}
	stderrVerbosity, err := logging.ParseLevel(opts.stderrVerbosity)
	if err != nil {
		return err
	}
	if opts.logFormat != "text" && opts.logFormat != "json" {
		return fmt.Errorf("unknown log format %q (text or json)", opts.logFormat)
	}
	logger := logging.New(logging.Options{
		Verbosity:       verbosity,
		StderrVerbosity: stderrVerbosity,
		Format:          opts.logFormat,
		Stdout:          stdout,
		Stderr:          stderr,
	})

	doc, err := config.Load(opts.configPath, logging.Component(logger, "config"))
	if err != nil {
		return err
	}
	if len(overrides) > 0 {
		if doc, err = config.ApplyOverrides(doc, overrides); err != nil {
			return err
		}
	}
	logger.Debug("configuration", "document", doc.Raw)

	reg := prometheus.NewRegistry()
	metrics := morpho.NewMetrics(reg)

	tb, err := morpho.BuildFromDocument(doc, processors.NewRegistry(),
		morpho.WithLogger(logger),
		morpho.WithMetrics(metrics),
	)
	if err != nil {
		logger.Error("error while creating and configuring processors", "error", err)
		return err
	}

	runErr := tb.Run(ctx)
	if opts.summary {
		fmt.Fprintln(stdout, renderSummary(tb.Records()))
	}
	if opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.metricsFile, reg); err != nil {
			logger.Warn("could not write metrics", "file", opts.metricsFile, "error", err)
		}
	}
	return runErr
}
