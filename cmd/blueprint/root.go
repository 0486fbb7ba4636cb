package main

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/blueprint/internal/logger"
	"github.com/alexisbeaulieu97/blueprint/internal/metrics"
)

const (
	logFormatConsole = "console"
	logFormatJSON    = "json"
)

type rootFlags struct {
	verbose     bool
	logFormat   string
	metricsFile string
}

// session is the per-invocation state shared by subcommands.
type session struct {
	ctx      context.Context
	log      *logger.Logger
	registry *prometheus.Registry
	recorder *metrics.Recorder
	in       io.Reader
	out      io.Writer
	errOut   io.Writer
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "blueprint",
		Short:         "Blueprint validates and compiles AI workflow definitions into execution plans",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", logFormatConsole, "Log output format (console|json)")
	cmd.PersistentFlags().StringVar(&flags.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")

	cmd.AddCommand(newValidateCmd(flags))
	cmd.AddCommand(newCompileCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func (f *rootFlags) newSession(cmd *cobra.Command) (*session, error) {
	if f.logFormat != logFormatConsole && f.logFormat != logFormatJSON {
		return nil, fmt.Errorf("invalid --log-format %q: expected %s or %s", f.logFormat, logFormatConsole, logFormatJSON)
	}

	level := "info"
	if f.verbose {
		level = "debug"
	}

	log, err := logger.New(logger.Options{
		Level:         level,
		HumanReadable: f.logFormat == logFormatConsole,
		Writer:        cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithCorrelationID(ctx, logger.NewCorrelationID())

	registry := prometheus.NewRegistry()

	return &session{
		ctx:      ctx,
		log:      log.WithContext(ctx).WithFields(map[string]any{"command": cmd.Name()}),
		registry: registry,
		recorder: metrics.NewRecorder(registry),
		in:       cmd.InOrStdin(),
		out:      cmd.OutOrStdout(),
		errOut:   cmd.ErrOrStderr(),
	}, nil
}

// run executes fn inside a fresh session and flushes metrics afterwards,
// whatever the outcome of fn.
func (f *rootFlags) run(cmd *cobra.Command, fn func(*session) error) error {
	s, err := f.newSession(cmd)
	if err != nil {
		return withExitCode(exitUsage, err)
	}

	runErr := fn(s)

	if f.metricsFile != "" {
		if err := prometheus.WriteToTextfile(f.metricsFile, s.registry); err != nil {
			s.log.Error(err, "failed to write metrics")
			if runErr == nil {
				runErr = withExitCode(exitUsage, fmt.Errorf("write metrics: %w", err))
			}
		}
	}

	return runErr
}
