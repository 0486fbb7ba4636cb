package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/blueprint/internal/model"
	"github.com/alexisbeaulieu97/blueprint/internal/policy"
	"github.com/alexisbeaulieu97/blueprint/internal/resources"
	"github.com/alexisbeaulieu97/blueprint/internal/validation"
	"github.com/alexisbeaulieu97/blueprint/internal/workflow"
)

type validateOptions struct {
	PolicyPath     string
	CheckResources bool
	JSON           bool
}

type validateReport struct {
	File   string                  `json:"file"`
	Error  string                  `json:"error,omitempty"`
	Result *model.ValidationResult `json:"result,omitempty"`
}

func newValidateCmd(root *rootFlags) *cobra.Command {
	opts := validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <file|glob>...",
		Short: "Validate workflow files and estimate their cost",
		Long: `Validate checks each workflow for cycles, duplicate and dangling node
references and estimates the per-execution LLM cost. Arguments may be doublestar
globs such as "workflows/**/*.yaml". Returns exit code 1 when any workflow is
invalid and exit code 2 when a file or the policy cannot be loaded.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.run(cmd, func(s *session) error {
				return runValidate(s, opts, args)
			})
		},
	}

	cmd.Flags().StringVar(&opts.PolicyPath, "policy", "", "Policy file with pricing, durations and budget overrides")
	cmd.Flags().BoolVar(&opts.CheckResources, "check-resources", false, "Also check expressions, queries, scripts, commands and repositories referenced by nodes")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output results in JSON format")

	return cmd
}

func runValidate(s *session, opts validateOptions, patterns []string) error {
	files, err := workflow.Expand(patterns)
	if err != nil {
		return withExitCode(exitUsage, err)
	}

	pol, err := policy.Load(opts.PolicyPath)
	if err != nil {
		return withExitCode(exitUsage, err)
	}

	validator := validation.New(append(pol.ValidatorOptions(),
		validation.WithLogger(s.log),
		validation.WithMetrics(s.recorder),
	)...)

	reports := make([]validateReport, 0, len(files))
	var parseFailures, invalid int

	for _, file := range files {
		wf, err := workflow.Load(file)
		if err != nil {
			parseFailures++
			s.log.WithFields(map[string]any{"file": file}).Error(err, "failed to load workflow")
			reports = append(reports, validateReport{File: file, Error: err.Error()})
			continue
		}

		var checker validation.ResourceChecker
		if opts.CheckResources {
			checker = resources.Default(filepath.Dir(file))
		}

		result := validator.Validate(wf.Nodes, checker)
		if !result.Valid() {
			invalid++
		}
		reports = append(reports, validateReport{File: file, Result: &result})
	}

	if opts.JSON {
		if err := writeJSON(s.out, reports); err != nil {
			return err
		}
	} else {
		for _, report := range reports {
			if report.Result == nil {
				printParseFailure(s.out, report.File, errors.New(report.Error))
				continue
			}
			printValidation(s.out, report.File, *report.Result)
		}
	}

	switch {
	case parseFailures > 0:
		return withExitCode(exitUsage, fmt.Errorf("%d of %d workflow files could not be loaded", parseFailures, len(files)))
	case invalid > 0:
		return withExitCode(exitFailure, fmt.Errorf("%d of %d workflows are invalid", invalid, len(files)))
	}
	return nil
}
