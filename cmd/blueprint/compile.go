package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/blueprint/internal/compiler"
	"github.com/alexisbeaulieu97/blueprint/internal/estimate"
	"github.com/alexisbeaulieu97/blueprint/internal/model"
	"github.com/alexisbeaulieu97/blueprint/internal/policy"
	"github.com/alexisbeaulieu97/blueprint/internal/tui"
	"github.com/alexisbeaulieu97/blueprint/internal/validation"
	"github.com/alexisbeaulieu97/blueprint/internal/workflow"
	"github.com/alexisbeaulieu97/blueprint/pkg/diff"
)

type compileOptions struct {
	Path        string
	PolicyPath  string
	JSON        bool
	Budget      float64
	BudgetSet   bool
	Interactive bool
	Watch       bool
	Debounce    time.Duration
}

type compileReport struct {
	Workflow      string                 `json:"workflow"`
	Validation    model.ValidationResult `json:"validation"`
	Plan          *model.ExecutionPlan   `json:"plan"`
	Stats         model.PlanStats        `json:"stats"`
	CostBreakdown []estimate.NodeCost    `json:"cost_breakdown"`
	Fingerprint   string                 `json:"fingerprint"`
}

// isTerminal is swapped in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func newCompileCmd(root *rootFlags) *cobra.Command {
	opts := compileOptions{}

	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a workflow into an execution plan",
		Long: `Compile validates the workflow, enforces the cost budget and prints the
execution order, the parallel levels and the estimated duration. Returns exit
code 1 when validation fails or the budget is exceeded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			opts.BudgetSet = cmd.Flags().Changed("budget")
			return root.run(cmd, func(s *session) error {
				return runCompile(s, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.PolicyPath, "policy", "", "Policy file with pricing, durations and budget overrides")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output the plan in JSON format")
	cmd.Flags().Float64Var(&opts.Budget, "budget", 0, "Fail when the estimated cost per execution exceeds this amount (overrides the policy budget)")
	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "Browse the plan in an interactive viewer")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Recompile whenever the workflow file changes")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", defaultDebounce, "Delay before recompiling after a change in watch mode")

	return cmd
}

// planBuilder runs the validate, budget, compile sequence for one file.
type planBuilder struct {
	path      string
	policy    policy.Policy
	validator *validation.Validator
	compiler  *compiler.Compiler
	costs     *estimate.CostEstimator
}

func (b planBuilder) build() (*workflow.Workflow, *model.ExecutionPlan, model.ValidationResult, error) {
	wf, err := workflow.Load(b.path)
	if err != nil {
		return nil, nil, model.ValidationResult{}, err
	}

	result := b.validator.Validate(wf.Nodes, nil)
	if !result.Valid() {
		return wf, nil, result, withExitCode(exitFailure, errors.New(result.Summary()))
	}

	if !b.policy.WithinBudget(result.EstimatedCost()) {
		return wf, nil, result, withExitCode(exitFailure,
			fmt.Errorf("estimated cost $%.4f exceeds budget $%.4f", result.EstimatedCost(), *b.policy.Budget))
	}

	plan, err := b.compiler.Compile(wf.Nodes)
	if err != nil {
		return wf, nil, result, withExitCode(exitFailure, err)
	}
	return wf, plan, result, nil
}

// breakdown lists the unmargined per-call costs behind the total estimate.
func (b planBuilder) breakdown(wf *workflow.Workflow) []estimate.NodeCost {
	costs := b.costs.Breakdown(wf.Nodes)
	if costs == nil {
		return []estimate.NodeCost{}
	}
	return costs
}

func runCompile(s *session, opts compileOptions) error {
	pol, err := policy.Load(opts.PolicyPath)
	if err != nil {
		return withExitCode(exitUsage, err)
	}

	if opts.BudgetSet {
		budget := opts.Budget
		pol.Budget = &budget
	}

	if opts.Interactive && !isTerminal() {
		return withExitCode(exitUsage, errors.New("--interactive requires stdout to be a terminal"))
	}

	builder := planBuilder{
		path:   opts.Path,
		policy: pol,
		validator: validation.New(append(pol.ValidatorOptions(),
			validation.WithLogger(s.log),
			validation.WithMetrics(s.recorder),
		)...),
		compiler: compiler.New(append(pol.CompilerOptions(),
			compiler.WithLogger(s.log),
			compiler.WithMetrics(s.recorder),
		)...),
		costs: estimate.NewCostEstimator(pol.Pricing, pol.CostMargin),
	}

	wf, plan, result, err := builder.build()
	if err != nil {
		if wf != nil && !result.Valid() {
			printValidation(s.errOut, opts.Path, result)
		}
		return err
	}

	if !opts.Watch {
		if opts.Interactive {
			return tui.Run(s.ctx, tui.NewModel(wf.Name, plan, result, pol.Durations), s.in, s.out, nil)
		}
		return printCompiled(s, wf, plan, result, builder.breakdown(wf), opts.JSON)
	}

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt)
	defer stop()

	watcher, err := newFileWatcher(opts.Path, opts.Debounce, s.log)
	if err != nil {
		return err
	}

	if opts.Interactive {
		return watchInteractive(ctx, s, builder, watcher, tui.NewModel(wf.Name, plan, result, pol.Durations))
	}

	if err := printCompiled(s, wf, plan, result, builder.breakdown(wf), opts.JSON); err != nil {
		return err
	}
	return watchAndDiff(ctx, s, builder, watcher, plan, opts.JSON)
}

func printCompiled(s *session, wf *workflow.Workflow, plan *model.ExecutionPlan, result model.ValidationResult, costs []estimate.NodeCost, asJSON bool) error {
	if asJSON {
		return writeJSON(s.out, compileReport{
			Workflow:      wf.Name,
			Validation:    result,
			Plan:          plan,
			Stats:         plan.Stats(),
			CostBreakdown: costs,
			Fingerprint:   plan.Fingerprint(),
		})
	}
	printPlan(s.out, wf.Name, plan, result, costs)
	return nil
}

// watchAndDiff prints a unified diff of the rendered plan after every change.
// Failed recompiles are reported and the previous plan stays current.
func watchAndDiff(ctx context.Context, s *session, builder planBuilder, watcher *fileWatcher, initial *model.ExecutionPlan, asJSON bool) error {
	current := initial

	return watcher.Run(ctx, func() {
		wf, plan, result, err := builder.build()
		if err != nil {
			if wf != nil && !result.Valid() {
				printValidation(s.errOut, builder.path, result)
			}
			fmt.Fprintf(s.errOut, "%s %v\n", errorStyle.Render("recompile failed:"), err)
			return
		}

		if asJSON {
			if err := printCompiled(s, wf, plan, result, builder.breakdown(wf), true); err != nil {
				s.log.Error(err, "failed to write plan")
			}
			current = plan
			return
		}

		unified := diff.Unified(current.String(), plan.String(), builder.path+" (previous)", builder.path+" (current)")
		if unified == "" {
			fmt.Fprintln(s.out, mutedStyle.Render("Plan unchanged ("+plan.Fingerprint()[:12]+")"))
		} else {
			printDiff(s.out, unified)
		}
		current = plan
	})
}

// watchInteractive feeds recompiled plans into the viewer until the user quits.
func watchInteractive(ctx context.Context, s *session, builder planBuilder, watcher *fileWatcher, m tui.Model) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan tea.Msg, 1)
	watchErr := make(chan error, 1)

	go func() {
		watchErr <- watcher.Run(ctx, func() {
			_, plan, result, err := builder.build()
			var msg tea.Msg = tui.PlanMsg{Plan: plan, Result: result}
			if err != nil {
				msg = tui.ErrorMsg{Err: err}
			}
			select {
			case updates <- msg:
			case <-ctx.Done():
			}
		})
	}()

	err := tui.Run(ctx, m, s.in, s.out, updates)
	cancel()
	if werr := <-watchErr; err == nil {
		err = werr
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
