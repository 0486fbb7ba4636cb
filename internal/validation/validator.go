// Package validation checks a workflow for structural problems before it is
// compiled. Problems are reported as messages on a model.ValidationResult,
// never as Go errors.
package validation

import (
	"fmt"

	"github.com/alexisbeaulieu97/blueprint/internal/estimate"
	"github.com/alexisbeaulieu97/blueprint/internal/graph"
	"github.com/alexisbeaulieu97/blueprint/internal/logger"
	"github.com/alexisbeaulieu97/blueprint/internal/metrics"
	"github.com/alexisbeaulieu97/blueprint/internal/model"
	"github.com/alexisbeaulieu97/blueprint/internal/workflow"
)

// Messages produced by the structural checks.
const (
	MsgNoNodes = "At least one node required in workflow"
	MsgCycle   = "Cycle detected in execution graph"
)

// DefaultCostWarningThreshold is the estimate above which a warning is emitted.
const DefaultCostWarningThreshold = 100.0

// ResourceChecker reports problems with the external resources a node
// references. It is called once per node and returns zero or more messages.
type ResourceChecker func(node workflow.Node) []string

// Validator runs the structural checks. It holds only read-only configuration
// and may be shared across goroutines.
type Validator struct {
	pricing       estimate.PricingTable
	margin        float64
	warnThreshold float64
	logger        *logger.Logger
	metrics       *metrics.Recorder
}

// Option configures a Validator.
type Option func(*Validator)

// WithPricing replaces the built-in pricing table.
func WithPricing(table estimate.PricingTable) Option {
	return func(v *Validator) {
		v.pricing = table.Clone()
	}
}

// WithMargin overrides the cost safety margin.
func WithMargin(margin float64) Option {
	return func(v *Validator) {
		v.margin = margin
	}
}

// WithCostWarningThreshold overrides the estimate above which a warning is emitted.
func WithCostWarningThreshold(threshold float64) Option {
	return func(v *Validator) {
		v.warnThreshold = threshold
	}
}

// WithLogger injects a logger.
func WithLogger(log *logger.Logger) Option {
	return func(v *Validator) {
		v.logger = log
	}
}

// WithMetrics injects a metrics recorder.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(v *Validator) {
		v.metrics = rec
	}
}

// New constructs a Validator with the built-in tables unless overridden.
func New(opts ...Option) *Validator {
	v := &Validator{
		pricing:       estimate.DefaultPricingTable(),
		margin:        estimate.DefaultMargin,
		warnThreshold: DefaultCostWarningThreshold,
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks nodes and returns the collected errors, warnings and cost
// estimate. checker may be nil. An empty node list short-circuits with a
// single error; every other check runs to completion so that all problems
// are reported together.
func (v *Validator) Validate(nodes []workflow.Node, checker ResourceChecker) model.ValidationResult {
	result := v.validate(nodes, checker)

	v.logger.WithFields(map[string]any{
		"nodes":    len(nodes),
		"errors":   len(result.Errors()),
		"warnings": len(result.Warnings()),
		"cost":     result.EstimatedCost(),
	}).Debug("workflow validated")
	v.metrics.RecordValidation(result.Valid(), len(result.Errors()), result.EstimatedCost())

	return result
}

func (v *Validator) validate(nodes []workflow.Node, checker ResourceChecker) model.ValidationResult {
	if len(nodes) == 0 {
		return model.NewValidationResult([]string{MsgNoNodes}, nil, 0)
	}

	var errs, warnings []string

	g := graph.New(nodes)
	if g.HasCycle() {
		errs = append(errs, MsgCycle)
	}

	errs = append(errs, duplicateIDs(nodes)...)

	for _, node := range nodes {
		for _, dep := range node.DependsOn {
			if !g.Has(dep) {
				errs = append(errs, fmt.Sprintf("Node '%s' depends on non-existent node '%s'", node.ID, dep))
			}
		}
	}

	if checker != nil {
		for _, node := range nodes {
			errs = append(errs, checker(node)...)
		}
	}

	cost := estimate.NewCostEstimator(v.pricing, v.margin).Estimate(nodes)
	if cost > v.warnThreshold {
		warnings = append(warnings, fmt.Sprintf("High estimated cost: $%.2f (based on 1K executions/month)", cost))
	}

	return model.NewValidationResult(errs, warnings, cost)
}

// duplicateIDs reports every occurrence of a node id after the first.
func duplicateIDs(nodes []workflow.Node) []string {
	var errs []string
	seen := make(map[string]struct{}, len(nodes))
	for _, node := range nodes {
		if _, ok := seen[node.ID]; ok {
			errs = append(errs, fmt.Sprintf("Duplicate node id '%s'", node.ID))
			continue
		}
		seen[node.ID] = struct{}{}
	}
	return errs
}
