// Package compiler turns a validated workflow into an execution plan.
package compiler

import (
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/blueprint/internal/estimate"
	"github.com/alexisbeaulieu97/blueprint/internal/graph"
	"github.com/alexisbeaulieu97/blueprint/internal/logger"
	"github.com/alexisbeaulieu97/blueprint/internal/metrics"
	"github.com/alexisbeaulieu97/blueprint/internal/model"
	"github.com/alexisbeaulieu97/blueprint/internal/workflow"
	bperrors "github.com/alexisbeaulieu97/blueprint/pkg/errors"
)

// MsgNoNodes is the InputError message for an empty workflow.
const MsgNoNodes = "No nodes to compile"

// Compiler builds execution plans. It holds only read-only configuration.
type Compiler struct {
	durations estimate.DurationTable
	logger    *logger.Logger
	metrics   *metrics.Recorder
	now       func() time.Time
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithDurations replaces the built-in per-type duration table.
func WithDurations(table estimate.DurationTable) Option {
	return func(c *Compiler) {
		c.durations = table.Clone()
	}
}

// WithLogger injects a logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Compiler) {
		c.logger = log
	}
}

// WithMetrics injects a metrics recorder.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(c *Compiler) {
		c.metrics = rec
	}
}

// New constructs a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		durations: estimate.DefaultDurationTable(),
		logger:    logger.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile orders nodes, groups them into parallel levels and estimates the
// sequential duration. It returns *errors.InputError for an empty node list
// and *errors.CompilationError when the graph cannot be fully ordered, which
// includes node lists that declare the same ID twice.
// Callers are expected to validate first; dangling dependencies are ignored.
func (c *Compiler) Compile(nodes []workflow.Node) (*model.ExecutionPlan, error) {
	start := c.now()

	plan, err := c.compile(nodes)
	elapsed := c.now().Sub(start)
	if err != nil {
		c.logger.Error(err, "compilation failed")
		c.metrics.RecordCompilationFailure(elapsed)
		return nil, err
	}

	stats := plan.Stats()
	c.logger.WithFields(map[string]any{
		"nodes":       stats.TotalNodes,
		"levels":      stats.Levels,
		"duration_ms": stats.EstimatedDurationMS,
		"fingerprint": plan.Fingerprint(),
	}).Debug("workflow compiled")
	c.metrics.RecordCompilation(elapsed, stats.Levels, stats.TotalNodes)

	return plan, nil
}

func (c *Compiler) compile(nodes []workflow.Node) (*model.ExecutionPlan, error) {
	if len(nodes) == 0 {
		return nil, bperrors.NewInputError(MsgNoNodes)
	}

	g := graph.New(nodes)

	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	plan := model.NewExecutionPlan(nodes, order, g.Levels(), c.durations.Estimate(nodes))
	if err := plan.Check(); err != nil {
		return nil, fmt.Errorf("inconsistent execution plan: %w", err)
	}
	return plan, nil
}
