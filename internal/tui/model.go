// Package tui implements the interactive plan viewer opened by
// "blueprint compile --interactive".
package tui

import (
	"context"
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/blueprint/internal/estimate"
	"github.com/alexisbeaulieu97/blueprint/internal/model"
	"github.com/alexisbeaulieu97/blueprint/internal/workflow"
)

// PlanMsg replaces the plan shown by the viewer, for example after the
// workflow file changed on disk.
type PlanMsg struct {
	Plan   *model.ExecutionPlan
	Result model.ValidationResult
}

// ErrorMsg reports a failed recompilation. The previous plan stays visible.
type ErrorMsg struct {
	Err error
}

// Model is the Bubble Tea state of the plan viewer.
type Model struct {
	title     string
	plan      *model.ExecutionPlan
	result    model.ValidationResult
	nodes     map[string]workflow.Node
	durations estimate.DurationTable
	lastErr   error

	cursor   int
	expanded map[int]bool
	quitting bool
	width    int

	keys  keyMap
	help  help.Model
	gauge progress.Model
}

// NewModel constructs a viewer for plan.
func NewModel(title string, plan *model.ExecutionPlan, result model.ValidationResult, durations estimate.DurationTable) Model {
	gauge := progress.New(progress.WithDefaultGradient())
	gauge.Width = 30

	m := Model{
		title:     title,
		durations: durations.Clone(),
		expanded:  make(map[int]bool),
		keys:      defaultKeyMap(),
		help:      help.New(),
		gauge:     gauge,
		width:     80,
	}
	m.setPlan(plan, result)
	return m
}

// Run starts the viewer and blocks until the user quits or ctx is cancelled.
// updates, when non-nil, is drained into the program as it runs.
func Run(ctx context.Context, m Model, in io.Reader, out io.Writer, updates <-chan tea.Msg) error {
	program := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))

	if updates != nil {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-updates:
					if !ok {
						return
					}
					program.Send(msg)
				}
			}
		}()
	}

	_, err := program.Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Cursor returns the selected level.
func (m Model) Cursor() int {
	return m.cursor
}

// Quitting reports whether the user asked to leave.
func (m Model) Quitting() bool {
	return m.quitting
}

func (m *Model) setPlan(plan *model.ExecutionPlan, result model.ValidationResult) {
	m.plan = plan
	m.result = result
	m.lastErr = nil
	m.nodes = make(map[string]workflow.Node)
	if plan == nil {
		m.cursor = 0
		return
	}
	m.nodes = workflow.NodeMap(plan.Nodes())
	if m.cursor >= plan.LevelsCount() {
		m.cursor = max(plan.LevelsCount()-1, 0)
	}
}

func (m Model) levels() int {
	if m.plan == nil {
		return 0
	}
	return m.plan.LevelsCount()
}
