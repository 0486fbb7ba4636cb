package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/blueprint/internal/estimate"
	"github.com/alexisbeaulieu97/blueprint/internal/model"
	"github.com/alexisbeaulieu97/blueprint/internal/workflow"
)

func diamondPlan() *model.ExecutionPlan {
	nodes := []workflow.Node{
		{ID: "extract", Type: workflow.TypeDatasource},
		{ID: "summarize", Type: workflow.TypeLLMCall, DependsOn: []string{"extract"}},
		{ID: "classify", Type: workflow.TypeLLMCall, DependsOn: []string{"extract"}},
		{ID: "publish", Type: workflow.TypeOutput, DependsOn: []string{"summarize", "classify"}},
	}
	return model.NewExecutionPlan(
		nodes,
		[]string{"extract", "classify", "summarize", "publish"},
		[][]string{{"extract"}, {"classify", "summarize"}, {"publish"}},
		4250,
	)
}

func newDiamondModel() Model {
	result := model.NewValidationResult(nil, []string{"High estimated cost: $120.00 (based on 1K executions/month)"}, 0.0208)
	return NewModel("Content Processing", diamondPlan(), result, estimate.DefaultDurationTable())
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestUpdateMovesCursorWithinBounds(t *testing.T) {
	t.Parallel()

	m := newDiamondModel()
	require.Nil(t, m.Init())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	require.Equal(t, 0, m.Cursor())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 2, m.Cursor())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	require.Equal(t, 1, m.Cursor())
}

func TestUpdateTogglesDetails(t *testing.T) {
	t.Parallel()

	m := newDiamondModel()
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	require.NotContains(t, m.View(), "summarize [llm_call]")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	view := m.View()
	require.Contains(t, view, "classify [llm_call] ~2000ms after extract")
	require.Contains(t, view, "summarize [llm_call] ~2000ms after extract")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotContains(t, m.View(), "summarize [llm_call]")
}

func TestUpdateQuit(t *testing.T) {
	t.Parallel()

	m := newDiamondModel()
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.True(t, m.Quitting())
	require.Empty(t, m.View())

	m = newDiamondModel()
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUpdateReplacesPlan(t *testing.T) {
	t.Parallel()

	m := newDiamondModel()
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})

	single := model.NewExecutionPlan(
		[]workflow.Node{{ID: "only", Type: workflow.TypeOutput}},
		[]string{"only"},
		[][]string{{"only"}},
		50,
	)
	updated, _ := m.Update(PlanMsg{Plan: single, Result: model.NewValidationResult(nil, nil, 0)})
	m = updated.(Model)
	require.Equal(t, 0, m.Cursor(), "cursor clamps to the new plan")
	require.Contains(t, m.View(), "Level 0: only")

	updated, _ = m.Update(ErrorMsg{Err: errors.New("cycle")})
	m = updated.(Model)
	view := m.View()
	require.Contains(t, view, "Recompile failed: cycle")
	require.Contains(t, view, "Level 0: only")
}

func TestViewRendersPlan(t *testing.T) {
	t.Parallel()

	m := newDiamondModel()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := updated.(Model).View()

	require.Contains(t, view, "Blueprint • Content Processing")
	require.Contains(t, view, "2/4 parallel")
	require.Contains(t, view, "Level 0: extract")
	require.Contains(t, view, "Level 1: classify, summarize (parallel)")
	require.Contains(t, view, "Level 2: publish")
	require.Contains(t, view, "Nodes: 4 across 3 levels")
	require.Contains(t, view, "Estimated duration: 4250ms")
	require.Contains(t, view, "Estimated cost: $0.0208 per execution")
	require.Contains(t, view, "High estimated cost")
}

func TestViewWithoutPlan(t *testing.T) {
	t.Parallel()

	m := NewModel("", nil, model.NewValidationResult(nil, nil, 0), estimate.DefaultDurationTable())
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	view := m.View()
	require.Contains(t, view, "Execution plan")
	require.Contains(t, view, "No plan compiled")
	require.Equal(t, 0, m.Cursor())
}

func TestHelpToggle(t *testing.T) {
	t.Parallel()

	m := newDiamondModel()
	require.NotContains(t, m.View(), "more keys")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	require.Contains(t, m.View(), "more keys")
}
