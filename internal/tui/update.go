package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles Bubble Tea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case PlanMsg:
		m.setPlan(msg.Plan, msg.Result)
		return m, nil
	case ErrorMsg:
		m.lastErr = msg.Err
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.levels()-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.levels() > 0 {
			expanded := make(map[int]bool, len(m.expanded)+1)
			for level, open := range m.expanded {
				expanded[level] = open
			}
			expanded[m.cursor] = !expanded[m.cursor]
			m.expanded = expanded
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}
