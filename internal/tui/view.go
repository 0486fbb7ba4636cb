package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current state of the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sections []string
	sections = append(sections, titleStyle.Render(fmt.Sprintf("Blueprint • %s", m.displayTitle())))

	if m.lastErr != nil {
		sections = append(sections, failureStyle.Render("Recompile failed: "+m.lastErr.Error()))
	}

	if m.plan == nil {
		sections = append(sections, serialStyle.Render("No plan compiled"))
		sections = append(sections, m.help.View(m.keys))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	stats := m.plan.Stats()
	ratio := 0.0
	if stats.TotalNodes > 0 {
		ratio = float64(stats.ParallelizableNodes) / float64(stats.TotalNodes)
	}
	label := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d/%d parallel", stats.ParallelizableNodes, stats.TotalNodes))
	sections = append(sections, sectionStyle.Render("Parallelism"),
		lipgloss.JoinHorizontal(lipgloss.Left, label, " ", m.gauge.ViewAs(ratio)))

	sections = append(sections, sectionStyle.Render("Levels"), m.renderLevels())

	sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(m.renderSummary()))
	sections = append(sections, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderLevels() string {
	var lines []string
	for _, group := range m.plan.ParallelGroups() {
		marker := "  "
		style := serialStyle
		if group.Parallel {
			style = parallelStyle
		}
		line := fmt.Sprintf("Level %d: %s", group.Level, strings.Join(group.Nodes, ", "))
		if group.Parallel {
			line += " (parallel)"
		}
		if group.Level == m.cursor {
			marker = "> "
			style = selectedStyle
		}
		lines = append(lines, marker+style.Render(line))

		if m.expanded[group.Level] {
			for _, id := range group.Nodes {
				lines = append(lines, detailStyle.Render(m.describeNode(id)))
			}
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) describeNode(id string) string {
	node, ok := m.nodes[id]
	if !ok {
		return id
	}
	desc := fmt.Sprintf("%s [%s] ~%dms", node.ID, node.Type, m.durations.For(node.Type))
	if len(node.DependsOn) > 0 {
		desc += " after " + strings.Join(node.DependsOn, ", ")
	}
	return desc
}

func (m Model) renderSummary() string {
	stats := m.plan.Stats()
	lines := []string{
		fmt.Sprintf("Nodes: %d across %d levels", stats.TotalNodes, stats.Levels),
		fmt.Sprintf("Estimated duration: %dms", stats.EstimatedDurationMS),
		fmt.Sprintf("Estimated cost: $%.4f per execution", m.result.EstimatedCost()),
	}
	for _, warning := range m.result.Warnings() {
		lines = append(lines, warningStyle.Render("⚠ "+warning))
	}
	return strings.Join(lines, "\n")
}

func (m Model) displayTitle() string {
	if strings.TrimSpace(m.title) != "" {
		return m.title
	}
	return "Execution plan"
}
