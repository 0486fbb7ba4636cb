package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginTop(1)

	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	parallelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	serialStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	failureStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	detailStyle   = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("245"))
	summaryStyle  = lipgloss.NewStyle().MarginTop(1)
)
