package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/blueprint/internal/estimate"
	"github.com/alexisbeaulieu97/blueprint/internal/model"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	diffAddStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	diffDelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printValidation(w io.Writer, file string, result model.ValidationResult) {
	if result.Valid() {
		fmt.Fprintf(w, "%s %s\n", okStyle.Render("✔"), file)
	} else {
		fmt.Fprintf(w, "%s %s\n", errorStyle.Render("✖"), file)
	}

	for _, msg := range result.Errors() {
		fmt.Fprintf(w, "  %s %s\n", errorStyle.Render("error:"), msg)
	}
	for _, msg := range result.Warnings() {
		fmt.Fprintf(w, "  %s %s\n", warnStyle.Render("warning:"), msg)
	}
	fmt.Fprintf(w, "  %s\n", mutedStyle.Render(fmt.Sprintf("Estimated cost: $%.4f per execution", result.EstimatedCost())))
}

func printParseFailure(w io.Writer, file string, err error) {
	fmt.Fprintf(w, "%s %s\n  %s %v\n", errorStyle.Render("✖"), file, errorStyle.Render("error:"), err)
}

func printPlan(w io.Writer, name string, plan *model.ExecutionPlan, result model.ValidationResult, costs []estimate.NodeCost) {
	if name == "" {
		name = "workflow"
	}
	fmt.Fprintln(w, headerStyle.Render("Execution plan: "+name))

	fmt.Fprintf(w, "\nOrder: %s\n\n", strings.Join(plan.ExecutionOrder(), " → "))

	for _, group := range plan.ParallelGroups() {
		line := fmt.Sprintf("Level %d: %s", group.Level, strings.Join(group.Nodes, ", "))
		if group.Parallel {
			line += " " + okStyle.Render("(parallel)")
		}
		fmt.Fprintln(w, line)
	}

	stats := plan.Stats()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Nodes: %d across %d levels (%d parallelizable)\n", stats.TotalNodes, stats.Levels, stats.ParallelizableNodes)
	fmt.Fprintf(w, "Estimated duration: %dms\n", stats.EstimatedDurationMS)
	fmt.Fprintf(w, "Estimated cost: $%.4f per execution\n", result.EstimatedCost())
	printCostBreakdown(w, plan, costs)
	for _, msg := range result.Warnings() {
		fmt.Fprintf(w, "%s %s\n", warnStyle.Render("warning:"), msg)
	}
	fmt.Fprintln(w, mutedStyle.Render("Fingerprint: "+plan.Fingerprint()))
}

func printCostBreakdown(w io.Writer, plan *model.ExecutionPlan, costs []estimate.NodeCost) {
	for _, nc := range costs {
		where := "unscheduled"
		if level, err := plan.LevelForNode(nc.NodeID); err == nil {
			where = fmt.Sprintf("level %d", level)
		}
		line := fmt.Sprintf("  %s (%s, %s): $%.4f", nc.NodeID, nc.Model, where, nc.Cost)
		if !nc.KnownModel {
			line += " " + mutedStyle.Render("(fallback price)")
		}
		fmt.Fprintln(w, line)
	}
}

func printDiff(w io.Writer, unified string) {
	for _, line := range strings.Split(strings.TrimSuffix(unified, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"), strings.HasPrefix(line, "@@"):
			fmt.Fprintln(w, mutedStyle.Render(line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprintln(w, diffAddStyle.Render(line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprintln(w, diffDelStyle.Render(line))
		default:
			fmt.Fprintln(w, line)
		}
	}
}
