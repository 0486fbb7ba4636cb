package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/blueprint/internal/workflow"
	bperrors "github.com/alexisbeaulieu97/blueprint/pkg/errors"
)

// ParallelGroup is one level of the plan. Members of a group have no
// dependencies on each other and may run concurrently.
type ParallelGroup struct {
	Level    int      `json:"level"`
	Nodes    []string `json:"nodes"`
	Parallel bool     `json:"parallel"`
}

// NewParallelGroup builds a group; Parallel is set when it has more than one member.
func NewParallelGroup(level int, nodes []string) ParallelGroup {
	members := cloneStrings(nodes)
	if members == nil {
		members = []string{}
	}
	return ParallelGroup{Level: level, Nodes: members, Parallel: len(members) > 1}
}

// PlanStats summarises an execution plan.
type PlanStats struct {
	TotalNodes          int `json:"total_nodes"`
	Levels              int `json:"levels"`
	ParallelizableNodes int `json:"parallelizable_nodes"`
	EstimatedDurationMS int `json:"estimated_duration_ms"`
}

// ExecutionPlan is the compiled, immutable form of a workflow.
type ExecutionPlan struct {
	nodes               []workflow.Node
	order               []string
	groups              []ParallelGroup
	estimatedDurationMS int
}

// NewExecutionPlan assembles a plan. Nodes are deep-copied so the plan never
// aliases caller memory; levels are turned into parallel groups in order.
func NewExecutionPlan(nodes []workflow.Node, order []string, levels [][]string, estimatedDurationMS int) *ExecutionPlan {
	plan := &ExecutionPlan{
		nodes:               make([]workflow.Node, len(nodes)),
		order:               cloneStrings(order),
		groups:              make([]ParallelGroup, len(levels)),
		estimatedDurationMS: estimatedDurationMS,
	}
	for i, node := range nodes {
		plan.nodes[i] = node.Clone()
	}
	for i, members := range levels {
		plan.groups[i] = NewParallelGroup(i, members)
	}
	return plan
}

// Nodes returns a deep copy of the planned nodes.
func (p *ExecutionPlan) Nodes() []workflow.Node {
	out := make([]workflow.Node, len(p.nodes))
	for i, node := range p.nodes {
		out[i] = node.Clone()
	}
	return out
}

// ExecutionOrder returns the topological order.
func (p *ExecutionPlan) ExecutionOrder() []string {
	return cloneStrings(p.order)
}

// ParallelGroups returns the levels of the plan.
func (p *ExecutionPlan) ParallelGroups() []ParallelGroup {
	out := make([]ParallelGroup, len(p.groups))
	for i, group := range p.groups {
		out[i] = NewParallelGroup(group.Level, group.Nodes)
	}
	return out
}

// EstimatedDurationMS is the sequential duration estimate in milliseconds.
func (p *ExecutionPlan) EstimatedDurationMS() int {
	return p.estimatedDurationMS
}

// LevelsCount returns the number of parallel groups.
func (p *ExecutionPlan) LevelsCount() int {
	return len(p.groups)
}

// Level returns the members of level i, or an empty slice when out of range.
func (p *ExecutionPlan) Level(i int) []string {
	if i < 0 || i >= len(p.groups) {
		return []string{}
	}
	return append([]string{}, p.groups[i].Nodes...)
}

// IsParallelizable reports whether level i has more than one member.
func (p *ExecutionPlan) IsParallelizable(i int) bool {
	if i < 0 || i >= len(p.groups) {
		return false
	}
	return p.groups[i].Parallel
}

// LevelForNode returns the level index holding nodeID.
func (p *ExecutionPlan) LevelForNode(nodeID string) (int, error) {
	for _, group := range p.groups {
		for _, id := range group.Nodes {
			if id == nodeID {
				return group.Level, nil
			}
		}
	}
	return 0, fmt.Errorf("node %s not present in execution plan", nodeID)
}

// Stats computes summary counters for the plan.
func (p *ExecutionPlan) Stats() PlanStats {
	stats := PlanStats{
		TotalNodes:          len(p.order),
		Levels:              len(p.groups),
		EstimatedDurationMS: p.estimatedDurationMS,
	}
	for _, group := range p.groups {
		if group.Parallel {
			stats.ParallelizableNodes += len(group.Nodes)
		}
	}
	return stats
}

// Check verifies that the plan is coherent: every node appears in exactly one
// level, the levels cover the execution order, and every declared dependency
// sits on a strictly lower level than its dependent.
func (p *ExecutionPlan) Check() error {
	levelIndex := make(map[string]int, len(p.order))
	for _, group := range p.groups {
		if len(group.Nodes) == 0 {
			return bperrors.NewValidationError("parallel_groups", fmt.Sprintf("level %d has no nodes", group.Level), nil)
		}
		for _, id := range group.Nodes {
			if _, ok := levelIndex[id]; ok {
				return bperrors.NewValidationError("parallel_groups", fmt.Sprintf("node %s appears in multiple levels", id), nil)
			}
			levelIndex[id] = group.Level
		}
	}

	if len(levelIndex) != len(p.order) {
		return bperrors.NewValidationError("parallel_groups",
			fmt.Sprintf("levels hold %d nodes but execution order has %d", len(levelIndex), len(p.order)), nil)
	}

	for _, node := range p.nodes {
		level, ok := levelIndex[node.ID]
		if !ok {
			return bperrors.NewValidationError("parallel_groups", fmt.Sprintf("plan missing node %s", node.ID), nil)
		}
		for _, dep := range node.DependsOn {
			depLevel, declared := levelIndex[dep]
			if declared && depLevel >= level {
				return bperrors.NewValidationError("parallel_groups",
					fmt.Sprintf("dependency %s scheduled at or after dependent %s", dep, node.ID), nil)
			}
		}
	}

	return nil
}

// Fingerprint is a hex SHA-256 digest of the execution order and level
// structure. Two compilations of the same workflow yield the same fingerprint.
func (p *ExecutionPlan) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(strings.Join(p.order, "\x00")))
	for _, group := range p.groups {
		fmt.Fprintf(h, "\x01%d:%s", group.Level, strings.Join(group.Nodes, "\x00"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

type executionPlanJSON struct {
	Nodes               []workflow.Node `json:"nodes"`
	ExecutionOrder      []string        `json:"execution_order"`
	ParallelGroups      []ParallelGroup `json:"parallel_groups"`
	EstimatedDurationMS int             `json:"estimated_duration_ms"`
}

// MarshalJSON implements json.Marshaler.
func (p *ExecutionPlan) MarshalJSON() ([]byte, error) {
	return json.Marshal(executionPlanJSON{
		Nodes:               p.nodes,
		ExecutionOrder:      nonNil(p.order),
		ParallelGroups:      p.groups,
		EstimatedDurationMS: p.estimatedDurationMS,
	})
}

// String renders a human readable summary of the plan.
func (p *ExecutionPlan) String() string {
	if p == nil {
		return ""
	}

	var b strings.Builder
	for _, group := range p.groups {
		fmt.Fprintf(&b, "Level %d (%d nodes): %s\n", group.Level, len(group.Nodes), strings.Join(group.Nodes, ", "))
	}
	return b.String()
}
