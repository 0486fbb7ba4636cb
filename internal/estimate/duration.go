package estimate

import "github.com/alexisbeaulieu97/blueprint/internal/workflow"

// DefaultUnknownDurationMS applies to node types missing from the table.
const DefaultUnknownDurationMS = 100

// DurationTable holds fixed per-type durations in milliseconds.
type DurationTable struct {
	ByType  map[workflow.NodeType]int `yaml:"by_type" json:"by_type" validate:"dive,gte=0"`
	Default int                       `yaml:"default" json:"default" validate:"gte=0"`
}

// DefaultDurationTable returns the built-in per-type durations.
func DefaultDurationTable() DurationTable {
	return DurationTable{
		ByType: map[workflow.NodeType]int{
			workflow.TypeDatasource:  200,
			workflow.TypeLLMCall:     2000,
			workflow.TypeCustomCode:  100,
			workflow.TypeConditional: 5,
			workflow.TypeLoop:        500,
			workflow.TypeOutput:      50,
		},
		Default: DefaultUnknownDurationMS,
	}
}

// For returns the duration of a single node type.
func (t DurationTable) For(nodeType workflow.NodeType) int {
	if d, ok := t.ByType[nodeType]; ok {
		return d
	}
	return t.Default
}

// Estimate sums per-type durations over nodes. It ignores the dependency
// graph, so it is an upper bound rather than a critical-path estimate.
func (t DurationTable) Estimate(nodes []workflow.Node) int {
	total := 0
	for _, node := range nodes {
		total += t.For(node.Type)
	}
	return total
}

// Clone returns a copy that does not share the ByType map.
func (t DurationTable) Clone() DurationTable {
	byType := make(map[workflow.NodeType]int, len(t.ByType))
	for k, v := range t.ByType {
		byType[k] = v
	}
	return DurationTable{ByType: byType, Default: t.Default}
}
