package workflow

import (
	"math"
	"strconv"
	"strings"
)

// NodeType tags the kind of work a node performs.
type NodeType string

const (
	TypeDatasource  NodeType = "datasource"
	TypeLLMCall     NodeType = "llm_call"
	TypeCustomCode  NodeType = "custom_code"
	TypeConditional NodeType = "conditional"
	TypeLoop        NodeType = "loop"
	TypeOutput      NodeType = "output"
)

var knownTypes = map[NodeType]struct{}{
	TypeDatasource:  {},
	TypeLLMCall:     {},
	TypeCustomCode:  {},
	TypeConditional: {},
	TypeLoop:        {},
	TypeOutput:      {},
}

// Known reports whether t is one of the recognised node type tags.
func (t NodeType) Known() bool {
	_, ok := knownTypes[t]
	return ok
}

// Config keys read by the estimators and resource checkers.
const (
	ConfigModel      = "model"
	ConfigPrompt     = "prompt"
	ConfigMaxTokens  = "max_tokens"
	ConfigCondition  = "condition"
	ConfigQuery      = "query"
	ConfigRepository = "repository"
	ConfigRevision   = "revision"
	ConfigScript     = "script"
	ConfigCommand    = "command"
)

// Workflow is the declarative description handed to the validator and compiler.
type Workflow struct {
	Name        string `yaml:"name,omitempty" json:"name,omitempty" validate:"max=100"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Nodes       []Node `yaml:"nodes" json:"nodes" validate:"unique=ID,dive"`
}

// Node is a single unit of work. Nodes are treated as immutable once received.
type Node struct {
	ID        string         `yaml:"id" json:"id" validate:"required,node_id"`
	Type      NodeType       `yaml:"type" json:"type"`
	DependsOn []string       `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	Config    map[string]any `yaml:"config,omitempty" json:"config,omitempty"`
}

// StringConfig returns the config value for key when it is a string.
func (n Node) StringConfig(key string) (string, bool) {
	if n.Config == nil {
		return "", false
	}
	raw, ok := n.Config[key]
	if !ok {
		return "", false
	}
	value, ok := raw.(string)
	return value, ok
}

// FloatConfig returns the numeric config value for key. Loaders decode
// numbers differently (YAML yields int, HCL and JSON may yield float64), so all
// numeric kinds and numeric strings are accepted. Fractions are kept as written.
func (n Node) FloatConfig(key string) (float64, bool) {
	if n.Config == nil {
		return 0, false
	}
	switch v := n.Config[key].(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	out := Node{ID: n.ID, Type: n.Type}
	if n.DependsOn != nil {
		out.DependsOn = append([]string(nil), n.DependsOn...)
	}
	if n.Config != nil {
		out.Config = cloneMap(n.Config)
	}
	return out
}

// Clone returns a deep copy of the workflow so results never alias caller memory.
func (w Workflow) Clone() Workflow {
	nodes := make([]Node, len(w.Nodes))
	for i, node := range w.Nodes {
		nodes[i] = node.Clone()
	}
	return Workflow{Name: w.Name, Description: w.Description, Nodes: nodes}
}

// NodeMap builds a lookup table for nodes by ID. Later duplicates win.
func NodeMap(nodes []Node) map[string]Node {
	out := make(map[string]Node, len(nodes))
	for _, node := range nodes {
		out[node.ID] = node
	}
	return out
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return cloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return v
	}
}
