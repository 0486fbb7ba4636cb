package estimate

import (
	"math"

	"github.com/alexisbeaulieu97/blueprint/internal/workflow"
)

const (
	// DefaultMargin is the safety multiplier applied to the summed estimate.
	DefaultMargin = 1.3
	// DefaultMaxTokens is assumed when an llm_call node does not set max_tokens.
	DefaultMaxTokens = 1000
	// charsPerToken approximates English token density.
	charsPerToken = 4.0
)

// NodeCost is the per-call estimate for one llm_call node.
type NodeCost struct {
	NodeID       string  `json:"node_id"`
	Model        string  `json:"model"`
	InputTokens  float64 `json:"input_tokens"`
	OutputTokens float64 `json:"output_tokens"`
	Price        Price   `json:"price"`
	KnownModel   bool    `json:"known_model"`
	Cost         float64 `json:"cost"`
}

// CostEstimator prices llm_call nodes from a pricing table.
type CostEstimator struct {
	pricing PricingTable
	margin  float64
}

// NewCostEstimator creates an estimator. A non-positive margin falls back to DefaultMargin.
func NewCostEstimator(pricing PricingTable, margin float64) *CostEstimator {
	if margin <= 0 {
		margin = DefaultMargin
	}
	return &CostEstimator{pricing: pricing.Clone(), margin: margin}
}

// NodeCost estimates a single node. ok is false for nodes that are not llm_call.
func (e *CostEstimator) NodeCost(node workflow.Node) (NodeCost, bool) {
	if node.Type != workflow.TypeLLMCall {
		return NodeCost{}, false
	}

	model, ok := node.StringConfig(workflow.ConfigModel)
	if !ok {
		model = DefaultModel
	}
	prompt, _ := node.StringConfig(workflow.ConfigPrompt)
	maxTokens, ok := node.FloatConfig(workflow.ConfigMaxTokens)
	if !ok {
		maxTokens = DefaultMaxTokens
	}

	price, known := e.pricing.Lookup(model)
	inputTokens := float64(len(prompt)) / charsPerToken

	cost := (inputTokens / 1000 * price.Input) + (maxTokens / 1000 * price.Output)

	return NodeCost{
		NodeID:       node.ID,
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: maxTokens,
		Price:        price,
		KnownModel:   known,
		Cost:         cost,
	}, true
}

// Breakdown returns per-node estimates for every llm_call node, in node order.
func (e *CostEstimator) Breakdown(nodes []workflow.Node) []NodeCost {
	var out []NodeCost
	for _, node := range nodes {
		if nc, ok := e.NodeCost(node); ok {
			out = append(out, nc)
		}
	}
	return out
}

// Estimate sums per-call costs over llm_call nodes, applies the margin and
// rounds to 4 decimal places.
func (e *CostEstimator) Estimate(nodes []workflow.Node) float64 {
	total := 0.0
	for _, nc := range e.Breakdown(nodes) {
		total += nc.Cost
	}
	return Round4(total * e.margin)
}

// Round4 rounds half away from zero to 4 decimal places.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
