package estimate

import "strings"

// Price is a cost pair in USD per 1000 tokens.
type Price struct {
	Input  float64 `yaml:"input" json:"input" validate:"gte=0"`
	Output float64 `yaml:"output" json:"output" validate:"gte=0"`
}

// ModelPrice associates a model-name fragment with its price.
type ModelPrice struct {
	Fragment string `yaml:"fragment" json:"fragment" validate:"required"`
	Price    `yaml:",inline" json:",inline"`
}

// PricingTable is an ordered list of model fragments plus a fallback price.
// Order matters: the first fragment contained in the model name wins.
type PricingTable struct {
	Models  []ModelPrice `yaml:"models" json:"models" validate:"dive"`
	Default Price        `yaml:"default" json:"default"`
}

// DefaultModel is assumed for llm_call nodes that do not name a model.
const DefaultModel = "gpt-3.5-turbo"

// DefaultPricingTable returns the built-in pricing. Unmatched models are
// priced at 0.010/0.030.
func DefaultPricingTable() PricingTable {
	return PricingTable{
		Models: []ModelPrice{
			{Fragment: "claude-3-5-sonnet", Price: Price{Input: 0.003, Output: 0.015}},
			{Fragment: "claude-3-haiku", Price: Price{Input: 0.00025, Output: 0.00125}},
			{Fragment: "gpt-4-turbo", Price: Price{Input: 0.010, Output: 0.030}},
			{Fragment: "gpt-3.5-turbo", Price: Price{Input: 0.0005, Output: 0.0015}},
			{Fragment: "mistral-large", Price: Price{Input: 0.004, Output: 0.012}},
			{Fragment: "llama", Price: Price{Input: 0, Output: 0}},
		},
		Default: Price{Input: 0.010, Output: 0.030},
	}
}

// Lookup finds the price for model by case-insensitive substring match.
// The second return value is false when the default price was used.
func (t PricingTable) Lookup(model string) (Price, bool) {
	lowered := strings.ToLower(model)
	for _, entry := range t.Models {
		if entry.Fragment == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(entry.Fragment)) {
			return entry.Price, true
		}
	}
	return t.Default, false
}

// Clone returns a copy that does not share the Models slice.
func (t PricingTable) Clone() PricingTable {
	return PricingTable{
		Models:  append([]ModelPrice(nil), t.Models...),
		Default: t.Default,
	}
}
