// Package policy loads the tunable tables used by validation and compilation:
// model pricing, per-type durations, the cost margin, the cost warning
// threshold and an optional budget.
package policy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/blueprint/internal/compiler"
	"github.com/alexisbeaulieu97/blueprint/internal/estimate"
	"github.com/alexisbeaulieu97/blueprint/internal/validation"
	"github.com/alexisbeaulieu97/blueprint/internal/workflow"
	bperrors "github.com/alexisbeaulieu97/blueprint/pkg/errors"
)

// Policy is the resolved configuration after defaults are applied.
type Policy struct {
	Pricing              estimate.PricingTable
	Durations            estimate.DurationTable
	CostMargin           float64
	CostWarningThreshold float64
	// Budget is the maximum accepted estimated cost; nil means unlimited.
	Budget *float64
}

// document mirrors the on-disk YAML. Every section is optional.
type document struct {
	Pricing              *pricingSection  `yaml:"pricing"`
	Durations            *durationSection `yaml:"durations"`
	CostMargin           *float64         `yaml:"cost_margin" validate:"omitempty,gte=1"`
	CostWarningThreshold *float64         `yaml:"cost_warning_threshold" validate:"omitempty,gte=0"`
	Budget               *float64         `yaml:"budget" validate:"omitempty,gte=0"`
}

type pricingSection struct {
	Models  []estimate.ModelPrice `yaml:"models" validate:"dive"`
	Default *estimate.Price       `yaml:"default"`
}

type durationSection struct {
	ByType  map[string]int `yaml:"by_type" validate:"dive,gte=0"`
	Default *int           `yaml:"default" validate:"omitempty,gte=0"`
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}

// Default returns the built-in policy.
func Default() Policy {
	return Policy{
		Pricing:              estimate.DefaultPricingTable(),
		Durations:            estimate.DefaultDurationTable(),
		CostMargin:           estimate.DefaultMargin,
		CostWarningThreshold: validation.DefaultCostWarningThreshold,
	}
}

// Load reads a policy file. An empty path yields the defaults.
func Load(path string) (Policy, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes a policy document and merges it over the defaults. User model
// fragments are matched before the built-in ones, and built-in entries with
// the same fragment are dropped.
func Parse(data []byte, path string) (Policy, error) {
	var doc document

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Policy{}, bperrors.NewParseError(path, 0, err)
	}

	if err := validatorInstance().Struct(doc); err != nil {
		return Policy{}, convertValidationError(err)
	}

	p := Default()

	if doc.Pricing != nil {
		p.Pricing = mergePricing(p.Pricing, doc.Pricing)
	}
	if doc.Durations != nil {
		for nodeType, ms := range doc.Durations.ByType {
			p.Durations.ByType[workflow.NodeType(nodeType)] = ms
		}
		if doc.Durations.Default != nil {
			p.Durations.Default = *doc.Durations.Default
		}
	}
	if doc.CostMargin != nil {
		p.CostMargin = *doc.CostMargin
	}
	if doc.CostWarningThreshold != nil {
		p.CostWarningThreshold = *doc.CostWarningThreshold
	}
	if doc.Budget != nil {
		budget := *doc.Budget
		p.Budget = &budget
	}

	return p, nil
}

func mergePricing(builtIn estimate.PricingTable, user *pricingSection) estimate.PricingTable {
	merged := estimate.PricingTable{Default: builtIn.Default}
	if user.Default != nil {
		merged.Default = *user.Default
	}

	overridden := make(map[string]struct{}, len(user.Models))
	for _, mp := range user.Models {
		overridden[strings.ToLower(mp.Fragment)] = struct{}{}
		merged.Models = append(merged.Models, mp)
	}
	for _, mp := range builtIn.Models {
		if _, ok := overridden[strings.ToLower(mp.Fragment)]; ok {
			continue
		}
		merged.Models = append(merged.Models, mp)
	}
	return merged
}

// WithinBudget reports whether cost is acceptable under the policy budget.
func (p Policy) WithinBudget(cost float64) bool {
	return p.Budget == nil || cost <= *p.Budget
}

// ValidatorOptions converts the policy into validator options.
func (p Policy) ValidatorOptions() []validation.Option {
	return []validation.Option{
		validation.WithPricing(p.Pricing),
		validation.WithMargin(p.CostMargin),
		validation.WithCostWarningThreshold(p.CostWarningThreshold),
	}
}

// CompilerOptions converts the policy into compiler options.
func (p Policy) CompilerOptions() []compiler.Option {
	return []compiler.Option{
		compiler.WithDurations(p.Durations),
	}
}

func convertValidationError(err error) error {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		ve := ves[0]
		field := fieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return bperrors.NewValidationError(field, msg, err)
	}
	return bperrors.NewValidationError("policy", err.Error(), err)
}

// fieldName turns "document.Pricing.Models[0].Fragment" into "pricing.models[0].fragment".
func fieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}
	return strings.Join(parts, ".")
}
