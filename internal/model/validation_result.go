package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationResult is the outcome of a validation run. It is immutable: the
// accessors hand out copies and validity is derived from the error list.
type ValidationResult struct {
	errors        []string
	warnings      []string
	estimatedCost float64
}

// NewValidationResult builds a result. Valid reports true exactly when errs is empty.
func NewValidationResult(errs, warnings []string, estimatedCost float64) ValidationResult {
	return ValidationResult{
		errors:        cloneStrings(errs),
		warnings:      cloneStrings(warnings),
		estimatedCost: estimatedCost,
	}
}

// Valid reports whether the workflow passed validation.
func (r ValidationResult) Valid() bool {
	return len(r.errors) == 0
}

// Errors returns the validation errors in the order they were found.
func (r ValidationResult) Errors() []string {
	return cloneStrings(r.errors)
}

// Warnings returns non-fatal findings.
func (r ValidationResult) Warnings() []string {
	return cloneStrings(r.warnings)
}

// EstimatedCost is the margin-adjusted cost in USD per workflow execution.
func (r ValidationResult) EstimatedCost() float64 {
	return r.estimatedCost
}

// HasCriticalErrors reports whether any error was recorded.
func (r ValidationResult) HasCriticalErrors() bool {
	return len(r.errors) > 0
}

// WithinBudget reports whether the estimated cost does not exceed budget.
func (r ValidationResult) WithinBudget(budget float64) bool {
	return r.estimatedCost <= budget
}

// Summary renders a one-line description of the result.
func (r ValidationResult) Summary() string {
	switch {
	case !r.Valid():
		return "Validation failed: " + strings.Join(r.errors, ", ")
	case len(r.warnings) > 0:
		return fmt.Sprintf("Validation passed (%d warnings)", len(r.warnings))
	default:
		return "Validation passed"
	}
}

type validationResultJSON struct {
	Valid         bool     `json:"valid"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	EstimatedCost float64  `json:"estimated_cost"`
}

// MarshalJSON implements json.Marshaler.
func (r ValidationResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(validationResultJSON{
		Valid:         r.Valid(),
		Errors:        nonNil(r.errors),
		Warnings:      nonNil(r.warnings),
		EstimatedCost: r.estimatedCost,
	})
}

// UnmarshalJSON implements json.Unmarshaler. The valid key is ignored; validity
// is always recomputed from the errors.
func (r *ValidationResult) UnmarshalJSON(data []byte) error {
	var raw validationResultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = NewValidationResult(raw.Errors, raw.Warnings, raw.EstimatedCost)
	return nil
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return append([]string(nil), in...)
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
