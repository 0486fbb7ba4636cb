package errors

import (
	"fmt"
)

// ParseError represents a workflow or policy decoding failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures schema problems found while loading a document.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// InputError reports input that cannot be compiled at all, such as a workflow without nodes.
type InputError struct {
	Message string
}

// NewInputError constructs an InputError.
func NewInputError(message string) error {
	return &InputError{Message: message}
}

func (e *InputError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("input error: %s", e.Message)
}

// CompilationError reports a dependency graph that could not be ordered.
// Sorted is the number of nodes placed before the sort stalled.
type CompilationError struct {
	Sorted int
	Total  int
}

// NewCompilationError constructs a CompilationError for a graph with a cycle.
func NewCompilationError(sorted, total int) error {
	return &CompilationError{Sorted: sorted, Total: total}
}

func (e *CompilationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("Compilation failed: Cycle detected in graph. Nodes sorted: %d/%d", e.Sorted, e.Total)
}

// ResourceError indicates that a node references an external resource that could not be verified.
type ResourceError struct {
	NodeID   string
	Resource string
	Err      error
}

// NewResourceError constructs a ResourceError for the given node and resource description.
func NewResourceError(nodeID, resource string, err error) error {
	return &ResourceError{NodeID: nodeID, Resource: resource, Err: err}
}

func (e *ResourceError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("Node '%s' references invalid %s: %v", e.NodeID, e.Resource, e.Err)
	}
	return fmt.Sprintf("Node '%s' references invalid %s", e.NodeID, e.Resource)
}

// Unwrap exposes the underlying error.
func (e *ResourceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
