package main

import (
	"errors"

	bperrors "github.com/alexisbeaulieu97/blueprint/pkg/errors"
)

const (
	exitFailure = 1
	exitUsage   = 2
)

// exitError carries the process exit code out of a command so RunE never
// calls os.Exit itself.
type exitError struct {
	code int
	err  error
}

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// exitCode maps an error to the process exit status. Loader and policy
// errors are configuration problems (2); everything else is a failed run (1).
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var coded *exitError
	if errors.As(err, &coded) {
		return coded.code
	}

	var parseErr *bperrors.ParseError
	var validationErr *bperrors.ValidationError
	if errors.As(err, &parseErr) || errors.As(err, &validationErr) {
		return exitUsage
	}
	return exitFailure
}
