// Package resources provides checkers for the external resources that nodes
// reference. Every checker satisfies validation.ResourceChecker and only
// reads; nothing is executed.
package resources

import (
	"path/filepath"

	"github.com/alexisbeaulieu97/blueprint/internal/validation"
	"github.com/alexisbeaulieu97/blueprint/internal/workflow"
	bperrors "github.com/alexisbeaulieu97/blueprint/pkg/errors"
)

// Chain runs checkers in order and concatenates their messages. Nil checkers
// are skipped.
func Chain(checkers ...validation.ResourceChecker) validation.ResourceChecker {
	return func(node workflow.Node) []string {
		var out []string
		for _, check := range checkers {
			if check == nil {
				continue
			}
			out = append(out, check(node)...)
		}
		return out
	}
}

// Default returns every built-in checker. Relative paths resolve against baseDir.
func Default(baseDir string) validation.ResourceChecker {
	return Chain(
		ExpressionChecker(),
		QueryChecker(),
		RepositoryChecker(baseDir),
		ScriptChecker(baseDir),
		CommandChecker(),
	)
}

func problem(node workflow.Node, resource string, err error) []string {
	return []string{bperrors.NewResourceError(node.ID, resource, err).Error()}
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
