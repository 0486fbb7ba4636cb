package resources

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/alexisbeaulieu97/blueprint/internal/validation"
	"github.com/alexisbeaulieu97/blueprint/internal/workflow"
)

// RepositoryChecker verifies that custom_code nodes naming a repository point
// at a git repository, and that the optional revision resolves in it.
func RepositoryChecker(baseDir string) validation.ResourceChecker {
	return func(node workflow.Node) []string {
		if node.Type != workflow.TypeCustomCode {
			return nil
		}
		path, ok := node.StringConfig(workflow.ConfigRepository)
		if !ok || path == "" {
			return nil
		}

		repo, err := git.PlainOpen(resolve(baseDir, path))
		if err != nil {
			return problem(node, "repository", fmt.Errorf("open %s: %w", path, err))
		}

		revision, ok := node.StringConfig(workflow.ConfigRevision)
		if !ok || revision == "" {
			return nil
		}
		if _, err := repo.ResolveRevision(plumbing.Revision(revision)); err != nil {
			return problem(node, "revision", fmt.Errorf("resolve %s in %s: %w", revision, path, err))
		}
		return nil
	}
}

// ScriptChecker verifies that the script of custom_code nodes is an existing
// regular file.
func ScriptChecker(baseDir string) validation.ResourceChecker {
	return func(node workflow.Node) []string {
		if node.Type != workflow.TypeCustomCode {
			return nil
		}
		path, ok := node.StringConfig(workflow.ConfigScript)
		if !ok || path == "" {
			return nil
		}

		info, err := os.Stat(resolve(baseDir, path))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return problem(node, "script", fmt.Errorf("path %s does not exist", path))
		case err != nil:
			return problem(node, "script", err)
		case info.IsDir():
			return problem(node, "script", fmt.Errorf("path %s is a directory", path))
		}
		return nil
	}
}

// CommandChecker verifies that the command of custom_code nodes is on PATH.
func CommandChecker() validation.ResourceChecker {
	return func(node workflow.Node) []string {
		if node.Type != workflow.TypeCustomCode {
			return nil
		}
		command, ok := node.StringConfig(workflow.ConfigCommand)
		if !ok || command == "" {
			return nil
		}

		if _, err := exec.LookPath(command); err != nil {
			return problem(node, "command", err)
		}
		return nil
	}
}
