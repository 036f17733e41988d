package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideWorkspace is returned when a path escapes the configured root.
var ErrOutsideWorkspace = errors.New("path is outside the workspace root")

// PathGuard resolves untrusted path arguments. With an empty root every path
// is allowed; otherwise resolved paths must stay inside root.
type PathGuard struct {
	root string
}

func NewPathGuard(root string) (*PathGuard, error) {
	if root == "" {
		return &PathGuard{}, nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", abs)
	}
	return &PathGuard{root: abs}, nil
}

// Root returns the workspace root, empty when unrestricted.
func (g *PathGuard) Root() string {
	return g.root
}

// Resolve cleans path and, when a root is set, anchors relative paths to it
// and rejects anything that escapes it (symlinks included).
func (g *PathGuard) Resolve(path string) (string, error) {
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("path contains NUL byte")
	}
	if path == "" {
		path = "."
	}
	if g.root == "" {
		return filepath.Clean(path), nil
	}

	candidate := path
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(g.root, candidate)
	}
	candidate = filepath.Clean(candidate)

	if !within(g.root, resolveExisting(candidate)) {
		return "", fmt.Errorf("%s: %w", path, ErrOutsideWorkspace)
	}
	return candidate, nil
}

// resolveExisting follows symlinks through the deepest ancestor of path that
// exists and re-appends the missing tail. A missing file under a link that
// leaves the root is still caught.
func resolveExisting(path string) string {
	var tail []string
	current := path
	for {
		if resolved, err := filepath.EvalSymlinks(current); err == nil {
			for i := len(tail) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, tail[i])
			}
			return resolved
		}
		parent := filepath.Dir(current)
		if parent == current {
			return path
		}
		tail = append(tail, filepath.Base(current))
		current = parent
	}
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
