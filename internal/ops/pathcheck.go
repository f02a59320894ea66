package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/sicon/internal/errors"
)

// checkOutputPath applies ValidateOutputPath when the service restricts outputs.
func (s *Service) checkOutputPath(target string) error {
	if s.OutputDirs == nil {
		return nil
	}
	return ValidateOutputPath(target, s.OutputDirs)
}

// ValidateOutputPath checks that a download target is safe to write:
// 1. No directory traversal (.. components)
// 2. The target resolves under one of allowedDirs
// 3. Neither the parent directory nor the target is a symlink
//
// Used for requests arriving over MCP, where the caller is not the user at
// the terminal.
func ValidateOutputPath(target string, allowedDirs []string) error {
	if target == "" {
		return errors.NewInvalidRequest("output path is required")
	}
	if containsTraversal(target) {
		return errors.NewInvalidRequest("output path must not contain directory traversal (..)")
	}

	absPath, err := filepath.Abs(filepath.Clean(target))
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid output path: %v", err))
	}

	dirs, err := resolveAllowedDirs(allowedDirs)
	if err != nil {
		return err
	}
	if !isUnderAllowedDir(filepath.Dir(absPath), dirs) {
		return errors.NewInvalidRequest(fmt.Sprintf("output must be inside an allowed directory; allowed: %v", dirs))
	}

	// Verify the parent directory is not a symlink (defense-in-depth).
	if info, err := os.Lstat(filepath.Dir(absPath)); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("output directory must not be a symlink")
	}
	if info, err := os.Lstat(absPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("output path must not be a symlink")
	}

	return nil
}

// resolveAllowedDirs returns the allowed directories (absolute, cleaned).
// Existing directories are resolved to catch symlinked entries.
func resolveAllowedDirs(allowedDirs []string) ([]string, error) {
	result := make([]string, 0, len(allowedDirs))
	for _, d := range allowedDirs {
		if strings.TrimSpace(d) == "" {
			continue
		}
		abs, err := filepath.Abs(filepath.Clean(d))
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid allowed directory: %v", err))
		}
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
		result = append(result, abs)
	}
	return result, nil
}

// isUnderAllowedDir reports whether dir equals or is nested in one of allowed.
// dir is resolved through symlinks as far as it exists.
func isUnderAllowedDir(dir string, allowed []string) bool {
	dir = resolveExisting(filepath.Clean(dir))
	for _, a := range allowed {
		rel, err := filepath.Rel(a, dir)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return true
		}
	}
	return false
}

// resolveExisting resolves symlinks in the longest existing prefix of path.
func resolveExisting(path string) string {
	rest := ""
	for p := path; ; p = filepath.Dir(p) {
		if resolved, err := filepath.EvalSymlinks(p); err == nil {
			return filepath.Join(resolved, rest)
		}
		parent := filepath.Dir(p)
		if parent == p {
			return path
		}
		rest = filepath.Join(filepath.Base(p), rest)
	}
}

// containsTraversal checks if path contains ".." directory traversal.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	// Also check for forward slashes on all platforms (e.g., user input)
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}
