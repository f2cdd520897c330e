package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Options controls how result files are found.
type Options struct {
	// Recursive descends into subdirectories. Hidden directories are skipped.
	Recursive bool
}

// ValidatePattern reports whether pattern is a well-formed glob.
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("glob pattern is required")
	}
	if strings.ContainsRune(pattern, filepath.Separator) {
		return fmt.Errorf("glob pattern %q must match file names, not paths", pattern)
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("glob pattern %q: %w", pattern, err)
	}
	return nil
}

// Discover returns the regular files under root whose base name matches
// pattern, sorted lexicographically by path.
func Discover(root, pattern string, opts Options) ([]string, error) {
	if err := ValidatePattern(pattern); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root path: %w", err)
	}

	// Verify root exists before walking
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path %s is not a directory", absRoot)
	}

	var files []string

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if !opts.Recursive || strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		// Pattern was validated above, so Match cannot fail here.
		if ok, _ := filepath.Match(pattern, d.Name()); ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", absRoot, err)
	}

	sort.Strings(files)
	return files, nil
}
