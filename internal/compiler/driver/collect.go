package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceExt is the extension of input files
const SourceExt = ".rs"

// DefaultIgnore lists directory names never descended into
var DefaultIgnore = []string{"target", ".git"}

// Collect expands paths into the list of input files. Directories are
// walked recursively; generated files (ending in suffix) and ignored
// directories are skipped. Explicit file arguments are kept as given.
func Collect(paths []string, suffix string, ignore []string) ([]string, error) {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	if ignore == nil {
		ignore = DefaultIgnore
	}
	skipDir := make(map[string]bool, len(ignore))
	for _, name := range ignore {
		skipDir[name] = true
	}

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && skipDir[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if IsSource(path, suffix) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// IsSource reports whether path is an input file rather than a generated one
func IsSource(path, suffix string) bool {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return filepath.Ext(path) == SourceExt && !strings.HasSuffix(path, suffix)
}
