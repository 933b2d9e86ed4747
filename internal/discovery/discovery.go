// Package discovery expands lint inputs (files, directories and globs) into
// the JavaScript sources to lint.
package discovery

import (
	"cmp"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// File is one source selected for linting.
type File struct {
	// Path is the input as given for explicit files, and an absolute path
	// for files found under a directory or glob.
	Path string

	// ConfigRoot is where config discovery starts for this file.
	ConfigRoot string
}

// Options configures discovery.
type Options struct {
	// Patterns select files inside directories (default: DefaultPatterns()).
	Patterns []string

	// ExcludePatterns drop matching files, including explicit ones.
	ExcludePatterns []string
}

// DefaultPatterns returns the file name patterns searched in directories.
func DefaultPatterns() []string {
	return []string{"*.js", "*.mjs", "*.cjs", "*.jsx"}
}

// DefaultExcludes returns the exclusions applied when none are configured.
func DefaultExcludes() []string {
	return []string{"node_modules/**", "**/*.min.js"}
}

// Discover expands inputs into a sorted, de-duplicated file list. An input
// may be a file, a directory (searched recursively) or a doublestar glob.
func Discover(inputs []string, opts Options) ([]File, error) {
	if len(opts.Patterns) == 0 {
		opts.Patterns = DefaultPatterns()
	}

	d := &discoverer{opts: opts, seen: make(map[string]bool)}
	for _, input := range inputs {
		if err := d.input(input); err != nil {
			return nil, err
		}
	}

	slices.SortFunc(d.files, func(a, b File) int {
		return cmp.Compare(a.Path, b.Path)
	})
	return d.files, nil
}

type discoverer struct {
	opts  Options
	seen  map[string]bool
	files []File
}

func (d *discoverer) input(input string) error {
	// os.Stat rejects glob characters on Windows, so globs skip it.
	if strings.ContainsAny(input, "*?[]") {
		return d.glob(input)
	}

	info, err := os.Stat(input)
	switch {
	case err == nil && info.IsDir():
		return d.directory(input)
	case err == nil:
		return d.add(input, input)
	case os.IsNotExist(err):
		return d.glob(input)
	default:
		return err
	}
}

func (d *discoverer) directory(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	for _, pattern := range d.opts.Patterns {
		if err := d.glob(filepath.Join(abs, "**", pattern)); err != nil {
			return err
		}
	}
	return nil
}

func (d *discoverer) glob(pattern string) error {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return err
	}
	for _, m := range matches {
		abs, err := filepath.Abs(m)
		if err != nil {
			return err
		}
		if err := d.add(abs, abs); err != nil {
			return err
		}
	}
	return nil
}

// add records path unless it is excluded or already seen. display is the
// path reported to the user.
func (d *discoverer) add(path, display string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if d.seen[abs] || isExcluded(abs, d.opts.ExcludePatterns) {
		return nil
	}
	d.seen[abs] = true
	d.files = append(d.files, File{Path: display, ConfigRoot: filepath.Dir(abs)})
	return nil
}

// isExcluded matches abs against each pattern as a full path, as a base
// name, and as every trailing sub-path, so "vendor/*" excludes direct
// children of any vendor directory. doublestar always uses forward slashes.
func isExcluded(abs string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	parts := strings.Split(strings.TrimPrefix(filepath.ToSlash(abs), filepath.ToSlash(filepath.VolumeName(abs))), "/")
	parts = slices.DeleteFunc(parts, func(s string) bool { return s == "" })

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(abs)); ok {
			return true
		}
		for i := range parts {
			if ok, _ := doublestar.Match(pattern, strings.Join(parts[i:], "/")); ok {
				return true
			}
		}
	}
	return false
}
