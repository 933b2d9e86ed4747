package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("const a = 1;\n"), 0o644))
	}
}

func rel(t *testing.T, dir string, files []File) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(dir, f.Path)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestDiscoverFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "app.ts")
	path := filepath.Join(dir, "app.ts")

	// Explicit files are linted whatever their extension.
	files, err := Discover([]string{path}, Options{})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, path, files[0].Path)
	assert.Equal(t, dir, files[0].ConfigRoot)
}

func TestDiscoverDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"index.js",
		"lib/util.mjs",
		"lib/legacy.cjs",
		"ui/view.jsx",
		"README.md",
		"lib/nested/deep.js",
	)

	files, err := Discover([]string{dir}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"index.js",
		"lib/legacy.cjs",
		"lib/nested/deep.js",
		"lib/util.mjs",
		"ui/view.jsx",
	}, rel(t, dir, files))
}

func TestDiscoverGlob(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.js", "b.mjs", "sub/c.js")

	files, err := Discover([]string{filepath.Join(dir, "**", "*.js")}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.js", "sub/c.js"}, rel(t, dir, files))
}

func TestDiscoverExclude(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"index.js",
		"node_modules/dep/index.js",
		"dist/app.min.js",
		"vendor/lib.js",
		"src/vendor/nested/lib.js",
	)

	files, err := Discover([]string{dir}, Options{
		ExcludePatterns: append(DefaultExcludes(), "vendor/*"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"index.js", "src/vendor/nested/lib.js"}, rel(t, dir, files))
}

func TestDiscoverExcludesExplicitFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "bundle.min.js")

	files, err := Discover([]string{filepath.Join(dir, "bundle.min.js")}, Options{ExcludePatterns: DefaultExcludes()})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverDeduplication(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.js")

	files, err := Discover([]string{dir, filepath.Join(dir, "a.js"), filepath.Join(dir, "*.js")}, Options{})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestDiscoverNonexistent(t *testing.T) {
	files, err := Discover([]string{filepath.Join(t.TempDir(), "missing.js")}, Options{})
	require.NoError(t, err)
	assert.Empty(t, files)
}
