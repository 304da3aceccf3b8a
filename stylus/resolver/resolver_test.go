package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-quicktest/qt"
)

func TestResolveLiteralPath(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "mixins.styl")
	qt.Assert(t, qt.IsNil(os.WriteFile(full, []byte("a\n  color: red\n"), 0o644)))

	resolved, src, err := Default{}.Resolve("", "mixins.styl", []string{dir})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(resolved, full))
	qt.Assert(t, qt.Equals(string(src), "a\n  color: red\n"))
}

func TestResolveAppendsStylSuffix(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "mixins.styl")
	qt.Assert(t, qt.IsNil(os.WriteFile(full, []byte("x = 1\n"), 0o644)))

	resolved, _, err := Default{}.Resolve("", "mixins", []string{dir})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(resolved, full))
}

func TestResolveIndexStyl(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "lib")
	qt.Assert(t, qt.IsNil(os.MkdirAll(sub, 0o755)))
	full := filepath.Join(sub, "index.styl")
	qt.Assert(t, qt.IsNil(os.WriteFile(full, []byte("y = 2\n"), 0o644)))

	resolved, _, err := Default{}.Resolve("", "lib", []string{dir})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(resolved, full))
}

func TestResolveSearchesFilenameDirFirst(t *testing.T) {
	dir := t.TempDir()
	srcFile := filepath.Join(dir, "main.styl")
	full := filepath.Join(dir, "mixins.styl")
	qt.Assert(t, qt.IsNil(os.WriteFile(full, []byte("z = 3\n"), 0o644)))

	resolved, _, err := Default{}.Resolve(srcFile, "mixins", nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(resolved, full))
}

func TestResolveSearchOrderIsNotAlphabetical(t *testing.T) {
	root := t.TempDir()
	adir := filepath.Join(root, "a")
	zdir := filepath.Join(root, "z")
	qt.Assert(t, qt.IsNil(os.MkdirAll(adir, 0o755)))
	qt.Assert(t, qt.IsNil(os.MkdirAll(zdir, 0o755)))

	srcFile := filepath.Join(zdir, "main.styl")
	qt.Assert(t, qt.IsNil(os.WriteFile(filepath.Join(zdir, "mixins.styl"), []byte("z = 1\n"), 0o644)))
	qt.Assert(t, qt.IsNil(os.WriteFile(filepath.Join(adir, "mixins.styl"), []byte("a = 1\n"), 0o644)))

	// dirname(filename) is "z", which sorts after "a" in paths -- it must
	// still be searched first.
	resolved, _, err := Default{}.Resolve(srcFile, "mixins", []string{adir})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(resolved, filepath.Join(zdir, "mixins.styl")))
}

func TestResolveNotFound(t *testing.T) {
	dir := t.TempDir()
	_, _, err := Default{}.Resolve("", "missing", []string{dir})
	qt.Assert(t, qt.IsNotNil(err))

	nf, ok := err.(*NotFoundError)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(nf.Path, "missing"))
}
