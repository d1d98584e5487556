package walker_test

import (
	"context"
	"os"
	"sigscan/pkg/walker"
	"sort"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T, files ...string) billy.Filesystem {
	t.Helper()

	fs := memfs.New()
	for _, f := range files {
		require.NoError(t, util.WriteFile(fs, f, []byte(f), 0o644))
	}

	return fs
}

func collect(t *testing.T, w *walker.Walker, root string) []string {
	t.Helper()

	var paths []string
	for target := range w.Walk(context.Background(), root) {
		require.True(t, target.Executable)
		paths = append(paths, target.Path)
	}
	sort.Strings(paths)

	return paths
}

func TestWalk_FiltersByExtension(t *testing.T) {
	fs := fixture(t,
		"/root/a.exe",
		"/root/b.txt",
		"/root/c.dll",
		"/root/nested/deep/d.exe",
		"/root/nested/e.so",
		"/root/noext",
		"/root/UPPER.EXE",
		"/root/archive.exe.bak",
	)

	got := collect(t, walker.New(fs, walker.Options{}), "/root")
	require.Equal(t, []string{"/root/a.exe", "/root/c.dll", "/root/nested/deep/d.exe"}, got)
}

func TestWalk_CaseInsensitive(t *testing.T) {
	fs := fixture(t, "/r/UPPER.EXE", "/r/lower.dll", "/r/Mixed.Dll", "/r/x.txt")

	got := collect(t, walker.New(fs, walker.Options{CaseInsensitive: true}), "/r")
	require.Equal(t, []string{"/r/Mixed.Dll", "/r/UPPER.EXE", "/r/lower.dll"}, got)
}

func TestWalk_CustomExtensions(t *testing.T) {
	fs := fixture(t, "/r/a.exe", "/r/b.msi", "/r/c.sys")

	got := collect(t, walker.New(fs, walker.Options{Extensions: []string{".msi", " sys ", ""}}), "/r")
	require.Equal(t, []string{"/r/b.msi", "/r/c.sys"}, got)
}

func TestWalk_EmptyAndMissingRoot(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, fs.MkdirAll("/empty", 0o755))
	w := walker.New(fs, walker.Options{})

	require.Empty(t, collect(t, w, "/empty"))
	require.Empty(t, collect(t, w, "/does/not/exist"))
}

func TestWalk_DirectoriesNamedLikeExecutables(t *testing.T) {
	fs := fixture(t, "/r/tools.exe/inner.dll")

	got := collect(t, walker.New(fs, walker.Options{}), "/r")
	require.Equal(t, []string{"/r/tools.exe/inner.dll"}, got)
}

// lockedDir fails to list one directory, like a permission-denied branch.
type lockedDir struct {
	billy.Filesystem
	locked string
}

func (l lockedDir) ReadDir(path string) ([]os.FileInfo, error) {
	if path == l.locked {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrPermission}
	}

	return l.Filesystem.ReadDir(path) //nolint: wrapcheck
}

func TestWalk_SkipsUnreadableBranch(t *testing.T) {
	fs := lockedDir{
		Filesystem: fixture(t, "/r/ok/a.exe", "/r/secret/b.exe", "/r/c.dll"),
		locked:     "/r/secret",
	}

	got := collect(t, walker.New(fs, walker.Options{}), "/r")
	require.Equal(t, []string{"/r/c.dll", "/r/ok/a.exe"}, got)
}

func TestWalk_StopsOnCancel(t *testing.T) {
	files := make([]string, 0, 50)
	for i := range 50 {
		files = append(files, "/r/"+string(rune('a'+i%26))+string(rune('a'+i/26))+".exe")
	}
	w := walker.New(fixture(t, files...), walker.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	ch := w.Walk(ctx, "/r")
	<-ch
	cancel()

	// the producer must close the channel without anyone draining it fully
	n := 0
	for range ch {
		n++
	}
	require.Less(t, n, len(files)-1)
}

func TestAllowed(t *testing.T) {
	w := walker.New(memfs.New(), walker.Options{})

	require.True(t, w.Allowed("x/y.exe"))
	require.True(t, w.Allowed("y.dll"))
	require.False(t, w.Allowed("y.EXE"))
	require.False(t, w.Allowed("exe"))
	require.False(t, w.Allowed("y."))
	require.False(t, w.Allowed("/root/.exe"))
	require.False(t, w.Allowed(".dll"))
	require.True(t, w.Allowed("/root/..exe"))
	require.True(t, w.Allowed("/root/.hidden.exe"))
}

func TestWalk_SkipsDotfilesWithoutExtension(t *testing.T) {
	fs := fixture(t, "/r/.exe", "/r/sub/.dll", "/r/.cache.dll")

	got := collect(t, walker.New(fs, walker.Options{}), "/r")
	require.Equal(t, []string{"/r/.cache.dll"}, got)
}

func TestWalk_FollowsSymlinkedRoot(t *testing.T) {
	fs := fixture(t, "/data/real/a.exe", "/data/real/sub/b.dll", "/data/real/c.txt")
	require.NoError(t, fs.Symlink("/data/real", "/links/abs"))
	require.NoError(t, fs.Symlink("../data/real", "/links/rel"))
	require.NoError(t, fs.Symlink("/links/abs", "/links/chained"))
	w := walker.New(fs, walker.Options{})

	require.Equal(t, []string{"/links/abs/a.exe", "/links/abs/sub/b.dll"}, collect(t, w, "/links/abs"))
	require.Equal(t, []string{"/links/rel/a.exe", "/links/rel/sub/b.dll"}, collect(t, w, "/links/rel"))
	require.Equal(t, []string{"/links/chained/a.exe", "/links/chained/sub/b.dll"}, collect(t, w, "/links/chained"))
}

func TestWalk_DoesNotFollowNestedSymlinks(t *testing.T) {
	fs := fixture(t, "/outside/x.exe", "/r/a.exe")
	require.NoError(t, fs.Symlink("/outside", "/r/link"))
	require.NoError(t, fs.Symlink("/outside/x.exe", "/r/alias.exe"))

	got := collect(t, walker.New(fs, walker.Options{}), "/r")
	require.Equal(t, []string{"/r/a.exe"}, got)
}
