package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureDir_ResolvesRelativeToCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureDir("uploads")
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(filepath.Join(tmp, "uploads"))
	require.NoError(t, err)
	gotResolved, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	require.Equal(t, want, gotResolved)

	fi, err := os.Stat(got)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		perm := fi.Mode().Perm()
		require.Equal(t, os.FileMode(0o700), perm&0o700)
	}
}

func TestEnsureDir_CreatesParentsAndIsIdempotent(t *testing.T) {
	base := filepath.Join(t.TempDir(), "uploads", "000")

	first, err := EnsureDir(base)
	require.NoError(t, err)
	second, err := EnsureDir(base)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, base, first)
}

func TestEnsureDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "uploads")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o660))

	_, err := EnsureDir(p)
	require.Error(t, err, "should fail when a file exists with the same name")
}

func TestRemoveIfExists(t *testing.T) {
	p := filepath.Join(t.TempDir(), "001.pdf")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o660))

	require.NoError(t, RemoveIfExists(p))
	_, err := os.Stat(p)
	require.True(t, os.IsNotExist(err))

	require.NoError(t, RemoveIfExists(p), "missing file is not an error")
}
