package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/witcherscript-ls/abspath"
)

func writeScript(t *testing.T, root, local string) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(local))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("// script\n"), 0o644))
	return full
}

func TestSourceTreeScan(t *testing.T) {
	root := t.TempDir()
	writeScript(t, root, "core/2DArray.ws")
	writeScript(t, root, "core/states.ws")
	writeScript(t, root, "engine/entity.ws")
	writeScript(t, root, "local/my_local.ws")
	// non-script files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(root, "readme.txt"), []byte("x"), 0o644))

	rootPath, err := abspath.Resolve(root, abspath.Path{})
	require.NoError(t, err)

	tree := NewSourceTree(rootPath)
	assert.Empty(t, tree.Errors)
	assert.Equal(t, 4, tree.Len())
	assert.True(t, tree.ContainsLocal(filepath.Join("core", "2DArray.ws")))
	assert.True(t, tree.ContainsLocal(filepath.Join("core", "states.ws")))
	assert.True(t, tree.ContainsLocal(filepath.Join("engine", "entity.ws")))
	assert.True(t, tree.ContainsLocal(filepath.Join("local", "my_local.ws")))
	assert.False(t, tree.ContainsLocal("readme.txt"))

	// sorted by local path
	locals := tree.LocalPaths()
	for i := 1; i < len(locals); i++ {
		assert.Less(t, locals[i-1], locals[i])
	}
}

func TestSourceTreeMissingRootIsEmpty(t *testing.T) {
	rootPath, err := abspath.Resolve(filepath.Join(t.TempDir(), "does_not_exist"), abspath.Path{})
	require.NoError(t, err)

	tree := NewSourceTree(rootPath)
	assert.Empty(t, tree.Errors)
	assert.Equal(t, 0, tree.Len())
}

func TestSourceTreeDiff(t *testing.T) {
	root := t.TempDir()
	kept := writeScript(t, root, "a/kept.ws")
	removed := writeScript(t, root, "b/removed.ws")
	_ = kept

	rootPath, err := abspath.Resolve(root, abspath.Path{})
	require.NoError(t, err)
	tree := NewSourceTree(rootPath)
	require.Equal(t, 2, tree.Len())

	// remove one, add one, touch one into the future
	require.NoError(t, os.Remove(removed))
	writeScript(t, root, "c/added.ws")
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(kept, future, future))

	diff := tree.Scan()
	require.Len(t, diff.Added, 1)
	assert.Equal(t, filepath.Join("c", "added.ws"), diff.Added[0].LocalPath)
	require.Len(t, diff.Removed, 1)
	assert.Equal(t, filepath.Join("b", "removed.ws"), diff.Removed[0].LocalPath)
	require.Len(t, diff.Modified, 1)
	assert.Equal(t, filepath.Join("a", "kept.ws"), diff.Modified[0].LocalPath)
}

func TestSourceTreeDiffUnchangedIsEmpty(t *testing.T) {
	root := t.TempDir()
	writeScript(t, root, "x.ws")

	rootPath, err := abspath.Resolve(root, abspath.Path{})
	require.NoError(t, err)
	tree := NewSourceTree(rootPath)

	diff := tree.Scan()
	assert.True(t, diff.IsEmpty())
}
