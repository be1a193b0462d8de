package abspath

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unixOnly(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("unix path layout")
	}
}

func TestResolveAbsolute(t *testing.T) {
	unixOnly(t)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already normalized", "/home/user/project", "/home/user/project"},
		{"trailing slash", "/home/user/project/", "/home/user/project"},
		{"current dir components", "/home/./user/./project", "/home/user/project"},
		{"parent dir components", "/home/user/../user2/project", "/home/user2/project"},
		{"doubled separators", "/home//user///project", "/home/user/project"},
		{"root", "/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Resolve(tt.in, Path{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.String())
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	unixOnly(t)

	p, err := Resolve("/a/b/../c/./d", Path{})
	require.NoError(t, err)

	again, err := Resolve(p.String(), Path{})
	require.NoError(t, err)
	assert.Equal(t, p, again)
}

func TestResolveRelative(t *testing.T) {
	unixOnly(t)

	base := MustResolve("/home/user")

	p, err := Resolve("scripts/core", base)
	require.NoError(t, err)
	assert.Equal(t, "/home/user/scripts/core", p.String())

	p, err = Resolve("../other", base)
	require.NoError(t, err)
	assert.Equal(t, "/home/other", p.String())
}

func TestResolveRejectsEscape(t *testing.T) {
	unixOnly(t)

	_, err := Resolve("/../outside", Path{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEscapesRoot)

	_, err = Resolve("/a/../../b", Path{})
	assert.ErrorIs(t, err, ErrEscapesRoot)
}

func TestResolveRejectsUNC(t *testing.T) {
	_, err := Resolve(`\\server\share\x`, Path{})
	assert.ErrorIs(t, err, ErrUnsupportedPrefix)
}

func TestJoin(t *testing.T) {
	unixOnly(t)

	base := MustResolve("/content/proj")

	joined, err := base.Join("scripts/game.ws")
	require.NoError(t, err)
	assert.Equal(t, "/content/proj/scripts/game.ws", joined.String())

	joined, err = base.Join("../sibling")
	require.NoError(t, err)
	assert.Equal(t, "/content/sibling", joined.String())

	// absolute argument wins over the base
	joined, err = base.Join("/elsewhere")
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere", joined.String())

	// empty argument is a no-op
	joined, err = base.Join("")
	require.NoError(t, err)
	assert.Equal(t, base, joined)
}

func TestParent(t *testing.T) {
	unixOnly(t)

	p := MustResolve("/a/b/c")

	parent, ok := p.Parent()
	require.True(t, ok)
	assert.Equal(t, "/a/b", parent.String())

	root := MustResolve("/")
	_, ok = root.Parent()
	assert.False(t, ok)
}

func TestLocalTo(t *testing.T) {
	unixOnly(t)

	root := MustResolve("/content/proj/scripts")
	file := MustResolve("/content/proj/scripts/game/player.ws")

	local, ok := file.LocalTo(root)
	require.True(t, ok)
	assert.Equal(t, "game/player.ws", local)

	_, ok = MustResolve("/unrelated/file.ws").LocalTo(root)
	assert.False(t, ok)

	// prefix match must be on whole components
	_, ok = MustResolve("/content/proj/scripts2/x.ws").LocalTo(root)
	assert.False(t, ok)
}

func TestExtAndBase(t *testing.T) {
	unixOnly(t)

	p := MustResolve("/scripts/game/player.ws")
	assert.Equal(t, "ws", p.Ext())
	assert.Equal(t, "player.ws", p.Base())

	assert.Equal(t, "", MustResolve("/scripts/README").Ext())
}

func TestURIRoundTrip(t *testing.T) {
	unixOnly(t)

	p := MustResolve("/home/user/my project/x.ws")
	uri := p.URI()
	assert.Equal(t, "file:///home/user/my%20project/x.ws", uri)

	back, err := FromURI(uri)
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestOrdering(t *testing.T) {
	unixOnly(t)

	a := MustResolve("/a/b")
	b := MustResolve("/a/c")
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.False(t, a.Less(a))
}
