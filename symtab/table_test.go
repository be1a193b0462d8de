package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/witcherscript-ls/abspath"
	"github.com/teranos/witcherscript-ls/symbols"
	"github.com/teranos/witcherscript-ls/sympath"
)

func testRoot(t *testing.T) abspath.Path {
	t.Helper()
	root, err := abspath.Resolve("/ws/content/scripts", abspath.Path{})
	require.NoError(t, err)
	return root
}

func testLoc(t *testing.T, root abspath.Path, local string) symbols.Location {
	t.Helper()
	abs, err := root.Join(local)
	require.NoError(t, err)
	return symbols.Location{
		AbsSourcePath:   abs,
		LocalSourcePath: local,
	}
}

func addClass(t *testing.T, table *Table, name, local string) *symbols.ClassSymbol {
	t.Helper()
	class := symbols.NewClassSymbol(sympath.BasicType(name), testLoc(t, table.ScriptsRoot(), local))
	require.Nil(t, table.Contains(class.Path()))
	table.InsertPrimary(class)
	return class
}

func addMemberVar(t *testing.T, table *Table, owner sympath.Path, name, local string) *symbols.MemberVarSymbol {
	t.Helper()
	v := symbols.NewMemberVarSymbol(sympath.MemberData(owner, name), testLoc(t, table.ScriptsRoot(), local))
	v.TypePath = sympath.BasicType("int")
	table.Insert(v)
	return v
}

func TestInsertContainsGet(t *testing.T) {
	table := NewTable(testRoot(t))

	class := addClass(t, table, "Foo", "core/foo.ws")

	occupied := table.Contains(class.Path())
	require.NotNil(t, occupied)
	assert.Equal(t, class.Path(), occupied.OccupiedPath)
	require.NotNil(t, occupied.OccupiedLocation)
	assert.Equal(t, "core/foo.ws", occupied.OccupiedLocation.LocalSourcePath)

	got, ok := table.Get(class.Path())
	require.True(t, ok)
	assert.Equal(t, symbols.KindClass, got.Kind())
	assert.Equal(t, "Foo", got.Name())

	_, ok = table.Get(sympath.BasicType("Bar"))
	assert.False(t, ok)
}

func TestRemoveForSource(t *testing.T) {
	table := NewTable(testRoot(t))

	class := addClass(t, table, "Foo", "core/foo.ws")
	member := addMemberVar(t, table, class.Path(), "x", "core/foo.ws")
	other := addClass(t, table, "Bar", "core/bar.ws")

	table.RemoveForSource("core/foo.ws")

	assert.Nil(t, table.Contains(class.Path()))
	assert.Nil(t, table.Contains(member.Path()))
	// the other file's symbols are untouched
	assert.NotNil(t, table.Contains(other.Path()))
	assert.Empty(t, table.GetForSource("core/foo.ws"))
}

func TestGetChildren(t *testing.T) {
	table := NewTable(testRoot(t))

	class := addClass(t, table, "Foo", "core/foo.ws")
	addMemberVar(t, table, class.Path(), "a", "core/foo.ws")
	addMemberVar(t, table, class.Path(), "b", "core/foo.ws")

	fn := symbols.NewMemberFunctionSymbol(sympath.MemberCallable(class.Path(), "f"), testLoc(t, table.ScriptsRoot(), "core/foo.ws"))
	table.Insert(fn)
	// grandchild must not appear among Foo's children
	param := symbols.NewFunctionParameterSymbol(sympath.MemberData(fn.Path(), "p"), testLoc(t, table.ScriptsRoot(), "core/foo.ws"))
	table.Insert(param)

	children := table.GetChildren(class.Path())
	names := make([]string, len(children))
	for i, c := range children {
		names[i] = c.Name()
	}
	assert.Equal(t, []string{"a", "b", "f"}, names) // path order
}

func TestGetForSourceOrdering(t *testing.T) {
	table := NewTable(testRoot(t))

	class := addClass(t, table, "Foo", "core/foo.ws")
	addMemberVar(t, table, class.Path(), "x", "core/foo.ws")

	syms := table.GetForSource("core/foo.ws")
	require.Len(t, syms, 2)
	assert.Equal(t, class.Path(), syms[0].Path())
	// descendants sort after their root
	assert.True(t, syms[0].Path().Less(syms[1].Path()))
}

func TestSourceIndexNeverDangles(t *testing.T) {
	table := NewTable(testRoot(t))

	class := addClass(t, table, "Foo", "core/foo.ws")
	addMemberVar(t, table, class.Path(), "x", "core/foo.ws")

	for _, root := range table.PrimaryRootsForSource("core/foo.ws") {
		_, ok := table.Get(root)
		assert.True(t, ok)
	}

	table.RemoveForSource("core/foo.ws")
	assert.Empty(t, table.PrimaryRootsForSource("core/foo.ws"))
}

func TestMergeWithoutConflicts(t *testing.T) {
	root := testRoot(t)

	a := NewTable(root)
	addClass(t, a, "Foo", "core/foo.ws")

	b := NewTable(root)
	barClass := addClass(t, b, "Bar", "core/bar.ws")
	addMemberVar(t, b, barClass.Path(), "x", "core/bar.ws")

	conflicts := a.Merge(b)
	assert.Empty(t, conflicts)

	assert.NotNil(t, a.Contains(sympath.BasicType("Foo")))
	assert.NotNil(t, a.Contains(sympath.BasicType("Bar")))
	assert.NotNil(t, a.Contains(sympath.MemberData(barClass.Path(), "x")))

	// merged primaries are attributed to their source file
	assert.Len(t, a.GetForSource("core/bar.ws"), 2)
}

func TestMergeConflictSkipsSubtree(t *testing.T) {
	root := testRoot(t)

	a := NewTable(root)
	fooA := addClass(t, a, "Foo", "a/foo.ws")
	addMemberVar(t, a, fooA.Path(), "kept", "a/foo.ws")

	b := NewTable(root)
	fooB := addClass(t, b, "Foo", "b/foo.ws")
	addMemberVar(t, b, fooB.Path(), "dropped", "b/foo.ws")

	conflicts := a.Merge(b)
	require.Len(t, conflicts, 1)
	assert.Equal(t, sympath.BasicType("Foo"), conflicts[0].OccupiedPath)
	assert.Equal(t, "b/foo.ws", conflicts[0].IncomingLocation.LocalSourcePath)
	require.NotNil(t, conflicts[0].OccupiedLocation)
	assert.Equal(t, "a/foo.ws", conflicts[0].OccupiedLocation.LocalSourcePath)

	// the whole incoming subtree was skipped; the occupying symbols remain
	assert.NotNil(t, a.Contains(sympath.MemberData(fooA.Path(), "kept")))
	assert.Nil(t, a.Contains(sympath.MemberData(fooA.Path(), "dropped")))
}

func TestMergeArrayFamilyIsIdempotent(t *testing.T) {
	root := testRoot(t)

	makeTableWithArray := func(local string) *Table {
		table := NewTable(root)
		arr := symbols.NewArrayTypeSymbol(sympath.BasicType("int"))
		table.InsertArrayType(arr, local)
		funcs, params := symbols.MakeArrayFamily(arr)
		for _, f := range funcs {
			table.Insert(f)
		}
		for _, p := range params {
			table.Insert(p)
		}
		return table
	}

	a := makeTableWithArray("a/x.ws")
	b := makeTableWithArray("b/y.ws")

	// the same family synthesized in two tables is not a conflict
	conflicts := a.Merge(b)
	assert.Empty(t, conflicts)

	_, ok := a.Get(sympath.Array(sympath.BasicType("int")))
	assert.True(t, ok)
}

func TestMergeUnknownOccupantLosesSilently(t *testing.T) {
	root := testRoot(t)

	a := NewTable(root)
	unknownClass := symbols.NewClassSymbol(sympath.Unknown(sympath.CategoryType), testLoc(t, root, "a/u.ws"))
	a.InsertPrimary(unknownClass)

	b := NewTable(root)
	incoming := symbols.NewClassSymbol(sympath.Unknown(sympath.CategoryType), testLoc(t, root, "b/u.ws"))
	b.InsertPrimary(incoming)

	conflicts := a.Merge(b)
	assert.Empty(t, conflicts)

	got, ok := a.Get(sympath.Unknown(sympath.CategoryType))
	require.True(t, ok)
	assert.Equal(t, "b/u.ws", got.Location().LocalSourcePath)
}

func TestMergeOrderIndependentSymbolSet(t *testing.T) {
	root := testRoot(t)

	build := func() (*Table, *Table) {
		a := NewTable(root)
		addClass(t, a, "Foo", "a/foo.ws")
		b := NewTable(root)
		addClass(t, b, "Bar", "b/bar.ws")
		return a, b
	}

	a1, b1 := build()
	_ = a1.Merge(b1)

	a2, b2 := build()
	// merge in the other direction
	_ = b2.Merge(a2)

	paths1 := make([]string, 0)
	for _, s := range a1.All() {
		paths1 = append(paths1, s.Path().String())
	}
	paths2 := make([]string, 0)
	for _, s := range b2.All() {
		paths2 = append(paths2, s.Path().String())
	}
	assert.Equal(t, paths1, paths2)
}
