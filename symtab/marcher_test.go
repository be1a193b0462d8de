package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/witcherscript-ls/symbols"
	"github.com/teranos/witcherscript-ls/sympath"
)

func TestMarcherLayerOrder(t *testing.T) {
	root := testRoot(t)

	upper := NewTable(root)
	addClass(t, upper, "Player", "game/player.ws")

	lower := NewTable(root)
	lowerPlayer := symbols.NewClassSymbol(sympath.BasicType("Player"), testLoc(t, root, "core/player.ws"))
	lower.InsertPrimary(lowerPlayer)

	marcher := NewMarcher()
	marcher.AddStep(upper, NewSourceMask(upper.SourcePaths()...))
	marcher.AddStep(lower, NewSourceMask(lower.SourcePaths()...))

	// the first layer wins
	sym, ok := marcher.Get(sympath.BasicType("Player"))
	require.True(t, ok)
	assert.Equal(t, "game/player.ws", sym.Location().LocalSourcePath)

	// skipping the first layer reveals the dependency's symbol
	sym, ok = marcher.SkipFirstStep(true).Get(sympath.BasicType("Player"))
	require.True(t, ok)
	assert.Equal(t, "core/player.ws", sym.Location().LocalSourcePath)
}

// A mod overlaying a stock file hides the stock file entirely, not merely
// its top-level symbols.
func TestMarcherSourceMasking(t *testing.T) {
	root := testRoot(t)

	// content B overlays A's game/player.ws with its own copy
	b := NewTable(root)
	addClass(t, b, "Player", "game/player.ws")

	a := NewTable(root)
	maskedPlayer := symbols.NewClassSymbol(sympath.BasicType("Player"), testLoc(t, root, "game/player.ws"))
	a.InsertPrimary(maskedPlayer)
	maskedHelper := symbols.NewClassSymbol(sympath.BasicType("PlayerHelper"), testLoc(t, root, "game/player.ws"))
	a.InsertPrimary(maskedHelper)
	visible := addClass(t, a, "Npc", "game/npc.ws")

	marcher := NewMarcher()
	marcher.AddStep(b, NewSourceMask(b.SourcePaths()...))
	marcher.AddStep(a, NewSourceMask(a.SourcePaths()...))

	// B's copy wins
	sym, ok := marcher.Get(sympath.BasicType("Player"))
	require.True(t, ok)
	assert.Equal(t, "game/player.ws", sym.Location().LocalSourcePath)

	// none of A's game/player.ws symbols are visible, even ones B does not
	// redeclare
	_, ok = marcher.Get(sympath.BasicType("PlayerHelper"))
	assert.False(t, ok)

	// A's other files remain visible
	_, ok = marcher.Get(visible.Path())
	assert.True(t, ok)
}

func TestMarcherGetReflectsMaskInvariant(t *testing.T) {
	root := testRoot(t)

	upper := NewTable(root)
	addClass(t, upper, "A", "x.ws")
	lower := NewTable(root)
	addClass(t, lower, "B", "y.ws")

	marcher := NewMarcher()
	marcher.AddStep(upper, NewSourceMask(upper.SourcePaths()...))
	marcher.AddStep(lower, NewSourceMask(lower.SourcePaths()...))

	// present in some layer, unmasked
	assert.True(t, marcher.Contains(sympath.BasicType("A")))
	assert.True(t, marcher.Contains(sympath.BasicType("B")))
	// absent everywhere
	assert.False(t, marcher.Contains(sympath.BasicType("C")))
}

func TestClassHierarchy(t *testing.T) {
	root := testRoot(t)
	table := NewTable(root)

	base := addClass(t, table, "CObject", "core/object.ws")
	mid := addClass(t, table, "CActor", "core/actor.ws")
	mid.BasePath = base.Path()
	leaf := addClass(t, table, "CPlayer", "game/player.ws")
	leaf.BasePath = mid.Path()

	marcher := NewMarcher()
	marcher.AddStep(table, NewSourceMask(table.SourcePaths()...))

	chain := marcher.ClassHierarchy(leaf.Path())
	require.Len(t, chain, 3)
	assert.Equal(t, "CPlayer", chain[0].Name())
	assert.Equal(t, "CActor", chain[1].Name())
	assert.Equal(t, "CObject", chain[2].Name())

	// unresolved base terminates the walk
	mid.BasePath = sympath.BasicType("CMissing")
	chain = marcher.ClassHierarchy(leaf.Path())
	assert.Len(t, chain, 2)
}

func TestClassHierarchyTerminatesOnCycle(t *testing.T) {
	root := testRoot(t)
	table := NewTable(root)

	a := addClass(t, table, "A", "a.ws")
	b := addClass(t, table, "B", "b.ws")
	a.BasePath = b.Path()
	b.BasePath = a.Path()

	marcher := NewMarcher()
	marcher.AddStep(table, NewSourceMask(table.SourcePaths()...))

	chain := marcher.ClassHierarchy(a.Path())
	// each class visited at most once
	assert.Len(t, chain, 2)
}

func addState(t *testing.T, table *Table, stateName, parentClass, baseState, local string) *symbols.StateSymbol {
	t.Helper()
	state := symbols.NewStateSymbol(sympath.State(stateName, parentClass), testLoc(t, table.ScriptsRoot(), local))
	state.StateName = stateName
	state.ParentClassPath = sympath.BasicType(parentClass)
	state.BaseStateName = baseState
	table.InsertPrimary(state)
	return state
}

func TestStateHierarchyAndClassStates(t *testing.T) {
	root := testRoot(t)
	table := NewTable(root)

	npc := addClass(t, table, "CNewNPC", "game/npc.ws")
	actor := addClass(t, table, "CActor", "core/actor.ws")
	npc.BasePath = actor.Path()

	// base state lives on the base class
	idle := addState(t, table, "Idle", "CActor", "", "core/actor_states.ws")
	combat := addState(t, table, "Combat", "CNewNPC", "Idle", "game/npc_states.ws")

	marcher := NewMarcher()
	marcher.AddStep(table, NewSourceMask(table.SourcePaths()...))

	states := marcher.ClassStates(npc.Path())
	require.Len(t, states, 1)
	assert.Equal(t, "Combat", states[0].StateName)

	chain := marcher.StateHierarchy(combat.Path())
	require.Len(t, chain, 2)
	assert.Equal(t, "Combat", chain[0].StateName)
	assert.Equal(t, "Idle", chain[1].StateName)
	_ = idle
}

func TestAnnotationChain(t *testing.T) {
	root := testRoot(t)

	// mod layer wraps, base layer declares
	mod := NewTable(root)
	target := sympath.MemberCallable(sympath.BasicType("CActor"), "OnHit")
	wrapper := symbols.NewMemberFunctionWrapperSymbol(target, testLoc(t, root, "mod/onhit.ws"))
	mod.InsertPrimary(wrapper)

	core := NewTable(root)
	original := symbols.NewMemberFunctionSymbol(target, testLoc(t, root, "core/actor.ws"))
	core.Insert(original)

	marcher := NewMarcher()
	marcher.AddStep(mod, NewSourceMask(mod.SourcePaths()...))
	marcher.AddStep(core, NewSourceMask(core.SourcePaths()...))

	chain := marcher.AnnotationChain(target)
	require.Len(t, chain, 1)
	assert.Equal(t, symbols.KindMemberFunctionWrapper, chain[0].Kind())
}
