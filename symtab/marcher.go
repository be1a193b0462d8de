package symtab

import (
	"github.com/teranos/witcherscript-ls/symbols"
	"github.com/teranos/witcherscript-ls/sympath"
)

// Marcher performs data fetching operations on many symbol tables until the
// data is found. Tables are consulted in the order they were added: the
// current content first, followed by its transitive dependencies.
//
// A SourceMask per step hides script files that were already present in an
// earlier table. When a marcher is composed of tables A and B and table A
// contains the script "game/player.ws", any symbol coming from a file at
// the same local path in table B is ignored.
//
// A marcher borrows its tables; it must not outlive the lock guard that
// produced it.
type Marcher struct {
	steps    []maskedTable
	startIdx int
}

type maskedTable struct {
	table *Table
	// accumMask is the union of the assoc masks of all earlier steps.
	accumMask SourceMask
	// assocMask is the set of local source paths of this step's content.
	assocMask SourceMask
}

func NewMarcher() *Marcher {
	return &Marcher{}
}

// AddStep appends a table with the set of local source paths its content
// declares.
func (m *Marcher) AddStep(table *Table, mask SourceMask) {
	accum := SourceMask{}
	if len(m.steps) > 0 {
		last := m.steps[len(m.steps)-1]
		accum = last.accumMask.Union(last.assocMask)
	}
	m.steps = append(m.steps, maskedTable{
		table:     table,
		accumMask: accum,
		assocMask: mask,
	})
}

// SkipFirstStep returns a marcher that omits (or re-includes) the first
// layer. Used to implement super and wrapped-method lookups, which must not
// resolve to the current content's own declaration.
func (m *Marcher) SkipFirstStep(skip bool) *Marcher {
	out := &Marcher{steps: m.steps}
	if skip {
		out.startIdx = 1
	}
	return out
}

func (mt maskedTable) get(path sympath.Path) (symbols.Symbol, bool) {
	sym, ok := mt.table.Get(path)
	if !ok {
		return nil, false
	}
	if loc := sym.Location(); loc != nil && !mt.accumMask.Allows(loc.LocalSourcePath) {
		return nil, false
	}
	return sym, true
}

// Get returns the first unmasked symbol at the path across layers.
func (m *Marcher) Get(path sympath.Path) (symbols.Symbol, bool) {
	for i := m.startIdx; i < len(m.steps); i++ {
		if sym, ok := m.steps[i].get(path); ok {
			return sym, true
		}
	}
	return nil, false
}

func (m *Marcher) Contains(path sympath.Path) bool {
	_, ok := m.Get(path)
	return ok
}

// TestContains returns a PathOccupiedError if any layer holds an unmasked
// symbol at the path.
func (m *Marcher) TestContains(path sympath.Path) *PathOccupiedError {
	for i := m.startIdx; i < len(m.steps); i++ {
		if sym, ok := m.steps[i].get(path); ok {
			return &PathOccupiedError{
				OccupiedPath:     sym.Path(),
				OccupiedLocation: sym.Location(),
			}
		}
	}
	return nil
}

// GetWithTable returns the winning symbol together with the table that
// contains it.
func (m *Marcher) GetWithTable(path sympath.Path) (*Table, symbols.Symbol, bool) {
	for i := m.startIdx; i < len(m.steps); i++ {
		if sym, ok := m.steps[i].get(path); ok {
			return m.steps[i].table, sym, true
		}
	}
	return nil, nil, false
}

// Locate returns the location of the winning symbol at the path, or nil.
func (m *Marcher) Locate(path sympath.Path) *symbols.Location {
	sym, ok := m.Get(path)
	if !ok {
		return nil
	}
	return sym.Location()
}

// ClassHierarchy walks base-class links starting at the given class.
// It terminates on cycles; each class is visited at most once.
func (m *Marcher) ClassHierarchy(classPath sympath.Path) []*symbols.ClassSymbol {
	var out []*symbols.ClassSymbol
	visited := make(map[sympath.Path]struct{})

	current := classPath
	for !current.IsEmpty() {
		if _, seen := visited[current]; seen {
			break
		}
		visited[current] = struct{}{}

		sym, ok := m.Get(current)
		if !ok {
			break
		}
		class, ok := sym.(*symbols.ClassSymbol)
		if !ok {
			break
		}
		out = append(out, class)
		current = class.BasePath
	}

	return out
}

// ClassStates returns all states whose declared parent class is the given
// class, in layer order.
func (m *Marcher) ClassStates(classPath sympath.Path) []*symbols.StateSymbol {
	var out []*symbols.StateSymbol
	for i := m.startIdx; i < len(m.steps); i++ {
		step := m.steps[i]
		for _, sym := range step.table.All() {
			state, ok := sym.(*symbols.StateSymbol)
			if !ok {
				continue
			}
			if state.ParentClassPath != classPath {
				continue
			}
			if loc := state.Location(); loc != nil && !step.accumMask.Allows(loc.LocalSourcePath) {
				continue
			}
			out = append(out, state)
		}
	}
	return out
}

// StateHierarchy walks base-state links starting at the given state. When a
// state names a base state, the next link is the state with that name on
// any class of the owning class's hierarchy. The implicit derivation from
// the default state base class is not included.
func (m *Marcher) StateHierarchy(statePath sympath.Path) []*symbols.StateSymbol {
	var out []*symbols.StateSymbol
	visited := make(map[sympath.Path]struct{})

	current := statePath
	for !current.IsEmpty() {
		if _, seen := visited[current]; seen {
			break
		}
		visited[current] = struct{}{}

		sym, ok := m.Get(current)
		if !ok {
			break
		}
		state, ok := sym.(*symbols.StateSymbol)
		if !ok {
			break
		}
		out = append(out, state)

		current = sympath.Empty()
		if state.BaseStateName != "" {
		classes:
			for _, class := range m.ClassHierarchy(state.ParentClassPath) {
				for _, candidate := range m.ClassStates(class.Path()) {
					if candidate.StateName == state.BaseStateName {
						current = candidate.Path()
						break classes
					}
				}
			}
		}
	}

	return out
}

// AnnotationChain iterates replacer and wrapper symbols at a path across
// layers, in layer order.
func (m *Marcher) AnnotationChain(annotatedPath sympath.Path) []symbols.Symbol {
	var out []symbols.Symbol
	for i := 0; i < len(m.steps); i++ {
		if sym, ok := m.steps[i].get(annotatedPath); ok && symbols.IsAnnotationChainLink(sym) {
			out = append(out, sym)
		}
	}
	return out
}
