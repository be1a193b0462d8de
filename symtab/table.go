// Package symtab contains the per-content symbol store and the layered
// marcher used to query a content together with its dependencies.
package symtab

import (
	"sort"
	"sync"

	"github.com/teranos/witcherscript-ls/abspath"
	"github.com/teranos/witcherscript-ls/symbols"
	"github.com/teranos/witcherscript-ls/sympath"
)

// PathOccupiedError reports that a symbol path is already taken.
type PathOccupiedError struct {
	OccupiedPath     sympath.Path
	OccupiedLocation *symbols.Location
}

func (e *PathOccupiedError) Error() string {
	return "symbol path already occupied: " + e.OccupiedPath.String()
}

// MergeConflict reports a collision found while merging symbol tables.
type MergeConflict struct {
	OccupiedPath     sympath.Path
	OccupiedLocation *symbols.Location
	IncomingLocation symbols.Location
}

// Table contains information about all scanned symbols of one content.
// Symbols are identified by their path; on a given unique path only one
// symbol can be present.
type Table struct {
	scriptsRoot abspath.Path

	byPath map[sympath.Path]symbols.Symbol
	// sorted is rebuilt lazily; iteration in path order is the primary
	// traversal and the basis of subtree range scans. sortMu makes the
	// rebuild safe for concurrent readers of an otherwise unchanging table.
	sortMu sync.Mutex
	sorted []sympath.Path
	dirty  bool

	// sourceIndex maps a local source path to the primary symbol roots
	// declared in that file.
	sourceIndex map[string][]sympath.Path
}

func NewTable(scriptsRoot abspath.Path) *Table {
	return &Table{
		scriptsRoot: scriptsRoot,
		byPath:      make(map[sympath.Path]symbols.Symbol),
		sourceIndex: make(map[string][]sympath.Path),
	}
}

func (t *Table) ScriptsRoot() abspath.Path {
	return t.scriptsRoot
}

func (t *Table) IsEmpty() bool {
	return len(t.byPath) == 0
}

func (t *Table) Len() int {
	return len(t.byPath)
}

// Insert stores a symbol. The caller ensures the path is free; use Contains
// first.
func (t *Table) Insert(sym symbols.Symbol) {
	t.byPath[sym.Path()] = sym
	t.dirty = true
}

// InsertPrimary stores a top-level symbol of a source file and records its
// path in the source index under the symbol's local source path.
func (t *Table) InsertPrimary(sym symbols.PrimarySymbol) {
	loc := sym.Location()
	if loc != nil {
		local := loc.LocalSourcePath
		t.sourceIndex[local] = append(t.sourceIndex[local], sym.Path())
	}
	t.Insert(sym)
}

// InsertArrayType stores a synthesized array type symbol and attributes it
// to the script whose declaration caused the injection, so that removing the
// script removes the family as well.
func (t *Table) InsertArrayType(arr *symbols.ArrayTypeSymbol, localSourcePath string) {
	t.sourceIndex[localSourcePath] = append(t.sourceIndex[localSourcePath], arr.Path())
	t.Insert(arr)
}

// InsertPrimitive stores a primitive type symbol under its path and, when it
// has one, its alias path.
func (t *Table) InsertPrimitive(sym *symbols.PrimitiveTypeSymbol) {
	if !sym.AliasPath.IsEmpty() {
		t.byPath[sym.AliasPath] = sym
	}
	t.Insert(sym)
}

// Contains returns a PathOccupiedError when the path is taken, nil otherwise.
func (t *Table) Contains(path sympath.Path) *PathOccupiedError {
	occupying, ok := t.byPath[path]
	if !ok {
		return nil
	}
	return &PathOccupiedError{
		OccupiedPath:     occupying.Path(),
		OccupiedLocation: t.Locate(path),
	}
}

func (t *Table) Get(path sympath.Path) (symbols.Symbol, bool) {
	sym, ok := t.byPath[path]
	return sym, ok
}

// Locate returns the location of a symbol, or nil for absent or synthesized
// symbols.
func (t *Table) Locate(path sympath.Path) *symbols.Location {
	_, loc, ok := t.GetWithLocation(path)
	if !ok {
		return nil
	}
	return loc
}

// GetWithLocation returns the symbol and the location stored on it. The
// boolean is false when the path is absent and also when the symbol is
// synthesized and has no location.
func (t *Table) GetWithLocation(path sympath.Path) (symbols.Symbol, *symbols.Location, bool) {
	sym, ok := t.byPath[path]
	if !ok {
		return nil, nil, false
	}
	loc := sym.Location()
	if loc == nil {
		return nil, nil, false
	}
	return sym, loc, true
}

// RemoveForSource removes every symbol whose path is rooted at any primary
// symbol recorded for the local path, then clears the path's index entry.
// No dangling children remain afterwards.
func (t *Table) RemoveForSource(localSourcePath string) {
	for _, sym := range t.GetForSource(localSourcePath) {
		delete(t.byPath, sym.Path())
	}
	delete(t.sourceIndex, localSourcePath)
	t.dirty = true
}

// GetChildren returns the symbols whose path has the given path as parent
// and exactly one additional component, ordered by path.
func (t *Table) GetChildren(path sympath.Path) []symbols.Symbol {
	want := path.Len() + 1
	var out []symbols.Symbol
	for _, p := range t.subtreePaths(path) {
		if p.Len() == want {
			out = append(out, t.byPath[p])
		}
	}
	return out
}

// GetForSource returns all symbols attributed to a local source path:
// its primary roots and their descendants, ordered by path.
func (t *Table) GetForSource(localSourcePath string) []symbols.Symbol {
	roots := t.sourceIndex[localSourcePath]
	if len(roots) == 0 {
		return nil
	}

	rootSet := make(map[sympath.Path]struct{}, len(roots))
	for _, r := range roots {
		rootSet[r] = struct{}{}
	}

	var out []symbols.Symbol
	for _, p := range t.sortedPaths() {
		root, ok := p.Root()
		if !ok {
			continue
		}
		if _, ok := rootSet[root]; ok {
			out = append(out, t.byPath[p])
		}
	}
	return out
}

// PrimaryRootsForSource returns the recorded primary roots of a file, in
// declaration order.
func (t *Table) PrimaryRootsForSource(localSourcePath string) []sympath.Path {
	return t.sourceIndex[localSourcePath]
}

// SourcePaths returns every local source path with recorded primary symbols.
func (t *Table) SourcePaths() []string {
	out := make([]string, 0, len(t.sourceIndex))
	for p := range t.sourceIndex {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// All returns every symbol in path order.
func (t *Table) All() []symbols.Symbol {
	paths := t.sortedPaths()
	out := make([]symbols.Symbol, len(paths))
	for i, p := range paths {
		out[i] = t.byPath[p]
	}
	return out
}

func (t *Table) sortedPaths() []sympath.Path {
	t.sortMu.Lock()
	defer t.sortMu.Unlock()
	if t.dirty || t.sorted == nil {
		t.sorted = make([]sympath.Path, 0, len(t.byPath))
		for p := range t.byPath {
			t.sorted = append(t.sorted, p)
		}
		sort.Slice(t.sorted, func(i, j int) bool { return t.sorted[i].Less(t.sorted[j]) })
		t.dirty = false
	}
	return t.sorted
}

// subtreePaths returns the sorted paths that have the given path as prefix,
// including the path itself if present. Descendants sort immediately after
// their ancestor, so this is one binary search plus a linear scan.
func (t *Table) subtreePaths(prefix sympath.Path) []sympath.Path {
	paths := t.sortedPaths()
	start := sort.Search(len(paths), func(i int) bool {
		return paths[i].Compare(prefix) >= 0
	})
	end := start
	for end < len(paths) && paths[end].HasPrefix(prefix) {
		end++
	}
	return paths[start:end]
}

// Merge combines another symbol table into this one, used when composing
// contents. Conflicts are returned for the caller to surface; array-family
// collisions are accepted silently because the injector may synthesize the
// same family in multiple tables. When the occupying path contains the
// unknown sentinel the incoming symbol wins silently.
func (t *Table) Merge(other *Table) []MergeConflict {
	var conflicts []MergeConflict
	if other.IsEmpty() {
		return conflicts
	}

	incomingLocation := func(filePath string, sym symbols.Symbol) symbols.Location {
		if loc := sym.Location(); loc != nil {
			return *loc
		}
		abs, _ := t.scriptsRoot.Join(filePath)
		return symbols.Location{AbsSourcePath: abs, LocalSourcePath: filePath}
	}

	for _, filePath := range other.SourcePaths() {
		for _, root := range other.sourceIndex[filePath] {
			rootSym, ok := other.byPath[root]
			if !ok {
				continue
			}

			if occupying, taken := t.byPath[root]; taken {
				if symbols.IsArrayFamily(occupying) {
					// the same family may be synthesized in many tables
					continue
				}
				if occupying.Path().HasUnknown() {
					// failed resolutions never shadow real declarations
					t.byPath[root] = rootSym
					t.dirty = true
				} else {
					conflicts = append(conflicts, MergeConflict{
						OccupiedPath:     occupying.Path(),
						OccupiedLocation: t.Locate(root),
						IncomingLocation: incomingLocation(filePath, rootSym),
					})
				}
				continue
			}

			t.byPath[root] = rootSym
			t.dirty = true
			t.sourceIndex[filePath] = append(t.sourceIndex[filePath], root)

			// Descendants come right after their parent in path order, so a
			// duplicate subtree can be skipped by remembering its prefix.
			var skipPrefix sympath.Path
			skipping := false
			for _, childPath := range other.subtreePaths(root) {
				if childPath == root {
					continue
				}
				if skipping && childPath.HasPrefix(skipPrefix) {
					continue
				}
				skipping = false

				childSym := other.byPath[childPath]
				if occupying, taken := t.byPath[childPath]; taken {
					// array symbols do not get declared in a normal sense;
					// they are created on sight of an array var declaration,
					// so a duplicate array is not a conflict
					if symbols.IsArrayFamily(occupying) {
						continue
					}

					if !occupying.Path().HasUnknown() {
						conflicts = append(conflicts, MergeConflict{
							OccupiedPath:     occupying.Path(),
							OccupiedLocation: t.Locate(childPath),
							IncomingLocation: incomingLocation(filePath, childSym),
						})
					}

					skipPrefix = childPath
					skipping = true
				} else {
					t.byPath[childPath] = childSym
				}
			}
		}
	}

	return conflicts
}
