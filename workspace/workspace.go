// Package workspace orchestrates the analysis core: it owns the content
// graph, per-content source trees and symbol tables, the parsed-script
// cache, and the query surface consumed by the editor protocol layer.
package workspace

import (
	"context"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/teranos/witcherscript-ls/abspath"
	"github.com/teranos/witcherscript-ls/diagnostics"
	"github.com/teranos/witcherscript-ls/errors"
	"github.com/teranos/witcherscript-ls/project"
	"github.com/teranos/witcherscript-ls/scanner"
	"github.com/teranos/witcherscript-ls/symbols"
	"github.com/teranos/witcherscript-ls/symtab"
	"github.com/teranos/witcherscript-ls/sympath"
	"github.com/teranos/witcherscript-ls/syntax"
)

// parsedScriptCacheSize bounds the parsed-tree cache; a full vanilla game
// content is ~2000 scripts, most of which are rarely touched after the
// initial scan.
const parsedScriptCacheSize = 1024

// ParsedScript pairs a parsed syntax tree with its text source.
type ParsedScript struct {
	Script *syntax.Script
	Doc    *syntax.Document
}

// ParseFunc is the upstream parser contract: produce a syntax tree with
// positional ranges from script text.
type ParseFunc func(path abspath.Path, text string) (*ParsedScript, error)

// contentState is everything the workspace tracks per content.
type contentState struct {
	content    project.Content
	sourceTree *project.SourceTree
	table      *symtab.Table

	// fileDiags holds scanner + contextual diagnostics per local source
	// path; replaced wholesale when the file is reanalyzed.
	fileDiags map[string][]diagnostics.Located
	// depConflictDiags holds SymbolNameTakenInDependency diagnostics,
	// recomputed after every change that may affect cross-content names.
	depConflictDiags []diagnostics.Located
}

// Workspace is the shared state of the analysis core. Symbol tables live
// behind a single-writer many-reader lock; marchers produced by queries
// must not outlive the read guard, so all queries run inside this package.
type Workspace struct {
	mu  sync.RWMutex
	log *zap.SugaredLogger

	parse ParseFunc

	workspaceRoots  []abspath.Path
	repositoryRoots []abspath.Path

	graph  *project.ContentGraph
	states map[abspath.Path]*contentState

	// scripts caches parsed trees keyed by absolute script path.
	scripts *lru.Cache[abspath.Path, *ParsedScript]

	// natives holds primitives and engine globals; it backs every marcher
	// as the final fallback layer.
	natives *symtab.Table
}

func New(log *zap.SugaredLogger, parse ParseFunc) *Workspace {
	cache, err := lru.New[abspath.Path, *ParsedScript](parsedScriptCacheSize)
	if err != nil {
		// only fails for a non-positive size
		panic(err)
	}

	natives := symtab.NewTable(abspath.Path{})
	for _, prim := range symbols.MakePrimitives() {
		natives.InsertPrimitive(prim)
	}

	return &Workspace{
		log:     log,
		parse:   parse,
		graph:   project.NewContentGraph(log.Named("graph")),
		states:  make(map[abspath.Path]*contentState),
		scripts: cache,
		natives: natives,
	}
}

// SetRoots configures where workspace projects and repository contents are
// discovered.
func (w *Workspace) SetRoots(workspaceRoots, repositoryRoots []abspath.Path) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.workspaceRoots = workspaceRoots
	w.repositoryRoots = repositoryRoots
}

// Rebuild rescans roots, rebuilds the content graph and brings per-content
// state in line with the diff. New contents get a full scan; removed
// contents are dropped. The scan is cancellable at file boundaries; files
// already processed keep their results.
func (w *Workspace) Rebuild(ctx context.Context) (project.ContentGraphDifference, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	repos := project.NewContentRepositories(w.repositoryRoots...)
	repos.Scan(w.log.Named("repos"))

	projects, scanErrs := project.ScanWorkspaceProjects(w.workspaceRoots, w.log.Named("scan"))
	for _, scanErr := range scanErrs {
		w.log.Warnw("Workspace scan error", "path", scanErr.Path.String(), "error", scanErr.Err)
	}

	w.graph.SetRepositories(repos)
	w.graph.SetWorkspaceProjects(projects)
	diff := w.graph.Build()

	for _, removed := range diff.RemovedNodes {
		delete(w.states, removed)
	}

	for _, added := range diff.AddedNodes {
		node, ok := w.graph.GetNodeByPath(added)
		if !ok {
			continue
		}
		state := &contentState{
			content:    node.Content,
			sourceTree: project.NewSourceTree(node.Content.ScriptsRootPath()),
			table:      symtab.NewTable(node.Content.ScriptsRootPath()),
			fileDiags:  make(map[string][]diagnostics.Located),
		}
		w.states[added] = state

		if err := w.scanContent(ctx, state); err != nil {
			return diff, err
		}
	}

	w.recomputeDependencyConflicts()

	return diff, ctx.Err()
}

// scanContent analyzes every file of a content's source tree.
func (w *Workspace) scanContent(ctx context.Context, state *contentState) error {
	for _, file := range state.sourceTree.Files() {
		if err := ctx.Err(); err != nil {
			w.log.Infow("Content scan cancelled",
				"content", state.content.ContentName(),
			)
			return err
		}
		w.processFile(state, file)
	}
	w.log.Infow("Content scanned",
		"content", state.content.ContentName(),
		"count", state.sourceTree.Len(),
	)
	return nil
}

// processFile runs the deterministic per-script pipeline:
// remove old symbols -> parse -> contextual syntax pass -> symbol scan.
// Prior diagnostics for the file are cleared before the new analysis runs.
func (w *Workspace) processFile(state *contentState, file project.SourceTreeFile) {
	state.table.RemoveForSource(file.LocalPath)
	delete(state.fileDiags, file.LocalPath)
	w.scripts.Remove(file.AbsPath)

	parsed, err := w.loadAndParse(file.AbsPath)
	if err != nil {
		w.log.Warnw("Failed to parse script",
			"path", file.AbsPath.String(),
			"error", err,
		)
		return
	}

	var diags []diagnostics.Located
	diags = append(diags, scanner.AnalyzeContext(parsed.Script, parsed.Doc, file.LocalPath, state.content.ScriptsRootPath())...)
	diags = append(diags, scanner.ScanSymbols(parsed.Script, parsed.Doc, file.LocalPath, state.table)...)
	if len(diags) > 0 {
		state.fileDiags[file.LocalPath] = diags
	}
}

func (w *Workspace) loadAndParse(path abspath.Path) (*ParsedScript, error) {
	if cached, ok := w.scripts.Get(path); ok {
		return cached, nil
	}

	text, err := os.ReadFile(path.String())
	if err != nil {
		return nil, errors.Wrapf(err, "reading script %s", path)
	}

	parsed, err := w.parse(path, string(text))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing script %s", path)
	}

	w.scripts.Add(path, parsed)
	return parsed, nil
}

// OnFileChanged reanalyzes the content owning the given script path.
// Removed files purge their symbols; added and modified files are scanned
// afresh. Dependants observe the change through their marchers immediately.
func (w *Workspace) OnFileChanged(path abspath.Path) {
	w.mu.Lock()
	defer w.mu.Unlock()

	state := w.stateContainingScript(path)
	if state == nil {
		return
	}

	diff := state.sourceTree.Scan()
	for _, removed := range diff.Removed {
		state.table.RemoveForSource(removed.LocalPath)
		delete(state.fileDiags, removed.LocalPath)
		w.scripts.Remove(removed.AbsPath)
	}
	for _, file := range diff.Added {
		w.processFile(state, file)
	}
	for _, file := range diff.Modified {
		w.processFile(state, file)
	}

	if !diff.IsEmpty() {
		w.recomputeDependencyConflicts()
	}
}

func (w *Workspace) stateContainingScript(path abspath.Path) *contentState {
	for _, state := range w.states {
		if _, ok := path.LocalTo(state.content.ScriptsRootPath()); ok {
			return state
		}
	}
	return nil
}

// marcherFor composes the layered view of a content: the content's own
// table first, then its transitive dependencies in dependency order, with
// the natives table as the final fallback. Callers must hold w.mu.
func (w *Workspace) marcherFor(contentPath abspath.Path) *symtab.Marcher {
	marcher := symtab.NewMarcher()

	for _, node := range w.graph.WalkDependencies(contentPath) {
		state, ok := w.states[node.Content.Path()]
		if !ok {
			continue
		}
		marcher.AddStep(state.table, symtab.NewSourceMask(state.sourceTree.LocalPaths()...))
	}

	marcher.AddStep(w.natives, symtab.NewSourceMask())
	return marcher
}

// recomputeDependencyConflicts performs the duplicate detection of every
// workspace content against its dependencies through the marcher's view.
// Conflicts that exist purely inside one content were already reported by
// the scanner; only cross-content collisions surface here.
func (w *Workspace) recomputeDependencyConflicts() {
	for contentPath, state := range w.states {
		node, ok := w.graph.GetNodeByPath(contentPath)
		if !ok || !node.InWorkspace {
			continue
		}

		state.depConflictDiags = nil

		// the full layered view is built first so the content's own source
		// mask hides overlayed dependency files, then the first step is
		// skipped: a content does not conflict with itself
		layered := symtab.NewMarcher()
		for _, depNode := range w.graph.WalkDependencies(contentPath) {
			depState, ok := w.states[depNode.Content.Path()]
			if !ok {
				continue
			}
			layered.AddStep(depState.table, symtab.NewSourceMask(depState.sourceTree.LocalPaths()...))
		}
		deps := layered.SkipFirstStep(true)

		for _, localPath := range state.table.SourcePaths() {
			for _, root := range state.table.PrimaryRootsForSource(localPath) {
				sym, ok := state.table.Get(root)
				if !ok || symbols.IsArrayFamily(sym) || symbols.IsAnnotationChainLink(sym) {
					continue
				}
				if root.HasUnknown() {
					continue
				}

				occupied := deps.TestContains(root)
				if occupied == nil {
					continue
				}

				loc := sym.Location()
				if loc == nil {
					continue
				}

				kind := diagnostics.SymbolNameTakenInDependency{}
				if last, lok := root.Last(); lok {
					kind.Name = last.Name
				}
				if occupied.OccupiedLocation != nil {
					precursorPath := occupied.OccupiedLocation.AbsSourcePath
					precursorRange := occupied.OccupiedLocation.LabelRange
					kind.PrecursorFilePath = &precursorPath
					kind.PrecursorRange = &precursorRange
				}

				state.depConflictDiags = append(state.depConflictDiags, diagnostics.Located{
					Path:       loc.AbsSourcePath,
					Diagnostic: diagnostics.Diagnostic{Range: loc.LabelRange, Kind: kind},
				})
			}
		}
	}
}

// Diagnostics returns every current diagnostic grouped by file: content
// graph problems, per-file analysis results and cross-content collisions.
func (w *Workspace) Diagnostics() map[abspath.Path][]diagnostics.Diagnostic {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make(map[abspath.Path][]diagnostics.Diagnostic)
	push := func(located []diagnostics.Located) {
		for _, d := range located {
			out[d.Path] = append(out[d.Path], d.Diagnostic)
		}
	}

	push(w.graph.Diagnostics)
	for _, state := range w.states {
		for _, diags := range state.fileDiags {
			push(diags)
		}
		push(state.depConflictDiags)
	}

	return out
}

// ContentFor returns the content owning the given script path.
func (w *Workspace) ContentFor(path abspath.Path) (project.Content, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	state := w.stateContainingScript(path)
	if state == nil {
		return nil, false
	}
	return state.content, true
}

// GetSymbol resolves a symbol path from the perspective of the content
// owning the given script.
func (w *Workspace) GetSymbol(scriptPath abspath.Path, path sympath.Path) (symbols.Symbol, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	state := w.stateContainingScript(scriptPath)
	if state == nil {
		return nil, false
	}
	return w.marcherFor(state.content.Path()).Get(path)
}

// LocateSymbol resolves a symbol path to its source location.
func (w *Workspace) LocateSymbol(scriptPath abspath.Path, path sympath.Path) (*symbols.Location, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	state := w.stateContainingScript(scriptPath)
	if state == nil {
		return nil, false
	}
	loc := w.marcherFor(state.content.Path()).Locate(path)
	return loc, loc != nil
}

// Children returns the direct children of a symbol path.
func (w *Workspace) Children(scriptPath abspath.Path, path sympath.Path) []symbols.Symbol {
	w.mu.RLock()
	defer w.mu.RUnlock()

	state := w.stateContainingScript(scriptPath)
	if state == nil {
		return nil
	}
	table, _, ok := w.marcherFor(state.content.Path()).GetWithTable(path)
	if !ok {
		return nil
	}
	return table.GetChildren(path)
}

// ClassHierarchy walks base-class links from the perspective of the content
// owning the given script.
func (w *Workspace) ClassHierarchy(scriptPath abspath.Path, classPath sympath.Path) []*symbols.ClassSymbol {
	w.mu.RLock()
	defer w.mu.RUnlock()

	state := w.stateContainingScript(scriptPath)
	if state == nil {
		return nil
	}
	return w.marcherFor(state.content.Path()).ClassHierarchy(classPath)
}

// StateHierarchy walks base-state links from the perspective of the content
// owning the given script.
func (w *Workspace) StateHierarchy(scriptPath abspath.Path, statePath sympath.Path) []*symbols.StateSymbol {
	w.mu.RLock()
	defer w.mu.RUnlock()

	state := w.stateContainingScript(scriptPath)
	if state == nil {
		return nil
	}
	return w.marcherFor(state.content.Path()).StateHierarchy(statePath)
}
