package project

import (
	"os"
	"sort"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"go.uber.org/zap"

	"github.com/teranos/witcherscript-ls/abspath"
	"github.com/teranos/witcherscript-ls/diagnostics"
	"github.com/teranos/witcherscript-ls/errors"
)

// GraphNode is one content in the graph with its origin flags.
type GraphNode struct {
	Content      Content
	InWorkspace  bool
	InRepository bool
}

// graphEdge direction is: dependant ---> dependency
type graphEdge struct {
	dependantIdx  int
	dependencyIdx int
}

// GraphEdgePair identifies an edge by content paths in a build diff.
type GraphEdgePair struct {
	Dependant  abspath.Path
	Dependency abspath.Path
}

// ContentGraphDifference is the structural change produced by a rebuild.
type ContentGraphDifference struct {
	AddedNodes   []abspath.Path
	RemovedNodes []abspath.Path
	AddedEdges   []GraphEdgePair
	RemovedEdges []GraphEdgePair
}

func (d *ContentGraphDifference) IsEmpty() bool {
	return len(d.AddedNodes) == 0 && len(d.RemovedNodes) == 0 &&
		len(d.AddedEdges) == 0 && len(d.RemovedEdges) == 0
}

// ContentGraph stores contents needed in the current workspace and tracks
// the dependency relationships between them. Edges point from dependant to
// dependency; cycles are broken by visitation marking during the build.
type ContentGraph struct {
	repos             *ContentRepositories
	workspaceProjects []Content

	nodes []GraphNode
	edges []graphEdge

	// Diagnostics of the last build, attributed to the offending manifests.
	Diagnostics []diagnostics.Located

	log *zap.SugaredLogger
}

func NewContentGraph(log *zap.SugaredLogger) *ContentGraph {
	return &ContentGraph{
		repos: NewContentRepositories(),
		log:   log,
	}
}

// SetRepositories sets the repositories the graph can use to resolve by-name
// dependencies.
func (g *ContentGraph) SetRepositories(repos *ContentRepositories) {
	g.repos = repos
}

// SetWorkspaceProjects sets the workspace contents that should be actively
// monitored.
func (g *ContentGraph) SetWorkspaceProjects(projects []Content) {
	g.workspaceProjects = projects
}

func (g *ContentGraph) WorkspaceProjects() []Content {
	return g.workspaceProjects
}

// Nodes returns all graph nodes.
func (g *ContentGraph) Nodes() []GraphNode {
	return g.nodes
}

// GetNodeByPath looks up a node by its content root path.
func (g *ContentGraph) GetNodeByPath(contentPath abspath.Path) (GraphNode, bool) {
	if idx, ok := g.nodeIndexByPath(contentPath); ok {
		return g.nodes[idx], true
	}
	return GraphNode{}, false
}

// Build recomputes the whole graph and returns the difference against the
// previous build. A malformed content is reported and excluded; other
// contents proceed.
func (g *ContentGraph) Build() ContentGraphDifference {
	prevNodePaths := g.nodePathSet()
	prevEdgePairs := g.edgePairSet()

	g.nodes = nil
	g.edges = nil
	g.Diagnostics = nil

	if len(g.workspaceProjects) > 0 {
		for _, content := range g.workspaceProjects {
			g.createNode(content, false, true)
		}
		for _, content := range g.repos.FoundContents() {
			g.createNode(content, true, false)
		}

		// correct flags where repository and workspace paths overlap
		for i := range g.nodes {
			for _, repoContent := range g.repos.FoundContents() {
				if repoContent.Path() == g.nodes[i].Content.Path() {
					g.nodes[i].InRepository = true
				}
			}
		}

		// surface repository scanning failures
		for _, scanErr := range g.repos.Errors {
			g.pushManifestDiagnostic(scanErr.Path, protocol.Range{},
				diagnostics.InvalidProjectManifest{Msg: scanErr.Err.Error()})
		}

		visited := make(map[int]struct{})
		for i := range g.nodes {
			if g.nodes[i].InWorkspace {
				g.linkDependencies(i, visited)
			}
		}

		// repository contents were all given a node up front; the ones no
		// workspace content reaches are unnecessary
		var unneeded []abspath.Path
		for i, n := range g.nodes {
			if n.InWorkspace {
				continue
			}
			hasDependant := false
			for _, e := range g.edges {
				if e.dependencyIdx == i {
					hasDependant = true
					break
				}
			}
			if !hasDependant {
				unneeded = append(unneeded, n.Content.Path())
			}
		}
		for _, p := range unneeded {
			g.removeNodeByPath(p)
		}
	}

	diff := g.diffAgainst(prevNodePaths, prevEdgePairs)
	g.log.Infow("Content graph built",
		"count", len(g.nodes),
		"added", len(diff.AddedNodes),
		"removed", len(diff.RemovedNodes),
	)
	return diff
}

// WalkDependencies iterates content nodes that are dependencies of the
// given content, starting from it, in stable breadth-first order.
func (g *ContentGraph) WalkDependencies(contentPath abspath.Path) []GraphNode {
	return g.walkRelatives(contentPath, false)
}

// WalkDependants iterates content nodes that depend on the given content,
// starting from it, in stable breadth-first order.
func (g *ContentGraph) WalkDependants(contentPath abspath.Path) []GraphNode {
	return g.walkRelatives(contentPath, true)
}

func (g *ContentGraph) walkRelatives(contentPath abspath.Path, dependants bool) []GraphNode {
	start, ok := g.nodeIndexByPath(contentPath)
	if !ok {
		return nil
	}

	indices := []int{start}
	for i := 0; i < len(indices); i++ {
		current := indices[i]
		for _, edge := range g.edges {
			var from, to int
			if dependants {
				from, to = edge.dependencyIdx, edge.dependantIdx
			} else {
				from, to = edge.dependantIdx, edge.dependencyIdx
			}
			if from != current {
				continue
			}
			seen := false
			for _, idx := range indices {
				if idx == to {
					seen = true
					break
				}
			}
			if !seen {
				indices = append(indices, to)
			}
		}
	}

	out := make([]GraphNode, len(indices))
	for i, idx := range indices {
		out[i] = g.nodes[idx]
	}
	return out
}

func (g *ContentGraph) createNode(content Content, inRepository, inWorkspace bool) {
	if _, exists := g.nodeIndexByPath(content.Path()); exists {
		return
	}
	g.nodes = append(g.nodes, GraphNode{
		Content:      content,
		InWorkspace:  inWorkspace,
		InRepository: inRepository,
	})
}

func (g *ContentGraph) linkDependencies(nodeIdx int, visited map[int]struct{}) {
	if _, seen := visited[nodeIdx]; seen {
		return
	}
	visited[nodeIdx] = struct{}{}

	node := g.nodes[nodeIdx]
	for _, entry := range node.Content.Dependencies() {
		if entry.Value.FromRepo {
			if entry.Value.Active {
				g.linkDependencyByName(nodeIdx, entry, visited)
			}
		} else {
			g.linkDependencyByPath(nodeIdx, entry, visited)
		}
	}
}

func (g *ContentGraph) linkDependencyByName(nodeIdx int, entry DependencyEntry, visited map[int]struct{}) {
	node := g.nodes[nodeIdx]

	if entry.Name == node.Content.ContentName() {
		g.pushDependencyDiagnostic(node, entry.NameRange, diagnostics.ProjectSelfDependency{})
		return
	}

	var candidates []int
	for i, n := range g.nodes {
		if n.Content.ContentName() == entry.Name {
			candidates = append(candidates, i)
		}
	}

	switch len(candidates) {
	case 0:
		g.pushDependencyDiagnostic(node, entry.NameRange,
			diagnostics.ProjectDependencyNameNotFound{Name: entry.Name})
	case 1:
		g.insertEdge(nodeIdx, candidates[0])
		g.linkDependencies(candidates[0], visited)
	default:
		paths := make([]abspath.Path, len(candidates))
		for i, idx := range candidates {
			paths[i] = g.nodes[idx].Content.Path()
		}
		g.pushDependencyDiagnostic(node, entry.NameRange,
			diagnostics.MultipleMatchingProjectDependencies{Name: entry.Name, MatchingPaths: paths})
	}
}

func (g *ContentGraph) linkDependencyByPath(nodeIdx int, entry DependencyEntry, visited map[int]struct{}) {
	node := g.nodes[nodeIdx]

	depPath, err := node.Content.Path().Join(entry.Value.Path)
	if err != nil {
		g.pushDependencyDiagnostic(node, entry.ValueRange,
			diagnostics.ProjectDependencyPathNotFound{DepPath: entry.Value.Path})
		return
	}

	if depPath == node.Content.Path() {
		g.pushDependencyDiagnostic(node, entry.ValueRange, diagnostics.ProjectSelfDependency{})
		return
	}

	if depIdx, exists := g.nodeIndexByPath(depPath); exists {
		g.checkDependencyName(node, entry, g.nodes[depIdx].Content)
		g.insertEdge(nodeIdx, depIdx)
		g.linkDependencies(depIdx, visited)
		return
	}

	if _, err := os.Stat(depPath.String()); err != nil {
		g.pushDependencyDiagnostic(node, entry.ValueRange,
			diagnostics.ProjectDependencyPathNotFound{DepPath: entry.Value.Path})
		return
	}

	content, err := TryMakeContent(depPath)
	if err != nil {
		if errors.Is(err, ErrNotContent) {
			g.pushDependencyDiagnostic(node, entry.ValueRange,
				diagnostics.ProjectDependencyPathNotFound{DepPath: entry.Value.Path})
		} else {
			g.pushManifestDiagnostic(depPath, protocol.Range{},
				diagnostics.InvalidProjectManifest{Msg: err.Error()})
		}
		return
	}

	if !g.checkDependencyName(node, entry, content) {
		return
	}

	g.nodes = append(g.nodes, GraphNode{Content: content})
	depIdx := len(g.nodes) - 1
	g.insertEdge(nodeIdx, depIdx)
	g.linkDependencies(depIdx, visited)
}

// checkDependencyName verifies that the content found at an explicit path
// carries the name the dependency entry declares.
func (g *ContentGraph) checkDependencyName(node GraphNode, entry DependencyEntry, dep Content) bool {
	if dep.ContentName() == entry.Name {
		return true
	}
	g.pushDependencyDiagnostic(node, entry.NameRange,
		diagnostics.ProjectDependencyNameNotFoundAtPath{Name: entry.Name})
	return false
}

func (g *ContentGraph) insertEdge(dependantIdx, dependencyIdx int) {
	for _, e := range g.edges {
		if e.dependantIdx == dependantIdx && e.dependencyIdx == dependencyIdx {
			return
		}
	}
	g.edges = append(g.edges, graphEdge{dependantIdx: dependantIdx, dependencyIdx: dependencyIdx})
}

func (g *ContentGraph) removeNodeByPath(contentPath abspath.Path) {
	targetIdx, ok := g.nodeIndexByPath(contentPath)
	if !ok {
		return
	}

	// drop all edges that mention this node
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.dependantIdx != targetIdx && e.dependencyIdx != targetIdx {
			kept = append(kept, e)
		}
	}
	g.edges = kept

	// swap-remove, then fix references to the swapped node
	lastIdx := len(g.nodes) - 1
	if targetIdx != lastIdx {
		g.nodes[targetIdx] = g.nodes[lastIdx]
		for i := range g.edges {
			if g.edges[i].dependantIdx == lastIdx {
				g.edges[i].dependantIdx = targetIdx
			}
			if g.edges[i].dependencyIdx == lastIdx {
				g.edges[i].dependencyIdx = targetIdx
			}
		}
	}
	g.nodes = g.nodes[:lastIdx]
}

func (g *ContentGraph) nodeIndexByPath(path abspath.Path) (int, bool) {
	for i, n := range g.nodes {
		if n.Content.Path() == path {
			return i, true
		}
	}
	return 0, false
}

func (g *ContentGraph) nodePathSet() map[abspath.Path]struct{} {
	out := make(map[abspath.Path]struct{}, len(g.nodes))
	for _, n := range g.nodes {
		out[n.Content.Path()] = struct{}{}
	}
	return out
}

func (g *ContentGraph) edgePairSet() map[GraphEdgePair]struct{} {
	out := make(map[GraphEdgePair]struct{}, len(g.edges))
	for _, e := range g.edges {
		out[GraphEdgePair{
			Dependant:  g.nodes[e.dependantIdx].Content.Path(),
			Dependency: g.nodes[e.dependencyIdx].Content.Path(),
		}] = struct{}{}
	}
	return out
}

func (g *ContentGraph) diffAgainst(prevNodes map[abspath.Path]struct{}, prevEdges map[GraphEdgePair]struct{}) ContentGraphDifference {
	var diff ContentGraphDifference

	newNodes := g.nodePathSet()
	for p := range newNodes {
		if _, ok := prevNodes[p]; !ok {
			diff.AddedNodes = append(diff.AddedNodes, p)
		}
	}
	for p := range prevNodes {
		if _, ok := newNodes[p]; !ok {
			diff.RemovedNodes = append(diff.RemovedNodes, p)
		}
	}

	newEdges := g.edgePairSet()
	for e := range newEdges {
		if _, ok := prevEdges[e]; !ok {
			diff.AddedEdges = append(diff.AddedEdges, e)
		}
	}
	for e := range prevEdges {
		if _, ok := newEdges[e]; !ok {
			diff.RemovedEdges = append(diff.RemovedEdges, e)
		}
	}

	sortPaths(diff.AddedNodes)
	sortPaths(diff.RemovedNodes)
	sortEdgePairs(diff.AddedEdges)
	sortEdgePairs(diff.RemovedEdges)

	return diff
}

// pushDependencyDiagnostic attributes a dependency problem to the
// dependant's manifest.
func (g *ContentGraph) pushDependencyDiagnostic(node GraphNode, rng protocol.Range, kind diagnostics.Kind) {
	path := node.Content.Path()
	if proj, ok := node.Content.(*ProjectDirectory); ok {
		path = proj.ManifestPath()
	}
	g.pushManifestDiagnostic(path, rng, kind)
}

func (g *ContentGraph) pushManifestDiagnostic(path abspath.Path, rng protocol.Range, kind diagnostics.Kind) {
	g.Diagnostics = append(g.Diagnostics, diagnostics.Located{
		Path:       path,
		Diagnostic: diagnostics.Diagnostic{Range: rng, Kind: kind},
	})
}

func sortPaths(paths []abspath.Path) {
	sort.Slice(paths, func(i, j int) bool { return paths[i].Less(paths[j]) })
}

func sortEdgePairs(pairs []GraphEdgePair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Dependant != pairs[j].Dependant {
			return pairs[i].Dependant.Less(pairs[j].Dependant)
		}
		return pairs[i].Dependency.Less(pairs[j].Dependency)
	})
}
