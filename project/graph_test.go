package project

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teranos/witcherscript-ls/abspath"
	"github.com/teranos/witcherscript-ls/diagnostics"
)

func writeProject(t *testing.T, dir, name string, deps map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scripts"), 0o755))

	manifest := fmt.Sprintf("[content]\nname = %q\nversion = \"1.0.0\"\ngame_version = \"4.04\"\n\n[dependencies]\n", name)
	for depName, depValue := range deps {
		manifest += fmt.Sprintf("%s = %s\n", depName, depValue)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFileName), []byte(manifest), 0o644))
}

func writeRawContent(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scripts", "x.ws"), []byte("// x\n"), 0o644))
}

func buildGraph(t *testing.T, workspaceRoot, repoRoot string) *ContentGraph {
	t.Helper()
	log := zap.NewNop().Sugar()

	graph := NewContentGraph(log)

	if repoRoot != "" {
		repoPath, err := abspath.Resolve(repoRoot, abspath.Path{})
		require.NoError(t, err)
		repos := NewContentRepositories(repoPath)
		repos.Scan(log)
		graph.SetRepositories(repos)
	}

	wsPath, err := abspath.Resolve(workspaceRoot, abspath.Path{})
	require.NoError(t, err)
	projects, scanErrs := ScanWorkspaceProjects([]abspath.Path{wsPath}, log)
	require.Empty(t, scanErrs)
	graph.SetWorkspaceProjects(projects)

	return graph
}

func TestGraphDependencyByName(t *testing.T) {
	ws := t.TempDir()
	repo := t.TempDir()

	writeProject(t, filepath.Join(ws, "myMod"), "myMod", map[string]string{"shared_utils": "true"})
	writeProject(t, filepath.Join(repo, "sharedUtils"), "shared_utils", nil)
	// unrelated repository content gets pruned
	writeRawContent(t, filepath.Join(repo, "unused"))

	graph := buildGraph(t, ws, repo)
	diff := graph.Build()

	assert.Empty(t, graph.Diagnostics)
	require.Len(t, graph.Nodes(), 2)
	assert.Len(t, diff.AddedNodes, 2)
	assert.Len(t, diff.AddedEdges, 1)

	var modPath abspath.Path
	for _, n := range graph.Nodes() {
		switch n.Content.ContentName() {
		case "myMod":
			assert.True(t, n.InWorkspace)
			modPath = n.Content.Path()
		case "shared_utils":
			assert.True(t, n.InRepository)
			assert.False(t, n.InWorkspace)
		case "unused":
			t.Fatal("unused repository content should have been pruned")
		}
	}

	deps := graph.WalkDependencies(modPath)
	require.Len(t, deps, 2)
	// the starting node comes first
	assert.Equal(t, "myMod", deps[0].Content.ContentName())
	assert.Equal(t, "shared_utils", deps[1].Content.ContentName())

	dependants := graph.WalkDependants(deps[1].Content.Path())
	require.Len(t, dependants, 2)
	assert.Equal(t, "shared_utils", dependants[0].Content.ContentName())
	assert.Equal(t, "myMod", dependants[1].Content.ContentName())
}

func TestGraphDependencyByPath(t *testing.T) {
	ws := t.TempDir()

	depDir := filepath.Join(ws, "dep")
	writeProject(t, depDir, "dep", nil)
	writeProject(t, filepath.Join(ws, "mod"), "mod", map[string]string{
		"dep": `{ path = "../dep" }`,
	})

	graph := buildGraph(t, ws, "")
	graph.Build()

	assert.Empty(t, graph.Diagnostics)
	require.Len(t, graph.Nodes(), 2)
}

func TestGraphTransitiveDependencies(t *testing.T) {
	ws := t.TempDir()
	repo := t.TempDir()

	writeProject(t, filepath.Join(ws, "mod"), "mod", map[string]string{"midLayer": "true"})
	writeProject(t, filepath.Join(repo, "mid"), "midLayer", map[string]string{"baseLayer": "true"})
	writeProject(t, filepath.Join(repo, "base"), "baseLayer", nil)

	graph := buildGraph(t, ws, repo)
	graph.Build()

	assert.Empty(t, graph.Diagnostics)
	require.Len(t, graph.Nodes(), 3)

	var modPath abspath.Path
	for _, n := range graph.Nodes() {
		if n.Content.ContentName() == "mod" {
			modPath = n.Content.Path()
		}
	}
	deps := graph.WalkDependencies(modPath)
	require.Len(t, deps, 3)
	assert.Equal(t, "mod", deps[0].Content.ContentName())
	assert.Equal(t, "midLayer", deps[1].Content.ContentName())
	assert.Equal(t, "baseLayer", deps[2].Content.ContentName())
}

func TestGraphDependencyNameNotFound(t *testing.T) {
	ws := t.TempDir()
	writeProject(t, filepath.Join(ws, "mod"), "mod", map[string]string{"ghost": "true"})

	graph := buildGraph(t, ws, "")
	graph.Build()

	require.Len(t, graph.Diagnostics, 1)
	kind, ok := graph.Diagnostics[0].Diagnostic.Kind.(diagnostics.ProjectDependencyNameNotFound)
	require.True(t, ok)
	assert.Equal(t, "ghost", kind.Name)
	// attributed to the dependant's manifest
	assert.Contains(t, graph.Diagnostics[0].Path.String(), ManifestFileName)
	// the range points at the dependency key
	assert.NotZero(t, graph.Diagnostics[0].Diagnostic.Range.End.Character)
}

func TestGraphMultipleMatchingDependencies(t *testing.T) {
	ws := t.TempDir()
	repo := t.TempDir()

	writeProject(t, filepath.Join(ws, "mod"), "mod", map[string]string{"dup": "true"})
	writeProject(t, filepath.Join(repo, "dup1"), "dup", nil)
	writeProject(t, filepath.Join(repo, "dup2"), "dup", nil)

	graph := buildGraph(t, ws, repo)
	graph.Build()

	require.Len(t, graph.Diagnostics, 1)
	kind, ok := graph.Diagnostics[0].Diagnostic.Kind.(diagnostics.MultipleMatchingProjectDependencies)
	require.True(t, ok)
	assert.Equal(t, "dup", kind.Name)
	assert.Len(t, kind.MatchingPaths, 2)
}

func TestGraphDependencyPathNotFound(t *testing.T) {
	ws := t.TempDir()
	writeProject(t, filepath.Join(ws, "mod"), "mod", map[string]string{
		"missing": `{ path = "../missing" }`,
	})

	graph := buildGraph(t, ws, "")
	graph.Build()

	require.Len(t, graph.Diagnostics, 1)
	_, ok := graph.Diagnostics[0].Diagnostic.Kind.(diagnostics.ProjectDependencyPathNotFound)
	assert.True(t, ok)
}

func TestGraphSelfDependencyRejected(t *testing.T) {
	ws := t.TempDir()
	writeProject(t, filepath.Join(ws, "mod"), "mod", map[string]string{"mod": "true"})

	graph := buildGraph(t, ws, "")
	graph.Build()

	require.Len(t, graph.Diagnostics, 1)
	_, ok := graph.Diagnostics[0].Diagnostic.Kind.(diagnostics.ProjectSelfDependency)
	assert.True(t, ok)
}

func TestGraphRebuildDiff(t *testing.T) {
	ws := t.TempDir()
	repo := t.TempDir()

	writeProject(t, filepath.Join(ws, "mod"), "mod", map[string]string{"util": "true"})
	writeProject(t, filepath.Join(repo, "util"), "util", nil)

	graph := buildGraph(t, ws, repo)
	first := graph.Build()
	assert.Len(t, first.AddedNodes, 2)
	assert.Len(t, first.AddedEdges, 1)

	// rebuilding the unchanged workspace yields an empty diff
	second := graph.Build()
	assert.True(t, second.IsEmpty())
}

func TestGraphMalformedContentIsExcluded(t *testing.T) {
	ws := t.TempDir()
	repo := t.TempDir()

	writeProject(t, filepath.Join(ws, "mod"), "mod", map[string]string{"good": "true"})
	writeProject(t, filepath.Join(repo, "good"), "good", nil)

	// malformed manifest in an unrelated repository content
	badDir := filepath.Join(repo, "bad")
	require.NoError(t, os.MkdirAll(badDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(badDir, ManifestFileName), []byte("not toml ["), 0o644))

	graph := buildGraph(t, ws, repo)
	graph.Build()

	// the bad content is reported and excluded; the rest proceeds
	require.NotEmpty(t, graph.Diagnostics)
	foundInvalid := false
	for _, d := range graph.Diagnostics {
		if _, ok := d.Diagnostic.Kind.(diagnostics.InvalidProjectManifest); ok {
			foundInvalid = true
		}
	}
	assert.True(t, foundInvalid)

	require.Len(t, graph.Nodes(), 2)
}
