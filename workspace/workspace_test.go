package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"go.uber.org/zap"

	"github.com/teranos/witcherscript-ls/abspath"
	"github.com/teranos/witcherscript-ls/diagnostics"
	"github.com/teranos/witcherscript-ls/project"
	"github.com/teranos/witcherscript-ls/sympath"
	"github.com/teranos/witcherscript-ls/syntax"
)

// testParse is a deliberately tiny stand-in for the external parser. It
// understands the line-oriented subset the tests use:
//
//	class Name extends Base {
//	    var name : type;
//	    function name() {}
//	}
//	function name() {}
func testParse(_ abspath.Path, text string) (*ParsedScript, error) {
	doc := syntax.NewDocument(text)

	node := func(start, length int) syntax.NodeBase {
		span := syntax.Span{Start: uint32(start), End: uint32(start + length)}
		return syntax.NodeBase{Span: span, Range: doc.RangeOf(span)}
	}
	identAt := func(lineStart int, line, word string) syntax.Identifier {
		idx := strings.Index(line, word)
		return syntax.Identifier{NodeBase: node(lineStart+idx, len(word))}
	}

	script := &syntax.Script{NodeBase: node(0, len(text))}
	var currentClass *syntax.ClassDecl

	offset := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		fields := strings.Fields(trimmed)

		switch {
		case strings.HasPrefix(trimmed, "class "):
			decl := &syntax.ClassDecl{
				NodeBase: node(offset, len(line)),
				Name:     identAt(offset, line, fields[1]),
			}
			if len(fields) >= 4 && fields[2] == "extends" {
				base := identAt(offset, line, fields[3])
				decl.Base = &base
			}
			script.Statements = append(script.Statements, decl)
			currentClass = decl

		case trimmed == "}":
			currentClass = nil

		case strings.HasPrefix(trimmed, "var "):
			name := fields[1]
			typeWord := strings.TrimSuffix(fields[3], ";")
			decl := &syntax.MemberVarDecl{
				NodeBase: node(offset, len(line)),
				Names:    []syntax.Identifier{identAt(offset, line, name)},
				Type: syntax.TypeAnnotation{
					NodeBase: identAt(offset, line, typeWord).NodeBase,
					TypeName: identAt(offset, line, typeWord),
				},
			}
			if currentClass != nil {
				currentClass.Definition = append(currentClass.Definition, decl)
			}

		case strings.HasPrefix(trimmed, "function "):
			name := strings.TrimSuffix(fields[1], "()")
			decl := &syntax.FunctionDecl{
				NodeBase:   node(offset, len(line)),
				Name:       identAt(offset, line, name),
				Definition: &syntax.FunctionBlock{NodeBase: node(offset, len(line))},
			}
			if currentClass != nil {
				currentClass.Definition = append(currentClass.Definition, decl)
			} else {
				script.Statements = append(script.Statements, decl)
			}
		}

		offset += len(line) + 1
	}

	return &ParsedScript{Script: script, Doc: doc}, nil
}

func writeFile(t *testing.T, dir, local, content string) string {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(local))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	return full
}

func writeManifest(t *testing.T, dir, name string, deps map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scripts"), 0o755))
	manifest := fmt.Sprintf("[content]\nname = %q\nversion = \"1.0.0\"\ngame_version = \"4.04\"\n\n[dependencies]\n", name)
	for depName, depValue := range deps {
		manifest += fmt.Sprintf("%s = %s\n", depName, depValue)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, project.ManifestFileName), []byte(manifest), 0o644))
}

func mustPath(t *testing.T, p string) abspath.Path {
	t.Helper()
	out, err := abspath.Resolve(p, abspath.Path{})
	require.NoError(t, err)
	return out
}

func newTestWorkspace(t *testing.T, wsRoot, repoRoot string) *Workspace {
	t.Helper()
	w := New(zap.NewNop().Sugar(), testParse)
	var repos []abspath.Path
	if repoRoot != "" {
		repos = []abspath.Path{mustPath(t, repoRoot)}
	}
	w.SetRoots([]abspath.Path{mustPath(t, wsRoot)}, repos)
	return w
}

func TestRebuildScansWorkspace(t *testing.T) {
	ws := t.TempDir()
	modDir := filepath.Join(ws, "mod")
	writeManifest(t, modDir, "mod", nil)
	scriptFile := writeFile(t, modDir, "scripts/game/player.ws", "class Player extends CActor {\n    var health : int;\n    function GetHealth() {}\n}\n")

	w := newTestWorkspace(t, ws, "")
	diff, err := w.Rebuild(context.Background())
	require.NoError(t, err)
	assert.Len(t, diff.AddedNodes, 1)

	scriptPath := mustPath(t, scriptFile)

	sym, ok := w.GetSymbol(scriptPath, sympath.BasicType("Player"))
	require.True(t, ok)
	assert.Equal(t, "Player", sym.Name())

	loc, ok := w.LocateSymbol(scriptPath, sympath.BasicType("Player"))
	require.True(t, ok)
	assert.Equal(t, filepath.Join("game", "player.ws"), loc.LocalSourcePath)

	// primitives resolve through the natives fallback layer
	_, ok = w.GetSymbol(scriptPath, sympath.BasicType("int"))
	assert.True(t, ok)

	children := w.Children(scriptPath, sympath.BasicType("Player"))
	names := make([]string, 0, len(children))
	for _, c := range children {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "health")
	assert.Contains(t, names, "GetHealth")
	assert.Contains(t, names, "this")
}

// S6: content B depends on A; both have game/player.ws declaring Player.
// B's copy masks A's file entirely.
func TestDependencyFileMasking(t *testing.T) {
	ws := t.TempDir()
	repo := t.TempDir()

	baseDir := filepath.Join(repo, "base")
	writeManifest(t, baseDir, "base", nil)
	writeFile(t, baseDir, "scripts/game/player.ws", "class Player {\n}\nclass PlayerHelper {\n}\n")

	modDir := filepath.Join(ws, "mod")
	writeManifest(t, modDir, "mod", map[string]string{"base": "true"})
	modScript := writeFile(t, modDir, "scripts/game/player.ws", "class Player {\n}\n")

	w := newTestWorkspace(t, ws, repo)
	_, err := w.Rebuild(context.Background())
	require.NoError(t, err)

	scriptPath := mustPath(t, modScript)

	// the mod's Player wins
	loc, ok := w.LocateSymbol(scriptPath, sympath.BasicType("Player"))
	require.True(t, ok)
	assert.Contains(t, loc.AbsSourcePath.String(), filepath.Join("mod", "scripts"))

	// A's game/player.ws is masked entirely: even symbols the mod does not
	// redeclare are invisible
	_, ok = w.GetSymbol(scriptPath, sympath.BasicType("PlayerHelper"))
	assert.False(t, ok)

	// and no cross-content duplicate is reported for the overlay
	for _, diags := range w.Diagnostics() {
		for _, d := range diags {
			_, isDep := d.Kind.(diagnostics.SymbolNameTakenInDependency)
			assert.False(t, isDep, "overlayed file must not produce dependency conflicts")
		}
	}
}

func TestSymbolNameTakenInDependency(t *testing.T) {
	ws := t.TempDir()
	repo := t.TempDir()

	baseDir := filepath.Join(repo, "base")
	writeManifest(t, baseDir, "base", nil)
	writeFile(t, baseDir, "scripts/core/shared.ws", "class Shared {\n}\n")

	modDir := filepath.Join(ws, "mod")
	writeManifest(t, modDir, "mod", map[string]string{"base": "true"})
	modScript := writeFile(t, modDir, "scripts/other/mine.ws", "class Shared {\n}\n")

	w := newTestWorkspace(t, ws, repo)
	_, err := w.Rebuild(context.Background())
	require.NoError(t, err)

	var found *diagnostics.SymbolNameTakenInDependency
	for path, diags := range w.Diagnostics() {
		for _, d := range diags {
			if kind, ok := d.Kind.(diagnostics.SymbolNameTakenInDependency); ok {
				require.Equal(t, mustPath(t, modScript), path, "attributed to the dependant's file")
				found = &kind
			}
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "Shared", found.Name)
	require.NotNil(t, found.PrecursorFilePath)
	assert.Contains(t, found.PrecursorFilePath.String(), filepath.Join("base", "scripts"))
}

func TestOnFileChanged(t *testing.T) {
	ws := t.TempDir()
	modDir := filepath.Join(ws, "mod")
	writeManifest(t, modDir, "mod", nil)
	scriptFile := writeFile(t, modDir, "scripts/a.ws", "class Old {\n}\n")

	w := newTestWorkspace(t, ws, "")
	_, err := w.Rebuild(context.Background())
	require.NoError(t, err)

	scriptPath := mustPath(t, scriptFile)
	_, ok := w.GetSymbol(scriptPath, sympath.BasicType("Old"))
	require.True(t, ok)

	// rewrite the file with a future timestamp so the tree sees it as
	// modified regardless of filesystem mtime granularity
	require.NoError(t, os.WriteFile(scriptFile, []byte("class New {\n}\n"), 0o644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(scriptFile, future, future))

	w.OnFileChanged(scriptPath)

	_, ok = w.GetSymbol(scriptPath, sympath.BasicType("Old"))
	assert.False(t, ok)
	_, ok = w.GetSymbol(scriptPath, sympath.BasicType("New"))
	assert.True(t, ok)
}

func TestOnFileRemoved(t *testing.T) {
	ws := t.TempDir()
	modDir := filepath.Join(ws, "mod")
	writeManifest(t, modDir, "mod", nil)
	keep := writeFile(t, modDir, "scripts/keep.ws", "class Keep {\n}\n")
	gone := writeFile(t, modDir, "scripts/gone.ws", "class Gone {\n}\n")

	w := newTestWorkspace(t, ws, "")
	_, err := w.Rebuild(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.Remove(gone))
	w.OnFileChanged(mustPath(t, gone))

	_, ok := w.GetSymbol(mustPath(t, keep), sympath.BasicType("Gone"))
	assert.False(t, ok)
	_, ok = w.GetSymbol(mustPath(t, keep), sympath.BasicType("Keep"))
	assert.True(t, ok)
}

func TestDocumentSymbolsTree(t *testing.T) {
	ws := t.TempDir()
	modDir := filepath.Join(ws, "mod")
	writeManifest(t, modDir, "mod", nil)
	scriptFile := writeFile(t, modDir, "scripts/p.ws", "class Player {\n    var health : int;\n    function GetHealth() {}\n}\nfunction Util() {}\n")

	w := newTestWorkspace(t, ws, "")
	_, err := w.Rebuild(context.Background())
	require.NoError(t, err)

	symbolTree := w.DocumentSymbols(mustPath(t, scriptFile))
	require.Len(t, symbolTree, 2)

	assert.Equal(t, "Player", symbolTree[0].Name)
	assert.Equal(t, protocol.SymbolKindClass, symbolTree[0].Kind)
	childNames := make([]string, 0, len(symbolTree[0].Children))
	for _, c := range symbolTree[0].Children {
		childNames = append(childNames, c.Name)
	}
	assert.ElementsMatch(t, []string{"health", "GetHealth"}, childNames)

	assert.Equal(t, "Util", symbolTree[1].Name)
	assert.Equal(t, protocol.SymbolKindFunction, symbolTree[1].Kind)
}

func TestResolveSymbolAtPositionAndHover(t *testing.T) {
	ws := t.TempDir()
	repo := t.TempDir()

	baseDir := filepath.Join(repo, "base")
	writeManifest(t, baseDir, "base", nil)
	writeFile(t, baseDir, "scripts/core/actor.ws", "class CActor {\n    var health : int;\n}\n")

	modDir := filepath.Join(ws, "mod")
	writeManifest(t, modDir, "mod", map[string]string{"base": "true"})
	modScript := writeFile(t, modDir, "scripts/p.ws", "class Player extends CActor {\n}\n")

	w := newTestWorkspace(t, ws, repo)
	_, err := w.Rebuild(context.Background())
	require.NoError(t, err)

	scriptPath := mustPath(t, modScript)

	// cursor on "CActor" in the extends clause
	pos := protocol.Position{Line: 0, Character: uint32(strings.Index("class Player extends CActor {", "CActor")) + 2}
	resolved, ok := w.ResolveSymbolAtPosition(scriptPath, pos)
	require.True(t, ok)
	assert.Equal(t, sympath.BasicType("CActor"), resolved)

	loc, ok := w.LocateSymbol(scriptPath, resolved)
	require.True(t, ok)
	assert.Contains(t, loc.AbsSourcePath.String(), filepath.Join("base", "scripts"))

	hover, ok := w.Hover(scriptPath, pos)
	require.True(t, ok)
	assert.Contains(t, hover, "class CActor")

	// cursor on the declared name resolves to the declaration itself
	pos = protocol.Position{Line: 0, Character: uint32(strings.Index("class Player extends CActor {", "Player")) + 1}
	resolved, ok = w.ResolveSymbolAtPosition(scriptPath, pos)
	require.True(t, ok)
	assert.Equal(t, sympath.BasicType("Player"), resolved)
}

func TestRebuildCancellationKeepsPartialResults(t *testing.T) {
	ws := t.TempDir()
	modDir := filepath.Join(ws, "mod")
	writeManifest(t, modDir, "mod", nil)
	scriptFile := writeFile(t, modDir, "scripts/a.ws", "class A {\n}\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := newTestWorkspace(t, ws, "")
	_, err := w.Rebuild(ctx)
	assert.Error(t, err)

	// the content registered before the scan was cancelled is kept
	_, ok := w.ContentFor(mustPath(t, scriptFile))
	assert.True(t, ok)
}
