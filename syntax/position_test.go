package syntax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func docNode(doc *Document, src, text string) NodeBase {
	idx := strings.Index(src, text)
	span := Span{Start: uint32(idx), End: uint32(idx + len(text))}
	return NodeBase{Span: span, Range: doc.RangeOf(span)}
}

func TestDocumentRanges(t *testing.T) {
	src := "class Foo {\n    var x : int;\n}\n"
	doc := NewDocument(src)

	assert.Equal(t, len(src), doc.Len())
	assert.Equal(t, "Foo", doc.Text(Span{Start: 6, End: 9}))

	// second line, after the newline
	pos := doc.PositionOf(uint32(strings.Index(src, "var")))
	assert.Equal(t, protocol.Position{Line: 1, Character: 4}, pos)

	rng := doc.RangeOf(Span{Start: 6, End: 9})
	assert.Equal(t, protocol.Position{Line: 0, Character: 6}, rng.Start)
	assert.Equal(t, protocol.Position{Line: 0, Character: 9}, rng.End)
}

func TestIsValidIdentifier(t *testing.T) {
	assert.True(t, IsValidIdentifier("foo"))
	assert.True(t, IsValidIdentifier("_bar9"))
	assert.True(t, IsValidIdentifier("CActor"))
	assert.False(t, IsValidIdentifier(""))
	assert.False(t, IsValidIdentifier("9lives"))
	assert.False(t, IsValidIdentifier("with space"))
	assert.False(t, IsValidIdentifier("kebab-case"))
}

func TestFindPath(t *testing.T) {
	src := "class Foo extends Bar {}"
	doc := NewDocument(src)

	base := Identifier{NodeBase: docNode(doc, src, "Bar")}
	class := &ClassDecl{
		NodeBase: docNode(doc, src, src),
		Name:     Identifier{NodeBase: docNode(doc, src, "Foo")},
		Base:     &base,
	}
	script := &Script{NodeBase: docNode(doc, src, src), Statements: []RootStatement{class}}

	// cursor inside "Bar"
	path := FindPath(script, protocol.Position{Line: 0, Character: 19})
	require.NotEmpty(t, path)
	assert.Same(t, script, path[0])
	assert.Same(t, class, path[1])
	ident, ok := path[len(path)-1].(*Identifier)
	require.True(t, ok)
	assert.Equal(t, "Bar", ident.Value(doc))

	// cursor outside any statement but inside the script
	path = FindPath(script, protocol.Position{Line: 0, Character: uint32(len(src))})
	require.NotEmpty(t, path)

	// position outside the script
	path = FindPath(script, protocol.Position{Line: 5, Character: 0})
	assert.Nil(t, path)
}
