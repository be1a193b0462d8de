package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teranos/witcherscript-ls/abspath"
	"github.com/teranos/witcherscript-ls/symtab"
	"github.com/teranos/witcherscript-ls/syntax"
)

// fixture pairs a script source with node builders that attach correct
// spans and ranges, standing in for the out-of-scope parser.
type fixture struct {
	t   *testing.T
	src string
	doc *syntax.Document
}

func newFixture(t *testing.T, src string) *fixture {
	t.Helper()
	return &fixture{t: t, src: src, doc: syntax.NewDocument(src)}
}

func scriptsRoot(t *testing.T) abspath.Path {
	t.Helper()
	root, err := abspath.Resolve("/ws/proj/scripts", abspath.Path{})
	require.NoError(t, err)
	return root
}

// base returns a NodeBase covering the nth occurrence (0-based) of text.
func (f *fixture) base(text string, occurrence int) syntax.NodeBase {
	f.t.Helper()
	offset := 0
	for i := 0; ; i++ {
		idx := strings.Index(f.src[offset:], text)
		require.GreaterOrEqual(f.t, idx, 0, "occurrence %d of %q not found", occurrence, text)
		idx += offset
		if i == occurrence {
			span := syntax.Span{Start: uint32(idx), End: uint32(idx + len(text))}
			return syntax.NodeBase{Span: span, Range: f.doc.RangeOf(span)}
		}
		offset = idx + len(text)
	}
}

func (f *fixture) ident(text string, occurrence int) syntax.Identifier {
	return syntax.Identifier{NodeBase: f.base(text, occurrence)}
}

func (f *fixture) identPtr(text string, occurrence int) *syntax.Identifier {
	id := f.ident(text, occurrence)
	return &id
}

func (f *fixture) spec(text string, occurrence int) syntax.Specifier {
	return syntax.Specifier{NodeBase: f.base(text, occurrence)}
}

func (f *fixture) typ(name string, occurrence int) syntax.TypeAnnotation {
	return syntax.TypeAnnotation{
		NodeBase: f.base(name, occurrence),
		TypeName: f.ident(name, occurrence),
	}
}

func (f *fixture) arrayTyp(elem string, elemOccurrence int) syntax.TypeAnnotation {
	inner := f.typ(elem, elemOccurrence)
	return syntax.TypeAnnotation{
		NodeBase: f.base("array", 0),
		TypeName: f.ident("array", 0),
		TypeArg:  &inner,
	}
}

func (f *fixture) lit(kind syntax.LiteralKind, text string, occurrence int) *syntax.Literal {
	return &syntax.Literal{NodeBase: f.base(text, occurrence), Kind: kind}
}

func (f *fixture) script(stmts ...syntax.RootStatement) *syntax.Script {
	span := syntax.Span{Start: 0, End: uint32(len(f.src))}
	return &syntax.Script{
		NodeBase:   syntax.NodeBase{Span: span, Range: f.doc.RangeOf(span)},
		Statements: stmts,
	}
}

func newTestTable(t *testing.T) *symtab.Table {
	t.Helper()
	return symtab.NewTable(scriptsRoot(t))
}
