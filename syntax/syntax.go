// Package syntax defines the typed syntax tree the analysis core consumes.
//
// The parser itself is an external collaborator; it is expected to produce
// these nodes with byte spans and LSP positions already attached. The core
// only requires positional ranges and the ability to read a node's
// identifier text back out of the script source.
package syntax

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Span is a half-open byte range into the script source.
type Span struct {
	Start uint32
	End   uint32
}

// Document is the text source of one script. Nodes do not store their
// lexemes; they are read back through the document on demand.
type Document struct {
	text        string
	lineOffsets []uint32
}

func NewDocument(text string) *Document {
	offsets := []uint32{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			offsets = append(offsets, uint32(i+1))
		}
	}
	return &Document{text: text, lineOffsets: offsets}
}

// Text returns the source text under the given span.
func (d *Document) Text(span Span) string {
	if int(span.End) > len(d.text) || span.Start > span.End {
		return ""
	}
	return d.text[span.Start:span.End]
}

// PositionOf converts a byte offset into an LSP position.
// Columns are byte-based; scripts are expected to be ASCII-dominant.
func (d *Document) PositionOf(offset uint32) protocol.Position {
	line := 0
	for line+1 < len(d.lineOffsets) && d.lineOffsets[line+1] <= offset {
		line++
	}
	return protocol.Position{
		Line:      protocol.UInteger(line),
		Character: protocol.UInteger(offset - d.lineOffsets[line]),
	}
}

// RangeOf converts a byte span into an LSP range.
func (d *Document) RangeOf(span Span) protocol.Range {
	return protocol.Range{
		Start: d.PositionOf(span.Start),
		End:   d.PositionOf(span.End),
	}
}

// Len returns the length of the document text in bytes.
func (d *Document) Len() int {
	return len(d.text)
}

// Node is implemented by every syntax tree node.
type Node interface {
	NodeRange() protocol.Range
	NodeSpan() Span
}

// NodeBase carries the positional information common to all nodes.
type NodeBase struct {
	Range protocol.Range
	Span  Span
}

func (n NodeBase) NodeRange() protocol.Range { return n.Range }
func (n NodeBase) NodeSpan() Span            { return n.Span }

// ContainsPosition reports whether the node's range spans the position.
func ContainsPosition(n Node, pos protocol.Position) bool {
	r := n.NodeRange()
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character > r.End.Character {
		return false
	}
	return true
}

// Identifier is a name token: [A-Za-z_][A-Za-z0-9_]*
type Identifier struct {
	NodeBase
}

// Value reads the identifier's lexeme from the document.
func (n *Identifier) Value(doc *Document) string {
	return doc.Text(n.Span)
}

// IsValidIdentifier checks the identifier character class of the language.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// LiteralKind discriminates literal tokens.
type LiteralKind int

const (
	LiteralInt LiteralKind = iota
	LiteralHex
	LiteralFloat
	LiteralBool
	LiteralString
	LiteralName
	LiteralNull
)

// Literal is a literal token; its text is read from the document.
type Literal struct {
	NodeBase
	Kind LiteralKind
}

func (n *Literal) Value(doc *Document) string {
	return doc.Text(n.Span)
}

// Specifier is a declaration specifier token, e.g. "abstract" or "private".
// The precise set of valid specifiers per declaration kind comes from the
// language attributes; the core treats them as opaque tokens.
type Specifier struct {
	NodeBase
}

func (n *Specifier) Value(doc *Document) string {
	return doc.Text(n.Span)
}

// Access modifier specifiers of the language.
var accessModifiers = map[string]bool{
	"private":   true,
	"protected": true,
	"public":    true,
}

// IsAccessModifier reports whether a specifier lexeme is an access modifier.
func IsAccessModifier(spec string) bool {
	return accessModifiers[strings.ToLower(spec)]
}

// Annotation is an `@name(arg)` marker preceding a global declaration.
type Annotation struct {
	NodeBase
	Name Identifier
	Arg  *Identifier
}

// TypeAnnotation is a type reference: a primary identifier plus an optional
// single type argument, e.g. `int` or `array<CActor>`.
type TypeAnnotation struct {
	NodeBase
	TypeName Identifier
	TypeArg  *TypeAnnotation
}
