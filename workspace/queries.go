package workspace

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/teranos/witcherscript-ls/abspath"
	"github.com/teranos/witcherscript-ls/scanner"
	"github.com/teranos/witcherscript-ls/symbols"
	"github.com/teranos/witcherscript-ls/symtab"
	"github.com/teranos/witcherscript-ls/sympath"
	"github.com/teranos/witcherscript-ls/syntax"
)

// ResolveSymbolAtPosition computes the symbol path referred to at a cursor
// position: a declared name resolves to the declaration itself, a name
// inside an expression resolves through the expression type evaluator.
// The boolean is false when the position yields no navigation target.
func (w *Workspace) ResolveSymbolAtPosition(scriptPath abspath.Path, pos protocol.Position) (sympath.Path, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	state := w.stateContainingScript(scriptPath)
	if state == nil {
		return sympath.Path{}, false
	}
	parsed, err := w.loadAndParse(scriptPath)
	if err != nil {
		return sympath.Path{}, false
	}

	nodePath := syntax.FindPath(parsed.Script, pos)
	if len(nodePath) == 0 {
		return sympath.Path{}, false
	}

	marcher := w.marcherFor(state.content.Path())
	resolver := &positionResolver{
		doc:     parsed.Doc,
		marcher: marcher,
	}
	path := resolver.resolve(nodePath)
	if path.IsEmpty() || path.HasUnknown() {
		return sympath.Path{}, false
	}
	return path, true
}

// positionResolver turns the chain of nodes above a cursor position into a
// symbol path, tracking the enclosing type and callable along the way the
// same way the scanner does.
type positionResolver struct {
	doc     *syntax.Document
	marcher *symtab.Marcher

	typePath     sympath.Path
	callablePath sympath.Path
}

func (r *positionResolver) resolve(nodePath []syntax.Node) sympath.Path {
	// walk down the chain, recording the lexical context
	for _, node := range nodePath {
		switch n := node.(type) {
		case *syntax.ClassDecl:
			r.typePath = sympath.BasicType(n.Name.Value(r.doc))
		case *syntax.StateDecl:
			r.typePath = sympath.State(n.Name.Value(r.doc), n.Parent.Value(r.doc))
		case *syntax.StructDecl:
			r.typePath = sympath.BasicType(n.Name.Value(r.doc))
		case *syntax.EnumDecl:
			r.typePath = sympath.BasicType(n.Name.Value(r.doc))
		case *syntax.FunctionDecl:
			r.callablePath = r.functionPath(n)
		case *syntax.EventDecl:
			r.callablePath = sympath.MemberCallable(r.typePath, n.Name.Value(r.doc))
		}
	}

	innermost := nodePath[len(nodePath)-1]
	ident, ok := innermost.(*syntax.Identifier)
	if !ok {
		// the cursor may rest on an expression node itself
		if expr, ok := innermost.(syntax.Expression); ok {
			return r.evaluator().Evaluate(expr)
		}
		return sympath.Path{}
	}

	parent := syntax.Node(nil)
	if len(nodePath) >= 2 {
		parent = nodePath[len(nodePath)-2]
	}

	return r.resolveIdentifier(nodePath, parent, ident)
}

func (r *positionResolver) functionPath(n *syntax.FunctionDecl) sympath.Path {
	name := n.Name.Value(r.doc)

	if n.Annotation != nil {
		var classPath sympath.Path
		if n.Annotation.Arg != nil {
			classPath = sympath.BasicType(n.Annotation.Arg.Value(r.doc))
		}
		switch n.Annotation.Name.Value(r.doc) {
		case scanner.AnnotationAddMethod, scanner.AnnotationWrapMethod:
			if !classPath.IsEmpty() {
				return sympath.MemberCallable(classPath, name)
			}
		case scanner.AnnotationReplaceMethod:
			if classPath.IsEmpty() {
				return sympath.GlobalCallable(name)
			}
			return sympath.MemberCallable(classPath, name)
		}
		return sympath.Unknown(sympath.CategoryCallable)
	}

	if r.typePath.IsEmpty() {
		return sympath.GlobalCallable(name)
	}
	return sympath.MemberCallable(r.typePath, name)
}

func (r *positionResolver) evaluator() *scanner.Evaluator {
	return scanner.NewEvaluator(r.doc, r.marcher, scanner.EvalContext{
		TypePath:     r.typePath,
		CallablePath: r.callablePath,
		Unqualified:  scanner.BuildUnqualifiedNames(r.marcher, r.callablePath),
	})
}

func (r *positionResolver) resolveIdentifier(nodePath []syntax.Node, parent syntax.Node, ident *syntax.Identifier) sympath.Path {
	name := ident.Value(r.doc)

	switch p := parent.(type) {
	case *syntax.ClassDecl:
		if ident == &p.Name {
			return sympath.BasicType(name)
		}
		if ident == p.Base {
			return sympath.BasicType(name)
		}
	case *syntax.StructDecl:
		if ident == &p.Name {
			return sympath.BasicType(name)
		}
	case *syntax.EnumDecl:
		if ident == &p.Name {
			return sympath.BasicType(name)
		}
	case *syntax.StateDecl:
		if ident == &p.Name {
			return r.typePath
		}
		if ident == &p.Parent {
			return sympath.BasicType(name)
		}
		if ident == p.Base {
			return r.resolveBaseStateName(name)
		}
	case *syntax.EnumVariantDecl:
		if ident == &p.Name {
			return sympath.GlobalData(name)
		}
	case *syntax.FunctionDecl:
		if ident == &p.Name {
			return r.callablePath
		}
	case *syntax.EventDecl:
		if ident == &p.Name {
			return r.callablePath
		}
	case *syntax.ParamGroup:
		return sympath.MemberData(r.callablePath, name)
	case *syntax.MemberVarDecl:
		if p.Annotation != nil && p.Annotation.Arg != nil {
			return sympath.MemberData(sympath.BasicType(p.Annotation.Arg.Value(r.doc)), name)
		}
		return sympath.MemberData(r.typePath, name)
	case *syntax.AutobindDecl:
		if ident == &p.Name {
			return sympath.MemberData(r.typePath, name)
		}
	case *syntax.VarDecl:
		owner := r.callablePath
		if owner.IsEmpty() {
			return sympath.Path{}
		}
		return sympath.MemberData(owner, name)
	case *syntax.TypeAnnotation:
		return r.resolveTypeAnnotation(nodePath)
	case *syntax.Annotation:
		if ident == p.Arg {
			return sympath.BasicType(name)
		}
		return sympath.Path{}
	case *syntax.IdentExpr:
		return r.resolveExpressionTarget(nodePath, p)
	case *syntax.MemberAccessExpr:
		// the cursor is on the member name
		return r.evaluator().Evaluate(p)
	case *syntax.NewExpr:
		return sympath.BasicType(name)
	case *syntax.CastExpr:
		return sympath.BasicType(name)
	}

	return sympath.Path{}
}

// resolveTypeAnnotation rebuilds the referenced type path from the chain of
// nested annotations around the cursor.
func (r *positionResolver) resolveTypeAnnotation(nodePath []syntax.Node) sympath.Path {
	// innermost type annotation wins: `array<CActor>` with the cursor on
	// CActor navigates to the element type, not the array
	var innermost *syntax.TypeAnnotation
	for _, node := range nodePath {
		if ta, ok := node.(*syntax.TypeAnnotation); ok {
			innermost = ta
		}
	}
	if innermost == nil {
		return sympath.Path{}
	}

	name := innermost.TypeName.Value(r.doc)
	if name == sympath.ArrayTypeName && innermost.TypeArg != nil {
		return sympath.Array(r.typeAnnotationPath(innermost.TypeArg))
	}
	return sympath.BasicType(name)
}

func (r *positionResolver) typeAnnotationPath(n *syntax.TypeAnnotation) sympath.Path {
	name := n.TypeName.Value(r.doc)
	if name == sympath.ArrayTypeName && n.TypeArg != nil {
		return sympath.Array(r.typeAnnotationPath(n.TypeArg))
	}
	return sympath.BasicType(name)
}

// resolveBaseStateName finds the base state by name on any class of the
// owning class's hierarchy.
func (r *positionResolver) resolveBaseStateName(baseName string) sympath.Path {
	stateSym, ok := r.marcher.Get(r.typePath)
	if !ok {
		return sympath.Path{}
	}
	state, ok := stateSym.(*symbols.StateSymbol)
	if !ok {
		return sympath.Path{}
	}
	for _, class := range r.marcher.ClassHierarchy(state.ParentClassPath) {
		for _, candidate := range r.marcher.ClassStates(class.Path()) {
			if candidate.StateName == baseName {
				return candidate.Path()
			}
		}
	}
	return sympath.Path{}
}

// resolveExpressionTarget evaluates the expression containing the
// identifier: a call's callee and a member access's accessor position
// resolve through the enclosing expression.
func (r *positionResolver) resolveExpressionTarget(nodePath []syntax.Node, identExpr *syntax.IdentExpr) sympath.Path {
	// look for the enclosing call when the identifier is its callee
	for i := len(nodePath) - 1; i >= 0; i-- {
		if call, ok := nodePath[i].(*syntax.CallExpr); ok && call.Callee == syntax.Expression(identExpr) {
			return r.evaluator().Evaluate(call)
		}
	}
	return r.evaluator().Evaluate(identExpr)
}

// ProduceType resolves the value type a symbol path produces from the
// perspective of the content owning the given script. Used for
// go-to-type-definition.
func (w *Workspace) ProduceType(scriptPath abspath.Path, path sympath.Path) (sympath.Path, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	state := w.stateContainingScript(scriptPath)
	if state == nil {
		return sympath.Path{}, false
	}
	marcher := w.marcherFor(state.content.Path())
	eval := scanner.NewEvaluator(nil, marcher, scanner.EvalContext{})
	typePath := eval.ProduceType(path)
	return typePath, !typePath.HasUnknown()
}

// DocumentSymbols returns the declarations of one script shaped as a tree
// using parent-path relationships.
func (w *Workspace) DocumentSymbols(scriptPath abspath.Path) []protocol.DocumentSymbol {
	w.mu.RLock()
	defer w.mu.RUnlock()

	state := w.stateContainingScript(scriptPath)
	if state == nil {
		return nil
	}
	local, ok := scriptPath.LocalTo(state.content.ScriptsRootPath())
	if !ok {
		return nil
	}

	type entry struct {
		sym protocol.DocumentSymbol
		// children indexes into entries, filled before shaping
		children []int
	}
	var entries []entry
	indexByPath := make(map[sympath.Path]int)

	for _, sym := range state.table.GetForSource(local) {
		loc := sym.Location()
		if loc == nil {
			// reserved vars and synthesized families stay out of the outline
			continue
		}
		entries = append(entries, entry{sym: protocol.DocumentSymbol{
			Name:           sym.Name(),
			Kind:           documentSymbolKind(sym.Kind()),
			Range:          loc.Range,
			SelectionRange: loc.LabelRange,
		}})
		indexByPath[sym.Path()] = len(entries) - 1
	}

	var rootIdxs []int
	for _, sym := range state.table.GetForSource(local) {
		idx, ok := indexByPath[sym.Path()]
		if !ok {
			continue
		}
		parentIdx := -1
		for parent, ok := sym.Path().Parent(); ok; parent, ok = parent.Parent() {
			if pi, found := indexByPath[parent]; found {
				parentIdx = pi
				break
			}
		}
		if parentIdx >= 0 {
			entries[parentIdx].children = append(entries[parentIdx].children, idx)
		} else {
			rootIdxs = append(rootIdxs, idx)
		}
	}

	var build func(idx int) protocol.DocumentSymbol
	build = func(idx int) protocol.DocumentSymbol {
		out := entries[idx].sym
		for _, child := range entries[idx].children {
			out.Children = append(out.Children, build(child))
		}
		return out
	}

	out := make([]protocol.DocumentSymbol, 0, len(rootIdxs))
	for _, idx := range rootIdxs {
		out = append(out, build(idx))
	}
	return out
}

func documentSymbolKind(kind symbols.Kind) protocol.SymbolKind {
	switch kind {
	case symbols.KindClass, symbols.KindState:
		return protocol.SymbolKindClass
	case symbols.KindStruct:
		return protocol.SymbolKindStruct
	case symbols.KindEnum:
		return protocol.SymbolKindEnum
	case symbols.KindEnumVariant:
		return protocol.SymbolKindEnumMember
	case symbols.KindGlobalFunction, symbols.KindGlobalFunctionReplacer:
		return protocol.SymbolKindFunction
	case symbols.KindMemberFunction, symbols.KindEvent, symbols.KindArrayFunction,
		symbols.KindMemberFunctionInjector, symbols.KindMemberFunctionReplacer,
		symbols.KindMemberFunctionWrapper, symbols.KindWrappedMethod:
		return protocol.SymbolKindMethod
	case symbols.KindConstructor:
		return protocol.SymbolKindConstructor
	case symbols.KindFunctionParameter, symbols.KindArrayFunctionParameter,
		symbols.KindLocalVar:
		return protocol.SymbolKindVariable
	case symbols.KindMemberVar, symbols.KindAutobind, symbols.KindMemberVarInjector:
		return protocol.SymbolKindField
	case symbols.KindPrimitive, symbols.KindArray:
		return protocol.SymbolKindClass
	}
	return protocol.SymbolKindVariable
}
