package scanner

import (
	"github.com/teranos/witcherscript-ls/symbols"
	"github.com/teranos/witcherscript-ls/symtab"
	"github.com/teranos/witcherscript-ls/sympath"
	"github.com/teranos/witcherscript-ls/syntax"
)

// UnqualifiedNames maps bare identifiers visible in the current scope
// (locals and parameters) to their symbol paths.
type UnqualifiedNames map[string]sympath.Path

// BuildUnqualifiedNames collects the data symbols declared directly under
// the enclosing callable.
func BuildUnqualifiedNames(marcher *symtab.Marcher, callablePath sympath.Path) UnqualifiedNames {
	out := UnqualifiedNames{}
	if callablePath.IsEmpty() {
		return out
	}
	table, _, ok := marcher.GetWithTable(callablePath)
	if !ok {
		return out
	}
	for _, child := range table.GetChildren(callablePath) {
		if last, ok := child.Path().Last(); ok && last.Category == sympath.CategoryData {
			out[last.Name] = child.Path()
		}
	}
	return out
}

// EvalContext is the lexical surrounding of the evaluated expression.
type EvalContext struct {
	// TypePath is the enclosing class/state/struct path; empty in the
	// global scope.
	TypePath sympath.Path
	// CallablePath is the enclosing callable; empty outside bodies.
	CallablePath sympath.Path
	// Unqualified resolves bare identifiers of the local scope.
	Unqualified UnqualifiedNames
}

// Evaluator computes the symbol path a given expression refers to. Every
// unresolved step yields an unknown sentinel, which consumers treat as "no
// navigation target".
type Evaluator struct {
	doc     *syntax.Document
	marcher *symtab.Marcher
	ctx     EvalContext
}

func NewEvaluator(doc *syntax.Document, marcher *symtab.Marcher, ctx EvalContext) *Evaluator {
	return &Evaluator{doc: doc, marcher: marcher, ctx: ctx}
}

// Evaluate returns the path of the symbol the expression refers to.
func (e *Evaluator) Evaluate(expr syntax.Expression) sympath.Path {
	switch n := expr.(type) {
	case *syntax.LiteralExpr:
		return literalTypePath(n.Literal.Kind)

	case *syntax.ThisExpr:
		if e.ctx.TypePath.IsEmpty() {
			return sympath.Unknown(sympath.CategoryData)
		}
		return sympath.ThisVar(e.ctx.TypePath)

	case *syntax.SuperExpr:
		if e.ctx.TypePath.IsEmpty() {
			return sympath.Unknown(sympath.CategoryData)
		}
		return sympath.SuperVar(e.ctx.TypePath)

	case *syntax.ParentExpr:
		if e.ctx.TypePath.IsEmpty() {
			return sympath.Unknown(sympath.CategoryData)
		}
		return sympath.ParentVar(e.ctx.TypePath)

	case *syntax.VirtualParentExpr:
		if e.ctx.TypePath.IsEmpty() {
			return sympath.Unknown(sympath.CategoryData)
		}
		return sympath.VirtualParentVar(e.ctx.TypePath)

	case *syntax.IdentExpr:
		return e.evaluateIdentifier(&n.Name)

	case *syntax.CallExpr:
		return e.evaluateCall(n)

	case *syntax.MemberAccessExpr:
		accessorPath := e.Evaluate(n.Accessor)
		return e.memberPath(accessorPath, n.Member.Value(e.doc), sympath.CategoryData)

	case *syntax.ArrayIndexExpr:
		accessorPath := e.Evaluate(n.Accessor)
		accessorType := e.ProduceType(accessorPath)
		if accessorType.HasUnknown() {
			return sympath.Unknown(sympath.CategoryCallable)
		}
		return sympath.MemberCallable(accessorType, symbols.IndexOperatorName)

	case *syntax.NewExpr:
		return sympath.BasicType(n.Class.Value(e.doc))

	case *syntax.CastExpr:
		return sympath.BasicType(n.Target.Value(e.doc))

	case *syntax.UnaryOpExpr:
		if n.Op == syntax.UnaryNot {
			return sympath.BasicType("bool")
		}
		return e.ProduceType(e.Evaluate(n.Right))

	case *syntax.BinaryOpExpr:
		switch n.Op {
		case syntax.BinaryLogic, syntax.BinaryCompare:
			return sympath.BasicType("bool")
		default:
			// arithmetic and bitwise operators yield the left-hand type
			return e.ProduceType(e.Evaluate(n.Left))
		}

	case *syntax.AssignExpr:
		return e.ProduceType(e.Evaluate(n.Left))

	case *syntax.TernaryExpr:
		return e.ProduceType(e.Evaluate(n.Conseq))

	case *syntax.ParenExpr:
		return e.Evaluate(n.Inner)
	}

	return sympath.Unknown(sympath.CategoryType)
}

func literalTypePath(kind syntax.LiteralKind) sympath.Path {
	switch kind {
	case syntax.LiteralInt, syntax.LiteralHex:
		return sympath.BasicType("int")
	case syntax.LiteralFloat:
		return sympath.BasicType("float")
	case syntax.LiteralBool:
		return sympath.BasicType("bool")
	case syntax.LiteralString:
		return sympath.BasicType("string")
	case syntax.LiteralName:
		return sympath.BasicType("name")
	case syntax.LiteralNull:
		return sympath.BasicType("NULL")
	}
	return sympath.Unknown(sympath.CategoryType)
}

// evaluateIdentifier consults the local scope first, then falls back to a
// bare global path for the marcher to resolve: global data (e.g. an enum
// variant) wins over a type name.
func (e *Evaluator) evaluateIdentifier(n *syntax.Identifier) sympath.Path {
	name := n.Value(e.doc)

	if path, ok := e.ctx.Unqualified[name]; ok {
		return path
	}

	// an unqualified name may also be a member of the enclosing type
	if !e.ctx.TypePath.IsEmpty() {
		if member := e.memberPath(e.ctx.TypePath, name, sympath.CategoryData); !member.HasUnknown() {
			return member
		}
	}

	if dataPath := sympath.GlobalData(name); e.marcher.Contains(dataPath) {
		return dataPath
	}
	return sympath.BasicType(name)
}

func (e *Evaluator) evaluateCall(n *syntax.CallExpr) sympath.Path {
	switch callee := n.Callee.(type) {
	case *syntax.IdentExpr:
		name := callee.Name.Value(e.doc)
		// a bare call resolves to a member callable of the enclosing type
		// before a global one
		if !e.ctx.TypePath.IsEmpty() {
			if member := e.memberPath(e.ctx.TypePath, name, sympath.CategoryCallable); !member.HasUnknown() {
				return member
			}
		}
		return sympath.GlobalCallable(name)
	case *syntax.MemberAccessExpr:
		accessorPath := e.Evaluate(callee.Accessor)
		return e.memberPath(accessorPath, callee.Member.Value(e.doc), sympath.CategoryCallable)
	default:
		return sympath.Unknown(sympath.CategoryCallable)
	}
}

// memberPath forms the path of a member under the type the accessor path
// produces, following class and state hierarchies.
func (e *Evaluator) memberPath(accessorPath sympath.Path, memberName string, category sympath.Category) sympath.Path {
	if accessorPath.HasUnknown() {
		return sympath.Unknown(category)
	}

	ownerType := e.ProduceType(accessorPath)
	if ownerType.HasUnknown() {
		return sympath.Unknown(category)
	}

	sym, ok := e.marcher.Get(ownerType)
	if !ok {
		return sympath.Unknown(category)
	}

	switch sym.(type) {
	case *symbols.ClassSymbol:
		for _, class := range e.marcher.ClassHierarchy(ownerType) {
			candidate := class.Path().Push(memberName, category)
			if e.marcher.Contains(candidate) {
				return candidate
			}
		}
	case *symbols.StateSymbol:
		for _, state := range e.marcher.StateHierarchy(ownerType) {
			candidate := state.Path().Push(memberName, category)
			if e.marcher.Contains(candidate) {
				return candidate
			}
		}
		// every state implicitly derives from the default state base class
		for _, class := range e.marcher.ClassHierarchy(sympath.BasicType(symbols.DefaultStateBaseTypeName)) {
			candidate := class.Path().Push(memberName, category)
			if e.marcher.Contains(candidate) {
				return candidate
			}
		}
	default:
		candidate := ownerType.Push(memberName, category)
		if e.marcher.Contains(candidate) {
			return candidate
		}
	}

	return sympath.Unknown(category)
}

// ProduceType resolves the path of the value type a symbol path produces,
// e.g. a var's declared type or a function's return type. Type paths
// produce themselves.
func (e *Evaluator) ProduceType(path sympath.Path) sympath.Path {
	if path.HasUnknown() {
		return sympath.Unknown(sympath.CategoryType)
	}

	sym, ok := e.marcher.Get(path)
	if !ok {
		return sympath.Unknown(sympath.CategoryType)
	}

	switch s := sym.(type) {
	case *symbols.ClassSymbol, *symbols.StateSymbol, *symbols.StructSymbol,
		*symbols.EnumSymbol, *symbols.ArrayTypeSymbol, *symbols.PrimitiveTypeSymbol:
		return sym.Path()
	case *symbols.ArrayFunctionSymbol:
		return s.ReturnTypePath
	case *symbols.ArrayFunctionParameterSymbol:
		return s.TypePath
	case *symbols.GlobalFunctionSymbol:
		return s.ReturnTypePath
	case *symbols.MemberFunctionSymbol:
		return s.ReturnTypePath
	case *symbols.EventSymbol:
		return sympath.BasicType("void")
	case *symbols.ConstructorSymbol:
		return s.ParentTypePath
	case *symbols.MemberFunctionInjectorSymbol:
		return s.ReturnTypePath
	case *symbols.MemberFunctionReplacerSymbol:
		return s.ReturnTypePath
	case *symbols.GlobalFunctionReplacerSymbol:
		return s.ReturnTypePath
	case *symbols.MemberFunctionWrapperSymbol:
		return s.ReturnTypePath
	case *symbols.WrappedMethodSymbol:
		return s.ReturnTypePath
	case *symbols.EnumVariantSymbol:
		return s.ParentEnumPath
	case *symbols.FunctionParameterSymbol:
		return s.TypePath
	case *symbols.GlobalVarSymbol:
		return s.TypePath
	case *symbols.MemberVarSymbol:
		return s.TypePath
	case *symbols.AutobindSymbol:
		return s.TypePath
	case *symbols.LocalVarSymbol:
		return s.TypePath
	case *symbols.ThisVarSymbol:
		return s.TypePath
	case *symbols.SuperVarSymbol:
		return s.TypePath
	case *symbols.StateSuperVarSymbol:
		// the base state resolves through the state hierarchy at query time
		if root, ok := path.Root(); ok {
			chain := e.marcher.StateHierarchy(root)
			if len(chain) > 1 {
				return chain[1].Path()
			}
		}
		return sympath.BasicType(symbols.DefaultStateBaseTypeName)
	case *symbols.ParentVarSymbol:
		return s.TypePath
	case *symbols.VirtualParentVarSymbol:
		return s.TypePath
	case *symbols.MemberVarInjectorSymbol:
		return s.TypePath
	}

	return sympath.Unknown(sympath.CategoryType)
}
